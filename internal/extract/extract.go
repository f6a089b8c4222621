// Package extract converts uploaded file bytes into plain text. Extraction is
// organized as an ordered list of strategies; for a given MIME type every
// claiming strategy is tried in sequence until one succeeds.
package extract

import (
	"errors"
	"strings"

	"go.uber.org/zap"
)

// Strategy is a single format-specific text extractor.
type Strategy interface {
	// Name identifies the strategy in logs.
	Name() string
	// Claims reports whether the strategy handles the declared MIME type.
	Claims(mimeType string) bool
	// Extract converts file bytes into plain text.
	Extract(data []byte) (string, error)
}

// Extractor runs the configured strategy chain.
type Extractor struct {
	strategies []Strategy
	log        *zap.Logger
}

// New returns an extractor with the default strategy chain: PDF, DOCX, plain
// text.
func New(log *zap.Logger) *Extractor {
	return NewWithStrategies(log, &PDFStrategy{}, &DocxStrategy{}, &PlainTextStrategy{})
}

// NewWithStrategies returns an extractor with an explicit strategy chain,
// tried in the given order.
func NewWithStrategies(log *zap.Logger, strategies ...Strategy) *Extractor {
	return &Extractor{strategies: strategies, log: log}
}

// Extract converts file bytes with the declared MIME type into plain text.
// Returns UnsupportedFormatError when no strategy claims the MIME type and
// ExtractionFailedError when all claiming strategies fail.
func (e *Extractor) Extract(data []byte, mimeType string) (string, error) {
	claimed := false
	var failures []error

	for _, s := range e.strategies {
		if !s.Claims(mimeType) {
			continue
		}
		claimed = true

		text, err := s.Extract(data)
		if err != nil {
			e.log.Warn("extraction strategy failed",
				zap.String("strategy", s.Name()),
				zap.String("mime_type", mimeType),
				zap.Error(err))
			failures = append(failures, err)
			continue
		}

		return strings.TrimSpace(text), nil
	}

	if !claimed {
		return "", &UnsupportedFormatError{MimeType: mimeType}
	}
	return "", &ExtractionFailedError{MimeType: mimeType, Cause: errors.Join(failures...)}
}
