package extract

import (
	"bytes"
	"fmt"
	"strings"

	pdfextractor "github.com/unidoc/unipdf/v3/extractor"
	pdfmodel "github.com/unidoc/unipdf/v3/model"
)

// PDFStrategy extracts text from PDF files page by page.
type PDFStrategy struct{}

func (*PDFStrategy) Name() string { return "pdf" }

func (*PDFStrategy) Claims(mimeType string) bool {
	return strings.Contains(strings.ToLower(mimeType), "pdf")
}

// Extract walks every page, skipping pages that fail individually; it errors
// only when no page yields any text.
func (*PDFStrategy) Extract(data []byte) (string, error) {
	reader, err := pdfmodel.NewPdfReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to read PDF: %w", err)
	}

	numPages, err := reader.GetNumPages()
	if err != nil {
		return "", fmt.Errorf("failed to get page count: %w", err)
	}
	if numPages == 0 {
		return "", fmt.Errorf("PDF has no pages")
	}

	var sb strings.Builder
	extracted := false

	for i := 1; i <= numPages; i++ {
		page, err := reader.GetPage(i)
		if err != nil {
			continue
		}
		ex, err := pdfextractor.New(page)
		if err != nil {
			continue
		}
		pageText, err := ex.ExtractText()
		if err != nil || pageText == "" {
			continue
		}

		extracted = true
		sb.WriteString(pageText)
		sb.WriteString("\n\n")
	}

	if !extracted {
		return "", fmt.Errorf("no text could be extracted from any page")
	}
	return sb.String(), nil
}
