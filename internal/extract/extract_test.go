package extract

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubStrategy lets tests control claiming and outcomes.
type stubStrategy struct {
	name   string
	claims bool
	text   string
	err    error
	calls  int
}

func (s *stubStrategy) Name() string            { return s.name }
func (s *stubStrategy) Claims(mime string) bool { return s.claims }
func (s *stubStrategy) Extract(data []byte) (string, error) {
	s.calls++
	return s.text, s.err
}

func TestExtract_PlainText(t *testing.T) {
	e := New(zap.NewNop())

	text, err := e.Extract([]byte("John Doe\nSoftware Engineer"), "text/plain")
	require.NoError(t, err)
	assert.Equal(t, "John Doe\nSoftware Engineer", text)
}

func TestExtract_UnsupportedFormat(t *testing.T) {
	e := New(zap.NewNop())

	_, err := e.Extract([]byte{0x00}, "image/png")
	require.Error(t, err)

	var unsupported *UnsupportedFormatError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "image/png", unsupported.MimeType)
	assert.True(t, unsupported.Permanent())
}

func TestExtract_FallsThroughToNextStrategy(t *testing.T) {
	failing := &stubStrategy{name: "first", claims: true, err: fmt.Errorf("corrupt")}
	working := &stubStrategy{name: "second", claims: true, text: "  recovered text  "}

	e := NewWithStrategies(zap.NewNop(), failing, working)

	text, err := e.Extract([]byte("data"), "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "recovered text", text)
	assert.Equal(t, 1, failing.calls)
	assert.Equal(t, 1, working.calls)
}

func TestExtract_AllClaimingStrategiesFail(t *testing.T) {
	first := &stubStrategy{name: "first", claims: true, err: errors.New("bad header")}
	second := &stubStrategy{name: "second", claims: true, err: errors.New("bad body")}

	e := NewWithStrategies(zap.NewNop(), first, second)

	_, err := e.Extract([]byte("data"), "application/pdf")
	require.Error(t, err)

	var failed *ExtractionFailedError
	require.ErrorAs(t, err, &failed)
	assert.Equal(t, "application/pdf", failed.MimeType)
}

func TestExtract_NonClaimingStrategyNotCalled(t *testing.T) {
	pdf := &stubStrategy{name: "pdf", claims: false}
	text := &stubStrategy{name: "text", claims: true, text: "ok"}

	e := NewWithStrategies(zap.NewNop(), pdf, text)

	_, err := e.Extract([]byte("data"), "text/plain")
	require.NoError(t, err)
	assert.Equal(t, 0, pdf.calls)
}

func TestPlainTextStrategy_RejectsBinary(t *testing.T) {
	s := &PlainTextStrategy{}
	_, err := s.Extract([]byte{0xff, 0xfe, 0x00, 0x80})
	assert.Error(t, err)
}

func TestStrategyClaims(t *testing.T) {
	assert.True(t, (&PDFStrategy{}).Claims("application/pdf"))
	assert.False(t, (&PDFStrategy{}).Claims("text/plain"))
	assert.True(t, (&DocxStrategy{}).Claims("application/vnd.openxmlformats-officedocument.wordprocessingml.document"))
	assert.True(t, (&DocxStrategy{}).Claims("application/msword"))
	assert.False(t, (&DocxStrategy{}).Claims("application/pdf"))
	assert.True(t, (&PlainTextStrategy{}).Claims("text/plain"))
}
