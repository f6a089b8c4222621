package extract

import "fmt"

// UnsupportedFormatError indicates no extraction strategy claims the declared
// MIME type. Retrying will not help; the dispatcher treats it as permanent.
type UnsupportedFormatError struct {
	MimeType string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported file type: %s", e.MimeType)
}

// Permanent marks the error class for the dispatcher's retry policy.
func (e *UnsupportedFormatError) Permanent() bool { return true }

// ExtractionFailedError indicates every claiming strategy failed on the file.
type ExtractionFailedError struct {
	MimeType string
	Cause    error
}

func (e *ExtractionFailedError) Error() string {
	return fmt.Sprintf("text extraction failed for %s: %v", e.MimeType, e.Cause)
}

func (e *ExtractionFailedError) Unwrap() error {
	return e.Cause
}
