package embed

import "fmt"

// EmbeddingError wraps failures from the embedding backend, including
// responses whose dimensionality does not match the configured width.
// These are treated as transient and may be retried.
type EmbeddingError struct {
	Message string
	Cause   error
}

func (e *EmbeddingError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("embedding failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("embedding failed: %s", e.Message)
}

func (e *EmbeddingError) Unwrap() error { return e.Cause }

// Permanent reports whether retrying could help. Embedding failures are
// assumed recoverable.
func (e *EmbeddingError) Permanent() bool { return false }
