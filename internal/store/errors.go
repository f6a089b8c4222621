package store

import "fmt"

// PersistenceError represents a failed store write. Writes are transient
// failures from the dispatcher's point of view and are eligible for retry.
type PersistenceError struct {
	Op    string
	Cause error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence error during %s: %v", e.Op, e.Cause)
}

func (e *PersistenceError) Unwrap() error {
	return e.Cause
}

// Permanent marks the error class for the dispatcher's retry policy.
func (e *PersistenceError) Permanent() bool { return false }

func writeErr(op string, cause error) error {
	return &PersistenceError{Op: op, Cause: cause}
}
