package pipeline

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// InputMissingError indicates a record or blob a stage needs does not exist.
// Retrying cannot fix this.
type InputMissingError struct {
	What string
	ID   uuid.UUID
}

func (e *InputMissingError) Error() string {
	return fmt.Sprintf("%s missing (%s)", e.What, e.ID)
}

func (e *InputMissingError) Permanent() bool { return true }

// DependencyNotFoundError indicates a record a stage depends on, but does not
// own, is missing or incomplete. Retrying cannot fix this.
type DependencyNotFoundError struct {
	What string
	ID   uuid.UUID
}

func (e *DependencyNotFoundError) Error() string {
	return fmt.Sprintf("dependency %s %s not found", e.What, e.ID)
}

func (e *DependencyNotFoundError) Permanent() bool { return true }

type permanent interface {
	Permanent() bool
}

// IsPermanent reports whether err, or any error it wraps, declares itself
// permanent. Permanent failures must not be retried; everything else is
// treated as transient.
func IsPermanent(err error) bool {
	var p permanent
	if errors.As(err, &p) {
		return p.Permanent()
	}
	return false
}
