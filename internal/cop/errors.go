package cop

import (
	"errors"
	"fmt"
)

// ErrFrozen is returned by Register after Freeze.
var ErrFrozen = errors.New("cop registry is frozen")

// DuplicateError reports a second registration of the same cop ID.
type DuplicateError struct {
	ID string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("cop %s is already registered", e.ID)
}
