package renamer

import (
	"errors"
	"fmt"
)

// ErrRenameConflict matches every RenameConflictError via errors.Is.
var ErrRenameConflict = errors.New("rename conflict")

// errTargetExists is returned by the low-level move when the target is taken.
var errTargetExists = errors.New("target already exists")

// RenameConflictError reports a rename that would overwrite another file.
// The source is left untouched.
type RenameConflictError struct {
	Source string
	Target string
	Reason string
}

func (e *RenameConflictError) Error() string {
	return fmt.Sprintf("rename conflict: %s -> %s: %s", e.Source, e.Target, e.Reason)
}

func (e *RenameConflictError) Is(target error) bool {
	return target == ErrRenameConflict
}

// RenameIOError wraps a failed filesystem rename.
type RenameIOError struct {
	Source string
	Target string
	Err    error
}

func (e *RenameIOError) Error() string {
	return fmt.Sprintf("rename %s -> %s: %v", e.Source, e.Target, e.Err)
}

func (e *RenameIOError) Unwrap() error {
	return e.Err
}

// IsConflict reports whether err is a RenameConflictError.
func IsConflict(err error) bool {
	var e *RenameConflictError
	return errors.As(err, &e)
}
