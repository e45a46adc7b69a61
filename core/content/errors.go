package content

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// errors
	ErrNotFound       = errors.New("content document not found")
	ErrInvalidContent = errors.New("content must be a JSON object")
	ErrInvalidPath    = errors.New("invalid field path")
	ErrShapeMismatch  = errors.New("content shape mismatch")
	ErrCollapsed      = errors.New("editor is collapsed")
	ErrSaveInProgress = errors.New("a save is already in progress")
)

// Failure operations.
const (
	OpLoad = "load"
	OpSave = "save"
)

// FailureError reports a failed call to the persistence layer (LoadFailure / SaveFailure).
// It has no Cause method: errors.Cause stops here, errors.Is/As still reach Err.
type FailureError struct {
	Op  string
	Key string
	Err error
}

func (e *FailureError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("content %s %q: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("content %s: %v", e.Op, e.Err)
}

func (e *FailureError) Unwrap() error { return e.Err }

// Notice is the generic message shown to the user.
func (e *FailureError) Notice() string {
	if e.Op == OpSave {
		return "failed to save"
	}
	return "failed to load content"
}
