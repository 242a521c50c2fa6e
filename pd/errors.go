package pd

import (
	"fmt"

	"github.com/go-faster/errors"

	"github.com/yaroher/p4-pd-gen/schema"
)

// PhaseError wraps a failure with the extraction phase it happened in.
type PhaseError struct {
	Phase string
	Err   error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("%s: %v", e.Phase, e.Err)
}

func (e *PhaseError) Unwrap() error {
	return e.Err
}

// Key returns the offending schema key, or "" when the failure is not a
// schema error.
func (e *PhaseError) Key() string {
	var se *schema.Error
	if errors.As(e.Err, &se) {
		return se.Key()
	}
	return ""
}

// ReferenceError is a table or action reference to a resource table that
// does not exist.
type ReferenceError struct {
	Owner    string
	Resource string
	Path     schema.Path
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("%q references unknown resource %q at %s", e.Owner, e.Resource, e.Path)
}

// HandleMismatchError is a direct reference whose handle disagrees with the
// handle of the resource table it names.
type HandleMismatchError struct {
	Owner    string
	Resource string
	Handle   int
	Want     int
	Path     schema.Path
}

func (e *HandleMismatchError) Error() string {
	return fmt.Sprintf("%q references resource %q with handle 0x%x, table has 0x%x at %s",
		e.Owner, e.Resource, e.Handle, e.Want, e.Path)
}
