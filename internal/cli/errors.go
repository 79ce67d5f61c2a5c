package cli

import (
	"errors"

	"github.com/mesh-intelligence/granary/pkg/types"
)

// systemError marks a failure of the environment rather than of the
// caller's input. It maps to exit code 2.
type systemError struct {
	err error
}

func (e *systemError) Error() string { return e.err.Error() }
func (e *systemError) Unwrap() error { return e.err }

func sysErr(err error) error {
	if err == nil {
		return nil
	}
	return &systemError{err: err}
}

// classify passes caller errors through and marks everything else as a
// system error.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, types.ErrInvalidArgument),
		errors.Is(err, types.ErrCapacityExceeded),
		errors.Is(err, types.ErrNotFound),
		errors.Is(err, types.ErrBackendEmpty),
		errors.Is(err, types.ErrBackendUnknown):
		return err
	}
	var se *systemError
	if errors.As(err, &se) {
		return err
	}
	return sysErr(err)
}

func exitCode(err error) int {
	var se *systemError
	if errors.As(err, &se) {
		return exitSysError
	}
	return exitUserError
}
