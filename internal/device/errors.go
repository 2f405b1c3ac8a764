// internal/device/errors.go
package device

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionLost marks a session-fatal condition: the connection is gone
	// and no further read on this Handle can succeed.
	ErrSessionLost = errors.New("device: session lost")

	// ErrTimeout marks a single read that did not complete in time.
	ErrTimeout = errors.New("device: read timeout")

	// ErrNotReady marks a controller that answered but has no data for the read.
	ErrNotReady = errors.New("device: not ready")

	// ErrInvalidArgument marks a selector, kind or block the driver cannot serve.
	ErrInvalidArgument = errors.New("device: invalid argument")
)

// Error is a failed read carrying a device-defined return code.
type Error struct {
	Op   string
	Code uint16
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: code=%d", e.Op, e.Code)
	}
	return fmt.Sprintf("%s: code=%d: %v", e.Op, e.Code, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// ErrorCode returns the device code carried by the error.
func (e *Error) ErrorCode() uint16 { return e.Code }

// IsSessionFatal reports whether err ends the session.
func IsSessionFatal(err error) bool {
	return errors.Is(err, ErrSessionLost)
}

// ErrorCode extracts a best-effort uint16 code from an error without assuming concrete types.
// nil maps to 0; an error that does not expose a code maps to 1 (generic error).
func ErrorCode(err error) uint16 {
	if err == nil {
		return 0
	}

	type coderA interface{ Code() uint16 }
	type coderB interface{ ErrorCode() uint16 }

	var a coderA
	if errors.As(err, &a) {
		return a.Code()
	}
	var b coderB
	if errors.As(err, &b) {
		return b.ErrorCode()
	}

	return 1
}
