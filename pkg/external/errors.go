// Package external runs the command-line tools gosage collaborates with:
// the Sage preparser and a Python analyzer. Every invocation goes through a
// shared process pool and a per-tool circuit breaker.
package external

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnavailable is returned when a tool is not installed, disabled or
// rejected by its circuit breaker.
var ErrUnavailable = errors.New("external tool unavailable")

// ExitError reports a tool that ran but exited unsuccessfully.
type ExitError struct {
	Tool   string
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" {
		return fmt.Sprintf("%s exited with status %d", e.Tool, e.Code)
	}
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		msg = msg[:i]
	}
	return fmt.Sprintf("%s exited with status %d: %s", e.Tool, e.Code, msg)
}
