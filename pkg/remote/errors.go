package remote

import (
	"errors"
	"fmt"
)

// ErrNotConnected is returned when an operation is invoked on a Connection
// whose underlying session was never established or has been closed.
// Hitting this is a bug in the caller, not a transient condition.
var ErrNotConnected = errors.New("connection is not established")

// MaxAttemptsError is the terminal establishment failure: every connection
// attempt in the configured budget failed. It is never retried by this layer.
type MaxAttemptsError struct {
	Host     string
	Attempts int
}

func (e *MaxAttemptsError) Error() string {
	return fmt.Sprintf("exceeded max attempts to connect to host %s after %d attempts", e.Host, e.Attempts)
}

// CommandError is returned when a remote command exits non-zero while
// status checking was requested.
type CommandError struct {
	Command    string
	ExitStatus int
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command execution error: %s (exit status %d)", e.Command, e.ExitStatus)
}
