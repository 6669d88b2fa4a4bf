package drone

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions.
var (
	// ErrQueueFull is returned by Submit when the dispatcher is saturated.
	ErrQueueFull = errors.New("drone: command queue full")

	// ErrClosed is returned once shutdown has begun.
	ErrClosed = errors.New("drone: dispatcher closed")

	// ErrTimeout is returned when the drone does not answer in time.
	ErrTimeout = errors.New("drone: response timeout")

	// ErrUnsupported is returned by backends that cannot perform a command.
	ErrUnsupported = errors.New("drone: command not supported by backend")

	// ErrNotConnected is returned when the control link is down.
	ErrNotConnected = errors.New("drone: not connected")
)

// CommandError reports a request the drone rejected.
type CommandError struct {
	Request string // SDK text that was sent
	Reply   string // what the drone answered instead of "ok"
}

// Error implements the error interface.
func (e *CommandError) Error() string {
	return fmt.Sprintf("drone: %q rejected: %s", e.Request, e.Reply)
}
