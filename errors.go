package main

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupported is returned by platform features that only exist on
	// Windows, or on a subset of its architectures.
	ErrUnsupported = errors.New("not supported on this platform")

	// ErrAlreadyRunning means another process holds the singleton mutex.
	ErrAlreadyRunning = errors.New("another instance is already running")
)

// callError wraps the last-error value of a failed Win32 call. The value is
// often unset, in which case only the call name is reported.
func callError(op string, lastErr error) error {
	if lastErr == nil {
		return fmt.Errorf("%s failed", op)
	}
	return fmt.Errorf("%s: %w", op, lastErr)
}
