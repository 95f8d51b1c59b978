package vcon

import (
	"errors"
	"fmt"
)

var (
	// ErrConfig is matched by every configuration error, see ConfigError.
	ErrConfig = errors.New("configuration error")

	// ErrQuit is returned by a blocking call that was interrupted by a quit event.
	ErrQuit = errors.New("quit requested")

	// ErrHidden is returned when reading input while the window is hidden.
	ErrHidden = errors.New("the console window is hidden")

	// ErrClosed is returned by every operation after Quit.
	ErrClosed = errors.New("the console has been closed")

	// ErrUnsupported is returned by backends for features the platform lacks.
	ErrUnsupported = errors.New("not supported on this platform")
)

// ConfigError describes an invalid configuration key or value,
// a missing font or a beep request without a configured sound.
type ConfigError struct {
	Key    string
	Reason string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("configuration error: %s", e.Reason)
	}
	return fmt.Sprintf("configuration error: %s: %s", e.Key, e.Reason)
}

// Is makes errors.Is(err, ErrConfig) true for every *ConfigError.
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfig
}

func configErrorf(key, format string, args ...any) error {
	return &ConfigError{Key: key, Reason: fmt.Sprintf(format, args...)}
}
