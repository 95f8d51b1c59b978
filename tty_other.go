//go:build windows || plan9

package vcon

// TTY is not available, since github.com/pkg/term does not support this platform.
type TTY struct{}

// NewTTY always fails on this platform.
func NewTTY() (*TTY, error) {
	return nil, ErrUnsupported
}

// Events returns nothing.
func (tty *TTY) Events() []Event {
	return nil
}

// Close does nothing.
func (tty *TTY) Close() {}
