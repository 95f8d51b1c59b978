//go:build !windows && !plan9

package vcon

import (
	"os"
	"time"

	"github.com/pkg/term"
	"github.com/xyproto/env/v2"
)

// defaultTimeout is how long a poll waits for the first byte of input.
var defaultTimeout = 2 * time.Millisecond

// TTY reads raw key presses from the controlling terminal.
type TTY struct {
	t   *term.Term
	buf []byte
}

// NewTTY opens a terminal device in raw mode
func NewTTY() (*TTY, error) {
	t, err := term.Open(getTTYPath(), term.RawMode, term.ReadTimeout(defaultTimeout))
	if err != nil {
		return nil, err
	}
	return &TTY{t: t, buf: make([]byte, 256)}, nil
}

// getTTYPath returns the appropriate TTY path
func getTTYPath() string {
	// Check for tmux pane TTY
	if tmuxTTY := env.Str("TMUX_PANE_TTY"); tmuxTTY != "" {
		return tmuxTTY
	}

	// Check for SSH TTY
	if sshTTY := env.Str("SSH_TTY"); sshTTY != "" {
		return sshTTY
	}

	// Default to /dev/tty
	defaultTTY := "/dev/tty"
	if _, err := os.Stat(defaultTTY); err == nil {
		return defaultTTY
	}

	// Fallback to stdin if /dev/tty unavailable
	return "/dev/stdin"
}

// Events returns the key events for every byte that is waiting on the tty.
// It waits at most the read timeout when nothing is waiting.
func (tty *TTY) Events() []Event {
	var data []byte
	for {
		n, err := tty.t.Read(tty.buf)
		if n > 0 {
			data = append(data, tty.buf[:n]...)
		}
		if err != nil || n < len(tty.buf) {
			break
		}
	}
	if len(data) == 0 {
		return nil
	}
	return parseKeys(data)
}

// Close will restore and close the raw terminal
func (tty *TTY) Close() {
	tty.t.Restore()
	tty.t.Close()
}
