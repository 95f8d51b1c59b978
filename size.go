package vcon

import (
	"os"

	"github.com/xyproto/env/v2"
	"golang.org/x/term"
)

// termSize returns the current terminal width and height
func termSize() (uint, uint) {
	fd := int(os.Stdout.Fd())
	if term.IsTerminal(fd) {
		width, height, err := term.GetSize(fd)
		if err == nil && width > 0 && height > 0 {
			return uint(width), uint(height)
		}
	}

	// Fallback to environment variables
	var w uint = 79
	if cols := env.Int("COLS", 0); cols > 0 {
		w = uint(cols)
	} else if cols := env.Int("COLUMNS", 0); cols > 0 {
		w = uint(cols)
	}
	var h uint = 25
	if lines := env.Int("LINES", 0); lines > 0 {
		h = uint(lines)
	}
	return w, h
}
