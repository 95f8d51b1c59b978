package vcon

import (
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/mattn/go-runewidth"
)

// ColorRune holds a single terminal cell: its rune, foreground/background colours
// and its column width (for wide/CJK characters).
type ColorRune struct {
	fg RGB
	bg RGB
	r  rune  // The character to draw
	cw uint8 // Column width: 0=normal(1-col), 1=continuation(skip), 2=wide(2-col)
}

// Canvas holds a 2-D grid of coloured characters and draws the changes
// since the previous frame as escape sequences.
type Canvas struct {
	mut      *sync.RWMutex
	chars    []ColorRune
	oldchars []ColorRune
	w        uint
	h        uint
}

// NewCanvas creates a canvas of the given size, filled with blanks
// in the given colours.
func NewCanvas(w, h uint, fg, bg RGB) *Canvas {
	c := &Canvas{
		mut:   &sync.RWMutex{},
		chars: make([]ColorRune, w*h),
		w:     w,
		h:     h,
	}
	for i := range c.chars {
		c.chars[i].fg = fg
		c.chars[i].bg = bg
	}
	return c
}

// Size returns the width and height of the canvas.
func (c *Canvas) Size() (uint, uint) {
	c.mut.RLock()
	defer c.mut.RUnlock()
	return c.w, c.h
}

// Fill blanks every cell and sets its background colour.
func (c *Canvas) Fill(bg RGB) {
	c.mut.Lock()
	defer c.mut.Unlock()
	for i := range c.chars {
		c.chars[i] = ColorRune{fg: c.chars[i].fg, bg: bg}
	}
}

// String returns the canvas contents as plain text, one row per line.
func (c *Canvas) String() string {
	var sb strings.Builder
	c.mut.RLock()
	for y := uint(0); y < c.h; y++ {
		for x := uint(0); x < c.w; x++ {
			cr := &c.chars[y*c.w+x]
			switch {
			case cr.cw == 1:
				continue
			case cr.r == rune(0):
				sb.WriteRune(' ')
			default:
				sb.WriteRune(cr.r)
			}
		}
		sb.WriteRune('\n')
	}
	c.mut.RUnlock()
	return sb.String()
}

// At returns the rune at (x, y), or an error if out of bounds.
func (c *Canvas) At(x, y uint) (rune, error) {
	c.mut.RLock()
	defer c.mut.RUnlock()
	if x >= c.w || y >= c.h {
		return rune(0), errors.New("out of bounds")
	}
	return c.chars[y*c.w+x].r, nil
}

// WriteString writes a string to the canvas starting at (x, y) with the given
// colours. Wide runes take two cells. Text past the right edge is cut off.
func (c *Canvas) WriteString(x, y int, fg, bg RGB, s string) {
	c.mut.Lock()
	defer c.mut.Unlock()
	if y < 0 || y >= int(c.h) {
		return
	}
	row := y * int(c.w)
	for _, r := range s {
		rw := runewidth.RuneWidth(r)
		if rw == 0 {
			continue
		}
		if x >= 0 && x+rw <= int(c.w) {
			if rw == 2 {
				c.chars[row+x] = ColorRune{fg, bg, r, 2}
				c.chars[row+x+1] = ColorRune{fg, bg, 0, 1}
			} else {
				c.chars[row+x] = ColorRune{fg, bg, r, 0}
			}
		}
		x += rw
	}
}

// Draw writes the escape sequences that bring the terminal up to date with
// the canvas to out. Nothing is written when no cell changed since the
// previous Draw.
func (c *Canvas) Draw(out io.Writer) error {
	var (
		sb     strings.Builder
		lastfg RGB
		lastbg RGB
	)

	c.mut.Lock()
	defer c.mut.Unlock()

	if len(c.chars) == 0 {
		return nil
	}

	firstRun := len(c.oldchars) != len(c.chars)
	changed := firstRun

	// The bottom right cell is skipped, writing it would scroll the terminal
	size := len(c.chars) - 1
	sb.Grow(size)
	sb.WriteString(cursorHome)
	for index := range size {
		cr := c.chars[index]
		if !firstRun && cr != c.oldchars[index] {
			changed = true
		}
		if cr.cw == 1 {
			continue // continuation of a wide character
		}
		// Only emit a colour code when it differs from the previous cell
		if index == 0 || lastfg != cr.fg || lastbg != cr.bg {
			sb.WriteString(cr.fg.ansiCode(cr.bg))
		}
		if cr.r != 0 {
			sb.WriteRune(cr.r)
		} else {
			sb.WriteByte(' ')
		}
		lastfg = cr.fg
		lastbg = cr.bg
	}
	sb.WriteString(NoColor)

	if !changed {
		return nil
	}
	if _, err := io.WriteString(out, sb.String()); err != nil {
		return err
	}

	// Save the current state for the next frame's diff
	if len(c.oldchars) != len(c.chars) {
		c.oldchars = make([]ColorRune, len(c.chars))
	}
	copy(c.oldchars, c.chars)
	return nil
}

// Redraw makes the next Draw write every cell, even if nothing changed.
func (c *Canvas) Redraw() {
	c.mut.Lock()
	c.oldchars = nil
	c.mut.Unlock()
}

// Resize changes the canvas size, keeping the content that still fits.
func (c *Canvas) Resize(w, h uint) {
	c.mut.Lock()
	defer c.mut.Unlock()
	if w == c.w && h == c.h {
		return
	}
	chars := make([]ColorRune, w*h)
	for y := uint(0); y < min(c.h, h); y++ {
		for x := uint(0); x < min(c.w, w); x++ {
			chars[y*w+x] = c.chars[y*c.w+x]
		}
	}
	c.chars = chars
	c.w = w
	c.h = h
	c.oldchars = nil
}
