package vcon

import (
	"errors"
	"slices"
	"unicode/utf8"
)

// FrameBuffer is the ordered list of glyphs on the console, oldest first,
// together with the write cursor.
type FrameBuffer struct {
	r         Renderer
	font      Font
	glyphs    []*Glyph
	row, col  int
	rowHeight int
	colWidth  int
}

// NewFrameBuffer returns an empty frame buffer that renders with r and f.
// colWidth and rowHeight are the size of one character cell.
func NewFrameBuffer(r Renderer, f Font, colWidth, rowHeight int) *FrameBuffer {
	if colWidth < 1 {
		colWidth = 1
	}
	if rowHeight < 1 {
		rowHeight = 1
	}
	return &FrameBuffer{
		r:         r,
		font:      f,
		colWidth:  colWidth,
		rowHeight: rowHeight,
	}
}

// Append renders text at the cursor and moves the cursor past it.
func (fb *FrameBuffer) Append(text string, fg RGB, antialias bool) error {
	g, err := newGlyph(fb.r, fb.font, text, fb.col*fb.colWidth, fb.row*fb.rowHeight, fg, antialias)
	if err != nil {
		return err
	}
	g.col = fb.col
	fb.glyphs = append(fb.glyphs, g)
	fb.col += utf8.RuneCountInString(text)
	return nil
}

// ReplaceLast re-renders the newest glyph with new text, in place.
// The cursor column follows the end of the new text.
func (fb *FrameBuffer) ReplaceLast(text string) error {
	if len(fb.glyphs) == 0 {
		return errors.New("no glyph to replace")
	}
	g := fb.glyphs[len(fb.glyphs)-1]
	old := g.Text
	g.Text = text
	if err := g.Render(fb.r); err != nil {
		g.Text = old
		return err
	}
	fb.col = g.col + utf8.RuneCountInString(text)
	return nil
}

// NewLine moves the cursor to the start of the next row.
func (fb *FrameBuffer) NewLine() {
	fb.row++
	fb.col = 0
}

// Clear removes every glyph and moves the cursor to the origin.
func (fb *FrameBuffer) Clear() {
	fb.glyphs = nil
	fb.row = 0
	fb.col = 0
}

// EnforceBounds scrolls and then trims the buffer.
//
// Scrolling moves every glyph up by one row while the cursor row would not
// fit in a viewport of the given height. Trimming then drops the oldest glyphs
// until at most cutoff remain. It returns the number of scrolled rows and
// dropped glyphs.
func (fb *FrameBuffer) EnforceBounds(viewportHeight, cutoff int) (scrolled, dropped int) {
	for fb.row > 0 && (fb.row+1)*fb.rowHeight > viewportHeight {
		for _, g := range fb.glyphs {
			g.Y -= fb.rowHeight
		}
		fb.row--
		scrolled++
	}
	if cutoff >= 0 && len(fb.glyphs) > cutoff {
		dropped = len(fb.glyphs) - cutoff
		fb.glyphs = slices.Delete(fb.glyphs, 0, dropped)
	}
	return scrolled, dropped
}

// Glyphs returns the glyphs in display order. The slice must not be modified.
func (fb *FrameBuffer) Glyphs() []*Glyph {
	return fb.glyphs
}

// Lines returns the text of every glyph in display order.
func (fb *FrameBuffer) Lines() []string {
	lines := make([]string, len(fb.glyphs))
	for i, g := range fb.glyphs {
		lines[i] = g.Text
	}
	return lines
}

// Len returns the number of glyphs.
func (fb *FrameBuffer) Len() int {
	return len(fb.glyphs)
}

// Cursor returns the cursor row and column.
func (fb *FrameBuffer) Cursor() (int, int) {
	return fb.row, fb.col
}

// CellSize returns the width and height of one character cell.
func (fb *FrameBuffer) CellSize() (int, int) {
	return fb.colWidth, fb.rowHeight
}
