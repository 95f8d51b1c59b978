package vcon

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/xyproto/env/v2"
)

const (
	cursorHome      = "\033[H"
	resetDevice     = "\033c"
	eraseScreen     = "\033[2J"
	enableLineWrap  = "\033[?7h"
	disableLineWrap = "\033[?7l"
	showCursor      = "\033[?25h"
	hideCursor      = "\033[?25l"
	titleTemplate   = "\033]0;%s\a"
)

// NoColor is the escape sequence for resetting all terminal colour attributes.
const NoColor string = "\033[0m"

// Multiplexed is true when running inside TMUX, GNU Screen or Zellij.
// Multiplexers intercept the hard reset and reset their own pane state.
var Multiplexed = env.Has("TMUX") || env.Has("STY") || env.Has("ZELLIJ")

// TerminalBackend draws the console on the controlling terminal with plain
// escape sequences and reads keys from the tty in raw mode.
// One unit is one character cell. Ctrl-C is reported as a quit event.
type TerminalBackend struct {
	out    io.Writer
	tty    *TTY
	canvas *Canvas
	resize *resizeWatcher
	clock  *Clock
	sound  SoundPlayer
	bg     RGB
	w, h   int
}

// NewTerminalBackend returns a backend for the terminal the process runs in.
// A nil sound player means NewSpeaker().
func NewTerminalBackend(sound SoundPlayer) *TerminalBackend {
	if sound == nil {
		sound = NewSpeaker()
	}
	return &TerminalBackend{out: os.Stdout, clock: NewClock(), sound: sound}
}

// Open switches the terminal to raw mode and prepares it for full screen
// drawing. The window size of the options is ignored, the terminal size is used.
func (b *TerminalBackend) Open(opts WindowOptions) error {
	if b.tty != nil {
		return nil
	}
	tty, err := NewTTY()
	if err != nil {
		return fmt.Errorf("opening tty: %w", err)
	}
	b.tty = tty
	w, h := termSize()
	b.w, b.h = int(w), int(h)
	b.canvas = NewCanvas(w, h, White, Black)
	b.resize = watchResize()
	b.clock.Reset()

	var sb strings.Builder
	if !Multiplexed {
		sb.WriteString(resetDevice)
	}
	if opts.Title != "" {
		fmt.Fprintf(&sb, titleTemplate, opts.Title)
	}
	sb.WriteString(eraseScreen)
	sb.WriteString(hideCursor)
	sb.WriteString(disableLineWrap)
	_, err = io.WriteString(b.out, sb.String())
	return err
}

// Close restores the terminal to a usable interactive state and clears the
// screen, so that console content does not bleed into the shell session.
func (b *TerminalBackend) Close() error {
	if b.tty == nil {
		return nil
	}
	b.resize.stop()
	b.tty.Close()
	b.tty = nil
	_, err := io.WriteString(b.out, NoColor+enableLineWrap+showCursor+eraseScreen+cursorHome)
	return err
}

// SetIcon checks that the icon decodes. Terminals have no window icon.
func (b *TerminalBackend) SetIcon(path string) error {
	_, err := decodeIcon(path)
	return err
}

// LoadFont accepts any font, since the terminal renders text with its own font.
func (b *TerminalBackend) LoadFont(path string, size int) (Font, error) {
	return &cellFont{path: path, size: size}, nil
}

// Measure returns the number of cells text occupies, and a height of one row.
func (b *TerminalBackend) Measure(_ Font, text string) (int, int) {
	return runewidth.StringWidth(text), 1
}

func (b *TerminalBackend) RenderGlyph(_ Font, text string, fg RGB, _ bool) (Surface, error) {
	return newCellSurface(text, fg), nil
}

func (b *TerminalBackend) Fill(bg RGB) {
	if b.canvas == nil {
		return
	}
	b.bg = bg
	b.canvas.Fill(bg)
}

func (b *TerminalBackend) Blit(s Surface, x, y int) {
	cs, ok := s.(*cellSurface)
	if !ok || b.canvas == nil || y >= b.h {
		return
	}
	b.canvas.WriteString(x, y, cs.fg, b.bg, string(cs.runes))
}

func (b *TerminalBackend) PollEvents() []Event {
	if b.tty == nil {
		return nil
	}
	var events []Event
	if b.resize.pending() {
		w, h := termSize()
		events = append(events, Event{Type: EventResize, Width: int(w), Height: int(h)})
	}
	return append(events, b.tty.Events()...)
}

func (b *TerminalBackend) Present() error {
	if b.canvas == nil || b.tty == nil {
		return fmt.Errorf("present: %w", ErrClosed)
	}
	return b.canvas.Draw(b.out)
}

func (b *TerminalBackend) Tick(fps int) int {
	return b.clock.Tick(fps)
}

func (b *TerminalBackend) PlaySound(path string) error {
	return b.sound.Play(path)
}

// Release closes the sound player.
func (b *TerminalBackend) Release() error {
	return b.sound.Close()
}

func (b *TerminalBackend) Size() (int, int) {
	return b.w, b.h
}

// Resize records the new viewport size, limited to the terminal size,
// and redraws everything on the next Present.
func (b *TerminalBackend) Resize(w, h int) {
	tw, th := termSize()
	b.w, b.h = min(w, int(tw)), min(h, int(th))
	if b.canvas != nil {
		b.canvas.Resize(tw, th)
		b.canvas.Redraw()
	}
}
