package vcon

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"
)

// Console is a line oriented text console drawn through a Backend.
//
// Every call that changes what is visible ends with one display cycle:
// tick the clock, clear the window, poll events, blit every glyph and present.
// Blocking calls (ReadKey with wait, ReadLine and Sleep) keep running display
// cycles until their condition is met, so the window stays responsive.
// A Console is not safe for concurrent use.
type Console struct {
	// Logger receives diagnostic messages. It discards them by default.
	Logger *log.Logger
	// Exit is called after a quit event when full_quit is enabled.
	Exit func(code int)

	cfg     Config
	backend Backend
	font    Font
	frame   *FrameBuffer
	input   *InputState
	fg, bg  RGB
	runTime int
	hidden  bool
	closed  bool
}

// New configures a console, opens its window and draws the first frame.
func New(b Backend, opts Options) (*Console, error) {
	cfg := DefaultConfig()
	if err := cfg.Apply(opts); err != nil {
		return nil, err
	}
	return NewWithConfig(b, cfg)
}

// NewWithConfig is like New, but takes a complete Config.
func NewWithConfig(b Backend, cfg Config) (*Console, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Console{
		Logger:  log.New(io.Discard, "vcon: ", log.LstdFlags),
		Exit:    os.Exit,
		cfg:     cfg,
		backend: b,
		input:   NewInputState(),
		fg:      cfg.DefaultForeground,
		bg:      cfg.DefaultBackground,
	}
	if err := c.open(); err != nil {
		return nil, err
	}
	w, h := b.Measure(c.font, "O")
	c.frame = NewFrameBuffer(b, c.font, w, h)
	if err := c.update(); err != nil {
		return nil, err
	}
	return c, nil
}

// open creates the window and loads the font and icon.
func (c *Console) open() error {
	if err := c.backend.Open(c.cfg.WindowOptions()); err != nil {
		return fmt.Errorf("opening window: %w", err)
	}
	if c.cfg.Icon != "" {
		if err := c.backend.SetIcon(c.cfg.Icon); err != nil {
			c.backend.Close()
			return fmt.Errorf("setting icon: %w", err)
		}
	}
	if c.font == nil {
		f, err := c.backend.LoadFont(c.cfg.Font, c.cfg.FontSize)
		if err != nil {
			c.backend.Close()
			return fmt.Errorf("loading font: %w", err)
		}
		c.font = f
	}
	return nil
}

// Config returns the configuration the console was created with.
func (c *Console) Config() Config {
	return c.cfg
}

// update runs one display cycle.
func (c *Console) update() error {
	c.runTime += c.backend.Tick(c.cfg.FPS)
	c.backend.Fill(c.bg)

	events := c.backend.PollEvents()
	quit := false
	for _, ev := range events {
		switch ev.Type {
		case EventQuit:
			quit = true
		case EventResize:
			c.resize(ev.Width, ev.Height)
		}
	}
	c.input.Step(events)
	if quit {
		return c.handleQuit()
	}

	for _, g := range c.frame.Glyphs() {
		c.backend.Blit(g.Surface(), g.X, g.Y)
	}
	return c.backend.Present()
}

func (c *Console) resize(w, h int) {
	if !c.cfg.Resizable {
		return
	}
	cw, ch := c.cfg.WindowOptions().Clamp(w, h)
	if cw != w || ch != h {
		c.Logger.Printf("resize to %dx%d clamped to %dx%d", w, h, cw, ch)
	}
	c.backend.Resize(cw, ch)
}

func (c *Console) handleQuit() error {
	if !c.cfg.FullQuit {
		c.Logger.Println("quit event, hiding the window")
		if err := c.Hide(); err != nil {
			return err
		}
		return ErrQuit
	}
	c.Logger.Println("quit event, exiting")
	if err := c.Quit(); err != nil {
		c.Logger.Printf("quit: %v", err)
	}
	if c.Exit != nil {
		c.Exit(0)
	}
	return ErrQuit
}

// refresh runs a display cycle unless the window is hidden.
func (c *Console) refresh() error {
	if c.hidden {
		return nil
	}
	return c.update()
}

func (c *Console) check() error {
	if c.closed {
		return ErrClosed
	}
	return nil
}

func (c *Console) enforceBounds() {
	_, h := c.backend.Size()
	if _, dropped := c.frame.EnforceBounds(h, c.cfg.LineCutoff); dropped > 0 {
		c.Logger.Printf("dropped %d lines over the cutoff of %d", dropped, c.cfg.LineCutoff)
	}
}

// Write writes text at the cursor, without a line break.
func (c *Console) Write(text string) error {
	if err := c.check(); err != nil {
		return err
	}
	if err := c.frame.Append(text, c.fg, c.cfg.Antialiasing); err != nil {
		return err
	}
	c.enforceBounds()
	return c.refresh()
}

// WriteLine writes text at the cursor and moves the cursor to the next line,
// scrolling when the next line would not fit.
func (c *Console) WriteLine(text string) error {
	if err := c.check(); err != nil {
		return err
	}
	if err := c.frame.Append(text, c.fg, c.cfg.Antialiasing); err != nil {
		return err
	}
	c.frame.NewLine()
	c.enforceBounds()
	return c.refresh()
}

// Clear removes all text and moves the cursor to the top left corner.
func (c *Console) Clear() error {
	if err := c.check(); err != nil {
		return err
	}
	c.frame.Clear()
	return c.refresh()
}

// ReadKey returns the key pressed during the next display cycle.
// With wait, it keeps running display cycles until a key is pressed.
// Without wait, ok is false when no key was pressed.
// Characters typed but not yet read by ReadLine are discarded.
func (c *Console) ReadKey(wait bool) (k Keystroke, ok bool, err error) {
	if err := c.readable(); err != nil {
		return Keystroke{}, false, err
	}
	for {
		if err := c.update(); err != nil {
			return Keystroke{}, false, err
		}
		k, ok = c.input.Key()
		if ok || !wait {
			break
		}
	}
	c.input.Consume()
	return k, ok, nil
}

// ReadLine writes the prompt, then echoes typed characters until return is
// pressed. Backspace removes the last character. The cursor ends up at the
// start of the next line.
func (c *Console) ReadLine(prompt string) (string, error) {
	if err := c.readable(); err != nil {
		return "", err
	}
	// no display cycle here: every key must reach the loop below
	if prompt != "" {
		if err := c.frame.Append(prompt, c.fg, c.cfg.Antialiasing); err != nil {
			return "", err
		}
	}

	// the echo glyph is rewritten in place as the line changes
	echo := c.input.Line()
	if err := c.frame.Append(echo, c.fg, c.cfg.Antialiasing); err != nil {
		return "", err
	}
	for {
		if err := c.update(); err != nil {
			if errors.Is(err, ErrQuit) {
				// the partial line stays on screen and the next write starts below it
				c.input.Consume()
				c.frame.NewLine()
			}
			return "", err
		}
		if line := c.input.Line(); line != echo {
			echo = line
			if err := c.frame.ReplaceLast(echo); err != nil {
				return "", err
			}
		}
		if c.input.ReturnPressed() {
			break
		}
	}
	c.input.Consume()
	c.frame.NewLine()
	c.enforceBounds()
	return echo, c.refresh()
}

func (c *Console) readable() error {
	if err := c.check(); err != nil {
		return err
	}
	if c.hidden {
		return ErrHidden
	}
	return nil
}

// Beep plays the configured beep sound.
func (c *Console) Beep() error {
	if err := c.check(); err != nil {
		return err
	}
	if c.cfg.BeepSound == "" {
		return configErrorf("beep_sound", "the beep sound file was not provided")
	}
	return c.backend.PlaySound(c.cfg.BeepSound)
}

// SetForeground sets the colour of text written from now on.
func (c *Console) SetForeground(fg RGB) {
	c.fg = fg
}

// SetBackground sets the window background colour.
func (c *Console) SetBackground(bg RGB) {
	c.bg = bg
}

// Colours returns the current foreground and background colours.
func (c *Console) Colours() (fg, bg RGB) {
	return c.fg, c.bg
}

// ResetColour restores the configured default foreground and background colours.
func (c *Console) ResetColour() {
	c.fg = c.cfg.DefaultForeground
	c.bg = c.cfg.DefaultBackground
}

// Size returns the number of character columns and rows that fit in the window.
func (c *Console) Size() (int, int) {
	w, h := c.backend.Size()
	cw, ch := c.frame.CellSize()
	return w / cw, h / ch
}

// Sleep keeps running display cycles until at least d has passed on the
// console clock.
func (c *Console) Sleep(d time.Duration) error {
	if err := c.check(); err != nil {
		return err
	}
	if c.hidden {
		time.Sleep(d)
		return nil
	}
	ms := int(d / time.Millisecond)
	start := c.runTime
	for c.runTime-start < ms {
		if err := c.update(); err != nil {
			return err
		}
	}
	return nil
}

// RunTime returns the milliseconds counted by the console clock.
func (c *Console) RunTime() int {
	return c.runTime
}

// Lines returns the text currently held by the frame buffer, oldest first.
func (c *Console) Lines() []string {
	return c.frame.Lines()
}

// Cursor returns the cursor row and column.
func (c *Console) Cursor() (int, int) {
	return c.frame.Cursor()
}

// Hidden reports whether the window is hidden.
func (c *Console) Hidden() bool {
	return c.hidden
}

// Hide closes the window but keeps the console and its text.
func (c *Console) Hide() error {
	if err := c.check(); err != nil {
		return err
	}
	if c.hidden {
		return nil
	}
	c.hidden = true
	return c.backend.Close()
}

// Show opens the window again after Hide.
func (c *Console) Show() error {
	if err := c.check(); err != nil {
		return err
	}
	if !c.hidden {
		return nil
	}
	if err := c.open(); err != nil {
		return err
	}
	c.hidden = false
	c.input = NewInputState()
	return c.update()
}

// Quit closes the window and releases the backend, including a hidden one.
// Every later call returns ErrClosed. Calling Quit again does nothing.
func (c *Console) Quit() error {
	if c.closed {
		return nil
	}
	c.closed = true
	var err error
	if !c.hidden {
		c.hidden = true
		if cerr := c.backend.Close(); cerr != nil && !errors.Is(cerr, ErrClosed) {
			err = cerr
		}
	}
	if r, ok := c.backend.(Releaser); ok {
		if rerr := r.Release(); rerr != nil && err == nil {
			err = rerr
		}
	}
	return err
}
