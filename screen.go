package vcon

import (
	"fmt"
	"unicode"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

// cellFont is the font of the terminal backends: the terminal draws the
// glyphs itself, so only the requested path and size are kept.
type cellFont struct {
	path string
	size int
}

func (f *cellFont) Size() int {
	return f.size
}

// cellSurface is a run of runes with one colour, measured in cells.
type cellSurface struct {
	runes []rune
	fg    RGB
	width int
}

func (s *cellSurface) Bounds() (int, int) {
	return s.width, 1
}

func newCellSurface(text string, fg RGB) *cellSurface {
	return &cellSurface{runes: []rune(text), fg: fg, width: runewidth.StringWidth(text)}
}

// ScreenBackend draws the console on a terminal through tcell.
// One unit is one character cell. Ctrl-C is reported as a quit event.
type ScreenBackend struct {
	newScreen func() (tcell.Screen, error)
	screen    tcell.Screen
	clock     *Clock
	sound     SoundPlayer
	bg        RGB
	opts      WindowOptions
	w, h      int
}

// NewScreenBackend returns a backend for the terminal the process runs in.
// A nil sound player means NewSpeaker().
func NewScreenBackend(sound SoundPlayer) *ScreenBackend {
	return newScreenBackend(tcell.NewScreen, sound)
}

// NewSimulationBackend returns a backend that draws on a tcell simulation
// screen of the given size, for tests and headless use.
func NewSimulationBackend(w, h int, sound SoundPlayer) (*ScreenBackend, tcell.SimulationScreen) {
	sim := tcell.NewSimulationScreen("UTF-8")
	b := newScreenBackend(func() (tcell.Screen, error) {
		return sim, nil
	}, sound)
	b.w, b.h = w, h
	return b, sim
}

func newScreenBackend(newScreen func() (tcell.Screen, error), sound SoundPlayer) *ScreenBackend {
	if sound == nil {
		sound = NewSpeaker()
	}
	return &ScreenBackend{
		newScreen: newScreen,
		clock:     NewClock(),
		sound:     sound,
	}
}

// Open initializes the terminal screen. The window size of the options is
// ignored for a real terminal, which always uses its own size.
func (b *ScreenBackend) Open(opts WindowOptions) error {
	if b.screen != nil {
		return nil
	}
	s, err := b.newScreen()
	if err != nil {
		return err
	}
	if err := s.Init(); err != nil {
		return err
	}
	if sim, ok := s.(tcell.SimulationScreen); ok && b.w > 0 && b.h > 0 {
		sim.SetSize(b.w, b.h)
	}
	s.HideCursor()
	b.screen = s
	b.opts = opts
	b.w, b.h = s.Size()
	b.clock.Reset()
	return nil
}

// Close restores the terminal.
func (b *ScreenBackend) Close() error {
	if b.screen == nil {
		return nil
	}
	b.screen.Fini()
	b.screen = nil
	return nil
}

// SetIcon checks that the icon decodes. Terminals have no window icon.
func (b *ScreenBackend) SetIcon(path string) error {
	_, err := decodeIcon(path)
	return err
}

// LoadFont accepts any font, since the terminal renders text with its own font.
func (b *ScreenBackend) LoadFont(path string, size int) (Font, error) {
	return &cellFont{path: path, size: size}, nil
}

// Measure returns the number of cells text occupies, and a height of one row.
func (b *ScreenBackend) Measure(_ Font, text string) (int, int) {
	return runewidth.StringWidth(text), 1
}

func (b *ScreenBackend) RenderGlyph(_ Font, text string, fg RGB, _ bool) (Surface, error) {
	return newCellSurface(text, fg), nil
}

func tcellColour(c RGB) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

func (b *ScreenBackend) Fill(bg RGB) {
	if b.screen == nil {
		return
	}
	b.bg = bg
	b.screen.Fill(' ', tcell.StyleDefault.Background(tcellColour(bg)))
}

// Blit draws a surface with its top left corner in cell (x, y).
// Cells outside the viewport are skipped.
func (b *ScreenBackend) Blit(s Surface, x, y int) {
	cs, ok := s.(*cellSurface)
	if !ok || b.screen == nil || y < 0 || y >= b.h {
		return
	}
	style := tcell.StyleDefault.Foreground(tcellColour(cs.fg)).Background(tcellColour(b.bg))
	for _, r := range cs.runes {
		rw := runewidth.RuneWidth(r)
		if x >= 0 && x+rw <= b.w {
			b.screen.SetContent(x, y, r, nil, style)
		}
		x += rw
	}
}

func (b *ScreenBackend) PollEvents() []Event {
	if b.screen == nil {
		return nil
	}
	var events []Event
	for b.screen.HasPendingEvent() {
		if ev, ok := convertEvent(b.screen.PollEvent()); ok {
			events = append(events, ev)
		}
	}
	return events
}

// convertEvent converts tcell events to our Event type.
func convertEvent(ev tcell.Event) (Event, bool) {
	switch e := ev.(type) {
	case *tcell.EventKey:
		mods := convertMod(e.Modifiers())
		switch e.Key() {
		case tcell.KeyRune:
			// the terminal has already applied shift, so only letters keep it
			r := e.Rune()
			if unicode.IsUpper(r) {
				return RunePress(unicode.ToLower(r), mods|ModShift), true
			}
			return RunePress(r, mods&^ModShift), true
		case tcell.KeyEnter:
			return KeyPress(KeyReturn, 0, mods), true
		case tcell.KeyBackspace, tcell.KeyBackspace2:
			return KeyPress(KeyBackspace, 0, mods), true
		case tcell.KeyCtrlC:
			return Event{Type: EventQuit}, true
		}
		if k, ok := tcellKeys[e.Key()]; ok {
			return KeyPress(k, 0, mods), true
		}
	case *tcell.EventResize:
		w, h := e.Size()
		return Event{Type: EventResize, Width: w, Height: h}, true
	}
	return Event{}, false
}

var tcellKeys = map[tcell.Key]Key{
	tcell.KeyTab:    KeyTab,
	tcell.KeyEscape: KeyEscape,
	tcell.KeyDelete: KeyDelete,
	tcell.KeyUp:     KeyUp,
	tcell.KeyDown:   KeyDown,
	tcell.KeyLeft:   KeyLeft,
	tcell.KeyRight:  KeyRight,
	tcell.KeyHome:   KeyHome,
	tcell.KeyEnd:    KeyEnd,
	tcell.KeyPgUp:   KeyPageUp,
	tcell.KeyPgDn:   KeyPageDown,
}

func convertMod(m tcell.ModMask) int {
	mods := ModNone
	if m&tcell.ModShift != 0 {
		mods |= ModShift
	}
	if m&tcell.ModCtrl != 0 {
		mods |= ModCtrl
	}
	if m&tcell.ModAlt != 0 {
		mods |= ModAlt
	}
	return mods
}

func (b *ScreenBackend) Present() error {
	if b.screen == nil {
		return fmt.Errorf("present: %w", ErrClosed)
	}
	b.screen.Show()
	return nil
}

func (b *ScreenBackend) Tick(fps int) int {
	return b.clock.Tick(fps)
}

func (b *ScreenBackend) PlaySound(path string) error {
	return b.sound.Play(path)
}

// Release closes the sound player.
func (b *ScreenBackend) Release() error {
	return b.sound.Close()
}

func (b *ScreenBackend) Size() (int, int) {
	return b.w, b.h
}

// Resize records the new viewport size, limited to the terminal size.
func (b *ScreenBackend) Resize(w, h int) {
	if b.screen != nil {
		sw, sh := b.screen.Size()
		w, h = min(w, sw), min(h, sh)
	}
	b.w, b.h = w, h
}
