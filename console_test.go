package vcon

import (
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"
	"unicode/utf8"
)

const (
	fakeColW = 8
	fakeRowH = 10
)

type fakeFont struct{ size int }

func (f fakeFont) Size() int { return f.size }

type fakeSurface struct {
	text string
	fg   RGB
}

func (s *fakeSurface) Bounds() (int, int) {
	return utf8.RuneCountInString(s.text) * fakeColW, fakeRowH
}

type blit struct {
	text string
	x, y int
}

// fakeBackend records calls and replays queued events, one batch per poll.
type fakeBackend struct {
	w, h     int
	queue    [][]Event
	tick     int
	opens    int
	closes   int
	releases int
	polls    int
	presents int
	fills    []RGB
	blits    []blit
	sounds   []string
	icons    []string
	fontErr  error
	resized  [][2]int
}

func newFakeBackend(w, h int) *fakeBackend {
	return &fakeBackend{w: w, h: h, tick: 16}
}

func (b *fakeBackend) push(events ...Event) {
	b.queue = append(b.queue, events)
}

func (b *fakeBackend) Open(opts WindowOptions) error {
	b.opens++
	return nil
}

func (b *fakeBackend) Close() error {
	b.closes++
	return nil
}

func (b *fakeBackend) Release() error {
	b.releases++
	return nil
}

func (b *fakeBackend) SetIcon(path string) error {
	b.icons = append(b.icons, path)
	return nil
}

func (b *fakeBackend) LoadFont(path string, size int) (Font, error) {
	if b.fontErr != nil {
		return nil, b.fontErr
	}
	return fakeFont{size}, nil
}

func (b *fakeBackend) Measure(_ Font, text string) (int, int) {
	return utf8.RuneCountInString(text) * fakeColW, fakeRowH
}

func (b *fakeBackend) RenderGlyph(_ Font, text string, fg RGB, _ bool) (Surface, error) {
	return &fakeSurface{text: text, fg: fg}, nil
}

func (b *fakeBackend) Fill(bg RGB) {
	b.fills = append(b.fills, bg)
	b.blits = b.blits[:0]
}

func (b *fakeBackend) Blit(s Surface, x, y int) {
	b.blits = append(b.blits, blit{s.(*fakeSurface).text, x, y})
}

func (b *fakeBackend) PollEvents() []Event {
	b.polls++
	if len(b.queue) == 0 {
		return nil
	}
	events := b.queue[0]
	b.queue = b.queue[1:]
	return events
}

func (b *fakeBackend) Present() error {
	b.presents++
	return nil
}

func (b *fakeBackend) Tick(int) int {
	return b.tick
}

func (b *fakeBackend) PlaySound(path string) error {
	b.sounds = append(b.sounds, path)
	return nil
}

func (b *fakeBackend) Size() (int, int) {
	return b.w, b.h
}

func (b *fakeBackend) Resize(w, h int) {
	b.resized = append(b.resized, [2]int{w, h})
	b.w, b.h = w, h
}

func newTestConsole(t *testing.T, b *fakeBackend, opts Options) *Console {
	t.Helper()
	all := Options{"font": "test.ttf"}
	for k, v := range opts {
		all[k] = v
	}
	c, err := New(b, all)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	c.Exit = func(int) {
		t.Fatal("unexpected exit")
	}
	return c
}

func lineNames(from, to int) []string {
	var names []string
	for i := from; i < to; i++ {
		names = append(names, fmt.Sprintf("L%d", i))
	}
	return names
}

func TestNewRequiresFont(t *testing.T) {
	_, err := New(newFakeBackend(500, 300), nil)
	if !errors.Is(err, ErrConfig) {
		t.Fatalf("expected a configuration error, got %v", err)
	}
}

func TestNewRejectsUnknownOption(t *testing.T) {
	_, err := New(newFakeBackend(500, 300), Options{"font": "x.ttf", "colour": "red"})
	if !errors.Is(err, ErrConfig) {
		t.Fatalf("expected a configuration error, got %v", err)
	}
	var ce *ConfigError
	if !errors.As(err, &ce) || ce.Key != "colour" {
		t.Fatalf("expected the error to name the key, got %v", err)
	}
}

func TestNewPropagatesFontError(t *testing.T) {
	b := newFakeBackend(500, 300)
	b.fontErr = errors.New("no such file")
	_, err := New(b, Options{"font": "missing.ttf"})
	if err == nil || !errors.Is(err, b.fontErr) {
		t.Fatalf("expected the backend error, got %v", err)
	}
	if errors.Is(err, ErrConfig) {
		t.Fatal("a backend error must not be reported as a configuration error")
	}
}

func TestNewSetsIconAndDrawsFrame(t *testing.T) {
	b := newFakeBackend(500, 300)
	newTestConsole(t, b, Options{"icon": "icon.png"})
	if len(b.icons) != 1 || b.icons[0] != "icon.png" {
		t.Fatalf("expected the icon to be set once, got %v", b.icons)
	}
	if b.opens != 1 || b.presents != 1 {
		t.Fatalf("expected one open and one frame, got %d opens and %d frames", b.opens, b.presents)
	}
}

func TestWriteLineKeepsOrder(t *testing.T) {
	b := newFakeBackend(500, 1000)
	c := newTestConsole(t, b, Options{"line_cutoff": 10})
	for _, s := range lineNames(0, 10) {
		if err := c.WriteLine(s); err != nil {
			t.Fatal(err)
		}
	}
	if got := c.Lines(); !reflect.DeepEqual(got, lineNames(0, 10)) {
		t.Fatalf("got %v", got)
	}
}

func TestWriteLineTrimsOldest(t *testing.T) {
	b := newFakeBackend(500, 1000)
	c := newTestConsole(t, b, Options{"line_cutoff": 10})
	for _, s := range lineNames(0, 15) {
		if err := c.WriteLine(s); err != nil {
			t.Fatal(err)
		}
	}
	if got := c.Lines(); !reflect.DeepEqual(got, lineNames(5, 15)) {
		t.Fatalf("got %v", got)
	}
}

func TestWriteLineScrolls(t *testing.T) {
	b := newFakeBackend(500, 3*fakeRowH)
	c := newTestConsole(t, b, nil)
	for _, s := range lineNames(0, 4) {
		if err := c.WriteLine(s); err != nil {
			t.Fatal(err)
		}
	}
	want := []blit{{"L0", 0, -2 * fakeRowH}, {"L1", 0, -fakeRowH}, {"L2", 0, 0}, {"L3", 0, fakeRowH}}
	if !reflect.DeepEqual(b.blits, want) {
		t.Fatalf("got %v, want %v", b.blits, want)
	}
	if row, col := c.Cursor(); row != 2 || col != 0 {
		t.Fatalf("expected the cursor on the last visible row, got (%d, %d)", row, col)
	}
}

func TestWriteAdvancesColumn(t *testing.T) {
	b := newFakeBackend(500, 300)
	c := newTestConsole(t, b, nil)
	c.Write("ab")
	c.Write("cd")
	want := []blit{{"ab", 0, 0}, {"cd", 2 * fakeColW, 0}}
	if !reflect.DeepEqual(b.blits, want) {
		t.Fatalf("got %v, want %v", b.blits, want)
	}
	if row, col := c.Cursor(); row != 0 || col != 4 {
		t.Fatalf("got cursor (%d, %d)", row, col)
	}
}

func TestClear(t *testing.T) {
	b := newFakeBackend(500, 300)
	c := newTestConsole(t, b, nil)
	c.WriteLine("one")
	c.Write("two")
	if err := c.Clear(); err != nil {
		t.Fatal(err)
	}
	if n := len(c.Lines()); n != 0 {
		t.Fatalf("expected an empty buffer, got %d lines", n)
	}
	if row, col := c.Cursor(); row != 0 || col != 0 {
		t.Fatalf("expected the cursor at the origin, got (%d, %d)", row, col)
	}
	if len(b.blits) != 0 {
		t.Fatalf("expected nothing drawn, got %v", b.blits)
	}
}

func TestReadLineWithBackspace(t *testing.T) {
	b := newFakeBackend(500, 300)
	c := newTestConsole(t, b, nil)
	b.push(RunePress('1', ModNone), RunePress('2', ModNone))
	b.push(KeyPress(KeyBackspace, 0, ModNone))
	b.push(RunePress('5', ModNone))
	b.push(KeyPress(KeyReturn, 0, ModNone))

	line, err := c.ReadLine("> ")
	if err != nil {
		t.Fatal(err)
	}
	if line != "15" {
		t.Fatalf("expected 15, got %q", line)
	}
	if got := c.Lines(); !reflect.DeepEqual(got, []string{"> ", "15"}) {
		t.Fatalf("got %v", got)
	}
	if row, col := c.Cursor(); row != 1 || col != 0 {
		t.Fatalf("expected the cursor on the next line, got (%d, %d)", row, col)
	}
	want := []blit{{"> ", 0, 0}, {"15", 2 * fakeColW, 0}}
	if !reflect.DeepEqual(b.blits, want) {
		t.Fatalf("got %v, want %v", b.blits, want)
	}
}

func TestReadLineEchoFollowsCursor(t *testing.T) {
	b := newFakeBackend(500, 300)
	c := newTestConsole(t, b, nil)
	b.push(RunePress('a', ModNone))
	b.push(RunePress('b', ModShift))
	b.push(KeyPress(KeyBackspace, 0, ModNone))
	b.push(KeyPress(KeyBackspace, 0, ModNone))
	b.push(KeyPress(KeyBackspace, 0, ModNone))
	b.push(RunePress('1', ModShift), KeyPress(KeyReturn, 0, ModNone))

	line, err := c.ReadLine("")
	if err != nil {
		t.Fatal(err)
	}
	if line != "!" {
		t.Fatalf("expected !, got %q", line)
	}
}

func TestReadLineClearsBufferForNextRead(t *testing.T) {
	b := newFakeBackend(500, 300)
	c := newTestConsole(t, b, nil)
	b.push(RunePress('x', ModNone), KeyPress(KeyReturn, 0, ModNone))
	first, err := c.ReadLine("")
	if err != nil {
		t.Fatal(err)
	}
	b.push(RunePress('y', ModNone), KeyPress(KeyReturn, 0, ModNone))
	second, err := c.ReadLine("")
	if err != nil {
		t.Fatal(err)
	}
	if first != "x" || second != "y" {
		t.Fatalf("got %q and %q", first, second)
	}
}

func TestReadKey(t *testing.T) {
	b := newFakeBackend(500, 300)
	c := newTestConsole(t, b, nil)

	if _, ok, err := c.ReadKey(false); err != nil || ok {
		t.Fatalf("expected no key, got ok=%v err=%v", ok, err)
	}

	b.push()
	b.push()
	b.push(RunePress('q', ModNone))
	before := b.polls
	k, ok, err := c.ReadKey(true)
	if err != nil || !ok {
		t.Fatalf("expected a key, got ok=%v err=%v", ok, err)
	}
	if k.Key != KeyRune || k.Rune != 'q' {
		t.Fatalf("expected q, got %v", k)
	}
	if polls := b.polls - before; polls != 3 {
		t.Fatalf("expected 3 display cycles, got %d", polls)
	}
}

func TestReadKeyReturnsSpecialKeys(t *testing.T) {
	b := newFakeBackend(500, 300)
	c := newTestConsole(t, b, nil)
	b.push(KeyPress(KeyReturn, 0, ModNone))
	k, ok, err := c.ReadKey(true)
	if err != nil || !ok || k.Key != KeyReturn {
		t.Fatalf("expected return, got %v ok=%v err=%v", k, ok, err)
	}
}

func TestResetColour(t *testing.T) {
	b := newFakeBackend(500, 300)
	c := newTestConsole(t, b, Options{
		"default_foreground_colour": "lightgreen",
		"default_background_colour": []any{int64(0), int64(0), int64(128)},
	})
	c.SetForeground(Red)
	c.SetBackground(Yellow)
	c.SetForeground(Cyan)
	c.ResetColour()
	fg, bg := c.Colours()
	if fg != LightGreen || bg != DarkBlue {
		t.Fatalf("got %v on %v", fg, bg)
	}
}

func TestForegroundAppliesToNewText(t *testing.T) {
	b := newFakeBackend(500, 300)
	c := newTestConsole(t, b, nil)
	c.SetForeground(Green)
	c.WriteLine("go")
	glyphs := c.frame.Glyphs()
	if glyphs[0].Colour != Green {
		t.Fatalf("expected green text, got %v", glyphs[0].Colour)
	}
	c.SetBackground(Blue)
	c.WriteLine("")
	if last := b.fills[len(b.fills)-1]; last != Blue {
		t.Fatalf("expected a blue background, got %v", last)
	}
}

func TestBeep(t *testing.T) {
	b := newFakeBackend(500, 300)
	c := newTestConsole(t, b, nil)
	if err := c.Beep(); !errors.Is(err, ErrConfig) {
		t.Fatalf("expected a configuration error, got %v", err)
	}
	if len(b.sounds) != 0 {
		t.Fatalf("expected no sound, got %v", b.sounds)
	}

	b = newFakeBackend(500, 300)
	c = newTestConsole(t, b, Options{"beep_sound": "beep.wav"})
	if err := c.Beep(); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(b.sounds, []string{"beep.wav"}) {
		t.Fatalf("expected exactly one beep, got %v", b.sounds)
	}
}

func TestSize(t *testing.T) {
	b := newFakeBackend(400, 300)
	c := newTestConsole(t, b, nil)
	if cols, rows := c.Size(); cols != 400/fakeColW || rows != 300/fakeRowH {
		t.Fatalf("got %dx%d", cols, rows)
	}
}

func TestSleepRunsDisplayCycles(t *testing.T) {
	b := newFakeBackend(500, 300)
	b.tick = 10
	c := newTestConsole(t, b, nil)
	start, presents := c.RunTime(), b.presents
	if err := c.Sleep(50 * time.Millisecond); err != nil {
		t.Fatal(err)
	}
	if elapsed := c.RunTime() - start; elapsed < 50 {
		t.Fatalf("expected at least 50ms on the console clock, got %d", elapsed)
	}
	if frames := b.presents - presents; frames != 5 {
		t.Fatalf("expected 5 frames, got %d", frames)
	}
}

func TestResizeIsClamped(t *testing.T) {
	b := newFakeBackend(500, 300)
	c := newTestConsole(t, b, Options{"default_max_width": 600, "default_min_height": 200})
	b.push(Event{Type: EventResize, Width: 800, Height: 100})
	c.WriteLine("x")
	if !reflect.DeepEqual(b.resized, [][2]int{{600, 200}}) {
		t.Fatalf("got %v", b.resized)
	}
}

func TestResizeIgnoredWhenNotResizeable(t *testing.T) {
	b := newFakeBackend(500, 300)
	c := newTestConsole(t, b, Options{"resizeable": false})
	b.push(Event{Type: EventResize, Width: 800, Height: 100})
	c.WriteLine("x")
	if len(b.resized) != 0 {
		t.Fatalf("got %v", b.resized)
	}
}

func TestQuitEventExits(t *testing.T) {
	b := newFakeBackend(500, 300)
	c := newTestConsole(t, b, nil)
	code := -1
	c.Exit = func(c int) { code = c }
	b.push(Event{Type: EventQuit})

	if _, err := c.ReadLine(""); !errors.Is(err, ErrQuit) {
		t.Fatalf("expected ErrQuit, got %v", err)
	}
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	if b.closes != 1 {
		t.Fatalf("expected the window to be closed once, got %d", b.closes)
	}
	if err := c.WriteLine("x"); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	if err := c.Quit(); err != nil {
		t.Fatal(err)
	}
	if b.closes != 1 {
		t.Fatalf("expected no second teardown, got %d", b.closes)
	}
}

func TestQuitEventHidesWithoutFullQuit(t *testing.T) {
	b := newFakeBackend(500, 300)
	c := newTestConsole(t, b, Options{"full_quit": false})
	c.WriteLine("kept")
	b.push(Event{Type: EventQuit})

	if _, _, err := c.ReadKey(true); !errors.Is(err, ErrQuit) {
		t.Fatalf("expected ErrQuit, got %v", err)
	}
	if !c.Hidden() || b.closes != 1 {
		t.Fatalf("expected a hidden console, hidden=%v closes=%d", c.Hidden(), b.closes)
	}
	if _, err := c.ReadLine(""); !errors.Is(err, ErrHidden) {
		t.Fatalf("expected ErrHidden, got %v", err)
	}
	if err := c.Show(); err != nil {
		t.Fatal(err)
	}
	if b.opens != 2 {
		t.Fatalf("expected the window to be opened again, got %d opens", b.opens)
	}
	if got := c.Lines(); !reflect.DeepEqual(got, []string{"kept"}) {
		t.Fatalf("got %v", got)
	}
}

func TestHideAndShow(t *testing.T) {
	b := newFakeBackend(500, 300)
	c := newTestConsole(t, b, nil)
	if err := c.Hide(); err != nil {
		t.Fatal(err)
	}
	presents := b.presents
	if err := c.WriteLine("while hidden"); err != nil {
		t.Fatal(err)
	}
	if b.presents != presents {
		t.Fatal("expected no frames while hidden")
	}
	if err := c.Show(); err != nil {
		t.Fatal(err)
	}
	if len(b.blits) != 1 || b.blits[0].text != "while hidden" {
		t.Fatalf("expected the text to be drawn after Show, got %v", b.blits)
	}
	if err := c.Quit(); err != nil {
		t.Fatal(err)
	}
	if b.closes != 2 {
		t.Fatalf("expected two closes, got %d", b.closes)
	}
}

func TestQuitReleasesOnce(t *testing.T) {
	b := newFakeBackend(500, 300)
	c := newTestConsole(t, b, nil)
	if err := c.Quit(); err != nil {
		t.Fatal(err)
	}
	if err := c.Quit(); err != nil {
		t.Fatal(err)
	}
	if b.releases != 1 {
		t.Fatalf("expected one release, got %d", b.releases)
	}

	b = newFakeBackend(500, 300)
	c = newTestConsole(t, b, nil)
	if err := c.Hide(); err != nil {
		t.Fatal(err)
	}
	if b.releases != 0 {
		t.Fatal("hiding must keep the backend")
	}
	if err := c.Quit(); err != nil {
		t.Fatal(err)
	}
	if b.releases != 1 || b.closes != 1 {
		t.Fatalf("expected one release and one close, got %d and %d", b.releases, b.closes)
	}
}

func TestReadLineQuitEndsLine(t *testing.T) {
	b := newFakeBackend(500, 300)
	c := newTestConsole(t, b, Options{"full_quit": false})
	b.push(RunePress('a', ModNone))
	b.push(Event{Type: EventQuit})

	if _, err := c.ReadLine("> "); !errors.Is(err, ErrQuit) {
		t.Fatalf("expected ErrQuit, got %v", err)
	}
	if row, col := c.Cursor(); row != 1 || col != 0 {
		t.Fatalf("expected the cursor at the start of the next line, got %d,%d", row, col)
	}
	if err := c.Show(); err != nil {
		t.Fatal(err)
	}
	if err := c.WriteLine("next"); err != nil {
		t.Fatal(err)
	}
	var found bool
	for _, bl := range b.blits {
		if bl.text == "next" {
			found = true
			if bl.x != 0 || bl.y != fakeRowH {
				t.Fatalf("expected next on the second row, got %d,%d", bl.x, bl.y)
			}
		}
	}
	if !found {
		t.Fatalf("next was not drawn, got %v", b.blits)
	}
	if got := c.Lines(); !reflect.DeepEqual(got, []string{"> ", "a", "next"}) {
		t.Fatalf("got %q", got)
	}

	b.push(RunePress('z', ModNone), KeyPress(KeyReturn, 0, ModNone))
	if line, err := c.ReadLine(""); err != nil || line != "z" {
		t.Fatalf("expected only the new input, got %q, %v", line, err)
	}
}
