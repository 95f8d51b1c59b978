package vcon

// Font is a loaded font handle. Its concrete type belongs to the backend that loaded it.
type Font interface {
	// Size returns the point size the font was loaded with.
	Size() int
}

// Surface is a rendered piece of text that a backend can blit.
type Surface interface {
	// Bounds returns the width and height of the surface in backend units.
	Bounds() (int, int)
}

// WindowOptions describe the window a backend should open.
// Zero min/max values mean "no limit".
type WindowOptions struct {
	Title     string
	Width     int
	Height    int
	MinWidth  int
	MinHeight int
	MaxWidth  int
	MaxHeight int
	Resizable bool
}

// Clamp limits a requested window size to the configured minimum and maximum.
func (o WindowOptions) Clamp(w, h int) (int, int) {
	if o.MinWidth > 0 && w < o.MinWidth {
		w = o.MinWidth
	}
	if o.MinHeight > 0 && h < o.MinHeight {
		h = o.MinHeight
	}
	if o.MaxWidth > 0 && w > o.MaxWidth {
		w = o.MaxWidth
	}
	if o.MaxHeight > 0 && h > o.MaxHeight {
		h = o.MaxHeight
	}
	return w, h
}

// Backend is the rendering and windowing collaborator a Console draws through.
// Units are backend specific: pixels for ImageBackend, character cells for the
// terminal backends.
type Backend interface {
	// Open creates the window. It may be called again after Close.
	Open(opts WindowOptions) error
	// Close tears the window down.
	Close() error
	SetIcon(path string) error
	LoadFont(path string, size int) (Font, error)
	Measure(f Font, text string) (int, int)
	RenderGlyph(f Font, text string, fg RGB, antialias bool) (Surface, error)
	// Fill clears the whole window with the given colour.
	Fill(bg RGB)
	Blit(s Surface, x, y int)
	// PollEvents returns the events that arrived since the previous call, without blocking.
	PollEvents() []Event
	// Present makes everything blitted since the last Fill visible.
	Present() error
	// Tick waits as needed to hold the frame rate at fps and returns the
	// milliseconds elapsed since the previous Tick.
	Tick(fps int) int
	PlaySound(path string) error
	// Size returns the current viewport size.
	Size() (int, int)
	// Resize changes the viewport size after a resize event.
	Resize(w, h int)
}

// Releaser is implemented by backends that hold resources beyond the window,
// such as the audio device. Console.Quit calls Release once.
type Releaser interface {
	Release() error
}
