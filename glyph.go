package vcon

// Renderer is the part of a Backend that turns text into surfaces.
type Renderer interface {
	RenderGlyph(f Font, text string, fg RGB, antialias bool) (Surface, error)
}

// Glyph is a piece of text at a position on the console, with the surface it
// was rendered to.
type Glyph struct {
	Text      string
	X, Y      int
	Colour    RGB
	Antialias bool

	col     int // cursor column the glyph starts at
	font    Font
	surface Surface
}

func newGlyph(r Renderer, f Font, text string, x, y int, fg RGB, antialias bool) (*Glyph, error) {
	g := &Glyph{
		Text:      text,
		X:         x,
		Y:         y,
		Colour:    fg,
		Antialias: antialias,
		font:      f,
	}
	if err := g.Render(r); err != nil {
		return nil, err
	}
	return g, nil
}

// Render re-renders the glyph surface from its current text and colour.
func (g *Glyph) Render(r Renderer) error {
	s, err := r.RenderGlyph(g.font, g.Text, g.Colour, g.Antialias)
	if err != nil {
		return err
	}
	g.surface = s
	return nil
}

// Surface returns the rendered surface.
func (g *Glyph) Surface() Surface {
	return g.surface
}
