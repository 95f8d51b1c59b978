package vcon

import (
	"fmt"
	"image"
	"image/color"
	"os"

	"github.com/xyproto/burnfont"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// BuiltinFont is the font path that selects the built in bitmap font of ImageBackend.
const BuiltinFont = "builtin"

// pixelFont is a font that can draw onto an RGBA image.
type pixelFont interface {
	Font
	measure(text string) (int, int)
	draw(dst *image.RGBA, text string, fg RGB)
}

// faceFont is a TrueType or OpenType font.
type faceFont struct {
	face   font.Face
	size   int
	ascent int
	height int
}

// loadFaceFont parses a TrueType or OpenType font file.
func loadFaceFont(path string, size int) (*faceFont, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing font %s: %w", path, err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("creating face for %s: %w", path, err)
	}
	m := face.Metrics()
	return &faceFont{
		face:   face,
		size:   size,
		ascent: m.Ascent.Ceil(),
		height: m.Height.Ceil(),
	}, nil
}

func (f *faceFont) Size() int {
	return f.size
}

func (f *faceFont) measure(text string) (int, int) {
	return font.MeasureString(f.face, text).Ceil(), f.height
}

func (f *faceFont) draw(dst *image.RGBA, text string, fg RGB) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(fg.RGBA()),
		Face: f.face,
		Dot:  fixed.P(0, f.ascent),
	}
	d.DrawString(text)
}

// bitmapFont is the burnfont bitmap font. The size is kept for reference,
// the glyphs always have the same pixel size.
type bitmapFont struct {
	size         int
	cellW, cellH int
}

// newBitmapFont measures the bitmap glyphs by drawing a wide and a tall
// character onto a scratch image.
func newBitmapFont(size int) *bitmapFont {
	scratch := image.NewRGBA(image.Rect(0, 0, 64, 64))
	burnfont.DrawString(scratch, 0, 0, "Mg", color.NRGBA{255, 255, 255, 255})
	box := inkBounds(scratch)
	w := box.Max.X/2 + 1
	h := box.Max.Y + 1
	return &bitmapFont{size: size, cellW: max(w, 1), cellH: max(h, 1)}
}

// inkBounds returns the smallest rectangle holding every drawn pixel.
func inkBounds(img *image.RGBA) image.Rectangle {
	var box image.Rectangle
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.RGBAAt(x, y).A == 0 {
				continue
			}
			box = box.Union(image.Rect(x, y, x+1, y+1))
		}
	}
	return box
}

func (f *bitmapFont) Size() int {
	return f.size
}

func (f *bitmapFont) measure(text string) (int, int) {
	return len([]rune(text)) * f.cellW, f.cellH
}

func (f *bitmapFont) draw(dst *image.RGBA, text string, fg RGB) {
	c := color.NRGBA{fg.R, fg.G, fg.B, 0xff}
	for i, r := range []rune(text) {
		burnfont.DrawString(dst, i*f.cellW, 0, string(r), c)
	}
}
