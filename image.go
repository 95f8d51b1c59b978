package vcon

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"sync"

	"golang.org/x/image/draw"
)

// iconSize is the width and height icons are scaled to.
const iconSize = 32

// decodeIcon reads a PNG, JPEG or GIF image.
func decodeIcon(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding icon %s: %w", path, err)
	}
	return img, nil
}

// imageSurface is text rendered onto a transparent RGBA image.
type imageSurface struct {
	img *image.RGBA
}

func (s *imageSurface) Bounds() (int, int) {
	b := s.img.Bounds()
	return b.Dx(), b.Dy()
}

// ImageBackend draws the console onto an in-memory RGBA image.
// Fonts are TrueType/OpenType files, or BuiltinFont for the bitmap font.
// Input comes from Inject, and every presented frame is passed to OnPresent.
type ImageBackend struct {
	// OnPresent, when set, receives every presented frame.
	// The image is reused for the next frame.
	OnPresent func(frame *image.RGBA)

	mu      sync.Mutex
	pending []Event
	frame   *image.RGBA
	last    *image.RGBA
	icon    *image.RGBA
	opts    WindowOptions
	open    bool
	clock   *Clock
	sound   SoundPlayer
}

// NewImageBackend returns an image backend. A nil sound player means NewSpeaker().
func NewImageBackend(sound SoundPlayer) *ImageBackend {
	if sound == nil {
		sound = NewSpeaker()
	}
	return &ImageBackend{clock: NewClock(), sound: sound}
}

func (b *ImageBackend) Open(opts WindowOptions) error {
	if opts.Width < 1 || opts.Height < 1 {
		return fmt.Errorf("invalid window size %dx%d", opts.Width, opts.Height)
	}
	w, h := opts.Clamp(opts.Width, opts.Height)
	b.opts = opts
	b.frame = image.NewRGBA(image.Rect(0, 0, w, h))
	b.open = true
	b.clock.Reset()
	return nil
}

func (b *ImageBackend) Close() error {
	b.open = false
	b.mu.Lock()
	b.pending = nil
	b.mu.Unlock()
	return nil
}

// SetIcon loads an image and scales it to 32x32.
func (b *ImageBackend) SetIcon(path string) error {
	img, err := decodeIcon(path)
	if err != nil {
		return err
	}
	icon := image.NewRGBA(image.Rect(0, 0, iconSize, iconSize))
	draw.ApproxBiLinear.Scale(icon, icon.Bounds(), img, img.Bounds(), draw.Src, nil)
	b.icon = icon
	return nil
}

// Icon returns the scaled icon, or nil.
func (b *ImageBackend) Icon() *image.RGBA {
	return b.icon
}

func (b *ImageBackend) LoadFont(path string, size int) (Font, error) {
	if path == BuiltinFont {
		return newBitmapFont(size), nil
	}
	f, err := loadFaceFont(path, size)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (b *ImageBackend) Measure(f Font, text string) (int, int) {
	pf, ok := f.(pixelFont)
	if !ok {
		return 0, 0
	}
	return pf.measure(text)
}

// RenderGlyph draws text onto a new transparent image. Without antialiasing,
// partially covered pixels are snapped to fully on or off.
func (b *ImageBackend) RenderGlyph(f Font, text string, fg RGB, antialias bool) (Surface, error) {
	pf, ok := f.(pixelFont)
	if !ok {
		return nil, errors.New("font was not loaded by the image backend")
	}
	w, h := pf.measure(text)
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	pf.draw(img, text, fg)
	if !antialias {
		snapAlpha(img, fg)
	}
	return &imageSurface{img: img}, nil
}

func snapAlpha(img *image.RGBA, fg RGB) {
	for i := 0; i < len(img.Pix); i += 4 {
		if img.Pix[i+3] >= 0x80 {
			img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = fg.R, fg.G, fg.B, 0xff
		} else {
			img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = 0, 0, 0, 0
		}
	}
}

func (b *ImageBackend) Fill(bg RGB) {
	if b.frame == nil {
		return
	}
	draw.Draw(b.frame, b.frame.Bounds(), image.NewUniform(bg.RGBA()), image.Point{}, draw.Src)
}

func (b *ImageBackend) Blit(s Surface, x, y int) {
	is, ok := s.(*imageSurface)
	if !ok || b.frame == nil {
		return
	}
	r := is.img.Bounds().Add(image.Pt(x, y))
	draw.Draw(b.frame, r, is.img, image.Point{}, draw.Over)
}

// Inject queues events for the next PollEvents. It is safe to call from
// other goroutines.
func (b *ImageBackend) Inject(events ...Event) {
	b.mu.Lock()
	b.pending = append(b.pending, events...)
	b.mu.Unlock()
}

func (b *ImageBackend) PollEvents() []Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	events := b.pending
	b.pending = nil
	return events
}

func (b *ImageBackend) Present() error {
	if !b.open {
		return fmt.Errorf("present: %w", ErrClosed)
	}
	if b.last == nil || !b.last.Bounds().Eq(b.frame.Bounds()) {
		b.last = image.NewRGBA(b.frame.Bounds())
	}
	copy(b.last.Pix, b.frame.Pix)
	if b.OnPresent != nil {
		b.OnPresent(b.frame)
	}
	return nil
}

// Snapshot returns the last presented frame, or nil.
func (b *ImageBackend) Snapshot() *image.RGBA {
	return b.last
}

// At returns the colour of a pixel of the last presented frame.
func (b *ImageBackend) At(x, y int) color.RGBA {
	if b.last == nil {
		return color.RGBA{}
	}
	return b.last.RGBAAt(x, y)
}

func (b *ImageBackend) Tick(fps int) int {
	return b.clock.Tick(fps)
}

func (b *ImageBackend) PlaySound(path string) error {
	return b.sound.Play(path)
}

// Release closes the sound player.
func (b *ImageBackend) Release() error {
	return b.sound.Close()
}

func (b *ImageBackend) Size() (int, int) {
	if b.frame == nil {
		return b.opts.Width, b.opts.Height
	}
	r := b.frame.Bounds()
	return r.Dx(), r.Dy()
}

// Resize replaces the frame with one of the new size.
func (b *ImageBackend) Resize(w, h int) {
	if w < 1 || h < 1 {
		return
	}
	b.frame = image.NewRGBA(image.Rect(0, 0, w, h))
}
