package vcon

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
	"sync"

	"github.com/mgutz/ansi"
)

// RGB is a 24-bit colour, used for glyphs and for the console background.
type RGB struct {
	R, G, B uint8
}

// Named console colours.
var (
	Black        = RGB{0, 0, 0}
	DarkBlue     = RGB{0, 0, 128}
	DarkGreen    = RGB{0, 128, 0}
	DarkCyan     = RGB{0, 128, 128}
	DarkRed      = RGB{128, 0, 0}
	DarkMagenta  = RGB{128, 0, 128}
	DarkYellow   = RGB{128, 128, 0}
	Gray         = RGB{192, 192, 192}
	DarkGray     = RGB{128, 128, 128}
	Blue         = RGB{0, 0, 255}
	Green        = RGB{0, 255, 0}
	Cyan         = RGB{0, 255, 255}
	Red          = RGB{255, 0, 0}
	Magenta      = RGB{255, 0, 255}
	Yellow       = RGB{255, 255, 0}
	White        = RGB{255, 255, 255}
	LightBlue    = RGB{85, 85, 255}
	LightGreen   = RGB{85, 255, 85}
	LightCyan    = RGB{85, 255, 255}
	LightRed     = RGB{255, 85, 85}
	LightMagenta = RGB{255, 85, 255}
	LightYellow  = RGB{255, 255, 85}
)

// ColourMap maps lowercase colour names to colours.
// Both "gray" and "grey" spellings are accepted by ParseColour.
var ColourMap = map[string]RGB{
	"black":        Black,
	"darkblue":     DarkBlue,
	"darkgreen":    DarkGreen,
	"darkcyan":     DarkCyan,
	"darkred":      DarkRed,
	"darkmagenta":  DarkMagenta,
	"darkyellow":   DarkYellow,
	"gray":         Gray,
	"darkgray":     DarkGray,
	"blue":         Blue,
	"green":        Green,
	"cyan":         Cyan,
	"red":          Red,
	"magenta":      Magenta,
	"yellow":       Yellow,
	"white":        White,
	"lightblue":    LightBlue,
	"lightgreen":   LightGreen,
	"lightcyan":    LightCyan,
	"lightred":     LightRed,
	"lightmagenta": LightMagenta,
	"lightyellow":  LightYellow,
	"lightgray":    Gray,
}

// ParseColour parses a colour name from ColourMap or a "#rrggbb" hex string.
func ParseColour(s string) (RGB, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	name = strings.ReplaceAll(name, "grey", "gray")
	name = strings.ReplaceAll(name, "_", "")
	if c, ok := ColourMap[name]; ok {
		return c, nil
	}
	if hex, ok := strings.CutPrefix(name, "#"); ok && len(hex) == 6 {
		v, err := strconv.ParseUint(hex, 16, 32)
		if err == nil {
			return RGB{uint8(v >> 16), uint8(v >> 8), uint8(v)}, nil
		}
	}
	return RGB{}, fmt.Errorf("unknown colour %q", s)
}

// RGBA returns the colour as an opaque color.RGBA.
func (c RGB) RGBA() color.RGBA {
	return color.RGBA{c.R, c.G, c.B, 0xff}
}

// String returns the colour as "#rrggbb".
func (c RGB) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// cubeLevels are the channel intensities of the xterm 6x6x6 colour cube.
var cubeLevels = [6]int{0, 95, 135, 175, 215, 255}

func nearestCubeLevel(v uint8) (uint8, int) {
	best, bestDist := 0, 1<<30
	for i, l := range cubeLevels {
		d := int(v) - l
		if d < 0 {
			d = -d
		}
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	return uint8(best), cubeLevels[best]
}

func sqDist(a, b RGB) int {
	dr := int(a.R) - int(b.R)
	dg := int(a.G) - int(b.G)
	db := int(a.B) - int(b.B)
	return dr*dr + dg*dg + db*db
}

// Index256 returns the closest xterm 256-colour palette index,
// choosing between the colour cube (16-231) and the grayscale ramp (232-255).
func (c RGB) Index256() uint8 {
	r, rl := nearestCubeLevel(c.R)
	g, gl := nearestCubeLevel(c.G)
	b, bl := nearestCubeLevel(c.B)
	cube := 16 + 36*r + 6*g + b
	cubeDist := sqDist(c, RGB{uint8(rl), uint8(gl), uint8(bl)})

	avg := (int(c.R) + int(c.G) + int(c.B)) / 3
	step := 0
	if avg > 8 {
		step = (avg - 8 + 5) / 10
	}
	if step > 23 {
		step = 23
	}
	level := uint8(8 + 10*step)
	grayDist := sqDist(c, RGB{level, level, level})
	if grayDist < cubeDist {
		return uint8(232 + step)
	}
	return cube
}

// acache caches escape sequences for foreground/background pairs.
var acache sync.Map

// ansiCode returns the escape sequence that selects c as foreground on bg.
func (c RGB) ansiCode(bg RGB) string {
	key := [2]RGB{c, bg}
	if cached, ok := acache.Load(key); ok {
		return cached.(string)
	}
	code := ansi.ColorCode(fmt.Sprintf("%d:%d", c.Index256(), bg.Index256()))
	acache.Store(key, code)
	return code
}
