package vcon

import (
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/xyproto/env/v2"
)

// Options is a set of named configuration values, keyed by the option names
// listed in optionKinds.
type Options map[string]any

type optionKind int

const (
	kindString optionKind = iota
	kindInt
	kindBool
	kindColour
)

var optionKinds = map[string]optionKind{
	"title":                     kindString,
	"icon":                      kindString,
	"fps":                       kindInt,
	"line_cutoff":               kindInt,
	"default_background_colour": kindColour,
	"default_foreground_colour": kindColour,
	"default_width":             kindInt,
	"default_height":            kindInt,
	"default_min_width":         kindInt,
	"default_min_height":        kindInt,
	"default_max_width":         kindInt,
	"default_max_height":        kindInt,
	"resizeable":                kindBool,
	"beep_sound":                kindString,
	"font":                      kindString,
	"font_size":                 kindInt,
	"antialiasing":              kindBool,
	"full_quit":                 kindBool,
}

// OptionNames returns every valid option name, sorted.
func OptionNames() []string {
	names := make([]string, 0, len(optionKinds))
	for name := range optionKinds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Config is the console configuration. Zero min/max sizes mean "no limit".
type Config struct {
	Title             string
	Icon              string
	FPS               int
	LineCutoff        int
	DefaultBackground RGB
	DefaultForeground RGB
	Width             int
	Height            int
	MinWidth          int
	MinHeight         int
	MaxWidth          int
	MaxHeight         int
	Resizable         bool
	BeepSound         string
	Font              string
	FontSize          int
	Antialiasing      bool
	FullQuit          bool
}

// DefaultConfig returns the configuration used when no options are given.
// It has no font, which must always be configured.
func DefaultConfig() Config {
	return Config{
		Title:             "vcon",
		FPS:               60,
		LineCutoff:        2000,
		DefaultBackground: Black,
		DefaultForeground: White,
		Width:             500,
		Height:            300,
		Resizable:         true,
		FontSize:          10,
		FullQuit:          true,
	}
}

// Apply overrides fields with the given options.
// Unknown names and values of the wrong type give a *ConfigError,
// and the config is left unchanged.
func (c *Config) Apply(opts Options) error {
	next := *c
	// sorted, so that the first bad key reported is deterministic
	keys := make([]string, 0, len(opts))
	for k := range opts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := next.set(k, opts[k]); err != nil {
			return err
		}
	}
	*c = next
	return nil
}

func (c *Config) set(key string, value any) error {
	kind, ok := optionKinds[key]
	if !ok {
		return configErrorf(key, "invalid key %q was provided", key)
	}
	switch kind {
	case kindString:
		s, ok := value.(string)
		if !ok {
			return configErrorf(key, "expected a string, got %T", value)
		}
		switch key {
		case "title":
			c.Title = s
		case "icon":
			c.Icon = s
		case "beep_sound":
			c.BeepSound = s
		case "font":
			c.Font = s
		}
	case kindInt:
		n, err := toInt(value)
		if err != nil {
			return configErrorf(key, "%v", err)
		}
		if n < 0 {
			return configErrorf(key, "must not be negative, got %d", n)
		}
		switch key {
		case "fps":
			c.FPS = n
		case "line_cutoff":
			c.LineCutoff = n
		case "default_width":
			c.Width = n
		case "default_height":
			c.Height = n
		case "default_min_width":
			c.MinWidth = n
		case "default_min_height":
			c.MinHeight = n
		case "default_max_width":
			c.MaxWidth = n
		case "default_max_height":
			c.MaxHeight = n
		case "font_size":
			c.FontSize = n
		}
	case kindBool:
		b, ok := value.(bool)
		if !ok {
			return configErrorf(key, "expected a bool, got %T", value)
		}
		switch key {
		case "resizeable":
			c.Resizable = b
		case "antialiasing":
			c.Antialiasing = b
		case "full_quit":
			c.FullQuit = b
		}
	case kindColour:
		col, err := toColour(value)
		if err != nil {
			return configErrorf(key, "%v", err)
		}
		if key == "default_background_colour" {
			c.DefaultBackground = col
		} else {
			c.DefaultForeground = col
		}
	}
	return nil
}

// Validate checks the settings that cannot be checked one option at a time.
func (c *Config) Validate() error {
	if c.Font == "" {
		return configErrorf("font", "the font configuration was not provided")
	}
	if c.FontSize < 1 {
		return configErrorf("font_size", "must be at least 1, got %d", c.FontSize)
	}
	if c.LineCutoff < 1 {
		return configErrorf("line_cutoff", "must be at least 1, got %d", c.LineCutoff)
	}
	if c.MaxWidth > 0 && c.MinWidth > c.MaxWidth {
		return configErrorf("default_min_width", "%d is larger than default_max_width %d", c.MinWidth, c.MaxWidth)
	}
	if c.MaxHeight > 0 && c.MinHeight > c.MaxHeight {
		return configErrorf("default_min_height", "%d is larger than default_max_height %d", c.MinHeight, c.MaxHeight)
	}
	return nil
}

// WindowOptions returns the window settings of the config.
func (c *Config) WindowOptions() WindowOptions {
	return WindowOptions{
		Title:     c.Title,
		Width:     c.Width,
		Height:    c.Height,
		MinWidth:  c.MinWidth,
		MinHeight: c.MinHeight,
		MaxWidth:  c.MaxWidth,
		MaxHeight: c.MaxHeight,
		Resizable: c.Resizable,
	}
}

func toInt(value any) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int8:
		return int(v), nil
	case int16:
		return int(v), nil
	case int32:
		return int(v), nil
	case int64:
		return int(v), nil
	case uint:
		return int(v), nil
	case uint8:
		return int(v), nil
	case uint16:
		return int(v), nil
	case uint32:
		return int(v), nil
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("expected a whole number, got %v", v)
		}
		return int(v), nil
	}
	return 0, fmt.Errorf("expected an integer, got %T", value)
}

func toColour(value any) (RGB, error) {
	switch v := value.(type) {
	case RGB:
		return v, nil
	case string:
		return ParseColour(v)
	case [3]int:
		return rgbFromInts(v[:])
	case []int:
		return rgbFromInts(v)
	case []any:
		ints := make([]int, len(v))
		for i, e := range v {
			n, err := toInt(e)
			if err != nil {
				return RGB{}, err
			}
			ints[i] = n
		}
		return rgbFromInts(ints)
	}
	return RGB{}, fmt.Errorf("expected a colour, got %T", value)
}

func rgbFromInts(v []int) (RGB, error) {
	if len(v) != 3 {
		return RGB{}, fmt.Errorf("expected 3 colour components, got %d", len(v))
	}
	for _, n := range v {
		if n < 0 || n > 255 {
			return RGB{}, fmt.Errorf("colour component %d is out of range", n)
		}
	}
	return RGB{uint8(v[0]), uint8(v[1]), uint8(v[2])}, nil
}

// LoadConfigFile reads options from a TOML file with option names as top level keys.
func LoadConfigFile(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}
	var opts Options
	if err := toml.Unmarshal(data, &opts); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return opts, nil
}

// envPrefix is prepended to the upper case option name, as in VCON_FONT_SIZE.
const envPrefix = "VCON_"

// EnvOptions returns the options that are set as VCON_* environment variables.
// Values that do not parse are passed on as strings, so that Apply reports them.
// The environment is read again on every call.
func EnvOptions() Options {
	env.Load()
	opts := make(Options)
	for name, kind := range optionKinds {
		envName := envPrefix + strings.ToUpper(name)
		if !env.Has(envName) {
			continue
		}
		switch kind {
		case kindInt:
			if n := env.Int(envName, -1); n >= 0 {
				opts[name] = n
				continue
			}
		case kindBool:
			if b, err := strconv.ParseBool(env.Str(envName)); err == nil {
				opts[name] = b
				continue
			}
		}
		opts[name] = env.Str(envName)
	}
	return opts
}
