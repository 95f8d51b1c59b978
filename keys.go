package vcon

// Key identifies a physical key reported by a backend.
type Key int

// Key constants
const (
	KeyNone Key = iota
	KeyRune     // a character key, see Event.Rune
	KeyReturn
	KeyBackspace
	KeyCapsLock
	KeyShift
	KeyCtrl
	KeyAlt
	KeyTab
	KeyEscape
	KeyDelete
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
)

var keyNames = map[Key]string{
	KeyNone:      "none",
	KeyRune:      "rune",
	KeyReturn:    "return",
	KeyBackspace: "backspace",
	KeyCapsLock:  "capslock",
	KeyShift:     "shift",
	KeyCtrl:      "ctrl",
	KeyAlt:       "alt",
	KeyTab:       "tab",
	KeyEscape:    "escape",
	KeyDelete:    "delete",
	KeyUp:        "up",
	KeyDown:      "down",
	KeyLeft:      "left",
	KeyRight:     "right",
	KeyHome:      "home",
	KeyEnd:       "end",
	KeyPageUp:    "pageup",
	KeyPageDown:  "pagedown",
}

// String returns a human readable key name
func (k Key) String() string {
	if s, ok := keyNames[k]; ok {
		return s
	}
	return "unknown"
}

// Modifiers
const (
	ModNone  = 0
	ModCtrl  = 1 << 0
	ModAlt   = 1 << 1
	ModShift = 1 << 2
)

// EventType is the kind of a polled backend event.
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventKeyDown
	EventResize
)

// Event is a single raw event returned by Backend.PollEvents.
type Event struct {
	Type      EventType
	Key       Key  // for EventKeyDown
	Rune      rune // the unshifted character when Key is KeyRune
	Modifiers int  // bitmask of modifiers held during the key press
	Width     int  // for EventResize
	Height    int  // for EventResize
}

// KeyPress returns a key-down event.
func KeyPress(k Key, r rune, mods int) Event {
	return Event{Type: EventKeyDown, Key: k, Rune: r, Modifiers: mods}
}

// RunePress returns a key-down event for a character key.
func RunePress(r rune, mods int) Event {
	return KeyPress(KeyRune, r, mods)
}

// Keystroke is a key press after shift and caps-lock translation.
type Keystroke struct {
	Key  Key
	Rune rune // zero unless Key is KeyRune
}

// String returns the typed character, or the key name for special keys.
func (k Keystroke) String() string {
	if k.Key == KeyRune {
		return string(k.Rune)
	}
	return k.Key.String()
}
