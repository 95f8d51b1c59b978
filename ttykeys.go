package vcon

import (
	"unicode"
	"unicode/utf8"
)

// Key codes for 3-byte sequences (arrows, Home, End)
var keyCodeLookup = map[[3]byte]Key{
	{27, 91, 65}:  KeyUp,
	{27, 91, 66}:  KeyDown,
	{27, 91, 67}:  KeyRight,
	{27, 91, 68}:  KeyLeft,
	{27, 91, 'H'}: KeyHome,
	{27, 91, 'F'}: KeyEnd,
	{27, 79, 65}:  KeyUp,
	{27, 79, 66}:  KeyDown,
	{27, 79, 67}:  KeyRight,
	{27, 79, 68}:  KeyLeft,
	{27, 79, 'H'}: KeyHome,
	{27, 79, 'F'}: KeyEnd,
}

// Key codes for 4-byte sequences (Page Up, Page Down, Home, End, Delete)
var pageNavLookup = map[[4]byte]Key{
	{27, 91, 49, 126}: KeyHome,
	{27, 91, 51, 126}: KeyDelete,
	{27, 91, 52, 126}: KeyEnd,
	{27, 91, 53, 126}: KeyPageUp,
	{27, 91, 54, 126}: KeyPageDown,
}

// Control characters
const (
	ctrlC        = 3
	ctrlH        = 8
	keyTab       = 9
	keyLF        = 10
	keyEnter     = 13
	keyEsc       = 27
	keyBackspace = 127
)

// parseKeys turns raw bytes read from a tty into key events.
// Unknown escape sequences are dropped.
func parseKeys(data []byte) []Event {
	var events []Event
	for i := 0; i < len(data); {
		b := data[i]
		switch {
		case b == keyEsc:
			n, ev := parseSequence(data[i:])
			if n > 0 {
				if ev.Type != EventNone {
					events = append(events, ev)
				}
				i += n
				continue
			}
			events = append(events, KeyPress(KeyEscape, 0, ModNone))
			i++
		case b == ctrlC:
			events = append(events, Event{Type: EventQuit})
			i++
		case b == keyEnter || b == keyLF:
			events = append(events, KeyPress(KeyReturn, 0, ModNone))
			i++
		case b == keyBackspace || b == ctrlH:
			events = append(events, KeyPress(KeyBackspace, 0, ModNone))
			i++
		case b == keyTab:
			events = append(events, KeyPress(KeyTab, 0, ModNone))
			i++
		case b < 32:
			i++
		default:
			r, size := utf8.DecodeRune(data[i:])
			i += size
			if r == utf8.RuneError || !unicode.IsPrint(r) {
				continue
			}
			// the terminal has already applied shift, so only letters keep it
			if unicode.IsUpper(r) {
				events = append(events, RunePress(unicode.ToLower(r), ModShift))
			} else {
				events = append(events, RunePress(r, ModNone))
			}
		}
	}
	return events
}

// parseSequence parses an escape sequence at the start of seq. It returns the
// number of bytes consumed, or 0 when seq is a lone ESC. Sequences that are
// recognized as CSI/SS3 but unknown are consumed and give an EventNone.
func parseSequence(seq []byte) (int, Event) {
	if len(seq) < 3 || (seq[1] != '[' && seq[1] != 'O') {
		return 0, Event{}
	}
	if k, ok := keyCodeLookup[[3]byte{seq[0], seq[1], seq[2]}]; ok {
		return 3, KeyPress(k, 0, ModNone)
	}
	if len(seq) >= 4 {
		if k, ok := pageNavLookup[[4]byte{seq[0], seq[1], seq[2], seq[3]}]; ok {
			return 4, KeyPress(k, 0, ModNone)
		}
	}
	// skip to the final byte of an unknown CSI sequence
	for n := 2; n < len(seq); n++ {
		if seq[n] >= 0x40 && seq[n] <= 0x7e {
			return n + 1, Event{}
		}
	}
	return len(seq), Event{}
}
