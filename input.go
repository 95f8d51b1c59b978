package vcon

import "unicode"

// shiftSymbols maps an unshifted symbol key to the character it produces with shift held.
var shiftSymbols = map[rune]rune{
	'`':  '~',
	'1':  '!',
	'2':  '@',
	'3':  '#',
	'4':  '$',
	'5':  '%',
	'6':  '^',
	'7':  '&',
	'8':  '*',
	'9':  '(',
	'0':  ')',
	'-':  '_',
	'=':  '+',
	'[':  '{',
	']':  '}',
	'\\': '|',
	';':  ':',
	'\'': '"',
	',':  '<',
	'.':  '>',
	'/':  '?',
}

// Translate returns the character a key produces given the shift and caps-lock state.
// Either of them selects the upper variant, for letters and symbols alike.
func Translate(r rune, shift, caps bool) rune {
	if !shift && !caps {
		return r
	}
	if s, ok := shiftSymbols[r]; ok {
		return s
	}
	return unicode.ToUpper(r)
}

// InputState accumulates per-frame key events into a line buffer.
// Call Step once per frame with the polled events.
type InputState struct {
	sustained []rune
	last      Keystroke
	pressed   bool // a key went down this frame
	ret       bool
	back      bool
	caps      bool
	consumed  bool // clear sustained at the start of the next Step
}

// NewInputState returns an idle input state with caps-lock off.
func NewInputState() *InputState {
	return &InputState{}
}

// Step advances the state machine by one frame.
func (s *InputState) Step(events []Event) {
	s.last = Keystroke{}
	s.pressed = false
	s.ret = false
	s.back = false

	if s.consumed {
		s.sustained = s.sustained[:0]
		s.consumed = false
	}

	for _, ev := range events {
		if ev.Type != EventKeyDown {
			continue
		}
		switch ev.Key {
		case KeyReturn:
			s.ret = true
		case KeyBackspace:
			if n := len(s.sustained); n > 0 {
				s.sustained = s.sustained[:n-1]
			}
			s.back = true
		case KeyCapsLock:
			s.caps = !s.caps
		case KeyShift, KeyCtrl, KeyAlt:
			// modifiers on their own produce nothing
			continue
		case KeyRune:
			if ev.Modifiers&(ModCtrl|ModAlt) != 0 || !unicode.IsPrint(ev.Rune) {
				continue
			}
			r := Translate(ev.Rune, ev.Modifiers&ModShift != 0, s.caps)
			s.sustained = append(s.sustained, r)
			s.last = Keystroke{Key: KeyRune, Rune: r}
			s.pressed = true
			continue
		}
		s.last = Keystroke{Key: ev.Key}
		s.pressed = true
	}
}

// Line returns the characters typed since the last consumed line.
func (s *InputState) Line() string {
	return string(s.sustained)
}

// Key returns the last key pressed during this frame, if any.
func (s *InputState) Key() (Keystroke, bool) {
	return s.last, s.pressed
}

// ReturnPressed reports whether return went down during this frame.
func (s *InputState) ReturnPressed() bool {
	return s.ret
}

// BackspacePressed reports whether backspace went down during this frame.
func (s *InputState) BackspacePressed() bool {
	return s.back
}

// CapsLock reports whether sticky upper case is active.
func (s *InputState) CapsLock() bool {
	return s.caps
}

// Consume signals that the current line has been read.
// The accumulated characters are discarded at the start of the next Step.
func (s *InputState) Consume() {
	s.consumed = true
}
