// Package keyboard maps pitch input to the synth controls: one held note at
// a time, with the fundamental following the last note pressed.
package keyboard

import (
	"fmt"
	"sync"

	addesso "github.com/albertobarberis/addesso-synth"
)

type Keyboard struct {
	mu      sync.Mutex
	c       addesso.Controls
	octave  int
	held    int
	current int
}

const (
	// LowestNote is the MIDI note of the first mapped key at octave 0.
	LowestNote    = 12
	MinOctave     = 1
	MaxOctave     = 6
	DefaultOctave = 3

	noNote = -1
)

// KeyMap maps computer keys to semitones above the lowest note, laid out
// like a piano on an Italian keyboard: the home row holds the white keys and
// the row above the black keys.
var KeyMap = map[rune]int{
	'a': 0, 'w': 1, 's': 2, 'e': 3, 'd': 4, 'f': 5, 't': 6, 'g': 7, 'y': 8, 'h': 9,
	'u': 10, 'j': 11, 'k': 12, 'o': 13, 'l': 14, 'p': 15, 'ò': 16, 'à': 17, '+': 18, 'ù': 19,
}

func New(c addesso.Controls) *Keyboard {
	return &Keyboard{c: c, octave: DefaultOctave, held: noNote, current: noNote}
}

// Press plays a MIDI note. The fundamental changes only if the note differs
// from the last one played; a note pressed while another is held takes over.
func (k *Keyboard) Press(note int) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if note != k.current {
		k.c.SetFundamental(addesso.NoteToFreq(note))
		k.current = note
	}
	k.held = note
	k.c.NoteOn()
}

// Release ends the note if it is the one held; releases of notes that were
// taken over are ignored.
func (k *Keyboard) Release(note int) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if note != k.held {
		return
	}
	k.held = noNote
	k.c.NoteOff()
}

// ReleaseAll ends the held note, if any.
func (k *Keyboard) ReleaseAll() {
	k.mu.Lock()
	held := k.held
	k.mu.Unlock()
	if held != noNote {
		k.Release(held)
	}
}

// Held returns the note being held.
func (k *Keyboard) Held() (int, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.held, k.held != noNote
}

// Note returns the MIDI note of a mapped key at the current octave.
func (k *Keyboard) Note(key rune) (int, bool) {
	idx, ok := KeyMap[key]
	if !ok {
		return 0, false
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	return idx + LowestNote + 12*k.octave, true
}

// PressKey and ReleaseKey play the note of a mapped key and report whether
// the key is mapped.
func (k *Keyboard) PressKey(key rune) bool {
	note, ok := k.Note(key)
	if ok {
		k.Press(note)
	}
	return ok
}

func (k *Keyboard) ReleaseKey(key rune) bool {
	note, ok := k.Note(key)
	if ok {
		k.Release(note)
	}
	return ok
}

func (k *Keyboard) SetOctave(octave int) error {
	if octave < MinOctave || octave > MaxOctave {
		return fmt.Errorf("%w: octave %d, want %d..%d", addesso.ErrInvalidParameter, octave, MinOctave, MaxOctave)
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	k.octave = octave
	return nil
}

func (k *Keyboard) Octave() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.octave
}
