package addesso

import "math"

// A4 is the tuning reference, MIDI note 69.
const A4 = 440.0

// NoteToFreq converts a MIDI note number to Hz in equal temperament.
func NoteToFreq(note int) float64 {
	return A4 * math.Pow(2, float64(note-69)/12)
}
