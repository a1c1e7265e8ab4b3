package analysis

import (
	"math"

	"github.com/viterin/vek/vek32"
)

// Decibel is a level relative to full scale.
type Decibel float64

// Level is the loudness of a buffer: its sample peak and its RMS power.
type Level struct {
	Peak Decibel
	RMS  Decibel
}

// Measure computes the level of buffer. An empty or silent buffer reads
// -Inf.
func Measure(buffer []float32) Level {
	if len(buffer) == 0 {
		return Level{Peak: Decibel(math.Inf(-1)), RMS: Decibel(math.Inf(-1))}
	}
	abs := vek32.Abs(buffer)
	power := vek32.Mean(vek32.Mul(buffer, buffer))
	return Level{
		Peak: Decibel(20 * math.Log10(float64(vek32.Max(abs)))),
		RMS:  Decibel(10 * math.Log10(float64(power))),
	}
}

// Windowed measures consecutive windows of the given number of samples, e.g.
// to follow an envelope. A trailing partial window is measured too.
func Windowed(buffer []float32, window int) []Level {
	if window <= 0 {
		return nil
	}
	ret := make([]Level, 0, (len(buffer)+window-1)/window)
	for i := 0; i < len(buffer); i += window {
		ret = append(ret, Measure(buffer[i:min(i+window, len(buffer))]))
	}
	return ret
}
