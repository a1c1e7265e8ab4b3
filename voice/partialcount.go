package voice

import (
	"fmt"
	"math"

	addesso "github.com/albertobarberis/addesso-synth"
)

// EffectiveCount returns the largest harmonic index i ≤ required whose
// frequency fundamental·i^tension does not exceed nyquist, or 0 when even the
// fundamental is above it. The frequency law is non-decreasing in i for
// tension ≥ 0, so the scan stops at the first index that fits.
//
// The result can be lower than required for high fundamentals; callers keep
// at least the fundamental.
func EffectiveCount(fundamental float64, required int, tension, nyquist float64) (int, error) {
	switch {
	case math.IsInf(fundamental, 0) || !(fundamental > 0):
		return 0, fmt.Errorf("%w: fundamental %v Hz", addesso.ErrInvalidParameter, fundamental)
	case required < 0:
		return 0, fmt.Errorf("%w: partial count %d", addesso.ErrInvalidParameter, required)
	case math.IsInf(tension, 0) || !(tension >= 0):
		return 0, fmt.Errorf("%w: tension %v", addesso.ErrInvalidParameter, tension)
	case !(nyquist > 0):
		return 0, fmt.Errorf("%w: nyquist %v Hz", addesso.ErrInvalidParameter, nyquist)
	}
	for i := required; i > 0; i-- {
		if PartialFrequency(fundamental, i, tension) <= nyquist {
			return i, nil
		}
	}
	return 0, nil
}

// PartialFrequency is the frequency of the given harmonic (1 = fundamental).
// Tension 1 gives the harmonic series, 0 collapses every partial onto the
// fundamental and values above 1 stretch the spectrum.
func PartialFrequency(fundamental float64, harmonic int, tension float64) float64 {
	return fundamental * math.Pow(float64(harmonic), tension)
}

// PartialAmplitude is harmonic^-tilt, scaled by GainCorrection(total).
func PartialAmplitude(harmonic int, tilt float64, total int) float64 {
	return math.Pow(float64(harmonic), -tilt) * GainCorrection(total)
}

// GainCorrection keeps the loudness roughly constant as partials are added:
// 1/sqrt(n)^0.3.
func GainCorrection(n int) float64 {
	return 1 / math.Pow(math.Sqrt(float64(n)), 0.3)
}
