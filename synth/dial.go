package synth

import (
	"math"

	addesso "github.com/albertobarberis/addesso-synth"
)

// The dial functions map a normalized control position in [0, 1] to a
// parameter value. Most curves are powers of the position, so that the
// lower part of the range, where the ear is more sensitive, gets more of the
// dial travel. Positions outside [0, 1] are clamped.

// PartialsFromDial runs from MinPartials up to max, itself clamped to
// PartialsRange.
func PartialsFromDial(v float64, max int) int {
	return int(math.Floor(scale(math.Pow(unit(v), 4), addesso.MinPartials, partialsCap(max))))
}

// TiltFromDial runs from the steepest roll-off at 0 to the flattest at 1.
func TiltFromDial(v float64) float64 {
	return scale(unit(v), addesso.MaxTilt, addesso.MinTilt)
}

func TensionFromDial(v float64) float64 {
	return scale(unit(v), addesso.TensionRange.Min, addesso.TensionRange.Max)
}

func AttackFromDial(v float64) float64 {
	return scale(math.Pow(unit(v), 3), addesso.AttackRange.Min, addesso.AttackRange.Max)
}

func SustainFromDial(v float64) float64 {
	return scale(math.Pow(unit(v), 1.66), addesso.SustainRange.Min, addesso.SustainRange.Max)
}

func ReleaseFromDial(v float64) float64 {
	return scale(math.Pow(unit(v), 2), addesso.ReleaseRange.Min, addesso.ReleaseRange.Max)
}

func ModulatorFrequencyFromDial(v float64) float64 {
	return scale(math.Pow(unit(v), 2), addesso.ModulatorFrequencyRange.Min, addesso.ModulatorFrequencyRange.Max)
}

func ModulationIndexFromDial(v float64) float64 {
	return scale(math.Pow(unit(v), 1.66), addesso.ModulationIndexRange.Min, addesso.ModulationIndexRange.Max)
}

func MasterGainFromDial(v float64) float64 {
	return scale(math.Pow(unit(v), 1.66), addesso.MasterGainRange.Min, addesso.MasterGainRange.Max)
}

func scale(x, lo, hi float64) float64 {
	return lo + x*(hi-lo)
}

func unit(v float64) float64 {
	return addesso.Range{Min: 0, Max: 1}.Clamp(v)
}

// PartialsDial, TiltDial, TensionDial, ModulatorFrequencyDial and
// ModulationIndexDial return the dial position that produces a value; they
// invert the functions above.

func PartialsDial(n, max int) float64 {
	hi := partialsCap(max)
	if hi == addesso.MinPartials {
		return 0
	}
	return math.Pow(unscale(float64(n), addesso.MinPartials, hi), 1.0/4)
}

func partialsCap(max int) float64 {
	return addesso.PartialsRange.Clamp(float64(max))
}

func TiltDial(t float64) float64 {
	return unscale(t, addesso.MaxTilt, addesso.MinTilt)
}

func TensionDial(t float64) float64 {
	return unscale(t, addesso.TensionRange.Min, addesso.TensionRange.Max)
}

func ModulatorFrequencyDial(hz float64) float64 {
	return math.Sqrt(unscale(hz, addesso.ModulatorFrequencyRange.Min, addesso.ModulatorFrequencyRange.Max))
}

func ModulationIndexDial(i float64) float64 {
	return math.Pow(unscale(i, addesso.ModulationIndexRange.Min, addesso.ModulationIndexRange.Max), 1/1.66)
}

func unscale(v, lo, hi float64) float64 {
	return unit((v - lo) / (hi - lo))
}
