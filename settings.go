package addesso

import (
	"errors"
	"math"
)

// Range is an inclusive interval of valid control values.
type Range struct {
	Min, Max float64
}

func (r Range) Contains(v float64) bool {
	return !math.IsNaN(v) && v >= r.Min && v <= r.Max
}

// Clamp limits v to the range. NaN clamps to Min.
func (r Range) Clamp(v float64) float64 {
	if math.IsNaN(v) || v < r.Min {
		return r.Min
	}
	if v > r.Max {
		return r.Max
	}
	return v
}

const (
	MinPartials = 1
	MaxPartials = 512 // more partials cost CPU linearly

	// MinTilt is the smallest tilt reachable from the tilt dial; the engine
	// itself accepts 0 (no roll-off).
	MinTilt = 0.001
	MaxTilt = 4.0

	// PartialAttackTime is the time constant of every partial amplitude
	// change, and of the fade-in of a new partial.
	PartialAttackTime = 0.05
	// PartialReleaseTime is the duration of the linear fade-out of a removed
	// partial; its oscillator is stopped at the end of the fade.
	PartialReleaseTime = 0.05

	// FMSmoothingTime is the time constant for modulator frequency and
	// modulation index changes.
	FMSmoothingTime = 0.1
	// ModeSwitchTime is the time constant of the envelope gain when
	// switching between legato and ASR.
	ModeSwitchTime = 0.1
	// MasterFadeTime is the time constant of master gain changes and of the
	// start/stop fades.
	MasterFadeTime = 0.02
)

var (
	FundamentalRange        = Range{Min: 1, Max: 20000}
	NoteRange               = Range{Min: 0, Max: 127}
	PartialsRange           = Range{Min: MinPartials, Max: MaxPartials}
	TensionRange            = Range{Min: 0, Max: 2}
	TiltRange               = Range{Min: 0, Max: MaxTilt}
	ModulatorFrequencyRange = Range{Min: 10, Max: 5000}
	ModulationIndexRange    = Range{Min: 0, Max: 2000}
	AttackRange             = Range{Min: 0.01, Max: 1}
	SustainRange            = Range{Min: 0, Max: 1}
	ReleaseRange            = Range{Min: 0.02, Max: 1}
	MasterGainRange         = Range{Min: 0, Max: 0.1}
)

// Settings is the complete state of the playable instrument.
type Settings struct {
	Fundamental        float64      `yaml:"fundamental"`
	Partials           int          `yaml:"partials"`
	Tension            float64      `yaml:"tension"`
	Tilt               float64      `yaml:"tilt"`
	ModulatorFrequency float64      `yaml:"modulatorFrequency"`
	ModulationIndex    float64      `yaml:"modulationIndex"`
	Mode               EnvelopeMode `yaml:"mode"`
	Attack             float64      `yaml:"attack"`
	Sustain            float64      `yaml:"sustain"`
	Release            float64      `yaml:"release"`
	MasterGain         float64      `yaml:"masterGain"`
}

// DefaultSettings returns the power-on state: middle C-ish fundamental, a
// single harmonic partial, no FM, legato.
func DefaultSettings() Settings {
	return Settings{
		Fundamental:        261,
		Partials:           1,
		Tension:            1,
		Tilt:               2,
		ModulatorFrequency: ModulatorFrequencyRange.Min + math.Pow(0.5, 4)*(ModulatorFrequencyRange.Max-ModulatorFrequencyRange.Min),
		ModulationIndex:    0,
		Mode:               Legato,
		Attack:             0.5,
		Sustain:            1,
		Release:            0.5,
		MasterGain:         0.1,
	}
}

// Validate checks every field against its range.
func (s Settings) Validate() error {
	errs := []error{
		CheckRange("fundamental", s.Fundamental, FundamentalRange),
		CheckRange("partials", float64(s.Partials), PartialsRange),
		CheckRange("tension", s.Tension, TensionRange),
		CheckRange("tilt", s.Tilt, TiltRange),
		CheckRange("modulatorFrequency", s.ModulatorFrequency, ModulatorFrequencyRange),
		CheckRange("modulationIndex", s.ModulationIndex, ModulationIndexRange),
		CheckRange("attack", s.Attack, AttackRange),
		CheckRange("sustain", s.Sustain, SustainRange),
		CheckRange("release", s.Release, ReleaseRange),
		CheckRange("masterGain", s.MasterGain, MasterGainRange),
	}
	if s.Mode != Legato && s.Mode != ASR {
		errs = append(errs, &ParameterError{Name: "mode", Value: float64(s.Mode), Range: Range{Min: float64(Legato), Max: float64(ASR)}})
	}
	return errors.Join(errs...)
}
