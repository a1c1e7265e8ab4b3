package addesso

type (
	// Controls is the command surface of the instrument, consumed by input
	// layers (keyboard, MIDI, scripts, remote control). Commands are
	// fire-and-forget: out-of-range values are clamped and failures are
	// logged by the implementation.
	Controls interface {
		SetFundamental(hz float64)
		SetTension(t float64)
		SetTilt(t float64)
		SetRequiredPartialCount(n int)
		SetModulatorFrequency(hz float64)
		SetModulationIndex(i float64)
		SetEnvelopeMode(m EnvelopeMode)
		NoteOn()
		NoteOff()

		SetAttack(seconds float64)
		SetSustain(level float64)
		SetRelease(seconds float64)
		SetMasterGain(g float64)
		Start()
		Stop()

		Snapshot() Snapshot
	}

	// PartialState is the computed state of one live partial.
	PartialState struct {
		Harmonic  int // 1 = fundamental
		Frequency float64
		Amplitude float64
	}

	EnvelopeState struct {
		Mode EnvelopeMode
		Gate Gate
	}

	// Snapshot is a read-only copy of the instrument state.
	Snapshot struct {
		Settings  Settings
		Nyquist   float64
		Effective int
		Partials  []PartialState
		Envelope  EnvelopeState
		Running   bool
	}
)
