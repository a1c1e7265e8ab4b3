package addesso

import "fmt"

type (
	// EnvelopeMode selects how the voice output is gated.
	EnvelopeMode int

	// Gate is the state of the ASR envelope.
	Gate int
)

const (
	Legato EnvelopeMode = iota // output open continuously, note events ignored
	ASR                        // attack-sustain-release, gated by note on/off
)

const (
	Closed Gate = iota
	Open
)

func (m EnvelopeMode) String() string {
	switch m {
	case Legato:
		return "legato"
	case ASR:
		return "asr"
	}
	return fmt.Sprintf("EnvelopeMode(%d)", int(m))
}

func (m EnvelopeMode) MarshalText() ([]byte, error) {
	if m != Legato && m != ASR {
		return nil, fmt.Errorf("%w: envelope mode %d", ErrInvalidParameter, int(m))
	}
	return []byte(m.String()), nil
}

func (m *EnvelopeMode) UnmarshalText(text []byte) error {
	mode, err := ParseEnvelopeMode(string(text))
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

// ParseEnvelopeMode accepts "legato" or "asr".
func ParseEnvelopeMode(s string) (EnvelopeMode, error) {
	switch s {
	case "legato":
		return Legato, nil
	case "asr":
		return ASR, nil
	}
	return Legato, fmt.Errorf("%w: envelope mode %q, want legato or asr", ErrInvalidParameter, s)
}

func (g Gate) String() string {
	if g == Open {
		return "open"
	}
	return "closed"
}
