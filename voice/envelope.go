package voice

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	addesso "github.com/albertobarberis/addesso-synth"
)

type (
	// Envelope gates the voice output. In legato the gain stays at 1 and note
	// events are ignored. In ASR the gain approaches the sustain level on
	// NoteOn and 0 on NoteOff, starting from wherever the previous segment
	// had got to.
	Envelope struct {
		mu      sync.Mutex
		g       addesso.Graph
		gain    addesso.Gain
		mode    addesso.EnvelopeMode
		gate    addesso.Gate
		attack  float64
		sustain float64
		release float64
		log     *slog.Logger
	}

	EnvelopeParams struct {
		Mode    addesso.EnvelopeMode
		Attack  float64
		Sustain float64
		Release float64
	}
)

func EnvelopeParamsOf(s addesso.Settings) EnvelopeParams {
	return EnvelopeParams{Mode: s.Mode, Attack: s.Attack, Sustain: s.Sustain, Release: s.Release}
}

func (p EnvelopeParams) Validate() error {
	var err error
	if p.Mode != addesso.Legato && p.Mode != addesso.ASR {
		err = fmt.Errorf("%w: envelope mode %d", addesso.ErrInvalidParameter, int(p.Mode))
	}
	return errors.Join(
		err,
		addesso.CheckRange("attack", p.Attack, addesso.AttackRange),
		addesso.CheckRange("sustain", p.Sustain, addesso.SustainRange),
		addesso.CheckRange("release", p.Release, addesso.ReleaseRange),
	)
}

// NewEnvelope creates the envelope gain and connects it to dst. The gate
// starts closed; in legato the gain is 1 from the start.
func NewEnvelope(g addesso.Graph, params EnvelopeParams, dst addesso.Node, logger *slog.Logger) (*Envelope, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	gain, err := g.NewGain()
	if err != nil {
		return nil, fmt.Errorf("envelope: %w", err)
	}
	if err := gain.Connect(dst); err != nil {
		g.Release(gain)
		return nil, fmt.Errorf("envelope: %w", err)
	}
	e := &Envelope{
		g:       g,
		gain:    gain,
		mode:    params.Mode,
		attack:  params.Attack,
		sustain: params.Sustain,
		release: params.Release,
		log:     logger,
	}
	level := 0.0
	if e.mode == addesso.Legato {
		level = 1
	}
	gain.Gain().SetValueAt(level, g.CurrentTime())
	return e, nil
}

// Input is the node the voice output connects to.
func (e *Envelope) Input() addesso.Node { return e.gain }

func (e *Envelope) SetMode(m addesso.EnvelopeMode) error {
	if m != addesso.Legato && m != addesso.ASR {
		return fmt.Errorf("%w: envelope mode %d", addesso.ErrInvalidParameter, int(m))
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if m == e.mode {
		return nil
	}
	e.mode = m
	e.gate = addesso.Closed
	target := 0.0
	if m == addesso.Legato {
		target = 1
	}
	e.approach(target, addesso.ModeSwitchTime)
	e.log.Debug("envelope mode", "mode", m)
	return nil
}

func (e *Envelope) NoteOn() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.mode == addesso.Legato {
		return
	}
	e.gate = addesso.Open
	e.approach(e.sustain, e.attack)
}

func (e *Envelope) NoteOff() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.mode == addesso.Legato {
		return
	}
	e.gate = addesso.Closed
	e.approach(0, e.release)
}

// approach cancels the segment in flight and starts a new one from the level
// it had reached.
func (e *Envelope) approach(target, timeConstant float64) {
	now := e.g.CurrentTime()
	p := e.gain.Gain()
	p.CancelScheduled(now)
	p.SetTargetAt(target, now, timeConstant)
}

// SetAttack, SetSustain and SetRelease take effect at the next note event.
func (e *Envelope) SetAttack(seconds float64) error {
	return e.set(&e.attack, "attack", seconds, addesso.AttackRange)
}

func (e *Envelope) SetSustain(level float64) error {
	return e.set(&e.sustain, "sustain", level, addesso.SustainRange)
}

func (e *Envelope) SetRelease(seconds float64) error {
	return e.set(&e.release, "release", seconds, addesso.ReleaseRange)
}

func (e *Envelope) set(field *float64, name string, value float64, r addesso.Range) error {
	if err := addesso.CheckRange(name, value, r); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	*field = value
	return nil
}

func (e *Envelope) State() addesso.EnvelopeState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return addesso.EnvelopeState{Mode: e.mode, Gate: e.gate}
}

func (e *Envelope) Params() EnvelopeParams {
	e.mu.Lock()
	defer e.mu.Unlock()
	return EnvelopeParams{Mode: e.mode, Attack: e.attack, Sustain: e.sustain, Release: e.release}
}

// Close releases the envelope gain. The voice feeding it should be closed
// first.
func (e *Envelope) Close() {
	e.g.Release(e.gain)
}
