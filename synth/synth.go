// Package synth assembles the playable instrument on an audio graph: the
// partial bank, the envelope and the master gain, behind the
// addesso.Controls command surface.
package synth

import (
	"fmt"
	"log/slog"
	"sync"

	addesso "github.com/albertobarberis/addesso-synth"
	"github.com/albertobarberis/addesso-synth/voice"
)

type (
	// Synth implements addesso.Controls. Commands clamp their argument to the
	// documented range; failures of the layers below are logged, not
	// returned.
	Synth struct {
		mu       sync.Mutex
		g        addesso.Graph
		voice    *voice.Voice
		env      *voice.Envelope
		master   addesso.Gain
		settings addesso.Settings
		running  bool
		closed   bool
		log      *slog.Logger
	}

	Options struct {
		// Glide is passed to the voice, see voice.Options.
		Glide  float64
		Logger *slog.Logger
	}
)

var _ addesso.Controls = (*Synth)(nil)

// New builds the chain voice → envelope → master → destination on g. The
// master gain starts at 0; call Start to fade it in.
func New(g addesso.Graph, settings addesso.Settings, opts Options) (*Synth, error) {
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	master, err := g.NewGain()
	if err != nil {
		return nil, fmt.Errorf("master: %w", err)
	}
	if err := master.Connect(g.Destination()); err != nil {
		g.Release(master)
		return nil, fmt.Errorf("master: %w", err)
	}
	master.Gain().SetValueAt(0, g.CurrentTime())
	env, err := voice.NewEnvelope(g, voice.EnvelopeParamsOf(settings), master, opts.Logger)
	if err != nil {
		g.Release(master)
		return nil, err
	}
	v, err := voice.New(g, voice.ParamsOf(settings), env.Input(), voice.Options{Glide: opts.Glide, Logger: opts.Logger})
	if err != nil {
		env.Close()
		g.Release(master)
		return nil, err
	}
	return &Synth{g: g, voice: v, env: env, master: master, settings: settings, log: opts.Logger}, nil
}

func (s *Synth) SetFundamental(hz float64) {
	hz = s.clamp("fundamental", hz, addesso.FundamentalRange)
	s.apply("fundamental", hz, s.voice.SetFundamental(hz), func(st *addesso.Settings) { st.Fundamental = hz })
}

func (s *Synth) SetTension(t float64) {
	t = s.clamp("tension", t, addesso.TensionRange)
	s.apply("tension", t, s.voice.SetTension(t), func(st *addesso.Settings) { st.Tension = t })
}

func (s *Synth) SetTilt(t float64) {
	t = s.clamp("tilt", t, addesso.TiltRange)
	s.apply("tilt", t, s.voice.SetTilt(t), func(st *addesso.Settings) { st.Tilt = t })
}

func (s *Synth) SetRequiredPartialCount(n int) {
	n = int(s.clamp("partials", float64(n), addesso.PartialsRange))
	s.apply("partials", n, s.voice.SetRequiredPartialCount(n), func(st *addesso.Settings) { st.Partials = n })
}

func (s *Synth) SetModulatorFrequency(hz float64) {
	hz = s.clamp("modulatorFrequency", hz, addesso.ModulatorFrequencyRange)
	s.apply("modulatorFrequency", hz, s.voice.SetModulatorFrequency(hz), func(st *addesso.Settings) { st.ModulatorFrequency = hz })
}

func (s *Synth) SetModulationIndex(i float64) {
	i = s.clamp("modulationIndex", i, addesso.ModulationIndexRange)
	s.apply("modulationIndex", i, s.voice.SetModulationIndex(i), func(st *addesso.Settings) { st.ModulationIndex = i })
}

func (s *Synth) SetEnvelopeMode(m addesso.EnvelopeMode) {
	s.apply("mode", m, s.env.SetMode(m), func(st *addesso.Settings) { st.Mode = m })
}

func (s *Synth) NoteOn()  { s.env.NoteOn() }
func (s *Synth) NoteOff() { s.env.NoteOff() }

func (s *Synth) SetAttack(seconds float64) {
	seconds = s.clamp("attack", seconds, addesso.AttackRange)
	s.apply("attack", seconds, s.env.SetAttack(seconds), func(st *addesso.Settings) { st.Attack = seconds })
}

func (s *Synth) SetSustain(level float64) {
	level = s.clamp("sustain", level, addesso.SustainRange)
	s.apply("sustain", level, s.env.SetSustain(level), func(st *addesso.Settings) { st.Sustain = level })
}

func (s *Synth) SetRelease(seconds float64) {
	seconds = s.clamp("release", seconds, addesso.ReleaseRange)
	s.apply("release", seconds, s.env.SetRelease(seconds), func(st *addesso.Settings) { st.Release = seconds })
}

// SetMasterGain sets the output level; while stopped it is stored and used
// by the next Start.
func (s *Synth) SetMasterGain(g float64) {
	g = s.clamp("masterGain", g, addesso.MasterGainRange)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.MasterGain = g
	if s.running {
		s.fadeMaster(g)
	}
}

// Start fades the master gain in.
func (s *Synth) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running || s.closed {
		return
	}
	s.running = true
	s.fadeMaster(s.settings.MasterGain)
	s.log.Info("synth started")
}

// Stop fades the master gain out. The voice keeps running silently.
func (s *Synth) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.running = false
	s.fadeMaster(0)
	s.log.Info("synth stopped")
}

func (s *Synth) fadeMaster(target float64) {
	now := s.g.CurrentTime()
	p := s.master.Gain()
	p.CancelScheduled(now)
	p.SetTargetAt(target, now, addesso.MasterFadeTime)
}

// Close stops the synth, fades the voice out and releases every node of
// the chain once the fade has completed.
func (s *Synth) Close() error {
	s.Stop()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if err := s.voice.Close(); err != nil {
		return err
	}
	s.g.AfterFunc(s.g.CurrentTime()+addesso.PartialReleaseTime, func() {
		s.env.Close()
		s.g.Release(s.master)
	})
	return nil
}

func (s *Synth) Snapshot() addesso.Snapshot {
	s.mu.Lock()
	settings := s.settings
	running := s.running
	s.mu.Unlock()
	env := s.env.State()
	vp := s.voice.Params()
	settings.Fundamental = vp.Fundamental
	settings.Partials = vp.Partials
	settings.Tension = vp.Tension
	settings.Tilt = vp.Tilt
	settings.ModulatorFrequency = vp.ModulatorFrequency
	settings.ModulationIndex = vp.ModulationIndex
	settings.Mode = env.Mode
	return addesso.Snapshot{
		Settings:  settings,
		Nyquist:   addesso.Nyquist(s.g),
		Effective: s.voice.EffectivePartialCount(),
		Partials:  s.voice.Partials(),
		Envelope:  env,
		Running:   running,
	}
}

func (s *Synth) clamp(name string, v float64, r addesso.Range) float64 {
	c := r.Clamp(v)
	if c != v {
		s.log.Warn("control value clamped", "control", name, "value", v, "clamped", c)
	}
	return c
}

// apply records a successful command in the settings, or logs its error.
func (s *Synth) apply(name string, value any, err error, update func(*addesso.Settings)) {
	if err != nil {
		s.log.Error("control failed", "control", name, "value", value, "error", err)
		return
	}
	s.mu.Lock()
	update(&s.settings)
	s.mu.Unlock()
	s.log.Debug("control", "control", name, "value", value)
}
