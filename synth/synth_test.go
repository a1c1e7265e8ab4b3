package synth_test

import (
	"errors"
	"math"
	"testing"

	addesso "github.com/albertobarberis/addesso-synth"
	"github.com/albertobarberis/addesso-synth/graphtest"
	"github.com/albertobarberis/addesso-synth/synth"
)

func newSynth(t *testing.T) (*synth.Synth, *graphtest.Graph, *graphtest.Param) {
	t.Helper()
	g := graphtest.New(44100)
	s, err := synth.New(g, addesso.DefaultSettings(), synth.Options{})
	if err != nil {
		t.Fatalf("cannot create synth: %v", err)
	}
	in := g.DestinationGain().Inputs()
	if len(in) != 1 {
		t.Fatalf("destination has %v inputs, want the master gain", len(in))
	}
	return s, g, in[0].(*graphtest.Gain).GainParam()
}

func TestSynthDefaults(t *testing.T) {
	s, _, master := newSynth(t)
	snap := s.Snapshot()
	if snap.Running {
		t.Fatal("synth running before Start")
	}
	if v := master.ValueAt(1); v != 0 {
		t.Fatalf("master gain %v before Start, want 0", v)
	}
	if snap.Nyquist != 22050 {
		t.Fatalf("nyquist %v, want 22050", snap.Nyquist)
	}
	if snap.Effective != 1 || len(snap.Partials) != 1 || snap.Partials[0].Frequency != 261 {
		t.Fatalf("got %+v, want the fundamental alone at 261 Hz", snap.Partials)
	}
	if snap.Envelope.Mode != addesso.Legato || snap.Settings.Mode != addesso.Legato {
		t.Fatalf("envelope %+v, want legato", snap.Envelope)
	}
	if snap.Settings != addesso.DefaultSettings() {
		t.Fatalf("settings %+v, want the defaults", snap.Settings)
	}
}

func TestSynthStartStop(t *testing.T) {
	s, g, master := newSynth(t)
	s.SetMasterGain(0.05)
	if v := master.ValueAt(1); v != 0 {
		t.Fatal("SetMasterGain changed the output while stopped")
	}
	g.Advance(1)
	s.Start()
	if !s.Snapshot().Running {
		t.Fatal("not running after Start")
	}
	c, _ := master.LastCall()
	if c != (graphtest.Call{Op: "target", Value: 0.05, Time: 1, TimeConstant: addesso.MasterFadeTime}) {
		t.Fatalf("Start scheduled %+v", c)
	}
	s.SetMasterGain(0.08)
	c, _ = master.LastCall()
	if c.Value != 0.08 {
		t.Fatalf("SetMasterGain while running scheduled %+v", c)
	}
	s.Stop()
	c, _ = master.LastCall()
	if c.Op != "target" || c.Value != 0 {
		t.Fatalf("Stop scheduled %+v", c)
	}
	if s.Snapshot().Running {
		t.Fatal("running after Stop")
	}
}

func TestSynthClampsControls(t *testing.T) {
	s, _, _ := newSynth(t)
	s.SetRequiredPartialCount(1000)
	s.SetTension(5)
	s.SetTilt(-1)
	s.SetModulationIndex(1e6)
	s.SetModulatorFrequency(math.NaN())
	s.SetAttack(0)
	s.SetSustain(3)
	s.SetMasterGain(1)
	snap := s.Snapshot()
	st := snap.Settings
	if st.Partials != addesso.MaxPartials || st.Tension != 2 || st.Tilt != 0 {
		t.Fatalf("got %+v", st)
	}
	if st.ModulationIndex != 2000 || st.ModulatorFrequency != 10 {
		t.Fatalf("got %+v", st)
	}
	if st.Attack != 0.01 || st.Sustain != 1 || st.MasterGain != 0.1 {
		t.Fatalf("got %+v", st)
	}
	// tension 2 at 261 Hz: 261·i² ≤ 22050 for i ≤ 9
	if snap.Effective != 9 || len(snap.Partials) != 9 {
		t.Fatalf("effective count %v with %v partials, want 9", snap.Effective, len(snap.Partials))
	}
	s.SetFundamental(-3)
	if f := s.Snapshot().Settings.Fundamental; f != addesso.FundamentalRange.Min {
		t.Fatalf("fundamental %v, want the clamped %v", f, addesso.FundamentalRange.Min)
	}
}

func TestSynthEnvelope(t *testing.T) {
	s, _, _ := newSynth(t)
	s.NoteOn()
	if gate := s.Snapshot().Envelope.Gate; gate != addesso.Closed {
		t.Fatalf("legato NoteOn opened the gate")
	}
	s.SetEnvelopeMode(addesso.ASR)
	s.NoteOn()
	snap := s.Snapshot()
	if snap.Envelope != (addesso.EnvelopeState{Mode: addesso.ASR, Gate: addesso.Open}) {
		t.Fatalf("got envelope %+v", snap.Envelope)
	}
	if snap.Settings.Mode != addesso.ASR {
		t.Fatalf("settings mode %v", snap.Settings.Mode)
	}
	s.NoteOff()
	if gate := s.Snapshot().Envelope.Gate; gate != addesso.Closed {
		t.Fatal("gate open after NoteOff")
	}
	s.SetEnvelopeMode(addesso.EnvelopeMode(5))
	if m := s.Snapshot().Settings.Mode; m != addesso.ASR {
		t.Fatalf("invalid mode changed the settings to %v", m)
	}
}

func TestSynthResourceExhaustionIsLogged(t *testing.T) {
	s, g, _ := newSynth(t)
	g.SetNodeLimit(g.LiveNodes() + 4)
	s.SetRequiredPartialCount(10)
	snap := s.Snapshot()
	if snap.Effective != 3 || len(snap.Partials) != 3 {
		t.Fatalf("effective %v with %v partials, want 3", snap.Effective, len(snap.Partials))
	}
}

func TestSynthClose(t *testing.T) {
	s, g, _ := newSynth(t)
	s.Start()
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	g.Advance(1)
	if n := g.LiveNodes(); n != 0 {
		t.Fatalf("%v nodes live after Close", n)
	}
	s.Start()
	if s.Snapshot().Running {
		t.Fatal("closed synth started")
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}
}

func TestNewRejectsInvalidSettings(t *testing.T) {
	g := graphtest.New(44100)
	settings := addesso.DefaultSettings()
	settings.Partials = 0
	settings.Sustain = -1
	_, err := synth.New(g, settings, synth.Options{})
	if !errors.Is(err, addesso.ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter, got %v", err)
	}
	if n := g.LiveNodes(); n != 0 {
		t.Fatalf("rejected settings created %v nodes", n)
	}
}

func TestDials(t *testing.T) {
	cases := []struct {
		name string
		got  float64
		want float64
	}{
		{"partials at 0", float64(synth.PartialsFromDial(0, addesso.MaxPartials)), 1},
		{"partials at 1", float64(synth.PartialsFromDial(1, addesso.MaxPartials)), 512},
		{"partials at half", float64(synth.PartialsFromDial(0.5, addesso.MaxPartials)), 32},
		{"partials beyond the dial", float64(synth.PartialsFromDial(7, addesso.MaxPartials)), 512},
		{"partials capped at 64", float64(synth.PartialsFromDial(1, 64)), 64},
		{"partials capped at 64, half", float64(synth.PartialsFromDial(0.5, 64)), 4},
		{"partials cap of 1", float64(synth.PartialsFromDial(1, 1)), 1},
		{"partials cap beyond the range", float64(synth.PartialsFromDial(1, 9000)), 512},
		{"tilt at 0", synth.TiltFromDial(0), addesso.MaxTilt},
		{"tilt at 1", synth.TiltFromDial(1), addesso.MinTilt},
		{"tension at half", synth.TensionFromDial(0.5), 1},
		{"attack at 1", synth.AttackFromDial(1), 1},
		{"attack at 0", synth.AttackFromDial(0), 0.01},
		{"sustain at 1", synth.SustainFromDial(1), 1},
		{"release at 0", synth.ReleaseFromDial(0), 0.02},
		{"modulator at 0", synth.ModulatorFrequencyFromDial(0), 10},
		{"modulator at 1", synth.ModulatorFrequencyFromDial(1), 5000},
		{"index at 1", synth.ModulationIndexFromDial(1), 2000},
		{"master at 1", synth.MasterGainFromDial(1), 0.1},
		{"master below the dial", synth.MasterGainFromDial(-1), 0},
	}
	for _, c := range cases {
		if math.Abs(c.got-c.want) > 1e-12 {
			t.Errorf("%s: got %v, want %v", c.name, c.got, c.want)
		}
	}
}
