package voice

import (
	"fmt"

	addesso "github.com/albertobarberis/addesso-synth"
)

// Partial is one sine component of the voice: an oscillator feeding its own
// amplitude gain, which feeds the voice output. The Voice owns every Partial
// and is the only one creating and releasing them.
type Partial struct {
	harmonic  int
	frequency float64
	amplitude float64
	osc       addesso.Oscillator
	gain      addesso.Gain
}

// newPartial creates the backend nodes of a partial, starts the oscillator
// at now and fades the amplitude in from silence. On error no node is left
// behind.
func newPartial(g addesso.Graph, harmonic int, frequency, amplitude float64, out addesso.Node, now float64) (*Partial, error) {
	osc, err := g.NewOscillator()
	if err != nil {
		return nil, fmt.Errorf("partial %d: oscillator: %w", harmonic, err)
	}
	gain, err := g.NewGain()
	if err != nil {
		g.Release(osc)
		return nil, fmt.Errorf("partial %d: gain: %w", harmonic, err)
	}
	p := &Partial{harmonic: harmonic, osc: osc, gain: gain}
	if err := osc.Connect(gain); err != nil {
		p.release(g)
		return nil, fmt.Errorf("partial %d: %w", harmonic, err)
	}
	if err := gain.Connect(out); err != nil {
		p.release(g)
		return nil, fmt.Errorf("partial %d: %w", harmonic, err)
	}
	gain.Gain().SetValueAt(0, now)
	p.setFrequency(frequency, now, 0)
	p.setAmplitude(amplitude, now)
	osc.Start(now)
	return p, nil
}

func (p *Partial) Harmonic() int { return p.harmonic }

func (p *Partial) Frequency() float64 { return p.frequency }

func (p *Partial) Amplitude() float64 { return p.amplitude }

// setFrequency schedules the new frequency at now, immediately or, with a
// positive glide, as an exponential approach.
func (p *Partial) setFrequency(hz, now, glide float64) {
	p.frequency = hz
	f := p.osc.Frequency()
	if glide > 0 {
		f.CancelScheduled(now)
		f.SetTargetAt(hz, now, glide)
		return
	}
	f.SetValueAt(hz, now)
}

// setAmplitude drops whatever amplitude automation is in flight and
// approaches the new amplitude from the level reached.
func (p *Partial) setAmplitude(a, now float64) {
	p.amplitude = a
	g := p.gain.Gain()
	g.CancelScheduled(now)
	g.SetTargetAt(a, now, addesso.PartialAttackTime)
}

// fadeOut ramps the amplitude to zero and stops the oscillator at the end of
// the ramp, returning that deadline.
func (p *Partial) fadeOut(now float64) float64 {
	deadline := now + addesso.PartialReleaseTime
	g := p.gain.Gain()
	g.CancelScheduled(now)
	g.LinearRampTo(0, deadline)
	p.osc.Stop(deadline)
	p.amplitude = 0
	return deadline
}

func (p *Partial) release(g addesso.Graph) {
	g.Release(p.osc)
	g.Release(p.gain)
}

func (p *Partial) state() addesso.PartialState {
	return addesso.PartialState{Harmonic: p.harmonic, Frequency: p.frequency, Amplitude: p.amplitude}
}
