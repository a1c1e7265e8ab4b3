package voice

import (
	"fmt"

	addesso "github.com/albertobarberis/addesso-synth"
)

// fmRouter owns the shared modulator: one sine oscillator feeding one
// modulation index gain, whose output is summed into the frequency of every
// routed partial. A partial stays routed until it is released, including
// while it fades out. Routes do not own the partials.
type fmRouter struct {
	mod    addesso.Oscillator
	index  addesso.Gain
	routes map[*Partial]addesso.Param
}

func newFMRouter(g addesso.Graph, frequency, index, now float64) (*fmRouter, error) {
	mod, err := g.NewOscillator()
	if err != nil {
		return nil, fmt.Errorf("fm modulator: %w", err)
	}
	gain, err := g.NewGain()
	if err != nil {
		g.Release(mod)
		return nil, fmt.Errorf("fm index: %w", err)
	}
	if err := mod.Connect(gain); err != nil {
		g.Release(mod)
		g.Release(gain)
		return nil, fmt.Errorf("fm: %w", err)
	}
	mod.Frequency().SetValueAt(frequency, now)
	gain.Gain().SetValueAt(index, now)
	mod.Start(now)
	return &fmRouter{mod: mod, index: gain, routes: make(map[*Partial]addesso.Param)}, nil
}

// route connects the modulation to p.
func (r *fmRouter) route(p *Partial) error {
	if _, ok := r.routes[p]; ok {
		return nil
	}
	f := p.osc.Frequency()
	if err := r.index.ConnectParam(f); err != nil {
		return fmt.Errorf("fm route to partial %d: %w", p.harmonic, err)
	}
	r.routes[p] = f
	return nil
}

// unroute disconnects p, as part of its release.
func (r *fmRouter) unroute(p *Partial) {
	if f, ok := r.routes[p]; ok {
		r.index.DisconnectParam(f)
		delete(r.routes, p)
	}
}

func (r *fmRouter) setFrequency(hz, now float64) {
	f := r.mod.Frequency()
	f.CancelScheduled(now)
	f.SetTargetAt(hz, now, addesso.FMSmoothingTime)
}

func (r *fmRouter) setIndex(index, now float64) {
	g := r.index.Gain()
	g.CancelScheduled(now)
	g.SetTargetAt(index, now, addesso.FMSmoothingTime)
}

func (r *fmRouter) stop(t float64) {
	r.mod.Stop(t)
}

func (r *fmRouter) release(g addesso.Graph) {
	for p, f := range r.routes {
		r.index.DisconnectParam(f)
		delete(r.routes, p)
	}
	g.Release(r.mod)
	g.Release(r.index)
}
