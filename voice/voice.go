// Package voice implements the additive synthesis core: a bank of sine
// partials bounded by the Nyquist frequency, the shared FM modulator routed
// into every partial, and the envelope gating the voice output.
//
// Every parameter change is expressed as scheduled automation on an
// addesso.Graph. Partials removed from the bank fade out and are released by
// a timed callback once the fade has completed.
package voice

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	addesso "github.com/albertobarberis/addesso-synth"
)

type (
	// Voice is the partial bank. Position i of the bank holds harmonic i+1;
	// the bank always keeps at least the fundamental.
	Voice struct {
		mu       sync.Mutex
		g        addesso.Graph
		out      addesso.Gain
		fm       *fmRouter
		partials []*Partial
		pending  []pendingRelease
		log      *slog.Logger
		glide    float64
		closed   bool

		fundamental float64
		required    int
		tension     float64
		tilt        float64
		modFreq     float64
		modIndex    float64
		effective   int
	}

	Options struct {
		// Glide is the time constant of frequency changes. Zero applies new
		// frequencies immediately.
		Glide  float64
		Logger *slog.Logger
	}

	// Params are the voice parameters taken from addesso.Settings.
	Params struct {
		Fundamental        float64
		Partials           int
		Tension            float64
		Tilt               float64
		ModulatorFrequency float64
		ModulationIndex    float64
	}

	pendingRelease struct {
		deadline float64
		partial  *Partial
	}
)

var ErrClosed = errors.New("voice is closed")

// ParamsOf extracts the voice parameters from the instrument settings.
func ParamsOf(s addesso.Settings) Params {
	return Params{
		Fundamental:        s.Fundamental,
		Partials:           s.Partials,
		Tension:            s.Tension,
		Tilt:               s.Tilt,
		ModulatorFrequency: s.ModulatorFrequency,
		ModulationIndex:    s.ModulationIndex,
	}
}

func (p Params) Validate() error {
	return errors.Join(
		addesso.CheckRange("fundamental", p.Fundamental, addesso.FundamentalRange),
		addesso.CheckRange("partials", float64(p.Partials), addesso.PartialsRange),
		addesso.CheckRange("tension", p.Tension, addesso.TensionRange),
		addesso.CheckRange("tilt", p.Tilt, addesso.TiltRange),
		addesso.CheckRange("modulatorFrequency", p.ModulatorFrequency, addesso.ModulatorFrequencyRange),
		addesso.CheckRange("modulationIndex", p.ModulationIndex, addesso.ModulationIndexRange),
	)
}

// New builds the voice on g and connects its output to dst. If the backend
// cannot create every node, everything created so far is released and the
// error is returned.
func New(g addesso.Graph, params Params, dst addesso.Node, opts Options) (*Voice, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	now := g.CurrentTime()
	out, err := g.NewGain()
	if err != nil {
		return nil, fmt.Errorf("voice output: %w", err)
	}
	if err := out.Connect(dst); err != nil {
		g.Release(out)
		return nil, fmt.Errorf("voice output: %w", err)
	}
	fm, err := newFMRouter(g, params.ModulatorFrequency, params.ModulationIndex, now)
	if err != nil {
		g.Release(out)
		return nil, err
	}
	v := &Voice{
		g:           g,
		out:         out,
		fm:          fm,
		log:         opts.Logger,
		glide:       opts.Glide,
		fundamental: params.Fundamental,
		required:    params.Partials,
		tension:     params.Tension,
		tilt:        params.Tilt,
		modFreq:     params.ModulatorFrequency,
		modIndex:    params.ModulationIndex,
	}
	if err := v.reconcile(true); err != nil {
		for _, p := range v.partials {
			p.release(g)
		}
		fm.release(g)
		g.Release(out)
		return nil, err
	}
	return v, nil
}

func (v *Voice) SetFundamental(hz float64) error {
	if err := addesso.CheckRange("fundamental", hz, addesso.FundamentalRange); err != nil {
		return err
	}
	return v.update(func() { v.fundamental = hz }, true)
}

func (v *Voice) SetTension(t float64) error {
	if err := addesso.CheckRange("tension", t, addesso.TensionRange); err != nil {
		return err
	}
	return v.update(func() { v.tension = t }, true)
}

func (v *Voice) SetTilt(t float64) error {
	if err := addesso.CheckRange("tilt", t, addesso.TiltRange); err != nil {
		return err
	}
	return v.update(func() { v.tilt = t }, false)
}

func (v *Voice) SetRequiredPartialCount(n int) error {
	if err := addesso.CheckRange("partials", float64(n), addesso.PartialsRange); err != nil {
		return err
	}
	return v.update(func() { v.required = n }, false)
}

// SetModulatorFrequency and SetModulationIndex only touch the shared
// modulator nodes; the routing to the partials is unchanged.
func (v *Voice) SetModulatorFrequency(hz float64) error {
	if err := addesso.CheckRange("modulatorFrequency", hz, addesso.ModulatorFrequencyRange); err != nil {
		return err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return ErrClosed
	}
	v.modFreq = hz
	v.fm.setFrequency(hz, v.g.CurrentTime())
	return nil
}

func (v *Voice) SetModulationIndex(i float64) error {
	if err := addesso.CheckRange("modulationIndex", i, addesso.ModulationIndexRange); err != nil {
		return err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return ErrClosed
	}
	v.modIndex = i
	v.fm.setIndex(i, v.g.CurrentTime())
	return nil
}

func (v *Voice) update(set func(), retune bool) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return ErrClosed
	}
	set()
	return v.reconcile(retune)
}

// reconcile brings the bank to the effective partial count of the current
// parameters. With retune, the frequency laws changed (fundamental or
// tension): every retained partial gets its new frequency, and its amplitude
// only when the count changes. Without retune, the amplitude laws changed
// (count or tilt) and every retained partial gets its new amplitude.
// Running it twice with the same parameters changes nothing.
func (v *Voice) reconcile(retune bool) error {
	now := v.g.CurrentTime()
	v.collect(now)
	n, err := EffectiveCount(v.fundamental, v.required, v.tension, addesso.Nyquist(v.g))
	if err != nil {
		return err
	}
	n = max(n, 1)
	resized := n != len(v.partials)
	v.effective = n
	for _, p := range v.partials[:min(n, len(v.partials))] {
		if retune {
			p.setFrequency(v.frequency(p.harmonic), now, v.glide)
		}
		if !retune || resized {
			p.setAmplitude(v.amplitude(p.harmonic), now)
		}
	}
	switch {
	case n < len(v.partials):
		v.shrink(n, now)
	case n > len(v.partials):
		return v.grow(n, now)
	}
	return nil
}

func (v *Voice) frequency(harmonic int) float64 {
	return PartialFrequency(v.fundamental, harmonic, v.tension)
}

func (v *Voice) amplitude(harmonic int) float64 {
	return PartialAmplitude(harmonic, v.tilt, v.effective)
}

// shrink removes partials from the tail until n are left. Removed partials
// keep sounding while they fade out and are queued for release.
func (v *Voice) shrink(n int, now float64) {
	from := len(v.partials)
	for len(v.partials) > n {
		last := len(v.partials) - 1
		p := v.partials[last]
		v.partials[last] = nil
		v.partials = v.partials[:last]
		deadline := p.fadeOut(now)
		v.pending = append(v.pending, pendingRelease{deadline: deadline, partial: p})
		v.g.AfterFunc(deadline, v.collectDue)
	}
	v.log.Debug("partials shrunk", "from", from, "to", n)
}

// grow appends partials until the bank holds n. If the backend refuses a
// node, the bank keeps the partials created so far, their amplitudes are
// corrected for the smaller count and the error is returned.
func (v *Voice) grow(n int, now float64) error {
	from := len(v.partials)
	for h := from + 1; h <= n; h++ {
		p, err := newPartial(v.g, h, v.frequency(h), v.amplitude(h), v.out, now)
		if err == nil {
			if err = v.fm.route(p); err != nil {
				p.release(v.g)
			}
		}
		if err != nil {
			v.effective = len(v.partials)
			for _, q := range v.partials {
				q.setAmplitude(v.amplitude(q.harmonic), now)
			}
			v.log.Error("cannot grow partial bank", "want", n, "have", len(v.partials), "error", err)
			return fmt.Errorf("growing to %d partials: %w", n, err)
		}
		v.partials = append(v.partials, p)
	}
	v.log.Debug("partials grown", "from", from, "to", n)
	return nil
}

func (v *Voice) collectDue() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.collect(v.g.CurrentTime())
}

// collect releases every queued partial whose fade-out has completed.
func (v *Voice) collect(now float64) {
	kept := v.pending[:0]
	for _, r := range v.pending {
		if r.deadline > now {
			kept = append(kept, r)
			continue
		}
		v.fm.unroute(r.partial)
		r.partial.release(v.g)
		v.log.Debug("partial released", "harmonic", r.partial.harmonic)
	}
	clear(v.pending[len(kept):])
	v.pending = kept
}

// Close fades the voice out and releases all of its nodes once the fade has
// completed. Further commands return ErrClosed.
func (v *Voice) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return nil
	}
	v.closed = true
	now := v.g.CurrentTime()
	v.shrink(0, now)
	deadline := now + addesso.PartialReleaseTime
	v.fm.stop(deadline)
	v.g.AfterFunc(deadline, func() {
		v.mu.Lock()
		defer v.mu.Unlock()
		v.collect(v.g.CurrentTime())
		v.fm.release(v.g)
		v.g.Release(v.out)
	})
	return nil
}

// EffectivePartialCount is the number of partials the current parameters
// allow below Nyquist, floored at 1.
func (v *Voice) EffectivePartialCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.effective
}

// Partials returns the state of the live partials, fundamental first.
// Partials still fading out are not included.
func (v *Voice) Partials() []addesso.PartialState {
	v.mu.Lock()
	defer v.mu.Unlock()
	ret := make([]addesso.PartialState, len(v.partials))
	for i, p := range v.partials {
		ret[i] = p.state()
	}
	return ret
}

// Pending is the number of removed partials waiting for release.
func (v *Voice) Pending() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.pending)
}

func (v *Voice) Params() Params {
	v.mu.Lock()
	defer v.mu.Unlock()
	return Params{
		Fundamental:        v.fundamental,
		Partials:           v.required,
		Tension:            v.tension,
		Tilt:               v.tilt,
		ModulatorFrequency: v.modFreq,
		ModulationIndex:    v.modIndex,
	}
}
