package engine

import (
	"fmt"
	"math"

	"github.com/viterin/vek/vek32"

	addesso "github.com/albertobarberis/addesso-synth"
	"github.com/albertobarberis/addesso-synth/automation"
)

type (
	// source is implemented by every node kind; render computes one block of
	// output into the node's buffer.
	source interface {
		render(frames int, start float64) []float32
	}

	node struct {
		g         *Graph
		self      source
		inputs    []*node
		outputs   []*node
		modulates []*Param
		params    []*Param
		out       []float32
		epoch     uint64
		busy      bool
		released  bool
	}

	// Oscillator is a sine oscillator. Frequency modulation arrives through
	// nodes connected to its frequency parameter.
	Oscillator struct {
		node
		freq            *Param
		phase           float64
		startAt, stopAt float64
	}

	// Gain sums its inputs and multiplies the sum by its gain parameter.
	Gain struct {
		node
		gain *Param
	}

	// Param implements addesso.Param on top of an automation.Timeline, plus
	// any number of audio-rate modulators summed into the scheduled value.
	Param struct {
		owner    *node
		timeline automation.Timeline
		mods     []*node
		buf      []float32
	}
)

var inf = math.Inf(1)

// pull returns this block's output, rendering it at most once per block.
// A node reached again while it is being rendered is part of a feedback loop
// and contributes silence.
func (n *node) pull(frames int, start float64) []float32 {
	if n.epoch == n.g.epoch {
		return n.out[:frames]
	}
	if n.busy {
		return n.g.silence[:frames]
	}
	n.busy = true
	out := n.self.render(frames, start)
	n.busy = false
	n.epoch = n.g.epoch
	return out
}

func (n *node) Connect(dst addesso.Node) error {
	n.g.mu.Lock()
	defer n.g.mu.Unlock()
	if n.released {
		return addesso.ErrReleased
	}
	d, err := n.g.resolve(dst)
	if err != nil {
		return fmt.Errorf("cannot connect: %w", err)
	}
	if _, ok := d.self.(*Gain); !ok {
		return fmt.Errorf("cannot connect: %w: an oscillator has no audio input", addesso.ErrInvalidParameter)
	}
	for _, in := range d.inputs {
		if in == n {
			return nil
		}
	}
	d.inputs = append(d.inputs, n)
	n.outputs = append(n.outputs, d)
	return nil
}

func (n *node) ConnectParam(dst addesso.Param) error {
	n.g.mu.Lock()
	defer n.g.mu.Unlock()
	if n.released {
		return addesso.ErrReleased
	}
	p, err := n.g.resolveParam(dst)
	if err != nil {
		return fmt.Errorf("cannot connect to parameter: %w", err)
	}
	for _, m := range p.mods {
		if m == n {
			return nil
		}
	}
	p.mods = append(p.mods, n)
	n.modulates = append(n.modulates, p)
	return nil
}

func (n *node) DisconnectParam(dst addesso.Param) {
	n.g.mu.Lock()
	defer n.g.mu.Unlock()
	p, ok := dst.(*Param)
	if !ok {
		return
	}
	p.mods = remove(p.mods, n)
	n.modulates = remove(n.modulates, p)
}

func (n *node) Disconnect() {
	n.g.mu.Lock()
	defer n.g.mu.Unlock()
	n.disconnect()
}

func (n *node) disconnect() {
	for _, o := range n.outputs {
		o.inputs = remove(o.inputs, n)
	}
	n.outputs = nil
	for _, p := range n.modulates {
		p.mods = remove(p.mods, n)
	}
	n.modulates = nil
}

func (o *Oscillator) Frequency() addesso.Param { return o.freq }

func (o *Oscillator) Start(t float64) {
	o.g.mu.Lock()
	defer o.g.mu.Unlock()
	o.startAt = t
}

func (o *Oscillator) Stop(t float64) {
	o.g.mu.Lock()
	defer o.g.mu.Unlock()
	o.stopAt = t
}

func (o *Oscillator) render(frames int, start float64) []float32 {
	out := o.out[:frames]
	freq := o.freq.values(frames, start)
	dt := o.g.dt
	for i := range out {
		t := start + float64(i)*dt
		if t < o.startAt || t >= o.stopAt {
			out[i] = 0
			continue
		}
		out[i] = float32(math.Sin(2 * math.Pi * o.phase))
		_, o.phase = math.Modf(o.phase + float64(freq[i])*dt)
	}
	return out
}

func (a *Gain) Gain() addesso.Param { return a.gain }

func (a *Gain) render(frames int, start float64) []float32 {
	out := a.out[:frames]
	if len(a.inputs) == 0 {
		clear(out)
		return out
	}
	copy(out, a.inputs[0].pull(frames, start))
	for _, in := range a.inputs[1:] {
		vek32.Add_Inplace(out, in.pull(frames, start))
	}
	vek32.Mul_Inplace(out, a.gain.values(frames, start))
	return out
}

func (p *Param) SetValueAt(value, t float64) {
	p.owner.g.mu.Lock()
	defer p.owner.g.mu.Unlock()
	p.timeline.SetValueAt(value, t)
}

func (p *Param) LinearRampTo(value, t float64) {
	p.owner.g.mu.Lock()
	defer p.owner.g.mu.Unlock()
	p.timeline.LinearRampTo(value, t)
}

func (p *Param) SetTargetAt(target, t, timeConstant float64) {
	p.owner.g.mu.Lock()
	defer p.owner.g.mu.Unlock()
	p.timeline.SetTargetAt(target, t, timeConstant)
}

func (p *Param) CancelScheduled(t float64) {
	p.owner.g.mu.Lock()
	defer p.owner.g.mu.Unlock()
	p.timeline.CancelAndHold(t)
}

// Value returns the scheduled value at time t, without modulation.
func (p *Param) Value(t float64) float64 {
	p.owner.g.mu.Lock()
	defer p.owner.g.mu.Unlock()
	return p.timeline.ValueAt(t)
}

// values renders one block of the parameter: the automation curve plus the
// output of every modulator.
func (p *Param) values(frames int, start float64) []float32 {
	buf := p.buf[:frames]
	p.timeline.Prune(start)
	if v, ok := p.timeline.Constant(start); ok {
		for i := range buf {
			buf[i] = float32(v)
		}
	} else {
		p.timeline.Fill(buf, start, p.owner.g.dt)
	}
	for _, m := range p.mods {
		vek32.Add_Inplace(buf, m.pull(frames, start))
	}
	return buf
}
