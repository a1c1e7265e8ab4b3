// Package graphtest provides an in-memory addesso.Graph for tests. It renders
// no audio: it keeps a manual clock, records every automation call, evaluates
// the scheduled curves, and tracks node lifetimes and connections, so tests
// can assert on what a component asked the backend to do.
package graphtest

import (
	"fmt"

	addesso "github.com/albertobarberis/addesso-synth"
	"github.com/albertobarberis/addesso-synth/automation"
)

type (
	Graph struct {
		sampleRate float64
		now        float64
		limit      int
		nodes      map[any]struct{}
		order      []addesso.Node
		created    int
		timers     []timer
		dest       *Gain
	}

	timer struct {
		deadline float64
		f        func()
	}

	// Call is one recorded automation request.
	Call struct {
		Op           string // "set", "ramp", "target" or "cancel"
		Value        float64
		Time         float64
		TimeConstant float64
	}

	Param struct {
		owner    *base
		timeline automation.Timeline
		calls    []Call
		mods     []addesso.Node
	}

	base struct {
		g         *Graph
		self      addesso.Node
		inputs    []addesso.Node
		outputs   []addesso.Node
		modulates []*Param
		released  bool
	}

	Oscillator struct {
		base
		freq      *Param
		StartTime float64
		StopTime  float64
		Started   bool
		Stopped   bool
	}

	Gain struct {
		base
		gain *Param
	}
)

// New returns a graph at time 0 with no node limit.
func New(sampleRate float64) *Graph {
	g := &Graph{sampleRate: sampleRate, limit: -1, nodes: make(map[any]struct{})}
	g.dest = &Gain{}
	g.dest.init(g, g.dest)
	g.dest.gain = g.dest.newParam(1)
	return g
}

// SetNodeLimit makes node creation fail with addesso.ErrResourceExhausted
// once n nodes are live. A negative n removes the limit.
func (g *Graph) SetNodeLimit(n int) { g.limit = n }

// Advance moves the clock forward by dt seconds, firing every timed callback
// that falls due, each with the clock set to its deadline.
func (g *Graph) Advance(dt float64) {
	end := g.now + dt
	for len(g.timers) > 0 && g.timers[0].deadline <= end {
		t := g.timers[0]
		g.timers = g.timers[1:]
		if t.deadline > g.now {
			g.now = t.deadline
		}
		t.f()
	}
	g.now = end
}

// LiveNodes is the number of created and not yet released nodes, not counting
// the destination.
func (g *Graph) LiveNodes() int { return len(g.nodes) }

// Oscillators returns the live oscillators in creation order.
func (g *Graph) Oscillators() []*Oscillator {
	var ret []*Oscillator
	for _, n := range g.order {
		if o, ok := n.(*Oscillator); ok && !o.released {
			ret = append(ret, o)
		}
	}
	return ret
}

// Created is the total number of nodes ever created.
func (g *Graph) Created() int { return g.created }

// PendingTimers is the number of timed callbacks not yet fired.
func (g *Graph) PendingTimers() int { return len(g.timers) }

func (g *Graph) SampleRate() float64  { return g.sampleRate }
func (g *Graph) CurrentTime() float64 { return g.now }

func (g *Graph) Destination() addesso.Node { return g.dest }

// DestinationGain gives tests access to the destination node.
func (g *Graph) DestinationGain() *Gain { return g.dest }

func (g *Graph) NewOscillator() (addesso.Oscillator, error) {
	if err := g.reserve(); err != nil {
		return nil, err
	}
	o := &Oscillator{}
	o.init(g, o)
	o.freq = o.newParam(0)
	return o, nil
}

func (g *Graph) NewGain() (addesso.Gain, error) {
	if err := g.reserve(); err != nil {
		return nil, err
	}
	a := &Gain{}
	a.init(g, a)
	a.gain = a.newParam(1)
	return a, nil
}

func (g *Graph) Release(n addesso.Node) {
	b := baseOf(n)
	if b == nil || b.g != g || b.released {
		return
	}
	b.disconnect()
	for _, in := range b.inputs {
		ib := baseOf(in)
		ib.outputs = removeNode(ib.outputs, n)
	}
	b.inputs = nil
	if o, ok := n.(*Oscillator); ok {
		for _, m := range o.freq.mods {
			mb := baseOf(m)
			mb.modulates = removeParam(mb.modulates, o.freq)
		}
		o.freq.mods = nil
	}
	b.released = true
	delete(g.nodes, n)
}

func (g *Graph) AfterFunc(t float64, f func()) {
	i := len(g.timers)
	for i > 0 && g.timers[i-1].deadline > t {
		i--
	}
	g.timers = append(g.timers, timer{})
	copy(g.timers[i+1:], g.timers[i:])
	g.timers[i] = timer{t, f}
}

func (g *Graph) reserve() error {
	if g.limit >= 0 && len(g.nodes) >= g.limit {
		return fmt.Errorf("%w: limit of %d nodes", addesso.ErrResourceExhausted, g.limit)
	}
	return nil
}

func (b *base) init(g *Graph, self addesso.Node) {
	b.g = g
	b.self = self
	if g.dest != nil {
		g.nodes[self] = struct{}{}
		g.order = append(g.order, self)
		g.created++
	}
}

func (b *base) newParam(initial float64) *Param {
	return &Param{owner: b, timeline: *automation.NewTimeline(initial)}
}

func baseOf(n addesso.Node) *base {
	switch v := n.(type) {
	case *Oscillator:
		return &v.base
	case *Gain:
		return &v.base
	}
	return nil
}

func (b *base) Connect(dst addesso.Node) error {
	if b.released {
		return addesso.ErrReleased
	}
	d, ok := dst.(*Gain)
	if !ok || d.g != b.g {
		return fmt.Errorf("cannot connect: %w", addesso.ErrForeignNode)
	}
	if d.released {
		return addesso.ErrReleased
	}
	d.inputs = append(d.inputs, b.self)
	b.outputs = append(b.outputs, dst)
	return nil
}

func (b *base) ConnectParam(dst addesso.Param) error {
	if b.released {
		return addesso.ErrReleased
	}
	p, ok := dst.(*Param)
	if !ok || p.owner.g != b.g {
		return fmt.Errorf("cannot connect to parameter: %w", addesso.ErrForeignNode)
	}
	p.mods = append(p.mods, b.self)
	b.modulates = append(b.modulates, p)
	return nil
}

func (b *base) DisconnectParam(dst addesso.Param) {
	p, ok := dst.(*Param)
	if !ok {
		return
	}
	p.mods = removeNode(p.mods, b.self)
	b.modulates = removeParam(b.modulates, p)
}

func (b *base) Disconnect() { b.disconnect() }

func (b *base) disconnect() {
	for _, o := range b.outputs {
		ob := baseOf(o)
		ob.inputs = removeNode(ob.inputs, b.self)
	}
	b.outputs = nil
	for _, p := range b.modulates {
		p.mods = removeNode(p.mods, b.self)
	}
	b.modulates = nil
}

// Released reports whether the graph has released the node.
func (b *base) Released() bool { return b.released }

// Inputs returns the nodes connected into this node.
func (b *base) Inputs() []addesso.Node { return append([]addesso.Node(nil), b.inputs...) }

// Outputs returns the nodes this node is connected to.
func (b *base) Outputs() []addesso.Node { return append([]addesso.Node(nil), b.outputs...) }

func (o *Oscillator) Frequency() addesso.Param { return o.freq }

// FrequencyParam is Frequency with the concrete type, for assertions.
func (o *Oscillator) FrequencyParam() *Param { return o.freq }

func (o *Oscillator) Start(t float64) {
	o.Started = true
	o.StartTime = t
}

func (o *Oscillator) Stop(t float64) {
	o.Stopped = true
	o.StopTime = t
}

func (a *Gain) Gain() addesso.Param { return a.gain }

// GainParam is Gain with the concrete type, for assertions.
func (a *Gain) GainParam() *Param { return a.gain }

func (p *Param) SetValueAt(value, t float64) {
	p.calls = append(p.calls, Call{Op: "set", Value: value, Time: t})
	p.timeline.SetValueAt(value, t)
}

func (p *Param) LinearRampTo(value, t float64) {
	p.calls = append(p.calls, Call{Op: "ramp", Value: value, Time: t})
	p.timeline.LinearRampTo(value, t)
}

func (p *Param) SetTargetAt(target, t, timeConstant float64) {
	p.calls = append(p.calls, Call{Op: "target", Value: target, Time: t, TimeConstant: timeConstant})
	p.timeline.SetTargetAt(target, t, timeConstant)
}

func (p *Param) CancelScheduled(t float64) {
	p.calls = append(p.calls, Call{Op: "cancel", Time: t})
	p.timeline.CancelAndHold(t)
}

// ValueAt evaluates the scheduled curve, ignoring modulators.
func (p *Param) ValueAt(t float64) float64 { return p.timeline.ValueAt(t) }

// Calls returns the recorded automation calls, oldest first.
func (p *Param) Calls() []Call { return append([]Call(nil), p.calls...) }

// LastCall returns the most recent automation call.
func (p *Param) LastCall() (Call, bool) {
	if len(p.calls) == 0 {
		return Call{}, false
	}
	return p.calls[len(p.calls)-1], true
}

// ResetCalls forgets the recorded calls but keeps the curve.
func (p *Param) ResetCalls() { p.calls = nil }

// Modulators returns the nodes connected into the parameter.
func (p *Param) Modulators() []addesso.Node { return append([]addesso.Node(nil), p.mods...) }

func removeNode(s []addesso.Node, x addesso.Node) []addesso.Node {
	for i, v := range s {
		if v == x {
			return append(s[:i], s[i+1:]...)
		}
	}
	return s
}

func removeParam(s []*Param, x *Param) []*Param {
	for i, v := range s {
		if v == x {
			return append(s[:i], s[i+1:]...)
		}
	}
	return s
}
