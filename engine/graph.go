// Package engine is a pure-Go rendering backend for the synth: an arena of
// sine oscillators and gain nodes, connected into a graph and rendered block
// by block with per-sample parameter automation.
//
// All control methods lock the graph, so they can be called from a control
// goroutine while another goroutine calls Render.
package engine

import (
	"fmt"
	"log/slog"
	"sync"

	addesso "github.com/albertobarberis/addesso-synth"
)

type (
	// Graph implements addesso.Graph.
	Graph struct {
		mu         sync.Mutex
		sampleRate float64
		dt         float64
		blockSize  int
		maxNodes   int
		frame      int64
		epoch      uint64
		nodes      map[*node]struct{}
		dest       *Gain
		timers     timerQueue
		silence    []float32
		log        *slog.Logger
	}

	Options struct {
		// BlockSize is the number of samples rendered between two automation
		// and timer updates. Defaults to 128.
		BlockSize int
		// MaxNodes limits the number of live oscillators and gains; creating
		// more fails with addesso.ErrResourceExhausted. Defaults to 4096.
		MaxNodes int
		Logger   *slog.Logger
	}
)

const (
	DefaultBlockSize = 128
	DefaultMaxNodes  = 4096
)

func New(sampleRate float64, opts Options) *Graph {
	if opts.BlockSize <= 0 {
		opts.BlockSize = DefaultBlockSize
	}
	if opts.MaxNodes <= 0 {
		opts.MaxNodes = DefaultMaxNodes
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	g := &Graph{
		sampleRate: sampleRate,
		dt:         1 / sampleRate,
		blockSize:  opts.BlockSize,
		maxNodes:   opts.MaxNodes,
		nodes:      make(map[*node]struct{}),
		silence:    make([]float32, opts.BlockSize),
		log:        opts.Logger,
	}
	g.dest = g.newGain(1)
	return g
}

func (g *Graph) SampleRate() float64 { return g.sampleRate }

func (g *Graph) CurrentTime() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.now()
}

func (g *Graph) now() float64 {
	return float64(g.frame) * g.dt
}

// NodeCount returns the number of live nodes, not counting the destination.
func (g *Graph) NodeCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.nodes)
}

func (g *Graph) NewOscillator() (addesso.Oscillator, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.reserve(); err != nil {
		return nil, err
	}
	o := &Oscillator{startAt: inf, stopAt: inf}
	o.freq = g.newParam(&o.node, 0)
	g.initNode(&o.node, o)
	return o, nil
}

func (g *Graph) NewGain() (addesso.Gain, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.reserve(); err != nil {
		return nil, err
	}
	return g.newGain(1), nil
}

func (g *Graph) Destination() addesso.Node { return g.dest }

func (g *Graph) Release(n addesso.Node) {
	g.mu.Lock()
	defer g.mu.Unlock()
	nd, err := g.resolve(n)
	if err != nil {
		return
	}
	nd.disconnect()
	for _, in := range nd.inputs {
		in.outputs = remove(in.outputs, nd)
	}
	nd.inputs = nil
	for _, p := range nd.params {
		for _, m := range p.mods {
			m.modulates = remove(m.modulates, p)
		}
		p.mods = nil
	}
	nd.released = true
	delete(g.nodes, nd)
}

func (g *Graph) AfterFunc(t float64, f func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.timers.push(t, f)
}

// Render renders the destination into buffer, advancing the graph clock.
// Timed callbacks fire between blocks, after the block that reaches their
// deadline, without holding the graph lock.
func (g *Graph) Render(buffer []float32) {
	for len(buffer) > 0 {
		n := min(len(buffer), g.blockSize)
		due := g.renderBlock(buffer[:n])
		g.runTimers(due)
		buffer = buffer[n:]
	}
}

func (g *Graph) renderBlock(out []float32) []func() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.epoch++
	copy(out, g.dest.pull(len(out), g.now()))
	g.frame += int64(len(out))
	return g.timers.popDue(g.now())
}

func (g *Graph) runTimers(due []func()) {
	for _, f := range due {
		func() {
			defer func() {
				if err := recover(); err != nil {
					g.log.Error("timed callback panicked", "error", err)
				}
			}()
			f()
		}()
	}
}

func (g *Graph) reserve() error {
	if len(g.nodes) >= g.maxNodes {
		return fmt.Errorf("%w: %d nodes live", addesso.ErrResourceExhausted, len(g.nodes))
	}
	return nil
}

func (g *Graph) newGain(initial float64) *Gain {
	a := &Gain{}
	a.gain = g.newParam(&a.node, initial)
	g.initNode(&a.node, a)
	return a
}

func (g *Graph) initNode(n *node, self source) {
	n.g = g
	n.self = self
	n.out = make([]float32, g.blockSize)
	if g.dest != nil {
		g.nodes[n] = struct{}{}
	}
}

func (g *Graph) newParam(owner *node, initial float64) *Param {
	p := &Param{owner: owner, buf: make([]float32, g.blockSize)}
	p.timeline.SetValueAt(initial, 0)
	owner.params = append(owner.params, p)
	return p
}

// resolve returns the engine node behind an addesso.Node of this graph.
func (g *Graph) resolve(n addesso.Node) (*node, error) {
	var nd *node
	switch v := n.(type) {
	case *Oscillator:
		nd = &v.node
	case *Gain:
		nd = &v.node
	default:
		return nil, addesso.ErrForeignNode
	}
	if nd.g != g {
		return nil, addesso.ErrForeignNode
	}
	if nd.released {
		return nil, addesso.ErrReleased
	}
	return nd, nil
}

func (g *Graph) resolveParam(p addesso.Param) (*Param, error) {
	v, ok := p.(*Param)
	if !ok || v.owner.g != g {
		return nil, addesso.ErrForeignNode
	}
	if v.owner.released {
		return nil, addesso.ErrReleased
	}
	return v, nil
}

func remove[T comparable](s []T, x T) []T {
	for i, v := range s {
		if v == x {
			return append(s[:i], s[i+1:]...)
		}
	}
	return s
}
