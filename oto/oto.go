// Package oto plays a Renderer through the system audio output using
// github.com/ebitengine/oto/v3.
package oto

import (
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	addesso "github.com/albertobarberis/addesso-synth"
)

type Context struct {
	mu     sync.Mutex
	ctx    *oto.Context
	player *oto.Player
}

var _ addesso.AudioContext = (*Context)(nil)

// NewContext opens a mono float32 output and waits until the device is
// ready. bufferSize is the latency requested from the driver; zero means the
// driver default.
func NewContext(sampleRate int, bufferSize time.Duration) (*Context, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
		BufferSize:   bufferSize,
	})
	if err != nil {
		return nil, fmt.Errorf("cannot create oto context: %w", err)
	}
	<-ready
	return &Context{ctx: ctx}, nil
}

// Play starts pulling samples from r. A context plays one renderer at a
// time; calling Play again replaces the previous one.
func (c *Context) Play(r addesso.Renderer) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.player != nil {
		if err := c.player.Close(); err != nil {
			return fmt.Errorf("cannot close oto player: %w", err)
		}
	}
	c.player = c.ctx.NewPlayer(NewReader(r))
	c.player.Play()
	return nil
}

// Close stops the player and suspends the device. oto allows one context
// per process, so the context itself stays alive.
func (c *Context) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.player != nil {
		if err := c.player.Close(); err != nil {
			return fmt.Errorf("cannot close oto player: %w", err)
		}
		c.player = nil
	}
	if err := c.ctx.Suspend(); err != nil {
		return fmt.Errorf("cannot suspend oto context: %w", err)
	}
	return nil
}
