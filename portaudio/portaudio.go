//go:build portaudio

package portaudio

import (
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"

	addesso "github.com/albertobarberis/addesso-synth"
)

type Context struct {
	mu              sync.Mutex
	sampleRate      float64
	framesPerBuffer int
	stream          *portaudio.Stream
}

var _ addesso.AudioContext = (*Context)(nil)

// NewContext initializes PortAudio. Close terminates it.
func NewContext(sampleRate float64, framesPerBuffer int) (*Context, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("cannot initialize portaudio: %w", err)
	}
	return &Context{sampleRate: sampleRate, framesPerBuffer: framesPerBuffer}, nil
}

// Play opens a mono stream on the default output device, rendering from r
// in the stream callback.
func (c *Context) Play(r addesso.Renderer) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.closeStream(); err != nil {
		return err
	}
	s, err := portaudio.OpenDefaultStream(0, 1, c.sampleRate, c.framesPerBuffer, func(out []float32) {
		r.Render(out)
	})
	if err != nil {
		return fmt.Errorf("cannot open portaudio stream: %w", err)
	}
	if err := s.Start(); err != nil {
		s.Close()
		return fmt.Errorf("cannot start portaudio stream: %w", err)
	}
	c.stream = s
	return nil
}

func (c *Context) closeStream() error {
	if c.stream == nil {
		return nil
	}
	s := c.stream
	c.stream = nil
	if err := s.Stop(); err != nil {
		s.Close()
		return fmt.Errorf("cannot stop portaudio stream: %w", err)
	}
	if err := s.Close(); err != nil {
		return fmt.Errorf("cannot close portaudio stream: %w", err)
	}
	return nil
}

func (c *Context) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	err := c.closeStream()
	if terr := portaudio.Terminate(); terr != nil && err == nil {
		err = fmt.Errorf("cannot terminate portaudio: %w", terr)
	}
	return err
}
