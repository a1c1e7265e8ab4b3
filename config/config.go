// Package config loads the startup configuration of the addesso commands.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	addesso "github.com/albertobarberis/addesso-synth"
)

// Config is the YAML configuration file. Fields left out keep their
// defaults.
type Config struct {
	SampleRate int `yaml:"sampleRate"`
	// BufferSize is the number of frames the audio backend asks for at a
	// time.
	BufferSize int `yaml:"bufferSize"`
	// Backend names the audio output, "oto" or "portaudio".
	Backend string `yaml:"backend"`
	// MIDIInput is the name prefix of the MIDI input port to open; empty
	// opens none.
	MIDIInput string `yaml:"midiInput"`
	// Listen is the address of the remote control server; empty disables it.
	Listen   string     `yaml:"listen"`
	LogLevel slog.Level `yaml:"logLevel"`
	Glide    float64    `yaml:"glide"`
	// MaxPartials is the top of the partials dial of the terminal.
	MaxPartials int              `yaml:"maxPartials"`
	Voice       addesso.Settings `yaml:"voice"`
}

// GlideRange bounds the frequency glide time constant, in seconds.
var GlideRange = addesso.Range{Min: 0, Max: 10}

func Default() Config {
	return Config{
		SampleRate:  44100,
		BufferSize:  1024,
		Backend:     "oto",
		LogLevel:    slog.LevelInfo,
		MaxPartials: addesso.MaxPartials,
		Voice:       addesso.DefaultSettings(),
	}
}

// Load reads the file at path over the defaults. An empty path returns the
// defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("could not read config: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse decodes YAML over the defaults and validates the result. Unknown
// keys are errors.
func Parse(data []byte) (Config, error) {
	c := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("could not parse config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.SampleRate < 8000 || c.SampleRate > 192000 {
		errs = append(errs, fmt.Errorf("%w: sample rate %d, want 8000..192000", addesso.ErrInvalidParameter, c.SampleRate))
	}
	if c.BufferSize <= 0 {
		errs = append(errs, fmt.Errorf("%w: buffer size %d", addesso.ErrInvalidParameter, c.BufferSize))
	}
	if c.Backend != "oto" && c.Backend != "portaudio" {
		errs = append(errs, fmt.Errorf("%w: backend %q, want oto or portaudio", addesso.ErrInvalidParameter, c.Backend))
	}
	errs = append(errs, addesso.CheckRange("glide", c.Glide, GlideRange))
	errs = append(errs, addesso.CheckRange("maxPartials", float64(c.MaxPartials), addesso.PartialsRange))
	if err := c.Voice.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("voice: %w", err))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Marshal encodes c as YAML, e.g. to write out a starting point for a
// config file.
func (c Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("could not marshal config: %w", err)
	}
	return data, nil
}
