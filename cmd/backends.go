// Package cmd holds the pieces shared by the addesso commands whose
// availability depends on build tags: audio backends and the MIDI driver.
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"
	"time"

	addesso "github.com/albertobarberis/addesso-synth"
	"github.com/albertobarberis/addesso-synth/oto"
)

// NewBackend opens an audio output for the given sample rate, asking the
// driver for bufferSize frames at a time.
type NewBackend func(sampleRate, bufferSize int) (addesso.AudioContext, error)

// Backends lists the audio outputs compiled in, by name.
var Backends = map[string]NewBackend{
	"oto": func(sampleRate, bufferSize int) (addesso.AudioContext, error) {
		latency := time.Duration(bufferSize) * time.Second / time.Duration(sampleRate)
		return oto.NewContext(sampleRate, latency)
	},
}

func OpenBackend(name string, sampleRate, bufferSize int) (addesso.AudioContext, error) {
	b, ok := Backends[name]
	if !ok {
		names := make([]string, 0, len(Backends))
		for n := range Backends {
			names = append(names, n)
		}
		slices.Sort(names)
		return nil, fmt.Errorf("audio backend %q not available, this build has %s", name, strings.Join(names, ", "))
	}
	return b(sampleRate, bufferSize)
}

// NewLogger returns a text logger on stderr and makes it the default.
func NewLogger(level slog.Level) *slog.Logger {
	l := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(l)
	return l
}
