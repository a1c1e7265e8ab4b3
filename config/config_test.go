package config_test

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	addesso "github.com/albertobarberis/addesso-synth"
	"github.com/albertobarberis/addesso-synth/config"
)

func TestParse(t *testing.T) {
	c, err := config.Parse([]byte(`
sampleRate: 48000
backend: portaudio
midiInput: Arturia
logLevel: debug
maxPartials: 64
voice:
  fundamental: 110
  partials: 64
  mode: asr
`))
	if err != nil {
		t.Fatalf("cannot parse config: %v", err)
	}
	if c.SampleRate != 48000 || c.Backend != "portaudio" || c.MIDIInput != "Arturia" || c.LogLevel != slog.LevelDebug {
		t.Fatalf("got %+v", c)
	}
	if c.MaxPartials != 64 {
		t.Fatalf("max partials %v, want 64", c.MaxPartials)
	}
	if c.BufferSize != 1024 {
		t.Fatalf("buffer size %v, want the default 1024", c.BufferSize)
	}
	want := addesso.DefaultSettings()
	want.Fundamental = 110
	want.Partials = 64
	want.Mode = addesso.ASR
	if c.Voice != want {
		t.Fatalf("voice %+v, want %+v", c.Voice, want)
	}
}

func TestParseEmpty(t *testing.T) {
	c, err := config.Parse(nil)
	if err != nil {
		t.Fatalf("cannot parse empty config: %v", err)
	}
	if c != config.Default() {
		t.Fatalf("got %+v, want the defaults", c)
	}
}

func TestParseErrors(t *testing.T) {
	cases := map[string]string{
		"unknown key":   "sampleRat: 48000",
		"unknown voice": "voice: {partial: 3}",
		"bad mode":      "voice: {mode: poly}",
		"bad backend":   "backend: alsa",
		"out of range":  "voice: {tilt: 9}",
		"sample rate":   "sampleRate: 100",
		"glide":         "glide: -1",
		"max partials":  "maxPartials: 0",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := config.Parse([]byte(src)); err == nil {
				t.Fatalf("%q accepted", src)
			}
		})
	}
	_, err := config.Parse([]byte("voice: {tilt: 9}"))
	if !errors.Is(err, addesso.ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter, got %v", err)
	}
}

func TestLoad(t *testing.T) {
	c, err := config.Load("")
	if err != nil || c != config.Default() {
		t.Fatalf("empty path gave %+v, %v", c, err)
	}
	path := filepath.Join(t.TempDir(), "addesso.yml")
	data, err := config.Default().Marshal()
	if err != nil {
		t.Fatalf("cannot marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("cannot write config: %v", err)
	}
	c, err = config.Load(path)
	if err != nil {
		t.Fatalf("cannot load config: %v", err)
	}
	if c != config.Default() {
		t.Fatalf("marshaled defaults loaded as %+v", c)
	}
	if _, err := config.Load(filepath.Join(t.TempDir(), "missing.yml")); err == nil || !strings.Contains(err.Error(), "could not read") {
		t.Fatalf("expected a read error, got %v", err)
	}
}
