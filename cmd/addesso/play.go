package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/albertobarberis/addesso-synth/cmd"
	"github.com/albertobarberis/addesso-synth/config"
	"github.com/albertobarberis/addesso-synth/engine"
	"github.com/albertobarberis/addesso-synth/gomidi"
	"github.com/albertobarberis/addesso-synth/keyboard"
	"github.com/albertobarberis/addesso-synth/rpc"
	"github.com/albertobarberis/addesso-synth/synth"
)

var (
	playBackend string
	playMIDI    string
	playListen  string
	playMaxPart int
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play the synth in realtime",
	Long: `Play the synth from the computer keyboard, a MIDI input or remote
commands. The keyboard is read only when standard input is a terminal.

Examples:
  addesso play
  addesso play --midi "Arturia" --listen :31337
  addesso play --backend portaudio -c addesso.yml`,
	Args: cobra.NoArgs,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().StringVarP(&playBackend, "backend", "b", "", "Audio backend: oto, or portaudio when built with -tags portaudio")
	playCmd.Flags().StringVarP(&playMIDI, "midi", "m", "", "Open the first MIDI input whose name starts with this prefix")
	playCmd.Flags().StringVarP(&playListen, "listen", "l", "", "Accept remote commands on this address, e.g. "+rpc.DefaultAddress)
	playCmd.Flags().IntVar(&playMaxPart, "max-partials", 0, "Top of the partials dial of the terminal")
}

func runPlay(c *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	overrideString(c, "backend", &cfg.Backend, playBackend)
	overrideString(c, "midi", &cfg.MIDIInput, playMIDI)
	overrideString(c, "listen", &cfg.Listen, playListen)
	overrideInt(c, "max-partials", &cfg.MaxPartials, playMaxPart)
	if err := cfg.Validate(); err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(c.Context())
	defer cancel()

	g := engine.New(float64(cfg.SampleRate), engine.Options{Logger: logger})
	s, err := synth.New(g, cfg.Voice, synth.Options{Glide: cfg.Glide, Logger: logger})
	if err != nil {
		return err
	}
	audio, err := cmd.OpenBackend(cfg.Backend, cfg.SampleRate, cfg.BufferSize)
	if err != nil {
		return err
	}
	defer audio.Close()
	if err := audio.Play(g); err != nil {
		return err
	}
	s.Start()
	defer fadeOut(s)

	kb := keyboard.New(s)
	if cfg.MIDIInput != "" {
		in, err := openMIDI(cfg, kb, logger)
		if err != nil {
			return err
		}
		defer in.Close()
	}
	if cfg.Listen != "" {
		l, err := rpc.Listen(cfg.Listen)
		if err != nil {
			return err
		}
		go func() {
			if err := rpc.Serve(ctx, l, s, logger); err != nil {
				logger.Error("remote control stopped", "error", err)
			}
		}()
	}

	restore, err := keyboard.MakeRaw(os.Stdin)
	if err != nil {
		logger.Info("no terminal, playing until interrupted", "reason", err)
		<-ctx.Done()
		return nil
	}
	defer restore()
	err = keyboard.NewTerminal(kb, s, c.OutOrStdout(), cfg.MaxPartials).Run(ctx, os.Stdin)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func openMIDI(cfg config.Config, kb *keyboard.Keyboard, logger *slog.Logger) (*gomidi.Input, error) {
	d, err := cmd.NewMIDIDriver()
	if err != nil {
		return nil, err
	}
	return gomidi.Open(d, cfg.MIDIInput, kb, logger)
}

// fadeOut stops the synth and gives the master fade time to reach silence
// before the audio backend is closed.
func fadeOut(s *synth.Synth) {
	s.Stop()
	s.Close()
	time.Sleep(100 * time.Millisecond)
}
