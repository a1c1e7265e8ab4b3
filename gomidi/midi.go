// Package gomidi plays the synth from a MIDI input port.
package gomidi

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

type (
	// Player receives note events, usually a *keyboard.Keyboard.
	Player interface {
		Press(note int)
		Release(note int)
	}

	// Input forwards the notes of an open MIDI port to a Player.
	Input struct {
		in     drivers.In
		stop   func()
		driver drivers.Driver
	}
)

// FindInput returns the first input port of d whose name starts with
// namePrefix. An empty prefix takes the first port.
func FindInput(d drivers.Driver, namePrefix string) (drivers.In, error) {
	ins, err := d.Ins()
	if err != nil {
		return nil, fmt.Errorf("cannot list MIDI inputs: %w", err)
	}
	for _, in := range ins {
		if strings.HasPrefix(in.String(), namePrefix) {
			return in, nil
		}
	}
	return nil, fmt.Errorf("could not find any MIDI input starting with %q", namePrefix)
}

// Open listens to the first input of d whose name starts with namePrefix.
// The returned Input owns d and closes it with the port; on error d is
// closed before returning.
func Open(d drivers.Driver, namePrefix string, p Player, logger *slog.Logger) (*Input, error) {
	port, err := FindInput(d, namePrefix)
	if err != nil {
		d.Close()
		return nil, err
	}
	i, err := Listen(port, p, logger)
	if err != nil {
		d.Close()
		return nil, err
	}
	i.driver = d
	return i, nil
}

// Listen opens in and forwards its notes on every channel to p.
func Listen(in drivers.In, p Player, logger *slog.Logger) (*Input, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if !in.IsOpen() {
		if err := in.Open(); err != nil {
			return nil, fmt.Errorf("opening MIDI input failed: %w", err)
		}
	}
	stop, err := midi.ListenTo(in, func(msg midi.Message, timestampms int32) {
		HandleMessage(p, msg)
	})
	if err != nil {
		in.Close()
		return nil, fmt.Errorf("cannot listen to %v: %w", in, err)
	}
	logger.Info("MIDI input open", "port", in.String())
	return &Input{in: in, stop: stop}, nil
}

// HandleMessage forwards a note on or note off to p and reports whether msg
// was one. A note on with velocity 0 counts as a note off.
func HandleMessage(p Player, msg midi.Message) bool {
	var channel, key, velocity uint8
	switch {
	case msg.GetNoteStart(&channel, &key, &velocity):
		p.Press(int(key))
	case msg.GetNoteEnd(&channel, &key):
		p.Release(int(key))
	default:
		return false
	}
	return true
}

func (i *Input) Close() error {
	i.stop()
	var errs []error
	if err := i.in.Close(); err != nil {
		errs = append(errs, fmt.Errorf("cannot close MIDI input: %w", err))
	}
	if i.driver != nil {
		if err := i.driver.Close(); err != nil {
			errs = append(errs, fmt.Errorf("cannot close MIDI driver: %w", err))
		}
	}
	return errors.Join(errs...)
}
