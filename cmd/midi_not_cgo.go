//go:build !cgo

package cmd

import (
	"errors"

	"gitlab.com/gomidi/midi/v2/drivers"
)

func NewMIDIDriver() (drivers.Driver, error) {
	// with no cgo, there is no rtmidi and hence no MIDI input
	return nil, errors.New("MIDI input needs a build with cgo enabled")
}
