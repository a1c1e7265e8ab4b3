//go:build cgo

package cmd

import (
	"fmt"

	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

func NewMIDIDriver() (drivers.Driver, error) {
	d, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("cannot open rtmidi driver: %w", err)
	}
	return d, nil
}
