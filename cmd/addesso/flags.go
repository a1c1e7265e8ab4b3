package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	addesso "github.com/albertobarberis/addesso-synth"
)

// voiceFlags override the voice settings of the config file.
type voiceFlags struct {
	fundamental, tension, tilt, modFreq, modIndex float64
	partials                                      int
	mode                                          string
}

func (f *voiceFlags) register(c *cobra.Command) {
	d := addesso.DefaultSettings()
	c.Flags().Float64Var(&f.fundamental, "fundamental", d.Fundamental, "Fundamental frequency in Hz")
	c.Flags().IntVarP(&f.partials, "partials", "n", d.Partials, "Requested number of partials")
	c.Flags().Float64Var(&f.tension, "tension", d.Tension, "Partial frequency exponent, 1 = harmonic")
	c.Flags().Float64Var(&f.tilt, "tilt", d.Tilt, "Spectral roll-off exponent")
	c.Flags().Float64Var(&f.modFreq, "modfreq", d.ModulatorFrequency, "FM modulator frequency in Hz")
	c.Flags().Float64Var(&f.modIndex, "modindex", d.ModulationIndex, "FM modulation index in Hz")
	c.Flags().StringVar(&f.mode, "mode", d.Mode.String(), "Envelope mode: legato or asr")
}

func (f *voiceFlags) apply(c *cobra.Command, s *addesso.Settings) error {
	overrideFloat(c, "fundamental", &s.Fundamental, f.fundamental)
	overrideInt(c, "partials", &s.Partials, f.partials)
	overrideFloat(c, "tension", &s.Tension, f.tension)
	overrideFloat(c, "tilt", &s.Tilt, f.tilt)
	overrideFloat(c, "modfreq", &s.ModulatorFrequency, f.modFreq)
	overrideFloat(c, "modindex", &s.ModulationIndex, f.modIndex)
	if c.Flags().Changed("mode") {
		m, err := addesso.ParseEnvelopeMode(f.mode)
		if err != nil {
			return err
		}
		s.Mode = m
	}
	return s.Validate()
}

func overrideString(c *cobra.Command, flag string, dst *string, value string) {
	if c.Flags().Changed(flag) {
		*dst = value
	}
}

func overrideFloat(c *cobra.Command, flag string, dst *float64, value float64) {
	if c.Flags().Changed(flag) {
		*dst = value
	}
}

func overrideInt(c *cobra.Command, flag string, dst *int, value int) {
	if c.Flags().Changed(flag) {
		*dst = value
	}
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("could not write file %v: %w", path, err)
	}
	return nil
}
