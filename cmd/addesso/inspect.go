package main

import (
	"github.com/spf13/cobra"

	"github.com/albertobarberis/addesso-synth/engine"
	"github.com/albertobarberis/addesso-synth/report"
	"github.com/albertobarberis/addesso-synth/synth"
)

var (
	inspectVoice voiceFlags
	inspectRows  int
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Print the partials a voice would play",
	Long: `Build the voice without playing it and print its state: the effective
partial count after the Nyquist limit, and the frequency and amplitude of
every partial.

Example:
  addesso inspect --fundamental 1000 --partials 64 --tension 1.2`,
	Args: cobra.NoArgs,
	RunE: func(c *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		if err := inspectVoice.apply(c, &cfg.Voice); err != nil {
			return err
		}
		g := engine.New(float64(cfg.SampleRate), engine.Options{Logger: logger})
		s, err := synth.New(g, cfg.Voice, synth.Options{Logger: logger})
		if err != nil {
			return err
		}
		return report.Write(c.OutOrStdout(), s.Snapshot(), report.Options{MaxPartials: inspectRows})
	},
}

func init() {
	inspectVoice.register(inspectCmd)
	inspectCmd.Flags().IntVar(&inspectRows, "rows", 32, "Show at most this many partials, 0 for all")
}
