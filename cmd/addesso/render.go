package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	addesso "github.com/albertobarberis/addesso-synth"
	"github.com/albertobarberis/addesso-synth/analysis"
	"github.com/albertobarberis/addesso-synth/engine"
	"github.com/albertobarberis/addesso-synth/script"
	"github.com/albertobarberis/addesso-synth/synth"
)

var (
	renderVoice   voiceFlags
	renderScript  string
	renderSeconds float64
	renderNote    int
	renderOutput  string
	renderRaw     bool
	renderPCM     bool
	renderAnalyze bool
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the synth offline to a .wav or .raw file",
	Long: `Render the synth offline. Without a script, the voice sounds for the given
number of seconds; with a Lua script, the script plays the controls and its
wait() calls decide the length.

Examples:
  addesso render --partials 32 --tilt 1 -o bright.wav
  addesso render --script arpeggio.lua --pcm16 -o arpeggio.wav
  addesso render --fundamental 5000 --partials 10 --analyze`,
	Args: cobra.NoArgs,
	RunE: runRender,
}

func init() {
	renderVoice.register(renderCmd)
	renderCmd.Flags().StringVarP(&renderScript, "script", "s", "", "Lua script playing the controls")
	renderCmd.Flags().Float64Var(&renderSeconds, "seconds", 2, "Length of the render when no script is given")
	renderCmd.Flags().IntVar(&renderNote, "note", -1, "MIDI note to play with note on, instead of --fundamental")
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "addesso.wav", "Output file, - for standard output")
	renderCmd.Flags().BoolVarP(&renderRaw, "raw", "r", false, "Write headerless samples instead of .wav")
	renderCmd.Flags().BoolVar(&renderPCM, "pcm16", false, "Write 16-bit signed PCM instead of float32")
	renderCmd.Flags().BoolVarP(&renderAnalyze, "analyze", "a", false, "Print the strongest spectral peaks of the end of the render")
}

func runRender(c *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	if err := renderVoice.apply(c, &cfg.Voice); err != nil {
		return err
	}
	sampleRate := float64(cfg.SampleRate)
	g := engine.New(sampleRate, engine.Options{Logger: logger})
	s, err := synth.New(g, cfg.Voice, synth.Options{Glide: cfg.Glide, Logger: logger})
	if err != nil {
		return err
	}
	s.Start()
	if renderNote >= 0 {
		s.SetFundamental(addesso.NoteToFreq(renderNote))
		s.NoteOn()
	}
	var buffer []float32
	advance := func(seconds float64) {
		buffer = append(buffer, addesso.RenderSeconds(g, sampleRate, seconds)...)
	}
	if renderScript != "" {
		src, err := os.ReadFile(renderScript)
		if err != nil {
			return fmt.Errorf("could not read script: %w", err)
		}
		if err := script.Run(c.Context(), filepath.Base(renderScript), string(src), s, advance); err != nil {
			return err
		}
	} else {
		advance(renderSeconds)
	}
	if len(buffer) == 0 {
		return fmt.Errorf("nothing rendered")
	}
	var data []byte
	if renderRaw {
		data, err = addesso.Raw(buffer, renderPCM)
	} else {
		data, err = addesso.Wav(buffer, cfg.SampleRate, renderPCM)
	}
	if err != nil {
		return err
	}
	if renderOutput == "-" {
		_, err = c.OutOrStdout().Write(data)
	} else {
		err = writeFile(renderOutput, data)
	}
	if err != nil {
		return err
	}
	logger.Info("rendered", "seconds", float64(len(buffer))/sampleRate, "output", renderOutput)
	if renderAnalyze {
		return printPeaks(c.ErrOrStderr(), buffer, sampleRate)
	}
	return nil
}

func printPeaks(w io.Writer, buffer []float32, sampleRate float64) error {
	size := 1
	for size*2 <= len(buffer) && size < 1<<16 {
		size *= 2
	}
	spec, err := analysis.PowerSpectrum(buffer[len(buffer)-size:], sampleRate, size)
	if err != nil {
		return err
	}
	peaks := analysis.Loudest(spec.Peaks(0.001), 16)
	sort.Slice(peaks, func(i, j int) bool { return peaks[i].Frequency < peaks[j].Frequency })
	var b strings.Builder
	l := analysis.Measure(buffer)
	fmt.Fprintf(&b, "peak %.1f dBFS, rms %.1f dBFS\n", l.Peak, l.RMS)
	fmt.Fprintf(&b, "%d peaks, %.0f Hz resolution, energy above Nyquist-1kHz %.3g\n", len(peaks), sampleRate/float64(size), spec.EnergyAbove(sampleRate/2-1000))
	for _, p := range peaks {
		fmt.Fprintf(&b, "%10.2f Hz %10.5f\n", p.Frequency, p.Amplitude)
	}
	_, err = io.WriteString(w, b.String())
	return err
}
