// Package report prints a snapshot of the synth as text.
package report

import (
	"fmt"
	"io"
	"math"
	"text/template"

	"github.com/Masterminds/sprig"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	addesso "github.com/albertobarberis/addesso-synth"
)

const voiceTemplate = `fundamental  {{ hz .Settings.Fundamental }}
nyquist      {{ hz .Nyquist }}
partials     {{ .Effective }} of {{ .Settings.Partials }} requested{{ if lt .Effective .Settings.Partials }} (limited by nyquist){{ end }}
tension      {{ num .Settings.Tension }}
tilt         {{ num .Settings.Tilt }}
fm           {{ hz .Settings.ModulatorFrequency }} x {{ num .Settings.ModulationIndex }}
envelope     {{ .Envelope.Mode }}, gate {{ .Envelope.Gate }}{{ if eq (toString .Envelope.Mode) "asr" }}, a {{ num .Settings.Attack }} s, s {{ num .Settings.Sustain }}, r {{ num .Settings.Release }} s{{ end }}
master       {{ num .Settings.MasterGain }}{{ if not .Running }} (stopped){{ end }}
{{- if .Partials }}

{{ printf "%4s %14s %10s %8s" "#" "Hz" "amplitude" "dB" }}
{{ repeat 39 "-" }}
{{ range .Partials }}{{ printf "%4d" .Harmonic }} {{ hz .Frequency | printf "%14s" }} {{ num .Amplitude | printf "%10s" }} {{ db .Amplitude | printf "%8s" }}
{{ end }}{{ if .Hidden }}{{ .Hidden }} more {{ if eq .Hidden 1 }}partial{{ else }}partials{{ end }} not shown
{{ end }}{{ end }}`

type (
	// Options control the length and locale of a report.
	Options struct {
		// MaxPartials limits the rows of the partial table; 0 shows all.
		MaxPartials int
		Language    language.Tag
	}

	view struct {
		addesso.Snapshot
		Hidden int
	}
)

// Write prints snap to w.
func Write(w io.Writer, snap addesso.Snapshot, opts Options) error {
	if opts.Language == language.Und {
		opts.Language = language.English
	}
	p := message.NewPrinter(opts.Language)
	funcs := sprig.TxtFuncMap()
	funcs["num"] = func(v float64) string { return p.Sprintf("%.4g", v) }
	funcs["hz"] = func(v float64) string { return p.Sprintf("%.2f Hz", v) }
	funcs["db"] = func(v float64) string {
		if v <= 0 {
			return "-inf"
		}
		return p.Sprintf("%.1f", 20*math.Log10(v))
	}
	t, err := template.New("voice").Funcs(funcs).Parse(voiceTemplate)
	if err != nil {
		return fmt.Errorf("cannot parse report template: %w", err)
	}
	v := view{Snapshot: snap}
	if opts.MaxPartials > 0 && opts.MaxPartials < len(snap.Partials) {
		v.Partials = snap.Partials[:opts.MaxPartials]
		v.Hidden = len(snap.Partials) - opts.MaxPartials
	}
	if err := t.Execute(w, v); err != nil {
		return fmt.Errorf("cannot write report: %w", err)
	}
	return nil
}
