package report_test

import (
	"strings"
	"testing"

	"golang.org/x/text/language"

	addesso "github.com/albertobarberis/addesso-synth"
	"github.com/albertobarberis/addesso-synth/graphtest"
	"github.com/albertobarberis/addesso-synth/report"
	"github.com/albertobarberis/addesso-synth/synth"
)

func snapshot(t *testing.T, settings addesso.Settings) addesso.Snapshot {
	t.Helper()
	s, err := synth.New(graphtest.New(44100), settings, synth.Options{})
	if err != nil {
		t.Fatalf("cannot create synth: %v", err)
	}
	return s.Snapshot()
}

func TestWrite(t *testing.T) {
	settings := addesso.DefaultSettings()
	settings.Fundamental = 5000
	settings.Partials = 10
	settings.Mode = addesso.ASR
	var b strings.Builder
	if err := report.Write(&b, snapshot(t, settings), report.Options{}); err != nil {
		t.Fatalf("cannot write report: %v", err)
	}
	out := b.String()
	for _, want := range []string{
		"fundamental  5,000.00 Hz",
		"nyquist      22,050.00 Hz",
		"partials     4 of 10 requested (limited by nyquist)",
		"envelope     asr, gate closed, a 0.5 s",
		"(stopped)",
		"20,000.00 Hz",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("report lacks %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "not shown") {
		t.Fatalf("full report hides partials:\n%s", out)
	}
}

func TestWriteLimitsPartials(t *testing.T) {
	settings := addesso.DefaultSettings()
	settings.Partials = 6
	var b strings.Builder
	if err := report.Write(&b, snapshot(t, settings), report.Options{MaxPartials: 4, Language: language.German}); err != nil {
		t.Fatalf("cannot write report: %v", err)
	}
	out := b.String()
	if !strings.Contains(out, "2 more partials not shown") {
		t.Fatalf("report does not count hidden partials:\n%s", out)
	}
	if !strings.Contains(out, "1.044,00 Hz") {
		t.Fatalf("report does not use the German number format:\n%s", out)
	}
	if strings.Contains(out, "1.566,00 Hz") {
		t.Fatalf("hidden partial printed:\n%s", out)
	}
}
