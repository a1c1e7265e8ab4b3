package keyboard

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	addesso "github.com/albertobarberis/addesso-synth"
	"github.com/albertobarberis/addesso-synth/synth"
)

type (
	// Terminal plays the synth from a raw terminal. A terminal reports key
	// presses but no releases, so a mapped key holds its note until the
	// space bar releases it or another key takes over.
	Terminal struct {
		kb          *Keyboard
		c           addesso.Controls
		out         io.Writer
		dials       [numDials]float64
		maxPartials int
	}

	dial int
)

const (
	dialPartials dial = iota
	dialTilt
	dialTension
	dialModulatorFrequency
	dialModulationIndex
	numDials
)

// DialStep is how far one key press turns a dial.
const DialStep = 0.025

var dialNames = [numDials]string{"partials", "tilt", "tension", "fm frequency", "fm index"}

// bindings maps keys to a dial and a direction.
var bindings = map[rune]struct {
	d   dial
	dir float64
}{
	'z': {dialPartials, -1}, 'x': {dialPartials, 1},
	'c': {dialTilt, -1}, 'v': {dialTilt, 1},
	'b': {dialTension, -1}, 'n': {dialTension, 1},
	',': {dialModulatorFrequency, -1}, '.': {dialModulatorFrequency, 1},
	'-': {dialModulationIndex, -1}, '=': {dialModulationIndex, 1},
}

const Help = `keys: a w s e d f t g y h u j k o l p ò à + ù play, space releases
      1-6 octave, z/x partials, [/] max partials, c/v tilt, b/n tension,
      ,/. fm frequency, -/= fm index
      m legato/asr, r start/stop, i info, q quit`

// NewTerminal positions the virtual dials on the current state of c. The
// partials dial reaches up to maxPartials, clamped to addesso.PartialsRange.
func NewTerminal(kb *Keyboard, c addesso.Controls, out io.Writer, maxPartials int) *Terminal {
	t := &Terminal{kb: kb, c: c, out: out}
	t.SetMaxPartials(maxPartials)
	s := c.Snapshot().Settings
	t.dials[dialPartials] = synth.PartialsDial(s.Partials, t.maxPartials)
	t.dials[dialTilt] = synth.TiltDial(s.Tilt)
	t.dials[dialTension] = synth.TensionDial(s.Tension)
	t.dials[dialModulatorFrequency] = synth.ModulatorFrequencyDial(s.ModulatorFrequency)
	t.dials[dialModulationIndex] = synth.ModulationIndexDial(s.ModulationIndex)
	return t
}

// SetMaxPartials sets the top of the partials dial. The dial keeps its
// position; the new range applies from its next turn.
func (t *Terminal) SetMaxPartials(n int) {
	t.maxPartials = int(addesso.PartialsRange.Clamp(float64(n)))
}

func (t *Terminal) MaxPartials() int {
	return t.maxPartials
}

// Run handles key presses read from in until q, Ctrl-C or Esc is pressed,
// in is exhausted, or ctx is done.
func (t *Terminal) Run(ctx context.Context, in io.Reader) error {
	keys := make(chan rune)
	errc := make(chan error, 1)
	go func() {
		r := bufio.NewReader(in)
		for {
			key, _, err := r.ReadRune()
			if err != nil {
				errc <- err
				return
			}
			select {
			case keys <- key:
			case <-ctx.Done():
				return
			}
		}
	}()
	t.println(Help)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-errc:
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("reading keys: %w", err)
		case key := <-keys:
			if t.Handle(key) {
				return nil
			}
		}
	}
}

// Handle performs the action bound to a key and reports whether it asks to
// quit.
func (t *Terminal) Handle(key rune) (quit bool) {
	switch {
	case key == 'q' || key == 0x03 || key == 0x1b:
		t.kb.ReleaseAll()
		return true
	case key == ' ':
		t.kb.ReleaseAll()
	case key >= '1' && key <= '6':
		t.kb.SetOctave(int(key - '0'))
		t.println(fmt.Sprintf("octave %d", t.kb.Octave()))
	case key == 'm':
		mode := addesso.ASR
		if t.c.Snapshot().Envelope.Mode == addesso.ASR {
			mode = addesso.Legato
		}
		t.kb.ReleaseAll()
		t.c.SetEnvelopeMode(mode)
		t.println(fmt.Sprintf("envelope %v", mode))
	case key == 'r':
		if t.c.Snapshot().Running {
			t.c.Stop()
			t.println("stopped")
		} else {
			t.c.Start()
			t.println("started")
		}
	case key == '[':
		t.SetMaxPartials(t.maxPartials / 2)
		t.println(fmt.Sprintf("max partials %d", t.maxPartials))
	case key == ']':
		t.SetMaxPartials(t.maxPartials * 2)
		t.println(fmt.Sprintf("max partials %d", t.maxPartials))
	case key == 'i':
		s := t.c.Snapshot()
		t.println(fmt.Sprintf("%.2f Hz, %d/%d partials, tension %.2f, tilt %.3f, fm %.1f Hz x %.1f, %v",
			s.Settings.Fundamental, s.Effective, s.Settings.Partials, s.Settings.Tension, s.Settings.Tilt,
			s.Settings.ModulatorFrequency, s.Settings.ModulationIndex, s.Envelope.Mode))
	default:
		if b, ok := bindings[key]; ok {
			t.turn(b.d, b.dir*DialStep)
			return false
		}
		t.kb.PressKey(key)
	}
	return false
}

func (t *Terminal) turn(d dial, delta float64) {
	v := addesso.Range{Min: 0, Max: 1}.Clamp(t.dials[d] + delta)
	t.dials[d] = v
	switch d {
	case dialPartials:
		t.c.SetRequiredPartialCount(synth.PartialsFromDial(v, t.maxPartials))
	case dialTilt:
		t.c.SetTilt(synth.TiltFromDial(v))
	case dialTension:
		t.c.SetTension(synth.TensionFromDial(v))
	case dialModulatorFrequency:
		t.c.SetModulatorFrequency(synth.ModulatorFrequencyFromDial(v))
	case dialModulationIndex:
		t.c.SetModulationIndex(synth.ModulationIndexFromDial(v))
	}
	t.println(fmt.Sprintf("%s %.3f", dialNames[d], v))
}

// println ends lines with \r\n, as the terminal is in raw mode.
func (t *Terminal) println(s string) {
	for _, line := range splitLines(s) {
		fmt.Fprintf(t.out, "%s\r\n", line)
	}
}

func splitLines(s string) []string {
	var ret []string
	start := 0
	for i, r := range s {
		if r == '\n' {
			ret = append(ret, s[start:i])
			start = i + 1
		}
	}
	return append(ret, s[start:])
}

// MakeRaw puts the terminal behind f in raw mode and returns a function
// restoring its previous state.
func MakeRaw(f *os.File) (restore func() error, err error) {
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return nil, fmt.Errorf("%s is not a terminal", f.Name())
	}
	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("cannot enter raw mode: %w", err)
	}
	return func() error { return term.Restore(fd, state) }, nil
}
