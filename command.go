package addesso

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Command is one named control change, as carried by remote control and the
// command line. Value is ignored by commands taking no argument.
type Command struct {
	Name  string
	Value float64
}

var commands = map[string]func(c Controls, v float64){
	"fundamental":        func(c Controls, v float64) { c.SetFundamental(v) },
	"note":               func(c Controls, v float64) { c.SetFundamental(NoteToFreq(toInt(v, NoteRange))) },
	"tension":            func(c Controls, v float64) { c.SetTension(v) },
	"tilt":               func(c Controls, v float64) { c.SetTilt(v) },
	"partials":           func(c Controls, v float64) { c.SetRequiredPartialCount(toInt(v, PartialsRange)) },
	"modulatorFrequency": func(c Controls, v float64) { c.SetModulatorFrequency(v) },
	"modulationIndex":    func(c Controls, v float64) { c.SetModulationIndex(v) },
	"mode":               func(c Controls, v float64) { c.SetEnvelopeMode(EnvelopeMode(toInt(v, modeRange))) },
	"noteOn":             func(c Controls, _ float64) { c.NoteOn() },
	"noteOff":            func(c Controls, _ float64) { c.NoteOff() },
	"attack":             func(c Controls, v float64) { c.SetAttack(v) },
	"sustain":            func(c Controls, v float64) { c.SetSustain(v) },
	"release":            func(c Controls, v float64) { c.SetRelease(v) },
	"masterGain":         func(c Controls, v float64) { c.SetMasterGain(v) },
	"start":              func(c Controls, _ float64) { c.Start() },
	"stop":               func(c Controls, _ float64) { c.Stop() },
	"state":              func(Controls, float64) {},
}

// modeRange reaches one step past the valid modes on both sides, so that
// NaN and out of range values stay invalid.
var modeRange = Range{Min: float64(Legato) - 1, Max: float64(ASR) + 1}

// toInt converts v after clamping it to r, so NaN gives r.Min and the
// infinities give the bounds.
func toInt(v float64, r Range) int {
	return int(r.Clamp(v))
}

// Apply performs the command on c. Unknown names return ErrInvalidParameter;
// value errors are handled by c.
func (cmd Command) Apply(c Controls) error {
	f, ok := commands[cmd.Name]
	if !ok {
		return fmt.Errorf("%w: unknown command %q", ErrInvalidParameter, cmd.Name)
	}
	f(c, cmd.Value)
	return nil
}

// CommandNames lists the known commands in alphabetical order.
func CommandNames() []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// ParseCommand builds a command from its name and an optional textual
// value. The mode command also accepts "legato" and "asr".
func ParseCommand(name string, args ...string) (Command, error) {
	if _, ok := commands[name]; !ok {
		return Command{}, fmt.Errorf("%w: unknown command %q, want one of %s", ErrInvalidParameter, name, strings.Join(CommandNames(), ", "))
	}
	cmd := Command{Name: name}
	switch len(args) {
	case 0:
		return cmd, nil
	case 1:
	default:
		return Command{}, fmt.Errorf("%w: %s takes at most one value", ErrInvalidParameter, name)
	}
	if name == "mode" {
		if m, err := ParseEnvelopeMode(args[0]); err == nil {
			cmd.Value = float64(m)
			return cmd, nil
		}
	}
	v, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return Command{}, fmt.Errorf("%w: %s value %q: %v", ErrInvalidParameter, name, args[0], err)
	}
	cmd.Value = v
	return cmd, nil
}
