// Package script drives the synth controls from a Lua program, for scripted
// offline renders.
//
// A script sees these globals:
//
//	fundamental(hz) note(midi) tension(t) tilt(t) partials(n)
//	modfreq(hz) modindex(i) mode("legato"|"asr")
//	attack(s) sustain(l) release(s) gain(g)
//	note_on() note_off() start() stop() wait(seconds)
//
// wait is the only function that lets time pass.
package script

import (
	"context"
	"fmt"

	lua "github.com/yuin/gopher-lua"

	addesso "github.com/albertobarberis/addesso-synth"
)

// Run executes src against c. advance is called by wait with the number of
// seconds to render. Run returns when the script ends, fails, or ctx is done.
func Run(ctx context.Context, name, src string, c addesso.Controls, advance func(seconds float64)) error {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()
	for _, lib := range []struct {
		name string
		open lua.LGFunction
	}{
		{lua.LoadLibName, lua.OpenPackage},
		{lua.BaseLibName, lua.OpenBase},
		{lua.MathLibName, lua.OpenMath},
		{lua.StringLibName, lua.OpenString},
		{lua.TabLibName, lua.OpenTable},
	} {
		L.Push(L.NewFunction(lib.open))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}
	L.SetContext(ctx)
	register(L, c, advance)
	fn, err := L.LoadString(src)
	if err != nil {
		return fmt.Errorf("cannot load %s: %w", name, err)
	}
	L.Push(fn)
	if err := L.PCall(0, lua.MultRet, nil); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%s failed: %w", name, err)
	}
	return nil
}

func register(L *lua.LState, c addesso.Controls, advance func(float64)) {
	number := func(set func(float64)) lua.LGFunction {
		return func(L *lua.LState) int {
			set(float64(L.CheckNumber(1)))
			return 0
		}
	}
	event := func(f func()) lua.LGFunction {
		return func(L *lua.LState) int {
			f()
			return 0
		}
	}
	funcs := map[string]lua.LGFunction{
		"fundamental": number(c.SetFundamental),
		"note": func(L *lua.LState) int {
			c.SetFundamental(addesso.NoteToFreq(L.CheckInt(1)))
			return 0
		},
		"tension": number(c.SetTension),
		"tilt":    number(c.SetTilt),
		"partials": func(L *lua.LState) int {
			c.SetRequiredPartialCount(L.CheckInt(1))
			return 0
		},
		"modfreq":  number(c.SetModulatorFrequency),
		"modindex": number(c.SetModulationIndex),
		"mode": func(L *lua.LState) int {
			m, err := addesso.ParseEnvelopeMode(L.CheckString(1))
			if err != nil {
				L.ArgError(1, err.Error())
			}
			c.SetEnvelopeMode(m)
			return 0
		},
		"attack":   number(c.SetAttack),
		"sustain":  number(c.SetSustain),
		"release":  number(c.SetRelease),
		"gain":     number(c.SetMasterGain),
		"note_on":  event(c.NoteOn),
		"note_off": event(c.NoteOff),
		"start":    event(c.Start),
		"stop":     event(c.Stop),
		"wait": func(L *lua.LState) int {
			s := float64(L.CheckNumber(1))
			if s < 0 {
				L.ArgError(1, "negative duration")
			}
			if err := L.Context().Err(); err != nil {
				L.RaiseError("%v", err)
			}
			advance(s)
			return 0
		},
	}
	for name, f := range funcs {
		L.SetGlobal(name, L.NewFunction(f))
	}
}
