// Package automation models the value of an automatable parameter over time:
// an initial value followed by scheduled events, evaluated the way Web Audio
// AudioParams are (immediate values, linear ramps, exponential approaches).
package automation

import (
	"math"
	"sort"
)

type (
	Kind int

	// Event is one scheduled change of a parameter.
	Event struct {
		Kind         Kind
		Time         float64
		Value        float64 // target value for SetTarget
		TimeConstant float64 // SetTarget only
	}

	// Timeline is the schedule of a single parameter. The zero value is a
	// parameter that is constantly 0. Timeline is not safe for concurrent
	// use; owners guard it.
	Timeline struct {
		initial float64
		events  []Event
	}

	// state is the evaluated curve right after an event.
	state struct {
		time   float64
		value  float64
		target bool    // exponential approach active since time
		goal   float64 // target value of the approach
		tc     float64
	}
)

const (
	SetValue Kind = iota
	LinearRamp
	SetTarget
)

// settled is the number of time constants after which an exponential
// approach is considered to have reached its target.
const settled = 20

func NewTimeline(initial float64) *Timeline {
	return &Timeline{initial: initial}
}

func (k Kind) String() string {
	switch k {
	case SetValue:
		return "setValue"
	case LinearRamp:
		return "linearRamp"
	case SetTarget:
		return "setTarget"
	}
	return "unknown"
}

func (t *Timeline) SetValueAt(value, at float64) {
	t.insert(Event{Kind: SetValue, Time: at, Value: value})
}

func (t *Timeline) LinearRampTo(value, at float64) {
	t.insert(Event{Kind: LinearRamp, Time: at, Value: value})
}

// SetTargetAt starts an exponential approach to target at time at. A
// non-positive time constant degenerates to an immediate value.
func (t *Timeline) SetTargetAt(target, at, timeConstant float64) {
	if !(timeConstant > 0) {
		t.SetValueAt(target, at)
		return
	}
	t.insert(Event{Kind: SetTarget, Time: at, Value: target, TimeConstant: timeConstant})
}

// CancelAndHold removes every event at or after at and holds the value the
// curve had at that time.
func (t *Timeline) CancelAndHold(at float64) {
	v := t.ValueAt(at)
	i := sort.Search(len(t.events), func(i int) bool { return t.events[i].Time >= at })
	t.events = append(t.events[:i], Event{Kind: SetValue, Time: at, Value: v})
}

// Events returns a copy of the scheduled events.
func (t *Timeline) Events() []Event {
	ret := make([]Event, len(t.events))
	copy(ret, t.events)
	return ret
}

// insert keeps events ordered by time; events at equal times keep their
// insertion order.
func (t *Timeline) insert(e Event) {
	i := sort.Search(len(t.events), func(i int) bool { return t.events[i].Time > e.Time })
	t.events = append(t.events, Event{})
	copy(t.events[i+1:], t.events[i:])
	t.events[i] = e
}

func (s *state) at(time float64) float64 {
	if !s.target || time <= s.time {
		return s.value
	}
	return s.goal + (s.value-s.goal)*math.Exp(-(time-s.time)/s.tc)
}

func (s *state) apply(e Event) {
	switch e.Kind {
	case SetTarget:
		s.value = s.at(e.Time)
		s.target, s.goal, s.tc = true, e.Value, e.TimeConstant
	default:
		s.value = e.Value
		s.target = false
	}
	s.time = e.Time
}

// ValueAt evaluates the curve at the given time.
func (t *Timeline) ValueAt(time float64) float64 {
	s := state{time: math.Inf(-1), value: t.initial}
	for _, e := range t.events {
		if e.Time > time {
			if e.Kind == LinearRamp {
				v0 := s.at(s.time)
				if math.IsInf(s.time, -1) {
					return v0
				}
				return v0 + (e.Value-v0)*(time-s.time)/(e.Time-s.time)
			}
			break
		}
		s.apply(e)
	}
	return s.at(time)
}

// Fill writes len(dst) consecutive values starting at start, spaced by step.
func (t *Timeline) Fill(dst []float32, start, step float64) {
	if len(t.events) == 0 {
		for i := range dst {
			dst[i] = float32(t.initial)
		}
		return
	}
	for i := range dst {
		dst[i] = float32(t.ValueAt(start + float64(i)*step))
	}
}

// Constant reports whether the curve no longer changes from time on, and the
// value it holds.
func (t *Timeline) Constant(time float64) (float64, bool) {
	if len(t.events) == 0 {
		return t.initial, true
	}
	last := t.events[len(t.events)-1]
	if last.Time > time {
		return 0, false
	}
	if last.Kind == SetTarget && time-last.Time < settled*last.TimeConstant {
		return 0, false
	}
	return t.ValueAt(time), true
}

// Prune folds every event at or before time into an equivalent, shorter
// schedule so that long-running parameters stay cheap to evaluate.
func (t *Timeline) Prune(time float64) {
	n := sort.Search(len(t.events), func(i int) bool { return t.events[i].Time > time })
	if n == 0 {
		return
	}
	s := state{time: math.Inf(-1), value: t.initial}
	for _, e := range t.events[:n] {
		s.apply(e)
	}
	var head Event
	switch {
	case s.target && time-s.time < settled*s.tc:
		// keep the running approach: the new initial value is where it started
		t.initial = s.value
		head = Event{Kind: SetTarget, Time: s.time, Value: s.goal, TimeConstant: s.tc}
	case s.target:
		t.initial = s.goal
		head = Event{Kind: SetValue, Time: s.time, Value: s.goal}
	default:
		t.initial = s.value
		head = Event{Kind: SetValue, Time: s.time, Value: s.value}
	}
	rest := t.events[n:]
	if len(rest) == 0 || rest[0].Kind != LinearRamp {
		// nothing refers back to the time of the last past event
		if head.Kind == SetValue {
			t.events = append(t.events[:0], rest...)
			return
		}
	}
	t.events = append(append(t.events[:0:0], head), rest...)
}
