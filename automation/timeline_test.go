package automation_test

import (
	"math"
	"testing"

	"github.com/albertobarberis/addesso-synth/automation"
)

const tolerance = 1e-9

func TestTimelineConstant(t *testing.T) {
	var zero automation.Timeline
	if v := zero.ValueAt(3); v != 0 {
		t.Fatalf("zero timeline = %v, want 0", v)
	}
	tl := automation.NewTimeline(0.5)
	if v, ok := tl.Constant(10); !ok || v != 0.5 {
		t.Fatalf("Constant = %v, %v, want 0.5, true", v, ok)
	}
}

func TestTimelineSetValue(t *testing.T) {
	tl := automation.NewTimeline(1)
	tl.SetValueAt(2, 1)
	tl.SetValueAt(3, 2)
	for _, c := range []struct{ at, want float64 }{{0, 1}, {0.999, 1}, {1, 2}, {1.5, 2}, {2, 3}, {100, 3}} {
		if v := tl.ValueAt(c.at); v != c.want {
			t.Fatalf("ValueAt(%v) = %v, want %v", c.at, v, c.want)
		}
	}
}

func TestTimelineLinearRamp(t *testing.T) {
	tl := automation.NewTimeline(0)
	tl.SetValueAt(1, 1)
	tl.LinearRampTo(0, 3)
	for _, c := range []struct{ at, want float64 }{{0.5, 0}, {1, 1}, {2, 0.5}, {2.5, 0.25}, {3, 0}, {4, 0}} {
		if v := tl.ValueAt(c.at); math.Abs(v-c.want) > tolerance {
			t.Fatalf("ValueAt(%v) = %v, want %v", c.at, v, c.want)
		}
	}
}

func TestTimelineSetTarget(t *testing.T) {
	tl := automation.NewTimeline(0)
	tl.SetTargetAt(1, 1, 0.5)
	if v := tl.ValueAt(1); v != 0 {
		t.Fatalf("approach starts at %v, want 0", v)
	}
	for _, dt := range []float64{0.1, 0.5, 1, 2} {
		want := 1 - math.Exp(-dt/0.5)
		if v := tl.ValueAt(1 + dt); math.Abs(v-want) > tolerance {
			t.Fatalf("ValueAt(%v) = %v, want %v", 1+dt, v, want)
		}
	}
	if _, ok := tl.Constant(2); ok {
		t.Fatal("approach reported constant after 2 time constants")
	}
	if v, ok := tl.Constant(100); !ok || math.Abs(v-1) > 1e-6 {
		t.Fatalf("Constant(100) = %v, %v, want about 1, true", v, ok)
	}
}

func TestTimelineSetTargetZeroTimeConstant(t *testing.T) {
	tl := automation.NewTimeline(0)
	tl.SetTargetAt(5, 1, 0)
	if ev := tl.Events(); len(ev) != 1 || ev[0].Kind != automation.SetValue {
		t.Fatalf("got events %+v, want a single setValue", ev)
	}
	if v := tl.ValueAt(1); v != 5 {
		t.Fatalf("ValueAt(1) = %v, want 5", v)
	}
}

func TestTimelineChainedTargets(t *testing.T) {
	tl := automation.NewTimeline(0)
	tl.SetTargetAt(1, 0, 0.1)
	tl.SetTargetAt(0, 0.2, 0.1)
	reached := 1 - math.Exp(-2)
	if v := tl.ValueAt(0.2); math.Abs(v-reached) > tolerance {
		t.Fatalf("second approach starts at %v, want %v", v, reached)
	}
	if v := tl.ValueAt(0.3); math.Abs(v-reached*math.Exp(-1)) > tolerance {
		t.Fatalf("ValueAt(0.3) = %v, want %v", v, reached*math.Exp(-1))
	}
}

func TestTimelineCancelAndHold(t *testing.T) {
	tl := automation.NewTimeline(0)
	tl.SetValueAt(1, 0)
	tl.LinearRampTo(0, 1)
	tl.SetValueAt(7, 2)
	tl.CancelAndHold(0.25)
	if v := tl.ValueAt(0.25); math.Abs(v-0.75) > tolerance {
		t.Fatalf("held value %v, want 0.75", v)
	}
	if v := tl.ValueAt(5); math.Abs(v-0.75) > tolerance {
		t.Fatalf("value after cancel %v, want the held 0.75", v)
	}
	tl.LinearRampTo(0.25, 0.75)
	if v := tl.ValueAt(0.5); math.Abs(v-0.5) > tolerance {
		t.Fatalf("ramp after cancel at %v, want 0.5", v)
	}
}

func TestTimelineInsertKeepsOrder(t *testing.T) {
	tl := automation.NewTimeline(0)
	tl.SetValueAt(3, 3)
	tl.SetValueAt(1, 1)
	tl.SetValueAt(2, 1)
	ev := tl.Events()
	if len(ev) != 3 || ev[0].Value != 1 || ev[1].Value != 2 || ev[2].Value != 3 {
		t.Fatalf("got events %+v", ev)
	}
	if v := tl.ValueAt(1); v != 2 {
		t.Fatalf("ValueAt(1) = %v, want the later event 2", v)
	}
}

func TestTimelineFill(t *testing.T) {
	tl := automation.NewTimeline(0)
	tl.SetValueAt(0, 0)
	tl.LinearRampTo(1, 1)
	buf := make([]float32, 5)
	tl.Fill(buf, 0, 0.25)
	for i, want := range []float32{0, 0.25, 0.5, 0.75, 1} {
		if math.Abs(float64(buf[i]-want)) > 1e-6 {
			t.Fatalf("Fill[%v] = %v, want %v", i, buf[i], want)
		}
	}
}

func TestTimelinePrunePreservesCurve(t *testing.T) {
	build := func() *automation.Timeline {
		tl := automation.NewTimeline(0.2)
		tl.SetValueAt(1, 0.1)
		tl.SetTargetAt(0.5, 0.2, 0.05)
		tl.SetValueAt(0.3, 0.4)
		tl.LinearRampTo(0.9, 0.6)
		tl.SetTargetAt(0, 0.8, 0.1)
		return tl
	}
	ref := build()
	for _, at := range []float64{0.05, 0.1, 0.25, 0.45, 0.5, 0.7, 0.85, 10} {
		pruned := build()
		pruned.Prune(at)
		if len(pruned.Events()) > len(ref.Events()) {
			t.Fatalf("Prune(%v) grew the schedule", at)
		}
		for _, q := range []float64{at, at + 0.01, at + 0.1, at + 0.3, at + 2} {
			if a, b := pruned.ValueAt(q), ref.ValueAt(q); math.Abs(a-b) > 1e-6 {
				t.Fatalf("Prune(%v) changed ValueAt(%v): %v, want %v", at, q, a, b)
			}
		}
	}
}

func TestKindString(t *testing.T) {
	for k, want := range map[automation.Kind]string{
		automation.SetValue:   "setValue",
		automation.LinearRamp: "linearRamp",
		automation.SetTarget:  "setTarget",
		automation.Kind(9):    "unknown",
	} {
		if got := k.String(); got != want {
			t.Fatalf("Kind(%d).String() = %q, want %q", int(k), got, want)
		}
	}
}
