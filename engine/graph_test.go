package engine_test

import (
	"errors"
	"math"
	"testing"

	addesso "github.com/albertobarberis/addesso-synth"
	"github.com/albertobarberis/addesso-synth/engine"
)

const sampleRate = 44100

func sine(t *testing.T, g *engine.Graph, freq float64, dst addesso.Node) addesso.Oscillator {
	t.Helper()
	o, err := g.NewOscillator()
	if err != nil {
		t.Fatalf("cannot create oscillator: %v", err)
	}
	o.Frequency().SetValueAt(freq, 0)
	if err := o.Connect(dst); err != nil {
		t.Fatalf("cannot connect oscillator: %v", err)
	}
	o.Start(0)
	return o
}

func TestRenderSine(t *testing.T) {
	g := engine.New(sampleRate, engine.Options{})
	sine(t, g, 1000, g.Destination())
	buf := make([]float32, 1000)
	g.Render(buf)
	for i, v := range buf {
		want := math.Sin(2 * math.Pi * 1000 * float64(i) / sampleRate)
		if math.Abs(float64(v)-want) > 1e-4 {
			t.Fatalf("sample %v = %v, want %v", i, v, want)
		}
	}
	if got, want := g.CurrentTime(), 1000.0/sampleRate; math.Abs(got-want) > 1e-12 {
		t.Fatalf("CurrentTime = %v after 1000 samples, want %v", got, want)
	}
}

func TestRenderSilentBeforeStartAndAfterStop(t *testing.T) {
	g := engine.New(sampleRate, engine.Options{})
	o := sine(t, g, 441, g.Destination())
	o.Start(100.0 / sampleRate)
	o.Stop(200.0 / sampleRate)
	buf := make([]float32, 400)
	g.Render(buf)
	for i, v := range buf {
		outside := i < 99 || i > 201
		if outside && v != 0 {
			t.Fatalf("sample %v = %v outside the start/stop window", i, v)
		}
	}
	if buf[125] == 0 {
		t.Fatal("oscillator silent inside its start/stop window")
	}
}

func TestGainAutomation(t *testing.T) {
	g := engine.New(sampleRate, engine.Options{BlockSize: 64})
	amp, err := g.NewGain()
	if err != nil {
		t.Fatalf("cannot create gain: %v", err)
	}
	if err := amp.Connect(g.Destination()); err != nil {
		t.Fatalf("cannot connect gain: %v", err)
	}
	sine(t, g, 1000, amp)
	end := 500.0 / sampleRate
	amp.Gain().SetValueAt(0, 0)
	amp.Gain().LinearRampTo(1, end)
	buf := make([]float32, 600)
	g.Render(buf)
	for i, v := range buf {
		ramp := math.Min(float64(i)/500, 1)
		want := ramp * math.Sin(2*math.Pi*1000*float64(i)/sampleRate)
		if math.Abs(float64(v)-want) > 1e-4 {
			t.Fatalf("sample %v = %v, want %v", i, v, want)
		}
	}
}

func TestGainSumsInputs(t *testing.T) {
	g := engine.New(sampleRate, engine.Options{})
	a := sine(t, g, 300, g.Destination())
	sine(t, g, 300, g.Destination())
	if err := a.Connect(g.Destination()); err != nil {
		t.Fatalf("duplicate connect failed: %v", err)
	}
	buf := make([]float32, 200)
	g.Render(buf)
	for i, v := range buf {
		want := 2 * math.Sin(2*math.Pi*300*float64(i)/sampleRate)
		if math.Abs(float64(v)-want) > 2e-4 {
			t.Fatalf("sample %v = %v, want %v", i, v, want)
		}
	}
}

func TestFrequencyModulation(t *testing.T) {
	render := func(index float64) []float32 {
		g := engine.New(sampleRate, engine.Options{})
		carrier := sine(t, g, 1000, g.Destination())
		depth, err := g.NewGain()
		if err != nil {
			t.Fatalf("cannot create gain: %v", err)
		}
		depth.Gain().SetValueAt(index, 0)
		sine(t, g, 50, depth)
		if err := depth.ConnectParam(carrier.Frequency()); err != nil {
			t.Fatalf("ConnectParam failed: %v", err)
		}
		buf := make([]float32, 2048)
		g.Render(buf)
		return buf
	}
	plain, modulated := render(0), render(400)
	for i, v := range plain {
		want := math.Sin(2 * math.Pi * 1000 * float64(i) / sampleRate)
		if math.Abs(float64(v)-want) > 1e-4 {
			t.Fatalf("index 0: sample %v = %v, want the unmodulated %v", i, v, want)
		}
	}
	diff := 0.0
	for i := range plain {
		diff = math.Max(diff, math.Abs(float64(plain[i]-modulated[i])))
	}
	if diff < 0.5 {
		t.Fatalf("modulation changed the output by at most %v", diff)
	}
}

func TestAfterFunc(t *testing.T) {
	g := engine.New(sampleRate, engine.Options{BlockSize: 128})
	deadline := 1000.0 / sampleRate
	var firedAt float64
	fired := 0
	g.AfterFunc(deadline, func() {
		fired++
		firedAt = g.CurrentTime()
		// callbacks run outside the graph lock
		if _, err := g.NewGain(); err != nil {
			t.Errorf("NewGain from a callback failed: %v", err)
		}
	})
	g.AfterFunc(deadline/2, func() { panic("boom") })
	buf := make([]float32, 900)
	g.Render(buf)
	if fired != 0 {
		t.Fatal("callback fired before its deadline")
	}
	g.Render(buf)
	if fired != 1 {
		t.Fatalf("callback fired %v times, want 1", fired)
	}
	if firedAt < deadline || firedAt > deadline+128.0/sampleRate {
		t.Fatalf("callback fired at %v, want within a block after %v", firedAt, deadline)
	}
	g.Render(buf)
	if fired != 1 {
		t.Fatal("callback fired twice")
	}
}

func TestResourceLimit(t *testing.T) {
	g := engine.New(sampleRate, engine.Options{MaxNodes: 2})
	o, err := g.NewOscillator()
	if err != nil {
		t.Fatalf("cannot create oscillator: %v", err)
	}
	if _, err := g.NewGain(); err != nil {
		t.Fatalf("cannot create gain: %v", err)
	}
	if _, err := g.NewGain(); !errors.Is(err, addesso.ErrResourceExhausted) {
		t.Fatalf("expected ErrResourceExhausted, got %v", err)
	}
	g.Release(o)
	if n := g.NodeCount(); n != 1 {
		t.Fatalf("NodeCount = %v after release, want 1", n)
	}
	if _, err := g.NewOscillator(); err != nil {
		t.Fatalf("cannot create oscillator after release: %v", err)
	}
}

func TestConnectErrors(t *testing.T) {
	g := engine.New(sampleRate, engine.Options{})
	other := engine.New(sampleRate, engine.Options{})
	o, _ := g.NewOscillator()
	o2, _ := g.NewOscillator()
	if err := o.Connect(o2); !errors.Is(err, addesso.ErrInvalidParameter) {
		t.Fatalf("connecting into an oscillator: expected ErrInvalidParameter, got %v", err)
	}
	if err := o.Connect(other.Destination()); !errors.Is(err, addesso.ErrForeignNode) {
		t.Fatalf("connecting across graphs: expected ErrForeignNode, got %v", err)
	}
	o3, _ := other.NewOscillator()
	if err := o.ConnectParam(o3.Frequency()); !errors.Is(err, addesso.ErrForeignNode) {
		t.Fatalf("modulating across graphs: expected ErrForeignNode, got %v", err)
	}
	g.Release(o2)
	if err := o.ConnectParam(o2.Frequency()); !errors.Is(err, addesso.ErrReleased) {
		t.Fatalf("modulating a released node: expected ErrReleased, got %v", err)
	}
	if err := o2.Connect(g.Destination()); !errors.Is(err, addesso.ErrReleased) {
		t.Fatalf("connecting a released node: expected ErrReleased, got %v", err)
	}
	g.Release(o2)
}

func TestReleaseDisconnects(t *testing.T) {
	g := engine.New(sampleRate, engine.Options{})
	o := sine(t, g, 1000, g.Destination())
	g.Release(o)
	buf := make([]float32, 256)
	g.Render(buf)
	for i, v := range buf {
		if v != 0 {
			t.Fatalf("sample %v = %v from a released oscillator", i, v)
		}
	}
}

func TestFeedbackLoopRendersSilence(t *testing.T) {
	g := engine.New(sampleRate, engine.Options{})
	a, _ := g.NewGain()
	b, _ := g.NewGain()
	if err := a.Connect(b); err != nil {
		t.Fatal(err)
	}
	if err := b.Connect(a); err != nil {
		t.Fatal(err)
	}
	if err := a.Connect(g.Destination()); err != nil {
		t.Fatal(err)
	}
	buf := make([]float32, 256)
	g.Render(buf)
	for i, v := range buf {
		if v != 0 {
			t.Fatalf("sample %v = %v from a loop with no source", i, v)
		}
	}
}

func TestParamValue(t *testing.T) {
	g := engine.New(sampleRate, engine.Options{})
	o, _ := g.NewOscillator()
	p := o.Frequency().(*engine.Param)
	p.SetTargetAt(100, 0, 0.1)
	p.CancelScheduled(0.1)
	want := 100 * (1 - math.Exp(-1))
	if v := p.Value(0.5); math.Abs(v-want) > 1e-9 {
		t.Fatalf("held value %v, want %v", v, want)
	}
}
