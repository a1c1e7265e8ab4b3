package oto_test

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/albertobarberis/addesso-synth/oto"
)

type ramp struct{ next float32 }

func (r *ramp) Render(buffer []float32) {
	for i := range buffer {
		buffer[i] = r.next
		r.next += 0.25
	}
}

func TestReaderRendersWholeSamples(t *testing.T) {
	r := oto.NewReader(&ramp{})
	p := make([]byte, 11)
	n, err := r.Read(p)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if n != 8 {
		t.Fatalf("read %v bytes, want 8", n)
	}
	if v := math.Float32frombits(binary.LittleEndian.Uint32(p[4:])); v != 0.25 {
		t.Fatalf("second sample %v, want 0.25", v)
	}
	n, _ = r.Read(p[:4])
	if v := math.Float32frombits(binary.LittleEndian.Uint32(p)); n != 4 || v != 0.5 {
		t.Fatalf("third sample %v (%v bytes), want 0.5", v, n)
	}
	if n, _ := r.Read(p[:3]); n != 0 {
		t.Fatalf("read %v bytes into a buffer shorter than a sample", n)
	}
}
