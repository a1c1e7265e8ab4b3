package addesso_test

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	addesso "github.com/albertobarberis/addesso-synth"
)

func TestWavPCM16(t *testing.T) {
	buffer := []float32{0, 0.5, -1, 2}
	wav, err := addesso.Wav(buffer, 48000, true)
	if err != nil {
		t.Fatalf("cannot encode wav: %v", err)
	}
	if len(wav) != 44+2*len(buffer) {
		t.Fatalf("wav is %v bytes, want %v", len(wav), 44+2*len(buffer))
	}
	if !bytes.Equal(wav[:4], []byte("RIFF")) || !bytes.Equal(wav[8:16], []byte("WAVEfmt ")) {
		t.Fatalf("bad header % x", wav[:16])
	}
	if format := binary.LittleEndian.Uint16(wav[20:]); format != 1 {
		t.Fatalf("format %v, want PCM", format)
	}
	if channels := binary.LittleEndian.Uint16(wav[22:]); channels != 1 {
		t.Fatalf("%v channels, want mono", channels)
	}
	if rate := binary.LittleEndian.Uint32(wav[24:]); rate != 48000 {
		t.Fatalf("sample rate %v", rate)
	}
	if size := binary.LittleEndian.Uint32(wav[40:]); size != 8 {
		t.Fatalf("data chunk of %v bytes, want 8", size)
	}
	samples := make([]int16, len(buffer))
	binary.Read(bytes.NewReader(wav[44:]), binary.LittleEndian, samples)
	want := []int16{0, math.MaxInt16 / 2, -math.MaxInt16, math.MaxInt16}
	for i := range want {
		if samples[i] != want[i] {
			t.Fatalf("sample %v = %v, want %v", i, samples[i], want[i])
		}
	}
}

func TestWavFloat(t *testing.T) {
	buffer := []float32{0.25, -0.25}
	wav, err := addesso.Wav(buffer, 44100, false)
	if err != nil {
		t.Fatalf("cannot encode wav: %v", err)
	}
	if len(wav) != 58+4*len(buffer) {
		t.Fatalf("wav is %v bytes, want %v", len(wav), 58+4*len(buffer))
	}
	if riff := binary.LittleEndian.Uint32(wav[4:]); int(riff) != len(wav)-8 {
		t.Fatalf("riff chunk size %v, file is %v bytes", riff, len(wav))
	}
	if format := binary.LittleEndian.Uint16(wav[20:]); format != 3 {
		t.Fatalf("format %v, want IEEE float", format)
	}
	if v := math.Float32frombits(binary.LittleEndian.Uint32(wav[58+4:])); v != -0.25 {
		t.Fatalf("second sample %v", v)
	}
}

func TestRaw(t *testing.T) {
	raw, err := addesso.Raw([]float32{1, -1}, false)
	if err != nil {
		t.Fatalf("cannot encode raw: %v", err)
	}
	if len(raw) != 8 || math.Float32frombits(binary.LittleEndian.Uint32(raw)) != 1 {
		t.Fatalf("got % x", raw)
	}
}

type counter struct{ n int }

func (c *counter) Render(buffer []float32) { c.n += len(buffer) }

func TestRenderSeconds(t *testing.T) {
	c := &counter{}
	if buf := addesso.RenderSeconds(c, 1000, 0.5); len(buf) != 500 || c.n != 500 {
		t.Fatalf("rendered %v samples into %v, want 500", c.n, len(buf))
	}
	if buf := addesso.RenderSeconds(c, 1000, 0); buf != nil {
		t.Fatal("zero seconds rendered samples")
	}
}
