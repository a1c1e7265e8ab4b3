package oto

import (
	"encoding/binary"
	"math"

	addesso "github.com/albertobarberis/addesso-synth"
)

// Reader is an io.Reader producing the output of a Renderer as little-endian
// float32 samples. It never ends.
type Reader struct {
	r      addesso.Renderer
	buffer []float32
}

const bytesPerSample = 4

func NewReader(r addesso.Renderer) *Reader {
	return &Reader{r: r}
}

// Read renders as many whole samples as fit in p.
func (r *Reader) Read(p []byte) (int, error) {
	n := len(p) / bytesPerSample
	if n == 0 {
		return 0, nil
	}
	// we reuse the old capacity of buffer by reslicing it
	if cap(r.buffer) < n {
		r.buffer = make([]float32, n)
	}
	r.buffer = r.buffer[:n]
	r.r.Render(r.buffer)
	FloatBufferToBytes(r.buffer, p)
	return n * bytesPerSample, nil
}

// FloatBufferToBytes writes buffer into dst as little-endian float32. dst
// must hold 4 bytes per sample.
func FloatBufferToBytes(buffer []float32, dst []byte) {
	for i, v := range buffer {
		binary.LittleEndian.PutUint32(dst[i*bytesPerSample:], math.Float32bits(v))
	}
}
