// Package analysis measures rendered audio: a windowed magnitude spectrum
// and its peaks.
package analysis

import (
	"fmt"
	"math"
	"math/cmplx"
	"sort"

	"github.com/ktye/fft"
	"github.com/viterin/vek/vek32"
)

type (
	// Spectrum holds the amplitude of bins 0..size/2 of a Hann-windowed FFT.
	// A sine of amplitude A centered on a bin reads A in that bin.
	Spectrum struct {
		SampleRate float64
		Size       int
		Amplitude  []float64
	}

	Peak struct {
		Frequency float64
		Amplitude float64
	}
)

// PowerSpectrum analyses the first size samples. size must be a power of two
// and no larger than len(samples).
func PowerSpectrum(samples []float32, sampleRate float64, size int) (Spectrum, error) {
	if size < 2 || size&(size-1) != 0 {
		return Spectrum{}, fmt.Errorf("spectrum size %d is not a power of two", size)
	}
	if len(samples) < size {
		return Spectrum{}, fmt.Errorf("spectrum of %d samples needs %d", len(samples), size)
	}
	f, err := fft.New(size)
	if err != nil {
		return Spectrum{}, fmt.Errorf("cannot create fft: %w", err)
	}
	window := hann(size)
	windowed := vek32.Mul_Into(make([]float32, size), samples[:size], window)
	norm := float64(vek32.Sum(window)) / 2
	c := make([]complex128, size)
	for i, v := range windowed {
		c[i] = complex(float64(v), 0)
	}
	c = f.Transform(c)
	amp := make([]float64, size/2+1)
	for i := range amp {
		amp[i] = cmplx.Abs(c[i]) / norm
	}
	amp[0] /= 2
	amp[size/2] /= 2
	return Spectrum{SampleRate: sampleRate, Size: size, Amplitude: amp}, nil
}

func hann(n int) []float32 {
	w := make([]float32, n)
	for i := range w {
		w[i] = float32(0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n))))
	}
	return w
}

// BinFrequency returns the center frequency of bin k.
func (s Spectrum) BinFrequency(k int) float64 {
	return float64(k) * s.SampleRate / float64(s.Size)
}

// Peaks returns the local maxima louder than relThreshold times the loudest
// bin, ordered by frequency. Peak frequencies are refined by parabolic
// interpolation over the neighbouring bins.
func (s Spectrum) Peaks(relThreshold float64) []Peak {
	a := s.Amplitude
	if len(a) < 3 {
		return nil
	}
	loudest := 0.0
	for _, v := range a {
		loudest = math.Max(loudest, v)
	}
	var ret []Peak
	for k := 1; k < len(a)-1; k++ {
		if a[k] < loudest*relThreshold || a[k] <= a[k-1] || a[k] < a[k+1] {
			continue
		}
		offset := 0.0
		if d := a[k-1] - 2*a[k] + a[k+1]; d != 0 {
			offset = 0.5 * (a[k-1] - a[k+1]) / d
		}
		ret = append(ret, Peak{Frequency: s.BinFrequency(k) + offset*s.SampleRate/float64(s.Size), Amplitude: a[k]})
	}
	return ret
}

// Loudest returns the n loudest peaks, loudest first.
func Loudest(peaks []Peak, n int) []Peak {
	ret := append([]Peak(nil), peaks...)
	sort.Slice(ret, func(i, j int) bool { return ret[i].Amplitude > ret[j].Amplitude })
	if len(ret) > n {
		ret = ret[:n]
	}
	return ret
}

// EnergyAbove returns the summed squared amplitude of the bins above hz.
func (s Spectrum) EnergyAbove(hz float64) float64 {
	e := 0.0
	for k, v := range s.Amplitude {
		if s.BinFrequency(k) > hz {
			e += v * v
		}
	}
	return e
}
