//go:build portaudio

package cmd

import (
	addesso "github.com/albertobarberis/addesso-synth"
	"github.com/albertobarberis/addesso-synth/portaudio"
)

func init() {
	Backends["portaudio"] = func(sampleRate, bufferSize int) (addesso.AudioContext, error) {
		return portaudio.NewContext(float64(sampleRate), bufferSize)
	}
}
