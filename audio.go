package addesso

type (
	// Renderer fills a mono buffer with the next samples of the render
	// timeline.
	Renderer interface {
		Render(buffer []float32)
	}

	// AudioContext is a realtime audio output. Play starts pulling from the
	// renderer on the backend's own thread and returns immediately.
	AudioContext interface {
		Play(r Renderer) error
		Close() error
	}
)

// RenderSeconds renders the given duration offline and returns the samples.
func RenderSeconds(r Renderer, sampleRate, seconds float64) []float32 {
	n := int(seconds * sampleRate)
	if n <= 0 {
		return nil
	}
	buffer := make([]float32, n)
	r.Render(buffer)
	return buffer
}
