package addesso

type (
	// Param is an automatable scalar of a node, e.g. the frequency of an
	// oscillator or the gain of a gain node. All writes are scheduled on the
	// graph clock (seconds); nothing overwrites a value in place while the
	// render timeline is consuming it.
	Param interface {
		// SetValueAt jumps to value at time t.
		SetValueAt(value, t float64)
		// LinearRampTo ramps linearly from the previous event to value,
		// reaching it at time t.
		LinearRampTo(value, t float64)
		// SetTargetAt approaches target exponentially starting at time t,
		// with the given time constant in seconds.
		SetTargetAt(target, t, timeConstant float64)
		// CancelScheduled removes every event scheduled at or after t and
		// holds the value the curve had at t, so that the next scheduled
		// segment starts from the level actually reached.
		CancelScheduled(t float64)
	}

	// Node is a primitive of the audio graph producing one mono signal.
	Node interface {
		// Connect sums the output of the node into the audio input of dst.
		Connect(dst Node) error
		// ConnectParam sums the output of the node into the parameter dst,
		// at audio rate. This is how frequency modulation is routed.
		ConnectParam(dst Param) error
		// DisconnectParam removes a connection made with ConnectParam.
		DisconnectParam(dst Param)
		// Disconnect removes every outgoing connection of the node.
		Disconnect()
	}

	// Oscillator is a continuous sine tone with an automatable frequency.
	Oscillator interface {
		Node
		Frequency() Param
		Start(t float64)
		Stop(t float64)
	}

	// Gain multiplies the sum of its inputs by an automatable scalar.
	Gain interface {
		Node
		Gain() Param
	}

	// Graph is the audio rendering backend as seen from the control timeline.
	// A Graph is constructed once at startup and shared by every component
	// that needs backend access. All methods must be safe to call while the
	// backend renders on another goroutine.
	Graph interface {
		SampleRate() float64
		// CurrentTime is the time of the next sample the backend will render.
		CurrentTime() float64
		NewOscillator() (Oscillator, error)
		NewGain() (Gain, error)
		// Destination is the gain node feeding the audio output.
		Destination() Node
		// Release frees the backend resources of a node. Connections to and
		// from the node are torn down. Using a released node is a no-op.
		Release(n Node)
		// AfterFunc calls f once the graph clock has reached t. f runs on the
		// render timeline, outside of any backend lock, so it may call back
		// into the graph.
		AfterFunc(t float64, f func())
	}
)

// Nyquist returns the highest frequency representable by the graph.
func Nyquist(g Graph) float64 {
	return g.SampleRate() / 2
}
