package engine

type (
	timer struct {
		deadline float64
		f        func()
	}

	// timerQueue holds timed callbacks ordered by deadline; callbacks with
	// equal deadlines fire in the order they were scheduled.
	timerQueue []timer
)

func (q *timerQueue) push(deadline float64, f func()) {
	i := len(*q)
	for i > 0 && (*q)[i-1].deadline > deadline {
		i--
	}
	*q = append(*q, timer{})
	copy((*q)[i+1:], (*q)[i:])
	(*q)[i] = timer{deadline, f}
}

// popDue removes and returns every callback whose deadline is at or before
// now.
func (q *timerQueue) popDue(now float64) []func() {
	n := 0
	for n < len(*q) && (*q)[n].deadline <= now {
		n++
	}
	if n == 0 {
		return nil
	}
	due := make([]func(), n)
	for i, t := range (*q)[:n] {
		due[i] = t.f
	}
	*q = append((*q)[:0], (*q)[n:]...)
	return due
}
