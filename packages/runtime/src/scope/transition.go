package scope

import "time"

// Transition collects the durations of the animations of a transition; it
// lasts as long as the longest one.
type Transition struct {
	durations []time.Duration
}

// NewTransition creates a transition with the given durations.
func NewTransition(durations ...time.Duration) *Transition {
	return &Transition{durations: durations}
}

// Add registers another animation.
func (t *Transition) Add(d time.Duration) *Transition {
	t.durations = append(t.durations, d)
	return t
}

// Duration returns the longest registered duration. A nil transition is
// instantaneous.
func (t *Transition) Duration() time.Duration {
	if t == nil {
		return 0
	}
	var longest time.Duration
	for _, d := range t.durations {
		if d > longest {
			longest = d
		}
	}
	return longest
}
