package retry

import (
	"math"
	"math/rand"
	"time"
)

// Strategy produces the sequence of waits between attempts of a retried
// operation. Implementations must be pure: every call to Intervals returns
// a fresh, finite slice so two retry loops never share iteration state.
type Strategy interface {
	Intervals() []time.Duration
}

// Constant waits the same fixed Timeout before each of Retries attempts.
type Constant struct {
	Retries int
	Timeout time.Duration
}

var _ Strategy = Constant{}

func (s Constant) Intervals() []time.Duration {
	intervals := make([]time.Duration, 0, s.Retries)
	for i := 0; i < s.Retries; i++ {
		intervals = append(intervals, s.Timeout)
	}
	return intervals
}

// ExponentialJitter grows the wait as Multiplier^attempt seconds, perturbed
// by up to ±RandomPct. Rand supplies jitter samples in [-1, 1); it is a
// field so tests can inject a deterministic sequence. A nil Rand uses the
// shared math/rand source.
type ExponentialJitter struct {
	Retries    int
	Multiplier float64
	RandomPct  float64
	Rand       func() float64
}

var _ Strategy = ExponentialJitter{}

func (s ExponentialJitter) Intervals() []time.Duration {
	sample := s.Rand
	if sample == nil {
		sample = func() float64 { return rand.Float64()*2 - 1 }
	}
	intervals := make([]time.Duration, 0, s.Retries)
	for n := 0; n < s.Retries; n++ {
		seconds := math.Pow(s.Multiplier, float64(n)) * (1 - s.RandomPct*sample())
		intervals = append(intervals, time.Duration(seconds*float64(time.Second)))
	}
	return intervals
}
