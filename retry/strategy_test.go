package retry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstantIntervals(t *testing.T) {
	s := Constant{Retries: 3, Timeout: 42 * time.Second}
	assert.Equal(t, []time.Duration{42 * time.Second, 42 * time.Second, 42 * time.Second}, s.Intervals())
}

func TestConstantIntervalsRestartable(t *testing.T) {
	s := Constant{Retries: 2, Timeout: time.Second}
	first := s.Intervals()
	second := s.Intervals()
	assert.Equal(t, first, second)
	// Mutating one slice must not affect the other.
	first[0] = 0
	assert.Equal(t, time.Second, second[0])
}

func TestExponentialJitterIntervals(t *testing.T) {
	samples := []float64{0.1, 0.2, 0.3, 0.4, 0.5}
	i := 0
	s := ExponentialJitter{
		Retries:    5,
		Multiplier: 1.4,
		RandomPct:  0.2,
		Rand: func() float64 {
			v := samples[i]
			i++
			return v
		},
	}
	got := s.Intervals()
	require.Len(t, got, 5)
	want := []float64{0.98, 1.344, 1.842, 2.524, 3.457}
	for n, d := range got {
		assert.InDelta(t, want[n], d.Seconds(), 0.001, "interval %d", n)
	}
}

func TestExponentialJitterDefaultRand(t *testing.T) {
	s := ExponentialJitter{Retries: 4, Multiplier: 2, RandomPct: 0.1}
	got := s.Intervals()
	require.Len(t, got, 4)
	for n, d := range got {
		base := float64(int(1) << n)
		assert.InDelta(t, base, d.Seconds(), base*0.1+0.001, "interval %d", n)
	}
}

func TestSystemSleeperCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	err := SystemSleeper().Sleep(ctx, time.Minute)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
}

func TestSystemSleeperZeroDuration(t *testing.T) {
	assert.NoError(t, SystemSleeper().Sleep(context.Background(), 0))
}
