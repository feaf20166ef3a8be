package benchmark

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fixedJitter(v float64) JitterFunc { return func() float64 { return v } }

func TestSimulator_Bands(t *testing.T) {
	sim := NewSimulator(fixedJitter(0.5))

	tests := []struct {
		model   string
		score   float64
		speed   float64
		latency time.Duration
	}{
		{"gpt-4o", 0.90, 83.33, 1200 * time.Millisecond},
		{"anthropic/claude-3-5-sonnet", 0.90, 83.33, 1200 * time.Millisecond},
		{"llama-3.1-70b-versatile", 0.85, 250, 400 * time.Millisecond},
		{"gemini-1.5-flash", 0.70, 500, 200 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			out := sim.Run(tt.model)
			assert.InDelta(t, tt.score, out.Score, 1e-9)
			assert.InDelta(t, tt.speed, out.Speed, 1e-9)
			assert.Equal(t, tt.latency, out.Latency)
			assert.False(t, out.Real)
		})
	}
}

func TestSimulator_ScoreWithinBand(t *testing.T) {
	for _, j := range []float64{0, 0.25, 0.999999} {
		out := NewSimulator(fixedJitter(j)).Run("mistral-small")
		assert.GreaterOrEqual(t, out.Score, 0.6)
		assert.LessOrEqual(t, out.Score, 0.8)
	}
}

func TestSimulator_OutOfRangeJitterIsIgnored(t *testing.T) {
	out := NewSimulator(fixedJitter(7)).Run("gpt-4")
	assert.Equal(t, 0.85, out.Score)
}

func TestClockJitterRange(t *testing.T) {
	j := ClockJitter()
	assert.GreaterOrEqual(t, j, 0.0)
	assert.Less(t, j, 1.0)
}

func TestLengthScorer(t *testing.T) {
	s := LengthScorer{}
	assert.Equal(t, 1.0, s.Score("Coding", "def quicksort(a): ..."))
	assert.Equal(t, 0.5, s.Score("Math", "5602"))
	assert.Equal(t, 0.5, s.Score("Reasoning", ""))
}
