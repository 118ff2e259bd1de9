package learning

import (
	"testing"
	"testing/quick"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClampDurationBounds(t *testing.T) {
	start := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, 0, ClampDuration(start, start.Add(-time.Minute)))
	assert.Equal(t, 90, ClampDuration(start, start.Add(90*time.Second)))
	assert.Equal(t, MaxSessionSeconds, ClampDuration(start, start.Add(5*time.Hour)))

	prop := func(offset int64) bool {
		d := ClampDuration(start, start.Add(time.Duration(offset)*time.Millisecond))
		return d >= 0 && d <= MaxSessionSeconds
	}
	if err := quick.Check(prop, nil); err != nil {
		t.Fatalf("duration escaped [0, %d]: %v", MaxSessionSeconds, err)
	}
}

func TestIsStale(t *testing.T) {
	now := time.Now()
	s := &LearningSession{LastPing: now.Add(-3 * time.Minute)}
	assert.True(t, s.IsStale(now))
	s.LastPing = now.Add(-time.Minute)
	assert.False(t, s.IsStale(now))
}

func TestPercentRounds(t *testing.T) {
	assert.Equal(t, 0, Percent(0, 0))
	assert.Equal(t, 50, Percent(1, 2))
	assert.Equal(t, 33, Percent(1, 3))
	assert.Equal(t, 67, Percent(2, 3))
	assert.Equal(t, 100, Percent(5, 5))
}
