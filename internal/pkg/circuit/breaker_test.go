package circuit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBreakerOpensAtThreshold(t *testing.T) {
	b := NewBreaker("test", 3, time.Minute)

	assert.True(t, b.Allow())
	b.RecordFailure()
	b.RecordFailure()
	assert.True(t, b.Allow())
	b.RecordFailure()
	assert.False(t, b.Allow())
}

func TestBreakerHalfOpenProbe(t *testing.T) {
	b := NewBreaker("test", 1, time.Millisecond)
	b.RecordFailure()
	assert.False(t, b.Allow())

	time.Sleep(5 * time.Millisecond)
	// cooldown elapsed: exactly one probe goes through
	assert.True(t, b.Allow())

	b.RecordSuccess()
	assert.True(t, b.Allow())
}

func TestBreakerReopensOnProbeFailure(t *testing.T) {
	b := NewBreaker("test", 1, time.Millisecond)
	b.RecordFailure()
	time.Sleep(5 * time.Millisecond)
	assert.True(t, b.Allow())

	b.RecordFailure()
	assert.False(t, b.Allow())
}

func TestSuccessResetsFailureCount(t *testing.T) {
	b := NewBreaker("test", 2, time.Minute)
	b.RecordFailure()
	b.RecordSuccess()
	b.RecordFailure()
	assert.True(t, b.Allow())
}
