package practice

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountdownTicksDownToZero(t *testing.T) {
	var expired atomic.Int32
	c := NewCountdown(2, func() { expired.Add(1) })
	defer c.Stop()

	var ticks []int
	deadline := time.After(5 * time.Second)
	for {
		select {
		case rem, ok := <-c.Ticks():
			if !ok {
				require.NotEmpty(t, ticks)
				assert.Equal(t, 0, ticks[len(ticks)-1])
				assert.Equal(t, int32(1), expired.Load())
				return
			}
			ticks = append(ticks, rem)
		case <-deadline:
			t.Fatal("countdown did not finish")
		}
	}
}

func TestCountdownExpiryRunsExactlyOnce(t *testing.T) {
	var expired atomic.Int32
	c := NewCountdown(1, func() { expired.Add(1) })

	// Drain to completion, then Stop repeatedly; the callback must not
	// fire again.
	for range c.Ticks() {
	}
	c.Stop()
	c.Stop()

	assert.Equal(t, int32(1), expired.Load())
}

func TestCountdownStopSuppressesExpiry(t *testing.T) {
	var expired atomic.Int32
	c := NewCountdown(60, func() { expired.Add(1) })

	c.Stop()
	// The ticks channel closes once the goroutine observes the stop.
	for range c.Ticks() {
	}

	assert.Equal(t, int32(0), expired.Load())
	assert.GreaterOrEqual(t, c.Remaining(), 59)
}

func TestCountdownRemainingDecreases(t *testing.T) {
	c := NewCountdown(3, nil)
	defer c.Stop()

	rem, ok := <-c.Ticks()
	require.True(t, ok)
	assert.Equal(t, 2, rem)
	assert.LessOrEqual(t, c.Remaining(), 2)
}

func TestCountdownNilExpiryCallback(t *testing.T) {
	c := NewCountdown(1, nil)
	for range c.Ticks() {
	}
	// Reaching here without panic is the assertion.
	assert.Equal(t, 0, c.Remaining())
}
