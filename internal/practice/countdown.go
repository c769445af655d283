// Package practice implements server-tracked practice attempts: the
// countdown used for timed quizzes and the Redis-backed attempt state.
package practice

import (
	"sync"
	"time"
)

// Countdown counts a fixed budget of seconds down to zero, emitting the
// remaining seconds once per second on Ticks. When it reaches zero the
// expiry callback runs exactly once, even if Stop races with expiry.
// Stop before expiry suppresses the callback.
type Countdown struct {
	ticks chan int
	done  chan struct{}
	once  sync.Once

	mu        sync.Mutex
	remaining int
}

// NewCountdown starts a countdown of the given number of seconds. onExpire
// may be nil. The caller must eventually call Stop to release the ticker
// goroutine if the countdown has not expired on its own.
func NewCountdown(seconds int, onExpire func()) *Countdown {
	c := &Countdown{
		ticks:     make(chan int, 1),
		done:      make(chan struct{}),
		remaining: seconds,
	}
	go c.run(onExpire)
	return c
}

// Ticks delivers the remaining seconds after each elapsed second. The
// channel is buffered and drops ticks a slow consumer misses; it is closed
// after expiry or Stop.
func (c *Countdown) Ticks() <-chan int {
	return c.ticks
}

// Remaining reports the seconds left.
func (c *Countdown) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

// Stop cancels the countdown. The expiry callback will not run unless it
// already has. Safe to call more than once.
func (c *Countdown) Stop() {
	c.once.Do(func() { close(c.done) })
}

func (c *Countdown) run(onExpire func()) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	defer close(c.ticks)

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.mu.Lock()
			if c.remaining > 0 {
				c.remaining--
			}
			rem := c.remaining
			c.mu.Unlock()

			// Drop the stale tick if the consumer is behind.
			select {
			case c.ticks <- rem:
			default:
				select {
				case <-c.ticks:
				default:
				}
				select {
				case c.ticks <- rem:
				default:
				}
			}

			if rem == 0 {
				expired := false
				c.once.Do(func() {
					close(c.done)
					expired = true
				})
				if expired && onExpire != nil {
					onExpire()
				}
				return
			}
		}
	}
}
