package recovery

import (
	"sync"
	"time"
)

// Countdown counts whole seconds down to zero. With a positive interval a
// goroutine ticks it; with a zero interval it only moves through Tick.
type Countdown struct {
	interval time.Duration

	mu        sync.Mutex
	remaining int
	cancel    chan struct{}
}

func NewCountdown(interval time.Duration) *Countdown {
	return &Countdown{interval: interval}
}

// Start arms the countdown at seconds, cancelling any running timer.
func (c *Countdown) Start(seconds int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
	c.remaining = seconds
	if c.interval <= 0 || seconds <= 0 {
		return
	}
	cancel := make(chan struct{})
	c.cancel = cancel
	go c.run(cancel)
}

func (c *Countdown) run(cancel chan struct{}) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-cancel:
			return
		case <-ticker.C:
			c.mu.Lock()
			if c.cancel != cancel {
				c.mu.Unlock()
				return
			}
			if c.remaining > 0 {
				c.remaining--
			}
			done := c.remaining == 0
			if done {
				c.cancel = nil
			}
			c.mu.Unlock()
			if done {
				return
			}
		}
	}
}

// Tick decrements by one second and never goes below zero.
func (c *Countdown) Tick() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.remaining > 0 {
		c.remaining--
	}
	if c.remaining == 0 {
		c.stopLocked()
	}
	return c.remaining
}

func (c *Countdown) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

// Stop cancels the timer and zeroes the countdown.
func (c *Countdown) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
	c.remaining = 0
}

func (c *Countdown) stopLocked() {
	if c.cancel != nil {
		close(c.cancel)
		c.cancel = nil
	}
}
