// Package timer holds the single inactivity timer that ends a session at its
// expiry.
package timer

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"
)

// ConnectionTimer runs at most one expiry callback at a time.
type ConnectionTimer struct {
	mu       sync.Mutex
	clock    clock.Clock
	logger   zerolog.Logger
	onExpire func()
	t        *clock.Timer
	// seq tells a firing timer whether it was cleared after it fired.
	seq uint64
}

// New returns a stopped timer that calls onExpire when it fires.
func New(clk clock.Clock, logger zerolog.Logger, onExpire func()) *ConnectionTimer {
	if clk == nil {
		clk = clock.New()
	}
	return &ConnectionTimer{
		clock:    clk,
		logger:   logger.With().Str("component", "connection_timer").Logger(),
		onExpire: onExpire,
	}
}

// Start schedules the expiry callback at exp (epoch ms). It does nothing
// unless both est and exp are set and no timer is running. It reports
// whether a timer was started.
func (c *ConnectionTimer) Start(est, exp int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.t != nil || est == 0 || exp == 0 {
		return false
	}
	wait := time.Duration(exp-c.clock.Now().UnixMilli()) * time.Millisecond
	if wait < 0 {
		wait = 0
	}
	c.seq++
	seq := c.seq
	c.t = c.clock.AfterFunc(wait, func() { c.fire(seq) })
	c.logger.Debug().Dur("in", wait).Int64("exp", exp).Msg("connection timer started")
	return true
}

// Clear cancels the pending callback, if any.
func (c *ConnectionTimer) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearLocked()
}

func (c *ConnectionTimer) clearLocked() {
	if c.t != nil {
		c.t.Stop()
		c.t = nil
	}
	c.seq++
}

// Restart clears any running timer and starts a new one.
func (c *ConnectionTimer) Restart(est, exp int64) bool {
	c.mu.Lock()
	c.clearLocked()
	c.mu.Unlock()
	return c.Start(est, exp)
}

// Running reports whether a callback is pending.
func (c *ConnectionTimer) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t != nil
}

func (c *ConnectionTimer) fire(seq uint64) {
	c.mu.Lock()
	if seq != c.seq {
		c.mu.Unlock()
		return
	}
	c.t = nil
	c.mu.Unlock()

	c.logger.Info().Msg("connection expired")
	if c.onExpire != nil {
		c.onExpire()
	}
}
