package journal

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"
)

// Cleaner periodically removes finished request records older than the
// retention period.
type Cleaner struct {
	store           *Store
	clock           clock.Clock
	logger          zerolog.Logger
	cleanupInterval time.Duration
	retentionPeriod time.Duration

	started  atomic.Bool
	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewCleaner creates a new journal cleaner.
func NewCleaner(s *Store, clk clock.Clock, interval, retention time.Duration, logger zerolog.Logger) *Cleaner {
	if clk == nil {
		clk = clock.New()
	}
	return &Cleaner{
		store:           s,
		clock:           clk,
		cleanupInterval: interval,
		retentionPeriod: retention,
		logger:          logger.With().Str("component", "journal_cleaner").Logger(),
		stopCh:          make(chan struct{}),
		doneCh:          make(chan struct{}),
	}
}

// Start performs one cleanup and then runs the periodic loop until ctx is
// done or Stop is called.
func (c *Cleaner) Start(ctx context.Context) error {
	c.logger.Info().
		Dur("cleanup_interval", c.cleanupInterval).
		Dur("retention_period", c.retentionPeriod).
		Msg("starting journal cleaner")

	// Don't fail startup on cleanup error, just log it
	if _, err := c.performCleanup(); err != nil {
		c.logger.Error().Err(err).Msg("failed to perform initial cleanup")
	}

	c.started.Store(true)
	ticker := c.clock.Ticker(c.cleanupInterval)
	go func() {
		defer close(c.doneCh)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				c.logger.Info().Msg("context cancelled, stopping journal cleaner")
				return
			case <-c.stopCh:
				c.logger.Info().Msg("stop signal received, stopping journal cleaner")
				return
			case <-ticker.C:
				if _, err := c.performCleanup(); err != nil {
					c.logger.Error().Err(err).Msg("failed to perform scheduled cleanup")
				}
			}
		}
	}()

	return nil
}

// Stop ends the loop and waits for it to exit. Safe to call more than once.
func (c *Cleaner) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopCh)
	})
	if c.started.Load() {
		<-c.doneCh
	}
}

func (c *Cleaner) performCleanup() (int64, error) {
	start := c.clock.Now()

	deleted, err := c.store.DeleteFinishedBefore(c.retentionPeriod, start)
	if err != nil {
		return 0, err
	}
	if deleted == 0 {
		c.logger.Debug().Msg("journal cleanup completed - no records to delete")
		return 0, nil
	}

	if err := c.store.Checkpoint(); err != nil {
		c.logger.Warn().Err(err).Msg("failed to checkpoint WAL")
	}
	c.logger.Info().
		Int64("deleted", deleted).
		Dur("duration", c.clock.Since(start)).
		Msg("journal cleanup completed")
	return deleted, nil
}
