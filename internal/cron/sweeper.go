// Package cron schedules the in-process expiry sweep.
package cron

import (
	"context"
	"sync"
	"time"

	"github.com/mileusna/crontab"
	"github.com/rs/zerolog"
)

const (
	DefaultSchedule = "0 3 * * *"
	sweepTimeout    = 2 * time.Minute
)

// Sweeper deletes expired pages.
type Sweeper interface {
	Sweep(ctx context.Context) (int64, error)
}

type Crontab struct {
	ctab     *crontab.Crontab
	sweeper  Sweeper
	schedule string
	log      zerolog.Logger

	mu      sync.Mutex
	running bool
}

func NewCrontab(sweeper Sweeper, schedule string, log zerolog.Logger) *Crontab {
	return &Crontab{
		ctab:     crontab.New(),
		sweeper:  sweeper,
		schedule: schedule,
		log:      log.With().Str("component", "cron").Logger(),
	}
}

// Run schedules the sweep and blocks until ctx is done. An empty schedule
// disables the job.
func (c *Crontab) Run(ctx context.Context) error {
	if c.schedule == "" {
		c.log.Info().Msg("expiry sweep disabled")
		<-ctx.Done()
		return nil
	}

	if err := c.ctab.AddJob(c.schedule, func() {
		jobCtx, cancel := context.WithTimeout(ctx, sweepTimeout)
		defer cancel()
		c.SweepOnce(jobCtx)
	}); err != nil {
		return err
	}
	c.log.Info().Str("schedule", c.schedule).Msg("expiry sweep scheduled")

	<-ctx.Done()
	c.ctab.Shutdown()
	return nil
}

// SweepOnce runs a single sweep unless one is already in progress.
func (c *Crontab) SweepOnce(ctx context.Context) {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		c.log.Warn().Msg("previous sweep still running, skipping")
		return
	}
	c.running = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.running = false
		c.mu.Unlock()
	}()

	n, err := c.sweeper.Sweep(ctx)
	if err != nil {
		c.log.Error().Err(err).Msg("scheduled sweep failed")
		return
	}
	c.log.Info().Int64("deleted", n).Msg("scheduled sweep done")
}
