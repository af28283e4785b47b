// Package sweeper runs the periodic maintenance jobs: closing missions
// whose day has passed and purging expired cache rows.
package sweeper

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Expirer closes open missions past their expiry.
type Expirer interface {
	ExpireMissions(ctx context.Context) (int, error)
}

// Purger drops expired cache entries.
type Purger interface {
	Purge(ctx context.Context) (int64, error)
}

// Config holds cron specs for each job. An empty spec disables the job.
type Config struct {
	ExpirySchedule string
	PurgeSchedule  string
	Location       *time.Location
}

// Sweeper schedules the jobs on a cron.
type Sweeper struct {
	expirer Expirer
	purger  Purger // nil when the cache expires entries itself
	cron    *cron.Cron
	logger  *zap.Logger
}

// New validates the schedules and registers the jobs.
func New(cfg Config, expirer Expirer, purger Purger, logger *zap.Logger) (*Sweeper, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	s := &Sweeper{
		expirer: expirer,
		purger:  purger,
		cron:    cron.New(cron.WithLocation(loc)),
		logger:  logger,
	}

	if cfg.ExpirySchedule != "" {
		if _, err := s.cron.AddFunc(cfg.ExpirySchedule, func() { s.Expire(context.Background()) }); err != nil {
			return nil, fmt.Errorf("expiry schedule %q: %w", cfg.ExpirySchedule, err)
		}
	}
	if cfg.PurgeSchedule != "" && purger != nil {
		if _, err := s.cron.AddFunc(cfg.PurgeSchedule, func() { s.Purge(context.Background()) }); err != nil {
			return nil, fmt.Errorf("purge schedule %q: %w", cfg.PurgeSchedule, err)
		}
	}
	return s, nil
}

// Jobs returns the number of scheduled jobs.
func (s *Sweeper) Jobs() int {
	return len(s.cron.Entries())
}

// Run starts the scheduler, runs an expiry pass immediately and blocks
// until ctx is cancelled. Running jobs are allowed to finish.
func (s *Sweeper) Run(ctx context.Context) {
	s.logger.Info("sweeper started", zap.Int("jobs", s.Jobs()))
	s.Expire(ctx)
	s.cron.Start()

	<-ctx.Done()

	<-s.cron.Stop().Done()
	s.logger.Info("sweeper stopped")
}

// Expire runs one expiry pass and returns the number of missions closed.
func (s *Sweeper) Expire(ctx context.Context) int {
	start := time.Now()
	n, err := s.expirer.ExpireMissions(ctx)
	if err != nil {
		s.logger.Error("mission expiry failed", zap.Error(err))
		return n
	}
	s.logger.Debug("expiry pass", zap.Int("expired", n), zap.Duration("took", time.Since(start)))
	return n
}

// Purge runs one cache purge and returns the number of rows removed.
func (s *Sweeper) Purge(ctx context.Context) int64 {
	if s.purger == nil {
		return 0
	}
	n, err := s.purger.Purge(ctx)
	if err != nil {
		s.logger.Error("cache purge failed", zap.Error(err))
		return 0
	}
	s.logger.Debug("cache purged", zap.Int64("rows", n))
	return n
}
