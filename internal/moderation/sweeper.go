package moderation

import (
	"context"
	"time"

	"voart-api/shared/logger"
)

// Sweeper runs the periodic maintenance that keeps reads pure: expired
// temporary bans are lifted here and expired featured collections removed
// here, never as a side effect of a query.
type Sweeper struct {
	users    *UserManagement
	featured *FeaturedCollections
	interval time.Duration
	log      *logger.Logger
}

func NewSweeper(users *UserManagement, featured *FeaturedCollections, interval time.Duration, log *logger.Logger) *Sweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Sweeper{users: users, featured: featured, interval: interval, log: log}
}

// Run blocks until ctx is cancelled. Call it from a goroutine.
func (s *Sweeper) Run(ctx context.Context) {
	s.log.Info("Maintenance sweeper started", "interval", s.interval.String())
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("Maintenance sweeper stopped")
			return
		case <-ticker.C:
			s.SweepOnce(time.Now().UTC())
		}
	}
}

// SweepOnce runs one maintenance pass.
func (s *Sweeper) SweepOnce(now time.Time) {
	if lifted, err := s.users.SweepExpiredBans(now); err != nil {
		s.log.Error("Ban sweep failed", "error", err)
	} else if lifted > 0 {
		s.log.Info("Ban sweep lifted expired bans", "count", lifted)
	}

	if _, err := s.featured.SweepExpired(now); err != nil {
		s.log.Error("Featured sweep failed", "error", err)
	}
}
