package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Sweeper periodically evicts expired conversations until its context is cancelled.
type Sweeper struct {
	Store    ConversationStore
	Interval time.Duration
	Logger   *zap.Logger
	Now      func() time.Time
}

// Start schedules the sweep and returns immediately. The schedule stops when ctx is done.
func (s *Sweeper) Start(ctx context.Context) error {
	interval := s.Interval
	if interval <= 0 {
		interval = time.Minute
	}

	c := cron.New()
	if _, err := c.AddFunc(fmt.Sprintf("@every %s", interval), func() { s.SweepOnce(ctx) }); err != nil {
		return fmt.Errorf("schedule conversation sweep: %w", err)
	}
	c.Start()

	go func() {
		<-ctx.Done()
		<-c.Stop().Done()
	}()
	return nil
}

// SweepOnce runs a single eviction pass.
func (s *Sweeper) SweepOnce(ctx context.Context) int {
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}
	removed, err := s.Store.Sweep(ctx, now)
	if err != nil && s.Logger != nil {
		s.Logger.Warn("conversation sweep failed", zap.Error(err))
	}
	if removed > 0 && s.Logger != nil {
		s.Logger.Debug("expired conversations swept", zap.Int("removed", removed))
	}
	return removed
}
