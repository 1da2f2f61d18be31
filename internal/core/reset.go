package core

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// ResetScheduler clears the played-today window at every local midnight. The
// delay to the next midnight is recomputed on each cycle rather than using a
// fixed 24h interval, so the schedule survives arbitrary start times and DST
// shifts without drifting.
type ResetScheduler struct {
	queue    *QueueManager
	timezone *time.Location
	logger   *zap.Logger
	now      func() time.Time
}

func NewResetScheduler(queue *QueueManager, timezone *time.Location, logger *zap.Logger) *ResetScheduler {
	return &ResetScheduler{
		queue:    queue,
		timezone: timezone,
		logger:   logger,
		now:      time.Now,
	}
}

// Run blocks until the context is canceled, firing at each local midnight.
func (s *ResetScheduler) Run(ctx context.Context) {
	for {
		delay := untilNextMidnight(s.now(), s.timezone)
		s.logger.Debug("Next played-today reset scheduled",
			zap.Duration("in", delay))

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info("Daily reset scheduler stopped")
			return
		case <-timer.C:
			s.queue.ResetPlayedToday()
		}
	}
}

// untilNextMidnight computes the delay from now to the next midnight in loc.
func untilNextMidnight(now time.Time, loc *time.Location) time.Duration {
	local := now.In(loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, 1)
	return next.Sub(local)
}
