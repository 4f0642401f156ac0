package daemon

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jmylchreest/wallpaperd/internal/model"
)

// Scheduler advances the wallpaper every interval.
type Scheduler struct {
	state  *State
	logger *slog.Logger

	// Callback after each tick, whatever its outcome
	onTickCallback func(err error)
}

// NewScheduler creates a Scheduler for state.
func NewScheduler(state *State, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		state:  state,
		logger: logger,
	}
}

// SetTickCallback sets a function invoked after every rotation attempt.
func (s *Scheduler) SetTickCallback(callback func(err error)) {
	s.onTickCallback = callback
}

// Run rotates until ctx is cancelled. The interval is re-read before every
// sleep, so a change made mid-sleep applies to the following cycle.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Debug("scheduler started")
	defer s.logger.Debug("scheduler stopped")

	for {
		interval := s.state.Interval()
		timer := time.NewTimer(interval)

		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}

		err := s.state.ChangeImage(ctx, model.DirectionNext)
		switch {
		case err == nil:
		case errors.Is(err, ErrRotationBlocked):
			// Static or fallback; nothing to do until the next tick.
		default:
			s.logger.Warn("scheduled rotation failed", "error", err)
		}

		if s.onTickCallback != nil {
			s.onTickCallback(err)
		}
	}
}
