package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// RefreshFunc is invoked once per refresh slot.
type RefreshFunc func(ctx context.Context, slot time.Time) error

// Options tune scheduler behaviour.
type Options struct {
	Interval     time.Duration
	AlignToStart bool
	StartupDelay time.Duration
	// Immediate runs one refresh before waiting for the first slot.
	Immediate bool
}

// Scheduler drives periodic index refreshes.
type Scheduler struct {
	opts   Options
	logger zerolog.Logger
	now    func() time.Time
}

// New constructs a Scheduler instance.
func New(opts Options, logger zerolog.Logger) *Scheduler {
	if opts.Interval <= 0 {
		panic("scheduler interval must be positive")
	}
	return &Scheduler{
		opts:   opts,
		logger: logger.With().Str("component", "scheduler").Logger(),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Run blocks, invoking refresh at each slot until ctx is cancelled.
// Refresh errors are logged and do not stop the loop.
func (s *Scheduler) Run(ctx context.Context, refresh RefreshFunc) error {
	if s.opts.StartupDelay > 0 {
		timer := time.NewTimer(s.opts.StartupDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	if s.opts.Immediate {
		s.fire(ctx, refresh, s.now())
	}

	next := s.NextSlot(s.now())
	for {
		delay := next.Sub(s.now())
		if delay < 0 {
			next = s.NextSlot(s.now())
			delay = next.Sub(s.now())
		}

		timer := time.NewTimer(delay)
		s.logger.Debug().Time("next_slot", next).Msg("waiting for next refresh")

		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		s.fire(ctx, refresh, s.slotStart(next))
		next = next.Add(s.opts.Interval)
	}
}

func (s *Scheduler) fire(ctx context.Context, refresh RefreshFunc, slot time.Time) {
	s.logger.Info().Time("slot", slot).Msg("executing scheduled refresh")
	if err := refresh(ctx, slot); err != nil {
		s.logger.Error().Err(err).Time("slot", slot).Msg("refresh failed")
	}
}

// NextSlot returns the first slot strictly after now.
func (s *Scheduler) NextSlot(now time.Time) time.Time {
	if !s.opts.AlignToStart {
		return now.Add(s.opts.Interval)
	}
	slot := now.Truncate(s.opts.Interval)
	if !slot.After(now) {
		slot = slot.Add(s.opts.Interval)
	}
	return slot
}

func (s *Scheduler) slotStart(t time.Time) time.Time {
	if !s.opts.AlignToStart {
		return t
	}
	return t.Truncate(s.opts.Interval)
}
