package planning

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/go-co-op/gocron/v2"
	"github.com/pkg/errors"

	"go.viam.com/planning/logging"
)

// CycleRunner runs one planning cycle.
type CycleRunner interface {
	RunOnce(ctx context.Context) error
}

// Scheduler triggers a cycle every period. A cycle that overruns its period delays the next one
// rather than running concurrently with it.
type Scheduler struct {
	scheduler    gocron.Scheduler
	runner       CycleRunner
	period       time.Duration
	testDuration time.Duration
	clk          clock.Clock
	logger       logging.Logger

	started  time.Time
	done     chan struct{}
	doneOnce sync.Once
}

// NewScheduler returns a scheduler running cycles at cfg.LoopRateHz. In test mode with a positive
// test duration it reports done once that much time has passed.
func NewScheduler(cfg Config, runner CycleRunner, clk clock.Clock, logger logging.Logger) (*Scheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	s := &Scheduler{
		scheduler: scheduler,
		runner:    runner,
		period:    cfg.Period(),
		clk:       clk,
		logger:    logger,
		done:      make(chan struct{}),
	}
	if cfg.TestMode && cfg.TestDurationSec > 0 {
		s.testDuration = time.Duration(cfg.TestDurationSec * float64(time.Second))
	}
	return s, nil
}

// Start schedules the cycle job and starts running it.
func (s *Scheduler) Start(ctx context.Context) error {
	s.started = s.clk.Now()
	j, err := s.scheduler.NewJob(
		gocron.DurationJob(s.period),
		gocron.NewTask(func() { s.tick(ctx) }),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return errors.Wrap(err, "cannot schedule planning cycle")
	}
	s.logger.Infow("scheduled planning cycle", "job", j.ID(), "period", s.period)
	s.scheduler.Start()
	return nil
}

func (s *Scheduler) tick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if err := s.runner.RunOnce(ctx); err != nil {
		s.logger.CErrorw(ctx, "planning cycle failed", "error", err)
	}
	if s.testDuration > 0 && s.clk.Since(s.started) > s.testDuration {
		s.doneOnce.Do(func() {
			s.logger.CInfow(ctx, "test duration reached", "duration", s.testDuration)
			close(s.done)
		})
	}
}

// Done is closed after the first cycle that completes past the test duration.
func (s *Scheduler) Done() <-chan struct{} {
	return s.done
}

// Shutdown stops scheduling and waits for a running cycle to finish.
func (s *Scheduler) Shutdown() error {
	return s.scheduler.Shutdown()
}
