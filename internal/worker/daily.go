package worker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/puzzle-scoreboard/internal/domain"
	"github.com/puzzle-scoreboard/internal/service"
)

// DailyScheduler posts the previous day's final board on a cron
// schedule, evaluated in the board timezone.
type DailyScheduler struct {
	svc      *service.Service
	schedule string
	loc      *time.Location
	logger   *slog.Logger
	cron     *cron.Cron
}

// NewDailyScheduler creates a new daily scheduler
func NewDailyScheduler(svc *service.Service, schedule string, loc *time.Location, logger *slog.Logger) *DailyScheduler {
	return &DailyScheduler{
		svc:      svc,
		schedule: schedule,
		loc:      loc,
		logger:   logger,
	}
}

// Start registers the schedule and begins the cron loop
func (s *DailyScheduler) Start(ctx context.Context) error {
	s.cron = cron.New(cron.WithLocation(s.loc))

	if _, err := s.cron.AddFunc(s.schedule, func() {
		s.runOnce(ctx)
	}); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("daily scheduler started", "schedule", s.schedule, "timezone", s.loc.String())
	return nil
}

// Stop stops the cron loop and waits for a running job to finish
func (s *DailyScheduler) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
	s.logger.Info("daily scheduler stopped")
}

func (s *DailyScheduler) runOnce(ctx context.Context) {
	run, err := s.svc.RunDaily(ctx, false)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAlreadyPosted):
			s.logger.Warn("daily scoreboard already posted, skipping")
		case errors.Is(err, domain.ErrNoMessages):
			s.logger.Warn("no messages in input channel, skipping daily post")
		default:
			s.logger.Error("daily scoreboard run failed", "error", err)
		}
		return
	}
	s.logger.Info("daily run complete", "run_id", run.RunID)
}
