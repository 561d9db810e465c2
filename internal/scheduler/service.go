package scheduler

import (
	"context"
	"time"

	"github.com/palma21/yt-analysis-bot/internal/models"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Runner runs a single monitoring pass
type Runner interface {
	RunMonitoring(ctx context.Context) (*models.RunResult, error)
}

// Service handles scheduling of monitoring runs
type Service struct {
	runner     Runner
	schedule   string
	window     *Window
	runTimeout time.Duration
	cron       *cron.Cron
	ctx        context.Context
	cancel     context.CancelFunc
	now        func() time.Time
}

// NewService creates a new scheduler service. Ticks outside window are skipped.
func NewService(runner Runner, schedule string, window *Window, location *time.Location, runTimeout time.Duration) *Service {
	if location == nil {
		location = time.UTC
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		runner:     runner,
		schedule:   schedule,
		window:     window,
		runTimeout: runTimeout,
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLocation(location),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		ctx:    ctx,
		cancel: cancel,
		now:    time.Now,
	}
}

// Start begins the scheduled monitoring
func (s *Service) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.tick); err != nil {
		return err
	}

	s.cron.Start()
	logrus.Infof("Scheduler started with schedule %q, window %s", s.schedule, s.window)
	return nil
}

func (s *Service) tick() {
	if !s.window.Allows(s.now()) {
		logrus.Debug("Scheduled run skipped, outside the active window")
		return
	}

	ctx, cancel := context.WithTimeout(s.ctx, s.runTimeout)
	defer cancel()

	logrus.Info("Starting scheduled monitoring run")
	result, err := s.runner.RunMonitoring(ctx)
	if err != nil {
		logrus.Errorf("Scheduled monitoring run failed: %v", err)
		return
	}
	logrus.Infof("Scheduled run %s processed %d of %d videos", result.RunID, result.Processed, result.Found)
}

// Stop stops the scheduler and cancels a run in progress
func (s *Service) Stop() {
	if s.cron != nil {
		done := s.cron.Stop()
		s.cancel()
		<-done.Done()
		logrus.Info("Scheduler stopped")
	}
}
