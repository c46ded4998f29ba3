package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/jma-forecast/internal/logger"
)

const (
	defaultInterval = time.Hour
	jobTimeout      = 2 * time.Minute
)

// Refresher fetches and caches forecasts for a set of prefecture offices.
type Refresher interface {
	Refresh(ctx context.Context, officeCodes []string) error
}

// Scheduler periodically refreshes the forecast cache for configured offices.
type Scheduler struct {
	scheduler *gocron.Scheduler
	refresher Refresher
	offices   []string
	interval  time.Duration
	log       logger.Logger
}

// New creates a new Scheduler.
func New(offices []string, interval time.Duration, refresher Refresher, log logger.Logger) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		refresher: refresher,
		offices:   offices,
		interval:  interval,
		log:       logger.Component(log, "scheduler"),
	}
}

// Start schedules the refresh job and starts the underlying scheduler.
// The first run happens immediately.
func (s *Scheduler) Start() error {
	if len(s.offices) == 0 {
		s.log.Info("no offices configured; nothing to schedule")
		return nil
	}

	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = int(defaultInterval.Minutes())
	}

	if _, err := s.scheduler.Every(minutes).Minutes().SingletonMode().Do(s.run); err != nil {
		return err
	}

	s.log.Infof("refreshing %d offices every %d minutes", len(s.offices), minutes)
	s.scheduler.StartAsync()
	return nil
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	s.log.Info("running forecast refresh job")
	start := time.Now()
	if err := s.refresher.Refresh(ctx, s.offices); err != nil {
		s.log.Errorf("forecast refresh failed: %v", err)
		return
	}
	s.log.WithField("duration", time.Since(start).String()).Info("completed forecast refresh job")
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
