package cronjob

import (
	"context"
	"fmt"
	"time"

	"github.com/crowdsourcing/surveyadmin/internal/logging"
	"github.com/robfig/cron/v3"
)

// Refresher rebuilds the survey snapshot
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Scheduler refreshes the survey snapshot on a cron schedule
type Scheduler struct {
	cron      *cron.Cron
	spec      string
	refresher Refresher
	timeout   time.Duration
}

// NewScheduler creates a scheduler for spec, a six-field (with seconds) cron expression
func NewScheduler(spec string, refresher Refresher) *Scheduler {
	return &Scheduler{
		cron:      cron.New(cron.WithSeconds()),
		spec:      spec,
		refresher: refresher,
		timeout:   time.Minute,
	}
}

// Start registers the refresh job and starts the cron runner
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.run); err != nil {
		return fmt.Errorf("failed to create cron job %q: %w", s.spec, err)
	}
	s.cron.Start()
	logging.L().Sugar().Infof("survey snapshot refresh scheduled (%s)", s.spec)
	return nil
}

// Stop halts the runner and waits for a running refresh to finish
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.refresher.Refresh(ctx); err != nil {
		logging.NewLogger(ctx).LogError("refresh_surveys", err)
	}
}
