// Package scheduler runs the periodic due-sweep. It shares the same
// engine entry point as the admin-triggered sweep, so overlapping ticks
// and manual runs are safe to interleave.
package scheduler

import (
	"time"

	"tradecrm/internal/notify"
	"tradecrm/internal/reminder"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"
)

const DefaultSweepIntervalMin = 5

type Scheduler struct {
	scheduler *gocron.Scheduler
	engine    *reminder.Engine
	notifier  notify.Notifier
	logger    *logrus.Logger
}

func NewScheduler(engine *reminder.Engine, notifier notify.Notifier, logger *logrus.Logger) *Scheduler {
	// Create scheduler with UTC timezone
	s := gocron.NewScheduler(time.UTC)

	return &Scheduler{
		scheduler: s,
		engine:    engine,
		notifier:  notifier,
		logger:    logger,
	}
}

// Start schedules the due-sweep every intervalMin minutes and runs the
// scheduler in the background.
func (s *Scheduler) Start(intervalMin int) {
	if intervalMin <= 0 {
		intervalMin = DefaultSweepIntervalMin
	}

	s.scheduler.Every(intervalMin).Minute().Do(func() {
		s.runSweep()
	})

	s.scheduler.StartAsync()
	s.logger.Infof("Scheduler started, sweeping reminders every %d minutes", intervalMin)
}

func (s *Scheduler) Stop() {
	s.scheduler.Stop()
	s.logger.Info("Scheduler stopped")
}

func (s *Scheduler) runSweep() {
	result, err := s.engine.ProcessScheduled()
	if err != nil {
		s.logger.Errorf("Failed to process scheduled reminders: %v", err)
		return
	}

	// Quiet sweeps (nothing due) are not worth a notification.
	if result.Processed == 0 {
		return
	}

	if err := s.notifier.SweepCompleted(result); err != nil {
		s.logger.Errorf("Failed to deliver sweep summary: %v", err)
	}
}
