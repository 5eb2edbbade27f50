// Package notify pushes due-sweep summaries to the operators. Delivery
// of individual reminders to users is modeled by the SENT status; these
// channels only report how each sweep went.
package notify

import (
	"errors"

	"tradecrm/internal/reminder"

	"github.com/sirupsen/logrus"
)

// Notifier receives the summary of a finished due-sweep.
type Notifier interface {
	SweepCompleted(result *reminder.SweepResult) error
}

// LogNotifier writes sweep summaries to the service log.
type LogNotifier struct {
	Logger *logrus.Logger
}

func (n *LogNotifier) SweepCompleted(result *reminder.SweepResult) error {
	entry := n.Logger.WithFields(logrus.Fields{
		"processed":    result.Processed,
		"sent":         result.Sent,
		"next_created": result.NextCreated,
		"failed":       result.Failed,
	})
	if result.Failed > 0 {
		entry.Warn("Reminder sweep completed with failures")
		for _, e := range result.Errors {
			n.Logger.Warnf("Sweep failure for reminder %d: %s", e.ReminderID, e.Message)
		}
		return nil
	}
	entry.Info("Reminder sweep completed")
	return nil
}

// Multi fans a summary out to several notifiers. One channel failing
// does not stop the others; the errors are joined.
type Multi []Notifier

func (m Multi) SweepCompleted(result *reminder.SweepResult) error {
	var errs []error
	for _, n := range m {
		if err := n.SweepCompleted(result); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
