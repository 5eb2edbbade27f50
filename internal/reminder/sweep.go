package reminder

import (
	"tradecrm/internal/model"
)

// sweepBatchSize bounds how many due reminders one store read returns,
// keeping individual sweep queries short.
const sweepBatchSize = 100

// SweepResult summarizes one due-sweep pass.
type SweepResult struct {
	Processed   int          `json:"processed"`
	Sent        int          `json:"sent"`
	NextCreated int          `json:"next_created"`
	Failed      int          `json:"failed"`
	Errors      []SweepError `json:"errors,omitempty"`
}

// SweepError records a single reminder's failure during a sweep. One
// reminder failing never aborts the rest of the pass.
type SweepError struct {
	ReminderID int64  `json:"reminder_id"`
	Message    string `json:"message"`
}

// ProcessScheduled is the due-sweep: it fires every PENDING reminder
// whose scheduled time has passed, across all users, and lazily creates
// the next occurrence of recurring series. It is safe to invoke from
// several processes at once; the PENDING -> SENT transition is a
// conditional update, so each due occurrence is delivered at most once.
// Both the periodic scheduler and the admin endpoint call this.
func (e *Engine) ProcessScheduled() (*SweepResult, error) {
	result := &SweepResult{}
	now := e.now()
	seen := make(map[int64]bool)

	for {
		due, err := e.store.Due(now, sweepBatchSize)
		if err != nil {
			return result, err
		}

		// Rows whose conditional update errored stay PENDING and come
		// back on the next scan; counting them again would inflate the
		// summary, so each occurrence is handled once per pass.
		fresh := 0
		for i := range due {
			if seen[due[i].ID] {
				continue
			}
			seen[due[i].ID] = true
			fresh++
			e.processDue(&due[i], result)
		}

		// A batch that brought nothing new would repeat forever:
		// whatever is left is either claimed by a concurrent sweep or
		// already recorded in the result.
		if len(due) < sweepBatchSize || fresh == 0 {
			break
		}
	}

	if result.Processed > 0 {
		e.logger.Infof("Due-sweep finished: processed=%d sent=%d next_created=%d failed=%d",
			result.Processed, result.Sent, result.NextCreated, result.Failed)
	}
	return result, nil
}

func (e *Engine) processDue(due *model.Reminder, result *SweepResult) {
	result.Processed++

	won, err := e.store.MarkSent(due.ID, e.now())
	if err != nil {
		result.Failed++
		result.Errors = append(result.Errors, SweepError{ReminderID: due.ID, Message: err.Error()})
		e.logger.Errorf("Failed to mark reminder %d sent: %v", due.ID, err)
		return
	}
	if !won {
		// A concurrent sweep or a user transition got there first.
		return
	}
	result.Sent++

	// The series fields are immutable after creation, so the row read by
	// the due scan is authoritative once the conditional update is won.
	if !due.Recurring || due.Occurrence >= due.MaxReminders {
		return
	}

	now := e.now()
	next := &model.Reminder{
		UserID:        due.UserID,
		RelatedID:     due.RelatedID,
		RelatedType:   due.RelatedType,
		Type:          due.Type,
		Title:         due.Title,
		Description:   due.Description,
		Status:        model.StatusPending,
		ScheduledFor:  due.ScheduledFor.AddDate(0, 0, due.FrequencyDays),
		FrequencyDays: due.FrequencyDays,
		MaxReminders:  due.MaxReminders,
		Occurrence:    due.Occurrence + 1,
		Recurring:     true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := e.store.Create(next); err != nil {
		result.Failed++
		result.Errors = append(result.Errors, SweepError{ReminderID: due.ID, Message: err.Error()})
		e.logger.Errorf("Failed to create occurrence %d of reminder series (after %d): %v",
			next.Occurrence, due.ID, err)
		return
	}
	result.NextCreated++
}
