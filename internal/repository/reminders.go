package repository

import (
	"errors"
	"time"

	"tradecrm/internal/model"

	"gorm.io/gorm"
)

type Reminders struct {
	Repository
}

func (r *Reminders) Create(reminder *model.Reminder) error {
	return r.DB.CreateReminder(reminder)
}

// GetForUser returns the reminder and whether it exists for this owner.
// Missing and foreign-owned records both report found=false.
func (r *Reminders) GetForUser(id, userID int64) (*model.Reminder, bool, error) {
	reminder, err := r.DB.GetUserReminder(id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return reminder, true, nil
}

// Transition conditionally moves the reminder between statuses; false
// means the expected current status no longer held.
func (r *Reminders) Transition(id, userID int64, from, to model.ReminderStatus, at time.Time) (bool, error) {
	return r.DB.TransitionReminderStatus(id, userID, from, to, at)
}

func (r *Reminders) List(filter model.ReminderFilter, page model.ReminderPage) ([]model.Reminder, int64, error) {
	return r.DB.ListUserReminders(filter, page)
}

func (r *Reminders) MarkSent(id int64, processedAt time.Time) (bool, error) {
	return r.DB.MarkReminderSent(id, processedAt)
}

func (r *Reminders) Due(before time.Time, limit int) ([]model.Reminder, error) {
	return r.DB.GetDueReminders(before, limit)
}

func (r *Reminders) CountForUser(userID int64) (int64, error) {
	return r.DB.CountUserReminders(userID)
}

func (r *Reminders) CountByStatus(userID int64, status model.ReminderStatus) (int64, error) {
	return r.DB.CountUserRemindersByStatus(userID, status)
}

func (r *Reminders) CountOverdue(userID int64, asOf time.Time) (int64, error) {
	return r.DB.CountUserOverdueReminders(userID, asOf)
}

func (r *Reminders) CountByType(userID int64) (map[model.ReminderType]int64, error) {
	return r.DB.CountUserRemindersByType(userID)
}

func (r *Reminders) Upcoming(userID int64, from, to time.Time, limit int) ([]model.Reminder, error) {
	return r.DB.GetUpcomingReminders(userID, from, to, limit)
}
