package db

import (
	"time"

	"tradecrm/internal/model"
)

// CreateReminder creates a new reminder record
func (db *DB) CreateReminder(reminder *model.Reminder) error {
	return db.conn.Create(reminder).Error
}

// GetUserReminder retrieves a reminder by id, scoped to its owner.
// A reminder owned by another user is indistinguishable from a missing
// one; both return gorm.ErrRecordNotFound.
func (db *DB) GetUserReminder(id, userID int64) (*model.Reminder, error) {
	var reminder model.Reminder
	result := db.conn.Where("id = ? AND user_id = ?", id, userID).First(&reminder)
	if result.Error != nil {
		return nil, result.Error
	}
	return &reminder, nil
}

// TransitionReminderStatus moves a reminder from one status to another
// with a conditional update, scoped to its owner. It reports whether
// this call won the transition; false means the status changed between
// the caller's read and this update.
func (db *DB) TransitionReminderStatus(id, userID int64, from, to model.ReminderStatus, at time.Time) (bool, error) {
	result := db.conn.Model(&model.Reminder{}).
		Where("id = ? AND user_id = ? AND status = ?", id, userID, from).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_at": at,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// ListUserReminders returns one page of a user's reminders matching the
// filter, plus the total match count. The caller is responsible for
// whitelisting SortBy/SortOrder; they are interpolated into the ORDER BY.
func (db *DB) ListUserReminders(filter model.ReminderFilter, page model.ReminderPage) ([]model.Reminder, int64, error) {
	q := db.conn.Model(&model.Reminder{}).Where("user_id = ?", filter.UserID)
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.RelatedType != "" {
		q = q.Where("related_type = ?", filter.RelatedType)
	}
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var reminders []model.Reminder
	result := q.Order(page.SortBy + " " + page.SortOrder).
		Limit(page.Limit).
		Offset(page.Offset()).
		Find(&reminders)
	if result.Error != nil {
		return nil, 0, result.Error
	}
	return reminders, total, nil
}

// MarkReminderSent transitions a reminder from PENDING to SENT with a
// conditional update. It reports whether this call won the transition;
// false means another sweep instance or a user action got there first.
func (db *DB) MarkReminderSent(id int64, processedAt time.Time) (bool, error) {
	result := db.conn.Model(&model.Reminder{}).
		Where("id = ? AND status = ?", id, model.StatusPending).
		Updates(map[string]interface{}{
			"status":       model.StatusSent,
			"processed_at": processedAt,
			"updated_at":   processedAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// GetDueReminders retrieves pending reminders scheduled at or before the
// given time, across all users, oldest first, capped at limit
func (db *DB) GetDueReminders(before time.Time, limit int) ([]model.Reminder, error) {
	var reminders []model.Reminder
	result := db.conn.Where("status = ? AND scheduled_for <= ?", model.StatusPending, before).
		Order("scheduled_for ASC").
		Limit(limit).
		Find(&reminders)
	if result.Error != nil {
		return nil, result.Error
	}
	return reminders, nil
}

// CountUserReminders counts all reminders owned by a user
func (db *DB) CountUserReminders(userID int64) (int64, error) {
	var count int64
	result := db.conn.Model(&model.Reminder{}).
		Where("user_id = ?", userID).
		Count(&count)
	return count, result.Error
}

// CountUserRemindersByStatus counts a user's reminders in one status
func (db *DB) CountUserRemindersByStatus(userID int64, status model.ReminderStatus) (int64, error) {
	var count int64
	result := db.conn.Model(&model.Reminder{}).
		Where("user_id = ? AND status = ?", userID, status).
		Count(&count)
	return count, result.Error
}

// CountUserOverdueReminders counts a user's pending reminders whose
// scheduled time has already passed
func (db *DB) CountUserOverdueReminders(userID int64, asOf time.Time) (int64, error) {
	var count int64
	result := db.conn.Model(&model.Reminder{}).
		Where("user_id = ? AND status = ? AND scheduled_for < ?", userID, model.StatusPending, asOf).
		Count(&count)
	return count, result.Error
}

// CountUserRemindersByType counts a user's reminders grouped by type.
// Types with no rows are absent from the map.
func (db *DB) CountUserRemindersByType(userID int64) (map[model.ReminderType]int64, error) {
	var results []struct {
		Type  model.ReminderType
		Total int64
	}

	query := db.conn.Table("reminders").
		Select("type, COUNT(*) as total").
		Where("user_id = ?", userID).
		Group("type")

	if err := query.Scan(&results).Error; err != nil {
		return nil, err
	}

	counts := make(map[model.ReminderType]int64, len(results))
	for _, r := range results {
		counts[r.Type] = r.Total
	}
	return counts, nil
}

// GetUpcomingReminders retrieves a user's pending reminders scheduled
// inside [from, to], soonest first, capped at limit
func (db *DB) GetUpcomingReminders(userID int64, from, to time.Time, limit int) ([]model.Reminder, error) {
	var reminders []model.Reminder
	result := db.conn.Where("user_id = ? AND status = ? AND scheduled_for BETWEEN ? AND ?",
		userID, model.StatusPending, from, to).
		Order("scheduled_for ASC").
		Limit(limit).
		Find(&reminders)
	if result.Error != nil {
		return nil, result.Error
	}
	return reminders, nil
}
