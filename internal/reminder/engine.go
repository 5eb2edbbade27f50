// Package reminder implements the reminder lifecycle: creation, follow-up
// series, completion and cancellation, the periodic due-sweep and the
// dashboard statistics. All coordination between concurrent callers goes
// through conditional updates on the store; the engine holds no locks.
package reminder

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"tradecrm/internal/model"

	"github.com/sirupsen/logrus"
)

// Store is the durable reminder store the engine coordinates through.
// Implemented by repository.Reminders.
type Store interface {
	Create(reminder *model.Reminder) error
	GetForUser(id, userID int64) (*model.Reminder, bool, error)
	Transition(id, userID int64, from, to model.ReminderStatus, at time.Time) (bool, error)
	List(filter model.ReminderFilter, page model.ReminderPage) ([]model.Reminder, int64, error)
	MarkSent(id int64, processedAt time.Time) (bool, error)
	Due(before time.Time, limit int) ([]model.Reminder, error)
	CountForUser(userID int64) (int64, error)
	CountByStatus(userID int64, status model.ReminderStatus) (int64, error)
	CountOverdue(userID int64, asOf time.Time) (int64, error)
	CountByType(userID int64) (map[model.ReminderType]int64, error)
	Upcoming(userID int64, from, to time.Time, limit int) ([]model.Reminder, error)
}

// CalculationLookup resolves calculations scoped to their owner.
// Implemented by repository.Calculations.
type CalculationLookup interface {
	GetForUser(id, userID int64) (*model.Calculation, bool, error)
}

// Engine is the reminder business logic, shared by the HTTP handlers and
// the scheduler.
type Engine struct {
	store  Store
	calcs  CalculationLookup
	logger *logrus.Logger
	now    func() time.Time
}

func NewEngine(store Store, calcs CalculationLookup, logger *logrus.Logger) *Engine {
	return &Engine{
		store:  store,
		calcs:  calcs,
		logger: logger,
		now:    time.Now,
	}
}

// CreateInput carries the caller-supplied fields for a new reminder.
// ScheduledFor defaults to now (so the reminder surfaces in the next
// sweep); FrequencyDays and MaxReminders default when zero.
type CreateInput struct {
	UserID        int64
	RelatedID     int64
	RelatedType   model.RelatedType
	Type          model.ReminderType
	Title         string
	Description   *string
	ScheduledFor  *time.Time
	FrequencyDays int
	MaxReminders  int
}

// CreateReminder validates the input and persists a new PENDING reminder
// with occurrence counter 1.
func (e *Engine) CreateReminder(in CreateInput) (*model.Reminder, error) {
	now := e.now()

	if !model.IsValidRelatedType(string(in.RelatedType)) {
		return nil, &ValidationError{Field: "related_type", Reason: "unknown related entity type"}
	}
	if !model.IsValidReminderType(string(in.Type)) {
		return nil, &ValidationError{Field: "type", Reason: "unknown reminder type"}
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	// Bounds are in characters, matching the VARCHAR column semantics;
	// client and deal names are routinely Cyrillic.
	if utf8.RuneCountInString(title) > model.TitleMaxLen {
		return nil, &ValidationError{Field: "title", Reason: fmt.Sprintf("must be at most %d characters", model.TitleMaxLen)}
	}
	if in.Description != nil && utf8.RuneCountInString(*in.Description) > model.DescriptionMaxLen {
		return nil, &ValidationError{Field: "description", Reason: fmt.Sprintf("must be at most %d characters", model.DescriptionMaxLen)}
	}

	frequency, err := frequencyOrDefault(in.FrequencyDays)
	if err != nil {
		return nil, err
	}
	maxReminders, err := maxRemindersOrDefault(in.MaxReminders)
	if err != nil {
		return nil, err
	}

	scheduledFor := now
	if in.ScheduledFor != nil {
		if in.ScheduledFor.Before(now) {
			return nil, &ValidationError{Field: "scheduled_for", Reason: "must not be in the past"}
		}
		scheduledFor = *in.ScheduledFor
	}

	reminder := &model.Reminder{
		UserID:        in.UserID,
		RelatedID:     in.RelatedID,
		RelatedType:   in.RelatedType,
		Type:          in.Type,
		Title:         title,
		Description:   in.Description,
		Status:        model.StatusPending,
		ScheduledFor:  scheduledFor,
		FrequencyDays: frequency,
		MaxReminders:  maxReminders,
		Occurrence:    1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := e.store.Create(reminder); err != nil {
		return nil, err
	}

	e.logger.Infof("Created reminder %d (%s) for user %d, scheduled for %s",
		reminder.ID, reminder.Type, reminder.UserID, reminder.ScheduledFor.Format(time.RFC3339))
	return reminder, nil
}

// FollowUpOptions tunes a follow-up series. Zero values pick defaults.
type FollowUpOptions struct {
	FrequencyDays int
	MaxReminders  int
}

// ScheduleFollowUps starts a recurring follow-up series for a
// calculation. Only the first occurrence is materialized here; the sweep
// generates later ones lazily, so cancellation can stop a series early
// and long series never pre-expand into rows.
func (e *Engine) ScheduleFollowUps(calculationID, userID int64, opts FollowUpOptions) (*model.Reminder, error) {
	frequency, err := frequencyOrDefault(opts.FrequencyDays)
	if err != nil {
		return nil, err
	}
	maxReminders, err := maxRemindersOrDefault(opts.MaxReminders)
	if err != nil {
		return nil, err
	}

	calc, found, err := e.calcs.GetForUser(calculationID, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: looking up calculation %d: %v", ErrDependency, calculationID, err)
	}
	if !found {
		return nil, ErrNotFound
	}

	now := e.now()
	description := fmt.Sprintf("Follow up with %s about the %q calculation (%.2f %s)",
		calc.ClientName, calc.Name, calc.TotalAmount, calc.Currency)

	reminder := &model.Reminder{
		UserID:        userID,
		RelatedID:     calc.ID,
		RelatedType:   model.RelatedCalculation,
		Type:          model.ReminderFollowUp,
		Title:         fmt.Sprintf("Follow up: %s", calc.Name),
		Description:   &description,
		Status:        model.StatusPending,
		ScheduledFor:  now.AddDate(0, 0, frequency),
		FrequencyDays: frequency,
		MaxReminders:  maxReminders,
		Occurrence:    1,
		Recurring:     true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := e.store.Create(reminder); err != nil {
		return nil, err
	}

	e.logger.Infof("Scheduled follow-up series for calculation %d (user %d): every %d days, up to %d reminders",
		calc.ID, userID, frequency, maxReminders)
	return reminder, nil
}

// Listing limits
const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// Sortable columns for reminder listings, keyed by API name.
var sortColumns = map[string]string{
	"created_at":    "created_at",
	"scheduled_for": "scheduled_for",
	"updated_at":    "updated_at",
}

// ListForUser returns one page of the user's reminders plus the total
// match count. Out-of-range pages yield an empty page, not an error.
func (e *Engine) ListForUser(filter model.ReminderFilter, page model.ReminderPage) ([]model.Reminder, int64, error) {
	if filter.Status != "" && !model.IsValidReminderStatus(string(filter.Status)) {
		return nil, 0, &ValidationError{Field: "status", Reason: "unknown status"}
	}
	if filter.RelatedType != "" && !model.IsValidRelatedType(string(filter.RelatedType)) {
		return nil, 0, &ValidationError{Field: "related_type", Reason: "unknown related entity type"}
	}
	if filter.Type != "" && !model.IsValidReminderType(string(filter.Type)) {
		return nil, 0, &ValidationError{Field: "type", Reason: "unknown reminder type"}
	}

	if page.Page < 1 {
		page.Page = 1
	}
	if page.Limit < 1 {
		page.Limit = DefaultPageLimit
	}
	if page.Limit > MaxPageLimit {
		page.Limit = MaxPageLimit
	}

	if page.SortBy == "" {
		page.SortBy = "created_at"
	}
	column, ok := sortColumns[page.SortBy]
	if !ok {
		return nil, 0, &ValidationError{Field: "sort_by", Reason: "must be one of created_at, scheduled_for, updated_at"}
	}
	page.SortBy = column

	switch strings.ToUpper(page.SortOrder) {
	case "":
		page.SortOrder = "DESC"
	case "ASC", "DESC":
		page.SortOrder = strings.ToUpper(page.SortOrder)
	default:
		return nil, 0, &ValidationError{Field: "sort_order", Reason: "must be asc or desc"}
	}

	reminders, total, err := e.store.List(filter, page)
	if err != nil {
		return nil, 0, err
	}
	if reminders == nil {
		reminders = []model.Reminder{}
	}
	return reminders, total, nil
}

// Complete marks a reminder COMPLETED. Completing works from PENDING or
// SENT; COMPLETED and CANCELLED are terminal.
func (e *Engine) Complete(id, userID int64) (*model.Reminder, error) {
	return e.transition(id, userID, model.StatusCompleted)
}

// Cancel marks a reminder CANCELLED, the terminal soft delete. The sweep
// skips cancelled reminders and never spawns a successor for them.
func (e *Engine) Cancel(id, userID int64) (*model.Reminder, error) {
	return e.transition(id, userID, model.StatusCancelled)
}

func (e *Engine) transition(id, userID int64, to model.ReminderStatus) (*model.Reminder, error) {
	reminder, found, err := e.store.GetForUser(id, userID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNotFound
	}

	if !reminder.Status.CanTransitionTo(to) {
		return nil, &InvalidStateError{Current: reminder.Status, Requested: to}
	}

	now := e.now()
	won, err := e.store.Transition(id, userID, reminder.Status, to, now)
	if err != nil {
		return nil, err
	}
	if !won {
		// Someone moved the reminder between the read and the conditional
		// update. Report the status they left behind.
		current, found, err := e.store.GetForUser(id, userID)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, ErrNotFound
		}
		return nil, &InvalidStateError{Current: current.Status, Requested: to}
	}

	reminder.Status = to
	reminder.UpdatedAt = now

	e.logger.Infof("Reminder %d (user %d) transitioned to %s", reminder.ID, userID, to)
	return reminder, nil
}

func frequencyOrDefault(days int) (int, error) {
	if days == 0 {
		return model.DefaultFrequencyDays, nil
	}
	if days < model.MinFrequencyDays || days > model.MaxFrequencyDays {
		return 0, &ValidationError{
			Field:  "frequency_days",
			Reason: fmt.Sprintf("must be between %d and %d", model.MinFrequencyDays, model.MaxFrequencyDays),
		}
	}
	return days, nil
}

func maxRemindersOrDefault(count int) (int, error) {
	if count == 0 {
		return model.DefaultMaxReminders, nil
	}
	if count < model.MinMaxReminders || count > model.MaxMaxReminders {
		return 0, &ValidationError{
			Field:  "max_reminders",
			Reason: fmt.Sprintf("must be between %d and %d", model.MinMaxReminders, model.MaxMaxReminders),
		}
	}
	return count, nil
}
