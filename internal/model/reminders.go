package model

import (
	"database/sql/driver"
	"errors"
	"time"
)

// RelatedType identifies which CRM entity a reminder points at. The
// reference is weak: the target may be looked up for display, but its
// lifecycle is independent of the reminder's.
type RelatedType string

// Related entity types
const (
	RelatedCalculation RelatedType = "CALCULATION"
	RelatedOrder       RelatedType = "ORDER"
	RelatedClient      RelatedType = "CLIENT"
)

// IsValidRelatedType checks a raw string against the known related types
func IsValidRelatedType(s string) bool {
	switch RelatedType(s) {
	case RelatedCalculation, RelatedOrder, RelatedClient:
		return true
	}
	return false
}

// Value implements the driver.Valuer interface for RelatedType
func (t RelatedType) Value() (driver.Value, error) {
	return string(t), nil
}

// Scan implements the sql.Scanner interface for RelatedType
func (t *RelatedType) Scan(value interface{}) error {
	if value == nil {
		return errors.New("related type cannot be null")
	}

	strVal, ok := value.(string)
	if !ok {
		return errors.New("invalid related type")
	}

	*t = RelatedType(strVal)
	return nil
}

// ReminderType classifies the outreach a reminder asks for
type ReminderType string

// Reminder types
const (
	ReminderFollowUp     ReminderType = "FOLLOW_UP"
	ReminderCallClient   ReminderType = "CALL_CLIENT"
	ReminderSendProposal ReminderType = "SEND_PROPOSAL"
	ReminderCheckPayment ReminderType = "CHECK_PAYMENT"
	ReminderDelivery     ReminderType = "DELIVERY_REMINDER"
	ReminderGeneral      ReminderType = "GENERAL"
)

// AllReminderTypes returns every reminder type, in a stable order.
// Dashboard breakdowns use it to zero-fill types with no rows.
func AllReminderTypes() []ReminderType {
	return []ReminderType{
		ReminderFollowUp,
		ReminderCallClient,
		ReminderSendProposal,
		ReminderCheckPayment,
		ReminderDelivery,
		ReminderGeneral,
	}
}

// IsValidReminderType checks a raw string against the known reminder types
func IsValidReminderType(s string) bool {
	for _, t := range AllReminderTypes() {
		if ReminderType(s) == t {
			return true
		}
	}
	return false
}

// Value implements the driver.Valuer interface for ReminderType
func (t ReminderType) Value() (driver.Value, error) {
	return string(t), nil
}

// Scan implements the sql.Scanner interface for ReminderType
func (t *ReminderType) Scan(value interface{}) error {
	if value == nil {
		return errors.New("reminder type cannot be null")
	}

	strVal, ok := value.(string)
	if !ok {
		return errors.New("invalid reminder type")
	}

	*t = ReminderType(strVal)
	return nil
}

// ReminderStatus represents the lifecycle status of a reminder
type ReminderStatus string

// Reminder statuses
const (
	StatusPending   ReminderStatus = "PENDING"
	StatusSent      ReminderStatus = "SENT"
	StatusCompleted ReminderStatus = "COMPLETED"
	StatusCancelled ReminderStatus = "CANCELLED"
)

// IsValidReminderStatus checks a raw string against the known statuses
func IsValidReminderStatus(s string) bool {
	switch ReminderStatus(s) {
	case StatusPending, StatusSent, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether the status admits no further transition.
func (s ReminderStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransitionTo reports whether moving from s to the requested status
// is an allowed edge. Statuses only move forward: PENDING -> SENT, and
// PENDING or SENT -> COMPLETED/CANCELLED.
func (s ReminderStatus) CanTransitionTo(to ReminderStatus) bool {
	if s.Terminal() {
		return false
	}
	switch to {
	case StatusCompleted, StatusCancelled:
		return true
	case StatusSent:
		return s == StatusPending
	}
	return false
}

// Value implements the driver.Valuer interface for ReminderStatus
func (s ReminderStatus) Value() (driver.Value, error) {
	return string(s), nil
}

// Scan implements the sql.Scanner interface for ReminderStatus
func (s *ReminderStatus) Scan(value interface{}) error {
	if value == nil {
		return errors.New("reminder status cannot be null")
	}

	strVal, ok := value.(string)
	if !ok {
		return errors.New("invalid reminder status")
	}

	*s = ReminderStatus(strVal)
	return nil
}

// Bounds for caller-tunable reminder fields
const (
	TitleMaxLen       = 255
	DescriptionMaxLen = 1000

	MinFrequencyDays     = 1
	MaxFrequencyDays     = 30
	DefaultFrequencyDays = 3

	MinMaxReminders     = 1
	MaxMaxReminders     = 50
	DefaultMaxReminders = 10
)

// Reminder represents the reminders table structure
type Reminder struct {
	ID            int64          `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserID        int64          `gorm:"column:user_id;not null;index" json:"user_id"`
	RelatedID     int64          `gorm:"column:related_id;not null" json:"related_id"`
	RelatedType   RelatedType    `gorm:"column:related_type;not null;type:related_type" json:"related_type"`
	Type          ReminderType   `gorm:"column:type;not null;type:reminder_type;index" json:"type"`
	Title         string         `gorm:"column:title;size:255;not null" json:"title"`
	Description   *string        `gorm:"column:description;type:text" json:"description,omitempty"`
	Status        ReminderStatus `gorm:"column:status;not null;type:reminder_status;default:'PENDING';index" json:"status"`
	ScheduledFor  time.Time      `gorm:"column:scheduled_for;not null;index" json:"scheduled_for"`
	FrequencyDays int            `gorm:"column:frequency_days;not null;default:3" json:"frequency_days"`
	MaxReminders  int            `gorm:"column:max_reminders;not null;default:10" json:"max_reminders"`
	Occurrence    int            `gorm:"column:occurrence;not null;default:1" json:"occurrence"`
	Recurring     bool           `gorm:"column:recurring;not null;default:false" json:"recurring"`
	ProcessedAt   *time.Time     `gorm:"column:processed_at" json:"processed_at,omitempty"`
	CreatedAt     time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName overrides the table name
func (Reminder) TableName() string {
	return "reminders"
}

// ReminderFilter narrows a user's reminder listing. Zero-valued fields
// mean "any"; set fields are combined with AND.
type ReminderFilter struct {
	UserID      int64
	Status      ReminderStatus
	RelatedType RelatedType
	Type        ReminderType
}

// ReminderPage describes pagination and ordering for a reminder listing.
// Page is 1-based; SortBy must be a whitelisted column name.
type ReminderPage struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}

// Offset returns the row offset for the page.
func (p ReminderPage) Offset() int {
	return (p.Page - 1) * p.Limit
}
