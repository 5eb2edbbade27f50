package reminder

import (
	"time"

	"tradecrm/internal/model"
)

// Upcoming-reminder window for the dashboard.
const (
	upcomingWindow = 7 * 24 * time.Hour
	upcomingLimit  = 5
)

// Stats summarizes a user's reminders for the dashboard. ByType always
// carries every reminder type, zero-filled when the user has none of it.
type Stats struct {
	Total    int64                        `json:"total"`
	Pending  int64                        `json:"pending"`
	Overdue  int64                        `json:"overdue"`
	ByType   map[model.ReminderType]int64 `json:"by_type"`
	Upcoming []model.Reminder             `json:"upcoming"`
}

// StatsForUser aggregates the owner's reminder counts and the next few
// upcoming reminders inside a 7-day window.
func (e *Engine) StatsForUser(userID int64) (*Stats, error) {
	now := e.now()

	total, err := e.store.CountForUser(userID)
	if err != nil {
		return nil, err
	}
	pending, err := e.store.CountByStatus(userID, model.StatusPending)
	if err != nil {
		return nil, err
	}
	overdue, err := e.store.CountOverdue(userID, now)
	if err != nil {
		return nil, err
	}

	byType, err := e.store.CountByType(userID)
	if err != nil {
		return nil, err
	}
	if byType == nil {
		byType = make(map[model.ReminderType]int64, 6)
	}
	for _, t := range model.AllReminderTypes() {
		if _, ok := byType[t]; !ok {
			byType[t] = 0
		}
	}

	upcoming, err := e.store.Upcoming(userID, now, now.Add(upcomingWindow), upcomingLimit)
	if err != nil {
		return nil, err
	}
	if upcoming == nil {
		upcoming = []model.Reminder{}
	}

	return &Stats{
		Total:    total,
		Pending:  pending,
		Overdue:  overdue,
		ByType:   byType,
		Upcoming: upcoming,
	}, nil
}
