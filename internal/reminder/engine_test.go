package reminder

import (
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"tradecrm/internal/model"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory Store. MarkSent holds the mutex for the
// whole check-and-update, mirroring the conditional UPDATE the real
// store issues, so concurrency tests exercise the same guarantee.
type fakeStore struct {
	mu        sync.Mutex
	nextID    int64
	reminders map[int64]*model.Reminder

	createErr   error
	markSentErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{reminders: make(map[int64]*model.Reminder)}
}

func (f *fakeStore) Create(r *model.Reminder) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	r.ID = f.nextID
	clone := *r
	f.reminders[r.ID] = &clone
	return nil
}

func (f *fakeStore) GetForUser(id, userID int64) (*model.Reminder, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reminders[id]
	if !ok || r.UserID != userID {
		return nil, false, nil
	}
	clone := *r
	return &clone, true, nil
}

func (f *fakeStore) Transition(id, userID int64, from, to model.ReminderStatus, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reminders[id]
	if !ok || r.UserID != userID || r.Status != from {
		return false, nil
	}
	r.Status = to
	r.UpdatedAt = at
	return true, nil
}

func (f *fakeStore) List(filter model.ReminderFilter, page model.ReminderPage) ([]model.Reminder, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var matched []model.Reminder
	for _, r := range f.reminders {
		if r.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		if filter.RelatedType != "" && r.RelatedType != filter.RelatedType {
			continue
		}
		if filter.Type != "" && r.Type != filter.Type {
			continue
		}
		matched = append(matched, *r)
	}

	sort.Slice(matched, func(i, j int) bool {
		var ti, tj time.Time
		switch page.SortBy {
		case "scheduled_for":
			ti, tj = matched[i].ScheduledFor, matched[j].ScheduledFor
		case "updated_at":
			ti, tj = matched[i].UpdatedAt, matched[j].UpdatedAt
		default:
			ti, tj = matched[i].CreatedAt, matched[j].CreatedAt
		}
		if ti.Equal(tj) {
			return matched[i].ID < matched[j].ID
		}
		if page.SortOrder == "ASC" {
			return ti.Before(tj)
		}
		return tj.Before(ti)
	})

	total := int64(len(matched))
	start := page.Offset()
	if start >= len(matched) {
		return nil, total, nil
	}
	end := start + page.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (f *fakeStore) MarkSent(id int64, processedAt time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.markSentErr != nil {
		return false, f.markSentErr
	}
	r, ok := f.reminders[id]
	if !ok || r.Status != model.StatusPending {
		return false, nil
	}
	r.Status = model.StatusSent
	at := processedAt
	r.ProcessedAt = &at
	r.UpdatedAt = processedAt
	return true, nil
}

func (f *fakeStore) Due(before time.Time, limit int) ([]model.Reminder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var due []model.Reminder
	for _, r := range f.reminders {
		if r.Status == model.StatusPending && !r.ScheduledFor.After(before) {
			due = append(due, *r)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].ScheduledFor.Equal(due[j].ScheduledFor) {
			return due[i].ID < due[j].ID
		}
		return due[i].ScheduledFor.Before(due[j].ScheduledFor)
	})
	if len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

func (f *fakeStore) CountForUser(userID int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, r := range f.reminders {
		if r.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) CountByStatus(userID int64, status model.ReminderStatus) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, r := range f.reminders {
		if r.UserID == userID && r.Status == status {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) CountOverdue(userID int64, asOf time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, r := range f.reminders {
		if r.UserID == userID && r.Status == model.StatusPending && r.ScheduledFor.Before(asOf) {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) CountByType(userID int64) (map[model.ReminderType]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := make(map[model.ReminderType]int64)
	for _, r := range f.reminders {
		if r.UserID == userID {
			counts[r.Type]++
		}
	}
	return counts, nil
}

func (f *fakeStore) Upcoming(userID int64, from, to time.Time, limit int) ([]model.Reminder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var upcoming []model.Reminder
	for _, r := range f.reminders {
		if r.UserID != userID || r.Status != model.StatusPending {
			continue
		}
		if r.ScheduledFor.Before(from) || r.ScheduledFor.After(to) {
			continue
		}
		upcoming = append(upcoming, *r)
	}
	sort.Slice(upcoming, func(i, j int) bool {
		return upcoming[i].ScheduledFor.Before(upcoming[j].ScheduledFor)
	})
	if len(upcoming) > limit {
		upcoming = upcoming[:limit]
	}
	return upcoming, nil
}

type fakeCalcs struct {
	calcs     map[int64]*model.Calculation
	lookupErr error
}

func (f *fakeCalcs) GetForUser(id, userID int64) (*model.Calculation, bool, error) {
	if f.lookupErr != nil {
		return nil, false, f.lookupErr
	}
	c, ok := f.calcs[id]
	if !ok || c.UserID != userID {
		return nil, false, nil
	}
	clone := *c
	return &clone, true, nil
}

func newTestEngine() (*Engine, *fakeStore, *fakeCalcs) {
	store := newFakeStore()
	calcs := &fakeCalcs{calcs: make(map[int64]*model.Calculation)}
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewEngine(store, calcs, logger), store, calcs
}

// frozenClock pins the engine's clock and returns a function to move it.
func frozenClock(e *Engine, start time.Time) func(d time.Duration) {
	current := start
	e.now = func() time.Time { return current }
	return func(d time.Duration) { current = current.Add(d) }
}

func TestCreateReminderDefaults(t *testing.T) {
	e, _, _ := newTestEngine()
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	frozenClock(e, start)

	r, err := e.CreateReminder(CreateInput{
		UserID:      7,
		RelatedID:   41,
		RelatedType: model.RelatedClient,
		Type:        model.ReminderCallClient,
		Title:       "Call about the spring order",
	})
	require.NoError(t, err)

	assert.Equal(t, model.StatusPending, r.Status)
	assert.Equal(t, 1, r.Occurrence)
	assert.Equal(t, model.DefaultFrequencyDays, r.FrequencyDays)
	assert.Equal(t, model.DefaultMaxReminders, r.MaxReminders)
	assert.False(t, r.Recurring)
	// No schedule supplied: due immediately, so the next sweep picks it up.
	assert.True(t, r.ScheduledFor.Equal(start))
	assert.NotZero(t, r.ID)
}

func TestCreateReminderValidation(t *testing.T) {
	e, _, _ := newTestEngine()
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	frozenClock(e, start)

	longTitle := make([]byte, model.TitleMaxLen+1)
	for i := range longTitle {
		longTitle[i] = 'x'
	}
	longDesc := string(make([]byte, model.DescriptionMaxLen+1))
	past := start.Add(-time.Hour)

	valid := CreateInput{
		UserID:      7,
		RelatedID:   41,
		RelatedType: model.RelatedClient,
		Type:        model.ReminderGeneral,
		Title:       "ok",
	}

	tests := []struct {
		name   string
		mutate func(in *CreateInput)
	}{
		{"unknown related type", func(in *CreateInput) { in.RelatedType = "WAREHOUSE" }},
		{"unknown reminder type", func(in *CreateInput) { in.Type = "NUDGE" }},
		{"empty title", func(in *CreateInput) { in.Title = "   " }},
		{"title too long", func(in *CreateInput) { in.Title = string(longTitle) }},
		{"title too many characters", func(in *CreateInput) { in.Title = strings.Repeat("ж", model.TitleMaxLen+1) }},
		{"description too long", func(in *CreateInput) { in.Description = &longDesc }},
		{"scheduled in the past", func(in *CreateInput) { in.ScheduledFor = &past }},
		{"frequency too high", func(in *CreateInput) { in.FrequencyDays = model.MaxFrequencyDays + 1 }},
		{"frequency negative", func(in *CreateInput) { in.FrequencyDays = -1 }},
		{"max reminders too high", func(in *CreateInput) { in.MaxReminders = model.MaxMaxReminders + 1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			_, err := e.CreateReminder(in)
			var verr *ValidationError
			assert.ErrorAs(t, err, &verr)
		})
	}

	// Bounds count characters, not bytes: 200 Cyrillic characters exceed
	// 255 bytes yet remain a valid title.
	in := valid
	in.Title = strings.Repeat("ж", 200)
	r, err := e.CreateReminder(in)
	require.NoError(t, err)
	assert.Equal(t, in.Title, r.Title)
}

func TestScheduleFollowUps(t *testing.T) {
	e, _, calcs := newTestEngine()
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	frozenClock(e, start)

	calcs.calcs[3] = &model.Calculation{
		ID: 3, UserID: 7, Name: "Q2 ceramics import", ClientName: "Altai Trade LLC",
		TotalAmount: 12500, Currency: "USD",
	}

	r, err := e.ScheduleFollowUps(3, 7, FollowUpOptions{FrequencyDays: 5, MaxReminders: 4})
	require.NoError(t, err)

	assert.True(t, r.Recurring)
	assert.Equal(t, model.RelatedCalculation, r.RelatedType)
	assert.Equal(t, model.ReminderFollowUp, r.Type)
	assert.Equal(t, int64(3), r.RelatedID)
	assert.Equal(t, "Follow up: Q2 ceramics import", r.Title)
	require.NotNil(t, r.Description)
	assert.Contains(t, *r.Description, "Altai Trade LLC")
	assert.True(t, r.ScheduledFor.Equal(start.AddDate(0, 0, 5)))
	assert.Equal(t, 1, r.Occurrence)
	assert.Equal(t, 4, r.MaxReminders)
}

func TestScheduleFollowUpsMissingCalculation(t *testing.T) {
	e, _, calcs := newTestEngine()
	calcs.calcs[3] = &model.Calculation{ID: 3, UserID: 8, Name: "n", ClientName: "c"}

	// Unknown id.
	_, err := e.ScheduleFollowUps(99, 7, FollowUpOptions{})
	assert.ErrorIs(t, err, ErrNotFound)

	// Exists but owned by someone else: same answer.
	_, err = e.ScheduleFollowUps(3, 7, FollowUpOptions{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestScheduleFollowUpsDependencyFailure(t *testing.T) {
	e, _, calcs := newTestEngine()
	calcs.lookupErr = errors.New("connection refused")

	_, err := e.ScheduleFollowUps(3, 7, FollowUpOptions{})
	assert.ErrorIs(t, err, ErrDependency)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestCompleteTerminalStates(t *testing.T) {
	e, _, _ := newTestEngine()
	r, err := e.CreateReminder(CreateInput{
		UserID: 7, RelatedID: 1, RelatedType: model.RelatedOrder,
		Type: model.ReminderCheckPayment, Title: "Check payment for order 1",
	})
	require.NoError(t, err)

	completed, err := e.Complete(r.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, completed.Status)

	_, err = e.Complete(r.ID, 7)
	var serr *InvalidStateError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, model.StatusCompleted, serr.Current)

	// Completed is terminal for cancellation too.
	_, err = e.Cancel(r.ID, 7)
	assert.ErrorAs(t, err, &serr)
}

func TestCancelAlreadyCancelled(t *testing.T) {
	e, _, _ := newTestEngine()
	r, err := e.CreateReminder(CreateInput{
		UserID: 7, RelatedID: 1, RelatedType: model.RelatedClient,
		Type: model.ReminderGeneral, Title: "Ping",
	})
	require.NoError(t, err)

	_, err = e.Cancel(r.ID, 7)
	require.NoError(t, err)

	_, err = e.Cancel(r.ID, 7)
	var serr *InvalidStateError
	assert.ErrorAs(t, err, &serr)
}

// racingStore delays transitioners past their reads, forcing the
// interleaving where two callers observe the same pre-transition status.
type racingStore struct {
	*fakeStore
	gate    sync.WaitGroup
	pending atomic.Int32
}

func (s *racingStore) GetForUser(id, userID int64) (*model.Reminder, bool, error) {
	r, found, err := s.fakeStore.GetForUser(id, userID)
	if s.pending.Add(-1) >= 0 {
		s.gate.Done()
		s.gate.Wait()
	}
	return r, found, err
}

func TestConcurrentCompleteAndCancelOnlyOneWins(t *testing.T) {
	store := &racingStore{fakeStore: newFakeStore()}
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	e := NewEngine(store, &fakeCalcs{}, logger)

	r, err := e.CreateReminder(CreateInput{
		UserID: 7, RelatedID: 1, RelatedType: model.RelatedClient,
		Type: model.ReminderGeneral, Title: "Ping",
	})
	require.NoError(t, err)

	// Both callers read PENDING before either commits.
	store.gate.Add(2)
	store.pending.Store(2)

	var wg sync.WaitGroup
	var completeErr, cancelErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, completeErr = e.Complete(r.ID, 7)
	}()
	go func() {
		defer wg.Done()
		_, cancelErr = e.Cancel(r.ID, 7)
	}()
	wg.Wait()

	// Exactly one caller may commit; the loser gets InvalidState, never a
	// silent overwrite of the winner's terminal status.
	var serr *InvalidStateError
	if completeErr == nil {
		require.ErrorAs(t, cancelErr, &serr)
	} else {
		require.NoError(t, cancelErr)
		require.ErrorAs(t, completeErr, &serr)
	}

	stored, found, err := store.fakeStore.GetForUser(r.ID, 7)
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, stored.Status.Terminal())
	assert.Equal(t, stored.Status, serr.Current, "the loser must see the winner's terminal status")
}

func TestCompleteSucceedsOverSent(t *testing.T) {
	e, store, _ := newTestEngine()
	advance := frozenClock(e, time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))

	r, err := e.CreateReminder(CreateInput{
		UserID: 7, RelatedID: 1, RelatedType: model.RelatedClient,
		Type: model.ReminderGeneral, Title: "Ping",
	})
	require.NoError(t, err)

	advance(time.Hour)
	res, err := e.ProcessScheduled()
	require.NoError(t, err)
	require.Equal(t, 1, res.Sent)

	stored, found, err := store.GetForUser(r.ID, 7)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, model.StatusSent, stored.Status)

	completed, err := e.Complete(r.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, completed.Status)
}

func TestTransitionNotFound(t *testing.T) {
	e, _, _ := newTestEngine()
	r, err := e.CreateReminder(CreateInput{
		UserID: 7, RelatedID: 1, RelatedType: model.RelatedClient,
		Type: model.ReminderGeneral, Title: "Ping",
	})
	require.NoError(t, err)

	_, err = e.Complete(r.ID+100, 7)
	assert.ErrorIs(t, err, ErrNotFound)

	// Another user's reminder is invisible.
	_, err = e.Complete(r.ID, 8)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = e.Cancel(r.ID, 8)
	assert.ErrorIs(t, err, ErrNotFound)
}
