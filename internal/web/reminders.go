package web

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"tradecrm/internal/model"
	"tradecrm/internal/reminder"
)

type createReminderRequest struct {
	RelatedID     int64      `json:"related_id"`
	RelatedType   string     `json:"related_type"`
	Type          string     `json:"type"`
	Title         string     `json:"title"`
	Description   *string    `json:"description"`
	ScheduledFor  *time.Time `json:"scheduled_for"`
	FrequencyDays int        `json:"frequency_days"`
	MaxReminders  int        `json:"max_reminders"`
}

func (s *Server) handleCreateReminder(w http.ResponseWriter, r *http.Request, userID int64) {
	var req createReminderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	created, err := s.engine.CreateReminder(reminder.CreateInput{
		UserID:        userID,
		RelatedID:     req.RelatedID,
		RelatedType:   model.RelatedType(req.RelatedType),
		Type:          model.ReminderType(req.Type),
		Title:         req.Title,
		Description:   req.Description,
		ScheduledFor:  req.ScheduledFor,
		FrequencyDays: req.FrequencyDays,
		MaxReminders:  req.MaxReminders,
	})
	if err != nil {
		s.writeEngineError(w, err)
		return
	}

	s.sendJSON(w, http.StatusCreated, created)
}

func (s *Server) handleListReminders(w http.ResponseWriter, r *http.Request, userID int64) {
	q := r.URL.Query()

	filter := model.ReminderFilter{
		UserID:      userID,
		Status:      model.ReminderStatus(q.Get("status")),
		RelatedType: model.RelatedType(q.Get("related_type")),
		Type:        model.ReminderType(q.Get("type")),
	}

	page := model.ReminderPage{
		SortBy:    q.Get("sort_by"),
		SortOrder: q.Get("sort_order"),
	}
	page.Page, _ = strconv.Atoi(q.Get("page"))
	page.Limit, _ = strconv.Atoi(q.Get("limit"))

	reminders, total, err := s.engine.ListForUser(filter, page)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}

	s.sendJSON(w, http.StatusOK, map[string]interface{}{
		"reminders": reminders,
		"total":     total,
	})
}

func (s *Server) handleReminderStats(w http.ResponseWriter, r *http.Request, userID int64) {
	stats, err := s.engine.StatsForUser(userID)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.sendJSON(w, http.StatusOK, stats)
}

func (s *Server) handleCompleteReminder(w http.ResponseWriter, r *http.Request, userID int64) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	updated, err := s.engine.Complete(id, userID)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.sendJSON(w, http.StatusOK, updated)
}

func (s *Server) handleCancelReminder(w http.ResponseWriter, r *http.Request, userID int64) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	updated, err := s.engine.Cancel(id, userID)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.sendJSON(w, http.StatusOK, updated)
}

type followUpRequest struct {
	FrequencyDays int `json:"frequency_days"`
	MaxReminders  int `json:"max_reminders"`
}

func (s *Server) handleScheduleFollowUps(w http.ResponseWriter, r *http.Request, userID int64) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	var req followUpRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.sendJSONError(w, "Invalid request body", http.StatusBadRequest)
			return
		}
	}

	created, err := s.engine.ScheduleFollowUps(id, userID, reminder.FollowUpOptions{
		FrequencyDays: req.FrequencyDays,
		MaxReminders:  req.MaxReminders,
	})
	if err != nil {
		s.writeEngineError(w, err)
		return
	}

	s.sendJSON(w, http.StatusCreated, created)
}

// handleProcessReminders lets an operator trigger the due-sweep without
// waiting for the next scheduler tick.
func (s *Server) handleProcessReminders(w http.ResponseWriter, r *http.Request) {
	if s.adminToken == "" {
		s.sendJSONError(w, "Manual sweep is disabled", http.StatusServiceUnavailable)
		return
	}
	if r.Header.Get("Authorization") != "Bearer "+s.adminToken {
		s.sendJSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	if !s.sweepLimiter.Allow() {
		s.sendJSONError(w, "Too many sweep requests", http.StatusTooManyRequests)
		return
	}

	result, err := s.engine.ProcessScheduled()
	if err != nil {
		s.logger.Errorf("Manual sweep failed: %v", err)
		s.sendJSONError(w, "Sweep failed", http.StatusInternalServerError)
		return
	}

	s.sendJSON(w, http.StatusOK, result)
}

func (s *Server) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		s.sendJSONError(w, "Invalid id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}
