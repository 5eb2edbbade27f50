// Package web implements the JSON API over the reminder engine.
package web

import "net/http"

func Router(s *Server) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealthCheck)

	// Reminder routes (identity supplied by the upstream gateway)
	mux.HandleFunc("POST /api/reminders", s.requireUser(s.handleCreateReminder))
	mux.HandleFunc("GET /api/reminders", s.requireUser(s.handleListReminders))
	mux.HandleFunc("GET /api/reminders/stats", s.requireUser(s.handleReminderStats))
	mux.HandleFunc("POST /api/reminders/{id}/complete", s.requireUser(s.handleCompleteReminder))
	mux.HandleFunc("POST /api/reminders/{id}/cancel", s.requireUser(s.handleCancelReminder))
	mux.HandleFunc("POST /api/calculations/{id}/follow-ups", s.requireUser(s.handleScheduleFollowUps))

	// Manual sweep, same engine entry point the scheduler uses
	mux.HandleFunc("POST /api/admin/reminders/process", s.handleProcessReminders)

	return s.loggingMiddleware(s.securityHeadersMiddleware(mux))
}
