package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"tradecrm/internal/reminder"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Pinger is the connectivity probe the health endpoint uses.
type Pinger interface {
	Ping() error
}

type Server struct {
	logger       *logrus.Logger
	engine       *reminder.Engine
	db           Pinger
	adminToken   string
	sweepLimiter *rate.Limiter
}

// NewServer wires the HTTP layer over the reminder engine. adminToken
// guards the manual sweep endpoint; empty disables it.
func NewServer(logger *logrus.Logger, engine *reminder.Engine, db Pinger, adminToken string) *Server {
	return &Server{
		logger:       logger,
		engine:       engine,
		db:           db,
		adminToken:   adminToken,
		sweepLimiter: rate.NewLimiter(rate.Every(time.Minute), 2), // manual sweeps are rare
	}
}

func (s *Server) Router() http.Handler {
	return Router(s)
}

// Middleware to log requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.logger.Infof("%s %s %s", r.RemoteAddr, r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

// securityHeadersMiddleware adds security headers to all responses
func (s *Server) securityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// requireUser extracts the authenticated user id the upstream gateway
// sets after authentication; this service never authenticates itself.
func (s *Server) requireUser(next func(w http.ResponseWriter, r *http.Request, userID int64)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := strconv.ParseInt(r.Header.Get("X-User-ID"), 10, 64)
		if err != nil || userID <= 0 {
			s.sendJSONError(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r, userID)
	}
}

func (s *Server) sendJSONError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(map[string]string{"error": message})
	if err != nil {
		s.logger.Errorf("Failed to send error response: %v", err)
	}
}

func (s *Server) sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(data)
	if err != nil {
		s.logger.Errorf("Failed to send response: %v", err)
	}
}

// writeEngineError maps the engine's typed failures onto HTTP statuses.
// Unexpected errors stay generic so internals never leak to clients.
func (s *Server) writeEngineError(w http.ResponseWriter, err error) {
	var verr *reminder.ValidationError
	var serr *reminder.InvalidStateError

	switch {
	case errors.As(err, &verr):
		s.sendJSONError(w, verr.Error(), http.StatusBadRequest)
	case errors.Is(err, reminder.ErrNotFound):
		s.sendJSONError(w, "Not found", http.StatusNotFound)
	case errors.As(err, &serr):
		s.sendJSONError(w, serr.Error(), http.StatusConflict)
	default:
		s.logger.Errorf("Reminder operation failed: %v", err)
		s.sendJSONError(w, "Internal server error", http.StatusInternalServerError)
	}
}
