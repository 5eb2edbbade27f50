package web

import "net/http"

func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(); err != nil {
		s.sendJSON(w, http.StatusInternalServerError, map[string]string{"status": "error", "db": "down"})
		return
	}
	s.sendJSON(w, http.StatusOK, map[string]string{"status": "ok", "db": "up"})
}
