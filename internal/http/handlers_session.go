package http

import (
	"errors"
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/session"
)

type loginInput struct {
	Token string `json:"token"`
}

type sessionStatus struct {
	State        string         `json:"state"`
	Identity     *core.Identity `json:"identity,omitempty"`
	Profile      *core.Profile  `json:"profile,omitempty"`
	MigrationErr string         `json:"migration_error,omitempty"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if s.sessions == nil {
		writeError(w, http.StatusServiceUnavailable, "sessions not configured")
		return
	}
	var in loginInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ident, err := s.sessions.Login(r.Context(), in.Token)
	switch {
	case errors.Is(err, session.ErrAlreadyAuthenticated):
		writeError(w, http.StatusConflict, err.Error())
		return
	case errors.Is(err, session.ErrAuth):
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, ident)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if s.sessions == nil {
		writeError(w, http.StatusServiceUnavailable, "sessions not configured")
		return
	}
	if err := s.sessions.Logout(r.Context()); err != nil {
		if errors.Is(err, session.ErrNotAuthenticated) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSessionStatus(w http.ResponseWriter, r *http.Request) {
	if s.sessions == nil {
		writeError(w, http.StatusServiceUnavailable, "sessions not configured")
		return
	}

	status := sessionStatus{State: string(s.sessions.State())}
	if ident, ok := s.sessions.Identity(); ok {
		status.Identity = &ident
		profile := s.sessions.Profile()
		status.Profile = &profile
	}
	if err := s.sessions.MigrationErr(); err != nil {
		status.MigrationErr = err.Error()
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleRetryMigration(w http.ResponseWriter, r *http.Request) {
	if s.sessions == nil {
		writeError(w, http.StatusServiceUnavailable, "sessions not configured")
		return
	}
	if err := s.sessions.RetryMigration(r.Context()); err != nil {
		if errors.Is(err, session.ErrNotAuthenticated) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	if s.sessions == nil {
		writeError(w, http.StatusServiceUnavailable, "sessions not configured")
		return
	}
	var p core.Profile
	if err := decodeJSON(r, &p); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.sessions.UpdateProfile(r.Context(), p); err != nil {
		if errors.Is(err, session.ErrNotAuthenticated) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.sessions.Profile())
}
