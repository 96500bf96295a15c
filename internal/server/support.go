package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ventspace/vent/internal/crisis"
	"github.com/ventspace/vent/internal/models"
)

type startSessionRequest struct {
	Username       string `json:"username"`
	CheckInPending bool   `json:"check_in_pending"`
}

type sessionResponse struct {
	SessionID  string            `json:"session_id"`
	Busy       bool              `json:"busy"`
	Transcript []models.ChatTurn `json:"transcript"`
}

// handleStartSupportSession opens a fresh support session. The seed turn is
// the check-in opener when the caller's activity check fired, otherwise the
// generic greeting.
func (s *Server) handleStartSupportSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	username, ok := validateUsername(req.Username)
	if !ok {
		s.respondError(w, http.StatusBadRequest, "valid username required")
		return
	}

	session := s.sessions.Start(username, req.CheckInPending)
	s.respondJSON(w, http.StatusCreated, sessionResponse{
		SessionID:  session.ID,
		Busy:       session.Busy(),
		Transcript: session.Transcript(),
	})
}

func (s *Server) handleGetSupportSession(w http.ResponseWriter, r *http.Request) {
	session, exists := s.sessions.Get(chi.URLParam(r, "id"))
	if !exists {
		s.respondError(w, http.StatusNotFound, "session not found")
		return
	}

	s.respondJSON(w, http.StatusOK, sessionResponse{
		SessionID:  session.ID,
		Busy:       session.Busy(),
		Transcript: session.Transcript(),
	})
}

type sendSupportMessageRequest struct {
	Content string `json:"content"`
}

func (s *Server) handleSendSupportMessage(w http.ResponseWriter, r *http.Request) {
	session, exists := s.sessions.Get(chi.URLParam(r, "id"))
	if !exists {
		s.respondError(w, http.StatusNotFound, "session not found")
		return
	}

	var req sendSupportMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Content == "" {
		s.respondError(w, http.StatusBadRequest, "content required")
		return
	}

	transcript, err := session.Send(r.Context(), req.Content)
	if err == crisis.ErrSessionBusy {
		s.respondError(w, http.StatusConflict, "a reply is still pending")
		return
	}

	s.respondJSON(w, http.StatusOK, sessionResponse{
		SessionID:  session.ID,
		Busy:       session.Busy(),
		Transcript: transcript,
	})
}

func (s *Server) handleDropSupportSession(w http.ResponseWriter, r *http.Request) {
	s.sessions.Drop(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}
