package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ventspace/vent/internal/models"
	"github.com/ventspace/vent/internal/storage"
)

type claimIdentityRequest struct {
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url"`
	Bio       string `json:"bio"`
}

// handleClaimIdentity validates a self-asserted display name and upserts its
// profile. No account or credential sits behind the name.
func (s *Server) handleClaimIdentity(w http.ResponseWriter, r *http.Request) {
	var req claimIdentityRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	username, ok := validateUsername(req.Username)
	if !ok {
		s.respondError(w, http.StatusBadRequest, "username must be 1-20 characters and may not be reserved")
		return
	}

	profile := &models.Profile{
		Username:  username,
		AvatarURL: req.AvatarURL,
		Bio:       req.Bio,
	}
	if err := s.store.UpsertProfile(r.Context(), profile); err != nil {
		s.logger.Error("Failed to upsert profile",
			zap.Error(err),
			zap.String("username", username))
		s.respondError(w, http.StatusInternalServerError, "failed to save profile")
		return
	}

	s.respondJSON(w, http.StatusOK, profile)
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	profile, err := s.store.GetProfile(r.Context(), username)
	if err == storage.ErrNotFound {
		s.respondError(w, http.StatusNotFound, "profile not found")
		return
	}
	if err != nil {
		s.logger.Error("Failed to get profile",
			zap.Error(err),
			zap.String("username", username))
		s.respondError(w, http.StatusInternalServerError, "failed to load profile")
		return
	}

	s.respondJSON(w, http.StatusOK, profile)
}
