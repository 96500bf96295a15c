package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ventspace/vent/internal/blob"
	"github.com/ventspace/vent/internal/crisis"
	"github.com/ventspace/vent/internal/hub"
	"github.com/ventspace/vent/internal/imagegen"
	"github.com/ventspace/vent/internal/storage"
)

const maxUsernameLength = 20

type Server struct {
	store    storage.Storage
	blobs    blob.Store
	hub      *hub.Hub
	tracker  *crisis.ActivityTracker
	router   *crisis.Router
	sessions *crisis.SessionManager
	images   imagegen.Generator
	logger   *zap.Logger
}

func New(store storage.Storage, blobs blob.Store, h *hub.Hub, tracker *crisis.ActivityTracker, router *crisis.Router, sessions *crisis.SessionManager, images imagegen.Generator, logger *zap.Logger) *Server {
	return &Server{
		store:    store,
		blobs:    blobs,
		hub:      h,
		tracker:  tracker,
		router:   router,
		sessions: sessions,
		images:   images,
		logger:   logger,
	}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Route("/api", func(r chi.Router) {
		r.Post("/identity", s.handleClaimIdentity)
		r.Get("/profiles/{username}", s.handleGetProfile)

		r.Get("/messages", s.handleListMessages)
		r.Post("/messages", s.handleSendMessage)

		r.Get("/groups", s.handleListGroups)
		r.Post("/groups", s.handleCreateGroup)
		r.Get("/groups/joined", s.handleListJoinedGroups)
		r.Post("/groups/{id}/join", s.handleJoinGroup)
		r.Post("/groups/{id}/leave", s.handleLeaveGroup)
		r.Get("/groups/{id}/members", s.handleListGroupMembers)
		r.Get("/groups/{id}/messages", s.handleListGroupMessages)
		r.Post("/groups/{id}/messages", s.handleSendGroupMessage)

		r.Get("/conversations", s.handleListConversations)
		r.Post("/conversations", s.handleCreateConversation)
		r.Get("/conversations/{id}/messages", s.handleListDirectMessages)
		r.Post("/conversations/{id}/messages", s.handleSendDirectMessage)
		r.Post("/conversations/{id}/read", s.handleMarkConversationRead)

		r.Post("/activity/check-in", s.handleActivityCheckIn)

		r.Post("/support/sessions", s.handleStartSupportSession)
		r.Get("/support/sessions/{id}", s.handleGetSupportSession)
		r.Post("/support/sessions/{id}/messages", s.handleSendSupportMessage)
		r.Delete("/support/sessions/{id}", s.handleDropSupportSession)

		r.Post("/uploads", s.handleUpload)
		r.Get("/uploads/{id}", s.handleGetUpload)
		r.Post("/images/generate", s.handleGenerateImage)
	})

	r.Get("/ws", s.hub.HandleWS)

	return r
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// validateUsername enforces the display-name rules: 1-20 characters after
// trimming, and never the reserved support-bot identity.
func validateUsername(username string) (string, bool) {
	username = strings.TrimSpace(username)
	if username == "" || utf8.RuneCountInString(username) > maxUsernameLength {
		return "", false
	}
	if username == crisis.SupportBotUsername {
		return "", false
	}
	return username, true
}
