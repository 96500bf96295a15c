package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ventspace/vent/internal/crisis"
	"github.com/ventspace/vent/internal/hub"
	"github.com/ventspace/vent/internal/models"
	"github.com/ventspace/vent/internal/storage"
)

func (s *Server) handleListConversations(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")
	if username == "" {
		s.respondError(w, http.StatusBadRequest, "username required")
		return
	}

	conversations, err := s.store.ListConversations(r.Context(), username)
	if err != nil {
		s.logger.Error("Failed to list conversations",
			zap.Error(err),
			zap.String("username", username))
		s.respondError(w, http.StatusInternalServerError, "failed to list conversations")
		return
	}

	s.respondJSON(w, http.StatusOK, conversations)
}

type createConversationRequest struct {
	Username string `json:"username"`
	Other    string `json:"other_username"`
}

func (s *Server) handleCreateConversation(w http.ResponseWriter, r *http.Request) {
	var req createConversationRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	username, ok := validateUsername(req.Username)
	if !ok {
		s.respondError(w, http.StatusBadRequest, "valid username required")
		return
	}
	if req.Other == "" || req.Other == username {
		s.respondError(w, http.StatusBadRequest, "valid counterpart required")
		return
	}

	conv, err := s.store.CreateConversation(r.Context(), username, req.Other)
	if err != nil {
		s.logger.Error("Failed to create conversation",
			zap.Error(err),
			zap.String("username", username),
			zap.String("other", req.Other))
		s.respondError(w, http.StatusInternalServerError, "failed to create conversation")
		return
	}

	s.respondJSON(w, http.StatusCreated, conv)
}

func (s *Server) handleListDirectMessages(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "id")

	messages, err := s.store.GetDirectMessages(r.Context(), conversationID)
	if err != nil {
		s.logger.Error("Failed to list direct messages",
			zap.Error(err),
			zap.String("conversation_id", conversationID))
		s.respondError(w, http.StatusInternalServerError, "failed to list messages")
		return
	}

	s.respondJSON(w, http.StatusOK, messages)
}

type sendDirectMessageRequest struct {
	Sender   string             `json:"sender_username"`
	Content  string             `json:"content"`
	Type     models.MessageType `json:"message_type"`
	ImageURL string             `json:"image_url"`
}

func (s *Server) handleSendDirectMessage(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "id")

	var req sendDirectMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sender, ok := validateUsername(req.Sender)
	if !ok {
		s.respondError(w, http.StatusBadRequest, "valid sender required")
		return
	}

	msgType := req.Type
	if msgType == "" {
		msgType = models.TextMessage
	}
	if msgType == models.TextMessage && req.Content == "" {
		s.respondError(w, http.StatusBadRequest, "content required")
		return
	}
	if msgType == models.ImageMessage && req.ImageURL == "" {
		s.respondError(w, http.StatusBadRequest, "image_url required")
		return
	}

	// Messages already addressed to the support bot skip detection; the
	// sender is in the support channel and re-routing would loop.
	crisisHit := false
	if msgType == models.TextMessage && s.detectCrisis(req.Content) {
		conv, err := s.store.FindConversation(r.Context(), sender, crisis.SupportBotUsername)
		if err != nil || conv == nil || conv.ID != conversationID {
			crisisHit = true
		}
	}

	msg := &models.DirectMessage{
		ConversationID: conversationID,
		Sender:         sender,
		Content:        req.Content,
		Type:           msgType,
		ImageURL:       req.ImageURL,
	}
	if err := s.store.SaveDirectMessage(r.Context(), msg); err != nil {
		if err == storage.ErrNotFound {
			s.respondError(w, http.StatusNotFound, "conversation not found")
			return
		}
		s.logger.Error("Failed to save direct message",
			zap.Error(err),
			zap.String("conversation_id", conversationID),
			zap.String("sender", sender))
		s.respondError(w, http.StatusInternalServerError, "failed to send message")
		return
	}

	s.hub.Broadcast(hub.ConversationTopic(conversationID), msg)

	resp := sendMessageResponse{Message: msg}
	if crisisHit {
		resp.CrisisSupport = s.routeCrisisSupport(r.Context(), sender)
	}

	s.respondJSON(w, http.StatusCreated, resp)
}

type markReadRequest struct {
	Username string `json:"username"`
}

func (s *Server) handleMarkConversationRead(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "id")

	var req markReadRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.store.MarkConversationRead(r.Context(), conversationID, req.Username); err != nil {
		s.logger.Error("Failed to mark conversation read",
			zap.Error(err),
			zap.String("conversation_id", conversationID))
		s.respondError(w, http.StatusInternalServerError, "failed to mark read")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]bool{"read": true})
}
