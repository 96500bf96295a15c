package server

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ventspace/vent/internal/hub"
	"github.com/ventspace/vent/internal/models"
)

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := s.store.GetMessages(r.Context())
	if err != nil {
		s.logger.Error("Failed to list messages", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "failed to list messages")
		return
	}

	s.respondJSON(w, http.StatusOK, messages)
}

type sendMessageRequest struct {
	Username    string             `json:"username"`
	Content     string             `json:"content"`
	Type        models.MessageType `json:"message_type"`
	ImageURL    string             `json:"image_url"`
	StickerName string             `json:"sticker_name"`
	AvatarURL   string             `json:"avatar_url"`
}

// handleSendMessage posts to the shared global room. Same pipeline as group
// sends: detect, persist, broadcast, attach the support notice on a hit.
func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	username, ok := validateUsername(req.Username)
	if !ok {
		s.respondError(w, http.StatusBadRequest, "valid username required")
		return
	}

	msgType := req.Type
	if msgType == "" {
		msgType = models.TextMessage
	}
	switch msgType {
	case models.TextMessage:
		if req.Content == "" {
			s.respondError(w, http.StatusBadRequest, "content required")
			return
		}
	case models.ImageMessage:
		if req.ImageURL == "" {
			s.respondError(w, http.StatusBadRequest, "image_url required")
			return
		}
	case models.StickerMessage:
		if _, known := stickerNames[req.StickerName]; !known {
			s.respondError(w, http.StatusBadRequest, "unknown sticker")
			return
		}
	default:
		s.respondError(w, http.StatusBadRequest, "unknown message type")
		return
	}

	crisisHit := msgType == models.TextMessage && s.detectCrisis(req.Content)

	msg := &models.Message{
		Username:    username,
		Content:     req.Content,
		Type:        msgType,
		ImageURL:    req.ImageURL,
		StickerName: req.StickerName,
		AvatarURL:   req.AvatarURL,
	}
	if err := s.store.SaveMessage(r.Context(), msg); err != nil {
		s.logger.Error("Failed to save message",
			zap.Error(err),
			zap.String("username", username))
		s.respondError(w, http.StatusInternalServerError, "failed to send message")
		return
	}

	s.hub.Broadcast(hub.GlobalTopic, msg)

	resp := sendMessageResponse{Message: msg}
	if crisisHit {
		resp.CrisisSupport = s.routeCrisisSupport(r.Context(), username)
	}

	s.respondJSON(w, http.StatusCreated, resp)
}
