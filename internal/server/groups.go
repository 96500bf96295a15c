package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/ventspace/vent/internal/hub"
	"github.com/ventspace/vent/internal/models"
	"github.com/ventspace/vent/internal/storage"
)

var stickerNames = map[string]struct{}{
	"heart": {}, "laugh": {}, "thumbs-up": {}, "sad": {}, "angry": {},
	"party": {}, "fire": {}, "cool": {}, "wink": {}, "kiss": {},
	"clap": {}, "thinking": {}, "wow": {}, "sick": {}, "ghost": {},
	"money": {}, "eyes": {}, "tired": {}, "confused": {}, "surprised": {},
}

type createGroupRequest struct {
	Username string   `json:"username"`
	Name     string   `json:"name"`
	Password string   `json:"password"`
	IsPublic bool     `json:"is_public"`
	Tags     []string `json:"tags"`
}

func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var req createGroupRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	username, ok := validateUsername(req.Username)
	if !ok {
		s.respondError(w, http.StatusBadRequest, "valid username required")
		return
	}
	if req.Name == "" {
		s.respondError(w, http.StatusBadRequest, "group name required")
		return
	}
	if !req.IsPublic && req.Password == "" {
		s.respondError(w, http.StatusBadRequest, "private groups require a password")
		return
	}

	group := &models.Group{
		Name:     req.Name,
		IsPublic: req.IsPublic,
		OwnerID:  username,
		Tags:     req.Tags,
	}
	if !req.IsPublic {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			s.logger.Error("Failed to hash group password", zap.Error(err))
			s.respondError(w, http.StatusInternalServerError, "failed to create group")
			return
		}
		group.PasswordHash = string(hash)
	}

	if err := s.store.CreateGroup(r.Context(), group); err != nil {
		s.logger.Error("Failed to create group",
			zap.Error(err),
			zap.String("name", req.Name))
		s.respondError(w, http.StatusInternalServerError, "failed to create group")
		return
	}

	// The creator joins their own group automatically.
	if err := s.store.JoinGroup(r.Context(), group.ID, username); err != nil {
		s.logger.Error("Failed to join creator to group",
			zap.Error(err),
			zap.String("group_id", group.ID),
			zap.String("username", username))
	}

	s.respondJSON(w, http.StatusCreated, group)
}

func (s *Server) handleListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := s.store.ListGroups(r.Context())
	if err != nil {
		s.logger.Error("Failed to list groups", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "failed to list groups")
		return
	}

	s.respondJSON(w, http.StatusOK, groups)
}

func (s *Server) handleListJoinedGroups(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")
	if username == "" {
		s.respondError(w, http.StatusBadRequest, "username required")
		return
	}

	groups, err := s.store.ListJoinedGroups(r.Context(), username)
	if err != nil {
		s.logger.Error("Failed to list joined groups",
			zap.Error(err),
			zap.String("username", username))
		s.respondError(w, http.StatusInternalServerError, "failed to list joined groups")
		return
	}

	s.respondJSON(w, http.StatusOK, groups)
}

type joinGroupRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleJoinGroup(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "id")

	var req joinGroupRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	username, ok := validateUsername(req.Username)
	if !ok {
		s.respondError(w, http.StatusBadRequest, "valid username required")
		return
	}

	group, err := s.store.GetGroup(r.Context(), groupID)
	if err == storage.ErrNotFound {
		s.respondError(w, http.StatusNotFound, "group not found")
		return
	}
	if err != nil {
		s.logger.Error("Failed to get group",
			zap.Error(err),
			zap.String("group_id", groupID))
		s.respondError(w, http.StatusInternalServerError, "failed to join group")
		return
	}

	if !group.IsPublic {
		if req.Password == "" {
			s.respondError(w, http.StatusForbidden, "password required for private group")
			return
		}
		if bcrypt.CompareHashAndPassword([]byte(group.PasswordHash), []byte(req.Password)) != nil {
			s.respondError(w, http.StatusForbidden, "invalid password")
			return
		}
	}

	if err := s.store.JoinGroup(r.Context(), groupID, username); err != nil {
		s.logger.Error("Failed to join group",
			zap.Error(err),
			zap.String("group_id", groupID),
			zap.String("username", username))
		s.respondError(w, http.StatusInternalServerError, "failed to join group")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]bool{"joined": true})
}

type leaveGroupRequest struct {
	Username string `json:"username"`
}

func (s *Server) handleLeaveGroup(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "id")

	var req leaveGroupRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.store.LeaveGroup(r.Context(), groupID, req.Username); err != nil {
		s.logger.Error("Failed to leave group",
			zap.Error(err),
			zap.String("group_id", groupID),
			zap.String("username", req.Username))
		s.respondError(w, http.StatusInternalServerError, "failed to leave group")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]bool{"left": true})
}

func (s *Server) handleListGroupMembers(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "id")

	members, err := s.store.ListGroupMembers(r.Context(), groupID)
	if err != nil {
		s.logger.Error("Failed to list group members",
			zap.Error(err),
			zap.String("group_id", groupID))
		s.respondError(w, http.StatusInternalServerError, "failed to list members")
		return
	}

	s.respondJSON(w, http.StatusOK, members)
}

func (s *Server) handleListGroupMessages(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "id")

	messages, err := s.store.GetGroupMessages(r.Context(), groupID)
	if err != nil {
		s.logger.Error("Failed to list group messages",
			zap.Error(err),
			zap.String("group_id", groupID))
		s.respondError(w, http.StatusInternalServerError, "failed to list messages")
		return
	}

	s.respondJSON(w, http.StatusOK, messages)
}

type sendGroupMessageRequest struct {
	Username    string             `json:"username"`
	Content     string             `json:"content"`
	Type        models.MessageType `json:"message_type"`
	ImageURL    string             `json:"image_url"`
	StickerName string             `json:"sticker_name"`
	AvatarURL   string             `json:"avatar_url"`
}

func (s *Server) handleSendGroupMessage(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "id")

	var req sendGroupMessageRequest
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

	// Scan before the send commits so routing can ride alongside delivery.
	crisisHit := msgType == models.TextMessage && s.detectCrisis(req.Content)

	msg := &models.GroupMessage{
		GroupID:     groupID,
		Username:    username,
		Content:     req.Content,
		Type:        msgType,
		ImageURL:    req.ImageURL,
		StickerName: req.StickerName,
		AvatarURL:   req.AvatarURL,
	}
	if err := s.store.SaveGroupMessage(r.Context(), msg); err != nil {
		if err == storage.ErrNotFound {
			s.respondError(w, http.StatusNotFound, "group not found")
			return
		}
		s.logger.Error("Failed to save group message",
			zap.Error(err),
			zap.String("group_id", groupID),
			zap.String("username", username))
		s.respondError(w, http.StatusInternalServerError, "failed to send message")
		return
	}

	s.hub.Broadcast(hub.GroupTopic(groupID), msg)

	resp := sendMessageResponse{Message: msg}
	if crisisHit {
		resp.CrisisSupport = s.routeCrisisSupport(r.Context(), username)
	}

	s.respondJSON(w, http.StatusCreated, resp)
}
