package server

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/ventspace/vent/internal/crisis"
)

// crisisSupportNotice is the routing signal attached to a send response when
// the detector fires: the support conversation handle plus display text.
type crisisSupportNotice struct {
	ConversationID string `json:"conversation_id,omitempty"`
	BotUsername    string `json:"bot_username"`
	Notice         string `json:"notice"`
}

type sendMessageResponse struct {
	Message       any                  `json:"message"`
	CrisisSupport *crisisSupportNotice `json:"crisis_support,omitempty"`
}

const supportNoticeText = "Support is available. A private conversation with the Crisis Support Bot is open for you whenever you're ready."

func (s *Server) detectCrisis(content string) bool {
	return crisis.Detect(content)
}

// routeCrisisSupport opens or locates the support conversation. A nil handle
// means routing failed; the message send has already succeeded regardless.
func (s *Server) routeCrisisSupport(ctx context.Context, username string) *crisisSupportNotice {
	conv := s.router.Route(ctx, username)
	notice := &crisisSupportNotice{
		BotUsername: crisis.SupportBotUsername,
		Notice:      supportNoticeText,
	}
	if conv != nil {
		notice.ConversationID = conv.ID
	}
	return notice
}

type activityCheckInRequest struct {
	Username string `json:"username"`
}

// handleActivityCheckIn runs once per client session start: it reports
// whether the re-engagement opener should be shown and stamps "now".
func (s *Server) handleActivityCheckIn(w http.ResponseWriter, r *http.Request) {
	var req activityCheckInRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	username, ok := validateUsername(req.Username)
	if !ok {
		s.respondError(w, http.StatusBadRequest, "valid username required")
		return
	}

	shouldPrompt := s.tracker.CheckIn(username)
	if shouldPrompt {
		s.logger.Info("Inactivity check-in triggered", zap.String("username", username))
	}

	s.respondJSON(w, http.StatusOK, map[string]bool{"should_prompt": shouldPrompt})
}
