package crisis

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ventspace/vent/internal/models"
)

// GreetingMessage seeds a freshly opened support session.
const GreetingMessage = "Hi, I'm here to support you. If you're going through a difficult time, you can talk to me. I'm here to listen without judgment. How are you feeling right now?"

// CheckInMessage seeds the session instead when the inactivity tracker fired.
const CheckInMessage = "Hey, I haven't seen you around in a while. Just wanted to check in - are you doing okay? I'm here if you need someone to talk to. 💙"

// FallbackMessage replaces the assistant reply whenever the completion
// service fails. It must never be empty and always carries the emergency
// resources; raw errors are never shown in a support context.
const FallbackMessage = "I'm having trouble connecting right now. If you're in crisis, please reach out to:\n\n🆘 988 Suicide & Crisis Lifeline (call or text 988)\n🚨 Emergency Services (911)\n\nYou're not alone, and help is available."

// ErrSessionBusy is returned when Send is called while a previous Send is
// still awaiting its completion. Rejecting keeps the transcript ordered.
var ErrSessionBusy = errors.New("support session is busy")

// Session holds the in-memory transcript of one support conversation and
// drives the completion service. State machine: Idle -> Sending -> Idle on
// both success and failure. Transcripts are never persisted server-side.
type Session struct {
	ID       string
	Username string

	mu        sync.Mutex
	turns     []models.ChatTurn
	busy      bool
	completer Completer
	logger    *zap.Logger
	now       func() time.Time
}

// NewSession seeds the transcript with exactly one assistant turn: the
// check-in opener when the tracker fired, the generic greeting otherwise.
func NewSession(username string, checkInPending bool, completer Completer, logger *zap.Logger) *Session {
	s := &Session{
		ID:        uuid.New().String(),
		Username:  username,
		completer: completer,
		logger:    logger,
		now:       time.Now,
	}

	seed := GreetingMessage
	if checkInPending {
		seed = CheckInMessage
	}
	s.turns = []models.ChatTurn{{
		ID:        uuid.New().String(),
		Role:      models.RoleAssistant,
		Content:   seed,
		CreatedAt: s.now(),
	}}

	return s
}

// Send appends the user turn, submits the full history to the completion
// service, and appends the reply. Any completion failure appends the fixed
// fallback turn instead; the only error Send itself returns is ErrSessionBusy.
func (s *Session) Send(ctx context.Context, text string) ([]models.ChatTurn, error) {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return nil, ErrSessionBusy
	}
	s.busy = true
	s.turns = append(s.turns, models.ChatTurn{
		ID:        uuid.New().String(),
		Role:      models.RoleUser,
		Content:   text,
		CreatedAt: s.now(),
	})
	history := snapshot(s.turns)
	s.mu.Unlock()

	reply, err := s.completer.Complete(ctx, history)
	if err != nil {
		s.logger.Warn("Completion failed, falling back to emergency resources",
			zap.Error(err),
			zap.String("session_id", s.ID))
		reply = FallbackMessage
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = append(s.turns, models.ChatTurn{
		ID:        uuid.New().String(),
		Role:      models.RoleAssistant,
		Content:   reply,
		CreatedAt: s.now(),
	})
	s.busy = false

	return snapshot(s.turns), nil
}

// Transcript returns a copy of the turns in chronological order.
func (s *Session) Transcript() []models.ChatTurn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot(s.turns)
}

func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

func snapshot(turns []models.ChatTurn) []models.ChatTurn {
	out := make([]models.ChatTurn, len(turns))
	copy(out, turns)
	return out
}
