package crisis

import (
	"context"

	"go.uber.org/zap"

	"github.com/ventspace/vent/internal/models"
	"github.com/ventspace/vent/internal/storage"
)

// Router surfaces the dedicated support conversation when the detector fires.
// It never blocks the normal send path: a store failure yields a nil handle
// and the caller proceeds without support routing.
type Router struct {
	store  storage.ConversationStore
	logger *zap.Logger
}

func NewRouter(store storage.ConversationStore, logger *zap.Logger) *Router {
	return &Router{store: store, logger: logger}
}

// Route finds or creates the conversation between the identity and the
// support bot. Creation is idempotent per unordered pair; the store resolves
// concurrent attempts to the single existing row.
func (r *Router) Route(ctx context.Context, username string) *models.Conversation {
	conv, err := r.store.FindConversation(ctx, username, SupportBotUsername)
	if err == nil {
		return conv
	}
	if err != storage.ErrNotFound {
		r.logger.Warn("Support conversation lookup failed, continuing without routing",
			zap.Error(err),
			zap.String("username", username))
		return nil
	}

	conv, err = r.store.CreateConversation(ctx, username, SupportBotUsername)
	if err != nil {
		r.logger.Warn("Support conversation creation failed, continuing without routing",
			zap.Error(err),
			zap.String("username", username))
		return nil
	}

	return conv
}
