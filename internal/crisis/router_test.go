package crisis

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ventspace/vent/internal/models"
	"github.com/ventspace/vent/internal/storage"
)

func TestRouteCreatesSupportConversation(t *testing.T) {
	store := storage.NewMemoryStorage()
	router := NewRouter(store, zap.NewNop())

	conv := router.Route(context.Background(), "quietfox")
	require.NotNil(t, conv)
	assert.Equal(t, SupportBotUsername, conv.Other("quietfox"))
}

func TestRouteIsIdempotentPerIdentity(t *testing.T) {
	store := storage.NewMemoryStorage()
	router := NewRouter(store, zap.NewNop())

	first := router.Route(context.Background(), "quietfox")
	second := router.Route(context.Background(), "quietfox")
	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.Equal(t, first.ID, second.ID)

	// The store holds exactly one conversation for the pair.
	conversations, err := store.ListConversations(context.Background(), "quietfox")
	require.NoError(t, err)
	assert.Len(t, conversations, 1)
}

func TestRouteReturnsExistingConversation(t *testing.T) {
	store := storage.NewMemoryStorage()
	existing, err := store.CreateConversation(context.Background(), "quietfox", SupportBotUsername)
	require.NoError(t, err)

	router := NewRouter(store, zap.NewNop())
	conv := router.Route(context.Background(), "quietfox")
	require.NotNil(t, conv)
	assert.Equal(t, existing.ID, conv.ID)
}

type unavailableStore struct {
	storage.ConversationStore
}

func (unavailableStore) FindConversation(context.Context, string, string) (*models.Conversation, error) {
	return nil, errors.New("store unavailable")
}

func (unavailableStore) CreateConversation(context.Context, string, string) (*models.Conversation, error) {
	return nil, errors.New("store unavailable")
}

func TestRouteReturnsNilWhenStoreUnavailable(t *testing.T) {
	router := NewRouter(unavailableStore{}, zap.NewNop())

	assert.Nil(t, router.Route(context.Background(), "quietfox"))
}
