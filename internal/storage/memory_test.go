package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ventspace/vent/internal/models"
)

func TestConversationCreationIsIdempotentPerUnorderedPair(t *testing.T) {
	store := NewMemoryStorage()
	ctx := context.Background()

	first, err := store.CreateConversation(ctx, "zoe", "adam")
	require.NoError(t, err)
	second, err := store.CreateConversation(ctx, "adam", "zoe")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)

	// The pair is stored canonically ordered.
	assert.Equal(t, "adam", first.User1)
	assert.Equal(t, "zoe", first.User2)

	conversations, err := store.ListConversations(ctx, "zoe")
	require.NoError(t, err)
	assert.Len(t, conversations, 1)
}

func TestFindConversationIgnoresDirection(t *testing.T) {
	store := NewMemoryStorage()
	ctx := context.Background()

	created, err := store.CreateConversation(ctx, "zoe", "adam")
	require.NoError(t, err)

	found, err := store.FindConversation(ctx, "adam", "zoe")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = store.FindConversation(ctx, "zoe", "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDirectMessagesKeepInsertionOrder(t *testing.T) {
	store := NewMemoryStorage()
	ctx := context.Background()

	conv, err := store.CreateConversation(ctx, "zoe", "adam")
	require.NoError(t, err)

	for _, content := range []string{"one", "two", "three"} {
		msg := &models.DirectMessage{
			ConversationID: conv.ID,
			Sender:         "zoe",
			Content:        content,
			Type:           models.TextMessage,
		}
		require.NoError(t, store.SaveDirectMessage(ctx, msg))
	}

	messages, err := store.GetDirectMessages(ctx, conv.ID)
	require.NoError(t, err)
	require.Len(t, messages, 3)
	assert.Equal(t, "one", messages[0].Content)
	assert.Equal(t, "three", messages[2].Content)
}

func TestMarkConversationReadSkipsOwnMessages(t *testing.T) {
	store := NewMemoryStorage()
	ctx := context.Background()

	conv, err := store.CreateConversation(ctx, "zoe", "adam")
	require.NoError(t, err)

	require.NoError(t, store.SaveDirectMessage(ctx, &models.DirectMessage{
		ConversationID: conv.ID, Sender: "zoe", Content: "hi", Type: models.TextMessage,
	}))
	require.NoError(t, store.SaveDirectMessage(ctx, &models.DirectMessage{
		ConversationID: conv.ID, Sender: "adam", Content: "hey", Type: models.TextMessage,
	}))

	require.NoError(t, store.MarkConversationRead(ctx, conv.ID, "zoe"))

	messages, err := store.GetDirectMessages(ctx, conv.ID)
	require.NoError(t, err)
	assert.False(t, messages[0].IsRead) // zoe's own message untouched
	assert.True(t, messages[1].IsRead)
}

func TestGroupMembershipLifecycle(t *testing.T) {
	store := NewMemoryStorage()
	ctx := context.Background()

	group := &models.Group{Name: "night owls", IsPublic: true, OwnerID: "zoe"}
	require.NoError(t, store.CreateGroup(ctx, group))
	require.NotEmpty(t, group.ID)

	require.NoError(t, store.JoinGroup(ctx, group.ID, "zoe"))
	require.NoError(t, store.JoinGroup(ctx, group.ID, "adam"))

	members, err := store.ListGroupMembers(ctx, group.ID)
	require.NoError(t, err)
	assert.Len(t, members, 2)

	joined, err := store.ListJoinedGroups(ctx, "adam")
	require.NoError(t, err)
	require.Len(t, joined, 1)
	assert.Equal(t, group.ID, joined[0].ID)

	// Leaving deactivates membership rather than deleting it.
	require.NoError(t, store.LeaveGroup(ctx, group.ID, "adam"))
	members, err = store.ListGroupMembers(ctx, group.ID)
	require.NoError(t, err)
	assert.Len(t, members, 1)

	joined, err = store.ListJoinedGroups(ctx, "adam")
	require.NoError(t, err)
	assert.Empty(t, joined)

	// Re-joining reactivates the same membership.
	require.NoError(t, store.JoinGroup(ctx, group.ID, "adam"))
	members, err = store.ListGroupMembers(ctx, group.ID)
	require.NoError(t, err)
	assert.Len(t, members, 2)
}

func TestGroupMessagesRequireExistingGroup(t *testing.T) {
	store := NewMemoryStorage()
	ctx := context.Background()

	err := store.SaveGroupMessage(ctx, &models.GroupMessage{
		GroupID: "missing", Username: "zoe", Content: "hi", Type: models.TextMessage,
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProfileUpsertPreservesCreatedAt(t *testing.T) {
	store := NewMemoryStorage()
	ctx := context.Background()

	first := &models.Profile{Username: "zoe", Bio: "hello"}
	require.NoError(t, store.UpsertProfile(ctx, first))

	second := &models.Profile{Username: "zoe", Bio: "updated"}
	require.NoError(t, store.UpsertProfile(ctx, second))
	assert.Equal(t, first.CreatedAt, second.CreatedAt)

	profile, err := store.GetProfile(ctx, "zoe")
	require.NoError(t, err)
	assert.Equal(t, "updated", profile.Bio)

	_, err = store.GetProfile(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGlobalMessagesKeepInsertionOrder(t *testing.T) {
	store := NewMemoryStorage()
	ctx := context.Background()

	for _, content := range []string{"first", "second", "third"} {
		msg := &models.Message{Username: "zoe", Content: content, Type: models.TextMessage}
		require.NoError(t, store.SaveMessage(ctx, msg))
		assert.NotEmpty(t, msg.ID)
	}

	messages, err := store.GetMessages(ctx)
	require.NoError(t, err)
	require.Len(t, messages, 3)
	assert.Equal(t, "first", messages[0].Content)
	assert.Equal(t, "third", messages[2].Content)

	// Returned messages are copies; mutating one does not touch the store.
	messages[0].Content = "mutated"
	again, err := store.GetMessages(ctx)
	require.NoError(t, err)
	assert.Equal(t, "first", again[0].Content)
}
