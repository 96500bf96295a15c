package storage

import (
	"context"
	"errors"

	"github.com/ventspace/vent/internal/models"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

type Storage interface {
	ProfileStore
	MessageStore
	GroupStore
	Close() error

	// Embed ConversationStore interface
	ConversationStore
}

type ProfileStore interface {
	UpsertProfile(ctx context.Context, profile *models.Profile) error
	GetProfile(ctx context.Context, username string) (*models.Profile, error)
}

// MessageStore holds the shared global room.
type MessageStore interface {
	SaveMessage(ctx context.Context, msg *models.Message) error
	GetMessages(ctx context.Context) ([]*models.Message, error)
}

type GroupStore interface {
	CreateGroup(ctx context.Context, group *models.Group) error
	GetGroup(ctx context.Context, id string) (*models.Group, error)
	ListGroups(ctx context.Context) ([]*models.Group, error)
	ListJoinedGroups(ctx context.Context, username string) ([]*models.Group, error)
	JoinGroup(ctx context.Context, groupID, username string) error
	LeaveGroup(ctx context.Context, groupID, username string) error
	ListGroupMembers(ctx context.Context, groupID string) ([]*models.GroupMember, error)
	SaveGroupMessage(ctx context.Context, msg *models.GroupMessage) error
	GetGroupMessages(ctx context.Context, groupID string) ([]*models.GroupMessage, error)
}

// ConversationStore is the collaborator the crisis router depends on.
// FindConversation and CreateConversation treat the username pair as
// unordered; CreateConversation is idempotent per pair.
type ConversationStore interface {
	FindConversation(ctx context.Context, userA, userB string) (*models.Conversation, error)
	CreateConversation(ctx context.Context, userA, userB string) (*models.Conversation, error)
	ListConversations(ctx context.Context, username string) ([]*models.Conversation, error)
	SaveDirectMessage(ctx context.Context, msg *models.DirectMessage) error
	GetDirectMessages(ctx context.Context, conversationID string) ([]*models.DirectMessage, error)
	MarkConversationRead(ctx context.Context, conversationID, username string) error
}
