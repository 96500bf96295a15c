package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ventspace/vent/internal/models"
)

// MemoryStorage mirrors PostgresStorage for tests and the use_in_memory
// config mode. All data is lost on process exit.
type MemoryStorage struct {
	mu            sync.RWMutex
	profiles      map[string]*models.Profile
	messages      []*models.Message
	groups        map[string]*models.Group
	members       map[string]map[string]*models.GroupMember // group id -> username
	groupMessages map[string][]*models.GroupMessage
	conversations map[string]*models.Conversation // keyed by "user1|user2" canonical pair
	directs       map[string][]*models.DirectMessage
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		profiles:      make(map[string]*models.Profile),
		groups:        make(map[string]*models.Group),
		members:       make(map[string]map[string]*models.GroupMember),
		groupMessages: make(map[string][]*models.GroupMessage),
		conversations: make(map[string]*models.Conversation),
		directs:       make(map[string][]*models.DirectMessage),
	}
}

func (s *MemoryStorage) SaveMessage(ctx context.Context, msg *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg.ID = uuid.New().String()
	msg.CreatedAt = time.Now()

	clone := *msg
	s.messages = append(s.messages, &clone)
	return nil
}

func (s *MemoryStorage) GetMessages(ctx context.Context) ([]*models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	messages := make([]*models.Message, 0, len(s.messages))
	for _, msg := range s.messages {
		clone := *msg
		messages = append(messages, &clone)
	}
	return messages, nil
}

func (s *MemoryStorage) UpsertProfile(ctx context.Context, profile *models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if existing, exists := s.profiles[profile.Username]; exists {
		profile.CreatedAt = existing.CreatedAt
	} else {
		profile.CreatedAt = now
	}
	profile.UpdatedAt = now

	clone := *profile
	s.profiles[profile.Username] = &clone
	return nil
}

func (s *MemoryStorage) GetProfile(ctx context.Context, username string) (*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if profile, exists := s.profiles[username]; exists {
		clone := *profile
		return &clone, nil
	}
	return nil, ErrNotFound
}

func (s *MemoryStorage) CreateGroup(ctx context.Context, group *models.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	group.ID = uuid.New().String()
	group.CreatedAt = time.Now()

	clone := *group
	s.groups[group.ID] = &clone
	s.members[group.ID] = make(map[string]*models.GroupMember)
	return nil
}

func (s *MemoryStorage) GetGroup(ctx context.Context, id string) (*models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if group, exists := s.groups[id]; exists {
		clone := *group
		return &clone, nil
	}
	return nil, ErrNotFound
}

func (s *MemoryStorage) ListGroups(ctx context.Context) ([]*models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	groups := make([]*models.Group, 0, len(s.groups))
	for _, group := range s.groups {
		clone := *group
		groups = append(groups, &clone)
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].CreatedAt.After(groups[j].CreatedAt)
	})
	return groups, nil
}

func (s *MemoryStorage) ListJoinedGroups(ctx context.Context, username string) ([]*models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var groups []*models.Group
	for groupID, members := range s.members {
		member, exists := members[username]
		if !exists || !member.IsActive {
			continue
		}
		if group, ok := s.groups[groupID]; ok {
			clone := *group
			groups = append(groups, &clone)
		}
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].CreatedAt.After(groups[j].CreatedAt)
	})
	return groups, nil
}

func (s *MemoryStorage) JoinGroup(ctx context.Context, groupID, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.groups[groupID]; !exists {
		return ErrNotFound
	}

	members := s.members[groupID]
	if members == nil {
		members = make(map[string]*models.GroupMember)
		s.members[groupID] = members
	}

	if member, exists := members[username]; exists {
		member.IsActive = true
		return nil
	}

	members[username] = &models.GroupMember{
		ID:       uuid.New().String(),
		GroupID:  groupID,
		Username: username,
		IsActive: true,
		JoinedAt: time.Now(),
	}
	return nil
}

func (s *MemoryStorage) LeaveGroup(ctx context.Context, groupID, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if member, exists := s.members[groupID][username]; exists {
		member.IsActive = false
	}
	return nil
}

func (s *MemoryStorage) ListGroupMembers(ctx context.Context, groupID string) ([]*models.GroupMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var members []*models.GroupMember
	for _, member := range s.members[groupID] {
		if !member.IsActive {
			continue
		}
		clone := *member
		members = append(members, &clone)
	}
	sort.Slice(members, func(i, j int) bool {
		return members[i].JoinedAt.Before(members[j].JoinedAt)
	})
	return members, nil
}

func (s *MemoryStorage) SaveGroupMessage(ctx context.Context, msg *models.GroupMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.groups[msg.GroupID]; !exists {
		return ErrNotFound
	}

	msg.ID = uuid.New().String()
	msg.CreatedAt = time.Now()

	clone := *msg
	s.groupMessages[msg.GroupID] = append(s.groupMessages[msg.GroupID], &clone)
	return nil
}

func (s *MemoryStorage) GetGroupMessages(ctx context.Context, groupID string) ([]*models.GroupMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.groupMessages[groupID]
	messages := make([]*models.GroupMessage, 0, len(stored))
	for _, msg := range stored {
		clone := *msg
		messages = append(messages, &clone)
	}
	return messages, nil
}

func (s *MemoryStorage) FindConversation(ctx context.Context, userA, userB string) (*models.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if conv, exists := s.conversations[pairKey(userA, userB)]; exists {
		clone := *conv
		return &clone, nil
	}
	return nil, ErrNotFound
}

func (s *MemoryStorage) CreateConversation(ctx context.Context, userA, userB string) (*models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pairKey(userA, userB)
	if conv, exists := s.conversations[key]; exists {
		clone := *conv
		return &clone, nil
	}

	user1, user2 := orderPair(userA, userB)
	now := time.Now()
	conv := &models.Conversation{
		ID:        uuid.New().String(),
		User1:     user1,
		User2:     user2,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.conversations[key] = conv

	clone := *conv
	return &clone, nil
}

func (s *MemoryStorage) ListConversations(ctx context.Context, username string) ([]*models.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var conversations []*models.Conversation
	for _, conv := range s.conversations {
		if conv.User1 != username && conv.User2 != username {
			continue
		}
		clone := *conv
		conversations = append(conversations, &clone)
	}
	sort.Slice(conversations, func(i, j int) bool {
		return conversations[i].UpdatedAt.After(conversations[j].UpdatedAt)
	})
	return conversations, nil
}

func (s *MemoryStorage) SaveDirectMessage(ctx context.Context, msg *models.DirectMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var conv *models.Conversation
	for _, c := range s.conversations {
		if c.ID == msg.ConversationID {
			conv = c
			break
		}
	}
	if conv == nil {
		return ErrNotFound
	}

	msg.ID = uuid.New().String()
	msg.CreatedAt = time.Now()
	conv.UpdatedAt = msg.CreatedAt

	clone := *msg
	s.directs[msg.ConversationID] = append(s.directs[msg.ConversationID], &clone)
	return nil
}

func (s *MemoryStorage) GetDirectMessages(ctx context.Context, conversationID string) ([]*models.DirectMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.directs[conversationID]
	messages := make([]*models.DirectMessage, 0, len(stored))
	for _, msg := range stored {
		clone := *msg
		messages = append(messages, &clone)
	}
	return messages, nil
}

func (s *MemoryStorage) MarkConversationRead(ctx context.Context, conversationID, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, msg := range s.directs[conversationID] {
		if msg.Sender != username {
			msg.IsRead = true
		}
	}
	return nil
}

func (s *MemoryStorage) Close() error {
	// Nothing to close for in-memory storage
	return nil
}

func pairKey(a, b string) string {
	user1, user2 := orderPair(a, b)
	return user1 + "|" + user2
}
