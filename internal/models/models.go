package models

import "time"

type MessageType string

const (
	TextMessage    MessageType = "text"
	ImageMessage   MessageType = "image"
	StickerMessage MessageType = "sticker"
)

// Profile is the public face of a self-asserted display name. There is no
// account behind it; the username is the identity.
type Profile struct {
	Username  string    `json:"username"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	Bio       string    `json:"bio,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Message is a post in the shared global room, the surface everyone lands
// on without joining anything.
type Message struct {
	ID          string      `json:"id"`
	Username    string      `json:"username"`
	Content     string      `json:"content"`
	Type        MessageType `json:"message_type"`
	ImageURL    string      `json:"image_url,omitempty"`
	StickerName string      `json:"sticker_name,omitempty"`
	AvatarURL   string      `json:"avatar_url,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}

type Group struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	IsPublic     bool      `json:"is_public"`
	PasswordHash string    `json:"-"`
	OwnerID      string    `json:"owner_id,omitempty"`
	Tags         []string  `json:"tags,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type GroupMember struct {
	ID       string    `json:"id"`
	GroupID  string    `json:"group_id"`
	Username string    `json:"username"`
	IsActive bool      `json:"is_active"`
	JoinedAt time.Time `json:"joined_at"`
}

type GroupMessage struct {
	ID          string      `json:"id"`
	GroupID     string      `json:"group_id"`
	Username    string      `json:"username"`
	Content     string      `json:"content"`
	Type        MessageType `json:"message_type"`
	ImageURL    string      `json:"image_url,omitempty"`
	StickerName string      `json:"sticker_name,omitempty"`
	AvatarURL   string      `json:"avatar_url,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}

// Conversation is a 1:1 direct-message thread. User1 and User2 are stored in
// canonical (sorted) order so each unordered pair maps to exactly one row.
type Conversation struct {
	ID        string    `json:"id"`
	User1     string    `json:"user1_username"`
	User2     string    `json:"user2_username"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Other returns the counterpart username for the given participant.
func (c *Conversation) Other(username string) string {
	if c.User1 == username {
		return c.User2
	}
	return c.User1
}

type DirectMessage struct {
	ID             string      `json:"id"`
	ConversationID string      `json:"conversation_id"`
	Sender         string      `json:"sender_username"`
	Content        string      `json:"content"`
	Type           MessageType `json:"message_type"`
	ImageURL       string      `json:"image_url,omitempty"`
	IsRead         bool        `json:"is_read"`
	CreatedAt      time.Time   `json:"created_at"`
}
