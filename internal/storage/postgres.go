package storage

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/ventspace/vent/internal/models"
)

//go:embed migrations.sql
var migrations embed.FS

type DatabaseConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	UseInMemory bool
}

type PostgresStorage struct {
	db *sql.DB
}

func NewPostgresStorage(config DatabaseConfig) (*PostgresStorage, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.DBName, config.SSLMode)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %v", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error connecting to the database: %v", err)
	}

	storage := &PostgresStorage{db: db}

	// Initialize database schema
	if err := storage.initializeSchema(); err != nil {
		return nil, fmt.Errorf("error initializing database schema: %v", err)
	}

	return storage, nil
}

func (s *PostgresStorage) initializeSchema() error {
	migrationSQL, err := migrations.ReadFile("migrations.sql")
	if err != nil {
		return fmt.Errorf("error reading migrations file: %v", err)
	}

	_, err = s.db.Exec(string(migrationSQL))
	if err != nil {
		return fmt.Errorf("error executing migrations: %v", err)
	}

	return nil
}

func (s *PostgresStorage) UpsertProfile(ctx context.Context, profile *models.Profile) error {
	query := `
		INSERT INTO profiles (username, avatar_url, bio)
		VALUES ($1, $2, $3)
		ON CONFLICT (username) DO UPDATE
		SET avatar_url = EXCLUDED.avatar_url, bio = EXCLUDED.bio, updated_at = now()
		RETURNING created_at, updated_at`

	err := s.db.QueryRowContext(ctx, query, profile.Username, profile.AvatarURL, profile.Bio).
		Scan(&profile.CreatedAt, &profile.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error upserting profile: %v", err)
	}

	return nil
}

func (s *PostgresStorage) GetProfile(ctx context.Context, username string) (*models.Profile, error) {
	query := `
		SELECT username, COALESCE(avatar_url, ''), COALESCE(bio, ''), created_at, updated_at
		FROM profiles
		WHERE username = $1`

	profile := &models.Profile{}
	err := s.db.QueryRowContext(ctx, query, username).Scan(
		&profile.Username,
		&profile.AvatarURL,
		&profile.Bio,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error querying profile: %v", err)
	}

	return profile, nil
}

func (s *PostgresStorage) SaveMessage(ctx context.Context, msg *models.Message) error {
	query := `
		INSERT INTO messages (username, content, message_type, image_url, sticker_name, avatar_url)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''))
		RETURNING id, created_at`

	err := s.db.QueryRowContext(
		ctx,
		query,
		msg.Username,
		msg.Content,
		msg.Type,
		msg.ImageURL,
		msg.StickerName,
		msg.AvatarURL,
	).Scan(&msg.ID, &msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("error saving message: %v", err)
	}

	return nil
}

func (s *PostgresStorage) GetMessages(ctx context.Context) ([]*models.Message, error) {
	query := `
		SELECT id, username, content, message_type,
		       COALESCE(image_url, ''), COALESCE(sticker_name, ''), COALESCE(avatar_url, ''), created_at
		FROM messages
		ORDER BY created_at`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error querying messages: %v", err)
	}
	defer rows.Close()

	var messages []*models.Message
	for rows.Next() {
		msg := &models.Message{}
		err := rows.Scan(
			&msg.ID,
			&msg.Username,
			&msg.Content,
			&msg.Type,
			&msg.ImageURL,
			&msg.StickerName,
			&msg.AvatarURL,
			&msg.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning message: %v", err)
		}
		messages = append(messages, msg)
	}

	return messages, rows.Err()
}

func (s *PostgresStorage) CreateGroup(ctx context.Context, group *models.Group) error {
	query := `
		INSERT INTO groups (name, is_public, password_hash, owner_id, tags)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5)
		RETURNING id, created_at`

	err := s.db.QueryRowContext(
		ctx,
		query,
		group.Name,
		group.IsPublic,
		group.PasswordHash,
		group.OwnerID,
		pq.Array(group.Tags),
	).Scan(&group.ID, &group.CreatedAt)
	if err != nil {
		return fmt.Errorf("error creating group: %v", err)
	}

	return nil
}

func (s *PostgresStorage) GetGroup(ctx context.Context, id string) (*models.Group, error) {
	query := `
		SELECT id, name, is_public, COALESCE(password_hash, ''), COALESCE(owner_id, ''), tags, created_at
		FROM groups
		WHERE id = $1`

	group := &models.Group{}
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&group.ID,
		&group.Name,
		&group.IsPublic,
		&group.PasswordHash,
		&group.OwnerID,
		pq.Array(&group.Tags),
		&group.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error querying group: %v", err)
	}

	return group, nil
}

func (s *PostgresStorage) ListGroups(ctx context.Context) ([]*models.Group, error) {
	query := `
		SELECT id, name, is_public, COALESCE(password_hash, ''), COALESCE(owner_id, ''), tags, created_at
		FROM groups
		ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error querying groups: %v", err)
	}
	defer rows.Close()

	return scanGroups(rows)
}

func (s *PostgresStorage) ListJoinedGroups(ctx context.Context, username string) ([]*models.Group, error) {
	query := `
		SELECT g.id, g.name, g.is_public, COALESCE(g.password_hash, ''), COALESCE(g.owner_id, ''), g.tags, g.created_at
		FROM groups g
		JOIN group_members m ON m.group_id = g.id
		WHERE m.username = $1 AND m.is_active
		ORDER BY g.created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, username)
	if err != nil {
		return nil, fmt.Errorf("error querying joined groups: %v", err)
	}
	defer rows.Close()

	return scanGroups(rows)
}

func scanGroups(rows *sql.Rows) ([]*models.Group, error) {
	var groups []*models.Group
	for rows.Next() {
		group := &models.Group{}
		err := rows.Scan(
			&group.ID,
			&group.Name,
			&group.IsPublic,
			&group.PasswordHash,
			&group.OwnerID,
			pq.Array(&group.Tags),
			&group.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning group: %v", err)
		}
		groups = append(groups, group)
	}

	return groups, rows.Err()
}

func (s *PostgresStorage) JoinGroup(ctx context.Context, groupID, username string) error {
	query := `
		INSERT INTO group_members (group_id, username, is_active)
		VALUES ($1, $2, true)
		ON CONFLICT (group_id, username) DO UPDATE SET is_active = true`

	if _, err := s.db.ExecContext(ctx, query, groupID, username); err != nil {
		return fmt.Errorf("error joining group: %v", err)
	}

	return nil
}

func (s *PostgresStorage) LeaveGroup(ctx context.Context, groupID, username string) error {
	query := `
		UPDATE group_members
		SET is_active = false
		WHERE group_id = $1 AND username = $2`

	if _, err := s.db.ExecContext(ctx, query, groupID, username); err != nil {
		return fmt.Errorf("error leaving group: %v", err)
	}

	return nil
}

func (s *PostgresStorage) ListGroupMembers(ctx context.Context, groupID string) ([]*models.GroupMember, error) {
	query := `
		SELECT id, group_id, username, is_active, joined_at
		FROM group_members
		WHERE group_id = $1 AND is_active
		ORDER BY joined_at`

	rows, err := s.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("error querying group members: %v", err)
	}
	defer rows.Close()

	var members []*models.GroupMember
	for rows.Next() {
		member := &models.GroupMember{}
		err := rows.Scan(&member.ID, &member.GroupID, &member.Username, &member.IsActive, &member.JoinedAt)
		if err != nil {
			return nil, fmt.Errorf("error scanning group member: %v", err)
		}
		members = append(members, member)
	}

	return members, rows.Err()
}

func (s *PostgresStorage) SaveGroupMessage(ctx context.Context, msg *models.GroupMessage) error {
	query := `
		INSERT INTO group_messages (group_id, username, content, message_type, image_url, sticker_name, avatar_url)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''))
		RETURNING id, created_at`

	err := s.db.QueryRowContext(
		ctx,
		query,
		msg.GroupID,
		msg.Username,
		msg.Content,
		msg.Type,
		msg.ImageURL,
		msg.StickerName,
		msg.AvatarURL,
	).Scan(&msg.ID, &msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("error saving group message: %v", err)
	}

	return nil
}

func (s *PostgresStorage) GetGroupMessages(ctx context.Context, groupID string) ([]*models.GroupMessage, error) {
	query := `
		SELECT id, group_id, username, content, message_type,
		       COALESCE(image_url, ''), COALESCE(sticker_name, ''), COALESCE(avatar_url, ''), created_at
		FROM group_messages
		WHERE group_id = $1
		ORDER BY created_at`

	rows, err := s.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("error querying group messages: %v", err)
	}
	defer rows.Close()

	var messages []*models.GroupMessage
	for rows.Next() {
		msg := &models.GroupMessage{}
		err := rows.Scan(
			&msg.ID,
			&msg.GroupID,
			&msg.Username,
			&msg.Content,
			&msg.Type,
			&msg.ImageURL,
			&msg.StickerName,
			&msg.AvatarURL,
			&msg.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning group message: %v", err)
		}
		messages = append(messages, msg)
	}

	return messages, rows.Err()
}

func (s *PostgresStorage) FindConversation(ctx context.Context, userA, userB string) (*models.Conversation, error) {
	user1, user2 := orderPair(userA, userB)
	query := `
		SELECT id, user1_username, user2_username, created_at, updated_at
		FROM direct_conversations
		WHERE user1_username = $1 AND user2_username = $2`

	conv := &models.Conversation{}
	err := s.db.QueryRowContext(ctx, query, user1, user2).Scan(
		&conv.ID,
		&conv.User1,
		&conv.User2,
		&conv.CreatedAt,
		&conv.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error querying conversation: %v", err)
	}

	return conv, nil
}

// CreateConversation is idempotent per unordered pair: a concurrent second
// insert loses against the unique constraint and resolves to the winner's row.
func (s *PostgresStorage) CreateConversation(ctx context.Context, userA, userB string) (*models.Conversation, error) {
	user1, user2 := orderPair(userA, userB)
	query := `
		INSERT INTO direct_conversations (user1_username, user2_username)
		VALUES ($1, $2)
		ON CONFLICT (user1_username, user2_username) DO NOTHING
		RETURNING id, user1_username, user2_username, created_at, updated_at`

	conv := &models.Conversation{}
	err := s.db.QueryRowContext(ctx, query, user1, user2).Scan(
		&conv.ID,
		&conv.User1,
		&conv.User2,
		&conv.CreatedAt,
		&conv.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return s.FindConversation(ctx, user1, user2)
	}
	if err != nil {
		return nil, fmt.Errorf("error creating conversation: %v", err)
	}

	return conv, nil
}

func (s *PostgresStorage) ListConversations(ctx context.Context, username string) ([]*models.Conversation, error) {
	query := `
		SELECT id, user1_username, user2_username, created_at, updated_at
		FROM direct_conversations
		WHERE user1_username = $1 OR user2_username = $1
		ORDER BY updated_at DESC`

	rows, err := s.db.QueryContext(ctx, query, username)
	if err != nil {
		return nil, fmt.Errorf("error querying conversations: %v", err)
	}
	defer rows.Close()

	var conversations []*models.Conversation
	for rows.Next() {
		conv := &models.Conversation{}
		err := rows.Scan(&conv.ID, &conv.User1, &conv.User2, &conv.CreatedAt, &conv.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("error scanning conversation: %v", err)
		}
		conversations = append(conversations, conv)
	}

	return conversations, rows.Err()
}

func (s *PostgresStorage) SaveDirectMessage(ctx context.Context, msg *models.DirectMessage) error {
	query := `
		INSERT INTO direct_messages (conversation_id, sender_username, content, message_type, image_url)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''))
		RETURNING id, created_at`

	err := s.db.QueryRowContext(
		ctx,
		query,
		msg.ConversationID,
		msg.Sender,
		msg.Content,
		msg.Type,
		msg.ImageURL,
	).Scan(&msg.ID, &msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("error saving direct message: %v", err)
	}

	touch := `UPDATE direct_conversations SET updated_at = $1 WHERE id = $2`
	if _, err := s.db.ExecContext(ctx, touch, time.Now(), msg.ConversationID); err != nil {
		return fmt.Errorf("error touching conversation: %v", err)
	}

	return nil
}

func (s *PostgresStorage) GetDirectMessages(ctx context.Context, conversationID string) ([]*models.DirectMessage, error) {
	query := `
		SELECT id, conversation_id, sender_username, content, message_type, COALESCE(image_url, ''), is_read, created_at
		FROM direct_messages
		WHERE conversation_id = $1
		ORDER BY created_at`

	rows, err := s.db.QueryContext(ctx, query, conversationID)
	if err != nil {
		return nil, fmt.Errorf("error querying direct messages: %v", err)
	}
	defer rows.Close()

	var messages []*models.DirectMessage
	for rows.Next() {
		msg := &models.DirectMessage{}
		err := rows.Scan(
			&msg.ID,
			&msg.ConversationID,
			&msg.Sender,
			&msg.Content,
			&msg.Type,
			&msg.ImageURL,
			&msg.IsRead,
			&msg.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning direct message: %v", err)
		}
		messages = append(messages, msg)
	}

	return messages, rows.Err()
}

func (s *PostgresStorage) MarkConversationRead(ctx context.Context, conversationID, username string) error {
	query := `
		UPDATE direct_messages
		SET is_read = true
		WHERE conversation_id = $1 AND sender_username <> $2`

	if _, err := s.db.ExecContext(ctx, query, conversationID, username); err != nil {
		return fmt.Errorf("error marking conversation read: %v", err)
	}

	return nil
}

func (s *PostgresStorage) Close() error {
	return s.db.Close()
}

func orderPair(a, b string) (string, string) {
	if a > b {
		return b, a
	}
	return a, b
}
