package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"prephub/internal/domain"
)

type ConversationRepo struct {
	db *sql.DB
}

func NewConversationRepo(db *sql.DB) *ConversationRepo {
	return &ConversationRepo{db: db}
}

var _ domain.ConversationRepository = (*ConversationRepo)(nil)

func (r *ConversationRepo) Create(ctx context.Context, c *domain.Conversation) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	key := domain.ParticipantKey(c.ParticipantIDs)
	res, err := tx.ExecContext(ctx, `
		INSERT INTO conversations (participant_key, is_group, group_name, creator_id, last_message_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, key, c.IsGroup, c.GroupName, c.CreatorID, now, now)
	if err != nil {
		return fmt.Errorf("insert conversation: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	c.ID = id
	c.LastMessageAt = now
	c.CreatedAt = now

	for _, uid := range c.ParticipantIDs {
		if _, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO conversation_participants (user_id, conversation_id, joined_at)
			VALUES (?, ?, ?)
		`, uid, id, now); err != nil {
			return fmt.Errorf("insert participant: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *ConversationRepo) GetByID(ctx context.Context, id int64) (*domain.Conversation, error) {
	return r.scanConversation(r.db.QueryRowContext(ctx, `
		SELECT id, participant_key, is_group, group_name, creator_id, last_message_at, created_at
		FROM conversations WHERE id = ?
	`, id))
}

// FindDirectByKey resolves the unique non-group conversation for a canonical
// participant set. Exact key equality means exact set equality.
func (r *ConversationRepo) FindDirectByKey(ctx context.Context, key string) (*domain.Conversation, error) {
	return r.scanConversation(r.db.QueryRowContext(ctx, `
		SELECT id, participant_key, is_group, group_name, creator_id, last_message_at, created_at
		FROM conversations
		WHERE is_group = 0 AND participant_key = ?
	`, key))
}

func (r *ConversationRepo) ListForUser(ctx context.Context, userID int64) ([]*domain.Conversation, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.id, c.participant_key, c.is_group, c.group_name, c.creator_id, c.last_message_at, c.created_at
		FROM conversations c
		JOIN conversation_participants cp ON cp.conversation_id = c.id
		WHERE cp.user_id = ?
		ORDER BY c.last_message_at DESC, c.id DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	var res []*domain.Conversation
	for rows.Next() {
		c, err := scanConversationRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		res = append(res, c)
	}
	return res, rows.Err()
}

func (r *ConversationRepo) IsParticipant(ctx context.Context, conversationID, userID int64) (bool, error) {
	var exists int
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM conversation_participants
			WHERE conversation_id = ? AND user_id = ?
		)
	`, conversationID, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check participant: %w", err)
	}
	return exists == 1, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *ConversationRepo) scanConversation(row rowScanner) (*domain.Conversation, error) {
	c, err := scanConversationRow(row)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan conversation: %w", err)
	}
	return c, nil
}

func scanConversationRow(row rowScanner) (*domain.Conversation, error) {
	c := &domain.Conversation{}
	var key string
	if err := row.Scan(&c.ID, &key, &c.IsGroup, &c.GroupName, &c.CreatorID, &c.LastMessageAt, &c.CreatedAt); err != nil {
		return nil, err
	}
	c.ParticipantIDs = domain.ParseParticipantKey(key)
	return c, nil
}
