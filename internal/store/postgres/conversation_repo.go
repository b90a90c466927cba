package postgres

import (
	"context"
	"database/sql"
	"fmt"

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

	key := domain.ParticipantKey(c.ParticipantIDs)
	if err := tx.QueryRowContext(ctx, `
		INSERT INTO conversations (participant_key, is_group, group_name, creator_id, last_message_at, created_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING id, last_message_at, created_at
	`, key, c.IsGroup, c.GroupName, c.CreatorID).Scan(&c.ID, &c.LastMessageAt, &c.CreatedAt); err != nil {
		return fmt.Errorf("insert conversation: %w", err)
	}

	for _, uid := range c.ParticipantIDs {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO conversation_participants (user_id, conversation_id, joined_at)
			VALUES ($1, $2, NOW())
			ON CONFLICT DO NOTHING
		`, uid, c.ID); err != nil {
			return fmt.Errorf("insert participant %d: %w", uid, err)
		}
	}

	return tx.Commit()
}

func (r *ConversationRepo) GetByID(ctx context.Context, id int64) (*domain.Conversation, error) {
	return r.scanConversation(r.db.QueryRowContext(ctx, `
		SELECT id, participant_key, is_group, group_name, creator_id, last_message_at, created_at
		FROM conversations WHERE id = $1
	`, id))
}

// FindDirectByKey resolves the unique non-group conversation for a canonical
// participant set. Exact key equality means exact set equality.
func (r *ConversationRepo) FindDirectByKey(ctx context.Context, key string) (*domain.Conversation, error) {
	return r.scanConversation(r.db.QueryRowContext(ctx, `
		SELECT id, participant_key, is_group, group_name, creator_id, last_message_at, created_at
		FROM conversations
		WHERE is_group = FALSE AND participant_key = $1
	`, key))
}

func (r *ConversationRepo) ListForUser(ctx context.Context, userID int64) ([]*domain.Conversation, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.id, c.participant_key, c.is_group, c.group_name, c.creator_id, c.last_message_at, c.created_at
		FROM conversations c
		JOIN conversation_participants cp ON cp.conversation_id = c.id
		WHERE cp.user_id = $1
		ORDER BY c.last_message_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	var res []*domain.Conversation
	for rows.Next() {
		c, err := r.scanConversationRow(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, c)
	}
	return res, rows.Err()
}

func (r *ConversationRepo) IsParticipant(ctx context.Context, conversationID, userID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM conversation_participants
			WHERE conversation_id = $1 AND user_id = $2
		)
	`, conversationID, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check participant: %w", err)
	}
	return exists, nil
}

// ── helpers ──────────────────────────────────────────────────────────────────

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *ConversationRepo) scanConversation(row rowScanner) (*domain.Conversation, error) {
	c, err := r.scanConversationRow(row)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *ConversationRepo) scanConversationRow(row rowScanner) (*domain.Conversation, error) {
	c := &domain.Conversation{}
	var key string
	if err := row.Scan(&c.ID, &key, &c.IsGroup, &c.GroupName, &c.CreatorID, &c.LastMessageAt, &c.CreatedAt); err != nil {
		return nil, err
	}
	c.ParticipantIDs = domain.ParseParticipantKey(key)
	return c, nil
}
