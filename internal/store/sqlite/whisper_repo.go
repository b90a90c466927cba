package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"prephub/internal/domain"
)

type WhisperRepo struct {
	db *sql.DB
}

func NewWhisperRepo(db *sql.DB) *WhisperRepo {
	return &WhisperRepo{db: db}
}

var _ domain.WhisperRepository = (*WhisperRepo)(nil)

// Create appends the message and bumps the conversation's last_message_at in
// a single transaction so a reader never sees one without the other.
func (r *WhisperRepo) Create(ctx context.Context, m *domain.WhisperMessage) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	res, err := tx.ExecContext(ctx, `
		INSERT INTO whisper_messages (conversation_id, sender_id, message, is_deleted, created_at)
		VALUES (?, ?, ?, 0, ?)
	`, m.ConversationID, m.SenderID, m.Message, now)
	if err != nil {
		return fmt.Errorf("insert whisper: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	m.ID = id
	m.CreatedAt = now

	if _, err := tx.ExecContext(ctx, `
		UPDATE conversations SET last_message_at = ? WHERE id = ?
	`, now, m.ConversationID); err != nil {
		return fmt.Errorf("bump conversation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *WhisperRepo) GetByID(ctx context.Context, id int64) (*domain.WhisperMessage, error) {
	m := &domain.WhisperMessage{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, conversation_id, sender_id, message, is_deleted, edited_at, created_at
		FROM whisper_messages WHERE id = ?
	`, id).Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Message, &m.IsDeleted, &m.EditedAt, &m.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get whisper: %w", err)
	}
	return m, nil
}

// ListForConversation keeps soft-deleted rows in the result; unlike the
// global channel, conversation views render tombstones for them.
func (r *WhisperRepo) ListForConversation(ctx context.Context, conversationID int64, limit int) ([]*domain.WhisperMessage, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, conversation_id, sender_id, message, is_deleted, edited_at, created_at
		FROM whisper_messages
		WHERE conversation_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, conversationID, limit)
	if err != nil {
		return nil, fmt.Errorf("list whispers: %w", err)
	}
	defer rows.Close()

	var res []*domain.WhisperMessage
	for rows.Next() {
		m := &domain.WhisperMessage{}
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Message, &m.IsDeleted, &m.EditedAt, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan whisper: %w", err)
		}
		res = append(res, m)
	}
	return res, rows.Err()
}

func (r *WhisperRepo) LatestVisible(ctx context.Context, conversationID int64) (*domain.WhisperMessage, error) {
	m := &domain.WhisperMessage{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, conversation_id, sender_id, message, is_deleted, edited_at, created_at
		FROM whisper_messages
		WHERE conversation_id = ? AND is_deleted = 0
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`, conversationID).Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Message, &m.IsDeleted, &m.EditedAt, &m.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("latest whisper: %w", err)
	}
	return m, nil
}

func (r *WhisperRepo) UpdateText(ctx context.Context, id int64, text string, editedAt time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE whisper_messages SET message = ?, edited_at = ? WHERE id = ?
	`, text, editedAt, id)
	if err != nil {
		return fmt.Errorf("update whisper: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *WhisperRepo) SoftDelete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE whisper_messages SET is_deleted = 1 WHERE id = ?
	`, id)
	if err != nil {
		return fmt.Errorf("soft delete whisper: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *WhisperRepo) AddReaction(ctx context.Context, messageID, userID int64, reaction string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO whisper_reactions (message_id, user_id, reaction, created_at)
		VALUES (?, ?, ?, ?)
	`, messageID, userID, reaction, time.Now().UTC())
	return err
}

func (r *WhisperRepo) RemoveReaction(ctx context.Context, messageID, userID int64, reaction string) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM whisper_reactions
		WHERE message_id = ? AND user_id = ? AND reaction = ?
	`, messageID, userID, reaction)
	return err
}

func (r *WhisperRepo) ListReactions(ctx context.Context, messageIDs []int64) (map[int64][]*domain.Reaction, error) {
	return listReactions(ctx, r.db, "whisper_reactions", messageIDs)
}
