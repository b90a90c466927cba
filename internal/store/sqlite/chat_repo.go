package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"prephub/internal/domain"
)

type ChatMessageRepo struct {
	db *sql.DB
}

func NewChatMessageRepo(db *sql.DB) *ChatMessageRepo {
	return &ChatMessageRepo{db: db}
}

var _ domain.ChatMessageRepository = (*ChatMessageRepo)(nil)

func (r *ChatMessageRepo) Create(ctx context.Context, m *domain.ChatMessage) error {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO chat_messages (user_id, message, is_deleted, created_at)
		VALUES (?, ?, 0, ?)
	`, m.UserID, m.Message, now)
	if err != nil {
		return fmt.Errorf("insert chat message: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	m.ID = id
	m.CreatedAt = now
	return nil
}

func (r *ChatMessageRepo) GetByID(ctx context.Context, id int64) (*domain.ChatMessage, error) {
	m := &domain.ChatMessage{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, message, is_deleted, edited_at, created_at
		FROM chat_messages WHERE id = ?
	`, id).Scan(&m.ID, &m.UserID, &m.Message, &m.IsDeleted, &m.EditedAt, &m.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get chat message: %w", err)
	}
	return m, nil
}

// List returns the latest non-deleted messages, newest first. The global
// channel hides soft-deleted rows entirely.
func (r *ChatMessageRepo) List(ctx context.Context, limit int) ([]*domain.ChatMessage, error) {
	return r.list(ctx, `
		SELECT id, user_id, message, is_deleted, edited_at, created_at
		FROM chat_messages
		WHERE is_deleted = 0
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
}

// ListAll includes soft-deleted rows, for the moderator console.
func (r *ChatMessageRepo) ListAll(ctx context.Context, limit int) ([]*domain.ChatMessage, error) {
	return r.list(ctx, `
		SELECT id, user_id, message, is_deleted, edited_at, created_at
		FROM chat_messages
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
}

func (r *ChatMessageRepo) UpdateText(ctx context.Context, id int64, text string, editedAt time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE chat_messages SET message = ?, edited_at = ? WHERE id = ?
	`, text, editedAt, id)
	if err != nil {
		return fmt.Errorf("update chat message: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ChatMessageRepo) SoftDelete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE chat_messages SET is_deleted = 1 WHERE id = ?
	`, id)
	if err != nil {
		return fmt.Errorf("soft delete chat message: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ChatMessageRepo) AddReaction(ctx context.Context, messageID, userID int64, reaction string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO chat_reactions (message_id, user_id, reaction, created_at)
		VALUES (?, ?, ?, ?)
	`, messageID, userID, reaction, time.Now().UTC())
	return err
}

func (r *ChatMessageRepo) RemoveReaction(ctx context.Context, messageID, userID int64, reaction string) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM chat_reactions
		WHERE message_id = ? AND user_id = ? AND reaction = ?
	`, messageID, userID, reaction)
	return err
}

func (r *ChatMessageRepo) ListReactions(ctx context.Context, messageIDs []int64) (map[int64][]*domain.Reaction, error) {
	return listReactions(ctx, r.db, "chat_reactions", messageIDs)
}

func (r *ChatMessageRepo) list(ctx context.Context, query string, limit int) ([]*domain.ChatMessage, error) {
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list chat messages: %w", err)
	}
	defer rows.Close()

	var res []*domain.ChatMessage
	for rows.Next() {
		m := &domain.ChatMessage{}
		if err := rows.Scan(&m.ID, &m.UserID, &m.Message, &m.IsDeleted, &m.EditedAt, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan chat message: %w", err)
		}
		res = append(res, m)
	}
	return res, rows.Err()
}

// listReactions loads reactions for a set of message ids from the given
// reaction table, grouped by message id.
func listReactions(ctx context.Context, db *sql.DB, table string, messageIDs []int64) (map[int64][]*domain.Reaction, error) {
	res := make(map[int64][]*domain.Reaction, len(messageIDs))
	if len(messageIDs) == 0 {
		return res, nil
	}

	placeholders := strings.TrimRight(strings.Repeat("?,", len(messageIDs)), ",")
	args := make([]any, len(messageIDs))
	for i, id := range messageIDs {
		args[i] = id
	}

	rows, err := db.QueryContext(ctx, fmt.Sprintf(`
		SELECT id, message_id, user_id, reaction, created_at
		FROM %s
		WHERE message_id IN (%s)
		ORDER BY created_at ASC, id ASC
	`, table, placeholders), args...)
	if err != nil {
		return nil, fmt.Errorf("list reactions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		re := &domain.Reaction{}
		if err := rows.Scan(&re.ID, &re.MessageID, &re.UserID, &re.Reaction, &re.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan reaction: %w", err)
		}
		res[re.MessageID] = append(res[re.MessageID], re)
	}
	return res, rows.Err()
}
