package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"prephub/internal/domain"
)

type PresenceRepo struct {
	db *sql.DB
}

func NewPresenceRepo(db *sql.DB) *PresenceRepo {
	return &PresenceRepo{db: db}
}

var _ domain.PresenceRepository = (*PresenceRepo)(nil)

// Upsert overwrites the online flag and refreshes last_seen unconditionally.
func (r *PresenceRepo) Upsert(ctx context.Context, userID int64, isOnline bool) (*domain.PresenceRecord, error) {
	p := &domain.PresenceRecord{}
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO user_presence (user_id, is_online, last_seen)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id) DO UPDATE SET is_online = EXCLUDED.is_online, last_seen = NOW()
		RETURNING user_id, is_online, last_seen
	`, userID, isOnline).Scan(&p.UserID, &p.IsOnline, &p.LastSeen)
	if err != nil {
		return nil, fmt.Errorf("upsert presence: %w", err)
	}
	return p, nil
}

func (r *PresenceRepo) Get(ctx context.Context, userID int64) (*domain.PresenceRecord, error) {
	p := &domain.PresenceRecord{}
	err := r.db.QueryRowContext(ctx, `
		SELECT user_id, is_online, last_seen FROM user_presence WHERE user_id = $1
	`, userID).Scan(&p.UserID, &p.IsOnline, &p.LastSeen)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get presence: %w", err)
	}
	return p, nil
}

// ListOnline returns records with the raw flag set; callers apply the
// staleness filter.
func (r *PresenceRepo) ListOnline(ctx context.Context) ([]*domain.PresenceRecord, error) {
	return r.list(ctx, `
		SELECT user_id, is_online, last_seen FROM user_presence WHERE is_online = TRUE
	`)
}

func (r *PresenceRepo) ListAll(ctx context.Context) ([]*domain.PresenceRecord, error) {
	return r.list(ctx, `SELECT user_id, is_online, last_seen FROM user_presence`)
}

func (r *PresenceRepo) list(ctx context.Context, query string) ([]*domain.PresenceRecord, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list presence: %w", err)
	}
	defer rows.Close()

	var res []*domain.PresenceRecord
	for rows.Next() {
		p := &domain.PresenceRecord{}
		if err := rows.Scan(&p.UserID, &p.IsOnline, &p.LastSeen); err != nil {
			return nil, fmt.Errorf("scan presence: %w", err)
		}
		res = append(res, p)
	}
	return res, rows.Err()
}
