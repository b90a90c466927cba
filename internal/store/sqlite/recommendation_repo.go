package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"prephub/internal/domain"
)

type RecommendationRepo struct {
	db *sql.DB
}

func NewRecommendationRepo(db *sql.DB) *RecommendationRepo {
	return &RecommendationRepo{db: db}
}

var _ domain.RecommendationRepository = (*RecommendationRepo)(nil)

func (r *RecommendationRepo) Create(ctx context.Context, rec *domain.ChapterRecommendation) error {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO chapter_recommendations (user_id, subject, chapter_name, status, created_at, updated_at)
		VALUES (?, ?, ?, 'pending', ?, ?)
	`, rec.UserID, rec.Subject, rec.ChapterName, now, now)
	if err != nil {
		return fmt.Errorf("insert recommendation: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	rec.ID = id
	rec.Status = domain.RecommendationPending
	rec.CreatedAt = now
	rec.UpdatedAt = now
	return nil
}

func (r *RecommendationRepo) GetByID(ctx context.Context, id int64) (*domain.ChapterRecommendation, error) {
	rec := &domain.ChapterRecommendation{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, subject, chapter_name, status, created_at, updated_at
		FROM chapter_recommendations WHERE id = ?
	`, id).Scan(&rec.ID, &rec.UserID, &rec.Subject, &rec.ChapterName, &rec.Status, &rec.CreatedAt, &rec.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get recommendation: %w", err)
	}
	if err := r.loadVotes(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *RecommendationRepo) ListPending(ctx context.Context) ([]*domain.ChapterRecommendation, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, subject, chapter_name, status, created_at, updated_at
		FROM chapter_recommendations
		WHERE status = 'pending'
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list pending recommendations: %w", err)
	}
	defer rows.Close()

	var res []*domain.ChapterRecommendation
	for rows.Next() {
		rec := &domain.ChapterRecommendation{}
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Subject, &rec.ChapterName, &rec.Status, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan recommendation: %w", err)
		}
		res = append(res, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, rec := range res {
		if err := r.loadVotes(ctx, rec); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// AddVote inserts a vote row; the composite primary key makes a repeated
// vote by the same user a no-op instead of double-counting.
func (r *RecommendationRepo) AddVote(ctx context.Context, recommendationID, userID int64, approve bool) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO recommendation_votes (recommendation_id, user_id, approve, created_at)
		VALUES (?, ?, ?, ?)
	`, recommendationID, userID, approve, time.Now().UTC())
	return err
}

func (r *RecommendationRepo) SetStatus(ctx context.Context, recommendationID int64, status domain.RecommendationStatus) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE chapter_recommendations SET status = ?, updated_at = ? WHERE id = ?
	`, status, time.Now().UTC(), recommendationID)
	if err != nil {
		return fmt.Errorf("set recommendation status: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *RecommendationRepo) loadVotes(ctx context.Context, rec *domain.ChapterRecommendation) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT user_id, approve FROM recommendation_votes WHERE recommendation_id = ?
	`, rec.ID)
	if err != nil {
		return fmt.Errorf("load votes: %w", err)
	}
	defer rows.Close()

	rec.Approvals = rec.Approvals[:0]
	rec.Rejections = rec.Rejections[:0]
	for rows.Next() {
		var userID int64
		var approve bool
		if err := rows.Scan(&userID, &approve); err != nil {
			return fmt.Errorf("scan vote: %w", err)
		}
		if approve {
			rec.Approvals = append(rec.Approvals, userID)
		} else {
			rec.Rejections = append(rec.Rejections, userID)
		}
	}
	return rows.Err()
}
