package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"prephub/internal/domain"
)

type SheetRepo struct {
	db *sql.DB
}

func NewSheetRepo(db *sql.DB) *SheetRepo {
	return &SheetRepo{db: db}
}

var _ domain.SheetRepository = (*SheetRepo)(nil)

func (r *SheetRepo) Create(ctx context.Context, s *domain.OmrSheet) error {
	physics, chemistry, biology, err := marshalSubjects(s)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO omr_sheets (user_id, name, physics, chemistry, biology, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, s.UserID, s.Name, physics, chemistry, biology, now)
	if err != nil {
		return fmt.Errorf("insert sheet: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	s.ID = id
	s.CreatedAt = now
	return nil
}

func (r *SheetRepo) ListByUser(ctx context.Context, userID int64) ([]*domain.OmrSheet, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, name, physics, chemistry, biology, created_at
		FROM omr_sheets
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list sheets: %w", err)
	}
	defer rows.Close()

	var res []*domain.OmrSheet
	for rows.Next() {
		s, err := scanSheet(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, s)
	}
	return res, rows.Err()
}

// ListAll joins sheets with their owners for the activity feed, newest first.
func (r *SheetRepo) ListAll(ctx context.Context, limit int) ([]*domain.SheetWithUser, error) {
	query := `
		SELECT s.id, s.user_id, s.name, s.physics, s.chemistry, s.biology, s.created_at,
		       u.id, u.username, u.email, u.first_name, u.last_name, u.created_at, u.updated_at
		FROM omr_sheets s
		JOIN users u ON u.id = s.user_id
		ORDER BY s.created_at DESC, s.id DESC
	`
	var rows *sql.Rows
	var err error
	if limit > 0 {
		rows, err = r.db.QueryContext(ctx, query+` LIMIT ?`, limit)
	} else {
		rows, err = r.db.QueryContext(ctx, query)
	}
	if err != nil {
		return nil, fmt.Errorf("list all sheets: %w", err)
	}
	defer rows.Close()

	var res []*domain.SheetWithUser
	for rows.Next() {
		sw := &domain.SheetWithUser{User: &domain.User{}}
		var physics, chemistry, biology []byte
		if err := rows.Scan(
			&sw.ID, &sw.UserID, &sw.Name, &physics, &chemistry, &biology, &sw.CreatedAt,
			&sw.User.ID, &sw.User.Username, &sw.User.Email, &sw.User.FirstName,
			&sw.User.LastName, &sw.User.CreatedAt, &sw.User.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan sheet row: %w", err)
		}
		if err := unmarshalSubjects(physics, chemistry, biology, &sw.OmrSheet); err != nil {
			return nil, err
		}
		res = append(res, sw)
	}
	return res, rows.Err()
}

func (r *SheetRepo) CountByUser(ctx context.Context) (map[int64]int, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT user_id, COUNT(*) FROM omr_sheets GROUP BY user_id
	`)
	if err != nil {
		return nil, fmt.Errorf("count sheets: %w", err)
	}
	defer rows.Close()

	res := make(map[int64]int)
	for rows.Next() {
		var userID int64
		var count int
		if err := rows.Scan(&userID, &count); err != nil {
			return nil, fmt.Errorf("scan sheet count: %w", err)
		}
		res[userID] = count
	}
	return res, rows.Err()
}

func scanSheet(rows *sql.Rows) (*domain.OmrSheet, error) {
	s := &domain.OmrSheet{}
	var physics, chemistry, biology []byte
	if err := rows.Scan(&s.ID, &s.UserID, &s.Name, &physics, &chemistry, &biology, &s.CreatedAt); err != nil {
		return nil, fmt.Errorf("scan sheet: %w", err)
	}
	if err := unmarshalSubjects(physics, chemistry, biology, s); err != nil {
		return nil, err
	}
	return s, nil
}

func marshalSubjects(s *domain.OmrSheet) ([]byte, []byte, []byte, error) {
	physics, err := json.Marshal(s.Physics)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("marshal physics: %w", err)
	}
	chemistry, err := json.Marshal(s.Chemistry)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("marshal chemistry: %w", err)
	}
	biology, err := json.Marshal(s.Biology)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("marshal biology: %w", err)
	}
	return physics, chemistry, biology, nil
}

func unmarshalSubjects(physics, chemistry, biology []byte, s *domain.OmrSheet) error {
	if err := json.Unmarshal(physics, &s.Physics); err != nil {
		return fmt.Errorf("unmarshal physics: %w", err)
	}
	if err := json.Unmarshal(chemistry, &s.Chemistry); err != nil {
		return fmt.Errorf("unmarshal chemistry: %w", err)
	}
	if err := json.Unmarshal(biology, &s.Biology); err != nil {
		return fmt.Errorf("unmarshal biology: %w", err)
	}
	return nil
}
