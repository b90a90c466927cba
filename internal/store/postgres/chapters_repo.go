package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"prephub/internal/domain"
)

type ChaptersConfigRepo struct {
	db *sql.DB
}

func NewChaptersConfigRepo(db *sql.DB) *ChaptersConfigRepo {
	return &ChaptersConfigRepo{db: db}
}

var _ domain.ChaptersConfigRepository = (*ChaptersConfigRepo)(nil)

func (r *ChaptersConfigRepo) Get(ctx context.Context) (*domain.ChaptersConfig, error) {
	cfg := &domain.ChaptersConfig{}
	var physics, chemistry, biology []byte
	err := r.db.QueryRowContext(ctx, `
		SELECT id, physics, chemistry, biology, updated_at
		FROM chapters_config LIMIT 1
	`).Scan(&cfg.ID, &physics, &chemistry, &biology, &cfg.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get chapters config: %w", err)
	}
	if err := unmarshalChapters(physics, chemistry, biology, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (r *ChaptersConfigRepo) Upsert(ctx context.Context, cfg *domain.ChaptersConfig) error {
	physics, chemistry, biology, err := marshalChapters(cfg)
	if err != nil {
		return err
	}

	existing, err := r.Get(ctx)
	if err == nil {
		cfg.ID = existing.ID
		return r.db.QueryRowContext(ctx, `
			UPDATE chapters_config SET physics=$1, chemistry=$2, biology=$3, updated_at=NOW()
			WHERE id=$4
			RETURNING updated_at
		`, physics, chemistry, biology, cfg.ID).Scan(&cfg.UpdatedAt)
	}
	if err != domain.ErrNotFound {
		return err
	}

	return r.db.QueryRowContext(ctx, `
		INSERT INTO chapters_config (physics, chemistry, biology, updated_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, updated_at
	`, physics, chemistry, biology).Scan(&cfg.ID, &cfg.UpdatedAt)
}

func marshalChapters(cfg *domain.ChaptersConfig) ([]byte, []byte, []byte, error) {
	physics, err := json.Marshal(cfg.Physics)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("marshal physics: %w", err)
	}
	chemistry, err := json.Marshal(cfg.Chemistry)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("marshal chemistry: %w", err)
	}
	biology, err := json.Marshal(cfg.Biology)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("marshal biology: %w", err)
	}
	return physics, chemistry, biology, nil
}

func unmarshalChapters(physics, chemistry, biology []byte, cfg *domain.ChaptersConfig) error {
	if err := json.Unmarshal(physics, &cfg.Physics); err != nil {
		return fmt.Errorf("unmarshal physics: %w", err)
	}
	if err := json.Unmarshal(chemistry, &cfg.Chemistry); err != nil {
		return fmt.Errorf("unmarshal chemistry: %w", err)
	}
	if err := json.Unmarshal(biology, &cfg.Biology); err != nil {
		return fmt.Errorf("unmarshal biology: %w", err)
	}
	return nil
}
