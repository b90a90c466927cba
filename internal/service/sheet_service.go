package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"prephub/internal/domain"
)

// SheetService manages practice-sheet submissions, the activity feed, and the
// weekly chapters config the sheets are graded against.
type SheetService struct {
	sheets   domain.SheetRepository
	chapters domain.ChaptersConfigRepository
}

func NewSheetService(sheets domain.SheetRepository, chapters domain.ChaptersConfigRepository) *SheetService {
	return &SheetService{
		sheets:   sheets,
		chapters: chapters,
	}
}

type SheetCreateInput struct {
	Name      string
	Physics   domain.SubjectData
	Chemistry domain.SubjectData
	Biology   domain.SubjectData
}

func (s *SheetService) Submit(ctx context.Context, userID int64, in SheetCreateInput) (*domain.OmrSheet, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, fmt.Errorf("%w: sheet name is required", domain.ErrInvalidInput)
	}

	sheet := &domain.OmrSheet{
		UserID:    userID,
		Name:      in.Name,
		Physics:   in.Physics,
		Chemistry: in.Chemistry,
		Biology:   in.Biology,
	}
	if err := s.sheets.Create(ctx, sheet); err != nil {
		return nil, err
	}
	return sheet, nil
}

func (s *SheetService) ListByUser(ctx context.Context, userID int64) ([]*domain.OmrSheet, error) {
	return s.sheets.ListByUser(ctx, userID)
}

// Activity returns recent submissions across all users, newest first.
func (s *SheetService) Activity(ctx context.Context, limit int) ([]*domain.SheetWithUser, error) {
	return s.sheets.ListAll(ctx, limit)
}

// ChaptersConfig returns the weekly chapter lists, seeding an empty config on
// first access so clients never see a 404 for it.
func (s *SheetService) ChaptersConfig(ctx context.Context) (*domain.ChaptersConfig, error) {
	cfg, err := s.chapters.Get(ctx)
	if errors.Is(err, domain.ErrNotFound) {
		cfg = &domain.ChaptersConfig{
			Physics:   []string{},
			Chemistry: []string{},
			Biology:   []string{},
		}
		if err := s.chapters.Upsert(ctx, cfg); err != nil {
			return nil, fmt.Errorf("seed chapters config: %w", err)
		}
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// UpdateChaptersConfig replaces the weekly lists. Reserved for the moderator
// console.
func (s *SheetService) UpdateChaptersConfig(ctx context.Context, physics, chemistry, biology []string) (*domain.ChaptersConfig, error) {
	cfg := &domain.ChaptersConfig{
		Physics:   nonNil(physics),
		Chemistry: nonNil(chemistry),
		Biology:   nonNil(biology),
	}
	if err := s.chapters.Upsert(ctx, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
