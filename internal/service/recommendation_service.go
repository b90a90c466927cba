package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"prephub/internal/domain"
)

// RecommendationService runs the weekly-chapter voting state machine.
// Approval requires a vote from every registered user; a single rejection is
// final and later approvals never reverse it. A repeat vote by the same user
// is a no-op.
type RecommendationService struct {
	recommendations domain.RecommendationRepository
	users           domain.UserRepository
	chapters        domain.ChaptersConfigRepository
}

func NewRecommendationService(
	recommendations domain.RecommendationRepository,
	users domain.UserRepository,
	chapters domain.ChaptersConfigRepository,
) *RecommendationService {
	return &RecommendationService{
		recommendations: recommendations,
		users:           users,
		chapters:        chapters,
	}
}

var validSubjects = map[string]bool{
	"physics":   true,
	"chemistry": true,
	"biology":   true,
}

func (s *RecommendationService) Recommend(ctx context.Context, userID int64, subject, chapterName string) (*domain.ChapterRecommendation, error) {
	subject = strings.ToLower(strings.TrimSpace(subject))
	chapterName = strings.TrimSpace(chapterName)
	if !validSubjects[subject] {
		return nil, fmt.Errorf("%w: subject must be physics, chemistry, or biology", domain.ErrInvalidInput)
	}
	if chapterName == "" {
		return nil, fmt.Errorf("%w: chapter name is required", domain.ErrInvalidInput)
	}

	rec := &domain.ChapterRecommendation{
		UserID:      userID,
		Subject:     subject,
		ChapterName: chapterName,
	}
	if err := s.recommendations.Create(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *RecommendationService) ListPending(ctx context.Context) ([]*domain.ChapterRecommendation, error) {
	return s.recommendations.ListPending(ctx)
}

// Vote records the caller's decision and settles the recommendation when the
// tally warrants it. Voting on an already-settled recommendation returns it
// unchanged.
func (s *RecommendationService) Vote(ctx context.Context, userID, recommendationID int64, approve bool) (*domain.ChapterRecommendation, error) {
	rec, err := s.recommendations.GetByID(ctx, recommendationID)
	if err != nil {
		return nil, err
	}
	if rec.Status != domain.RecommendationPending {
		return rec, nil
	}

	if err := s.recommendations.AddVote(ctx, recommendationID, userID, approve); err != nil {
		return nil, fmt.Errorf("add vote: %w", err)
	}
	rec, err = s.recommendations.GetByID(ctx, recommendationID)
	if err != nil {
		return nil, err
	}

	if len(rec.Rejections) > 0 {
		if err := s.recommendations.SetStatus(ctx, recommendationID, domain.RecommendationRejected); err != nil {
			return nil, err
		}
		rec.Status = domain.RecommendationRejected
		return rec, nil
	}

	total, err := s.users.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	if len(rec.Approvals) >= total {
		if err := s.recommendations.SetStatus(ctx, recommendationID, domain.RecommendationApproved); err != nil {
			return nil, err
		}
		rec.Status = domain.RecommendationApproved
		if err := s.addToConfig(ctx, rec); err != nil {
			return nil, err
		}
	}
	return rec, nil
}

// addToConfig appends an approved chapter to its subject's weekly list,
// skipping duplicates.
func (s *RecommendationService) addToConfig(ctx context.Context, rec *domain.ChapterRecommendation) error {
	cfg, err := s.chapters.Get(ctx)
	if errors.Is(err, domain.ErrNotFound) {
		cfg = &domain.ChaptersConfig{
			Physics:   []string{},
			Chemistry: []string{},
			Biology:   []string{},
		}
	} else if err != nil {
		return fmt.Errorf("get chapters config: %w", err)
	}

	var list *[]string
	switch rec.Subject {
	case "physics":
		list = &cfg.Physics
	case "chemistry":
		list = &cfg.Chemistry
	case "biology":
		list = &cfg.Biology
	default:
		return nil
	}
	for _, name := range *list {
		if name == rec.ChapterName {
			return nil
		}
	}
	*list = append(*list, rec.ChapterName)
	return s.chapters.Upsert(ctx, cfg)
}
