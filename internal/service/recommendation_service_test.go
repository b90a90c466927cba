package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"prephub/internal/domain"
	"prephub/internal/service"
)

func TestRecommend(t *testing.T) {
	ctx := context.Background()

	t.Run("UnknownSubjectRejected", func(t *testing.T) {
		svc := service.NewRecommendationService(new(MockRecommendationRepo), new(MockUserRepo), new(MockChaptersRepo))

		_, err := svc.Recommend(ctx, 1, "maths", "Algebra")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("BlankChapterRejected", func(t *testing.T) {
		svc := service.NewRecommendationService(new(MockRecommendationRepo), new(MockUserRepo), new(MockChaptersRepo))

		_, err := svc.Recommend(ctx, 1, "physics", "  ")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("NormalizesSubject", func(t *testing.T) {
		recs := new(MockRecommendationRepo)
		svc := service.NewRecommendationService(recs, new(MockUserRepo), new(MockChaptersRepo))

		recs.On("Create", mock.Anything, mock.MatchedBy(func(r *domain.ChapterRecommendation) bool {
			return r.Subject == "physics" && r.ChapterName == "Optics"
		})).Return(nil)

		rec, err := svc.Recommend(ctx, 1, " Physics ", " Optics ")
		assert.NoError(t, err)
		assert.Equal(t, "physics", rec.Subject)
	})
}

// Three registered users: two approvals leave the recommendation pending,
// the third flips it to approved.
func TestVoteUnanimityRequired(t *testing.T) {
	ctx := context.Background()
	recs := new(MockRecommendationRepo)
	users := new(MockUserRepo)
	chapters := new(MockChaptersRepo)
	svc := service.NewRecommendationService(recs, users, chapters)

	users.On("Count", mock.Anything).Return(3, nil)

	pending := func(approvals ...int64) *domain.ChapterRecommendation {
		return &domain.ChapterRecommendation{
			ID: 10, Subject: "physics", ChapterName: "Optics",
			Status: domain.RecommendationPending, Approvals: approvals,
		}
	}

	// First vote: 1 of 3.
	recs.On("GetByID", mock.Anything, int64(10)).Return(pending(), nil).Once()
	recs.On("AddVote", mock.Anything, int64(10), int64(1), true).Return(nil).Once()
	recs.On("GetByID", mock.Anything, int64(10)).Return(pending(1), nil).Once()
	rec, err := svc.Vote(ctx, 1, 10, true)
	assert.NoError(t, err)
	assert.Equal(t, domain.RecommendationPending, rec.Status)

	// Second vote: 2 of 3, still pending.
	recs.On("GetByID", mock.Anything, int64(10)).Return(pending(1), nil).Once()
	recs.On("AddVote", mock.Anything, int64(10), int64(2), true).Return(nil).Once()
	recs.On("GetByID", mock.Anything, int64(10)).Return(pending(1, 2), nil).Once()
	rec, err = svc.Vote(ctx, 2, 10, true)
	assert.NoError(t, err)
	assert.Equal(t, domain.RecommendationPending, rec.Status)

	// Third vote completes unanimity; the chapter lands in the weekly config.
	recs.On("GetByID", mock.Anything, int64(10)).Return(pending(1, 2), nil).Once()
	recs.On("AddVote", mock.Anything, int64(10), int64(3), true).Return(nil).Once()
	recs.On("GetByID", mock.Anything, int64(10)).Return(pending(1, 2, 3), nil).Once()
	recs.On("SetStatus", mock.Anything, int64(10), domain.RecommendationApproved).Return(nil).Once()
	chapters.On("Get", mock.Anything).Return(&domain.ChaptersConfig{Physics: []string{}}, nil)
	chapters.On("Upsert", mock.Anything, mock.MatchedBy(func(cfg *domain.ChaptersConfig) bool {
		return len(cfg.Physics) == 1 && cfg.Physics[0] == "Optics"
	})).Return(nil)
	rec, err = svc.Vote(ctx, 3, 10, true)
	assert.NoError(t, err)
	assert.Equal(t, domain.RecommendationApproved, rec.Status)
}

func TestVoteRejectionIsFinal(t *testing.T) {
	ctx := context.Background()
	recs := new(MockRecommendationRepo)
	users := new(MockUserRepo)
	svc := service.NewRecommendationService(recs, users, new(MockChaptersRepo))

	// A single rejection settles the recommendation.
	recs.On("GetByID", mock.Anything, int64(10)).Return(&domain.ChapterRecommendation{
		ID: 10, Status: domain.RecommendationPending,
	}, nil).Once()
	recs.On("AddVote", mock.Anything, int64(10), int64(2), false).Return(nil).Once()
	recs.On("GetByID", mock.Anything, int64(10)).Return(&domain.ChapterRecommendation{
		ID: 10, Status: domain.RecommendationPending, Approvals: []int64{1}, Rejections: []int64{2},
	}, nil).Once()
	recs.On("SetStatus", mock.Anything, int64(10), domain.RecommendationRejected).Return(nil).Once()

	rec, err := svc.Vote(ctx, 2, 10, false)
	assert.NoError(t, err)
	assert.Equal(t, domain.RecommendationRejected, rec.Status)

	// Later approvals do not reverse the rejection; no vote is even recorded.
	recs.On("GetByID", mock.Anything, int64(10)).Return(&domain.ChapterRecommendation{
		ID: 10, Status: domain.RecommendationRejected,
	}, nil).Once()

	rec, err = svc.Vote(ctx, 3, 10, true)
	assert.NoError(t, err)
	assert.Equal(t, domain.RecommendationRejected, rec.Status)
	recs.AssertNotCalled(t, "AddVote", mock.Anything, int64(10), int64(3), true)
}

// A repeat vote by the same user is absorbed by the vote set and cannot
// double-count toward unanimity.
func TestVoteRepeatIsNoOp(t *testing.T) {
	ctx := context.Background()
	recs := new(MockRecommendationRepo)
	users := new(MockUserRepo)
	svc := service.NewRecommendationService(recs, users, new(MockChaptersRepo))

	users.On("Count", mock.Anything).Return(3, nil)

	// User 1 votes twice; the store's idempotent insert leaves one approval.
	for i := 0; i < 2; i++ {
		recs.On("GetByID", mock.Anything, int64(10)).Return(&domain.ChapterRecommendation{
			ID: 10, Status: domain.RecommendationPending,
		}, nil).Once()
		recs.On("AddVote", mock.Anything, int64(10), int64(1), true).Return(nil).Once()
		recs.On("GetByID", mock.Anything, int64(10)).Return(&domain.ChapterRecommendation{
			ID: 10, Status: domain.RecommendationPending, Approvals: []int64{1},
		}, nil).Once()
	}

	rec, err := svc.Vote(ctx, 1, 10, true)
	assert.NoError(t, err)
	assert.Equal(t, domain.RecommendationPending, rec.Status)

	rec, err = svc.Vote(ctx, 1, 10, true)
	assert.NoError(t, err)
	assert.Equal(t, domain.RecommendationPending, rec.Status)
	assert.Len(t, rec.Approvals, 1)
}
