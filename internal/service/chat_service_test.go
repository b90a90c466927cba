package service_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"prephub/internal/domain"
	"prephub/internal/service"
)

func TestChatPost(t *testing.T) {
	ctx := context.Background()

	t.Run("TruncatesOversizedInput", func(t *testing.T) {
		msgs := new(MockChatRepo)
		users := new(MockUserRepo)
		svc := service.NewChatService(msgs, users, 50, 1000)

		msgs.On("Create", mock.Anything, mock.MatchedBy(func(m *domain.ChatMessage) bool {
			return len([]rune(m.Message)) == 1000
		})).Return(nil)
		users.On("GetByID", mock.Anything, int64(1)).Return(&domain.User{ID: 1, Username: "amit", FirstName: "Amit"}, nil)

		resp, err := svc.Post(ctx, 1, strings.Repeat("x", 5000))
		assert.NoError(t, err)
		assert.Len(t, []rune(resp.Message), 1000)
	})

	t.Run("WhitespaceOnlyRejected", func(t *testing.T) {
		svc := service.NewChatService(new(MockChatRepo), new(MockUserRepo), 50, 1000)

		_, err := svc.Post(ctx, 1, "   \n\t ")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("TrimsBeforeStoring", func(t *testing.T) {
		msgs := new(MockChatRepo)
		users := new(MockUserRepo)
		svc := service.NewChatService(msgs, users, 50, 1000)

		msgs.On("Create", mock.Anything, mock.MatchedBy(func(m *domain.ChatMessage) bool {
			return m.Message == "hello"
		})).Return(nil)
		users.On("GetByID", mock.Anything, int64(1)).Return(&domain.User{ID: 1}, nil)

		resp, err := svc.Post(ctx, 1, "  hello  ")
		assert.NoError(t, err)
		assert.Equal(t, "hello", resp.Message)
	})
}

func TestChatHistory(t *testing.T) {
	ctx := context.Background()

	t.Run("ReversesToChronological", func(t *testing.T) {
		msgs := new(MockChatRepo)
		users := new(MockUserRepo)
		svc := service.NewChatService(msgs, users, 50, 1000)

		base := time.Now()
		// Store answers newest first.
		msgs.On("List", mock.Anything, 50).Return([]*domain.ChatMessage{
			{ID: 3, UserID: 1, Message: "third", CreatedAt: base.Add(2 * time.Second)},
			{ID: 2, UserID: 1, Message: "second", CreatedAt: base.Add(time.Second)},
			{ID: 1, UserID: 1, Message: "first", CreatedAt: base},
		}, nil)
		msgs.On("ListReactions", mock.Anything, []int64{1, 2, 3}).Return(map[int64][]*domain.Reaction{}, nil)
		users.On("GetByID", mock.Anything, int64(1)).Return(&domain.User{ID: 1, Username: "amit"}, nil)

		got, err := svc.History(ctx, 0)
		assert.NoError(t, err)
		assert.Len(t, got, 3)
		assert.Equal(t, "first", got[0].Message)
		assert.Equal(t, "second", got[1].Message)
		assert.Equal(t, "third", got[2].Message)
	})

	t.Run("CallerLimitOverridesDefault", func(t *testing.T) {
		msgs := new(MockChatRepo)
		users := new(MockUserRepo)
		svc := service.NewChatService(msgs, users, 50, 1000)

		msgs.On("List", mock.Anything, 10).Return([]*domain.ChatMessage{}, nil)
		msgs.On("ListReactions", mock.Anything, []int64{}).Return(map[int64][]*domain.Reaction{}, nil)

		got, err := svc.History(ctx, 10)
		assert.NoError(t, err)
		assert.Empty(t, got)
		msgs.AssertCalled(t, "List", mock.Anything, 10)
	})
}

func TestChatEdit(t *testing.T) {
	ctx := context.Background()

	t.Run("OnlyAuthorMayEdit", func(t *testing.T) {
		msgs := new(MockChatRepo)
		svc := service.NewChatService(msgs, new(MockUserRepo), 50, 1000)

		msgs.On("GetByID", mock.Anything, int64(9)).Return(&domain.ChatMessage{ID: 9, UserID: 1, Message: "mine"}, nil)

		_, err := svc.Edit(ctx, 2, 9, "hijacked")
		assert.ErrorIs(t, err, domain.ErrForbidden)
		msgs.AssertNotCalled(t, "UpdateText", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("DeletedMessageImmutable", func(t *testing.T) {
		msgs := new(MockChatRepo)
		svc := service.NewChatService(msgs, new(MockUserRepo), 50, 1000)

		msgs.On("GetByID", mock.Anything, int64(9)).Return(&domain.ChatMessage{ID: 9, UserID: 1, IsDeleted: true}, nil)

		_, err := svc.Edit(ctx, 1, 9, "resurrect")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("AuthorEditSetsEditedAt", func(t *testing.T) {
		msgs := new(MockChatRepo)
		users := new(MockUserRepo)
		svc := service.NewChatService(msgs, users, 50, 1000)

		msgs.On("GetByID", mock.Anything, int64(9)).Return(&domain.ChatMessage{ID: 9, UserID: 1, Message: "old"}, nil)
		msgs.On("UpdateText", mock.Anything, int64(9), "new", mock.Anything).Return(nil)
		users.On("GetByID", mock.Anything, int64(1)).Return(&domain.User{ID: 1}, nil)

		resp, err := svc.Edit(ctx, 1, 9, "new")
		assert.NoError(t, err)
		assert.Equal(t, "new", resp.Message)
		assert.NotNil(t, resp.EditedAt)
	})
}

func TestChatDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("OnlyAuthorMayDelete", func(t *testing.T) {
		msgs := new(MockChatRepo)
		svc := service.NewChatService(msgs, new(MockUserRepo), 50, 1000)

		msgs.On("GetByID", mock.Anything, int64(9)).Return(&domain.ChatMessage{ID: 9, UserID: 1}, nil)

		err := svc.Delete(ctx, 2, 9)
		assert.ErrorIs(t, err, domain.ErrForbidden)
		msgs.AssertNotCalled(t, "SoftDelete", mock.Anything, mock.Anything)
	})

	t.Run("ModeratorBypassesOwnership", func(t *testing.T) {
		msgs := new(MockChatRepo)
		svc := service.NewChatService(msgs, new(MockUserRepo), 50, 1000)

		msgs.On("GetByID", mock.Anything, int64(9)).Return(&domain.ChatMessage{ID: 9, UserID: 1}, nil)
		msgs.On("SoftDelete", mock.Anything, int64(9)).Return(nil)

		assert.NoError(t, svc.DeleteAsModerator(ctx, 9))
	})
}

func TestChatReactions(t *testing.T) {
	ctx := context.Background()

	t.Run("CannotReactToDeleted", func(t *testing.T) {
		msgs := new(MockChatRepo)
		svc := service.NewChatService(msgs, new(MockUserRepo), 50, 1000)

		msgs.On("GetByID", mock.Anything, int64(9)).Return(&domain.ChatMessage{ID: 9, IsDeleted: true}, nil)

		err := svc.AddReaction(ctx, 1, 9, "👍")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("EmptyReactionRejected", func(t *testing.T) {
		svc := service.NewChatService(new(MockChatRepo), new(MockUserRepo), 50, 1000)

		err := svc.AddReaction(ctx, 1, 9, "")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}
