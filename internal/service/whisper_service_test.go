package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"prephub/internal/domain"
	"prephub/internal/security"
	"prephub/internal/service"
)

func newWhisperService(whispers *MockWhisperRepo, convs *MockConversationRepo, users *MockUserRepo) (*service.WhisperService, *security.Encryptor) {
	enc, _ := security.NewEncryptor([]byte("test-key"))
	return service.NewWhisperService(whispers, convs, users, enc, 50, 1000), enc
}

func expectParticipant(convs *MockConversationRepo, conversationID, userID int64, ok bool) {
	convs.On("GetByID", mock.Anything, conversationID).Return(&domain.Conversation{ID: conversationID}, nil)
	convs.On("IsParticipant", mock.Anything, conversationID, userID).Return(ok, nil)
}

func TestWhisperSend(t *testing.T) {
	ctx := context.Background()

	t.Run("EncryptsAtRest", func(t *testing.T) {
		whispers := new(MockWhisperRepo)
		convs := new(MockConversationRepo)
		users := new(MockUserRepo)
		svc, enc := newWhisperService(whispers, convs, users)

		expectParticipant(convs, 5, 1, true)
		var stored string
		whispers.On("Create", mock.Anything, mock.MatchedBy(func(m *domain.WhisperMessage) bool {
			stored = m.Message
			return m.ConversationID == 5 && m.SenderID == 1
		})).Return(nil)
		users.On("GetByID", mock.Anything, int64(1)).Return(&domain.User{ID: 1, Username: "amit"}, nil)

		resp, err := svc.Send(ctx, 1, 5, "secret plans")
		assert.NoError(t, err)
		assert.Equal(t, "secret plans", resp.Message)
		assert.NotEqual(t, "secret plans", stored)
		dec, err := enc.Decrypt(stored)
		assert.NoError(t, err)
		assert.Equal(t, "secret plans", dec)
	})

	t.Run("NonParticipantForbidden", func(t *testing.T) {
		whispers := new(MockWhisperRepo)
		convs := new(MockConversationRepo)
		svc, _ := newWhisperService(whispers, convs, new(MockUserRepo))

		expectParticipant(convs, 5, 9, false)

		_, err := svc.Send(ctx, 9, 5, "hi")
		assert.ErrorIs(t, err, domain.ErrForbidden)
		whispers.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestWhisperHistoryTombstones(t *testing.T) {
	ctx := context.Background()

	whispers := new(MockWhisperRepo)
	convs := new(MockConversationRepo)
	users := new(MockUserRepo)
	svc, enc := newWhisperService(whispers, convs, users)

	expectParticipant(convs, 5, 1, true)

	cipher1, _ := enc.Encrypt("still here")
	cipher2, _ := enc.Encrypt("gone")
	base := time.Now()
	// Store answers newest first; the deleted row is returned, not filtered.
	whispers.On("ListForConversation", mock.Anything, int64(5), 50).Return([]*domain.WhisperMessage{
		{ID: 2, ConversationID: 5, SenderID: 1, Message: cipher2, IsDeleted: true, CreatedAt: base.Add(time.Second)},
		{ID: 1, ConversationID: 5, SenderID: 1, Message: cipher1, CreatedAt: base},
	}, nil)
	whispers.On("ListReactions", mock.Anything, []int64{1, 2}).Return(map[int64][]*domain.Reaction{}, nil)
	users.On("GetByID", mock.Anything, int64(1)).Return(&domain.User{ID: 1, Username: "amit"}, nil)

	got, err := svc.History(ctx, 1, 5, 0)
	assert.NoError(t, err)
	assert.Len(t, got, 2)
	// Chronological order, tombstone kept in place with content blanked.
	assert.Equal(t, "still here", got[0].Message)
	assert.False(t, got[0].IsDeleted)
	assert.True(t, got[1].IsDeleted)
	assert.Empty(t, got[1].Message)
}

func TestWhisperHistoryCallerLimit(t *testing.T) {
	ctx := context.Background()

	whispers := new(MockWhisperRepo)
	convs := new(MockConversationRepo)
	svc, _ := newWhisperService(whispers, convs, new(MockUserRepo))

	expectParticipant(convs, 5, 1, true)
	whispers.On("ListForConversation", mock.Anything, int64(5), 10).Return([]*domain.WhisperMessage{}, nil)
	whispers.On("ListReactions", mock.Anything, []int64{}).Return(map[int64][]*domain.Reaction{}, nil)

	got, err := svc.History(ctx, 1, 5, 10)
	assert.NoError(t, err)
	assert.Empty(t, got)
	whispers.AssertCalled(t, "ListForConversation", mock.Anything, int64(5), 10)
}

func TestWhisperEditDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("EditByNonSenderForbidden", func(t *testing.T) {
		whispers := new(MockWhisperRepo)
		svc, _ := newWhisperService(whispers, new(MockConversationRepo), new(MockUserRepo))

		whispers.On("GetByID", mock.Anything, int64(3)).Return(&domain.WhisperMessage{ID: 3, SenderID: 1}, nil)

		_, err := svc.Edit(ctx, 2, 3, "rewrite")
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("DeleteByNonSenderForbidden", func(t *testing.T) {
		whispers := new(MockWhisperRepo)
		svc, _ := newWhisperService(whispers, new(MockConversationRepo), new(MockUserRepo))

		whispers.On("GetByID", mock.Anything, int64(3)).Return(&domain.WhisperMessage{ID: 3, SenderID: 1}, nil)

		err := svc.Delete(ctx, 2, 3)
		assert.ErrorIs(t, err, domain.ErrForbidden)
		whispers.AssertNotCalled(t, "SoftDelete", mock.Anything, mock.Anything)
	})

	t.Run("SenderDeletes", func(t *testing.T) {
		whispers := new(MockWhisperRepo)
		svc, _ := newWhisperService(whispers, new(MockConversationRepo), new(MockUserRepo))

		whispers.On("GetByID", mock.Anything, int64(3)).Return(&domain.WhisperMessage{ID: 3, SenderID: 1}, nil)
		whispers.On("SoftDelete", mock.Anything, int64(3)).Return(nil)

		assert.NoError(t, svc.Delete(ctx, 1, 3))
	})
}
