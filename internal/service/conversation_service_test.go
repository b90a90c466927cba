package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"prephub/internal/domain"
	"prephub/internal/security"
	"prephub/internal/service"
)

func newConversationService(convs *MockConversationRepo, whispers *MockWhisperRepo, users *MockUserRepo) *service.ConversationService {
	enc, _ := security.NewEncryptor([]byte("test-key"))
	return service.NewConversationService(convs, whispers, users, enc)
}

func expectUsersExist(users *MockUserRepo, ids ...int64) {
	for _, id := range ids {
		users.On("GetByID", mock.Anything, id).Return(&domain.User{ID: id, Username: "u", FirstName: "U"}, nil)
	}
}

func TestGetOrCreateDirect(t *testing.T) {
	ctx := context.Background()

	t.Run("CreatesOnFirstResolve", func(t *testing.T) {
		convs := new(MockConversationRepo)
		users := new(MockUserRepo)
		svc := newConversationService(convs, new(MockWhisperRepo), users)

		expectUsersExist(users, 1, 2)
		convs.On("FindDirectByKey", mock.Anything, "1,2").Return(nil, domain.ErrNotFound)
		convs.On("Create", mock.Anything, mock.MatchedBy(func(c *domain.Conversation) bool {
			return !c.IsGroup && assert.ObjectsAreEqual([]int64{1, 2}, c.ParticipantIDs)
		})).Return(nil)

		conv, created, err := svc.GetOrCreateDirect(ctx, 1, []int64{2})
		assert.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, []int64{1, 2}, conv.ParticipantIDs)
	})

	t.Run("SameSetResolvesSameConversation", func(t *testing.T) {
		convs := new(MockConversationRepo)
		users := new(MockUserRepo)
		svc := newConversationService(convs, new(MockWhisperRepo), users)

		existing := &domain.Conversation{ID: 42, ParticipantIDs: []int64{1, 2}}
		expectUsersExist(users, 1, 2)
		convs.On("FindDirectByKey", mock.Anything, "1,2").Return(existing, nil)

		// Caller order and duplicates must not matter: resolving as user 2
		// with [1, 1] hits the same canonical key.
		conv, created, err := svc.GetOrCreateDirect(ctx, 2, []int64{1, 1})
		assert.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, int64(42), conv.ID)
		convs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("LosingCreateRaceReturnsWinner", func(t *testing.T) {
		convs := new(MockConversationRepo)
		users := new(MockUserRepo)
		svc := newConversationService(convs, new(MockWhisperRepo), users)

		winner := &domain.Conversation{ID: 42, ParticipantIDs: []int64{1, 2}}
		expectUsersExist(users, 1, 2)
		// The key is free at lookup time, but another caller inserts it
		// before our Create lands.
		convs.On("FindDirectByKey", mock.Anything, "1,2").Return(nil, domain.ErrNotFound).Once()
		convs.On("Create", mock.Anything, mock.Anything).
			Return(errors.New("UNIQUE constraint failed: conversations.participant_key"))
		convs.On("FindDirectByKey", mock.Anything, "1,2").Return(winner, nil).Once()

		conv, created, err := svc.GetOrCreateDirect(ctx, 1, []int64{2})
		assert.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, int64(42), conv.ID)
	})

	t.Run("SupersetIsADifferentConversation", func(t *testing.T) {
		convs := new(MockConversationRepo)
		users := new(MockUserRepo)
		svc := newConversationService(convs, new(MockWhisperRepo), users)

		expectUsersExist(users, 1, 2, 3)
		convs.On("FindDirectByKey", mock.Anything, "1,2,3").Return(nil, domain.ErrNotFound)
		convs.On("Create", mock.Anything, mock.Anything).Return(nil)

		_, created, err := svc.GetOrCreateDirect(ctx, 1, []int64{2, 3})
		assert.NoError(t, err)
		assert.True(t, created)
		convs.AssertCalled(t, "FindDirectByKey", mock.Anything, "1,2,3")
	})

	t.Run("SelfOnlyRejected", func(t *testing.T) {
		convs := new(MockConversationRepo)
		svc := newConversationService(convs, new(MockWhisperRepo), new(MockUserRepo))

		_, _, err := svc.GetOrCreateDirect(ctx, 1, []int64{1, 1})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("UnknownParticipantRejected", func(t *testing.T) {
		convs := new(MockConversationRepo)
		users := new(MockUserRepo)
		svc := newConversationService(convs, new(MockWhisperRepo), users)

		users.On("GetByID", mock.Anything, int64(1)).Return(&domain.User{ID: 1}, nil)
		users.On("GetByID", mock.Anything, int64(99)).Return(nil, domain.ErrNotFound)

		_, _, err := svc.GetOrCreateDirect(ctx, 1, []int64{99})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestCreateGroup(t *testing.T) {
	ctx := context.Background()

	t.Run("AlwaysCreatesFresh", func(t *testing.T) {
		convs := new(MockConversationRepo)
		users := new(MockUserRepo)
		svc := newConversationService(convs, new(MockWhisperRepo), users)

		expectUsersExist(users, 1, 2, 3)
		convs.On("Create", mock.Anything, mock.MatchedBy(func(c *domain.Conversation) bool {
			return c.IsGroup && *c.GroupName == "study squad" && *c.CreatorID == int64(1)
		})).Return(nil).Twice()

		_, err := svc.CreateGroup(ctx, 1, "study squad", []int64{2, 3})
		assert.NoError(t, err)
		// Identical name and membership still creates a second group.
		_, err = svc.CreateGroup(ctx, 1, "study squad", []int64{2, 3})
		assert.NoError(t, err)
		// No structural lookup happens for groups.
		convs.AssertNotCalled(t, "FindDirectByKey", mock.Anything, mock.Anything)
		convs.AssertNumberOfCalls(t, "Create", 2)
	})

	t.Run("BlankNameRejected", func(t *testing.T) {
		svc := newConversationService(new(MockConversationRepo), new(MockWhisperRepo), new(MockUserRepo))

		_, err := svc.CreateGroup(ctx, 1, "   ", []int64{2, 3})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("TooFewMembersRejected", func(t *testing.T) {
		svc := newConversationService(new(MockConversationRepo), new(MockWhisperRepo), new(MockUserRepo))

		_, err := svc.CreateGroup(ctx, 1, "pair", []int64{2})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestGetForUser(t *testing.T) {
	ctx := context.Background()

	t.Run("NonParticipantForbidden", func(t *testing.T) {
		convs := new(MockConversationRepo)
		svc := newConversationService(convs, new(MockWhisperRepo), new(MockUserRepo))

		convs.On("GetByID", mock.Anything, int64(7)).Return(&domain.Conversation{ID: 7}, nil)
		convs.On("IsParticipant", mock.Anything, int64(7), int64(5)).Return(false, nil)

		_, err := svc.GetForUser(ctx, 7, 5)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("Participant", func(t *testing.T) {
		convs := new(MockConversationRepo)
		svc := newConversationService(convs, new(MockWhisperRepo), new(MockUserRepo))

		convs.On("GetByID", mock.Anything, int64(7)).Return(&domain.Conversation{ID: 7}, nil)
		convs.On("IsParticipant", mock.Anything, int64(7), int64(5)).Return(true, nil)

		conv, err := svc.GetForUser(ctx, 7, 5)
		assert.NoError(t, err)
		assert.Equal(t, int64(7), conv.ID)
	})
}
