package service_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"prephub/internal/domain"
)

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepo) List(ctx context.Context) ([]*domain.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.User), args.Error(1)
}

func (m *MockUserRepo) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockUserRepo) Update(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserRepo) UpdatePassword(ctx context.Context, id int64, hashedPassword string) error {
	args := m.Called(ctx, id, hashedPassword)
	return args.Error(0)
}

type MockPresenceRepo struct {
	mock.Mock
}

func (m *MockPresenceRepo) Upsert(ctx context.Context, userID int64, isOnline bool) (*domain.PresenceRecord, error) {
	args := m.Called(ctx, userID, isOnline)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PresenceRecord), args.Error(1)
}

func (m *MockPresenceRepo) Get(ctx context.Context, userID int64) (*domain.PresenceRecord, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PresenceRecord), args.Error(1)
}

func (m *MockPresenceRepo) ListOnline(ctx context.Context) ([]*domain.PresenceRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.PresenceRecord), args.Error(1)
}

func (m *MockPresenceRepo) ListAll(ctx context.Context) ([]*domain.PresenceRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.PresenceRecord), args.Error(1)
}

type MockConversationRepo struct {
	mock.Mock
}

func (m *MockConversationRepo) Create(ctx context.Context, c *domain.Conversation) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockConversationRepo) GetByID(ctx context.Context, id int64) (*domain.Conversation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Conversation), args.Error(1)
}

func (m *MockConversationRepo) FindDirectByKey(ctx context.Context, key string) (*domain.Conversation, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Conversation), args.Error(1)
}

func (m *MockConversationRepo) ListForUser(ctx context.Context, userID int64) ([]*domain.Conversation, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Conversation), args.Error(1)
}

func (m *MockConversationRepo) IsParticipant(ctx context.Context, conversationID, userID int64) (bool, error) {
	args := m.Called(ctx, conversationID, userID)
	return args.Bool(0), args.Error(1)
}

type MockChatRepo struct {
	mock.Mock
}

func (m *MockChatRepo) Create(ctx context.Context, msg *domain.ChatMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockChatRepo) GetByID(ctx context.Context, id int64) (*domain.ChatMessage, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ChatMessage), args.Error(1)
}

func (m *MockChatRepo) List(ctx context.Context, limit int) ([]*domain.ChatMessage, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ChatMessage), args.Error(1)
}

func (m *MockChatRepo) ListAll(ctx context.Context, limit int) ([]*domain.ChatMessage, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ChatMessage), args.Error(1)
}

func (m *MockChatRepo) UpdateText(ctx context.Context, id int64, text string, editedAt time.Time) error {
	args := m.Called(ctx, id, text, editedAt)
	return args.Error(0)
}

func (m *MockChatRepo) SoftDelete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockChatRepo) AddReaction(ctx context.Context, messageID, userID int64, reaction string) error {
	args := m.Called(ctx, messageID, userID, reaction)
	return args.Error(0)
}

func (m *MockChatRepo) RemoveReaction(ctx context.Context, messageID, userID int64, reaction string) error {
	args := m.Called(ctx, messageID, userID, reaction)
	return args.Error(0)
}

func (m *MockChatRepo) ListReactions(ctx context.Context, messageIDs []int64) (map[int64][]*domain.Reaction, error) {
	args := m.Called(ctx, messageIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64][]*domain.Reaction), args.Error(1)
}

type MockWhisperRepo struct {
	mock.Mock
}

func (m *MockWhisperRepo) Create(ctx context.Context, msg *domain.WhisperMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockWhisperRepo) GetByID(ctx context.Context, id int64) (*domain.WhisperMessage, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WhisperMessage), args.Error(1)
}

func (m *MockWhisperRepo) ListForConversation(ctx context.Context, conversationID int64, limit int) ([]*domain.WhisperMessage, error) {
	args := m.Called(ctx, conversationID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.WhisperMessage), args.Error(1)
}

func (m *MockWhisperRepo) LatestVisible(ctx context.Context, conversationID int64) (*domain.WhisperMessage, error) {
	args := m.Called(ctx, conversationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WhisperMessage), args.Error(1)
}

func (m *MockWhisperRepo) UpdateText(ctx context.Context, id int64, text string, editedAt time.Time) error {
	args := m.Called(ctx, id, text, editedAt)
	return args.Error(0)
}

func (m *MockWhisperRepo) SoftDelete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockWhisperRepo) AddReaction(ctx context.Context, messageID, userID int64, reaction string) error {
	args := m.Called(ctx, messageID, userID, reaction)
	return args.Error(0)
}

func (m *MockWhisperRepo) RemoveReaction(ctx context.Context, messageID, userID int64, reaction string) error {
	args := m.Called(ctx, messageID, userID, reaction)
	return args.Error(0)
}

func (m *MockWhisperRepo) ListReactions(ctx context.Context, messageIDs []int64) (map[int64][]*domain.Reaction, error) {
	args := m.Called(ctx, messageIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64][]*domain.Reaction), args.Error(1)
}

type MockRecommendationRepo struct {
	mock.Mock
}

func (m *MockRecommendationRepo) Create(ctx context.Context, rec *domain.ChapterRecommendation) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockRecommendationRepo) GetByID(ctx context.Context, id int64) (*domain.ChapterRecommendation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ChapterRecommendation), args.Error(1)
}

func (m *MockRecommendationRepo) ListPending(ctx context.Context) ([]*domain.ChapterRecommendation, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ChapterRecommendation), args.Error(1)
}

func (m *MockRecommendationRepo) AddVote(ctx context.Context, recommendationID, userID int64, approve bool) error {
	args := m.Called(ctx, recommendationID, userID, approve)
	return args.Error(0)
}

func (m *MockRecommendationRepo) SetStatus(ctx context.Context, recommendationID int64, status domain.RecommendationStatus) error {
	args := m.Called(ctx, recommendationID, status)
	return args.Error(0)
}

type MockChaptersRepo struct {
	mock.Mock
}

func (m *MockChaptersRepo) Get(ctx context.Context) (*domain.ChaptersConfig, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ChaptersConfig), args.Error(1)
}

func (m *MockChaptersRepo) Upsert(ctx context.Context, cfg *domain.ChaptersConfig) error {
	args := m.Called(ctx, cfg)
	return args.Error(0)
}

type MockSheetRepo struct {
	mock.Mock
}

func (m *MockSheetRepo) Create(ctx context.Context, s *domain.OmrSheet) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockSheetRepo) ListByUser(ctx context.Context, userID int64) ([]*domain.OmrSheet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.OmrSheet), args.Error(1)
}

func (m *MockSheetRepo) ListAll(ctx context.Context, limit int) ([]*domain.SheetWithUser, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.SheetWithUser), args.Error(1)
}

func (m *MockSheetRepo) CountByUser(ctx context.Context) (map[int64]int, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]int), args.Error(1)
}
