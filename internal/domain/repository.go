package domain

import (
	"context"
	"time"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	List(ctx context.Context) ([]*User, error)
	Count(ctx context.Context) (int, error)
	Update(ctx context.Context, u *User) error
	UpdatePassword(ctx context.Context, id int64, hashedPassword string) error
}

// PresenceRepository defines persistence operations for presence records.
// Upsert has insert-or-update semantics keyed on user id and always refreshes
// last_seen.
type PresenceRepository interface {
	Upsert(ctx context.Context, userID int64, isOnline bool) (*PresenceRecord, error)
	Get(ctx context.Context, userID int64) (*PresenceRecord, error)
	ListOnline(ctx context.Context) ([]*PresenceRecord, error)
	ListAll(ctx context.Context) ([]*PresenceRecord, error)
}

// ConversationRepository defines persistence operations for conversations.
type ConversationRepository interface {
	// Create inserts a conversation row and its participant memberships.
	// ParticipantIDs must already be canonical.
	Create(ctx context.Context, c *Conversation) error
	GetByID(ctx context.Context, id int64) (*Conversation, error)
	// FindDirectByKey looks up the unique non-group conversation whose
	// canonical participant key equals key.
	FindDirectByKey(ctx context.Context, key string) (*Conversation, error)
	ListForUser(ctx context.Context, userID int64) ([]*Conversation, error)
	IsParticipant(ctx context.Context, conversationID, userID int64) (bool, error)
}

// ChatMessageRepository persists global-channel messages and their reactions.
type ChatMessageRepository interface {
	Create(ctx context.Context, m *ChatMessage) error
	GetByID(ctx context.Context, id int64) (*ChatMessage, error)
	// List returns the most recent non-deleted messages, newest first.
	List(ctx context.Context, limit int) ([]*ChatMessage, error)
	// ListAll returns recent messages including deleted ones (moderator view).
	ListAll(ctx context.Context, limit int) ([]*ChatMessage, error)
	UpdateText(ctx context.Context, id int64, text string, editedAt time.Time) error
	SoftDelete(ctx context.Context, id int64) error
	AddReaction(ctx context.Context, messageID, userID int64, reaction string) error
	RemoveReaction(ctx context.Context, messageID, userID int64, reaction string) error
	ListReactions(ctx context.Context, messageIDs []int64) (map[int64][]*Reaction, error)
}

// WhisperRepository persists conversation-scoped messages and their reactions.
type WhisperRepository interface {
	// Create appends the message and bumps the parent conversation's
	// last_message_at inside one transaction.
	Create(ctx context.Context, m *WhisperMessage) error
	GetByID(ctx context.Context, id int64) (*WhisperMessage, error)
	// ListForConversation returns the most recent messages newest first,
	// INCLUDING soft-deleted rows (the client renders tombstones).
	ListForConversation(ctx context.Context, conversationID int64, limit int) ([]*WhisperMessage, error)
	// LatestVisible returns the most recent non-deleted message, or
	// ErrNotFound when the conversation has none.
	LatestVisible(ctx context.Context, conversationID int64) (*WhisperMessage, error)
	UpdateText(ctx context.Context, id int64, text string, editedAt time.Time) error
	SoftDelete(ctx context.Context, id int64) error
	AddReaction(ctx context.Context, messageID, userID int64, reaction string) error
	RemoveReaction(ctx context.Context, messageID, userID int64, reaction string) error
	ListReactions(ctx context.Context, messageIDs []int64) (map[int64][]*Reaction, error)
}

// RecommendationRepository persists chapter recommendations and their votes.
type RecommendationRepository interface {
	Create(ctx context.Context, rec *ChapterRecommendation) error
	// GetByID returns the recommendation with Approvals/Rejections populated.
	GetByID(ctx context.Context, id int64) (*ChapterRecommendation, error)
	ListPending(ctx context.Context) ([]*ChapterRecommendation, error)
	// AddVote records a vote; a repeated vote by the same user is a no-op.
	AddVote(ctx context.Context, recommendationID, userID int64, approve bool) error
	SetStatus(ctx context.Context, recommendationID int64, status RecommendationStatus) error
}

// ChaptersConfigRepository persists the singleton weekly chapter config.
type ChaptersConfigRepository interface {
	Get(ctx context.Context) (*ChaptersConfig, error)
	Upsert(ctx context.Context, cfg *ChaptersConfig) error
}

// SheetRepository persists practice sheets.
type SheetRepository interface {
	Create(ctx context.Context, s *OmrSheet) error
	ListByUser(ctx context.Context, userID int64) ([]*OmrSheet, error)
	// ListAll returns sheets joined with their owners, newest first.
	// limit <= 0 returns everything.
	ListAll(ctx context.Context, limit int) ([]*SheetWithUser, error)
	CountByUser(ctx context.Context) (map[int64]int, error)
}
