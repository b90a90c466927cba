package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"prephub/internal/domain"
)

// ChatService manages the global public channel every registered user can
// read and post to.
type ChatService struct {
	messages domain.ChatMessageRepository
	users    domain.UserRepository

	historyLimit    int
	maxMessageRunes int
}

func NewChatService(messages domain.ChatMessageRepository, users domain.UserRepository, historyLimit, maxMessageRunes int) *ChatService {
	return &ChatService{
		messages:        messages,
		users:           users,
		historyLimit:    historyLimit,
		maxMessageRunes: maxMessageRunes,
	}
}

type ChatMessageResponse struct {
	ID        int64              `json:"id"`
	UserID    int64              `json:"user_id"`
	Username  string             `json:"username"`
	FirstName string             `json:"first_name"`
	Message   string             `json:"message"`
	IsDeleted bool               `json:"is_deleted"`
	EditedAt  *time.Time         `json:"edited_at,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
	Reactions []*domain.Reaction `json:"reactions"`
}

func (s *ChatService) Post(ctx context.Context, userID int64, text string) (*ChatMessageResponse, error) {
	text, err := normalizeMessage(text, s.maxMessageRunes)
	if err != nil {
		return nil, err
	}

	msg := &domain.ChatMessage{UserID: userID, Message: text}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}
	return s.toResponse(ctx, msg, nil)
}

// History returns the most recent visible messages in chronological order.
// Soft-deleted messages never appear on the global channel. A non-positive
// limit falls back to the configured default.
func (s *ChatService) History(ctx context.Context, limit int) ([]*ChatMessageResponse, error) {
	if limit <= 0 {
		limit = s.historyLimit
	}
	msgs, err := s.messages.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	reverseInPlace(msgs)
	return s.toResponses(ctx, msgs)
}

// ModeratorHistory returns a deeper page including soft-deleted messages.
func (s *ChatService) ModeratorHistory(ctx context.Context, limit int) ([]*ChatMessageResponse, error) {
	msgs, err := s.messages.ListAll(ctx, limit)
	if err != nil {
		return nil, err
	}
	reverseInPlace(msgs)
	return s.toResponses(ctx, msgs)
}

// Edit rewrites a message's text. Only the author may edit, and deleted
// messages stay immutable.
func (s *ChatService) Edit(ctx context.Context, callerID, messageID int64, text string) (*ChatMessageResponse, error) {
	text, err := normalizeMessage(text, s.maxMessageRunes)
	if err != nil {
		return nil, err
	}

	msg, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg.UserID != callerID {
		return nil, fmt.Errorf("%w: only the author can edit a message", domain.ErrForbidden)
	}
	if msg.IsDeleted {
		return nil, fmt.Errorf("%w: message is deleted", domain.ErrInvalidInput)
	}

	now := time.Now().UTC()
	if err := s.messages.UpdateText(ctx, messageID, text, now); err != nil {
		return nil, err
	}
	msg.Message = text
	msg.EditedAt = &now
	return s.toResponse(ctx, msg, nil)
}

// Delete soft-deletes a message. Only the author may delete their own; the
// moderator path uses DeleteAsModerator.
func (s *ChatService) Delete(ctx context.Context, callerID, messageID int64) error {
	msg, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		return err
	}
	if msg.UserID != callerID {
		return fmt.Errorf("%w: only the author can delete a message", domain.ErrForbidden)
	}
	return s.messages.SoftDelete(ctx, messageID)
}

func (s *ChatService) DeleteAsModerator(ctx context.Context, messageID int64) error {
	if _, err := s.messages.GetByID(ctx, messageID); err != nil {
		return err
	}
	return s.messages.SoftDelete(ctx, messageID)
}

func (s *ChatService) AddReaction(ctx context.Context, callerID, messageID int64, reaction string) error {
	if reaction == "" {
		return fmt.Errorf("%w: reaction cannot be empty", domain.ErrInvalidInput)
	}
	msg, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		return err
	}
	if msg.IsDeleted {
		return fmt.Errorf("%w: cannot react to a deleted message", domain.ErrInvalidInput)
	}
	return s.messages.AddReaction(ctx, messageID, callerID, reaction)
}

func (s *ChatService) RemoveReaction(ctx context.Context, callerID, messageID int64, reaction string) error {
	return s.messages.RemoveReaction(ctx, messageID, callerID, reaction)
}

func (s *ChatService) toResponses(ctx context.Context, msgs []*domain.ChatMessage) ([]*ChatMessageResponse, error) {
	ids := make([]int64, len(msgs))
	for i, m := range msgs {
		ids[i] = m.ID
	}
	reactions, err := s.messages.ListReactions(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list reactions: %w", err)
	}

	res := make([]*ChatMessageResponse, 0, len(msgs))
	for _, m := range msgs {
		dto, err := s.toResponse(ctx, m, reactions[m.ID])
		if err != nil {
			return nil, err
		}
		res = append(res, dto)
	}
	return res, nil
}

func (s *ChatService) toResponse(ctx context.Context, m *domain.ChatMessage, reactions []*domain.Reaction) (*ChatMessageResponse, error) {
	dto := &ChatMessageResponse{
		ID:        m.ID,
		UserID:    m.UserID,
		Message:   m.Message,
		IsDeleted: m.IsDeleted,
		EditedAt:  m.EditedAt,
		CreatedAt: m.CreatedAt,
		Reactions: reactions,
	}
	if dto.Reactions == nil {
		dto.Reactions = []*domain.Reaction{}
	}
	u, err := s.users.GetByID(ctx, m.UserID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get sender: %w", err)
	}
	if err == nil {
		dto.Username = u.Username
		dto.FirstName = u.FirstName
	}
	return dto, nil
}
