package service

import (
	"context"
	"fmt"
	"time"

	"prephub/internal/domain"
	"prephub/internal/security"
)

// WhisperService manages conversation-scoped messages. Content is encrypted
// before it reaches the store and decrypted on the way out; soft-deleted
// messages stay in conversation history as tombstones with no content.
type WhisperService struct {
	whispers      domain.WhisperRepository
	conversations domain.ConversationRepository
	users         domain.UserRepository
	encryptor     *security.Encryptor

	historyLimit    int
	maxMessageRunes int
}

func NewWhisperService(
	whispers domain.WhisperRepository,
	conversations domain.ConversationRepository,
	users domain.UserRepository,
	encryptor *security.Encryptor,
	historyLimit, maxMessageRunes int,
) *WhisperService {
	return &WhisperService{
		whispers:        whispers,
		conversations:   conversations,
		users:           users,
		encryptor:       encryptor,
		historyLimit:    historyLimit,
		maxMessageRunes: maxMessageRunes,
	}
}

type WhisperResponse struct {
	ID             int64              `json:"id"`
	ConversationID int64              `json:"conversation_id"`
	SenderID       int64              `json:"sender_id"`
	SenderUsername string             `json:"sender_username"`
	Message        string             `json:"message"`
	IsDeleted      bool               `json:"is_deleted"`
	EditedAt       *time.Time         `json:"edited_at,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
	Reactions      []*domain.Reaction `json:"reactions"`
}

func (s *WhisperService) Send(ctx context.Context, callerID, conversationID int64, text string) (*WhisperResponse, error) {
	if err := s.requireParticipant(ctx, conversationID, callerID); err != nil {
		return nil, err
	}
	text, err := normalizeMessage(text, s.maxMessageRunes)
	if err != nil {
		return nil, err
	}

	encrypted, err := s.encryptor.Encrypt(text)
	if err != nil {
		return nil, fmt.Errorf("encrypt message: %w", err)
	}
	msg := &domain.WhisperMessage{
		ConversationID: conversationID,
		SenderID:       callerID,
		Message:        encrypted,
	}
	if err := s.whispers.Create(ctx, msg); err != nil {
		return nil, err
	}

	msg.Message = text
	return s.toResponse(ctx, msg, nil), nil
}

// History returns conversation messages in chronological order. Deleted
// messages are kept in place as empty tombstones so clients can render a
// "message deleted" marker without seeing the content. A non-positive limit
// falls back to the configured default.
func (s *WhisperService) History(ctx context.Context, callerID, conversationID int64, limit int) ([]*WhisperResponse, error) {
	if err := s.requireParticipant(ctx, conversationID, callerID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = s.historyLimit
	}
	msgs, err := s.whispers.ListForConversation(ctx, conversationID, limit)
	if err != nil {
		return nil, err
	}
	reverseInPlace(msgs)

	ids := make([]int64, len(msgs))
	for i, m := range msgs {
		ids[i] = m.ID
	}
	reactions, err := s.whispers.ListReactions(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list reactions: %w", err)
	}

	res := make([]*WhisperResponse, 0, len(msgs))
	for _, m := range msgs {
		if m.IsDeleted {
			m.Message = ""
		} else if dec, err := s.encryptor.Decrypt(m.Message); err == nil {
			m.Message = dec
		}
		res = append(res, s.toResponse(ctx, m, reactions[m.ID]))
	}
	return res, nil
}

func (s *WhisperService) Edit(ctx context.Context, callerID, messageID int64, text string) (*WhisperResponse, error) {
	text, err := normalizeMessage(text, s.maxMessageRunes)
	if err != nil {
		return nil, err
	}

	msg, err := s.whispers.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg.SenderID != callerID {
		return nil, fmt.Errorf("%w: only the sender can edit a message", domain.ErrForbidden)
	}
	if msg.IsDeleted {
		return nil, fmt.Errorf("%w: message is deleted", domain.ErrInvalidInput)
	}

	encrypted, err := s.encryptor.Encrypt(text)
	if err != nil {
		return nil, fmt.Errorf("encrypt message: %w", err)
	}
	now := time.Now().UTC()
	if err := s.whispers.UpdateText(ctx, messageID, encrypted, now); err != nil {
		return nil, err
	}
	msg.Message = text
	msg.EditedAt = &now
	return s.toResponse(ctx, msg, nil), nil
}

func (s *WhisperService) Delete(ctx context.Context, callerID, messageID int64) error {
	msg, err := s.whispers.GetByID(ctx, messageID)
	if err != nil {
		return err
	}
	if msg.SenderID != callerID {
		return fmt.Errorf("%w: only the sender can delete a message", domain.ErrForbidden)
	}
	return s.whispers.SoftDelete(ctx, messageID)
}

func (s *WhisperService) AddReaction(ctx context.Context, callerID, messageID int64, reaction string) error {
	if reaction == "" {
		return fmt.Errorf("%w: reaction cannot be empty", domain.ErrInvalidInput)
	}
	msg, err := s.whispers.GetByID(ctx, messageID)
	if err != nil {
		return err
	}
	if msg.IsDeleted {
		return fmt.Errorf("%w: cannot react to a deleted message", domain.ErrInvalidInput)
	}
	if err := s.requireParticipant(ctx, msg.ConversationID, callerID); err != nil {
		return err
	}
	return s.whispers.AddReaction(ctx, messageID, callerID, reaction)
}

func (s *WhisperService) RemoveReaction(ctx context.Context, callerID, messageID int64, reaction string) error {
	msg, err := s.whispers.GetByID(ctx, messageID)
	if err != nil {
		return err
	}
	if err := s.requireParticipant(ctx, msg.ConversationID, callerID); err != nil {
		return err
	}
	return s.whispers.RemoveReaction(ctx, messageID, callerID, reaction)
}

func (s *WhisperService) requireParticipant(ctx context.Context, conversationID, userID int64) error {
	if _, err := s.conversations.GetByID(ctx, conversationID); err != nil {
		return err
	}
	ok, err := s.conversations.IsParticipant(ctx, conversationID, userID)
	if err != nil {
		return fmt.Errorf("check participant: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: not a participant in this conversation", domain.ErrForbidden)
	}
	return nil
}

func (s *WhisperService) toResponse(ctx context.Context, m *domain.WhisperMessage, reactions []*domain.Reaction) *WhisperResponse {
	dto := &WhisperResponse{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		Message:        m.Message,
		IsDeleted:      m.IsDeleted,
		EditedAt:       m.EditedAt,
		CreatedAt:      m.CreatedAt,
		Reactions:      reactions,
	}
	if dto.Reactions == nil {
		dto.Reactions = []*domain.Reaction{}
	}
	if u, err := s.users.GetByID(ctx, m.SenderID); err == nil {
		dto.SenderUsername = u.Username
	}
	return dto
}
