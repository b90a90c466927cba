package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"prephub/internal/domain"
	"prephub/internal/security"
)

// ConversationService resolves and lists private conversations.
//
// Direct conversations are identified structurally: the same set of
// participants always maps to the same conversation, regardless of who
// initiates or in what order ids arrive. Group conversations are nominal
// entities and are never deduplicated, even with identical membership.
type ConversationService struct {
	conversations domain.ConversationRepository
	whispers      domain.WhisperRepository
	users         domain.UserRepository
	encryptor     *security.Encryptor
}

func NewConversationService(
	conversations domain.ConversationRepository,
	whispers domain.WhisperRepository,
	users domain.UserRepository,
	encryptor *security.Encryptor,
) *ConversationService {
	return &ConversationService{
		conversations: conversations,
		whispers:      whispers,
		users:         users,
		encryptor:     encryptor,
	}
}

// UserBrief is the participant summary embedded in conversation responses.
type UserBrief struct {
	ID        int64   `json:"id"`
	Username  string  `json:"username"`
	FirstName string  `json:"first_name"`
	LastName  *string `json:"last_name,omitempty"`
}

type ConversationResponse struct {
	ID             int64        `json:"id"`
	IsGroup        bool         `json:"is_group"`
	GroupName      *string      `json:"group_name,omitempty"`
	CreatorID      *int64       `json:"creator_id,omitempty"`
	ParticipantIDs []int64      `json:"participant_ids"`
	Participants   []*UserBrief `json:"participants"`
	LastMessageAt  time.Time    `json:"last_message_at"`
	LastMessage    *string      `json:"last_message,omitempty"`
	LastSenderID   *int64       `json:"last_sender_id,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
}

// GetOrCreateDirect resolves the direct conversation for the caller and the
// given participants, creating it on first use. The returned bool reports
// whether a new conversation was created.
func (s *ConversationService) GetOrCreateDirect(ctx context.Context, callerID int64, participantIDs []int64) (*domain.Conversation, bool, error) {
	ids := append([]int64{callerID}, participantIDs...)
	canonical := domain.CanonicalParticipants(ids)
	if len(canonical) < 2 {
		return nil, false, fmt.Errorf("%w: a conversation needs at least two distinct participants", domain.ErrInvalidInput)
	}
	if err := s.checkUsersExist(ctx, canonical); err != nil {
		return nil, false, err
	}

	key := domain.ParticipantKey(canonical)
	existing, err := s.conversations.FindDirectByKey(ctx, key)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, false, fmt.Errorf("find conversation: %w", err)
	}

	conv := &domain.Conversation{
		ParticipantIDs: canonical,
		IsGroup:        false,
	}
	if err := s.conversations.Create(ctx, conv); err != nil {
		// A concurrent caller may insert the same key between the lookup
		// and Create; the unique index rejects the loser, so re-resolve.
		if existing, findErr := s.conversations.FindDirectByKey(ctx, key); findErr == nil {
			return existing, false, nil
		}
		return nil, false, err
	}
	return conv, true, nil
}

// CreateGroup always creates a fresh conversation. Two groups with the same
// name and members are still two groups.
func (s *ConversationService) CreateGroup(ctx context.Context, creatorID int64, name string, participantIDs []int64) (*domain.Conversation, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: group name is required", domain.ErrInvalidInput)
	}

	ids := append([]int64{creatorID}, participantIDs...)
	canonical := domain.CanonicalParticipants(ids)
	if len(canonical) < 3 {
		return nil, fmt.Errorf("%w: a group needs the creator and at least two other members", domain.ErrInvalidInput)
	}
	if err := s.checkUsersExist(ctx, canonical); err != nil {
		return nil, err
	}

	conv := &domain.Conversation{
		ParticipantIDs: canonical,
		IsGroup:        true,
		GroupName:      &name,
		CreatorID:      &creatorID,
	}
	if err := s.conversations.Create(ctx, conv); err != nil {
		return nil, err
	}
	return conv, nil
}

// GetForUser fetches one conversation, enforcing membership.
func (s *ConversationService) GetForUser(ctx context.Context, conversationID, userID int64) (*domain.Conversation, error) {
	conv, err := s.conversations.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	ok, err := s.conversations.IsParticipant(ctx, conversationID, userID)
	if err != nil {
		return nil, fmt.Errorf("check participant: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: not a participant in this conversation", domain.ErrForbidden)
	}
	return conv, nil
}

// ListForUser returns the caller's conversations ordered by recent activity,
// each with a decrypted preview of the latest visible message.
func (s *ConversationService) ListForUser(ctx context.Context, userID int64) ([]*ConversationResponse, error) {
	convs, err := s.conversations.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	res := make([]*ConversationResponse, 0, len(convs))
	for _, conv := range convs {
		dto, err := s.toResponse(ctx, conv)
		if err != nil {
			return nil, err
		}
		res = append(res, dto)
	}
	return res, nil
}

func (s *ConversationService) toResponse(ctx context.Context, conv *domain.Conversation) (*ConversationResponse, error) {
	dto := &ConversationResponse{
		ID:             conv.ID,
		IsGroup:        conv.IsGroup,
		GroupName:      conv.GroupName,
		CreatorID:      conv.CreatorID,
		ParticipantIDs: conv.ParticipantIDs,
		LastMessageAt:  conv.LastMessageAt,
		CreatedAt:      conv.CreatedAt,
	}

	for _, id := range conv.ParticipantIDs {
		u, err := s.users.GetByID(ctx, id)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("get participant: %w", err)
		}
		dto.Participants = append(dto.Participants, &UserBrief{
			ID:        u.ID,
			Username:  u.Username,
			FirstName: u.FirstName,
			LastName:  u.LastName,
		})
	}

	latest, err := s.whispers.LatestVisible(ctx, conv.ID)
	if errors.Is(err, domain.ErrNotFound) {
		return dto, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest message: %w", err)
	}
	preview := latest.Message
	if dec, err := s.encryptor.Decrypt(latest.Message); err == nil {
		preview = dec
	}
	dto.LastMessage = &preview
	dto.LastSenderID = &latest.SenderID
	return dto, nil
}

func (s *ConversationService) checkUsersExist(ctx context.Context, ids []int64) error {
	for _, id := range ids {
		if _, err := s.users.GetByID(ctx, id); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("%w: user %d does not exist", domain.ErrInvalidInput, id)
			}
			return fmt.Errorf("check user: %w", err)
		}
	}
	return nil
}
