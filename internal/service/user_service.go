package service

import (
	"context"
	"fmt"

	"prephub/internal/domain"
)

// UserService backs the study-group directory.
type UserService struct {
	users    domain.UserRepository
	sheets   domain.SheetRepository
	presence *PresenceService
}

func NewUserService(users domain.UserRepository, sheets domain.SheetRepository, presence *PresenceService) *UserService {
	return &UserService{
		users:    users,
		sheets:   sheets,
		presence: presence,
	}
}

// DirectoryEntry is one row of the group directory: the user, how many
// practice sheets they have logged, and whether they are online right now.
type DirectoryEntry struct {
	ID         int64   `json:"id"`
	Username   string  `json:"username"`
	FirstName  string  `json:"first_name"`
	LastName   *string `json:"last_name,omitempty"`
	Email      *string `json:"email,omitempty"`
	SheetCount int     `json:"sheet_count"`
	IsOnline   bool    `json:"is_online"`
}

// UserProfile is a single user together with their submitted sheets.
type UserProfile struct {
	User   *domain.User       `json:"user"`
	Sheets []*domain.OmrSheet `json:"sheets"`
}

func (s *UserService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

// Profile returns a user and every sheet they have submitted.
func (s *UserService) Profile(ctx context.Context, id int64) (*UserProfile, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	sheets, err := s.sheets.ListByUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list sheets: %w", err)
	}
	return &UserProfile{User: user, Sheets: sheets}, nil
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.users.GetByUsername(ctx, username)
}

func (s *UserService) List(ctx context.Context) ([]*domain.User, error) {
	return s.users.List(ctx)
}

// Directory lists every registered user with sheet counts and liveness.
func (s *UserService) Directory(ctx context.Context) ([]*DirectoryEntry, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	counts, err := s.sheets.CountByUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("count sheets: %w", err)
	}
	live, err := s.presence.LiveSet(ctx)
	if err != nil {
		return nil, err
	}

	res := make([]*DirectoryEntry, 0, len(users))
	for _, u := range users {
		res = append(res, &DirectoryEntry{
			ID:         u.ID,
			Username:   u.Username,
			FirstName:  u.FirstName,
			LastName:   u.LastName,
			Email:      u.Email,
			SheetCount: counts[u.ID],
			IsOnline:   live[u.ID],
		})
	}
	return res, nil
}
