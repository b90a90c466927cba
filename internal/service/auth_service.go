package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"prephub/internal/domain"
	"prephub/internal/security"
)

// AuthService handles registration, login, logout, and profile updates.
type AuthService struct {
	users    domain.UserRepository
	presence domain.PresenceRepository
	tokens   *security.TokenService
	hash     *security.PasswordHasher
}

func NewAuthService(
	users domain.UserRepository,
	presence domain.PresenceRepository,
	tokens *security.TokenService,
	hash *security.PasswordHasher,
) *AuthService {
	return &AuthService{
		users:    users,
		presence: presence,
		tokens:   tokens,
		hash:     hash,
	}
}

type RegisterInput struct {
	Username  string
	Password  string
	FirstName string
	LastName  *string
	Email     *string
}

type LoginInput struct {
	Username string
	Password string
}

type TokenResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	User        *domain.User `json:"user"`
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.FirstName = strings.TrimSpace(in.FirstName)
	if in.Username == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: username and password are required", domain.ErrInvalidInput)
	}
	if in.FirstName == "" {
		return nil, fmt.Errorf("%w: first name is required", domain.ErrInvalidInput)
	}

	if _, err := s.users.GetByUsername(ctx, in.Username); err == nil {
		return nil, fmt.Errorf("%w: username already registered", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("check username: %w", err)
	}

	hashed, err := s.hash.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Username:       in.Username,
		HashedPassword: hashed,
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		Email:          in.Email,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (*TokenResponse, error) {
	user, err := s.users.GetByUsername(ctx, in.Username)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("%w: incorrect username or password", domain.ErrUnauthorized)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	if err := s.hash.Verify(in.Password, user.HashedPassword); err != nil {
		return nil, fmt.Errorf("%w: incorrect username or password", domain.ErrUnauthorized)
	}

	if _, err := s.presence.Upsert(ctx, user.ID, true); err != nil {
		return nil, fmt.Errorf("set online: %w", err)
	}

	token, err := s.tokens.CreateForUser(user.Username)
	if err != nil {
		return nil, fmt.Errorf("create token: %w", err)
	}

	return &TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User:        user,
	}, nil
}

func (s *AuthService) Logout(ctx context.Context, userID int64) error {
	_, err := s.presence.Upsert(ctx, userID, false)
	return err
}

type ProfileUpdateInput struct {
	FirstName *string
	LastName  *string
	Email     *string
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID int64, in ProfileUpdateInput) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if in.FirstName != nil {
		name := strings.TrimSpace(*in.FirstName)
		if name == "" {
			return nil, fmt.Errorf("%w: first name cannot be empty", domain.ErrInvalidInput)
		}
		user.FirstName = name
	}
	if in.LastName != nil {
		user.LastName = in.LastName
	}
	if in.Email != nil {
		user.Email = in.Email
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword string) error {
	if newPassword == "" {
		return fmt.Errorf("%w: new password is required", domain.ErrInvalidInput)
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.hash.Verify(oldPassword, user.HashedPassword); err != nil {
		return fmt.Errorf("%w: incorrect password", domain.ErrUnauthorized)
	}
	hashed, err := s.hash.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.users.UpdatePassword(ctx, userID, hashed)
}

// ResetPassword sets a new password without verifying the old one. Reserved
// for the moderator console.
func (s *AuthService) ResetPassword(ctx context.Context, userID int64, newPassword string) error {
	if newPassword == "" {
		return fmt.Errorf("%w: new password is required", domain.ErrInvalidInput)
	}
	hashed, err := s.hash.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.users.UpdatePassword(ctx, userID, hashed)
}
