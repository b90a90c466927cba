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

func newAuthService(users *MockUserRepo, presence *MockPresenceRepo) (*service.AuthService, *security.PasswordHasher) {
	tokenSvc := security.NewTokenService("secret", time.Hour)
	hasher := security.NewPasswordHasher(4) // low cost for tests
	return service.NewAuthService(users, presence, tokenSvc, hasher), hasher
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		users := new(MockUserRepo)
		svc, _ := newAuthService(users, new(MockPresenceRepo))

		users.On("GetByUsername", mock.Anything, "newuser").Return(nil, domain.ErrNotFound)
		users.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
			return u.Username == "newuser" && u.HashedPassword != "Password1!"
		})).Return(nil)

		user, err := svc.Register(ctx, service.RegisterInput{
			Username:  "newuser",
			Password:  "Password1!",
			FirstName: "New",
		})
		assert.NoError(t, err)
		assert.Equal(t, "newuser", user.Username)
	})

	t.Run("UsernameTaken", func(t *testing.T) {
		users := new(MockUserRepo)
		svc, _ := newAuthService(users, new(MockPresenceRepo))

		users.On("GetByUsername", mock.Anything, "existing").Return(&domain.User{Username: "existing"}, nil)

		_, err := svc.Register(ctx, service.RegisterInput{
			Username:  "existing",
			Password:  "Password1!",
			FirstName: "Ex",
		})
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("MissingFirstName", func(t *testing.T) {
		svc, _ := newAuthService(new(MockUserRepo), new(MockPresenceRepo))

		_, err := svc.Register(ctx, service.RegisterInput{
			Username: "x",
			Password: "y",
		})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		users := new(MockUserRepo)
		presence := new(MockPresenceRepo)
		svc, hasher := newAuthService(users, presence)

		hashed, _ := hasher.Hash("Password1!")
		users.On("GetByUsername", mock.Anything, "amit").Return(&domain.User{
			ID: 1, Username: "amit", HashedPassword: hashed,
		}, nil)
		presence.On("Upsert", mock.Anything, int64(1), true).Return(&domain.PresenceRecord{UserID: 1, IsOnline: true}, nil)

		resp, err := svc.Login(ctx, service.LoginInput{Username: "amit", Password: "Password1!"})
		assert.NoError(t, err)
		assert.NotEmpty(t, resp.AccessToken)
		assert.Equal(t, "bearer", resp.TokenType)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		users := new(MockUserRepo)
		svc, hasher := newAuthService(users, new(MockPresenceRepo))

		hashed, _ := hasher.Hash("right")
		users.On("GetByUsername", mock.Anything, "amit").Return(&domain.User{
			ID: 1, Username: "amit", HashedPassword: hashed,
		}, nil)

		_, err := svc.Login(ctx, service.LoginInput{Username: "amit", Password: "wrong"})
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("UnknownUser", func(t *testing.T) {
		users := new(MockUserRepo)
		svc, _ := newAuthService(users, new(MockPresenceRepo))

		users.On("GetByUsername", mock.Anything, "ghost").Return(nil, domain.ErrNotFound)

		_, err := svc.Login(ctx, service.LoginInput{Username: "ghost", Password: "x"})
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()

	t.Run("WrongOldPassword", func(t *testing.T) {
		users := new(MockUserRepo)
		svc, hasher := newAuthService(users, new(MockPresenceRepo))

		hashed, _ := hasher.Hash("current")
		users.On("GetByID", mock.Anything, int64(1)).Return(&domain.User{ID: 1, HashedPassword: hashed}, nil)

		err := svc.ChangePassword(ctx, 1, "not-current", "next")
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
		users.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Success", func(t *testing.T) {
		users := new(MockUserRepo)
		svc, hasher := newAuthService(users, new(MockPresenceRepo))

		hashed, _ := hasher.Hash("current")
		users.On("GetByID", mock.Anything, int64(1)).Return(&domain.User{ID: 1, HashedPassword: hashed}, nil)
		users.On("UpdatePassword", mock.Anything, int64(1), mock.Anything).Return(nil)

		assert.NoError(t, svc.ChangePassword(ctx, 1, "current", "next"))
	})
}
