package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"prephub/internal/domain"
	"prephub/internal/service"
)

func TestPresenceLiveness(t *testing.T) {
	ctx := context.Background()
	timeout := 2 * time.Second

	t.Run("NoRecordMeansOffline", func(t *testing.T) {
		presence := new(MockPresenceRepo)
		svc := service.NewPresenceService(presence, new(MockUserRepo), timeout)

		presence.On("Get", mock.Anything, int64(1)).Return(nil, domain.ErrNotFound)

		live, err := svc.IsLive(ctx, 1)
		assert.NoError(t, err)
		assert.False(t, live)
	})

	t.Run("RecentHeartbeatIsLive", func(t *testing.T) {
		presence := new(MockPresenceRepo)
		svc := service.NewPresenceService(presence, new(MockUserRepo), timeout)

		presence.On("Get", mock.Anything, int64(1)).Return(&domain.PresenceRecord{
			UserID: 1, IsOnline: true, LastSeen: time.Now(),
		}, nil)

		live, err := svc.IsLive(ctx, 1)
		assert.NoError(t, err)
		assert.True(t, live)
	})

	t.Run("StaleFlagDoesNotCount", func(t *testing.T) {
		presence := new(MockPresenceRepo)
		svc := service.NewPresenceService(presence, new(MockUserRepo), timeout)

		// Flag stuck at true after an unclean disconnect.
		presence.On("Get", mock.Anything, int64(1)).Return(&domain.PresenceRecord{
			UserID: 1, IsOnline: true, LastSeen: time.Now().Add(-timeout - time.Millisecond),
		}, nil)

		live, err := svc.IsLive(ctx, 1)
		assert.NoError(t, err)
		assert.False(t, live)
	})
}

func TestOnlineUsers(t *testing.T) {
	ctx := context.Background()
	timeout := 2 * time.Second

	presence := new(MockPresenceRepo)
	users := new(MockUserRepo)
	svc := service.NewPresenceService(presence, users, timeout)

	now := time.Now()
	presence.On("ListOnline", mock.Anything).Return([]*domain.PresenceRecord{
		{UserID: 1, IsOnline: true, LastSeen: now},
		{UserID: 2, IsOnline: true, LastSeen: now.Add(-time.Minute)}, // stale
	}, nil)
	users.On("List", mock.Anything).Return([]*domain.User{
		{ID: 1, Username: "amit", FirstName: "Amit"},
		{ID: 2, Username: "bina", FirstName: "Bina"},
		{ID: 3, Username: "chandra", FirstName: "Chandra"}, // never heartbeated
	}, nil)

	online, err := svc.OnlineUsers(ctx)
	assert.NoError(t, err)
	assert.Len(t, online, 1)
	assert.Equal(t, int64(1), online[0].ID)
}
