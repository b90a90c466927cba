package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"prephub/internal/domain"
)

// PresenceService answers who is online right now. Clients post heartbeats
// while a tab is open; liveness is decided server-side from heartbeat age so
// a stale is_online flag from a crashed client cannot keep a user "online".
type PresenceService struct {
	presence domain.PresenceRepository
	users    domain.UserRepository
	timeout  time.Duration
	now      func() time.Time
}

func NewPresenceService(presence domain.PresenceRepository, users domain.UserRepository, timeout time.Duration) *PresenceService {
	return &PresenceService{
		presence: presence,
		users:    users,
		timeout:  timeout,
		now:      time.Now,
	}
}

// Heartbeat refreshes the caller's presence record.
func (s *PresenceService) Heartbeat(ctx context.Context, userID int64, isOnline bool) (*domain.PresenceRecord, error) {
	return s.presence.Upsert(ctx, userID, isOnline)
}

// IsLive reports effective liveness for one user. A user with no presence
// record has never connected and counts as offline.
func (s *PresenceService) IsLive(ctx context.Context, userID int64) (bool, error) {
	rec, err := s.presence.Get(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return rec.IsLive(s.now(), s.timeout), nil
}

// LiveSet returns the set of user ids that are effectively online.
func (s *PresenceService) LiveSet(ctx context.Context) (map[int64]bool, error) {
	records, err := s.presence.ListOnline(ctx)
	if err != nil {
		return nil, fmt.Errorf("list presence: %w", err)
	}
	now := s.now()
	live := make(map[int64]bool, len(records))
	for _, rec := range records {
		if rec.IsLive(now, s.timeout) {
			live[rec.UserID] = true
		}
	}
	return live, nil
}

type OnlineUser struct {
	ID        int64   `json:"id"`
	Username  string  `json:"username"`
	FirstName string  `json:"first_name"`
	LastName  *string `json:"last_name,omitempty"`
}

// OnlineUsers returns profile summaries for everyone effectively online.
func (s *PresenceService) OnlineUsers(ctx context.Context) ([]*OnlineUser, error) {
	live, err := s.LiveSet(ctx)
	if err != nil {
		return nil, err
	}
	if len(live) == 0 {
		return []*OnlineUser{}, nil
	}

	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	res := make([]*OnlineUser, 0, len(live))
	for _, u := range users {
		if !live[u.ID] {
			continue
		}
		res = append(res, &OnlineUser{
			ID:        u.ID,
			Username:  u.Username,
			FirstName: u.FirstName,
			LastName:  u.LastName,
		})
	}
	return res, nil
}
