package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"prephub/internal/domain"
)

func TestCanonicalParticipants(t *testing.T) {
	t.Run("SortsAndDeduplicates", func(t *testing.T) {
		got := domain.CanonicalParticipants([]int64{7, 3, 7, 1, 3})
		assert.Equal(t, []int64{1, 3, 7}, got)
	})

	t.Run("OrderIndependent", func(t *testing.T) {
		a := domain.CanonicalParticipants([]int64{2, 9, 4})
		b := domain.CanonicalParticipants([]int64{9, 4, 2})
		assert.Equal(t, a, b)
	})

	t.Run("Empty", func(t *testing.T) {
		assert.Empty(t, domain.CanonicalParticipants(nil))
	})
}

func TestParticipantKey(t *testing.T) {
	t.Run("StableAcrossPermutations", func(t *testing.T) {
		k1 := domain.ParticipantKey(domain.CanonicalParticipants([]int64{5, 12, 3}))
		k2 := domain.ParticipantKey(domain.CanonicalParticipants([]int64{12, 3, 5}))
		assert.Equal(t, k1, k2)
		assert.Equal(t, "3,5,12", k1)
	})

	t.Run("SubsetHasDifferentKey", func(t *testing.T) {
		pair := domain.ParticipantKey(domain.CanonicalParticipants([]int64{1, 2}))
		trio := domain.ParticipantKey(domain.CanonicalParticipants([]int64{1, 2, 3}))
		assert.NotEqual(t, pair, trio)
	})

	t.Run("RoundTrip", func(t *testing.T) {
		ids := []int64{4, 8, 15}
		key := domain.ParticipantKey(ids)
		assert.Equal(t, ids, domain.ParseParticipantKey(key))
	})

	t.Run("ParseEmpty", func(t *testing.T) {
		assert.Nil(t, domain.ParseParticipantKey(""))
	})
}

func TestPresenceIsLive(t *testing.T) {
	timeout := 2 * time.Second
	now := time.Now()

	t.Run("FreshHeartbeat", func(t *testing.T) {
		rec := domain.PresenceRecord{IsOnline: true, LastSeen: now.Add(-time.Second)}
		assert.True(t, rec.IsLive(now, timeout))
	})

	t.Run("StaleHeartbeatWithOnlineFlag", func(t *testing.T) {
		// The stored flag still says online, but the heartbeat is too old.
		rec := domain.PresenceRecord{IsOnline: true, LastSeen: now.Add(-timeout - time.Millisecond)}
		assert.False(t, rec.IsLive(now, timeout))
	})

	t.Run("OfflineFlagWins", func(t *testing.T) {
		rec := domain.PresenceRecord{IsOnline: false, LastSeen: now}
		assert.False(t, rec.IsLive(now, timeout))
	})

	t.Run("ExactBoundaryIsOffline", func(t *testing.T) {
		rec := domain.PresenceRecord{IsOnline: true, LastSeen: now.Add(-timeout)}
		assert.False(t, rec.IsLive(now, timeout))
	})
}
