package domain

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// User represents a registered student.
type User struct {
	ID             int64     `json:"id"`
	Username       string    `json:"username"`
	HashedPassword string    `json:"-"`
	Email          *string   `json:"email,omitempty"`
	FirstName      string    `json:"first_name"`
	LastName       *string   `json:"last_name,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// PresenceRecord tracks a user's online flag and heartbeat timestamp.
// A missing record means the user has never been seen and counts as offline.
type PresenceRecord struct {
	UserID   int64     `json:"user_id"`
	IsOnline bool      `json:"is_online"`
	LastSeen time.Time `json:"last_seen"`
}

// IsLive reports whether the record should be treated as actually online at
// the given instant. The stored flag alone is not trusted: a client that
// disconnects uncleanly leaves is_online stuck at true, so liveness requires
// a heartbeat within the timeout window.
func (p PresenceRecord) IsLive(now time.Time, timeout time.Duration) bool {
	return p.IsOnline && now.Sub(p.LastSeen) < timeout
}

// Conversation groups private messages between two or more participants.
// Direct (non-group) conversations are structurally identified by their
// participant set; group conversations are distinct per creation event even
// with identical membership.
type Conversation struct {
	ID             int64     `json:"id"`
	ParticipantIDs []int64   `json:"participant_ids"`
	IsGroup        bool      `json:"is_group"`
	GroupName      *string   `json:"group_name,omitempty"`
	CreatorID      *int64    `json:"creator_id,omitempty"`
	LastMessageAt  time.Time `json:"last_message_at"`
	CreatedAt      time.Time `json:"created_at"`
}

// CanonicalParticipants deduplicates and sorts participant ids so that
// structurally equal sets always produce the same slice.
func CanonicalParticipants(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ParticipantKey renders a canonical id slice as the comma-joined lookup key
// stored on the conversation row. Equality on this key is set equality, which
// keeps direct-conversation resolution a plain indexed lookup.
func ParticipantKey(canonical []int64) string {
	parts := make([]string, len(canonical))
	for i, id := range canonical {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}

// ParseParticipantKey is the inverse of ParticipantKey.
func ParseParticipantKey(key string) []int64 {
	if key == "" {
		return nil
	}
	parts := strings.Split(key, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// ChatMessage is a message on the global public channel.
type ChatMessage struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"user_id"`
	Message   string     `json:"message"`
	IsDeleted bool       `json:"is_deleted"`
	EditedAt  *time.Time `json:"edited_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// WhisperMessage is a message scoped to a conversation. Content is stored
// encrypted at rest; repositories see ciphertext only.
type WhisperMessage struct {
	ID             int64      `json:"id"`
	ConversationID int64      `json:"conversation_id"`
	SenderID       int64      `json:"sender_id"`
	Message        string     `json:"message"`
	IsDeleted      bool       `json:"is_deleted"`
	EditedAt       *time.Time `json:"edited_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// Reaction is an emoji attached to a message. The (message, user, reaction)
// triple is unique; adding it twice is a no-op.
type Reaction struct {
	ID        int64     `json:"id"`
	MessageID int64     `json:"message_id"`
	UserID    int64     `json:"user_id"`
	Reaction  string    `json:"reaction"`
	CreatedAt time.Time `json:"created_at"`
}

// RecommendationStatus is the lifecycle state of a chapter recommendation.
type RecommendationStatus string

const (
	RecommendationPending  RecommendationStatus = "pending"
	RecommendationApproved RecommendationStatus = "approved"
	RecommendationRejected RecommendationStatus = "rejected"
)

// ChapterRecommendation is a proposal to add a chapter to the weekly config.
// Approval requires a vote from every registered user; a single rejection is
// final. Votes are a set keyed by user id, so re-voting is a no-op.
type ChapterRecommendation struct {
	ID          int64                `json:"id"`
	UserID      int64                `json:"user_id"`
	Subject     string               `json:"subject"`
	ChapterName string               `json:"chapter_name"`
	Approvals   []int64              `json:"approvals"`
	Rejections  []int64              `json:"rejections"`
	Status      RecommendationStatus `json:"status"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

// ChaptersConfig holds the current week's chapter lists per subject.
type ChaptersConfig struct {
	ID        int64     `json:"id"`
	Physics   []string  `json:"physics"`
	Chemistry []string  `json:"chemistry"`
	Biology   []string  `json:"biology"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ChapterData tracks progress on a single chapter within a sheet.
type ChapterData struct {
	Done               bool `json:"done"`
	Practiced          bool `json:"practiced"`
	QuestionsPracticed int  `json:"questionsPracticed"`
}

// SubjectData groups chapter progress for one subject.
type SubjectData struct {
	Present  int                    `json:"present"`
	Chapters map[string]ChapterData `json:"chapters"`
}

// OmrSheet is one practice-sheet submission.
type OmrSheet struct {
	ID        int64       `json:"id"`
	UserID    int64       `json:"user_id"`
	Name      string      `json:"name"`
	Physics   SubjectData `json:"physics"`
	Chemistry SubjectData `json:"chemistry"`
	Biology   SubjectData `json:"biology"`
	CreatedAt time.Time   `json:"created_at"`
}

// SheetWithUser is an activity-feed row: a sheet joined with its owner.
type SheetWithUser struct {
	OmrSheet
	User *User `json:"user"`
}
