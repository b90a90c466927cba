package postgres

import (
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Open opens a PostgreSQL database using the pgx stdlib driver.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// Migrate runs idempotent DDL migrations for the prephub schema on PostgreSQL.
func Migrate(db *sql.DB) error {
	stmts := []string{
		// Users
		`CREATE TABLE IF NOT EXISTS users (
			id              BIGSERIAL    PRIMARY KEY,
			username        VARCHAR(50)  UNIQUE NOT NULL,
			hashed_password VARCHAR(255) NOT NULL,
			email           VARCHAR(100) UNIQUE,
			first_name      VARCHAR(100) NOT NULL DEFAULT '',
			last_name       VARCHAR(100),
			created_at      TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
			updated_at      TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		)`,

		// Presence, one row per user, upserted by heartbeats
		`CREATE TABLE IF NOT EXISTS user_presence (
			user_id   BIGINT      PRIMARY KEY REFERENCES users(id),
			is_online BOOLEAN     NOT NULL DEFAULT FALSE,
			last_seen TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		// Conversations. participant_key is the canonical sorted id list;
		// uniqueness is only enforced for direct conversations.
		`CREATE TABLE IF NOT EXISTS conversations (
			id              BIGSERIAL    PRIMARY KEY,
			participant_key TEXT         NOT NULL,
			is_group        BOOLEAN      NOT NULL DEFAULT FALSE,
			group_name      VARCHAR(100),
			creator_id      BIGINT       REFERENCES users(id),
			last_message_at TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
			created_at      TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_conversations_direct_key
			ON conversations(participant_key) WHERE is_group = FALSE`,

		`CREATE TABLE IF NOT EXISTS conversation_participants (
			user_id         BIGINT      NOT NULL REFERENCES users(id),
			conversation_id BIGINT      NOT NULL REFERENCES conversations(id),
			joined_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (user_id, conversation_id)
		)`,

		// Global channel messages
		`CREATE TABLE IF NOT EXISTS chat_messages (
			id         BIGSERIAL    PRIMARY KEY,
			user_id    BIGINT       NOT NULL REFERENCES users(id),
			message    VARCHAR(1000) NOT NULL,
			is_deleted BOOLEAN      NOT NULL DEFAULT FALSE,
			edited_at  TIMESTAMPTZ,
			created_at TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		)`,

		// Conversation-scoped messages (content encrypted at rest)
		`CREATE TABLE IF NOT EXISTS whisper_messages (
			id              BIGSERIAL   PRIMARY KEY,
			conversation_id BIGINT      NOT NULL REFERENCES conversations(id),
			sender_id       BIGINT      NOT NULL REFERENCES users(id),
			message         TEXT        NOT NULL,
			is_deleted      BOOLEAN     NOT NULL DEFAULT FALSE,
			edited_at       TIMESTAMPTZ,
			created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS chat_reactions (
			id         BIGSERIAL   PRIMARY KEY,
			message_id BIGINT      NOT NULL REFERENCES chat_messages(id),
			user_id    BIGINT      NOT NULL REFERENCES users(id),
			reaction   VARCHAR(20) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (message_id, user_id, reaction)
		)`,
		`CREATE TABLE IF NOT EXISTS whisper_reactions (
			id         BIGSERIAL   PRIMARY KEY,
			message_id BIGINT      NOT NULL REFERENCES whisper_messages(id),
			user_id    BIGINT      NOT NULL REFERENCES users(id),
			reaction   VARCHAR(20) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (message_id, user_id, reaction)
		)`,

		// Chapter recommendations with votes as a set keyed by user
		`CREATE TABLE IF NOT EXISTS chapter_recommendations (
			id           BIGSERIAL   PRIMARY KEY,
			user_id      BIGINT      NOT NULL REFERENCES users(id),
			subject      VARCHAR(20) NOT NULL,
			chapter_name VARCHAR(200) NOT NULL,
			status       VARCHAR(10) NOT NULL DEFAULT 'pending',
			created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS recommendation_votes (
			recommendation_id BIGINT      NOT NULL REFERENCES chapter_recommendations(id),
			user_id           BIGINT      NOT NULL REFERENCES users(id),
			approve           BOOLEAN     NOT NULL,
			created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (recommendation_id, user_id)
		)`,

		// Weekly chapters config (singleton row)
		`CREATE TABLE IF NOT EXISTS chapters_config (
			id         BIGSERIAL   PRIMARY KEY,
			physics    TEXT        NOT NULL,
			chemistry  TEXT        NOT NULL,
			biology    TEXT        NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		// Practice sheets
		`CREATE TABLE IF NOT EXISTS omr_sheets (
			id         BIGSERIAL    PRIMARY KEY,
			user_id    BIGINT       NOT NULL REFERENCES users(id),
			name       VARCHAR(200) NOT NULL,
			physics    TEXT         NOT NULL,
			chemistry  TEXT         NOT NULL,
			biology    TEXT         NOT NULL,
			created_at TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		)`,

		// Indexes
		`CREATE INDEX IF NOT EXISTS idx_users_username ON users(username)`,
		`CREATE INDEX IF NOT EXISTS idx_presence_online ON user_presence(is_online)`,
		`CREATE INDEX IF NOT EXISTS idx_conversations_last_message ON conversations(last_message_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_conv_participants_user ON conversation_participants(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_conv_participants_conv ON conversation_participants(conversation_id)`,
		`CREATE INDEX IF NOT EXISTS idx_chat_messages_created ON chat_messages(created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_whispers_conv_created ON whisper_messages(conversation_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_recommendations_status ON chapter_recommendations(status)`,
		`CREATE INDEX IF NOT EXISTS idx_sheets_user ON omr_sheets(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_sheets_created ON omr_sheets(created_at DESC)`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w\nSQL: %s", err, stmt)
		}
	}
	return nil
}
