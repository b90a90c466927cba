package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Open opens a SQLite database with the given DSN.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return db, nil
}

// Migrate runs idempotent DDL migrations for the prephub schema on SQLite.
// Timestamps are written from Go so sub-second ordering is preserved.
func Migrate(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY,
			username VARCHAR(50) UNIQUE NOT NULL,
			hashed_password VARCHAR(255) NOT NULL,
			email VARCHAR(100) UNIQUE,
			first_name VARCHAR(100) NOT NULL DEFAULT '',
			last_name VARCHAR(100),
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);`,

		`CREATE TABLE IF NOT EXISTS user_presence (
			user_id INTEGER PRIMARY KEY,
			is_online BOOLEAN NOT NULL DEFAULT 0,
			last_seen DATETIME NOT NULL,
			FOREIGN KEY (user_id) REFERENCES users(id)
		);`,

		`CREATE TABLE IF NOT EXISTS conversations (
			id INTEGER PRIMARY KEY,
			participant_key TEXT NOT NULL,
			is_group BOOLEAN NOT NULL DEFAULT 0,
			group_name VARCHAR(100),
			creator_id INTEGER,
			last_message_at DATETIME NOT NULL,
			created_at DATETIME NOT NULL,
			FOREIGN KEY (creator_id) REFERENCES users(id)
		);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_conversations_direct_key
			ON conversations(participant_key) WHERE is_group = 0;`,

		`CREATE TABLE IF NOT EXISTS conversation_participants (
			user_id INTEGER NOT NULL,
			conversation_id INTEGER NOT NULL,
			joined_at DATETIME NOT NULL,
			PRIMARY KEY (user_id, conversation_id),
			FOREIGN KEY (user_id) REFERENCES users(id),
			FOREIGN KEY (conversation_id) REFERENCES conversations(id)
		);`,

		`CREATE TABLE IF NOT EXISTS chat_messages (
			id INTEGER PRIMARY KEY,
			user_id INTEGER NOT NULL,
			message VARCHAR(1000) NOT NULL,
			is_deleted BOOLEAN NOT NULL DEFAULT 0,
			edited_at DATETIME,
			created_at DATETIME NOT NULL,
			FOREIGN KEY (user_id) REFERENCES users(id)
		);`,

		`CREATE TABLE IF NOT EXISTS whisper_messages (
			id INTEGER PRIMARY KEY,
			conversation_id INTEGER NOT NULL,
			sender_id INTEGER NOT NULL,
			message TEXT NOT NULL,
			is_deleted BOOLEAN NOT NULL DEFAULT 0,
			edited_at DATETIME,
			created_at DATETIME NOT NULL,
			FOREIGN KEY (conversation_id) REFERENCES conversations(id),
			FOREIGN KEY (sender_id) REFERENCES users(id)
		);`,

		`CREATE TABLE IF NOT EXISTS chat_reactions (
			id INTEGER PRIMARY KEY,
			message_id INTEGER NOT NULL,
			user_id INTEGER NOT NULL,
			reaction VARCHAR(20) NOT NULL,
			created_at DATETIME NOT NULL,
			UNIQUE (message_id, user_id, reaction),
			FOREIGN KEY (message_id) REFERENCES chat_messages(id),
			FOREIGN KEY (user_id) REFERENCES users(id)
		);`,
		`CREATE TABLE IF NOT EXISTS whisper_reactions (
			id INTEGER PRIMARY KEY,
			message_id INTEGER NOT NULL,
			user_id INTEGER NOT NULL,
			reaction VARCHAR(20) NOT NULL,
			created_at DATETIME NOT NULL,
			UNIQUE (message_id, user_id, reaction),
			FOREIGN KEY (message_id) REFERENCES whisper_messages(id),
			FOREIGN KEY (user_id) REFERENCES users(id)
		);`,

		`CREATE TABLE IF NOT EXISTS chapter_recommendations (
			id INTEGER PRIMARY KEY,
			user_id INTEGER NOT NULL,
			subject VARCHAR(20) NOT NULL,
			chapter_name VARCHAR(200) NOT NULL,
			status VARCHAR(10) NOT NULL DEFAULT 'pending',
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			FOREIGN KEY (user_id) REFERENCES users(id)
		);`,
		`CREATE TABLE IF NOT EXISTS recommendation_votes (
			recommendation_id INTEGER NOT NULL,
			user_id INTEGER NOT NULL,
			approve BOOLEAN NOT NULL,
			created_at DATETIME NOT NULL,
			PRIMARY KEY (recommendation_id, user_id),
			FOREIGN KEY (recommendation_id) REFERENCES chapter_recommendations(id),
			FOREIGN KEY (user_id) REFERENCES users(id)
		);`,

		`CREATE TABLE IF NOT EXISTS chapters_config (
			id INTEGER PRIMARY KEY,
			physics TEXT NOT NULL,
			chemistry TEXT NOT NULL,
			biology TEXT NOT NULL,
			updated_at DATETIME NOT NULL
		);`,

		`CREATE TABLE IF NOT EXISTS omr_sheets (
			id INTEGER PRIMARY KEY,
			user_id INTEGER NOT NULL,
			name VARCHAR(200) NOT NULL,
			physics TEXT NOT NULL,
			chemistry TEXT NOT NULL,
			biology TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			FOREIGN KEY (user_id) REFERENCES users(id)
		);`,

		`CREATE INDEX IF NOT EXISTS idx_users_username ON users(username);`,
		`CREATE INDEX IF NOT EXISTS idx_presence_online ON user_presence(is_online);`,
		`CREATE INDEX IF NOT EXISTS idx_conversations_last_message ON conversations(last_message_at DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_conv_participants_user ON conversation_participants(user_id);`,
		`CREATE INDEX IF NOT EXISTS idx_conv_participants_conv ON conversation_participants(conversation_id);`,
		`CREATE INDEX IF NOT EXISTS idx_chat_messages_created ON chat_messages(created_at DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_whispers_conv_created ON whisper_messages(conversation_id, created_at DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_recommendations_status ON chapter_recommendations(status);`,
		`CREATE INDEX IF NOT EXISTS idx_sheets_user ON omr_sheets(user_id);`,
		`CREATE INDEX IF NOT EXISTS idx_sheets_created ON omr_sheets(created_at DESC);`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	return nil
}
