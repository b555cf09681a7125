package db

import (
	"database/sql"
	"fmt"
)

// runMigrations applies database migrations for existing databases.
// Migrations are strictly additive: existing conversation rows are
// never rewritten or dropped by an upgrade.
func (db *DB) runMigrations() error {
	// Migration 1: Add messages table (transcript capture)
	if err := db.migration001AddMessages(); err != nil {
		return fmt.Errorf("migration 001: %w", err)
	}

	// Migration 2: Add pending_actions table (cross-page handoff)
	if err := db.migration002AddPendingActions(); err != nil {
		return fmt.Errorf("migration 002: %w", err)
	}

	return nil
}

// migration001AddMessages creates the messages table if it doesn't exist.
// Earlier databases held only the conversations collection.
func (db *DB) migration001AddMessages() error {
	var tableName string
	err := db.conn.QueryRow(`
		SELECT name FROM sqlite_master
		WHERE type='table' AND name='messages'
	`).Scan(&tableName)

	if err == sql.ErrNoRows {
		// No foreign key on conversation_id: the reference is weak,
		// messages may outlive a re-scrape of their parent. Cascade
		// deletion is handled transactionally in DeleteConversation.
		_, err = db.conn.Exec(`
			CREATE TABLE messages (
				id TEXT PRIMARY KEY,
				conversation_id TEXT NOT NULL,
				role TEXT NOT NULL,
				content TEXT NOT NULL,
				timestamp DATETIME,
				seq INTEGER NOT NULL
			);

			CREATE INDEX idx_messages_conversation_id ON messages(conversation_id);
			CREATE INDEX idx_messages_conversation_seq ON messages(conversation_id, seq);
		`)
		return err
	}

	return err
}

// migration002AddPendingActions creates the pending_actions table if it
// doesn't exist. It holds at most one marker per fixed key.
func (db *DB) migration002AddPendingActions() error {
	var tableName string
	err := db.conn.QueryRow(`
		SELECT name FROM sqlite_master
		WHERE type='table' AND name='pending_actions'
	`).Scan(&tableName)

	if err == sql.ErrNoRows {
		_, err = db.conn.Exec(`
			CREATE TABLE pending_actions (
				key TEXT PRIMARY KEY,
				conversation_id TEXT NOT NULL,
				token TEXT NOT NULL,
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP
			);
		`)
		return err
	}

	return err
}
