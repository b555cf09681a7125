package db

import (
	"fmt"

	"github.com/holbizmetrics/cortex/internal/core/models"
)

// UpsertMessages writes a scraped transcript batch, unconditional
// overwrite by id. Messages carry no user-owned fields, so re-scraping
// the same conversation is idempotent. The batch is one transaction.
func (db *DB) UpsertMessages(msgs []models.Message) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return storageErr("upsert messages", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, m := range msgs {
		_, err := tx.Exec(`
			INSERT OR REPLACE INTO messages (
				id, conversation_id, role, content, timestamp, seq
			) VALUES (?, ?, ?, ?, ?, ?)
		`,
			m.ID,
			m.ConversationID,
			string(m.Role),
			m.Content,
			m.Timestamp,
			m.SequenceIndex,
		)
		if err != nil {
			return storageErr("upsert messages", fmt.Errorf("message %s: %w", m.ID, err))
		}
	}

	// Correct the parent's best-effort estimate now that real
	// messages exist for it
	if len(msgs) > 0 {
		convID := msgs[0].ConversationID
		_, err := tx.Exec(`
			UPDATE conversations
			SET message_count = (SELECT COUNT(*) FROM messages WHERE conversation_id = ?)
			WHERE id = ?
		`, convID, convID)
		if err != nil {
			return storageErr("upsert messages", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return storageErr("upsert messages", err)
	}
	return nil
}

// MessagesFor returns a conversation's messages ordered by sequence
func (db *DB) MessagesFor(conversationID string) ([]models.Message, error) {
	rows, err := db.conn.Query(`
		SELECT id, conversation_id, role, content, timestamp, seq
		FROM messages
		WHERE conversation_id = ?
		ORDER BY seq ASC
	`, conversationID)
	if err != nil {
		return nil, storageErr("messages for", err)
	}
	defer func() { _ = rows.Close() }()

	var msgs []models.Message
	for rows.Next() {
		var m models.Message
		var role string
		err := rows.Scan(&m.ID, &m.ConversationID, &role, &m.Content, &m.Timestamp, &m.SequenceIndex)
		if err != nil {
			return nil, storageErr("messages for", err)
		}
		m.Role = models.Role(role)
		msgs = append(msgs, m)
	}

	if err := rows.Err(); err != nil {
		return nil, storageErr("messages for", err)
	}
	return msgs, nil
}

// HasMessagesFor reports whether any messages exist for a conversation
// without materializing the list. Callers use it to decide between
// rendering a stored transcript and triggering a scrape-and-navigate.
func (db *DB) HasMessagesFor(conversationID string) (bool, error) {
	var count int
	err := db.conn.QueryRow(`
		SELECT COUNT(*) FROM messages WHERE conversation_id = ?
	`, conversationID).Scan(&count)
	if err != nil {
		return false, storageErr("has messages for", err)
	}
	return count > 0, nil
}
