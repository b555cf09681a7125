package db

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/holbizmetrics/cortex/internal/core/models"
)

// UpsertConversations writes a scraped batch, insert-or-replace by id.
// The scrape never produces is_starred/is_archived, so both flags are
// carried forward from any existing row before the write (merge-then-
// replace, never a sparse patch). The whole batch is one transaction.
func (db *DB) UpsertConversations(convs []models.Conversation) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return storageErr("upsert conversations", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for i := range convs {
		c := &convs[i]

		var starred, archived bool
		err := tx.QueryRow(`
			SELECT is_starred, is_archived FROM conversations WHERE id = ?
		`, c.ID).Scan(&starred, &archived)
		switch {
		case err == sql.ErrNoRows:
			// New conversation, flags stay at their scraped defaults
		case err != nil:
			return storageErr("upsert conversations", err)
		default:
			// Preserve user-set flags
			c.IsStarred = starred
			c.IsArchived = archived
		}

		tags, err := encodeTags(c.Tags)
		if err != nil {
			return storageErr("upsert conversations", err)
		}

		_, err = tx.Exec(`
			INSERT OR REPLACE INTO conversations (
				id, platform, title, preview, created_at, updated_at,
				message_count, tags, is_starred, is_archived, synthetic
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			c.ID,
			string(c.Platform),
			c.Title,
			c.Preview,
			c.CreatedAt,
			c.UpdatedAt,
			c.MessageCount,
			tags,
			c.IsStarred,
			c.IsArchived,
			c.Synthetic,
		)
		if err != nil {
			return storageErr("upsert conversations", fmt.Errorf("conversation %s: %w", c.ID, err))
		}
	}

	if err := tx.Commit(); err != nil {
		return storageErr("upsert conversations", err)
	}
	return nil
}

// ListConversations returns all stored conversations. Ordering is a
// caller concern.
func (db *DB) ListConversations() ([]models.Conversation, error) {
	rows, err := db.conn.Query(`
		SELECT id, platform, title, COALESCE(preview, ''), created_at, updated_at,
		       message_count, COALESCE(tags, ''), is_starred, is_archived, synthetic
		FROM conversations
	`)
	if err != nil {
		return nil, storageErr("list conversations", err)
	}
	defer func() { _ = rows.Close() }()

	var convs []models.Conversation
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, storageErr("list conversations", err)
		}
		convs = append(convs, c)
	}

	if err := rows.Err(); err != nil {
		return nil, storageErr("list conversations", err)
	}
	return convs, nil
}

// GetConversation returns a single conversation by id, or nil if absent
func (db *DB) GetConversation(id string) (*models.Conversation, error) {
	row := db.conn.QueryRow(`
		SELECT id, platform, title, COALESCE(preview, ''), created_at, updated_at,
		       message_count, COALESCE(tags, ''), is_starred, is_archived, synthetic
		FROM conversations
		WHERE id = ?
	`, id)

	c, err := scanConversation(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("get conversation", err)
	}
	return &c, nil
}

// DeleteConversation removes a conversation and all of its messages in
// one transaction. A partial cascade (conversation gone, orphan
// messages left) would be a correctness violation.
func (db *DB) DeleteConversation(id string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return storageErr("delete conversation", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.Exec(`DELETE FROM messages WHERE conversation_id = ?`, id); err != nil {
		return storageErr("delete conversation", err)
	}
	if _, err := tx.Exec(`DELETE FROM conversations WHERE id = ?`, id); err != nil {
		return storageErr("delete conversation", err)
	}

	if err := tx.Commit(); err != nil {
		return storageErr("delete conversation", err)
	}
	return nil
}

// ClearAll drops both collections atomically
func (db *DB) ClearAll() error {
	tx, err := db.conn.Begin()
	if err != nil {
		return storageErr("clear all", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.Exec(`DELETE FROM messages`); err != nil {
		return storageErr("clear all", err)
	}
	if _, err := tx.Exec(`DELETE FROM conversations`); err != nil {
		return storageErr("clear all", err)
	}

	if err := tx.Commit(); err != nil {
		return storageErr("clear all", err)
	}
	return nil
}

// SetStarred updates the user-owned starred flag for a conversation
func (db *DB) SetStarred(id string, starred bool) error {
	return db.setFlag("is_starred", id, starred)
}

// SetArchived updates the user-owned archived flag for a conversation
func (db *DB) SetArchived(id string, archived bool) error {
	return db.setFlag("is_archived", id, archived)
}

func (db *DB) setFlag(column, id string, value bool) error {
	res, err := db.conn.Exec(
		fmt.Sprintf(`UPDATE conversations SET %s = ? WHERE id = ?`, column),
		value, id,
	)
	if err != nil {
		return storageErr("set "+column, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storageErr("set "+column, err)
	}
	if n == 0 {
		return storageErr("set "+column, fmt.Errorf("conversation %s not found", id))
	}
	return nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanConversation(s scanner) (models.Conversation, error) {
	var c models.Conversation
	var platform, tags string
	err := s.Scan(
		&c.ID,
		&platform,
		&c.Title,
		&c.Preview,
		&c.CreatedAt,
		&c.UpdatedAt,
		&c.MessageCount,
		&tags,
		&c.IsStarred,
		&c.IsArchived,
		&c.Synthetic,
	)
	if err != nil {
		return c, err
	}
	c.Platform = models.Platform(platform)
	c.Tags, err = decodeTags(tags)
	return c, err
}

// encodeTags serializes the ranked tag list. JSON keeps insertion
// order, which downstream consumers display as relevance.
func encodeTags(tags []string) (string, error) {
	if len(tags) == 0 {
		return "", nil
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeTags(raw string) ([]string, error) {
	if raw == "" {
		return nil, nil
	}
	var tags []string
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		return nil, err
	}
	return tags, nil
}
