package db

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// pendingActionKey is the fixed marker name. There is at most one
// pending action at a time.
const pendingActionKey = "cortex-pending-scrape"

// PendingAction is the cross-page handoff marker written before a
// programmatic navigation to a not-yet-open conversation.
type PendingAction struct {
	ConversationID string
	Token          string
	CreatedAt      time.Time
}

// PutPendingAction records the marker, replacing any previous one
func (db *DB) PutPendingAction(conversationID string) (*PendingAction, error) {
	action := &PendingAction{
		ConversationID: conversationID,
		Token:          uuid.NewString(),
		CreatedAt:      time.Now(),
	}

	_, err := db.conn.Exec(`
		INSERT OR REPLACE INTO pending_actions (key, conversation_id, token, created_at)
		VALUES (?, ?, ?, ?)
	`, pendingActionKey, action.ConversationID, action.Token, action.CreatedAt)
	if err != nil {
		return nil, storageErr("put pending action", err)
	}
	return action, nil
}

// TakePendingAction reads and clears the marker. It returns the marker
// only when its recorded id matches the freshly-loaded page's
// conversation id; on mismatch the marker is discarded without action,
// so a stale marker can never fire against the wrong conversation.
func (db *DB) TakePendingAction(currentConversationID string) (*PendingAction, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return nil, storageErr("take pending action", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var action PendingAction
	err = tx.QueryRow(`
		SELECT conversation_id, token, created_at
		FROM pending_actions WHERE key = ?
	`, pendingActionKey).Scan(&action.ConversationID, &action.Token, &action.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("take pending action", err)
	}

	if _, err := tx.Exec(`DELETE FROM pending_actions WHERE key = ?`, pendingActionKey); err != nil {
		return nil, storageErr("take pending action", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, storageErr("take pending action", err)
	}

	if action.ConversationID != currentConversationID {
		return nil, nil
	}
	return &action, nil
}
