package models

import (
	"errors"
	"fmt"
	"time"
)

// Role classifies one conversation turn
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message represents a single turn within a conversation's transcript
type Message struct {
	ID             string // conversation id + sequence index, unique per conversation
	ConversationID string
	Role           Role
	Content        string // cleaned plain text, never empty once stored
	// Timestamp is usually capture time, not send time - the host
	// platforms rarely expose true per-message times.
	Timestamp     time.Time
	SequenceIndex int // zero-based position, defines total order
}

// MessageID derives the stable message id from its conversation and position
func MessageID(conversationID string, sequenceIndex int) string {
	return fmt.Sprintf("%s-%d", conversationID, sequenceIndex)
}

// Validate checks if the message has required fields
func (m *Message) Validate() error {
	if m.ConversationID == "" {
		return errors.New("conversation_id is required")
	}
	if m.Content == "" {
		return errors.New("content is required")
	}
	if m.Role != RoleUser && m.Role != RoleAssistant {
		return errors.New("role must be user or assistant")
	}
	return nil
}
