package models

import (
	"errors"
	"time"
)

// Platform identifies the host chat site a conversation was captured from
type Platform string

const (
	PlatformClaude  Platform = "claude"
	PlatformChatGPT Platform = "chatgpt"
	PlatformGemini  Platform = "gemini"
)

// MaxTags is the number of category labels a conversation may carry.
// Order within Tags is relevance rank, not alphabetical.
const MaxTags = 3

// Conversation represents one chat thread scraped from the host page.
// It is metadata only until its messages are captured.
type Conversation struct {
	ID           string // derived from the href-embedded identifier when possible
	Platform     Platform
	Title        string
	Preview      string // <= 100 chars, best effort
	CreatedAt    time.Time
	UpdatedAt    time.Time
	MessageCount int      // estimate until real messages are captured
	Tags         []string // <= MaxTags, insertion order = relevance rank
	IsStarred    bool
	IsArchived   bool
	// Synthetic marks records whose id was synthesized because no
	// identifier could be recovered from the element's href. Such ids
	// are session-scoped only and may duplicate across scrapes.
	Synthetic bool
}

// Validate checks if the conversation has required fields
func (c *Conversation) Validate() error {
	if c.ID == "" {
		return errors.New("id is required")
	}
	if c.Platform == "" {
		return errors.New("platform is required")
	}
	return nil
}
