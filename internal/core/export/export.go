// Package export formats stored conversations as plain-text documents.
// It is a pure string-formatting step; saving bytes anywhere is the
// caller's job.
package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/cbroglie/mustache"
	"github.com/holbizmetrics/cortex/internal/core/models"
)

// DefaultHeaderTemplate renders the per-conversation header block.
// Overridable via config so users can reshape exports without a
// rebuild.
const DefaultHeaderTemplate = `# {{title}}

**Platform:** {{platform}}
**Created:** {{created_at}}
**Updated:** {{updated_at}}
**Tags:** {{#has_tags}}{{tags}}{{/has_tags}}{{^has_tags}}none{{/has_tags}}
**Starred:** {{starred}} | **Archived:** {{archived}}
**Messages:** {{message_count}}
`

// notCapturedDisclaimer is appended when only the preview is stored
const notCapturedDisclaimer = "_The full thread was not captured; only the preview above is available._"

// Exporter renders conversations with a configurable header template
type Exporter struct {
	headerTemplate string
}

// New creates an exporter. An empty template selects the default.
func New(headerTemplate string) *Exporter {
	if headerTemplate == "" {
		headerTemplate = DefaultHeaderTemplate
	}
	return &Exporter{headerTemplate: headerTemplate}
}

// Conversation renders one conversation: the header block followed by
// the transcript in sequence order, or the stored preview with an
// explicit disclaimer when no transcript was captured.
func (e *Exporter) Conversation(c models.Conversation, msgs []models.Message) (string, error) {
	header, err := mustache.Render(e.headerTemplate, map[string]interface{}{
		"title":         c.Title,
		"platform":      string(c.Platform),
		"created_at":    formatTime(c.CreatedAt),
		"updated_at":    formatTime(c.UpdatedAt),
		"tags":          strings.Join(c.Tags, ", "),
		"has_tags":      len(c.Tags) > 0,
		"starred":       yesNo(c.IsStarred),
		"archived":      yesNo(c.IsArchived),
		"message_count": c.MessageCount,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render header: %w", err)
	}

	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n")

	if len(msgs) == 0 {
		if c.Preview != "" {
			b.WriteString("> ")
			b.WriteString(c.Preview)
			b.WriteString("\n\n")
		}
		b.WriteString(notCapturedDisclaimer)
		b.WriteString("\n")
		return b.String(), nil
	}

	for _, m := range msgs {
		b.WriteString("\n## ")
		b.WriteString(roleLabel(m.Role))
		b.WriteString("\n\n")
		b.WriteString(m.Content)
		b.WriteString("\n")
	}
	return b.String(), nil
}

// MessageLoader fetches the stored transcript for one conversation
type MessageLoader func(conversationID string) ([]models.Message, error)

// Batch renders several conversations into one document, separated by
// horizontal rules.
func (e *Exporter) Batch(convs []models.Conversation, load MessageLoader) (string, error) {
	var parts []string
	for _, c := range convs {
		msgs, err := load(c.ID)
		if err != nil {
			return "", fmt.Errorf("failed to load messages for %s: %w", c.ID, err)
		}
		doc, err := e.Conversation(c, msgs)
		if err != nil {
			return "", err
		}
		parts = append(parts, doc)
	}
	return strings.Join(parts, "\n---\n\n"), nil
}

func roleLabel(r models.Role) string {
	switch r {
	case models.RoleAssistant:
		return "Assistant"
	default:
		return "User"
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return t.Format("2006-01-02 15:04")
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
