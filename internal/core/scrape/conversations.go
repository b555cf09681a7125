package scrape

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/holbizmetrics/cortex/internal/core/models"
)

const (
	maxTitleLen        = 50
	maxPreviewLen      = 100
	placeholderTitle   = "Untitled Conversation"
	syntheticIDPrefix  = "conv"
	titleSelectors     = `[class*="title"], h3, h4, strong`
	timestampSelectors = `time, [class*="time"], [class*="date"]`
	previewSelector    = `[class*="preview"]`
)

// conversationStrategy is one rung of the selector fallback ladder: a
// pure document -> elements lookup. The ladder runs short-circuit, most
// specific first; partial results are never merged across rungs.
type conversationStrategy struct {
	name string
	find func(doc *goquery.Document) *goquery.Selection
}

var conversationStrategies = []conversationStrategy{
	{
		// Semantic test attributes survive styling rewrites. Message
		// turn containers also carry "conversation" in their test id
		// and must not be mistaken for list items.
		name: "test-id",
		find: func(doc *goquery.Document) *goquery.Selection {
			return doc.Find(`[data-testid*="conversation"]`).Not(`[data-testid*="turn"]`)
		},
	},
	{
		// Anchors with chat-path hrefs inside a navigation landmark
		name: "sidebar-links",
		find: func(doc *goquery.Document) *goquery.Selection {
			sidebar := doc.Find(`nav, aside, [class*="sidebar"]`).First()
			return sidebar.Find(`a[href*="/chat/"]`)
		},
	},
	{
		// Last resort: any anchor that mentions a conversation
		name: "generic-links",
		find: func(doc *goquery.Document) *goquery.Selection {
			return doc.Find(`a[href*="conversation"]`)
		},
	},
}

// ExtractConversations reads the conversation-list DOM and returns
// normalized records in document order. It never fails outright for a
// single item: elements that cannot be parsed are logged and skipped,
// missing fields degrade through per-field fallbacks. Dedup is an
// upsert-time concern of the store, not done here.
func ExtractConversations(doc *goquery.Document, pageURL string) []models.Conversation {
	elements := findConversationElements(doc)
	if elements == nil {
		return nil
	}

	platform := PlatformFromURL(pageURL)
	captured := time.Now()

	var convs []models.Conversation
	elements.Each(func(i int, el *goquery.Selection) {
		conv, err := parseConversationElement(el, platform, captured, i)
		if err != nil {
			log.Printf("scrape: skipping conversation element %d: %v", i, err)
			return
		}
		convs = append(convs, conv)
	})
	return convs
}

func findConversationElements(doc *goquery.Document) *goquery.Selection {
	for _, strategy := range conversationStrategies {
		if sel := strategy.find(doc); sel.Length() > 0 {
			return sel
		}
	}
	return nil
}

// parseConversationElement never returns a partial record: every field
// bottoms out in a placeholder or a best-effort slice of the element's
// text. A panic inside goquery traversal is converted to an error so
// one bad element cannot abort the batch.
func parseConversationElement(el *goquery.Selection, platform models.Platform, captured time.Time, index int) (conv models.Conversation, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during parse: %v", r)
		}
	}()

	href, ok := el.Attr("href")
	if !ok || href == "" {
		// Test-id strategies select wrappers around the anchor
		href, _ = el.Find("a[href]").First().Attr("href")
	}
	id := ConversationIDFromHref(href)
	synthetic := false
	if id == "" {
		// No recoverable identifier: synthesize a session-scoped id.
		// These records may duplicate across sessions, so they are
		// flagged for merge logic downstream.
		id = fmt.Sprintf("%s-%d-%d", syntheticIDPrefix, captured.UnixMilli(), index)
		synthetic = true
	}

	title := extractTitle(el)
	timestamp := extractTimestamp(el, captured)

	return models.Conversation{
		ID:        id,
		Platform:  platform,
		Title:     title,
		Preview:   extractPreview(el, title),
		CreatedAt: timestamp,
		UpdatedAt: timestamp,
		// Corrected once real messages are captured
		MessageCount: 0,
		Synthetic:    synthetic,
	}, nil
}

func extractTitle(el *goquery.Selection) string {
	if titleEl := el.Find(titleSelectors).First(); titleEl.Length() > 0 {
		if title := squashWhitespace(titleEl.Text()); title != "" {
			return title
		}
	}
	if text := squashWhitespace(el.Text()); text != "" {
		return truncate(text, maxTitleLen)
	}
	return placeholderTitle
}

// extractTimestamp is best effort. Per-item timestamps are rarely in
// the markup, so this usually resolves to capture time.
func extractTimestamp(el *goquery.Selection, captured time.Time) time.Time {
	timeEl := el.Find(timestampSelectors).First()
	if timeEl.Length() == 0 {
		return captured
	}
	if dt, ok := timeEl.Attr("datetime"); ok {
		if parsed, err := time.Parse(time.RFC3339, dt); err == nil {
			return parsed
		}
	}
	if parsed, err := time.Parse(time.RFC3339, squashWhitespace(timeEl.Text())); err == nil {
		return parsed
	}
	return captured
}

// extractPreview runs a three-tier fallback: dedicated preview node,
// first message-like child, then the element's own text minus the
// already-extracted title.
func extractPreview(el *goquery.Selection, title string) string {
	if previewEl := el.Find(previewSelector).First(); previewEl.Length() > 0 {
		if preview := squashWhitespace(previewEl.Text()); preview != "" {
			return truncate(preview, maxPreviewLen)
		}
	}
	if p := el.Find("p").First(); p.Length() > 0 {
		if preview := squashWhitespace(p.Text()); preview != "" {
			return truncate(preview, maxPreviewLen)
		}
	}
	full := squashWhitespace(el.Text())
	rest := squashWhitespace(strings.TrimPrefix(full, title))
	if rest == full {
		// Title wasn't a leading slice of the text; don't echo the
		// whole element back as a preview
		return ""
	}
	return truncate(rest, maxPreviewLen)
}

func squashWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
