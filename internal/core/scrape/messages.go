package scrape

import (
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/holbizmetrics/cortex/internal/core/models"
)

// Message-turn container selectors, most specific first. The final
// rung in findMessageContainers falls back to generic "group"
// structural classes under the main landmark.
var messageContainerSelectors = []string{
	`[data-testid="conversation-turn"]`,
	`div[class*="ConversationTurn"]`,
	`div[class*="message-"]`,
	`div[data-is-streaming]`,
	`div.prose`,
	`article`,
}

// Content-area selectors tried before falling back to a scrubbed clone
// of the whole container.
var messageContentSelectors = []string{
	`.prose`,
	`[class*="message-content"]`,
	`[class*="MessageContent"]`,
	`div[dir="auto"]`,
	`p`,
}

// UI chrome that leaks into naive text extraction. Anchored: a bare
// action label, not prose that happens to contain the word.
var uiChromePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^Copy$`),
	regexp.MustCompile(`(?i)^Edit$`),
	regexp.MustCompile(`(?i)^Retry$`),
	regexp.MustCompile(`^\d+\s*/\s*\d+$`),
}

// ExtractMessages reads a single-conversation transcript page and
// returns per-turn records in document order. The conversation id is
// derived from the page URL; when none can be derived there is nothing
// to attribute the turns to and extraction aborts with an empty slice.
// Containers whose content is empty after cleaning are dropped and do
// not occupy a sequence slot: indices are dense over retained messages.
func ExtractMessages(doc *goquery.Document, pageURL string) []models.Message {
	conversationID := ConversationIDFromHref(pageURL)
	if conversationID == "" {
		log.Printf("scrape: no conversation id in %q, skipping message extraction", pageURL)
		return nil
	}

	containers := findMessageContainers(doc)
	if containers == nil {
		return nil
	}

	captured := time.Now()
	var msgs []models.Message
	containers.Each(func(_ int, container *goquery.Selection) {
		content := extractMessageContent(container)
		if content == "" {
			return
		}
		seq := len(msgs)
		msgs = append(msgs, models.Message{
			ID:             models.MessageID(conversationID, seq),
			ConversationID: conversationID,
			Role:           detectRole(container),
			Content:        content,
			// Capture time, not send time: the platforms don't
			// expose per-message timestamps
			Timestamp:     captured,
			SequenceIndex: seq,
		})
	})
	return msgs
}

// HasMessageContainers reports whether any message-turn container is
// currently discoverable. The readiness gate polls this.
func HasMessageContainers(doc *goquery.Document) bool {
	return findMessageContainers(doc) != nil
}

func findMessageContainers(doc *goquery.Document) *goquery.Selection {
	for _, selector := range messageContainerSelectors {
		if sel := doc.Find(selector); sel.Length() > 0 {
			return sel
		}
	}

	// Last resort: structural grouping under the main content area
	main := doc.Find("main").First()
	if main.Length() == 0 {
		main = doc.Find("body").First()
	}
	if groups := main.Find(`div[class*="group"]`); groups.Length() > 0 {
		return groups
	}
	return nil
}

// detectRole votes across several signals in precedence order:
// explicit role attributes and classes, role keywords anywhere in the
// container markup, then role-indicating avatar alt text. Defaulting
// to user when every signal is absent is a known weak heuristic kept
// from the source behavior; correct handling of ambiguous containers
// is unspecified.
func detectRole(container *goquery.Selection) models.Role {
	if container.Find(`[data-role="user"]`).Length() > 0 || container.HasClass("human-message") {
		return models.RoleUser
	}
	if container.Find(`[data-role="assistant"]`).Length() > 0 {
		return models.RoleAssistant
	}

	markup, err := goquery.OuterHtml(container)
	if err == nil {
		markup = strings.ToLower(markup)
		if strings.Contains(markup, "human") || strings.Contains(markup, "user") {
			return models.RoleUser
		}
		if strings.Contains(markup, "assistant") || strings.Contains(markup, "claude") ||
			strings.Contains(markup, "ai-message") {
			return models.RoleAssistant
		}
	}

	if container.Find(`img[alt*="Claude"], img[alt*="AI"]`).Length() > 0 {
		return models.RoleAssistant
	}
	if container.Find(`img[alt*="User"], img[alt*="You"]`).Length() > 0 {
		return models.RoleUser
	}

	return models.RoleUser
}

func extractMessageContent(container *goquery.Selection) string {
	for _, selector := range messageContentSelectors {
		if contentEl := container.Find(selector).First(); contentEl.Length() > 0 {
			if content := cleanContent(contentEl.Text()); content != "" {
				return content
			}
		}
	}

	// Fallback: scrub a clone of the full container so interactive
	// and icon elements don't leak into the text
	clone := container.Clone()
	clone.Find(`button, svg, [role="button"], [class*="icon"]`).Remove()
	return cleanContent(clone.Text())
}

func cleanContent(text string) string {
	text = squashWhitespace(text)
	for _, pattern := range uiChromePatterns {
		text = pattern.ReplaceAllString(text, "")
	}
	return strings.TrimSpace(text)
}
