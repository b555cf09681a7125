// Package scrape extracts conversation and message records from captured
// HTML snapshots of AI chat pages. The host markup is unversioned and
// changes without notice, so every lookup is a ladder of selector
// strategies tried most-specific first, degrading to low-confidence
// data instead of failing.
package scrape

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/holbizmetrics/cortex/internal/core/models"
)

// Conversation id patterns tried against hrefs and page URLs, in
// priority order: the 36-char hyphenated identifier is the least
// ambiguous, the bare long path segment the most.
var conversationIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)chat/([a-f0-9-]{36})`),
	regexp.MustCompile(`/c/([a-zA-Z0-9-_]{10,})`),
	regexp.MustCompile(`conversation/([a-zA-Z0-9-_]+)`),
	regexp.MustCompile(`/([a-zA-Z0-9-_]{20,})`),
}

// ConversationIDFromHref extracts a stable conversation id from an href
// or page URL. Returns "" when no pattern matches: callers fall back to
// a synthesized, session-scoped id.
func ConversationIDFromHref(href string) string {
	if href == "" {
		return ""
	}
	for _, pattern := range conversationIDPatterns {
		if m := pattern.FindStringSubmatch(href); m != nil {
			return m[1]
		}
	}
	return ""
}

// PlatformFromURL maps a page URL to the host platform. Unrecognized
// hosts default to claude, matching the primary scrape target.
func PlatformFromURL(pageURL string) models.Platform {
	u, err := url.Parse(pageURL)
	if err != nil {
		return models.PlatformClaude
	}
	host := strings.ToLower(u.Hostname())
	switch {
	case strings.Contains(host, "chatgpt.com"), strings.Contains(host, "openai.com"):
		return models.PlatformChatGPT
	case strings.Contains(host, "gemini.google"):
		return models.PlatformGemini
	default:
		return models.PlatformClaude
	}
}

// IsConversationPage reports whether the URL renders a single
// conversation's transcript rather than just the list view.
func IsConversationPage(pageURL string) bool {
	return ConversationIDFromHref(pageURL) != ""
}
