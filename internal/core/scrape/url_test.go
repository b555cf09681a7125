package scrape

import (
	"testing"

	"github.com/holbizmetrics/cortex/internal/core/models"
)

func TestConversationIDFromHref(t *testing.T) {
	tests := []struct {
		name string
		href string
		want string
	}{
		{"claude uuid", "https://claude.ai/chat/11111111-2222-3333-4444-555555555555", "11111111-2222-3333-4444-555555555555"},
		{"relative uuid", "/chat/11111111-2222-3333-4444-555555555555", "11111111-2222-3333-4444-555555555555"},
		{"chatgpt short path", "https://chatgpt.com/c/abc123def456", "abc123def456"},
		{"generic conversation path", "/conversation/some-id_42", "some-id_42"},
		{"long path segment", "https://gemini.google.com/app/f1e2d3c4b5a6978812345678", "f1e2d3c4b5a6978812345678"},
		{"no identifier", "https://claude.ai/", ""},
		{"empty href", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ConversationIDFromHref(tt.href); got != tt.want {
				t.Errorf("ConversationIDFromHref(%q) = %q, want %q", tt.href, got, tt.want)
			}
		})
	}
}

func TestConversationIDFromHref_PatternPriority(t *testing.T) {
	// A uuid chat path also matches the generic long-segment pattern;
	// the uuid pattern must win
	href := "https://claude.ai/chat/11111111-2222-3333-4444-555555555555"
	if got := ConversationIDFromHref(href); got != "11111111-2222-3333-4444-555555555555" {
		t.Errorf("Expected uuid pattern to take priority, got %q", got)
	}
}

func TestPlatformFromURL(t *testing.T) {
	tests := []struct {
		url  string
		want models.Platform
	}{
		{"https://claude.ai/chats", models.PlatformClaude},
		{"https://chatgpt.com/c/abc", models.PlatformChatGPT},
		{"https://chat.openai.com/c/abc", models.PlatformChatGPT},
		{"https://gemini.google.com/app", models.PlatformGemini},
		{"https://unknown.example.com/", models.PlatformClaude},
	}

	for _, tt := range tests {
		if got := PlatformFromURL(tt.url); got != tt.want {
			t.Errorf("PlatformFromURL(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestIsConversationPage(t *testing.T) {
	if !IsConversationPage(convPageURL) {
		t.Error("Expected conversation page to be recognized")
	}
	if IsConversationPage("https://claude.ai/") {
		t.Error("Expected list page not to be a conversation page")
	}
}
