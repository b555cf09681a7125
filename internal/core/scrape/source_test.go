package scrape

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeSnapshot(t *testing.T, name, html string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(html), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFileSource_ExplicitLocation(t *testing.T) {
	path := writeSnapshot(t, "page.html", `<html><body></body></html>`)
	src := NewFileSource(path, "https://claude.ai/chats")

	if got := src.Location(); got != "https://claude.ai/chats" {
		t.Errorf("Location() = %q", got)
	}
}

func TestFileSource_SniffsLocation(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			"base href",
			`<html><head><base href="https://claude.ai/chat/11111111-2222-3333-4444-555555555555"></head><body></body></html>`,
			"https://claude.ai/chat/11111111-2222-3333-4444-555555555555",
		},
		{
			"canonical link",
			`<html><head><link rel="canonical" href="https://chatgpt.com/c/abc123def456"></head><body></body></html>`,
			"https://chatgpt.com/c/abc123def456",
		},
		{
			"og url",
			`<html><head><meta property="og:url" content="https://gemini.google.com/app"></head><body></body></html>`,
			"https://gemini.google.com/app",
		},
		{
			"nothing to sniff",
			`<html><body></body></html>`,
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeSnapshot(t, "page.html", tt.html)
			src := NewFileSource(path, "")
			if got := src.Location(); got != tt.want {
				t.Errorf("Location() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFileSource_RereadsOnEachCall(t *testing.T) {
	path := writeSnapshot(t, "page.html", `<html><body></body></html>`)
	src := NewFileSource(path, "https://claude.ai/chats")

	doc, err := src.Document(context.Background())
	if err != nil {
		t.Fatalf("Document() error = %v", err)
	}
	if HasMessageContainers(doc) {
		t.Fatal("Expected no containers in the initial snapshot")
	}

	// Capture helper rewrites the snapshot as the page hydrates
	html := `<html><body><div data-testid="conversation-turn"><p>hydrated</p></div></body></html>`
	if err := os.WriteFile(path, []byte(html), 0644); err != nil {
		t.Fatal(err)
	}

	doc, err = src.Document(context.Background())
	if err != nil {
		t.Fatalf("Document() after rewrite error = %v", err)
	}
	if !HasMessageContainers(doc) {
		t.Error("Expected rewritten snapshot to be re-parsed")
	}
}

func TestFileSource_MissingFile(t *testing.T) {
	src := NewFileSource(filepath.Join(t.TempDir(), "absent.html"), "")
	if _, err := src.Document(context.Background()); err == nil {
		t.Error("Expected error for missing snapshot file")
	}
}
