package scrape

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/PuerkitoBio/goquery"
)

// Source supplies the current page DOM. Document re-reads the
// underlying snapshot on every call, so a capture helper rewriting the
// file as the page hydrates behaves like client-side rendering.
type Source interface {
	// Location returns the page URL the snapshot was captured from
	Location() string
	// Document parses and returns the current DOM
	Document(ctx context.Context) (*goquery.Document, error)
}

// FileSource reads a snapshot from an HTML file on disk.
type FileSource struct {
	path string

	mu       sync.Mutex
	location string
	sniffed  bool
}

// NewFileSource creates a snapshot source for path. location is the
// page URL the snapshot was captured from; when empty it is sniffed
// from the document itself (base href, canonical link, og:url).
func NewFileSource(path, location string) *FileSource {
	return &FileSource{path: path, location: location}
}

func (s *FileSource) Document(ctx context.Context) (*goquery.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer func() { _ = f.Close() }()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}

	s.mu.Lock()
	if s.location == "" && !s.sniffed {
		s.location = sniffLocation(doc)
		s.sniffed = true
	}
	s.mu.Unlock()

	return doc, nil
}

func (s *FileSource) Location() string {
	s.mu.Lock()
	loc, sniffed := s.location, s.sniffed
	s.mu.Unlock()
	if loc != "" || sniffed {
		return loc
	}

	// Not parsed yet: sniff now, best effort
	doc, err := s.Document(context.Background())
	if err != nil || doc == nil {
		return ""
	}
	s.mu.Lock()
	loc = s.location
	s.mu.Unlock()
	return loc
}

// sniffLocation recovers the capture URL from markers the capture
// helper or the page itself embeds.
func sniffLocation(doc *goquery.Document) string {
	if href, ok := doc.Find(`base[href]`).First().Attr("href"); ok && href != "" {
		return href
	}
	if href, ok := doc.Find(`link[rel="canonical"]`).First().Attr("href"); ok && href != "" {
		return href
	}
	if content, ok := doc.Find(`meta[property="og:url"]`).First().Attr("content"); ok && content != "" {
		return content
	}
	return ""
}
