package sync

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/holbizmetrics/cortex/internal/core/db"
	"github.com/holbizmetrics/cortex/internal/core/models"
)

const listPageURL = "https://claude.ai/chats"
const convPageURL = "https://claude.ai/chat/11111111-2222-3333-4444-555555555555"
const convPageID = "11111111-2222-3333-4444-555555555555"

const listPageHTML = `<html><body><nav>
	<a href="/chat/11111111-2222-3333-4444-555555555555">Python unit test for an API function</a>
	<a href="/chat/aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee">Weekend plans</a>
</nav></body></html>`

const convPageHTML = `<html><body>
	<div data-testid="conversation-turn"><div data-role="user"></div><p>How do I sort a slice?</p></div>
	<div data-testid="conversation-turn"><div data-role="assistant"></div><p>Use the sort package.</p></div>
</body></html>`

// stubSource serves an in-memory page. set swaps the payload, modeling
// the capture helper rewriting the snapshot as the page hydrates.
type stubSource struct {
	location string

	mu      sync.Mutex
	html    string
	failure error
}

func newStubSource(location, html string) *stubSource {
	return &stubSource{location: location, html: html}
}

func (s *stubSource) set(html string) {
	s.mu.Lock()
	s.html = html
	s.mu.Unlock()
}

func (s *stubSource) fail(err error) {
	s.mu.Lock()
	s.failure = err
	s.mu.Unlock()
}

func (s *stubSource) Location() string { return s.location }

func (s *stubSource) Document(ctx context.Context) (*goquery.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	html, failure := s.html, s.failure
	s.mu.Unlock()
	if failure != nil {
		return nil, failure
	}
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

func newTestStore(t *testing.T) *db.DB {
	t.Helper()
	tmpFile, err := os.CreateTemp("", "cortex-sync-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	_ = tmpFile.Close()
	t.Cleanup(func() { _ = os.Remove(tmpFile.Name()) })

	store, err := db.New(tmpFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRefresh_ListPageCycle(t *testing.T) {
	store := newTestStore(t)

	var notified []models.Conversation
	orch := New(store, WithOnReady(func(convs []models.Conversation) {
		notified = convs
	}))

	src := newStubSource(listPageURL, listPageHTML)
	if err := orch.Refresh(context.Background(), src); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	if orch.State() != StateReady {
		t.Errorf("State = %s, want ready", orch.State())
	}
	if orch.LastError() != nil {
		t.Errorf("LastError = %v, want nil", orch.LastError())
	}

	snap := orch.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("Snapshot has %d conversations, want 2", len(snap))
	}
	if len(notified) != 2 {
		t.Errorf("onReady received %d conversations, want 2", len(notified))
	}

	// The dev-flavored title gets classified, the other does not
	conv, err := store.GetConversation(convPageID)
	if err != nil {
		t.Fatal(err)
	}
	if conv == nil {
		t.Fatal("Scraped conversation not persisted")
	}
	hasDev := false
	for _, tag := range conv.Tags {
		if tag == "Development" {
			hasDev = true
		}
	}
	if !hasDev {
		t.Errorf("Tags = %v, want Development", conv.Tags)
	}
}

func TestRefresh_TagsAreDurable(t *testing.T) {
	store := newTestStore(t)
	orch := New(store)
	src := newStubSource(listPageURL, listPageHTML)

	if err := orch.Refresh(context.Background(), src); err != nil {
		t.Fatal(err)
	}

	// Simulate an earlier keyword table by overwriting stored tags,
	// user flags ride along untouched
	conv, err := store.GetConversation(convPageID)
	if err != nil {
		t.Fatal(err)
	}
	conv.Tags = []string{"Research"}
	if err := store.UpsertConversations([]models.Conversation{*conv}); err != nil {
		t.Fatal(err)
	}

	if err := orch.Refresh(context.Background(), src); err != nil {
		t.Fatal(err)
	}

	conv, err = store.GetConversation(convPageID)
	if err != nil {
		t.Fatal(err)
	}
	if len(conv.Tags) != 1 || conv.Tags[0] != "Research" {
		t.Errorf("Tags = %v, want stored [Research] to survive re-scrape", conv.Tags)
	}
}

func TestRefresh_PreservesStarThroughCycle(t *testing.T) {
	store := newTestStore(t)
	orch := New(store)
	src := newStubSource(listPageURL, listPageHTML)

	if err := orch.Refresh(context.Background(), src); err != nil {
		t.Fatal(err)
	}
	if err := store.SetStarred(convPageID, true); err != nil {
		t.Fatal(err)
	}
	if err := orch.Refresh(context.Background(), src); err != nil {
		t.Fatal(err)
	}

	conv, err := store.GetConversation(convPageID)
	if err != nil {
		t.Fatal(err)
	}
	if !conv.IsStarred {
		t.Error("Star cleared by refresh cycle")
	}
}

func TestRefresh_ConversationPageCapturesTranscript(t *testing.T) {
	store := newTestStore(t)

	// Seed the row the transcript belongs to, as a list-page scrape
	// would have
	if err := store.UpsertConversations([]models.Conversation{{
		ID:        convPageID,
		Platform:  models.PlatformClaude,
		Title:     "Sorting slices",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}}); err != nil {
		t.Fatal(err)
	}

	orch := New(store, WithReadinessTimeout(time.Second))
	src := newStubSource(convPageURL, convPageHTML)

	if err := orch.Refresh(context.Background(), src); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	msgs, err := store.MessagesFor(convPageID)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 2 {
		t.Fatalf("Captured %d messages, want 2", len(msgs))
	}
	if msgs[0].Role != models.RoleUser || msgs[1].Role != models.RoleAssistant {
		t.Errorf("Roles = %s, %s", msgs[0].Role, msgs[1].Role)
	}

	conv, err := store.GetConversation(convPageID)
	if err != nil {
		t.Fatal(err)
	}
	if conv.MessageCount != 2 {
		t.Errorf("MessageCount = %d, want corrected to 2", conv.MessageCount)
	}
}

func TestRefresh_ReadinessTimeoutStillSucceeds(t *testing.T) {
	store := newTestStore(t)
	orch := New(store, WithReadinessTimeout(300*time.Millisecond))

	// Conversation page that never hydrates any message containers
	src := newStubSource(convPageURL, `<html><body><div>loading</div></body></html>`)

	start := time.Now()
	if err := orch.Refresh(context.Background(), src); err != nil {
		t.Fatalf("Refresh() error = %v, want nil on readiness timeout", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Refresh took %v, readiness wait not bounded", elapsed)
	}

	if orch.State() != StateReady {
		t.Errorf("State = %s, want ready", orch.State())
	}
	msgs, err := store.MessagesFor(convPageID)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 0 {
		t.Errorf("Captured %d messages from an unhydrated page", len(msgs))
	}
}

func TestRefresh_LateHydrationCaptured(t *testing.T) {
	store := newTestStore(t)
	orch := New(store, WithReadinessTimeout(2*time.Second))

	src := newStubSource(convPageURL, `<html><body><div>loading</div></body></html>`)
	go func() {
		time.Sleep(350 * time.Millisecond)
		src.set(convPageHTML)
	}()

	if err := orch.Refresh(context.Background(), src); err != nil {
		t.Fatal(err)
	}

	msgs, err := store.MessagesFor(convPageID)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 2 {
		t.Errorf("Captured %d messages after hydration, want 2", len(msgs))
	}
}

func TestRefresh_SourceFailure(t *testing.T) {
	store := newTestStore(t)
	orch := New(store)

	src := newStubSource(listPageURL, listPageHTML)
	boom := errors.New("snapshot unreadable")
	src.fail(boom)

	err := orch.Refresh(context.Background(), src)
	if err == nil {
		t.Fatal("Refresh() = nil, want error")
	}
	if orch.State() != StateFailed {
		t.Errorf("State = %s, want failed", orch.State())
	}
	if !errors.Is(orch.LastError(), boom) {
		t.Errorf("LastError = %v, want wrapped source error", orch.LastError())
	}

	// A later refresh is an independent attempt
	src.fail(nil)
	if err := orch.Refresh(context.Background(), src); err != nil {
		t.Fatalf("Retry Refresh() error = %v", err)
	}
	if orch.State() != StateReady {
		t.Errorf("State after retry = %s, want ready", orch.State())
	}
	if orch.LastError() != nil {
		t.Errorf("LastError after retry = %v, want nil", orch.LastError())
	}
}

func TestRefresh_ConsumesPendingAction(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.PutPendingAction(convPageID); err != nil {
		t.Fatal(err)
	}

	orch := New(store, WithReadinessTimeout(time.Second))
	src := newStubSource(convPageURL, convPageHTML)
	if err := orch.Refresh(context.Background(), src); err != nil {
		t.Fatal(err)
	}

	// Single shot: the marker must be gone
	action, err := store.TakePendingAction(convPageID)
	if err != nil {
		t.Fatal(err)
	}
	if action != nil {
		t.Error("Pending action survived the refresh that should have consumed it")
	}
}

func TestRefresh_SerializedCycles(t *testing.T) {
	store := newTestStore(t)
	orch := New(store)
	src := newStubSource(listPageURL, listPageHTML)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = orch.Refresh(context.Background(), src)
		}()
	}
	wg.Wait()

	if orch.State() != StateReady {
		t.Errorf("State = %s, want ready after queued refreshes", orch.State())
	}
	snap := orch.Snapshot()
	if len(snap) != 2 {
		t.Errorf("Snapshot has %d conversations, want 2", len(snap))
	}
}
