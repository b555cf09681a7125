package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/holbizmetrics/cortex/internal/core/db"
	"github.com/holbizmetrics/cortex/internal/core/sync"
)

const listSnapshot = `<html><head><base href="https://claude.ai/chats"></head><body><nav>
	<a href="/chat/11111111-2222-3333-4444-555555555555">Python unit test for an API function</a>
</nav></body></html>`

func newTestOrchestrator(t *testing.T) (*sync.Orchestrator, *db.DB) {
	t.Helper()
	tmpFile, err := os.CreateTemp("", "cortex-watcher-test-*.db")
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
	return sync.New(store), store
}

// runWatcher starts w and returns a stop function that cancels and
// waits for Start to return
func runWatcher(t *testing.T, w *Watcher) func() {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()
	return func() {
		cancel()
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("Start() error = %v", err)
			}
		case <-time.After(5 * time.Second):
			t.Error("Watcher did not shut down")
		}
	}
}

func TestNew_MissingPath(t *testing.T) {
	orch, _ := newTestOrchestrator(t)
	if _, err := New(orch, filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Error("Expected error for a missing watch path")
	}
}

func TestWatcher_RefreshesExistingSnapshots(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "chats.html"), []byte(listSnapshot), 0644); err != nil {
		t.Fatal(err)
	}

	orch, store := newTestOrchestrator(t)
	w, err := New(orch, dir)
	if err != nil {
		t.Fatal(err)
	}

	stop := runWatcher(t, w)
	time.Sleep(500 * time.Millisecond)
	stop()

	if w.Stats.Refreshes == 0 {
		t.Error("Expected an initial refresh over the existing snapshot")
	}
	convs, err := store.ListConversations()
	if err != nil {
		t.Fatal(err)
	}
	if len(convs) != 1 {
		t.Errorf("Archive has %d conversations, want 1", len(convs))
	}
}

func TestWatcher_PicksUpNewSnapshot(t *testing.T) {
	dir := t.TempDir()

	orch, store := newTestOrchestrator(t)
	w, err := New(orch, dir)
	if err != nil {
		t.Fatal(err)
	}

	stop := runWatcher(t, w)

	time.Sleep(200 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(dir, "chats.html"), []byte(listSnapshot), 0644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(time.Second)
	stop()

	if w.Stats.Refreshes == 0 {
		t.Error("Expected a refresh after the snapshot appeared")
	}
	convs, err := store.ListConversations()
	if err != nil {
		t.Fatal(err)
	}
	if len(convs) != 1 {
		t.Errorf("Archive has %d conversations, want 1", len(convs))
	}
}

func TestWatcher_IgnoresNonSnapshotFiles(t *testing.T) {
	dir := t.TempDir()

	orch, _ := newTestOrchestrator(t)
	w, err := New(orch, dir)
	if err != nil {
		t.Fatal(err)
	}

	stop := runWatcher(t, w)

	time.Sleep(200 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not html"), 0644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(600 * time.Millisecond)
	stop()

	if w.Stats.Refreshes != 0 {
		t.Errorf("Refreshes = %d, want 0 for a non-snapshot write", w.Stats.Refreshes)
	}
}
