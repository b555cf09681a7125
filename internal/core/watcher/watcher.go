// Package watcher turns snapshot-file changes into refresh cycles.
// A capture helper writes HTML snapshots of the host page into a
// directory; rewrites of a snapshot stand in for DOM mutations, a new
// capture URL stands in for client-side navigation.
package watcher

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/holbizmetrics/cortex/internal/core/scrape"
	"github.com/holbizmetrics/cortex/internal/core/sync"
)

// debounce window for bursts of write events on one snapshot
const settleDelay = 250 * time.Millisecond

// Watcher observes a snapshot directory and triggers orchestrator
// refreshes. It does not poll: it subscribes to filesystem
// notifications and compares the capture location against the
// last-seen one on each event.
type Watcher struct {
	orch         *sync.Orchestrator
	watcher      *fsnotify.Watcher
	watchPath    string
	lastLocation string

	// Stats tracks watcher activity
	Stats WatcherStats
}

// WatcherStats tracks watcher activity
type WatcherStats struct {
	StartTime   time.Time
	Refreshes   int
	Navigations int
	Errors      int
}

// New creates a watcher over a snapshot directory
func New(orch *sync.Orchestrator, watchPath string) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	if _, err := os.Stat(watchPath); err != nil {
		_ = fsWatcher.Close()
		return nil, fmt.Errorf("watch path does not exist: %s", watchPath)
	}

	return &Watcher{
		orch:      orch,
		watcher:   fsWatcher,
		watchPath: watchPath,
		Stats:     WatcherStats{StartTime: time.Now()},
	}, nil
}

// Start watches until the context is cancelled. An initial refresh
// runs over any snapshots already present.
func (w *Watcher) Start(ctx context.Context) error {
	log.Printf("Watching snapshots in %s", w.watchPath)

	if err := w.watcher.Add(w.watchPath); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.watchPath, err)
	}

	w.refreshExisting(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Printf("Watcher shutting down...")
			_ = w.watcher.Close()
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher closed unexpectedly")
			}
			if w.shouldProcessEvent(event) {
				// Let the capture helper finish writing
				time.Sleep(settleDelay)
				w.handleSnapshot(ctx, event.Name)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher error channel closed")
			}
			log.Printf("Watcher error: %v", err)
			w.Stats.Errors++
		}
	}
}

func (w *Watcher) shouldProcessEvent(event fsnotify.Event) bool {
	if !strings.HasSuffix(event.Name, ".html") {
		return false
	}
	return event.Op&fsnotify.Write == fsnotify.Write ||
		event.Op&fsnotify.Create == fsnotify.Create
}

// refreshExisting runs one cycle per snapshot already on disk
func (w *Watcher) refreshExisting(ctx context.Context) {
	entries, err := os.ReadDir(w.watchPath)
	if err != nil {
		log.Printf("Warning: initial scan failed: %v", err)
		return
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".html") {
			continue
		}
		w.handleSnapshot(ctx, filepath.Join(w.watchPath, entry.Name()))
	}
}

func (w *Watcher) handleSnapshot(ctx context.Context, path string) {
	src := scrape.NewFileSource(path, "")

	if loc := src.Location(); loc != "" && loc != w.lastLocation {
		if w.lastLocation != "" {
			log.Printf("Navigation detected: %s -> %s", w.lastLocation, loc)
			w.Stats.Navigations++
		}
		w.lastLocation = loc
	}

	if err := w.orch.Refresh(ctx, src); err != nil {
		// Each refresh is an independent attempt; no retry here
		log.Printf("Refresh failed for %s: %v", path, err)
		w.Stats.Errors++
		return
	}
	w.Stats.Refreshes++
}
