// Package sync coordinates one full refresh cycle: scrape the page,
// classify tags, merge into the store, read back the canonical
// snapshot. Cycles never interleave; concurrent upserts of one id
// would race on the star/archive preservation in the store.
package sync

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/holbizmetrics/cortex/internal/core/db"
	"github.com/holbizmetrics/cortex/internal/core/models"
	"github.com/holbizmetrics/cortex/internal/core/scrape"
	"github.com/holbizmetrics/cortex/internal/core/tags"
)

// State tracks where the orchestrator is in its refresh cycle
type State string

const (
	StateIdle     State = "idle"
	StateScraping State = "scraping"
	StateMerging  State = "merging"
	StateReady    State = "ready"
	StateFailed   State = "failed"
)

// Orchestrator runs refresh cycles against a single store. Refresh
// calls queue behind an in-flight cycle rather than running
// concurrently; there is no automatic retry or backoff, each refresh
// is an independent attempt.
type Orchestrator struct {
	store            *db.DB
	readinessTimeout time.Duration
	onReady          func([]models.Conversation)

	// runMu serializes whole cycles
	runMu sync.Mutex

	mu       sync.Mutex
	state    State
	snapshot []models.Conversation
	lastErr  error
}

// Option configures an Orchestrator
type Option func(*Orchestrator)

// WithReadinessTimeout overrides the bounded wait for message
// containers on conversation pages
func WithReadinessTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.readinessTimeout = d }
}

// WithOnReady registers a subscriber notified with the fresh canonical
// snapshot at the end of each successful cycle
func WithOnReady(fn func([]models.Conversation)) Option {
	return func(o *Orchestrator) { o.onReady = fn }
}

// New creates an orchestrator over the given store
func New(store *db.DB, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:            store,
		readinessTimeout: scrape.DefaultReadinessTimeout,
		state:            StateIdle,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// State returns the current cycle state
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// LastError returns the error that moved the orchestrator to Failed,
// or nil
func (o *Orchestrator) LastError() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastErr
}

// Snapshot returns a copy of the canonical conversation list read back
// after the last successful cycle.
func (o *Orchestrator) Snapshot() []models.Conversation {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]models.Conversation, len(o.snapshot))
	copy(out, o.snapshot)
	return out
}

// Refresh runs one full cycle over the source. A refresh arriving
// while another is in flight waits its turn; the in-flight cycle is
// never cancelled. Scrape results from a source the caller has since
// navigated away from are still merged: the extraction read a snapshot
// already captured, an accepted staleness window.
func (o *Orchestrator) Refresh(ctx context.Context, src scrape.Source) error {
	o.runMu.Lock()
	defer o.runMu.Unlock()

	o.setState(StateScraping, nil)

	doc, err := src.Document(ctx)
	if err != nil {
		err = fmt.Errorf("scrape failed: %w", err)
		o.setState(StateFailed, err)
		return err
	}

	location := src.Location()
	convs := scrape.ExtractConversations(doc, location)

	// On a single-conversation view, also capture the transcript.
	// A readiness timeout means nothing to scrape yet, not a failure.
	var msgs []models.Message
	if scrape.IsConversationPage(location) {
		if scrape.WaitForMessages(ctx, src, o.readinessTimeout) {
			msgDoc, err := src.Document(ctx)
			if err != nil {
				err = fmt.Errorf("scrape failed: %w", err)
				o.setState(StateFailed, err)
				return err
			}
			msgs = scrape.ExtractMessages(msgDoc, location)
		} else {
			log.Printf("sync: message containers not ready at %s, skipping transcript", location)
		}

		// Consume any handoff marker for this page. A marker recorded
		// for a different conversation is discarded inside the store.
		currentID := scrape.ConversationIDFromHref(location)
		if action, err := o.store.TakePendingAction(currentID); err != nil {
			log.Printf("sync: pending action check failed: %v", err)
		} else if action != nil {
			log.Printf("sync: completing pending scrape for %s", action.ConversationID)
		}
	}

	o.setState(StateMerging, nil)

	if err := o.merge(convs, msgs); err != nil {
		o.setState(StateFailed, err)
		return err
	}

	canonical, err := o.store.ListConversations()
	if err != nil {
		err = fmt.Errorf("read back failed: %w", err)
		o.setState(StateFailed, err)
		return err
	}

	o.mu.Lock()
	o.state = StateReady
	o.lastErr = nil
	o.snapshot = canonical
	o.mu.Unlock()

	if o.onReady != nil {
		o.onReady(canonical)
	}
	return nil
}

// merge classifies and upserts the scraped batch. Tags, once assigned,
// are durable: a conversation whose stored record already carries tags
// keeps them even if the keyword table has since changed. The stored
// message count also survives the fresh zero estimate.
func (o *Orchestrator) merge(convs []models.Conversation, msgs []models.Message) error {
	if len(convs) > 0 {
		existing, err := o.store.ListConversations()
		if err != nil {
			return fmt.Errorf("merge failed: %w", err)
		}
		byID := make(map[string]models.Conversation, len(existing))
		for _, c := range existing {
			byID[c.ID] = c
		}

		for i := range convs {
			c := &convs[i]
			if prior, ok := byID[c.ID]; ok {
				if len(prior.Tags) > 0 {
					c.Tags = prior.Tags
				}
				if c.MessageCount == 0 {
					c.MessageCount = prior.MessageCount
				}
			}
			if len(c.Tags) == 0 {
				c.Tags = tags.ClassifyConversation(c)
			}
		}

		if err := o.store.UpsertConversations(convs); err != nil {
			return fmt.Errorf("merge failed: %w", err)
		}
	}

	if len(msgs) > 0 {
		if err := o.store.UpsertMessages(msgs); err != nil {
			return fmt.Errorf("merge failed: %w", err)
		}
	}
	return nil
}

func (o *Orchestrator) setState(s State, err error) {
	o.mu.Lock()
	o.state = s
	o.lastErr = err
	o.mu.Unlock()
}
