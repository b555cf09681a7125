package scrape

import (
	"context"
	"time"
)

const (
	// DefaultReadinessTimeout bounds the wait for message containers
	// to appear after navigation to a conversation page
	DefaultReadinessTimeout = 5 * time.Second
	// readinessPollInterval is fixed; only the timeout is caller-tunable
	readinessPollInterval = 200 * time.Millisecond
)

// WaitForMessages polls the source until at least one message-turn
// container is discoverable, accommodating client-rendered content that
// arrives after navigation. It returns false on timeout or
// cancellation; callers treat that as "nothing to scrape now", not an
// error. Transient parse failures during the wait are retried until
// the deadline.
func WaitForMessages(ctx context.Context, src Source, timeout time.Duration) bool {
	if timeout <= 0 {
		timeout = DefaultReadinessTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(readinessPollInterval)
	defer ticker.Stop()

	for {
		doc, err := src.Document(ctx)
		if err == nil && HasMessageContainers(doc) {
			return true
		}

		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
		}
	}
}
