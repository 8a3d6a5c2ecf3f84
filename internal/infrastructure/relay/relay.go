package relay

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/PremHer/kasvarealty-sub001/pkg/events"
)

// Store is the outbox side of the relay.
type Store interface {
	events.OutboxRepository
	Purge(ctx context.Context, cutoff time.Time) (int64, error)
}

// Relay moves committed outbox entries to the broker. Delivery is at least
// once: a crash between publish and mark republishes the batch, and
// consumers dedupe on the event_id header.
type Relay struct {
	store     Store
	publisher events.RawPublisher
	batchSize int
	retention time.Duration
	now       func() time.Time
	logger    *slog.Logger
}

// Option customises a Relay.
type Option func(*Relay)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Relay) { r.now = now }
}

// New creates a relay. A non-positive batchSize falls back to 100.
func New(store Store, publisher events.RawPublisher, batchSize int, retention time.Duration, logger *slog.Logger, opts ...Option) *Relay {
	if batchSize <= 0 {
		batchSize = 100
	}
	r := &Relay{
		store:     store,
		publisher: publisher,
		batchSize: batchSize,
		retention: retention,
		now:       time.Now,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Drain publishes batches until the outbox is empty or a step fails, and
// returns how many entries were relayed.
func (r *Relay) Drain(ctx context.Context) (int, error) {
	total := 0
	for {
		n, err := r.RelayOnce(ctx)
		total += n
		if err != nil || n < r.batchSize {
			return total, err
		}
	}
}

// RelayOnce publishes at most one batch.
func (r *Relay) RelayOnce(ctx context.Context) (int, error) {
	entries, err := r.store.FetchUnpublished(ctx, r.batchSize)
	if err != nil {
		return 0, fmt.Errorf("fetch outbox: %w", err)
	}
	if len(entries) == 0 {
		return 0, nil
	}

	if err := r.publisher.PublishEntries(ctx, entries...); err != nil {
		return 0, fmt.Errorf("publish outbox batch: %w", err)
	}

	ids := make([]uuid.UUID, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}
	if err := r.store.MarkPublished(ctx, ids, r.now()); err != nil {
		return 0, fmt.Errorf("mark outbox published: %w", err)
	}

	r.logger.DebugContext(ctx, "outbox batch relayed", "count", len(entries))
	return len(entries), nil
}

// Purge deletes published entries older than the retention window. A zero
// retention disables purging.
func (r *Relay) Purge(ctx context.Context) (int64, error) {
	if r.retention <= 0 {
		return 0, nil
	}
	n, err := r.store.Purge(ctx, r.now().Add(-r.retention))
	if err != nil {
		return 0, fmt.Errorf("purge outbox: %w", err)
	}
	if n > 0 {
		r.logger.InfoContext(ctx, "outbox purged", "deleted", n)
	}
	return n, nil
}
