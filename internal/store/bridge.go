package store

import (
	"context"
	"log/slog"
	"time"

	"github.com/MVdu13/finsyamvp-sub000/internal/ledger"
	"github.com/MVdu13/finsyamvp-sub000/internal/model"
)

// Bridge connects a ledger to durable storage: it subscribes to the ledger
// and writes every post-mutation snapshot through the Store. A failed write
// is logged, never surfaced to the mutating caller — the in-memory ledger
// stays the source of truth and the next mutation retries the full snapshot.
type Bridge struct {
	store   Store
	timeout time.Duration
}

// NewBridge creates a persistence bridge over the given store.
func NewBridge(st Store, timeout time.Duration) *Bridge {
	return &Bridge{store: st, timeout: timeout}
}

// Attach subscribes the bridge to the ledger. The returned function detaches it.
func (b *Bridge) Attach(l *ledger.Ledger) (detach func()) {
	return l.Subscribe(func(snapshot []model.Position) {
		ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
		defer cancel()

		if err := b.store.SaveSnapshot(ctx, snapshot); err != nil {
			slog.Error("snapshot persistence failed",
				"positions", len(snapshot),
				"err", err,
			)
			return
		}
		slog.Debug("snapshot persisted", "positions", len(snapshot))
	})
}
