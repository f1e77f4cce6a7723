// Package store implements the persistence bridge for the wealth ledger.
// The ledger itself is agnostic to durable storage: it exposes a snapshot and
// a subscription, and this package serializes every post-mutation snapshot.
// Implementations include PostgreSQL (source of truth), Redis (read-through
// cache), and in-memory (for testing).
package store

import (
	"context"

	"github.com/MVdu13/finsyamvp-sub000/internal/model"
)

// Store persists full ledger snapshots. A snapshot is the complete ordered
// position collection; SaveSnapshot replaces whatever was stored before.
type Store interface {
	// SaveSnapshot durably replaces the stored snapshot.
	SaveSnapshot(ctx context.Context, positions []model.Position) error

	// LoadSnapshot returns the most recently saved snapshot, or an empty
	// slice when nothing was ever saved.
	LoadSnapshot(ctx context.Context) ([]model.Position, error)
}
