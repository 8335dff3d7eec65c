// Package storage defines persistence contracts for console-side state.
//
// The console owns no business data; it only keeps the last good copy of
// lookup option lists so selects keep working while the upstream is down.
package storage

import (
	"context"
	"time"
)

// Snapshot is the last successful response of one lookup.
type Snapshot struct {
	// Key identifies the lookup and its scope, such as "cities:3:ar".
	Key string
	// Payload is the encoded option list.
	Payload   []byte
	FetchedAt time.Time
}

// SnapshotStore persists lookup snapshots.
type SnapshotStore interface {
	PutSnapshot(ctx context.Context, snapshot Snapshot) error
	// GetSnapshot returns ok=false when no snapshot exists for key.
	GetSnapshot(ctx context.Context, key string) (Snapshot, bool, error)
}

// Store is the composite storage used by the console.
type Store interface {
	SnapshotStore
	Close() error
}
