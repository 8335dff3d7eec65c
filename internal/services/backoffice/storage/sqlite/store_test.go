package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/louisbranch/backoffice/internal/services/backoffice/storage"
)

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open(context.Background(), " "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestSnapshotRoundTripAndReplace(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()

	first := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	if err := store.PutSnapshot(ctx, storage.Snapshot{Key: "countries:en", Payload: []byte(`[{"value":"1"}]`), FetchedAt: first}); err != nil {
		t.Fatalf("PutSnapshot() error = %v", err)
	}
	second := first.Add(time.Hour)
	if err := store.PutSnapshot(ctx, storage.Snapshot{Key: "countries:en", Payload: []byte(`[{"value":"2"}]`), FetchedAt: second}); err != nil {
		t.Fatalf("PutSnapshot() replace error = %v", err)
	}

	got, ok, err := store.GetSnapshot(ctx, "countries:en")
	if err != nil || !ok {
		t.Fatalf("GetSnapshot() = %v, %v", ok, err)
	}
	if string(got.Payload) != `[{"value":"2"}]` {
		t.Fatalf("payload = %s", got.Payload)
	}
	if !got.FetchedAt.Equal(second) {
		t.Fatalf("fetched at = %v, want %v", got.FetchedAt, second)
	}
}

func TestSnapshotSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backoffice.db")
	ctx := context.Background()

	store, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := store.PutSnapshot(ctx, storage.Snapshot{Key: "roles:en", Payload: []byte(`[]`)}); err != nil {
		t.Fatalf("PutSnapshot() error = %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer reopened.Close()
	if _, ok, err := reopened.GetSnapshot(ctx, "roles:en"); err != nil || !ok {
		t.Fatalf("GetSnapshot() after reopen = %v, %v", ok, err)
	}
}

func TestGetSnapshotMissing(t *testing.T) {
	store := openTempStore(t)

	_, ok, err := store.GetSnapshot(context.Background(), "cities:9:en")
	if err != nil || ok {
		t.Fatalf("GetSnapshot() = %v, %v; want false, nil", ok, err)
	}
}

func TestPutSnapshotValidation(t *testing.T) {
	store := openTempStore(t)

	if err := store.PutSnapshot(context.Background(), storage.Snapshot{}); err == nil {
		t.Fatal("expected error for empty key")
	}
	var nilStore *Store
	if err := nilStore.PutSnapshot(context.Background(), storage.Snapshot{Key: "x"}); err == nil {
		t.Fatal("expected error for nil store")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := store.PutSnapshot(ctx, storage.Snapshot{Key: "x"}); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func openTempStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "backoffice.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}
