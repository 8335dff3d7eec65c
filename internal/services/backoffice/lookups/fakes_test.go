package lookups

import (
	"context"
	"net/url"
	"sync"

	"github.com/louisbranch/backoffice/internal/services/backoffice/apiclient"
	"github.com/louisbranch/backoffice/internal/services/backoffice/storage"
)

type fetchCall struct {
	path  string
	query url.Values
}

type fakeUpstream struct {
	mu       sync.Mutex
	bodies   map[string]string
	err      error
	calls    []fetchCall
	started  chan struct{}
	release  chan struct{}
	listRows []apiclient.Record
	listCall []fetchCall
}

func newFakeUpstream() *fakeUpstream {
	return &fakeUpstream{bodies: map[string]string{}}
}

func (f *fakeUpstream) Fetch(ctx context.Context, path string, query url.Values) (apiclient.Envelope, error) {
	f.mu.Lock()
	f.calls = append(f.calls, fetchCall{path: path, query: query})
	started, release := f.started, f.release
	err := f.err
	body, ok := f.bodies[path]
	f.mu.Unlock()

	if started != nil {
		select {
		case started <- struct{}{}:
		default:
		}
	}
	if release != nil {
		<-release
	}
	if err != nil {
		return apiclient.Envelope{}, err
	}
	if !ok {
		body = `{"success":true,"data":[]}`
	}
	return apiclient.Decode([]byte(body))
}

func (f *fakeUpstream) List(ctx context.Context, ep apiclient.Endpoint, query url.Values) (apiclient.List, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCall = append(f.listCall, fetchCall{path: ep.Path, query: query})
	if f.err != nil {
		return apiclient.List{}, f.err
	}
	return apiclient.List{Rows: f.listRows, Total: len(f.listRows)}, nil
}

func (f *fakeUpstream) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeUpstream) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

type fakeSnapshotStore struct {
	mu        sync.Mutex
	snapshots map[string]storage.Snapshot
}

func newFakeSnapshotStore() *fakeSnapshotStore {
	return &fakeSnapshotStore{snapshots: map[string]storage.Snapshot{}}
}

func (s *fakeSnapshotStore) PutSnapshot(_ context.Context, snapshot storage.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[snapshot.Key] = snapshot
	return nil
}

func (s *fakeSnapshotStore) GetSnapshot(_ context.Context, key string) (storage.Snapshot, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot, ok := s.snapshots[key]
	return snapshot, ok, nil
}
