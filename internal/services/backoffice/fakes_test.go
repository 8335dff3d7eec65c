package backoffice

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	apperrors "github.com/louisbranch/backoffice/internal/platform/errors"
	"github.com/louisbranch/backoffice/internal/platform/requestctx"
	"github.com/louisbranch/backoffice/internal/services/backoffice/apiclient"
	"github.com/louisbranch/backoffice/internal/services/backoffice/lookups"
)

// callLog records upstream and lookup calls in order across fakes.
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, fmt.Sprintf(format, args...))
}

func (l *callLog) list() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

func (l *callLog) count(prefix string) int {
	n := 0
	for _, call := range l.list() {
		if strings.HasPrefix(call, prefix) {
			n++
		}
	}
	return n
}

type fakeAPI struct {
	log *callLog

	mu          sync.Mutex
	lists       map[string]apiclient.List
	listErr     error
	records     map[string]apiclient.Record
	getErr      error
	mutationErr error
	message     string
	uploadErr   map[string]error
	uploadURLs  map[string][]string

	lastQuery   url.Values
	lastPayload apiclient.Payload
	lastEP      apiclient.Endpoint
	lastFlag    bool
}

func newFakeAPI(log *callLog) *fakeAPI {
	return &fakeAPI{
		log:        log,
		lists:      map[string]apiclient.List{},
		records:    map[string]apiclient.Record{},
		uploadErr:  map[string]error{},
		uploadURLs: map[string][]string{},
	}
}

func (f *fakeAPI) List(_ context.Context, ep apiclient.Endpoint, query url.Values) (apiclient.List, error) {
	f.log.add("list %s", ep.Path)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastQuery = query
	if f.listErr != nil {
		return apiclient.List{}, f.listErr
	}
	return f.lists[ep.Path], nil
}

func (f *fakeAPI) Get(_ context.Context, ep apiclient.Endpoint, id string, _ url.Values) (apiclient.Record, error) {
	f.log.add("get %s %s", ep.Path, id)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return apiclient.Record{}, f.getErr
	}
	record, ok := f.records[ep.Path+"/"+id]
	if !ok {
		return apiclient.Record{}, apperrors.WithMetadata(apperrors.CodeNotFound, "missing", map[string]string{"Resource": ep.Path})
	}
	return record, nil
}

func (f *fakeAPI) mutate(op string, ep apiclient.Endpoint, id string, payload apiclient.Payload) (apiclient.Mutation, error) {
	f.log.add("%s %s %s", op, ep.Path, id)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastEP = ep
	f.lastPayload = payload
	if f.mutationErr != nil {
		return apiclient.Mutation{}, f.mutationErr
	}
	return apiclient.Mutation{ID: id, Message: f.message}, nil
}

func (f *fakeAPI) Create(_ context.Context, ep apiclient.Endpoint, payload apiclient.Payload) (apiclient.Mutation, error) {
	return f.mutate("create", ep, "", payload)
}

func (f *fakeAPI) Update(_ context.Context, ep apiclient.Endpoint, id string, payload apiclient.Payload) (apiclient.Mutation, error) {
	return f.mutate("update", ep, id, payload)
}

func (f *fakeAPI) Delete(_ context.Context, ep apiclient.Endpoint, id string) (apiclient.Mutation, error) {
	return f.mutate("delete", ep, id, apiclient.Payload{})
}

func (f *fakeAPI) SetFlag(_ context.Context, ep apiclient.Endpoint, id string, field string, value bool) (apiclient.Mutation, error) {
	f.mu.Lock()
	f.lastFlag = value
	f.mu.Unlock()
	return f.mutate("flag "+field, ep, id, apiclient.Payload{})
}

func (f *fakeAPI) Action(_ context.Context, ep apiclient.Endpoint, action string, id string, payload apiclient.Payload) (apiclient.Mutation, error) {
	return f.mutate("action "+action, ep, id, payload)
}

func (f *fakeAPI) Upload(_ context.Context, ep apiclient.Endpoint, files []apiclient.File) ([]string, error) {
	name := ""
	if len(files) > 0 {
		name = files[0].Name
	}
	f.log.add("upload %s %s", ep.Path, name)
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.uploadErr[name]; err != nil {
		return nil, err
	}
	return f.uploadURLs[name], nil
}

type fakeLookups struct {
	log *callLog

	mu          sync.Mutex
	results     map[string]lookups.Result
	errs        map[string]error
	invalidated []string
}

func newFakeLookups(log *callLog) *fakeLookups {
	return &fakeLookups{log: log, results: map[string]lookups.Result{}, errs: map[string]error{}}
}

func lookupKey(name string, parent string) string {
	if parent == "" {
		return name
	}
	return name + ":" + parent
}

func (f *fakeLookups) Options(_ context.Context, req lookups.Request) (lookups.Result, error) {
	name, parent := req.Kind, req.Parent
	key := lookupKey(name, parent)
	if req.Owner != "" {
		f.log.add("lookup %s user=%s", key, req.Owner)
	} else {
		f.log.add("lookup %s", key)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errs[key]; err != nil {
		return lookups.Result{}, err
	}
	if name == "cities" && parent == "" {
		return lookups.Result{NeedsParent: true}, nil
	}
	return f.results[key], nil
}

func (f *fakeLookups) Invalidate(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated = append(f.invalidated, name)
}

type fakeSessions struct {
	operators map[string]requestctx.Operator
}

func (f fakeSessions) Verify(token string) (requestctx.Operator, error) {
	operator, ok := f.operators[token]
	if !ok {
		return requestctx.Operator{}, apperrors.New(apperrors.CodeUnauthenticated, "unknown session")
	}
	return operator, nil
}
