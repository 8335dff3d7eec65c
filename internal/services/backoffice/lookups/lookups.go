// Package lookups serves the option lists behind select inputs: countries,
// cities scoped by country, parent records and other reference data.
//
// Identical concurrent requests share one upstream call, results are cached
// for a TTL, and the last good list is persisted so a failing upstream
// degrades to a stale (flagged) list instead of an empty select.
package lookups

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	apperrors "github.com/louisbranch/backoffice/internal/platform/errors"
	"github.com/louisbranch/backoffice/internal/platform/timeouts"
	"github.com/louisbranch/backoffice/internal/services/backoffice/apiclient"
	"github.com/louisbranch/backoffice/internal/services/backoffice/storage"
)

const (
	// parentListLimit bounds parent record lists.
	parentListLimit = 500
	preloadWorkers  = 4
	// ownerParam narrows owner-scoped lists, as on resource list pages.
	ownerParam = "user_id"
)

// Option is one select choice.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Request names one option list.
type Request struct {
	Kind   string
	Parent string
	Lang   string
	// Owner narrows owner-scoped kinds to one operator's records. It is
	// ignored for other kinds.
	Owner string
}

// Result is the outcome of one lookup.
type Result struct {
	Options []Option
	// Stale is set when Options come from the persisted snapshot because the
	// upstream failed.
	Stale bool
	// NeedsParent is set when the kind is scoped and no parent was given.
	NeedsParent bool
}

// Upstream is the slice of the API client lookups use.
type Upstream interface {
	Fetch(ctx context.Context, path string, query url.Values) (apiclient.Envelope, error)
	List(ctx context.Context, ep apiclient.Endpoint, query url.Values) (apiclient.List, error)
}

// Config wires a Service.
type Config struct {
	Upstream Upstream
	Registry *Registry
	// Store is optional; without it failures are not masked.
	Store   storage.SnapshotStore
	TTL     time.Duration
	Timeout time.Duration
	Now     func() time.Time
}

type cacheEntry struct {
	options []Option
	expires time.Time
}

// Service resolves lookups.
type Service struct {
	upstream Upstream
	registry *Registry
	store    storage.SnapshotStore
	ttl      time.Duration
	timeout  time.Duration
	now      func() time.Time

	group singleflight.Group
	mu    sync.RWMutex
	cache map[string]cacheEntry
}

// New validates cfg and returns a Service.
func New(cfg Config) (*Service, error) {
	if cfg.Upstream == nil {
		return nil, fmt.Errorf("lookup upstream is required")
	}
	if cfg.Registry == nil {
		return nil, fmt.Errorf("lookup registry is required")
	}
	s := &Service{
		upstream: cfg.Upstream,
		registry: cfg.Registry,
		store:    cfg.Store,
		ttl:      cfg.TTL,
		timeout:  cfg.Timeout,
		now:      cfg.Now,
		cache:    map[string]cacheEntry{},
	}
	if s.ttl <= 0 {
		s.ttl = timeouts.LookupTTL
	}
	if s.timeout <= 0 {
		s.timeout = timeouts.Lookup
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s, nil
}

// Registry returns the lookup registry.
func (s *Service) Registry() *Registry {
	return s.registry
}

// Options resolves the requested lookup, scoped by parent when the kind needs
// one and by owner when the kind lists owner-scoped records.
func (s *Service) Options(ctx context.Context, req Request) (Result, error) {
	kind, ok := s.registry.Kind(req.Kind)
	if !ok {
		return Result{}, apperrors.WithMetadata(apperrors.CodeNotFound, "unknown lookup "+req.Kind, map[string]string{"Resource": req.Kind})
	}
	parent := strings.TrimSpace(req.Parent)
	if kind.NeedsParent() && parent == "" {
		return Result{NeedsParent: true}, nil
	}
	owner := ""
	if kind.OwnerScoped {
		owner = strings.TrimSpace(req.Owner)
	}
	lang := req.Lang
	key := cacheKey(kind.Name, parent, lang, owner)
	if options, ok := s.cached(key); ok {
		return Result{Options: options}, nil
	}

	value, err, _ := s.group.Do(key, func() (any, error) {
		if options, ok := s.cached(key); ok {
			return options, nil
		}
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()
		options, err := s.fetch(fetchCtx, kind, parent, lang, owner)
		if err != nil {
			return nil, err
		}
		s.remember(fetchCtx, key, options)
		return options, nil
	})
	if err == nil {
		return Result{Options: value.([]Option)}, nil
	}

	if snapshot, ok := s.snapshot(ctx, key); ok {
		log.Printf("lookup %s: serving stale snapshot: %v", key, err)
		return Result{Options: snapshot, Stale: true}, nil
	}
	return Result{}, err
}

// Preload resolves every unscoped lookup in names concurrently so the first
// form render hits a warm cache. Kinds scoped by a parent or by the
// operator are skipped.
func (s *Service) Preload(ctx context.Context, lang string, names ...string) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(preloadWorkers)
	for _, name := range names {
		kind, ok := s.registry.Kind(name)
		if !ok || kind.NeedsParent() || kind.OwnerScoped {
			continue
		}
		g.Go(func() error {
			result, err := s.Options(gctx, Request{Kind: kind.Name, Lang: lang})
			if err != nil {
				return fmt.Errorf("preload %s: %w", kind.Name, err)
			}
			if result.Stale {
				log.Printf("preload %s: upstream unavailable, using snapshot", kind.Name)
			}
			return nil
		})
	}
	return g.Wait()
}

// Invalidate drops cached lists of the named kind, such as parents.vendors
// after a vendor is created.
func (s *Service) Invalidate(name string) {
	prefix := strings.TrimSpace(name) + ":"
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.cache {
		if strings.HasPrefix(key, prefix) {
			delete(s.cache, key)
		}
	}
}

func (s *Service) fetch(ctx context.Context, kind Kind, parent string, lang string, owner string) ([]Option, error) {
	query := url.Values{}
	if lang != "" {
		query.Set("lang", lang)
	}
	if kind.NeedsParent() {
		query.Set(kind.ParentParam, parent)
	}
	if owner != "" {
		query.Set(ownerParam, owner)
	}

	var rows []apiclient.Record
	if kind.Endpoint != nil {
		query.Set("limit", fmt.Sprint(parentListLimit))
		list, err := s.upstream.List(ctx, *kind.Endpoint, query)
		if err != nil {
			return nil, err
		}
		rows = list.Rows
	} else {
		env, err := s.upstream.Fetch(ctx, kind.Path, query)
		if err != nil {
			return nil, err
		}
		rows = env.Rows()
	}

	valuePath := kind.Value
	if valuePath == "" {
		valuePath = "id"
	}
	options := make([]Option, 0, len(rows))
	for _, row := range rows {
		value := strings.TrimSpace(row.String(valuePath))
		if value == "" {
			continue
		}
		label := value
		if kind.Label != nil {
			if text := strings.TrimSpace(kind.Label(row)); text != "" {
				label = text
			}
		}
		options = append(options, Option{Value: value, Label: label})
	}
	return options, nil
}

func (s *Service) cached(key string) ([]Option, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.cache[key]
	if !ok || !s.now().Before(entry.expires) {
		return nil, false
	}
	return entry.options, true
}

func (s *Service) remember(ctx context.Context, key string, options []Option) {
	s.mu.Lock()
	s.cache[key] = cacheEntry{options: options, expires: s.now().Add(s.ttl)}
	s.mu.Unlock()

	if s.store == nil {
		return
	}
	payload, err := json.Marshal(options)
	if err != nil {
		log.Printf("lookup %s: encode snapshot: %v", key, err)
		return
	}
	if err := s.store.PutSnapshot(ctx, storage.Snapshot{Key: key, Payload: payload, FetchedAt: s.now()}); err != nil {
		log.Printf("lookup %s: save snapshot: %v", key, err)
	}
}

func (s *Service) snapshot(ctx context.Context, key string) ([]Option, bool) {
	if s.store == nil {
		return nil, false
	}
	snap, ok, err := s.store.GetSnapshot(context.WithoutCancel(ctx), key)
	if err != nil {
		log.Printf("lookup %s: load snapshot: %v", key, err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var options []Option
	if err := json.Unmarshal(snap.Payload, &options); err != nil {
		log.Printf("lookup %s: decode snapshot: %v", key, err)
		return nil, false
	}
	return options, true
}

// cacheKey also names the persisted snapshot. Unscoped keys stay
// kind:parent:lang.
func cacheKey(kind string, parent string, lang string, owner string) string {
	key := kind + ":" + parent + ":" + lang
	if owner != "" {
		key += ":user=" + owner
	}
	return key
}
