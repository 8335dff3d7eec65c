package backoffice

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	errorsi18n "github.com/louisbranch/backoffice/internal/platform/errors/i18n"
	"github.com/louisbranch/backoffice/internal/platform/i18n/catalog"
	"github.com/louisbranch/backoffice/internal/platform/timeouts"
	"github.com/louisbranch/backoffice/internal/services/backoffice/apiclient"
	"github.com/louisbranch/backoffice/internal/services/backoffice/lookups"
	"github.com/louisbranch/backoffice/internal/services/backoffice/resource"
	"github.com/louisbranch/backoffice/internal/services/backoffice/session"
	backofficesqlite "github.com/louisbranch/backoffice/internal/services/backoffice/storage/sqlite"
	"github.com/louisbranch/backoffice/internal/services/shared/requestmeta"
)

// Config defines the inputs for the console process.
//
// The console owns no business data: records live behind the upstream API
// and only the last good lookup lists are kept locally.
type Config struct {
	HTTPAddr   string
	APIBaseURL string
	// CountriesPath and CitiesPath override the cascade helpers.
	CountriesPath  string
	CitiesPath     string
	RequestTimeout time.Duration
	SessionKey     string
	// DefaultLanguage is served when the browser asks for nothing supported.
	DefaultLanguage string
	PerPage         int
	// DBPath is the SQLite file holding lookup snapshots.
	DBPath string
	// StringsDir overlays the embedded string tables.
	StringsDir          string
	LoginURL            string
	TrustForwardedProto bool
	// HTTPClient carries upstream requests; tracing wraps its transport.
	HTTPClient *http.Client
}

// Server hosts the console.
type Server struct {
	httpAddr    string
	httpServer  *http.Server
	store       *backofficesqlite.Store
	lookups     *lookups.Service
	defaultLang string
}

// NewServer wires the upstream client, lookup cache, sessions and handler.
func NewServer(ctx context.Context, cfg Config) (*Server, error) {
	httpAddr := strings.TrimSpace(cfg.HTTPAddr)
	if httpAddr == "" {
		return nil, errors.New("http address is required")
	}

	client, err := apiclient.New(apiclient.Config{
		BaseURL:    cfg.APIBaseURL,
		HTTPClient: cfg.HTTPClient,
		Timeout:    cfg.RequestTimeout,
	})
	if err != nil {
		return nil, err
	}
	sessions, err := session.NewManager(session.Config{Key: []byte(cfg.SessionKey)})
	if err != nil {
		return nil, err
	}
	bundle, err := catalog.LoadOverlay(cfg.StringsDir)
	if err != nil {
		return nil, fmt.Errorf("load strings: %w", err)
	}
	errorsi18n.UseBundle(bundle)

	store, err := openStore(ctx, cfg.DBPath)
	if err != nil {
		return nil, err
	}
	resources := resource.Default()
	lookupService, err := lookups.New(lookups.Config{
		Upstream: client,
		Registry: lookups.NewRegistry(resources, lookups.Paths{Countries: cfg.CountriesPath, Cities: cfg.CitiesPath}),
		Store:    store,
		TTL:      timeouts.LookupTTL,
		Timeout:  timeouts.Lookup,
	})
	if err != nil {
		closeStore(store)
		return nil, err
	}

	handler, err := NewHandler(HandlerConfig{
		API:             client,
		Lookups:         lookupService,
		Catalog:         resources,
		Bundle:          bundle,
		Sessions:        sessions,
		DefaultLanguage: cfg.DefaultLanguage,
		PerPage:         cfg.PerPage,
		LoginURL:        cfg.LoginURL,
		SchemePolicy:    requestmeta.SchemePolicy{TrustForwardedProto: cfg.TrustForwardedProto},
		RequestTimeout:  cfg.RequestTimeout,
	})
	if err != nil {
		closeStore(store)
		return nil, err
	}

	return &Server{
		httpAddr: httpAddr,
		httpServer: &http.Server{
			Addr:              httpAddr,
			Handler:           handler,
			ReadHeaderTimeout: timeouts.ReadHeader,
		},
		store:       store,
		lookups:     lookupService,
		defaultLang: cfg.DefaultLanguage,
	}, nil
}

// ListenAndServe runs the HTTP server until the context ends. Unscoped
// lookups are warmed in the background.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil {
		return errors.New("backoffice server is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	go s.preloadLookups(ctx)

	serveErr := make(chan error, 1)
	log.Printf("backoffice listening on %s", s.httpAddr)
	go func() {
		serveErr <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}

func (s *Server) preloadLookups(ctx context.Context) {
	lang := s.defaultLang
	if lang == "" {
		lang = catalog.BaseLocale
	}
	if err := s.lookups.Preload(ctx, lang, s.lookups.Registry().Names()...); err != nil {
		log.Printf("preload lookups: %v", err)
	}
}

// Close releases the snapshot store.
func (s *Server) Close() {
	if s == nil {
		return
	}
	closeStore(s.store)
}

func openStore(ctx context.Context, path string) (*backofficesqlite.Store, error) {
	if strings.TrimSpace(path) == "" {
		path = filepath.Join("data", "backoffice.db")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}
	store, err := backofficesqlite.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("open backoffice sqlite store: %w", err)
	}
	return store, nil
}

func closeStore(store *backofficesqlite.Store) {
	if store == nil {
		return
	}
	if err := store.Close(); err != nil {
		log.Printf("close backoffice store: %v", err)
	}
}
