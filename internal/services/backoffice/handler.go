package backoffice

import (
	"context"
	"embed"
	"errors"
	"io/fs"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/louisbranch/backoffice/internal/platform/i18n/catalog"
	"github.com/louisbranch/backoffice/internal/platform/requestctx"
	"github.com/louisbranch/backoffice/internal/platform/timeouts"
	"github.com/louisbranch/backoffice/internal/services/backoffice/apiclient"
	"github.com/louisbranch/backoffice/internal/services/backoffice/authz"
	"github.com/louisbranch/backoffice/internal/services/backoffice/listing"
	"github.com/louisbranch/backoffice/internal/services/backoffice/lookups"
	dashboardmodule "github.com/louisbranch/backoffice/internal/services/backoffice/module/dashboard"
	lookupsmodule "github.com/louisbranch/backoffice/internal/services/backoffice/module/lookups"
	resourcesmodule "github.com/louisbranch/backoffice/internal/services/backoffice/module/resources"
	"github.com/louisbranch/backoffice/internal/services/backoffice/resource"
	"github.com/louisbranch/backoffice/internal/services/backoffice/routepath"
	"github.com/louisbranch/backoffice/internal/services/shared/httpx"
	"github.com/louisbranch/backoffice/internal/services/shared/i18nhttp"
	"github.com/louisbranch/backoffice/internal/services/shared/requestmeta"
)

//go:embed static
var staticFiles embed.FS

// API is the upstream surface the console handlers use.
type API interface {
	List(ctx context.Context, ep apiclient.Endpoint, query url.Values) (apiclient.List, error)
	Get(ctx context.Context, ep apiclient.Endpoint, id string, query url.Values) (apiclient.Record, error)
	Create(ctx context.Context, ep apiclient.Endpoint, payload apiclient.Payload) (apiclient.Mutation, error)
	Update(ctx context.Context, ep apiclient.Endpoint, id string, payload apiclient.Payload) (apiclient.Mutation, error)
	Delete(ctx context.Context, ep apiclient.Endpoint, id string) (apiclient.Mutation, error)
	SetFlag(ctx context.Context, ep apiclient.Endpoint, id string, field string, value bool) (apiclient.Mutation, error)
	Action(ctx context.Context, ep apiclient.Endpoint, action string, id string, payload apiclient.Payload) (apiclient.Mutation, error)
	Upload(ctx context.Context, ep apiclient.Endpoint, files []apiclient.File) ([]string, error)
}

// LookupService resolves select options.
type LookupService interface {
	Options(ctx context.Context, req lookups.Request) (lookups.Result, error)
	Invalidate(name string)
}

// SessionVerifier turns a session token into the request operator.
type SessionVerifier interface {
	Verify(token string) (requestctx.Operator, error)
}

// HandlerConfig wires a console Handler.
type HandlerConfig struct {
	API      API
	Lookups  LookupService
	Catalog  *resource.Catalog
	Bundle   *catalog.Bundle
	Sessions SessionVerifier
	// DefaultLanguage is used when the browser asks for nothing supported.
	DefaultLanguage string
	PerPage         int
	// LoginURL receives operators without a valid session.
	LoginURL     string
	SchemePolicy requestmeta.SchemePolicy
	// RequestTimeout caps the upstream work of one console request.
	RequestTimeout time.Duration
	// Static overrides the embedded stylesheet directory.
	Static fs.FS
}

// Handler routes console requests.
type Handler struct {
	api            API
	lookups        LookupService
	catalog        *resource.Catalog
	bundle         *catalog.Bundle
	sessions       SessionVerifier
	negotiator     *i18nhttp.Negotiator
	defaultLang    string
	perPage        int
	loginURL       string
	policy         requestmeta.SchemePolicy
	requestTimeout time.Duration
	static         fs.FS
}

// NewHandler builds the HTTP handler for the console.
func NewHandler(cfg HandlerConfig) (http.Handler, error) {
	h, err := newHandler(cfg)
	if err != nil {
		return nil, err
	}
	return h.routes(), nil
}

func newHandler(cfg HandlerConfig) (*Handler, error) {
	if cfg.API == nil {
		return nil, errors.New("api client is required")
	}
	if cfg.Lookups == nil {
		return nil, errors.New("lookup service is required")
	}
	if cfg.Sessions == nil {
		return nil, errors.New("session verifier is required")
	}
	bundle := cfg.Bundle
	if bundle == nil {
		bundle = catalog.Default()
	}
	resources := cfg.Catalog
	if resources == nil {
		resources = resource.Default()
	}
	perPage := cfg.PerPage
	if perPage <= 0 {
		perPage = listing.DefaultPerPage
	}
	loginURL := strings.TrimSpace(cfg.LoginURL)
	if loginURL == "" {
		loginURL = routepath.Login
	}
	requestTimeout := cfg.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = timeouts.APIRequest
	}
	static := cfg.Static
	if static == nil {
		sub, err := fs.Sub(staticFiles, "static")
		if err != nil {
			return nil, err
		}
		static = sub
	}
	negotiator := i18nhttp.NewNegotiator(bundle, cfg.DefaultLanguage)
	defaultLang := catalog.BaseLocale
	if tag, ok := negotiator.Parse(cfg.DefaultLanguage); ok {
		defaultLang = tag.String()
	}
	return &Handler{
		api:            cfg.API,
		lookups:        cfg.Lookups,
		catalog:        resources,
		bundle:         bundle,
		sessions:       cfg.Sessions,
		negotiator:     negotiator,
		defaultLang:    defaultLang,
		perPage:        perPage,
		loginURL:       loginURL,
		policy:         cfg.SchemePolicy,
		requestTimeout: requestTimeout,
		static:         static,
	}, nil
}

// routes wires the HTTP routes for the console handler.
func (h *Handler) routes() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET "+routepath.StaticPrefix, http.StripPrefix(routepath.StaticPrefix, http.FileServerFS(h.static)))
	mux.HandleFunc("GET "+routepath.Healthz, h.handleHealthz)
	mux.HandleFunc("GET "+routepath.Login, h.handleLogin)
	dashboardmodule.RegisterRoutes(mux, newDashboardModuleService(h))
	resourcesmodule.RegisterRoutes(mux, newResourcesModuleService(h))
	lookupsmodule.RegisterRoutes(mux, newLookupsModuleService(h))
	return httpx.Chain(mux,
		httpx.RecoverPanic(),
		httpx.RequestID(),
		h.negotiator.Middleware,
		h.requireOperator,
	)
}

func (h *Handler) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) definition(res string) (resource.Definition, bool) {
	return h.catalog.Lookup(strings.TrimSpace(res))
}

// language returns the negotiated UI language of r.
func (h *Handler) language(r *http.Request) string {
	if lang := requestctx.LanguageFromContext(r.Context()); lang != "" {
		return lang
	}
	return h.defaultLang
}

// table returns the string table for lang, layered over the resource's own
// strings when def is set.
func (h *Handler) table(lang string, def *resource.Definition) catalog.Table {
	if def == nil {
		return h.bundle.Table(lang, catalog.CoreNamespace)
	}
	return h.bundle.Table(lang, def.TranslationSource(), catalog.CoreNamespace)
}

func operatorFrom(r *http.Request) requestctx.Operator {
	operator, _ := requestctx.OperatorFromContext(r.Context())
	return operator
}

func capabilitiesFrom(r *http.Request) authz.Capabilities {
	return authz.FromOperator(operatorFrom(r))
}

// lookupRequest narrows parents.<id> lookups to the operator's own records
// when the operator's lists of <id> are owner-scoped.
func (h *Handler) lookupRequest(ctx context.Context, kind string, parent string, lang string) lookups.Request {
	req := lookups.Request{Kind: kind, Parent: parent, Lang: lang}
	id, ok := strings.CutPrefix(kind, lookups.ParentsPrefix)
	if !ok {
		return req
	}
	def, found := h.catalog.Lookup(id)
	if !found {
		return req
	}
	operator, _ := requestctx.OperatorFromContext(ctx)
	if caps := authz.FromOperator(operator); caps.ScopedToOwner(def) {
		req.Owner = caps.UserID
	}
	return req
}

func (h *Handler) withTimeout(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), h.requestTimeout)
}

func langQuery(lang string) url.Values {
	query := url.Values{}
	if lang != "" {
		query.Set(i18nhttp.LangParam, lang)
	}
	return query
}
