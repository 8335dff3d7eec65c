// Package apiclient talks to the upstream back-office JSON API.
package apiclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	apperrors "github.com/louisbranch/backoffice/internal/platform/errors"
	"github.com/louisbranch/backoffice/internal/platform/otel"
	"github.com/louisbranch/backoffice/internal/platform/requestctx"
	"github.com/louisbranch/backoffice/internal/platform/timeouts"
	gootel "go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const (
	// maxResponseBytes caps how much of an upstream body is read.
	maxResponseBytes = 8 << 20
	// defaultRetryInitial is the first wait before a retried request.
	defaultRetryInitial = 300 * time.Millisecond
	// retryMultiplier grows the wait between attempts.
	retryMultiplier = 1.5
	// retryMaxTries bounds attempts for retrying endpoints (one retry).
	retryMaxTries = 2

	// CSRFHeader carries the operator CSRF token upstream.
	CSRFHeader = "X-CSRF-Token"
	// CSRFField carries the operator CSRF token in form bodies.
	CSRFField = "csrf_token"
	// RequestIDHeader correlates console and upstream logs.
	RequestIDHeader = "X-Request-ID"
)

// Style selects how operations map onto upstream URLs.
type Style int

const (
	// StyleREST uses `GET <ep>`, `GET <ep>/<id>`, `POST <ep>`, `PUT <ep>/<id>`
	// and `DELETE <ep>?id=`.
	StyleREST Style = iota
	// StyleAction uses one URL with an `action` parameter:
	// list, get, create_<entity>, update_<entity>, delete_<entity>.
	StyleAction
)

// Endpoint describes one upstream resource URL.
type Endpoint struct {
	// Name identifies the resource in logs and spans.
	Name string
	// Path is relative to the API base, or an absolute URL.
	Path  string
	Style Style
	// Entity is the action suffix for StyleAction ("company" -> create_company).
	Entity string
	// Retry enables one retry for transport failures.
	Retry bool
	// JSONBody sends create and update as JSON instead of multipart when no
	// files are attached.
	JSONBody bool
}

// Credentials are the operator credentials forwarded upstream.
type Credentials struct {
	Cookies   []*http.Cookie
	CSRFToken string
	Bearer    string
}

type credentialsContextKey struct{}

// WithCredentials attaches upstream credentials to ctx.
func WithCredentials(ctx context.Context, creds Credentials) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, credentialsContextKey{}, creds)
}

func credentialsFrom(ctx context.Context) Credentials {
	if ctx == nil {
		return Credentials{}
	}
	creds, _ := ctx.Value(credentialsContextKey{}).(Credentials)
	return creds
}

// Config configures a Client.
type Config struct {
	BaseURL    string
	HTTPClient *http.Client
	// Timeout caps each upstream request; zero uses timeouts.APIRequest.
	Timeout time.Duration
	// RetryInitial is the first retry wait; zero uses 300ms.
	RetryInitial time.Duration
}

// List is one page of decoded rows.
type List struct {
	Rows       []Record
	Total      int
	Page       int
	PerPage    int
	TotalPages int
}

// Mutation is the decoded result of a create, update, delete or action.
type Mutation struct {
	ID      string
	Message string
	Record  Record
}

// Client issues upstream API requests.
type Client struct {
	base         *url.URL
	httpClient   *http.Client
	timeout      time.Duration
	retryInitial time.Duration
	tracer       trace.Tracer
	newRequestID func() string
}

// New builds a Client for the API rooted at cfg.BaseURL.
func New(cfg Config) (*Client, error) {
	raw := strings.TrimSpace(cfg.BaseURL)
	if raw == "" {
		return nil, errors.New("api base url is required")
	}
	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse api base url: %w", err)
	}
	if !base.IsAbs() {
		return nil, fmt.Errorf("api base url must be absolute: %q", raw)
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = timeouts.APIRequest
	}
	retryInitial := cfg.RetryInitial
	if retryInitial <= 0 {
		retryInitial = defaultRetryInitial
	}
	return &Client{
		base:         base,
		httpClient:   httpClient,
		timeout:      timeout,
		retryInitial: retryInitial,
		tracer:       otel.Tracer("apiclient"),
		newRequestID: uuid.NewString,
	}, nil
}

// BaseURL returns the API root the client was built with.
func (c *Client) BaseURL() string {
	if c == nil || c.base == nil {
		return ""
	}
	return c.base.String()
}

// List fetches one page of rows.
func (c *Client) List(ctx context.Context, ep Endpoint, query url.Values) (List, error) {
	query = cloneValues(query)
	if ep.Style == StyleAction {
		query.Set("action", "list")
	}
	env, err := c.send(ctx, ep, "list", func() (*http.Request, error) {
		return c.newRequest(ctx, http.MethodGet, ep.Path, nil, query, nil, "")
	})
	if err != nil {
		return List{}, err
	}
	return env.List(), nil
}

// Get fetches one record by id.
func (c *Client) Get(ctx context.Context, ep Endpoint, id string, query url.Values) (Record, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Record{}, apperrors.New(apperrors.CodeNotFound, "record id is required")
	}
	query = cloneValues(query)
	segments := []string{id}
	if ep.Style == StyleAction {
		query.Set("action", "get")
		query.Set("id", id)
		segments = nil
	}
	env, err := c.send(ctx, ep, "get", func() (*http.Request, error) {
		return c.newRequest(ctx, http.MethodGet, ep.Path, segments, query, nil, "")
	})
	if err != nil {
		return Record{}, err
	}
	record := env.Record()
	if record.IsZero() {
		return Record{}, apperrors.WithMetadata(apperrors.CodeNotFound, "record not found", map[string]string{"Resource": ep.Name})
	}
	return record, nil
}

// Create submits a new record.
func (c *Client) Create(ctx context.Context, ep Endpoint, payload Payload) (Mutation, error) {
	if ep.Style == StyleAction {
		return c.postAction(ctx, ep, "create_"+ep.Entity, "", payload)
	}
	return c.mutate(ctx, ep, "create", http.MethodPost, nil, payload)
}

// Update submits changes to an existing record.
func (c *Client) Update(ctx context.Context, ep Endpoint, id string, payload Payload) (Mutation, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Mutation{}, apperrors.New(apperrors.CodeNotFound, "record id is required")
	}
	if ep.Style == StyleAction {
		return c.postAction(ctx, ep, "update_"+ep.Entity, id, payload)
	}
	return c.mutate(ctx, ep, "update", http.MethodPut, []string{id}, payload)
}

// Delete removes a record.
func (c *Client) Delete(ctx context.Context, ep Endpoint, id string) (Mutation, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Mutation{}, apperrors.New(apperrors.CodeNotFound, "record id is required")
	}
	if ep.Style == StyleAction {
		return c.postAction(ctx, ep, "delete_"+ep.Entity, id, Payload{})
	}
	query := url.Values{"id": []string{id}}
	env, err := c.send(ctx, ep, "delete", func() (*http.Request, error) {
		return c.newRequest(ctx, http.MethodDelete, ep.Path, nil, query, nil, "")
	})
	if err != nil {
		return Mutation{}, err
	}
	return mutationOf(env, id), nil
}

// SetFlag flips a boolean column (is_active, is_verified) on one record.
func (c *Client) SetFlag(ctx context.Context, ep Endpoint, id string, field string, value bool) (Mutation, error) {
	flag := "0"
	if value {
		flag = "1"
	}
	payload := Payload{Fields: url.Values{field: []string{flag}}}
	if ep.Style == StyleAction {
		return c.postAction(ctx, ep, "update_"+ep.Entity, id, payload)
	}
	jsonEP := ep
	jsonEP.JSONBody = true
	return c.Update(ctx, jsonEP, id, payload)
}

// Action posts a named custom action (retry, purge, check...) to the
// endpoint, with id in the form when set.
func (c *Client) Action(ctx context.Context, ep Endpoint, action string, id string, payload Payload) (Mutation, error) {
	return c.postAction(ctx, ep, action, id, payload)
}

// Upload posts files as multipart and returns the resulting URLs.
func (c *Client) Upload(ctx context.Context, ep Endpoint, files []File) ([]string, error) {
	if len(files) == 0 {
		return nil, apperrors.New(apperrors.CodeInvalidInput, "no files to upload")
	}
	env, err := c.sendPayload(ctx, ep, "upload", http.MethodPost, nil, Payload{Files: files}, true)
	if err != nil {
		return nil, err
	}
	return uploadedURLs(env), nil
}

// Fetch issues a plain GET and returns the decoded envelope. Lookups use it
// for endpoints that are not resources (countries, cities, roles).
func (c *Client) Fetch(ctx context.Context, path string, query url.Values) (Envelope, error) {
	ep := Endpoint{Name: "lookup", Path: path}
	return c.send(ctx, ep, "fetch", func() (*http.Request, error) {
		return c.newRequest(ctx, http.MethodGet, path, nil, cloneValues(query), nil, "")
	})
}

func (c *Client) postAction(ctx context.Context, ep Endpoint, action string, id string, payload Payload) (Mutation, error) {
	fields := cloneValues(payload.Fields)
	fields.Set("action", action)
	if id != "" {
		fields.Set("id", id)
	}
	payload.Fields = fields
	env, err := c.sendPayload(ctx, ep, action, http.MethodPost, nil, payload, !ep.JSONBody || payload.HasFiles())
	if err != nil {
		return Mutation{}, err
	}
	return mutationOf(env, id), nil
}

func (c *Client) mutate(ctx context.Context, ep Endpoint, op string, method string, segments []string, payload Payload) (Mutation, error) {
	id := ""
	if len(segments) > 0 {
		id = segments[0]
	}
	env, err := c.sendPayload(ctx, ep, op, method, segments, payload, !ep.JSONBody || payload.HasFiles())
	if err != nil {
		return Mutation{}, err
	}
	return mutationOf(env, id), nil
}

func (c *Client) sendPayload(ctx context.Context, ep Endpoint, op string, method string, segments []string, payload Payload, multipartBody bool) (Envelope, error) {
	creds := credentialsFrom(ctx)
	if creds.CSRFToken != "" {
		fields := cloneValues(payload.Fields)
		fields.Set(CSRFField, creds.CSRFToken)
		payload.Fields = fields
	}
	var (
		body        []byte
		contentType string
		err         error
	)
	if multipartBody {
		body, contentType, err = payload.Multipart()
	} else {
		body, err = payload.JSON()
		contentType = "application/json"
	}
	if err != nil {
		return Envelope{}, apperrors.Wrap(apperrors.CodeInvalidInput, "encode payload", err)
	}
	return c.send(ctx, ep, op, func() (*http.Request, error) {
		return c.newRequest(ctx, method, ep.Path, segments, nil, body, contentType)
	})
}

// send runs one request, retrying transport failures once for endpoints
// flagged Retry.
func (c *Client) send(ctx context.Context, ep Endpoint, op string, build func() (*http.Request, error)) (Envelope, error) {
	if c == nil {
		return Envelope{}, apperrors.New(apperrors.CodeUnavailable, "api client is not configured")
	}
	if !ep.Retry {
		return c.roundTrip(ctx, ep, op, build)
	}
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.retryInitial
	policy.Multiplier = retryMultiplier
	policy.RandomizationFactor = 0
	return backoff.Retry(ctx, func() (Envelope, error) {
		env, err := c.roundTrip(ctx, ep, op, build)
		if err != nil && !apperrors.CodeOf(err).Retryable() {
			return env, backoff.Permanent(err)
		}
		return env, err
	},
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(retryMaxTries),
		backoff.WithNotify(func(err error, wait time.Duration) {
			log.Printf("%s %s retry in %s: %v", ep.Name, op, wait, err)
		}),
	)
}

func (c *Client) roundTrip(ctx context.Context, ep Endpoint, op string, build func() (*http.Request, error)) (Envelope, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := build()
	if err != nil {
		return Envelope{}, apperrors.Wrap(apperrors.CodeTransport, "build request", err)
	}
	req = req.WithContext(ctx)

	ctx, span := c.tracer.Start(ctx, "upstream "+op, trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("backoffice.resource", ep.Name),
			attribute.String("http.request.method", req.Method),
			attribute.String("url.path", req.URL.Path),
		))
	defer span.End()
	gootel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport")
		return Envelope{}, apperrors.Wrap(apperrors.CodeTransport, fmt.Sprintf("%s %s", req.Method, req.URL.Path), err)
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "read body")
		return Envelope{}, apperrors.Wrap(apperrors.CodeTransport, "read response body", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := statusError(resp.StatusCode, body, ep.Name)
		span.SetStatus(codes.Error, string(apperrors.CodeOf(err)))
		return Envelope{}, err
	}

	env, err := Decode(body)
	if err != nil {
		span.SetStatus(codes.Error, string(apperrors.CodeOf(err)))
		return Envelope{}, err
	}
	if err := env.Err(); err != nil {
		span.SetStatus(codes.Error, string(apperrors.CodeOf(err)))
		return env, err
	}
	return env, nil
}

func (c *Client) newRequest(ctx context.Context, method string, path string, segments []string, query url.Values, body []byte, contentType string) (*http.Request, error) {
	target, err := c.resolve(path, segments)
	if err != nil {
		return nil, err
	}
	if len(query) > 0 {
		merged := target.Query()
		for key, values := range query {
			for _, value := range values {
				merged.Add(key, value)
			}
		}
		target.RawQuery = merged.Encode()
	}
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	requestID := requestctx.RequestIDFromContext(ctx)
	if requestID == "" {
		requestID = c.newRequestID()
	}
	req.Header.Set(RequestIDHeader, requestID)
	if lang := requestctx.LanguageFromContext(ctx); lang != "" {
		req.Header.Set("Accept-Language", lang)
	}
	creds := credentialsFrom(ctx)
	if creds.CSRFToken != "" {
		req.Header.Set(CSRFHeader, creds.CSRFToken)
	}
	if creds.Bearer != "" {
		req.Header.Set("Authorization", "Bearer "+creds.Bearer)
	}
	for _, cookie := range creds.Cookies {
		if cookie != nil {
			req.AddCookie(cookie)
		}
	}
	return req, nil
}

func (c *Client) resolve(path string, segments []string) (*url.URL, error) {
	path = strings.TrimSpace(path)
	var target *url.URL
	if parsed, err := url.Parse(path); err == nil && parsed.IsAbs() {
		target = parsed
	} else {
		rel, err := url.Parse(path)
		if err != nil {
			return nil, fmt.Errorf("parse path %q: %w", path, err)
		}
		target = c.base.JoinPath(rel.Path)
		if rel.RawQuery != "" {
			target.RawQuery = rel.RawQuery
		}
	}
	if len(segments) > 0 {
		query := target.RawQuery
		target = target.JoinPath(segments...)
		target.RawQuery = query
	}
	return target, nil
}

func statusError(status int, body []byte, resource string) error {
	message := http.StatusText(status)
	var fields map[string]string
	if env, err := Decode(body); err == nil {
		if env.Message != "" {
			message = env.Message
		}
		fields = env.Errors
	}
	metadata := map[string]string{"Status": fmt.Sprint(status), "Resource": resource}
	switch {
	case status == http.StatusUnauthorized:
		return apperrors.WithMetadata(apperrors.CodeUnauthenticated, message, metadata)
	case status == http.StatusForbidden:
		return apperrors.WithMetadata(apperrors.CodePermissionDenied, message, metadata)
	case status == http.StatusNotFound:
		return apperrors.WithMetadata(apperrors.CodeNotFound, message, metadata)
	case (status == http.StatusBadRequest || status == http.StatusUnprocessableEntity) && len(fields) > 0:
		return apperrors.Validation(message, fields)
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return apperrors.WithMetadata(apperrors.CodeRejected, message, metadata)
	case status == http.StatusServiceUnavailable || status == http.StatusBadGateway || status == http.StatusGatewayTimeout:
		return apperrors.WithMetadata(apperrors.CodeUnavailable, message, metadata)
	default:
		return apperrors.WithMetadata(apperrors.CodeTransport, message, metadata)
	}
}

func mutationOf(env Envelope, fallbackID string) Mutation {
	id := env.ID()
	if id == "" {
		id = fallbackID
	}
	return Mutation{ID: id, Message: env.Message, Record: env.Record()}
}

func uploadedURLs(env Envelope) []string {
	urls := []string{}
	appendURL := func(value string) {
		if value = strings.TrimSpace(value); value != "" {
			urls = append(urls, value)
		}
	}
	data := env.Data
	if list := data.Get("urls"); list.IsArray() {
		for _, item := range list.Array() {
			appendURL(item.String())
		}
		return urls
	}
	if data.IsArray() {
		for _, item := range data.Array() {
			if item.IsObject() {
				appendURL(item.Get("url").String())
			} else {
				appendURL(item.String())
			}
		}
		return urls
	}
	appendURL(data.Get("url").String())
	if len(urls) == 0 {
		appendURL(env.root.Get("url").String())
	}
	return urls
}

func cloneValues(values url.Values) url.Values {
	out := url.Values{}
	for key, list := range values {
		out[key] = append([]string(nil), list...)
	}
	return out
}
