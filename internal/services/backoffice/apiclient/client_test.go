package apiclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	apperrors "github.com/louisbranch/backoffice/internal/platform/errors"
	"github.com/louisbranch/backoffice/internal/platform/requestctx"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := New(Config{BaseURL: server.URL + "/api", RetryInitial: time.Millisecond})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return client
}

func TestNewRequiresAbsoluteBaseURL(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "  ", "/api"} {
		if _, err := New(Config{BaseURL: raw}); err == nil {
			t.Fatalf("New(%q) expected error", raw)
		}
	}
}

func TestListActionStyle(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %s, want GET", r.Method)
		}
		if r.URL.Path != "/api/routes/DeliveryCompany.php" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("action"); got != "list" {
			t.Errorf("action = %q, want list", got)
		}
		if got := r.URL.Query().Get("search"); got != "acme" {
			t.Errorf("search = %q, want acme", got)
		}
		_, _ = io.WriteString(w, `{"success":true,"data":{"items":[{"id":1,"name":"Acme"}],"meta":{"total":31}}}`)
	})

	ep := Endpoint{Name: "delivery_companies", Path: "routes/DeliveryCompany.php", Style: StyleAction, Entity: "company"}
	list, err := client.List(context.Background(), ep, url.Values{"search": {"acme"}})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list.Rows) != 1 || list.Total != 31 {
		t.Fatalf("list = %d rows, total %d", len(list.Rows), list.Total)
	}
}

func TestListRESTStyleOmitsAction(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Has("action") {
			t.Errorf("unexpected action param %q", r.URL.Query().Get("action"))
		}
		_, _ = io.WriteString(w, `[{"id":1}]`)
	})

	list, err := client.List(context.Background(), Endpoint{Name: "banners", Path: "banners"}, nil)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if list.Total != 1 {
		t.Fatalf("total = %d, want 1", list.Total)
	}
}

func TestGetStyles(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/api/banners/12":
			_, _ = io.WriteString(w, `{"success":true,"data":{"id":12,"title":"Sale"}}`)
		case r.URL.Path == "/api/routes/independent_drivers.php" && r.URL.Query().Get("action") == "get" && r.URL.Query().Get("id") == "5":
			_, _ = io.WriteString(w, `{"success":true,"data":[{"id":5,"name":"Sam"}]}`)
		default:
			http.NotFound(w, r)
		}
	})

	banner, err := client.Get(context.Background(), Endpoint{Name: "banners", Path: "banners"}, "12", nil)
	if err != nil {
		t.Fatalf("Get(rest) error = %v", err)
	}
	if banner.String("title") != "Sale" {
		t.Fatalf("title = %q", banner.String("title"))
	}

	driver, err := client.Get(context.Background(), Endpoint{Name: "drivers", Path: "routes/independent_drivers.php", Style: StyleAction, Entity: "driver"}, "5", nil)
	if err != nil {
		t.Fatalf("Get(action) error = %v", err)
	}
	if driver.String("name") != "Sam" {
		t.Fatalf("name = %q", driver.String("name"))
	}

	_, err = client.Get(context.Background(), Endpoint{Name: "banners", Path: "banners"}, "99", nil)
	if apperrors.CodeOf(err) != apperrors.CodeNotFound {
		t.Fatalf("missing code = %s, want NOT_FOUND", apperrors.CodeOf(err))
	}
}

func TestCreateActionStyleSendsMultipartWithCSRF(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		if got := r.FormValue("action"); got != "create_company" {
			t.Errorf("action = %q", got)
		}
		if got := r.FormValue(CSRFField); got != "tok" {
			t.Errorf("csrf field = %q", got)
		}
		if got := r.Header.Get(CSRFHeader); got != "tok" {
			t.Errorf("csrf header = %q", got)
		}
		if got := r.FormValue("name"); got != "Acme" {
			t.Errorf("name = %q", got)
		}
		_, _ = io.WriteString(w, `{"success":true,"message":"Created","data":{"id":77}}`)
	})

	ctx := WithCredentials(context.Background(), Credentials{CSRFToken: "tok"})
	ep := Endpoint{Name: "delivery_companies", Path: "routes/DeliveryCompany.php", Style: StyleAction, Entity: "company"}
	mutation, err := client.Create(ctx, ep, Payload{Fields: url.Values{"name": {"Acme"}}})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if mutation.ID != "77" || mutation.Message != "Created" {
		t.Fatalf("mutation = %+v", mutation)
	}
}

func TestUpdateRESTJSONBody(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/api/seo_meta/3" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("content type = %q", got)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body["meta_title"] != "Home" {
			t.Errorf("meta_title = %v", body["meta_title"])
		}
		_, _ = io.WriteString(w, `{"success":true}`)
	})

	ep := Endpoint{Name: "seo", Path: "seo_meta", JSONBody: true}
	mutation, err := client.Update(context.Background(), ep, "3", Payload{Fields: url.Values{"meta_title": {"Home"}}})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if mutation.ID != "3" {
		t.Fatalf("ID = %q, want 3", mutation.ID)
	}
}

func TestDeleteRESTUsesQueryID(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/api/banners" || r.URL.Query().Get("id") != "9" {
			t.Errorf("request = %s %s?%s", r.Method, r.URL.Path, r.URL.RawQuery)
		}
		_, _ = io.WriteString(w, `{"success":true,"message":"Deleted"}`)
	})

	if _, err := client.Delete(context.Background(), Endpoint{Name: "banners", Path: "banners"}, "9"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
}

func TestSetFlagStyles(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPut:
			var body map[string]any
			_ = json.NewDecoder(r.Body).Decode(&body)
			if body["is_active"] != "0" {
				t.Errorf("rest is_active = %v", body["is_active"])
			}
		case http.MethodPost:
			_ = r.ParseMultipartForm(1 << 20)
			if r.FormValue("action") != "update_company" || r.FormValue("id") != "4" || r.FormValue("is_active") != "1" {
				t.Errorf("action form = %v", r.MultipartForm.Value)
			}
		}
		_, _ = io.WriteString(w, `{"success":true}`)
	})

	if _, err := client.SetFlag(context.Background(), Endpoint{Name: "banners", Path: "banners"}, "4", "is_active", false); err != nil {
		t.Fatalf("SetFlag(rest) error = %v", err)
	}
	ep := Endpoint{Name: "delivery_companies", Path: "routes/DeliveryCompany.php", Style: StyleAction, Entity: "company"}
	if _, err := client.SetFlag(context.Background(), ep, "4", "is_active", true); err != nil {
		t.Fatalf("SetFlag(action) error = %v", err)
	}
}

func TestStatusMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status int
		body   string
		code   apperrors.Code
	}{
		{status: http.StatusUnauthorized, body: `{"message":"login"}`, code: apperrors.CodeUnauthenticated},
		{status: http.StatusForbidden, body: ``, code: apperrors.CodePermissionDenied},
		{status: http.StatusNotFound, body: ``, code: apperrors.CodeNotFound},
		{status: http.StatusUnprocessableEntity, body: `{"errors":{"name":"required"}}`, code: apperrors.CodeValidation},
		{status: http.StatusBadRequest, body: `{"message":"bad"}`, code: apperrors.CodeRejected},
		{status: http.StatusServiceUnavailable, body: ``, code: apperrors.CodeUnavailable},
		{status: http.StatusInternalServerError, body: `oops`, code: apperrors.CodeTransport},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			t.Parallel()
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = io.WriteString(w, tc.body)
			})
			_, err := client.List(context.Background(), Endpoint{Name: "banners", Path: "banners"}, nil)
			if got := apperrors.CodeOf(err); got != tc.code {
				t.Fatalf("code = %s, want %s", got, tc.code)
			}
		})
	}
}

func TestRetryOnceForFlaggedEndpoint(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = io.WriteString(w, `{"success":true,"data":[{"id":1}]}`)
	})

	list, err := client.List(context.Background(), Endpoint{Name: "vendors", Path: "vendors", Retry: true}, nil)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list.Rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(list.Rows))
	}
	if got := calls.Load(); got != 2 {
		t.Fatalf("calls = %d, want 2", got)
	}
}

func TestRetryStopsAfterSecondFailure(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := client.List(context.Background(), Endpoint{Name: "vendors", Path: "vendors", Retry: true}, nil)
	if apperrors.CodeOf(err) != apperrors.CodeUnavailable {
		t.Fatalf("code = %s, want UNAVAILABLE", apperrors.CodeOf(err))
	}
	if got := calls.Load(); got != 2 {
		t.Fatalf("calls = %d, want 2", got)
	}
}

func TestNoRetryWithoutFlagOrOnValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		retry  bool
		status int
		body   string
	}{
		{name: "unflagged endpoint", retry: false, status: http.StatusServiceUnavailable},
		{name: "validation on flagged endpoint", retry: true, status: http.StatusOK, body: `{"success":false,"errors":{"store_name":"required"}}`},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			var calls atomic.Int32
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tc.status)
				_, _ = io.WriteString(w, tc.body)
			})
			_, err := client.Create(context.Background(), Endpoint{Name: "vendors", Path: "vendors", Retry: tc.retry}, Payload{Fields: url.Values{"store_name": {""}}})
			if err == nil {
				t.Fatal("expected error")
			}
			if got := calls.Load(); got != 1 {
				t.Fatalf("calls = %d, want 1", got)
			}
		})
	}
}

func TestRequestHeaders(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get(RequestIDHeader); got != "req-1" {
			t.Errorf("request id = %q", got)
		}
		if got := r.Header.Get("Accept-Language"); got != "ar" {
			t.Errorf("accept-language = %q", got)
		}
		if got := r.Header.Get("Accept"); got != "application/json" {
			t.Errorf("accept = %q", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer abc" {
			t.Errorf("authorization = %q", got)
		}
		cookie, err := r.Cookie("PHPSESSID")
		if err != nil || cookie.Value != "s1" {
			t.Errorf("cookie = %v, %v", cookie, err)
		}
		_, _ = io.WriteString(w, `[]`)
	})

	ctx := requestctx.WithRequestID(context.Background(), "req-1")
	ctx = requestctx.WithLanguage(ctx, "ar")
	ctx = WithCredentials(ctx, Credentials{Bearer: "abc", Cookies: []*http.Cookie{{Name: "PHPSESSID", Value: "s1"}}})
	if _, err := client.List(ctx, Endpoint{Name: "banners", Path: "banners"}, nil); err != nil {
		t.Fatalf("List() error = %v", err)
	}
}

func TestRequestIDGeneratedWhenMissing(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.TrimSpace(r.Header.Get(RequestIDHeader)) == "" {
			t.Error("expected generated request id")
		}
		_, _ = io.WriteString(w, `[]`)
	})
	if _, err := client.List(context.Background(), Endpoint{Name: "banners", Path: "banners"}, nil); err != nil {
		t.Fatalf("List() error = %v", err)
	}
}

func TestUploadCollectsURLs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		want []string
	}{
		{name: "data urls", body: `{"success":true,"data":{"urls":["/u/a.png","/u/b.png"]}}`, want: []string{"/u/a.png", "/u/b.png"}},
		{name: "data objects", body: `{"success":true,"data":[{"url":"/u/c.png"}]}`, want: []string{"/u/c.png"}},
		{name: "data url", body: `{"success":true,"data":{"url":"/u/d.png"}}`, want: []string{"/u/d.png"}},
		{name: "top level url", body: `{"success":true,"url":"/u/e.png"}`, want: []string{"/u/e.png"}},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if err := r.ParseMultipartForm(1 << 20); err != nil {
					t.Errorf("parse multipart: %v", err)
				}
				if len(r.MultipartForm.File["files[]"]) != 1 {
					t.Errorf("files = %v", r.MultipartForm.File)
				}
				_, _ = io.WriteString(w, tc.body)
			})
			urls, err := client.Upload(context.Background(), Endpoint{Name: "media", Path: "upload_image.php"}, []File{{Field: "files[]", Name: "a.png", Data: []byte("x")}})
			if err != nil {
				t.Fatalf("Upload() error = %v", err)
			}
			if strings.Join(urls, ",") != strings.Join(tc.want, ",") {
				t.Fatalf("urls = %v, want %v", urls, tc.want)
			}
		})
	}
}

func TestTransportFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	base := server.URL
	server.Close()

	client, err := New(Config{BaseURL: base})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	_, err = client.List(context.Background(), Endpoint{Name: "banners", Path: "banners"}, nil)
	if apperrors.CodeOf(err) != apperrors.CodeTransport {
		t.Fatalf("code = %s, want TRANSPORT", apperrors.CodeOf(err))
	}
}
