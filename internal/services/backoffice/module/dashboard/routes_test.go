package dashboard

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

type fakeService struct {
	calls int
}

func (f *fakeService) HandleDashboard(http.ResponseWriter, *http.Request) {
	f.calls++
}

func TestRegisterRoutes(t *testing.T) {
	t.Parallel()

	svc := &fakeService{}
	mux := http.NewServeMux()
	RegisterRoutes(mux, svc)

	tests := []struct {
		path      string
		wantCode  int
		wantCalls int
	}{
		{path: "/", wantCode: http.StatusOK, wantCalls: 1},
		{path: "/missing", wantCode: http.StatusNotFound, wantCalls: 1},
	}
	for _, tc := range tests {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.path, nil))
		if rec.Code != tc.wantCode {
			t.Fatalf("%s status = %d, want %d", tc.path, rec.Code, tc.wantCode)
		}
		if svc.calls != tc.wantCalls {
			t.Fatalf("%s calls = %d, want %d", tc.path, svc.calls, tc.wantCalls)
		}
	}
}
