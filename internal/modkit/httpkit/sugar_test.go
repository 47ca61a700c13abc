package httpkit

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	perr "codeexplainer/internal/platform/errors"
)

type echoIn struct {
	Code string `json:"code" validate:"required"`
}

func TestSugar_Routes(t *testing.T) {
	r, h := newTestRouter()
	PostJSON(r, "/echo", func(_ *http.Request, in echoIn) (any, error) {
		return map[string]string{"code": in.Code}, nil
	})
	Post(r, "/logout", func(*http.Request) (any, error) { return Msg("Logged out successfully"), nil })
	Delete(r, "/thing", func(*http.Request) (any, error) { return nil, perr.NotFoundf("History not found") })
	Get(r, "/nothing", func(*http.Request) (any, error) { return NoContent(), nil })

	cases := []struct {
		method, path, body string
		status             int
		contains           string
	}{
		{http.MethodPost, "/echo", `{"code":"x"}`, http.StatusOK, `"code":"x"`},
		{http.MethodPost, "/echo", `{}`, http.StatusBadRequest, `"message":"Code is required"`},
		{http.MethodPost, "/logout", ``, http.StatusOK, `"message":"Logged out successfully"`},
		{http.MethodDelete, "/thing", ``, http.StatusNotFound, `"error":"History not found"`},
		{http.MethodGet, "/nothing", ``, http.StatusNoContent, ``},
	}
	for _, c := range cases {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(c.method, c.path, strings.NewReader(c.body)))
		if rec.Code != c.status || !strings.Contains(rec.Body.String(), c.contains) {
			t.Fatalf("%s %s: status=%d body=%s", c.method, c.path, rec.Code, rec.Body.String())
		}
	}
}

func TestMountAPI_Prefixes(t *testing.T) {
	r, h := newTestRouter()
	var hits []string
	mw := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			hits = append(hits, req.URL.Path)
			next.ServeHTTP(w, req)
		})
	}
	MountAPI(r, "", []func(http.Handler) http.Handler{mw}, func(api Router) {
		Get(api, "/health", func(*http.Request) (any, error) { return map[string]string{"status": "ok"}, nil })
	})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if rec.Code != http.StatusOK || len(hits) != 1 {
		t.Fatalf("status=%d hits=%v", rec.Code, hits)
	}

	r2, h2 := newTestRouter()
	MountAPI(r2, "/v2/", nil, func(api Router) {
		Get(api, "/health", func(*http.Request) (any, error) { return "v2", nil })
	})
	rec = httptest.NewRecorder()
	h2.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v2/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("versioned status = %d", rec.Code)
	}
}
