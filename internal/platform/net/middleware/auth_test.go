package middleware_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	perr "codeexplainer/internal/platform/errors"
	pnet "codeexplainer/internal/platform/net"
	"codeexplainer/internal/platform/net/middleware"
	kit "codeexplainer/internal/platform/testkit"
)

type fakeAuthPort struct {
	who pnet.Principal
	err error
}

func (f fakeAuthPort) Parse(*http.Request) (pnet.Principal, error) { return f.who, f.err }

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func TestAuth_NilPortPanics(t *testing.T) {
	kit.MustPanic(t, func() { middleware.Auth(nil, writeJSON) })
}

func TestAuth_RejectsWithUnauthorized(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"project error keeps its message", perr.Unauthorizedf("No token provided"), "No token provided"},
		{"foreign error becomes invalid token", errors.New("signature mismatch"), "Invalid token"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			mw := middleware.Auth(fakeAuthPort{err: c.err}, writeJSON)
			next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
				t.Fatal("next must not run")
			})
			rr := httptest.NewRecorder()
			mw(next).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

			if rr.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d", rr.Code)
			}
			var body perr.Wire
			_ = json.Unmarshal(rr.Body.Bytes(), &body)
			if body.Error != c.want {
				t.Fatalf("error = %q, want %q", body.Error, c.want)
			}
		})
	}
}

func TestAuth_StoresPrincipal(t *testing.T) {
	who := pnet.Principal{ID: "u-7", Email: "a@b.c", Name: "A"}
	mw := middleware.Auth(fakeAuthPort{who: who}, writeJSON)

	var got pnet.Principal
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = pnet.PrincipalFrom(r.Context())
	})
	mw(next).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if got != who {
		t.Fatalf("principal = %+v", got)
	}
}
