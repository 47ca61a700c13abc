package httpkit

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	perr "codeexplainer/internal/platform/errors"
)

func reqWithAuth(h string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if h != "" {
		r.Header.Set("Authorization", h)
	}
	return r
}

func wireMsg(t *testing.T, err error) string {
	t.Helper()
	if !perr.IsCode(err, perr.ErrorCodeUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	return perr.WireFrom(err).Error
}

func TestPort_Parse(t *testing.T) {
	p := NewPortFunc(func(tok string) (Principal, error) {
		if tok != "good" {
			return Principal{}, errors.New("signature mismatch")
		}
		return Principal{ID: "u1", Email: "a@b.c", Name: "Ada"}, nil
	})

	who, err := p.Parse(reqWithAuth("Bearer good"))
	if err != nil || who.ID != "u1" || who.Name != "Ada" {
		t.Fatalf("who=%+v err=%v", who, err)
	}
	if _, err := p.Parse(reqWithAuth("bearer   good ")); err != nil {
		t.Fatalf("case-insensitive scheme: %v", err)
	}

	cases := map[string]string{
		"":             "No token provided",
		"Bearer":       "No token provided",
		"Bearer ":      "No token provided",
		"Basic abc":    "No token provided",
		"Bearer wrong": "Invalid token",
	}
	for header, want := range cases {
		_, err := p.Parse(reqWithAuth(header))
		if got := wireMsg(t, err); got != want {
			t.Fatalf("%q: message = %q, want %q", header, got, want)
		}
	}
}

func TestPort_ParseRejectsEmptyPrincipalAndNilParser(t *testing.T) {
	empty := NewPortFunc(func(string) (Principal, error) { return Principal{}, nil })
	_, err := empty.Parse(reqWithAuth("Bearer x"))
	if wireMsg(t, err) != "Invalid token" {
		t.Fatalf("err = %v", err)
	}

	_, err = NewPortFunc(nil).Parse(reqWithAuth("Bearer x"))
	if wireMsg(t, err) != "Invalid token" {
		t.Fatalf("err = %v", err)
	}
}

func TestPort_CauseNotRendered(t *testing.T) {
	p := NewPortFunc(func(string) (Principal, error) { return Principal{}, errors.New("hmac secret mismatch") })
	_, err := p.Parse(reqWithAuth("Bearer x"))
	if w := perr.WireFrom(err); w.Error != "Invalid token" {
		t.Fatalf("wire = %+v", w)
	}
}
