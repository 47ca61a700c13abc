package httpkit

import (
	"net/http"
	"strings"

	perr "codeexplainer/internal/platform/errors"
	pnet "codeexplainer/internal/platform/net"
)

// Principal is the authenticated caller
type Principal = pnet.Principal

// User returns the authenticated caller from the request context
func User(r *http.Request) (Principal, error) {
	p, ok := pnet.PrincipalFrom(r.Context())
	if !ok || p.ID == "" {
		return Principal{}, perr.Unauthorizedf("No token provided")
	}
	return p, nil
}

// MustUser returns the authenticated caller or panics
// only use on routes protected by the auth middleware
func MustUser(r *http.Request) Principal {
	p, err := User(r)
	if err != nil {
		panic(err)
	}
	return p
}

// JWT returns the raw bearer token from the Authorization header
// the Bearer scheme is matched case-insensitively
func JWT(r *http.Request) (string, error) {
	authz := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, raw, ok := strings.Cut(authz, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return "", perr.Unauthorizedf("No token provided")
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", perr.Unauthorizedf("No token provided")
	}
	return raw, nil
}
