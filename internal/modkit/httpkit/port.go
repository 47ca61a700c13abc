package httpkit

import (
	"net/http"

	perr "codeexplainer/internal/platform/errors"
	"codeexplainer/internal/platform/logger"
)

// TokenFunc verifies a raw bearer token and returns its caller
type TokenFunc func(token string) (Principal, error)

// Port implements middleware.AuthPort by reading Authorization and delegating to a TokenFunc
type Port struct {
	parse TokenFunc
}

// NewPortFunc builds a Port from a simple parser function
func NewPortFunc(fn TokenFunc) *Port {
	return &Port{parse: fn}
}

// Parse resolves the caller from the Authorization Bearer token
// a missing header is "No token provided"; anything the parser rejects is "Invalid token"
func (p *Port) Parse(r *http.Request) (Principal, error) {
	raw, err := JWT(r)
	if err != nil {
		return Principal{}, err
	}
	if p == nil || p.parse == nil {
		return Principal{}, perr.Unauthorizedf("Invalid token")
	}
	who, err := p.parse(raw)
	if err != nil {
		logger.C(r.Context()).Debug().Err(err).Msg("bearer token rejected")
		return Principal{}, perr.Wrap(err, perr.ErrorCodeUnauthorized, "Invalid token")
	}
	if who.ID == "" {
		return Principal{}, perr.Unauthorizedf("Invalid token")
	}
	return who, nil
}
