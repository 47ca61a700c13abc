package middleware

import (
	"net/http"

	perr "codeexplainer/internal/platform/errors"
	"codeexplainer/internal/platform/logger"
	pnet "codeexplainer/internal/platform/net"
)

// AuthPort resolves the caller of a request
type AuthPort interface {
	Parse(r *http.Request) (pnet.Principal, error)
}

// Auth rejects requests the port cannot resolve and stores the principal on the context
// write renders the error body; it is a seam so this package stays free of the JSON helpers
func Auth(p AuthPort, write func(w http.ResponseWriter, status int, body any)) func(http.Handler) http.Handler {
	if p == nil {
		panic("middleware: Auth requires a port")
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			who, err := p.Parse(r)
			if err != nil {
				if !perr.IsCode(err, perr.ErrorCodeUnauthorized) {
					err = perr.Wrap(err, perr.ErrorCodeUnauthorized, "Invalid token")
				}
				status, body := perr.HTTP(err)
				write(w, status, body)
				return
			}
			ctx := pnet.WithPrincipal(r.Context(), who)
			ctx = logger.WithUser(ctx, who.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
