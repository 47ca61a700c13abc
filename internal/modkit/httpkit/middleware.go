package httpkit

import (
	"compress/flate"
	"net/http"
	"time"

	"codeexplainer/internal/platform/metrics"
	phttp "codeexplainer/internal/platform/net/http"
	"codeexplainer/internal/platform/net/middleware"
)

// StackOptions tunes CommonStack
type StackOptions struct {
	// AllowedOrigins is the browser client origin list for CORS
	AllowedOrigins []string
	// SlowRequest marks access log lines as warn, 0 disables
	SlowRequest time.Duration
}

// CommonStack returns the baseline middleware slice applied at the root router
// compose with Auth on protected groups
func CommonStack(o StackOptions) []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		// tracing / correlation
		middleware.RequestID(),
		middleware.RequestContext(),
		middleware.RealIP(),

		// safety
		middleware.RecoverJSON,

		// cache / freshness
		middleware.NoCache(),

		// observability
		middleware.AccessLogZerolog(middleware.AccessLogOptions{
			Slow:    o.SlowRequest,
			Observe: metrics.ObserveHTTP,
		}),

		middleware.CORS(middleware.CORSOptions{
			AllowedOrigins:   o.AllowedOrigins,
			AllowCredentials: true,
			MaxAge:           300,
		}),
		middleware.Compress(flate.BestSpeed),
		middleware.StripSlashes(),
	}
}

// Auth wires the auth middleware to the platform JSON writer
func Auth(p middleware.AuthPort) func(http.Handler) http.Handler {
	return middleware.Auth(p, phttp.JSON)
}
