package http

import (
	"context"
	"errors"
	stdhttp "net/http"
	"strings"
	"time"

	"codeexplainer/internal/platform/config"
	"codeexplainer/internal/platform/logger"

	"github.com/go-chi/chi/v5"
)

// Server is a thin wrapper over chi + stdlib http.Server
type Server struct {
	addr         string
	mux          *chi.Mux
	srv          *stdhttp.Server
	drainTimeout time.Duration
}

// NewServer builds the API server from the CORE_API_ config view
// opts receive the *chi.Mux so callers can mount routes/mw
// there is no write timeout: streamed explanations can outlive any fixed deadline
func NewServer(cfg config.Conf, opts ...func(*chi.Mux)) *Server {
	addr := normalizeAddr(cfg.MayString("PORT", ":5000"))
	m := chi.NewRouter()
	m.NotFound(NotFoundHandler)
	m.MethodNotAllowed(MethodNotAllowedHandler)
	for _, o := range opts {
		o(m)
	}
	return &Server{
		addr:         addr,
		mux:          m,
		drainTimeout: cfg.MayDuration("DRAIN_TIMEOUT", 15*time.Second),
		srv: &stdhttp.Server{
			Addr:              addr,
			Handler:           m,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// normalizeAddr accepts "5000" as well as ":5000" and "host:5000"
func normalizeAddr(s string) string {
	if strings.Contains(s, ":") {
		return s
	}
	return ":" + s
}

// Router returns a Router facade over the internal chi mux
func (s *Server) Router() Router {
	return AdaptChi(s.mux)
}

// Handler returns the root handler, mainly for httptest
func (s *Server) Handler() stdhttp.Handler { return s.mux }

// Addr returns the listening address
func (s *Server) Addr() string { return s.addr }

// Run serves until ctx is cancelled, then drains in-flight requests
func (s *Server) Run(ctx context.Context) error {
	log := logger.Named("http")
	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.addr).Msg("http listening")
		errc <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, stdhttp.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info().Dur("drain_timeout", s.drainTimeout).Msg("http shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), s.drainTimeout)
	defer cancel()
	if err := s.Shutdown(sctx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
