package store

import (
	"context"
	"fmt"
	"time"

	"codeexplainer/internal/core/version"
	chx "codeexplainer/internal/platform/store/ch"
	"codeexplainer/internal/platform/store/pg"
)

const (
	defaultConnectRetries = 20
	defaultPingTimeout    = 3 * time.Second
	backoffStart          = 150 * time.Millisecond
	backoffCeiling        = 2 * time.Second
)

var (
	pgOpen = pg.Open // seam
	chOpen = func(ctx context.Context, cfg chx.Config) (chClient, error) {
		c, err := chx.Open(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	sleep  = func(ctx context.Context, d time.Duration) {
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-ctx.Done():
		case <-t.C:
		}
	}
)

// openPG opens pg, waits for it to answer and wraps it with our sql adapter
func openPG(ctx context.Context, cfg Config, s *Store) (TxRunner, error) {
	var tracer pg.QueryTracer
	if cfg.PG.LogSQL {
		tracer = pg.Tracer(s.Log)
	}

	p, err := pgOpen(ctx, pg.Config{
		URL:      cfg.PG.URL,
		MaxConns: cfg.PG.MaxConns,
		SlowMs:   cfg.PG.SlowQueryMs,
		AppName:  appName(cfg),
	}, tracer, nil)
	if err != nil {
		return nil, err
	}

	attempts := cfg.PG.ConnectRetries
	if attempts <= 0 {
		attempts = defaultConnectRetries
	}
	pingTimeout := cfg.PG.PingTimeout
	if pingTimeout <= 0 {
		pingTimeout = defaultPingTimeout
	}

	lastErr := retry(ctx, attempts, func() error {
		toCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()
		return p.Pool.Ping(toCtx) // pool directly so boot pings stay out of the SQL trace
	})
	if lastErr != nil {
		p.Close()
		return nil, fmt.Errorf("postgres ping failed after %d attempts: %w", attempts, lastErr)
	}
	return newPGAdapter(p), nil
}

// retry calls fn until it succeeds, attempts run out or ctx ends, backing off exponentially
func retry(ctx context.Context, attempts int, fn func() error) error {
	var err error
	backoff := backoffStart
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if i == attempts-1 {
			break
		}
		sleep(ctx, backoff)
		backoff = min(backoff*2, backoffCeiling)
	}
	return err
}

func openCH(ctx context.Context, cfg Config, s *Store) (Clickhouse, error) {
	c, err := chOpen(ctx, chx.Config{URL: cfg.CH.URL, Role: cfg.CH.Role, Tag: version.Info().Version})
	if err != nil {
		return nil, err
	}
	a := newCHAdapter(c)
	// clickhouse-go dials lazily; an unreachable server at boot is not fatal
	if err := a.Ping(ctx); err != nil {
		s.Log.Warn().Err(err).Msg("clickhouse ping failed; usage events will retry per insert")
	}
	return a, nil
}

// appName is "service-role" when both are known, i.e. codeexplainer-api
func appName(cfg Config) string {
	switch {
	case cfg.AppName == "":
		return cfg.CH.Role
	case cfg.CH.Role == "":
		return cfg.AppName
	}
	return cfg.AppName + "-" + cfg.CH.Role
}
