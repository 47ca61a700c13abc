// Package module wires usage events into the API using modkit
package module

import (
	"context"
	"net/http"

	modkit "codeexplainer/internal/modkit"
	"codeexplainer/internal/modkit/httpkit"
	"codeexplainer/internal/services/usage/domain"
	uhttp "codeexplainer/internal/services/usage/http"
	urepo "codeexplainer/internal/services/usage/repo"
	usvc "codeexplainer/internal/services/usage/service"
)

// Name is the registry key for usage ports
const Name = "usage"

// Ports is what usage offers other modules
type Ports struct {
	Sink   domain.SinkPort
	Reader domain.ReaderPort // nil when ClickHouse is disabled
}

// Module implements the usage API module
type Module struct {
	name   string
	prefix string
	mws    []func(http.Handler) http.Handler
	deps   modkit.Deps
	svc    *usvc.Svc
	ports  Ports
}

// New records to ClickHouse when deps.CH is set and drops events otherwise
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(modkit.Built{Name: Name, Prefix: "/usage"}, opts...)
	m := &Module{name: b.Name, prefix: b.Prefix, mws: b.Mw, deps: deps}

	if deps.CH == nil {
		deps.Log.Info().Msg("usage: clickhouse disabled, events are dropped")
		m.ports = Ports{Sink: domain.Nop{}}
		return m
	}

	cfg := deps.Cfg.Prefix("USAGE_")
	m.svc = usvc.New(urepo.NewCH(deps.CH), usvc.Config{
		Buffer:     cfg.MayPositiveInt("BUFFER", 1024),
		BatchSize:  cfg.MayPositiveInt("BATCH", 100),
		FlushEvery: cfg.MayDuration("FLUSH_EVERY", 0),
	})
	m.ports = Ports{Sink: m.svc, Reader: m.svc}
	return m
}

// Run drains queued events until ctx is done; without ClickHouse it just waits
func (m *Module) Run(ctx context.Context) error {
	if m.svc == nil {
		<-ctx.Done()
		return nil
	}
	return m.svc.Run(ctx)
}

// MountRoutes mounts the module routes on the given router
func (m *Module) MountRoutes(r httpkit.Router) {
	r.Route(m.prefix, func(rr httpkit.Router) {
		rr.Use(m.mws...)
		uhttp.Register(rr, m.ports.Reader, m.deps.Clock())
	})
}

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// Name returns the module name
func (m *Module) Name() string { return m.name }

// Prefix returns the module route prefix
func (m *Module) Prefix() string { return m.prefix }
