// Package module wires the explain pipeline into the API using modkit
package module

import (
	"net/http"

	"codeexplainer/internal/core/ratelimit"
	modkit "codeexplainer/internal/modkit"
	"codeexplainer/internal/modkit/httpkit"
	"codeexplainer/internal/services/explain/domain"
	ehttp "codeexplainer/internal/services/explain/http"
	esvc "codeexplainer/internal/services/explain/service"
)

// Name is the registry key for explain ports
const Name = "explain"

// Ports is what explain offers other modules
type Ports struct {
	Service domain.ServicePort
	Limiter domain.Limiter
}

// Module implements the explain API module
type Module struct {
	name    string
	prefix  string
	mws     []func(http.Handler) http.Handler
	svc     *esvc.Svc
	limiter *ratelimit.Limiter // nil when the caller injected its own
	ports   Ports
}

// New expects WithPorts(domain.Ports); a missing Limiter is built from config
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(modkit.Built{Name: Name, Prefix: "/explain"}, opts...)

	ports, ok := modkit.PortsAs[domain.Ports](b)
	if !ok {
		panic("explain module: expected WithPorts(explain/domain.Ports)")
	}
	cfg := FromConfig(deps.Cfg)

	m := &Module{name: b.Name, prefix: b.Prefix, mws: b.Mw}
	if ports.Limiter == nil {
		m.limiter = ratelimit.New(cfg.RateLimit, cfg.RateWindow, ratelimit.WithClock(deps.Clock()))
		ports.Limiter = m.limiter
	}
	m.svc = esvc.New(ports, esvc.Config{MaxCodeChars: cfg.MaxCodeChars, Now: deps.Clock()})
	m.ports = Ports{Service: m.svc, Limiter: ports.Limiter}

	deps.Log.Info().
		Str("provider", ports.Generator.Name()).
		Int("rate_limit", cfg.RateLimit).
		Dur("rate_window", cfg.RateWindow).
		Msg("explain pipeline ready")
	return m
}

// Limiter returns the limiter the module built, nil when one was injected
// the caller sweeps idle keys with its Run method
func (m *Module) Limiter() *ratelimit.Limiter { return m.limiter }

// MountRoutes mounts the module routes on the given router
func (m *Module) MountRoutes(r httpkit.Router) {
	r.Route(m.prefix, func(rr httpkit.Router) {
		rr.Use(m.mws...)
		ehttp.Register(rr, m.svc)
	})
}

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// Name returns the module name
func (m *Module) Name() string { return m.name }

// Prefix returns the module route prefix
func (m *Module) Prefix() string { return m.prefix }
