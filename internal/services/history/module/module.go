// Package module wires history into the API using modkit
package module

import (
	"net/http"

	modkit "codeexplainer/internal/modkit"
	"codeexplainer/internal/modkit/httpkit"
	"codeexplainer/internal/modkit/repokit"
	"codeexplainer/internal/services/history/domain"
	hhttp "codeexplainer/internal/services/history/http"
	hrepo "codeexplainer/internal/services/history/repo"
	hsvc "codeexplainer/internal/services/history/service"
)

// Name is the registry key for history ports
const Name = "history"

// Ports is what history offers other modules
type Ports struct {
	Recorder domain.RecorderPort
	Service  domain.ServicePort
}

// Module implements the history API module
type Module struct {
	name   string
	prefix string
	mws    []func(http.Handler) http.Handler
	svc    hsvc.Service
	ports  Ports
}

// New builds the module on Postgres when deps.PG is set, otherwise on the in-process repo
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(modkit.Built{Name: Name, Prefix: "/history"}, opts...)

	var r hrepo.Repo
	if deps.PG != nil {
		r = repokit.MustBind(hrepo.NewPG(), deps.PG)
	} else {
		deps.Log.Warn().Msg("history: no database configured, records live in memory")
		r = hrepo.NewMemory()
	}

	svc := hsvc.New(r, hsvc.Options{Now: deps.Clock()})
	return &Module{
		name:   b.Name,
		prefix: b.Prefix,
		mws:    b.Mw,
		svc:    svc,
		ports:  Ports{Recorder: svc, Service: svc},
	}
}

// MountRoutes mounts the module routes on the given router
func (m *Module) MountRoutes(r httpkit.Router) {
	r.Route(m.prefix, func(rr httpkit.Router) {
		rr.Use(m.mws...)
		hhttp.Register(rr, m.svc)
	})
}

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// Name returns the module name
func (m *Module) Name() string { return m.name }

// Prefix returns the module route prefix
func (m *Module) Prefix() string { return m.prefix }
