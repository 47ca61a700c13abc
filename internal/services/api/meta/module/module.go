// Package module wires meta endpoints into the API using a tiny module
package module

import (
	"net/http"
	"time"

	modkit "codeexplainer/internal/modkit"
	"codeexplainer/internal/modkit/httpkit"

	metahttp "codeexplainer/internal/services/api/meta/http"
)

// Module implements the modkit.Module interface
type Module struct {
	deps      modkit.Deps
	name      string
	mws       []func(http.Handler) http.Handler
	startedAt time.Time
}

// New constructs a meta module; its routes sit directly under the API root
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(modkit.Built{Name: "meta"}, opts...)
	return &Module{
		deps:      deps,
		name:      b.Name,
		mws:       b.Mw,
		startedAt: deps.Clock()(),
	}
}

// MountRoutes implements the modkit.Module interface
func (m *Module) MountRoutes(r httpkit.Router) {
	r.Group(func(rr httpkit.Router) {
		rr.Use(m.mws...)
		d := metahttp.Deps{StartedAt: m.startedAt, Now: m.deps.Clock()}
		// typed nils would defeat the skipped check
		if m.deps.PG != nil {
			d.PG = m.deps.PG
		}
		if m.deps.CH != nil {
			d.CH = m.deps.CH
		}
		metahttp.Register(rr, d)
	})
}

// Name implements the modkit.Module interface
func (m *Module) Name() string { return m.name }

// Ports implements the modkit.Module interface
func (m *Module) Ports() any { return nil }
