// Package module wires auth into the API using modkit
package module

import (
	"net/http"

	modkit "codeexplainer/internal/modkit"
	"codeexplainer/internal/modkit/httpkit"
	"codeexplainer/internal/modkit/repokit"
	"codeexplainer/internal/platform/net/middleware"
	"codeexplainer/internal/services/auth/domain"
	ahttp "codeexplainer/internal/services/auth/http"
	arepo "codeexplainer/internal/services/auth/repo"
	asvc "codeexplainer/internal/services/auth/service"
	"codeexplainer/internal/services/auth/token"
)

// Name is the registry key for auth ports
const Name = "auth"

// Ports is what auth offers other modules
type Ports struct {
	Auth   middleware.AuthPort
	Tokens *token.Issuer
	Users  domain.UserPort
}

// Module implements the auth API module
type Module struct {
	name   string
	prefix string
	mws    []func(http.Handler) http.Handler
	ports  Ports
}

// New reads AUTH_JWT_SECRET and AUTH_JWT_TTL and builds the token issuer and user service
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(modkit.Built{Name: Name, Prefix: "/auth"}, opts...)

	cfg := deps.Cfg.Prefix("AUTH_")
	tokens, err := token.New(cfg.MustString("JWT_SECRET"), cfg.MayDuration("JWT_TTL", token.DefaultTTL), deps.Clock())
	if err != nil {
		panic(err)
	}

	var r arepo.Repo
	if deps.PG != nil {
		r = repokit.MustBind(arepo.NewPG(), deps.PG)
	} else {
		r = arepo.NewMemory()
	}

	return &Module{
		name:   b.Name,
		prefix: b.Prefix,
		mws:    b.Mw,
		ports: Ports{
			Auth:   httpkit.NewPortFunc(tokens.Verify),
			Tokens: tokens,
			Users:  asvc.New(r, deps.Clock()),
		},
	}
}

// MountRoutes mounts the module routes on the given router
func (m *Module) MountRoutes(r httpkit.Router) {
	r.Route(m.prefix, func(rr httpkit.Router) {
		rr.Use(m.mws...)
		ahttp.Register(rr, m.ports.Users, m.ports.Auth)
	})
}

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// Name returns the module name
func (m *Module) Name() string { return m.name }

// Prefix returns the module route prefix
func (m *Module) Prefix() string { return m.prefix }
