// Package api composes the HTTP API for the application
package api

import (
	"context"
	"time"

	"codeexplainer/internal/core/ratelimit"
	"codeexplainer/internal/platform/config"
	"codeexplainer/internal/platform/logger"
	"codeexplainer/internal/platform/metrics"
	phttp "codeexplainer/internal/platform/net/http"
	"codeexplainer/internal/platform/store"

	"codeexplainer/internal/modkit"
	"codeexplainer/internal/modkit/httpkit"
	"codeexplainer/internal/modkit/module"
	"codeexplainer/internal/modkit/swaggerkit"

	metamod "codeexplainer/internal/services/api/meta/module"
	authmod "codeexplainer/internal/services/auth/module"
	explaindom "codeexplainer/internal/services/explain/domain"
	explainmod "codeexplainer/internal/services/explain/module"
	historymod "codeexplainer/internal/services/history/module"
	usagemod "codeexplainer/internal/services/usage/module"
)

// Options are the API options
type Options struct {
	Config         config.Conf // root view; modules pick their own prefixes
	Store          *store.Store
	Generator      explaindom.Generator
	AllowedOrigins []string
	SlowRequest    time.Duration
	EnableSwagger  bool
	EnableProfiler bool
	Now            func() time.Time
}

// Runners are the background loops the API needs next to the http server
type Runners struct {
	usage   *usagemod.Module
	limiter *ratelimit.Limiter
	sweep   time.Duration
}

// Run blocks until ctx is done; it drains usage events and sweeps idle rate limit keys
func (rn *Runners) Run(ctx context.Context) error {
	done := make(chan error, 1)
	go func() { done <- rn.usage.Run(ctx) }()
	if rn.limiter != nil {
		if err := rn.limiter.Run(ctx, rn.sweep); err != nil {
			return err
		}
	} else {
		<-ctx.Done()
	}
	return <-done
}

// Mount mounts every module under /api plus docs, metrics and the profiler at the root
func Mount(r phttp.Router, opt Options) *Runners {
	st := opt.Store
	if st == nil {
		st = &store.Store{}
	}
	deps := modkit.Deps{
		Log: *logger.Named("api"),
		Cfg: opt.Config,
		PG:  st.PG,
		CH:  st.CH,
		Now: opt.Now,
	}

	// auth first: everything else is protected by its port
	auth := authmod.New(deps)
	authPorts := auth.Ports().(authmod.Ports)
	protect := modkit.WithMiddlewares(httpkit.Auth(authPorts.Auth))

	history := historymod.New(deps, protect)
	usage := usagemod.New(deps, protect)
	explain := explainmod.New(deps, protect, modkit.WithPorts(explaindom.Ports{
		History:   module.MustPortsOf[historymod.Ports](history).Recorder,
		Usage:     module.MustPortsOf[usagemod.Ports](usage).Sink,
		Generator: opt.Generator,
	}))

	mods := []module.Module{
		metamod.New(deps),
		auth,
		explain,
		history,
		usage,
	}

	r.Handle("/metrics", metrics.Handler())
	swaggerkit.Mount(r, opt.EnableSwagger)
	phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

	stack := httpkit.CommonStack(httpkit.StackOptions{
		AllowedOrigins: opt.AllowedOrigins,
		SlowRequest:    opt.SlowRequest,
	})
	httpkit.MountAPI(r, "", stack, func(api httpkit.Router) {
		for _, m := range mods {
			// register each module's ports under its own name (for cross-module lookups)
			module.Register(m.Name(), m.Ports())
			m.MountRoutes(api)
		}
	})

	return &Runners{
		usage:   usage,
		limiter: explain.Limiter(),
		sweep:   explainmod.FromConfig(opt.Config).RateWindow,
	}
}
