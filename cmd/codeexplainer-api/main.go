// @title         Code Explainer API
// @version       0.1.0
// @description   Explains source code with a generative model and keeps a per user history
// @BasePath      /api
// @securityDefinitions.apikey bearerAuth
// @in            header
// @name          Authorization

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codeexplainer/internal/modkit/repokit"
	"codeexplainer/internal/platform/config"
	"codeexplainer/internal/platform/logger"
	phttp "codeexplainer/internal/platform/net/http"
	"codeexplainer/internal/platform/store"

	"codeexplainer/internal/services/api"
	explainmod "codeexplainer/internal/services/explain/module"

	"golang.org/x/sync/errgroup"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// service-scoped config for HTTP etc (CORE_API_*)
	root := config.New()
	apiCfg := root.Prefix("CORE_API_")

	// bring up logging early
	l := logger.Get()

	// memory keeps everything in process; pg needs SERVICE_PGSQL_DBURL
	usePG := apiCfg.MayEnum("STORE", "pg", "pg", "memory") == "pg"
	st, err := store.Open(ctx, store.ConfigFrom(root, "codeexplainer", "api", usePG), store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()
	repokit.MustGuard(ctx, st)

	gen, err := explainmod.NewGenerator(ctx, explainmod.ProviderFromConfig(root))
	if err != nil {
		l.Panic().Err(err).Msg("generator init failed")
	}
	l.Info().Str("provider", gen.Name()).Bool("pg", usePG).Bool("clickhouse", st.CH != nil).Msg("backends ready")

	// http server (reads CORE_API_PORT / CORE_API_ADDR)
	srv := phttp.NewServer(apiCfg)

	runners := api.Mount(
		srv.Router(),
		api.Options{
			Config:         root,
			Store:          st,
			Generator:      gen,
			AllowedOrigins: apiCfg.MayCSV("CLIENT_URL", []string{"http://localhost:5173"}),
			SlowRequest:    apiCfg.MayDuration("SLOW_REQUEST", 2*time.Second),
			EnableSwagger:  apiCfg.MayBool("SWAGGER", true),
			EnableProfiler: apiCfg.MayBool("PROFILER", false),
		},
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(gctx) })
	g.Go(func() error { return runners.Run(gctx) })
	if err := g.Wait(); err != nil {
		l.Panic().Err(err).Msg("api stopped")
	}
	l.Info().Msg("api stopped")
}
