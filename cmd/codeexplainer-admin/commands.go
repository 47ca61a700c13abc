package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"codeexplainer/internal/core/prompt"
	"codeexplainer/internal/modkit/repokit"
	"codeexplainer/internal/platform/config"
	"codeexplainer/internal/platform/logger"
	pnet "codeexplainer/internal/platform/net"
	"codeexplainer/internal/platform/store"
	"codeexplainer/internal/platform/store/migrations"

	adomain "codeexplainer/internal/services/auth/domain"
	arepo "codeexplainer/internal/services/auth/repo"
	asvc "codeexplainer/internal/services/auth/service"
	"codeexplainer/internal/services/auth/token"
	hdomain "codeexplainer/internal/services/history/domain"
	hrepo "codeexplainer/internal/services/history/repo"
	hsvc "codeexplainer/internal/services/history/service"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "codeexplainer-admin",
		Short:         "Operator tooling for the code explainer",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newMigrateCmd(), newSeedCmd(), newTokenCmd())
	return root
}

// openStore always enables postgres; the admin commands have nothing to do against memory
func openStore(ctx context.Context) (*store.Store, func(), error) {
	l := logger.Get()
	st, err := store.Open(ctx, store.ConfigFrom(config.New(), "codeexplainer", "admin", true), store.WithLogger(*l))
	if err != nil {
		return nil, nil, err
	}
	repokit.MustGuard(ctx, st)
	return st, func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}, nil
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending Postgres migrations and the ClickHouse schema when enabled",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg := store.ConfigFrom(config.New(), "codeexplainer", "admin", true)
			if err := migrations.UpPG(cfg.PG.URL); err != nil {
				return err
			}
			if !cfg.CH.Enabled {
				logger.Named("admin").Info().Msg("clickhouse disabled, skipping")
				return nil
			}
			st, done, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer done()
			return migrations.UpCH(ctx, st.CH)
		},
	}
}

type sample struct {
	code     string
	language hdomain.Language
	mode     prompt.Mode
	text     string
}

var samples = []sample{
	{
		code:     "function fib(n) {\n  return n < 2 ? n : fib(n - 1) + fib(n - 2);\n}",
		language: "javascript",
		mode:     prompt.Explain,
		text:     "This function computes the nth Fibonacci number recursively. Each call branches twice, so the running time grows exponentially with n.",
	},
	{
		code:     "def search(xs, t):\n    lo, hi = 0, len(xs) - 1\n    while lo <= hi:\n        mid = (lo + hi) // 2\n        if xs[mid] == t:\n            return mid\n        if xs[mid] < t:\n            lo = mid + 1\n        else:\n            hi = mid - 1\n    return -1",
		language: "python",
		mode:     prompt.CP,
		text:     "Binary search over a sorted list. Time O(log n), space O(1). Edge cases: empty list, duplicates return any matching index.",
	},
}

// seedDemo upserts the demo user and adds the samples only while the user has no history
func seedDemo(ctx context.Context, users adomain.UserPort, hist hdomain.ServicePort, email string) (adomain.User, error) {
	u, err := users.Upsert(ctx, adomain.Profile{
		GoogleID: "seed-" + strings.ToLower(email),
		Email:    email,
		Name:     "Demo User",
	})
	if err != nil {
		return adomain.User{}, err
	}
	have, err := hist.List(ctx, hdomain.Filter{UserID: u.ID, Page: 1, Limit: 1})
	if err != nil {
		return adomain.User{}, err
	}
	if have.Pagination.Total > 0 {
		logger.C(ctx).Info().Str("user_id", u.ID).Int("histories", have.Pagination.Total).Msg("demo user already has history, skipping samples")
		return u, nil
	}
	for _, s := range samples {
		if _, err := hist.Create(ctx, hdomain.Draft{
			UserID:      u.ID,
			Code:        s.code,
			Explanation: s.text,
			Language:    s.language,
			Mode:        s.mode,
		}); err != nil {
			return adomain.User{}, err
		}
	}
	return u, nil
}

func newSeedCmd() *cobra.Command {
	var (
		email   string
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create a demo user, add sample history if it has none, and print a bearer token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			st, done, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer done()

			tokens, err := issuer()
			if err != nil {
				return err
			}

			var user adomain.User
			tx := repokit.WithBeginHooks(st.PG, repokit.StatementTimeout(timeout))
			err = repokit.WithTx(ctx, tx, func(q repokit.Queryer) error {
				users := asvc.New(repokit.MustBind(arepo.NewPG(), q), time.Now)
				hist := hsvc.New(repokit.MustBind(hrepo.NewPG(), q), hsvc.Options{})

				u, err := seedDemo(ctx, users, hist, email)
				user = u
				return err
			})
			if err != nil {
				return err
			}

			tok, err := tokens.Issue(pnet.Principal{ID: user.ID, Email: user.Email, Name: user.Name})
			if err != nil {
				return err
			}
			logger.Named("admin").Info().Str("user_id", user.ID).Msg("seeded")
			_, err = fmt.Fprintln(cmd.OutOrStdout(), tok)
			return err
		},
	}
	cmd.Flags().StringVar(&email, "email", "demo@example.com", "demo user email")
	cmd.Flags().DurationVar(&timeout, "statement-timeout", 30*time.Second, "per statement timeout inside the seed transaction")
	return cmd
}

func newTokenCmd() *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for an existing user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if email == "" {
				return fmt.Errorf("--user is required")
			}
			ctx := cmd.Context()
			st, done, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer done()

			tokens, err := issuer()
			if err != nil {
				return err
			}
			u, err := asvc.New(repokit.MustBind(arepo.NewPG(), st.PG), time.Now).ByEmail(ctx, email)
			if err != nil {
				return err
			}
			tok, err := tokens.Issue(pnet.Principal{ID: u.ID, Email: u.Email, Name: u.Name})
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), tok)
			return err
		},
	}
	cmd.Flags().StringVar(&email, "user", "", "email of the user to issue for")
	return cmd
}

// issuer reads the same AUTH_* settings the api uses so tokens verify there
func issuer() (*token.Issuer, error) {
	c := config.New().Prefix("AUTH_")
	return token.New(c.MustString("JWT_SECRET"), c.MayDuration("JWT_TTL", token.DefaultTTL), time.Now)
}
