package store

import (
	"testing"
	"time"

	"codeexplainer/internal/platform/config"
	"codeexplainer/internal/platform/testkit"
)

func TestConfigFrom_Defaults(t *testing.T) {
	t.Setenv("SERVICE_PGSQL_DBURL", "postgres://localhost/codeexplainer")

	cfg := ConfigFrom(config.New(), "codeexplainer", "api", true)
	if !cfg.PG.Enabled || cfg.PG.URL != "postgres://localhost/codeexplainer" {
		t.Fatalf("pg = %+v", cfg.PG)
	}
	if cfg.PG.MaxConns != 4 || cfg.PG.SlowQueryMs != 500 || cfg.PG.PingTimeout != 3*time.Second {
		t.Fatalf("pg defaults = %+v", cfg.PG)
	}
	if cfg.CH.Enabled || cfg.CH.Role != "api" {
		t.Fatalf("ch = %+v", cfg.CH)
	}
}

func TestConfigFrom_MemoryStoreNeedsNoDSN(t *testing.T) {
	t.Setenv("SERVICE_PGSQL_DBURL", "")
	cfg := ConfigFrom(config.New(), "codeexplainer", "api", false)
	if cfg.PG.Enabled || cfg.PG.URL != "" {
		t.Fatalf("pg = %+v", cfg.PG)
	}
}

func TestConfigFrom_ClickhouseRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("SERVICE_CLICKHOUSE_ENABLED", "true")
	t.Setenv("SERVICE_CLICKHOUSE_DBURL", "")
	testkit.MustPanic(t, func() { ConfigFrom(config.New(), "codeexplainer", "api", false) })

	t.Setenv("SERVICE_CLICKHOUSE_DBURL", "clickhouse://localhost:9000/default")
	cfg := ConfigFrom(config.New(), "codeexplainer", "api", false)
	if !cfg.CH.Enabled || cfg.CH.URL == "" {
		t.Fatalf("ch = %+v", cfg.CH)
	}
}
