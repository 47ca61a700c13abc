package store

import (
	"time"

	"codeexplainer/internal/platform/config"
)

// Config aggregates per backend configuration
type Config struct {
	// AppName tags clickhouse client info
	AppName string

	PG PGConfig
	CH CHConfig
}

// PGConfig configures postgres connectivity and tracing
type PGConfig struct {
	Enabled     bool
	URL         string
	MaxConns    int32
	LogSQL      bool
	SlowQueryMs int

	// boot knobs; zero picks the defaults in openPG
	ConnectRetries int
	PingTimeout    time.Duration
}

// CHConfig configures clickhouse connectivity
type CHConfig struct {
	Enabled bool
	URL     string
	Role    string
}

// ConfigFrom reads SERVICE_PGSQL_* and SERVICE_CLICKHOUSE_* from c
// pgEnabled is decided by the caller (the memory store needs no database)
func ConfigFrom(c config.Conf, appName, role string, pgEnabled bool) Config {
	pgc := c.Prefix("SERVICE_PGSQL_")
	chc := c.Prefix("SERVICE_CLICKHOUSE_")

	chEnabled := chc.MayBool("ENABLED", false)
	return Config{
		AppName: appName,
		PG: PGConfig{
			Enabled:        pgEnabled,
			URL:            pgc.MustStringIf(pgEnabled, "DBURL"),
			MaxConns:       int32(pgc.MayPositiveInt("MAX_CONNS", 4)),
			LogSQL:         pgc.MayBool("LOG_SQL", false),
			SlowQueryMs:    pgc.MayInt("SLOW_MS", 500),
			ConnectRetries: pgc.MayPositiveInt("CONNECT_RETRIES", 20),
			PingTimeout:    pgc.MayDuration("PING_TIMEOUT", 3*time.Second),
		},
		CH: CHConfig{
			Enabled: chEnabled,
			URL:     chc.MustStringIf(chEnabled, "DBURL"),
			Role:    role,
		},
	}
}
