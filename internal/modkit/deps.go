// Package modkit provides module wiring and core deps
package modkit

import (
	"time"

	"codeexplainer/internal/modkit/repokit"
	"codeexplainer/internal/platform/config"
	"codeexplainer/internal/platform/logger"
	"codeexplainer/internal/platform/store"
)

// Deps holds core dependencies passed to modules
// this is wiring only and does not introduce new abstractions
type Deps struct {
	Log logger.Logger
	Cfg config.Conf
	PG  repokit.TxRunner // nil when the memory store is selected
	CH  store.Clickhouse // nil when usage events are disabled
	Now func() time.Time // nil means time.Now
}

// Clock returns Now or time.Now
func (d Deps) Clock() func() time.Time {
	if d.Now != nil {
		return d.Now
	}
	return time.Now
}
