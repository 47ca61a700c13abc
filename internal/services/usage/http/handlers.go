// Package http provides http transport for usage summaries
package http

import (
	stdhttp "net/http"
	"time"

	"codeexplainer/internal/modkit/httpkit"
	perr "codeexplainer/internal/platform/errors"
	"codeexplainer/internal/services/usage/domain"
)

// DefaultDays is the summary window when days is absent
const DefaultDays = 30

// Register mounts GET / for the caller's summary; a nil reader answers 503
func Register(r httpkit.Router, s domain.ReaderPort, now func() time.Time) {
	h := &handlers{svc: s, now: now}
	httpkit.Get(r, "/", h.summary)
}

type handlers struct {
	svc domain.ReaderPort
	now func() time.Time
}

// @Summary Caller's explanation usage
// @Tags usage
// @Produce json
// @Param days query int false "look-back window in days" default(30)
// @Success 200 {object} domain.Summary
// @Failure 503 {object} errors.Wire
// @Router /usage [get]
func (h *handlers) summary(r *stdhttp.Request) (any, error) {
	who, err := httpkit.User(r)
	if err != nil {
		return nil, err
	}
	if h.svc == nil {
		return nil, perr.Unavailablef("Usage tracking is disabled")
	}
	days := min(httpkit.QueryPositiveInt(r, "days", DefaultDays), 365)
	since := h.now().UTC().AddDate(0, 0, -days)
	return h.svc.Summary(r.Context(), who.ID, since)
}
