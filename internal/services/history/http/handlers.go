// Package http provides http transport for history
package http

import (
	stdhttp "net/http"

	"codeexplainer/internal/modkit/httpkit"
	"codeexplainer/internal/services/history/domain"
)

// Register mounts the routes; callers must have authenticated the request
func Register(r httpkit.Router, s domain.ServicePort) {
	h := &handlers{svc: s}
	httpkit.Get(r, "/", h.list)
	httpkit.Delete(r, "/", h.deleteAll)
	httpkit.Get(r, "/{id}", h.get)
	httpkit.Delete(r, "/{id}", h.delete)
}

type handlers struct{ svc domain.ServicePort }

// @Summary List the caller's explanations
// @Tags history
// @Produce json
// @Param language query string false "exact language"
// @Param mode query string false "exact mode"
// @Param search query string false "case-insensitive substring of code or explanation"
// @Param page query int false "1-based page" default(1)
// @Param limit query int false "page size, max 100" default(20)
// @Success 200 {object} domain.Page
// @Failure 401 {object} errors.Wire
// @Router /history [get]
func (h *handlers) list(r *stdhttp.Request) (any, error) {
	who, err := httpkit.User(r)
	if err != nil {
		return nil, err
	}
	return h.svc.List(r.Context(), domain.Filter{
		UserID:   who.ID,
		Language: domain.Language(httpkit.Query(r, "language")),
		Mode:     domain.Mode(httpkit.Query(r, "mode")),
		Search:   httpkit.Query(r, "search"),
		Page:     httpkit.QueryPositiveInt(r, "page", domain.DefaultPage),
		Limit:    httpkit.QueryPositiveInt(r, "limit", domain.DefaultLimit),
	})
}

// @Summary Get one of the caller's explanations
// @Tags history
// @Produce json
// @Param id path string true "history id"
// @Success 200 {object} domain.Record
// @Failure 404 {object} errors.Wire
// @Router /history/{id} [get]
func (h *handlers) get(r *stdhttp.Request) (any, error) {
	who, err := httpkit.User(r)
	if err != nil {
		return nil, err
	}
	return h.svc.Get(r.Context(), who.ID, httpkit.Param(r, "id"))
}

// @Summary Delete one of the caller's explanations
// @Tags history
// @Produce json
// @Param id path string true "history id"
// @Success 200 {object} http.Message
// @Failure 404 {object} errors.Wire
// @Router /history/{id} [delete]
func (h *handlers) delete(r *stdhttp.Request) (any, error) {
	who, err := httpkit.User(r)
	if err != nil {
		return nil, err
	}
	if err := h.svc.Delete(r.Context(), who.ID, httpkit.Param(r, "id")); err != nil {
		return nil, err
	}
	return httpkit.Msg("History deleted successfully"), nil
}

// @Summary Delete all of the caller's explanations
// @Tags history
// @Produce json
// @Success 200 {object} http.Message
// @Router /history [delete]
func (h *handlers) deleteAll(r *stdhttp.Request) (any, error) {
	who, err := httpkit.User(r)
	if err != nil {
		return nil, err
	}
	if _, err := h.svc.DeleteAll(r.Context(), who.ID); err != nil {
		return nil, err
	}
	return httpkit.Msg("All history deleted successfully"), nil
}
