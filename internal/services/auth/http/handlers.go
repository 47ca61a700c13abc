// Package http provides http transport for auth
package http

import (
	stdhttp "net/http"

	"codeexplainer/internal/modkit/httpkit"
	"codeexplainer/internal/platform/net/middleware"
	"codeexplainer/internal/services/auth/domain"
)

// Register mounts /me behind p and /logout without it
func Register(r httpkit.Router, s domain.UserPort, p middleware.AuthPort) {
	h := &handlers{svc: s}
	httpkit.Protected(r, p, func(pr httpkit.Router) {
		httpkit.Get(pr, "/me", h.me)
	})
	httpkit.Post(r, "/logout", h.logout)
}

type handlers struct{ svc domain.UserPort }

// @Summary Current user
// @Tags auth
// @Produce json
// @Success 200 {object} domain.User
// @Failure 401 {object} errors.Wire
// @Failure 404 {object} errors.Wire
// @Router /auth/me [get]
func (h *handlers) me(r *stdhttp.Request) (any, error) {
	who, err := httpkit.User(r)
	if err != nil {
		return nil, err
	}
	return h.svc.Me(r.Context(), who.ID)
}

// tokens are stateless, the client discards its copy
//
// @Summary Log out
// @Tags auth
// @Produce json
// @Success 200 {object} http.Message
// @Router /auth/logout [post]
func (h *handlers) logout(*stdhttp.Request) (any, error) {
	return httpkit.Msg("Logged out successfully"), nil
}
