// Package http provides http transport for the explain pipeline
package http

import (
	"errors"
	stdhttp "net/http"
	"strconv"

	"codeexplainer/internal/modkit/httpkit"
	"codeexplainer/internal/services/explain/domain"
)

// Register mounts the routes; callers must have authenticated the request
func Register(r httpkit.Router, s domain.ServicePort) {
	h := &handlers{svc: s}
	httpkit.PostJSON(r, "/", h.explain)
	r.Post("/stream", h.stream)
}

type handlers struct{ svc domain.ServicePort }

// @Summary Explain a piece of code
// @Tags explain
// @Accept json
// @Produce json
// @Param body body domain.Request true "code to explain"
// @Success 200 {object} domain.Result
// @Failure 400 {object} errors.Wire
// @Failure 401 {object} errors.Wire
// @Failure 429 {object} errors.Wire
// @Failure 500 {object} errors.Wire
// @Router /explain [post]
func (h *handlers) explain(r *stdhttp.Request, in domain.Request) (any, error) {
	who, err := httpkit.User(r)
	if err != nil {
		return nil, err
	}
	res, err := h.svc.Explain(r.Context(), who.ID, in)
	if err != nil {
		return failure(err), nil
	}
	return res, nil
}

// @Summary Explain a piece of code, streaming fragments as Server-Sent Events
// @Description Emits "chunk" events with {text}, then one "done" event with the saved result.
// @Description A failure after the first chunk is sent as an "error" event.
// @Tags explain
// @Accept json
// @Produce text/event-stream
// @Param body body domain.Request true "code to explain"
// @Success 200 {object} domain.Chunk
// @Failure 400 {object} errors.Wire
// @Failure 429 {object} errors.Wire
// @Router /explain/stream [post]
func (h *handlers) stream(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	who, err := httpkit.User(r)
	if err != nil {
		httpkit.RespondError(w, r, err)
		return
	}
	in, err := httpkit.ParseJSON[domain.Request](r)
	if err != nil {
		httpkit.RespondError(w, r, err)
		return
	}

	// the stream opens on the first fragment so earlier failures keep their status
	var es *httpkit.EventStream
	open := func() error {
		if es != nil {
			return nil
		}
		var err error
		es, err = httpkit.NewEventStream(w)
		return err
	}
	res, err := h.svc.Stream(r.Context(), who.ID, in, func(frag string) error {
		if err := open(); err != nil {
			return err
		}
		return es.Send("chunk", domain.Chunk{Text: frag})
	})
	if es == nil {
		if err != nil {
			setRetryAfter(w, err)
			httpkit.RespondError(w, r, err)
			return
		}
		if err := open(); err != nil {
			httpkit.RespondError(w, r, err)
			return
		}
	}
	if err != nil {
		_ = es.SendError(err)
		return
	}
	_ = es.Send("done", res)
}

// failure carries Retry-After on rate limited responses
func failure(err error) httpkit.Response {
	resp := httpkit.Error(err)
	if v := retryAfter(err); v != "" {
		resp.Header = stdhttp.Header{"Retry-After": []string{v}}
	}
	return resp
}

func setRetryAfter(w stdhttp.ResponseWriter, err error) {
	if v := retryAfter(err); v != "" {
		w.Header().Set("Retry-After", v)
	}
}

func retryAfter(err error) string {
	var rl *domain.RateLimitedError
	if !errors.As(err, &rl) {
		return ""
	}
	return strconv.Itoa(rl.RetryAfterSeconds())
}
