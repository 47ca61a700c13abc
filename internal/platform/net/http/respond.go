// Package http provides the JSON response helpers and server plumbing for the API
package http

import (
	"encoding/json"
	stdhttp "net/http"

	perr "codeexplainer/internal/platform/errors"
	"codeexplainer/internal/platform/logger"
)

// Message is the body of acknowledgement-only responses, i.e. deletes
type Message struct {
	Message string `json:"message"`
}

// JSON writes v as application/json with the given status
func JSON(w stdhttp.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// RespondOK writes a 200 with data as the body
func RespondOK(w stdhttp.ResponseWriter, _ *stdhttp.Request, data any) {
	JSON(w, stdhttp.StatusOK, data)
}

// RespondError maps a project error to its status and wire body and writes it
// the wrapped cause is logged at error level for 5xx and never written to the client
func RespondError(w stdhttp.ResponseWriter, r *stdhttp.Request, err error) {
	status, body := perr.HTTP(err)
	if status >= stdhttp.StatusInternalServerError {
		logger.C(r.Context()).Error().Err(err).Int("status", status).Msg("request failed")
	}
	JSON(w, status, body)
}

//
// Return-style helpers for early returns in handlers
//

// Response is a functional response object for return-style handlers
type Response struct {
	Status int
	Body   any
	Header stdhttp.Header
}

// Handle adapts a Response-returning handler to net/http
func Handle(h func(r *stdhttp.Request) Response) stdhttp.HandlerFunc {
	return func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		h(r).write(w, r)
	}
}

func (resp Response) write(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	for k, vv := range resp.Header {
		for _, v := range vv {
			w.Header().Add(k, v)
		}
	}
	if err, ok := resp.Body.(error); ok && err != nil {
		RespondError(w, r, err)
		return
	}
	status := resp.Status
	if status == 0 {
		status = stdhttp.StatusOK
	}
	if status == stdhttp.StatusNoContent {
		w.WriteHeader(stdhttp.StatusNoContent)
		return
	}
	JSON(w, status, resp.Body)
}

// OK returns a 200 response
func OK(data any) Response { return Response{Status: stdhttp.StatusOK, Body: data} }

// NoContent returns a 204 response
func NoContent() Response { return Response{Status: stdhttp.StatusNoContent} }

// Error returns a response that maps the error to status and wire body
func Error(err error) Response { return Response{Body: err} }

// NotFoundHandler renders unknown routes as JSON
func NotFoundHandler(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	RespondError(w, r, perr.NotFoundf("Route not found"))
}

// MethodNotAllowedHandler renders a known route hit with the wrong verb as JSON
func MethodNotAllowedHandler(w stdhttp.ResponseWriter, _ *stdhttp.Request) {
	JSON(w, stdhttp.StatusMethodNotAllowed, perr.Wire{Error: "Method not allowed"})
}
