// Package httpkit provides handler and routing helpers that alias the platform http package
// use these from modules so they do not import internal/platform/net/http directly
package httpkit

import (
	"net/http"

	phttp "codeexplainer/internal/platform/net/http"
	"codeexplainer/internal/platform/net/http/bind"
)

type (
	// Response is the HTTP response type
	Response = phttp.Response

	// Handler is the platform handler type
	Handler = phttp.Handler

	// Router is a re-export of the platform router seam
	Router = phttp.Router

	// Message is the acknowledgement body, i.e. after deletes
	Message = phttp.Message

	// EventStream writes Server-Sent Events
	EventStream = phttp.EventStream
)

// OK returns a 200 response
func OK(data any) Response { return phttp.OK(data) }

// NoContent returns a 204 response
func NoContent() Response { return phttp.NoContent() }

// Error returns a response that maps an error to status and wire body
func Error(err error) Response { return phttp.Error(err) }

// Msg returns a 200 acknowledgement with a message body
func Msg(text string) Response { return phttp.OK(Message{Message: text}) }

// JSON decodes and validates a T from the body, then calls fn
// fn may return a Response to control the status; anything else is a 200
func JSON[T any](fn func(*http.Request, T) (any, error)) Handler {
	return phttp.JSONHandler(fn)
}

// Call adapts a handler that takes no JSON body
func Call(fn func(*http.Request) (any, error)) Handler {
	return phttp.JSONHandlerNoBody(fn)
}

// Handle lets you directly adapt a Response-returning function if you prefer
func Handle(fn func(*http.Request) Response) Handler {
	return phttp.Handle(fn)
}

// ParseJSON decodes and validates a T from the body for handlers that write their own response
func ParseJSON[T any](r *http.Request) (T, error) { return bind.ParseJSON[T](r) }

// RespondError writes err as a JSON error body with its mapped status
func RespondError(w http.ResponseWriter, r *http.Request, err error) { phttp.RespondError(w, r, err) }

// NewEventStream commits a 200 text/event-stream response
func NewEventStream(w http.ResponseWriter) (*EventStream, error) { return phttp.NewEventStream(w) }
