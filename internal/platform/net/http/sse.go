package http

import (
	"encoding/json"
	"fmt"
	stdhttp "net/http"

	perr "codeexplainer/internal/platform/errors"
)

// EventStream writes Server-Sent Events, flushing after every event
type EventStream struct {
	w stdhttp.ResponseWriter
	f stdhttp.Flusher
}

// NewEventStream sets the SSE headers and commits a 200
// it fails when the writer cannot flush (i.e. a buffering middleware is in the way)
func NewEventStream(w stdhttp.ResponseWriter) (*EventStream, error) {
	f, ok := w.(stdhttp.Flusher)
	if !ok {
		return nil, perr.Internalf("streaming unsupported")
	}
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(stdhttp.StatusOK)
	f.Flush()
	return &EventStream{w: w, f: f}, nil
}

// Send writes one named event with v JSON-encoded as its data line
func (s *EventStream) Send(event string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, b); err != nil {
		return err
	}
	s.f.Flush()
	return nil
}

// SendError writes an "error" event carrying the caller-safe wire body of err
func (s *EventStream) SendError(err error) error {
	return s.Send("error", perr.WireFrom(err))
}
