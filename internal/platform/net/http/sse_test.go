package http_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	perr "codeexplainer/internal/platform/errors"
	phttp "codeexplainer/internal/platform/net/http"
)

type noFlush struct{ http.ResponseWriter }

func TestEventStream_WritesNamedEvents(t *testing.T) {
	rec := httptest.NewRecorder()
	es, err := phttp.NewEventStream(rec)
	if err != nil {
		t.Fatalf("NewEventStream: %v", err)
	}
	if err := es.Send("chunk", map[string]string{"text": "Hello"}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if err := es.SendError(perr.New(perr.ErrorCodeGeneration, "Failed to generate explanation")); err != nil {
		t.Fatalf("SendError: %v", err)
	}

	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content-type = %q", ct)
	}
	if !rec.Flushed {
		t.Fatalf("expected flush")
	}
	want := "event: chunk\ndata: {\"text\":\"Hello\"}\n\n" +
		"event: error\ndata: {\"error\":\"Failed to generate explanation\"}\n\n"
	if rec.Body.String() != want {
		t.Fatalf("body =\n%s\nwant\n%s", rec.Body.String(), want)
	}
}

func TestEventStream_RequiresFlusher(t *testing.T) {
	if _, err := phttp.NewEventStream(noFlush{httptest.NewRecorder()}); err == nil {
		t.Fatalf("expected error for writer without Flush")
	}
}
