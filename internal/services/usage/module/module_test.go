package module

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	modkit "codeexplainer/internal/modkit"
	"codeexplainer/internal/modkit/httpkit"
	phttp "codeexplainer/internal/platform/net/http"
	"codeexplainer/internal/platform/store"
	"codeexplainer/internal/services/usage/domain"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

type emptyCH struct{}

func (emptyCH) Insert(context.Context, string, [][]any) error { return nil }
func (emptyCH) Query(context.Context, string, ...any) (store.Rows, error) {
	return nil, errors.New("no rows in tests")
}
func (emptyCH) Exec(context.Context, string, ...any) error { return nil }
func (emptyCH) Close() error                               { return nil }

func serve(t *testing.T, m *Module, user string) (int, map[string]any) {
	t.Helper()
	port := httpkit.NewPortFunc(func(tok string) (httpkit.Principal, error) {
		return httpkit.Principal{ID: tok}, nil
	})
	mux := chi.NewRouter()
	mux.Group(func(r chi.Router) {
		r.Use(httpkit.Auth(port))
		m.MountRoutes(phttp.AdaptChi(r))
	})
	req := httptest.NewRequest(http.MethodGet, "/usage", nil)
	req.Header.Set("Authorization", "Bearer "+user)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return rec.Code, body
}

func TestDisabled_DropsEventsAndAnswers503(t *testing.T) {
	m := New(modkit.Deps{})
	p := m.Ports().(Ports)
	require.IsType(t, domain.Nop{}, p.Sink)
	require.Nil(t, p.Reader)

	code, body := serve(t, m, "alice")
	require.Equal(t, http.StatusServiceUnavailable, code)
	require.Equal(t, "Usage tracking is disabled", body["error"])

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	require.NoError(t, m.Run(ctx))
}

func TestEnabled_QueryFailureIs500(t *testing.T) {
	m := New(modkit.Deps{CH: emptyCH{}})
	p := m.Ports().(Ports)
	require.NotNil(t, p.Reader)

	code, body := serve(t, m, "alice")
	require.Equal(t, http.StatusInternalServerError, code)
	require.Equal(t, "Internal Server Error", body["error"])
}
