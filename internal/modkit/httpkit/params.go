package httpkit

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

// Param returns a path parameter captured by the router, i.e. {id}
func Param(r *http.Request, name string) string {
	return chi.URLParam(r, name)
}

// Query returns a trimmed query string value
func Query(r *http.Request, name string) string {
	return strings.TrimSpace(r.URL.Query().Get(name))
}

// QueryPositiveInt parses a positive integer query value; missing or invalid yields def
func QueryPositiveInt(r *http.Request, name string, def int) int {
	n, err := strconv.Atoi(Query(r, name))
	if err != nil || n <= 0 {
		return def
	}
	return n
}
