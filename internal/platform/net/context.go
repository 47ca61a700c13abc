// Package net carries request-scoped identity on contexts
package net

import (
	"context"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// Principal is the caller resolved from a bearer token
type Principal struct {
	ID    string
	Email string
	Name  string
}

type ctxKey string

const keyPrincipal ctxKey = "principal"

// WithRequest sets the chi request id so chimw.GetReqID can retrieve it
func WithRequest(ctx context.Context, reqID string) context.Context {
	if reqID == "" {
		return ctx
	}
	return context.WithValue(ctx, chimw.RequestIDKey, reqID)
}

// WithPrincipal annotates context with the authenticated caller
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	if p.ID == "" {
		return ctx
	}
	return context.WithValue(ctx, keyPrincipal, p)
}

// RequestID returns the request id on the context if present
func RequestID(ctx context.Context) string { return chimw.GetReqID(ctx) }

// PrincipalFrom returns the authenticated caller, if any
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(keyPrincipal).(Principal)
	return p, ok
}

// UserID returns the authenticated user id on the context if present
func UserID(ctx context.Context) string {
	p, _ := PrincipalFrom(ctx)
	return p.ID
}
