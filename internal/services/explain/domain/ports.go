// Package domain holds the explain pipeline contracts
package domain

import (
	"context"
	"fmt"
	"iter"
	"time"

	perr "codeexplainer/internal/platform/errors"
	hdomain "codeexplainer/internal/services/history/domain"
	udomain "codeexplainer/internal/services/usage/domain"
)

// MsgRateLimited is the body of a rejected admission
const MsgRateLimited = "Rate limit exceeded. Please try again later."

// Generator turns a prompt into explanation text
// Stream yields fragments in arrival order; breaking the loop stops the upstream call
type Generator interface {
	Name() string
	Explain(ctx context.Context, prompt string) (string, error)
	Stream(ctx context.Context, prompt string) iter.Seq2[string, error]
}

// Limiter admits or rejects a caller; a rejection reports how long until the next slot frees
type Limiter interface {
	Check(key string) (bool, time.Duration)
}

// Ports is what the explain module needs from the rest of the API
type Ports struct {
	History   hdomain.RecorderPort
	Usage     udomain.SinkPort // optional
	Generator Generator
	Limiter   Limiter // optional; the module builds one from config when nil
}

// ServicePort runs the pipeline for an authenticated caller
type ServicePort interface {
	Explain(ctx context.Context, userID string, in Request) (Result, error)
	// Stream calls emit for each fragment before persisting; an emit error abandons the run
	Stream(ctx context.Context, userID string, in Request, emit func(fragment string) error) (Result, error)
}

// RateLimitedError is a 429 that also carries the wait until the caller may retry
type RateLimitedError struct {
	Wait time.Duration
	err  error
}

// NewRateLimited returns a RateLimitedError with the standard message
func NewRateLimited(wait time.Duration) *RateLimitedError {
	return &RateLimitedError{Wait: wait, err: perr.TooManyRequestsf(MsgRateLimited)}
}

func (e *RateLimitedError) Error() string { return fmt.Sprintf("%v (retry in %s)", e.err, e.Wait) }

// Unwrap exposes the 429 project error
func (e *RateLimitedError) Unwrap() error { return e.err }

// RetryAfterSeconds rounds Wait up to whole seconds, at least 1
func (e *RateLimitedError) RetryAfterSeconds() int {
	s := int((e.Wait + time.Second - 1) / time.Second)
	return max(s, 1)
}
