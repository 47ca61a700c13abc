// Package service runs the explain pipeline: admit, sanitize, prompt, generate, persist
package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"codeexplainer/internal/core/prompt"
	"codeexplainer/internal/core/sanitize"
	perr "codeexplainer/internal/platform/errors"
	"codeexplainer/internal/platform/logger"
	"codeexplainer/internal/platform/metrics"
	pnet "codeexplainer/internal/platform/net"
	"codeexplainer/internal/services/explain/domain"
	hdomain "codeexplainer/internal/services/history/domain"
	udomain "codeexplainer/internal/services/usage/domain"
)

// Service is the explain service surface
type Service = domain.ServicePort

// Config controls the sanitizer cap
type Config struct {
	MaxCodeChars int
	Now          func() time.Time
}

// Svc implements domain.ServicePort
type Svc struct {
	ports domain.Ports
	san   *sanitize.Sanitizer
	now   func() time.Time
}

// New wires the pipeline; History, Generator and Limiter are required
func New(p domain.Ports, cfg Config) *Svc {
	if p.History == nil || p.Generator == nil || p.Limiter == nil {
		panic("explain: History, Generator and Limiter are required")
	}
	if p.Usage == nil {
		p.Usage = udomain.Nop{}
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Svc{ports: p, san: sanitize.New(cfg.MaxCodeChars, nil), now: now}
}

// run is the per-request state carried from admission to the terminal outcome
type run struct {
	userID   string
	code     string
	language string
	mode     prompt.Mode
	prompt   string
	warnings []string
	stream   bool
	started  time.Time
}

// admit checks the limiter, then sanitizes and renders the prompt
func (s *Svc) admit(ctx context.Context, userID string, in domain.Request, stream bool) (*run, error) {
	if ok, wait := s.ports.Limiter.Check(userID); !ok {
		metrics.RateLimitedTotal.Inc()
		logger.C(ctx).Info().Dur("retry_in", wait).Msg("explain rate limited")
		return nil, domain.NewRateLimited(wait)
	}

	r := &run{
		userID:   userID,
		language: in.Language,
		mode:     prompt.ModeOr(in.Mode, prompt.Explain),
		stream:   stream,
		started:  s.now(),
	}
	log := logger.C(ctx)
	r.code = s.san.With(sanitize.WarnFunc(func(p string) {
		r.warnings = append(r.warnings, p)
		metrics.SanitizerWarningsTotal.WithLabelValues(p).Inc()
		log.Warn().Str("pattern", p).Msg("code contains potentially dangerous pattern")
	})).Sanitize(in.Code)
	r.prompt = prompt.Build(r.code, r.language, r.mode)
	return r, nil
}

// Explain runs the whole pipeline and returns only once the record is saved
func (s *Svc) Explain(ctx context.Context, userID string, in domain.Request) (domain.Result, error) {
	r, err := s.admit(ctx, userID, in, false)
	if err != nil {
		return domain.Result{}, err
	}
	text, err := s.ports.Generator.Explain(ctx, r.prompt)
	if err != nil {
		s.finish(ctx, r, 0, failedOutcome(ctx))
		return domain.Result{}, err
	}
	return s.persist(ctx, r, text)
}

// Stream forwards fragments to emit as they arrive, then saves the concatenated text
// fragments already emitted stay delivered even when a later step fails
func (s *Svc) Stream(ctx context.Context, userID string, in domain.Request, emit func(string) error) (domain.Result, error) {
	r, err := s.admit(ctx, userID, in, true)
	if err != nil {
		return domain.Result{}, err
	}

	var b strings.Builder
	for frag, err := range s.ports.Generator.Stream(ctx, r.prompt) {
		if err != nil {
			s.finish(ctx, r, utf8.RuneCountInString(b.String()), failedOutcome(ctx))
			return domain.Result{}, err
		}
		b.WriteString(frag)
		if err := emit(frag); err != nil {
			logger.C(ctx).Info().Err(err).Msg("stream consumer gone, run abandoned")
			s.finish(ctx, r, utf8.RuneCountInString(b.String()), udomain.OutcomeCancelled)
			return domain.Result{}, err
		}
	}
	return s.persist(ctx, r, b.String())
}

// failedOutcome tells a caller that went away apart from a backend failure
// the backend usually notices the cancelled ctx before the next write to the caller fails
func failedOutcome(ctx context.Context) udomain.Outcome {
	if ctx.Err() != nil {
		logger.C(ctx).Info().Err(context.Cause(ctx)).Msg("caller gone, run abandoned")
		return udomain.OutcomeCancelled
	}
	return udomain.OutcomeGenerationFailed
}

// persist records the run; a failed save fails the request and the generated text is lost
func (s *Svc) persist(ctx context.Context, r *run, text string) (domain.Result, error) {
	rec, err := s.ports.History.Create(ctx, hdomain.Draft{
		UserID:      r.userID,
		Code:        r.code,
		Explanation: text,
		Language:    hdomain.Language(r.language),
		Mode:        r.mode,
	})
	if err != nil {
		logger.C(ctx).Error().Err(err).Msg("explanation generated but not saved")
		s.finish(ctx, r, utf8.RuneCountInString(text), udomain.OutcomePersistFailed)
		if _, ok := perr.As(err); !ok {
			err = perr.Wrap(err, perr.ErrorCodeDB, "Failed to save explanation")
		}
		return domain.Result{}, err
	}
	s.finish(ctx, r, utf8.RuneCountInString(text), udomain.OutcomeSuccess)
	return domain.Result{
		Explanation: text,
		HistoryID:   rec.ID,
		Code:        r.code,
		Language:    r.language,
		Mode:        string(r.mode),
	}, nil
}

// finish counts the terminal outcome and hands a usage event to the sink
func (s *Svc) finish(ctx context.Context, r *run, outputChars int, o udomain.Outcome) {
	metrics.ExplanationsTotal.WithLabelValues(r.language, string(r.mode), string(o)).Inc()
	s.ports.Usage.Record(ctx, udomain.Event{
		At:          r.started,
		RequestID:   pnet.RequestID(ctx),
		UserID:      r.userID,
		Language:    r.language,
		Mode:        string(r.mode),
		Provider:    s.ports.Generator.Name(),
		Stream:      r.stream,
		Outcome:     o,
		CodeChars:   utf8.RuneCountInString(r.code),
		OutputChars: outputChars,
		Latency:     s.now().Sub(r.started),
		Warnings:    r.warnings,
	})
}
