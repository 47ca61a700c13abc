// Package service buffers usage events and flushes them to storage in batches
package service

import (
	"context"
	"time"

	"codeexplainer/internal/platform/logger"
	"codeexplainer/internal/services/usage/domain"
	"codeexplainer/internal/services/usage/repo"
)

// Config controls buffering
type Config struct {
	Buffer     int           // queued events before Record starts dropping
	BatchSize  int           // events per insert
	FlushEvery time.Duration // max time an event waits in the queue
}

func (c Config) withDefaults() Config {
	if c.Buffer <= 0 {
		c.Buffer = 1024
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 100
	}
	if c.FlushEvery <= 0 {
		c.FlushEvery = 2 * time.Second
	}
	return c
}

// Svc implements domain.SinkPort and domain.ReaderPort
type Svc struct {
	cfg  Config
	repo repo.Repo
	q    chan domain.Event
}

// New constructs the usage service; events queue until Run drains them
func New(r repo.Repo, cfg Config) *Svc {
	cfg = cfg.withDefaults()
	return &Svc{cfg: cfg, repo: r, q: make(chan domain.Event, cfg.Buffer)}
}

// Record queues e without blocking; a full queue drops the event
func (s *Svc) Record(ctx context.Context, e domain.Event) {
	select {
	case s.q <- e:
	default:
		logger.C(ctx).Warn().Str("outcome", string(e.Outcome)).Msg("usage queue full, event dropped")
	}
}

// Run drains the queue until ctx is done, then flushes what is left
func (s *Svc) Run(ctx context.Context) error {
	log := logger.Named("usage-writer")
	ticker := time.NewTicker(s.cfg.FlushEvery)
	defer ticker.Stop()

	batch := make([]domain.Event, 0, s.cfg.BatchSize)
	flush := func(ctx context.Context) {
		if len(batch) == 0 {
			return
		}
		if err := s.repo.Insert(ctx, batch); err != nil {
			log.Error().Err(err).Int("events", len(batch)).Msg("usage flush failed")
		}
		batch = batch[:0]
	}

	for {
		select {
		case <-ctx.Done():
		drain:
			for {
				select {
				case e := <-s.q:
					batch = append(batch, e)
				default:
					break drain
				}
			}
			fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			flush(fctx)
			cancel()
			return nil
		case e := <-s.q:
			batch = append(batch, e)
			if len(batch) >= s.cfg.BatchSize {
				flush(ctx)
			}
		case <-ticker.C:
			flush(ctx)
		}
	}
}

// Summary folds per-bucket counts into totals
func (s *Svc) Summary(ctx context.Context, userID string, since time.Time) (domain.Summary, error) {
	counts, err := s.repo.Counts(ctx, userID, since)
	if err != nil {
		return domain.Summary{}, err
	}
	out := domain.Summary{
		Since:      since.UTC(),
		ByLanguage: map[string]uint64{},
		ByOutcome:  map[string]uint64{},
	}
	for _, c := range counts {
		out.Total += c.N
		out.ByLanguage[c.Language] += c.N
		out.ByOutcome[c.Outcome] += c.N
	}
	return out, nil
}
