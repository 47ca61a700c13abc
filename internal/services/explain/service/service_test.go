package service

import (
	"context"
	"errors"
	"iter"
	"strings"
	"sync"
	"testing"
	"time"

	perr "codeexplainer/internal/platform/errors"
	"codeexplainer/internal/platform/testkit"
	"codeexplainer/internal/services/explain/domain"
	hdomain "codeexplainer/internal/services/history/domain"
	hrepo "codeexplainer/internal/services/history/repo"
	hsvc "codeexplainer/internal/services/history/service"
	udomain "codeexplainer/internal/services/usage/domain"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type fakeGen struct {
	text    string
	frags   []string
	err     error // returned by Explain, or yielded after frags by Stream
	prompts []string
}

func (g *fakeGen) Name() string { return "fake" }

func (g *fakeGen) Explain(_ context.Context, p string) (string, error) {
	g.prompts = append(g.prompts, p)
	if g.err != nil {
		return "", perr.Generation(g.err)
	}
	return g.text, nil
}

func (g *fakeGen) Stream(_ context.Context, p string) iter.Seq2[string, error] {
	g.prompts = append(g.prompts, p)
	return func(yield func(string, error) bool) {
		for _, f := range g.frags {
			if !yield(f, nil) {
				return
			}
		}
		if g.err != nil {
			yield("", perr.Generation(g.err))
		}
	}
}

// ctxGen yields frags until ctx ends, then fails the way the adapters do
type ctxGen struct{ frags []string }

func (ctxGen) Name() string { return "ctx" }

func (ctxGen) Explain(ctx context.Context, _ string) (string, error) {
	<-ctx.Done()
	return "", perr.Generation(ctx.Err())
}

func (g ctxGen) Stream(ctx context.Context, _ string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for _, f := range g.frags {
			if ctx.Err() != nil {
				yield("", perr.Generation(ctx.Err()))
				return
			}
			if !yield(f, nil) {
				return
			}
		}
	}
}

type fakeLimiter struct{ deny bool }

func (l fakeLimiter) Check(string) (bool, time.Duration) {
	if l.deny {
		return false, 1500 * time.Millisecond
	}
	return true, 0
}

type sink struct {
	mu     sync.Mutex
	events []udomain.Event
}

func (s *sink) Record(_ context.Context, e udomain.Event) {
	s.mu.Lock()
	s.events = append(s.events, e)
	s.mu.Unlock()
}

type brokenHistory struct{}

func (brokenHistory) Create(context.Context, hdomain.Draft) (hdomain.Record, error) {
	return hdomain.Record{}, errors.New("connection reset")
}

type fixture struct {
	svc  *Svc
	gen  *fakeGen
	hist hdomain.ServicePort
	sink *sink
}

func setup(t *testing.T, gen *fakeGen, lim domain.Limiter) fixture {
	t.Helper()
	clk := testkit.NewClock(time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC))
	hist := hsvc.New(hrepo.NewMemory(), hsvc.Options{Now: clk.Now})
	sk := &sink{}
	s := New(domain.Ports{History: hist, Usage: sk, Generator: gen, Limiter: lim}, Config{MaxCodeChars: 20, Now: clk.Now})
	return fixture{svc: s, gen: gen, hist: hist, sink: sk}
}

func TestExplain_PersistsOneRecord(t *testing.T) {
	f := setup(t, &fakeGen{text: "It prints one."}, fakeLimiter{})
	ctx := context.Background()

	res, err := f.svc.Explain(ctx, "u1", domain.Request{Code: "print(1)", Language: "python"})
	require.NoError(t, err)
	require.Equal(t, "It prints one.", res.Explanation)
	require.Equal(t, "print(1)", res.Code)
	require.Equal(t, "python", res.Language)
	require.Equal(t, "explain", res.Mode)
	require.NotEmpty(t, res.HistoryID)

	page, err := f.hist.List(ctx, hdomain.Filter{UserID: "u1"})
	require.NoError(t, err)
	require.Len(t, page.Histories, 1)
	require.Equal(t, res.HistoryID, page.Histories[0].ID)
	require.Equal(t, "It prints one.", page.Histories[0].Explanation)

	require.Len(t, f.sink.events, 1)
	require.Equal(t, udomain.OutcomeSuccess, f.sink.events[0].Outcome)
	require.Equal(t, "fake", f.sink.events[0].Provider)
}

func TestExplain_SanitizesBeforePrompting(t *testing.T) {
	f := setup(t, &fakeGen{text: "ok"}, fakeLimiter{})
	code := "eval(x); " + strings.Repeat("y", 50)

	res, err := f.svc.Explain(context.Background(), "u1", domain.Request{Code: code, Language: "javascript", Mode: "cp"})
	require.NoError(t, err)
	require.Equal(t, code[:20], res.Code)
	require.Equal(t, "cp", res.Mode)
	require.Contains(t, f.gen.prompts[0], "```javascript\n"+code[:20]+"\n```")
	require.NotContains(t, f.gen.prompts[0], code[:21])
	require.Equal(t, []string{"eval("}, f.sink.events[0].Warnings)
}

func TestExplain_RateLimited(t *testing.T) {
	f := setup(t, &fakeGen{text: "ok"}, fakeLimiter{deny: true})

	_, err := f.svc.Explain(context.Background(), "u1", domain.Request{Code: "x", Language: "sql"})
	var rl *domain.RateLimitedError
	require.ErrorAs(t, err, &rl)
	require.Equal(t, 2, rl.RetryAfterSeconds())
	require.True(t, perr.IsCode(err, perr.ErrorCodeTooManyRequests))
	require.Equal(t, domain.MsgRateLimited, perr.WireFrom(err).Error)
	require.Empty(t, f.gen.prompts, "a rejected caller never reaches the generator")
	require.Empty(t, f.sink.events)
}

func TestExplain_GenerationFailureIsGeneric(t *testing.T) {
	f := setup(t, &fakeGen{err: errors.New("quota exceeded for project 1234")}, fakeLimiter{})

	_, err := f.svc.Explain(context.Background(), "u1", domain.Request{Code: "x", Language: "sql"})
	require.True(t, perr.IsCode(err, perr.ErrorCodeGeneration))
	require.Equal(t, perr.MsgGenerationFailed, perr.WireFrom(err).Error)

	page, _ := f.hist.List(context.Background(), hdomain.Filter{UserID: "u1"})
	require.Zero(t, page.Pagination.Total)
	require.Equal(t, udomain.OutcomeGenerationFailed, f.sink.events[0].Outcome)
}

func TestExplain_PersistFailureFailsTheRequest(t *testing.T) {
	gen := &fakeGen{text: "ok"}
	s := New(domain.Ports{History: brokenHistory{}, Generator: gen, Limiter: fakeLimiter{}}, Config{})

	res, err := s.Explain(context.Background(), "u1", domain.Request{Code: "x", Language: "sql"})
	require.Error(t, err)
	require.Empty(t, res.Explanation, "no partial success")
	require.True(t, perr.IsCode(err, perr.ErrorCodeDB))
	require.Equal(t, "Failed to save explanation", perr.WireFrom(err).Error)
}

func TestStream_ForwardsInOrderThenPersists(t *testing.T) {
	defer goleak.VerifyNone(t)
	f := setup(t, &fakeGen{frags: []string{"It ", "prints ", "one."}}, fakeLimiter{})

	var got []string
	res, err := f.svc.Stream(context.Background(), "u1", domain.Request{Code: "print(1)", Language: "python"},
		func(frag string) error { got = append(got, frag); return nil })
	require.NoError(t, err)
	require.Equal(t, []string{"It ", "prints ", "one."}, got)
	require.Equal(t, "It prints one.", res.Explanation)

	rec, err := f.hist.Get(context.Background(), "u1", res.HistoryID)
	require.NoError(t, err)
	require.Equal(t, "It prints one.", rec.Explanation)
	require.True(t, f.sink.events[0].Stream)
}

func TestStream_FailureAfterFragmentsKeepsThemDelivered(t *testing.T) {
	f := setup(t, &fakeGen{frags: []string{"partial"}, err: errors.New("reset")}, fakeLimiter{})

	var got []string
	_, err := f.svc.Stream(context.Background(), "u1", domain.Request{Code: "x", Language: "sql"},
		func(frag string) error { got = append(got, frag); return nil })
	require.True(t, perr.IsCode(err, perr.ErrorCodeGeneration))
	require.Equal(t, []string{"partial"}, got)

	page, _ := f.hist.List(context.Background(), hdomain.Filter{UserID: "u1"})
	require.Zero(t, page.Pagination.Total)
	require.Equal(t, 7, f.sink.events[0].OutputChars)
}

func TestStream_ConsumerGoneAbandonsRun(t *testing.T) {
	f := setup(t, &fakeGen{frags: []string{"a", "b", "c"}}, fakeLimiter{})
	gone := errors.New("client went away")

	calls := 0
	_, err := f.svc.Stream(context.Background(), "u1", domain.Request{Code: "x", Language: "sql"},
		func(string) error { calls++; return gone })
	require.ErrorIs(t, err, gone)
	require.Equal(t, 1, calls, "no fragment after the consumer fails")
	require.Equal(t, udomain.OutcomeCancelled, f.sink.events[0].Outcome)

	page, _ := f.hist.List(context.Background(), hdomain.Filter{UserID: "u1"})
	require.Zero(t, page.Pagination.Total)
}

func TestStream_CallerCancelledIsNotAGenerationFailure(t *testing.T) {
	hist := hsvc.New(hrepo.NewMemory(), hsvc.Options{})
	snk := &sink{}
	svc := New(domain.Ports{History: hist, Usage: snk, Generator: ctxGen{frags: []string{"a", "b", "c"}}, Limiter: fakeLimiter{}}, Config{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var got []string
	_, err := svc.Stream(ctx, "u1", domain.Request{Code: "x", Language: "sql"}, func(frag string) error {
		got = append(got, frag)
		cancel()
		return nil
	})
	require.Error(t, err)
	require.Equal(t, []string{"a"}, got)
	require.Len(t, snk.events, 1)
	require.Equal(t, udomain.OutcomeCancelled, snk.events[0].Outcome)
	require.Equal(t, 1, snk.events[0].OutputChars)

	page, _ := hist.List(context.Background(), hdomain.Filter{UserID: "u1"})
	require.Zero(t, page.Pagination.Total)
}

func TestExplain_CallerCancelledIsNotAGenerationFailure(t *testing.T) {
	snk := &sink{}
	svc := New(domain.Ports{History: hsvc.New(hrepo.NewMemory(), hsvc.Options{}), Usage: snk, Generator: ctxGen{}, Limiter: fakeLimiter{}}, Config{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.Explain(ctx, "u1", domain.Request{Code: "x", Language: "sql"})
	require.Error(t, err)
	require.Equal(t, udomain.OutcomeCancelled, snk.events[0].Outcome)
}

func TestNew_RequiresCollaborators(t *testing.T) {
	testkit.MustPanic(t, func() { New(domain.Ports{}, Config{}) })
}
