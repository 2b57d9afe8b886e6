package pipeline

import (
	"context"
	"log/slog"
	"sync"

	"smartbizmap.kr/internal/logging"
	"smartbizmap.kr/internal/telemetry"
)

// RunFunc produces a snapshot for a query. *Manager.Run satisfies it.
type RunFunc func(ctx context.Context, q Query) (*Snapshot, error)

// Tracker applies only the result of the most recently submitted query.
// Each submission gets a token; a run that completes after a later
// submission is discarded.
type Tracker struct {
	run     RunFunc
	logger  *slog.Logger
	metrics *telemetry.Metrics

	mu      sync.Mutex
	issued  uint64
	applied uint64
	current *Snapshot
	err     error
	changed chan struct{}

	inflight sync.WaitGroup
}

func NewTracker(run RunFunc, logger *slog.Logger, metrics *telemetry.Metrics) *Tracker {
	return &Tracker{
		run:     run,
		logger:  logging.Component(logger, "tracker"),
		metrics: metrics,
		changed: make(chan struct{}),
	}
}

// Submit starts a run for q and returns its token. The run is detached from
// ctx cancellation; a superseded run finishes and is ignored.
func (t *Tracker) Submit(ctx context.Context, q Query) uint64 {
	t.mu.Lock()
	t.issued++
	token := t.issued
	t.mu.Unlock()

	runCtx := context.WithoutCancel(ctx)
	t.inflight.Add(1)
	go func() {
		defer t.inflight.Done()
		snap, err := t.run(runCtx, q)
		t.complete(token, q, snap, err)
	}()
	return token
}

func (t *Tracker) complete(token uint64, q Query, snap *Snapshot, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if token != t.issued {
		t.metrics.DiscardStale()
		t.logger.Info("discarding stale result",
			slog.Uint64("token", token),
			slog.Uint64("latest", t.issued),
			slog.String("query", q.String()))
		return
	}
	t.applied = token
	t.current = snap
	t.err = err
	close(t.changed)
	t.changed = make(chan struct{})
}

// Current returns the applied snapshot and its token. The snapshot is nil
// before the first run completes or when the latest run failed.
func (t *Tracker) Current() (*Snapshot, uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err != nil {
		return nil, t.applied
	}
	return t.current, t.applied
}

// Latest is the token of the most recent submission.
func (t *Tracker) Latest() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.issued
}

// Wait blocks until a result at least as new as token has been applied and
// returns it. A superseded token is satisfied by the run that replaced it.
func (t *Tracker) Wait(ctx context.Context, token uint64) (*Snapshot, error) {
	for {
		t.mu.Lock()
		if t.applied >= token {
			snap, err := t.current, t.err
			t.mu.Unlock()
			return snap, err
		}
		changed := t.changed
		t.mu.Unlock()

		select {
		case <-changed:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Drain waits for every in-flight run, applied or not.
func (t *Tracker) Drain() {
	t.inflight.Wait()
}
