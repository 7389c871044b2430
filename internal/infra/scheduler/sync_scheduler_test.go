package scheduler

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"kaimono/internal/domain/entity"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSyncer struct {
	mu       sync.Mutex
	runs     int
	failures int // Fail this many runs before succeeding.
	started  chan struct{}
}

func (s *countingSyncer) BuildPlan(_ context.Context) (*entity.GeofenceSyncPlan, error) {
	return &entity.GeofenceSyncPlan{}, nil
}

func (s *countingSyncer) Sync(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs++
	if s.started != nil {
		select {
		case s.started <- struct{}{}:
		default:
		}
	}
	if s.failures > 0 {
		s.failures--

		return errors.New("facility unavailable")
	}

	return nil
}

func (s *countingSyncer) runCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.runs
}

func newTestScheduler(syncer *countingSyncer) *syncScheduler {
	return &syncScheduler{
		syncer: syncer,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		backoff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = time.Millisecond
			b.MaxInterval = 5 * time.Millisecond
			b.MaxElapsedTime = 0

			return b
		},
		pending: make(chan struct{}, 1),
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestScheduleSync_RunsOnce(t *testing.T) {
	syncer := &countingSyncer{}
	s := newTestScheduler(syncer)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.run(ctx)

	s.ScheduleSync(ctx)
	waitFor(t, func() bool { return syncer.runCount() == 1 })
}

func TestScheduleSync_CoalescesPendingRequests(t *testing.T) {
	syncer := &countingSyncer{started: make(chan struct{}, 1)}
	s := newTestScheduler(syncer)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.run(ctx)

	s.ScheduleSync(ctx)
	<-syncer.started

	// Burst of requests while nothing is pending yet merges into one
	// follow-up run.
	for i := 0; i < 10; i++ {
		s.ScheduleSync(ctx)
	}

	waitFor(t, func() bool { return syncer.runCount() >= 2 })
	time.Sleep(20 * time.Millisecond)
	assert.LessOrEqual(t, syncer.runCount(), 3)
}

func TestRunSync_RetriesUntilSuccess(t *testing.T) {
	syncer := &countingSyncer{failures: 3}
	s := newTestScheduler(syncer)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s.runSync(ctx)
	require.Equal(t, 4, syncer.runCount())
}

func TestRunSync_StopsOnCancel(t *testing.T) {
	syncer := &countingSyncer{failures: 1 << 30}
	s := newTestScheduler(syncer)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	done := make(chan struct{})
	go func() {
		s.runSync(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("runSync did not stop on cancel")
	}
}
