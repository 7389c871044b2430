// Package scheduler runs geofence sync requests on a single background
// goroutine.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"kaimono/config"
	"kaimono/internal/domain/service"
	"kaimono/internal/usecase"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/fx"
)

const defaultMaxBackoff = 5 * time.Minute

// syncScheduler implements SyncScheduler with unique-task-replace
// semantics: the pending channel has capacity one, so any number of
// requests arriving while a run is in flight collapse into a single
// follow-up run. Every run rebuilds its plan from scratch, which makes the
// collapsing safe.
type syncScheduler struct {
	syncer  usecase.GeofenceSyncUsecase
	logger  *slog.Logger
	backoff func() backoff.BackOff
	pending chan struct{}
}

// Params holds dependencies for the sync scheduler, injected by Fx.
type Params struct {
	fx.In
	fx.Lifecycle

	Syncer usecase.GeofenceSyncUsecase
	Config *config.Config
	Logger *slog.Logger
}

// New creates the scheduler and hooks it into the application lifecycle.
// One sync is requested at startup so a crash between a data mutation and
// its scheduled sync self-heals on the next boot.
func New(params Params) service.SyncScheduler {
	initial := params.Config.Sync.InitialBackoff
	maxInterval := params.Config.Sync.MaxBackoff
	if maxInterval <= 0 {
		maxInterval = defaultMaxBackoff
	}

	s := &syncScheduler{
		syncer: params.Syncer,
		logger: params.Logger,
		backoff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = initial
			b.MaxInterval = maxInterval
			// A sync is never permanently failed; it retries until it
			// succeeds or the scheduler shuts down.
			b.MaxElapsedTime = 0

			return b
		},
		pending: make(chan struct{}, 1),
	}

	runCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	params.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			go func() {
				defer close(done)
				s.run(runCtx)
			}()
			s.ScheduleSync(runCtx)

			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
				return nil
			case <-stopCtx.Done():
				return stopCtx.Err()
			}
		},
	})

	return s
}

// ScheduleSync requests a sync run. Non-blocking: if a request is already
// pending the new one merges into it.
func (s *syncScheduler) ScheduleSync(_ context.Context) {
	select {
	case s.pending <- struct{}{}:
	default:
	}
}

func (s *syncScheduler) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.pending:
			s.runSync(ctx)
		}
	}
}

func (s *syncScheduler) runSync(ctx context.Context) {
	operation := func() error {
		if err := s.syncer.Sync(ctx); err != nil {
			s.logger.Warn("geofence sync failed, will retry",
				slog.Any("error", err),
			)

			return err
		}

		return nil
	}

	if err := backoff.Retry(operation, backoff.WithContext(s.backoff(), ctx)); err != nil {
		// Only context cancellation gets here; the backoff itself never
		// gives up.
		s.logger.Info("geofence sync abandoned on shutdown", slog.Any("error", err))
	}
}
