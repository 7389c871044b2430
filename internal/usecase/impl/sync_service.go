package impl

import (
	"context"
	"log/slog"
	"time"

	"kaimono/config"
	"kaimono/internal/domain/entity"
	"kaimono/internal/domain/repository"
	"kaimono/internal/domain/service"
	"kaimono/internal/usecase"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

type geofenceSyncService struct {
	placeRepo    repository.PlaceRepository
	geofenceRepo repository.GeofenceRegistrationRepository
	gateway      service.GeofencingGateway
	lock         service.SyncCoordinatorLock
	config       *config.Config
	logger       *slog.Logger
	now          func() time.Time
}

// GeofenceSyncServiceParams holds dependencies for the sync service, injected by Fx.
type GeofenceSyncServiceParams struct {
	fx.In

	PlaceRepo    repository.PlaceRepository
	GeofenceRepo repository.GeofenceRegistrationRepository
	Gateway      service.GeofencingGateway
	Lock         service.SyncCoordinatorLock
	Config       *config.Config
	Logger       *slog.Logger
}

// NewGeofenceSyncService creates a new geofence sync coordinator instance
func NewGeofenceSyncService(params GeofenceSyncServiceParams) usecase.GeofenceSyncUsecase {
	return &geofenceSyncService{
		placeRepo:    params.PlaceRepo,
		geofenceRepo: params.GeofenceRepo,
		gateway:      params.Gateway,
		lock:         params.Lock,
		config:       params.Config,
		logger:       params.Logger,
		now:          time.Now,
	}
}

// BuildPlan loads the live active-place set and the current snapshot and
// computes the diff.
func (s *geofenceSyncService) BuildPlan(ctx context.Context) (*entity.GeofenceSyncPlan, error) {
	active, err := s.placeRepo.FindActivePlaces(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find active places")
	}

	registered, err := s.geofenceRepo.FindAllRegistrations(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find current registrations")
	}

	return BuildGeofencePlan(active, registered, s.config.Geofence.DefaultRadiusMeters, s.now()), nil
}

// Sync applies a freshly built plan to the device facility and, only after
// both gateway phases succeed, replaces the local registration snapshot.
//
// Removals go first so the facility's per-device registration budget is
// freed before additions claim it. The snapshot write comes strictly last:
// the local table must never claim a registration the facility did not
// confirm. On any failure the snapshot stays untouched, so a retry rebuilds
// the identical plan and applies it cleanly.
//
// The scheduler's single-flight loop serializes runs within one process;
// the coordinator lock extends that to every process sharing the database,
// since both the API and the worker schedule syncs. The plan is built under
// the lock so it sees the snapshot the previous holder left behind.
func (s *geofenceSyncService) Sync(ctx context.Context) error {
	return s.lock.WithLock(ctx, s.syncLocked)
}

func (s *geofenceSyncService) syncLocked(ctx context.Context) error {
	plan, err := s.BuildPlan(ctx)
	if err != nil {
		return err
	}

	if len(plan.ToRemoveRequestIDs) > 0 {
		if err := s.gateway.RemoveGeofences(ctx, plan.ToRemoveRequestIDs); err != nil {
			return errors.Wrap(err, "failed to remove geofences")
		}
	}

	if len(plan.ToAdd) > 0 {
		if err := s.gateway.AddGeofences(ctx, plan.ToAdd); err != nil {
			return errors.Wrap(err, "failed to add geofences")
		}
	}

	target := make([]*entity.GeofenceRegistration, 0, len(plan.TargetRegistrations))
	for i := range plan.TargetRegistrations {
		target = append(target, &plan.TargetRegistrations[i])
	}

	if err := s.geofenceRepo.ReplaceRegistrations(ctx, target); err != nil {
		return errors.Wrap(err, "failed to replace registration snapshot")
	}

	s.logger.Info("geofence sync applied",
		slog.Int("added", len(plan.ToAdd)),
		slog.Int("removed", len(plan.ToRemoveRequestIDs)),
		slog.Int("registered", len(plan.TargetRegistrations)),
	)

	return nil
}
