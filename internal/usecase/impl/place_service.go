package impl

import (
	"context"
	"log/slog"
	"time"

	"kaimono/config"
	"kaimono/internal/domain/entity"
	domainerrors "kaimono/internal/domain/errors"
	"kaimono/internal/domain/repository"
	"kaimono/internal/domain/service"
	"kaimono/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

type placeService struct {
	txManager repository.TransactionManager
	placeRepo repository.PlaceRepository
	scheduler service.SyncScheduler
	config    *config.Config
	logger    *slog.Logger
}

// PlaceServiceParams holds dependencies for the place service, injected by Fx.
type PlaceServiceParams struct {
	fx.In

	TxManager repository.TransactionManager
	PlaceRepo repository.PlaceRepository
	Scheduler service.SyncScheduler
	Config    *config.Config
	Logger    *slog.Logger
}

// NewPlaceService creates a new place service instance
func NewPlaceService(params PlaceServiceParams) usecase.PlaceUsecase {
	return &placeService{
		txManager: params.TxManager,
		placeRepo: params.PlaceRepo,
		scheduler: params.Scheduler,
		config:    params.Config,
		logger:    params.Logger,
	}
}

// checkRegistration runs the registration preconditions against the given
// repository. Both checks happen before any insert so a rejected registration
// has zero side effects.
func (s *placeService) checkRegistration(ctx context.Context, repo repository.PlaceRepository, latE6, lngE6 int64) error {
	count, err := repo.CountPlaces(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to count places")
	}
	if count >= int64(s.config.Geofence.MaxPlaces) {
		return domainerrors.ErrPlaceLimitExceeded
	}

	_, err = repo.FindPlaceByCoordinate(ctx, latE6, lngE6)
	if err == nil {
		return domainerrors.ErrDuplicatePlace
	}
	if !errors.Is(err, repository.ErrPlaceNotFound) {
		return errors.Wrap(err, "failed to check coordinate duplicate")
	}

	return nil
}

// ValidateRegistration runs the registration checks without inserting.
func (s *placeService) ValidateRegistration(ctx context.Context, latE6, lngE6 int64) error {
	return s.checkRegistration(ctx, s.placeRepo, latE6, lngE6)
}

// RegisterPlace validates and persists a new place, then schedules a sync so
// the new geofence appears on the next reconciliation.
func (s *placeService) RegisterPlace(ctx context.Context, input usecase.RegisterPlaceInput) (*entity.Place, error) {
	now := time.Now()
	place := &entity.Place{
		ID:          uuid.New(),
		Name:        input.Name,
		LatitudeE6:  input.LatitudeE6,
		LongitudeE6: input.LongitudeE6,
		Note:        input.Note,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := s.txManager.Execute(ctx, func(txRepoFactory repository.RepositoryFactory) error {
		placeRepo := txRepoFactory.NewPlaceRepository()

		if err := s.checkRegistration(ctx, placeRepo, input.LatitudeE6, input.LongitudeE6); err != nil {
			return err
		}

		if err := placeRepo.CreatePlace(ctx, place); err != nil {
			// A concurrent registration can still hit the unique index.
			if errors.Is(err, repository.ErrDuplicatePlaceCoordinate) {
				return domainerrors.ErrDuplicatePlace
			}

			return errors.Wrap(err, "failed to create place")
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("place registered",
		slog.String("place_id", place.ID.String()),
		slog.String("name", place.Name),
	)
	s.scheduler.ScheduleSync(ctx)

	return place, nil
}

// ListPlaces retrieves all registered places.
func (s *placeService) ListPlaces(ctx context.Context) ([]*entity.Place, error) {
	places, err := s.placeRepo.ListPlaces(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list places")
	}

	return places, nil
}

// SetWatch toggles whether a place may be geofenced, then schedules a sync.
func (s *placeService) SetWatch(ctx context.Context, placeID uuid.UUID, watch bool) error {
	if err := s.placeRepo.UpdateWatch(ctx, placeID, watch); err != nil {
		if errors.Is(err, repository.ErrPlaceNotFound) {
			return domainerrors.ErrPlaceNotFound
		}

		return errors.Wrap(err, "failed to update watch flag")
	}

	s.scheduler.ScheduleSync(ctx)

	return nil
}

// DeletePlace removes the place with its link rows, geofence registration row
// and notification state in one transaction, then schedules a sync. Linked
// items survive the place.
func (s *placeService) DeletePlace(ctx context.Context, placeID uuid.UUID) error {
	err := s.txManager.Execute(ctx, func(txRepoFactory repository.RepositoryFactory) error {
		placeRepo := txRepoFactory.NewPlaceRepository()

		if err := placeRepo.DeletePlace(ctx, placeID); err != nil {
			if errors.Is(err, repository.ErrPlaceNotFound) {
				return domainerrors.ErrPlaceNotFound
			}

			return errors.Wrap(err, "failed to delete place")
		}

		if err := txRepoFactory.NewItemRepository().DeleteLinksForPlace(ctx, placeID); err != nil {
			return errors.Wrap(err, "failed to delete item links")
		}

		if err := txRepoFactory.NewGeofenceRegistrationRepository().DeleteRegistrationByPlace(ctx, placeID); err != nil {
			return errors.Wrap(err, "failed to delete geofence registration")
		}

		if err := txRepoFactory.NewNotificationStateRepository().DeleteStateByPlace(ctx, placeID); err != nil {
			return errors.Wrap(err, "failed to delete notification state")
		}

		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("place deleted", slog.String("place_id", placeID.String()))
	s.scheduler.ScheduleSync(ctx)

	return nil
}
