// Package postgres contains the concrete implementation of the persistence layer using GORM and PostgreSQL.
package postgres

import (
	"context"
	"time"

	"kaimono/internal/domain/entity"
	domainerrors "kaimono/internal/domain/errors"
	"kaimono/internal/domain/repository"
	"kaimono/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// placeRepository implements the repository.PlaceRepository interface.
type placeRepository struct {
	db *gorm.DB
}

// NewPlaceRepository is the constructor for placeRepository.
func NewPlaceRepository(db *gorm.DB) repository.PlaceRepository {
	return &placeRepository{
		db: db,
	}
}

// CreatePlace persists a new place.
func (repo *placeRepository) CreatePlace(ctx context.Context, place *entity.Place) error {
	placeM := fromPlaceDomain(place)

	if err := repo.db.WithContext(ctx).Create(placeM).Error; err != nil {
		// Convert PostgreSQL errors to domain errors
		if isUniqueConstraintViolation(err) {
			return repository.ErrDuplicatePlaceCoordinate
		}
		if isNotNullConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WrapMessage("missing required place information")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create place")
	}

	place.ID = placeM.ID
	place.CreatedAt = placeM.CreatedAt
	place.UpdatedAt = placeM.UpdatedAt

	return nil
}

// FindPlaceByID retrieves a place by its unique ID.
func (repo *placeRepository) FindPlaceByID(ctx context.Context, id uuid.UUID) (*entity.Place, error) {
	var placeM model.PlaceModel

	if err := repo.db.WithContext(ctx).
		Where("id = ?", id).
		First(&placeM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrPlaceNotFound
		}

		return nil, errors.Wrap(err, "failed to find place by ID")
	}

	return toPlaceDomain(&placeM), nil
}

// FindPlaceByCoordinate retrieves a place by its exact fixed-point coordinate pair.
func (repo *placeRepository) FindPlaceByCoordinate(ctx context.Context, latE6, lngE6 int64) (*entity.Place, error) {
	var placeM model.PlaceModel

	if err := repo.db.WithContext(ctx).
		Where("latitude_e6 = ? AND longitude_e6 = ?", latE6, lngE6).
		First(&placeM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrPlaceNotFound
		}

		return nil, errors.Wrap(err, "failed to find place by coordinate")
	}

	return toPlaceDomain(&placeM), nil
}

// ListPlaces retrieves all places ordered by creation time.
func (repo *placeRepository) ListPlaces(ctx context.Context) ([]*entity.Place, error) {
	var placeModels []*model.PlaceModel

	if err := repo.db.WithContext(ctx).
		Order("created_at ASC").
		Find(&placeModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list places")
	}

	places := make([]*entity.Place, 0, len(placeModels))
	for _, placeM := range placeModels {
		places = append(places, toPlaceDomain(placeM))
	}

	return places, nil
}

// CountPlaces returns the total number of registered places.
func (repo *placeRepository) CountPlaces(ctx context.Context) (int64, error) {
	var count int64

	if err := repo.db.WithContext(ctx).
		Model(&model.PlaceModel{}).
		Count(&count).Error; err != nil {
		return 0, errors.Wrap(err, "failed to count places")
	}

	return count, nil
}

// FindActivePlaces retrieves the watched places that have at least one
// unpurchased linked item. Derived with a live join so a freshly purchased
// item immediately drops its place from the result.
func (repo *placeRepository) FindActivePlaces(ctx context.Context) ([]*entity.Place, error) {
	var placeModels []*model.PlaceModel

	if err := repo.db.WithContext(ctx).
		Model(&model.PlaceModel{}).
		Distinct("places.*").
		Joins("JOIN item_place_links ON item_place_links.place_id = places.id").
		Joins("JOIN shopping_items ON shopping_items.id = item_place_links.item_id").
		Where("places.is_active = ? AND shopping_items.is_purchased = ?", true, false).
		Order("places.created_at ASC").
		Find(&placeModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find active places")
	}

	places := make([]*entity.Place, 0, len(placeModels))
	for _, placeM := range placeModels {
		places = append(places, toPlaceDomain(placeM))
	}

	return places, nil
}

// UpdateWatch sets the user's watch toggle for a place.
func (repo *placeRepository) UpdateWatch(ctx context.Context, id uuid.UUID, isActive bool) error {
	result := repo.db.WithContext(ctx).
		Model(&model.PlaceModel{}).
		Where("id = ?", id).
		Update("is_active", isActive)

	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to update watch flag")
	}

	if result.RowsAffected == 0 {
		return repository.ErrPlaceNotFound
	}

	return nil
}

// TouchLastUsed sets the place's last-used timestamp to now.
func (repo *placeRepository) TouchLastUsed(ctx context.Context, id uuid.UUID) error {
	result := repo.db.WithContext(ctx).
		Model(&model.PlaceModel{}).
		Where("id = ?", id).
		Update("last_used_at", time.Now())

	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to touch last used")
	}

	if result.RowsAffected == 0 {
		return repository.ErrPlaceNotFound
	}

	return nil
}

// DeletePlace removes a place by its ID.
func (repo *placeRepository) DeletePlace(ctx context.Context, id uuid.UUID) error {
	result := repo.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.PlaceModel{})

	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to delete place")
	}

	if result.RowsAffected == 0 {
		return repository.ErrPlaceNotFound
	}

	return nil
}

// --- Mapper Functions ---

// toPlaceDomain converts a GORM PlaceModel to a domain Place entity.
func toPlaceDomain(data *model.PlaceModel) *entity.Place {
	if data == nil {
		return nil
	}

	return &entity.Place{
		ID:          data.ID,
		Name:        data.Name,
		LatitudeE6:  data.LatitudeE6,
		LongitudeE6: data.LongitudeE6,
		Note:        data.Note,
		LastUsedAt:  data.LastUsedAt,
		IsActive:    data.IsActive,
		CreatedAt:   data.CreatedAt,
		UpdatedAt:   data.UpdatedAt,
	}
}

// fromPlaceDomain converts a domain Place entity to a GORM PlaceModel.
func fromPlaceDomain(data *entity.Place) *model.PlaceModel {
	if data == nil {
		return nil
	}

	return &model.PlaceModel{
		ID:          data.ID,
		Name:        data.Name,
		LatitudeE6:  data.LatitudeE6,
		LongitudeE6: data.LongitudeE6,
		Note:        data.Note,
		LastUsedAt:  data.LastUsedAt,
		IsActive:    data.IsActive,
		CreatedAt:   data.CreatedAt,
		UpdatedAt:   data.UpdatedAt,
	}
}
