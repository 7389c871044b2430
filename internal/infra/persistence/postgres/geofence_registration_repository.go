// Package postgres contains the concrete implementation of the persistence layer using GORM and PostgreSQL.
package postgres

import (
	"context"

	"kaimono/internal/domain/entity"
	domainerrors "kaimono/internal/domain/errors"
	"kaimono/internal/domain/repository"
	"kaimono/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// geofenceRegistrationRepository implements the repository.GeofenceRegistrationRepository interface.
type geofenceRegistrationRepository struct {
	db *gorm.DB
}

// NewGeofenceRegistrationRepository is the constructor for geofenceRegistrationRepository.
func NewGeofenceRegistrationRepository(db *gorm.DB) repository.GeofenceRegistrationRepository {
	return &geofenceRegistrationRepository{
		db: db,
	}
}

// FindAllRegistrations retrieves the current snapshot.
func (repo *geofenceRegistrationRepository) FindAllRegistrations(ctx context.Context) ([]*entity.GeofenceRegistration, error) {
	var registrationModels []*model.GeofenceRegistrationModel

	if err := repo.db.WithContext(ctx).
		Order("registered_at ASC").
		Find(&registrationModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find registrations")
	}

	registrations := make([]*entity.GeofenceRegistration, 0, len(registrationModels))
	for _, registrationM := range registrationModels {
		registrations = append(registrations, toRegistrationDomain(registrationM))
	}

	return registrations, nil
}

// ReplaceRegistrations atomically replaces the whole snapshot with the given
// target rows. Clear-then-insert inside one transaction so a reader never
// observes a half-written snapshot.
func (repo *geofenceRegistrationRepository) ReplaceRegistrations(ctx context.Context, registrations []*entity.GeofenceRegistration) error {
	err := repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&model.GeofenceRegistrationModel{}).Error; err != nil {
			return errors.Wrap(err, "failed to clear registrations")
		}

		if len(registrations) == 0 {
			return nil
		}

		registrationModels := make([]*model.GeofenceRegistrationModel, 0, len(registrations))
		for _, registration := range registrations {
			registrationModels = append(registrationModels, fromRegistrationDomain(registration))
		}

		if err := tx.Create(registrationModels).Error; err != nil {
			return errors.Wrap(err, "failed to insert registrations")
		}

		return nil
	})
	if err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to replace registration snapshot")
	}

	return nil
}

// DeleteRegistrationByPlace removes the snapshot row for one place. A
// missing row is fine; the place may simply not be registered.
func (repo *geofenceRegistrationRepository) DeleteRegistrationByPlace(ctx context.Context, placeID uuid.UUID) error {
	if err := repo.db.WithContext(ctx).
		Where("place_id = ?", placeID).
		Delete(&model.GeofenceRegistrationModel{}).Error; err != nil {
		return errors.Wrap(err, "failed to delete registration")
	}

	return nil
}

// --- Mapper Functions ---

// toRegistrationDomain converts a GORM GeofenceRegistrationModel to a domain GeofenceRegistration entity.
func toRegistrationDomain(data *model.GeofenceRegistrationModel) *entity.GeofenceRegistration {
	if data == nil {
		return nil
	}

	return &entity.GeofenceRegistration{
		PlaceID:      data.PlaceID,
		RequestID:    data.RequestID,
		LatitudeE6:   data.LatitudeE6,
		LongitudeE6:  data.LongitudeE6,
		RadiusMeters: data.RadiusMeters,
		RegisteredAt: data.RegisteredAt,
	}
}

// fromRegistrationDomain converts a domain GeofenceRegistration entity to a GORM GeofenceRegistrationModel.
func fromRegistrationDomain(data *entity.GeofenceRegistration) *model.GeofenceRegistrationModel {
	if data == nil {
		return nil
	}

	return &model.GeofenceRegistrationModel{
		PlaceID:      data.PlaceID,
		RequestID:    data.RequestID,
		LatitudeE6:   data.LatitudeE6,
		LongitudeE6:  data.LongitudeE6,
		RadiusMeters: data.RadiusMeters,
		RegisteredAt: data.RegisteredAt,
	}
}
