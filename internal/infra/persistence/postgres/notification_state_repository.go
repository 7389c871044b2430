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
	"gorm.io/gorm/clause"
)

// notificationStateRepository implements the repository.NotificationStateRepository interface.
type notificationStateRepository struct {
	db *gorm.DB
}

// NewNotificationStateRepository is the constructor for notificationStateRepository.
func NewNotificationStateRepository(db *gorm.DB) repository.NotificationStateRepository {
	return &notificationStateRepository{
		db: db,
	}
}

// FindStateByPlace retrieves the notification state for a place.
func (repo *notificationStateRepository) FindStateByPlace(ctx context.Context, placeID uuid.UUID) (*entity.PlaceNotificationState, error) {
	var stateM model.NotificationStateModel

	if err := repo.db.WithContext(ctx).
		Where("place_id = ?", placeID).
		First(&stateM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotificationStateNotFound
		}

		return nil, errors.Wrap(err, "failed to find notification state")
	}

	return toStateDomain(&stateM), nil
}

// SaveState upserts the notification state for a place.
func (repo *notificationStateRepository) SaveState(ctx context.Context, state *entity.PlaceNotificationState) error {
	stateM := fromStateDomain(state)

	if err := repo.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "place_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"last_notified_at", "snooze_until", "updated_at"}),
		}).
		Create(stateM).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to save notification state")
	}

	return nil
}

// DeleteStateByPlace removes the state row for one place. A missing row is
// fine; the place may never have been notified.
func (repo *notificationStateRepository) DeleteStateByPlace(ctx context.Context, placeID uuid.UUID) error {
	if err := repo.db.WithContext(ctx).
		Where("place_id = ?", placeID).
		Delete(&model.NotificationStateModel{}).Error; err != nil {
		return errors.Wrap(err, "failed to delete notification state")
	}

	return nil
}

// --- Mapper Functions ---

// toStateDomain converts a GORM NotificationStateModel to a domain PlaceNotificationState entity.
func toStateDomain(data *model.NotificationStateModel) *entity.PlaceNotificationState {
	if data == nil {
		return nil
	}

	return &entity.PlaceNotificationState{
		PlaceID:        data.PlaceID,
		LastNotifiedAt: data.LastNotifiedAt,
		SnoozeUntil:    data.SnoozeUntil,
		UpdatedAt:      data.UpdatedAt,
	}
}

// fromStateDomain converts a domain PlaceNotificationState entity to a GORM NotificationStateModel.
func fromStateDomain(data *entity.PlaceNotificationState) *model.NotificationStateModel {
	if data == nil {
		return nil
	}

	return &model.NotificationStateModel{
		PlaceID:        data.PlaceID,
		LastNotifiedAt: data.LastNotifiedAt,
		SnoozeUntil:    data.SnoozeUntil,
		UpdatedAt:      data.UpdatedAt,
	}
}
