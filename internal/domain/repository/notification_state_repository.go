// Package repository defines the interfaces for the persistence layer.
package repository

import (
	"context"
	"errors"

	"kaimono/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrNotificationStateNotFound is returned when a place has no notification
// state row. Callers treat this as "never notified, never snoozed".
var ErrNotificationStateNotFound = errors.New("notification state not found")

// NotificationStateRepository defines the interface for per-place reminder
// suppression state.
type NotificationStateRepository interface {
	// FindStateByPlace retrieves the notification state for a place.
	FindStateByPlace(ctx context.Context, placeID uuid.UUID) (*entity.PlaceNotificationState, error)

	// SaveState upserts the notification state for a place.
	SaveState(ctx context.Context, state *entity.PlaceNotificationState) error

	// DeleteStateByPlace removes the state row for one place, used by
	// place-deletion cascade.
	DeleteStateByPlace(ctx context.Context, placeID uuid.UUID) error
}
