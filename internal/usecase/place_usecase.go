package usecase

import (
	"context"

	"kaimono/internal/domain/entity"

	"github.com/google/uuid"
)

// RegisterPlaceInput carries the fields for registering a new place.
type RegisterPlaceInput struct {
	Name        string `json:"name"`
	LatitudeE6  int64  `json:"latitude_e6"`
	LongitudeE6 int64  `json:"longitude_e6"`
	Note        string `json:"note"`
}

// PlaceUsecase defines the interface for place management use cases
type PlaceUsecase interface {
	// RegisterPlace validates (place limit, exact coordinate duplicate) and
	// persists a new place, then schedules a geofence sync.
	RegisterPlace(ctx context.Context, input RegisterPlaceInput) (*entity.Place, error)

	// ValidateRegistration runs the registration checks without inserting.
	ValidateRegistration(ctx context.Context, latE6, lngE6 int64) error

	// ListPlaces retrieves all registered places.
	ListPlaces(ctx context.Context) ([]*entity.Place, error)

	// SetWatch toggles whether a place may be geofenced at all, then
	// schedules a sync.
	SetWatch(ctx context.Context, placeID uuid.UUID, watch bool) error

	// DeletePlace removes a place with its item links, geofence registration
	// row and notification state in one transaction, then schedules a sync.
	// Linked items themselves remain.
	DeletePlace(ctx context.Context, placeID uuid.UUID) error
}
