// Package repository defines the interfaces for the persistence layer.
package repository

import (
	"context"
	"errors"

	"kaimono/internal/domain/entity"

	"github.com/google/uuid"
)

// Domain-specific errors for place persistence.
var (
	// ErrPlaceNotFound is returned when a place is not found.
	ErrPlaceNotFound = errors.New("place not found")
	// ErrDuplicatePlaceCoordinate is returned when a place already exists at
	// the exact same fixed-point coordinate.
	ErrDuplicatePlaceCoordinate = errors.New("place already exists at coordinate")
)

// PlaceRepository defines the interface for place-related database operations.
type PlaceRepository interface {
	// CreatePlace persists a new place.
	CreatePlace(ctx context.Context, place *entity.Place) error

	// FindPlaceByID retrieves a place by its unique ID.
	FindPlaceByID(ctx context.Context, id uuid.UUID) (*entity.Place, error)

	// FindPlaceByCoordinate retrieves a place by its exact fixed-point
	// coordinate pair.
	FindPlaceByCoordinate(ctx context.Context, latE6, lngE6 int64) (*entity.Place, error)

	// ListPlaces retrieves all places ordered by creation time.
	ListPlaces(ctx context.Context) ([]*entity.Place, error)

	// CountPlaces returns the total number of registered places.
	CountPlaces(ctx context.Context) (int64, error)

	// FindActivePlaces retrieves the places currently worth monitoring:
	// watched places with at least one unpurchased linked item. The active
	// set is always derived live from the item-link join, never read from a
	// stored flag alone.
	FindActivePlaces(ctx context.Context) ([]*entity.Place, error)

	// UpdateWatch sets the user's watch toggle for a place.
	UpdateWatch(ctx context.Context, id uuid.UUID, isActive bool) error

	// TouchLastUsed sets the place's last-used timestamp.
	TouchLastUsed(ctx context.Context, id uuid.UUID) error

	// DeletePlace removes a place. Link rows, the geofence registration row
	// and the notification state are removed by the caller in the same
	// transaction.
	DeletePlace(ctx context.Context, id uuid.UUID) error
}
