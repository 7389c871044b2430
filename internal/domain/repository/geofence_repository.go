// Package repository defines the interfaces for the persistence layer.
package repository

import (
	"context"

	"kaimono/internal/domain/entity"

	"github.com/google/uuid"
)

// GeofenceRegistrationRepository defines the interface for the local
// "currently registered geofences" snapshot. The table is owned exclusively
// by the sync coordinator and only ever replaced wholesale after a
// confirmed-successful apply against the device facility.
type GeofenceRegistrationRepository interface {
	// FindAllRegistrations retrieves the current snapshot.
	FindAllRegistrations(ctx context.Context) ([]*entity.GeofenceRegistration, error)

	// ReplaceRegistrations atomically replaces the whole snapshot with the
	// given target rows (clear-then-insert in a single transaction).
	ReplaceRegistrations(ctx context.Context, registrations []*entity.GeofenceRegistration) error

	// DeleteRegistrationByPlace removes the snapshot row for one place, used
	// by place-deletion cascade.
	DeleteRegistrationByPlace(ctx context.Context, placeID uuid.UUID) error
}
