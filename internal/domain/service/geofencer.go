// Package service defines interfaces for external collaborators consumed by
// the use case layer.
package service

import (
	"context"

	"kaimono/internal/domain/entity"
)

// GeofencingGateway is the device-side geofencing facility. Implementations
// must treat removal of an unknown request id as success; everything else
// that fails must return an error so the whole sync can be retried.
type GeofencingGateway interface {
	// AddGeofences registers all given specs in one request.
	AddGeofences(ctx context.Context, specs []entity.GeofenceSpec) error

	// RemoveGeofences unregisters the given request ids.
	RemoveGeofences(ctx context.Context, requestIDs []string) error
}
