package usecase

import (
	"context"

	"kaimono/internal/domain/entity"
)

// GeofenceSyncUsecase reconciles the set of places that should be monitored
// against the geofences currently registered with the device facility.
type GeofenceSyncUsecase interface {
	// BuildPlan computes the diff between the live active-place set and the
	// current registration snapshot. Pure read; touches neither the device
	// facility nor the snapshot.
	BuildPlan(ctx context.Context) (*entity.GeofenceSyncPlan, error)

	// Sync builds a plan, applies removals then additions to the device
	// facility, and only after both phases succeed replaces the local
	// registration snapshot. Idempotent and retryable: on any failure the
	// snapshot is left untouched so a later run recomputes the same diff.
	Sync(ctx context.Context) error
}
