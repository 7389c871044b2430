// Package impl contains the concrete implementations of the use case layer.
package impl

import (
	"time"

	"kaimono/internal/domain/entity"

	"github.com/google/uuid"
)

// BuildGeofencePlan computes the minimal diff between the places that should
// be monitored and the geofences currently registered.
//
// The same (active, registered) pair always yields the same plan: request
// ids are synthesized deterministically as "place_" + place id, toAdd keeps
// the order of active, toRemoveRequestIDs the order of registered, and
// targetRegistrations holds exactly one row per active place regardless of
// whether it was already registered. The function has no side effects and
// touches neither the device facility nor the snapshot store.
func BuildGeofencePlan(active []*entity.Place, registered []*entity.GeofenceRegistration, radiusMeters float64, now time.Time) *entity.GeofenceSyncPlan {
	activeIDs := make(map[uuid.UUID]struct{}, len(active))
	for _, place := range active {
		activeIDs[place.ID] = struct{}{}
	}

	registeredIDs := make(map[uuid.UUID]struct{}, len(registered))
	for _, reg := range registered {
		registeredIDs[reg.PlaceID] = struct{}{}
	}

	plan := &entity.GeofenceSyncPlan{
		ToAdd:               make([]entity.GeofenceSpec, 0, len(active)),
		ToRemoveRequestIDs:  make([]string, 0, len(registered)),
		TargetRegistrations: make([]entity.GeofenceRegistration, 0, len(active)),
	}

	for _, place := range active {
		if _, ok := registeredIDs[place.ID]; !ok {
			plan.ToAdd = append(plan.ToAdd, entity.GeofenceSpec{
				RequestID:    entity.GeofenceRequestID(place.ID),
				PlaceID:      place.ID,
				Latitude:     place.Latitude(),
				Longitude:    place.Longitude(),
				RadiusMeters: radiusMeters,
			})
		}

		plan.TargetRegistrations = append(plan.TargetRegistrations, entity.GeofenceRegistration{
			PlaceID:      place.ID,
			RequestID:    entity.GeofenceRequestID(place.ID),
			LatitudeE6:   place.LatitudeE6,
			LongitudeE6:  place.LongitudeE6,
			RadiusMeters: radiusMeters,
			RegisteredAt: now,
		})
	}

	for _, reg := range registered {
		if _, ok := activeIDs[reg.PlaceID]; !ok {
			plan.ToRemoveRequestIDs = append(plan.ToRemoveRequestIDs, reg.RequestID)
		}
	}

	return plan
}
