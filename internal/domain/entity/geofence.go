// Package entity contains the core business objects of the project.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// GeofenceRequestIDPrefix is prepended to a place id to form the request id
// registered with the device geofencing facility. The mapping is
// deterministic so re-registration is idempotent and recognizable.
const GeofenceRequestIDPrefix = "place_"

// GeofenceRequestID returns the stable request id for a place.
func GeofenceRequestID(placeID uuid.UUID) string {
	return GeofenceRequestIDPrefix + placeID.String()
}

// GeofenceRegistration records that a geofence with RequestID is currently
// registered with the device facility for PlaceID. One row per registered
// place; the whole table is rebuilt on every successful sync and is owned
// exclusively by the sync coordinator.
type GeofenceRegistration struct {
	PlaceID      uuid.UUID // The place this registration monitors.
	RequestID    string    // Stable request id, "place_" + place id.
	LatitudeE6   int64     // Latitude in degrees scaled by 1e6.
	LongitudeE6  int64     // Longitude in degrees scaled by 1e6.
	RadiusMeters float64   // Geofence radius in meters.
	RegisteredAt time.Time // Timestamp of when this snapshot row was written.
}

// GeofenceSpec is a single geofence to register with the device facility.
// Coordinates are in floating-point degrees, the unit the facility expects.
type GeofenceSpec struct {
	RequestID    string    `json:"request_id"`
	PlaceID      uuid.UUID `json:"place_id"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	RadiusMeters float64   `json:"radius_meters"`
}

// GeofenceSyncPlan is the diff between the places that should be monitored
// and the geofences currently registered. It is consumed once by the sync
// coordinator and discarded; it is never persisted standalone.
type GeofenceSyncPlan struct {
	ToAdd               []GeofenceSpec         // Geofences to register.
	ToRemoveRequestIDs  []string               // Request ids to unregister.
	TargetRegistrations []GeofenceRegistration // Full authoritative snapshot after a successful apply.
}

// IsNoop reports whether applying the plan would change nothing on the
// device facility. The snapshot is still rewritten on sync so RegisteredAt
// stays meaningful.
func (p *GeofenceSyncPlan) IsNoop() bool {
	return len(p.ToAdd) == 0 && len(p.ToRemoveRequestIDs) == 0
}
