// Package entity contains the core business objects of the project.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// CoordinateScale converts between fixed-point E6 coordinates and degrees.
// Coordinates are stored as integers scaled by 1e6 so that equality checks
// and the uniqueness constraint never depend on floating-point comparison.
const CoordinateScale = 1_000_000

// Place is a physical location the user shops at. No two places may share
// the same (LatitudeE6, LongitudeE6) pair; the storage layer enforces this
// with a unique constraint and registration re-checks it explicitly.
type Place struct {
	ID          uuid.UUID  // The unique identifier for the place.
	Name        string     // Display name, e.g. "スーパーA".
	LatitudeE6  int64      // Latitude in degrees scaled by 1e6.
	LongitudeE6 int64      // Longitude in degrees scaled by 1e6.
	Note        string     // Optional free-form note.
	LastUsedAt  *time.Time // When a reminder last fired for this place; nil if never.
	IsActive    bool       // User's watch toggle; a muted place is never geofenced.
	CreatedAt   time.Time  // Timestamp of when this place was registered.
	UpdatedAt   time.Time  // Timestamp of the last modification.
}

// Latitude returns the latitude in floating-point degrees.
func (p *Place) Latitude() float64 {
	return float64(p.LatitudeE6) / CoordinateScale
}

// Longitude returns the longitude in floating-point degrees.
func (p *Place) Longitude() float64 {
	return float64(p.LongitudeE6) / CoordinateScale
}
