package model

import (
	"time"

	"github.com/google/uuid"
)

// GeofenceRegistrationModel is the GORM-specific struct for the
// 'geofence_registrations' table, the local snapshot of what is currently
// registered with the device facility. One row per registered place; the
// whole table is rewritten on every successful sync.
type GeofenceRegistrationModel struct {
	PlaceID      uuid.UUID `gorm:"type:uuid;primary_key"`
	RequestID    string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_registrations_request_id"`
	LatitudeE6   int64     `gorm:"not null"`
	LongitudeE6  int64     `gorm:"not null"`
	RadiusMeters float64   `gorm:"not null"`
	RegisteredAt time.Time `gorm:"not null"`
}

// TableName explicitly sets the table name for GORM.
func (GeofenceRegistrationModel) TableName() string {
	return "geofence_registrations"
}
