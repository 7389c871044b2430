package model

import (
	"time"

	"github.com/google/uuid"
)

// PlaceModel is the GORM-specific struct for the 'places' table.
// The composite unique index on the fixed-point coordinate pair backs
// the one-place-per-coordinate rule.
type PlaceModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	Name        string    `gorm:"type:varchar(255);not null"`
	LatitudeE6  int64     `gorm:"not null;uniqueIndex:idx_places_coordinate"`
	LongitudeE6 int64     `gorm:"not null;uniqueIndex:idx_places_coordinate"`
	Note        string    `gorm:"type:text;not null;default:''"`
	LastUsedAt  *time.Time
	IsActive    bool `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName explicitly sets the table name for GORM.
func (PlaceModel) TableName() string {
	return "places"
}
