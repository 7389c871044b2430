package model

import (
	"time"

	"github.com/google/uuid"
)

// NotificationStateModel is the GORM-specific struct for the
// 'place_notification_states' table. A missing row means "never notified,
// not snoozed"; rows go away only with their place.
type NotificationStateModel struct {
	PlaceID        uuid.UUID `gorm:"type:uuid;primary_key"`
	LastNotifiedAt *time.Time
	SnoozeUntil    *time.Time
	UpdatedAt      time.Time
}

// TableName explicitly sets the table name for GORM.
func (NotificationStateModel) TableName() string {
	return "place_notification_states"
}
