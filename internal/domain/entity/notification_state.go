// Package entity contains the core business objects of the project.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// PlaceNotificationState tracks the reminder suppression state for one
// place. A missing row means the place has never been notified and is not
// snoozed. Rows are deleted only when their place is deleted.
type PlaceNotificationState struct {
	PlaceID        uuid.UUID  // The place this state belongs to.
	LastNotifiedAt *time.Time // When a reminder last fired; nil if never.
	SnoozeUntil    *time.Time // Reminders are suppressed until this instant; nil if not snoozed.
	UpdatedAt      time.Time  // Timestamp of the last modification.
}
