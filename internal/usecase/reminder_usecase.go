package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ReminderUsecase is the notification dispatch workflow plus the eligibility
// bookkeeping around it.
type ReminderUsecase interface {
	// ShouldNotify reports whether a reminder may fire for the place now,
	// applying snooze precedence then cooldown.
	ShouldNotify(ctx context.Context, placeID uuid.UUID, now time.Time) (bool, error)

	// RecordNotification stores lastNotifiedAt=now and clears any snooze.
	RecordNotification(ctx context.Context, placeID uuid.UUID, now time.Time) error

	// Snooze suppresses reminders for the place for the given duration
	// (zero means the configured default), preserving lastNotifiedAt.
	Snooze(ctx context.Context, placeID uuid.UUID, duration time.Duration) error

	// OnGeofenceEntered runs the dispatch workflow for each entered place
	// independently: deleted places and places with nothing unpurchased are
	// skipped, eligible places get a composed reminder and a recorded
	// notification. A failure for one place never aborts the others.
	OnGeofenceEntered(ctx context.Context, placeIDs []uuid.UUID) error

	// HandleNotificationAction applies an action invoked on a delivered
	// reminder (mark purchased, delete items, open detail) and withdraws
	// the reminder.
	HandleNotificationAction(ctx context.Context, action string, placeID uuid.UUID, itemIDs []uuid.UUID) error
}
