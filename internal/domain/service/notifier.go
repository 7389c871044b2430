package service

import (
	"context"

	"kaimono/internal/domain/entity"

	"github.com/google/uuid"
)

// ReminderNotifier is the notification presentation facility. Delivered
// reminders carry the three action identifiers from entity so the device can
// send action events back through the event pipeline.
type ReminderNotifier interface {
	// ShowReminder delivers a composed reminder for a place.
	ShowReminder(ctx context.Context, placeID uuid.UUID, itemIDs []uuid.UUID, message *entity.ReminderMessage) error

	// CancelReminder withdraws any visible reminder for a place.
	CancelReminder(ctx context.Context, placeID uuid.UUID) error
}
