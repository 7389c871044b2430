package impl

import (
	"time"

	"kaimono/internal/domain/entity"
)

// ReminderPolicy decides whether a reminder may fire for a place. It is a
// pure value: no storage, no clock, no device dependency.
type ReminderPolicy struct {
	// Cooldown is the minimum elapsed time after a notification before
	// another may fire for the same place.
	Cooldown time.Duration
}

// ShouldNotify applies snooze precedence first, then cooldown. A nil state
// means the place was never notified and never snoozed, so it is eligible.
func (p ReminderPolicy) ShouldNotify(state *entity.PlaceNotificationState, now time.Time) bool {
	if state == nil {
		return true
	}

	if state.SnoozeUntil != nil && state.SnoozeUntil.After(now) {
		return false
	}

	if state.LastNotifiedAt != nil && state.LastNotifiedAt.Add(p.Cooldown).After(now) {
		return false
	}

	return true
}

// Notified returns the state after a notification fired at now. Sending a
// notification implicitly cancels any prior snooze.
func (p ReminderPolicy) Notified(state *entity.PlaceNotificationState, now time.Time) *entity.PlaceNotificationState {
	next := &entity.PlaceNotificationState{UpdatedAt: now}
	if state != nil {
		next.PlaceID = state.PlaceID
	}
	next.LastNotifiedAt = &now
	next.SnoozeUntil = nil

	return next
}

// Snoozed returns the state after snoozing for duration starting at now.
// An existing lastNotifiedAt is preserved.
func (p ReminderPolicy) Snoozed(state *entity.PlaceNotificationState, duration time.Duration, now time.Time) *entity.PlaceNotificationState {
	next := &entity.PlaceNotificationState{UpdatedAt: now}
	if state != nil {
		next.PlaceID = state.PlaceID
		next.LastNotifiedAt = state.LastNotifiedAt
	}
	until := now.Add(duration)
	next.SnoozeUntil = &until

	return next
}
