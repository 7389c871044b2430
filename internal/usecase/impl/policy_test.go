package impl

import (
	"testing"
	"time"

	"kaimono/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReminderPolicy_ShouldNotify(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	policy := ReminderPolicy{Cooldown: 10 * time.Second}

	ptr := func(t time.Time) *time.Time { return &t }

	tests := []struct {
		name  string
		state *entity.PlaceNotificationState
		want  bool
	}{
		{
			name:  "no state means eligible",
			state: nil,
			want:  true,
		},
		{
			name:  "inside cooldown",
			state: &entity.PlaceNotificationState{LastNotifiedAt: ptr(base.Add(-1 * time.Second))},
			want:  false,
		},
		{
			name:  "cooldown elapsed",
			state: &entity.PlaceNotificationState{LastNotifiedAt: ptr(base.Add(-20 * time.Second))},
			want:  true,
		},
		{
			name:  "active snooze",
			state: &entity.PlaceNotificationState{SnoozeUntil: ptr(base.Add(time.Hour))},
			want:  false,
		},
		{
			name:  "expired snooze",
			state: &entity.PlaceNotificationState{SnoozeUntil: ptr(base.Add(-time.Minute))},
			want:  true,
		},
		{
			name: "snooze overrides elapsed cooldown",
			state: &entity.PlaceNotificationState{
				LastNotifiedAt: ptr(base.Add(-time.Hour)),
				SnoozeUntil:    ptr(base.Add(time.Hour)),
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, policy.ShouldNotify(tt.state, base))
		})
	}
}

func TestReminderPolicy_NotifiedClearsSnooze(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	policy := ReminderPolicy{Cooldown: 5 * time.Minute}

	snoozeUntil := base.Add(2 * time.Hour)
	state := &entity.PlaceNotificationState{SnoozeUntil: &snoozeUntil}

	next := policy.Notified(state, base)

	require.NotNil(t, next.LastNotifiedAt)
	assert.Equal(t, base, *next.LastNotifiedAt)
	assert.Nil(t, next.SnoozeUntil)
}

func TestReminderPolicy_SnoozedPreservesLastNotified(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	policy := ReminderPolicy{Cooldown: 5 * time.Minute}

	lastNotified := base.Add(-time.Minute)
	state := &entity.PlaceNotificationState{LastNotifiedAt: &lastNotified}

	next := policy.Snoozed(state, 2*time.Hour, base)

	require.NotNil(t, next.SnoozeUntil)
	assert.Equal(t, base.Add(2*time.Hour), *next.SnoozeUntil)
	require.NotNil(t, next.LastNotifiedAt)
	assert.Equal(t, lastNotified, *next.LastNotifiedAt)
}
