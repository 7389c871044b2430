package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalizeEnvKey_AlignsWithYAMLKeys(t *testing.T) {
	existing := map[string]any{
		"geofence": map[string]any{
			"maxPlaces":           100,
			"defaultRadiusMeters": 100.0,
			"gatewayEndpoint":     "",
		},
		"reminder": map[string]any{
			"defaultSnooze": "2h",
		},
		"pubsub": map[string]any{
			"localEndpoint": "",
		},
	}

	tests := []struct {
		rawKey string
		want   string
	}{
		{"GEOFENCE_MAXPLACES", "geofence.maxPlaces"},
		{"GEOFENCE_DEFAULTRADIUSMETERS", "geofence.defaultRadiusMeters"},
		{"GEOFENCE_GATEWAYENDPOINT", "geofence.gatewayEndpoint"},
		{"REMINDER_DEFAULTSNOOZE", "reminder.defaultSnooze"},
		{"PUBSUB_LOCALENDPOINT", "pubsub.localEndpoint"},
	}

	for _, tt := range tests {
		t.Run(tt.rawKey, func(t *testing.T) {
			assert.Equal(t, tt.want, canonicalizeEnvKey(tt.rawKey, existing))
		})
	}
}

func TestCanonicalizeEnvKey_UnknownSegmentsFallThrough(t *testing.T) {
	existing := map[string]any{
		"geofence": map[string]any{"maxPlaces": 100},
	}

	// Segments with no YAML counterpart keep their lowercased form.
	assert.Equal(t, "geofence.unknown", canonicalizeEnvKey("GEOFENCE_UNKNOWN", existing))
	assert.Equal(t, "totally.new", canonicalizeEnvKey("TOTALLY_NEW", existing))
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()

	assert.Equal(t, defaultMaxPlaces, cfg.Geofence.MaxPlaces)
	assert.Equal(t, defaultRadiusMeters, cfg.Geofence.DefaultRadiusMeters)
	assert.Equal(t, defaultCooldown, cfg.Reminder.Cooldown)
	assert.Equal(t, defaultSnooze, cfg.Reminder.DefaultSnooze)
	assert.Equal(t, defaultInitialBackoff, cfg.Sync.InitialBackoff)
}
