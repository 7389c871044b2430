package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
	"github.com/slighter12/go-lib/database/postgres"
)

const defaultPath = "."

// Defaults applied when the corresponding section is missing or zero.
const (
	defaultMaxPlaces      = 100
	defaultRadiusMeters   = 100.0
	defaultCooldown       = 5 * time.Minute
	defaultSnooze         = 2 * time.Hour
	defaultInitialBackoff = 30 * time.Second
)

type Config struct {
	Env struct {
		Env         string `json:"env" yaml:"env"`
		ServiceName string `json:"serviceName" yaml:"serviceName"`
		Debug       bool   `json:"debug" yaml:"debug"`
		Log         Log    `json:"log" yaml:"log"`
	} `json:"env" yaml:"env"`

	HTTP struct {
		Port     int `json:"port" yaml:"port"`
		Timeouts struct {
			ReadTimeout       time.Duration `json:"readTimeout" yaml:"readTimeout"`
			ReadHeaderTimeout time.Duration `json:"readHeaderTimeout" yaml:"readHeaderTimeout"`
			WriteTimeout      time.Duration `json:"writeTimeout" yaml:"writeTimeout"`
			IdleTimeout       time.Duration `json:"idleTimeout" yaml:"idleTimeout"`
		} `json:"timeouts" yaml:"timeouts"`
	} `json:"http" yaml:"http"`

	Postgres *postgres.DBConn `json:"postgres" yaml:"postgres" mapstructure:"postgres"`

	// Geofence configuration for registration limits and the device gateway
	Geofence *GeofenceConfig `json:"geofence" yaml:"geofence"`

	// Reminder configuration for notification eligibility
	Reminder *ReminderConfig `json:"reminder" yaml:"reminder"`

	// Sync configuration for the background sync scheduler
	Sync *SyncConfig `json:"sync" yaml:"sync"`

	// Firebase configuration for push notifications
	Firebase *FirebaseConfig `json:"firebase" yaml:"firebase"`

	// PubSub configuration for event publishing
	PubSub *PubSubConfig `json:"pubsub" yaml:"pubsub"`
}

type Log struct {
	Pretty bool   `json:"pretty" yaml:"pretty"`
	Level  string `json:"level" yaml:"level"`
}

// GeofenceConfig defines geofence registration configuration
type GeofenceConfig struct {
	// Maximum number of places a user may register
	MaxPlaces int `json:"maxPlaces" yaml:"maxPlaces"`

	// Radius in meters for registered geofences
	DefaultRadiusMeters float64 `json:"defaultRadiusMeters" yaml:"defaultRadiusMeters"`

	// Device gateway base URL; empty disables the gateway (noop)
	GatewayEndpoint string `json:"gatewayEndpoint" yaml:"gatewayEndpoint"`

	// Per-request timeout for gateway calls
	GatewayTimeout time.Duration `json:"gatewayTimeout" yaml:"gatewayTimeout"`
}

// ReminderConfig defines notification eligibility configuration
type ReminderConfig struct {
	// Minimum time between reminders for the same place
	Cooldown time.Duration `json:"cooldown" yaml:"cooldown"`

	// Snooze duration used when the caller supplies none
	DefaultSnooze time.Duration `json:"defaultSnooze" yaml:"defaultSnooze"`

	// FCM topic reminders are delivered to
	Topic string `json:"topic" yaml:"topic"`
}

// SyncConfig defines the sync scheduler's retry behavior
type SyncConfig struct {
	// First retry delay after a failed sync; doubles per attempt
	InitialBackoff time.Duration `json:"initialBackoff" yaml:"initialBackoff"`

	// Upper bound for a single retry delay
	MaxBackoff time.Duration `json:"maxBackoff" yaml:"maxBackoff"`
}

// FirebaseConfig defines Firebase configuration for push notifications
type FirebaseConfig struct {
	ProjectID       string `json:"projectId" yaml:"projectId"`
	CredentialsPath string `json:"credentialsPath" yaml:"credentialsPath"`
}

// PubSubConfig defines Pub/Sub configuration for event publishing
type PubSubConfig struct {
	// Provider type: "local" for local HTTP or "google" for Google Pub/Sub
	Provider string `json:"provider" yaml:"provider"`

	// Google Cloud project ID (for google provider)
	ProjectID string `json:"projectId" yaml:"projectId"`

	// Pub/Sub topic ID (for google provider)
	TopicID string `json:"topicId" yaml:"topicId"`

	// Local HTTP endpoint for development (for local provider)
	LocalEndpoint string `json:"localEndpoint" yaml:"localEndpoint"`
}

// LoadWithEnv loads .yaml files through koanf.
func LoadWithEnv[T any](currEnv string, configPath ...string) (*T, error) {
	cfg := new(T)
	koanfInstance := koanf.New(".")

	// Build list of paths to search for config file
	searchPaths := []string{defaultPath}
	if len(configPath) != 0 {
		pwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "os.Getwd")
		}
		for _, path := range configPath {
			abs := filepath.Join(pwd, path)
			searchPaths = append(searchPaths, abs)
		}
	}

	// Try to find and load the config file
	var configFile string
	var found bool
	for _, path := range searchPaths {
		candidate := filepath.Join(path, currEnv+".yaml")
		if _, err := os.Stat(candidate); err == nil {
			configFile = candidate
			found = true

			break
		}
	}

	if !found {
		return nil, errors.Errorf("config file %s.yaml not found in any search path", currEnv)
	}

	// Load YAML config file
	if err := koanfInstance.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "read %s config failed", currEnv)
	}

	existingConfigMap := koanfInstance.Raw()

	// Load environment variables
	if err := koanfInstance.Load(env.Provider(".", env.Opt{
		TransformFunc: func(k, v string) (string, any) {
			// Convert ENV_VAR_NAME to path and align each segment with existing YAML keys.
			// Example: GEOFENCE_MAXPLACES -> geofence.maxPlaces
			key := canonicalizeEnvKey(k, existingConfigMap)

			return key, v
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	// Unmarshal into the config struct (case-insensitive to match env vars)
	if err := koanfInstance.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
			MatchName: func(mapKey, fieldName string) bool {
				// Case-insensitive matching for env var overrides
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return nil, errors.Wrapf(err, "unmarshal %s config failed", currEnv)
	}

	return cfg, nil
}

func New() (*Config, error) {
	cfg, err := LoadWithEnv[Config]("config", "config", "../config", "../../config")
	if err != nil {
		return nil, err
	}

	cfg.applyDefaults()

	return cfg, nil
}

// applyDefaults fills the limits and durations the rest of the system
// assumes are non-zero.
func (cfg *Config) applyDefaults() {
	if cfg.Geofence == nil {
		cfg.Geofence = &GeofenceConfig{}
	}
	if cfg.Geofence.MaxPlaces <= 0 {
		cfg.Geofence.MaxPlaces = defaultMaxPlaces
	}
	if cfg.Geofence.DefaultRadiusMeters <= 0 {
		cfg.Geofence.DefaultRadiusMeters = defaultRadiusMeters
	}

	if cfg.Reminder == nil {
		cfg.Reminder = &ReminderConfig{}
	}
	if cfg.Reminder.Cooldown <= 0 {
		cfg.Reminder.Cooldown = defaultCooldown
	}
	if cfg.Reminder.DefaultSnooze <= 0 {
		cfg.Reminder.DefaultSnooze = defaultSnooze
	}

	if cfg.Sync == nil {
		cfg.Sync = &SyncConfig{}
	}
	if cfg.Sync.InitialBackoff <= 0 {
		cfg.Sync.InitialBackoff = defaultInitialBackoff
	}
}

func canonicalizeEnvKey(rawKey string, existing map[string]any) string {
	segments := strings.Split(strings.ToLower(rawKey), "_")
	canonical := make([]string, 0, len(segments))
	current := existing

	for _, segment := range segments {
		if segment == "" {
			continue
		}

		if matched, next, ok := findExistingSegment(current, segment); ok {
			canonical = append(canonical, matched)
			current = next
		} else {
			canonical = append(canonical, segment)
			current = nil
		}
	}

	return strings.Join(canonical, ".")
}

func findExistingSegment(current map[string]any, segment string) (matched string, next map[string]any, ok bool) {
	if len(current) == 0 {
		return "", nil, false
	}

	needle := normalizeToken(segment)
	for key, value := range current {
		if normalizeToken(key) != needle {
			continue
		}

		child, _ := value.(map[string]any)

		return key, child, true
	}

	return "", nil, false
}

func normalizeToken(s string) string {
	var normalized strings.Builder
	normalized.Grow(len(s))

	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		normalized.WriteRune(unicode.ToLower(r))
	}

	return normalized.String()
}
