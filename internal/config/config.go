package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Cache backend names accepted by CACHE_BACKEND.
const (
	BackendFile   = "file"
	BackendValkey = "valkey"
	BackendMongo  = "mongodb"
	BackendMemory = "memory"
)

// Track search provider names accepted by TRACK_SEARCH_PROVIDER.
const (
	ProviderITunes     = "itunes"
	ProviderSpotify    = "spotify"
	ProviderAppleMusic = "apple_music"
)

// Config holds all configuration for the application.
type Config struct {
	// Application settings
	Port    string `envconfig:"PORT" default:"8080"`
	GinMode string `envconfig:"GIN_MODE" default:"debug"`

	// Cache persistence
	CacheBackend    string `envconfig:"CACHE_BACKEND" default:"file"`
	CacheFile       string `envconfig:"CACHE_FILE" default:"data/songlinks.json"`
	ValkeyURL       string `envconfig:"VALKEY_URL"`
	MongodbURL      string `envconfig:"MONGODB_URL"`
	MongodbDatabase string `envconfig:"MONGODB_DATABASE" default:"concerto"`

	// Catalog search provider selection and credentials
	TrackSearchProvider string `envconfig:"TRACK_SEARCH_PROVIDER" default:"itunes"`
	SpotifyClientID     string `envconfig:"SPOTIFY_CLIENT_ID"`
	SpotifyClientSecret string `envconfig:"SPOTIFY_CLIENT_SECRET"`
	AppleMusicKeyID     string `envconfig:"APPLE_MUSIC_KEY_ID"`
	AppleMusicTeamID    string `envconfig:"APPLE_MUSIC_TEAM_ID"`
	AppleMusicKeyFile   string `envconfig:"APPLE_MUSIC_KEY_FILE"`

	// Timeouts and retry policy
	ProviderTimeout         time.Duration `envconfig:"PROVIDER_TIMEOUT" default:"6s"`
	ResolveCeiling          time.Duration `envconfig:"RESOLVE_CEILING" default:"8s"`
	UnresolvedRetryCooldown time.Duration `envconfig:"UNRESOLVED_RETRY_COOLDOWN" default:"0s"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that the selected backend and provider have what they
// need.
func (c *Config) Validate() error {
	switch c.CacheBackend {
	case BackendFile:
		if c.CacheFile == "" {
			return fmt.Errorf("file cache backend requires CACHE_FILE")
		}
	case BackendValkey:
		if c.ValkeyURL == "" {
			return fmt.Errorf("valkey cache backend requires VALKEY_URL")
		}
	case BackendMongo:
		if c.MongodbURL == "" {
			return fmt.Errorf("mongodb cache backend requires MONGODB_URL")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unsupported cache backend: %s", c.CacheBackend)
	}

	switch c.TrackSearchProvider {
	case ProviderITunes:
	case ProviderSpotify:
		if c.SpotifyClientID == "" || c.SpotifyClientSecret == "" {
			return fmt.Errorf("spotify provider requires SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET")
		}
	case ProviderAppleMusic:
		if c.AppleMusicKeyID == "" || c.AppleMusicTeamID == "" || c.AppleMusicKeyFile == "" {
			return fmt.Errorf("apple_music provider requires APPLE_MUSIC_KEY_ID, APPLE_MUSIC_TEAM_ID and APPLE_MUSIC_KEY_FILE")
		}
	default:
		return fmt.Errorf("unsupported track search provider: %s", c.TrackSearchProvider)
	}

	if c.ProviderTimeout <= 0 {
		return fmt.Errorf("PROVIDER_TIMEOUT must be positive")
	}
	if c.ResolveCeiling <= 0 {
		return fmt.Errorf("RESOLVE_CEILING must be positive")
	}
	if c.UnresolvedRetryCooldown < 0 {
		return fmt.Errorf("UNRESOLVED_RETRY_COOLDOWN cannot be negative")
	}

	return nil
}
