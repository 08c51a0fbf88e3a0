package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server" validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database" validate:"required"`
	Auth      AuthConfig      `mapstructure:"auth" validate:"required"`
	Analytics AnalyticsConfig `mapstructure:"analytics"`
	Redis     RedisConfig     `mapstructure:"redis"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// AuthConfig contains the settings for verifying caller identity.
// The engine never issues credentials; it only validates bearer tokens
// minted by the identity provider.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" validate:"required,min=32"`

	// TokenLifetimeMinutes bounds how long a newly issued token stays valid.
	TokenLifetimeMinutes int `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
}

// AnalyticsConfig contains settings for the read-side computations.
type AnalyticsConfig struct {
	// TimeZone is the single reporting zone used for calendar-day
	// bucketing of activity series. Per-user time zones are not supported.
	TimeZone string `mapstructure:"time_zone" validate:"omitempty,timezone"`

	// CacheTTLSeconds bounds how stale a cached ranking or distribution
	// may be. Zero disables the cache even when Redis is configured.
	CacheTTLSeconds int `mapstructure:"cache_ttl_seconds" validate:"gte=0"`
}

// RedisConfig contains the optional cache backend settings. An empty URL
// disables caching; every analytics query then recomputes from the stores.
type RedisConfig struct {
	URL string `mapstructure:"url"`
}
