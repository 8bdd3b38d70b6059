// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig          `mapstructure:"app"`
	Database      DatabaseConfig     `mapstructure:"database"`
	Maps          MapsConfig         `mapstructure:"maps"`
	Bridge        BridgeConfig       `mapstructure:"bridge"`
	Scraper       ScraperConfig      `mapstructure:"scraper"`
	Matching      MatchingConfig     `mapstructure:"matching"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	Schedule      ScheduleConfig     `mapstructure:"schedule"`
	Server        ServerConfig       `mapstructure:"server"`
	Logging       LoggingConfig      `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// MapsConfig holds settings for the geocoding/places/routing provider.
type MapsConfig struct {
	APIKey          string `mapstructure:"api_key"`
	BaseURL         string `mapstructure:"base_url"`
	Timeout         int    `mapstructure:"timeout"`           // milliseconds
	GeocodeCacheTTL int    `mapstructure:"geocode_cache_ttl"` // minutes
}

// BridgeConfig holds settings for the WhatsApp delivery bridge.
type BridgeConfig struct {
	URL     string `mapstructure:"url"`
	Timeout int    `mapstructure:"timeout"` // milliseconds
}

// ScraperConfig holds settings for listing ingestion.
type ScraperConfig struct {
	SiteBaseURL  string `mapstructure:"site_base_url"`
	ListingPath  string `mapstructure:"listing_path"`
	MaxPages     int    `mapstructure:"max_pages"`
	RequestDelay int    `mapstructure:"request_delay"` // milliseconds between detail fetches
	PageTimeout  int    `mapstructure:"page_timeout"`  // milliseconds
}

// MatchingConfig bounds the concurrency of external calls during matching.
type MatchingConfig struct {
	PoolSize     int `mapstructure:"pool_size"`
	CallInterval int `mapstructure:"call_interval"` // milliseconds between external calls
}

// NotificationConfig holds settings for the notification dispatcher.
type NotificationConfig struct {
	BatchSize   int `mapstructure:"batch_size"`
	MaxAttempts int `mapstructure:"max_attempts"` // 1 means no retry of failed records
	Email       struct {
		Enabled   bool   `mapstructure:"enabled"`
		FromEmail string `mapstructure:"from_email"`
		AWSRegion string `mapstructure:"aws_region"`
	} `mapstructure:"email"`
}

// ScheduleConfig drives the periodic scrape-match-dispatch cycle.
type ScheduleConfig struct {
	Cron     string `mapstructure:"cron"`
	Timezone string `mapstructure:"timezone"`
}

// ServerConfig holds the trigger/metrics HTTP listener settings.
type ServerConfig struct {
	Address string `mapstructure:"address"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
