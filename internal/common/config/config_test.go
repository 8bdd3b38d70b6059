package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetDSN(t *testing.T) {
	cfg := PostgresConfig{
		Host:     "localhost",
		Port:     5432,
		Database: "vigia",
		User:     "vigia",
		Password: "secret",
		SSLMode:  "disable",
	}

	assert.Equal(t,
		"host=localhost port=5432 user=vigia password=secret dbname=vigia sslmode=disable",
		cfg.GetDSN(),
	)
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)

	assert.Equal(t, 25, cfg.Database.Postgres.MaxConnections)
	assert.Equal(t, "https://maps.googleapis.com/maps/api", cfg.Maps.BaseURL)
	assert.Equal(t, 1440, cfg.Maps.GeocodeCacheTTL)
	assert.Equal(t, 2, cfg.Scraper.MaxPages)
	assert.Equal(t, 1500, cfg.Scraper.RequestDelay)
	assert.Equal(t, 4, cfg.Matching.PoolSize)
	assert.Equal(t, 10, cfg.Notifications.BatchSize)
	assert.Equal(t, 1, cfg.Notifications.MaxAttempts, "failed notifications are not retried unless configured")
	assert.Equal(t, "0 8,18 * * *", cfg.Schedule.Cron)
	assert.Equal(t, "America/Sao_Paulo", cfg.Schedule.Timezone)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestApplyDefaults_DoesNotOverrideExplicitValues(t *testing.T) {
	cfg := &Config{}
	cfg.Notifications.MaxAttempts = 3
	cfg.Matching.PoolSize = 8
	applyDefaults(cfg)

	assert.Equal(t, 3, cfg.Notifications.MaxAttempts)
	assert.Equal(t, 8, cfg.Matching.PoolSize)
}

func validTestConfig() *Config {
	cfg := &Config{}
	cfg.Database.Postgres.Host = "localhost"
	cfg.Database.Postgres.Database = "vigia"
	cfg.Database.Postgres.User = "vigia"
	cfg.Database.Redis.Address = "localhost:6379"
	cfg.Maps.APIKey = "key"
	cfg.Scraper.SiteBaseURL = "https://www.dfimoveis.com.br"
	return cfg
}

func TestValidateConfig(t *testing.T) {
	assert.NoError(t, validateConfig(validTestConfig()))

	tests := []struct {
		name   string
		mutate func(cfg *Config)
	}{
		{"missing postgres host", func(cfg *Config) { cfg.Database.Postgres.Host = "" }},
		{"missing postgres database", func(cfg *Config) { cfg.Database.Postgres.Database = "" }},
		{"missing postgres user", func(cfg *Config) { cfg.Database.Postgres.User = "" }},
		{"missing redis address", func(cfg *Config) { cfg.Database.Redis.Address = "" }},
		{"missing maps api key", func(cfg *Config) { cfg.Maps.APIKey = "" }},
		{"missing scraper base url", func(cfg *Config) { cfg.Scraper.SiteBaseURL = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validTestConfig()
			tt.mutate(cfg)
			assert.Error(t, validateConfig(cfg))
		})
	}
}

func TestGetDuration(t *testing.T) {
	assert.Equal(t, 1500*time.Millisecond, GetDuration(1500))
	assert.Equal(t, time.Duration(0), GetDuration(0))
}
