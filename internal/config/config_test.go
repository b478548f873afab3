package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, names := range env {
		for _, name := range names {
			t.Setenv(name, "")
		}
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "default", cfg.Homepage.SiteID)
	assert.Equal(t, 3*time.Second, cfg.Homepage.FreshnessWindow)
	assert.Empty(t, cfg.Database.URL)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Equal(t, "homepage.config.changed", cfg.Kafka.Topic)
	assert.Equal(t, "homepage-default", cfg.Kafka.GroupID)
	assert.Equal(t, "admin", cfg.Security.AdminRole)
	assert.Equal(t, 16, cfg.Websocket.SendBuffer)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("SERVER_PORT", "")
	t.Setenv("SITE_ID", "site-7")
	t.Setenv("FRESHNESS_WINDOW", "750ms")
	t.Setenv("DATABASE_URL", "postgres://localhost/homepage")
	t.Setenv("DATABASE_TIMEOUT", "2")
	t.Setenv("HOMEPAGE_API_URL", "https://cms.example.com/")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("CACHE_QUOTA_BYTES", "1024")
	t.Setenv("JWT_PUBLIC_KEY", `line1\nline2`)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "site-7", cfg.Homepage.SiteID)
	assert.Equal(t, 750*time.Millisecond, cfg.Homepage.FreshnessWindow)
	assert.Equal(t, 2*time.Second, cfg.Database.Timeout)
	assert.Equal(t, "https://cms.example.com", cfg.API.BaseURL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, int64(1024), cfg.Cache.QuotaBytes)
	assert.Equal(t, "line1\nline2", cfg.Security.JWTPublicKey)
	assert.Equal(t, "homepage-site-7", cfg.Kafka.GroupID)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("FRESHNESS_WINDOW", "soon")
	_, err := Load()
	require.ErrorContains(t, err, "homepage.freshness")

	t.Setenv("FRESHNESS_WINDOW", "-1s")
	t.Setenv("WS_SEND_BUFFER", "0")
	_, err = Load()
	require.ErrorContains(t, err, "FRESHNESS_WINDOW")
	require.ErrorContains(t, err, "WS_SEND_BUFFER")
}
