package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ServerAddr)
	assert.Equal(t, 50, cfg.PublicListLimit)
	assert.Equal(t, 5*time.Minute, cfg.PublicCacheTTL)
	assert.Equal(t, "none", cfg.AssetStore)
	assert.True(t, cfg.SeedDemoPrompts)
	assert.Equal(t, []string{"http://localhost:5173", "http://localhost:8080"}, cfg.CORSOrigins)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_USER", "gallery")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_NAME", "prompts")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("PUBLIC_LIST_LIMIT", "20")
	t.Setenv("SEED_DEMO_PROMPTS", "false")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "host=db.internal user=gallery password=secret dbname=prompts port=6543 sslmode=disable", cfg.DSN())
	assert.Equal(t, "cache:6380", cfg.RedisFullAddr())
	assert.Equal(t, 20, cfg.PublicListLimit)
	assert.False(t, cfg.SeedDemoPrompts)
}

func TestLoadConfigInvalidValue(t *testing.T) {
	t.Setenv("PUBLIC_LIST_LIMIT", "many")

	_, err := LoadConfig()
	assert.Error(t, err)
}
