package configs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("LISTINGS_SOURCE", "file")
	t.Setenv("LISTINGS_FILE", "/data/listings.json")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "listings-service", cfg.AppName)
	assert.Equal(t, "8080", cfg.Rest.PORT)
	assert.Equal(t, SourceFile, cfg.Source.Kind)
	assert.True(t, cfg.Source.WatchFile)
	assert.Equal(t, 30*time.Second, cfg.Source.FetchTimeout)
	assert.Equal(t, 9, cfg.Query.PageSize)
	assert.False(t, cfg.Query.ResetPageOnSort)
	assert.False(t, cfg.Redis.Enabled)
	assert.False(t, cfg.RabbitMQ.Enabled)
}

func TestLoadConfigFromEnvFile(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	content := "LISTINGS_SOURCE=postgres\n" +
		"DATABASE_URL=postgres://u:p@localhost:5432/db\n" +
		"LISTINGS_TABLE=catalog.raw_listings\n" +
		"REDIS_ENABLED=true\n" +
		"REDIS_TTL_SECONDS=60\n" +
		"PAGE_SIZE=12\n" +
		"RESET_PAGE_ON_SORT=true\n" +
		"CORS_ALLOWED_ORIGINS=http://a.test, http://b.test\n"
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o600))

	// godotenv не перезаписывает уже заданные переменные
	for _, key := range []string{"LISTINGS_SOURCE", "DATABASE_URL", "LISTINGS_TABLE", "REDIS_ENABLED", "REDIS_TTL_SECONDS", "PAGE_SIZE", "RESET_PAGE_ON_SORT", "CORS_ALLOWED_ORIGINS"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg, err := LoadConfig(envFile)
	require.NoError(t, err)

	assert.Equal(t, SourcePostgres, cfg.Source.Kind)
	assert.Equal(t, "catalog.raw_listings", cfg.Source.Table)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, time.Minute, cfg.Redis.TTL)
	assert.Equal(t, 12, cfg.Query.PageSize)
	assert.True(t, cfg.Query.ResetPageOnSort)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Rest.CORSAllowedOrigins)
}

func TestLoadConfigValidation(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.env")

	t.Setenv("LISTINGS_SOURCE", "http")
	t.Setenv("LISTINGS_API_URL", "")
	_, err := LoadConfig(missing)
	assert.ErrorContains(t, err, "LISTINGS_API_URL")

	t.Setenv("LISTINGS_SOURCE", "ftp")
	_, err = LoadConfig(missing)
	assert.ErrorContains(t, err, "unknown LISTINGS_SOURCE")

	t.Setenv("LISTINGS_SOURCE", "file")
	t.Setenv("LISTINGS_FILE", "x.json")
	t.Setenv("RABBITMQ_ENABLED", "true")
	t.Setenv("RABBITMQ_URL", "")
	_, err = LoadConfig(missing)
	assert.ErrorContains(t, err, "RABBITMQ_URL")
}
