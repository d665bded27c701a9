package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("REDIS_ADDR", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, time.Hour, cfg.JWT.Expiry)
	assert.NotEmpty(t, cfg.JWT.Secret)
	assert.False(t, cfg.Redis.Enabled())
	assert.False(t, cfg.S3.Enabled())
	assert.Equal(t, "/uploads", cfg.Storage.PublicPrefix)
	assert.Equal(t, "postgres", cfg.Database.Driver)
}

func TestLoad_ProductionRequiresSecret(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("JWT_EXPIRY", "30m")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 30*time.Minute, cfg.JWT.Expiry)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("DB_DRIVER", "oracle")

	_, err := Load()
	assert.ErrorContains(t, err, "DB_DRIVER")
}

func TestDatabaseConfig_DSNs(t *testing.T) {
	cfg := DatabaseConfig{Host: "db", Port: "3306", User: "shop", Password: "pw", DBName: "shopfront", SSLMode: "disable"}

	assert.Equal(t, "host=db port=3306 user=shop password=pw dbname=shopfront sslmode=disable", cfg.DSN())
	assert.Equal(t, "shop:pw@tcp(db:3306)/shopfront?charset=utf8mb4&parseTime=True&loc=UTC", cfg.MySQLDSN())
}

func TestParseHelpers(t *testing.T) {
	assert.Equal(t, 5*time.Second, parseDuration("bogus", 5*time.Second))
	assert.Equal(t, 3, parseInt("x", 3))
	assert.Equal(t, 42, parseInt(" 42 ", 3))
	assert.Nil(t, parseSlice(""))
}
