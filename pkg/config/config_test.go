package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_ValoresPorDefecto(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "registro-escuelas", cfg.App.Name)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, "utf-8", cfg.Import.Charset)
	assert.Equal(t, ",", cfg.Import.Delimiter)
	assert.Equal(t, 0, cfg.Import.SkipRows)
	assert.Equal(t, 5*time.Minute, cfg.Redis.CacheTTL)
	assert.False(t, cfg.Redis.Enabled(), "sin REDIS_URL la caché queda desactivada")
	assert.False(t, cfg.Storage.Enabled())
}

func TestLoad_LeeVariablesDeEntorno(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("IMPORT_CHARSET", "LATIN1")
	t.Setenv("IMPORT_SKIP_ROWS", "1")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("DB_MIGRATE_ON_START", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, "latin1", cfg.Import.Charset)
	assert.Equal(t, 1, cfg.Import.SkipRows)
	assert.True(t, cfg.Redis.Enabled())
	assert.True(t, cfg.DB.MigrateOnStart)
}

func TestLoad_RechazaCharsetDesconocido(t *testing.T) {
	t.Setenv("IMPORT_CHARSET", "ebcdic")

	_, err := Load()
	assert.Error(t, err)
}

func TestDBConfig_DSNEscapaPassword(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss:word", DBName: "escuelas", SSLMode: "disable"}

	assert.Equal(t, "postgres://app:p%40ss%3Aword@db:5432/escuelas?sslmode=disable", c.DSN())
	assert.Equal(t, c.DSN(), c.ConnectionString())

	c.DatabaseURL = "postgres://otro"
	assert.Equal(t, "postgres://otro", c.ConnectionString())
}
