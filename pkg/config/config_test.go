package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDBConfig_DSN(t *testing.T) {
	cfg := DBConfig{
		Host:     "db.interna",
		Port:     5432,
		User:     "nowstock",
		Password: "p@ss:word/era",
		DBName:   "stock",
		SSLMode:  "require",
	}
	dsn := cfg.DSN()
	assert.Contains(t, dsn, "postgres://")
	assert.Contains(t, dsn, "db.interna:5432")
	assert.Contains(t, dsn, "sslmode=require")
	// los caracteres especiales del password van URL-encoded
	assert.NotContains(t, dsn, "p@ss:word/era")
}

func TestDBConfig_ConnectionStringPrefiereDatabaseURL(t *testing.T) {
	cfg := DBConfig{
		DatabaseURL: "postgresql://u:p@host:5432/db?sslmode=require",
		Host:        "ignorado",
	}
	assert.Equal(t, cfg.DatabaseURL, cfg.ConnectionString())

	cfg.DatabaseURL = ""
	assert.NotContains(t, cfg.ConnectionString(), "postgresql://u:p@")
}

func TestScannerConfig_Debounce(t *testing.T) {
	assert.Equal(t, 1500*time.Millisecond, ScannerConfig{DebounceMS: 1500}.Debounce())
	assert.Equal(t, time.Duration(0), ScannerConfig{}.Debounce())
}

func TestLoad_DefaultsEnDevelopment(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
	assert.False(t, cfg.Scanner.Enabled)
}

func TestLoad_JWTSecretObligatorioFueraDeDevelopment(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)

	t.Setenv("JWT_SECRET", "un-secreto")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "production", cfg.App.Env)
}

func TestLoad_ScannerExigeIdentidad(t *testing.T) {
	t.Setenv("SCANNER_ENABLED", "true")

	_, err := Load()
	require.Error(t, err)

	t.Setenv("SCANNER_TENANT_ID", "11111111-1111-1111-1111-111111111111")
	t.Setenv("SCANNER_OPERATOR_ID", "scanner-bodega-1")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.Scanner.Enabled)
	assert.Equal(t, "scanner-bodega-1", cfg.Scanner.OperatorID)
}
