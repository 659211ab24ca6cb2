package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoadDefaultsWithEnvSecret(t *testing.T) {
	chdirTemp(t)
	t.Setenv("JWT_SECRET", "from-env")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 168*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "@every 15m", cfg.Scheduler.InviteExpirySpec)
	assert.Equal(t, "USD", cfg.Billing.DefaultCurrency)
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	dir := chdirTemp(t)
	yaml := `
database:
  host: db.internal
  port: "6543"
server:
  port: "9000"
auth:
  jwt_secret: file-secret
  token_ttl: 2h
billing:
  default_currency: INR
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))
	t.Setenv("DB_HOST", "db.override")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "db.override", cfg.Database.Host)
	assert.Equal(t, "6543", cfg.Database.Port)
	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "file-secret", cfg.Auth.JWTSecret)
	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "INR", cfg.Billing.DefaultCurrency)
	assert.Contains(t, cfg.Database.GetDSN(), "host=db.override port=6543")
	assert.Equal(t, "0.0.0.0:9000", cfg.Server.GetAddress())
}

func TestLoadRequiresSecret(t *testing.T) {
	chdirTemp(t)
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidateRejectsUnknownCurrency(t *testing.T) {
	cfg := &Config{
		Auth:    AuthConfig{JWTSecret: "x"},
		Billing: BillingConfig{DefaultCurrency: "EUR", DefaultPeriodType: "monthly"},
	}
	assert.Error(t, cfg.Validate())
}
