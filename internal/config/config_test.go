package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
server:
  port: 9090
  public_url: https://admin.optica.test
database:
  host: db
  name: optica_test
jwt:
  secret: file-secret
  document_token_ttl: 2m
renderer:
  url: http://renderer:3000
cors:
  allow_origins: ["https://admin.optica.test"]
`

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFileDefaultsAndEnv(t *testing.T) {
	t.Setenv("OPTICA_DATABASE_PASSWORD", "from-env")
	t.Setenv("OPTICA_JWT_SECRET", "env-secret")

	cfg, err := Load(writeFile(t, "config.yml", sample))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "https://admin.optica.test", cfg.Server.PublicURL)
	assert.Equal(t, 30*time.Second, cfg.Server.RequestTimeout)

	assert.Equal(t, "db", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "from-env", cfg.Database.Password)

	assert.Equal(t, "env-secret", cfg.JWT.Secret)
	assert.Equal(t, 2*time.Minute, cfg.JWT.DocumentTokenTTL)
	assert.Equal(t, 12*time.Hour, cfg.JWT.AccessTokenTTL)

	assert.Equal(t, "http://renderer:3000", cfg.Renderer.URL)
	assert.Equal(t, []string{"https://admin.optica.test"}, cfg.CORS.AllowOrigins)
	assert.True(t, cfg.RateLimit.Enabled)
}

func TestLoadRequiresSecret(t *testing.T) {
	_, err := Load(writeFile(t, "config.yml", "server:\n  port: 1\n"))
	assert.ErrorContains(t, err, "jwt.secret")
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}

func TestLoadConsole(t *testing.T) {
	cfg, err := LoadConsole(writeFile(t, "console.yml", "api_url: http://api:8080/api/v1\nemail: admin@optica.test\n"))
	require.NoError(t, err)

	assert.Equal(t, "http://api:8080/api/v1", cfg.APIURL)
	assert.Equal(t, "admin@optica.test", cfg.Email)
	assert.Equal(t, 15, cfg.PerPage)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
}
