package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoadAppliesDefaults(t *testing.T) {
	p := writeConfig(t, `
jwt:
  secret: s3cret
db:
  driver: sqlite
  dsn: file:catalog.db
`)
	c, err := Load(p)
	require.NoError(t, err)

	assert.Equal(t, "s3cret", c.JWT.Secret)
	assert.Equal(t, 120, c.JWT.AccessTokenTTLMin)
	assert.Equal(t, "sqlite", c.DB.Driver)
	assert.Equal(t, "local", c.Storage.Driver)
	assert.Equal(t, "public/imgs/categories", c.Storage.Dir)
	assert.Equal(t, "admin_token", c.Auth.Cookie)
	assert.Equal(t, "X-Admin-Token", c.Auth.Header)
	assert.Equal(t, "/admin", c.Auth.AdminPrefix)
	assert.True(t, c.Auth.Enforce)
	assert.Equal(t, 12, c.View.MenuLimit)
	assert.Equal(t, 8081, c.App.Admin.Port)
}

func TestLoadEnvOverride(t *testing.T) {
	p := writeConfig(t, `
jwt:
  secret: from-file
storage:
  dir: /srv/imgs
`)
	t.Setenv("APP_JWT_SECRET", "from-env")
	t.Setenv("APP_REDIS_ADDR", "127.0.0.1:6379")

	c, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "from-env", c.JWT.Secret)
	assert.Equal(t, "127.0.0.1:6379", c.Redis.Addr)
	assert.Equal(t, "/srv/imgs", c.Storage.Dir)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	p := writeConfig(t, "db:\n  driver: sqlite\n")
	_, err = Load(p)
	assert.EqualError(t, err, "jwt.secret is required")
}
