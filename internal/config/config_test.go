package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DIRD_CONFIG", filepath.Join(t.TempDir(), "missing.yml"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9489", cfg.ListenAddress)
	assert.Equal(t, 10, cfg.DB.PoolSize)
	assert.Equal(t, 4*time.Second, cfg.LookupTimeout)
	assert.Equal(t, 3*time.Second, cfg.SourceTimeout)
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	content := `
listen_address: ":8080"
db:
  uri: postgres://u:p@db:5432/dird
  pool_size: 20
enabled_backends: [csv-file, ldap]
lookup_timeout: 2s
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("DIRD_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ListenAddress)
	assert.Equal(t, "postgres://u:p@db:5432/dird", cfg.DB.URI)
	assert.Equal(t, 20, cfg.DB.PoolSize)
	assert.Equal(t, []string{"csv-file", "ldap"}, cfg.EnabledBackends)
	assert.Equal(t, 2*time.Second, cfg.LookupTimeout)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(`listen_address: ":8080"`), 0o644))
	t.Setenv("DIRD_CONFIG", path)
	t.Setenv("DIRD_LISTEN_ADDR", ":9000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.ListenAddress)
}
