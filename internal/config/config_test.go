package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) string {
	return func(key string) string { return m[key] }
}

func TestFromEnvDefaults(t *testing.T) {
	c, err := FromEnv(envMap(nil))
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
	assert.NoError(t, c.Validate())
}

func TestFromEnvOverrides(t *testing.T) {
	c, err := FromEnv(envMap(map[string]string{
		"INVENTARIO_DB":            "/data/inv.db",
		"INVENTARIO_BACKEND":       BackendRedis,
		"INVENTARIO_REDIS_ADDR":    "localhost:6379",
		"INVENTARIO_REDIS_DB":      "3",
		"INVENTARIO_REQUIRE_PHOTO": "true",
		"INVENTARIO_SESSION_TTL":   "30m",
		"INVENTARIO_UPLOAD_URL":    "https://script.example/exec",
	}))
	require.NoError(t, err)
	assert.Equal(t, "/data/inv.db", c.DBPath)
	assert.Equal(t, BackendRedis, c.Backend)
	assert.Equal(t, 3, c.RedisDB)
	assert.True(t, c.RequirePhoto)
	assert.Equal(t, 30*time.Minute, c.SessionTTL)
	assert.Equal(t, "https://script.example/exec", c.UploadURL)
	assert.NoError(t, c.Validate())
}

func TestFromEnvInvalid(t *testing.T) {
	for _, key := range []string{"INVENTARIO_REDIS_DB", "INVENTARIO_REQUIRE_PHOTO", "INVENTARIO_SESSION_TTL"} {
		_, err := FromEnv(envMap(map[string]string{key: "bogus"}))
		assert.Error(t, err, key)
	}
}

func TestValidate(t *testing.T) {
	tests := map[string]func(c *Config){
		"unknown backend": func(c *Config) { c.Backend = "excel" },
		"sheet no path":   func(c *Config) { c.Backend = BackendSheet; c.SheetPath = "" },
		"redis no addr":   func(c *Config) { c.Backend = BackendRedis },
		"no db":           func(c *Config) { c.DBPath = "" },
		"zero ttl":        func(c *Config) { c.SessionTTL = 0 },
	}

	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			c := Default()
			mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("INVENTARIO_BACKEND=sheet\nINVENTARIO_SHEET=/tmp/x.csv\n"), 0o600))

	t.Setenv("INVENTARIO_BACKEND", "")
	t.Setenv("INVENTARIO_SHEET", "/already/set.csv")
	os.Unsetenv("INVENTARIO_BACKEND")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, BackendSheet, c.Backend)
	// Variables already in the environment win.
	assert.Equal(t, "/already/set.csv", c.SheetPath)
}

func TestLoadMissingEnvFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.NoError(t, err)
}
