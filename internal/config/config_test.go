package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unsetEnv clears keys for the duration of the test.
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoad_Defaults(t *testing.T) {
	unsetEnv(t, "PORT", "SERVER_HOST", "SCAN_DB_TYPE", "MONGO_URI", "MONGO_COLLECTION", "CACHE_TYPE")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:5000", cfg.Server.Address())
	assert.Equal(t, "sqlite", cfg.ScanDB.Backend())
	assert.Equal(t, "scans", cfg.ScanDB.MongoCollection)
	assert.Equal(t, "memory", cfg.Cache.Type)
}

func TestLoad_PortOverride(t *testing.T) {
	t.Setenv("PORT", "8081")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8081, cfg.Server.Port)
}

func TestScanDBConfig_Backend(t *testing.T) {
	tests := []struct {
		name string
		cfg  ScanDBConfig
		want string
	}{
		{"mongo uri implies mongodb", ScanDBConfig{MongoURI: "mongodb://localhost:27017"}, "mongodb"},
		{"explicit wins over uri", ScanDBConfig{Type: "postgresql", MongoURI: "mongodb://x"}, "postgres"},
		{"mongo alias", ScanDBConfig{Type: "mongo"}, "mongodb"},
		{"mysql", ScanDBConfig{Type: "mysql"}, "mysql"},
		{"memory", ScanDBConfig{Type: "memory"}, "memory"},
		{"case and space insensitive", ScanDBConfig{Type: " MySQL "}, "mysql"},
		{"unknown falls back", ScanDBConfig{Type: "cassandra"}, "sqlite"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.Backend())
		})
	}
}

func TestLoad_NormalisesBackendTypes(t *testing.T) {
	t.Setenv("SCAN_DB_TYPE", "PostgreSQL")
	t.Setenv("CACHE_TYPE", "Redis")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.ScanDB.Backend())
	assert.Equal(t, "redis", cfg.Cache.Type)
}

func TestLoad_RejectsUnknownBackendTypes(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"misspelt store", "SCAN_DB_TYPE", "postgre"},
		{"unsupported store", "SCAN_DB_TYPE", "cassandra"},
		{"unsupported cache", "CACHE_TYPE", "memcached"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unsetEnv(t, "SCAN_DB_TYPE", "CACHE_TYPE")
			t.Setenv(tt.key, tt.val)

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestAppConfig_IsDevelopment(t *testing.T) {
	unsetEnv(t, "APP_ENV")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.App.IsDevelopment())

	t.Setenv("APP_ENV", "production")
	cfg, err = Load()
	require.NoError(t, err)
	assert.False(t, cfg.App.IsDevelopment())
}

func TestScanDBConfig_DSNs(t *testing.T) {
	cfg := ScanDBConfig{Host: "db", Name: "scanapp", Password: "pw", SSLMode: "disable"}

	assert.Equal(t, "postgres://postgres:pw@db:5432/scanapp?sslmode=disable", cfg.PostgresDSN())
	assert.Equal(t, "root:pw@tcp(db:3306)/scanapp?parseTime=true&loc=UTC", cfg.MySQLDSN())
}

func TestLoadScanner(t *testing.T) {
	t.Setenv("SCAN_API_URL", "http://10.0.2.2:5000")
	t.Setenv("SCAN_API_TIMEOUT", "5s")

	cfg, err := LoadScanner()
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.2.2:5000", cfg.APIURL)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
}
