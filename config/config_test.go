package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "SHUTDOWN_TIMEOUT", "NEO4J_URI", "NEO4J_USER", "NEO4J_PASSWORD",
		"NEO4J_DATABASE", "NEO4J_CONNECT_ATTEMPTS", "NEO4J_CONNECT_DELAY",
		"CORS_ORIGINS", "FRONTEND_URL", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
		"APP_ENV", "LOG_LEVEL", "APP_VERSION", "CONFIG_FILE",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8001", cfg.Server.Port)
	assert.Equal(t, "bolt://localhost:7687", cfg.Neo4j.URI)
	assert.Equal(t, "neo4j", cfg.Neo4j.User)
	assert.Equal(t, "password", cfg.Neo4j.Password)
	assert.Equal(t, 5, cfg.Neo4j.ConnectAttempts)
	assert.Equal(t, 3*time.Second, cfg.Neo4j.ConnectDelay)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORS.Origins())
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("NEO4J_URI", "neo4j://graph:7687")
	t.Setenv("NEO4J_USER", "admin")
	t.Setenv("NEO4J_CONNECT_ATTEMPTS", "7")
	t.Setenv("NEO4J_CONNECT_DELAY", "250ms")
	t.Setenv("FRONTEND_URL", "https://map.example.com/")
	t.Setenv("RATE_LIMIT_RPS", "2.5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "neo4j://graph:7687", cfg.Neo4j.URI)
	assert.Equal(t, "admin", cfg.Neo4j.User)
	assert.Equal(t, 7, cfg.Neo4j.ConnectAttempts)
	assert.Equal(t, 250*time.Millisecond, cfg.Neo4j.ConnectDelay)
	assert.Equal(t, 2.5, cfg.RateLimit.RPS)
	assert.Equal(t, []string{"http://localhost:3000", "https://map.example.com"}, cfg.CORS.Origins())
}

func TestLoad_InvalidNumbersFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("NEO4J_CONNECT_ATTEMPTS", "many")
	t.Setenv("NEO4J_CONNECT_DELAY", "soon")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Neo4j.ConnectAttempts)
	assert.Equal(t, 3*time.Second, cfg.Neo4j.ConnectDelay)
}

func TestLoad_ConfigFileThenEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "cloudmap.toml")
	body := `
[neo4j]
uri = "bolt://from-file:7687"
user = "file-user"
connect_attempts = 2

[cors]
allowed_origins = ["http://localhost:3000", "http://localhost:5173"]
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("NEO4J_USER", "env-user")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "bolt://from-file:7687", cfg.Neo4j.URI)
	assert.Equal(t, "env-user", cfg.Neo4j.User)
	assert.Equal(t, 2, cfg.Neo4j.ConnectAttempts)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:5173"}, cfg.CORS.Origins())
}

func TestLoad_MissingConfigFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.toml"))

	_, err := Load()
	require.Error(t, err)
}

func TestHeartbeatScheduleCanBeDisabled(t *testing.T) {
	clearEnv(t)
	t.Setenv("HEARTBEAT_SCHEDULE", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.Heartbeat.Schedule)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "empty port", mutate: func(c *Config) { c.Server.Port = "" }, wantErr: true},
		{name: "empty uri", mutate: func(c *Config) { c.Neo4j.URI = "" }, wantErr: true},
		{name: "zero attempts", mutate: func(c *Config) { c.Neo4j.ConnectAttempts = 0 }, wantErr: true},
		{name: "bad origin", mutate: func(c *Config) { c.CORS.FrontendURL = "localhost:3000" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
