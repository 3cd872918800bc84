package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAPIServer(t *testing.T) {
	tests := []struct {
		name        string
		configFile  string
		env         map[string]string
		expectError bool
		validate    func(*testing.T, *APIServerConfig)
	}{
		{
			name:       "empty document uses defaults",
			configFile: ``,
			validate: func(t *testing.T, cfg *APIServerConfig) {
				assert.Equal(t, "0.0.0.0", cfg.Server.Host)
				assert.Equal(t, 5000, cfg.Server.Port)
				assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
				assert.Equal(t, BackendMemory, cfg.Storage.Backend)
				assert.True(t, cfg.Storage.SeedDemoData)
				assert.Equal(t, "confirmed", cfg.Solana.Commitment)
				assert.Equal(t, 20, cfg.Activity.DefaultLimit)
				assert.Equal(t, 0, cfg.Activity.MaxFanout)
				assert.Equal(t, "/metrics", cfg.Metrics.Path)
				assert.Equal(t, "json", cfg.Logging.Format)
				assert.Empty(t, cfg.AI.APIKey)
			},
		},
		{
			name: "postgres backend with env expansion",
			configFile: `
server:
  port: 8081
  read_timeout: 5s
storage:
  backend: postgres
  seed_demo_data: false
database:
  host: db.internal
  user: goonhub
  password: ${GOONHUB_TEST_DB_PASSWORD}
  auto_migrate: true
nats:
  url: nats://localhost:4222
ai:
  api_key: ${GOONHUB_TEST_AI_KEY}
  model: gpt-4o
activity:
  max_fanout: 500
logging:
  level: debug
  format: console
`,
			env: map[string]string{
				"GOONHUB_TEST_DB_PASSWORD": "s3cret",
				"GOONHUB_TEST_AI_KEY":      "sk-test",
			},
			validate: func(t *testing.T, cfg *APIServerConfig) {
				assert.Equal(t, 8081, cfg.Server.Port)
				assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, BackendPostgres, cfg.Storage.Backend)
				assert.False(t, cfg.Storage.SeedDemoData)
				assert.Equal(t, "s3cret", cfg.Database.Password)
				assert.True(t, cfg.Database.AutoMigrate)
				assert.Equal(t, "goonhub.events", cfg.NATS.SubjectPrefix)
				assert.Equal(t, "sk-test", cfg.AI.APIKey)
				assert.Equal(t, "gpt-4o", cfg.AI.Model)
				assert.Equal(t, 500, cfg.Activity.MaxFanout)
				assert.Equal(t, "console", cfg.Logging.Format)
			},
		},
		{
			name: "unknown backend",
			configFile: `
storage:
  backend: mongo
`,
			expectError: true,
		},
		{
			name: "postgres backend without user",
			configFile: `
storage:
  backend: postgres
`,
			expectError: true,
		},
		{
			name: "negative fanout",
			configFile: `
activity:
  max_fanout: -1
`,
			expectError: true,
		},
		{
			name: "zero shutdown timeout",
			configFile: `
server:
  shutdown_timeout: 0s
`,
			expectError: true,
		},
		{
			name:        "malformed yaml",
			configFile:  "server: [",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := ParseAPIServer([]byte(tt.configFile))
			if tt.expectError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.validate(t, cfg)
		})
	}
}

func TestLoadAPIServer(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9000\n"), 0o600))

	cfg, err := LoadAPIServer(path)
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Server.Port)

	_, err = LoadAPIServer(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(LoggingConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	require.NotNil(t, logger)

	_, err = NewLogger(LoggingConfig{Level: "loud", Format: "json"})
	require.Error(t, err)
}
