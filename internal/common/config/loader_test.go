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
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

const minimalYAML = `
database:
  postgres:
    host: localhost
    database: leads
    user: router
auth:
  disabled: true
`

func TestLoadFromFile_AppliesDefaults(t *testing.T) {
	cfg, err := LoadFromFile(writeConfig(t, minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, MethodRoundRobin, cfg.Routing.AssignmentMethod)
	assert.Equal(t, CursorBackendPostgres, cfg.Routing.CursorBackend)
	assert.Equal(t, EmailProviderDisabled, cfg.Notifications.Email.Provider)
	assert.Equal(t, "New Insurance Calculator Submission", cfg.Notifications.Advisor.Subject)
	assert.Equal(t, "Your Insurance Calculator Results", cfg.Notifications.Submitter.Subject)
	assert.Equal(t, "disable", cfg.Database.Postgres.SSLMode)
	assert.Equal(t, "submissions", cfg.Search.Index)
}

func TestLoadFromFile_ExpandsEnvPlaceholders(t *testing.T) {
	t.Setenv("LEADS_DB_HOST", "db.internal")
	body := `
database:
  postgres:
    host: "${LEADS_DB_HOST}"
    database: leads
    user: router
auth:
  disabled: true
`
	cfg, err := LoadFromFile(writeConfig(t, body))
	require.NoError(t, err)
	assert.Equal(t, "db.internal", cfg.Database.Postgres.Host)
}

func TestLoadFromFile_OverridesEmptySecrets(t *testing.T) {
	t.Setenv("DB_PASSWORD", "s3cret")
	cfg, err := LoadFromFile(writeConfig(t, minimalYAML))
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.Database.Postgres.Password)
}

func TestValidateConfig(t *testing.T) {
	base := func() *Config {
		cfg := &Config{}
		cfg.Database.Postgres.Host = "localhost"
		cfg.Database.Postgres.Database = "leads"
		cfg.Database.Postgres.User = "router"
		cfg.Auth.Disabled = true
		applyDefaults(cfg)
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{
			name:    "missing postgres host",
			mutate:  func(c *Config) { c.Database.Postgres.Host = "" },
			wantErr: "database.postgres.host",
		},
		{
			name:    "unknown assignment method",
			mutate:  func(c *Config) { c.Routing.AssignmentMethod = "random" },
			wantErr: "routing.assignment_method",
		},
		{
			name:    "redis cursor without address",
			mutate:  func(c *Config) { c.Routing.CursorBackend = CursorBackendRedis },
			wantErr: "redis cursor backend",
		},
		{
			name:    "unknown cursor backend",
			mutate:  func(c *Config) { c.Routing.CursorBackend = "etcd" },
			wantErr: "not supported",
		},
		{
			name:    "ses without region",
			mutate:  func(c *Config) { c.Notifications.Email.Provider = EmailProviderSES },
			wantErr: "integrations.aws.region",
		},
		{
			name:    "camunda enabled without broker",
			mutate:  func(c *Config) { c.Camunda.Enabled = true },
			wantErr: "camunda.broker_address",
		},
		{
			name:    "search enabled without addresses",
			mutate:  func(c *Config) { c.Search.Enabled = true },
			wantErr: "elasticsearch.addresses",
		},
		{
			name:    "auth enabled without keycloak",
			mutate:  func(c *Config) { c.Auth.Disabled = false },
			wantErr: "auth.keycloak.url",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := validateConfig(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGetWorkerConfig_FallsBackToDefaults(t *testing.T) {
	cfg := &Config{Workers: map[string]WorkerConfig{
		"assign-lead-advisor": {Enabled: false, MaxJobsActive: 2},
	}}

	assert.False(t, GetWorkerConfig(cfg, "assign-lead-advisor").Enabled)

	def := GetWorkerConfig(cfg, "sync-crm-lead")
	assert.True(t, def.Enabled)
	assert.Equal(t, 5, def.MaxJobsActive)
}
