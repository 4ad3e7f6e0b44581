package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfigContent = `
[development]
host = "localhost"
port = 8080
log_level = "trace"
log_to_stdout = true
redis_host = "localhost"
redis_port = "6379"
spreadsheet_id = "dev-spreadsheet"
coach_api_url = "http://localhost:9999/coach"

[production]
host = ""
port = 9000
log_level = "debug"
logs_path = "/var/log/liftmates/service.log"
redis_host = "redis"
redis_port = "6379"
spreadsheet_id = "prod-spreadsheet"
sheets_credentials_path = "/etc/liftmates/sheets-sa.json"
coach_api_url = "https://api.anthropic.com/v1/messages"
coach_rate_limit_per_min = 3
login_rate_limit_allowed_per_min = 10
session_grace_delay_seconds = 5
`

func writeTestConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(testConfigContent), 0o600))
	return path
}

func TestLoad_Development(t *testing.T) {
	cfg, err := Load("development", writeTestConfig(t))
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "dev-spreadsheet", cfg.SpreadsheetID)
	assert.True(t, cfg.LogToStdout)

	// defaults kick in when not set
	assert.Equal(t, 15, cfg.LoginRateLimitAllowedPerMin)
	assert.Equal(t, 5, cfg.CoachRateLimitPerMin)
	assert.Equal(t, 2, cfg.SessionGraceDelaySeconds)
}

func TestLoad_Production(t *testing.T) {
	cfg, err := Load("prod", writeTestConfig(t))
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "/var/log/liftmates/service.log", cfg.LogsPath)
	assert.Equal(t, 3, cfg.CoachRateLimitPerMin)
	assert.Equal(t, 10, cfg.LoginRateLimitAllowedPerMin)
	assert.Equal(t, 5, cfg.SessionGraceDelaySeconds)
}

func TestLoad_UnknownEnv(t *testing.T) {
	cfg, err := Load("staging", writeTestConfig(t))
	require.Error(t, err)
	assert.Nil(t, cfg)
}
