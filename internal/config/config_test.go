package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "jhi.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "gtx", cfg.Translator.Service)
	assert.Equal(t, time.Duration(0), cfg.Translator.Timeout)
	assert.False(t, cfg.Translator.Breaker.Enabled)
	assert.Equal(t, uint32(5), cfg.Translator.Breaker.MaxFailures)
	assert.Equal(t, 30*time.Second, cfg.Translator.Breaker.OpenTimeout)
	assert.Equal(t, "127.0.0.1:7428", cfg.Server.Addr)
	assert.Equal(t, 16, cfg.Server.EventBuffer)
	assert.Equal(t, "jhi.db", filepath.Base(cfg.Database.Path))
	assert.Equal(t, "settings.yaml", filepath.Base(cfg.Settings.Path))
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
database:
  path: /tmp/jhi-test.db
translator:
  service: mymemory
  email: me@example.com
  timeout: 3s
  breaker:
    enabled: false
server:
  addr: localhost:9000
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/jhi-test.db", cfg.Database.Path)
	assert.Equal(t, "mymemory", cfg.Translator.Service)
	assert.Equal(t, "me@example.com", cfg.Translator.Email)
	assert.Equal(t, 3*time.Second, cfg.Translator.Timeout)
	assert.False(t, cfg.Translator.Breaker.Enabled)
	assert.Equal(t, "localhost:9000", cfg.Server.Addr)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("JHI_TRANSLATOR_SERVICE", "mymemory")
	t.Setenv("JHI_SERVER_ADDR", "127.0.0.1:9999")

	cfg, err := Load(writeConfig(t, "translator:\n  service: gtx\n"))
	require.NoError(t, err)
	assert.Equal(t, "mymemory", cfg.Translator.Service)
	assert.Equal(t, "127.0.0.1:9999", cfg.Server.Addr)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "unknown service",
			content: "translator:\n  service: deepl\n",
			want:    "service must be one of",
		},
		{
			name:    "bad address",
			content: "server:\n  addr: not-an-address\n",
			want:    "addr",
		},
		{
			name:    "missing credentials file",
			content: "translator:\n  service: google\n  credentials: /nonexistent/key.json\n",
			want:    "translator.credentials must be an existing, readable file",
		},
		{
			name:    "bad email",
			content: "translator:\n  email: nobody\n",
			want:    "email must be a valid email",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_Malformed(t *testing.T) {
	_, err := Load(writeConfig(t, "translator: [unterminated\n"))
	assert.Error(t, err)
}
