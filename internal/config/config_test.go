package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadExplicitFile(t *testing.T) {
	path := writeConfig(t, `
log:
  enabled: true
  path: /tmp/tapealert-test.log
mail:
  enabled: true
  server: mail.example.com
  port: 587
  username: bacula
  password: hunter2
  to: admin@example.com
diagnostic:
  path: /usr/local/bin/tapeinfo
  timeout: 90s
history:
  enabled: true
  path: /tmp/tapealert-test.db
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.Log.Enabled)
	assert.Equal(t, "/tmp/tapealert-test.log", cfg.Log.Path)
	assert.True(t, cfg.Mail.Enabled)
	assert.Equal(t, "mail.example.com", cfg.Mail.Server)
	assert.Equal(t, 587, cfg.Mail.Port)
	assert.Equal(t, "admin@example.com", cfg.Mail.To)
	// An unset sender falls back to the recipient.
	assert.Equal(t, "admin@example.com", cfg.Mail.From)
	assert.Equal(t, "/usr/local/bin/tapeinfo", cfg.Diagnostic.Path)
	assert.Equal(t, 90*time.Second, cfg.Diagnostic.Timeout.Duration())
	assert.True(t, cfg.History.Enabled)
	assert.Equal(t, "/tmp/tapealert-test.db", cfg.History.Path)
}

func TestLoadEmptyFileUsesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)

	assert.False(t, cfg.Log.Enabled)
	assert.Equal(t, "/opt/bacula/log/tapealert.log", cfg.Log.Path)
	assert.False(t, cfg.Mail.Enabled)
	assert.Equal(t, "localhost", cfg.Mail.Server)
	assert.Equal(t, 25, cfg.Mail.Port)
	assert.Equal(t, "tapeinfo", cfg.Diagnostic.Path)
	assert.Equal(t, 60*time.Second, cfg.Diagnostic.Timeout.Duration())
	assert.False(t, cfg.History.Enabled)
	assert.Equal(t, "/var/lib/tapealert/history.db", cfg.History.Path)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadRejectsBadPort(t *testing.T) {
	_, err := Load(writeConfig(t, "mail:\n  port: 70000\n"))
	assert.Error(t, err)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "mail: [\n"))
	assert.Error(t, err)
}

func TestDurationForms(t *testing.T) {
	cases := map[string]time.Duration{
		"timeout: 90s":  90 * time.Second,
		"timeout: 2m":   2 * time.Minute,
		"timeout: 45":   45 * time.Second,
		`timeout: "30"`: 30 * time.Second,
	}
	for body, want := range cases {
		var d struct {
			Timeout Duration `yaml:"timeout"`
		}
		require.NoError(t, yaml.Unmarshal([]byte(body), &d), body)
		assert.Equal(t, want, d.Timeout.Duration(), body)
	}

	var d struct {
		Timeout Duration `yaml:"timeout"`
	}
	assert.Error(t, yaml.Unmarshal([]byte("timeout: soon"), &d))
}
