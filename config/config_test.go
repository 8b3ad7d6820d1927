package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWhenNoFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000", cfg.API.BaseURL)
	assert.Equal(t, 60*time.Second, cfg.Polling.Documents)
	assert.Equal(t, 30*time.Second, cfg.Polling.Dashboard)
	assert.Equal(t, "Alex", cfg.User.Name)
}

func TestLoadYAML(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	require.NoError(t, os.MkdirAll(filepath.Join(home, ".casedesk"), 0755))
	yamlCfg := []byte("api:\n  base_url: http://legal.internal:9000\nuser:\n  name: Bob\npolling:\n  documents: 10s\n  dashboard: 5s\n")
	require.NoError(t, os.WriteFile(filepath.Join(home, ".casedesk", "config.yaml"), yamlCfg, 0644))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "http://legal.internal:9000", cfg.API.BaseURL)
	assert.Equal(t, "Bob", cfg.User.Name)
	assert.Equal(t, 10*time.Second, cfg.Polling.Documents)
	assert.Equal(t, 5*time.Second, cfg.Polling.Dashboard)
}

func TestLoadTOML(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.toml")
	tomlCfg := []byte("[api]\nbase_url = \"http://toml.example:8080\"\n\n[user]\nname = \"Dana\"\n")
	require.NoError(t, os.WriteFile(path, tomlCfg, 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://toml.example:8080", cfg.API.BaseURL)
	assert.Equal(t, "Dana", cfg.User.Name)
	assert.Equal(t, 60*time.Second, cfg.Polling.Documents)
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("CASEDESK_API_URL", "http://env.example")
	t.Setenv("CASEDESK_USER", "Casey")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "http://env.example", cfg.API.BaseURL)
	assert.Equal(t, "Casey", cfg.User.Name)
}

func TestValidateRejectsBadValues(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg := Default()
	cfg.API.BaseURL = "not a url"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Polling.Documents = 0
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Log.Level = "verbose"
	assert.Error(t, cfg.Validate())
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg := Default()
	cfg.User.Name = "Morgan"
	require.NoError(t, cfg.Save())

	loaded, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "Morgan", loaded.User.Name)
	assert.Equal(t, cfg.Polling.Dashboard, loaded.Polling.Dashboard)
}
