package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_CreatesDefaultOnFirstRun(t *testing.T) {
	t.Setenv("TIDECHAT_HOME", t.TempDir())

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "default", cfg.ActiveProfile)
	require.Contains(t, cfg.Profiles, "default")
	assert.Equal(t, "TIDECHAT_TOKEN", cfg.Profiles["default"].TokenEnv)
	assert.False(t, cfg.IsValid(), "default profile has no gateway yet")

	path, err := Path()
	require.NoError(t, err)
	_, err = os.Stat(path)
	assert.NoError(t, err, "first run must persist the default config")
}

func TestLoadConfig_ReadsExistingFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("TIDECHAT_HOME", home)

	raw := `{
  "profiles": {
    "work": {"gateway_url": "https://gw.example.com", "token": "inline-token"}
  },
  "active_profile": "work"
}`
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.json"), []byte(raw), 0o600))

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.True(t, cfg.IsValid())
	assert.Equal(t, "https://gw.example.com", cfg.GatewayURL())
	assert.Equal(t, "inline-token", cfg.AccessToken())
}

func TestLoadConfig_FallsBackWhenActiveProfileMissing(t *testing.T) {
	home := t.TempDir()
	t.Setenv("TIDECHAT_HOME", home)

	raw := `{
  "profiles": {
    "only": {"gateway_url": "https://gw.example.com"}
  },
  "active_profile": "deleted"
}`
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.json"), []byte(raw), 0o600))

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "only", cfg.ActiveProfile)
	assert.Equal(t, "https://gw.example.com", cfg.GatewayURL())
}

func TestAccessToken_EnvWinsOverInline(t *testing.T) {
	home := t.TempDir()
	t.Setenv("TIDECHAT_HOME", home)
	t.Setenv("MY_GATEWAY_TOKEN", "env-token")

	raw := `{
  "profiles": {
    "default": {"gateway_url": "https://gw.example.com", "token": "inline-token", "token_env": "MY_GATEWAY_TOKEN"}
  },
  "active_profile": "default"
}`
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.json"), []byte(raw), 0o600))

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "env-token", cfg.AccessToken())
}

func TestAccessToken_EmptyEnvFallsBackToInline(t *testing.T) {
	home := t.TempDir()
	t.Setenv("TIDECHAT_HOME", home)
	t.Setenv("MY_GATEWAY_TOKEN", "")

	raw := `{
  "profiles": {
    "default": {"gateway_url": "https://gw.example.com", "token": "inline-token", "token_env": "MY_GATEWAY_TOKEN"}
  },
  "active_profile": "default"
}`
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.json"), []byte(raw), 0o600))

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "inline-token", cfg.AccessToken())
}

func TestSave_RoundTrips(t *testing.T) {
	home := t.TempDir()
	t.Setenv("TIDECHAT_HOME", home)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	cfg.Profiles["staging"] = Profile{GatewayURL: "https://staging.example.com", TokenEnv: "STAGING_TOKEN"}
	cfg.ActiveProfile = "staging"
	require.NoError(t, cfg.Save())

	reloaded, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "staging", reloaded.ActiveProfile)
	assert.Equal(t, "https://staging.example.com", reloaded.GatewayURL())

	// The file on disk stays valid JSON a human can edit.
	data, err := os.ReadFile(filepath.Join(home, "config.json"))
	require.NoError(t, err)
	assert.True(t, json.Valid(data))
}

func TestLogPath_SitsNextToConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("TIDECHAT_HOME", home)

	logPath, err := LogPath()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "tidechat.log"), logPath)
}

func TestLoadConfig_CorruptFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("TIDECHAT_HOME", home)
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.json"), []byte("{not json"), 0o600))

	_, err := LoadConfig()
	assert.Error(t, err)
}
