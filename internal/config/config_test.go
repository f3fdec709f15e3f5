package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, "data_dir: "+dir+"\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Backend)
	assert.Equal(t, filepath.Join(dir, "memo.sqlite"), cfg.Store.Path)
	assert.Equal(t, filepath.Join(dir, "memo.log"), cfg.Log.Path)
	assert.Equal(t, 100*time.Millisecond, cfg.Capture.FlushInterval)
	assert.Equal(t, "simulated", cfg.Gateway.Mode)
	assert.Equal(t, 3*time.Second, cfg.Gateway.Delay)
	assert.Equal(t, 16000, cfg.Capture.SampleRate)
}

func TestLoadFileOverrides(t *testing.T) {
	path := writeConfig(t, `
data_dir: /tmp/memo-test
gateway:
  mode: http
  endpoint: https://api.example.com/v1/transcribe
  token: secret
store:
  backend: redis
  redis:
    addr: redis:6379
capture:
  backend: synthetic
  flush_interval: 250ms
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http", cfg.Gateway.Mode)
	assert.Equal(t, "https://api.example.com/v1/transcribe", cfg.Gateway.Endpoint)
	assert.Equal(t, "redis", cfg.Store.Backend)
	assert.Equal(t, "redis:6379", cfg.Store.Redis.Addr)
	assert.Equal(t, "synthetic", cfg.Capture.Backend)
	assert.Equal(t, 250*time.Millisecond, cfg.Capture.FlushInterval)
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, "data_dir: "+t.TempDir()+"\n")
	t.Setenv("MEMO_GATEWAY__DELAY", "1s")
	t.Setenv("MEMO_CAPTURE__BACKEND", "synthetic")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, time.Second, cfg.Gateway.Delay)
	assert.Equal(t, "synthetic", cfg.Capture.Backend)
}

func TestLoadRejectsHTTPWithoutEndpoint(t *testing.T) {
	path := writeConfig(t, "gateway:\n  mode: http\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	path := writeConfig(t, "store:\n  backend: mongo\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestYAMLRedactsSecrets(t *testing.T) {
	path := writeConfig(t, `
gateway:
  mode: http
  endpoint: https://api.example.com/v1/transcribe
  token: super-secret
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	out, err := cfg.YAML()
	require.NoError(t, err)
	assert.NotContains(t, string(out), "super-secret")
	assert.True(t, strings.Contains(string(out), "mode: http"))
	assert.Equal(t, "super-secret", cfg.Gateway.Token, "YAML must not mutate the config")
}
