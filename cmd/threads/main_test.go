package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tailored-agentic-units/threads/agent"
	"github.com/tailored-agentic-units/threads/transcript"
)

func TestLoadConfig_FlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "threads.yaml")
	content := "store:\n  backend: bolt\n  path: threads.db\nagent:\n  provider: ollama\n  model: llama3\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	viper.Reset()
	t.Cleanup(viper.Reset)
	viper.Set("config", path)
	viper.Set("model", "qwen3:8b")
	viper.Set("window", 12)

	cfg, err := loadConfig()
	require.NoError(t, err)

	assert.Equal(t, transcript.BackendBolt, cfg.Store.Backend)
	assert.Equal(t, "threads.db", cfg.Store.Path)
	assert.Equal(t, agent.ProviderOllama, cfg.Agent.Provider)
	assert.Equal(t, "qwen3:8b", cfg.Agent.Model)
	assert.Equal(t, 12, cfg.Agent.Window)
}

func TestLoadConfig_Defaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg, err := loadConfig()
	require.NoError(t, err)

	assert.Equal(t, transcript.BackendFile, cfg.Store.Backend)
	assert.Empty(t, cfg.Store.Path)
	assert.Equal(t, transcript.DefaultPath, cfg.Store.ResolvePath())
	assert.Equal(t, agent.ProviderEcho, cfg.Agent.Provider)
}

func TestLoadConfig_BoltBackendDefaultPath(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	viper.Set("store-backend", transcript.BackendBolt)

	cfg, err := loadConfig()
	require.NoError(t, err)

	assert.Equal(t, transcript.BackendBolt, cfg.Store.Backend)
	assert.Equal(t, transcript.DefaultBoltPath, cfg.Store.ResolvePath())
}
