package kernel_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/tailored-agentic-units/threads/agent"
	"github.com/tailored-agentic-units/threads/conversation"
	"github.com/tailored-agentic-units/threads/kernel"
	"github.com/tailored-agentic-units/threads/transcript"
)

func TestDefaultConfig(t *testing.T) {
	cfg := kernel.DefaultConfig()

	if cfg.Store.Backend != transcript.BackendFile {
		t.Errorf("got Store.Backend %q, want %q", cfg.Store.Backend, transcript.BackendFile)
	}
	if cfg.Agent.Provider != agent.ProviderEcho {
		t.Errorf("got Agent.Provider %q, want %q", cfg.Agent.Provider, agent.ProviderEcho)
	}
	if cfg.IDPrefix != conversation.DefaultIDPrefix {
		t.Errorf("got IDPrefix %q, want %q", cfg.IDPrefix, conversation.DefaultIDPrefix)
	}
}

func TestConfig_Merge(t *testing.T) {
	cfg := kernel.DefaultConfig()

	source := &kernel.Config{
		Store:    transcript.Config{Backend: transcript.BackendBolt, Path: "threads.db"},
		Agent:    agent.Config{Provider: agent.ProviderOllama, Model: "llama3"},
		IDPrefix: "chat-",
	}

	cfg.Merge(source)

	if cfg.Store.Backend != transcript.BackendBolt || cfg.Store.Path != "threads.db" {
		t.Errorf("got Store %+v, want bolt at threads.db", cfg.Store)
	}
	if cfg.Agent.Provider != agent.ProviderOllama || cfg.Agent.Model != "llama3" {
		t.Errorf("got Agent %+v, want ollama llama3", cfg.Agent)
	}
	if cfg.Agent.MaxTokens != 1000 {
		t.Errorf("got Agent.MaxTokens %d, want default 1000", cfg.Agent.MaxTokens)
	}
	if cfg.IDPrefix != "chat-" {
		t.Errorf("got IDPrefix %q, want %q", cfg.IDPrefix, "chat-")
	}
}

func TestConfig_Merge_ZeroValuesPreserveDefaults(t *testing.T) {
	cfg := kernel.DefaultConfig()
	original := cfg

	cfg.Merge(&kernel.Config{}) // All zero values

	if cfg.Store != original.Store {
		t.Errorf("got Store %+v, want %+v (preserved default)", cfg.Store, original.Store)
	}
	if cfg.IDPrefix != original.IDPrefix {
		t.Errorf("got IDPrefix %q, want %q (preserved default)", cfg.IDPrefix, original.IDPrefix)
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.json")

	content := `{
		"store": {"backend": "sql", "dsn": "threads.sqlite"},
		"agent": {"provider": "openai", "model": "gpt-4o-mini", "temperature": 0},
		"agents": {"local": {"provider": "ollama", "model": "llama3"}}
	}`

	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg, err := kernel.LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Store.Backend != transcript.BackendSQL || cfg.Store.DSN != "threads.sqlite" {
		t.Errorf("got Store %+v, want sql threads.sqlite", cfg.Store)
	}
	if cfg.Store.Dialect != "sqlite" {
		t.Errorf("got Store.Dialect %q, want default sqlite", cfg.Store.Dialect)
	}
	if cfg.Agent.Temperature == nil || *cfg.Agent.Temperature != 0 {
		t.Errorf("got Agent.Temperature %v, want explicit 0", cfg.Agent.Temperature)
	}
	if cfg.Agents["local"].Model != "llama3" {
		t.Errorf("got Agents %+v, want local llama3", cfg.Agents)
	}
}

func TestLoadConfig_YAML(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")

	content := `store:
  backend: file
  path: data/threads.yaml
agent:
  provider: ollama
  base_url: http://gpu-box:11434
  window: 20
id_prefix: chat-
`

	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg, err := kernel.LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Store.Path != "data/threads.yaml" {
		t.Errorf("got Store.Path %q, want %q", cfg.Store.Path, "data/threads.yaml")
	}
	if cfg.Agent.BaseURL != "http://gpu-box:11434" || cfg.Agent.Window != 20 {
		t.Errorf("got Agent %+v", cfg.Agent)
	}
	if cfg.IDPrefix != "chat-" {
		t.Errorf("got IDPrefix %q, want %q", cfg.IDPrefix, "chat-")
	}
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	_, err := kernel.LoadConfig("/nonexistent/path/config.json")
	if err == nil {
		t.Fatal("expected error for missing file, got nil")
	}
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "bad.json")

	if err := os.WriteFile(configPath, []byte("{invalid}"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	_, err := kernel.LoadConfig(configPath)
	if err == nil {
		t.Fatal("expected error for invalid JSON, got nil")
	}
}
