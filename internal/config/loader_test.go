package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, dir string, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_NonExistent(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.json")
	if err != nil {
		t.Fatalf("expected no error for missing file, got: %v", err)
	}
	def := DefaultConfig()
	if cfg.Agents.Defaults.Model != def.Agents.Defaults.Model {
		t.Errorf("expected default model %q, got %q", def.Agents.Defaults.Model, cfg.Agents.Defaults.Model)
	}
}

func TestLoad_ValidConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, map[string]any{
		"agents": map[string]any{
			"defaults": map[string]any{
				"model":     "openai/gpt-4o",
				"maxTokens": 4096,
				"maxTurns":  3,
			},
		},
		"store": map[string]any{
			"path": "/tmp/caps",
		},
	})

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Agents.Defaults.Model != "openai/gpt-4o" {
		t.Errorf("expected model %q, got %q", "openai/gpt-4o", cfg.Agents.Defaults.Model)
	}
	if cfg.Agents.Defaults.MaxTurns != 3 {
		t.Errorf("expected maxTurns 3, got %d", cfg.Agents.Defaults.MaxTurns)
	}
	if cfg.StorePath() != "/tmp/caps" {
		t.Errorf("expected store path /tmp/caps, got %q", cfg.StorePath())
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte("{not valid json"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("expected no error for invalid JSON (falls back to default), got: %v", err)
	}
	def := DefaultConfig()
	if cfg.Agents.Defaults.Model != def.Agents.Defaults.Model {
		t.Errorf("expected default model %q, got %q", def.Agents.Defaults.Model, cfg.Agents.Defaults.Model)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, map[string]any{
		"providers": map[string]any{
			"anthropic": map[string]any{"apiKey": "from-file"},
		},
	})

	t.Setenv("ANTHROPIC_API_KEY", "from-env")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Providers.Anthropic.APIKey != "from-env" {
		t.Errorf("expected env to win, got %q", cfg.Providers.Anthropic.APIKey)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.json")

	cfg := DefaultConfig()
	cfg.Agents.Defaults.Model = "groq/llama-3.3-70b"
	if err := Save(&cfg, path); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Agents.Defaults.Model != "groq/llama-3.3-70b" {
		t.Errorf("round trip lost model, got %q", loaded.Agents.Defaults.Model)
	}
}

func TestMatchProvider(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Providers.Anthropic.APIKey = "key-a"
	cfg.Providers.Groq.APIKey = "key-g"
	cfg.Providers.OpenRouter.APIKey = "key-or"

	cases := []struct {
		model string
		want  string
	}{
		{"anthropic/claude-sonnet-4-5", "anthropic"},
		{"claude-sonnet-4-5", "anthropic"},
		{"groq/llama-3.3-70b", "groq"},
		{"some/unknown-model", "openrouter"},
	}
	for _, tc := range cases {
		got := cfg.MatchProvider(tc.model)
		if got.Name != tc.want {
			t.Errorf("MatchProvider(%q) = %q, want %q", tc.model, got.Name, tc.want)
		}
	}
}
