// Package config defines the configuration schema for skillweaver.
//
// Configuration lives in a single JSON file (~/.skillweaver/config.json);
// API keys may additionally be supplied through the environment, which takes
// precedence over the file (see env.go).
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ProviderConfig holds credentials for one LLM provider.
type ProviderConfig struct {
	APIKey       string            `json:"apiKey"`
	APIBase      string            `json:"apiBase,omitempty"`
	ExtraHeaders map[string]string `json:"extraHeaders,omitempty"`
}

// ProvidersConfig holds credentials for the supported LLM providers.
type ProvidersConfig struct {
	Custom     ProviderConfig `json:"custom"`
	Anthropic  ProviderConfig `json:"anthropic"`
	OpenAI     ProviderConfig `json:"openai"`
	OpenRouter ProviderConfig `json:"openrouter"`
	DeepSeek   ProviderConfig `json:"deepseek"`
	Groq       ProviderConfig `json:"groq"`
}

// AgentDefaults holds default values for the dispatch loop.
type AgentDefaults struct {
	Model       string  `json:"model"`
	MaxTokens   int     `json:"maxTokens"`
	Temperature float64 `json:"temperature"`
	MaxTurns    int     `json:"maxTurns"`
}

func defaultAgentDefaults() AgentDefaults {
	return AgentDefaults{
		Model:       "anthropic/claude-sonnet-4-5",
		MaxTokens:   8192,
		Temperature: 0.2,
		MaxTurns:    8,
	}
}

// AgentsConfig wraps agent defaults.
type AgentsConfig struct {
	Defaults AgentDefaults `json:"defaults"`
}

// StoreConfig configures the on-disk capability store.
type StoreConfig struct {
	// Path is the directory holding one folder per capability.
	Path string `json:"path"`
	// BuiltinPath optionally points at a read-only directory of bundled
	// capabilities, merged behind Path (Path entries win on name clash).
	BuiltinPath string `json:"builtinPath,omitempty"`
	// HandlerTimeout bounds one handler execution, in seconds.
	HandlerTimeout int `json:"handlerTimeoutSeconds"`
	// SweepSchedule is the cron expression for the periodic descriptor
	// revalidation sweep in serve mode. Empty disables the sweep.
	SweepSchedule string `json:"sweepSchedule,omitempty"`
}

func defaultStoreConfig() StoreConfig {
	return StoreConfig{
		Path:           "~/.skillweaver/capabilities",
		HandlerTimeout: 60,
		SweepSchedule:  "@every 10m",
	}
}

// WebToolConfig configures the built-in web tools.
type WebToolConfig struct {
	SearchAPIKey     string `json:"searchApiKey"`
	SearchMaxResults int    `json:"searchMaxResults"`
	FetchMaxChars    int    `json:"fetchMaxChars"`
}

// GatewayConfig configures the HTTP/websocket gateway.
type GatewayConfig struct {
	Listen string `json:"listen"`
}

// Config is the root configuration object.
type Config struct {
	Providers ProvidersConfig `json:"providers"`
	Agents    AgentsConfig    `json:"agents"`
	Store     StoreConfig     `json:"store"`
	Web       WebToolConfig   `json:"web"`
	Gateway   GatewayConfig   `json:"gateway"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	return Config{
		Agents:  AgentsConfig{Defaults: defaultAgentDefaults()},
		Store:   defaultStoreConfig(),
		Web:     WebToolConfig{SearchMaxResults: 5, FetchMaxChars: 50000},
		Gateway: GatewayConfig{Listen: "127.0.0.1:8420"},
	}
}

// StorePath returns the capability store directory with ~ expanded.
func (c *Config) StorePath() string { return expandHome(c.Store.Path) }

// BuiltinStorePath returns the bundled-capability directory with ~ expanded,
// or "" when unset.
func (c *Config) BuiltinStorePath() string {
	if c.Store.BuiltinPath == "" {
		return ""
	}
	return expandHome(c.Store.BuiltinPath)
}

// expandHome replaces a leading "~" with the user's home directory.
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
