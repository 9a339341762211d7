package config

import "github.com/kelseyhightower/envconfig"

// envCredentials are the secrets that may be supplied via the environment
// instead of the config file. Environment values win over file values so a
// deployment can keep keys out of ~/.skillweaver entirely.
type envCredentials struct {
	AnthropicAPIKey  string `envconfig:"ANTHROPIC_API_KEY"`
	OpenAIAPIKey     string `envconfig:"OPENAI_API_KEY"`
	OpenRouterAPIKey string `envconfig:"OPENROUTER_API_KEY"`
	DeepSeekAPIKey   string `envconfig:"DEEPSEEK_API_KEY"`
	GroqAPIKey       string `envconfig:"GROQ_API_KEY"`
	BraveAPIKey      string `envconfig:"BRAVE_API_KEY"`
}

// applyEnv overlays environment credentials onto cfg.
func applyEnv(cfg *Config) {
	var env envCredentials
	if err := envconfig.Process("", &env); err != nil {
		return
	}
	if env.AnthropicAPIKey != "" {
		cfg.Providers.Anthropic.APIKey = env.AnthropicAPIKey
	}
	if env.OpenAIAPIKey != "" {
		cfg.Providers.OpenAI.APIKey = env.OpenAIAPIKey
	}
	if env.OpenRouterAPIKey != "" {
		cfg.Providers.OpenRouter.APIKey = env.OpenRouterAPIKey
	}
	if env.DeepSeekAPIKey != "" {
		cfg.Providers.DeepSeek.APIKey = env.DeepSeekAPIKey
	}
	if env.GroqAPIKey != "" {
		cfg.Providers.Groq.APIKey = env.GroqAPIKey
	}
	if env.BraveAPIKey != "" {
		cfg.Web.SearchAPIKey = env.BraveAPIKey
	}
}
