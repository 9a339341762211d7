package config

import "strings"

// MatchResult is the provider resolved for a model name.
type MatchResult struct {
	Name     string
	Provider *ProviderConfig
}

// modelKeywords maps provider names to model-name substrings, checked in order.
var modelKeywords = []struct {
	name     string
	keywords []string
}{
	{"anthropic", []string{"claude", "anthropic"}},
	{"deepseek", []string{"deepseek"}},
	{"groq", []string{"groq", "llama"}},
	{"openai", []string{"gpt", "o1", "o3", "openai"}},
}

// MatchProvider resolves the provider for a model string such as
// "anthropic/claude-sonnet-4-5" or "gpt-4o". An explicit "provider/" prefix
// wins; otherwise model-name keywords decide. A configured OpenRouter key
// acts as the fallback gateway for anything unrecognised, then Custom.
func (c *Config) MatchProvider(model string) MatchResult {
	lower := strings.ToLower(model)

	if i := strings.Index(lower, "/"); i > 0 {
		switch lower[:i] {
		case "anthropic":
			return c.result("anthropic", &c.Providers.Anthropic)
		case "openai":
			return c.result("openai", &c.Providers.OpenAI)
		case "openrouter":
			return c.result("openrouter", &c.Providers.OpenRouter)
		case "deepseek":
			return c.result("deepseek", &c.Providers.DeepSeek)
		case "groq":
			return c.result("groq", &c.Providers.Groq)
		}
	}

	for _, entry := range modelKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				switch entry.name {
				case "anthropic":
					return c.result("anthropic", &c.Providers.Anthropic)
				case "deepseek":
					return c.result("deepseek", &c.Providers.DeepSeek)
				case "groq":
					return c.result("groq", &c.Providers.Groq)
				case "openai":
					return c.result("openai", &c.Providers.OpenAI)
				}
			}
		}
	}

	if c.Providers.OpenRouter.APIKey != "" {
		return MatchResult{Name: "openrouter", Provider: &c.Providers.OpenRouter}
	}
	return MatchResult{Name: "custom", Provider: &c.Providers.Custom}
}

// result returns the match, hiding providers with no key so callers can
// fall back to a configured gateway.
func (c *Config) result(name string, p *ProviderConfig) MatchResult {
	if p.APIKey == "" && c.Providers.OpenRouter.APIKey != "" {
		return MatchResult{Name: "openrouter", Provider: &c.Providers.OpenRouter}
	}
	if p.APIKey == "" && c.Providers.Custom.APIKey != "" {
		return MatchResult{Name: "custom", Provider: &c.Providers.Custom}
	}
	return MatchResult{Name: name, Provider: p}
}
