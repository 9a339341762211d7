// Package providers implements the LLM transport used by the dispatch engine
// and the capability factory. Only direct HTTP providers are supported: any
// OpenAI-compatible endpoint, plus the Anthropic Messages API as a special case.
package providers

import "github.com/skillweaver/skillweaver/internal/schema"

// Params are the raw values needed to construct a schema.LLMProvider.
// Extracted from config.Config by the caller to avoid an import cycle.
type Params struct {
	APIKey       string
	APIBase      string
	ExtraHeaders map[string]string
	DefaultModel string
	ProviderName string // e.g. "anthropic", "openrouter"
}

// defaultAPIBases maps provider names to their API base URL when the config
// does not override it.
var defaultAPIBases = map[string]string{
	"anthropic":  "https://api.anthropic.com/v1",
	"openai":     "https://api.openai.com/v1",
	"openrouter": "https://openrouter.ai/api/v1",
	"deepseek":   "https://api.deepseek.com/v1",
	"groq":       "https://api.groq.com/openai/v1",
}

// New creates the schema.LLMProvider for the given params.
func New(p Params) schema.LLMProvider {
	return NewOpenAIProvider(p.APIKey, p.APIBase, p.DefaultModel, p.ProviderName, p.ExtraHeaders)
}
