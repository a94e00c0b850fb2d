package embedding

import "github.com/nextlevelbuilder/goclaw/internal/config"

// NewEngineFromConfig selects a backend per mem and providers, wrapping it
// in an Engine. An empty EmbeddingProvider keeps the module fully
// self-contained (no network, no API key) by falling back to the local
// hash-projection model.
func NewEngineFromConfig(mem *config.MemoryConfig, providers config.ProvidersConfig) *Engine {
	if mem == nil || mem.EmbeddingProvider == "" {
		return New(NewLocalBackend())
	}

	model := mem.EmbeddingModel
	if model == "" {
		model = "text-embedding-3-small"
	}
	apiKey := providerAPIKey(providers, mem.EmbeddingProvider)
	return New(NewHTTPBackend(mem.EmbeddingProvider, apiKey, mem.EmbeddingAPIBase, model, Dim))
}

// providerAPIKey extracts the configured API key for name, mirroring the
// provider-name-to-config-field mapping used when resolving chat providers.
func providerAPIKey(p config.ProvidersConfig, name string) string {
	switch name {
	case "openrouter":
		return p.OpenRouter.APIKey
	case "anthropic":
		return p.Anthropic.APIKey
	case "openai":
		return p.OpenAI.APIKey
	case "groq":
		return p.Groq.APIKey
	case "deepseek":
		return p.DeepSeek.APIKey
	case "gemini":
		return p.Gemini.APIKey
	case "mistral":
		return p.Mistral.APIKey
	case "xai":
		return p.XAI.APIKey
	case "minimax":
		return p.MiniMax.APIKey
	case "cohere":
		return p.Cohere.APIKey
	case "perplexity":
		return p.Perplexity.APIKey
	default:
		return ""
	}
}
