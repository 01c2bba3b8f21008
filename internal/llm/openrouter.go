package llm

import "net/http"

const (
	defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"
	openRouterAppTitle       = "termdojo"
	openRouterAppURL         = "https://github.com/abhisek/termdojo"
)

// OpenRouterProvider reuses the OpenAI client against OpenRouter's
// compatible API. Model IDs are passed through as "vendor/model".
type OpenRouterProvider struct {
	*OpenAIProvider
}

// NewOpenRouterProvider creates a provider targeting the OpenRouter API.
// Requests carry OpenRouter's app attribution headers.
func NewOpenRouterProvider(cfg OpenRouterConfig) (*OpenRouterProvider, error) {
	if cfg.APIKey == "" {
		return nil, errMissingKey(ProviderOpenRouter)
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOpenRouterBaseURL
	}

	headers := http.Header{}
	headers.Set("X-Title", openRouterAppTitle)
	headers.Set("HTTP-Referer", openRouterAppURL)

	inner, err := newOpenAIProviderRaw(OpenAIConfig{
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
		BaseURL: baseURL,
	}, headers)
	if err != nil {
		return nil, err
	}
	inner.name = ProviderOpenRouter

	return &OpenRouterProvider{OpenAIProvider: inner}, nil
}
