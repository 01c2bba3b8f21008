package llm

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Provider names accepted in Config.Provider.
const (
	ProviderGemini     = "gemini"
	ProviderAnthropic  = "anthropic"
	ProviderOpenAI     = "openai"
	ProviderOpenRouter = "openrouter"
	ProviderMock       = "mock"
)

// Config holds all LLM provider configuration.
type Config struct {
	// Provider selects which LLM provider to use.
	// Values: "gemini", "anthropic", "openai", "openrouter", "mock"
	Provider string `yaml:"provider"`

	Gemini     GeminiConfig     `yaml:"gemini"`
	Anthropic  AnthropicConfig  `yaml:"anthropic"`
	OpenAI     OpenAIConfig     `yaml:"openai"`
	OpenRouter OpenRouterConfig `yaml:"openrouter"`

	// Timeout bounds a single LLM request. Default: 30s.
	Timeout time.Duration `yaml:"timeout"`

	// StructuredOutput asks the provider for schema-constrained JSON
	// instead of free text. Fence stripping and validation still apply.
	StructuredOutput bool `yaml:"structured_output"`
}

// GeminiConfig holds Gemini-specific configuration.
type GeminiConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"` // Default: "gemini-2.5-flash-lite"
}

// AnthropicConfig holds Anthropic-specific configuration.
type AnthropicConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"` // Default: "claude-haiku"
}

// OpenAIConfig holds OpenAI-specific configuration.
type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`    // Default: "gpt-4o-mini"
	BaseURL string `yaml:"base_url"` // Optional. Override for compatible APIs.
}

// OpenRouterConfig holds OpenRouter-specific configuration.
type OpenRouterConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`    // Default: "google/gemini-2.5-flash-lite"
	BaseURL string `yaml:"base_url"` // Default: "https://openrouter.ai/api/v1"
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider: ProviderGemini,
		Gemini: GeminiConfig{
			Model: "gemini-2.5-flash-lite",
		},
		Anthropic: AnthropicConfig{
			Model: "claude-haiku",
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-4o-mini",
		},
		OpenRouter: OpenRouterConfig{
			Model: "google/gemini-2.5-flash-lite",
		},
		Timeout: 30 * time.Second,
	}
}

// ApplyEnv overlays TERMDOJO_* environment variables onto cfg. When no
// provider key was configured explicitly, the standard vendor variables
// (GEMINI_API_KEY, OPENAI_API_KEY, ...) are used as a fallback.
func ApplyEnv(cfg Config) Config {
	if p := os.Getenv("TERMDOJO_LLM_PROVIDER"); p != "" {
		cfg.Provider = p
	}

	setFromEnv(&cfg.Gemini.APIKey, "TERMDOJO_GEMINI_API_KEY", "GEMINI_API_KEY")
	setFromEnv(&cfg.Gemini.Model, "TERMDOJO_GEMINI_MODEL")

	setFromEnv(&cfg.Anthropic.APIKey, "TERMDOJO_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY")
	setFromEnv(&cfg.Anthropic.Model, "TERMDOJO_ANTHROPIC_MODEL")

	setFromEnv(&cfg.OpenAI.APIKey, "TERMDOJO_OPENAI_API_KEY", "OPENAI_API_KEY")
	setFromEnv(&cfg.OpenAI.Model, "TERMDOJO_OPENAI_MODEL")
	setFromEnv(&cfg.OpenAI.BaseURL, "TERMDOJO_OPENAI_BASE_URL")

	setFromEnv(&cfg.OpenRouter.APIKey, "TERMDOJO_OPENROUTER_API_KEY", "OPENROUTER_API_KEY")
	setFromEnv(&cfg.OpenRouter.Model, "TERMDOJO_OPENROUTER_MODEL")

	if v := os.Getenv("TERMDOJO_LLM_STRUCTURED_OUTPUT"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.StructuredOutput = b
		}
	}

	if t := os.Getenv("TERMDOJO_LLM_TIMEOUT"); t != "" {
		if d, err := time.ParseDuration(t); err == nil {
			cfg.Timeout = d
		}
	}
	return cfg
}

// setFromEnv assigns the first non-empty variable among keys to dst.
// The first key always wins; later keys only fill an empty dst.
func setFromEnv(dst *string, keys ...string) {
	for i, k := range keys {
		v := os.Getenv(k)
		if v == "" {
			continue
		}
		if i == 0 || *dst == "" {
			*dst = v
		}
		return
	}
}

// DiscoverProvider picks the first provider, in priority order
// Gemini → OpenAI → Anthropic → OpenRouter, that has an API key in cfg.
// Returns false when none is configured.
func DiscoverProvider(cfg Config) (string, bool) {
	switch {
	case cfg.Gemini.APIKey != "":
		return ProviderGemini, true
	case cfg.OpenAI.APIKey != "":
		return ProviderOpenAI, true
	case cfg.Anthropic.APIKey != "":
		return ProviderAnthropic, true
	case cfg.OpenRouter.APIKey != "":
		return ProviderOpenRouter, true
	}
	return "", false
}

// APIKey returns the API key configured for the selected provider.
func (c Config) APIKey() string {
	switch c.Provider {
	case ProviderGemini:
		return c.Gemini.APIKey
	case ProviderAnthropic:
		return c.Anthropic.APIKey
	case ProviderOpenAI:
		return c.OpenAI.APIKey
	case ProviderOpenRouter:
		return c.OpenRouter.APIKey
	}
	return ""
}

// Model returns the model configured for the selected provider.
func (c Config) Model() string {
	switch c.Provider {
	case ProviderGemini:
		return c.Gemini.Model
	case ProviderAnthropic:
		return c.Anthropic.Model
	case ProviderOpenAI:
		return c.OpenAI.Model
	case ProviderOpenRouter:
		return c.OpenRouter.Model
	case ProviderMock:
		return "mock"
	}
	return ""
}

// WithCredentials returns a copy of c whose selected provider uses the
// given key and model. Empty values keep the configured ones.
func (c Config) WithCredentials(apiKey, model string) Config {
	switch c.Provider {
	case ProviderGemini:
		c.Gemini.APIKey = orDefault(apiKey, c.Gemini.APIKey)
		c.Gemini.Model = orDefault(model, c.Gemini.Model)
	case ProviderAnthropic:
		c.Anthropic.APIKey = orDefault(apiKey, c.Anthropic.APIKey)
		c.Anthropic.Model = orDefault(model, c.Anthropic.Model)
	case ProviderOpenAI:
		c.OpenAI.APIKey = orDefault(apiKey, c.OpenAI.APIKey)
		c.OpenAI.Model = orDefault(model, c.OpenAI.Model)
	case ProviderOpenRouter:
		c.OpenRouter.APIKey = orDefault(apiKey, c.OpenRouter.APIKey)
		c.OpenRouter.Model = orDefault(model, c.OpenRouter.Model)
	}
	return c
}

func orDefault(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

// Validate checks that the selected provider has its required API key set.
func (c Config) Validate() error {
	switch c.Provider {
	case ProviderGemini:
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY (or TERMDOJO_GEMINI_API_KEY) is required for the gemini provider")
		}
	case ProviderAnthropic:
		if c.Anthropic.APIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY (or TERMDOJO_ANTHROPIC_API_KEY) is required for the anthropic provider")
		}
	case ProviderOpenAI:
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY (or TERMDOJO_OPENAI_API_KEY) is required for the openai provider")
		}
	case ProviderOpenRouter:
		if c.OpenRouter.APIKey == "" {
			return fmt.Errorf("OPENROUTER_API_KEY (or TERMDOJO_OPENROUTER_API_KEY) is required for the openrouter provider")
		}
	case ProviderMock:
		// No API key needed.
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	return nil
}
