package openai

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"

	"github.com/inercia/go-memllm/pkg/config"
	"github.com/inercia/go-memllm/pkg/llm"
)

const (
	ProviderName = "openai"

	DefaultModel          = "gpt-4o-mini"
	DefaultEmbeddingModel = "text-embedding-3-small"
	DefaultEmbeddingDims  = 1536
	DefaultBaseURL        = "https://api.openai.com/v1"
)

// Environment variables read when the configuration leaves a value empty.
const (
	EnvAPIKey  = "OPENAI_API_KEY"
	EnvBaseURL = "OPENAI_BASE_URL"
	// EnvAPIBase is the deprecated name of EnvBaseURL.
	EnvAPIBase = "OPENAI_API_BASE"
)

// NewLLM creates an OpenAI chat adapter. An empty cfg.Model is set to
// DefaultModel.
func NewLLM(cfg *config.LlmConfig, opts ...llm.Option) (*ChatLLM, error) {
	cfg, err := config.EnsureLlmConfig(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	o := llm.ApplyOptions(opts...)
	baseURL := resolveBaseURL(cfg.OpenAI.BaseURL, o.ComponentLogger(ProviderName, "llm"))
	org := cfg.OpenAI.Organization
	httpClient := cfg.HTTPClient()

	endpoint := Endpoint{
		Provider: ProviderName,
		ClientConfig: func() openai.ClientConfig {
			return NewClientConfig(cfg.APIKeyOrEnv(EnvAPIKey), baseURL, org, httpClient)
		},
	}
	return NewChatLLM(endpoint, cfg, opts...), nil
}

// NewOpenAIEmbedder creates an OpenAI embedder. Newlines are replaced with
// spaces and the configured dimensions are always sent.
func NewOpenAIEmbedder(cfg *config.EmbedderConfig, opts ...llm.Option) (*Embedder, error) {
	cfg, err := config.EnsureEmbedderConfig(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Model == "" {
		cfg.Model = DefaultEmbeddingModel
	}
	if cfg.EmbeddingDims == 0 {
		cfg.EmbeddingDims = DefaultEmbeddingDims
	}

	o := llm.ApplyOptions(opts...)
	baseURL := resolveBaseURL(cfg.OpenAI.BaseURL, o.ComponentLogger(ProviderName, "embedder"))
	org := cfg.OpenAI.Organization
	httpClient := cfg.HTTPClient()

	endpoint := EmbedEndpoint{
		Provider: ProviderName,
		ClientConfig: func() openai.ClientConfig {
			return NewClientConfig(cfg.APIKeyOrEnv(EnvAPIKey), baseURL, org, httpClient)
		},
		ReplaceNewlines: true,
		Dimensions:      cfg.EmbeddingDims,
	}
	return NewEmbedder(endpoint, cfg.Model, opts...), nil
}

// resolveBaseURL picks the configured URL, then OPENAI_API_BASE (with a
// deprecation warning), then OPENAI_BASE_URL, then the public API.
func resolveBaseURL(configured string, logger zerolog.Logger) string {
	if configured != "" {
		return configured
	}
	if legacy := os.Getenv(EnvAPIBase); legacy != "" {
		logger.Warn().
			Str("env", EnvAPIBase).
			Str("replacement", EnvBaseURL).
			Msg("environment variable is deprecated")
		return legacy
	}
	return config.FirstNonEmpty(os.Getenv(EnvBaseURL), DefaultBaseURL)
}
