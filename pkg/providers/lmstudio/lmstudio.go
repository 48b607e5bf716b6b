package lmstudio

import (
	"github.com/sashabaranov/go-openai"

	"github.com/inercia/go-memllm/pkg/config"
	"github.com/inercia/go-memllm/pkg/llm"
	oai "github.com/inercia/go-memllm/pkg/providers/openai"
)

const (
	ProviderName = "lmstudio"

	DefaultModel          = "lmstudio-community/Meta-Llama-3.1-70B-Instruct-GGUF/Meta-Llama-3.1-70B-Instruct-IQ2_M.gguf"
	DefaultEmbeddingModel = "nomic-ai/nomic-embed-text-v1.5-GGUF/nomic-embed-text-v1.5.f16.gguf"
	DefaultBaseURL        = "http://localhost:1234/v1"

	// DefaultAPIKey is sent when no key is configured. LM Studio accepts
	// any value.
	DefaultAPIKey = "lm-studio"
	EnvAPIKey     = "LMSTUDIO_API_KEY"
)

// NewLLM creates the LM Studio generation adapter. Requests without a
// response format use cfg.LMStudio.ResponseFormat, or JSON object mode when
// that is unset too.
func NewLLM(cfg *config.LlmConfig, opts ...llm.Option) (*oai.ChatLLM, error) {
	cfg, err := config.EnsureLlmConfig(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	baseURL := config.FirstNonEmpty(cfg.LMStudio.BaseURL, DefaultBaseURL)
	httpClient := cfg.HTTPClient()

	format := cfg.LMStudio.ResponseFormat
	if format == nil {
		format = llm.NewJSONResponseFormat()
	}

	endpoint := oai.Endpoint{
		Provider: ProviderName,
		ClientConfig: func() openai.ClientConfig {
			key := config.FirstNonEmpty(cfg.APIKeyOrEnv(EnvAPIKey), DefaultAPIKey)
			return oai.NewClientConfig(key, baseURL, "", httpClient)
		},
		DefaultResponseFormat: format,
	}
	return oai.NewChatLLM(endpoint, cfg, opts...), nil
}

// NewEmbedder creates the LM Studio embedder. Newlines are replaced with
// spaces before embedding.
func NewEmbedder(cfg *config.EmbedderConfig, opts ...llm.Option) (*oai.Embedder, error) {
	cfg, err := config.EnsureEmbedderConfig(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Model == "" {
		cfg.Model = DefaultEmbeddingModel
	}

	baseURL := config.FirstNonEmpty(cfg.LMStudio.BaseURL, DefaultBaseURL)
	httpClient := cfg.HTTPClient()

	endpoint := oai.EmbedEndpoint{
		Provider: ProviderName,
		ClientConfig: func() openai.ClientConfig {
			key := config.FirstNonEmpty(cfg.APIKeyOrEnv(EnvAPIKey), DefaultAPIKey)
			return oai.NewClientConfig(key, baseURL, "", httpClient)
		},
		ReplaceNewlines: true,
	}
	return oai.NewEmbedder(endpoint, cfg.Model, opts...), nil
}
