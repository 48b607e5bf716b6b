package vllm

import (
	"os"

	"github.com/sashabaranov/go-openai"

	"github.com/inercia/go-memllm/pkg/config"
	"github.com/inercia/go-memllm/pkg/llm"
	oai "github.com/inercia/go-memllm/pkg/providers/openai"
)

const (
	ProviderName = "vllm"

	DefaultModel   = "Qwen/Qwen2.5-32B-Instruct"
	DefaultBaseURL = "http://localhost:8000/v1"
	DefaultAPIKey  = "vllm-api-key"

	EnvBaseURL = "VLLM_BASE_URL"
	EnvAPIKey  = "VLLM_API_KEY"
)

// NewLLM creates the vLLM adapter. The server URL is cfg.VLLM.BaseURL, then
// VLLM_BASE_URL, then DefaultBaseURL.
func NewLLM(cfg *config.LlmConfig, opts ...llm.Option) (*oai.ChatLLM, error) {
	cfg, err := config.EnsureLlmConfig(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	baseURL := config.FirstNonEmpty(cfg.VLLM.BaseURL, os.Getenv(EnvBaseURL), DefaultBaseURL)
	if err := config.ValidateURL(EnvBaseURL, baseURL); err != nil {
		return nil, err
	}
	httpClient := cfg.HTTPClient()

	endpoint := oai.Endpoint{
		Provider: ProviderName,
		ClientConfig: func() openai.ClientConfig {
			key := config.FirstNonEmpty(cfg.APIKeyOrEnv(EnvAPIKey), DefaultAPIKey)
			return oai.NewClientConfig(key, baseURL, "", httpClient)
		},
	}
	return oai.NewChatLLM(endpoint, cfg, opts...), nil
}
