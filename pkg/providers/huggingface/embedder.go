package huggingface

import (
	"github.com/sashabaranov/go-openai"

	"github.com/inercia/go-memllm/pkg/config"
	"github.com/inercia/go-memllm/pkg/llm"
	oai "github.com/inercia/go-memllm/pkg/providers/openai"
)

const (
	ProviderName = "huggingface"

	// DefaultModel is the model name TEI expects on its OpenAI route; the
	// served model is fixed when the server starts.
	DefaultModel = "tei"

	EnvAPIKey = "HF_TOKEN"
)

// NewEmbedder creates the TEI embedder. cfg.HuggingFace.BaseURL is
// required; model_kwargs are merged into every request body.
func NewEmbedder(cfg *config.EmbedderConfig, opts ...llm.Option) (*oai.Embedder, error) {
	cfg, err := config.EnsureEmbedderConfig(cfg)
	if err != nil {
		return nil, err
	}
	baseURL := cfg.HuggingFace.BaseURL
	if baseURL == "" {
		return nil, llm.NewConfigurationError("missing_base_url",
			"huggingface embeddings need a text-embeddings-inference server: set huggingface.base_url")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	httpClient := cfg.HTTPClient()

	endpoint := oai.EmbedEndpoint{
		Provider: ProviderName,
		ClientConfig: func() openai.ClientConfig {
			return oai.NewClientConfig(cfg.APIKeyOrEnv(EnvAPIKey), baseURL, "", httpClient)
		},
		ExtraBody: cfg.HuggingFace.ModelKwargs,
	}
	return oai.NewEmbedder(endpoint, cfg.Model, opts...), nil
}
