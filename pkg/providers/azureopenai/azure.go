package azureopenai

import (
	"net/http"
	"os"

	"github.com/sashabaranov/go-openai"

	"github.com/inercia/go-memllm/pkg/config"
	"github.com/inercia/go-memllm/pkg/llm"
	oai "github.com/inercia/go-memllm/pkg/providers/openai"
)

const (
	ProviderName = "azure_openai"

	DefaultModel          = "gpt-4o"
	DefaultEmbeddingModel = "text-embedding-3-small"
	DefaultAPIVersion     = "2024-10-21"
)

// Environment variables for the generation adapter.
const (
	EnvDeployment = "LLM_AZURE_DEPLOYMENT"
	EnvEndpoint   = "LLM_AZURE_ENDPOINT"
	EnvAPIVersion = "LLM_AZURE_API_VERSION"
	EnvAPIKey     = "LLM_AZURE_OPENAI_API_KEY"
)

// Environment variables for the embedder.
const (
	EnvEmbeddingDeployment = "EMBEDDING_AZURE_DEPLOYMENT"
	EnvEmbeddingEndpoint   = "EMBEDDING_AZURE_ENDPOINT"
	EnvEmbeddingAPIVersion = "EMBEDDING_AZURE_API_VERSION"
	EnvEmbeddingAPIKey     = "EMBEDDING_AZURE_OPENAI_API_KEY"
)

// deployment holds the non-secret settings resolved at construction.
type deployment struct {
	name       string
	endpoint   string
	apiVersion string
	httpClient *http.Client
}

func resolveDeployment(az config.AzureConfig, httpClient *http.Client, envDeployment, envEndpoint, envVersion string) (deployment, error) {
	d := deployment{
		name:       config.FirstNonEmpty(az.Deployment, os.Getenv(envDeployment)),
		endpoint:   config.FirstNonEmpty(az.Endpoint, os.Getenv(envEndpoint)),
		apiVersion: config.FirstNonEmpty(az.APIVersion, os.Getenv(envVersion), DefaultAPIVersion),
		httpClient: httpClient,
	}
	if d.endpoint == "" {
		return deployment{}, llm.NewConfigurationError("missing_endpoint",
			"azure endpoint is required: set azure.azure_endpoint or %s", envEndpoint)
	}
	if err := config.ValidateURL("azure endpoint", d.endpoint); err != nil {
		return deployment{}, err
	}
	return d, nil
}

// clientConfig builds the go-openai Azure configuration for one call.
// Requests are routed to the deployment, or to the model name when no
// deployment is configured.
func (d deployment) clientConfig(apiKey string) openai.ClientConfig {
	cc := openai.DefaultAzureConfig(apiKey, d.endpoint)
	cc.APIVersion = d.apiVersion
	cc.AzureModelMapperFunc = func(model string) string {
		return config.FirstNonEmpty(d.name, model)
	}
	if d.httpClient != nil {
		cc.HTTPClient = d.httpClient
	}
	return cc
}

// NewLLM creates the Azure OpenAI generation adapter. An empty cfg.Model is
// set to DefaultModel.
func NewLLM(cfg *config.LlmConfig, opts ...llm.Option) (*oai.ChatLLM, error) {
	cfg, err := config.EnsureLlmConfig(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	d, err := resolveDeployment(cfg.Azure, cfg.HTTPClient(), EnvDeployment, EnvEndpoint, EnvAPIVersion)
	if err != nil {
		return nil, err
	}

	endpoint := oai.Endpoint{
		Provider: ProviderName,
		ClientConfig: func() openai.ClientConfig {
			blockKey, _ := cfg.Azure.APIKey.Resolve()
			topKey, _ := cfg.GetAPIKey()
			return d.clientConfig(config.FirstNonEmpty(blockKey, topKey, os.Getenv(EnvAPIKey)))
		},
		RewriteMessages: func(messages []llm.Message) []llm.Message {
			return llm.ReplaceInLastMessage(messages, "assistant", "ai")
		},
	}
	return oai.NewChatLLM(endpoint, cfg, opts...), nil
}

// NewEmbedder creates the Azure OpenAI embedder. Newlines are replaced with
// spaces before embedding.
func NewEmbedder(cfg *config.EmbedderConfig, opts ...llm.Option) (*oai.Embedder, error) {
	cfg, err := config.EnsureEmbedderConfig(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Model == "" {
		cfg.Model = DefaultEmbeddingModel
	}

	d, err := resolveDeployment(cfg.Azure, cfg.HTTPClient(), EnvEmbeddingDeployment, EnvEmbeddingEndpoint, EnvEmbeddingAPIVersion)
	if err != nil {
		return nil, err
	}

	endpoint := oai.EmbedEndpoint{
		Provider: ProviderName,
		ClientConfig: func() openai.ClientConfig {
			blockKey, _ := cfg.Azure.APIKey.Resolve()
			topKey, _ := cfg.GetAPIKey()
			return d.clientConfig(config.FirstNonEmpty(blockKey, topKey, os.Getenv(EnvEmbeddingAPIKey)))
		},
		ReplaceNewlines: true,
	}
	return oai.NewEmbedder(endpoint, cfg.Model, opts...), nil
}
