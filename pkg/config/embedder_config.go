package config

import (
	"net/http"

	"dario.cat/mergo"

	"github.com/inercia/go-memllm/pkg/llm"
)

// Embedder defaults.
const (
	DefaultLMStudioEmbedURL = "http://localhost:1234/v1"
	DefaultAWSRegion        = "us-west-2"
)

// EmbedderConfig is the configuration shared by all embedding adapters.
//
// The Memory*EmbeddingType fields carry vendor-defined task tags (for
// example RETRIEVAL_DOCUMENT) selected by the memory action of a call.
type EmbedderConfig struct {
	Model                     string  `yaml:"model,omitempty"`
	APIKey                    APIKey  `yaml:"api_key,omitempty"`
	EmbeddingDims             int     `yaml:"embedding_dims,omitempty"`
	OutputDimensionality      int     `yaml:"output_dimensionality,omitempty"`
	MemoryAddEmbeddingType    string  `yaml:"memory_add_embedding_type,omitempty"`
	MemoryUpdateEmbeddingType string  `yaml:"memory_update_embedding_type,omitempty"`
	MemorySearchEmbeddingType string  `yaml:"memory_search_embedding_type,omitempty"`
	HTTPClientProxies         Proxies `yaml:"http_client_proxies,omitempty"`

	OpenAI      OpenAIConfig        `yaml:"openai,omitempty"`
	Azure       AzureConfig         `yaml:"azure,omitempty"`
	Ollama      OllamaConfig        `yaml:"ollama,omitempty"`
	HuggingFace HuggingFaceConfig   `yaml:"huggingface,omitempty"`
	Vertex      VertexConfig        `yaml:"vertex,omitempty"`
	Gemini      GeminiConfig        `yaml:"gemini,omitempty"`
	LMStudio    LMStudioEmbedConfig `yaml:"lmstudio,omitempty"`
	AWS         AWSConfig           `yaml:"aws,omitempty"`

	httpClient *http.Client
}

// DefaultEmbedderConfig returns a configuration holding only the defaults.
func DefaultEmbedderConfig() EmbedderConfig {
	return EmbedderConfig{
		LMStudio: LMStudioEmbedConfig{BaseURL: DefaultLMStudioEmbedURL},
		AWS:      AWSConfig{Region: DefaultAWSRegion},
	}
}

// NewEmbedderConfig fills the empty fields of cfg with defaults, validates
// it and builds the shared HTTP client when proxies or default headers are
// set.
func NewEmbedderConfig(cfg EmbedderConfig) (*EmbedderConfig, error) {
	if err := mergo.Merge(&cfg, DefaultEmbedderConfig()); err != nil {
		return nil, llm.NewConfigurationError("merge_failed", "applying defaults: %v", err)
	}
	if err := cfg.init(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *EmbedderConfig) init() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.HTTPClientProxies.IsSet() || len(c.Azure.DefaultHeaders) > 0 {
		client, err := newHTTPClient(c.HTTPClientProxies, c.Azure.DefaultHeaders)
		if err != nil {
			return err
		}
		c.httpClient = client
	}
	return nil
}

// Validate checks value ranges and URLs.
func (c *EmbedderConfig) Validate() error {
	if c.EmbeddingDims < 0 {
		return llm.NewConfigurationError("invalid_embedding_dims", "embedding_dims must not be negative, got %d", c.EmbeddingDims)
	}
	if c.OutputDimensionality < 0 {
		return llm.NewConfigurationError("invalid_output_dimensionality",
			"output_dimensionality must not be negative, got %d", c.OutputDimensionality)
	}
	if c.HTTPClientProxies.IsSet() {
		if _, err := c.HTTPClientProxies.proxyFunc(); err != nil {
			return err
		}
	}
	return validateURLs(
		"openai.base_url", c.OpenAI.BaseURL,
		"azure.azure_endpoint", c.Azure.Endpoint,
		"ollama.base_url", c.Ollama.BaseURL,
		"huggingface.base_url", c.HuggingFace.BaseURL,
		"lmstudio.base_url", c.LMStudio.BaseURL,
		"aws.endpoint_url", c.AWS.EndpointURL,
		"gemini.base_url", c.Gemini.BaseURL,
		"vertex.base_url", c.Vertex.BaseURL,
	)
}

// GetAPIKey returns the configured top-level key, resolving lazy keys on
// every call.
func (c *EmbedderConfig) GetAPIKey() (string, bool) {
	return c.APIKey.Resolve()
}

// APIKeyOrEnv returns the configured key, or the first non-empty of the
// named environment variables when no key resolves to a value.
func (c *EmbedderConfig) APIKeyOrEnv(envNames ...string) string {
	key, _ := c.GetAPIKey()
	return FirstNonEmpty(key, Getenv(envNames...))
}

// HTTPClient returns the shared proxy-aware client, or nil.
func (c *EmbedderConfig) HTTPClient() *http.Client {
	return c.httpClient
}

// EmbeddingTypeFor returns the configured task tag for a memory action, or
// "" when none applies.
func (c *EmbedderConfig) EmbeddingTypeFor(action llm.MemoryAction) string {
	switch action {
	case llm.MemoryActionAdd:
		return c.MemoryAddEmbeddingType
	case llm.MemoryActionUpdate:
		return c.MemoryUpdateEmbeddingType
	case llm.MemoryActionSearch:
		return c.MemorySearchEmbeddingType
	}
	return ""
}

// Dims returns EmbeddingDims, or fallback when unset.
func (c *EmbedderConfig) Dims(fallback int) int {
	if c.EmbeddingDims > 0 {
		return c.EmbeddingDims
	}
	return fallback
}

// EnsureEmbedderConfig returns cfg, or a default configuration when cfg is
// nil.
func EnsureEmbedderConfig(cfg *EmbedderConfig) (*EmbedderConfig, error) {
	if cfg != nil {
		return cfg, nil
	}
	return NewEmbedderConfig(EmbedderConfig{})
}
