package config

import (
	"net/http"

	"dario.cat/mergo"

	"github.com/inercia/go-memllm/pkg/llm"
)

// Defaults applied to fields left empty.
const (
	DefaultTemperature   = 0.1
	DefaultMaxTokens     = 2000
	DefaultTopP          = 0.1
	DefaultTopK          = 1
	DefaultVisionDetails = "auto"
)

// LlmConfig is the configuration shared by all generation adapters.
type LlmConfig struct {
	Model             string  `yaml:"model,omitempty"`
	APIKey            APIKey  `yaml:"api_key,omitempty"`
	Temperature       float64 `yaml:"temperature"`
	MaxTokens         int     `yaml:"max_tokens"`
	TopP              float64 `yaml:"top_p"`
	TopK              int     `yaml:"top_k"`
	EnableVision      bool    `yaml:"enable_vision,omitempty"`
	VisionDetails     string  `yaml:"vision_details,omitempty"`
	HTTPClientProxies Proxies `yaml:"http_client_proxies,omitempty"`

	Azure      AzureConfig      `yaml:"azure,omitempty"`
	OpenAI     OpenAIConfig     `yaml:"openai,omitempty"`
	OpenRouter OpenRouterConfig `yaml:"openrouter,omitempty"`
	DeepSeek   DeepSeekConfig   `yaml:"deepseek,omitempty"`
	Ollama     OllamaConfig     `yaml:"ollama,omitempty"`
	LMStudio   LMStudioConfig   `yaml:"lmstudio,omitempty"`
	VLLM       VLLMConfig       `yaml:"vllm,omitempty"`
	Anthropic  AnthropicConfig  `yaml:"anthropic,omitempty"`
	Gemini     GeminiConfig     `yaml:"gemini,omitempty"`
	AWS        AWSConfig        `yaml:"aws,omitempty"`
	Vertex     VertexConfig     `yaml:"vertex,omitempty"`

	httpClient *http.Client
}

// DefaultLlmConfig returns a configuration holding only the defaults.
func DefaultLlmConfig() LlmConfig {
	return LlmConfig{
		Temperature:   DefaultTemperature,
		MaxTokens:     DefaultMaxTokens,
		TopP:          DefaultTopP,
		TopK:          DefaultTopK,
		VisionDetails: DefaultVisionDetails,
	}
}

// NewLlmConfig fills the empty fields of cfg with defaults, validates it and
// builds the shared HTTP client when proxies or default headers are set.
//
// Zero is the empty value for numeric fields, so a temperature of exactly 0
// cannot be expressed here; decode from YAML to keep an explicit zero.
func NewLlmConfig(cfg LlmConfig) (*LlmConfig, error) {
	if err := mergo.Merge(&cfg, DefaultLlmConfig()); err != nil {
		return nil, llm.NewConfigurationError("merge_failed", "applying defaults: %v", err)
	}
	if err := cfg.init(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// init validates the configuration and prepares the shared transport.
func (c *LlmConfig) init() error {
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
func (c *LlmConfig) Validate() error {
	if c.Temperature < 0 || c.Temperature > 2 {
		return llm.NewConfigurationError("invalid_temperature", "temperature %v is outside [0, 2]", c.Temperature)
	}
	if c.TopP < 0 || c.TopP > 1 {
		return llm.NewConfigurationError("invalid_top_p", "top_p %v is outside [0, 1]", c.TopP)
	}
	if c.MaxTokens <= 0 {
		return llm.NewConfigurationError("invalid_max_tokens", "max_tokens must be positive, got %d", c.MaxTokens)
	}
	if c.TopK < 0 {
		return llm.NewConfigurationError("invalid_top_k", "top_k must not be negative, got %d", c.TopK)
	}
	if c.HTTPClientProxies.IsSet() {
		if _, err := c.HTTPClientProxies.proxyFunc(); err != nil {
			return err
		}
	}
	return validateURLs(
		"azure.azure_endpoint", c.Azure.Endpoint,
		"openai.base_url", c.OpenAI.BaseURL,
		"openrouter.base_url", c.OpenRouter.BaseURL,
		"openrouter.site_url", c.OpenRouter.SiteURL,
		"deepseek.base_url", c.DeepSeek.BaseURL,
		"ollama.base_url", c.Ollama.BaseURL,
		"lmstudio.base_url", c.LMStudio.BaseURL,
		"vllm.base_url", c.VLLM.BaseURL,
		"anthropic.base_url", c.Anthropic.BaseURL,
		"gemini.base_url", c.Gemini.BaseURL,
		"vertex.base_url", c.Vertex.BaseURL,
		"aws.endpoint_url", c.AWS.EndpointURL,
	)
}

// GetAPIKey returns the configured top-level key, resolving lazy keys on
// every call.
func (c *LlmConfig) GetAPIKey() (string, bool) {
	return c.APIKey.Resolve()
}

// APIKeyOrEnv returns the configured key, or the first non-empty of the
// named environment variables when no key resolves to a value.
func (c *LlmConfig) APIKeyOrEnv(envNames ...string) string {
	key, _ := c.GetAPIKey()
	return FirstNonEmpty(key, Getenv(envNames...))
}

// HTTPClient returns the shared proxy-aware client, or nil to use the
// vendor SDK default.
func (c *LlmConfig) HTTPClient() *http.Client {
	return c.httpClient
}

// EnsureLlmConfig returns cfg, or a default configuration when cfg is nil.
func EnsureLlmConfig(cfg *LlmConfig) (*LlmConfig, error) {
	if cfg != nil {
		return cfg, nil
	}
	return NewLlmConfig(LlmConfig{})
}
