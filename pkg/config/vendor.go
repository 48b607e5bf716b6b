package config

import (
	"net/url"

	"github.com/inercia/go-memllm/pkg/llm"
)

// AzureConfig holds Azure OpenAI deployment settings.
type AzureConfig struct {
	APIKey         APIKey            `yaml:"api_key,omitempty"`
	Deployment     string            `yaml:"azure_deployment,omitempty"`
	Endpoint       string            `yaml:"azure_endpoint,omitempty"`
	APIVersion     string            `yaml:"api_version,omitempty"`
	DefaultHeaders map[string]string `yaml:"default_headers,omitempty"`
}

// OpenAIConfig holds OpenAI API settings.
type OpenAIConfig struct {
	BaseURL      string `yaml:"base_url,omitempty"`
	Organization string `yaml:"organization,omitempty"`
}

// OpenRouterConfig holds OpenRouter settings. Models lists fallback models
// and Route selects the routing strategy (e.g. "fallback").
type OpenRouterConfig struct {
	BaseURL string   `yaml:"base_url,omitempty"`
	Models  []string `yaml:"models,omitempty"`
	Route   string   `yaml:"route,omitempty"`
	SiteURL string   `yaml:"site_url,omitempty"`
	AppName string   `yaml:"app_name,omitempty"`
}

// DeepSeekConfig holds DeepSeek settings.
type DeepSeekConfig struct {
	BaseURL string `yaml:"base_url,omitempty"`
}

// OllamaConfig holds the Ollama server address.
type OllamaConfig struct {
	BaseURL string `yaml:"base_url,omitempty"`
}

// LMStudioConfig holds LM Studio settings. ResponseFormat is used when a
// request does not carry its own.
type LMStudioConfig struct {
	BaseURL        string              `yaml:"base_url,omitempty"`
	ResponseFormat *llm.ResponseFormat `yaml:"response_format,omitempty"`
}

// VLLMConfig holds the vLLM server address.
type VLLMConfig struct {
	BaseURL string `yaml:"base_url,omitempty"`
}

// GeminiConfig overrides the Gemini API endpoint.
type GeminiConfig struct {
	BaseURL string `yaml:"base_url,omitempty"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	BaseURL string `yaml:"base_url,omitempty"`
}

// AWSConfig holds AWS credentials for Bedrock. Empty fields fall back to
// the SDK default credential chain. EndpointURL overrides the Bedrock
// runtime endpoint.
type AWSConfig struct {
	AccessKeyID     string `yaml:"access_key_id,omitempty"`
	SecretAccessKey APIKey `yaml:"secret_access_key,omitempty"`
	SessionToken    APIKey `yaml:"session_token,omitempty"`
	Region          string `yaml:"region,omitempty"`
	EndpointURL     string `yaml:"endpoint_url,omitempty"`
}

// HasStaticCredentials reports whether an access key pair was configured.
func (c AWSConfig) HasStaticCredentials() bool {
	return c.AccessKeyID != "" && c.SecretAccessKey.IsSet()
}

// VertexConfig holds Google Vertex AI settings. CredentialsJSON is the
// path to a service account key file. BaseURL replaces the regional
// aiplatform endpoint.
type VertexConfig struct {
	CredentialsJSON string `yaml:"credentials_json,omitempty"`
	Project         string `yaml:"project,omitempty"`
	Location        string `yaml:"location,omitempty"`
	BaseURL         string `yaml:"base_url,omitempty"`
}

// HuggingFaceConfig holds the text-embeddings-inference endpoint.
type HuggingFaceConfig struct {
	BaseURL     string         `yaml:"base_url,omitempty"`
	ModelKwargs map[string]any `yaml:"model_kwargs,omitempty"`
}

// LMStudioEmbedConfig holds the LM Studio server used for embeddings.
type LMStudioEmbedConfig struct {
	BaseURL string `yaml:"base_url,omitempty"`
}

// ValidateURL checks that raw, when not empty, is an absolute URL.
func ValidateURL(field, raw string) error {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return llm.NewConfigurationError("invalid_url", "%s: %v", field, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return llm.NewConfigurationError("invalid_url", "%s: %q is not an absolute URL", field, raw)
	}
	return nil
}

// validateURLs checks field/value pairs in order and returns the first error.
func validateURLs(pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if err := ValidateURL(pairs[i], pairs[i+1]); err != nil {
			return err
		}
	}
	return nil
}
