package factory

import (
	"strings"

	"github.com/inercia/go-memllm/pkg/llm"
)

// Provider names a backend.
type Provider string

const (
	OpenAI      Provider = "openai"
	AzureOpenAI Provider = "azure_openai"
	DeepSeek    Provider = "deepseek"
	OpenRouter  Provider = "openrouter"
	Gemini      Provider = "gemini"
	VertexAI    Provider = "vertexai"
	Ollama      Provider = "ollama"
	AWSBedrock  Provider = "aws_bedrock"
	Anthropic   Provider = "anthropic"
	LMStudio    Provider = "lmstudio"
	VLLM        Provider = "vllm"
	HuggingFace Provider = "huggingface"
	Mock        Provider = "mock"
)

// DefaultProvider is used when no provider name is given.
const DefaultProvider = OpenAI

// ParseProvider normalizes a provider name. Matching ignores case and
// surrounding space; the empty name selects DefaultProvider. Names that
// no adapter is registered under fail with a configuration error.
func ParseProvider(name string) (Provider, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return DefaultProvider, nil
	}
	p := Provider(name)
	if !globalRegistry.known(p) {
		return "", llm.NewConfigurationError("unsupported_provider", "unsupported provider: %s", name)
	}
	return p, nil
}

func (p Provider) String() string {
	return string(p)
}
