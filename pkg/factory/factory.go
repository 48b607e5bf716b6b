package factory

import (
	"github.com/inercia/go-memllm/pkg/config"
	"github.com/inercia/go-memllm/pkg/llm"
)

// Factory creates adapters with a shared set of options.
type Factory struct {
	opts []llm.Option
}

// New creates a factory. The options are passed to every adapter it
// builds, ahead of per-call options.
func New(opts ...llm.Option) *Factory {
	return &Factory{opts: opts}
}

// CreateLLM builds the generation adapter registered for provider. A nil
// cfg means all defaults.
func (f *Factory) CreateLLM(provider string, cfg *config.LlmConfig, opts ...llm.Option) (llm.LLM, error) {
	p, err := ParseProvider(provider)
	if err != nil {
		return nil, err
	}
	constructor, ok := GetLLM(p)
	if !ok {
		return nil, llm.NewConfigurationError("unsupported_provider", "provider %s has no LLM adapter", p)
	}
	return constructor(cfg, f.options(opts)...)
}

// CreateEmbedder builds the embedding adapter registered for provider. A
// nil cfg means all defaults.
func (f *Factory) CreateEmbedder(provider string, cfg *config.EmbedderConfig, opts ...llm.Option) (llm.Embedder, error) {
	p, err := ParseProvider(provider)
	if err != nil {
		return nil, err
	}
	constructor, ok := GetEmbedder(p)
	if !ok {
		return nil, llm.NewConfigurationError("unsupported_provider", "provider %s has no embedding adapter", p)
	}
	return constructor(cfg, f.options(opts)...)
}

func (f *Factory) options(extra []llm.Option) []llm.Option {
	out := make([]llm.Option, 0, len(f.opts)+len(extra))
	out = append(out, f.opts...)
	return append(out, extra...)
}

// CreateLLM builds a generation adapter with a default factory.
func CreateLLM(provider string, cfg *config.LlmConfig, opts ...llm.Option) (llm.LLM, error) {
	return New().CreateLLM(provider, cfg, opts...)
}

// CreateEmbedder builds an embedding adapter with a default factory.
func CreateEmbedder(provider string, cfg *config.EmbedderConfig, opts ...llm.Option) (llm.Embedder, error) {
	return New().CreateEmbedder(provider, cfg, opts...)
}
