package factory

import (
	"sort"
	"sync"

	"github.com/samber/lo"

	"github.com/inercia/go-memllm/pkg/config"
	"github.com/inercia/go-memllm/pkg/llm"
)

// LLMConstructor builds a generation adapter.
type LLMConstructor func(cfg *config.LlmConfig, opts ...llm.Option) (llm.LLM, error)

// EmbedderConstructor builds an embedding adapter.
type EmbedderConstructor func(cfg *config.EmbedderConfig, opts ...llm.Option) (llm.Embedder, error)

// providerRegistry holds all registered constructors
type providerRegistry struct {
	mu        sync.RWMutex
	llms      map[Provider]LLMConstructor
	embedders map[Provider]EmbedderConstructor
}

var globalRegistry = &providerRegistry{
	llms:      make(map[Provider]LLMConstructor),
	embedders: make(map[Provider]EmbedderConstructor),
}

// RegisterLLM registers a generation adapter constructor, replacing any
// previous one for the same provider.
func RegisterLLM(p Provider, constructor LLMConstructor) {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()
	globalRegistry.llms[p] = constructor
}

// RegisterEmbedder registers an embedding adapter constructor, replacing
// any previous one for the same provider.
func RegisterEmbedder(p Provider, constructor EmbedderConstructor) {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()
	globalRegistry.embedders[p] = constructor
}

// GetLLM returns the generation constructor for p.
func GetLLM(p Provider) (LLMConstructor, bool) {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()
	c, ok := globalRegistry.llms[p]
	return c, ok
}

// GetEmbedder returns the embedding constructor for p.
func GetEmbedder(p Provider) (EmbedderConstructor, bool) {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()
	c, ok := globalRegistry.embedders[p]
	return c, ok
}

// LLMProviders returns the registered generation providers, sorted.
func LLMProviders() []Provider {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()
	return sorted(lo.Keys(globalRegistry.llms))
}

// EmbedderProviders returns the registered embedding providers, sorted.
func EmbedderProviders() []Provider {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()
	return sorted(lo.Keys(globalRegistry.embedders))
}

func (r *providerRegistry) known(p Provider) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, isLLM := r.llms[p]
	_, isEmbedder := r.embedders[p]
	return isLLM || isEmbedder
}

func sorted(ps []Provider) []Provider {
	sort.Slice(ps, func(i, j int) bool { return ps[i] < ps[j] })
	return ps
}

// wrapLLM adapts a constructor returning a concrete adapter type.
func wrapLLM[T llm.LLM](fn func(*config.LlmConfig, ...llm.Option) (T, error)) LLMConstructor {
	return func(cfg *config.LlmConfig, opts ...llm.Option) (llm.LLM, error) {
		adapter, err := fn(cfg, opts...)
		if err != nil {
			return nil, err
		}
		return adapter, nil
	}
}

// wrapEmbedder adapts a constructor returning a concrete embedder type.
func wrapEmbedder[T llm.Embedder](fn func(*config.EmbedderConfig, ...llm.Option) (T, error)) EmbedderConstructor {
	return func(cfg *config.EmbedderConfig, opts ...llm.Option) (llm.Embedder, error) {
		embedder, err := fn(cfg, opts...)
		if err != nil {
			return nil, err
		}
		return embedder, nil
	}
}
