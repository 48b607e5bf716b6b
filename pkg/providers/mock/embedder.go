package mock

import (
	"context"
	"hash/fnv"
	"math"
	"sync"

	"github.com/rs/zerolog"

	"github.com/inercia/go-memllm/pkg/config"
	"github.com/inercia/go-memllm/pkg/llm"
)

const (
	DefaultEmbeddingModel = "mock-embedding"
	DefaultEmbeddingDims  = 8
)

// EmbedCall records one Embed invocation.
type EmbedCall struct {
	Text   string
	Action llm.MemoryAction
}

// Embedder implements llm.Embedder with deterministic unit vectors: equal
// text always yields an equal vector.
type Embedder struct {
	model  string
	dims   int
	logger zerolog.Logger

	mu    sync.Mutex
	calls []EmbedCall
	err   error
}

// NewEmbedder creates a mock embedder with cfg.EmbeddingDims dimensions,
// DefaultEmbeddingDims when unset.
func NewEmbedder(cfg *config.EmbedderConfig, opts ...llm.Option) (*Embedder, error) {
	cfg, err := config.EnsureEmbedderConfig(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Model == "" {
		cfg.Model = DefaultEmbeddingModel
	}
	o := llm.ApplyOptions(opts...)
	return &Embedder{
		model:  cfg.Model,
		dims:   cfg.Dims(DefaultEmbeddingDims),
		logger: o.ComponentLogger(ProviderName, "embedder"),
	}, nil
}

// Model returns the configured model name.
func (e *Embedder) Model() string {
	return e.model
}

// Embed returns the vector for text, or the error set with WithError.
func (e *Embedder) Embed(_ context.Context, text string, action llm.MemoryAction) ([]float32, error) {
	e.mu.Lock()
	e.calls = append(e.calls, EmbedCall{Text: text, Action: action})
	err := e.err
	e.mu.Unlock()

	e.logger.Debug().
		Str("model", e.model).
		Str("action", string(action)).
		Err(err).
		Msg("embedding")
	if err != nil {
		return nil, err
	}
	return vectorFor(text, e.dims), nil
}

// WithError makes every following Embed call fail with err.
func (e *Embedder) WithError(err error) *Embedder {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.err = err
	return e
}

// Calls returns a copy of the logged invocations.
func (e *Embedder) Calls() []EmbedCall {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]EmbedCall, len(e.calls))
	copy(out, e.calls)
	return out
}

// vectorFor spreads FNV hashes of text over dims components and normalizes
// the result to unit length.
func vectorFor(text string, dims int) []float32 {
	vec := make([]float32, dims)
	var norm float64
	for i := range vec {
		h := fnv.New64a()
		h.Write([]byte{byte(i), byte(i >> 8)})
		h.Write([]byte(text))
		v := float64(h.Sum64()%2001)/1000 - 1
		vec[i] = float32(v)
		norm += v * v
	}
	if norm == 0 {
		return vec
	}
	scale := 1 / math.Sqrt(norm)
	for i := range vec {
		vec[i] = float32(float64(vec[i]) * scale)
	}
	return vec
}
