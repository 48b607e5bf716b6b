package ollama

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/ollama/ollama/api"
	"github.com/rs/zerolog"

	"github.com/inercia/go-memllm/pkg/config"
	"github.com/inercia/go-memllm/pkg/llm"
)

const (
	DefaultEmbeddingModel = "nomic-embed-text"
	DefaultEmbeddingDims  = 512
)

// Embedder implements llm.Embedder for Ollama embedding models.
type Embedder struct {
	cfg    *config.EmbedderConfig
	model  string
	host   *url.URL
	logger zerolog.Logger
}

// NewEmbedder creates the Ollama embedder.
func NewEmbedder(cfg *config.EmbedderConfig, opts ...llm.Option) (*Embedder, error) {
	cfg, err := config.EnsureEmbedderConfig(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Model == "" {
		cfg.Model = DefaultEmbeddingModel
	}
	if cfg.EmbeddingDims == 0 {
		cfg.EmbeddingDims = DefaultEmbeddingDims
	}
	host, err := resolveHost(cfg.Ollama.BaseURL)
	if err != nil {
		return nil, err
	}

	o := llm.ApplyOptions(opts...)
	return &Embedder{
		cfg:    cfg,
		model:  cfg.Model,
		host:   host,
		logger: o.ComponentLogger(ProviderName, "embedder"),
	}, nil
}

// Model returns the embedding model tag.
func (e *Embedder) Model() string {
	return e.model
}

// Embed returns the embedding of text. The memory action is not used.
func (e *Embedder) Embed(ctx context.Context, text string, _ llm.MemoryAction) ([]float32, error) {
	start := time.Now()
	resp, err := newClient(e.host, e.cfg.HTTPClient()).Embed(ctx, &api.EmbedRequest{
		Model: e.model,
		Input: text,
	})
	e.logger.Debug().
		Str("model", e.model).
		Dur("duration", time.Since(start)).
		Err(err).
		Msg("embed")
	if err != nil {
		return nil, convertError(err)
	}
	if len(resp.Embeddings) == 0 {
		return nil, llm.NewProviderError(ProviderName, 0, errors.New("response contained no embeddings"))
	}
	return resp.Embeddings[0], nil
}
