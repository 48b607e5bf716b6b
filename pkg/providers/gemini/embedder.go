package gemini

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"github.com/inercia/go-memllm/pkg/config"
	"github.com/inercia/go-memllm/pkg/llm"
)

const (
	DefaultEmbeddingModel = "models/text-embedding-004"
	DefaultEmbeddingDims  = 768
)

// Embedder implements llm.Embedder for the Gemini API.
type Embedder struct {
	cfg    *config.EmbedderConfig
	model  string
	dims   int
	logger zerolog.Logger
}

// NewEmbedder creates the Gemini embedder. OutputDimensionality, then
// EmbeddingDims, selects the vector size.
func NewEmbedder(cfg *config.EmbedderConfig, opts ...llm.Option) (*Embedder, error) {
	cfg, err := config.EnsureEmbedderConfig(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Model == "" {
		cfg.Model = DefaultEmbeddingModel
	}
	dims := cfg.OutputDimensionality
	if dims == 0 {
		dims = cfg.Dims(DefaultEmbeddingDims)
	}

	o := llm.ApplyOptions(opts...)
	return &Embedder{
		cfg:    cfg,
		model:  cfg.Model,
		dims:   dims,
		logger: o.ComponentLogger(ProviderName, "embedder"),
	}, nil
}

// Model returns the embedding model name.
func (e *Embedder) Model() string {
	return e.model
}

// Embed returns the embedding of text. The task type is looked up from the
// memory action.
func (e *Embedder) Embed(ctx context.Context, text string, action llm.MemoryAction) ([]float32, error) {
	client, err := newAPIKeyClient(ctx, e.cfg.APIKeyOrEnv(apiKeyEnv...), e.cfg.Gemini.BaseURL, e.cfg.HTTPClient())
	if err != nil {
		return nil, err
	}
	return embedContent(ctx, client, ProviderName, e.model, text, embedConfig(e.cfg.EmbeddingTypeFor(action), e.dims), e.logger)
}

func embedConfig(taskType string, dims int) *genai.EmbedContentConfig {
	ec := &genai.EmbedContentConfig{TaskType: taskType}
	if dims > 0 {
		ec.OutputDimensionality = genai.Ptr(int32(dims))
	}
	return ec
}

func embedContent(ctx context.Context, client *genai.Client, provider, model, text string, ec *genai.EmbedContentConfig, logger zerolog.Logger) ([]float32, error) {
	contents := []*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}

	start := time.Now()
	resp, err := client.Models.EmbedContent(ctx, model, contents, ec)
	logger.Debug().
		Str("model", model).
		Str("task_type", ec.TaskType).
		Dur("duration", time.Since(start)).
		Err(err).
		Msg("embed content")
	if err != nil {
		return nil, convertError(provider, err)
	}
	if resp == nil || len(resp.Embeddings) == 0 || resp.Embeddings[0] == nil {
		return nil, llm.NewProviderError(provider, 0, errors.New("response contained no embeddings"))
	}
	return resp.Embeddings[0].Values, nil
}
