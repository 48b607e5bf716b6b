package openai

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"

	"github.com/inercia/go-memllm/pkg/llm"
)

// EmbedEndpoint describes an OpenAI-compatible embeddings backend.
type EmbedEndpoint struct {
	Provider     string
	ClientConfig func() openai.ClientConfig

	// ReplaceNewlines turns newlines into spaces before embedding.
	ReplaceNewlines bool
	// Dimensions is sent as "dimensions" when positive.
	Dimensions int
	// ExtraBody is merged into the request body.
	ExtraBody map[string]any
}

// Embedder implements llm.Embedder over the embeddings endpoint.
type Embedder struct {
	endpoint EmbedEndpoint
	model    string
	logger   zerolog.Logger
}

// NewEmbedder creates an embedder for an OpenAI-compatible endpoint.
func NewEmbedder(endpoint EmbedEndpoint, model string, opts ...llm.Option) *Embedder {
	o := llm.ApplyOptions(opts...)
	return &Embedder{
		endpoint: endpoint,
		model:    model,
		logger:   o.ComponentLogger(endpoint.Provider, "embedder"),
	}
}

// Model returns the embedding model name.
func (e *Embedder) Model() string {
	return e.model
}

// Embed returns the embedding of text. The memory action does not change
// the request for OpenAI-compatible backends.
func (e *Embedder) Embed(ctx context.Context, text string, _ llm.MemoryAction) ([]float32, error) {
	if e.endpoint.ReplaceNewlines {
		text = strings.ReplaceAll(text, "\n", " ")
	}

	req := openai.EmbeddingRequest{
		Input:      []string{text},
		Model:      openai.EmbeddingModel(e.model),
		Dimensions: e.endpoint.Dimensions,
		ExtraBody:  e.endpoint.ExtraBody,
	}

	client := openai.NewClientWithConfig(e.endpoint.ClientConfig())

	start := time.Now()
	res, err := client.CreateEmbeddings(ctx, req)
	e.logger.Debug().
		Str("model", e.model).
		Int("dimensions", e.endpoint.Dimensions).
		Dur("duration", time.Since(start)).
		Err(err).
		Msg("embedding")
	if err != nil {
		return nil, ConvertError(e.endpoint.Provider, err)
	}
	if len(res.Data) == 0 {
		return nil, llm.NewProviderError(e.endpoint.Provider, 0, errors.New("response contained no embeddings"))
	}
	return res.Data[0].Embedding, nil
}
