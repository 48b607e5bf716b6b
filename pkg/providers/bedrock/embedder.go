package bedrock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/inercia/go-memllm/pkg/config"
	"github.com/inercia/go-memllm/pkg/llm"
)

const DefaultEmbeddingModel = "amazon.titan-embed-text-v1"

const familyCohere = "cohere"

// Embedder implements llm.Embedder for Bedrock embedding models.
type Embedder struct {
	model   string
	family  string
	dims    int
	invoker invoker
}

// NewEmbedder creates the Bedrock embedder for Titan or Cohere models.
func NewEmbedder(cfg *config.EmbedderConfig, opts ...llm.Option) (*Embedder, error) {
	cfg, err := config.EnsureEmbedderConfig(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Model == "" {
		cfg.Model = DefaultEmbeddingModel
	}

	family := modelFamily(cfg.Model)
	if family != familyAmazon && family != familyCohere {
		return nil, llm.NewConfigurationError("unsupported_model", "bedrock embedding model %q is not supported", cfg.Model)
	}

	o := llm.ApplyOptions(opts...)
	return &Embedder{
		model:   cfg.Model,
		family:  family,
		dims:    cfg.EmbeddingDims,
		invoker: newInvoker(cfg.AWS, cfg.HTTPClient(), o.ComponentLogger(ProviderName, "embedder")),
	}, nil
}

// Model returns the Bedrock model ID.
func (e *Embedder) Model() string {
	return e.model
}

// Embed returns the embedding of text. Cohere models receive a search
// query input type for searches and a document input type otherwise.
func (e *Embedder) Embed(ctx context.Context, text string, action llm.MemoryAction) ([]float32, error) {
	body, err := e.buildBody(text, action)
	if err != nil {
		return nil, err
	}
	out, err := e.invoker.invoke(ctx, e.model, body)
	if err != nil {
		return nil, err
	}

	vec, err := e.parseBody(out)
	if err != nil {
		return nil, llm.NewProviderError(ProviderName, 0, fmt.Errorf("decoding embedding: %w", err))
	}
	return vec, nil
}

func (e *Embedder) buildBody(text string, action llm.MemoryAction) ([]byte, error) {
	if e.family == familyCohere {
		inputType := "search_document"
		if action == llm.MemoryActionSearch {
			inputType = "search_query"
		}
		return json.Marshal(map[string]any{"texts": []string{text}, "input_type": inputType})
	}
	body := map[string]any{"inputText": text}
	if e.dims > 0 && strings.Contains(e.model, "titan-embed-text-v2") {
		body["dimensions"] = e.dims
	}
	return json.Marshal(body)
}

func (e *Embedder) parseBody(body []byte) ([]float32, error) {
	if e.family == familyCohere {
		var resp struct {
			Embeddings [][]float32 `json:"embeddings"`
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, err
		}
		if len(resp.Embeddings) == 0 {
			return nil, errors.New("no embeddings in response")
		}
		return resp.Embeddings[0], nil
	}
	var resp struct {
		Embedding []float32 `json:"embedding"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}
	if len(resp.Embedding) == 0 {
		return nil, errors.New("no embedding in response")
	}
	return resp.Embedding, nil
}
