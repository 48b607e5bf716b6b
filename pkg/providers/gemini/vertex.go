package gemini

import (
	"context"
	"fmt"
	"os"

	"cloud.google.com/go/auth"
	"cloud.google.com/go/auth/credentials"
	"cloud.google.com/go/auth/httptransport"
	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"github.com/inercia/go-memllm/pkg/config"
	"github.com/inercia/go-memllm/pkg/llm"
)

const (
	DefaultVertexEmbeddingModel = "text-embedding-004"
	DefaultVertexEmbeddingDims  = 256
	DefaultVertexLocation       = "us-central1"

	DefaultVertexAddEmbeddingType    = "RETRIEVAL_DOCUMENT"
	DefaultVertexUpdateEmbeddingType = "RETRIEVAL_DOCUMENT"
	DefaultVertexSearchEmbeddingType = "RETRIEVAL_QUERY"

	EnvCredentials = "GOOGLE_APPLICATION_CREDENTIALS"
	EnvProject     = "GOOGLE_CLOUD_PROJECT"
	EnvLocation    = "GOOGLE_CLOUD_LOCATION"
)

var cloudPlatformScope = []string{"https://www.googleapis.com/auth/cloud-platform"}

// VertexEmbedder implements llm.Embedder for Vertex AI.
type VertexEmbedder struct {
	cfg      *config.EmbedderConfig
	model    string
	dims     int
	project  string
	location string
	creds    *auth.Credentials
	logger   zerolog.Logger
}

// NewVertexEmbedder creates the Vertex AI embedder.
//
// cfg.Vertex.CredentialsJSON names a service account key file and is
// loaded here. Without it the Application Default Credentials are used,
// looked up when the first request is made.
func NewVertexEmbedder(cfg *config.EmbedderConfig, opts ...llm.Option) (*VertexEmbedder, error) {
	cfg, err := config.EnsureEmbedderConfig(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Model == "" {
		cfg.Model = DefaultVertexEmbeddingModel
	}
	if cfg.EmbeddingDims == 0 {
		cfg.EmbeddingDims = DefaultVertexEmbeddingDims
	}
	cfg.MemoryAddEmbeddingType = config.FirstNonEmpty(cfg.MemoryAddEmbeddingType, DefaultVertexAddEmbeddingType)
	cfg.MemoryUpdateEmbeddingType = config.FirstNonEmpty(cfg.MemoryUpdateEmbeddingType, DefaultVertexUpdateEmbeddingType)
	cfg.MemorySearchEmbeddingType = config.FirstNonEmpty(cfg.MemorySearchEmbeddingType, DefaultVertexSearchEmbeddingType)

	o := llm.ApplyOptions(opts...)
	e := &VertexEmbedder{
		cfg:      cfg,
		model:    cfg.Model,
		dims:     cfg.EmbeddingDims,
		project:  config.FirstNonEmpty(cfg.Vertex.Project, os.Getenv(EnvProject)),
		location: config.FirstNonEmpty(cfg.Vertex.Location, os.Getenv(EnvLocation), DefaultVertexLocation),
		logger:   o.ComponentLogger(VertexProviderName, "embedder"),
	}

	if path := config.FirstNonEmpty(cfg.Vertex.CredentialsJSON, os.Getenv(EnvCredentials)); path != "" {
		creds, err := credentials.DetectDefault(&credentials.DetectOptions{
			Scopes:          cloudPlatformScope,
			CredentialsFile: path,
		})
		if err != nil {
			return nil, llm.NewConfigurationError("invalid_credentials", "loading vertex credentials from %s: %v", path, err)
		}
		e.creds = creds
		if e.project == "" {
			if id, err := creds.ProjectID(context.Background()); err == nil {
				e.project = id
			}
		}
	}

	if e.project == "" {
		return nil, llm.NewConfigurationError("missing_project",
			"vertex requires a project (vertex.project, %s or a service account file)", EnvProject)
	}
	return e, nil
}

// Model returns the embedding model name.
func (e *VertexEmbedder) Model() string {
	return e.model
}

// Embed returns the embedding of text, using the task type configured for
// the memory action.
func (e *VertexEmbedder) Embed(ctx context.Context, text string, action llm.MemoryAction) ([]float32, error) {
	client, err := e.newClient(ctx)
	if err != nil {
		return nil, err
	}
	ec := embedConfig(e.cfg.EmbeddingTypeFor(action), e.dims)
	return embedContent(ctx, client, VertexProviderName, e.model, text, ec, e.logger)
}

func (e *VertexEmbedder) newClient(ctx context.Context) (*genai.Client, error) {
	cc := &genai.ClientConfig{
		Backend:  genai.BackendVertexAI,
		Project:  e.project,
		Location: e.location,
	}
	cc.HTTPOptions.BaseURL = e.cfg.Vertex.BaseURL

	// genai authenticates on its own only when it owns the transport, so a
	// proxied client needs the credentials wired in here.
	proxied := e.cfg.HTTPClient()
	if e.creds != nil || proxied != nil {
		creds := e.creds
		if creds == nil {
			detected, err := credentials.DetectDefault(&credentials.DetectOptions{Scopes: cloudPlatformScope})
			if err != nil {
				return nil, llm.NewProviderError(VertexProviderName, 0, fmt.Errorf("finding default vertex credentials: %w", err))
			}
			creds = detected
		}
		opts := &httptransport.Options{Credentials: creds}
		if proxied != nil {
			opts.BaseRoundTripper = proxied.Transport
		}
		hc, err := httptransport.NewClient(opts)
		if err != nil {
			return nil, llm.NewProviderError(VertexProviderName, 0, fmt.Errorf("creating vertex transport: %w", err))
		}
		cc.HTTPClient = hc
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, llm.NewProviderError(VertexProviderName, 0, fmt.Errorf("creating vertex client: %w", err))
	}
	return client, nil
}
