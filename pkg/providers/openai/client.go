package openai

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"

	"github.com/inercia/go-memllm/pkg/config"
	"github.com/inercia/go-memllm/pkg/llm"
)

// Endpoint describes an OpenAI-compatible backend.
type Endpoint struct {
	// Provider names the backend in errors and logs.
	Provider string

	// ClientConfig builds the go-openai configuration for one call. It runs
	// on every call so rotated credentials take effect immediately.
	ClientConfig func() openai.ClientConfig

	// RewriteMessages optionally transforms a copy of the conversation
	// before it is sent.
	RewriteMessages func([]llm.Message) []llm.Message

	// DefaultResponseFormat is used when a request carries none.
	DefaultResponseFormat *llm.ResponseFormat
}

// ChatLLM implements llm.LLM over the chat completions protocol.
type ChatLLM struct {
	endpoint Endpoint
	cfg      *config.LlmConfig
	model    string
	logger   zerolog.Logger
	repairer llm.JSONRepairer
}

// NewChatLLM creates an adapter for an OpenAI-compatible endpoint. The
// model is taken from cfg.Model, which the caller has already defaulted.
func NewChatLLM(endpoint Endpoint, cfg *config.LlmConfig, opts ...llm.Option) *ChatLLM {
	o := llm.ApplyOptions(opts...)
	return &ChatLLM{
		endpoint: endpoint,
		cfg:      cfg,
		model:    cfg.Model,
		logger:   o.ComponentLogger(endpoint.Provider, "llm"),
		repairer: o.Repairer,
	}
}

// Model returns the model sent with every request.
func (c *ChatLLM) Model() string {
	return c.model
}

// GenerateResponse performs one chat completion call.
func (c *ChatLLM) GenerateResponse(ctx context.Context, req llm.GenerateRequest) (*llm.Response, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	messages := req.CloneMessages()
	if c.endpoint.RewriteMessages != nil {
		messages = c.endpoint.RewriteMessages(messages)
	}
	if req.ResponseFormat == nil {
		req.ResponseFormat = c.endpoint.DefaultResponseFormat
	}

	chatReq, err := BuildChatRequest(c.model, c.cfg, messages, req)
	if err != nil {
		return nil, err
	}

	client := openai.NewClientWithConfig(c.endpoint.ClientConfig())

	start := time.Now()
	resp, err := client.CreateChatCompletion(ctx, chatReq)
	c.logger.Debug().
		Str("model", c.model).
		Int("messages", len(messages)).
		Int("tools", len(req.Tools)).
		Dur("duration", time.Since(start)).
		Err(err).
		Msg("chat completion")
	if err != nil {
		return nil, ConvertError(c.endpoint.Provider, err)
	}

	return ParseChatResponse(c.endpoint.Provider, resp, req.HasTools(), c.repairer)
}

// NewClientConfig returns a go-openai configuration for a plain
// OpenAI-compatible server.
func NewClientConfig(apiKey, baseURL, organization string, httpClient *http.Client) openai.ClientConfig {
	cc := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cc.BaseURL = baseURL
	}
	cc.OrgID = organization
	if httpClient != nil {
		cc.HTTPClient = httpClient
	}
	return cc
}
