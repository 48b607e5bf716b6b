package ollama

import (
	"context"
	"encoding/json"
	"net/url"
	"time"

	"github.com/ollama/ollama/api"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/inercia/go-memllm/pkg/config"
	"github.com/inercia/go-memllm/pkg/llm"
)

const DefaultModel = "llama3.1:70b"

// LLM implements llm.LLM for Ollama chat models.
type LLM struct {
	cfg      *config.LlmConfig
	model    string
	host     *url.URL
	logger   zerolog.Logger
	repairer llm.JSONRepairer
}

// NewLLM creates the Ollama chat adapter. An empty cfg.Model is set to
// DefaultModel.
func NewLLM(cfg *config.LlmConfig, opts ...llm.Option) (*LLM, error) {
	cfg, err := config.EnsureLlmConfig(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	host, err := resolveHost(cfg.Ollama.BaseURL)
	if err != nil {
		return nil, err
	}

	o := llm.ApplyOptions(opts...)
	return &LLM{
		cfg:      cfg,
		model:    cfg.Model,
		host:     host,
		logger:   o.ComponentLogger(ProviderName, "llm"),
		repairer: o.Repairer,
	}, nil
}

// Model returns the Ollama model tag.
func (l *LLM) Model() string {
	return l.model
}

// GenerateResponse performs one non-streaming chat call.
func (l *LLM) GenerateResponse(ctx context.Context, req llm.GenerateRequest) (*llm.Response, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	chatReq, err := l.convertRequest(req)
	if err != nil {
		return nil, err
	}

	var chatResp api.ChatResponse
	start := time.Now()
	err = newClient(l.host, l.cfg.HTTPClient()).Chat(ctx, chatReq, func(resp api.ChatResponse) error {
		chatResp = resp
		return nil
	})
	l.logger.Debug().
		Str("model", l.model).
		Int("tools", len(req.Tools)).
		Dur("duration", time.Since(start)).
		Err(err).
		Msg("chat")
	if err != nil {
		return nil, convertError(err)
	}

	calls := make([]llm.RawToolCall, 0, len(chatResp.Message.ToolCalls))
	for _, tc := range chatResp.Message.ToolCalls {
		call, err := llm.RawToolCallFromValue(tc.Function.Name, map[string]any(tc.Function.Arguments))
		if err != nil {
			return nil, err
		}
		calls = append(calls, call)
	}
	return llm.NormalizeResponse(chatResp.Message.Content, calls, req.HasTools(), l.repairer)
}

func (l *LLM) convertRequest(req llm.GenerateRequest) (*api.ChatRequest, error) {
	chatReq := &api.ChatRequest{
		Model: l.model,
		Messages: lo.Map(req.Messages, func(msg llm.Message, _ int) api.Message {
			return api.Message{Role: string(msg.Role), Content: msg.Content}
		}),
		Stream:  new(bool),
		Options: map[string]any{},
	}

	if !llm.IsReasoningModel(l.model) {
		chatReq.Options["temperature"] = l.cfg.Temperature
		chatReq.Options["num_predict"] = l.cfg.MaxTokens
		chatReq.Options["top_p"] = l.cfg.TopP
	}

	if rf := req.ResponseFormat; rf.WantsJSON() {
		chatReq.Format = []byte(`"json"`)
		if rf.Type == llm.ResponseFormatJSONSchema && rf.JSONSchema != nil && rf.JSONSchema.Schema != nil {
			schema, err := json.Marshal(rf.JSONSchema.Schema)
			if err != nil {
				return nil, llm.NewValidationError("invalid_response_format", "encoding json schema: %v", err)
			}
			chatReq.Format = schema
		}
	}

	if req.HasTools() {
		chatReq.Tools = make([]api.Tool, 0, len(req.Tools))
		for _, tool := range req.Tools {
			params, err := toolParameters(tool.Function.Name, tool.Function.Parameters)
			if err != nil {
				return nil, err
			}
			chatReq.Tools = append(chatReq.Tools, api.Tool{
				Type: llm.ToolTypeFunction,
				Function: api.ToolFunction{
					Name:        tool.Function.Name,
					Description: tool.Function.Description,
					Parameters:  params,
				},
			})
		}
	}

	return chatReq, nil
}
