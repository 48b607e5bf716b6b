package openrouter

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/revrost/go-openrouter"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/inercia/go-memllm/pkg/config"
	"github.com/inercia/go-memllm/pkg/llm"
)

const (
	ProviderName = "openrouter"

	DefaultModel   = "openai/gpt-4o-mini"
	DefaultBaseURL = "https://openrouter.ai/api/v1"

	EnvAPIKey  = "OPENROUTER_API_KEY"
	EnvBaseURL = "OPENROUTER_API_BASE"

	routeFallback = "fallback"
)

// LLM implements llm.LLM for OpenRouter.
type LLM struct {
	cfg      *config.LlmConfig
	model    string
	baseURL  string
	logger   zerolog.Logger
	repairer llm.JSONRepairer
}

// NewLLM creates the OpenRouter adapter. An empty cfg.Model is set to
// DefaultModel.
func NewLLM(cfg *config.LlmConfig, opts ...llm.Option) (*LLM, error) {
	cfg, err := config.EnsureLlmConfig(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	baseURL := config.FirstNonEmpty(cfg.OpenRouter.BaseURL, os.Getenv(EnvBaseURL), DefaultBaseURL)
	if err := config.ValidateURL("openrouter base url", baseURL); err != nil {
		return nil, err
	}

	o := llm.ApplyOptions(opts...)
	l := &LLM{
		cfg:      cfg,
		model:    cfg.Model,
		baseURL:  baseURL,
		logger:   o.ComponentLogger(ProviderName, "llm"),
		repairer: o.Repairer,
	}
	if route := cfg.OpenRouter.Route; route != "" && route != routeFallback {
		l.logger.Warn().Str("route", route).Msg("unsupported openrouter route, using fallback")
	}
	return l, nil
}

// Model returns the primary model.
func (l *LLM) Model() string {
	return l.model
}

// GenerateResponse performs one chat completion call.
func (l *LLM) GenerateResponse(ctx context.Context, req llm.GenerateRequest) (*llm.Response, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	client := openrouter.NewClientWithConfig(*l.clientConfig())
	orReq := l.convertRequest(req)

	start := time.Now()
	resp, err := client.CreateChatCompletion(ctx, orReq)
	l.logger.Debug().
		Str("model", l.model).
		Strs("fallbacks", l.cfg.OpenRouter.Models).
		Int("tools", len(req.Tools)).
		Dur("duration", time.Since(start)).
		Err(err).
		Msg("chat completion")
	if err != nil {
		return nil, convertError(err)
	}

	if len(resp.Choices) == 0 {
		return nil, llm.NewProviderError(ProviderName, 0, errors.New("response contained no choices"))
	}
	msg := resp.Choices[0].Message
	calls := lo.Map(msg.ToolCalls, func(tc openrouter.ToolCall, _ int) llm.RawToolCall {
		return llm.RawToolCall{Name: tc.Function.Name, Arguments: tc.Function.Arguments}
	})
	return llm.NormalizeResponse(msg.Content.Text, calls, req.HasTools(), l.repairer)
}

// clientConfig builds the SDK configuration, resolving the key for this
// call.
func (l *LLM) clientConfig() *openrouter.ClientConfig {
	cc := openrouter.DefaultConfig(l.cfg.APIKeyOrEnv(EnvAPIKey))
	cc.BaseURL = l.baseURL
	cc.HttpReferer = l.cfg.OpenRouter.SiteURL
	cc.XTitle = l.cfg.OpenRouter.AppName
	if hc := l.cfg.HTTPClient(); hc != nil {
		cc.HTTPClient = hc
	}
	return cc
}

func (l *LLM) convertRequest(req llm.GenerateRequest) openrouter.ChatCompletionRequest {
	orReq := openrouter.ChatCompletionRequest{
		Model: l.model,
		Messages: lo.Map(req.Messages, func(msg llm.Message, _ int) openrouter.ChatCompletionMessage {
			return openrouter.ChatCompletionMessage{
				Role:    string(msg.Role),
				Content: openrouter.Content{Text: msg.Content},
			}
		}),
	}

	// Fallback models are tried in order after the primary.
	if len(l.cfg.OpenRouter.Models) > 0 {
		orReq.Models = lo.Uniq(append([]string{l.model}, l.cfg.OpenRouter.Models...))
	}

	if !llm.IsReasoningModel(l.model) {
		orReq.Temperature = float32(l.cfg.Temperature)
		orReq.MaxTokens = l.cfg.MaxTokens
		orReq.TopP = float32(l.cfg.TopP)
	}

	if req.ResponseFormat.WantsJSON() {
		orReq.ResponseFormat = &openrouter.ChatCompletionResponseFormat{
			Type: openrouter.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	if req.HasTools() {
		orReq.Tools = lo.Map(req.Tools, func(tool llm.Tool, _ int) openrouter.Tool {
			params := tool.Function.Parameters
			if params == nil {
				params = map[string]any{"type": "object", "properties": map[string]any{}}
			}
			return openrouter.Tool{
				Type: openrouter.ToolType(llm.ToolTypeFunction),
				Function: &openrouter.FunctionDefinition{
					Name:        tool.Function.Name,
					Description: tool.Function.Description,
					Parameters:  params,
				},
			}
		})
		orReq.ToolChoice = req.EffectiveToolChoice()
	}

	return orReq
}

func convertError(err error) error {
	var apiErr *openrouter.APIError
	if errors.As(err, &apiErr) {
		return llm.NewProviderError(ProviderName, apiErr.HTTPStatusCode, err)
	}
	var reqErr *openrouter.RequestError
	if errors.As(err, &reqErr) {
		return llm.NewProviderError(ProviderName, reqErr.HTTPStatusCode, err)
	}
	return llm.NewProviderError(ProviderName, 0, err)
}
