package deepseek

import (
	"context"
	"errors"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/cohesion-org/deepseek-go"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/inercia/go-memllm/pkg/config"
	"github.com/inercia/go-memllm/pkg/llm"
)

const (
	ProviderName = "deepseek"

	DefaultModel   = "deepseek-chat"
	DefaultBaseURL = "https://api.deepseek.com"

	EnvAPIKey  = "DEEPSEEK_API_KEY"
	EnvBaseURL = "DEEPSEEK_API_BASE"
)

// LLM implements llm.LLM for DeepSeek.
type LLM struct {
	cfg      *config.LlmConfig
	model    string
	baseURL  string
	logger   zerolog.Logger
	repairer llm.JSONRepairer
}

// NewLLM creates the DeepSeek adapter. An empty cfg.Model is set to
// DefaultModel.
func NewLLM(cfg *config.LlmConfig, opts ...llm.Option) (*LLM, error) {
	cfg, err := config.EnsureLlmConfig(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	baseURL := config.FirstNonEmpty(cfg.DeepSeek.BaseURL, os.Getenv(EnvBaseURL), DefaultBaseURL)
	if err := config.ValidateURL("deepseek base url", baseURL); err != nil {
		return nil, err
	}

	o := llm.ApplyOptions(opts...)
	l := &LLM{
		cfg:      cfg,
		model:    cfg.Model,
		baseURL:  strings.TrimRight(baseURL, "/") + "/",
		logger:   o.ComponentLogger(ProviderName, "llm"),
		repairer: o.Repairer,
	}
	return l, nil
}

// Model returns the DeepSeek model name.
func (l *LLM) Model() string {
	return l.model
}

// GenerateResponse performs one chat completion call.
func (l *LLM) GenerateResponse(ctx context.Context, req llm.GenerateRequest) (*llm.Response, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	clientOpts := []deepseek.Option{deepseek.WithBaseURL(l.baseURL)}
	if hc := l.cfg.HTTPClient(); hc != nil {
		clientOpts = append(clientOpts, deepseek.WithHTTPClient(hc))
	}
	client, err := deepseek.NewClientWithOptions(l.cfg.APIKeyOrEnv(EnvAPIKey), clientOpts...)
	if err != nil {
		return nil, llm.NewProviderError(ProviderName, 0, err)
	}

	dsReq := l.convertRequest(req)

	start := time.Now()
	resp, err := client.CreateChatCompletion(ctx, &dsReq)
	l.logger.Debug().
		Str("model", l.model).
		Int("tools", len(req.Tools)).
		Dur("duration", time.Since(start)).
		Err(err).
		Msg("chat completion")
	if err != nil {
		return nil, convertError(err)
	}

	return l.convertResponse(resp, req.HasTools())
}

func (l *LLM) convertRequest(req llm.GenerateRequest) deepseek.ChatCompletionRequest {
	dsReq := deepseek.ChatCompletionRequest{
		Model: l.model,
		Messages: lo.Map(req.Messages, func(msg llm.Message, _ int) deepseek.ChatCompletionMessage {
			return deepseek.ChatCompletionMessage{Role: string(msg.Role), Content: msg.Content}
		}),
	}

	if !llm.IsReasoningModel(l.model) {
		dsReq.Temperature = float32(l.cfg.Temperature)
		dsReq.MaxTokens = l.cfg.MaxTokens
		dsReq.TopP = float32(l.cfg.TopP)
	}

	if req.ResponseFormat.WantsJSON() {
		dsReq.ResponseFormat = &deepseek.ResponseFormat{Type: "json_object"}
	}

	if req.HasTools() {
		dsReq.Tools = lo.Map(req.Tools, func(tool llm.Tool, _ int) deepseek.Tool {
			return deepseek.Tool{
				Type: llm.ToolTypeFunction,
				Function: deepseek.Function{
					Name:        tool.Function.Name,
					Description: tool.Function.Description,
					Parameters:  convertToolParameters(tool.Function.Parameters),
				},
			}
		})
		dsReq.ToolChoice = req.EffectiveToolChoice()
	}

	return dsReq
}

func (l *LLM) convertResponse(resp *deepseek.ChatCompletionResponse, toolsRequested bool) (*llm.Response, error) {
	if resp == nil || len(resp.Choices) == 0 {
		return nil, llm.NewProviderError(ProviderName, 0, errors.New("response contained no choices"))
	}
	msg := resp.Choices[0].Message
	calls := lo.Map(msg.ToolCalls, func(tc deepseek.ToolCall, _ int) llm.RawToolCall {
		return llm.RawToolCall{Name: tc.Function.Name, Arguments: tc.Function.Arguments}
	})
	return llm.NormalizeResponse(msg.Content, calls, toolsRequested, l.repairer)
}

// convertToolParameters maps a JSON schema object onto the SDK's typed
// parameters. Schemas given as Go values are round-tripped through a map.
func convertToolParameters(params any) *deepseek.FunctionParameters {
	result := &deepseek.FunctionParameters{Type: "object"}

	paramMap, ok := params.(map[string]any)
	if !ok {
		return result
	}
	if typ, ok := paramMap["type"].(string); ok {
		result.Type = typ
	}
	if props, ok := paramMap["properties"].(map[string]any); ok {
		result.Properties = props
	}
	switch req := paramMap["required"].(type) {
	case []string:
		result.Required = req
	case []any:
		result.Required = lo.FilterMap(req, func(item any, _ int) (string, bool) {
			s, ok := item.(string)
			return s, ok
		})
	}
	return result
}

var statusPattern = regexp.MustCompile(`status(?: code)?:?\s*(\d{3})`)

// convertError maps SDK errors onto provider errors. Transport failures
// only carry text, so their status is inferred from the message.
func convertError(err error) error {
	var apiErr *deepseek.APIError
	if errors.As(err, &apiErr) {
		return llm.NewProviderError(ProviderName, apiErr.StatusCode, err)
	}

	msg := strings.ToLower(err.Error())
	status := 0
	if m := statusPattern.FindStringSubmatch(msg); m != nil {
		status, _ = strconv.Atoi(m[1])
	}
	switch {
	case status != 0:
	case strings.Contains(msg, "unauthorized") || strings.Contains(msg, "invalid api key") || strings.Contains(msg, "authentication"):
		status = 401
	case strings.Contains(msg, "rate limit") || strings.Contains(msg, "too many requests"):
		status = 429
	case strings.Contains(msg, "model") && strings.Contains(msg, "not found"):
		status = 404
	case strings.Contains(msg, "insufficient balance"):
		status = 402
	case strings.Contains(msg, "server error") || strings.Contains(msg, "service unavailable"):
		status = 503
	}
	return llm.NewProviderError(ProviderName, status, err)
}
