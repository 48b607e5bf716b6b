package anthropic

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/inercia/go-memllm/pkg/config"
	"github.com/inercia/go-memllm/pkg/llm"
)

const (
	ProviderName = "anthropic"

	DefaultModel = "claude-3-5-sonnet-20240620"
	EnvAPIKey    = "ANTHROPIC_API_KEY"
)

// LLM implements llm.LLM for Anthropic models.
type LLM struct {
	cfg      *config.LlmConfig
	model    string
	logger   zerolog.Logger
	repairer llm.JSONRepairer
}

// NewLLM creates the Anthropic adapter. An empty cfg.Model is set to
// DefaultModel.
func NewLLM(cfg *config.LlmConfig, opts ...llm.Option) (*LLM, error) {
	cfg, err := config.EnsureLlmConfig(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	o := llm.ApplyOptions(opts...)
	return &LLM{
		cfg:      cfg,
		model:    cfg.Model,
		logger:   o.ComponentLogger(ProviderName, "llm"),
		repairer: o.Repairer,
	}, nil
}

// Model returns the Anthropic model name.
func (l *LLM) Model() string {
	return l.model
}

// GenerateResponse performs one Messages API call.
func (l *LLM) GenerateResponse(ctx context.Context, req llm.GenerateRequest) (*llm.Response, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	client, err := l.newClient()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	message, err := client.Messages.New(ctx, l.convertRequest(req))
	l.logger.Debug().
		Str("model", l.model).
		Int("tools", len(req.Tools)).
		Dur("duration", time.Since(start)).
		Err(err).
		Msg("messages")
	if err != nil {
		return nil, convertError(err)
	}

	var text strings.Builder
	var calls []llm.RawToolCall
	for _, block := range message.Content {
		switch b := block.AsAny().(type) {
		case anthropic.TextBlock:
			text.WriteString(b.Text)
		case anthropic.ToolUseBlock:
			calls = append(calls, llm.RawToolCall{Name: b.Name, Arguments: string(b.Input)})
		}
	}
	return llm.NormalizeResponse(text.String(), calls, req.HasTools(), l.repairer)
}

// newClient builds a client for one call. The SDK retry loop is disabled.
func (l *LLM) newClient() (*anthropic.Client, error) {
	key := l.cfg.APIKeyOrEnv(EnvAPIKey)
	if key == "" {
		return nil, llm.NewProviderError(ProviderName, 0, fmt.Errorf("no API key resolved (api_key or %s)", EnvAPIKey))
	}
	opts := []option.RequestOption{
		option.WithAPIKey(key),
		option.WithMaxRetries(0),
	}
	if base := l.cfg.Anthropic.BaseURL; base != "" {
		opts = append(opts, option.WithBaseURL(base))
	}
	if hc := l.cfg.HTTPClient(); hc != nil {
		opts = append(opts, option.WithHTTPClient(hc))
	}
	client := anthropic.NewClient(opts...)
	return &client, nil
}

func (l *LLM) convertRequest(req llm.GenerateRequest) anthropic.MessageNewParams {
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(l.model),
		MaxTokens:   int64(l.cfg.MaxTokens),
		Temperature: anthropic.Float(l.cfg.Temperature),
		TopP:        anthropic.Float(l.cfg.TopP),
	}

	for _, msg := range req.Messages {
		switch msg.Role {
		case llm.RoleSystem:
			params.System = append(params.System, anthropic.TextBlockParam{Text: msg.Content})
		case llm.RoleAssistant:
			params.Messages = append(params.Messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
		default:
			params.Messages = append(params.Messages, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		}
	}

	if req.HasTools() {
		params.Tools = lo.Map(req.Tools, func(tool llm.Tool, _ int) anthropic.ToolUnionParam {
			toolParam := anthropic.ToolParam{
				Name:        tool.Function.Name,
				InputSchema: inputSchema(tool.Function.Parameters),
			}
			if tool.Function.Description != "" {
				toolParam.Description = anthropic.String(tool.Function.Description)
			}
			return anthropic.ToolUnionParam{OfTool: &toolParam}
		})
		params.ToolChoice = toolChoice(req.EffectiveToolChoice())
	}

	return params
}

// inputSchema splits a JSON schema object into the SDK's schema fields.
// Keys other than type, properties and required are kept as extra fields.
func inputSchema(schema any) anthropic.ToolInputSchemaParam {
	result := anthropic.ToolInputSchemaParam{Properties: map[string]any{}}

	m, ok := schema.(map[string]any)
	if !ok {
		return result
	}
	if props, ok := m["properties"]; ok {
		result.Properties = props
	}
	switch req := m["required"].(type) {
	case []string:
		result.Required = req
	case []any:
		result.Required = lo.FilterMap(req, func(item any, _ int) (string, bool) {
			s, ok := item.(string)
			return s, ok
		})
	}
	extra := lo.OmitByKeys(m, []string{"type", "properties", "required"})
	if len(extra) > 0 {
		result.ExtraFields = extra
	}
	return result
}

func toolChoice(choice string) anthropic.ToolChoiceUnionParam {
	switch choice {
	case llm.ToolChoiceRequired:
		return anthropic.ToolChoiceUnionParam{OfAny: &anthropic.ToolChoiceAnyParam{}}
	case llm.ToolChoiceNone:
		return anthropic.ToolChoiceUnionParam{OfNone: &anthropic.ToolChoiceNoneParam{}}
	default:
		return anthropic.ToolChoiceUnionParam{OfAuto: &anthropic.ToolChoiceAutoParam{}}
	}
}

func convertError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return llm.NewProviderError(ProviderName, apiErr.StatusCode, err)
	}
	return llm.NewProviderError(ProviderName, 0, err)
}
