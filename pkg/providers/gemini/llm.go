package gemini

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"google.golang.org/genai"

	"github.com/inercia/go-memllm/pkg/config"
	"github.com/inercia/go-memllm/pkg/llm"
)

const (
	ProviderName       = "gemini"
	VertexProviderName = "vertexai"

	DefaultModel = "gemini-2.0-flash"
)

// API key environment variables, in lookup order.
var apiKeyEnv = []string{"GOOGLE_API_KEY", "GEMINI_API_KEY"}

// LLM implements llm.LLM for the Gemini API.
type LLM struct {
	cfg      *config.LlmConfig
	model    string
	logger   zerolog.Logger
	repairer llm.JSONRepairer
}

// NewLLM creates the Gemini adapter. An empty cfg.Model is set to
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

// Model returns the Gemini model name.
func (l *LLM) Model() string {
	return l.model
}

// GenerateResponse performs one generateContent call.
func (l *LLM) GenerateResponse(ctx context.Context, req llm.GenerateRequest) (*llm.Response, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	client, err := newAPIKeyClient(ctx, l.cfg.APIKeyOrEnv(apiKeyEnv...), l.cfg.Gemini.BaseURL, l.cfg.HTTPClient())
	if err != nil {
		return nil, err
	}

	contents, genConfig := l.convertRequest(req)

	start := time.Now()
	resp, err := client.Models.GenerateContent(ctx, l.model, contents, genConfig)
	l.logger.Debug().
		Str("model", l.model).
		Int("tools", len(req.Tools)).
		Dur("duration", time.Since(start)).
		Err(err).
		Msg("generate content")
	if err != nil {
		return nil, convertError(ProviderName, err)
	}

	return l.convertResponse(resp, req.HasTools())
}

// convertRequest splits system turns into the system instruction and maps
// the remaining roles onto user and model.
func (l *LLM) convertRequest(req llm.GenerateRequest) ([]*genai.Content, *genai.GenerateContentConfig) {
	genConfig := &genai.GenerateContentConfig{}

	var system []string
	var contents []*genai.Content
	for _, msg := range req.Messages {
		switch msg.Role {
		case llm.RoleSystem:
			system = append(system, msg.Content)
		case llm.RoleAssistant:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleUser))
		}
	}
	if len(system) > 0 {
		genConfig.SystemInstruction = genai.NewContentFromText(strings.Join(system, "\n"), genai.RoleUser)
	}

	if !llm.IsReasoningModel(l.model) {
		genConfig.Temperature = genai.Ptr(float32(l.cfg.Temperature))
		genConfig.TopP = genai.Ptr(float32(l.cfg.TopP))
		genConfig.MaxOutputTokens = int32(l.cfg.MaxTokens)
	}

	if req.ResponseFormat.WantsJSON() {
		genConfig.ResponseMIMEType = "application/json"
		if rf := req.ResponseFormat; rf.Type == llm.ResponseFormatJSONSchema && rf.JSONSchema != nil {
			genConfig.ResponseJsonSchema = rf.JSONSchema.Schema
		}
	}

	if req.HasTools() {
		genConfig.Tools = []*genai.Tool{{
			FunctionDeclarations: lo.Map(req.Tools, func(tool llm.Tool, _ int) *genai.FunctionDeclaration {
				return &genai.FunctionDeclaration{
					Name:                 tool.Function.Name,
					Description:          tool.Function.Description,
					ParametersJsonSchema: tool.Function.Parameters,
				}
			}),
		}}
		genConfig.ToolConfig = &genai.ToolConfig{
			FunctionCallingConfig: &genai.FunctionCallingConfig{Mode: toolChoiceMode(req.EffectiveToolChoice())},
		}
	}

	return contents, genConfig
}

func toolChoiceMode(choice string) genai.FunctionCallingConfigMode {
	switch choice {
	case llm.ToolChoiceRequired:
		return genai.FunctionCallingConfigModeAny
	case llm.ToolChoiceNone:
		return genai.FunctionCallingConfigModeNone
	default:
		return genai.FunctionCallingConfigModeAuto
	}
}

func (l *LLM) convertResponse(resp *genai.GenerateContentResponse, toolsRequested bool) (*llm.Response, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, llm.NewProviderError(ProviderName, 0, errors.New("response contained no candidates"))
	}

	var text strings.Builder
	var calls []llm.RawToolCall
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.FunctionCall != nil {
			call, err := llm.RawToolCallFromValue(part.FunctionCall.Name, part.FunctionCall.Args)
			if err != nil {
				return nil, err
			}
			calls = append(calls, call)
			continue
		}
		if part.Text != "" && !part.Thought {
			text.WriteString(part.Text)
		}
	}

	return llm.NormalizeResponse(text.String(), calls, toolsRequested, l.repairer)
}
