package bedrock

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/inercia/go-memllm/pkg/config"
	"github.com/inercia/go-memllm/pkg/llm"
)

const (
	DefaultModel = "anthropic.claude-3-5-sonnet-20240620-v1:0"

	anthropicVersion = "bedrock-2023-05-31"
)

// Model families with a generation body.
const (
	familyAnthropic = "anthropic"
	familyAmazon    = "amazon"
	familyMeta      = "meta"
	familyMistral   = "mistral"
)

// LLM implements llm.LLM for Bedrock text models.
type LLM struct {
	cfg      *config.LlmConfig
	model    string
	family   string
	invoker  invoker
	repairer llm.JSONRepairer
}

// NewLLM creates the Bedrock adapter. An empty cfg.Model is set to
// DefaultModel; models outside the supported families are rejected.
func NewLLM(cfg *config.LlmConfig, opts ...llm.Option) (*LLM, error) {
	cfg, err := config.EnsureLlmConfig(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	family := modelFamily(cfg.Model)
	switch family {
	case familyAnthropic, familyAmazon, familyMeta, familyMistral:
	default:
		return nil, llm.NewConfigurationError("unsupported_model", "bedrock model %q has no supported request format", cfg.Model)
	}

	o := llm.ApplyOptions(opts...)
	return &LLM{
		cfg:      cfg,
		model:    cfg.Model,
		family:   family,
		invoker:  newInvoker(cfg.AWS, cfg.HTTPClient(), o.ComponentLogger(ProviderName, "llm")),
		repairer: o.Repairer,
	}, nil
}

// Model returns the Bedrock model ID.
func (l *LLM) Model() string {
	return l.model
}

// GenerateResponse performs one InvokeModel call.
func (l *LLM) GenerateResponse(ctx context.Context, req llm.GenerateRequest) (*llm.Response, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.HasTools() && l.family != familyAnthropic {
		return nil, llm.NewValidationError("tools_unsupported", "bedrock model %s does not support tools", l.model)
	}

	body, err := l.buildBody(req)
	if err != nil {
		return nil, err
	}
	out, err := l.invoker.invoke(ctx, l.model, body)
	if err != nil {
		return nil, err
	}

	content, calls, err := l.parseBody(out)
	if err != nil {
		return nil, llm.NewProviderError(ProviderName, 0, fmt.Errorf("decoding %s response: %w", l.family, err))
	}
	return llm.NormalizeResponse(content, calls, req.HasTools(), l.repairer)
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicTool struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	InputSchema any    `json:"input_schema"`
}

type anthropicRequest struct {
	AnthropicVersion string             `json:"anthropic_version"`
	MaxTokens        int                `json:"max_tokens"`
	Temperature      *float64           `json:"temperature,omitempty"`
	TopP             *float64           `json:"top_p,omitempty"`
	System           string             `json:"system,omitempty"`
	Messages         []anthropicMessage `json:"messages"`
	Tools            []anthropicTool    `json:"tools,omitempty"`
	ToolChoice       map[string]string  `json:"tool_choice,omitempty"`
}

type anthropicResponse struct {
	Content []struct {
		Type  string         `json:"type"`
		Text  string         `json:"text"`
		Name  string         `json:"name"`
		Input map[string]any `json:"input"`
	} `json:"content"`
}

func (l *LLM) buildBody(req llm.GenerateRequest) ([]byte, error) {
	temperature, topP, maxTokens := l.cfg.Temperature, l.cfg.TopP, l.cfg.MaxTokens

	switch l.family {
	case familyAnthropic:
		return json.Marshal(l.anthropicBody(req))
	case familyAmazon:
		return json.Marshal(map[string]any{
			"inputText": formatPrompt(req.Messages, "User", "Bot"),
			"textGenerationConfig": map[string]any{
				"maxTokenCount": maxTokens,
				"temperature":   temperature,
				"topP":          topP,
			},
		})
	case familyMeta:
		return json.Marshal(map[string]any{
			"prompt":      formatPrompt(req.Messages, "Human", "Assistant"),
			"max_gen_len": maxTokens,
			"temperature": temperature,
			"top_p":       topP,
		})
	default:
		return json.Marshal(map[string]any{
			"prompt":      "<s>[INST] " + formatPrompt(req.Messages, "Human", "Assistant") + " [/INST]",
			"max_tokens":  maxTokens,
			"temperature": temperature,
			"top_p":       topP,
		})
	}
}

func (l *LLM) anthropicBody(req llm.GenerateRequest) anthropicRequest {
	body := anthropicRequest{
		AnthropicVersion: anthropicVersion,
		MaxTokens:        l.cfg.MaxTokens,
		Temperature:      lo.ToPtr(l.cfg.Temperature),
		TopP:             lo.ToPtr(l.cfg.TopP),
	}

	var system []string
	for _, msg := range req.Messages {
		switch msg.Role {
		case llm.RoleSystem:
			system = append(system, msg.Content)
		case llm.RoleAssistant:
			body.Messages = append(body.Messages, anthropicMessage{Role: "assistant", Content: msg.Content})
		default:
			body.Messages = append(body.Messages, anthropicMessage{Role: "user", Content: msg.Content})
		}
	}
	body.System = strings.Join(system, "\n")

	if req.HasTools() {
		body.Tools = lo.Map(req.Tools, func(tool llm.Tool, _ int) anthropicTool {
			schema := tool.Function.Parameters
			if schema == nil {
				schema = map[string]any{"type": "object", "properties": map[string]any{}}
			}
			return anthropicTool{Name: tool.Function.Name, Description: tool.Function.Description, InputSchema: schema}
		})
		body.ToolChoice = map[string]string{"type": anthropicToolChoice(req.EffectiveToolChoice())}
	}
	return body
}

func anthropicToolChoice(choice string) string {
	switch choice {
	case llm.ToolChoiceRequired:
		return "any"
	case llm.ToolChoiceNone:
		return "none"
	default:
		return "auto"
	}
}

func (l *LLM) parseBody(body []byte) (string, []llm.RawToolCall, error) {
	switch l.family {
	case familyAnthropic:
		var resp anthropicResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return "", nil, err
		}
		var text strings.Builder
		var calls []llm.RawToolCall
		for _, block := range resp.Content {
			switch block.Type {
			case "text":
				text.WriteString(block.Text)
			case "tool_use":
				call, err := llm.RawToolCallFromValue(block.Name, block.Input)
				if err != nil {
					return "", nil, err
				}
				calls = append(calls, call)
			}
		}
		return text.String(), calls, nil

	case familyAmazon:
		var resp struct {
			Results []struct {
				OutputText string `json:"outputText"`
			} `json:"results"`
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			return "", nil, err
		}
		if len(resp.Results) == 0 {
			return "", nil, nil
		}
		return resp.Results[0].OutputText, nil, nil

	case familyMeta:
		var resp struct {
			Generation string `json:"generation"`
		}
		err := json.Unmarshal(body, &resp)
		return resp.Generation, nil, err

	default:
		var resp struct {
			Outputs []struct {
				Text string `json:"text"`
			} `json:"outputs"`
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			return "", nil, err
		}
		if len(resp.Outputs) == 0 {
			return "", nil, nil
		}
		return resp.Outputs[0].Text, nil, nil
	}
}

// formatPrompt flattens a conversation for completion-style models and
// leaves the assistant turn open.
func formatPrompt(messages []llm.Message, userLabel, assistantLabel string) string {
	var prompt strings.Builder
	for _, msg := range messages {
		switch msg.Role {
		case llm.RoleSystem:
			prompt.WriteString(msg.Content + "\n\n")
		case llm.RoleAssistant:
			prompt.WriteString(assistantLabel + ": " + msg.Content + "\n")
		default:
			prompt.WriteString(userLabel + ": " + msg.Content + "\n")
		}
	}
	prompt.WriteString(assistantLabel + ":")
	return prompt.String()
}
