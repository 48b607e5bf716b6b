package openai

import (
	"encoding/json"
	"errors"
	"math"

	"github.com/samber/lo"
	"github.com/sashabaranov/go-openai"

	"github.com/inercia/go-memllm/pkg/config"
	"github.com/inercia/go-memllm/pkg/llm"
)

// BuildChatRequest maps a generation request onto the chat completions wire
// format.
//
// Reasoning models get only the model and the messages. Every other model
// carries temperature, max_tokens and top_p from cfg. Tools and tool_choice
// are sent only when tools were supplied.
func BuildChatRequest(model string, cfg *config.LlmConfig, messages []llm.Message, req llm.GenerateRequest) (openai.ChatCompletionRequest, error) {
	chatReq := openai.ChatCompletionRequest{
		Model:    model,
		Messages: convertMessages(messages),
	}

	if !llm.IsReasoningModel(model) {
		chatReq.Temperature = samplingParam(cfg.Temperature)
		chatReq.MaxTokens = cfg.MaxTokens
		chatReq.TopP = samplingParam(cfg.TopP)
	}

	if req.ResponseFormat != nil {
		rf, err := convertResponseFormat(req.ResponseFormat)
		if err != nil {
			return openai.ChatCompletionRequest{}, err
		}
		chatReq.ResponseFormat = rf
	}

	if req.HasTools() {
		chatReq.Tools = lo.Map(req.Tools, func(tool llm.Tool, _ int) openai.Tool {
			return convertTool(tool)
		})
		chatReq.ToolChoice = req.EffectiveToolChoice()
	}

	return chatReq, nil
}

// samplingParam converts a sampling value for go-openai, which omits zero
// floats from the request body. An explicit zero is sent as the smallest
// positive float32 so it still reaches the vendor.
func samplingParam(v float64) float32 {
	if v == 0 {
		return math.SmallestNonzeroFloat32
	}
	return float32(v)
}

func convertMessages(messages []llm.Message) []openai.ChatCompletionMessage {
	return lo.Map(messages, func(msg llm.Message, _ int) openai.ChatCompletionMessage {
		return openai.ChatCompletionMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		}
	})
}

func convertTool(tool llm.Tool) openai.Tool {
	typ := tool.Type
	if typ == "" {
		typ = llm.ToolTypeFunction
	}
	return openai.Tool{
		Type: openai.ToolType(typ),
		Function: &openai.FunctionDefinition{
			Name:        tool.Function.Name,
			Description: tool.Function.Description,
			Parameters:  parametersOrEmpty(tool.Function.Parameters),
		},
	}
}

// parametersOrEmpty returns an empty object schema for tools without
// parameters; the API rejects a null schema.
func parametersOrEmpty(params any) any {
	if params == nil {
		return map[string]any{"type": "object", "properties": map[string]any{}}
	}
	return params
}

func convertResponseFormat(rf *llm.ResponseFormat) (*openai.ChatCompletionResponseFormat, error) {
	switch rf.Type {
	case llm.ResponseFormatJSON:
		return &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}, nil
	case llm.ResponseFormatJSONSchema:
		if rf.JSONSchema == nil {
			return nil, llm.NewValidationError("invalid_response_format", "json_schema response format requires a schema")
		}
		schema, err := json.Marshal(rf.JSONSchema.Schema)
		if err != nil {
			return nil, llm.NewValidationError("invalid_response_format", "encoding response schema: %v", err)
		}
		js := &openai.ChatCompletionResponseFormatJSONSchema{
			Name:        rf.JSONSchema.Name,
			Description: rf.JSONSchema.Description,
			Schema:      json.RawMessage(schema),
		}
		if rf.JSONSchema.Strict != nil {
			js.Strict = *rf.JSONSchema.Strict
		}
		return &openai.ChatCompletionResponseFormat{
			Type:       openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: js,
		}, nil
	default:
		return &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeText,
		}, nil
	}
}

// ParseChatResponse normalizes the first choice of a chat completion.
func ParseChatResponse(provider string, resp openai.ChatCompletionResponse, toolsRequested bool, repairer llm.JSONRepairer) (*llm.Response, error) {
	if len(resp.Choices) == 0 {
		return nil, llm.NewProviderError(provider, 0, errors.New("response contained no choices"))
	}
	msg := resp.Choices[0].Message
	calls := lo.Map(msg.ToolCalls, func(tc openai.ToolCall, _ int) llm.RawToolCall {
		return llm.RawToolCall{Name: tc.Function.Name, Arguments: tc.Function.Arguments}
	})
	return llm.NormalizeResponse(msg.Content, calls, toolsRequested, repairer)
}

// ConvertError wraps a go-openai error, keeping the HTTP status when the
// SDK reports one.
func ConvertError(provider string, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return llm.NewProviderError(provider, apiErr.HTTPStatusCode, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return llm.NewProviderError(provider, reqErr.HTTPStatusCode, err)
	}
	return llm.NewProviderError(provider, 0, err)
}
