// Response normalization
package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// NormalizeResponse converts a vendor reply into a Response.
//
// Without tools the content is returned as is. With tools, every reported
// call is kept in order and its argument text parsed with ParseToolArguments;
// the first call whose arguments cannot be parsed fails the whole response.
func NormalizeResponse(content string, calls []RawToolCall, toolsRequested bool, repairer JSONRepairer) (*Response, error) {
	if !toolsRequested {
		return &Response{Content: content}, nil
	}

	resp := &Response{
		Content:        content,
		ToolCalls:      make([]ToolCall, 0, len(calls)),
		ToolsRequested: true,
	}
	for _, call := range calls {
		args, err := ParseToolArguments(call.Name, call.Arguments, repairer)
		if err != nil {
			return nil, err
		}
		resp.ToolCalls = append(resp.ToolCalls, ToolCall{Name: call.Name, Arguments: args})
	}
	return resp, nil
}

// ParseToolArguments parses the raw argument text of a tool call. The text is
// parsed directly first; on failure it goes once through the repairer and is
// parsed again. Blank arguments mean a call without parameters.
func ParseToolArguments(toolName, raw string, repairer JSONRepairer) (map[string]any, error) {
	if strings.TrimSpace(raw) == "" {
		return map[string]any{}, nil
	}

	args, err := decodeObject(raw)
	if err == nil {
		return args, nil
	}

	if repairer == nil {
		return nil, NewResponseParsingError(toolName, err)
	}
	args, repairErr := decodeObject(repairer.ExtractJSON(raw))
	if repairErr != nil {
		return nil, NewResponseParsingError(toolName, errors.Join(err, repairErr))
	}
	return args, nil
}

// RawToolCallFromValue builds a RawToolCall for vendors that report already
// decoded arguments, so they go through the same parsing path.
func RawToolCallFromValue(name string, arguments any) (RawToolCall, error) {
	if arguments == nil {
		return RawToolCall{Name: name}, nil
	}
	data, err := json.Marshal(arguments)
	if err != nil {
		return RawToolCall{}, NewResponseParsingError(name, fmt.Errorf("encoding arguments: %w", err))
	}
	if string(data) == "null" {
		return RawToolCall{Name: name}, nil
	}
	return RawToolCall{Name: name, Arguments: string(data)}, nil
}

func decodeObject(text string) (map[string]any, error) {
	var args map[string]any
	if err := json.Unmarshal([]byte(text), &args); err != nil {
		return nil, err
	}
	if args == nil {
		return nil, errors.New("arguments are null")
	}
	return args, nil
}
