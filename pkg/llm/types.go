// Core request and response types
package llm

// MessageRole defines the role of a message sender
type MessageRole string

const (
	RoleSystem    MessageRole = "system"
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleTool      MessageRole = "tool"
)

// Message is a single conversation turn
type Message struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content"`
}

// NewTextMessage creates a new Message
func NewTextMessage(role MessageRole, text string) Message {
	return Message{Role: role, Content: text}
}

// GenerateRequest is a provider-agnostic generation request.
// Messages are in conversation order; the last one is the active turn.
type GenerateRequest struct {
	Messages       []Message       `json:"messages"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
	Tools          []Tool          `json:"tools,omitempty"`
	ToolChoice     string          `json:"tool_choice,omitempty"`
}

// HasTools reports whether any tools were supplied.
func (r GenerateRequest) HasTools() bool {
	return len(r.Tools) > 0
}

// EffectiveToolChoice returns the tool choice policy, defaulting to "auto".
func (r GenerateRequest) EffectiveToolChoice() string {
	if r.ToolChoice == "" {
		return ToolChoiceAuto
	}
	return r.ToolChoice
}

// Validate checks the request preconditions shared by all adapters.
func (r GenerateRequest) Validate() error {
	if len(r.Messages) == 0 {
		return NewValidationError("empty_messages", "at least one message is required")
	}
	return nil
}

// CloneMessages returns a copy of the request messages, so adapters can
// rewrite turns without touching the caller's slice.
func (r GenerateRequest) CloneMessages() []Message {
	out := make([]Message, len(r.Messages))
	copy(out, r.Messages)
	return out
}

// Response is the normalized result of a generation call.
//
// When no tools were requested only Content is meaningful. When tools were
// requested ToolsRequested is true and ToolCalls is never nil, holding the
// calls in the order the vendor reported them.
type Response struct {
	Content        string     `json:"content"`
	ToolCalls      []ToolCall `json:"tool_calls,omitempty"`
	ToolsRequested bool       `json:"-"`
}

// Text returns the textual content of the response.
func (r *Response) Text() string {
	if r == nil {
		return ""
	}
	return r.Content
}

// HasToolCalls reports whether the model asked for at least one tool call.
func (r *Response) HasToolCalls() bool {
	return r != nil && len(r.ToolCalls) > 0
}
