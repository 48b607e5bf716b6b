package llm

import "strings"

// reasoningModels reject sampling controls (temperature, max_tokens, top_p).
// Matching is exact.
var reasoningModels = map[string]struct{}{
	"o1":         {},
	"o1-preview": {},
	"o3-mini":    {},
}

// IsReasoningModel reports whether model only accepts model and messages.
func IsReasoningModel(model string) bool {
	_, ok := reasoningModels[model]
	return ok
}

// ReplaceInLastMessage returns a copy of messages where every occurrence of
// old in the last message content is replaced by new. Earlier turns are
// left untouched.
func ReplaceInLastMessage(messages []Message, old, new string) []Message {
	out := make([]Message, len(messages))
	copy(out, messages)
	if n := len(out); n > 0 {
		out[n-1].Content = strings.ReplaceAll(out[n-1].Content, old, new)
	}
	return out
}
