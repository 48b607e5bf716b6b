package llm

import (
	"regexp"
	"strings"
)

// JSONRepairer salvages malformed JSON text produced by a model.
type JSONRepairer interface {
	ExtractJSON(text string) string
}

// RepairFunc adapts a plain function to the JSONRepairer interface.
type RepairFunc func(text string) string

// ExtractJSON implements JSONRepairer.
func (f RepairFunc) ExtractJSON(text string) string {
	return f(text)
}

// DefaultRepairer is used by adapters unless WithJSONRepairer is given.
var DefaultRepairer JSONRepairer = RepairFunc(ExtractJSON)

var fencedBlock = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

// ExtractJSON pulls the JSON payload out of model output: it unwraps a
// markdown code fence, drops prose around the first object or array, and
// closes strings, objects and arrays left open by a truncated reply.
func ExtractJSON(text string) string {
	if m := fencedBlock.FindStringSubmatch(text); m != nil {
		text = m[1]
	}
	text = strings.TrimSpace(text)

	start := strings.IndexAny(text, "{[")
	if start < 0 {
		return text
	}

	var (
		stack    []byte
		inString bool
		escaped  bool
	)
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			stack = append(stack, '}')
		case '[':
			stack = append(stack, ']')
		case '}', ']':
			if len(stack) == 0 || stack[len(stack)-1] != c {
				return text[start:i]
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return text[start : i+1]
			}
		}
	}

	var b strings.Builder
	b.WriteString(text[start:])
	if inString {
		if escaped {
			b.WriteByte('\\')
		}
		b.WriteByte('"')
	}
	out := strings.TrimRight(b.String(), " \t\r\n,")
	b.Reset()
	b.WriteString(out)
	for i := len(stack) - 1; i >= 0; i-- {
		b.WriteByte(stack[i])
	}
	return b.String()
}
