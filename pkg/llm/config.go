// Response format specifications
package llm

// ResponseFormat specifies the desired response format for structured outputs
type ResponseFormat struct {
	Type       ResponseFormatType `json:"type" yaml:"type"`
	JSONSchema *JSONSchema        `json:"json_schema,omitempty" yaml:"json_schema,omitempty"`
}

// ResponseFormatType defines the type of response format
type ResponseFormatType string

const (
	// ResponseFormatText indicates plain text response (default)
	ResponseFormatText ResponseFormatType = "text"
	// ResponseFormatJSON indicates JSON object response without strict schema
	ResponseFormatJSON ResponseFormatType = "json_object"
	// ResponseFormatJSONSchema indicates JSON response with strict schema validation
	ResponseFormatJSONSchema ResponseFormatType = "json_schema"
)

// JSONSchema represents a JSON Schema specification for structured outputs
type JSONSchema struct {
	Name        string `json:"name,omitempty" yaml:"name,omitempty"`               // Schema name (required by some providers)
	Description string `json:"description,omitempty" yaml:"description,omitempty"` // Human-readable description
	Schema      any    `json:"schema" yaml:"schema"`                               // The actual JSON Schema object
	Strict      *bool  `json:"strict,omitempty" yaml:"strict,omitempty"`           // Enable strict validation (OpenAI-specific)
}

// NewJSONResponseFormat creates a ResponseFormat for basic JSON object output (no schema)
func NewJSONResponseFormat() *ResponseFormat {
	return &ResponseFormat{Type: ResponseFormatJSON}
}

// NewJSONSchemaResponseFormat creates a ResponseFormat with JSON Schema
func NewJSONSchemaResponseFormat(name, description string, schema any) *ResponseFormat {
	return &ResponseFormat{
		Type: ResponseFormatJSONSchema,
		JSONSchema: &JSONSchema{
			Name:        name,
			Description: description,
			Schema:      schema,
		},
	}
}

// NewJSONSchemaResponseFormatStrict creates a ResponseFormat with strict JSON Schema validation
func NewJSONSchemaResponseFormatStrict(name, description string, schema any) *ResponseFormat {
	rf := NewJSONSchemaResponseFormat(name, description, schema)
	strict := true
	rf.JSONSchema.Strict = &strict
	return rf
}

// WantsJSON reports whether the format asks for JSON output of any kind.
func (f *ResponseFormat) WantsJSON() bool {
	return f != nil && (f.Type == ResponseFormatJSON || f.Type == ResponseFormatJSONSchema)
}
