package llm

import (
	"encoding/json"
	"fmt"

	"github.com/swaggest/jsonschema-go"
)

// SchemaFromStruct generates a JSON Schema from a Go struct using the swaggest/jsonschema-go library
//
// Example:
//
//	type Fact struct {
//	    Text     string `json:"text" required:"true" description:"The fact to remember"`
//	    Priority int    `json:"priority" minimum:"0" maximum:"10"`
//	}
//	schema, err := SchemaFromStruct(Fact{})
func SchemaFromStruct(structType any) (map[string]any, error) {
	reflector := jsonschema.Reflector{}

	schema, err := reflector.Reflect(structType)
	if err != nil {
		return nil, fmt.Errorf("failed to reflect struct to JSON schema: %w", err)
	}

	// Convert to JSON and back to get a map[string]any
	jsonBytes, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema to JSON: %w", err)
	}

	var schemaMap map[string]any
	if err := json.Unmarshal(jsonBytes, &schemaMap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema JSON to map: %w", err)
	}

	return schemaMap, nil
}

// NewFunctionToolFromStruct creates a function tool whose parameters schema
// is reflected from a Go struct
func NewFunctionToolFromStruct(name, description string, params any) (Tool, error) {
	schema, err := SchemaFromStruct(params)
	if err != nil {
		return Tool{}, fmt.Errorf("tool %s: %w", name, err)
	}
	return NewFunctionTool(name, description, schema), nil
}

// NewJSONSchemaResponseFormatFromStruct creates a ResponseFormat with JSON Schema generated from a Go struct
func NewJSONSchemaResponseFormatFromStruct(name, description string, structType any) (*ResponseFormat, error) {
	schema, err := SchemaFromStruct(structType)
	if err != nil {
		return nil, fmt.Errorf("failed to generate schema from struct: %w", err)
	}

	return NewJSONSchemaResponseFormat(name, description, schema), nil
}
