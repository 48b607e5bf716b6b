package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type addMemoryArgs struct {
	Data     string `json:"data" required:"true" description:"The fact to remember"`
	Priority int    `json:"priority,omitempty" minimum:"0" maximum:"10"`
}

type extractedFacts struct {
	Facts []string `json:"facts" required:"true"`
}

func TestSchemaFromStruct(t *testing.T) {
	t.Parallel()

	schema, err := SchemaFromStruct(addMemoryArgs{})
	require.NoError(t, err)

	assert.Equal(t, "object", schema["type"])
	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "data")
	assert.Contains(t, props, "priority")
	assert.Equal(t, []any{"data"}, schema["required"])
}

func TestNewFunctionToolFromStruct(t *testing.T) {
	t.Parallel()

	tool, err := NewFunctionToolFromStruct("add_memory", "Store a new fact", addMemoryArgs{})
	require.NoError(t, err)

	assert.Equal(t, ToolTypeFunction, tool.Type)
	assert.Equal(t, "add_memory", tool.Function.Name)
	assert.NotNil(t, tool.Function.Parameters)
}

func TestNewJSONSchemaResponseFormatFromStruct(t *testing.T) {
	t.Parallel()

	rf, err := NewJSONSchemaResponseFormatFromStruct("facts", "Extracted facts", extractedFacts{})
	require.NoError(t, err)

	assert.Equal(t, ResponseFormatJSONSchema, rf.Type)
	require.NotNil(t, rf.JSONSchema)
	assert.Equal(t, "facts", rf.JSONSchema.Name)
	assert.True(t, rf.WantsJSON())
	assert.False(t, (*ResponseFormat)(nil).WantsJSON())
}
