package ollama

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inercia/go-memllm/internal/vendortest"
	"github.com/inercia/go-memllm/pkg/config"
	"github.com/inercia/go-memllm/pkg/llm"
)

func chatReply(content string, calls ...map[string]any) map[string]any {
	msg := map[string]any{"role": "assistant", "content": content}
	if len(calls) > 0 {
		msg["tool_calls"] = calls
	}
	return map[string]any{"model": "test", "message": msg, "done": true}
}

func newTestLLM(t *testing.T, srv *vendortest.Server) *LLM {
	t.Helper()
	cfg, err := config.NewLlmConfig(config.LlmConfig{Ollama: config.OllamaConfig{BaseURL: srv.URL}})
	require.NoError(t, err)
	l, err := NewLLM(cfg)
	require.NoError(t, err)
	return l
}

func TestOllamaChat(t *testing.T) {
	t.Parallel()

	srv := vendortest.New(t, vendortest.Reply(http.StatusOK, chatReply(`{"facts":["likes tea"]}`)))
	l := newTestLLM(t, srv)
	assert.Equal(t, DefaultModel, l.Model())

	resp, err := l.GenerateResponse(context.Background(), llm.GenerateRequest{
		Messages:       []llm.Message{llm.NewTextMessage(llm.RoleUser, "I like tea")},
		ResponseFormat: llm.NewJSONResponseFormat(),
	})
	require.NoError(t, err)
	assert.Equal(t, `{"facts":["likes tea"]}`, resp.Text())

	req := srv.Last()
	assert.Equal(t, "/api/chat", req.Path)
	assert.Equal(t, DefaultModel, req.Body["model"])
	assert.Equal(t, false, req.Body["stream"])
	assert.Equal(t, "json", req.Body["format"])

	options := req.Body["options"].(map[string]any)
	assert.EqualValues(t, config.DefaultMaxTokens, options["num_predict"])
	assert.InDelta(t, config.DefaultTemperature, options["temperature"], 1e-9)
	assert.NotContains(t, req.Body, "tools")
}

func TestOllamaToolCalls(t *testing.T) {
	t.Parallel()

	srv := vendortest.New(t, vendortest.Reply(http.StatusOK, chatReply("",
		map[string]any{"function": map[string]any{"name": "add_memory", "arguments": map[string]any{"data": "likes tea"}}},
	)))
	l := newTestLLM(t, srv)

	resp, err := l.GenerateResponse(context.Background(), llm.GenerateRequest{
		Messages: []llm.Message{llm.NewTextMessage(llm.RoleUser, "I like tea")},
		Tools: []llm.Tool{llm.NewFunctionTool("add_memory", "Add a memory", map[string]any{
			"type":       "object",
			"properties": map[string]any{"data": map[string]any{"type": "string", "description": "fact"}},
			"required":   []string{"data"},
		})},
	})
	require.NoError(t, err)
	require.Len(t, resp.ToolCalls, 1)
	assert.Equal(t, "add_memory", resp.ToolCalls[0].Name)
	assert.Equal(t, map[string]any{"data": "likes tea"}, resp.ToolCalls[0].Arguments)

	tools := srv.Last().Body["tools"].([]any)
	require.Len(t, tools, 1)
	fn := tools[0].(map[string]any)["function"].(map[string]any)
	assert.Equal(t, "add_memory", fn["name"])
	params := fn["parameters"].(map[string]any)
	assert.Equal(t, []any{"data"}, params["required"])
	assert.Contains(t, params["properties"], "data")
}

func TestOllamaJSONSchemaFormat(t *testing.T) {
	t.Parallel()

	srv := vendortest.New(t, vendortest.Reply(http.StatusOK, chatReply("{}")))
	l := newTestLLM(t, srv)

	schema := map[string]any{"type": "object", "properties": map[string]any{"facts": map[string]any{"type": "array"}}}
	_, err := l.GenerateResponse(context.Background(), llm.GenerateRequest{
		Messages:       []llm.Message{llm.NewTextMessage(llm.RoleUser, "hi")},
		ResponseFormat: llm.NewJSONSchemaResponseFormat("facts", "", schema),
	})
	require.NoError(t, err)
	assert.Equal(t, schema["type"], srv.Last().Body["format"].(map[string]any)["type"])
}

func TestOllamaServerError(t *testing.T) {
	t.Parallel()

	srv := vendortest.New(t, vendortest.Reply(http.StatusInternalServerError, map[string]any{"error": "model crashed"}))
	l := newTestLLM(t, srv)

	_, err := l.GenerateResponse(context.Background(), llm.GenerateRequest{
		Messages: []llm.Message{llm.NewTextMessage(llm.RoleUser, "hi")},
	})
	require.Error(t, err)
	assert.True(t, llm.IsProviderError(err))
}

func TestResolveHost(t *testing.T) {
	t.Setenv(EnvHost, "gpu-box:11434")

	u, err := resolveHost("")
	require.NoError(t, err)
	assert.Equal(t, "http://gpu-box:11434", u.String())

	u, err = resolveHost("https://ollama.internal")
	require.NoError(t, err)
	assert.Equal(t, "https://ollama.internal", u.String())

	t.Setenv(EnvHost, "")
	u, err = resolveHost("")
	require.NoError(t, err)
	assert.Equal(t, DefaultHost, u.String())
}

func TestOllamaEmbedder(t *testing.T) {
	t.Parallel()

	srv := vendortest.New(t, vendortest.Reply(http.StatusOK, map[string]any{
		"model":      DefaultEmbeddingModel,
		"embeddings": [][]float32{{0.5, 0.25}},
	}))
	cfg, err := config.NewEmbedderConfig(config.EmbedderConfig{Ollama: config.OllamaConfig{BaseURL: srv.URL}})
	require.NoError(t, err)
	e, err := NewEmbedder(cfg)
	require.NoError(t, err)
	assert.Equal(t, DefaultEmbeddingModel, e.Model())
	assert.Equal(t, DefaultEmbeddingDims, cfg.EmbeddingDims)

	vec, err := e.Embed(context.Background(), "tea", llm.MemoryActionAdd)
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, 0.25}, vec)

	req := srv.Last()
	assert.Equal(t, "/api/embed", req.Path)
	assert.Equal(t, "tea", req.Body["input"])
}
