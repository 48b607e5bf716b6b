package lmstudio

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

func TestLMStudioDefaultsToJSONMode(t *testing.T) {
	t.Setenv(EnvAPIKey, "")

	srv := vendortest.New(t, vendortest.Reply(http.StatusOK, vendortest.ChatCompletion(`{"facts":[]}`)))
	cfg, err := config.NewLlmConfig(config.LlmConfig{
		LMStudio: config.LMStudioConfig{BaseURL: srv.URL + "/v1"},
	})
	require.NoError(t, err)

	l, err := NewLLM(cfg)
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, l.Model())

	resp, err := l.GenerateResponse(context.Background(), llm.GenerateRequest{
		Messages: []llm.Message{llm.NewTextMessage(llm.RoleUser, "Extract facts")},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"facts":[]}`, resp.Text())

	req := srv.Last()
	assert.Equal(t, "/v1/chat/completions", req.Path)
	assert.Equal(t, "Bearer "+DefaultAPIKey, req.Header.Get("Authorization"))
	assert.Equal(t, map[string]any{"type": "json_object"}, req.Body["response_format"])
}

func TestLMStudioConfiguredFormatAndKey(t *testing.T) {
	t.Parallel()

	srv := vendortest.New(t, vendortest.Reply(http.StatusOK, vendortest.ChatCompletion("plain")))
	cfg, err := config.NewLlmConfig(config.LlmConfig{
		Model:  "qwen2.5-7b-instruct",
		APIKey: config.Literal("local-key"),
		LMStudio: config.LMStudioConfig{
			BaseURL:        srv.URL + "/v1",
			ResponseFormat: &llm.ResponseFormat{Type: llm.ResponseFormatText},
		},
	})
	require.NoError(t, err)

	l, err := NewLLM(cfg)
	require.NoError(t, err)

	_, err = l.GenerateResponse(context.Background(), llm.GenerateRequest{
		Messages:       []llm.Message{llm.NewTextMessage(llm.RoleUser, "hi")},
		ResponseFormat: llm.NewJSONResponseFormat(),
	})
	require.NoError(t, err)

	req := srv.Last()
	assert.Equal(t, "Bearer local-key", req.Header.Get("Authorization"))
	assert.Equal(t, "qwen2.5-7b-instruct", req.Body["model"])
	assert.Equal(t, map[string]any{"type": "json_object"}, req.Body["response_format"], "request format wins")
}

func TestLMStudioEmbedder(t *testing.T) {
	t.Parallel()

	srv := vendortest.New(t, vendortest.Reply(http.StatusOK, vendortest.Embedding(0.5, 0.25)))
	cfg, err := config.NewEmbedderConfig(config.EmbedderConfig{
		APIKey:   config.Literal("lm-studio"),
		LMStudio: config.LMStudioEmbedConfig{BaseURL: srv.URL + "/v1"},
	})
	require.NoError(t, err)

	e, err := NewEmbedder(cfg)
	require.NoError(t, err)
	assert.Equal(t, DefaultEmbeddingModel, e.Model())

	vec, err := e.Embed(context.Background(), "line one\nline two", llm.MemoryActionAdd)
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, 0.25}, vec)

	req := srv.Last()
	assert.Equal(t, "/v1/embeddings", req.Path)
	assert.Equal(t, []any{"line one line two"}, req.Body["input"])
	assert.NotContains(t, req.Body, "dimensions")
}
