package vllm

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

func TestVLLMFromEnvironment(t *testing.T) {
	srv := vendortest.New(t, vendortest.Reply(http.StatusOK,
		vendortest.ChatCompletion("", [2]string{"add_memory", `{"data":"likes jazz"}`})))
	t.Setenv(EnvBaseURL, srv.URL+"/v1")
	t.Setenv(EnvAPIKey, "")

	l, err := NewLLM(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, l.Model())

	resp, err := l.GenerateResponse(context.Background(), llm.GenerateRequest{
		Messages: []llm.Message{llm.NewTextMessage(llm.RoleUser, "I like jazz")},
		Tools:    []llm.Tool{llm.NewFunctionTool("add_memory", "", nil)},
	})
	require.NoError(t, err)
	require.Len(t, resp.ToolCalls, 1)
	assert.Equal(t, map[string]any{"data": "likes jazz"}, resp.ToolCalls[0].Arguments)

	req := srv.Last()
	assert.Equal(t, "/v1/chat/completions", req.Path)
	assert.Equal(t, "Bearer "+DefaultAPIKey, req.Header.Get("Authorization"))
	assert.Equal(t, DefaultModel, req.Body["model"])
}

func TestVLLMConfigOverridesEnvironment(t *testing.T) {
	srv := vendortest.New(t, vendortest.Reply(http.StatusOK, vendortest.ChatCompletion("ok")))
	t.Setenv(EnvBaseURL, "http://unused.invalid/v1")
	t.Setenv(EnvAPIKey, "env-key")

	cfg, err := config.NewLlmConfig(config.LlmConfig{
		VLLM: config.VLLMConfig{BaseURL: srv.URL + "/v1"},
	})
	require.NoError(t, err)
	l, err := NewLLM(cfg)
	require.NoError(t, err)

	_, err = l.GenerateResponse(context.Background(), llm.GenerateRequest{
		Messages: []llm.Message{llm.NewTextMessage(llm.RoleUser, "hi")},
	})
	require.NoError(t, err)
	assert.Equal(t, "Bearer env-key", srv.Last().Header.Get("Authorization"))
}

func TestVLLMRejectsBadEnvURL(t *testing.T) {
	t.Setenv(EnvBaseURL, "not a url")

	_, err := NewLLM(nil)
	require.Error(t, err)
	assert.True(t, llm.IsConfigurationError(err))
}
