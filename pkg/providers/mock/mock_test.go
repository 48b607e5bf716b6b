package mock

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inercia/go-memllm/pkg/config"
	"github.com/inercia/go-memllm/pkg/llm"
)

func userRequest(text string) llm.GenerateRequest {
	return llm.GenerateRequest{Messages: []llm.Message{llm.NewTextMessage(llm.RoleUser, text)}}
}

func TestLLMScriptedReplies(t *testing.T) {
	t.Parallel()

	m, err := NewLLM(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, m.Model())

	m.WithReply("first").WithReply("second")

	resp, err := m.GenerateResponse(context.Background(), userRequest("a"))
	require.NoError(t, err)
	assert.Equal(t, "first", resp.Text())
	assert.False(t, resp.ToolsRequested)

	resp, err = m.GenerateResponse(context.Background(), userRequest("b"))
	require.NoError(t, err)
	assert.Equal(t, "second", resp.Text())

	resp, err = m.GenerateResponse(context.Background(), userRequest("fallback"))
	require.NoError(t, err)
	assert.Equal(t, "mock response to: fallback", resp.Text())

	assert.Len(t, m.Calls(), 3)
	assert.True(t, m.LastMessageContains("fallback"))
}

func TestLLMToolCalls(t *testing.T) {
	t.Parallel()

	m, err := NewLLM(nil)
	require.NoError(t, err)
	m.WithToolCall("add_memory", map[string]any{"data": "likes tea"})

	req := userRequest("I like tea")
	req.Tools = []llm.Tool{llm.NewFunctionTool("add_memory", "", nil)}

	resp, err := m.GenerateResponse(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, resp.ToolsRequested)
	require.Len(t, resp.ToolCalls, 1)
	assert.Equal(t, map[string]any{"data": "likes tea"}, resp.ToolCalls[0].Arguments)
}

func TestLLMMalformedArgumentsFail(t *testing.T) {
	t.Parallel()

	m, err := NewLLM(nil, llm.WithJSONRepairer(llm.RepairFunc(func(s string) string { return s })))
	require.NoError(t, err)
	m.WithRawReply(Reply{ToolCalls: []llm.RawToolCall{{Name: "broken", Arguments: "{not json"}}})

	req := userRequest("x")
	req.Tools = []llm.Tool{llm.NewFunctionTool("broken", "", nil)}

	_, err = m.GenerateResponse(context.Background(), req)
	require.Error(t, err)
	assert.True(t, llm.IsResponseParsingError(err))
}

func TestLLMErrorsComeFirst(t *testing.T) {
	t.Parallel()

	m, err := NewLLM(nil)
	require.NoError(t, err)
	m.WithReply("after").WithProviderError(503, "overloaded")

	_, err = m.GenerateResponse(context.Background(), userRequest("x"))
	require.Error(t, err)
	assert.True(t, llm.IsProviderError(err))

	resp, err := m.GenerateResponse(context.Background(), userRequest("x"))
	require.NoError(t, err)
	assert.Equal(t, "after", resp.Text())
}

func TestLLMLatencyHonoursContext(t *testing.T) {
	t.Parallel()

	m, err := NewLLM(nil)
	require.NoError(t, err)
	m.WithLatency(time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err = m.GenerateResponse(ctx, userRequest("x"))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLLMReset(t *testing.T) {
	t.Parallel()

	m, err := NewLLM(nil)
	require.NoError(t, err)
	m.WithReply("queued")
	_, err = m.GenerateResponse(context.Background(), userRequest("x"))
	require.NoError(t, err)

	m.WithReply("dropped").Reset()
	assert.Empty(t, m.Calls())
	assert.Nil(t, m.LastCall())

	resp, err := m.GenerateResponse(context.Background(), userRequest("y"))
	require.NoError(t, err)
	assert.Equal(t, "mock response to: y", resp.Text())
}

func TestLLMConcurrentUse(t *testing.T) {
	t.Parallel()

	m, err := NewLLM(nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.GenerateResponse(context.Background(), userRequest("hi"))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Len(t, m.Calls(), 20)
}

func TestEmbedderDeterministic(t *testing.T) {
	t.Parallel()

	cfg, err := config.NewEmbedderConfig(config.EmbedderConfig{EmbeddingDims: 16})
	require.NoError(t, err)
	e, err := NewEmbedder(cfg)
	require.NoError(t, err)
	assert.Equal(t, DefaultEmbeddingModel, e.Model())

	a, err := e.Embed(context.Background(), "likes tea", llm.MemoryActionAdd)
	require.NoError(t, err)
	b, err := e.Embed(context.Background(), "likes tea", llm.MemoryActionSearch)
	require.NoError(t, err)
	c, err := e.Embed(context.Background(), "likes coffee", llm.MemoryActionSearch)
	require.NoError(t, err)

	assert.Len(t, a, 16)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)

	var norm float64
	for _, v := range a {
		norm += float64(v) * float64(v)
	}
	assert.InDelta(t, 1, math.Sqrt(norm), 1e-5)

	calls := e.Calls()
	require.Len(t, calls, 3)
	assert.Equal(t, llm.MemoryActionAdd, calls[0].Action)
}

func TestEmbedderError(t *testing.T) {
	t.Parallel()

	e, err := NewEmbedder(nil)
	require.NoError(t, err)
	boom := errors.New("boom")
	e.WithError(boom)

	_, err = e.Embed(context.Background(), "x", llm.MemoryActionNone)
	assert.ErrorIs(t, err, boom)
}
