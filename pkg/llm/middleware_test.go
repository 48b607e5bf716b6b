package llm

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLLM struct {
	model string
	reply *Response
	err   error
	seen  []GenerateRequest
}

func (s *stubLLM) Model() string { return s.model }

func (s *stubLLM) GenerateResponse(_ context.Context, req GenerateRequest) (*Response, error) {
	s.seen = append(s.seen, req)
	return s.reply, s.err
}

// recorder appends its name to a shared trace on every hook.
type recorder struct {
	name  string
	trace *[]string
}

func (r recorder) Name() string { return r.name }

func (r recorder) ProcessRequest(_ context.Context, req *GenerateRequest) (*GenerateRequest, error) {
	*r.trace = append(*r.trace, "req:"+r.name)
	return req, nil
}

func (r recorder) ProcessResponse(_ context.Context, _ *GenerateRequest, resp *Response, err error) (*Response, error) {
	*r.trace = append(*r.trace, "resp:"+r.name)
	return resp, err
}

// systemPrompt prepends a system message to every request.
type systemPrompt string

func (s systemPrompt) Name() string { return "system_prompt" }

func (s systemPrompt) ProcessRequest(_ context.Context, req *GenerateRequest) (*GenerateRequest, error) {
	out := *req
	out.Messages = append([]Message{NewTextMessage(RoleSystem, string(s))}, req.CloneMessages()...)
	return &out, nil
}

func (s systemPrompt) ProcessResponse(_ context.Context, _ *GenerateRequest, resp *Response, err error) (*Response, error) {
	return resp, err
}

func TestMiddlewareOrder(t *testing.T) {
	t.Parallel()

	var trace []string
	stub := &stubLLM{model: "stub", reply: &Response{Content: "ok"}}
	wrapped := WithMiddleware(stub, recorder{"a", &trace}, recorder{"b", &trace})

	resp, err := wrapped.GenerateResponse(context.Background(), GenerateRequest{
		Messages: []Message{NewTextMessage(RoleUser, "hi")},
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Text())
	assert.Equal(t, "stub", wrapped.Model())
	assert.Equal(t, []string{"req:a", "req:b", "resp:b", "resp:a"}, trace)
}

func TestMiddlewareRewritesRequest(t *testing.T) {
	t.Parallel()

	stub := &stubLLM{reply: &Response{}}
	messages := []Message{NewTextMessage(RoleUser, "hi")}
	wrapped := WithMiddleware(stub, systemPrompt("be brief"))

	_, err := wrapped.GenerateResponse(context.Background(), GenerateRequest{Messages: messages})
	require.NoError(t, err)

	require.Len(t, stub.seen, 1)
	require.Len(t, stub.seen[0].Messages, 2)
	assert.Equal(t, RoleSystem, stub.seen[0].Messages[0].Role)
	assert.Len(t, messages, 1, "caller slice is untouched")
}

func TestMiddlewareChainEditing(t *testing.T) {
	t.Parallel()

	var trace []string
	stub := &stubLLM{}
	wrapped := WithMiddleware(stub, recorder{"a", &trace})
	again := WithMiddleware(wrapped, recorder{"b", &trace})
	assert.Same(t, wrapped, again)
	assert.Equal(t, []string{"a", "b"}, wrapped.Chain().Names())

	assert.True(t, wrapped.Chain().Remove("a"))
	assert.False(t, wrapped.Chain().Remove("a"))
	assert.Equal(t, []string{"b"}, wrapped.Chain().Names())
}

func TestLoggingMiddleware(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)
	boom := NewProviderError("stub", 500, errors.New("boom"))
	stub := &stubLLM{err: boom}

	wrapped := WithMiddleware(stub, NewLoggingMiddleware(logger))
	_, err := wrapped.GenerateResponse(context.Background(), GenerateRequest{
		Messages: []Message{NewTextMessage(RoleUser, "secret text")},
	})
	require.ErrorIs(t, err, boom)

	out := buf.String()
	assert.Contains(t, out, `"message":"generate request"`)
	assert.Contains(t, out, `"level":"warn"`)
	assert.NotContains(t, out, "secret text")
}
