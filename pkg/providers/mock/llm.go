package mock

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/inercia/go-memllm/pkg/config"
	"github.com/inercia/go-memllm/pkg/llm"
)

const (
	ProviderName = "mock"

	DefaultModel = "mock-model"
)

// Reply is one scripted vendor answer.
type Reply struct {
	Content   string
	ToolCalls []llm.RawToolCall
}

// LLM implements llm.LLM from a script. Safe for concurrent use.
type LLM struct {
	model    string
	logger   zerolog.Logger
	repairer llm.JSONRepairer

	mu      sync.Mutex
	replies []Reply
	errors  []error
	calls   []llm.GenerateRequest
	latency time.Duration
}

// NewLLM creates a mock adapter. An empty cfg.Model is set to DefaultModel.
func NewLLM(cfg *config.LlmConfig, opts ...llm.Option) (*LLM, error) {
	cfg, err := config.EnsureLlmConfig(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	o := llm.ApplyOptions(opts...)
	return &LLM{
		model:    cfg.Model,
		logger:   o.ComponentLogger(ProviderName, "llm"),
		repairer: o.Repairer,
	}, nil
}

// Model returns the configured model name.
func (m *LLM) Model() string {
	return m.model
}

// GenerateResponse logs the request and returns the next queued error or
// reply. Queued errors are returned before queued replies. With nothing
// queued, the last user message is echoed back.
func (m *LLM) GenerateResponse(ctx context.Context, req llm.GenerateRequest) (*llm.Response, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.calls = append(m.calls, req)
	latency := m.latency
	var reply Reply
	var replyErr error
	switch {
	case len(m.errors) > 0:
		replyErr, m.errors = m.errors[0], m.errors[1:]
	case len(m.replies) > 0:
		reply, m.replies = m.replies[0], m.replies[1:]
	default:
		reply = Reply{Content: echo(req.Messages)}
	}
	m.mu.Unlock()

	if latency > 0 {
		select {
		case <-time.After(latency):
		case <-ctx.Done():
			return nil, llm.NewProviderError(ProviderName, 0, ctx.Err())
		}
	}

	m.logger.Debug().
		Str("model", m.model).
		Int("tools", len(req.Tools)).
		Err(replyErr).
		Msg("scripted reply")
	if replyErr != nil {
		return nil, replyErr
	}
	return llm.NormalizeResponse(reply.Content, reply.ToolCalls, req.HasTools(), m.repairer)
}

func echo(messages []llm.Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == llm.RoleUser {
			return "mock response to: " + messages[i].Content
		}
	}
	return "mock response"
}

// WithReply queues a plain text reply.
func (m *LLM) WithReply(content string) *LLM {
	return m.WithRawReply(Reply{Content: content})
}

// WithToolCall queues a reply holding one tool call with the given
// arguments.
func (m *LLM) WithToolCall(name string, args map[string]any) *LLM {
	data, err := json.Marshal(args)
	if err != nil {
		panic(fmt.Sprintf("mock: encoding arguments for %s: %v", name, err))
	}
	return m.WithRawReply(Reply{ToolCalls: []llm.RawToolCall{{Name: name, Arguments: string(data)}}})
}

// WithRawReply queues a reply exactly as a vendor would report it, which
// allows scripting malformed tool arguments.
func (m *LLM) WithRawReply(reply Reply) *LLM {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies = append(m.replies, reply)
	return m
}

// WithError queues an error.
func (m *LLM) WithError(err error) *LLM {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, err)
	return m
}

// WithProviderError queues a provider error with the given HTTP status.
func (m *LLM) WithProviderError(status int, message string) *LLM {
	return m.WithError(llm.NewProviderError(ProviderName, status, fmt.Errorf("%s", message)))
}

// WithLatency delays every reply. The delay is cut short when the context
// is done.
func (m *LLM) WithLatency(d time.Duration) *LLM {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latency = d
	return m
}

// Calls returns a copy of the logged requests.
func (m *LLM) Calls() []llm.GenerateRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]llm.GenerateRequest, len(m.calls))
	copy(out, m.calls)
	return out
}

// LastCall returns the most recent request, or nil.
func (m *LLM) LastCall() *llm.GenerateRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return nil
	}
	last := m.calls[len(m.calls)-1]
	return &last
}

// LastMessageContains reports whether the last message of the most recent
// request contains text.
func (m *LLM) LastMessageContains(text string) bool {
	call := m.LastCall()
	if call == nil || len(call.Messages) == 0 {
		return false
	}
	return strings.Contains(call.Messages[len(call.Messages)-1].Content, text)
}

// Reset drops queued replies, errors and the call log.
func (m *LLM) Reset() *LLM {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies = nil
	m.errors = nil
	m.calls = nil
	return m
}
