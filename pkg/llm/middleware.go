package llm

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// Middleware observes or rewrites the calls made through an LLM wrapped with
// WithMiddleware.
type Middleware interface {
	// Name identifies the middleware in a chain.
	Name() string

	// ProcessRequest runs before the adapter call and may return a modified
	// request. An error aborts the call.
	ProcessRequest(ctx context.Context, req *GenerateRequest) (*GenerateRequest, error)

	// ProcessResponse runs after the adapter call, in reverse chain order,
	// and returns the response and error handed to the next middleware.
	ProcessResponse(ctx context.Context, req *GenerateRequest, resp *Response, err error) (*Response, error)
}

// MiddlewareChain is an ordered, concurrency-safe list of middleware.
type MiddlewareChain struct {
	mu          sync.RWMutex
	middlewares []Middleware
}

// NewMiddlewareChain creates a chain running middlewares in order.
func NewMiddlewareChain(middlewares ...Middleware) *MiddlewareChain {
	return &MiddlewareChain{middlewares: append([]Middleware(nil), middlewares...)}
}

// Add appends a middleware to the chain.
func (c *MiddlewareChain) Add(middleware Middleware) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.middlewares = append(c.middlewares, middleware)
}

// Remove drops the first middleware called name and reports whether one was
// found.
func (c *MiddlewareChain) Remove(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, middleware := range c.middlewares {
		if middleware.Name() == name {
			c.middlewares = append(c.middlewares[:i], c.middlewares[i+1:]...)
			return true
		}
	}
	return false
}

// Names returns the middleware names in chain order.
func (c *MiddlewareChain) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, len(c.middlewares))
	for i, middleware := range c.middlewares {
		names[i] = middleware.Name()
	}
	return names
}

func (c *MiddlewareChain) snapshot() []Middleware {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Middleware, len(c.middlewares))
	copy(out, c.middlewares)
	return out
}

// ProcessRequest runs the request through the chain in order.
func (c *MiddlewareChain) ProcessRequest(ctx context.Context, req *GenerateRequest) (*GenerateRequest, error) {
	current := req
	for _, middleware := range c.snapshot() {
		next, err := middleware.ProcessRequest(ctx, current)
		if err != nil {
			return nil, fmt.Errorf("middleware %s: %w", middleware.Name(), err)
		}
		if next != nil {
			current = next
		}
	}
	return current, nil
}

// ProcessResponse runs the result through the chain in reverse order.
func (c *MiddlewareChain) ProcessResponse(ctx context.Context, req *GenerateRequest, resp *Response, err error) (*Response, error) {
	middlewares := c.snapshot()
	for i := len(middlewares) - 1; i >= 0; i-- {
		resp, err = middlewares[i].ProcessResponse(ctx, req, resp, err)
	}
	return resp, err
}

// MiddlewareLLM is an LLM whose calls pass through a middleware chain.
type MiddlewareLLM struct {
	next  LLM
	chain *MiddlewareChain
}

// WithMiddleware wraps next with a middleware chain. Wrapping an LLM that
// already is a *MiddlewareLLM appends to its chain.
func WithMiddleware(next LLM, middlewares ...Middleware) *MiddlewareLLM {
	if wrapped, ok := next.(*MiddlewareLLM); ok {
		for _, middleware := range middlewares {
			wrapped.chain.Add(middleware)
		}
		return wrapped
	}
	return &MiddlewareLLM{next: next, chain: NewMiddlewareChain(middlewares...)}
}

// Chain returns the middleware chain, for adding or removing entries.
func (m *MiddlewareLLM) Chain() *MiddlewareChain {
	return m.chain
}

// Model returns the wrapped adapter's model.
func (m *MiddlewareLLM) Model() string {
	return m.next.Model()
}

// GenerateResponse runs the request chain, the wrapped adapter and then the
// response chain.
func (m *MiddlewareLLM) GenerateResponse(ctx context.Context, req GenerateRequest) (*Response, error) {
	processed, err := m.chain.ProcessRequest(ctx, &req)
	if err != nil {
		return nil, err
	}
	resp, err := m.next.GenerateResponse(ctx, *processed)
	return m.chain.ProcessResponse(ctx, processed, resp, err)
}

// LoggingMiddleware logs every call at debug level. Message contents are
// never logged.
type LoggingMiddleware struct {
	logger zerolog.Logger
}

// NewLoggingMiddleware creates a LoggingMiddleware writing to logger.
func NewLoggingMiddleware(logger zerolog.Logger) *LoggingMiddleware {
	return &LoggingMiddleware{logger: logger.With().Str("component", "middleware").Logger()}
}

// Name returns "logging".
func (l *LoggingMiddleware) Name() string {
	return "logging"
}

// ProcessRequest logs the message and tool counts and passes req through
// unchanged.
func (l *LoggingMiddleware) ProcessRequest(_ context.Context, req *GenerateRequest) (*GenerateRequest, error) {
	l.logger.Debug().
		Int("messages", len(req.Messages)).
		Int("tools", len(req.Tools)).
		Bool("json", req.ResponseFormat.WantsJSON()).
		Msg("generate request")
	return req, nil
}

// ProcessResponse logs the outcome, at warn level when err is set, and
// returns resp and err unchanged.
func (l *LoggingMiddleware) ProcessResponse(_ context.Context, _ *GenerateRequest, resp *Response, err error) (*Response, error) {
	level := zerolog.DebugLevel
	if err != nil {
		level = zerolog.WarnLevel
	}
	var calls int
	if resp != nil {
		calls = len(resp.ToolCalls)
	}
	l.logger.WithLevel(level).Int("tool_calls", calls).Err(err).Msg("generate response")
	return resp, err
}
