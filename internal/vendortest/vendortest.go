// Package vendortest provides a recording HTTP server that stands in for a
// vendor API in adapter tests.
package vendortest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// Request is a request received by the fake vendor.
type Request struct {
	Method string
	Host   string
	Path   string
	Query  string
	Header http.Header
	Raw    []byte
	// Body is the decoded JSON object, or nil when the body is not one.
	Body map[string]any
}

// Responder writes the reply for a recorded request.
type Responder func(w http.ResponseWriter, r Request)

// Server records every request and answers with a Responder.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	requests []Request
}

// New starts a server closed automatically when the test ends.
func New(t testing.TB, respond Responder) *Server {
	t.Helper()

	s := &Server{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		rec := Request{
			Method: r.Method,
			Host:   r.Host,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Header: r.Header.Clone(),
			Raw:    raw,
		}
		var body map[string]any
		if json.Unmarshal(raw, &body) == nil {
			rec.Body = body
		}

		s.mu.Lock()
		s.requests = append(s.requests, rec)
		s.mu.Unlock()

		respond(w, rec)
	}))
	t.Cleanup(s.Close)
	return s
}

// Requests returns a copy of the recorded requests.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// Last returns the most recent request, or a zero Request.
func (s *Server) Last() Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return Request{}
	}
	return s.requests[len(s.requests)-1]
}

// JSON writes v as a JSON response with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Reply returns a Responder that always writes v with the given status.
func Reply(status int, v any) Responder {
	return func(w http.ResponseWriter, _ Request) {
		JSON(w, status, v)
	}
}

// ChatCompletion builds an OpenAI-style chat completion body with one
// choice. Each tool call is a name/arguments pair.
func ChatCompletion(content string, toolCalls ...[2]string) map[string]any {
	calls := make([]map[string]any, 0, len(toolCalls))
	for i, tc := range toolCalls {
		calls = append(calls, map[string]any{
			"id":   "call_" + string(rune('a'+i)),
			"type": "function",
			"function": map[string]any{
				"name":      tc[0],
				"arguments": tc[1],
			},
		})
	}
	msg := map[string]any{"role": "assistant", "content": content}
	if len(calls) > 0 {
		msg["tool_calls"] = calls
	}
	return map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"model":   "test-model",
		"choices": []any{map[string]any{"index": 0, "message": msg, "finish_reason": "stop"}},
	}
}

// OpenAIError builds an OpenAI-style error body.
func OpenAIError(message, typ string) map[string]any {
	return map[string]any{"error": map[string]any{"message": message, "type": typ}}
}

// Embedding builds an OpenAI-style embeddings body.
func Embedding(vector ...float32) map[string]any {
	return map[string]any{
		"object": "list",
		"data":   []any{map[string]any{"object": "embedding", "index": 0, "embedding": vector}},
		"model":  "test-embedding",
	}
}
