// Adapter capabilities
package llm

import "context"

// LLM is implemented by every generation adapter.
type LLM interface {
	// GenerateResponse issues exactly one vendor call for the request and
	// returns the normalized result.
	GenerateResponse(ctx context.Context, req GenerateRequest) (*Response, error)

	// Model returns the effective model (or deployment) name.
	Model() string
}

// Embedder is implemented by every embedding adapter.
type Embedder interface {
	// Embed returns the embedding vector for text. The action tells vendors
	// that distinguish embedding intent why the vector is being requested.
	Embed(ctx context.Context, text string, action MemoryAction) ([]float32, error)

	// Model returns the effective embedding model name.
	Model() string
}

// MemoryAction is the calling context of an embedding request.
type MemoryAction string

const (
	MemoryActionNone   MemoryAction = ""
	MemoryActionAdd    MemoryAction = "add"
	MemoryActionUpdate MemoryAction = "update"
	MemoryActionSearch MemoryAction = "search"
)

// Valid reports whether a is one of the known actions (or none).
func (a MemoryAction) Valid() bool {
	switch a {
	case MemoryActionNone, MemoryActionAdd, MemoryActionUpdate, MemoryActionSearch:
		return true
	}
	return false
}
