// Package llm defines the provider-agnostic contract shared by every
// generation and embedding adapter in go-memllm.
//
// The package contains:
//
// - LLM and Embedder interfaces: the two capabilities an adapter offers
// - Request and response types: messages, tools, response formats
// - Response normalization: turning vendor tool-call payloads into ToolCall values
// - JSON repair: the default collaborator used when tool arguments are malformed
// - Error taxonomy: configuration, provider and response parsing errors
// - Retry and middleware: opt-in decorators wrapped around an LLM
//
// Adapter implementations live under /pkg/providers/ and are created through
// /pkg/factory, keeping vendor SDKs out of this package.
package llm
