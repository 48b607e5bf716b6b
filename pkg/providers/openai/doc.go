// Package openai provides the OpenAI adapters and the shared OpenAI-wire
// layer used by every OpenAI-compatible backend.
//
// ChatLLM speaks the chat completions protocol through go-openai. Each
// backend (OpenAI itself, Azure OpenAI, LM Studio, vLLM) supplies an
// Endpoint that builds the client configuration for a call; the request
// mapping, the reasoning-model policy and the response normalization are
// shared. Embedder does the same for the embeddings endpoint.
//
// Usage:
//
//	cfg, _ := config.NewLlmConfig(config.LlmConfig{Model: "gpt-4o-mini"})
//	client, err := openai.NewLLM(cfg, llm.WithLogger(logger))
//	resp, err := client.GenerateResponse(ctx, llm.GenerateRequest{
//	    Messages: []llm.Message{llm.NewTextMessage(llm.RoleUser, "Hello")},
//	})
package openai
