// Package azureopenai provides Azure OpenAI generation and embedding
// adapters.
//
// Deployment, endpoint and API version come from the azure block of the
// configuration, falling back to environment variables. The endpoint is
// required and checked when the adapter is built. The API key is resolved
// and a new client is built on every call, so a rotated key takes effect
// without rebuilding the adapter.
//
// Before sending, the generation adapter replaces every "assistant" in the
// content of the last message with "ai".
package azureopenai
