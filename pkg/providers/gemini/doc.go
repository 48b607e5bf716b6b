// Package gemini provides the Google generation and embedding adapters
// built on the genai SDK.
//
// NewLLM and NewEmbedder talk to the Gemini API with an API key.
// NewVertexEmbedder talks to Vertex AI with Google credentials, read from
// a service account file when one is configured and from Application
// Default Credentials otherwise.
//
// Embedding task types come from the memory_*_embedding_type settings,
// selected by the memory action passed to Embed.
package gemini
