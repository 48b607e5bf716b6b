// Package huggingface provides an embedder for a Hugging Face
// text-embeddings-inference (TEI) server through its OpenAI-compatible
// embeddings route.
package huggingface
