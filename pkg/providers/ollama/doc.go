// Package ollama provides generation and embedding adapters for a local
// Ollama server, using the ollama/api client.
//
// The server address comes from the ollama block of the configuration,
// then OLLAMA_HOST, then http://localhost:11434. Ollama needs no API key.
package ollama
