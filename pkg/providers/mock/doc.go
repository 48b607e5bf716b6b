// Package mock provides scripted LLM and embedding adapters for testing code
// built on this module.
//
// LLM replays queued replies and errors in order, logs every request and
// runs each reply through the same normalization as the real adapters, so
// malformed tool arguments fail the way they would against a vendor.
// Embedder returns deterministic vectors derived from the input text.
package mock
