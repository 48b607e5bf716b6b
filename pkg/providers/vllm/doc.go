// Package vllm provides the generation adapter for a vLLM server's
// OpenAI-compatible API.
package vllm
