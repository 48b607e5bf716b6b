// Package lmstudio provides LLM and embedding adapters for a local LM Studio
// server. LM Studio speaks the OpenAI wire protocol, so both adapters are
// thin configurations of the openai package.
package lmstudio
