// Package deepseek provides the DeepSeek generation adapter.
//
// The adapter uses the deepseek-go SDK. The API key is read from the
// configuration or DEEPSEEK_API_KEY and the base URL from the deepseek
// block or DEEPSEEK_API_BASE. A client is built for every call.
//
// Usage:
//
//	cfg, _ := config.NewLlmConfig(config.LlmConfig{Model: "deepseek-chat"})
//	client, err := deepseek.NewLLM(cfg)
package deepseek
