// Package factory builds LLM and embedding adapters from a provider name.
//
// Every adapter package in this module is registered on import of this
// package, so callers only need:
//
//	cfg, err := config.LoadLlmConfig("llm.yaml")
//	if err != nil {
//	    return err
//	}
//	model, err := factory.New(llm.WithLogger(logger)).CreateLLM("openai", cfg)
//
// Additional adapters can be plugged in with RegisterLLM and
// RegisterEmbedder.
package factory
