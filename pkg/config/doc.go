// Package config holds the provider-agnostic configuration model.
//
// An LlmConfig or EmbedderConfig carries the common sampling knobs plus one
// value block per vendor. Adapters read only the block that concerns them.
// Secrets are stored as an APIKey, which may be a literal or a function
// evaluated on every read, so rotated credentials are picked up without
// rebuilding the adapter.
//
// Configurations can be built in code with NewLlmConfig/NewEmbedderConfig or
// decoded from YAML with ParseLlmConfig/LoadLlmConfig. YAML decoding is
// strict: an unknown field anywhere fails with a configuration error.
package config
