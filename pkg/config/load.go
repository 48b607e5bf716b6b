package config

import (
	"bytes"
	"errors"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/inercia/go-memllm/pkg/llm"
)

// ParseLlmConfig decodes a YAML document over the defaults. Unknown fields
// are rejected, including those inside vendor blocks. Fields absent from the
// document keep their defaults, and explicit zeros are kept.
func ParseLlmConfig(data []byte) (*LlmConfig, error) {
	cfg := DefaultLlmConfig()
	if err := decodeStrict(data, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.init(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadLlmConfig reads and parses a YAML configuration file.
func LoadLlmConfig(path string) (*LlmConfig, error) {
	data, err := readConfigFile(path)
	if err != nil {
		return nil, err
	}
	return ParseLlmConfig(data)
}

// ParseEmbedderConfig decodes a YAML document over the embedder defaults.
func ParseEmbedderConfig(data []byte) (*EmbedderConfig, error) {
	cfg := DefaultEmbedderConfig()
	if err := decodeStrict(data, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.init(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadEmbedderConfig reads and parses a YAML embedder configuration file.
func LoadEmbedderConfig(path string) (*EmbedderConfig, error) {
	data, err := readConfigFile(path)
	if err != nil {
		return nil, err
	}
	return ParseEmbedderConfig(data)
}

func decodeStrict(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	err := dec.Decode(out)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	if llm.IsConfigurationError(err) {
		return err
	}
	cerr := llm.NewConfigurationError("invalid_config", "decoding configuration: %v", err)
	cerr.Err = err
	return cerr
}

func readConfigFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- path is supplied by the caller
	if err != nil {
		cerr := llm.NewConfigurationError("read_failed", "reading config file %q: %v", path, err)
		cerr.Err = err
		return nil, cerr
	}
	return data, nil
}
