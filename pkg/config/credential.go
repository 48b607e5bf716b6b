package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/inercia/go-memllm/pkg/llm"
)

const redacted = "[redacted]"

// APIKey is a credential that is either a literal string or a function
// evaluated each time the key is read. The zero value means no key.
type APIKey struct {
	literal string
	lazy    func() string
	env     string
	set     bool
}

// Literal returns a credential that always resolves to key.
func Literal(key string) APIKey {
	return APIKey{literal: key, set: true}
}

// Lazy returns a credential resolved by calling fn on every read.
// A nil fn yields an absent credential.
func Lazy(fn func() string) APIKey {
	return APIKey{lazy: fn, set: fn != nil}
}

// FromEnv returns a credential that reads the named environment variable
// on every read.
func FromEnv(name string) APIKey {
	return APIKey{
		lazy: func() string { return os.Getenv(name) },
		env:  name,
		set:  true,
	}
}

// IsSet reports whether a credential was configured.
func (k APIKey) IsSet() bool {
	return k.set
}

// IsZero reports whether no credential was configured.
func (k APIKey) IsZero() bool {
	return !k.set
}

// IsLazy reports whether the credential is evaluated on each read.
func (k APIKey) IsLazy() bool {
	return k.lazy != nil
}

// Resolve returns the current secret. Lazy credentials are invoked on every
// call and the result is never cached.
func (k APIKey) Resolve() (string, bool) {
	if !k.set {
		return "", false
	}
	if k.lazy != nil {
		return k.lazy(), true
	}
	return k.literal, true
}

// String never reveals the secret.
func (k APIKey) String() string {
	if !k.IsSet() {
		return ""
	}
	if k.env != "" {
		return "$" + k.env
	}
	return redacted
}

// GoString keeps %#v from printing the secret.
func (k APIKey) GoString() string {
	return "config.APIKey(" + k.String() + ")"
}

// MarshalYAML writes environment references back as {env: NAME} and every
// other credential as a redacted placeholder.
func (k APIKey) MarshalYAML() (any, error) {
	switch {
	case k.env != "":
		return map[string]string{"env": k.env}, nil
	case k.IsSet():
		return redacted, nil
	}
	return nil, nil
}

// UnmarshalYAML accepts a plain scalar (a literal key) or a mapping with a
// single "env" entry naming the variable to read.
func (k *APIKey) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Tag == "!!null" {
			*k = APIKey{}
			return nil
		}
		*k = Literal(value.Value)
		return nil
	case yaml.MappingNode:
		var name string
		for i := 0; i+1 < len(value.Content); i += 2 {
			key, val := value.Content[i], value.Content[i+1]
			if key.Value != "env" {
				return llm.NewConfigurationError("invalid_api_key",
					"line %d: unknown api_key field %q (only \"env\" is allowed)", key.Line, key.Value)
			}
			if err := val.Decode(&name); err != nil {
				return llm.NewConfigurationError("invalid_api_key", "line %d: api_key env: %v", val.Line, err)
			}
		}
		if name == "" {
			return llm.NewConfigurationError("invalid_api_key", "line %d: api_key env name is empty", value.Line)
		}
		*k = FromEnv(name)
		return nil
	}
	return llm.NewConfigurationError("invalid_api_key",
		"line %d: api_key must be a string or {env: NAME}", value.Line)
}
