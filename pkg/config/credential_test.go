package config

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/inercia/go-memllm/pkg/llm"
)

func TestAPIKeyResolve(t *testing.T) {
	t.Parallel()

	t.Run("absent", func(t *testing.T) {
		t.Parallel()
		var k APIKey
		v, ok := k.Resolve()
		assert.False(t, ok)
		assert.Empty(t, v)
		assert.False(t, k.IsSet())
	})

	t.Run("literal_is_stable", func(t *testing.T) {
		t.Parallel()
		k := Literal("sk-abc")
		for i := 0; i < 3; i++ {
			v, ok := k.Resolve()
			require.True(t, ok)
			assert.Equal(t, "sk-abc", v)
		}
		assert.False(t, k.IsLazy())
	})

	t.Run("lazy_is_invoked_on_every_read", func(t *testing.T) {
		t.Parallel()
		var calls atomic.Int32
		k := Lazy(func() string {
			n := calls.Add(1)
			return fmt.Sprintf("key-%d", n)
		})

		first, ok := k.Resolve()
		require.True(t, ok)
		second, _ := k.Resolve()

		assert.Equal(t, "key-1", first)
		assert.Equal(t, "key-2", second)
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("nil_lazy_is_absent", func(t *testing.T) {
		t.Parallel()
		_, ok := Lazy(nil).Resolve()
		assert.False(t, ok)
	})
}

func TestAPIKeyFromEnv(t *testing.T) {
	t.Setenv("MEMLLM_TEST_KEY", "first")
	k := FromEnv("MEMLLM_TEST_KEY")

	v, ok := k.Resolve()
	require.True(t, ok)
	assert.Equal(t, "first", v)

	t.Setenv("MEMLLM_TEST_KEY", "rotated")
	v, _ = k.Resolve()
	assert.Equal(t, "rotated", v)
}

func TestAPIKeyNeverPrintsSecret(t *testing.T) {
	t.Parallel()

	k := Literal("sk-very-secret")
	assert.NotContains(t, k.String(), "sk-very-secret")
	assert.NotContains(t, fmt.Sprintf("%v %+v %#v", k, k, k), "sk-very-secret")

	out, err := yaml.Marshal(struct {
		Key APIKey `yaml:"api_key,omitempty"`
	}{Key: k})
	require.NoError(t, err)
	assert.NotContains(t, string(out), "sk-very-secret")
	assert.Contains(t, string(out), redacted)
}

func TestAPIKeyYAML(t *testing.T) {
	t.Parallel()

	type holder struct {
		Key APIKey `yaml:"api_key"`
	}

	t.Run("scalar", func(t *testing.T) {
		t.Parallel()
		var h holder
		require.NoError(t, yaml.Unmarshal([]byte("api_key: sk-123\n"), &h))
		v, ok := h.Key.Resolve()
		require.True(t, ok)
		assert.Equal(t, "sk-123", v)
	})

	t.Run("env_reference", func(t *testing.T) {
		t.Parallel()
		var h holder
		require.NoError(t, yaml.Unmarshal([]byte("api_key:\n  env: SOME_VAR\n"), &h))
		assert.True(t, h.Key.IsLazy())
		assert.Equal(t, "$SOME_VAR", h.Key.String())

		out, err := yaml.Marshal(h)
		require.NoError(t, err)
		assert.Contains(t, string(out), "env: SOME_VAR")
	})

	t.Run("unknown_mapping_key", func(t *testing.T) {
		t.Parallel()
		var h holder
		err := yaml.Unmarshal([]byte("api_key:\n  file: /tmp/key\n"), &h)
		require.Error(t, err)
		assert.True(t, llm.IsConfigurationError(err))
	})

	t.Run("sequence_rejected", func(t *testing.T) {
		t.Parallel()
		var h holder
		err := yaml.Unmarshal([]byte("api_key: [a, b]\n"), &h)
		require.Error(t, err)
		assert.True(t, llm.IsConfigurationError(err))
	})
}
