package config

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inercia/go-memllm/pkg/llm"
)

func TestNewLlmConfigDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := NewLlmConfig(LlmConfig{Model: "gpt-4o", MaxTokens: 500})
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o", cfg.Model)
	assert.Equal(t, 500, cfg.MaxTokens)
	assert.InDelta(t, DefaultTemperature, cfg.Temperature, 1e-9)
	assert.InDelta(t, DefaultTopP, cfg.TopP, 1e-9)
	assert.Equal(t, DefaultTopK, cfg.TopK)
	assert.Equal(t, DefaultVisionDetails, cfg.VisionDetails)
	assert.Nil(t, cfg.HTTPClient())
}

func TestLlmConfigValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  LlmConfig
		code string
	}{
		{name: "temperature_too_high", cfg: LlmConfig{Temperature: 2.5}, code: "invalid_temperature"},
		{name: "top_p_too_high", cfg: LlmConfig{TopP: 1.5}, code: "invalid_top_p"},
		{name: "negative_max_tokens", cfg: LlmConfig{MaxTokens: -1}, code: "invalid_max_tokens"},
		{name: "bad_proxy", cfg: LlmConfig{HTTPClientProxies: ProxyURL("not a url")}, code: "invalid_proxy"},
		{name: "bad_proxy_scheme", cfg: LlmConfig{HTTPClientProxies: ProxyMap(map[string]string{"ftp": "http://p:1"})}, code: "invalid_proxy"},
		{name: "bad_base_url", cfg: LlmConfig{Ollama: OllamaConfig{BaseURL: "localhost"}}, code: "invalid_url"},
		{name: "bad_azure_endpoint", cfg: LlmConfig{Azure: AzureConfig{Endpoint: "::"}}, code: "invalid_url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewLlmConfig(tt.cfg)
			require.Error(t, err)
			assert.True(t, llm.IsConfigurationError(err))

			var e *llm.Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, tt.code, e.Code)
		})
	}
}

func TestLlmConfigGetAPIKeyIsLive(t *testing.T) {
	t.Parallel()

	current := "one"
	cfg, err := NewLlmConfig(LlmConfig{APIKey: Lazy(func() string { return current })})
	require.NoError(t, err)

	v, _ := cfg.GetAPIKey()
	assert.Equal(t, "one", v)

	current = "two"
	v, _ = cfg.GetAPIKey()
	assert.Equal(t, "two", v)
}

func TestAPIKeyOrEnv(t *testing.T) {
	t.Setenv("MEMLLM_PRIMARY", "")
	t.Setenv("MEMLLM_SECONDARY", "from-env")

	cfg, err := NewLlmConfig(LlmConfig{})
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.APIKeyOrEnv("MEMLLM_PRIMARY", "MEMLLM_SECONDARY"))

	cfg.APIKey = Literal("configured")
	assert.Equal(t, "configured", cfg.APIKeyOrEnv("MEMLLM_SECONDARY"))

	// an empty literal falls through to the environment
	cfg.APIKey = Literal("")
	assert.Equal(t, "from-env", cfg.APIKeyOrEnv("MEMLLM_SECONDARY"))
}

func TestSharedHTTPClient(t *testing.T) {
	t.Parallel()

	cfg, err := NewLlmConfig(LlmConfig{
		HTTPClientProxies: ProxyMap(map[string]string{
			"http": "http://proxy.internal:3128",
			"all":  "http://fallback.internal:3128",
		}),
	})
	require.NoError(t, err)

	first := cfg.HTTPClient()
	require.NotNil(t, first)
	assert.Same(t, first, cfg.HTTPClient())

	transport, ok := first.Transport.(*http.Transport)
	require.True(t, ok)

	req, _ := http.NewRequest(http.MethodGet, "http://vendor.example/v1", nil)
	proxy, err := transport.Proxy(req)
	require.NoError(t, err)
	assert.Equal(t, "proxy.internal:3128", proxy.Host)

	req, _ = http.NewRequest(http.MethodGet, "https://vendor.example/v1", nil)
	proxy, err = transport.Proxy(req)
	require.NoError(t, err)
	assert.Equal(t, "fallback.internal:3128", proxy.Host)
}

func TestDefaultHeadersTransport(t *testing.T) {
	t.Parallel()

	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	cfg, err := NewLlmConfig(LlmConfig{
		Azure: AzureConfig{DefaultHeaders: map[string]string{"X-Tenant": "memory"}},
	})
	require.NoError(t, err)
	require.NotNil(t, cfg.HTTPClient())

	resp, err := cfg.HTTPClient().Get(srv.URL)
	require.NoError(t, err)
	_ = resp.Body.Close()

	assert.Equal(t, "memory", got.Get("X-Tenant"))
}

func TestParseLlmConfig(t *testing.T) {
	t.Parallel()

	t.Run("full_document", func(t *testing.T) {
		t.Parallel()
		cfg, err := ParseLlmConfig([]byte(`
model: gpt-4o
api_key:
  env: AZURE_KEY
temperature: 0
max_tokens: 1000
http_client_proxies: http://proxy.internal:8080
azure:
  azure_deployment: memory-gpt4o
  azure_endpoint: https://example.openai.azure.com
  api_version: "2024-10-21"
openrouter:
  models: [openai/gpt-4o, anthropic/claude-3.5-sonnet]
  route: fallback
`))
		require.NoError(t, err)

		assert.Equal(t, "gpt-4o", cfg.Model)
		assert.Zero(t, cfg.Temperature, "explicit zero survives")
		assert.Equal(t, 1000, cfg.MaxTokens)
		assert.InDelta(t, DefaultTopP, cfg.TopP, 1e-9)
		assert.Equal(t, "memory-gpt4o", cfg.Azure.Deployment)
		assert.Equal(t, "2024-10-21", cfg.Azure.APIVersion)
		assert.Equal(t, []string{"openai/gpt-4o", "anthropic/claude-3.5-sonnet"}, cfg.OpenRouter.Models)
		assert.Equal(t, "$AZURE_KEY", cfg.APIKey.String())
		assert.NotNil(t, cfg.HTTPClient())
	})

	t.Run("empty_document_yields_defaults", func(t *testing.T) {
		t.Parallel()
		cfg, err := ParseLlmConfig(nil)
		require.NoError(t, err)
		assert.Equal(t, DefaultMaxTokens, cfg.MaxTokens)
	})

	t.Run("unknown_vendor_field", func(t *testing.T) {
		t.Parallel()
		_, err := ParseLlmConfig([]byte("azure:\n  azure_deploymnet: typo\n"))
		require.Error(t, err)
		assert.True(t, llm.IsConfigurationError(err))
		assert.Contains(t, err.Error(), "azure_deploymnet")
	})

	t.Run("unknown_top_level_field", func(t *testing.T) {
		t.Parallel()
		_, err := ParseLlmConfig([]byte("temprature: 0.3\n"))
		require.Error(t, err)
		assert.True(t, llm.IsConfigurationError(err))
	})

	t.Run("range_checked_after_decode", func(t *testing.T) {
		t.Parallel()
		_, err := ParseLlmConfig([]byte("top_p: 3\n"))
		require.Error(t, err)
		assert.True(t, llm.IsConfigurationError(err))
	})
}

func TestLoadLlmConfig(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "llm.yaml")
	require.NoError(t, os.WriteFile(path, []byte("model: deepseek-chat\n"), 0o600))

	cfg, err := LoadLlmConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "deepseek-chat", cfg.Model)

	_, err = LoadLlmConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, llm.IsConfigurationError(err))
}

func TestEmbedderConfig(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()
		cfg, err := NewEmbedderConfig(EmbedderConfig{})
		require.NoError(t, err)
		assert.Equal(t, DefaultLMStudioEmbedURL, cfg.LMStudio.BaseURL)
		assert.Equal(t, DefaultAWSRegion, cfg.AWS.Region)
		assert.Equal(t, 1536, cfg.Dims(1536))
	})

	t.Run("negative_dims", func(t *testing.T) {
		t.Parallel()
		_, err := NewEmbedderConfig(EmbedderConfig{EmbeddingDims: -3})
		require.Error(t, err)
		assert.True(t, llm.IsConfigurationError(err))
	})

	t.Run("embedding_type_per_action", func(t *testing.T) {
		t.Parallel()
		cfg, err := ParseEmbedderConfig([]byte(`
model: text-embedding-004
embedding_dims: 256
memory_add_embedding_type: RETRIEVAL_DOCUMENT
memory_search_embedding_type: RETRIEVAL_QUERY
vertex:
  credentials_json: /etc/creds.json
`))
		require.NoError(t, err)

		assert.Equal(t, 256, cfg.Dims(768))
		assert.Equal(t, "RETRIEVAL_DOCUMENT", cfg.EmbeddingTypeFor(llm.MemoryActionAdd))
		assert.Empty(t, cfg.EmbeddingTypeFor(llm.MemoryActionUpdate))
		assert.Equal(t, "RETRIEVAL_QUERY", cfg.EmbeddingTypeFor(llm.MemoryActionSearch))
		assert.Empty(t, cfg.EmbeddingTypeFor(llm.MemoryActionNone))
		assert.Equal(t, "/etc/creds.json", cfg.Vertex.CredentialsJSON)
	})

	t.Run("endpoint_overrides", func(t *testing.T) {
		t.Parallel()
		cfg, err := ParseEmbedderConfig([]byte("gemini:\n  base_url: http://gemini.local\nvertex:\n  base_url: http://vertex.local\n"))
		require.NoError(t, err)
		assert.Equal(t, "http://gemini.local", cfg.Gemini.BaseURL)
		assert.Equal(t, "http://vertex.local", cfg.Vertex.BaseURL)

		_, err = ParseEmbedderConfig([]byte("vertex:\n  base_url: aiplatform\n"))
		require.Error(t, err)
		assert.True(t, llm.IsConfigurationError(err))
	})

	t.Run("unknown_field", func(t *testing.T) {
		t.Parallel()
		_, err := ParseEmbedderConfig([]byte("huggingface:\n  url: http://tei:8080\n"))
		require.Error(t, err)
		assert.True(t, llm.IsConfigurationError(err))
	})
}

func TestProxiesYAMLForms(t *testing.T) {
	t.Parallel()

	cfg, err := ParseEmbedderConfig([]byte("http_client_proxies:\n  https: http://secure.proxy:443\n"))
	require.NoError(t, err)
	require.NotNil(t, cfg.HTTPClient())

	transport := cfg.HTTPClient().Transport.(*http.Transport)
	proxy, err := transport.Proxy(&http.Request{URL: &url.URL{Scheme: "https", Host: "api.openai.com"}})
	require.NoError(t, err)
	assert.Equal(t, "secure.proxy:443", proxy.Host)

	proxy, err = transport.Proxy(&http.Request{URL: &url.URL{Scheme: "http", Host: "api.openai.com"}})
	require.NoError(t, err)
	assert.Nil(t, proxy)
}
