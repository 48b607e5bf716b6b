package ollama

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/ollama/ollama/api"

	"github.com/inercia/go-memllm/pkg/config"
	"github.com/inercia/go-memllm/pkg/llm"
)

const (
	ProviderName = "ollama"

	DefaultHost = "http://localhost:11434"
	EnvHost     = "OLLAMA_HOST"
)

// resolveHost picks the configured address, then OLLAMA_HOST, then the
// default, adding a scheme when the value has none.
func resolveHost(configured string) (*url.URL, error) {
	host := config.FirstNonEmpty(configured, os.Getenv(EnvHost), DefaultHost)
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}
	if err := config.ValidateURL("ollama base url", host); err != nil {
		return nil, err
	}
	return url.Parse(host)
}

func newClient(base *url.URL, httpClient *http.Client) *api.Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return api.NewClient(base, httpClient)
}

// convertError keeps the status of server replies.
func convertError(err error) error {
	var statusErr api.StatusError
	if errors.As(err, &statusErr) {
		return llm.NewProviderError(ProviderName, statusErr.StatusCode, err)
	}
	return llm.NewProviderError(ProviderName, 0, err)
}

// toolParameters converts a JSON schema into the typed parameters of the
// Ollama API by way of its JSON encoding.
func toolParameters(name string, schema any) (api.ToolFunctionParameters, error) {
	var params api.ToolFunctionParameters
	if schema == nil {
		params.Type = "object"
		return params, nil
	}
	data, err := json.Marshal(schema)
	if err != nil {
		return params, llm.NewValidationError("invalid_tool_schema", "tool %s: %v", name, err)
	}
	if err := json.Unmarshal(data, &params); err != nil {
		return params, llm.NewValidationError("invalid_tool_schema", "tool %s: %v", name, err)
	}
	return params, nil
}
