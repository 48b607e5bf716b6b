package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genai"

	"github.com/inercia/go-memllm/pkg/llm"
)

// newAPIKeyClient builds a Gemini API client for one call. Keys may be lazy,
// so a missing key surfaces here as a provider error.
func newAPIKeyClient(ctx context.Context, apiKey, baseURL string, httpClient *http.Client) (*genai.Client, error) {
	if apiKey == "" {
		return nil, llm.NewProviderError(ProviderName, 0,
			errors.New("no API key resolved (api_key, GOOGLE_API_KEY or GEMINI_API_KEY)"))
	}
	cc := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	cc.HTTPOptions.BaseURL = baseURL
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, llm.NewProviderError(ProviderName, 0, fmt.Errorf("creating gemini client: %w", err))
	}
	return client, nil
}

// convertError wraps genai failures, keeping the HTTP status of API errors.
func convertError(provider string, err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return llm.NewProviderError(provider, apiErr.Code, err)
	}
	return llm.NewProviderError(provider, 0, err)
}
