// Opt-in retry decorator with exponential backoff.
//
// Adapters never retry on their own: each GenerateResponse or Embed call
// issues exactly one vendor request. Callers that own a retry policy wrap an
// adapter explicitly:
//
//	adapter, _ := factory.CreateLLM("azure_openai", cfg)
//	resilient := llm.WithRetry(adapter, llm.RetryConfig{
//		MaxRetries:         5,
//		BaseDelay:          2 * time.Second,
//		RetryOnStatusCodes: []int{429},
//	})
package llm

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryConfig defines configuration options for the retry decorator.
type RetryConfig struct {
	// MaxRetries is the maximum number of retry attempts (default: 3).
	// Total requests = MaxRetries + 1.
	MaxRetries int

	// BaseDelay is the initial delay between retries (default: 1 second).
	BaseDelay time.Duration

	// MaxDelay caps the delay between retries (default: 60 seconds).
	MaxDelay time.Duration

	// BackoffFactor multiplies the delay after each retry (default: 2.0).
	BackoffFactor float64

	// Jitter randomizes delays by +/-50% to avoid thundering herds.
	Jitter bool

	// RetryOnStatusCodes lists the vendor HTTP statuses that trigger a retry.
	// If empty, 429 and 5xx are retried.
	RetryOnStatusCodes []int
}

// DefaultRetryConfig returns a sensible default retry configuration
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:    3,
		BaseDelay:     1 * time.Second,
		MaxDelay:      60 * time.Second,
		BackoffFactor: 2.0,
		Jitter:        true,
	}
}

func (c RetryConfig) withDefaults() RetryConfig {
	def := DefaultRetryConfig()
	if c.MaxRetries <= 0 {
		c.MaxRetries = def.MaxRetries
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = def.BaseDelay
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = def.MaxDelay
	}
	if c.BackoffFactor <= 0 {
		c.BackoffFactor = def.BackoffFactor
	}
	return c
}

func (c RetryConfig) backOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.BaseDelay
	b.MaxInterval = c.MaxDelay
	b.Multiplier = c.BackoffFactor
	b.MaxElapsedTime = 0
	if !c.Jitter {
		b.RandomizationFactor = 0
	}
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(c.MaxRetries)), ctx)
}

// retryable reports whether err is a provider error worth retrying.
// Configuration and parsing errors are never retried.
func (c RetryConfig) retryable(err error) bool {
	var llmErr *Error
	if !errors.As(err, &llmErr) || llmErr.Type != ErrorTypeProvider {
		return false
	}
	if len(c.RetryOnStatusCodes) > 0 {
		for _, code := range c.RetryOnStatusCodes {
			if llmErr.StatusCode == code {
				return true
			}
		}
		return false
	}
	return llmErr.StatusCode == 429 || (llmErr.StatusCode >= 500 && llmErr.StatusCode < 600)
}

func retry[T any](ctx context.Context, cfg RetryConfig, op func() (T, error)) (T, error) {
	var result T
	err := backoff.Retry(func() error {
		var err error
		result, err = op()
		if err != nil && !cfg.retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}, cfg.backOff(ctx))
	return result, err
}

type retryingLLM struct {
	LLM
	config RetryConfig
}

// WithRetry wraps an LLM so retryable provider errors are retried with
// exponential backoff. Zero fields in config take their default values.
func WithRetry(l LLM, config ...RetryConfig) LLM {
	cfg := DefaultRetryConfig()
	if len(config) > 0 {
		cfg = config[0].withDefaults()
	}
	return &retryingLLM{LLM: l, config: cfg}
}

// GenerateResponse implements LLM.
func (r *retryingLLM) GenerateResponse(ctx context.Context, req GenerateRequest) (*Response, error) {
	return retry(ctx, r.config, func() (*Response, error) {
		return r.LLM.GenerateResponse(ctx, req)
	})
}

type retryingEmbedder struct {
	Embedder
	config RetryConfig
}

// WithEmbedderRetry is WithRetry for embedders.
func WithEmbedderRetry(e Embedder, config ...RetryConfig) Embedder {
	cfg := DefaultRetryConfig()
	if len(config) > 0 {
		cfg = config[0].withDefaults()
	}
	return &retryingEmbedder{Embedder: e, config: cfg}
}

// Embed implements Embedder.
func (r *retryingEmbedder) Embed(ctx context.Context, text string, action MemoryAction) ([]float32, error) {
	return retry(ctx, r.config, func() ([]float32, error) {
		return r.Embedder.Embed(ctx, text, action)
	})
}
