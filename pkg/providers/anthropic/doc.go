// Package anthropic provides the Anthropic Messages API adapter, built on
// anthropic-sdk-go.
package anthropic
