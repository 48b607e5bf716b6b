// Package openrouter provides the OpenRouter generation adapter.
//
// Requests go through the go-openrouter SDK. The openrouter block of the
// configuration adds fallback models, the site URL sent as HTTP-Referer
// and the application name sent as X-Title.
package openrouter
