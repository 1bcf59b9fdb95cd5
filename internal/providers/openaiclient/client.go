// Package openaiclient builds go-openai clients and lifts their errors into
// the shared status error type.
package openaiclient

import (
	"errors"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"reelgen/internal/providers/httpx"
)

// Options configures a client.
type Options struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

// New returns nil when no API key is configured.
func New(opts Options) *openai.Client {
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		return nil
	}
	cfg := openai.DefaultConfig(apiKey)
	if base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/"); base != "" {
		cfg.BaseURL = base
	}
	if opts.HTTPClient != nil {
		cfg.HTTPClient = opts.HTTPClient
	}
	return openai.NewClientWithConfig(cfg)
}

// StatusError converts API and request errors carrying an HTTP status into
// *httpx.StatusError. Other errors are returned unchanged.
func StatusError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode > 0 {
		return &httpx.StatusError{Code: apiErr.HTTPStatusCode, Message: apiErr.Message}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode > 0 {
		msg := ""
		if reqErr.Err != nil {
			msg = reqErr.Err.Error()
		}
		return &httpx.StatusError{Code: reqErr.HTTPStatusCode, Message: msg}
	}
	return err
}
