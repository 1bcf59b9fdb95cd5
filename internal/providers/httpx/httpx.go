// Package httpx holds the request plumbing shared by the provider clients:
// upstream status errors, error-body parsing and media downloads.
package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"reelgen/internal/domain"
)

// DefaultDownloadLimit caps media downloads at 64 MiB.
const DefaultDownloadLimit int64 = 64 << 20

// StatusError is returned by provider clients for non-2xx responses.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("status %d", e.Code)
	}
	return fmt.Sprintf("status %d: %s", e.Code, e.Message)
}

// NewStatusError builds a StatusError, extracting a readable message from body.
func NewStatusError(code int, body []byte) *StatusError {
	return &StatusError{Code: code, Message: ErrorMessage(body)}
}

// ErrorMessage extracts a message from the error shapes used by the
// supported providers, falling back to the trimmed body.
func ErrorMessage(body []byte) string {
	var probe struct {
		Error   json.RawMessage `json:"error"`
		Detail  string          `json:"detail"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(body, &probe); err == nil {
		if len(probe.Error) > 0 && string(probe.Error) != "null" {
			var s string
			if json.Unmarshal(probe.Error, &s) == nil && s != "" {
				return s
			}
			var obj struct {
				Message string `json:"message"`
			}
			if json.Unmarshal(probe.Error, &obj) == nil && obj.Message != "" {
				return obj.Message
			}
		}
		if probe.Detail != "" {
			return probe.Detail
		}
		if probe.Message != "" {
			return probe.Message
		}
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 300 {
		msg = msg[:300]
	}
	return msg
}

// Classify maps a client error onto the domain error taxonomy for provider.
// Context cancellation is returned unchanged; errors already classified pass through.
func Classify(provider string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var perr *domain.ProviderError
	if errors.As(err, &perr) {
		return err
	}
	var serr *StatusError
	if errors.As(err, &serr) {
		return domain.ClassifyHTTPStatus(provider, serr.Code, serr.Message)
	}
	return domain.TransientError(provider, err)
}

// Download fetches rawURL and returns its body and content type. Bodies larger
// than limit are rejected.
func Download(ctx context.Context, client *http.Client, rawURL string, limit int64) ([]byte, string, error) {
	req, err := NewDownloadRequest(ctx, rawURL)
	if err != nil {
		return nil, "", err
	}
	return Fetch(client, req, limit)
}

// NewDownloadRequest builds a GET for an http(s) media URL.
func NewDownloadRequest(ctx context.Context, rawURL string) (*http.Request, error) {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, fmt.Errorf("invalid media url %q", rawURL)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build download request: %w", err)
	}
	return req, nil
}

// Fetch executes a prepared download request with the same limits as Download.
func Fetch(client *http.Client, req *http.Request, limit int64) ([]byte, string, error) {
	if limit <= 0 {
		limit = DefaultDownloadLimit
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("download media: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, "", NewStatusError(resp.StatusCode, body)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, "", fmt.Errorf("read media: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, "", fmt.Errorf("media exceeds %d bytes", limit)
	}
	if len(data) == 0 {
		return nil, "", errors.New("empty media body")
	}
	mime := resp.Header.Get("Content-Type")
	if mime == "" {
		mime = http.DetectContentType(data)
	}
	return data, mime, nil
}
