package openaiclient

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	openai "github.com/sashabaranov/go-openai"

	"reelgen/internal/providers/httpx"
)

func TestNewWithoutKey(t *testing.T) {
	if c := New(Options{APIKey: "  "}); c != nil {
		t.Fatalf("expected nil client without key")
	}
	if c := New(Options{APIKey: "sk-test", BaseURL: "https://proxy.example.com/v1/"}); c == nil {
		t.Fatalf("expected client")
	}
}

func TestStatusError(t *testing.T) {
	err := fmt.Errorf("create image: %w", &openai.APIError{HTTPStatusCode: http.StatusTooManyRequests, Message: "rate limited"})
	var serr *httpx.StatusError
	if !errors.As(StatusError(err), &serr) || serr.Code != http.StatusTooManyRequests {
		t.Fatalf("StatusError = %v", StatusError(err))
	}

	reqErr := &openai.RequestError{HTTPStatusCode: http.StatusForbidden, Err: errors.New("forbidden")}
	if !errors.As(StatusError(reqErr), &serr) || serr.Code != http.StatusForbidden || serr.Message != "forbidden" {
		t.Fatalf("StatusError = %v", StatusError(reqErr))
	}

	plain := errors.New("boom")
	if StatusError(plain) != plain {
		t.Fatalf("expected plain error to pass through")
	}
}
