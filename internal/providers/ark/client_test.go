package ark

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/volcengine/volcengine-go-sdk/service/arkruntime/model"

	"reelgen/internal/providers/httpx"
)

func TestStatusErrorLiftsAPIError(t *testing.T) {
	wrapped := fmt.Errorf("call: %w", &model.APIError{HTTPStatusCode: http.StatusUnauthorized, Message: "invalid key"})
	var serr *httpx.StatusError
	if !errors.As(statusError(wrapped), &serr) {
		t.Fatalf("expected StatusError")
	}
	if serr.Code != http.StatusUnauthorized || serr.Message != "invalid key" {
		t.Fatalf("unexpected status error %#v", serr)
	}
}

func TestStatusErrorPassesThroughPlainErrors(t *testing.T) {
	plain := errors.New("dial tcp: timeout")
	if got := statusError(plain); got != plain {
		t.Fatalf("statusError = %v, want original", got)
	}
}

func TestTaskError(t *testing.T) {
	if got := taskError([]byte(`{"error":{"code":"OutputVideoSensitiveContentDetected","message":"sensitive"}}`)); got != "sensitive" {
		t.Fatalf("taskError = %q", got)
	}
	if got := taskError([]byte(`{"error":{"code":"Timeout"}}`)); got != "Timeout" {
		t.Fatalf("taskError = %q", got)
	}
	if got := taskError([]byte(`{"status":"succeeded"}`)); got != "" {
		t.Fatalf("taskError = %q, want empty", got)
	}
}

func TestMissingKeyShortCircuits(t *testing.T) {
	c := NewClient(Options{})
	if c.HasCredentials() {
		t.Fatalf("expected no credentials")
	}
	if _, _, err := c.GenerateImage(context.Background(), "m", "p", "", 0); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("GenerateImage error = %v", err)
	}
	if _, err := c.CreateVideoTask(context.Background(), "m", "p"); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("CreateVideoTask error = %v", err)
	}
	if _, err := c.GetVideoTask(context.Background(), "t"); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("GetVideoTask error = %v", err)
	}
}
