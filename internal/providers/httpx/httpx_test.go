package httpx

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"reelgen/internal/domain"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func TestErrorMessageShapes(t *testing.T) {
	tests := []struct {
		body string
		want string
	}{
		{`{"error":"Model is loading"}`, "Model is loading"},
		{`{"error":{"code":400,"message":"API key not valid"}}`, "API key not valid"},
		{`{"detail":"Invalid token"}`, "Invalid token"},
		{`{"code":"InvalidParameter","message":"bad size"}`, "bad size"},
		{`upstream exploded`, "upstream exploded"},
	}
	for _, tc := range tests {
		if got := ErrorMessage([]byte(tc.body)); got != tc.want {
			t.Fatalf("ErrorMessage(%s) = %q, want %q", tc.body, got, tc.want)
		}
	}
}

func TestClassify(t *testing.T) {
	if err := Classify("veo", &StatusError{Code: 401}); !errors.Is(err, domain.ErrAuthentication) {
		t.Fatalf("401 should classify as authentication, got %v", err)
	}
	if err := Classify("veo", &StatusError{Code: 502}); !errors.Is(err, domain.ErrTransientProvider) {
		t.Fatalf("502 should classify as transient, got %v", err)
	}
	if err := Classify("veo", errors.New("dial tcp: refused")); !errors.Is(err, domain.ErrTransientProvider) {
		t.Fatalf("transport error should classify as transient, got %v", err)
	}
	if err := Classify("veo", context.Canceled); err != context.Canceled {
		t.Fatalf("cancellation must pass through, got %v", err)
	}
	terminal := domain.TerminalError("veo", errors.New("blocked"))
	if err := Classify("veo", terminal); !errors.Is(err, domain.ErrTerminalGeneration) {
		t.Fatalf("classified errors must pass through, got %v", err)
	}
}

func TestDownload(t *testing.T) {
	client := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		if r.URL.Host != "cdn.example.com" {
			t.Fatalf("unexpected host %s", r.URL.Host)
		}
		return &http.Response{
			StatusCode: http.StatusOK,
			Header:     http.Header{"Content-Type": []string{"video/mp4"}},
			Body:       io.NopCloser(strings.NewReader("movie")),
		}, nil
	})}

	data, mime, err := Download(context.Background(), client, "https://cdn.example.com/a.mp4", 0)
	if err != nil {
		t.Fatalf("Download returned error: %v", err)
	}
	if string(data) != "movie" || mime != "video/mp4" {
		t.Fatalf("Download = %q, %q", data, mime)
	}

	if _, _, err := Download(context.Background(), client, "https://cdn.example.com/a.mp4", 3); err == nil {
		t.Fatalf("expected size limit error")
	}
	if _, _, err := Download(context.Background(), client, "file:///etc/passwd", 0); err == nil {
		t.Fatalf("expected scheme rejection")
	}
}

func TestDownloadStatusError(t *testing.T) {
	client := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusForbidden,
			Header:     http.Header{},
			Body:       io.NopCloser(strings.NewReader(`{"error":"expired"}`)),
		}, nil
	})}
	_, _, err := Download(context.Background(), client, "https://cdn.example.com/a.png", 0)
	var serr *StatusError
	if !errors.As(err, &serr) || serr.Code != http.StatusForbidden || serr.Message != "expired" {
		t.Fatalf("Download error = %v", err)
	}
}
