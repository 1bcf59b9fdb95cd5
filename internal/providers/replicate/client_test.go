package replicate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"reelgen/internal/domain"
	"reelgen/internal/providers/httpx"
)

func TestCreateAndGetPrediction(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Token r8_test" {
			t.Errorf("unexpected auth header %q", r.Header.Get("Authorization"))
		}
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/models/black-forest-labs/flux-schnell/predictions":
			var body struct {
				Input map[string]any `json:"input"`
			}
			_ = json.NewDecoder(r.Body).Decode(&body)
			if body.Input["prompt"] != "serum" {
				t.Errorf("unexpected input %#v", body.Input)
			}
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"id":"p1","status":"starting"}`))
		case r.Method == http.MethodGet && r.URL.Path == "/predictions/p1":
			_, _ = w.Write([]byte(`{"id":"p1","status":"succeeded","output":["https://replicate.delivery/out.png"]}`))
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewClient(Options{Token: "r8_test", BaseURL: srv.URL, HTTPClient: srv.Client()})
	pred, err := c.CreatePrediction(context.Background(), "black-forest-labs/flux-schnell", map[string]any{"prompt": "serum"})
	if err != nil {
		t.Fatalf("CreatePrediction returned error: %v", err)
	}
	if pred.ID != "p1" || pred.Status != StatusStarting {
		t.Fatalf("unexpected prediction %#v", pred)
	}

	pred, err = c.GetPrediction(context.Background(), "p1")
	if err != nil {
		t.Fatalf("GetPrediction returned error: %v", err)
	}
	if pred.OutputURL() != "https://replicate.delivery/out.png" {
		t.Fatalf("OutputURL = %q", pred.OutputURL())
	}
	if len(pred.Raw) == 0 {
		t.Fatalf("raw payload should be retained")
	}
}

func TestPredictionOutputAndError(t *testing.T) {
	p := Prediction{Output: json.RawMessage(`"https://replicate.delivery/video.mp4"`)}
	if p.OutputURL() != "https://replicate.delivery/video.mp4" {
		t.Fatalf("OutputURL = %q", p.OutputURL())
	}
	p = Prediction{Error: json.RawMessage(`"NSFW content detected"`)}
	if p.ErrorMessage() != "NSFW content detected" {
		t.Fatalf("ErrorMessage = %q", p.ErrorMessage())
	}
	if (Prediction{Error: json.RawMessage(`null`)}).ErrorMessage() != "" {
		t.Fatalf("null error should be empty")
	}
}

func TestUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"Invalid token."}`))
	}))
	defer srv.Close()

	_, err := NewClient(Options{Token: "bad", BaseURL: srv.URL, HTTPClient: srv.Client()}).GetPrediction(context.Background(), "p1")
	var serr *httpx.StatusError
	if !errors.As(err, &serr) || serr.Code != http.StatusUnauthorized || serr.Message != "Invalid token." {
		t.Fatalf("GetPrediction error = %v", err)
	}
}

func TestCreatePredictionRejectsBadModel(t *testing.T) {
	c := NewClient(Options{Token: "t"})
	if _, err := c.CreatePrediction(context.Background(), "flux", nil); err == nil {
		t.Fatalf("expected error for model without owner")
	}
	if _, err := NewClient(Options{}).GetPrediction(context.Background(), "p1"); !errors.Is(err, ErrMissingToken) {
		t.Fatalf("expected ErrMissingToken, got %v", err)
	}
}

func TestPredictionResult(t *testing.T) {
	tests := []struct {
		name     string
		pred     Prediction
		status   domain.ResultStatus
		progress int
		reason   string
		media    string
	}{
		{name: "starting", pred: Prediction{ID: "p1", Status: StatusStarting}, status: domain.StatusPending},
		{name: "processing with logs", pred: Prediction{ID: "p1", Status: StatusProcessing, Logs: "step 1"}, status: domain.StatusPending, progress: 50},
		{name: "succeeded", pred: Prediction{ID: "p1", Status: StatusSucceeded, Output: []byte(`["https://r.example/out.png"]`)}, status: domain.StatusCompleted, progress: 100, media: "https://r.example/out.png"},
		{name: "failed", pred: Prediction{ID: "p1", Status: StatusFailed, Error: []byte(`"NSFW"`)}, status: domain.StatusFailed, reason: "NSFW"},
		{name: "canceled", pred: Prediction{ID: "p1", Status: StatusCanceled}, status: domain.StatusFailed, reason: "prediction canceled"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res, err := tc.pred.Result("replicate-flux")
			if err != nil {
				t.Fatalf("Result returned error: %v", err)
			}
			if res.Status != tc.status || res.Progress != tc.progress || res.Reason != tc.reason || res.Media.URL != tc.media {
				t.Fatalf("unexpected result %#v", res)
			}
			if res.Operation != "p1" || res.Provider != "replicate-flux" {
				t.Fatalf("unexpected identity %#v", res)
			}
		})
	}

	if _, err := (Prediction{ID: "p2", Status: StatusSucceeded}).Result("replicate-ltx"); err == nil {
		t.Fatalf("expected error for succeeded prediction without output")
	}
}
