package replicate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"reelgen/internal/domain"
	"reelgen/internal/infra"
	"reelgen/internal/providers/httpx"
)

// ErrMissingToken indicates that the client was configured without credentials.
var ErrMissingToken = errors.New("replicate: api token is required")

// Prediction statuses reported by the API.
const (
	StatusStarting   = "starting"
	StatusProcessing = "processing"
	StatusSucceeded  = "succeeded"
	StatusFailed     = "failed"
	StatusCanceled   = "canceled"
)

// Options configures the Replicate client.
type Options struct {
	Token      string
	BaseURL    string
	HTTPClient *http.Client
	Logger     *infra.Logger
}

// Client creates and inspects Replicate predictions.
type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
	logger     *infra.Logger
}

// Prediction mirrors the fields of a prediction the adapters consume.
type Prediction struct {
	ID     string          `json:"id"`
	Status string          `json:"status"`
	Output json.RawMessage `json:"output"`
	Error  json.RawMessage `json:"error"`
	Logs   string          `json:"logs"`
	Raw    json.RawMessage `json:"-"`
}

// OutputURL returns the first URL in the output, which is either a string or
// a list of strings depending on the model.
func (p Prediction) OutputURL() string {
	if len(p.Output) == 0 {
		return ""
	}
	var single string
	if err := json.Unmarshal(p.Output, &single); err == nil {
		return strings.TrimSpace(single)
	}
	var list []string
	if err := json.Unmarshal(p.Output, &list); err == nil {
		for _, u := range list {
			if u = strings.TrimSpace(u); u != "" {
				return u
			}
		}
	}
	return ""
}

// ErrorMessage returns the failure reason reported by the model, if any.
func (p Prediction) ErrorMessage() string {
	if len(p.Error) == 0 || string(p.Error) == "null" {
		return ""
	}
	var msg string
	if err := json.Unmarshal(p.Error, &msg); err == nil {
		return msg
	}
	return strings.TrimSpace(string(p.Error))
}

func NewClient(opts Options) *Client {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.replicate.com/v1"
	}
	logger := opts.Logger
	if logger == nil {
		logger = infra.NopLogger()
	}
	return &Client{
		token:      strings.TrimSpace(opts.Token),
		baseURL:    baseURL,
		httpClient: client,
		logger:     logger,
	}
}

func (c *Client) HasCredentials() bool {
	return c.token != ""
}

// CreatePrediction starts a prediction on the latest version of model
// ("owner/name").
func (c *Client) CreatePrediction(ctx context.Context, model string, input map[string]any) (Prediction, error) {
	owner, name, ok := strings.Cut(strings.TrimSpace(model), "/")
	if !ok || owner == "" || name == "" {
		return Prediction{}, fmt.Errorf("replicate: invalid model %q", model)
	}
	path := "/models/" + url.PathEscape(owner) + "/" + url.PathEscape(name) + "/predictions"
	pred, err := c.do(ctx, http.MethodPost, path, map[string]any{"input": input})
	if err != nil {
		return Prediction{}, err
	}
	if pred.ID == "" {
		return Prediction{}, errors.New("replicate: prediction id missing")
	}
	c.logger.Debug().Str("model", model).Str("operation", pred.ID).Msg("replicate: prediction created")
	return pred, nil
}

// GetPrediction fetches the current state of a prediction.
func (c *Client) GetPrediction(ctx context.Context, id string) (Prediction, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Prediction{}, errors.New("replicate: prediction id is required")
	}
	return c.do(ctx, http.MethodGet, "/predictions/"+url.PathEscape(id), nil)
}

// Download fetches an output file.
func (c *Client) Download(ctx context.Context, rawURL string, limit int64) ([]byte, string, error) {
	return httpx.Download(ctx, c.httpClient, rawURL, limit)
}

func (c *Client) do(ctx context.Context, method, path string, payload any) (Prediction, error) {
	if !c.HasCredentials() {
		return Prediction{}, ErrMissingToken
	}
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return Prediction{}, fmt.Errorf("replicate: encode request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return Prediction{}, fmt.Errorf("replicate: build request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+c.token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Prediction{}, fmt.Errorf("replicate: http request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Prediction{}, fmt.Errorf("replicate: read response: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return Prediction{}, httpx.NewStatusError(resp.StatusCode, raw)
	}
	var pred Prediction
	if err := json.Unmarshal(raw, &pred); err != nil {
		return Prediction{}, fmt.Errorf("replicate: decode prediction: %w", err)
	}
	pred.Raw = raw
	return pred, nil
}

// Result maps the prediction onto a generation result for provider. A
// succeeded prediction without output is reported as an error.
func (p Prediction) Result(provider string) (domain.GenerationResult, error) {
	res := domain.GenerationResult{Provider: provider, Operation: p.ID, Raw: p.Raw}
	switch p.Status {
	case StatusSucceeded:
		out := p.OutputURL()
		if out == "" {
			return domain.GenerationResult{}, fmt.Errorf("prediction %s succeeded without output", p.ID)
		}
		res.Status = domain.StatusCompleted
		res.Media = domain.RemoteMedia(out, "")
		res.Progress = 100
	case StatusFailed, StatusCanceled:
		res.Status = domain.StatusFailed
		res.Reason = p.ErrorMessage()
		if res.Reason == "" {
			res.Reason = "prediction " + p.Status
		}
	default:
		res.Status = domain.StatusPending
		if strings.TrimSpace(p.Logs) != "" {
			res.Progress = 50
		}
	}
	return res, nil
}
