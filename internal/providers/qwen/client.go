// Package qwen talks to DashScope's multimodal generation endpoint for the
// qwen-image model family.
package qwen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"reelgen/internal/infra"
	"reelgen/internal/providers/httpx"
)

const (
	defaultBaseURL = "https://dashscope-intl.aliyuncs.com"
	defaultModel   = "qwen-image-plus"
	generationPath = "/api/v1/services/aigc/multimodal-generation/generation"
)

// ErrMissingAPIKey indicates that the client was configured without credentials.
var ErrMissingAPIKey = errors.New("qwen: api key is required")

// APIError is a DashScope business error returned with a 2xx status.
type APIError struct {
	Code      string
	Message   string
	RequestID string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("qwen: %s (%s)", e.Message, e.Code)
}

// Options configures the DashScope client. BaseURL may include or omit the
// /api/v1 suffix.
type Options struct {
	APIKey       string
	BaseURL      string
	Model        string
	PromptExtend bool
	Watermark    bool
	HTTPClient   *http.Client
	Logger       *infra.Logger
}

type Client struct {
	opts Options
	http *http.Client
	log  *infra.Logger
}

// ImageRequest is one text-to-image call. Width and Height only select the
// closest supported size.
type ImageRequest struct {
	Prompt         string
	NegativePrompt string
	Width          int
	Height         int
	Seed           int
}

// ImageAsset is the downloaded output of one call.
type ImageAsset struct {
	URL       string
	Data      []byte
	MIME      string
	RequestID string
}

type synthesisRequest struct {
	Model string `json:"model"`
	Input struct {
		Messages []message `json:"messages"`
	} `json:"input"`
	Parameters synthesisParams `json:"parameters"`
}

type message struct {
	Role    string        `json:"role"`
	Content []messagePart `json:"content"`
}

type messagePart struct {
	Text  string `json:"text,omitempty"`
	Image string `json:"image,omitempty"`
}

type synthesisParams struct {
	NegativePrompt string `json:"negative_prompt,omitempty"`
	Size           string `json:"size,omitempty"`
	PromptExtend   bool   `json:"prompt_extend"`
	Watermark      bool   `json:"watermark"`
	Seed           int    `json:"seed,omitempty"`
}

type synthesisResponse struct {
	RequestID string `json:"request_id"`
	Code      string `json:"code"`
	Message   string `json:"message"`
	Output    struct {
		Choices []struct {
			Message message `json:"message"`
		} `json:"choices"`
	} `json:"output"`
}

func (r synthesisResponse) imageURL() string {
	for _, choice := range r.Output.Choices {
		for _, part := range choice.Message.Content {
			if u := strings.TrimSpace(part.Image); u != "" {
				return u
			}
		}
	}
	return ""
}

func NewClient(opts Options) *Client {
	opts.APIKey = strings.TrimSpace(opts.APIKey)
	opts.BaseURL = strings.TrimSuffix(strings.TrimRight(opts.BaseURL, "/"), "/api/v1")
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.Model = strings.TrimSpace(opts.Model); opts.Model == "" {
		opts.Model = defaultModel
	}
	c := &Client{opts: opts, http: opts.HTTPClient, log: opts.Logger}
	if c.http == nil {
		c.http = &http.Client{Timeout: 90 * time.Second}
	}
	if c.log == nil {
		c.log = infra.NopLogger()
	}
	return c
}

func (c *Client) Model() string { return c.opts.Model }

// HasCredentials reports whether the client can perform remote calls.
func (c *Client) HasCredentials() bool { return c.opts.APIKey != "" }

// GenerateImage runs one synchronous generation and downloads the image it
// points at.
func (c *Client) GenerateImage(ctx context.Context, req ImageRequest) (*ImageAsset, error) {
	if !c.HasCredentials() {
		return nil, ErrMissingAPIKey
	}
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return nil, errors.New("qwen: prompt is required")
	}

	var payload synthesisRequest
	payload.Model = c.opts.Model
	payload.Input.Messages = []message{{Role: "user", Content: []messagePart{{Text: prompt}}}}
	payload.Parameters = synthesisParams{
		NegativePrompt: strings.TrimSpace(req.NegativePrompt),
		Size:           SizeFor(req.Width, req.Height),
		PromptExtend:   c.opts.PromptExtend,
		Watermark:      c.opts.Watermark,
		Seed:           req.Seed,
	}

	resp, err := c.post(ctx, payload)
	if err != nil {
		return nil, err
	}
	url := resp.imageURL()
	if url == "" {
		return nil, fmt.Errorf("qwen: response %s carried no image", resp.RequestID)
	}
	data, mime, err := httpx.Download(ctx, c.http, url, httpx.DefaultDownloadLimit)
	if err != nil {
		return nil, fmt.Errorf("qwen: %w", err)
	}
	c.log.Debug().
		Str("model", c.opts.Model).
		Str("request_id", resp.RequestID).
		Int("bytes", len(data)).
		Msg("qwen: image downloaded")
	return &ImageAsset{URL: url, Data: data, MIME: mime, RequestID: resp.RequestID}, nil
}

func (c *Client) post(ctx context.Context, payload synthesisRequest) (synthesisResponse, error) {
	var out synthesisResponse
	body, err := json.Marshal(payload)
	if err != nil {
		return out, fmt.Errorf("qwen: encode request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.BaseURL+generationPath, bytes.NewReader(body))
	if err != nil {
		return out, fmt.Errorf("qwen: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.opts.APIKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return out, fmt.Errorf("qwen: http request: %w", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return out, fmt.Errorf("qwen: read response: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return out, httpx.NewStatusError(resp.StatusCode, raw)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("qwen: decode response: %w", err)
	}
	if out.Code != "" {
		return out, &APIError{Code: out.Code, Message: out.Message, RequestID: out.RequestID}
	}
	return out, nil
}

// qwen-image accepts a fixed set of sizes.
var sizes = [...]struct {
	ratio float64
	size  string
}{
	{1, "1328*1328"},
	{16.0 / 9, "1664*928"},
	{9.0 / 16, "928*1664"},
	{4.0 / 3, "1472*1140"},
	{3.0 / 4, "1140*1472"},
}

// SizeFor picks the supported size whose ratio is closest to width:height.
func SizeFor(width, height int) string {
	if width <= 0 || height <= 0 {
		return sizes[0].size
	}
	target := float64(width) / float64(height)
	best, bestDelta := 0, -1.0
	for i, s := range sizes {
		d := target - s.ratio
		if d < 0 {
			d = -d
		}
		if bestDelta < 0 || d < bestDelta {
			best, bestDelta = i, d
		}
	}
	return sizes[best].size
}
