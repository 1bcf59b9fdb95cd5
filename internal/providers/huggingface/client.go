package huggingface

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

// ErrMissingToken indicates that the client was configured without credentials.
var ErrMissingToken = errors.New("huggingface: token is required")

// DefaultModel is the text-to-image model served by the inference API.
const DefaultModel = "black-forest-labs/FLUX.1-dev"

// Options configures the inference client.
type Options struct {
	Token      string
	BaseURL    string
	HTTPClient *http.Client
	Logger     *infra.Logger
}

// Client calls the Hugging Face serverless inference API.
type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
	logger     *infra.Logger
}

// TextToImageRequest describes one inference call.
type TextToImageRequest struct {
	Prompt         string
	NegativePrompt string
	Width          int
	Height         int
	Seed           int
}

type inferenceRequest struct {
	Inputs     string              `json:"inputs"`
	Parameters inferenceParameters `json:"parameters"`
}

type inferenceParameters struct {
	Width          int    `json:"width,omitempty"`
	Height         int    `json:"height,omitempty"`
	NegativePrompt string `json:"negative_prompt,omitempty"`
	Seed           int    `json:"seed,omitempty"`
}

func NewClient(opts Options) *Client {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 120 * time.Second}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api-inference.huggingface.co"
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

// TextToImage returns the raw image bytes produced by model.
func (c *Client) TextToImage(ctx context.Context, model string, req TextToImageRequest) ([]byte, string, error) {
	if !c.HasCredentials() {
		return nil, "", ErrMissingToken
	}
	if model == "" {
		model = DefaultModel
	}
	body, err := json.Marshal(inferenceRequest{
		Inputs: req.Prompt,
		Parameters: inferenceParameters{
			Width:          req.Width,
			Height:         req.Height,
			NegativePrompt: req.NegativePrompt,
			Seed:           req.Seed,
		},
	})
	if err != nil {
		return nil, "", fmt.Errorf("huggingface: encode request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/models/"+model, bytes.NewReader(body))
	if err != nil {
		return nil, "", fmt.Errorf("huggingface: build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.token)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "image/png")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, "", fmt.Errorf("huggingface: http request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, httpx.DefaultDownloadLimit))
	if err != nil {
		return nil, "", fmt.Errorf("huggingface: read response: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return nil, "", httpx.NewStatusError(resp.StatusCode, raw)
	}
	mime := resp.Header.Get("Content-Type")
	if strings.HasPrefix(mime, "application/json") {
		return nil, "", fmt.Errorf("huggingface: expected image, got %s", httpx.ErrorMessage(raw))
	}
	if len(raw) == 0 {
		return nil, "", errors.New("huggingface: empty image body")
	}
	if mime == "" {
		mime = http.DetectContentType(raw)
	}
	c.logger.Debug().Str("model", model).Int("bytes", len(raw)).Msg("huggingface: image generated")
	return raw, mime, nil
}
