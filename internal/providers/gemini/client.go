package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"reelgen/internal/infra"
	"reelgen/internal/providers/httpx"
)

// ErrMissingAPIKey indicates that the client was configured without credentials.
var ErrMissingAPIKey = errors.New("gemini: api key is required")

const apiKeyHeader = "x-goog-api-key"

// Options controls how the Gemini REST client is configured.
type Options struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	Logger     *infra.Logger
}

// Client calls the Generative Language REST API used for Imagen predictions
// and Veo long-running video operations. The key travels in the query string.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *infra.Logger
}

// Image is one decoded Imagen prediction.
type Image struct {
	Data []byte
	MIME string
}

// VideoRequest describes one Veo generation.
type VideoRequest struct {
	Prompt         string
	NegativePrompt string
	AspectRatio    string
	Duration       string
	Seed           int
}

// Operation is the normalized state of a Veo long-running operation.
type Operation struct {
	Name     string
	Done     bool
	Progress int
	VideoURI string
	Error    string
	Raw      json.RawMessage
}

type predictRequest struct {
	Instances  []predictInstance `json:"instances"`
	Parameters predictParameters `json:"parameters"`
}

type predictInstance struct {
	Prompt string `json:"prompt"`
}

type predictParameters struct {
	SampleCount    int    `json:"sampleCount"`
	AspectRatio    string `json:"aspectRatio,omitempty"`
	NegativePrompt string `json:"negativePrompt,omitempty"`
	Seed           int    `json:"seed,omitempty"`
}

type predictResponse struct {
	Predictions []struct {
		BytesBase64Encoded string `json:"bytesBase64Encoded"`
		MimeType           string `json:"mimeType"`
		Image              *struct {
			BytesBase64Encoded string `json:"bytesBase64Encoded"`
			MimeType           string `json:"mimeType"`
		} `json:"image"`
	} `json:"predictions"`
}

type videoGenerationRequest struct {
	Prompt           string                `json:"prompt"`
	GenerationConfig videoGenerationConfig `json:"generationConfig"`
}

type videoGenerationConfig struct {
	AspectRatio    string `json:"aspectRatio,omitempty"`
	VideoDuration  string `json:"videoDuration,omitempty"`
	NumberOfVideos int    `json:"numberOfVideos"`
	NegativePrompt string `json:"negativePrompt,omitempty"`
	Seed           int    `json:"seed,omitempty"`
}

type operationResponse struct {
	Name     string `json:"name"`
	Done     bool   `json:"done"`
	Metadata struct {
		Progress float64 `json:"progress"`
	} `json:"metadata"`
	Response struct {
		GeneratedVideos []struct {
			Video struct {
				URI string `json:"uri"`
			} `json:"video"`
		} `json:"generatedVideos"`
		GenerateVideoResponse struct {
			GeneratedSamples []struct {
				Video struct {
					URI string `json:"uri"`
				} `json:"video"`
			} `json:"generatedSamples"`
		} `json:"generateVideoResponse"`
	} `json:"response"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// NewClient constructs a Gemini client with sane defaults.
func NewClient(opts Options) *Client {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	logger := opts.Logger
	if logger == nil {
		logger = infra.NopLogger()
	}
	return &Client{
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    baseURL,
		httpClient: client,
		logger:     logger,
	}
}

// HasCredentials reports whether the client can perform remote calls.
func (c *Client) HasCredentials() bool {
	return c.apiKey != ""
}

// Predict runs an Imagen text-to-image prediction and returns the decoded images.
func (c *Client) Predict(ctx context.Context, model, prompt, aspectRatio, negative string, seed int) ([]Image, error) {
	if !c.HasCredentials() {
		return nil, ErrMissingAPIKey
	}
	payload := predictRequest{
		Instances: []predictInstance{{Prompt: prompt}},
		Parameters: predictParameters{
			SampleCount:    1,
			AspectRatio:    aspectRatio,
			NegativePrompt: negative,
			Seed:           seed,
		},
	}
	var resp predictResponse
	if err := c.invoke(ctx, http.MethodPost, "/models/"+url.PathEscape(model)+":predict", payload, &resp); err != nil {
		return nil, err
	}

	images := make([]Image, 0, len(resp.Predictions))
	for _, p := range resp.Predictions {
		encoded, mime := p.BytesBase64Encoded, p.MimeType
		if encoded == "" && p.Image != nil {
			encoded, mime = p.Image.BytesBase64Encoded, p.Image.MimeType
		}
		if encoded == "" {
			continue
		}
		data, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("gemini: decode prediction: %w", err)
		}
		if mime == "" {
			mime = "image/png"
		}
		images = append(images, Image{Data: data, MIME: mime})
	}
	return images, nil
}

// GenerateVideo starts a Veo operation and returns its name.
func (c *Client) GenerateVideo(ctx context.Context, model string, req VideoRequest) (Operation, error) {
	if !c.HasCredentials() {
		return Operation{}, ErrMissingAPIKey
	}
	payload := videoGenerationRequest{
		Prompt: req.Prompt,
		GenerationConfig: videoGenerationConfig{
			AspectRatio:    req.AspectRatio,
			VideoDuration:  req.Duration,
			NumberOfVideos: 1,
			NegativePrompt: req.NegativePrompt,
			Seed:           req.Seed,
		},
	}
	var resp operationResponse
	if err := c.invoke(ctx, http.MethodPost, "/models/"+url.PathEscape(model)+":generateVideo", payload, &resp); err != nil {
		return Operation{}, err
	}
	if strings.TrimSpace(resp.Name) == "" {
		return Operation{}, errors.New("gemini: operation name missing")
	}
	c.logger.Debug().Str("operation", resp.Name).Str("model", model).Msg("gemini: video operation started")
	return toOperation(resp, nil), nil
}

// GetOperation fetches the state of a long-running operation by name.
func (c *Client) GetOperation(ctx context.Context, name string) (Operation, error) {
	if !c.HasCredentials() {
		return Operation{}, ErrMissingAPIKey
	}
	name = strings.Trim(strings.TrimSpace(name), "/")
	if name == "" {
		return Operation{}, errors.New("gemini: operation name is required")
	}
	var raw json.RawMessage
	if err := c.invoke(ctx, http.MethodGet, "/"+name, nil, &raw); err != nil {
		return Operation{}, err
	}
	var resp operationResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return Operation{}, fmt.Errorf("gemini: decode operation: %w", err)
	}
	if resp.Name == "" {
		resp.Name = name
	}
	return toOperation(resp, raw), nil
}

// Download fetches a generated file. Files hosted by the API need the key,
// which travels in a header so it never shows up in a URL.
func (c *Client) Download(ctx context.Context, uri string, limit int64) ([]byte, string, error) {
	target := strings.TrimSpace(uri)
	if !strings.HasPrefix(target, "http://") && !strings.HasPrefix(target, "https://") {
		target = c.baseURL + "/" + strings.TrimLeft(target, "/")
	}
	req, err := httpx.NewDownloadRequest(ctx, target)
	if err != nil {
		return nil, "", fmt.Errorf("gemini: %w", err)
	}
	if c.apiKey != "" && strings.HasPrefix(target, c.host()) {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}
	return httpx.Fetch(c.httpClient, req, limit)
}

func (c *Client) host() string {
	parsed, err := url.Parse(c.baseURL)
	if err != nil {
		return c.baseURL
	}
	return parsed.Scheme + "://" + parsed.Host
}

func (c *Client) invoke(ctx context.Context, method, path string, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("gemini: marshal request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("gemini: create request: %w", err)
	}
	req.Header.Set(apiKeyHeader, c.apiKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("gemini: invoke: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("gemini: read response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return httpx.NewStatusError(resp.StatusCode, raw)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return errors.New("gemini: empty response body")
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("gemini: decode response: %w", err)
	}
	return nil
}

func toOperation(resp operationResponse, raw json.RawMessage) Operation {
	op := Operation{
		Name:     resp.Name,
		Done:     resp.Done,
		Progress: int(resp.Metadata.Progress),
		Raw:      raw,
	}
	if resp.Error != nil {
		op.Error = strings.TrimSpace(resp.Error.Message)
		if op.Error == "" {
			op.Error = fmt.Sprintf("operation failed with code %d", resp.Error.Code)
		}
	}
	if videos := resp.Response.GeneratedVideos; len(videos) > 0 {
		op.VideoURI = videos[0].Video.URI
	} else if samples := resp.Response.GenerateVideoResponse.GeneratedSamples; len(samples) > 0 {
		op.VideoURI = samples[0].Video.URI
	}
	return op
}
