// Package ark wraps the Volcengine Ark runtime SDK for Seedream image and
// Seedance video generation.
package ark

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/volcengine/volcengine-go-sdk/service/arkruntime"
	"github.com/volcengine/volcengine-go-sdk/service/arkruntime/model"
	"github.com/volcengine/volcengine-go-sdk/volcengine"

	"reelgen/internal/infra"
	"reelgen/internal/providers/httpx"
)

// ErrMissingAPIKey indicates that the client was configured without credentials.
var ErrMissingAPIKey = errors.New("ark: api key is required")

// Task statuses reported by the content generation API.
const (
	TaskQueued    = "queued"
	TaskRunning   = "running"
	TaskSucceeded = "succeeded"
	TaskFailed    = "failed"
	TaskCancelled = "cancelled"
)

// Options configures the Ark client.
type Options struct {
	APIKey  string
	BaseURL string
	Logger  *infra.Logger
}

// Client issues Ark runtime calls with one API key.
type Client struct {
	apiKey string
	sdk    *arkruntime.Client
	logger *infra.Logger
}

// Task is the normalized state of a content generation task.
type Task struct {
	ID       string
	Status   string
	VideoURL string
	Error    string
	Raw      json.RawMessage
}

func NewClient(opts Options) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = infra.NopLogger()
	}
	apiKey := strings.TrimSpace(opts.APIKey)
	c := &Client{apiKey: apiKey, logger: logger}
	if apiKey == "" {
		return c
	}
	var setters []arkruntime.ConfigOption
	if base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/"); base != "" {
		setters = append(setters, arkruntime.WithBaseUrl(base))
	}
	c.sdk = arkruntime.NewClientWithApiKey(apiKey, setters...)
	return c
}

func (c *Client) HasCredentials() bool {
	return c.apiKey != ""
}

// GenerateImage runs one synchronous Seedream generation and returns the
// hosted image URL.
func (c *Client) GenerateImage(ctx context.Context, modelID, prompt, size string, seed int) (string, json.RawMessage, error) {
	if !c.HasCredentials() {
		return "", nil, ErrMissingAPIKey
	}
	req := model.GenerateImagesRequest{
		Model:          modelID,
		Prompt:         prompt,
		ResponseFormat: volcengine.String(model.GenerateImagesResponseFormatURL),
		Watermark:      volcengine.Bool(false),
	}
	if size != "" {
		req.Size = volcengine.String(size)
	}
	if seed > 0 {
		req.Seed = volcengine.Int64(int64(seed))
	}
	resp, err := c.sdk.GenerateImages(ctx, req)
	if err != nil {
		return "", nil, fmt.Errorf("ark: generate images: %w", statusError(err))
	}
	raw, _ := json.Marshal(resp)
	if resp.Error != nil {
		return "", raw, fmt.Errorf("ark: %s (%s)", resp.Error.Message, resp.Error.Code)
	}
	for _, img := range resp.Data {
		if img != nil && img.Url != nil && strings.TrimSpace(*img.Url) != "" {
			return strings.TrimSpace(*img.Url), raw, nil
		}
	}
	return "", raw, errors.New("ark: no image generated")
}

// CreateVideoTask submits a text-to-video Seedance task and returns its id.
// Generation parameters travel as trailing prompt flags.
func (c *Client) CreateVideoTask(ctx context.Context, modelID, prompt string) (string, error) {
	if !c.HasCredentials() {
		return "", ErrMissingAPIKey
	}
	resp, err := c.sdk.CreateContentGenerationTask(ctx, model.CreateContentGenerationTaskRequest{
		Model: modelID,
		Content: []*model.CreateContentGenerationContentItem{
			{
				Type: model.ContentGenerationContentItemTypeText,
				Text: volcengine.String(prompt),
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("ark: create task: %w", statusError(err))
	}
	if strings.TrimSpace(resp.ID) == "" {
		return "", errors.New("ark: task id missing")
	}
	c.logger.Debug().Str("model", modelID).Str("operation", resp.ID).Msg("ark: task created")
	return resp.ID, nil
}

// GetVideoTask fetches the current state of a content generation task.
func (c *Client) GetVideoTask(ctx context.Context, id string) (Task, error) {
	if !c.HasCredentials() {
		return Task{}, ErrMissingAPIKey
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return Task{}, errors.New("ark: task id is required")
	}
	resp, err := c.sdk.GetContentGenerationTask(ctx, model.GetContentGenerationTaskRequest{ID: id})
	if err != nil {
		return Task{}, fmt.Errorf("ark: get task: %w", statusError(err))
	}
	raw, _ := json.Marshal(resp)
	task := Task{
		ID:       id,
		Status:   strings.ToLower(strings.TrimSpace(resp.Status)),
		VideoURL: strings.TrimSpace(resp.Content.VideoURL),
		Raw:      raw,
	}
	task.Error = taskError(raw)
	return task, nil
}

// taskError reads error.message from the serialized task.
func taskError(raw json.RawMessage) string {
	var probe struct {
		Error *struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil || probe.Error == nil {
		return ""
	}
	if probe.Error.Message != "" {
		return probe.Error.Message
	}
	return probe.Error.Code
}

// statusError lifts SDK errors carrying an HTTP status into httpx.StatusError
// so adapters classify them like every other provider.
func statusError(err error) error {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode > 0 {
		return &httpx.StatusError{Code: apiErr.HTTPStatusCode, Message: apiErr.Message}
	}
	var reqErr *model.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode > 0 {
		return &httpx.StatusError{Code: reqErr.HTTPStatusCode, Message: fmt.Sprint(reqErr.Err)}
	}
	return err
}
