package image

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"reelgen/internal/domain"
	"reelgen/internal/infra"
	"reelgen/internal/providers/httpx"
	"reelgen/internal/providers/openaiclient"
)

type openAIImageClient interface {
	CreateImage(ctx context.Context, request openai.ImageRequest) (openai.ImageResponse, error)
}

// OpenAIAdapter generates images synchronously with DALL-E 3.
type OpenAIAdapter struct {
	client openAIImageClient
	logger *infra.Logger
}

// NewOpenAIAdapter accepts a nil client; Generate then reports a missing credential.
func NewOpenAIAdapter(client openAIImageClient, logger *infra.Logger) *OpenAIAdapter {
	return &OpenAIAdapter{client: client, logger: loggerOrNop(logger)}
}

func (a *OpenAIAdapter) Name() string           { return ProviderOpenAI }
func (a *OpenAIAdapter) Kind() domain.MediaKind { return domain.MediaKindImage }

func (a *OpenAIAdapter) Generate(ctx context.Context, req domain.GenerationRequest) (domain.GenerationResult, error) {
	if isNilClient(a.client) {
		return domain.GenerationResult{}, domain.AuthError(ProviderOpenAI, nil)
	}
	prompt := strings.TrimSpace(req.Prompt)
	if req.NegativePrompt != "" {
		prompt = fmt.Sprintf("%s. Avoid: %s", prompt, req.NegativePrompt)
	}
	resp, err := a.client.CreateImage(ctx, openai.ImageRequest{
		Prompt:         prompt,
		Model:          openai.CreateImageModelDallE3,
		N:              1,
		Size:           openAISize(req.AspectRatio),
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
	})
	if err != nil {
		return domain.GenerationResult{}, httpx.Classify(ProviderOpenAI, openaiclient.StatusError(err))
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return domain.GenerationResult{}, domain.TransientError(ProviderOpenAI, errors.New("no image generated"))
	}
	data, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return domain.GenerationResult{}, domain.TransientError(ProviderOpenAI, fmt.Errorf("decode image: %w", err))
	}
	a.logger.Debug().Str("provider", ProviderOpenAI).Str("request_id", req.RequestID).Int("bytes", len(data)).Msg("image generated")
	return completed(ProviderOpenAI, "image/png", data, openai.CreateImageModelDallE3), nil
}

func openAISize(aspect string) string {
	switch aspect {
	case "9:16", "4:5", "3:4", "2:3":
		return openai.CreateImageSize1024x1792
	case "16:9", "3:2", "4:3":
		return openai.CreateImageSize1792x1024
	default:
		return openai.CreateImageSize1024x1024
	}
}

// isNilClient catches a typed nil *openai.Client stored in the interface.
func isNilClient(c openAIImageClient) bool {
	if c == nil {
		return true
	}
	if oc, ok := c.(*openai.Client); ok && oc == nil {
		return true
	}
	return false
}

var _ domain.Adapter = (*OpenAIAdapter)(nil)
