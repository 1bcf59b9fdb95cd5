package image

import (
	"context"

	"reelgen/internal/domain"
	"reelgen/internal/infra"
	"reelgen/internal/providers/httpx"
	"reelgen/internal/providers/huggingface"
)

type huggingFaceClient interface {
	HasCredentials() bool
	TextToImage(ctx context.Context, model string, req huggingface.TextToImageRequest) ([]byte, string, error)
}

// HuggingFaceAdapter generates images synchronously through the Inference API.
type HuggingFaceAdapter struct {
	client huggingFaceClient
	model  string
	logger *infra.Logger
}

func NewHuggingFaceAdapter(client huggingFaceClient, model string, logger *infra.Logger) *HuggingFaceAdapter {
	if model == "" {
		model = huggingface.DefaultModel
	}
	return &HuggingFaceAdapter{client: client, model: model, logger: loggerOrNop(logger)}
}

func (a *HuggingFaceAdapter) Name() string           { return ProviderHuggingFace }
func (a *HuggingFaceAdapter) Kind() domain.MediaKind { return domain.MediaKindImage }

func (a *HuggingFaceAdapter) Generate(ctx context.Context, req domain.GenerationRequest) (domain.GenerationResult, error) {
	if a.client == nil || !a.client.HasCredentials() {
		return domain.GenerationResult{}, domain.AuthError(ProviderHuggingFace, nil)
	}
	width, height := req.Dimensions()
	data, mime, err := a.client.TextToImage(ctx, a.model, huggingface.TextToImageRequest{
		Prompt:         req.Prompt,
		NegativePrompt: req.NegativePrompt,
		Width:          width,
		Height:         height,
		Seed:           req.Seed,
	})
	if err != nil {
		return domain.GenerationResult{}, httpx.Classify(ProviderHuggingFace, err)
	}
	a.logger.Debug().Str("provider", ProviderHuggingFace).Str("request_id", req.RequestID).Int("bytes", len(data)).Msg("image generated")
	return completed(ProviderHuggingFace, mime, data, a.model), nil
}

var _ domain.Adapter = (*HuggingFaceAdapter)(nil)
