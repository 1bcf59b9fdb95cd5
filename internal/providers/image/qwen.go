package image

import (
	"context"
	"strings"

	"reelgen/internal/domain"
	"reelgen/internal/infra"
	"reelgen/internal/providers/httpx"
	"reelgen/internal/providers/qwen"
)

type qwenImageClient interface {
	GenerateImage(context.Context, qwen.ImageRequest) (*qwen.ImageAsset, error)
	HasCredentials() bool
	Model() string
}

// QwenAdapter generates images synchronously with DashScope's Qwen model.
type QwenAdapter struct {
	client qwenImageClient
	logger *infra.Logger
}

func NewQwenAdapter(client qwenImageClient, logger *infra.Logger) *QwenAdapter {
	return &QwenAdapter{client: client, logger: loggerOrNop(logger)}
}

func (a *QwenAdapter) Name() string           { return ProviderQwen }
func (a *QwenAdapter) Kind() domain.MediaKind { return domain.MediaKindImage }

func (a *QwenAdapter) Generate(ctx context.Context, req domain.GenerationRequest) (domain.GenerationResult, error) {
	if a.client == nil || !a.client.HasCredentials() {
		return domain.GenerationResult{}, domain.AuthError(ProviderQwen, nil)
	}
	width, height := req.Dimensions()
	asset, err := a.client.GenerateImage(ctx, qwen.ImageRequest{
		Prompt:         strings.TrimSpace(req.Prompt),
		NegativePrompt: strings.TrimSpace(req.NegativePrompt),
		Width:          width,
		Height:         height,
		Seed:           req.Seed,
	})
	if err != nil {
		return domain.GenerationResult{}, httpx.Classify(ProviderQwen, err)
	}
	a.logger.Debug().
		Str("provider", ProviderQwen).
		Str("model", a.client.Model()).
		Str("request_id", req.RequestID).
		Msg("image generated")
	return completed(ProviderQwen, asset.MIME, asset.Data, asset.URL), nil
}

var _ domain.Adapter = (*QwenAdapter)(nil)
