package image

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"reelgen/internal/domain"
	"reelgen/internal/infra"
	"reelgen/internal/providers/httpx"
)

// DefaultSeedreamModel is used when SEEDREAM_MODEL is unset.
const DefaultSeedreamModel = "seedream-4-0-250828"

type seedreamClient interface {
	HasCredentials() bool
	GenerateImage(ctx context.Context, model, prompt, size string, seed int) (string, json.RawMessage, error)
}

// SeedreamAdapter generates images synchronously with Volcengine Ark and
// downloads the hosted result so it outlives the provider's URL expiry.
type SeedreamAdapter struct {
	client     seedreamClient
	model      string
	httpClient *http.Client
	logger     *infra.Logger
}

func NewSeedreamAdapter(client seedreamClient, model string, httpClient *http.Client, logger *infra.Logger) *SeedreamAdapter {
	if model == "" {
		model = DefaultSeedreamModel
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &SeedreamAdapter{client: client, model: model, httpClient: httpClient, logger: loggerOrNop(logger)}
}

func (a *SeedreamAdapter) Name() string           { return ProviderSeedream }
func (a *SeedreamAdapter) Kind() domain.MediaKind { return domain.MediaKindImage }

func (a *SeedreamAdapter) Generate(ctx context.Context, req domain.GenerationRequest) (domain.GenerationResult, error) {
	if a.client == nil || !a.client.HasCredentials() {
		return domain.GenerationResult{}, domain.AuthError(ProviderSeedream, nil)
	}
	width, height := req.Dimensions()
	prompt := req.Prompt
	if req.NegativePrompt != "" {
		prompt = fmt.Sprintf("%s. Avoid: %s", prompt, req.NegativePrompt)
	}
	url, _, err := a.client.GenerateImage(ctx, a.model, prompt, fmt.Sprintf("%dx%d", width, height), req.Seed)
	if err != nil {
		return domain.GenerationResult{}, httpx.Classify(ProviderSeedream, err)
	}
	if url == "" {
		return domain.GenerationResult{}, domain.TransientError(ProviderSeedream, errors.New("no image generated"))
	}
	data, mime, err := httpx.Download(ctx, a.httpClient, url, httpx.DefaultDownloadLimit)
	if err != nil {
		return domain.GenerationResult{}, httpx.Classify(ProviderSeedream, err)
	}
	a.logger.Debug().Str("provider", ProviderSeedream).Str("request_id", req.RequestID).Int("bytes", len(data)).Msg("image generated")
	return completed(ProviderSeedream, mime, data, url), nil
}

var _ domain.Adapter = (*SeedreamAdapter)(nil)
