package video

import (
	"context"
	"fmt"

	"reelgen/internal/domain"
	"reelgen/internal/infra"
	"reelgen/internal/providers/gemini"
	"reelgen/internal/providers/httpx"
)

// DefaultVeoModel is used when VEO_MODEL is unset.
const DefaultVeoModel = "veo-2"

type veoClient interface {
	HasCredentials() bool
	GenerateVideo(ctx context.Context, model string, req gemini.VideoRequest) (gemini.Operation, error)
	GetOperation(ctx context.Context, name string) (gemini.Operation, error)
	Download(ctx context.Context, uri string, limit int64) ([]byte, string, error)
}

// VeoAdapter runs Veo long-running operations. Finished videos are
// downloaded because their URIs require the API key.
type VeoAdapter struct {
	client        veoClient
	model         string
	downloadLimit int64
	logger        *infra.Logger
}

func NewVeoAdapter(client veoClient, model string, downloadLimit int64, logger *infra.Logger) *VeoAdapter {
	if model == "" {
		model = DefaultVeoModel
	}
	if downloadLimit <= 0 {
		downloadLimit = httpx.DefaultDownloadLimit
	}
	return &VeoAdapter{client: client, model: model, downloadLimit: downloadLimit, logger: loggerOrNop(logger)}
}

func (a *VeoAdapter) Name() string           { return ProviderVeo }
func (a *VeoAdapter) Kind() domain.MediaKind { return domain.MediaKindVideo }

func (a *VeoAdapter) Generate(ctx context.Context, req domain.GenerationRequest) (domain.GenerationResult, error) {
	if a.client == nil || !a.client.HasCredentials() {
		return domain.GenerationResult{}, domain.AuthError(ProviderVeo, nil)
	}
	op, err := a.client.GenerateVideo(ctx, a.model, gemini.VideoRequest{
		Prompt:         req.Prompt,
		NegativePrompt: req.NegativePrompt,
		AspectRatio:    aspectOrDefault(req.AspectRatio),
		Duration:       fmt.Sprintf("%ds", durationSeconds(req.DurationHint)),
		Seed:           req.Seed,
	})
	if err != nil {
		return domain.GenerationResult{}, httpx.Classify(ProviderVeo, err)
	}
	a.logger.Debug().Str("provider", ProviderVeo).Str("operation", op.Name).Str("request_id", req.RequestID).Msg("video operation started")
	return a.operationResult(ctx, op)
}

// CheckStatus fetches the operation and downloads the video once done.
func (a *VeoAdapter) CheckStatus(ctx context.Context, handle string) (domain.GenerationResult, error) {
	if a.client == nil || !a.client.HasCredentials() {
		return domain.GenerationResult{}, domain.AuthError(ProviderVeo, nil)
	}
	op, err := a.client.GetOperation(ctx, handle)
	if err != nil {
		return domain.GenerationResult{}, httpx.Classify(ProviderVeo, err)
	}
	return a.operationResult(ctx, op)
}

func (a *VeoAdapter) operationResult(ctx context.Context, op gemini.Operation) (domain.GenerationResult, error) {
	res := domain.GenerationResult{
		Status:    domain.StatusPending,
		Provider:  ProviderVeo,
		Operation: op.Name,
		Progress:  op.Progress,
		Raw:       op.Raw,
	}
	if !op.Done {
		return res, nil
	}
	switch {
	case op.Error != "":
		res.Status = domain.StatusFailed
		res.Reason = op.Error
	case op.VideoURI == "":
		res.Status = domain.StatusFailed
		res.Reason = "operation finished without a video"
	default:
		data, mime, err := a.client.Download(ctx, op.VideoURI, a.downloadLimit)
		if err != nil {
			return domain.GenerationResult{}, httpx.Classify(ProviderVeo, fmt.Errorf("download video: %w", err))
		}
		if mime == "" || mime == "application/octet-stream" {
			mime = videoMIME
		}
		res.Status = domain.StatusCompleted
		res.Media = domain.InlineMedia(mime, data)
		res.Progress = 100
	}
	return res, nil
}

var _ domain.AsyncAdapter = (*VeoAdapter)(nil)
