package video

import (
	"context"

	"reelgen/internal/domain"
	"reelgen/internal/infra"
	"reelgen/internal/providers/httpx"
	"reelgen/internal/providers/replicate"
)

// DefaultLTXModel is the Replicate model used for video.
const DefaultLTXModel = "lightricks/ltx-video"

type predictionClient interface {
	HasCredentials() bool
	CreatePrediction(ctx context.Context, model string, input map[string]any) (replicate.Prediction, error)
	GetPrediction(ctx context.Context, id string) (replicate.Prediction, error)
}

// ReplicateLTXAdapter renders portrait clips with LTX-Video.
type ReplicateLTXAdapter struct {
	client predictionClient
	model  string
	logger *infra.Logger
}

func NewReplicateLTXAdapter(client predictionClient, model string, logger *infra.Logger) *ReplicateLTXAdapter {
	if model == "" {
		model = DefaultLTXModel
	}
	return &ReplicateLTXAdapter{client: client, model: model, logger: loggerOrNop(logger)}
}

func (a *ReplicateLTXAdapter) Name() string           { return ProviderReplicateLTX }
func (a *ReplicateLTXAdapter) Kind() domain.MediaKind { return domain.MediaKindVideo }

func (a *ReplicateLTXAdapter) Generate(ctx context.Context, req domain.GenerationRequest) (domain.GenerationResult, error) {
	if a.client == nil || !a.client.HasCredentials() {
		return domain.GenerationResult{}, domain.AuthError(ProviderReplicateLTX, nil)
	}
	width, height := domain.AspectDimensions(aspectOrDefault(req.AspectRatio))
	input := map[string]any{
		"prompt":              req.Prompt,
		"negative_prompt":     req.NegativePrompt,
		"num_frames":          97,
		"fps":                 24,
		"width":               width,
		"height":              height,
		"guidance_scale":      7.5,
		"num_inference_steps": 50,
	}
	if req.Seed > 0 {
		input["seed"] = req.Seed
	}
	pred, err := a.client.CreatePrediction(ctx, a.model, input)
	if err != nil {
		return domain.GenerationResult{}, httpx.Classify(ProviderReplicateLTX, err)
	}
	a.logger.Debug().Str("provider", ProviderReplicateLTX).Str("operation", pred.ID).Str("request_id", req.RequestID).Msg("prediction started")
	return ltxResult(pred, false)
}

func (a *ReplicateLTXAdapter) CheckStatus(ctx context.Context, handle string) (domain.GenerationResult, error) {
	if a.client == nil || !a.client.HasCredentials() {
		return domain.GenerationResult{}, domain.AuthError(ProviderReplicateLTX, nil)
	}
	pred, err := a.client.GetPrediction(ctx, handle)
	if err != nil {
		return domain.GenerationResult{}, httpx.Classify(ProviderReplicateLTX, err)
	}
	return ltxResult(pred, true)
}

func ltxResult(pred replicate.Prediction, polled bool) (domain.GenerationResult, error) {
	res, err := pred.Result(ProviderReplicateLTX)
	if err != nil {
		if polled {
			return domain.GenerationResult{Status: domain.StatusFailed, Provider: ProviderReplicateLTX, Operation: pred.ID, Reason: err.Error(), Raw: pred.Raw}, nil
		}
		return domain.GenerationResult{}, domain.TransientError(ProviderReplicateLTX, err)
	}
	if res.Status == domain.StatusCompleted {
		res.Media.MIME = videoMIME
	}
	return res, nil
}

var _ domain.AsyncAdapter = (*ReplicateLTXAdapter)(nil)
