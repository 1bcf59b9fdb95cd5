package image

import (
	"context"

	"reelgen/internal/domain"
	"reelgen/internal/infra"
	"reelgen/internal/providers/httpx"
	"reelgen/internal/providers/replicate"
)

// DefaultFluxModel is the Replicate model used for images.
const DefaultFluxModel = "black-forest-labs/flux-schnell"

type predictionClient interface {
	HasCredentials() bool
	CreatePrediction(ctx context.Context, model string, input map[string]any) (replicate.Prediction, error)
	GetPrediction(ctx context.Context, id string) (replicate.Prediction, error)
}

// ReplicateFluxAdapter starts Flux predictions and reports them as pending
// operations to be polled with CheckStatus.
type ReplicateFluxAdapter struct {
	client predictionClient
	model  string
	logger *infra.Logger
}

func NewReplicateFluxAdapter(client predictionClient, model string, logger *infra.Logger) *ReplicateFluxAdapter {
	if model == "" {
		model = DefaultFluxModel
	}
	return &ReplicateFluxAdapter{client: client, model: model, logger: loggerOrNop(logger)}
}

func (a *ReplicateFluxAdapter) Name() string           { return ProviderReplicateFlux }
func (a *ReplicateFluxAdapter) Kind() domain.MediaKind { return domain.MediaKindImage }

func (a *ReplicateFluxAdapter) Generate(ctx context.Context, req domain.GenerationRequest) (domain.GenerationResult, error) {
	if a.client == nil || !a.client.HasCredentials() {
		return domain.GenerationResult{}, domain.AuthError(ProviderReplicateFlux, nil)
	}
	aspect := req.AspectRatio
	if aspect == "" {
		aspect = "1:1"
	}
	input := map[string]any{
		"prompt":        req.Prompt,
		"aspect_ratio":  aspect,
		"output_format": "png",
		"go_fast":       true,
	}
	if req.Seed > 0 {
		input["seed"] = req.Seed
	}
	pred, err := a.client.CreatePrediction(ctx, a.model, input)
	if err != nil {
		return domain.GenerationResult{}, httpx.Classify(ProviderReplicateFlux, err)
	}
	a.logger.Debug().Str("provider", ProviderReplicateFlux).Str("operation", pred.ID).Str("request_id", req.RequestID).Msg("prediction started")
	return predictionResult(ProviderReplicateFlux, pred, false)
}

// CheckStatus reports the current state of a prediction.
func (a *ReplicateFluxAdapter) CheckStatus(ctx context.Context, handle string) (domain.GenerationResult, error) {
	if a.client == nil || !a.client.HasCredentials() {
		return domain.GenerationResult{}, domain.AuthError(ProviderReplicateFlux, nil)
	}
	pred, err := a.client.GetPrediction(ctx, handle)
	if err != nil {
		return domain.GenerationResult{}, httpx.Classify(ProviderReplicateFlux, err)
	}
	return predictionResult(ProviderReplicateFlux, pred, true)
}

// predictionResult maps a prediction for provider. A finished prediction that
// carries no output falls back while submitting and fails the job once polled.
func predictionResult(provider string, pred replicate.Prediction, polled bool) (domain.GenerationResult, error) {
	res, err := pred.Result(provider)
	if err != nil {
		if polled {
			return domain.GenerationResult{Status: domain.StatusFailed, Provider: provider, Operation: pred.ID, Reason: err.Error(), Raw: pred.Raw}, nil
		}
		return domain.GenerationResult{}, domain.TransientError(provider, err)
	}
	if res.Status == domain.StatusCompleted {
		res.Media.MIME = "image/png"
	}
	return res, nil
}

var _ domain.AsyncAdapter = (*ReplicateFluxAdapter)(nil)
