package video

import (
	"context"
	"fmt"

	"reelgen/internal/domain"
	"reelgen/internal/infra"
	"reelgen/internal/providers/ark"
	"reelgen/internal/providers/httpx"
)

// DefaultSeedanceModel is used when SEEDANCE_MODEL is unset.
const DefaultSeedanceModel = "seedance-1-0-pro-250528"

type taskClient interface {
	HasCredentials() bool
	CreateVideoTask(ctx context.Context, model, prompt string) (string, error)
	GetVideoTask(ctx context.Context, id string) (ark.Task, error)
}

// SeedanceAdapter submits Seedance text-to-video tasks on Volcengine Ark.
type SeedanceAdapter struct {
	client taskClient
	model  string
	logger *infra.Logger
}

func NewSeedanceAdapter(client taskClient, model string, logger *infra.Logger) *SeedanceAdapter {
	if model == "" {
		model = DefaultSeedanceModel
	}
	return &SeedanceAdapter{client: client, model: model, logger: loggerOrNop(logger)}
}

func (a *SeedanceAdapter) Name() string           { return ProviderSeedance }
func (a *SeedanceAdapter) Kind() domain.MediaKind { return domain.MediaKindVideo }

func (a *SeedanceAdapter) Generate(ctx context.Context, req domain.GenerationRequest) (domain.GenerationResult, error) {
	if a.client == nil || !a.client.HasCredentials() {
		return domain.GenerationResult{}, domain.AuthError(ProviderSeedance, nil)
	}
	id, err := a.client.CreateVideoTask(ctx, a.model, seedancePrompt(req))
	if err != nil {
		return domain.GenerationResult{}, httpx.Classify(ProviderSeedance, err)
	}
	a.logger.Debug().Str("provider", ProviderSeedance).Str("operation", id).Str("request_id", req.RequestID).Msg("video task created")
	return domain.GenerationResult{Status: domain.StatusPending, Provider: ProviderSeedance, Operation: id}, nil
}

func (a *SeedanceAdapter) CheckStatus(ctx context.Context, handle string) (domain.GenerationResult, error) {
	if a.client == nil || !a.client.HasCredentials() {
		return domain.GenerationResult{}, domain.AuthError(ProviderSeedance, nil)
	}
	task, err := a.client.GetVideoTask(ctx, handle)
	if err != nil {
		return domain.GenerationResult{}, httpx.Classify(ProviderSeedance, err)
	}
	res := domain.GenerationResult{
		Status:    domain.StatusPending,
		Provider:  ProviderSeedance,
		Operation: handle,
		Raw:       task.Raw,
	}
	switch task.Status {
	case ark.TaskSucceeded:
		if task.VideoURL == "" {
			res.Status = domain.StatusFailed
			res.Reason = fmt.Sprintf("task %s succeeded without video", handle)
			return res, nil
		}
		res.Status = domain.StatusCompleted
		res.Media = domain.RemoteMedia(task.VideoURL, videoMIME)
		res.Progress = 100
	case ark.TaskFailed, ark.TaskCancelled:
		res.Status = domain.StatusFailed
		res.Reason = task.Error
		if res.Reason == "" {
			res.Reason = "task " + task.Status
		}
	case ark.TaskRunning:
		res.Progress = 50
	}
	return res, nil
}

// seedancePrompt appends the generation flags Seedance reads from text content.
func seedancePrompt(req domain.GenerationRequest) string {
	prompt := req.Prompt
	if req.NegativePrompt != "" {
		prompt += ". Avoid: " + req.NegativePrompt
	}
	prompt += fmt.Sprintf(" --ratio %s --duration 5", aspectOrDefault(req.AspectRatio))
	if req.Seed > 0 {
		prompt += fmt.Sprintf(" --seed %d", req.Seed)
	}
	return prompt
}

var _ domain.AsyncAdapter = (*SeedanceAdapter)(nil)
