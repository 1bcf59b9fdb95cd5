package image

import (
	"context"
	"errors"

	"reelgen/internal/domain"
	"reelgen/internal/infra"
	"reelgen/internal/providers/gemini"
	"reelgen/internal/providers/httpx"
)

// DefaultImagenModel is used when IMAGEN_MODEL is unset.
const DefaultImagenModel = "imagen-3.0-generate-001"

type imagenClient interface {
	HasCredentials() bool
	Predict(ctx context.Context, model, prompt, aspectRatio, negative string, seed int) ([]gemini.Image, error)
}

// ImagenAdapter generates images synchronously with Imagen predictions.
type ImagenAdapter struct {
	client imagenClient
	model  string
	logger *infra.Logger
}

func NewImagenAdapter(client imagenClient, model string, logger *infra.Logger) *ImagenAdapter {
	if model == "" {
		model = DefaultImagenModel
	}
	return &ImagenAdapter{client: client, model: model, logger: loggerOrNop(logger)}
}

func (a *ImagenAdapter) Name() string           { return ProviderImagen }
func (a *ImagenAdapter) Kind() domain.MediaKind { return domain.MediaKindImage }

func (a *ImagenAdapter) Generate(ctx context.Context, req domain.GenerationRequest) (domain.GenerationResult, error) {
	if a.client == nil || !a.client.HasCredentials() {
		return domain.GenerationResult{}, domain.AuthError(ProviderImagen, nil)
	}
	images, err := a.client.Predict(ctx, a.model, req.Prompt, imagenAspect(req.AspectRatio), req.NegativePrompt, req.Seed)
	if err != nil {
		return domain.GenerationResult{}, httpx.Classify(ProviderImagen, err)
	}
	if len(images) == 0 {
		return domain.GenerationResult{}, domain.TransientError(ProviderImagen, errors.New("no image generated"))
	}
	a.logger.Debug().Str("provider", ProviderImagen).Str("request_id", req.RequestID).Msg("image generated")
	return completed(ProviderImagen, images[0].MIME, images[0].Data, a.model), nil
}

// imagenAspect maps ratios onto the set Imagen accepts.
func imagenAspect(aspect string) string {
	switch aspect {
	case "1:1", "9:16", "16:9", "3:4", "4:3":
		return aspect
	case "4:5", "2:3":
		return "3:4"
	case "3:2":
		return "4:3"
	default:
		return "1:1"
	}
}

var _ domain.Adapter = (*ImagenAdapter)(nil)
