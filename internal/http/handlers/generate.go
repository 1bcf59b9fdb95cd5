package handlers

import (
	"net/http"
	"strings"

	"reelgen/internal/domain"
	"reelgen/internal/middleware"
	"reelgen/internal/prompt"
)

type imageRequest struct {
	Prompt         string   `json:"prompt" validate:"required,notblank,max=4000"`
	NegativePrompt string   `json:"negative_prompt" validate:"max=2000"`
	AspectRatio    string   `json:"aspect_ratio" validate:"omitempty,oneof=1:1 16:9 9:16 4:5 3:2"`
	Providers      []string `json:"providers" validate:"omitempty,dive,required"`
	Seed           int      `json:"seed" validate:"omitempty,min=100000,max=999999"`
	Regenerate     bool     `json:"regenerate"`
}

type masterImageRequest struct {
	Background string   `json:"background" validate:"required"`
	Style      string   `json:"style" validate:"required"`
	Product    string   `json:"product" validate:"required,notblank,max=200"`
	Providers  []string `json:"providers" validate:"omitempty,dive,required"`
	Seed       int      `json:"seed" validate:"omitempty,min=100000,max=999999"`
	Regenerate bool     `json:"regenerate"`
}

type videoRequest struct {
	Prompt         string   `json:"prompt" validate:"required,notblank,max=4000"`
	NegativePrompt string   `json:"negative_prompt" validate:"max=2000"`
	AspectRatio    string   `json:"aspect_ratio" validate:"omitempty,oneof=16:9 9:16"`
	Duration       string   `json:"duration" validate:"max=32"`
	Providers      []string `json:"providers" validate:"omitempty,dive,required"`
	Seed           int      `json:"seed" validate:"omitempty,min=100000,max=999999"`
	Regenerate     bool     `json:"regenerate"`
}

type generationResponse struct {
	Request domain.GenerationRequest `json:"request"`
	Result  domain.GenerationResult  `json:"result"`
}

// seed picks the request seed: explicit wins, "regenerate" draws a new one.
func seed(explicit int, regenerate bool) int {
	if explicit > 0 {
		return explicit
	}
	if regenerate {
		return prompt.NewSeed()
	}
	return 0
}

func (a *App) GenerateImage(w http.ResponseWriter, r *http.Request) {
	var req imageRequest
	if !a.decode(w, r, &req) {
		return
	}
	aspect := req.AspectRatio
	if aspect == "" {
		aspect = "1:1"
	}
	width, height := domain.AspectDimensions(aspect)
	a.generate(w, r, domain.GenerationRequest{
		Prompt:         strings.TrimSpace(req.Prompt),
		NegativePrompt: req.NegativePrompt,
		Kind:           domain.MediaKindImage,
		AspectRatio:    aspect,
		Width:          width,
		Height:         height,
		Seed:           seed(req.Seed, req.Regenerate),
	}, req.Providers)
}

func (a *App) GenerateMasterImage(w http.ResponseWriter, r *http.Request) {
	var req masterImageRequest
	if !a.decode(w, r, &req) {
		return
	}
	gen, err := a.Composer.MasterImagePrompt(prompt.SharedFacets{
		Background: req.Background,
		Style:      req.Style,
		Product:    req.Product,
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.generate(w, r, gen.WithSeed(seed(req.Seed, req.Regenerate)), req.Providers)
}

func (a *App) GenerateVideo(w http.ResponseWriter, r *http.Request) {
	var req videoRequest
	if !a.decode(w, r, &req) {
		return
	}
	aspect := req.AspectRatio
	if aspect == "" {
		aspect = "9:16"
	}
	duration := req.Duration
	if duration == "" {
		duration = "4 seconds"
	}
	width, height := domain.AspectDimensions(aspect)
	negative := req.NegativePrompt
	if negative == "" {
		negative = prompt.NegativePrompt
	}
	a.generate(w, r, domain.GenerationRequest{
		Prompt:         strings.TrimSpace(req.Prompt),
		NegativePrompt: negative,
		Kind:           domain.MediaKindVideo,
		AspectRatio:    aspect,
		DurationHint:   duration,
		Width:          width,
		Height:         height,
		Seed:           seed(req.Seed, req.Regenerate),
	}, req.Providers)
}

// generate runs req through the caller's session orchestrator. A pending
// result is answered with 202 and the operation handle to poll.
func (a *App) generate(w http.ResponseWriter, r *http.Request, req domain.GenerationRequest, providers []string) {
	creds, err := a.credentials(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	req = req.WithRequestID(middleware.RequestIDFromContext(r.Context()))
	orch := a.orchestrator(creds)

	var res domain.GenerationResult
	if len(providers) > 0 && a.Providers != nil {
		res, err = orch.GenerateWith(r.Context(), req, a.Providers.Adapters(req.Kind, providers, creds))
	} else {
		res, err = orch.Generate(r.Context(), req)
	}
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.Logger.Info().
		Str("request_id", req.RequestID).
		Str("kind", string(req.Kind)).
		Str("provider", res.Provider).
		Str("status", string(res.Status)).
		Int("attempts", len(res.Attempts)).
		Msg("generation finished")

	code := http.StatusOK
	if res.Status == domain.StatusPending {
		code = http.StatusAccepted
	}
	a.json(w, code, generationResponse{Request: req, Result: res})
}
