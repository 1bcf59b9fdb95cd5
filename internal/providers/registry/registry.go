// Package registry builds provider adapters for a credential bundle. Each
// adapter is an immutable value bound to one (provider, credential) pair.
package registry

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"reelgen/internal/domain"
	"reelgen/internal/infra"
	"reelgen/internal/infra/credentials"
	"reelgen/internal/providers/ark"
	"reelgen/internal/providers/gemini"
	"reelgen/internal/providers/huggingface"
	"reelgen/internal/providers/image"
	"reelgen/internal/providers/openaiclient"
	"reelgen/internal/providers/qwen"
	"reelgen/internal/providers/replicate"
	"reelgen/internal/providers/video"
	"reelgen/internal/providers/vision"
)

// Settings holds the non-secret endpoint and model configuration.
type Settings struct {
	GeminiBaseURL      string
	ImagenModel        string
	VeoModel           string
	VisionModel        string
	ReplicateBaseURL   string
	HuggingFaceBaseURL string
	QwenBaseURL        string
	QwenModel          string
	OpenAIBaseURL      string
	OpenAIVisionModel  string
	ArkBaseURL         string
	SeedreamModel      string
	SeedanceModel      string
	DownloadLimit      int64
}

// SettingsFromConfig copies the provider settings out of cfg.
func SettingsFromConfig(cfg *infra.Config) Settings {
	return Settings{
		GeminiBaseURL:      cfg.GeminiBaseURL,
		ImagenModel:        cfg.ImagenModel,
		VeoModel:           cfg.VeoModel,
		VisionModel:        cfg.VisionModel,
		ReplicateBaseURL:   cfg.ReplicateBaseURL,
		HuggingFaceBaseURL: cfg.HuggingFaceBaseURL,
		QwenBaseURL:        cfg.QwenBaseURL,
		QwenModel:          cfg.QwenModel,
		OpenAIBaseURL:      cfg.OpenAIBaseURL,
		OpenAIVisionModel:  cfg.OpenAIVisionModel,
		ArkBaseURL:         cfg.ArkBaseURL,
		SeedreamModel:      cfg.SeedreamModel,
		SeedanceModel:      cfg.SeedanceModel,
		DownloadLimit:      int64(cfg.MediaDownloadMaxMiB) << 20,
	}
}

// provider describes one adapter the registry can build.
type provider struct {
	kind       domain.MediaKind
	credential string
	build      func(r *Registry, secret string) domain.Adapter
}

var providers = map[string]provider{
	image.ProviderHuggingFace: {domain.MediaKindImage, credentials.ProviderHuggingFace, func(r *Registry, secret string) domain.Adapter {
		client := huggingface.NewClient(huggingface.Options{Token: secret, BaseURL: r.settings.HuggingFaceBaseURL, HTTPClient: r.httpClient, Logger: r.logger})
		return image.NewHuggingFaceAdapter(client, "", r.logger)
	}},
	image.ProviderImagen: {domain.MediaKindImage, credentials.ProviderGemini, func(r *Registry, secret string) domain.Adapter {
		return image.NewImagenAdapter(r.geminiClient(secret), r.settings.ImagenModel, r.logger)
	}},
	image.ProviderReplicateFlux: {domain.MediaKindImage, credentials.ProviderReplicate, func(r *Registry, secret string) domain.Adapter {
		return image.NewReplicateFluxAdapter(r.replicateClient(secret), "", r.logger)
	}},
	image.ProviderSeedream: {domain.MediaKindImage, credentials.ProviderArk, func(r *Registry, secret string) domain.Adapter {
		return image.NewSeedreamAdapter(r.arkClient(secret), r.settings.SeedreamModel, r.httpClient, r.logger)
	}},
	image.ProviderQwen: {domain.MediaKindImage, credentials.ProviderDashScope, func(r *Registry, secret string) domain.Adapter {
		client := qwen.NewClient(qwen.Options{APIKey: secret, BaseURL: r.settings.QwenBaseURL, Model: r.settings.QwenModel, HTTPClient: r.httpClient, Logger: r.logger})
		return image.NewQwenAdapter(client, r.logger)
	}},
	image.ProviderOpenAI: {domain.MediaKindImage, credentials.ProviderOpenAI, func(r *Registry, secret string) domain.Adapter {
		client := openaiclient.New(openaiclient.Options{APIKey: secret, BaseURL: r.settings.OpenAIBaseURL, HTTPClient: r.httpClient})
		return image.NewOpenAIAdapter(client, r.logger)
	}},
	video.ProviderVeo: {domain.MediaKindVideo, credentials.ProviderGemini, func(r *Registry, secret string) domain.Adapter {
		return video.NewVeoAdapter(r.geminiClient(secret), r.settings.VeoModel, r.settings.DownloadLimit, r.logger)
	}},
	video.ProviderReplicateLTX: {domain.MediaKindVideo, credentials.ProviderReplicate, func(r *Registry, secret string) domain.Adapter {
		return video.NewReplicateLTXAdapter(r.replicateClient(secret), "", r.logger)
	}},
	video.ProviderSeedance: {domain.MediaKindVideo, credentials.ProviderArk, func(r *Registry, secret string) domain.Adapter {
		return video.NewSeedanceAdapter(r.arkClient(secret), r.settings.SeedanceModel, r.logger)
	}},
}

// Registry constructs adapters and status checkers on demand.
type Registry struct {
	settings   Settings
	httpClient *http.Client
	logger     *infra.Logger
}

func New(settings Settings, httpClient *http.Client, logger *infra.Logger) *Registry {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = infra.NopLogger()
	}
	return &Registry{settings: settings, httpClient: httpClient, logger: logger}
}

// Known reports whether name is a registered provider of kind.
func Known(kind domain.MediaKind, name string) bool {
	p, ok := providers[name]
	return ok && p.kind == kind
}

// CredentialFor returns the credential name an adapter needs.
func CredentialFor(name string) (string, bool) {
	p, ok := providers[name]
	return p.credential, ok
}

// Adapters builds the adapters named in order for kind, skipping names that
// are unknown, of another kind, or lack a credential in creds.
func (r *Registry) Adapters(kind domain.MediaKind, names []string, creds domain.Credentials) []domain.Adapter {
	out := make([]domain.Adapter, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		p, ok := providers[name]
		if !ok || p.kind != kind {
			r.logger.Warn().Str("provider", name).Str("kind", string(kind)).Msg("registry: skipping unknown provider")
			continue
		}
		secret := creds.Get(p.credential)
		if secret == "" {
			continue
		}
		out = append(out, p.build(r, secret))
	}
	return out
}

// Adapter builds a single adapter by name. A missing credential is reported
// as domain.ErrAuthentication.
func (r *Registry) Adapter(name string, creds domain.Credentials) (domain.Adapter, error) {
	p, ok := providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownProvider, name)
	}
	secret := creds.Get(p.credential)
	if secret == "" {
		return nil, domain.AuthError(name, fmt.Errorf("%s credential missing", p.credential))
	}
	return p.build(r, secret), nil
}

// StatusChecker returns the status checker for an asynchronous provider.
func (r *Registry) StatusChecker(name string, creds domain.Credentials) (domain.StatusChecker, error) {
	adapter, err := r.Adapter(name, creds)
	if err != nil {
		return nil, err
	}
	checker, ok := adapter.(domain.StatusChecker)
	if !ok {
		return nil, fmt.Errorf("%w: %q is synchronous", domain.ErrUnknownProvider, name)
	}
	return checker, nil
}

// Describer builds the product description chain for creds.
func (r *Registry) Describer(ctx context.Context, creds domain.Credentials) vision.Describer {
	var describers []vision.Describer
	if key := creds.Get(credentials.ProviderGemini); key != "" {
		d, err := vision.NewGeminiDescriber(ctx, vision.GeminiOptions{
			APIKey:     key,
			Model:      r.settings.VisionModel,
			HTTPClient: r.httpClient,
		})
		if err != nil {
			r.logger.Warn().Err(err).Msg("registry: gemini describer unavailable")
		} else {
			describers = append(describers, d)
		}
	}
	if client := openaiclient.New(openaiclient.Options{APIKey: creds.Get(credentials.ProviderOpenAI), BaseURL: r.settings.OpenAIBaseURL, HTTPClient: r.httpClient}); client != nil {
		describers = append(describers, vision.NewOpenAIDescriber(client, r.settings.OpenAIVisionModel))
	}
	return vision.NewChain(r.logger, describers...)
}

func (r *Registry) geminiClient(secret string) *gemini.Client {
	return gemini.NewClient(gemini.Options{APIKey: secret, BaseURL: r.settings.GeminiBaseURL, HTTPClient: r.httpClient, Logger: r.logger})
}

func (r *Registry) replicateClient(secret string) *replicate.Client {
	return replicate.NewClient(replicate.Options{Token: secret, BaseURL: r.settings.ReplicateBaseURL, HTTPClient: r.httpClient, Logger: r.logger})
}

func (r *Registry) arkClient(secret string) *ark.Client {
	return ark.NewClient(ark.Options{APIKey: secret, BaseURL: r.settings.ArkBaseURL, Logger: r.logger})
}
