// Package image holds the image generation adapters. Each adapter wraps one
// backend client configured with a single credential and normalizes its
// response into a domain.GenerationResult.
package image

import (
	"bytes"
	"encoding/json"
	stdimage "image"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	_ "golang.org/x/image/webp"

	"reelgen/internal/domain"
	"reelgen/internal/infra"
)

// Provider names as they appear in chain configuration.
const (
	ProviderHuggingFace   = "huggingface"
	ProviderImagen        = "imagen"
	ProviderReplicateFlux = "replicate-flux"
	ProviderSeedream      = "seedream"
	ProviderQwen          = "qwen"
	ProviderOpenAI        = "openai"
)

// Asset metadata attached to the raw payload of inline results.
type assetInfo struct {
	MIME   string `json:"mime"`
	Bytes  int    `json:"bytes"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
	Source string `json:"source,omitempty"`
}

func completed(provider, mime string, data []byte, source string) domain.GenerationResult {
	mime = normalizeFormat(mime, data)
	info := assetInfo{MIME: mime, Bytes: len(data), Source: source}
	info.Width, info.Height = probeDimensions(data)
	raw, _ := json.Marshal(info)
	return domain.GenerationResult{
		Status:   domain.StatusCompleted,
		Media:    domain.InlineMedia(mime, data),
		Provider: provider,
		Raw:      raw,
	}
}

// probeDimensions decodes only the image header; unknown formats yield zeros.
func probeDimensions(data []byte) (int, int) {
	cfg, _, err := stdimage.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0
	}
	return cfg.Width, cfg.Height
}

func normalizeFormat(mime string, data []byte) string {
	mime = strings.ToLower(strings.TrimSpace(mime))
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	switch mime {
	case "image/jpeg", "image/jpg":
		return "image/jpeg"
	case "image/png", "image/webp":
		return mime
	}
	if _, format, err := stdimage.DecodeConfig(bytes.NewReader(data)); err == nil {
		return "image/" + format
	}
	if strings.HasPrefix(mime, "image/") {
		return mime
	}
	return "image/png"
}

func loggerOrNop(logger *infra.Logger) *infra.Logger {
	if logger == nil {
		return infra.NopLogger()
	}
	return logger
}
