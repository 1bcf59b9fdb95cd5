package orchestrator

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"reelgen/internal/domain"
)

// Chains maps a media kind to the provider names tried for it, in priority order.
type Chains map[domain.MediaKind][]string

// DefaultChains returns the built-in priority order. Providers without a
// credential are filtered out per request, so free tiers come first.
func DefaultChains() Chains {
	return Chains{
		domain.MediaKindImage: {"huggingface", "imagen", "replicate-flux", "seedream", "qwen", "openai"},
		domain.MediaKindVideo: {"veo", "replicate-ltx", "seedance"},
	}
}

type chainFile struct {
	Image []string `yaml:"image"`
	Video []string `yaml:"video"`
}

// LoadChains reads the chain file at path (optional) on top of the defaults,
// then applies the per-kind overrides. Empty lists leave a kind unchanged.
func LoadChains(path string, imageOverride, videoOverride []string) (Chains, error) {
	chains := DefaultChains()
	if strings.TrimSpace(path) != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("orchestrator: read chain file: %w", err)
		}
		parsed, err := ParseChains(raw)
		if err != nil {
			return nil, err
		}
		for kind, names := range parsed {
			chains[kind] = names
		}
	}
	if list := normalize(imageOverride); len(list) > 0 {
		chains[domain.MediaKindImage] = list
	}
	if list := normalize(videoOverride); len(list) > 0 {
		chains[domain.MediaKindVideo] = list
	}
	return chains, nil
}

// ParseChains decodes a YAML document with optional image and video lists.
func ParseChains(raw []byte) (Chains, error) {
	var file chainFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("orchestrator: parse chain file: %w", err)
	}
	out := Chains{}
	if list := normalize(file.Image); len(list) > 0 {
		out[domain.MediaKindImage] = list
	}
	if list := normalize(file.Video); len(list) > 0 {
		out[domain.MediaKindVideo] = list
	}
	return out, nil
}

// For returns a copy of the chain for kind.
func (c Chains) For(kind domain.MediaKind) []string {
	return slices.Clone(c[kind])
}

func normalize(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if n != "" && !slices.Contains(out, n) {
			out = append(out, n)
		}
	}
	return out
}
