// Package prompt turns facet identifiers into generation requests.
package prompt

import (
	"fmt"
	"strings"

	"reelgen/internal/catalog"
	"reelgen/internal/domain"
)

const (
	// Separator joins every fragment of a composed prompt.
	Separator = ", "
	// NegativePrompt is shared by every scene regardless of facets.
	NegativePrompt = "blurry, distorted face, extra limbs, unnatural pose, overexposed, underexposed, pixelated"

	sceneAspectRatio = "9:16"
)

// CompositionError reports a facet identifier missing from the catalog.
type CompositionError struct {
	Facet string
	Key   string
}

func (e *CompositionError) Error() string {
	return fmt.Sprintf("compose: unknown %s %q", e.Facet, e.Key)
}

// Is lets errors.Is(err, domain.ErrInvalidPrompt) match composition failures.
func (e *CompositionError) Is(target error) bool {
	return target == domain.ErrInvalidPrompt
}

// Facets are the caller inputs of a single scene prompt.
type Facets struct {
	Persona      string            `json:"persona"`
	Background   string            `json:"background"`
	Niche        string            `json:"niche"`
	Scene        catalog.SceneType `json:"scene"`
	Style        string            `json:"style"`
	Product      string            `json:"product"`
	CustomAction string            `json:"custom_action,omitempty"`
}

// Composer resolves facets against a catalog. It holds no mutable state.
type Composer struct {
	catalog *catalog.Catalog
}

// NewComposer binds a composer to a catalog; nil selects the built-in one.
func NewComposer(c *catalog.Catalog) *Composer {
	if c == nil {
		c = catalog.Default()
	}
	return &Composer{catalog: c}
}

// Catalog exposes the catalog the composer resolves against.
func (c *Composer) Catalog() *catalog.Catalog {
	return c.catalog
}

// Resolve looks up every facet, failing on the first unknown key.
func (c *Composer) Resolve(f Facets) (Selection, error) {
	persona, ok := c.catalog.Persona(f.Persona)
	if !ok {
		return Selection{}, &CompositionError{Facet: "persona", Key: f.Persona}
	}
	background, ok := c.catalog.Background(f.Background)
	if !ok {
		return Selection{}, &CompositionError{Facet: "background", Key: f.Background}
	}
	niche, ok := c.catalog.Niche(f.Niche)
	if !ok {
		return Selection{}, &CompositionError{Facet: "niche", Key: f.Niche}
	}
	scene, ok := c.catalog.Scene(f.Scene)
	if !ok {
		return Selection{}, &CompositionError{Facet: "scene", Key: string(f.Scene)}
	}
	style, ok := c.catalog.Style(f.Style)
	if !ok {
		return Selection{}, &CompositionError{Facet: "style", Key: f.Style}
	}
	return Selection{
		Persona:      persona,
		Background:   background,
		Niche:        niche,
		Scene:        scene,
		Style:        style,
		Product:      f.Product,
		CustomAction: strings.TrimSpace(f.CustomAction),
	}, nil
}

// Compose builds the video generation request for one scene. Identical
// facets always produce an identical prompt.
func (c *Composer) Compose(f Facets) (domain.GenerationRequest, error) {
	sel, err := c.Resolve(f)
	if err != nil {
		return domain.GenerationRequest{}, err
	}
	width, height := domain.AspectDimensions(sceneAspectRatio)
	return domain.GenerationRequest{
		Prompt:         Assemble(Render(sel)),
		NegativePrompt: NegativePrompt,
		Kind:           domain.MediaKindVideo,
		AspectRatio:    sceneAspectRatio,
		DurationHint:   sel.Scene.Duration,
		Width:          width,
		Height:         height,
	}, nil
}

// Assemble joins rendered fragments in order.
func Assemble(parts []NamedFragment) string {
	texts := make([]string, 0, len(parts))
	for _, p := range parts {
		texts = append(texts, p.Text)
	}
	return strings.Join(texts, Separator)
}
