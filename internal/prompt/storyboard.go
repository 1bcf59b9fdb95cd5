package prompt

import (
	"reelgen/internal/catalog"
	"reelgen/internal/domain"
)

// SharedFacets are reused across every scene so the storyboard reads as one sequence.
type SharedFacets struct {
	Persona    string `json:"persona"`
	Background string `json:"background"`
	Niche      string `json:"niche"`
	Style      string `json:"style"`
	Product    string `json:"product"`
}

// SceneDescriptor is one numbered storyboard entry.
type SceneDescriptor struct {
	Number  int                      `json:"scene_number"`
	Type    catalog.SceneType        `json:"scene_type"`
	Request domain.GenerationRequest `json:"request"`
}

// Storyboard is the ordered scene plan. Index i holds scene number i+1.
type Storyboard []SceneDescriptor

// BuildStoryboard composes one scene per type in catalog.SceneOrder.
func (c *Composer) BuildStoryboard(shared SharedFacets) (Storyboard, error) {
	board := make(Storyboard, 0, len(catalog.SceneOrder))
	for i, st := range catalog.SceneOrder {
		req, err := c.Compose(Facets{
			Persona:    shared.Persona,
			Background: shared.Background,
			Niche:      shared.Niche,
			Scene:      st,
			Style:      shared.Style,
			Product:    shared.Product,
		})
		if err != nil {
			return nil, err
		}
		board = append(board, SceneDescriptor{Number: i + 1, Type: st, Request: req})
	}
	return board, nil
}

// FacetsOf converts persisted project facets into storyboard inputs.
func FacetsOf(p domain.ProjectFacets) SharedFacets {
	return SharedFacets{
		Persona:    p.Persona,
		Background: p.Background,
		Niche:      p.Niche,
		Style:      p.Style,
		Product:    p.Product,
	}
}
