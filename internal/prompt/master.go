package prompt

import (
	"fmt"
	"math/rand/v2"

	"reelgen/internal/domain"
)

const (
	masterAspectRatio = "1:1"
	minSeed           = 100000
	seedSpan          = 900000
)

// MasterImagePrompt builds the product still that anchors a storyboard.
func (c *Composer) MasterImagePrompt(shared SharedFacets) (domain.GenerationRequest, error) {
	background, ok := c.catalog.Background(shared.Background)
	if !ok {
		return domain.GenerationRequest{}, &CompositionError{Facet: "background", Key: shared.Background}
	}
	style, ok := c.catalog.Style(shared.Style)
	if !ok {
		return domain.GenerationRequest{}, &CompositionError{Facet: "style", Key: shared.Style}
	}
	width, height := domain.AspectDimensions(masterAspectRatio)
	return domain.GenerationRequest{
		Prompt: fmt.Sprintf("Professional product photography of %s, %s, %s style, high quality, 4k, photorealistic",
			shared.Product, background.Description, style.Key),
		NegativePrompt: NegativePrompt,
		Kind:           domain.MediaKindImage,
		AspectRatio:    masterAspectRatio,
		Width:          width,
		Height:         height,
	}, nil
}

// NewSeed draws a six digit seed for "regenerate" requests.
func NewSeed() int {
	return minSeed + rand.IntN(seedSpan)
}
