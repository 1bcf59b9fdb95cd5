// Package vision describes product photos so composed prompts can name the
// product's visual features.
package vision

import (
	"context"
	"errors"
	"strings"

	"reelgen/internal/domain"
	"reelgen/internal/infra"
)

const describeInstruction = "Describe this product image in high detail. Focus on the main product, its visual features, colors, materials, and key identifiers. Do not describe the background. Output a single paragraph description."

// ErrNoImage is returned when a request carries no inline image bytes.
var ErrNoImage = errors.New("vision: image is required")

// DescribeRequest carries one product photo.
type DescribeRequest struct {
	Image       domain.MediaRef
	ProductName string
	Locale      string
}

// Description is the text produced by one describer.
type Description struct {
	Text     string `json:"description"`
	Provider string `json:"provider"`
}

type Describer interface {
	Name() string
	Describe(ctx context.Context, req DescribeRequest) (Description, error)
}

// Chain tries describers in order and ends with the static one, so Describe
// never fails except on cancellation.
type Chain struct {
	describers []Describer
	fallback   *StaticDescriber
	logger     *infra.Logger
}

func NewChain(logger *infra.Logger, describers ...Describer) *Chain {
	if logger == nil {
		logger = infra.NopLogger()
	}
	active := make([]Describer, 0, len(describers))
	for _, d := range describers {
		if d != nil {
			active = append(active, d)
		}
	}
	return &Chain{describers: active, fallback: NewStaticDescriber(), logger: logger}
}

func (c *Chain) Name() string { return "chain" }

func (c *Chain) Describe(ctx context.Context, req DescribeRequest) (Description, error) {
	for _, d := range c.describers {
		desc, err := d.Describe(ctx, req)
		if err == nil && strings.TrimSpace(desc.Text) != "" {
			return desc, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Description{}, ctxErr
		}
		c.logger.Warn().Err(err).Str("provider", d.Name()).Msg("vision: describer failed")
	}
	return c.fallback.Describe(ctx, req)
}

var _ Describer = (*Chain)(nil)
