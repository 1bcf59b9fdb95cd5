package vision

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

const (
	geminiProviderName = "gemini"
	defaultGeminiModel = "gemini-1.5-flash"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiOptions configures the Gemini describer.
type GeminiOptions struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

// GeminiDescriber sends the photo inline to a Gemini vision model.
type GeminiDescriber struct {
	models contentGenerator
	model  string
}

func NewGeminiDescriber(ctx context.Context, opts GeminiOptions) (*GeminiDescriber, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("vision: gemini api key is required")
	}
	cfg := &genai.ClientConfig{
		APIKey:     opts.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: opts.HTTPClient,
	}
	if base := strings.TrimSpace(opts.BaseURL); base != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: base}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("vision: gemini client: %w", err)
	}
	return newGeminiDescriber(client.Models, opts.Model), nil
}

func newGeminiDescriber(models contentGenerator, model string) *GeminiDescriber {
	if strings.TrimSpace(model) == "" {
		model = defaultGeminiModel
	}
	return &GeminiDescriber{models: models, model: model}
}

func (g *GeminiDescriber) Name() string { return geminiProviderName }

func (g *GeminiDescriber) Describe(ctx context.Context, req DescribeRequest) (Description, error) {
	if !req.Image.Inline() {
		return Description{}, ErrNoImage
	}
	content := &genai.Content{
		Role: "user",
		Parts: []*genai.Part{
			genai.NewPartFromText(describeInstruction),
			genai.NewPartFromBytes(req.Image.Data, req.Image.MIME),
		},
	}
	result, err := g.models.GenerateContent(ctx, g.model, []*genai.Content{content}, nil)
	if err != nil {
		return Description{}, fmt.Errorf("vision: gemini: %w", err)
	}
	for _, candidate := range result.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if text := strings.TrimSpace(part.Text); text != "" {
				return Description{Text: text, Provider: geminiProviderName}, nil
			}
		}
	}
	return Description{}, errors.New("vision: gemini returned no text")
}

var _ Describer = (*GeminiDescriber)(nil)
