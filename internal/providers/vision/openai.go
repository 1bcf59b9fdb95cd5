package vision

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"reelgen/internal/providers/openaiclient"
)

const (
	openAIProviderName = "openai"
	defaultOpenAIModel = "gpt-4o-mini"
)

type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIDescriber sends the photo as a data URL to a vision chat model.
type OpenAIDescriber struct {
	client chatCompleter
	model  string
}

func NewOpenAIDescriber(client chatCompleter, model string) *OpenAIDescriber {
	if strings.TrimSpace(model) == "" {
		model = defaultOpenAIModel
	}
	return &OpenAIDescriber{client: client, model: model}
}

func (o *OpenAIDescriber) Name() string { return openAIProviderName }

func (o *OpenAIDescriber) Describe(ctx context.Context, req DescribeRequest) (Description, error) {
	if !req.Image.Inline() {
		return Description{}, ErrNoImage
	}
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     o.model,
		MaxTokens: 300,
		Messages: []openai.ChatCompletionMessage{{
			Role: openai.ChatMessageRoleUser,
			MultiContent: []openai.ChatMessagePart{
				{Type: openai.ChatMessagePartTypeText, Text: describeInstruction},
				{
					Type: openai.ChatMessagePartTypeImageURL,
					ImageURL: &openai.ChatMessageImageURL{
						URL:    req.Image.String(),
						Detail: openai.ImageURLDetailLow,
					},
				},
			},
		}},
	})
	if err != nil {
		return Description{}, fmt.Errorf("vision: openai: %w", openaiclient.StatusError(err))
	}
	if len(resp.Choices) == 0 {
		return Description{}, errors.New("vision: openai returned no choices")
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return Description{}, errors.New("vision: openai returned empty content")
	}
	return Description{Text: text, Provider: openAIProviderName}, nil
}

var _ Describer = (*OpenAIDescriber)(nil)
