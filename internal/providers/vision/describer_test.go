package vision

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"google.golang.org/genai"

	"reelgen/internal/domain"
)

func photo() domain.MediaRef {
	return domain.InlineMedia("image/jpeg", []byte{0xff, 0xd8, 0xff})
}

type stubModels struct {
	model    string
	contents []*genai.Content
	resp     *genai.GenerateContentResponse
	err      error
}

func (s *stubModels) GenerateContent(_ context.Context, model string, contents []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	s.model = model
	s.contents = contents
	return s.resp, s.err
}

func TestGeminiDescriber(t *testing.T) {
	stub := &stubModels{resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{
		{Content: &genai.Content{Parts: []*genai.Part{{Text: "  An amber glass dropper bottle.  "}}}},
	}}}
	d := newGeminiDescriber(stub, "")

	desc, err := d.Describe(context.Background(), DescribeRequest{Image: photo()})
	if err != nil {
		t.Fatalf("Describe returned error: %v", err)
	}
	if desc.Text != "An amber glass dropper bottle." || desc.Provider != "gemini" {
		t.Fatalf("unexpected description %#v", desc)
	}
	if stub.model != "gemini-1.5-flash" {
		t.Fatalf("model = %q", stub.model)
	}
	parts := stub.contents[0].Parts
	if len(parts) != 2 || parts[0].Text != describeInstruction || parts[1].InlineData == nil || parts[1].InlineData.MIMEType != "image/jpeg" {
		t.Fatalf("unexpected parts %#v", parts)
	}
}

func TestGeminiDescriberRequiresInlineImage(t *testing.T) {
	d := newGeminiDescriber(&stubModels{}, "")
	if _, err := d.Describe(context.Background(), DescribeRequest{Image: domain.RemoteMedia("https://x/y.jpg", "")}); !errors.Is(err, ErrNoImage) {
		t.Fatalf("expected ErrNoImage, got %v", err)
	}
}

type stubChat struct {
	req  openai.ChatCompletionRequest
	resp openai.ChatCompletionResponse
	err  error
}

func (s *stubChat) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	s.req = req
	return s.resp, s.err
}

func TestOpenAIDescriber(t *testing.T) {
	stub := &stubChat{resp: openai.ChatCompletionResponse{Choices: []openai.ChatCompletionChoice{
		{Message: openai.ChatCompletionMessage{Content: "A white tube of sunscreen."}},
	}}}
	desc, err := NewOpenAIDescriber(stub, "").Describe(context.Background(), DescribeRequest{Image: photo()})
	if err != nil {
		t.Fatalf("Describe returned error: %v", err)
	}
	if desc.Text != "A white tube of sunscreen." || desc.Provider != "openai" {
		t.Fatalf("unexpected description %#v", desc)
	}
	parts := stub.req.Messages[0].MultiContent
	if len(parts) != 2 || !strings.HasPrefix(parts[1].ImageURL.URL, "data:image/jpeg;base64,") {
		t.Fatalf("unexpected message parts %#v", parts)
	}
}

func TestStaticDescriberLocales(t *testing.T) {
	s := NewStaticDescriber()
	tests := []struct {
		locale, product, want string
	}{
		{"id-ID", "serum vitamin c", "Serum Vitamin C dengan kemasan rapi dan label yang jelas"},
		{"en", "serum vitamin c", "Serum Vitamin C in neat packaging with a clearly visible label"},
		{"", "", "A neatly packaged product with a clearly visible label"},
		{"id", "", "Produk dengan kemasan rapi dan label yang jelas"},
	}
	for _, tc := range tests {
		desc, err := s.Describe(context.Background(), DescribeRequest{Locale: tc.locale, ProductName: tc.product})
		if err != nil {
			t.Fatalf("Describe returned error: %v", err)
		}
		if desc.Text != tc.want {
			t.Fatalf("Describe(%q, %q) = %q, want %q", tc.locale, tc.product, desc.Text, tc.want)
		}
	}
}

func TestChainFallsThroughToStatic(t *testing.T) {
	gemini := newGeminiDescriber(&stubModels{err: errors.New("quota exceeded")}, "")
	openaiDesc := NewOpenAIDescriber(&stubChat{err: &openai.APIError{HTTPStatusCode: http.StatusUnauthorized}}, "")
	chain := NewChain(nil, gemini, nil, openaiDesc)

	desc, err := chain.Describe(context.Background(), DescribeRequest{Image: photo(), ProductName: "kopi", Locale: "id"})
	if err != nil {
		t.Fatalf("Describe returned error: %v", err)
	}
	if desc.Provider != "static" || !strings.HasPrefix(desc.Text, "Kopi") {
		t.Fatalf("unexpected description %#v", desc)
	}
}

func TestChainStopsAtFirstSuccess(t *testing.T) {
	okChat := &stubChat{resp: openai.ChatCompletionResponse{Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Content: "A jar."}}}}}
	failing := newGeminiDescriber(&stubModels{resp: &genai.GenerateContentResponse{}}, "")
	chain := NewChain(nil, failing, NewOpenAIDescriber(okChat, ""))

	desc, err := chain.Describe(context.Background(), DescribeRequest{Image: photo()})
	if err != nil || desc.Provider != "openai" {
		t.Fatalf("Describe = %#v, %v", desc, err)
	}
}

func TestChainHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	chain := NewChain(nil, newGeminiDescriber(&stubModels{err: context.Canceled}, ""))
	if _, err := chain.Describe(ctx, DescribeRequest{Image: photo()}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
