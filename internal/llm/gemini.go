package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiGenerator implements Generator using Google's Gemini API.
type GeminiGenerator struct {
	client *genai.Client
}

func NewGeminiGenerator(ctx context.Context, apiKey string) (*GeminiGenerator, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("llm: gemini api key is required")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("llm: failed to create gemini client: %w", err)
	}
	return &GeminiGenerator{client: client}, nil
}

func (g *GeminiGenerator) Generate(ctx context.Context, system, user, model string) (string, error) {
	gm := g.client.GenerativeModel(model)
	gm.SetTemperature(0.7)
	gm.SetMaxOutputTokens(300)
	if strings.TrimSpace(system) != "" {
		gm.SystemInstruction = genai.NewUserContent(genai.Text(system))
	}
	resp, err := gm.GenerateContent(ctx, genai.Text(user))
	if err != nil {
		return "", fmt.Errorf("llm: gemini completion failed: %w", err)
	}
	return geminiText(resp)
}

// geminiText joins the text parts of the first candidate.
func geminiText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", ErrEmpty
	}
	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonMaxTokens {
		return "", ErrTruncated
	}
	if candidate.Content == nil {
		return "", ErrEmpty
	}
	var b strings.Builder
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return strings.TrimSpace(b.String()), nil
}

// Close releases resources held by the Gemini client.
func (g *GeminiGenerator) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

var _ Generator = (*GeminiGenerator)(nil)
