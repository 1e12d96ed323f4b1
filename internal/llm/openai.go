package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

type chatClient interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIGenerator calls an OpenAI-compatible chat completion endpoint.
type OpenAIGenerator struct {
	client      chatClient
	maxTokens   int
	temperature float32
}

// NewOpenAIGenerator builds a client; baseURL targets compatible gateways.
func NewOpenAIGenerator(apiKey, baseURL string) (*OpenAIGenerator, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("llm: openai api key is required")
	}
	cfg := openai.DefaultConfig(apiKey)
	if strings.TrimSpace(baseURL) != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	return NewOpenAIGeneratorFromClient(openai.NewClientWithConfig(cfg)), nil
}

func NewOpenAIGeneratorFromClient(client chatClient) *OpenAIGenerator {
	if client == nil {
		panic("llm: openai client cannot be nil")
	}
	return &OpenAIGenerator{client: client, maxTokens: 300, temperature: 0.7}
}

func (g *OpenAIGenerator) Generate(ctx context.Context, system, user, model string) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if strings.TrimSpace(system) != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: system})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: user})

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   g.maxTokens,
		Temperature: g.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("llm: openai completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmpty
	}
	choice := resp.Choices[0]
	if choice.FinishReason == openai.FinishReasonLength {
		return "", ErrTruncated
	}
	return strings.TrimSpace(choice.Message.Content), nil
}

var _ Generator = (*OpenAIGenerator)(nil)
