package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
)

type bedrockConverseAPI interface {
	Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

// BedrockGenerator uses the Bedrock Converse API; model is the model ID.
type BedrockGenerator struct {
	api bedrockConverseAPI
}

func NewBedrockGenerator(api bedrockConverseAPI) *BedrockGenerator {
	if api == nil {
		panic("llm: bedrock converse client cannot be nil")
	}
	return &BedrockGenerator{api: api}
}

func (g *BedrockGenerator) Generate(ctx context.Context, system, user, model string) (string, error) {
	if strings.TrimSpace(model) == "" {
		return "", errors.New("llm: bedrock model id is required")
	}
	input := &bedrockruntime.ConverseInput{
		ModelId: aws.String(model),
		Messages: []brtypes.Message{{
			Role:    brtypes.ConversationRoleUser,
			Content: []brtypes.ContentBlock{&brtypes.ContentBlockMemberText{Value: user}},
		}},
		InferenceConfig: &brtypes.InferenceConfiguration{
			MaxTokens:   aws.Int32(300),
			Temperature: aws.Float32(0.7),
		},
	}
	if strings.TrimSpace(system) != "" {
		input.System = []brtypes.SystemContentBlock{&brtypes.SystemContentBlockMemberText{Value: system}}
	}

	out, err := g.api.Converse(ctx, input)
	if err != nil {
		return "", fmt.Errorf("llm: bedrock converse: %w", err)
	}
	if out != nil && out.StopReason == brtypes.StopReasonMaxTokens {
		return "", ErrTruncated
	}
	return bedrockOutputText(out)
}

func bedrockOutputText(out *bedrockruntime.ConverseOutput) (string, error) {
	if out == nil {
		return "", ErrEmpty
	}
	msg, ok := out.Output.(*brtypes.ConverseOutputMemberMessage)
	if !ok {
		return "", errors.New("llm: bedrock response did not include a message output")
	}
	var b strings.Builder
	for _, block := range msg.Value.Content {
		if text, ok := block.(*brtypes.ContentBlockMemberText); ok {
			b.WriteString(text.Value)
		}
	}
	return strings.TrimSpace(b.String()), nil
}

var _ Generator = (*BedrockGenerator)(nil)
