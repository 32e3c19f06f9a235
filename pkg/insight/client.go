// Package insight extracts fiscal metrics from county report text using an
// Anthropic model as a secondary, narrative-class source.
package insight

import (
	"context"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Messenger abstracts the single model call the analyzer needs, so tests can
// substitute a canned response.
type Messenger interface {
	// CreateMessage sends a system+user prompt pair and returns the
	// concatenated text content of the reply.
	CreateMessage(ctx context.Context, model string, maxTokens int64, system, user string) (string, error)
}

// sdkMessenger implements Messenger with the official anthropic-sdk-go.
type sdkMessenger struct {
	client sdk.Client
}

// NewMessenger creates a Messenger backed by the Anthropic API.
func NewMessenger(apiKey string) Messenger {
	return &sdkMessenger{
		client: sdk.NewClient(option.WithAPIKey(apiKey)),
	}
}

func (m *sdkMessenger) CreateMessage(ctx context.Context, model string, maxTokens int64, system, user string) (string, error) {
	msg, err := m.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(model),
		MaxTokens: maxTokens,
		System:    []sdk.TextBlockParam{{Text: system}},
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(user)),
		},
		Temperature: sdk.Float(0),
	})
	if err != nil {
		return "", eris.Wrap(err, "insight: create message")
	}

	zap.L().Debug("insight: message created",
		zap.String("model", string(msg.Model)),
		zap.Int64("input_tokens", msg.Usage.InputTokens),
		zap.Int64("output_tokens", msg.Usage.OutputTokens),
	)

	var text string
	for _, b := range msg.Content {
		if b.Type == "text" {
			text += b.Text
		}
	}
	return text, nil
}
