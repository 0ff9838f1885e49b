package gateway

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

type openaiCompleter struct {
	client *openai.Client
	model  string
}

func newOpenAICompleter(apiKey, model string, opts *providerOptions) (*openaiCompleter, error) {
	config := openai.DefaultConfig(apiKey)
	if opts.baseURL != "" {
		config.BaseURL = opts.baseURL
	}
	return &openaiCompleter{client: openai.NewClientWithConfig(config), model: model}, nil
}

func (c *openaiCompleter) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	msgs := []openai.ChatCompletionMessage{}
	if req.System != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.System})
	}
	msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: req.User})

	chatReq := openai.ChatCompletionRequest{Model: c.model, Messages: msgs}
	if req.Shape != ShapeText {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := c.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return "", fmt.Errorf("openai completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: no choices in response")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
