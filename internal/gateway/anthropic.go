package gateway

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

type anthropicCompleter struct {
	client anthropic.Client
	model  string
}

func newAnthropicCompleter(apiKey, model string, opts *providerOptions) (*anthropicCompleter, error) {
	clientOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if opts.baseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(opts.baseURL))
	}
	return &anthropicCompleter{client: anthropic.NewClient(clientOpts...), model: model}, nil
}

func (c *anthropicCompleter) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	var systemBlocks []anthropic.TextBlockParam
	if req.System != "" {
		systemBlocks = append(systemBlocks, anthropic.TextBlockParam{Text: req.System})
	}

	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: 8192,
		System:    systemBlocks,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.User)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic completion: %w", err)
	}

	var b strings.Builder
	for i := range resp.Content {
		block := &resp.Content[i]
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}

	result := strings.TrimSpace(b.String())
	if result == "" {
		return "", fmt.Errorf("anthropic: empty response content")
	}
	return result, nil
}
