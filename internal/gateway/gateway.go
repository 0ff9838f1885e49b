package gateway

import (
	"context"
	"fmt"
	"strings"

	"github.com/intervox/intervox/internal/interview"
)

// ResponseShape tells a provider what structure the reply must have, so
// providers with native structured output (Gemini, OpenAI JSON mode) can
// enforce it and the rest fall back to prompt instructions.
type ResponseShape int

const (
	ShapeText ResponseShape = iota
	ShapeQuestionList
	ShapeEvaluation
	ShapeSkillList
)

// CompletionRequest is one structured completion call.
type CompletionRequest struct {
	System string
	User   string
	Shape  ResponseShape
}

// Completer produces a completion for a prompt. Implementations exist for
// gemini, openai and anthropic.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// Synthesizer turns text into raw 16-bit PCM audio at 24 kHz.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voice string) ([]byte, error)
}

// RealtimeOpener opens a streaming transcription channel.
type RealtimeOpener interface {
	Open(ctx context.Context, lang interview.UILanguage, handlers interview.RealtimeHandlers) (interview.RealtimeSession, error)
}

// Option configures provider construction.
type Option func(*providerOptions)

type providerOptions struct {
	baseURL string
}

// WithBaseURL points a provider at an alternate API endpoint.
func WithBaseURL(url string) Option {
	return func(o *providerOptions) {
		o.baseURL = url
	}
}

// UnavailableCompleter returns a completer that fails every call with the
// given reason. It keeps the server running API-degraded when provider
// construction fails at startup.
func UnavailableCompleter(err error) Completer {
	return unavailableCompleter{err: err}
}

type unavailableCompleter struct {
	err error
}

func (u unavailableCompleter) Complete(context.Context, CompletionRequest) (string, error) {
	return "", fmt.Errorf("completion provider unavailable: %w", u.err)
}

// ParseModel splits a "provider/model_name" string.
func ParseModel(model string) (provider, modelName string, err error) {
	parts := strings.SplitN(model, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid model format %q: expected provider/model_name", model)
	}
	return parts[0], parts[1], nil
}

// NewCompleter builds a completion provider by name.
func NewCompleter(provider, apiKey, model string, opts ...Option) (Completer, error) {
	o := &providerOptions{}
	for _, opt := range opts {
		opt(o)
	}

	switch provider {
	case "gemini":
		return newGeminiCompleter(apiKey, model, o)
	case "openai":
		return newOpenAICompleter(apiKey, model, o)
	case "anthropic":
		return newAnthropicCompleter(apiKey, model, o)
	default:
		return nil, fmt.Errorf("unknown provider %q: supported providers are gemini, openai, anthropic", provider)
	}
}
