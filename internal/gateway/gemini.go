package gateway

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

type geminiCompleter struct {
	client *genai.Client
	model  string
}

func newGeminiCompleter(apiKey, model string, opts *providerOptions) (*geminiCompleter, error) {
	client, err := newGeminiClient(apiKey, opts.baseURL)
	if err != nil {
		return nil, err
	}
	return &geminiCompleter{client: client, model: model}, nil
}

func newGeminiClient(apiKey, baseURL string) (*genai.Client, error) {
	config := &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI}
	if baseURL != "" {
		config.HTTPOptions.BaseURL = baseURL
	}

	client, err := genai.NewClient(context.Background(), config)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return client, nil
}

func (c *geminiCompleter) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	config := &genai.GenerateContentConfig{}
	if req.System != "" {
		config.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: req.System}}}
	}
	if schema := geminiSchemaFor(req.Shape); schema != nil {
		config.ResponseMIMEType = "application/json"
		config.ResponseSchema = schema
	}

	result, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(req.User), config)
	if err != nil {
		return "", fmt.Errorf("gemini completion: %w", err)
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		return "", fmt.Errorf("gemini: empty response text")
	}
	return text, nil
}

func geminiSchemaFor(shape ResponseShape) *genai.Schema {
	switch shape {
	case ShapeQuestionList:
		return &genai.Schema{
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"id":       {Type: genai.TypeString},
					"text":     {Type: genai.TypeString},
					"category": {Type: genai.TypeString},
				},
				Required: []string{"id", "text", "category"},
			},
		}
	case ShapeEvaluation:
		return &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"feedback":     {Type: genai.TypeString},
				"positives":    {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
				"improvements": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
				"score":        {Type: genai.TypeNumber},
			},
			Required: []string{"feedback", "positives", "improvements", "score"},
		}
	case ShapeSkillList:
		localized := &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"en": {Type: genai.TypeString},
				"ar": {Type: genai.TypeString},
			},
			Required: []string{"en", "ar"},
		}
		return &genai.Schema{
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"id":          {Type: genai.TypeString},
					"name":        localized,
					"icon":        {Type: genai.TypeString},
					"description": localized,
				},
				Required: []string{"id", "name", "icon", "description"},
			},
		}
	default:
		return nil
	}
}

// geminiSynthesizer produces spoken audio through the Gemini TTS models. The
// response is raw 16-bit little-endian PCM at 24 kHz.
type geminiSynthesizer struct {
	client *genai.Client
	model  string
}

// NewGeminiSynthesizer builds a TTS provider backed by Gemini.
func NewGeminiSynthesizer(apiKey, model string, opts ...Option) (Synthesizer, error) {
	o := &providerOptions{}
	for _, opt := range opts {
		opt(o)
	}
	client, err := newGeminiClient(apiKey, o.baseURL)
	if err != nil {
		return nil, err
	}
	return &geminiSynthesizer{client: client, model: model}, nil
}

func (s *geminiSynthesizer) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: voice},
			},
		},
	}

	result, err := s.client.Models.GenerateContent(ctx, s.model, genai.Text(text), config)
	if err != nil {
		return nil, fmt.Errorf("gemini synthesize: %w", err)
	}

	for _, cand := range result.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return part.InlineData.Data, nil
			}
		}
	}
	return nil, nil
}
