package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/intervox/intervox/internal/interview"
)

const (
	// VoiceEnglish and VoiceArabic are the prebuilt TTS voices keyed by UI
	// language.
	VoiceEnglish = "Kore"
	VoiceArabic  = "Puck"
)

// Client implements interview.Gateway on top of a completion provider, an
// optional speech synthesizer and an optional realtime transcription opener.
// Completion calls are retried with backoff before giving up.
type Client struct {
	completer Completer
	tts       Synthesizer
	realtime  RealtimeOpener
	voiceFor  func(interview.UILanguage) string
	sleep     func(time.Duration)
}

// NewClient wires a gateway client. tts and realtime may be nil; the matching
// operations then report an absent result.
func NewClient(completer Completer, tts Synthesizer, realtime RealtimeOpener) *Client {
	return &Client{
		completer: completer,
		tts:       tts,
		realtime:  realtime,
		voiceFor:  defaultVoice,
		sleep:     time.Sleep,
	}
}

func defaultVoice(lang interview.UILanguage) string {
	if lang == interview.LangArabic {
		return VoiceArabic
	}
	return VoiceEnglish
}

// SetVoices overrides the per-language read-out voices. Empty values keep
// the defaults.
func (c *Client) SetVoices(english, arabic string) {
	if english == "" {
		english = VoiceEnglish
	}
	if arabic == "" {
		arabic = VoiceArabic
	}
	c.voiceFor = func(lang interview.UILanguage) string {
		if lang == interview.LangArabic {
			return arabic
		}
		return english
	}
}

func (c *Client) GenerateQuestions(ctx context.Context, req interview.GenerationRequest) ([]interview.Question, error) {
	raw, err := c.complete(ctx, CompletionRequest{
		User:  buildGenerationPrompt(req),
		Shape: ShapeQuestionList,
	})
	if err != nil {
		return nil, fmt.Errorf("generate questions: %w", err)
	}
	return parseQuestions(raw)
}

func (c *Client) EvaluateAnswer(ctx context.Context, req interview.EvaluationRequest) (interview.Evaluation, error) {
	raw, err := c.complete(ctx, CompletionRequest{
		User:  buildEvaluationPrompt(req),
		Shape: ShapeEvaluation,
	})
	if err != nil {
		return interview.Evaluation{}, fmt.Errorf("evaluate answer: %w", err)
	}
	return parseEvaluation(raw)
}

func (c *Client) ExtractSkills(ctx context.Context, jobDescription string, lang interview.UILanguage) ([]interview.Skill, error) {
	raw, err := c.complete(ctx, CompletionRequest{
		User:  buildSkillsPrompt(jobDescription, lang),
		Shape: ShapeSkillList,
	})
	if err != nil {
		return nil, fmt.Errorf("extract skills: %w", err)
	}
	return parseSkills(raw)
}

func (c *Client) OpenRealtimeTranscription(ctx context.Context, lang interview.UILanguage, handlers interview.RealtimeHandlers) (interview.RealtimeSession, error) {
	if c.realtime == nil {
		return nil, fmt.Errorf("realtime transcription not configured")
	}
	return c.realtime.Open(ctx, lang, handlers)
}

func (c *Client) SynthesizeSpeech(ctx context.Context, text string, lang interview.UILanguage) ([]byte, error) {
	if c.tts == nil {
		return nil, nil
	}
	audio, err := c.tts.Synthesize(ctx, buildReadoutText(text, lang), c.voiceFor(lang))
	if err != nil {
		return nil, fmt.Errorf("synthesize speech: %w", err)
	}
	return audio, nil
}

func (c *Client) complete(ctx context.Context, req CompletionRequest) (string, error) {
	backoff := []time.Duration{1 * time.Second, 4 * time.Second}
	var lastErr error
	for attempt := 0; attempt <= len(backoff); attempt++ {
		result, err := c.completer.Complete(ctx, req)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
		if attempt < len(backoff) {
			c.sleep(backoff[attempt])
		}
	}
	return "", lastErr
}
