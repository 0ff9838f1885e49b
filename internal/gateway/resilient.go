package gateway

import (
	"context"
	"log"

	"github.com/intervox/intervox/internal/interview"
)

// Resilient converts provider failures into the safe defaults the controller
// expects: evaluation degrades to a zero-score fallback, skill extraction and
// synthesis to empty results. Question generation errors pass through so the
// controller can surface generation failure explicitly. Realtime open errors
// also pass through; the caller simply stays in the not-listening state.
type Resilient struct {
	inner interview.Gateway
}

// NewResilient wraps a gateway with the fail-soft contract.
func NewResilient(inner interview.Gateway) *Resilient {
	return &Resilient{inner: inner}
}

func (r *Resilient) GenerateQuestions(ctx context.Context, req interview.GenerationRequest) ([]interview.Question, error) {
	return r.inner.GenerateQuestions(ctx, req)
}

func (r *Resilient) EvaluateAnswer(ctx context.Context, req interview.EvaluationRequest) (interview.Evaluation, error) {
	eval, err := r.inner.EvaluateAnswer(ctx, req)
	if err != nil {
		log.Printf("warning: evaluation failed, using fallback: %v", err)
		return interview.FallbackEvaluation(req.UILanguage), nil
	}
	return eval, nil
}

func (r *Resilient) ExtractSkills(ctx context.Context, jobDescription string, lang interview.UILanguage) ([]interview.Skill, error) {
	skills, err := r.inner.ExtractSkills(ctx, jobDescription, lang)
	if err != nil {
		log.Printf("warning: skill extraction failed: %v", err)
		return nil, nil
	}
	return skills, nil
}

func (r *Resilient) OpenRealtimeTranscription(ctx context.Context, lang interview.UILanguage, handlers interview.RealtimeHandlers) (interview.RealtimeSession, error) {
	return r.inner.OpenRealtimeTranscription(ctx, lang, handlers)
}

func (r *Resilient) SynthesizeSpeech(ctx context.Context, text string, lang interview.UILanguage) ([]byte, error) {
	audio, err := r.inner.SynthesizeSpeech(ctx, text, lang)
	if err != nil {
		log.Printf("warning: speech synthesis failed: %v", err)
		return nil, nil
	}
	return audio, nil
}
