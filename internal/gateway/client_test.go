package gateway

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/intervox/intervox/internal/interview"
)

type mockCompleter struct {
	mu        sync.Mutex
	responses []string
	errs      []error
	calls     int
	lastReq   CompletionRequest
}

func (m *mockCompleter) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.calls
	m.calls++
	m.lastReq = req
	var err error
	if i < len(m.errs) {
		err = m.errs[i]
	}
	var resp string
	if i < len(m.responses) {
		resp = m.responses[i]
	}
	return resp, err
}

type mockSynth struct {
	mu        sync.Mutex
	audio     []byte
	err       error
	lastText  string
	lastVoice string
}

func (m *mockSynth) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastText = text
	m.lastVoice = voice
	return m.audio, m.err
}

func newTestClient(completer Completer) *Client {
	c := NewClient(completer, nil, nil)
	c.sleep = func(time.Duration) {}
	return c
}

func TestGenerateQuestionsRetries(t *testing.T) {
	completer := &mockCompleter{
		errs:      []error{errors.New("429"), errors.New("429"), nil},
		responses: []string{"", "", `[{"id": "q1", "text": "t", "category": "c"}]`},
	}
	c := newTestClient(completer)

	questions, err := c.GenerateQuestions(context.Background(), interview.GenerationRequest{
		Technology: "Go",
		Difficulty: interview.DifficultyMid,
		Count:      1,
	})
	if err != nil {
		t.Fatalf("GenerateQuestions failed: %v", err)
	}
	if len(questions) != 1 {
		t.Fatalf("expected 1 question, got %d", len(questions))
	}
	if completer.calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", completer.calls)
	}
}

func TestGenerateQuestionsExhaustsRetries(t *testing.T) {
	boom := errors.New("provider down")
	completer := &mockCompleter{errs: []error{boom, boom, boom}}
	c := newTestClient(completer)

	_, err := c.GenerateQuestions(context.Background(), interview.GenerationRequest{Technology: "Go"})
	if err == nil {
		t.Fatal("expected error after retries exhausted")
	}
	if completer.calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", completer.calls)
	}
}

func TestCompleteStopsOnCanceledContext(t *testing.T) {
	completer := &mockCompleter{errs: []error{errors.New("fail"), errors.New("fail"), errors.New("fail")}}
	c := newTestClient(completer)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.GenerateQuestions(ctx, interview.GenerationRequest{Technology: "Go"})
	if err == nil {
		t.Fatal("expected error with canceled context")
	}
	if completer.calls != 1 {
		t.Fatalf("expected a single attempt with canceled context, got %d", completer.calls)
	}
}

func TestEvaluateAnswerShape(t *testing.T) {
	completer := &mockCompleter{responses: []string{`{"feedback": "ok", "score": 80}`}}
	c := newTestClient(completer)

	eval, err := c.EvaluateAnswer(context.Background(), interview.EvaluationRequest{
		QuestionText: "Q?",
		AnswerText:   "A.",
	})
	if err != nil {
		t.Fatalf("EvaluateAnswer failed: %v", err)
	}
	if eval.Score != 80 {
		t.Fatalf("expected score 80, got %d", eval.Score)
	}
	if completer.lastReq.Shape != ShapeEvaluation {
		t.Fatalf("expected evaluation shape, got %v", completer.lastReq.Shape)
	}
}

func TestSynthesizeSpeechWithoutTTS(t *testing.T) {
	c := newTestClient(&mockCompleter{})

	audio, err := c.SynthesizeSpeech(context.Background(), "Question?", interview.LangEnglish)
	if err != nil {
		t.Fatalf("expected nil error without tts, got %v", err)
	}
	if audio != nil {
		t.Fatalf("expected nil audio without tts, got %d bytes", len(audio))
	}
}

func TestSynthesizeSpeechVoiceSelection(t *testing.T) {
	synth := &mockSynth{audio: []byte{1}}
	c := NewClient(&mockCompleter{}, synth, nil)
	c.sleep = func(time.Duration) {}

	if _, err := c.SynthesizeSpeech(context.Background(), "Q?", interview.LangEnglish); err != nil {
		t.Fatalf("SynthesizeSpeech failed: %v", err)
	}
	if synth.lastVoice != VoiceEnglish {
		t.Errorf("expected voice %s for english, got %s", VoiceEnglish, synth.lastVoice)
	}

	if _, err := c.SynthesizeSpeech(context.Background(), "Q?", interview.LangArabic); err != nil {
		t.Fatalf("SynthesizeSpeech failed: %v", err)
	}
	if synth.lastVoice != VoiceArabic {
		t.Errorf("expected voice %s for arabic, got %s", VoiceArabic, synth.lastVoice)
	}

	c.SetVoices("Aoede", "Charon")
	_, _ = c.SynthesizeSpeech(context.Background(), "Q?", interview.LangArabic)
	if synth.lastVoice != "Charon" {
		t.Errorf("expected overridden arabic voice, got %s", synth.lastVoice)
	}
}

func TestSynthesizeSpeechWrapsReadout(t *testing.T) {
	synth := &mockSynth{audio: []byte{1}}
	c := NewClient(&mockCompleter{}, synth, nil)

	if _, err := c.SynthesizeSpeech(context.Background(), "What is a mutex?", interview.LangEnglish); err != nil {
		t.Fatalf("SynthesizeSpeech failed: %v", err)
	}
	if synth.lastText == "What is a mutex?" {
		t.Error("expected question wrapped in read-out instructions")
	}
}

func TestOpenRealtimeWithoutOpener(t *testing.T) {
	c := newTestClient(&mockCompleter{})

	_, err := c.OpenRealtimeTranscription(context.Background(), interview.LangEnglish, interview.RealtimeHandlers{})
	if err == nil {
		t.Fatal("expected error without realtime opener")
	}
}
