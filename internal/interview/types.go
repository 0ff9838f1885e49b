package interview

import (
	"context"
	"time"
)

// Difficulty is the seniority level the interview targets.
type Difficulty string

const (
	DifficultyJunior Difficulty = "Junior"
	DifficultyMid    Difficulty = "Mid-level"
	DifficultySenior Difficulty = "Senior"
)

// UILanguage selects the language questions and feedback are produced in.
type UILanguage string

const (
	LangEnglish UILanguage = "en"
	LangArabic  UILanguage = "ar"
)

// Question is generated once per session by the gateway and never mutated.
type Question struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Category string `json:"category"`
}

// Evaluation is the gateway's verdict on a single answer. It is transient:
// consumed once to build a Response, then discarded.
type Evaluation struct {
	Feedback     string   `json:"feedback"`
	Positives    []string `json:"positives"`
	Improvements []string `json:"improvements"`
	Score        int      `json:"score"`
}

// Response records one answered question. Responses are appended strictly in
// question order and never mutated afterwards.
type Response struct {
	QuestionID   string   `json:"questionId"`
	QuestionText string   `json:"questionText"`
	UserAnswer   string   `json:"userAnswer"`
	Feedback     string   `json:"feedback"`
	Positives    []string `json:"positives"`
	Improvements []string `json:"improvements"`
	Score        int      `json:"score"`
}

// Snapshot is the single persisted in-progress session slot.
type Snapshot struct {
	LanguageID     string     `json:"languageId"`
	Technology     string     `json:"technology"`
	Difficulty     Difficulty `json:"difficulty"`
	UILanguage     UILanguage `json:"uiLanguage"`
	JobDescription string     `json:"jobDescription,omitempty"`
	CurrentIndex   int        `json:"currentIndex"`
	Responses      []Response `json:"responses"`
	Questions      []Question `json:"questions"`
	Timestamp      time.Time  `json:"timestamp"`
}

// Result is an immutable historical record of a completed session.
type Result struct {
	Date           time.Time  `json:"date"`
	Language       string     `json:"language"`
	Difficulty     Difficulty `json:"difficulty"`
	Responses      []Response `json:"responses"`
	OverallScore   int        `json:"overallScore"`
	JobDescription string     `json:"jobDescription,omitempty"`
}

// Skill is one technology extracted from a job description.
type Skill struct {
	ID          string            `json:"id"`
	Name        map[string]string `json:"name"`
	Icon        string            `json:"icon"`
	Description map[string]string `json:"description"`
}

// GenerationRequest parameterizes question generation.
type GenerationRequest struct {
	Technology     string
	Difficulty     Difficulty
	UILanguage     UILanguage
	Count          int
	JobDescription string
}

// EvaluationRequest parameterizes answer evaluation.
type EvaluationRequest struct {
	QuestionText   string
	AnswerText     string
	Technology     string
	Difficulty     Difficulty
	UILanguage     UILanguage
	JobDescription string
}

// AudioChunk is one base64-encoded frame of PCM audio, tagged with its wire
// format (e.g. "audio/pcm;rate=16000").
type AudioChunk struct {
	Data     string
	MIMEType string
}

// RealtimeHandlers are the callbacks a realtime transcription session fires.
// Partial transcripts accumulate until a turn boundary commits them.
type RealtimeHandlers struct {
	OnPartialTranscript func(text string)
	OnTurnComplete      func()
	OnError             func(err error)
	OnClose             func()
}

// RealtimeSession is an open streaming transcription channel. Exactly one may
// be open per controller; opening a new one requires closing the old one.
type RealtimeSession interface {
	SendAudio(chunk AudioChunk) error
	Close() error
}

// Gateway is the AI provider boundary. Implementations are expected to fail
// soft: EvaluateAnswer must always return a usable Evaluation, ExtractSkills
// and SynthesizeSpeech degrade to empty results. GenerateQuestions may return
// an empty slice, which the controller surfaces as ErrGenerationFailed.
type Gateway interface {
	GenerateQuestions(ctx context.Context, req GenerationRequest) ([]Question, error)
	EvaluateAnswer(ctx context.Context, req EvaluationRequest) (Evaluation, error)
	ExtractSkills(ctx context.Context, jobDescription string, lang UILanguage) ([]Skill, error)
	OpenRealtimeTranscription(ctx context.Context, lang UILanguage, handlers RealtimeHandlers) (RealtimeSession, error)
	SynthesizeSpeech(ctx context.Context, text string, lang UILanguage) ([]byte, error)
}

// SnapshotStore is the persistence port for the single in-progress slot.
// Load returns nil when the slot is empty or its payload cannot be parsed.
type SnapshotStore interface {
	LoadSnapshot() (*Snapshot, error)
	SaveSnapshot(snap Snapshot) error
	ClearSnapshot() error
}

// HistoryStore is the persistence port for the append-only result log,
// most recent first.
type HistoryStore interface {
	PrependResult(res Result) error
	ListResults() ([]Result, error)
	ClearHistory() error
}

// Voice bridges the controller to local audio hardware. Speak stops any
// current playback before starting; StartCapture owns the microphone
// exclusively until StopCapture.
type Voice interface {
	Speak(ctx context.Context, audio []byte) error
	StopSpeaking()
	StartCapture(session RealtimeSession) error
	StopCapture()
}

// EventSink receives controller events for the presentation layer. All
// methods must be non-blocking; a nil sink disables events.
type EventSink interface {
	QuestionPresented(index, total int, q Question)
	PartialTranscript(text string)
	ListeningChanged(listening bool)
	SpeakingChanged(speaking bool)
	EvaluationReady(index int, eval Evaluation)
	ProgressSaved(at time.Time)
	SessionCompleted(res Result)
	PlaybackFailed(err error)
}
