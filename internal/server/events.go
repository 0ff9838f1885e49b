package server

import (
	"time"

	"github.com/intervox/intervox/internal/interview"
)

const EventVersion = 1

type Event struct {
	Type      string `json:"type"`
	Version   int    `json:"version"`
	Timestamp string `json:"timestamp"`
}

type QuestionPresentedEvent struct {
	Event
	Index    int                `json:"index"`
	Total    int                `json:"total"`
	Question interview.Question `json:"question"`
}

type PartialTranscriptEvent struct {
	Event
	Text string `json:"text"`
}

type ListeningChangedEvent struct {
	Event
	Listening bool `json:"listening"`
}

type SpeakingChangedEvent struct {
	Event
	Speaking bool `json:"speaking"`
}

type EvaluationReadyEvent struct {
	Event
	Index      int                  `json:"index"`
	Evaluation interview.Evaluation `json:"evaluation"`
}

type ProgressSavedEvent struct {
	Event
	SavedAt string `json:"saved_at"`
}

type SessionCompletedEvent struct {
	Event
	Result interview.Result `json:"result"`
}

type PlaybackFailedEvent struct {
	Event
	Error string `json:"error"`
}

type ConnectionEvent struct {
	Event
	Connected bool `json:"connected"`
}

func newEvent(eventType string, now time.Time) Event {
	if now.IsZero() {
		now = time.Now().UTC()
	}
	return Event{
		Type:      eventType,
		Version:   EventVersion,
		Timestamp: now.UTC().Format(time.RFC3339Nano),
	}
}
