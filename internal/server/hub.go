package server

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/intervox/intervox/internal/interview"
)

// Hub fans controller events out to connected websocket clients. It is the
// controller's event sink: every sink method marshals a typed event and
// broadcasts it without blocking.
type Hub struct {
	mu      sync.RWMutex
	clients map[chan []byte]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[chan []byte]struct{})}
}

func (h *Hub) Subscribe() chan []byte {
	ch := make(chan []byte, 64)
	h.mu.Lock()
	h.clients[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *Hub) Unsubscribe(ch chan []byte) {
	h.mu.Lock()
	delete(h.clients, ch)
	h.mu.Unlock()
	close(ch)
}

func (h *Hub) Broadcast(msg []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.clients {
		select {
		case ch <- msg:
		default:
		}
	}
}

func (h *Hub) QuestionPresented(index, total int, q interview.Question) {
	h.broadcastEvent(QuestionPresentedEvent{
		Event:    newEvent("question_presented", time.Now().UTC()),
		Index:    index,
		Total:    total,
		Question: q,
	})
}

func (h *Hub) PartialTranscript(text string) {
	h.broadcastEvent(PartialTranscriptEvent{
		Event: newEvent("partial_transcript", time.Now().UTC()),
		Text:  text,
	})
}

func (h *Hub) ListeningChanged(listening bool) {
	h.broadcastEvent(ListeningChangedEvent{
		Event:     newEvent("listening_changed", time.Now().UTC()),
		Listening: listening,
	})
}

func (h *Hub) SpeakingChanged(speaking bool) {
	h.broadcastEvent(SpeakingChangedEvent{
		Event:    newEvent("speaking_changed", time.Now().UTC()),
		Speaking: speaking,
	})
}

func (h *Hub) EvaluationReady(index int, eval interview.Evaluation) {
	h.broadcastEvent(EvaluationReadyEvent{
		Event:      newEvent("evaluation_ready", time.Now().UTC()),
		Index:      index,
		Evaluation: eval,
	})
}

func (h *Hub) ProgressSaved(at time.Time) {
	h.broadcastEvent(ProgressSavedEvent{
		Event:   newEvent("progress_saved", time.Now().UTC()),
		SavedAt: at.UTC().Format(time.RFC3339Nano),
	})
}

func (h *Hub) SessionCompleted(res interview.Result) {
	h.broadcastEvent(SessionCompletedEvent{
		Event:  newEvent("session_completed", time.Now().UTC()),
		Result: res,
	})
}

func (h *Hub) PlaybackFailed(err error) {
	h.broadcastEvent(PlaybackFailedEvent{
		Event: newEvent("playback_failed", time.Now().UTC()),
		Error: err.Error(),
	})
}

func (h *Hub) broadcastEvent(event any) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("event marshal error: %v", err)
		return
	}
	h.Broadcast(payload)
}
