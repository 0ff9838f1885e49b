package audio

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/intervox/intervox/internal/interview"
)

// Bridge implements the controller's Voice port: it owns the microphone and
// the output device as exclusive single-owner resources and translates
// between local audio hardware and the gateway's wire format.
type Bridge struct {
	player   *Player
	recorder *Recorder

	mu      sync.Mutex
	capture *capture
}

// NewBridge creates a bridge. recorder may be nil to disable answer recording.
func NewBridge(recorder *Recorder) *Bridge {
	return &Bridge{
		player:   NewPlayer(),
		recorder: recorder,
	}
}

// StartCapture acquires the microphone and streams framed chunks into the
// realtime session until StopCapture. Only one capture may run at a time;
// a still-open capture is torn down first.
func (b *Bridge) StartCapture(session interview.RealtimeSession) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.capture != nil {
		b.capture.stop()
		b.capture = nil
		b.finishRecording()
	}

	if b.recorder != nil {
		id := time.Now().UTC().Format("20060102150405")
		if err := b.recorder.StartAnswer(id); err != nil {
			return fmt.Errorf("start answer recording: %w", err)
		}
	}

	c, err := startCapture(session, b.recorder)
	if err != nil {
		b.finishRecording()
		return err
	}
	b.capture = c
	return nil
}

// StopCapture releases the microphone. Safe to call when no capture is open.
func (b *Bridge) StopCapture() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.capture == nil {
		return
	}
	b.capture.stop()
	b.capture = nil
	b.finishRecording()
}

func (b *Bridge) finishRecording() {
	if b.recorder == nil {
		return
	}
	_, _ = b.recorder.EndAnswer()
}

// Speak plays a synthesized speech payload, stopping any current playback
// first. It blocks until the audio finishes or is interrupted.
func (b *Bridge) Speak(ctx context.Context, audio []byte) error {
	return b.player.Play(ctx, audio)
}

// StopSpeaking interrupts question read-out, if any is playing.
func (b *Bridge) StopSpeaking() {
	b.player.Stop()
}
