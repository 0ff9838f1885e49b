package realtime

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"strings"
	"sync"

	api "github.com/deepgram/deepgram-go-sdk/v3/pkg/api/listen/v1/websocket/interfaces"
	interfaces "github.com/deepgram/deepgram-go-sdk/v3/pkg/client/interfaces"
	listen "github.com/deepgram/deepgram-go-sdk/v3/pkg/client/listen"

	"github.com/intervox/intervox/internal/interview"
)

// SampleRate is the capture sample rate the channel is opened with.
const SampleRate = 16000

// Deepgram opens realtime transcription sessions against the Deepgram
// websocket API. It implements the gateway's RealtimeOpener.
type Deepgram struct {
	apiKey string
	model  string
}

// NewDeepgram builds a realtime opener. model defaults to nova-2.
func NewDeepgram(apiKey, model string) *Deepgram {
	if strings.TrimSpace(model) == "" {
		model = "nova-2"
	}
	return &Deepgram{apiKey: apiKey, model: model}
}

func transcriptionLanguage(lang interview.UILanguage) string {
	if lang == interview.LangArabic {
		return "ar"
	}
	return "en-US"
}

// Open connects a live transcription channel. Finalized transcript fragments
// are delivered through OnPartialTranscript as they arrive; speech-final and
// utterance-end events mark the turn boundary that commits them.
func (d *Deepgram) Open(ctx context.Context, lang interview.UILanguage, handlers interview.RealtimeHandlers) (interview.RealtimeSession, error) {
	cOptions := &interfaces.ClientOptions{EnableKeepAlive: true}
	tOptions := &interfaces.LiveTranscriptionOptions{
		Model:       d.model,
		Language:    transcriptionLanguage(lang),
		Punctuate:   true,
		SmartFormat: true,
		Encoding:    "linear16",
		SampleRate:  SampleRate,
		Channels:    1,
	}

	cb := &transcriptCallback{handlers: handlers}
	dgClient, err := listen.NewWSUsingCallback(ctx, d.apiKey, cOptions, tOptions, cb)
	if err != nil {
		return nil, fmt.Errorf("create deepgram client: %w", err)
	}
	if ok := dgClient.Connect(); !ok {
		return nil, fmt.Errorf("deepgram connect failed")
	}

	return &deepgramSession{client: dgClient}, nil
}

type wsClient interface {
	io.Writer
	Stop()
}

// deepgramSession adapts the websocket client to the RealtimeSession port.
type deepgramSession struct {
	client wsClient

	mu     sync.Mutex
	closed bool
}

func (s *deepgramSession) SendAudio(chunk interview.AudioChunk) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return fmt.Errorf("session closed")
	}
	s.mu.Unlock()

	pcm, err := base64.StdEncoding.DecodeString(chunk.Data)
	if err != nil {
		return fmt.Errorf("decode audio chunk: %w", err)
	}
	if _, err := s.client.Write(pcm); err != nil {
		return fmt.Errorf("send audio chunk: %w", err)
	}
	return nil
}

func (s *deepgramSession) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.client.Stop()
	return nil
}

// transcriptCallback receives Deepgram websocket events and forwards them to
// the session handlers.
type transcriptCallback struct {
	handlers interview.RealtimeHandlers
}

func (c *transcriptCallback) Message(mr *api.MessageResponse) error {
	if len(mr.Channel.Alternatives) == 0 {
		return nil
	}
	sentence := strings.TrimSpace(mr.Channel.Alternatives[0].Transcript)

	// Interim (non-final) results are provisional rewrites; only finalized
	// fragments feed the append-only accumulator.
	if mr.IsFinal && sentence != "" && c.handlers.OnPartialTranscript != nil {
		c.handlers.OnPartialTranscript(sentence + " ")
	}
	if mr.SpeechFinal && c.handlers.OnTurnComplete != nil {
		c.handlers.OnTurnComplete()
	}
	return nil
}

func (c *transcriptCallback) UtteranceEnd(*api.UtteranceEndResponse) error {
	if c.handlers.OnTurnComplete != nil {
		c.handlers.OnTurnComplete()
	}
	return nil
}

func (c *transcriptCallback) Open(*api.OpenResponse) error { return nil }

func (c *transcriptCallback) Metadata(*api.MetadataResponse) error { return nil }

func (c *transcriptCallback) SpeechStarted(*api.SpeechStartedResponse) error { return nil }

func (c *transcriptCallback) Close(*api.CloseResponse) error {
	if c.handlers.OnClose != nil {
		c.handlers.OnClose()
	}
	return nil
}

func (c *transcriptCallback) Error(er *api.ErrorResponse) error {
	if c.handlers.OnError != nil {
		c.handlers.OnError(fmt.Errorf("deepgram error %s: %s", er.ErrCode, er.Description))
	}
	return nil
}

func (c *transcriptCallback) UnhandledEvent([]byte) error { return nil }
