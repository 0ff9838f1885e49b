package audio

import (
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"

	"github.com/intervox/intervox/internal/interview"
)

// chunkSink receives framed capture audio. Satisfied by the realtime session.
type chunkSink interface {
	SendAudio(chunk interview.AudioChunk) error
}

// capture owns the microphone stream for the duration of one listening
// session. Frames are encoded and forwarded as soon as they are read; there
// is no buffering beyond a single frame.
type capture struct {
	stream *portaudio.Stream
	buf    []float32

	mu      sync.Mutex
	stopped bool
	done    chan struct{}
}

func startCapture(sink chunkSink, rec *Recorder) (*capture, error) {
	buf := make([]float32, CaptureFrameSize)
	stream, err := portaudio.OpenDefaultStream(1, 0, float64(CaptureSampleRate), CaptureFrameSize, buf)
	if err != nil {
		return nil, fmt.Errorf("open capture stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		_ = stream.Close()
		return nil, fmt.Errorf("start capture stream: %w", err)
	}

	c := &capture{
		stream: stream,
		buf:    buf,
		done:   make(chan struct{}),
	}
	go c.loop(sink, rec)
	return c, nil
}

func (c *capture) loop(sink chunkSink, rec *Recorder) {
	defer close(c.done)
	for {
		if c.isStopped() {
			return
		}
		if err := c.stream.Read(); err != nil {
			return
		}
		if c.isStopped() {
			return
		}

		chunk := EncodeChunk(c.buf)
		if rec != nil {
			_ = rec.WritePCM(PCM16Bytes(Float32ToPCM16(c.buf)))
		}
		if err := sink.SendAudio(chunk); err != nil {
			return
		}
	}
}

func (c *capture) isStopped() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stopped
}

// stop releases the microphone. Safe to call more than once; every exit path
// must land here so the device is never left acquired.
func (c *capture) stop() {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	c.stopped = true
	c.mu.Unlock()

	_ = c.stream.Stop()
	<-c.done
	_ = c.stream.Close()
}
