package audio

import (
	"context"
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
)

const playbackFrameSize = 2048

// Player plays synthesized speech through the default output device. At most
// one buffer plays at a time: starting a new one stops whatever is playing
// (last start wins, no queue).
type Player struct {
	mu         sync.Mutex
	generation int
}

// NewPlayer creates an idle player.
func NewPlayer() *Player {
	return &Player{}
}

// Play decodes raw 16-bit PCM at 24 kHz and plays it to completion, unless
// interrupted by Stop, a newer Play, or context cancellation. It blocks the
// calling goroutine while audio is playing.
func (p *Player) Play(ctx context.Context, pcm []byte) error {
	p.mu.Lock()
	p.generation++
	gen := p.generation
	p.mu.Unlock()

	samples := PCM16ToFloat32(pcm)
	if len(samples) == 0 {
		return nil
	}

	buf := make([]float32, playbackFrameSize)
	stream, err := portaudio.OpenDefaultStream(0, 1, float64(PlaybackSampleRate), playbackFrameSize, &buf)
	if err != nil {
		return fmt.Errorf("open playback stream: %w", err)
	}
	defer func() { _ = stream.Close() }()

	if err := stream.Start(); err != nil {
		return fmt.Errorf("start playback stream: %w", err)
	}
	defer func() { _ = stream.Stop() }()

	for offset := 0; offset < len(samples); offset += playbackFrameSize {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if p.interrupted(gen) {
			return nil
		}

		end := offset + playbackFrameSize
		if end > len(samples) {
			end = len(samples)
		}
		n := copy(buf, samples[offset:end])
		for i := n; i < playbackFrameSize; i++ {
			buf[i] = 0
		}
		if err := stream.Write(); err != nil {
			return fmt.Errorf("write playback frame: %w", err)
		}
	}
	return nil
}

// Stop interrupts the current playback, if any.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.generation++
}

func (p *Player) interrupted(gen int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.generation != gen
}
