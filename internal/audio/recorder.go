package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const (
	pcmChannels = 1
	pcmBitDepth = 16
)

// Recorder tees the candidate's spoken answers to disk as WAV files, one per
// listening session. It is optional; a nil Recorder disables recording.
type Recorder struct {
	audioDir string

	mu      sync.Mutex
	id      string
	rawPath string
	rawFile *os.File
}

// NewRecorder creates a recorder writing under audioDir.
func NewRecorder(audioDir string) *Recorder {
	if audioDir == "" {
		audioDir = filepath.Join("data", "audio")
	}
	return &Recorder{audioDir: audioDir}
}

// StartAnswer begins recording a new answer. Any previous unfinished
// recording is abandoned.
func (r *Recorder) StartAnswer(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.MkdirAll(r.audioDir, 0o755); err != nil {
		return fmt.Errorf("create audio directory: %w", err)
	}
	if r.rawFile != nil {
		_ = r.rawFile.Close()
	}

	rawPath := filepath.Join(r.audioDir, id+".pcm")
	rawFile, err := os.OpenFile(rawPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open raw pcm file: %w", err)
	}

	r.id = id
	r.rawPath = rawPath
	r.rawFile = rawFile
	return nil
}

// WritePCM appends capture bytes to the current recording. A no-op when no
// recording is active.
func (r *Recorder) WritePCM(data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.rawFile == nil {
		return nil
	}
	if _, err := r.rawFile.Write(data); err != nil {
		return fmt.Errorf("write raw pcm bytes: %w", err)
	}
	return nil
}

// EndAnswer finalizes the recording into a WAV file and returns its path.
// Returns ("", nil) when nothing was being recorded.
func (r *Recorder) EndAnswer() (string, error) {
	r.mu.Lock()
	if r.id == "" || r.rawFile == nil {
		r.mu.Unlock()
		return "", nil
	}
	id := r.id
	rawPath := r.rawPath
	rawFile := r.rawFile
	r.id = ""
	r.rawPath = ""
	r.rawFile = nil
	r.mu.Unlock()

	if err := rawFile.Close(); err != nil {
		return "", fmt.Errorf("close raw pcm file: %w", err)
	}

	wavPath := filepath.Join(r.audioDir, id+".wav")
	if err := pcmToWav(rawPath, wavPath, CaptureSampleRate); err != nil {
		return "", fmt.Errorf("encode wav: %w", err)
	}
	_ = os.Remove(rawPath)
	return wavPath, nil
}

func pcmToWav(rawPath, wavPath string, sampleRate int) error {
	pcmData, err := os.ReadFile(rawPath)
	if err != nil {
		return fmt.Errorf("read raw pcm data: %w", err)
	}

	out, err := os.OpenFile(wavPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open wav output: %w", err)
	}
	defer func() { _ = out.Close() }()

	header, err := wavHeader(len(pcmData), sampleRate, pcmChannels, pcmBitDepth)
	if err != nil {
		return fmt.Errorf("build wav header: %w", err)
	}
	if _, err := out.Write(header); err != nil {
		return fmt.Errorf("write wav header: %w", err)
	}
	if _, err := out.Write(pcmData); err != nil {
		return fmt.Errorf("write wav payload: %w", err)
	}
	return nil
}

func wavHeader(dataSize, sampleRate, channels, bitDepth int) ([]byte, error) {
	byteRate := sampleRate * channels * bitDepth / 8
	blockAlign := channels * bitDepth / 8
	chunkSize := 36 + dataSize

	buf := bytes.NewBuffer(make([]byte, 0, 44))
	writes := []any{
		[]byte("RIFF"), uint32(chunkSize), []byte("WAVE"), []byte("fmt "),
		uint32(16), uint16(1), uint16(channels), uint32(sampleRate),
		uint32(byteRate), uint16(blockAlign), uint16(bitDepth),
		[]byte("data"), uint32(dataSize),
	}
	for _, w := range writes {
		if err := binary.Write(buf, binary.LittleEndian, w); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}
