package audio

import (
	"encoding/base64"
	"encoding/binary"

	"github.com/intervox/intervox/internal/interview"
)

const (
	// CaptureSampleRate is the microphone rate sent to the realtime channel.
	CaptureSampleRate = 16000
	// CaptureFrameSize is the number of samples per transmitted chunk.
	CaptureFrameSize = 4096
	// PlaybackSampleRate is the rate of synthesized speech payloads.
	PlaybackSampleRate = 24000
	// CaptureMIMEType tags outgoing chunks with their wire format.
	CaptureMIMEType = "audio/pcm;rate=16000"
)

// Float32ToPCM16 converts normalized float samples to 16-bit signed PCM.
// Samples are clamped to [-1, 1] before scaling so out-of-range input cannot
// wrap around.
func Float32ToPCM16(samples []float32) []int16 {
	out := make([]int16, len(samples))
	for i, s := range samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		v := int32(s * 32768)
		if v > 32767 {
			v = 32767
		} else if v < -32768 {
			v = -32768
		}
		out[i] = int16(v)
	}
	return out
}

// PCM16ToFloat32 converts little-endian 16-bit PCM bytes to normalized
// float samples. A trailing odd byte is dropped.
func PCM16ToFloat32(data []byte) []float32 {
	n := len(data) / 2
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		v := int16(binary.LittleEndian.Uint16(data[2*i:]))
		out[i] = float32(v) / 32768.0
	}
	return out
}

// PCM16Bytes serializes samples as little-endian bytes.
func PCM16Bytes(samples []int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[2*i:], uint16(s))
	}
	return out
}

// EncodeChunk frames one capture buffer for the realtime channel: float
// samples scaled to 16-bit PCM, serialized little-endian and base64-encoded.
func EncodeChunk(samples []float32) interview.AudioChunk {
	pcm := PCM16Bytes(Float32ToPCM16(samples))
	return interview.AudioChunk{
		Data:     base64.StdEncoding.EncodeToString(pcm),
		MIMEType: CaptureMIMEType,
	}
}
