package live

import (
	"encoding/base64"
	"fmt"
	"math"
)

// MediaChunk is one outbound payload: base64 data plus its MIME type.
type MediaChunk struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

// Encoder batches captured microphone audio into fixed-size blocks and
// encodes each block as base64 16-bit little-endian PCM. Not safe for
// concurrent use; the capture loop is its only caller.
type Encoder struct {
	blockSize int
	mimeType  string
	pending   []int16
}

// NewEncoder creates an encoder producing blocks of blockSize samples
// at the given sample rate.
func NewEncoder(blockSize, sampleRate int) *Encoder {
	return &Encoder{
		blockSize: blockSize,
		mimeType:  fmt.Sprintf("audio/pcm;rate=%d", sampleRate),
	}
}

// Write accepts float32 samples in [-1, 1] and returns a chunk for every
// complete block they fill. Leftover samples are held for the next call.
func (e *Encoder) Write(samples []float32) []MediaChunk {
	for _, s := range samples {
		e.pending = append(e.pending, floatToPCM16(s))
	}
	return e.drain()
}

// WritePCM16 accepts samples already in 16-bit form, as delivered by
// capture devices running in S16 format.
func (e *Encoder) WritePCM16(samples []int16) []MediaChunk {
	e.pending = append(e.pending, samples...)
	return e.drain()
}

func (e *Encoder) drain() []MediaChunk {
	var chunks []MediaChunk
	for len(e.pending) >= e.blockSize {
		block := e.pending[:e.blockSize]
		raw := make([]byte, len(block)*2)
		for i, s := range block {
			raw[i*2] = byte(s)
			raw[i*2+1] = byte(s >> 8)
		}
		chunks = append(chunks, MediaChunk{
			MIMEType: e.mimeType,
			Data:     base64.StdEncoding.EncodeToString(raw),
		})
		e.pending = e.pending[e.blockSize:]
	}
	return chunks
}

// floatToPCM16 converts one sample, rounding and clamping to the int16
// range.
func floatToPCM16(s float32) int16 {
	v := math.Round(float64(s) * 32768)
	if v > 32767 {
		v = 32767
	}
	if v < -32768 {
		v = -32768
	}
	return int16(v)
}
