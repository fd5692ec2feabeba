package live

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/jpeg"
)

// FrameSource yields the latest camera frame. Grab returns false when
// no frame is available.
type FrameSource interface {
	Grab() (image.Image, bool)
}

// FrameSampler encodes camera frames as JPEG media chunks. The session
// calls Sample on a fixed interval while the call is active.
type FrameSampler struct {
	source  FrameSource
	quality int
}

// NewFrameSampler creates a sampler encoding at the given JPEG quality.
func NewFrameSampler(source FrameSource, quality int) *FrameSampler {
	return &FrameSampler{source: source, quality: quality}
}

// Sample grabs the current frame and returns it as a chunk. The second
// return is false when no frame was available or encoding failed.
func (f *FrameSampler) Sample() (MediaChunk, bool) {
	img, ok := f.source.Grab()
	if !ok {
		return MediaChunk{}, false
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: f.quality}); err != nil {
		return MediaChunk{}, false
	}
	return MediaChunk{
		MIMEType: "image/jpeg",
		Data:     base64.StdEncoding.EncodeToString(buf.Bytes()),
	}, true
}
