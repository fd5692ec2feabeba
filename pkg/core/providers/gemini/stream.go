package gemini

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"

	"github.com/tdai-app/tdai/pkg/core/types"
)

// TextStream iterates text deltas from a streaming response.
type TextStream struct {
	reader   *bufio.Reader
	closer   io.Closer
	err      error
	finished bool
	sources  []types.Source
}

// streamChunk represents a streaming chunk from Gemini.
type streamChunk struct {
	Candidates []geminiCandidate `json:"candidates"`
}

// NewTextStream creates a stream from an SSE response body.
func NewTextStream(body io.ReadCloser) *TextStream {
	return &TextStream{
		reader: bufio.NewReader(body),
		closer: body,
	}
}

// Next returns the next text delta. Returns "", io.EOF when the stream
// is complete.
func (s *TextStream) Next() (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if s.finished {
		return "", io.EOF
	}

	for {
		line, err := s.reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				s.finished = true
				return "", io.EOF
			}
			s.err = err
			return "", err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		// Parse SSE format: "data: <json>"
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		data := strings.TrimPrefix(line, "data: ")
		if data == "[DONE]" || data == "" {
			s.finished = true
			return "", io.EOF
		}

		var chunk streamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			continue // Skip unparseable chunks
		}
		if len(chunk.Candidates) == 0 {
			continue
		}

		candidate := chunk.Candidates[0]
		if srcs := extractSources(candidate.GroundingMetadata); len(srcs) > 0 {
			s.sources = append(s.sources, srcs...)
		}

		var text string
		for _, part := range candidate.Content.Parts {
			text += part.Text
		}
		if text != "" {
			return text, nil
		}
	}
}

// Sources returns citations accumulated so far. Complete once Next has
// returned io.EOF.
func (s *TextStream) Sources() []types.Source {
	return s.sources
}

// Close releases resources associated with the stream.
func (s *TextStream) Close() error {
	return s.closer.Close()
}
