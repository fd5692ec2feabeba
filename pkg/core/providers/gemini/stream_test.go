package gemini

import (
	"encoding/json"
	"io"
	"strings"
	"testing"
)

func sseBody(chunks ...map[string]any) io.ReadCloser {
	var b strings.Builder
	for _, chunk := range chunks {
		data, _ := json.Marshal(chunk)
		b.WriteString("data: ")
		b.Write(data)
		b.WriteString("\n\n")
	}
	return io.NopCloser(strings.NewReader(b.String()))
}

func TestTextStream_Deltas(t *testing.T) {
	stream := NewTextStream(sseBody(
		map[string]any{
			"candidates": []any{map[string]any{
				"content": map[string]any{"parts": []any{map[string]any{"text": "Merhaba"}}},
			}},
		},
		map[string]any{
			"candidates": []any{map[string]any{
				"content":      map[string]any{"parts": []any{map[string]any{"text": ", dünya"}}},
				"finishReason": "STOP",
			}},
		},
	))

	var got []string
	for {
		delta, err := stream.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		got = append(got, delta)
	}

	if strings.Join(got, "") != "Merhaba, dünya" {
		t.Fatalf("deltas = %v", got)
	}
}

func TestTextStream_CollectsSources(t *testing.T) {
	stream := NewTextStream(sseBody(
		map[string]any{
			"candidates": []any{map[string]any{
				"content": map[string]any{"parts": []any{map[string]any{"text": "Sonuç"}}},
				"groundingMetadata": map[string]any{
					"groundingChunks": []any{
						map[string]any{"web": map[string]any{"uri": "https://example.com", "title": "Example"}},
						map[string]any{"web": map[string]any{"uri": "", "title": "boş"}},
					},
				},
			}},
		},
	))

	for {
		if _, err := stream.Next(); err == io.EOF {
			break
		} else if err != nil {
			t.Fatal(err)
		}
	}

	sources := stream.Sources()
	if len(sources) != 1 {
		t.Fatalf("sources = %d, want 1", len(sources))
	}
	if sources[0].URI != "https://example.com" || sources[0].Title != "Example" {
		t.Fatalf("source = %+v", sources[0])
	}
}

func TestTextStream_EOFAfterDone(t *testing.T) {
	stream := NewTextStream(io.NopCloser(strings.NewReader("data: [DONE]\n\n")))
	if _, err := stream.Next(); err != io.EOF {
		t.Fatalf("Next() error = %v, want io.EOF", err)
	}
	if _, err := stream.Next(); err != io.EOF {
		t.Fatalf("second Next() error = %v, want io.EOF", err)
	}
}

func TestTextStream_SkipsUnparseableChunks(t *testing.T) {
	body := "data: not json\n\ndata: {\"candidates\":[{\"content\":{\"parts\":[{\"text\":\"ok\"}]}}]}\n\n"
	stream := NewTextStream(io.NopCloser(strings.NewReader(body)))

	delta, err := stream.Next()
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if delta != "ok" {
		t.Fatalf("delta = %q, want ok", delta)
	}
}
