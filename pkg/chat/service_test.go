package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/tdai-app/tdai/pkg/core/providers/gemini"
	"github.com/tdai-app/tdai/pkg/core/types"
)

type fakeGenerator struct {
	requests []*gemini.GenerateRequest
	result   *gemini.GenerateResult
	err      error
}

func (f *fakeGenerator) Generate(ctx context.Context, req *gemini.GenerateRequest) (*gemini.GenerateResult, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &gemini.GenerateResult{Text: "tamam"}, nil
}

type fakeStreamGenerator struct {
	fakeGenerator
	streamRequests []*gemini.GenerateRequest
	deltas         []string
}

func (f *fakeStreamGenerator) GenerateStream(ctx context.Context, req *gemini.GenerateRequest) (*gemini.TextStream, error) {
	f.streamRequests = append(f.streamRequests, req)
	var b strings.Builder
	for _, d := range f.deltas {
		fmt.Fprintf(&b, "data: {\"candidates\":[{\"content\":{\"parts\":[{\"text\":%q}]}}]}\n\n", d)
	}
	b.WriteString("data: [DONE]\n\n")
	return gemini.NewTextStream(io.NopCloser(strings.NewReader(b.String()))), nil
}

func newTestService(gen Generator) *Service {
	s := NewService(gen, DefaultModels(), Turkish())
	s.pick = func(n int) int { return 0 }
	return s
}

func TestReply_PlainChat(t *testing.T) {
	gen := &fakeGenerator{}
	s := newTestService(gen)

	msg, err := s.Reply(context.Background(), nil, "merhaba", nil)
	if err != nil {
		t.Fatal(err)
	}
	if msg.Role != types.RoleModel || msg.Text != "tamam" {
		t.Fatalf("reply = %+v", msg)
	}

	req := gen.requests[0]
	if req.Model != "gemini-2.5-flash" {
		t.Errorf("model = %q", req.Model)
	}
	if req.WebSearch {
		t.Error("plain chat routed to search")
	}
}

func TestReply_SearchKeyword(t *testing.T) {
	gen := &fakeGenerator{result: &gemini.GenerateResult{
		Text:    "güncel haberler",
		Sources: []types.Source{{URI: "https://example.com", Title: "Example"}},
	}}
	s := newTestService(gen)

	msg, err := s.Reply(context.Background(), nil, "bugün son dakika haber var mı", nil)
	if err != nil {
		t.Fatal(err)
	}
	if !gen.requests[0].WebSearch {
		t.Error("search keyword did not enable grounding")
	}
	if len(msg.Sources) != 1 {
		t.Errorf("sources = %d, want 1", len(msg.Sources))
	}
}

func TestReply_KeywordWithFileSkipsSearch(t *testing.T) {
	gen := &fakeGenerator{}
	s := newTestService(gen)

	file := &types.FileData{Base64: "aGVsbG8=", MIMEType: "application/pdf"}
	if _, err := s.Reply(context.Background(), nil, "bu belgede güncel ne var", file); err != nil {
		t.Fatal(err)
	}
	if gen.requests[0].WebSearch {
		t.Error("attached file must suppress keyword-triggered search")
	}
}

func TestReply_BareURLSummarized(t *testing.T) {
	gen := &fakeGenerator{}
	s := newTestService(gen)

	if _, err := s.Reply(context.Background(), nil, "https://example.com/haber", nil); err != nil {
		t.Fatal(err)
	}
	req := gen.requests[0]
	if !req.WebSearch {
		t.Error("URL did not enable grounding")
	}
	sent := req.Messages[len(req.Messages)-1].Text
	if !strings.HasPrefix(sent, Turkish().SummarizeURLPrompt) {
		t.Errorf("bare URL prompt = %q, want summarize prefix", sent)
	}
}

func TestReply_ImageGeneration(t *testing.T) {
	gen := &fakeGenerator{result: &gemini.GenerateResult{
		Images: []types.FileData{{Base64: "aW1n", MIMEType: "image/png"}},
	}}
	s := newTestService(gen)

	msg, err := s.Reply(context.Background(), nil, "bana bir kedi çiz", nil)
	if err != nil {
		t.Fatal(err)
	}

	req := gen.requests[0]
	if req.Model != "gemini-2.5-flash-image" {
		t.Errorf("model = %q", req.Model)
	}
	if len(req.ResponseModalities) != 1 || req.ResponseModalities[0] != "IMAGE" {
		t.Errorf("modalities = %v", req.ResponseModalities)
	}
	engineered := req.Messages[0].Text
	if !strings.Contains(engineered, "bana bir kedi çiz") || !strings.Contains(engineered, "fotogerçekçi") {
		t.Errorf("engineered prompt = %q", engineered)
	}
	if msg.Image != "data:image/png;base64,aW1n" {
		t.Errorf("image = %q", msg.Image)
	}
}

func TestReply_VideoPromptEngineering(t *testing.T) {
	gen := &fakeGenerator{result: &gemini.GenerateResult{Text: "A cinematic shot of..."}}
	s := newTestService(gen)

	msg, err := s.Reply(context.Background(), nil, "uçan bir balon videosunu oluştur", nil)
	if err != nil {
		t.Fatal(err)
	}
	want := Turkish().VideoPromptInstruction + `"uçan bir balon videosunu oluştur"`
	if got := gen.requests[0].Messages[0].Text; got != want {
		t.Errorf("instruction = %q, want %q", got, want)
	}
	if !strings.Contains(msg.Text, "```\nA cinematic shot of...\n```") {
		t.Errorf("reply = %q, want fenced prompt", msg.Text)
	}
	if !strings.Contains(msg.Text, "https://tryveo3.ai/") {
		t.Errorf("reply = %q, want generator link", msg.Text)
	}
}

func TestReply_SearchBeatsImageKeyword(t *testing.T) {
	gen := &fakeGenerator{}
	s := newTestService(gen)

	if _, err := s.Reply(context.Background(), nil, "güncel bir resim yap", nil); err != nil {
		t.Fatal(err)
	}
	req := gen.requests[0]
	if !req.WebSearch {
		t.Error("search keyword lost to image routing")
	}
	if req.Model != "gemini-2.5-flash" {
		t.Errorf("model = %q, want chat model", req.Model)
	}
	if len(req.ResponseModalities) != 0 {
		t.Errorf("modalities = %v, want none", req.ResponseModalities)
	}
}

func TestReply_VideoBeatsImageKeyword(t *testing.T) {
	gen := &fakeGenerator{result: &gemini.GenerateResult{Text: "A wide shot of..."}}
	s := newTestService(gen)

	msg, err := s.Reply(context.Background(), nil, "bunu çiz ve videosunu yap", nil)
	if err != nil {
		t.Fatal(err)
	}
	req := gen.requests[0]
	if len(req.ResponseModalities) != 0 {
		t.Errorf("modalities = %v, routed to image generation", req.ResponseModalities)
	}
	if !strings.HasPrefix(req.Messages[0].Text, Turkish().VideoPromptInstruction) {
		t.Errorf("request = %q, want video instruction", req.Messages[0].Text)
	}
	if !strings.Contains(msg.Text, "https://tryveo3.ai/") {
		t.Errorf("reply = %q, want generator link", msg.Text)
	}
}

func TestReplyStream_Deltas(t *testing.T) {
	gen := &fakeStreamGenerator{deltas: []string{"Merhaba", ", dünya"}}
	s := newTestService(gen)

	var got []string
	msg, err := s.ReplyStream(context.Background(), nil, "merhaba", nil, func(d string) {
		got = append(got, d)
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0] != "Merhaba" || got[1] != ", dünya" {
		t.Errorf("deltas = %v", got)
	}
	if msg.Role != types.RoleModel || msg.Text != "Merhaba, dünya" {
		t.Errorf("reply = %+v", msg)
	}
	if len(gen.streamRequests) != 1 || len(gen.requests) != 0 {
		t.Errorf("stream calls = %d, generate calls = %d", len(gen.streamRequests), len(gen.requests))
	}
}

func TestReplyStream_ImagePromptDoesNotStream(t *testing.T) {
	gen := &fakeStreamGenerator{}
	gen.result = &gemini.GenerateResult{
		Images: []types.FileData{{Base64: "aW1n", MIMEType: "image/png"}},
	}
	s := newTestService(gen)

	msg, err := s.ReplyStream(context.Background(), nil, "bana bir kedi çiz", nil, func(string) {
		t.Error("image prompt produced a delta")
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(gen.streamRequests) != 0 || len(gen.requests) != 1 {
		t.Errorf("stream calls = %d, generate calls = %d", len(gen.streamRequests), len(gen.requests))
	}
	if msg.Image == "" {
		t.Error("image reply missing data URL")
	}
}

func TestReplyStream_FallsBackWithoutStreamer(t *testing.T) {
	gen := &fakeGenerator{}
	s := newTestService(gen)

	msg, err := s.ReplyStream(context.Background(), nil, "merhaba", nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if msg.Text != "tamam" {
		t.Errorf("reply = %+v", msg)
	}
	if len(gen.requests) != 1 {
		t.Errorf("generate calls = %d, want 1", len(gen.requests))
	}
}

func TestTitle_StripsQuotes(t *testing.T) {
	gen := &fakeGenerator{result: &gemini.GenerateResult{Text: "\"Hava 'Durumu' Sohbeti\"\n"}}
	s := newTestService(gen)

	if got := s.Title(context.Background(), "bugün hava nasıl"); got != "Hava Durumu Sohbeti" {
		t.Errorf("title = %q", got)
	}
}

func TestTitle_FallbackOnError(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("upstream down")}
	s := newTestService(gen)

	long := strings.Repeat("çok uzun bir soru ", 5)
	got := s.Title(context.Background(), long)
	if !strings.HasSuffix(got, "...") {
		t.Errorf("fallback title = %q, want truncated", got)
	}
	if n := len([]rune(got)); n != 33 {
		t.Errorf("fallback title length = %d runes, want 33", n)
	}
	if short := s.Title(context.Background(), "kısa"); short != "kısa" {
		t.Errorf("short fallback = %q", short)
	}
}
