// Package chat routes user prompts to the right generation path: plain
// conversation, search-grounded answers, image generation, or video
// prompt engineering. It also produces chat titles.
package chat

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"regexp"
	"strings"

	"github.com/tdai-app/tdai/pkg/core/providers/gemini"
	"github.com/tdai-app/tdai/pkg/core/types"
)

var urlPattern = regexp.MustCompile(`https?://[^\s]+`)

// Generator is the generation backend the service talks to.
type Generator interface {
	Generate(ctx context.Context, req *gemini.GenerateRequest) (*gemini.GenerateResult, error)
}

// Streamer is a Generator that can also deliver text incrementally.
type Streamer interface {
	GenerateStream(ctx context.Context, req *gemini.GenerateRequest) (*gemini.TextStream, error)
}

// Models names the model per generation path.
type Models struct {
	Chat  string
	Image string
}

// DefaultModels returns the standard model assignment.
func DefaultModels() Models {
	return Models{
		Chat:  "gemini-2.5-flash",
		Image: "gemini-2.5-flash-image",
	}
}

// Service answers prompts and generates titles.
type Service struct {
	gen    Generator
	models Models
	locale Locale
	pick   func(n int) int
}

// NewService creates a chat service.
func NewService(gen Generator, models Models, locale Locale) *Service {
	return &Service{
		gen:    gen,
		models: models,
		locale: locale,
		pick:   rand.Intn,
	}
}

// Locale returns the active locale.
func (s *Service) Locale() Locale { return s.locale }

// Welcome returns the opening assistant message of a new chat.
func (s *Service) Welcome() types.ChatMessage {
	return types.ChatMessage{Role: types.RoleModel, Text: s.locale.Welcome}
}

// Reply answers one user prompt given the prior conversation. The
// returned message is the assistant's; the caller appends both sides to
// the session.
func (s *Service) Reply(ctx context.Context, history []types.ChatMessage, prompt string, file *types.FileData) (types.ChatMessage, error) {
	search := s.shouldSearch(prompt, file)
	switch {
	case !search && file == nil && s.isVideoRequest(prompt):
		return s.replyVideo(ctx, prompt)
	case !search && file == nil && s.isImageRequest(prompt):
		return s.replyImage(ctx, prompt)
	default:
		return s.replyChat(ctx, history, prompt, file, search)
	}
}

// ReplyStream behaves like Reply but delivers conversational text
// through onDelta as it arrives. Image and video prompts do not stream
// and take the regular path, as does a backend without stream support.
func (s *Service) ReplyStream(ctx context.Context, history []types.ChatMessage, prompt string, file *types.FileData, onDelta func(string)) (types.ChatMessage, error) {
	search := s.shouldSearch(prompt, file)
	if !search && file == nil && (s.isVideoRequest(prompt) || s.isImageRequest(prompt)) {
		return s.Reply(ctx, history, prompt, file)
	}
	streamer, ok := s.gen.(Streamer)
	if !ok {
		return s.replyChat(ctx, history, prompt, file, search)
	}

	// A bare link means the user wants the page summarized.
	if search && strings.TrimSpace(prompt) == urlPattern.FindString(prompt) {
		prompt = s.locale.SummarizeURLPrompt + prompt
	}

	messages := append(append([]types.ChatMessage{}, history...), types.ChatMessage{
		Role: types.RoleUser,
		Text: prompt,
		File: file,
	})

	stream, err := streamer.GenerateStream(ctx, &gemini.GenerateRequest{
		Model:     s.models.Chat,
		System:    s.locale.SystemInstruction,
		Messages:  messages,
		WebSearch: search,
	})
	if err != nil {
		return types.ChatMessage{}, err
	}
	defer stream.Close()

	var text strings.Builder
	for {
		delta, err := stream.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return types.ChatMessage{}, err
		}
		text.WriteString(delta)
		if onDelta != nil {
			onDelta(delta)
		}
	}

	return types.ChatMessage{
		Role:    types.RoleModel,
		Text:    text.String(),
		Sources: stream.Sources(),
	}, nil
}

func (s *Service) replyChat(ctx context.Context, history []types.ChatMessage, prompt string, file *types.FileData, search bool) (types.ChatMessage, error) {
	// A bare link means the user wants the page summarized.
	if search && strings.TrimSpace(prompt) == urlPattern.FindString(prompt) {
		prompt = s.locale.SummarizeURLPrompt + prompt
	}

	messages := append(append([]types.ChatMessage{}, history...), types.ChatMessage{
		Role: types.RoleUser,
		Text: prompt,
		File: file,
	})

	result, err := s.gen.Generate(ctx, &gemini.GenerateRequest{
		Model:     s.models.Chat,
		System:    s.locale.SystemInstruction,
		Messages:  messages,
		WebSearch: search,
	})
	if err != nil {
		return types.ChatMessage{}, err
	}

	return types.ChatMessage{
		Role:    types.RoleModel,
		Text:    result.Text,
		Sources: result.Sources,
	}, nil
}

func (s *Service) replyImage(ctx context.Context, prompt string) (types.ChatMessage, error) {
	engineered := fmt.Sprintf("%s: %s, %s, %s",
		s.locale.ImageStyles[s.pick(len(s.locale.ImageStyles))],
		prompt,
		s.locale.ImageAtmospheres[s.pick(len(s.locale.ImageAtmospheres))],
		s.locale.ImageDetails[s.pick(len(s.locale.ImageDetails))])

	result, err := s.gen.Generate(ctx, &gemini.GenerateRequest{
		Model:              s.models.Image,
		Messages:           []types.ChatMessage{{Role: types.RoleUser, Text: engineered}},
		ResponseModalities: []string{"IMAGE"},
	})
	if err != nil {
		return types.ChatMessage{}, err
	}

	msg := types.ChatMessage{Role: types.RoleModel, Text: result.Text}
	if len(result.Images) > 0 {
		msg.Image = fmt.Sprintf("data:%s;base64,%s", result.Images[0].MIMEType, result.Images[0].Base64)
	}
	return msg, nil
}

// replyVideo does not generate video; it engineers a detailed scene
// prompt and points the user at an external generator.
func (s *Service) replyVideo(ctx context.Context, prompt string) (types.ChatMessage, error) {
	result, err := s.gen.Generate(ctx, &gemini.GenerateRequest{
		Model:  s.models.Chat,
		System: s.locale.SystemInstruction,
		Messages: []types.ChatMessage{{
			Role: types.RoleUser,
			Text: s.locale.VideoPromptInstruction + `"` + prompt + `"`,
		}},
	})
	if err != nil {
		return types.ChatMessage{}, err
	}

	text := fmt.Sprintf("%s\n```\n%s\n```\n[https://tryveo3.ai/](https://tryveo3.ai/)",
		s.locale.VideoReplyText, strings.TrimSpace(result.Text))
	return types.ChatMessage{Role: types.RoleModel, Text: text}, nil
}

// Title generates a short chat title from the first prompt. Failures
// fall back to a truncated form of the prompt.
func (s *Service) Title(ctx context.Context, prompt string) string {
	result, err := s.gen.Generate(ctx, &gemini.GenerateRequest{
		Model:    s.models.Chat,
		Messages: []types.ChatMessage{{Role: types.RoleUser, Text: s.locale.TitlePrompt + prompt}},
	})
	if err != nil || strings.TrimSpace(result.Text) == "" {
		return placeholderTitle(prompt)
	}
	title := strings.NewReplacer(`"`, "", `'`, "").Replace(result.Text)
	return strings.TrimSpace(title)
}

func placeholderTitle(prompt string) string {
	runes := []rune(prompt)
	if len(runes) <= 30 {
		return prompt
	}
	return string(runes[:30]) + "..."
}

// shouldSearch decides whether the prompt needs grounding: any URL in
// the prompt, or a search keyword when no file is attached.
func (s *Service) shouldSearch(prompt string, file *types.FileData) bool {
	if urlPattern.MatchString(prompt) {
		return true
	}
	if file != nil {
		return false
	}
	return containsKeyword(prompt, s.locale.SearchKeywords)
}

func (s *Service) isImageRequest(prompt string) bool {
	return containsKeyword(prompt, s.locale.ImageKeywords)
}

func (s *Service) isVideoRequest(prompt string) bool {
	return containsKeyword(prompt, s.locale.VideoKeywords)
}

func containsKeyword(prompt string, keywords []string) bool {
	lower := strings.ToLower(prompt)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
