package gemini

import (
	"github.com/tdai-app/tdai/pkg/core/types"
)

// geminiRequest is the Gemini API request format.
// Note: Gemini API uses camelCase for JSON field names.
type geminiRequest struct {
	Contents          []geminiContent  `json:"contents"`
	SystemInstruction *geminiContent   `json:"systemInstruction,omitempty"`
	Tools             []geminiTool     `json:"tools,omitempty"`
	GenerationConfig  *geminiGenConfig `json:"generationConfig,omitempty"`
}

// geminiContent represents a content object in Gemini format.
type geminiContent struct {
	Role  string       `json:"role,omitempty"` // "user" or "model"
	Parts []geminiPart `json:"parts"`
}

// geminiPart represents a single part within content.
type geminiPart struct {
	Text       string      `json:"text,omitempty"`
	InlineData *geminiBlob `json:"inlineData,omitempty"`
}

// geminiBlob represents inline binary data.
type geminiBlob struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"` // base64 encoded
}

// geminiTool represents a tool definition.
type geminiTool struct {
	GoogleSearch *geminiGoogleSearch `json:"googleSearch,omitempty"`
}

// geminiGoogleSearch configures Google Search grounding.
type geminiGoogleSearch struct{}

// geminiGenConfig contains generation configuration.
type geminiGenConfig struct {
	ResponseModalities []string `json:"responseModalities,omitempty"`
}

// buildRequest converts a GenerateRequest to the wire format.
func (p *Provider) buildRequest(req *GenerateRequest) *geminiRequest {
	geminiReq := &geminiRequest{
		Contents: translateMessages(req.Messages),
	}

	if req.System != "" {
		geminiReq.SystemInstruction = &geminiContent{
			Parts: []geminiPart{{Text: req.System}},
		}
	}

	if req.WebSearch {
		geminiReq.Tools = append(geminiReq.Tools, geminiTool{GoogleSearch: &geminiGoogleSearch{}})
	}

	if len(req.ResponseModalities) > 0 {
		geminiReq.GenerationConfig = &geminiGenConfig{
			ResponseModalities: req.ResponseModalities,
		}
	}

	return geminiReq
}

// translateMessages converts chat messages to Gemini contents. Attached
// files ride along as inline data before the message text.
func translateMessages(messages []types.ChatMessage) []geminiContent {
	contents := make([]geminiContent, 0, len(messages))

	for _, msg := range messages {
		content := geminiContent{Role: string(msg.Role)}
		if msg.File != nil {
			content.Parts = append(content.Parts, geminiPart{
				InlineData: &geminiBlob{
					MIMEType: msg.File.MIMEType,
					Data:     msg.File.Base64,
				},
			})
		}
		if msg.Text != "" {
			content.Parts = append(content.Parts, geminiPart{Text: msg.Text})
		}
		if len(content.Parts) == 0 {
			continue
		}
		contents = append(contents, content)
	}

	return contents
}
