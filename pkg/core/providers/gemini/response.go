package gemini

import (
	"encoding/json"
	"fmt"

	"github.com/tdai-app/tdai/pkg/core/types"
)

// geminiResponse is the Gemini API response format.
type geminiResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
}

// geminiCandidate represents a single candidate response.
type geminiCandidate struct {
	Content           geminiContent      `json:"content"`
	FinishReason      string             `json:"finishReason"`
	GroundingMetadata *groundingMetadata `json:"groundingMetadata,omitempty"`
}

// groundingMetadata contains grounding/search results.
type groundingMetadata struct {
	GroundingChunks []groundingChunk `json:"groundingChunks,omitempty"`
}

// groundingChunk represents a single grounding source.
type groundingChunk struct {
	Web *webChunk `json:"web,omitempty"`
}

// webChunk contains web source information.
type webChunk struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// parseResponse parses a Gemini response body.
func parseResponse(body []byte) (*GenerateResult, error) {
	var geminiResp geminiResponse
	if err := json.Unmarshal(body, &geminiResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	if len(geminiResp.Candidates) == 0 {
		return nil, fmt.Errorf("no candidates in response")
	}

	candidate := geminiResp.Candidates[0]
	result := &GenerateResult{}

	for _, part := range candidate.Content.Parts {
		if part.Text != "" {
			result.Text += part.Text
		}
		if part.InlineData != nil {
			result.Images = append(result.Images, types.FileData{
				Base64:   part.InlineData.Data,
				MIMEType: part.InlineData.MIMEType,
			})
		}
	}
	result.Sources = extractSources(candidate.GroundingMetadata)

	return result, nil
}

// extractSources collects citations with a non-empty URI.
func extractSources(meta *groundingMetadata) []types.Source {
	if meta == nil {
		return nil
	}
	var sources []types.Source
	for _, chunk := range meta.GroundingChunks {
		if chunk.Web == nil || chunk.Web.URI == "" {
			continue
		}
		sources = append(sources, types.Source{
			URI:   chunk.Web.URI,
			Title: chunk.Web.Title,
		})
	}
	return sources
}
