// Package gemini implements the Google Gemini API: text generation with
// optional search grounding, image generation, and the Live WebSocket
// API used for calls.
package gemini

import (
	"context"
	"net/http"

	"github.com/tdai-app/tdai/pkg/core/types"
)

const (
	// DefaultBaseURL is the default Gemini API endpoint.
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	// DefaultLiveURL is the default Live API WebSocket endpoint.
	DefaultLiveURL = "wss://generativelanguage.googleapis.com/ws/google.ai.generativelanguage.v1beta.GenerativeService.BidiGenerateContent"
)

// GenerateRequest describes one generation call.
type GenerateRequest struct {
	// Model is the bare model name, e.g. "gemini-2.5-flash".
	Model string

	// System is the system instruction, if any.
	System string

	// Messages is the conversation so far, oldest first.
	Messages []types.ChatMessage

	// WebSearch enables Google Search grounding.
	WebSearch bool

	// ResponseModalities requests non-text output, e.g. ["IMAGE"].
	ResponseModalities []string
}

// GenerateResult is the parsed model output.
type GenerateResult struct {
	// Text is the concatenated text parts.
	Text string

	// Images holds inline image parts, present for image generation.
	Images []types.FileData

	// Sources are web citations from search grounding.
	Sources []types.Source
}

// Provider implements the Gemini API.
type Provider struct {
	apiKey     string
	baseURL    string
	liveURL    string
	httpClient *http.Client
}

// New creates a new Gemini provider.
func New(apiKey string, opts ...Option) *Provider {
	p := &Provider{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		liveURL:    DefaultLiveURL,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return "gemini"
}

// Generate sends a non-streaming request.
func (p *Provider) Generate(ctx context.Context, req *GenerateRequest) (*GenerateResult, error) {
	body, err := p.doRequest(ctx, req.Model, p.buildRequest(req))
	if err != nil {
		return nil, err
	}
	return parseResponse(body)
}

// GenerateStream sends a streaming request. Text arrives as deltas on
// the returned stream; sources are available once the stream ends.
func (p *Provider) GenerateStream(ctx context.Context, req *GenerateRequest) (*TextStream, error) {
	body, err := p.doStreamRequest(ctx, req.Model, p.buildRequest(req))
	if err != nil {
		return nil, err
	}
	return NewTextStream(body), nil
}
