package gemini

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tdai-app/tdai/pkg/core"
	"github.com/tdai-app/tdai/pkg/core/live"
)

// setupFrame is the first client message on a Live connection.
type setupFrame struct {
	Setup setupPayload `json:"setup"`
}

type setupPayload struct {
	Model                    string         `json:"model"`
	GenerationConfig         *liveGenConfig `json:"generationConfig,omitempty"`
	SystemInstruction        *geminiContent `json:"systemInstruction,omitempty"`
	InputAudioTranscription  *struct{}      `json:"inputAudioTranscription,omitempty"`
	OutputAudioTranscription *struct{}      `json:"outputAudioTranscription,omitempty"`
}

type liveGenConfig struct {
	ResponseModalities []string      `json:"responseModalities,omitempty"`
	SpeechConfig       *speechConfig `json:"speechConfig,omitempty"`
}

type speechConfig struct {
	VoiceConfig *voiceConfig `json:"voiceConfig,omitempty"`
}

type voiceConfig struct {
	PrebuiltVoiceConfig *prebuiltVoiceConfig `json:"prebuiltVoiceConfig,omitempty"`
}

type prebuiltVoiceConfig struct {
	VoiceName string `json:"voiceName"`
}

// realtimeFrame carries outbound media chunks.
type realtimeFrame struct {
	RealtimeInput realtimeInput `json:"realtimeInput"`
}

type realtimeInput struct {
	MediaChunks []live.MediaChunk `json:"mediaChunks"`
}

// serverFrame is the envelope of inbound Live messages.
type serverFrame struct {
	SetupComplete *struct{}      `json:"setupComplete,omitempty"`
	ServerContent *serverContent `json:"serverContent,omitempty"`
}

type serverContent struct {
	ModelTurn           *geminiContent `json:"modelTurn,omitempty"`
	InputTranscription  *transcription `json:"inputTranscription,omitempty"`
	OutputTranscription *transcription `json:"outputTranscription,omitempty"`
	TurnComplete        bool           `json:"turnComplete,omitempty"`
	Interrupted         bool           `json:"interrupted,omitempty"`
}

type transcription struct {
	Text string `json:"text,omitempty"`
}

// LiveSession is an open Live API connection. It satisfies the call
// session's transport interface.
type LiveSession struct {
	conn    *websocket.Conn
	events  chan live.ServerEvent
	writeMu sync.Mutex

	closeOnce sync.Once
}

// DialLive opens a Live API connection and completes the setup
// handshake before returning.
func (p *Provider) DialLive(ctx context.Context, cfg live.SessionConfig) (*LiveSession, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 15*time.Second)
		defer cancel()
	}

	url := fmt.Sprintf("%s?key=%s", p.liveURL, p.apiKey)
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		if resp != nil {
			return nil, core.NewSessionError(fmt.Sprintf("dial live: %v (status %d)", err, resp.StatusCode))
		}
		return nil, core.NewSessionError(fmt.Sprintf("dial live: %v", err))
	}

	setup := setupFrame{
		Setup: setupPayload{
			Model: "models/" + cfg.Model,
			GenerationConfig: &liveGenConfig{
				ResponseModalities: []string{"AUDIO"},
				SpeechConfig: &speechConfig{
					VoiceConfig: &voiceConfig{
						PrebuiltVoiceConfig: &prebuiltVoiceConfig{VoiceName: cfg.Voice},
					},
				},
			},
			InputAudioTranscription:  &struct{}{},
			OutputAudioTranscription: &struct{}{},
		},
	}
	if cfg.System != "" {
		setup.Setup.SystemInstruction = &geminiContent{
			Parts: []geminiPart{{Text: cfg.System}},
		}
	}
	if err := conn.WriteJSON(setup); err != nil {
		conn.Close()
		return nil, core.NewSessionError(fmt.Sprintf("send setup: %v", err))
	}

	// The server must acknowledge setup before media flows.
	conn.SetReadDeadline(time.Now().Add(15 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		conn.Close()
		return nil, core.NewSessionError(fmt.Sprintf("read setup ack: %v", err))
	}
	conn.SetReadDeadline(time.Time{})

	var frame serverFrame
	if err := json.Unmarshal(data, &frame); err != nil || frame.SetupComplete == nil {
		conn.Close()
		return nil, core.NewSessionError("setup not acknowledged")
	}

	s := &LiveSession{
		conn:   conn,
		events: make(chan live.ServerEvent, 256),
	}
	go s.readLoop()
	return s, nil
}

// SendMedia transmits one outbound chunk.
func (s *LiveSession) SendMedia(chunk live.MediaChunk) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteJSON(realtimeFrame{
		RealtimeInput: realtimeInput{MediaChunks: []live.MediaChunk{chunk}},
	})
}

// Events returns the inbound event stream. The channel closes when the
// connection ends.
func (s *LiveSession) Events() <-chan live.ServerEvent { return s.events }

// Close shuts the connection down. The event channel closes after the
// read loop exits.
func (s *LiveSession) Close() error {
	s.closeOnce.Do(func() {
		s.writeMu.Lock()
		s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		s.writeMu.Unlock()
		s.conn.Close()
	})
	return nil
}

func (s *LiveSession) readLoop() {
	defer close(s.events)

	for {
		// Live frames arrive as both text and binary messages; the
		// payload is JSON either way.
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.emit(&live.ServerClosedEvent{})
			} else {
				s.emit(&live.ServerErrorEvent{Err: err})
			}
			return
		}

		var frame serverFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			continue
		}
		if frame.ServerContent == nil {
			continue
		}
		s.dispatch(frame.ServerContent)
	}
}

func (s *LiveSession) dispatch(content *serverContent) {
	if content.ModelTurn != nil {
		for _, part := range content.ModelTurn.Parts {
			if part.InlineData == nil || !strings.HasPrefix(part.InlineData.MIMEType, "audio/") {
				continue
			}
			pcm, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
			if err != nil {
				continue
			}
			s.emit(&live.AudioEvent{Data: pcm})
		}
	}
	if content.InputTranscription != nil && content.InputTranscription.Text != "" {
		s.emit(&live.InputTranscriptEvent{Text: content.InputTranscription.Text})
	}
	if content.OutputTranscription != nil && content.OutputTranscription.Text != "" {
		s.emit(&live.OutputTranscriptEvent{Text: content.OutputTranscription.Text})
	}
	if content.Interrupted {
		s.emit(&live.ServerInterruptedEvent{})
	}
	if content.TurnComplete {
		s.emit(&live.TurnCompleteEvent{})
	}
}

func (s *LiveSession) emit(ev live.ServerEvent) {
	select {
	case s.events <- ev:
	default:
	}
}
