package live

import "github.com/tdai-app/tdai/pkg/core/types"

// Event is the interface implemented by all session events.
type Event interface {
	EventType() string
}

// SessionCreatedEvent is emitted when the session connects.
type SessionCreatedEvent struct {
	SessionID string `json:"session_id"`
	Model     string `json:"model"`
}

func (e *SessionCreatedEvent) EventType() string { return "session.created" }

// StateChangedEvent is emitted when the session state changes.
type StateChangedEvent struct {
	From SessionState `json:"from"`
	To   SessionState `json:"to"`
}

func (e *StateChangedEvent) EventType() string { return "session.state_changed" }

// SpeakingChangedEvent is emitted when the model starts or stops speaking.
// Stops are debounced: the model counts as speaking until no audio has
// arrived for the configured debounce window.
type SpeakingChangedEvent struct {
	Speaking bool `json:"speaking"`
}

func (e *SpeakingChangedEvent) EventType() string { return "session.speaking_changed" }

// TurnMessagesEvent carries the finalized transcript messages of one
// completed turn, user message first.
type TurnMessagesEvent struct {
	Messages []types.ChatMessage `json:"messages"`
}

func (e *TurnMessagesEvent) EventType() string { return "session.turn_messages" }

// InterruptedEvent is emitted when the model's speech is cut off.
type InterruptedEvent struct{}

func (e *InterruptedEvent) EventType() string { return "session.interrupted" }

// ErrorEvent is emitted for non-fatal and fatal session errors.
type ErrorEvent struct {
	Err error `json:"-"`
}

func (e *ErrorEvent) EventType() string { return "session.error" }

// SessionClosedEvent is the final event before the event channel closes.
type SessionClosedEvent struct{}

func (e *SessionClosedEvent) EventType() string { return "session.closed" }

// DebugEvent carries internal diagnostics when debug is enabled.
type DebugEvent struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

func (e *DebugEvent) EventType() string { return "session.debug" }

// ServerEvent is the tagged union of messages arriving from the server.
// Exactly one variant is meaningful per event; consumers switch on the
// concrete type.
type ServerEvent interface {
	serverEvent()
}

// AudioEvent carries a chunk of 16-bit PCM model speech.
type AudioEvent struct {
	Data []byte
}

// ServerInterruptedEvent signals that playback of queued model speech
// must stop immediately.
type ServerInterruptedEvent struct{}

// InputTranscriptEvent carries a fragment of the user's speech transcript.
type InputTranscriptEvent struct {
	Text string
}

// OutputTranscriptEvent carries a fragment of the model's speech transcript.
type OutputTranscriptEvent struct {
	Text string
}

// TurnCompleteEvent signals that the model finished its turn.
type TurnCompleteEvent struct{}

// ServerErrorEvent carries a transport or protocol error.
type ServerErrorEvent struct {
	Err error
}

// ServerClosedEvent signals that the server closed the connection.
type ServerClosedEvent struct{}

func (*AudioEvent) serverEvent()             {}
func (*ServerInterruptedEvent) serverEvent() {}
func (*InputTranscriptEvent) serverEvent()   {}
func (*OutputTranscriptEvent) serverEvent()  {}
func (*TurnCompleteEvent) serverEvent()      {}
func (*ServerErrorEvent) serverEvent()       {}
func (*ServerClosedEvent) serverEvent()      {}
