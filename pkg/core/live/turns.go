package live

import (
	"strings"

	"github.com/tdai-app/tdai/pkg/core/types"
)

// TurnAccumulator collects transcript fragments for the current turn.
// Both sides accumulate in arrival order; Complete flushes them into
// chat messages and resets for the next turn.
type TurnAccumulator struct {
	input  strings.Builder
	output strings.Builder
}

// AddInput appends a fragment of the user's speech transcript.
func (a *TurnAccumulator) AddInput(text string) {
	a.input.WriteString(text)
}

// AddOutput appends a fragment of the model's speech transcript.
func (a *TurnAccumulator) AddOutput(text string) {
	a.output.WriteString(text)
}

// Complete finalizes the turn. It returns the trimmed user message
// followed by the trimmed model message, skipping either side that is
// empty, then clears both buffers.
func (a *TurnAccumulator) Complete() []types.ChatMessage {
	var msgs []types.ChatMessage
	if text := strings.TrimSpace(a.input.String()); text != "" {
		msgs = append(msgs, types.ChatMessage{Role: types.RoleUser, Text: text})
	}
	if text := strings.TrimSpace(a.output.String()); text != "" {
		msgs = append(msgs, types.ChatMessage{Role: types.RoleModel, Text: text})
	}
	a.input.Reset()
	a.output.Reset()
	return msgs
}
