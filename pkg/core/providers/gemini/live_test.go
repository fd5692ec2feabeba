package gemini

import (
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/tdai-app/tdai/pkg/core/live"
)

func dispatchFrame(t *testing.T, raw string) []live.ServerEvent {
	t.Helper()
	var frame serverFrame
	if err := json.Unmarshal([]byte(raw), &frame); err != nil {
		t.Fatal(err)
	}
	if frame.ServerContent == nil {
		t.Fatal("frame has no serverContent")
	}

	s := &LiveSession{events: make(chan live.ServerEvent, 16)}
	s.dispatch(frame.ServerContent)
	close(s.events)

	var got []live.ServerEvent
	for ev := range s.events {
		got = append(got, ev)
	}
	return got
}

func TestLiveDispatch_Audio(t *testing.T) {
	pcm := []byte{1, 2, 3, 4}
	raw := `{"serverContent":{"modelTurn":{"parts":[{"inlineData":{"mimeType":"audio/pcm;rate=24000","data":"` +
		base64.StdEncoding.EncodeToString(pcm) + `"}}]}}}`

	events := dispatchFrame(t, raw)
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}
	audio, ok := events[0].(*live.AudioEvent)
	if !ok {
		t.Fatalf("event type = %T, want AudioEvent", events[0])
	}
	if len(audio.Data) != 4 || audio.Data[0] != 1 {
		t.Fatalf("audio data = %v", audio.Data)
	}
}

func TestLiveDispatch_TranscriptsAndTurnComplete(t *testing.T) {
	raw := `{"serverContent":{"inputTranscription":{"text":"merhaba"},"outputTranscription":{"text":"selam"},"turnComplete":true}}`

	events := dispatchFrame(t, raw)
	if len(events) != 3 {
		t.Fatalf("events = %d, want 3", len(events))
	}
	if in, ok := events[0].(*live.InputTranscriptEvent); !ok || in.Text != "merhaba" {
		t.Fatalf("first event = %#v", events[0])
	}
	if out, ok := events[1].(*live.OutputTranscriptEvent); !ok || out.Text != "selam" {
		t.Fatalf("second event = %#v", events[1])
	}
	if _, ok := events[2].(*live.TurnCompleteEvent); !ok {
		t.Fatalf("third event = %T, want TurnCompleteEvent", events[2])
	}
}

func TestLiveDispatch_Interrupted(t *testing.T) {
	events := dispatchFrame(t, `{"serverContent":{"interrupted":true}}`)
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}
	if _, ok := events[0].(*live.ServerInterruptedEvent); !ok {
		t.Fatalf("event type = %T, want ServerInterruptedEvent", events[0])
	}
}

func TestLiveDispatch_IgnoresNonAudioParts(t *testing.T) {
	raw := `{"serverContent":{"modelTurn":{"parts":[{"text":"thinking"},{"inlineData":{"mimeType":"image/png","data":"aa=="}}]}}}`
	if events := dispatchFrame(t, raw); len(events) != 0 {
		t.Fatalf("events = %d, want 0", len(events))
	}
}
