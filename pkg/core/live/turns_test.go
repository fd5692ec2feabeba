package live

import (
	"testing"

	"github.com/tdai-app/tdai/pkg/core/types"
)

func TestTurnAccumulator_UserOnly(t *testing.T) {
	var a TurnAccumulator
	a.AddInput("mer")
	a.AddInput("haba")

	msgs := a.Complete()
	if len(msgs) != 1 {
		t.Fatalf("got %d messages, want 1", len(msgs))
	}
	if msgs[0].Role != types.RoleUser || msgs[0].Text != "merhaba" {
		t.Errorf("message = %+v, want user/merhaba", msgs[0])
	}
}

func TestTurnAccumulator_BothSides(t *testing.T) {
	var a TurnAccumulator
	a.AddOutput("Merhaba! ")
	a.AddInput(" nasılsın ")
	a.AddOutput("Nasıl yardımcı olabilirim?")

	msgs := a.Complete()
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}
	if msgs[0].Role != types.RoleUser || msgs[0].Text != "nasılsın" {
		t.Errorf("first message = %+v, want trimmed user text", msgs[0])
	}
	if msgs[1].Role != types.RoleModel || msgs[1].Text != "Merhaba! Nasıl yardımcı olabilirim?" {
		t.Errorf("second message = %+v", msgs[1])
	}
}

func TestTurnAccumulator_WhitespaceSkipped(t *testing.T) {
	var a TurnAccumulator
	a.AddInput("  \n ")
	if msgs := a.Complete(); len(msgs) != 0 {
		t.Errorf("got %d messages for whitespace-only turn, want 0", len(msgs))
	}
}

func TestTurnAccumulator_ResetsBetweenTurns(t *testing.T) {
	var a TurnAccumulator
	a.AddInput("birinci")
	a.Complete()

	a.AddInput("ikinci")
	msgs := a.Complete()
	if len(msgs) != 1 || msgs[0].Text != "ikinci" {
		t.Errorf("second turn = %+v, want only ikinci", msgs)
	}
}
