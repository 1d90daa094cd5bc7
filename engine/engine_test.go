package engine

import (
	"testing"

	"github.com/vesta-engine/vesta/engine/core"
)

func TestShutdownRunsGameCallback(t *testing.T) {
	ran := false
	g := &Game{
		ApplicationConfig: defaultApplicationConfig(),
		FnShutdown: func(e *Engine) error {
			ran = true
			return nil
		},
	}

	e, err := New(g)
	if err != nil {
		t.Fatalf("engine creation failed: %v", err)
	}

	if err := e.shutdown(); err != nil {
		t.Fatalf("shutdown failed: %v", err)
	}
	if !ran {
		t.Fatalf("game shutdown callback was not invoked")
	}
	if e.currentStage != EngineStageUninitialized {
		t.Fatalf("engine should be uninitialized after shutdown, got stage %d", e.currentStage)
	}
}

func TestResizeToZeroSuspendsEngine(t *testing.T) {
	g := &Game{ApplicationConfig: defaultApplicationConfig()}
	e, err := New(g)
	if err != nil {
		t.Fatalf("engine creation failed: %v", err)
	}

	e.onResized(core.EventContext{
		Type: core.EVENT_CODE_RESIZED,
		Data: core.SystemEvent{WindowWidth: 0, WindowHeight: 0},
	})

	if !e.isSuspended {
		t.Fatalf("zero dimensions should suspend the engine")
	}
}
