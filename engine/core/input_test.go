package core

import "testing"

func TestInputKeyStateTransitions(t *testing.T) {
	if !EventSystemInitialize() {
		t.Fatalf("event system failed to initialize")
	}
	if err := InputInitialize(); err != nil {
		t.Fatalf("input failed to initialize: %v", err)
	}

	InputProcessKey(KEY_SPACE, true)
	if !InputIsKeyDown(KEY_SPACE) {
		t.Fatalf("key should be down after press")
	}
	if !InputWasKeyUp(KEY_SPACE) {
		t.Fatalf("key should have been up on the previous frame")
	}

	if err := InputUpdate(0.016); err != nil {
		t.Fatalf("input update failed: %v", err)
	}
	if !InputWasKeyDown(KEY_SPACE) {
		t.Fatalf("previous frame state should now report the press")
	}

	InputProcessKey(KEY_SPACE, false)
	if !InputIsKeyUp(KEY_SPACE) {
		t.Fatalf("key should be up after release")
	}
}

func TestInputMousePositionTracking(t *testing.T) {
	if !EventSystemInitialize() {
		t.Fatalf("event system failed to initialize")
	}
	if err := InputInitialize(); err != nil {
		t.Fatalf("input failed to initialize: %v", err)
	}

	InputProcessMouseMove(120, 340)
	x, y := InputGetMousePosition()
	if x != 120 || y != 340 {
		t.Fatalf("unexpected mouse position %d,%d", x, y)
	}
}
