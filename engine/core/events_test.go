package core

import "testing"

func TestEventDispatchReachesHandler(t *testing.T) {
	if !EventSystemInitialize() {
		t.Fatalf("event system failed to initialize")
	}

	var received []EventContext
	code := EventType(0x200)
	EventRegister(code, func(context EventContext) {
		received = append(received, context)
	})

	EventFire(EventContext{Type: code, Data: "payload"})
	if !processPending() {
		t.Fatalf("expected a pending event to be processed")
	}

	if len(received) != 1 {
		t.Fatalf("expected 1 delivery, got %d", len(received))
	}
	if received[0].Data != "payload" {
		t.Fatalf("unexpected payload %v", received[0].Data)
	}
}

func TestEventWithoutHandlerIsConsumed(t *testing.T) {
	if !EventSystemInitialize() {
		t.Fatalf("event system failed to initialize")
	}

	EventFire(EventContext{Type: EventType(0x201)})
	if !processPending() {
		t.Fatalf("queued event should still be dequeued without handlers")
	}
	if processPending() {
		t.Fatalf("queue should be empty")
	}
}

func TestEventHandlersAreCalledInRegistrationOrder(t *testing.T) {
	if !EventSystemInitialize() {
		t.Fatalf("event system failed to initialize")
	}

	code := EventType(0x202)
	var order []int
	EventRegister(code, func(EventContext) { order = append(order, 1) })
	EventRegister(code, func(EventContext) { order = append(order, 2) })

	EventFire(EventContext{Type: code})
	processPending()

	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Fatalf("unexpected handler order %v", order)
	}
}
