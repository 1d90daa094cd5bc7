package core

import (
	"sync"
	"time"

	"github.com/vesta-engine/vesta/engine/containers"
)

// EventType identifies an event. Applications should use codes beyond 255.
type EventType int

const (
	// Shuts the application down on the next frame.
	EVENT_CODE_APPLICATION_QUIT EventType = 0x01

	// Keyboard key pressed. Data is a *KeyEvent.
	EVENT_CODE_KEY_PRESSED EventType = 0x02

	// Keyboard key released. Data is a *KeyEvent.
	EVENT_CODE_KEY_RELEASED EventType = 0x03

	// Mouse button pressed. Data is a *ButtonEvent.
	EVENT_CODE_BUTTON_PRESSED EventType = 0x04

	// Mouse button released. Data is a *ButtonEvent.
	EVENT_CODE_BUTTON_RELEASED EventType = 0x05

	// Mouse moved. Data is a *MouseEvent.
	EVENT_CODE_MOUSE_MOVED EventType = 0x06

	// Mouse wheel scrolled. Data is a *MouseWheelEvent.
	EVENT_CODE_MOUSE_WHEEL EventType = 0x07

	// Resized/resolution changed from the OS. Data is a *SystemEvent.
	EVENT_CODE_RESIZED EventType = 0x08

	// A watched asset file was written. Data is the asset path (string).
	EVENT_CODE_ASSET_WRITTEN EventType = 0x09

	MAX_EVENT_CODE EventType = 0xFF
)

// EventContext is what handlers receive. Data carries an event specific
// payload, see the EVENT_CODE_* docs.
type EventContext struct {
	Type EventType
	Data interface{}
}

// SystemEvent carries window level data such as resizes.
type SystemEvent struct {
	WindowWidth  uint32
	WindowHeight uint32
}

// KeyEvent carries the key code of a pressed or released key.
type KeyEvent struct {
	KeyCode KeyCode
}

// ButtonEvent carries the mouse button of a press or release.
type ButtonEvent struct {
	Button Button
}

// MouseEvent carries an absolute cursor position.
type MouseEvent struct {
	PosX uint16
	PosY uint16
}

// MouseWheelEvent carries a scroll delta.
type MouseWheelEvent struct {
	ZDelta int8
}

// FnOnEvent is invoked for every fired event of a registered type.
type FnOnEvent func(context EventContext)

const pendingEventCapacity = 1024

type eventSystemState struct {
	mutex    sync.RWMutex
	handlers map[EventType][]FnOnEvent
	pending  *containers.RingQueue[EventContext]
	done     chan struct{}
}

var onceEvent sync.Once
var eventState *eventSystemState

func EventSystemInitialize() bool {
	onceEvent.Do(func() {
		eventState = &eventSystemState{
			handlers: make(map[EventType][]FnOnEvent),
			pending:  containers.NewRingQueue[EventContext](pendingEventCapacity),
			done:     make(chan struct{}),
		}
	})
	return eventState != nil
}

func EventSystemShutdown() error {
	if eventState == nil {
		return nil
	}
	close(eventState.done)
	eventState.mutex.Lock()
	eventState.handlers = make(map[EventType][]FnOnEvent)
	eventState.mutex.Unlock()
	return nil
}

// EventRegister adds a handler for the given event type. There is no
// deduplication, registering twice means being called twice.
func EventRegister(code EventType, callback FnOnEvent) {
	eventState.mutex.Lock()
	defer eventState.mutex.Unlock()
	eventState.handlers[code] = append(eventState.handlers[code], callback)
}

// EventFire queues an event for dispatch. When the queue is full the event
// is dropped with a warning rather than blocking the caller.
func EventFire(context EventContext) {
	eventState.mutex.Lock()
	defer eventState.mutex.Unlock()
	if err := eventState.pending.Enqueue(context); err != nil {
		LogWarn("event queue full, dropping event of type %d", context.Type)
	}
}

// ProcessEvents drains the pending queue until the event system shuts down.
// Runs on its own goroutine, started by the engine.
func ProcessEvents() {
	for {
		select {
		case <-eventState.done:
			return
		default:
			if !processPending() {
				time.Sleep(time.Millisecond)
			}
		}
	}
}

// processPending dispatches a single queued event. Returns false when the
// queue was empty.
func processPending() bool {
	eventState.mutex.Lock()
	context, err := eventState.pending.Dequeue()
	var handlers []FnOnEvent
	if err == nil {
		handlers = append(handlers, eventState.handlers[context.Type]...)
	}
	eventState.mutex.Unlock()

	if err != nil {
		return false
	}
	for _, h := range handlers {
		h(context)
	}
	return true
}
