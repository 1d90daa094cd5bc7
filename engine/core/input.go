package core

import "sync"

type Button uint16

const (
	BUTTON_LEFT Button = iota
	BUTTON_RIGHT
	BUTTON_MIDDLE
	BUTTON_MAX_BUTTONS
)

// KeyCode values match the GLFW key tokens so the platform layer can cast
// them straight through.
type KeyCode uint16

const (
	KEY_SPACE     KeyCode = 32
	KEY_A         KeyCode = 65
	KEY_B         KeyCode = 66
	KEY_D         KeyCode = 68
	KEY_E         KeyCode = 69
	KEY_L         KeyCode = 76
	KEY_P         KeyCode = 80
	KEY_Q         KeyCode = 81
	KEY_S         KeyCode = 83
	KEY_T         KeyCode = 84
	KEY_W         KeyCode = 87
	KEY_X         KeyCode = 88
	KEY_ESCAPE    KeyCode = 256
	KEY_RIGHT     KeyCode = 262
	KEY_LEFT      KeyCode = 263
	KEY_DOWN      KeyCode = 264
	KEY_UP        KeyCode = 265
	KEYS_MAX_KEYS KeyCode = 512
)

type MouseState struct {
	PosX    int32
	PosY    int32
	Buttons [BUTTON_MAX_BUTTONS]bool
}

type KeyboardState struct {
	Keys [KEYS_MAX_KEYS]bool
}

type InputState struct {
	KeyboardCurrent  KeyboardState
	KeyboardPrevious KeyboardState
	MouseCurrent     MouseState
	MousePrevious    MouseState
}

var onceInput sync.Once
var inputState *InputState

func InputInitialize() error {
	onceInput.Do(func() {
		inputState = &InputState{}
	})
	return nil
}

func InputShutdown() error {
	return nil
}

// InputUpdate copies current states to previous states. Should run at the
// very end of a frame, after all input for the frame has been recorded.
func InputUpdate(deltaTime float64) error {
	if inputState == nil {
		return nil
	}
	inputState.KeyboardPrevious = inputState.KeyboardCurrent
	inputState.MousePrevious = inputState.MouseCurrent
	return nil
}

func InputIsKeyDown(key KeyCode) bool {
	return inputState.KeyboardCurrent.Keys[key]
}

func InputIsKeyUp(key KeyCode) bool {
	return !inputState.KeyboardCurrent.Keys[key]
}

func InputWasKeyDown(key KeyCode) bool {
	return inputState.KeyboardPrevious.Keys[key]
}

func InputWasKeyUp(key KeyCode) bool {
	return !inputState.KeyboardPrevious.Keys[key]
}

// InputProcessKey records a key state change and fires the matching event.
func InputProcessKey(key KeyCode, pressed bool) {
	if key >= KEYS_MAX_KEYS {
		return
	}
	if inputState.KeyboardCurrent.Keys[key] == pressed {
		return
	}
	inputState.KeyboardCurrent.Keys[key] = pressed

	code := EVENT_CODE_KEY_RELEASED
	if pressed {
		code = EVENT_CODE_KEY_PRESSED
	}
	EventFire(EventContext{
		Type: code,
		Data: &KeyEvent{KeyCode: key},
	})
}

func InputIsButtonDown(button Button) bool {
	return inputState.MouseCurrent.Buttons[button]
}

func InputIsButtonUp(button Button) bool {
	return !inputState.MouseCurrent.Buttons[button]
}

func InputWasButtonDown(button Button) bool {
	return inputState.MousePrevious.Buttons[button]
}

func InputGetMousePosition() (int32, int32) {
	return inputState.MouseCurrent.PosX, inputState.MouseCurrent.PosY
}

func InputProcessButton(button Button, pressed bool) {
	if inputState.MouseCurrent.Buttons[button] == pressed {
		return
	}
	inputState.MouseCurrent.Buttons[button] = pressed

	code := EVENT_CODE_BUTTON_RELEASED
	if pressed {
		code = EVENT_CODE_BUTTON_PRESSED
	}
	EventFire(EventContext{
		Type: code,
		Data: &ButtonEvent{Button: button},
	})
}

func InputProcessMouseMove(x, y int32) {
	if inputState.MouseCurrent.PosX == x && inputState.MouseCurrent.PosY == y {
		return
	}
	inputState.MouseCurrent.PosX = x
	inputState.MouseCurrent.PosY = y

	EventFire(EventContext{
		Type: EVENT_CODE_MOUSE_MOVED,
		Data: &MouseEvent{PosX: uint16(x), PosY: uint16(y)},
	})
}

func InputProcessMouseWheel(zDelta int8) {
	EventFire(EventContext{
		Type: EVENT_CODE_MOUSE_WHEEL,
		Data: &MouseWheelEvent{ZDelta: zDelta},
	})
}
