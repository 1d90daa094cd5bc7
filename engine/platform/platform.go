package platform

import (
	"fmt"
	"runtime"
	"time"
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/goki/vulkan"

	"github.com/vesta-engine/vesta/engine/core"
)

func init() {
	// GLFW event handling must run on the main OS thread.
	runtime.LockOSThread()
}

// Platform owns the native window and translates GLFW callbacks into
// engine events and input state.
type Platform struct {
	Window *glfw.Window
}

func New() *Platform {
	return &Platform{}
}

func (p *Platform) Startup(name string, x, y, width, height uint32) error {
	if err := glfw.Init(); err != nil {
		err = fmt.Errorf("failed to initialize GLFW: %w", err)
		core.LogError(err.Error())
		return err
	}

	if !glfw.VulkanSupported() {
		err := fmt.Errorf("this machine does not support Vulkan through GLFW")
		core.LogError(err.Error())
		return err
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.True)

	window, err := glfw.CreateWindow(int(width), int(height), name, nil, nil)
	if err != nil {
		err = fmt.Errorf("failed to create window: %w", err)
		core.LogError(err.Error())
		return err
	}
	window.SetPos(int(x), int(y))
	p.Window = window

	vk.SetGetInstanceProcAddr(glfw.GetVulkanGetInstanceProcAddress())
	if err := vk.Init(); err != nil {
		err = fmt.Errorf("failed to initialize the Vulkan loader: %w", err)
		core.LogError(err.Error())
		return err
	}

	p.registerCallbacks()
	return nil
}

func (p *Platform) registerCallbacks() {
	p.Window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		pressed := action == glfw.Press || action == glfw.Repeat
		core.InputProcessKey(core.KeyCode(key), pressed)
	})

	p.Window.SetMouseButtonCallback(func(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		var b core.Button
		switch button {
		case glfw.MouseButtonLeft:
			b = core.BUTTON_LEFT
		case glfw.MouseButtonRight:
			b = core.BUTTON_RIGHT
		case glfw.MouseButtonMiddle:
			b = core.BUTTON_MIDDLE
		default:
			return
		}
		core.InputProcessButton(b, action == glfw.Press)
	})

	p.Window.SetCursorPosCallback(func(w *glfw.Window, xpos, ypos float64) {
		core.InputProcessMouseMove(int32(xpos), int32(ypos))
	})

	p.Window.SetScrollCallback(func(w *glfw.Window, xoff, yoff float64) {
		var delta int8 = 1
		if yoff < 0 {
			delta = -1
		}
		core.InputProcessMouseWheel(delta)
	})

	p.Window.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		core.EventFire(core.EventContext{
			Type: core.EVENT_CODE_RESIZED,
			Data: core.SystemEvent{
				WindowWidth:  uint32(width),
				WindowHeight: uint32(height),
			},
		})
	})

	p.Window.SetCloseCallback(func(w *glfw.Window) {
		core.EventFire(core.EventContext{Type: core.EVENT_CODE_APPLICATION_QUIT})
	})
}

// PumpMessages processes pending window events. It returns false once the
// window wants to close.
func (p *Platform) PumpMessages() bool {
	glfw.PollEvents()
	return !p.Window.ShouldClose()
}

// GetRequiredExtensionNames returns the instance extensions GLFW needs for
// surface creation on the current platform.
func (p *Platform) GetRequiredExtensionNames() []string {
	return p.Window.GetRequiredInstanceExtensions()
}

// GetInstanceProcAddrFunc exposes the loader entry point GLFW located, for
// callers that resolve extension commands themselves.
func (p *Platform) GetInstanceProcAddrFunc() unsafe.Pointer {
	return glfw.GetVulkanGetInstanceProcAddress()
}

// CreateVulkanSurface creates a window surface on the given instance.
func (p *Platform) CreateVulkanSurface(instance vk.Instance) (vk.Surface, error) {
	surfacePtr, err := p.Window.CreateWindowSurface(instance, nil)
	if err != nil {
		err = fmt.Errorf("failed to create window surface: %w", err)
		core.LogError(err.Error())
		return vk.NullSurface, err
	}
	return vk.SurfaceFromPointer(surfacePtr), nil
}

// GetFramebufferSize returns the current framebuffer size in pixels.
func (p *Platform) GetFramebufferSize() (uint32, uint32) {
	w, h := p.Window.GetFramebufferSize()
	return uint32(w), uint32(h)
}

// GetAbsoluteTime returns seconds since GLFW was initialized.
func (p *Platform) GetAbsoluteTime() float64 {
	return glfw.GetTime()
}

func (p *Platform) Sleep(ms uint64) {
	time.Sleep(time.Duration(ms) * time.Millisecond)
}

func (p *Platform) Shutdown() {
	if p.Window != nil {
		p.Window.Destroy()
		p.Window = nil
	}
	glfw.Terminate()
}
