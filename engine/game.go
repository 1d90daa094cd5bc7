package engine

import (
	"github.com/vesta-engine/vesta/engine/renderer"
)

// Game is the contract between an application and the engine. The engine
// drives the lifecycle, the application fills in the callbacks.
type Game struct {
	ApplicationConfig *ApplicationConfig

	// State is application owned and never touched by the engine.
	State interface{}

	FnBoot       func(engine *Engine) error
	FnInitialize func(engine *Engine) error
	FnUpdate     func(engine *Engine, deltaTime float64) error
	FnRender     func(engine *Engine, packet *renderer.RenderPacket, deltaTime float64) error
	FnOnResize   func(engine *Engine, width, height uint32) error
	FnShutdown   func(engine *Engine) error
}
