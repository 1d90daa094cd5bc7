package engine

import (
	"fmt"

	"github.com/vesta-engine/vesta/engine/assets"
	"github.com/vesta-engine/vesta/engine/core"
	"github.com/vesta-engine/vesta/engine/platform"
	"github.com/vesta-engine/vesta/engine/renderer"
)

type engineStage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized engineStage = iota
	// Engine is currently booting up
	EngineStageBooting
	// Engine completed boot process and is ready to be initialized
	EngineStageBootComplete
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

const targetFrameSeconds = 1.0 / 60.0

// Engine drives the application lifecycle: platform, assets, renderer and
// the game's callbacks.
type Engine struct {
	currentStage engineStage
	gameInstance *Game

	platform     *platform.Platform
	renderer     *renderer.Renderer
	assetManager *assets.AssetManager

	clock *core.Clock

	isRunning   bool
	isSuspended bool
	width       uint32
	height      uint32
	lastTime    float64
}

func New(g *Game) (*Engine, error) {
	if g == nil || g.ApplicationConfig == nil {
		err := fmt.Errorf("engine requires a game with an application config")
		return nil, err
	}

	core.LoggingSetLevel(core.ParseLogLevel(g.ApplicationConfig.LogLevel))

	if !core.EventSystemInitialize() {
		err := fmt.Errorf("failed to initialize the event system")
		core.LogError(err.Error())
		return nil, err
	}
	if err := core.InputInitialize(); err != nil {
		return nil, err
	}
	if err := core.MetricsInitialize(); err != nil {
		return nil, err
	}

	e := &Engine{
		currentStage: EngineStageUninitialized,
		gameInstance: g,
		platform:     platform.New(),
		clock:        core.NewClock(),
		width:        g.ApplicationConfig.StartWidth,
		height:       g.ApplicationConfig.StartHeight,
	}
	return e, nil
}

// Renderer gives the game access to GPU resource creation.
func (e *Engine) Renderer() *renderer.Renderer {
	return e.renderer
}

// Assets gives the game access to the asset manager.
func (e *Engine) Assets() *assets.AssetManager {
	return e.assetManager
}

func (e *Engine) Initialize() error {
	e.currentStage = EngineStageBooting
	cfg := e.gameInstance.ApplicationConfig

	if err := e.platform.Startup(cfg.Name, cfg.StartPosX, cfg.StartPosY, cfg.StartWidth, cfg.StartHeight); err != nil {
		return err
	}

	e.assetManager = assets.NewAssetManager()
	if err := e.assetManager.Initialize(cfg.AssetsRoot); err != nil {
		return err
	}

	e.renderer = renderer.New(e.platform)
	if err := e.renderer.Initialize(cfg.Name, cfg.StartWidth, cfg.StartHeight); err != nil {
		return err
	}

	core.EventRegister(core.EVENT_CODE_APPLICATION_QUIT, e.onQuit)
	core.EventRegister(core.EVENT_CODE_RESIZED, e.onResized)

	if e.gameInstance.FnBoot != nil {
		if err := e.gameInstance.FnBoot(e); err != nil {
			return err
		}
	}
	e.currentStage = EngineStageBootComplete

	e.currentStage = EngineStageInitializing
	if e.gameInstance.FnInitialize != nil {
		if err := e.gameInstance.FnInitialize(e); err != nil {
			return err
		}
	}
	e.currentStage = EngineStageInitialized
	return nil
}

func (e *Engine) Run() error {
	e.currentStage = EngineStageRunning
	e.isRunning = true

	go core.ProcessEvents()

	e.clock.Start()
	e.lastTime = e.platform.GetAbsoluteTime()

	for e.isRunning {
		if !e.platform.PumpMessages() {
			e.isRunning = false
			break
		}

		currentTime := e.platform.GetAbsoluteTime()
		deltaTime := currentTime - e.lastTime
		e.lastTime = currentTime

		if e.isSuspended {
			e.platform.Sleep(100)
			continue
		}

		if e.gameInstance.FnUpdate != nil {
			if err := e.gameInstance.FnUpdate(e, deltaTime); err != nil {
				core.LogError("game update failed: %v", err)
				e.isRunning = false
				break
			}
		}

		packet := &renderer.RenderPacket{DeltaTime: deltaTime}
		if e.gameInstance.FnRender != nil {
			if err := e.gameInstance.FnRender(e, packet, deltaTime); err != nil {
				core.LogError("game render failed: %v", err)
				e.isRunning = false
				break
			}
		}

		if err := e.renderer.DrawFrame(packet); err != nil {
			core.LogError("frame draw failed: %v", err)
			e.isRunning = false
			break
		}

		if err := core.InputUpdate(deltaTime); err != nil {
			return err
		}
		core.MetricsUpdate(deltaTime)

		frameElapsed := e.platform.GetAbsoluteTime() - currentTime
		if remaining := targetFrameSeconds - frameElapsed; remaining > 0 {
			e.platform.Sleep(uint64(remaining * 1000))
		}
	}

	return e.shutdown()
}

// RequestShutdown stops the main loop after the current frame.
func (e *Engine) RequestShutdown() {
	e.isRunning = false
}

func (e *Engine) onQuit(context core.EventContext) {
	core.LogInfo("application quit requested")
	e.isRunning = false
}

func (e *Engine) onResized(context core.EventContext) {
	ev, ok := context.Data.(core.SystemEvent)
	if !ok {
		return
	}
	width := ev.WindowWidth
	height := ev.WindowHeight
	if width == e.width && height == e.height {
		return
	}
	e.width = width
	e.height = height

	if width == 0 || height == 0 {
		core.LogInfo("window minimized, suspending")
		e.isSuspended = true
		return
	}
	if e.isSuspended {
		core.LogInfo("window restored, resuming")
		e.isSuspended = false
	}

	e.renderer.OnResize(width, height)
	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(e, width, height); err != nil {
			core.LogWarn("game resize handler failed: %v", err)
		}
	}
}

func (e *Engine) shutdown() error {
	e.currentStage = EngineStageShuttingDown
	e.clock.Update()
	core.LogInfo("engine ran for %.2f seconds", e.clock.Elapsed())

	// The GPU may still be reading resources the game is about to destroy.
	if e.renderer != nil {
		e.renderer.WaitIdle()
	}

	if e.gameInstance.FnShutdown != nil {
		if err := e.gameInstance.FnShutdown(e); err != nil {
			core.LogWarn("game shutdown failed: %v", err)
		}
	}

	if e.renderer != nil {
		if err := e.renderer.Shutdown(); err != nil {
			core.LogWarn("renderer shutdown failed: %v", err)
		}
	}
	if e.assetManager != nil {
		if err := e.assetManager.Shutdown(); err != nil {
			core.LogWarn("asset manager shutdown failed: %v", err)
		}
	}
	if err := core.InputShutdown(); err != nil {
		core.LogWarn("input shutdown failed: %v", err)
	}
	if err := core.EventSystemShutdown(); err != nil {
		core.LogWarn("event system shutdown failed: %v", err)
	}
	e.platform.Shutdown()

	e.currentStage = EngineStageUninitialized
	return nil
}
