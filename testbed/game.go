package testbed

import (
	"unsafe"

	vk "github.com/goki/vulkan"

	"github.com/vesta-engine/vesta/engine"
	"github.com/vesta-engine/vesta/engine/core"
	"github.com/vesta-engine/vesta/engine/math"
	"github.com/vesta-engine/vesta/engine/renderer"
)

type TestGame struct {
	*engine.Game
}

// sceneUniform feeds binding 0, shared by every cube in the frame.
type sceneUniform struct {
	Projection math.Mat4
	View       math.Mat4
}

// modelUniform feeds binding 1, one buffer per cube.
type modelUniform struct {
	Model math.Mat4
}

// descriptorBlock is the packed host block the binding plan reads. Field
// offsets become template entry offsets, so layout changes here never
// touch the recording code.
type descriptorBlock struct {
	Scene    renderer.BufferBindingData
	Model    renderer.BufferBindingData
	Material renderer.ImageBindingData
}

type cube struct {
	position math.Vec3
	scale    math.Vec3
	rotation math.Vec3

	modelBuffer *renderer.UniformBuffer
	texture     *renderer.Texture
	block       descriptorBlock
}

type gameState struct {
	camera *renderer.Camera

	mesh        *renderer.Mesh
	sceneBuffer *renderer.UniformBuffer
	pipeline    *renderer.PushPipeline

	cubes   []*cube
	animate bool
}

func NewTestGame() (*TestGame, error) {
	config, err := engine.LoadApplicationConfig("testbed.toml")
	if err != nil {
		return nil, err
	}

	tg := &TestGame{
		Game: &engine.Game{
			ApplicationConfig: config,
			State: &gameState{
				animate: true,
			},
		},
	}

	tg.FnBoot = tg.Boot
	tg.FnInitialize = tg.Initialize
	tg.FnUpdate = tg.Update
	tg.FnRender = tg.Render
	tg.FnOnResize = tg.OnResize
	tg.FnShutdown = tg.Shutdown

	return tg, nil
}

func (g *TestGame) Boot(e *engine.Engine) error {
	core.LogInfo("booting testbed...")

	state := g.State.(*gameState)
	config := g.ApplicationConfig

	aspect := float32(config.StartWidth) / float32(config.StartHeight)
	state.camera = renderer.NewCamera(60.0, aspect, 0.1, 512.0)
	state.camera.SetPosition(math.NewVec3(0, 0, 5))

	return nil
}

func (g *TestGame) Initialize(e *engine.Engine) error {
	state := g.State.(*gameState)

	limit := e.Renderer().MaxPushDescriptors()
	core.LogInfo("device accepts up to %d push descriptors per set", limit)

	mesh, err := g.loadMesh(e, "cube.obj")
	if err != nil {
		return err
	}
	state.mesh = mesh

	sceneBuffer, err := e.Renderer().UniformBufferCreate(uint64(unsafe.Sizeof(sceneUniform{})))
	if err != nil {
		return err
	}
	state.sceneBuffer = sceneBuffer

	placements := []struct {
		texture  string
		position math.Vec3
		scale    math.Vec3
	}{
		{"crate01.png", math.NewVec3(-2, 0, 0), math.NewVec3One()},
		{"crate02.png", math.NewVec3(1.5, 0.5, 0), math.NewVec3(0.25, 0.25, 0.25)},
	}

	for _, p := range placements {
		c, err := g.createCube(e, p.texture, p.position, p.scale)
		if err != nil {
			return err
		}
		state.cubes = append(state.cubes, c)
	}

	pipeline, err := g.createPipeline(e)
	if err != nil {
		return err
	}
	state.pipeline = pipeline

	return nil
}

func (g *TestGame) loadMesh(e *engine.Engine, name string) (*renderer.Mesh, error) {
	data, err := e.Assets().LoadModel(name)
	if err != nil {
		return nil, err
	}
	return e.Renderer().MeshCreate(data)
}

// createCube allocates the per cube uniform buffer and texture and fills
// the descriptor block once. Recording only ever hands the block pointer
// to the template.
func (g *TestGame) createCube(e *engine.Engine, textureName string, position, scale math.Vec3) (*cube, error) {
	state := g.State.(*gameState)

	textureData, err := e.Assets().LoadTexture(textureName)
	if err != nil {
		return nil, err
	}
	texture, err := e.Renderer().TextureCreate(textureData)
	if err != nil {
		return nil, err
	}

	modelBuffer, err := e.Renderer().UniformBufferCreate(uint64(unsafe.Sizeof(modelUniform{})))
	if err != nil {
		e.Renderer().TextureDestroy(texture)
		return nil, err
	}

	c := &cube{
		position:    position,
		scale:       scale,
		modelBuffer: modelBuffer,
		texture:     texture,
	}
	c.block.Scene = state.sceneBuffer.Descriptor(0, 0)
	c.block.Model = modelBuffer.Descriptor(0, 0)
	c.block.Material = texture.Descriptor()
	return c, nil
}

func (g *TestGame) createPipeline(e *engine.Engine) (*renderer.PushPipeline, error) {
	vertWords, err := e.Assets().LoadShaderBinary("cube.vert.spv")
	if err != nil {
		return nil, err
	}
	fragWords, err := e.Assets().LoadShaderBinary("cube.frag.spv")
	if err != nil {
		return nil, err
	}

	var block descriptorBlock
	template := renderer.PushTemplateConfig{
		Bindings: []renderer.PushBinding{
			{
				Binding: 0,
				Type:    vk.DescriptorTypeUniformBuffer,
				Stages:  vk.ShaderStageFlags(vk.ShaderStageVertexBit),
				Offset:  unsafe.Offsetof(block.Scene),
			},
			{
				Binding: 1,
				Type:    vk.DescriptorTypeUniformBuffer,
				Stages:  vk.ShaderStageFlags(vk.ShaderStageVertexBit),
				Offset:  unsafe.Offsetof(block.Model),
			},
			{
				Binding: 2,
				Type:    vk.DescriptorTypeCombinedImageSampler,
				Stages:  vk.ShaderStageFlags(vk.ShaderStageFragmentBit),
				Offset:  unsafe.Offsetof(block.Material),
			},
		},
		BlockSize: unsafe.Sizeof(block),
		BindPoint: vk.PipelineBindPointGraphics,
		Set:       0,
	}

	return e.Renderer().PushPipelineCreate(&renderer.PushPipelineConfig{
		VertexShader:   vertWords,
		FragmentShader: fragWords,
		Template:       template,
		CullMode:       renderer.FaceCullModeBack,
	})
}

func (g *TestGame) Update(e *engine.Engine, deltaTime float64) error {
	state := g.State.(*gameState)

	if core.InputIsKeyDown(core.KEY_ESCAPE) {
		core.EventFire(core.EventContext{Type: core.EVENT_CODE_APPLICATION_QUIT})
		return nil
	}
	if core.InputIsKeyDown(core.KEY_SPACE) && core.InputWasKeyUp(core.KEY_SPACE) {
		state.animate = !state.animate
		if state.animate {
			core.LogInfo("animation resumed")
		} else {
			core.LogInfo("animation paused")
		}
	}

	if state.animate {
		for _, c := range state.cubes {
			c.rotation.X += math.DegToRad(2.5) * float32(deltaTime) * 60.0
			c.rotation.Y += math.DegToRad(2.0) * float32(deltaTime) * 60.0
		}
	}

	scene := sceneUniform{
		Projection: state.camera.Projection(),
		View:       state.camera.View(),
	}
	if err := e.Renderer().UniformBufferUpdate(state.sceneBuffer, structBytes(&scene)); err != nil {
		return err
	}

	for _, c := range state.cubes {
		translate := math.NewMat4Translation(c.position)
		rotate := math.NewMat4EulerXYZ(c.rotation.X, c.rotation.Y, c.rotation.Z)
		scale := math.NewMat4Scale(c.scale)
		model := modelUniform{Model: translate.Mul(rotate.Mul(scale))}
		if err := e.Renderer().UniformBufferUpdate(c.modelBuffer, structBytes(&model)); err != nil {
			return err
		}
	}

	return nil
}

func (g *TestGame) Render(e *engine.Engine, packet *renderer.RenderPacket, deltaTime float64) error {
	state := g.State.(*gameState)
	if state.pipeline == nil {
		return nil
	}

	packet.Pipeline = state.pipeline
	for _, c := range state.cubes {
		packet.Items = append(packet.Items, renderer.DrawItem{
			Mesh:            state.mesh,
			DescriptorBlock: unsafe.Pointer(&c.block),
		})
	}
	return nil
}

func (g *TestGame) OnResize(e *engine.Engine, width, height uint32) error {
	if height == 0 {
		return nil
	}
	state := g.State.(*gameState)
	state.camera.SetAspectRatio(float32(width) / float32(height))
	return nil
}

func (g *TestGame) Shutdown(e *engine.Engine) error {
	state := g.State.(*gameState)

	if state.pipeline != nil {
		e.Renderer().PushPipelineDestroy(state.pipeline)
		state.pipeline = nil
	}
	for _, c := range state.cubes {
		e.Renderer().UniformBufferDestroy(c.modelBuffer)
		e.Renderer().TextureDestroy(c.texture)
	}
	state.cubes = nil
	if state.sceneBuffer != nil {
		e.Renderer().UniformBufferDestroy(state.sceneBuffer)
		state.sceneBuffer = nil
	}
	if state.mesh != nil {
		e.Renderer().MeshDestroy(state.mesh)
		state.mesh = nil
	}
	return nil
}

func structBytes[T any](v *T) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(v)), int(unsafe.Sizeof(*v)))
}
