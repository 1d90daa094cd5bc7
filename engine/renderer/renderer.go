package renderer

import (
	"unsafe"

	vk "github.com/goki/vulkan"

	"github.com/vesta-engine/vesta/engine/assets"
	"github.com/vesta-engine/vesta/engine/core"
	"github.com/vesta-engine/vesta/engine/math"
	"github.com/vesta-engine/vesta/engine/platform"
	"github.com/vesta-engine/vesta/engine/renderer/vulkan"
)

// Re-exported backend types so applications only import this package.
type BufferBindingData = vulkan.BufferBindingData
type ImageBindingData = vulkan.ImageBindingData
type PushBinding = vulkan.PushBinding
type PushTemplateConfig = vulkan.PushTemplateConfig
type Texture = vulkan.VulkanTexture
type Mesh = vulkan.VulkanGeometry
type UniformBuffer = vulkan.VulkanBuffer
type FaceCullMode = vulkan.FaceCullMode

const (
	FaceCullModeNone         = vulkan.FaceCullModeNone
	FaceCullModeFront        = vulkan.FaceCullModeFront
	FaceCullModeBack         = vulkan.FaceCullModeBack
	FaceCullModeFrontAndBack = vulkan.FaceCullModeFrontAndBack
)

// DrawItem is one mesh drawn with one descriptor block. The block is
// applied with a single push at record time.
type DrawItem struct {
	Mesh            *Mesh
	DescriptorBlock unsafe.Pointer
}

type RenderPacket struct {
	DeltaTime float64
	Pipeline  *PushPipeline
	Items     []DrawItem
}

// PushPipeline couples a graphics pipeline with the binding plan its
// descriptors are pushed through.
type PushPipeline struct {
	Pipeline *vulkan.VulkanPipeline
	Template *vulkan.VulkanPushTemplate

	// Falls back to individual descriptor writes when the device lacks
	// update template support.
	UseWrites bool
}

type PushPipelineConfig struct {
	VertexShader   []uint32
	FragmentShader []uint32
	Template       PushTemplateConfig
	CullMode       FaceCullMode
	IsWireframe    bool
}

// Renderer is the frontend the engine and applications talk to.
type Renderer struct {
	backend *vulkan.VulkanRenderer
}

func New(p *platform.Platform) *Renderer {
	return &Renderer{
		backend: vulkan.New(p),
	}
}

func (r *Renderer) Initialize(appName string, width, height uint32) error {
	return r.backend.Initialize(appName, width, height)
}

func (r *Renderer) Shutdown() error {
	return r.backend.Shutdown()
}

func (r *Renderer) OnResize(width, height uint32) {
	r.backend.Resized(width, height)
}

// MaxPushDescriptors reports how many descriptors the device accepts in a
// single pushed set.
func (r *Renderer) MaxPushDescriptors() uint32 {
	return r.backend.MaxPushDescriptors()
}

func (r *Renderer) TextureCreate(data *assets.TextureData) (*Texture, error) {
	return vulkan.TextureCreate(r.backend.Context(), data.Width, data.Height, data.Pixels)
}

func (r *Renderer) TextureDestroy(texture *Texture) {
	texture.Destroy(r.backend.Context())
}

func (r *Renderer) MeshCreate(data *assets.MeshData) (*Mesh, error) {
	return vulkan.GeometryCreate(r.backend.Context(), data.Vertices, data.Indices)
}

func (r *Renderer) MeshDestroy(mesh *Mesh) {
	mesh.Destroy(r.backend.Context())
}

// UniformBufferCreate allocates a host visible uniform buffer that stays
// mappable for per frame updates.
func (r *Renderer) UniformBufferCreate(size uint64) (*UniformBuffer, error) {
	return vulkan.BufferCreate(
		r.backend.Context(),
		vk.DeviceSize(size),
		vk.BufferUsageFlags(vk.BufferUsageUniformBufferBit),
		uint32(vk.MemoryPropertyHostVisibleBit)|uint32(vk.MemoryPropertyHostCoherentBit),
		true)
}

func (r *Renderer) UniformBufferUpdate(buffer *UniformBuffer, data []byte) error {
	return buffer.LoadData(r.backend.Context(), 0, vk.DeviceSize(len(data)), 0, data)
}

func (r *Renderer) UniformBufferDestroy(buffer *UniformBuffer) {
	buffer.Destroy(r.backend.Context())
}

// PushPipelineCreate builds the push descriptor set layout, the graphics
// pipeline and the descriptor update template in one pass.
func (r *Renderer) PushPipelineCreate(config *PushPipelineConfig) (*PushPipeline, error) {
	ctx := r.backend.Context()

	template, err := vulkan.NewVulkanPushTemplate(ctx, config.Template)
	if err != nil {
		return nil, err
	}

	vertModule, err := vulkan.NewShaderModule(ctx, config.VertexShader)
	if err != nil {
		template.Destroy(ctx)
		return nil, err
	}
	fragModule, err := vulkan.NewShaderModule(ctx, config.FragmentShader)
	if err != nil {
		vk.DestroyShaderModule(ctx.Device.LogicalDevice, vertModule, ctx.Allocator)
		template.Destroy(ctx)
		return nil, err
	}

	stages := []vk.PipelineShaderStageCreateInfo{
		{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  vk.ShaderStageVertexBit,
			Module: vertModule,
			PName:  vulkan.VulkanSafeString("main"),
		},
		{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  vk.ShaderStageFragmentBit,
			Module: fragModule,
			PName:  vulkan.VulkanSafeString("main"),
		},
	}

	pipelineConfig := &vulkan.VulkanPipelineConfig{
		Renderpass:           ctx.MainRenderpass,
		Stride:               uint32(unsafe.Sizeof(math.Vertex3D{})),
		Attributes:           vulkan.Vertex3DAttributes(),
		DescriptorSetLayouts: []vk.DescriptorSetLayout{template.SetLayout},
		Stages:               stages,
		Viewport: vk.Viewport{
			Width:    float32(ctx.FramebufferWidth),
			Height:   float32(ctx.FramebufferHeight),
			MaxDepth: 1.0,
		},
		Scissor: vk.Rect2D{
			Extent: vk.Extent2D{Width: ctx.FramebufferWidth, Height: ctx.FramebufferHeight},
		},
		CullMode:    config.CullMode,
		IsWireframe: config.IsWireframe,
		DepthTest:   true,
		DepthWrite:  true,
	}

	pipeline, err := vulkan.NewGraphicsPipeline(ctx, pipelineConfig)

	// The modules are baked into the pipeline, the wrappers can go.
	vk.DestroyShaderModule(ctx.Device.LogicalDevice, vertModule, ctx.Allocator)
	vk.DestroyShaderModule(ctx.Device.LogicalDevice, fragModule, ctx.Allocator)

	if err != nil {
		template.Destroy(ctx)
		return nil, err
	}

	if err := template.Build(ctx, pipeline.PipelineLayout); err != nil {
		pipeline.Destroy(ctx)
		template.Destroy(ctx)
		return nil, err
	}

	return &PushPipeline{
		Pipeline: pipeline,
		Template: template,
	}, nil
}

func (r *Renderer) PushPipelineDestroy(pipeline *PushPipeline) {
	ctx := r.backend.Context()
	pipeline.Template.Destroy(ctx)
	pipeline.Pipeline.Destroy(ctx)
}

// DrawFrame records and submits one frame. Every item's descriptor block
// is applied with one push against the current command buffer. A skipped
// frame (resize in flight) is not an error.
func (r *Renderer) DrawFrame(packet *RenderPacket) error {
	if err := r.backend.BeginFrame(packet.DeltaTime); err != nil {
		if err == core.ErrSwapchainBooting {
			return nil
		}
		return err
	}

	if packet.Pipeline != nil {
		commandBuffer := r.backend.CurrentCommandBuffer()
		packet.Pipeline.Pipeline.Bind(commandBuffer, vk.PipelineBindPointGraphics)

		for i := range packet.Items {
			item := &packet.Items[i]
			if packet.Pipeline.UseWrites {
				packet.Pipeline.Template.PushWrites(commandBuffer, packet.Pipeline.Pipeline.PipelineLayout, item.DescriptorBlock)
			} else {
				packet.Pipeline.Template.Push(commandBuffer, packet.Pipeline.Pipeline.PipelineLayout, item.DescriptorBlock)
			}
			item.Mesh.Draw(commandBuffer)
		}
	}

	return r.backend.EndFrame(packet.DeltaTime)
}

// WaitIdle blocks until the GPU is done. Called before destroying
// resources the GPU may still read.
func (r *Renderer) WaitIdle() {
	r.backend.WaitIdle()
}
