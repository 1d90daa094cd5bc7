package vulkan

import (
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"

	"github.com/vesta-engine/vesta/engine/core"
)

// BufferBindingData mirrors VkDescriptorBufferInfo byte for byte so a
// packed block of binding records can be handed to a descriptor update
// template as raw memory.
type BufferBindingData struct {
	Buffer vk.Buffer
	Offset vk.DeviceSize
	Range  vk.DeviceSize
}

// ImageBindingData mirrors VkDescriptorImageInfo. The struct carries 4
// bytes of tail padding, which the template's offsets account for.
type ImageBindingData struct {
	Sampler     vk.Sampler
	ImageView   vk.ImageView
	ImageLayout vk.ImageLayout
}

const bindingRecordSize = unsafe.Sizeof(BufferBindingData{})

// PushBinding describes one shader-visible resource slot and where its
// record lives inside the host block.
type PushBinding struct {
	Binding uint32
	Type    vk.DescriptorType
	Stages  vk.ShaderStageFlags
	// Byte offset of the record inside the block.
	Offset uintptr
}

// PushTemplateConfig is the reusable plan tying a fixed block layout to a
// descriptor set. Validated once, applied on every recorded frame.
type PushTemplateConfig struct {
	Bindings  []PushBinding
	BlockSize uintptr
	BindPoint vk.PipelineBindPoint
	Set       uint32
}

// VulkanPushTemplate owns the push descriptor set layout and, once Build
// has run against a pipeline layout, the descriptor update template.
type VulkanPushTemplate struct {
	Config    PushTemplateConfig
	SetLayout vk.DescriptorSetLayout
	Handle    vk.DescriptorUpdateTemplate
}

func pushDescriptorTypeSupported(t vk.DescriptorType) bool {
	switch t {
	case vk.DescriptorTypeUniformBuffer,
		vk.DescriptorTypeStorageBuffer,
		vk.DescriptorTypeCombinedImageSampler,
		vk.DescriptorTypeSampledImage,
		vk.DescriptorTypeStorageImage:
		return true
	default:
		return false
	}
}

// validate checks the plan against the block layout rules and the device
// limit. It touches no Vulkan state.
func (cfg *PushTemplateConfig) validate(maxPushDescriptors uint32) error {
	if len(cfg.Bindings) == 0 {
		return fmt.Errorf("push template needs at least one binding")
	}
	if maxPushDescriptors > 0 && uint32(len(cfg.Bindings)) > maxPushDescriptors {
		return fmt.Errorf("push template has %d bindings, device limit is %d", len(cfg.Bindings), maxPushDescriptors)
	}
	if cfg.BlockSize == 0 {
		return fmt.Errorf("push template block size must be non zero")
	}

	seen := make(map[uint32]struct{}, len(cfg.Bindings))
	type span struct{ start, end uintptr }
	spans := make([]span, 0, len(cfg.Bindings))

	for _, b := range cfg.Bindings {
		if _, dup := seen[b.Binding]; dup {
			return fmt.Errorf("binding %d appears twice in the push template", b.Binding)
		}
		seen[b.Binding] = struct{}{}

		if !pushDescriptorTypeSupported(b.Type) {
			return fmt.Errorf("binding %d has descriptor type %d, which cannot be pushed", b.Binding, b.Type)
		}
		if b.Stages == 0 {
			return fmt.Errorf("binding %d has no shader stages", b.Binding)
		}
		if b.Offset%8 != 0 {
			return fmt.Errorf("binding %d record offset %d is not 8 byte aligned", b.Binding, b.Offset)
		}
		end := b.Offset + bindingRecordSize
		if end > cfg.BlockSize {
			return fmt.Errorf("binding %d record at offset %d overruns the %d byte block", b.Binding, b.Offset, cfg.BlockSize)
		}
		for _, s := range spans {
			if b.Offset < s.end && s.start < end {
				return fmt.Errorf("binding %d record overlaps another record in the block", b.Binding)
			}
		}
		spans = append(spans, span{start: b.Offset, end: end})
	}
	return nil
}

// templateEntries derives the descriptor update template entries from the
// plan. The stride is the full block size so the same template can walk an
// array of blocks if the caller ever pushes more than one.
func (cfg *PushTemplateConfig) templateEntries() []vk.DescriptorUpdateTemplateEntry {
	entries := make([]vk.DescriptorUpdateTemplateEntry, len(cfg.Bindings))
	for i, b := range cfg.Bindings {
		entries[i] = vk.DescriptorUpdateTemplateEntry{
			DstBinding:      b.Binding,
			DstArrayElement: 0,
			DescriptorCount: 1,
			DescriptorType:  b.Type,
			Offset:          uint64(b.Offset),
			Stride:          uint64(cfg.BlockSize),
		}
	}
	return entries
}

func (cfg *PushTemplateConfig) layoutBindings() []vk.DescriptorSetLayoutBinding {
	bindings := make([]vk.DescriptorSetLayoutBinding, len(cfg.Bindings))
	for i, b := range cfg.Bindings {
		bindings[i] = vk.DescriptorSetLayoutBinding{
			Binding:         b.Binding,
			DescriptorType:  b.Type,
			DescriptorCount: 1,
			StageFlags:      b.Stages,
		}
	}
	return bindings
}

// NewVulkanPushTemplate validates the plan and creates the push descriptor
// set layout. No descriptor pool is involved, the set is provided at
// record time.
func NewVulkanPushTemplate(context *VulkanContext, config PushTemplateConfig) (*VulkanPushTemplate, error) {
	if err := config.validate(context.Device.MaxPushDescriptors); err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	layoutInfo := vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		Flags:        vk.DescriptorSetLayoutCreateFlags(vk.DescriptorSetLayoutCreatePushDescriptorBit),
		BindingCount: uint32(len(config.Bindings)),
		PBindings:    config.layoutBindings(),
	}

	var setLayout vk.DescriptorSetLayout
	if res := vk.CreateDescriptorSetLayout(context.Device.LogicalDevice, &layoutInfo, context.Allocator, &setLayout); !VulkanResultIsSuccess(res) {
		err := fmt.Errorf("vkCreateDescriptorSetLayout failed with %s", VulkanResultString(res))
		core.LogError(err.Error())
		return nil, err
	}

	return &VulkanPushTemplate{
		Config:    config,
		SetLayout: setLayout,
	}, nil
}

// Build creates the descriptor update template against the pipeline layout
// the template will be pushed with. Must run after the pipeline layout
// exists and before the first Push.
func (pt *VulkanPushTemplate) Build(context *VulkanContext, pipelineLayout vk.PipelineLayout) error {
	handle, res := khrCreateDescriptorUpdateTemplate(context.Device.LogicalDevice, &pt.Config, pt.SetLayout, pipelineLayout)
	if !VulkanResultIsSuccess(res) {
		err := fmt.Errorf("vkCreateDescriptorUpdateTemplate failed with %s", VulkanResultString(res))
		core.LogError(err.Error())
		return err
	}
	pt.Handle = handle
	return nil
}

// Push applies the whole block to the command buffer in one call. data
// must point at a block laid out exactly as the plan describes and stay
// alive until the call returns.
func (pt *VulkanPushTemplate) Push(commandBuffer *VulkanCommandBuffer, pipelineLayout vk.PipelineLayout, data unsafe.Pointer) {
	khrCmdPushDescriptorSetWithTemplate(commandBuffer.Handle, pt.Handle, pipelineLayout, pt.Config.Set, data)
}

// PushWrites applies the same block through individual descriptor writes.
// Fallback path for devices that expose VK_KHR_push_descriptor without
// update templates.
func (pt *VulkanPushTemplate) PushWrites(commandBuffer *VulkanCommandBuffer, pipelineLayout vk.PipelineLayout, data unsafe.Pointer) {
	khrCmdPushDescriptorSet(commandBuffer.Handle, &pt.Config, pipelineLayout, data)
}

var nullDescriptorUpdateTemplate vk.DescriptorUpdateTemplate

func (pt *VulkanPushTemplate) Destroy(context *VulkanContext) {
	if pt.Handle != nullDescriptorUpdateTemplate {
		khrDestroyDescriptorUpdateTemplate(context.Device.LogicalDevice, pt.Handle)
		pt.Handle = nullDescriptorUpdateTemplate
	}
	if pt.SetLayout != vk.NullDescriptorSetLayout {
		vk.DestroyDescriptorSetLayout(context.Device.LogicalDevice, pt.SetLayout, context.Allocator)
		pt.SetLayout = vk.NullDescriptorSetLayout
	}
}
