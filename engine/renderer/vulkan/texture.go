package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/vesta-engine/vesta/engine/core"
)

// VulkanTexture is a sampled image uploaded through a staging buffer,
// ready to be referenced from a descriptor.
type VulkanTexture struct {
	Image   *VulkanImage
	Sampler vk.Sampler
	ID      string
}

func TextureCreate(context *VulkanContext, width, height uint32, pixels []byte) (*VulkanTexture, error) {
	imageSize := vk.DeviceSize(len(pixels))
	if imageSize == 0 || imageSize != vk.DeviceSize(width)*vk.DeviceSize(height)*4 {
		err := fmt.Errorf("texture pixel data does not match %dx%d RGBA", width, height)
		core.LogError(err.Error())
		return nil, err
	}

	staging, err := BufferCreate(context, imageSize,
		vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit),
		uint32(vk.MemoryPropertyHostVisibleBit)|uint32(vk.MemoryPropertyHostCoherentBit),
		true)
	if err != nil {
		return nil, err
	}
	defer staging.Destroy(context)

	if err := staging.LoadData(context, 0, imageSize, 0, pixels); err != nil {
		return nil, err
	}

	image, err := ImageCreate(
		context,
		vk.ImageType2d,
		width, height,
		vk.FormatR8g8b8a8Srgb,
		vk.ImageTilingOptimal,
		vk.ImageUsageFlags(vk.ImageUsageTransferDstBit)|vk.ImageUsageFlags(vk.ImageUsageSampledBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
		true,
		vk.ImageAspectFlags(vk.ImageAspectColorBit))
	if err != nil {
		return nil, err
	}

	pool := context.Device.GraphicsCommandPool
	queue := context.Device.GraphicsQueue
	family := uint32(context.Device.GraphicsQueueIndex)

	cb, err := AllocateAndBeginSingleUse(context, pool)
	if err != nil {
		return nil, err
	}
	if err := image.TransitionLayout(cb, vk.ImageLayoutUndefined, vk.ImageLayoutTransferDstOptimal); err != nil {
		return nil, err
	}
	image.CopyFromBuffer(cb, staging)
	if err := image.TransitionLayout(cb, vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutShaderReadOnlyOptimal); err != nil {
		return nil, err
	}
	if err := cb.EndSingleUse(context, pool, queue, family); err != nil {
		return nil, err
	}

	sampler, err := samplerCreate(context)
	if err != nil {
		return nil, err
	}

	return &VulkanTexture{
		Image:   image,
		Sampler: sampler,
		ID:      core.IdentifierNew(),
	}, nil
}

func samplerCreate(context *VulkanContext) (vk.Sampler, error) {
	context.Device.Properties.Deref()
	context.Device.Properties.Limits.Deref()

	samplerInfo := vk.SamplerCreateInfo{
		SType:                   vk.StructureTypeSamplerCreateInfo,
		MagFilter:               vk.FilterLinear,
		MinFilter:               vk.FilterLinear,
		AddressModeU:            vk.SamplerAddressModeRepeat,
		AddressModeV:            vk.SamplerAddressModeRepeat,
		AddressModeW:            vk.SamplerAddressModeRepeat,
		AnisotropyEnable:        vk.True,
		MaxAnisotropy:           context.Device.Properties.Limits.MaxSamplerAnisotropy,
		BorderColor:             vk.BorderColorIntOpaqueBlack,
		UnnormalizedCoordinates: vk.False,
		CompareEnable:           vk.False,
		CompareOp:               vk.CompareOpAlways,
		MipmapMode:              vk.SamplerMipmapModeLinear,
	}

	var sampler vk.Sampler
	if res := vk.CreateSampler(context.Device.LogicalDevice, &samplerInfo, context.Allocator, &sampler); !VulkanResultIsSuccess(res) {
		err := fmt.Errorf("vkCreateSampler failed with %s", VulkanResultString(res))
		core.LogError(err.Error())
		return vk.NullSampler, err
	}
	return sampler, nil
}

// Descriptor packs the texture's binding information in the layout a
// descriptor update template consumes.
func (vt *VulkanTexture) Descriptor() ImageBindingData {
	return ImageBindingData{
		Sampler:     vt.Sampler,
		ImageView:   vt.Image.View,
		ImageLayout: vk.ImageLayoutShaderReadOnlyOptimal,
	}
}

func (vt *VulkanTexture) Destroy(context *VulkanContext) {
	if vt.Sampler != vk.NullSampler {
		vk.DestroySampler(context.Device.LogicalDevice, vt.Sampler, context.Allocator)
		vt.Sampler = vk.NullSampler
	}
	if vt.Image != nil {
		vt.Image.ImageDestroy(context)
		vt.Image = nil
	}
}
