package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/vesta-engine/vesta/engine/core"
)

// NewShaderModule wraps compiled SPIR-V words in a vk.ShaderModule.
func NewShaderModule(context *VulkanContext, words []uint32) (vk.ShaderModule, error) {
	if len(words) == 0 {
		err := fmt.Errorf("shader module created from empty code")
		core.LogError(err.Error())
		return vk.NullShaderModule, err
	}

	createInfo := vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint64(len(words) * 4),
		PCode:    words,
	}

	var module vk.ShaderModule
	if res := vk.CreateShaderModule(context.Device.LogicalDevice, &createInfo, context.Allocator, &module); !VulkanResultIsSuccess(res) {
		err := fmt.Errorf("vkCreateShaderModule failed with %s", VulkanResultString(res))
		core.LogError(err.Error())
		return vk.NullShaderModule, err
	}
	return module, nil
}
