package vulkan

import (
	"fmt"
	"strings"

	vk "github.com/goki/vulkan"

	"github.com/vesta-engine/vesta/engine/core"
)

type VulkanDevice struct {
	PhysicalDevice     vk.PhysicalDevice
	LogicalDevice      vk.Device
	SwapchainSupport   VulkanSwapchainSupportInfo
	GraphicsQueueIndex int32
	PresentQueueIndex  int32
	TransferQueueIndex int32

	GraphicsQueue vk.Queue
	PresentQueue  vk.Queue
	TransferQueue vk.Queue

	GraphicsCommandPool vk.CommandPool

	Properties vk.PhysicalDeviceProperties
	Features   vk.PhysicalDeviceFeatures
	Memory     vk.PhysicalDeviceMemoryProperties

	DepthFormat vk.Format

	// Upper bound for descriptors pushed in a single set, reported by
	// VK_KHR_push_descriptor.
	MaxPushDescriptors uint32
}

type VulkanSwapchainSupportInfo struct {
	Capabilities vk.SurfaceCapabilities
	Formats      []vk.SurfaceFormat
	PresentModes []vk.PresentMode
}

type vulkanPhysicalDeviceRequirements struct {
	Graphics             bool
	Present              bool
	Transfer             bool
	DeviceExtensionNames []string
	SamplerAnisotropy    bool
	DiscreteGPU          bool
}

type vulkanPhysicalDeviceQueueFamilyInfo struct {
	GraphicsFamilyIndex int32
	PresentFamilyIndex  int32
	TransferFamilyIndex int32
}

func deviceRequirements() *vulkanPhysicalDeviceRequirements {
	return &vulkanPhysicalDeviceRequirements{
		Graphics: true,
		Present:  true,
		Transfer: true,
		DeviceExtensionNames: []string{
			vk.KhrSwapchainExtensionName,
			vk.KhrPushDescriptorExtensionName,
			vk.KhrDescriptorUpdateTemplateExtensionName,
		},
		SamplerAnisotropy: true,
		DiscreteGPU:       false,
	}
}

func DeviceCreate(context *VulkanContext) error {
	if err := selectPhysicalDevice(context); err != nil {
		return err
	}
	device := context.Device

	core.LogInfo("creating logical device")

	presentSharesGraphicsQueue := device.GraphicsQueueIndex == device.PresentQueueIndex
	transferSharesGraphicsQueue := device.GraphicsQueueIndex == device.TransferQueueIndex

	indices := []uint32{uint32(device.GraphicsQueueIndex)}
	if !presentSharesGraphicsQueue {
		indices = append(indices, uint32(device.PresentQueueIndex))
	}
	if !transferSharesGraphicsQueue {
		indices = append(indices, uint32(device.TransferQueueIndex))
	}

	queueCreateInfos := make([]vk.DeviceQueueCreateInfo, len(indices))
	for i := range indices {
		queueCreateInfos[i] = vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: indices[i],
			QueueCount:       1,
			PQueuePriorities: []float32{1.0},
		}
	}

	deviceFeatures := vk.PhysicalDeviceFeatures{}
	deviceFeatures.SamplerAnisotropy = vk.True

	extensionNames := deviceRequirements().DeviceExtensionNames
	if devicePortabilityRequired(device.PhysicalDevice) {
		extensionNames = append(extensionNames, "VK_KHR_portability_subset")
	}

	deviceCreateInfo := vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueCreateInfos)),
		PQueueCreateInfos:       queueCreateInfos,
		PEnabledFeatures:        []vk.PhysicalDeviceFeatures{deviceFeatures},
		EnabledExtensionCount:   uint32(len(extensionNames)),
		PpEnabledExtensionNames: VulkanSafeStrings(extensionNames),
	}

	var logicalDevice vk.Device
	if res := vk.CreateDevice(device.PhysicalDevice, &deviceCreateInfo, context.Allocator, &logicalDevice); !VulkanResultIsSuccess(res) {
		err := fmt.Errorf("vkCreateDevice failed with %s", VulkanResultString(res))
		core.LogError(err.Error())
		return err
	}
	device.LogicalDevice = logicalDevice
	core.LogInfo("logical device created")

	// The push descriptor commands are not wrapped by the binding and must
	// be fetched against this device before any template is built.
	if err := loadDeviceProcs(context.Instance, device.LogicalDevice); err != nil {
		return err
	}

	var graphicsQueue vk.Queue
	vk.GetDeviceQueue(device.LogicalDevice, uint32(device.GraphicsQueueIndex), 0, &graphicsQueue)
	device.GraphicsQueue = graphicsQueue

	var presentQueue vk.Queue
	vk.GetDeviceQueue(device.LogicalDevice, uint32(device.PresentQueueIndex), 0, &presentQueue)
	device.PresentQueue = presentQueue

	var transferQueue vk.Queue
	vk.GetDeviceQueue(device.LogicalDevice, uint32(device.TransferQueueIndex), 0, &transferQueue)
	device.TransferQueue = transferQueue

	context.Locks.SetQueueFamily(uint32(device.GraphicsQueueIndex))
	context.Locks.SetQueueFamily(uint32(device.PresentQueueIndex))
	context.Locks.SetQueueFamily(uint32(device.TransferQueueIndex))

	poolCreateInfo := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: uint32(device.GraphicsQueueIndex),
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
	}
	var pool vk.CommandPool
	if res := vk.CreateCommandPool(device.LogicalDevice, &poolCreateInfo, context.Allocator, &pool); !VulkanResultIsSuccess(res) {
		err := fmt.Errorf("vkCreateCommandPool failed with %s", VulkanResultString(res))
		core.LogError(err.Error())
		return err
	}
	device.GraphicsCommandPool = pool

	return nil
}

func DeviceDestroy(context *VulkanContext) {
	device := context.Device
	device.GraphicsQueue = nil
	device.PresentQueue = nil
	device.TransferQueue = nil

	if device.GraphicsCommandPool != vk.NullCommandPool {
		vk.DestroyCommandPool(device.LogicalDevice, device.GraphicsCommandPool, context.Allocator)
		device.GraphicsCommandPool = vk.NullCommandPool
	}
	if device.LogicalDevice != nil {
		vk.DestroyDevice(device.LogicalDevice, context.Allocator)
		device.LogicalDevice = nil
	}
	device.PhysicalDevice = nil
}

func selectPhysicalDevice(context *VulkanContext) error {
	var deviceCount uint32
	if res := vk.EnumeratePhysicalDevices(context.Instance, &deviceCount, nil); !VulkanResultIsSuccess(res) || deviceCount == 0 {
		err := fmt.Errorf("no Vulkan capable physical devices found")
		core.LogError(err.Error())
		return err
	}
	physicalDevices := make([]vk.PhysicalDevice, deviceCount)
	if res := vk.EnumeratePhysicalDevices(context.Instance, &deviceCount, physicalDevices); !VulkanResultIsSuccess(res) {
		err := fmt.Errorf("vkEnumeratePhysicalDevices failed with %s", VulkanResultString(res))
		core.LogError(err.Error())
		return err
	}

	requirements := deviceRequirements()
	for _, pd := range physicalDevices {
		var properties vk.PhysicalDeviceProperties
		vk.GetPhysicalDeviceProperties(pd, &properties)
		properties.Deref()

		var features vk.PhysicalDeviceFeatures
		vk.GetPhysicalDeviceFeatures(pd, &features)
		features.Deref()

		var memory vk.PhysicalDeviceMemoryProperties
		vk.GetPhysicalDeviceMemoryProperties(pd, &memory)
		memory.Deref()

		queueInfo, support, ok := physicalDeviceMeetsRequirements(pd, context.Surface, &properties, &features, requirements)
		if !ok {
			continue
		}

		deviceName := vk.ToString(properties.DeviceName[:])
		core.LogInfo("selected device %s", deviceName)

		context.Device = &VulkanDevice{
			PhysicalDevice:     pd,
			GraphicsQueueIndex: queueInfo.GraphicsFamilyIndex,
			PresentQueueIndex:  queueInfo.PresentFamilyIndex,
			TransferQueueIndex: queueInfo.TransferFamilyIndex,
			Properties:         properties,
			Features:           features,
			Memory:             memory,
			SwapchainSupport:   *support,
		}
		context.Device.MaxPushDescriptors = queryMaxPushDescriptors(pd)
		core.LogInfo("device supports up to %d push descriptors per set", context.Device.MaxPushDescriptors)
		return nil
	}

	err := fmt.Errorf("no physical device met the requirements")
	core.LogError(err.Error())
	return err
}

// queryMaxPushDescriptors reads the push descriptor limit through the
// properties2 chain. VK_KHR_get_physical_device_properties2 must have been
// enabled on the instance and loadInstanceProcs must have run.
func queryMaxPushDescriptors(physicalDevice vk.PhysicalDevice) uint32 {
	return khrMaxPushDescriptors(physicalDevice)
}

func physicalDeviceMeetsRequirements(
	physicalDevice vk.PhysicalDevice,
	surface vk.Surface,
	properties *vk.PhysicalDeviceProperties,
	features *vk.PhysicalDeviceFeatures,
	requirements *vulkanPhysicalDeviceRequirements,
) (*vulkanPhysicalDeviceQueueFamilyInfo, *VulkanSwapchainSupportInfo, bool) {
	queueInfo := &vulkanPhysicalDeviceQueueFamilyInfo{
		GraphicsFamilyIndex: -1,
		PresentFamilyIndex:  -1,
		TransferFamilyIndex: -1,
	}

	if requirements.DiscreteGPU && properties.DeviceType != vk.PhysicalDeviceTypeDiscreteGpu {
		return nil, nil, false
	}

	var queueFamilyCount uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(physicalDevice, &queueFamilyCount, nil)
	queueFamilies := make([]vk.QueueFamilyProperties, queueFamilyCount)
	vk.GetPhysicalDeviceQueueFamilyProperties(physicalDevice, &queueFamilyCount, queueFamilies)

	// Prefer a dedicated transfer family, fall back to whatever also does
	// graphics.
	minTransferScore := uint8(255)
	for i := uint32(0); i < queueFamilyCount; i++ {
		queueFamilies[i].Deref()
		transferScore := uint8(0)

		flags := vk.QueueFlagBits(queueFamilies[i].QueueFlags)
		if flags&vk.QueueGraphicsBit != 0 {
			queueInfo.GraphicsFamilyIndex = int32(i)
			transferScore++
		}
		if flags&vk.QueueTransferBit != 0 {
			if transferScore <= minTransferScore {
				minTransferScore = transferScore
				queueInfo.TransferFamilyIndex = int32(i)
			}
		}

		var supportsPresent vk.Bool32
		if res := vk.GetPhysicalDeviceSurfaceSupport(physicalDevice, i, surface, &supportsPresent); VulkanResultIsSuccess(res) && supportsPresent == vk.True {
			queueInfo.PresentFamilyIndex = int32(i)
		}
	}

	if requirements.Graphics && queueInfo.GraphicsFamilyIndex == -1 {
		return nil, nil, false
	}
	if requirements.Present && queueInfo.PresentFamilyIndex == -1 {
		return nil, nil, false
	}
	if requirements.Transfer && queueInfo.TransferFamilyIndex == -1 {
		return nil, nil, false
	}
	if requirements.SamplerAnisotropy && features.SamplerAnisotropy != vk.True {
		return nil, nil, false
	}

	if !deviceSupportsExtensions(physicalDevice, requirements.DeviceExtensionNames) {
		return nil, nil, false
	}

	support, err := DeviceQuerySwapchainSupport(physicalDevice, surface)
	if err != nil || len(support.Formats) == 0 || len(support.PresentModes) == 0 {
		return nil, nil, false
	}
	return queueInfo, support, true
}

func deviceSupportsExtensions(physicalDevice vk.PhysicalDevice, required []string) bool {
	available, err := enumerateDeviceExtensions(physicalDevice)
	if err != nil {
		return false
	}
	for _, name := range required {
		if _, ok := available[name]; !ok {
			core.LogDebug("device is missing extension %s", name)
			return false
		}
	}
	return true
}

func devicePortabilityRequired(physicalDevice vk.PhysicalDevice) bool {
	available, err := enumerateDeviceExtensions(physicalDevice)
	if err != nil {
		return false
	}
	_, ok := available["VK_KHR_portability_subset"]
	return ok
}

func enumerateDeviceExtensions(physicalDevice vk.PhysicalDevice) (map[string]struct{}, error) {
	var count uint32
	if res := vk.EnumerateDeviceExtensionProperties(physicalDevice, "", &count, nil); !VulkanResultIsSuccess(res) {
		return nil, fmt.Errorf("vkEnumerateDeviceExtensionProperties failed with %s", VulkanResultString(res))
	}
	extensions := make([]vk.ExtensionProperties, count)
	if res := vk.EnumerateDeviceExtensionProperties(physicalDevice, "", &count, extensions); !VulkanResultIsSuccess(res) {
		return nil, fmt.Errorf("vkEnumerateDeviceExtensionProperties failed with %s", VulkanResultString(res))
	}

	available := make(map[string]struct{}, count)
	for i := range extensions {
		extensions[i].Deref()
		name := strings.TrimRight(vk.ToString(extensions[i].ExtensionName[:]), "\x00")
		available[name] = struct{}{}
	}
	return available, nil
}

// DeviceQuerySwapchainSupport refreshes surface capabilities, formats and
// present modes for swapchain creation.
func DeviceQuerySwapchainSupport(physicalDevice vk.PhysicalDevice, surface vk.Surface) (*VulkanSwapchainSupportInfo, error) {
	support := &VulkanSwapchainSupportInfo{}

	var capabilities vk.SurfaceCapabilities
	if res := vk.GetPhysicalDeviceSurfaceCapabilities(physicalDevice, surface, &capabilities); !VulkanResultIsSuccess(res) {
		err := fmt.Errorf("vkGetPhysicalDeviceSurfaceCapabilitiesKHR failed with %s", VulkanResultString(res))
		core.LogError(err.Error())
		return nil, err
	}
	capabilities.Deref()
	support.Capabilities = capabilities

	var formatCount uint32
	vk.GetPhysicalDeviceSurfaceFormats(physicalDevice, surface, &formatCount, nil)
	if formatCount > 0 {
		support.Formats = make([]vk.SurfaceFormat, formatCount)
		vk.GetPhysicalDeviceSurfaceFormats(physicalDevice, surface, &formatCount, support.Formats)
		for i := range support.Formats {
			support.Formats[i].Deref()
		}
	}

	var presentModeCount uint32
	vk.GetPhysicalDeviceSurfacePresentModes(physicalDevice, surface, &presentModeCount, nil)
	if presentModeCount > 0 {
		support.PresentModes = make([]vk.PresentMode, presentModeCount)
		vk.GetPhysicalDeviceSurfacePresentModes(physicalDevice, surface, &presentModeCount, support.PresentModes)
	}

	return support, nil
}

// DeviceDetectDepthFormat picks the first depth format the device supports
// with optimal tiling.
func DeviceDetectDepthFormat(device *VulkanDevice) error {
	candidates := []vk.Format{
		vk.FormatD32Sfloat,
		vk.FormatD32SfloatS8Uint,
		vk.FormatD24UnormS8Uint,
	}
	flags := vk.FormatFeatureFlags(vk.FormatFeatureDepthStencilAttachmentBit)

	for _, format := range candidates {
		var properties vk.FormatProperties
		vk.GetPhysicalDeviceFormatProperties(device.PhysicalDevice, format, &properties)
		properties.Deref()

		if properties.LinearTilingFeatures&flags == flags || properties.OptimalTilingFeatures&flags == flags {
			device.DepthFormat = format
			return nil
		}
	}
	err := fmt.Errorf("no supported depth format found")
	core.LogError(err.Error())
	return err
}
