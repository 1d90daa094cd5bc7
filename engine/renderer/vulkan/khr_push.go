package vulkan

/*
#include <stddef.h>
#include <stdint.h>

// goki/vulkan does not wrap the VK_KHR_push_descriptor and
// VK_KHR_descriptor_update_template commands, so they are resolved here
// through the loader's vkGetInstanceProcAddr and called directly. Only the
// calling convention and struct layouts are declared, no Vulkan headers or
// link-time dependency are needed.

typedef void (*VkxVoidFunction)(void);
typedef VkxVoidFunction (*VkxGetInstanceProcAddr)(void* instance, const char* pName);
typedef VkxVoidFunction (*VkxGetDeviceProcAddr)(void* device, const char* pName);

typedef struct VkxPushDescriptorProperties {
	uint32_t sType;
	void*    pNext;
	uint32_t maxPushDescriptors;
} VkxPushDescriptorProperties;

// The properties blob only needs to be large enough for the driver to
// write VkPhysicalDeviceProperties into.
typedef struct VkxPhysicalDeviceProperties2 {
	uint32_t sType;
	void*    pNext;
	uint8_t  properties[1024];
} VkxPhysicalDeviceProperties2;

typedef struct VkxDescriptorUpdateTemplateEntry {
	uint32_t dstBinding;
	uint32_t dstArrayElement;
	uint32_t descriptorCount;
	uint32_t descriptorType;
	size_t   offset;
	size_t   stride;
} VkxDescriptorUpdateTemplateEntry;

typedef struct VkxDescriptorUpdateTemplateCreateInfo {
	uint32_t sType;
	void*    pNext;
	uint32_t flags;
	uint32_t descriptorUpdateEntryCount;
	const VkxDescriptorUpdateTemplateEntry* pDescriptorUpdateEntries;
	uint32_t templateType;
	uint64_t descriptorSetLayout;
	uint32_t pipelineBindPoint;
	uint64_t pipelineLayout;
	uint32_t set;
} VkxDescriptorUpdateTemplateCreateInfo;

typedef struct VkxWriteDescriptorSet {
	uint32_t sType;
	void*    pNext;
	uint64_t dstSet;
	uint32_t dstBinding;
	uint32_t dstArrayElement;
	uint32_t descriptorCount;
	uint32_t descriptorType;
	const void* pImageInfo;
	const void* pBufferInfo;
	const void* pTexelBufferView;
} VkxWriteDescriptorSet;

typedef void (*PFNx_vkGetPhysicalDeviceProperties2)(void* physicalDevice, VkxPhysicalDeviceProperties2* pProperties);
typedef int32_t (*PFNx_vkCreateDescriptorUpdateTemplate)(void* device, const VkxDescriptorUpdateTemplateCreateInfo* pCreateInfo, const void* pAllocator, uint64_t* pDescriptorUpdateTemplate);
typedef void (*PFNx_vkDestroyDescriptorUpdateTemplate)(void* device, uint64_t descriptorUpdateTemplate, const void* pAllocator);
typedef void (*PFNx_vkCmdPushDescriptorSetWithTemplate)(void* commandBuffer, uint64_t descriptorUpdateTemplate, uint64_t layout, uint32_t set, const void* pData);
typedef void (*PFNx_vkCmdPushDescriptorSet)(void* commandBuffer, uint32_t pipelineBindPoint, uint64_t layout, uint32_t set, uint32_t descriptorWriteCount, const VkxWriteDescriptorSet* pDescriptorWrites);

static VkxGetInstanceProcAddr vkxGetInstanceProcAddr = 0;
static VkxGetDeviceProcAddr vkxGetDeviceProcAddr = 0;
static PFNx_vkGetPhysicalDeviceProperties2 vkxGetPhysicalDeviceProperties2Fn = 0;
static PFNx_vkCreateDescriptorUpdateTemplate vkxCreateDescriptorUpdateTemplateFn = 0;
static PFNx_vkDestroyDescriptorUpdateTemplate vkxDestroyDescriptorUpdateTemplateFn = 0;
static PFNx_vkCmdPushDescriptorSetWithTemplate vkxCmdPushDescriptorSetWithTemplateFn = 0;
static PFNx_vkCmdPushDescriptorSet vkxCmdPushDescriptorSetFn = 0;

static VkxVoidFunction vkxInstanceProc(void* instance, const char* name, const char* khrName) {
	VkxVoidFunction fn = vkxGetInstanceProcAddr(instance, name);
	if (!fn) {
		fn = vkxGetInstanceProcAddr(instance, khrName);
	}
	return fn;
}

static VkxVoidFunction vkxDeviceProc(void* device, const char* name, const char* khrName) {
	VkxVoidFunction fn = vkxGetDeviceProcAddr(device, name);
	if (!fn) {
		fn = vkxGetDeviceProcAddr(device, khrName);
	}
	return fn;
}

static int vkxLoadInstanceProcs(void* getInstanceProcAddr, void* instance) {
	vkxGetInstanceProcAddr = (VkxGetInstanceProcAddr)getInstanceProcAddr;
	if (!vkxGetInstanceProcAddr) {
		return 0;
	}
	vkxGetPhysicalDeviceProperties2Fn = (PFNx_vkGetPhysicalDeviceProperties2)vkxInstanceProc(
		instance, "vkGetPhysicalDeviceProperties2", "vkGetPhysicalDeviceProperties2KHR");
	return vkxGetPhysicalDeviceProperties2Fn != 0;
}

static int vkxLoadDeviceProcs(void* instance, void* device) {
	if (!vkxGetInstanceProcAddr) {
		return 0;
	}
	vkxGetDeviceProcAddr = (VkxGetDeviceProcAddr)vkxGetInstanceProcAddr(instance, "vkGetDeviceProcAddr");
	if (!vkxGetDeviceProcAddr) {
		return 0;
	}
	vkxCreateDescriptorUpdateTemplateFn = (PFNx_vkCreateDescriptorUpdateTemplate)vkxDeviceProc(
		device, "vkCreateDescriptorUpdateTemplate", "vkCreateDescriptorUpdateTemplateKHR");
	vkxDestroyDescriptorUpdateTemplateFn = (PFNx_vkDestroyDescriptorUpdateTemplate)vkxDeviceProc(
		device, "vkDestroyDescriptorUpdateTemplate", "vkDestroyDescriptorUpdateTemplateKHR");
	vkxCmdPushDescriptorSetWithTemplateFn = (PFNx_vkCmdPushDescriptorSetWithTemplate)vkxDeviceProc(
		device, "vkCmdPushDescriptorSetWithTemplateKHR", "vkCmdPushDescriptorSetWithTemplate");
	vkxCmdPushDescriptorSetFn = (PFNx_vkCmdPushDescriptorSet)vkxDeviceProc(
		device, "vkCmdPushDescriptorSetKHR", "vkCmdPushDescriptorSet");
	return vkxCreateDescriptorUpdateTemplateFn != 0 &&
		vkxDestroyDescriptorUpdateTemplateFn != 0 &&
		vkxCmdPushDescriptorSetWithTemplateFn != 0 &&
		vkxCmdPushDescriptorSetFn != 0;
}

// VK_STRUCTURE_TYPE_PHYSICAL_DEVICE_PROPERTIES_2 = 1000059001
// VK_STRUCTURE_TYPE_PHYSICAL_DEVICE_PUSH_DESCRIPTOR_PROPERTIES_KHR = 1000080000
static uint32_t vkxMaxPushDescriptors(void* physicalDevice) {
	VkxPushDescriptorProperties push;
	VkxPhysicalDeviceProperties2 props;
	if (!vkxGetPhysicalDeviceProperties2Fn) {
		return 0;
	}
	push.sType = 1000080000;
	push.pNext = 0;
	push.maxPushDescriptors = 0;
	props.sType = 1000059001;
	props.pNext = &push;
	vkxGetPhysicalDeviceProperties2Fn(physicalDevice, &props);
	return push.maxPushDescriptors;
}

#define VKX_MAX_PUSH_ENTRIES 64

// VK_STRUCTURE_TYPE_DESCRIPTOR_UPDATE_TEMPLATE_CREATE_INFO = 1000085000
static int32_t vkxCreateTemplate(void* device, uint32_t entryCount,
	const uint32_t* bindings, const uint32_t* types, const size_t* offsets,
	size_t stride, uint32_t templateType, uint64_t setLayout,
	uint32_t bindPoint, uint64_t pipelineLayout, uint32_t set,
	uint64_t* outTemplate) {
	VkxDescriptorUpdateTemplateEntry entries[VKX_MAX_PUSH_ENTRIES];
	VkxDescriptorUpdateTemplateCreateInfo info;
	uint32_t i;
	if (!vkxCreateDescriptorUpdateTemplateFn || entryCount > VKX_MAX_PUSH_ENTRIES) {
		return -3; // VK_ERROR_INITIALIZATION_FAILED
	}
	for (i = 0; i < entryCount; i++) {
		entries[i].dstBinding = bindings[i];
		entries[i].dstArrayElement = 0;
		entries[i].descriptorCount = 1;
		entries[i].descriptorType = types[i];
		entries[i].offset = offsets[i];
		entries[i].stride = stride;
	}
	info.sType = 1000085000;
	info.pNext = 0;
	info.flags = 0;
	info.descriptorUpdateEntryCount = entryCount;
	info.pDescriptorUpdateEntries = entries;
	info.templateType = templateType;
	info.descriptorSetLayout = setLayout;
	info.pipelineBindPoint = bindPoint;
	info.pipelineLayout = pipelineLayout;
	info.set = set;
	return vkxCreateDescriptorUpdateTemplateFn(device, &info, 0, outTemplate);
}

static void vkxDestroyTemplate(void* device, uint64_t descriptorUpdateTemplate) {
	if (vkxDestroyDescriptorUpdateTemplateFn) {
		vkxDestroyDescriptorUpdateTemplateFn(device, descriptorUpdateTemplate, 0);
	}
}

static void vkxPushWithTemplate(void* commandBuffer, uint64_t descriptorUpdateTemplate,
	uint64_t layout, uint32_t set, const void* data) {
	vkxCmdPushDescriptorSetWithTemplateFn(commandBuffer, descriptorUpdateTemplate, layout, set, data);
}

// VK_STRUCTURE_TYPE_WRITE_DESCRIPTOR_SET = 35
// VK_DESCRIPTOR_TYPE_UNIFORM_BUFFER = 6, VK_DESCRIPTOR_TYPE_STORAGE_BUFFER = 7
static void vkxPushWrites(void* commandBuffer, uint32_t bindPoint, uint64_t layout,
	uint32_t set, uint32_t count, const uint32_t* bindings, const uint32_t* types,
	const void* block, const size_t* offsets) {
	VkxWriteDescriptorSet writes[VKX_MAX_PUSH_ENTRIES];
	uint32_t i;
	if (!vkxCmdPushDescriptorSetFn || count > VKX_MAX_PUSH_ENTRIES) {
		return;
	}
	for (i = 0; i < count; i++) {
		const void* record = (const void*)((const uint8_t*)block + offsets[i]);
		writes[i].sType = 35;
		writes[i].pNext = 0;
		writes[i].dstSet = 0;
		writes[i].dstBinding = bindings[i];
		writes[i].dstArrayElement = 0;
		writes[i].descriptorCount = 1;
		writes[i].descriptorType = types[i];
		writes[i].pImageInfo = 0;
		writes[i].pBufferInfo = 0;
		writes[i].pTexelBufferView = 0;
		if (types[i] == 6 || types[i] == 7) {
			writes[i].pBufferInfo = record;
		} else {
			writes[i].pImageInfo = record;
		}
	}
	vkxCmdPushDescriptorSetFn(commandBuffer, bindPoint, layout, set, count, writes);
}
*/
import "C"

import (
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"

	"github.com/vesta-engine/vesta/engine/core"
)

// Dispatchable handles are pointers, non dispatchable handles are 64 bit
// values. Reinterpret rather than convert so the wrapper types stay opaque.
func dispatchableHandle(h unsafe.Pointer) unsafe.Pointer {
	return *(*unsafe.Pointer)(h)
}

func nonDispatchableHandle(h unsafe.Pointer) C.uint64_t {
	return *(*C.uint64_t)(h)
}

// loadInstanceProcs resolves the instance level extension entry points.
// getInstanceProcAddr is the loader entry point the windowing layer found.
// Must run before any physical device is queried for push descriptor
// support.
func loadInstanceProcs(getInstanceProcAddr unsafe.Pointer, instance vk.Instance) error {
	if getInstanceProcAddr == nil {
		err := fmt.Errorf("no vkGetInstanceProcAddr available for extension loading")
		core.LogError(err.Error())
		return err
	}
	if C.vkxLoadInstanceProcs(getInstanceProcAddr, dispatchableHandle(unsafe.Pointer(&instance))) == 0 {
		err := fmt.Errorf("failed to resolve vkGetPhysicalDeviceProperties2")
		core.LogError(err.Error())
		return err
	}
	return nil
}

// loadDeviceProcs resolves the push descriptor and descriptor update
// template commands against the logical device. Must run after DeviceCreate
// and before the first template is built.
func loadDeviceProcs(instance vk.Instance, device vk.Device) error {
	if C.vkxLoadDeviceProcs(
		dispatchableHandle(unsafe.Pointer(&instance)),
		dispatchableHandle(unsafe.Pointer(&device))) == 0 {
		err := fmt.Errorf("failed to resolve the push descriptor entry points")
		core.LogError(err.Error())
		return err
	}
	return nil
}

// khrMaxPushDescriptors reads maxPushDescriptors through the properties2
// chain. Returns 0 when the query function was never resolved.
func khrMaxPushDescriptors(physicalDevice vk.PhysicalDevice) uint32 {
	return uint32(C.vkxMaxPushDescriptors(dispatchableHandle(unsafe.Pointer(&physicalDevice))))
}

// khrCreateDescriptorUpdateTemplate builds a push descriptor update
// template from the plan's bindings. The template entries are assembled on
// the C side so no Go pointers end up inside C visible structs.
func khrCreateDescriptorUpdateTemplate(
	device vk.Device,
	cfg *PushTemplateConfig,
	setLayout vk.DescriptorSetLayout,
	pipelineLayout vk.PipelineLayout,
) (vk.DescriptorUpdateTemplate, vk.Result) {
	count := len(cfg.Bindings)
	bindings := make([]C.uint32_t, count)
	types := make([]C.uint32_t, count)
	offsets := make([]C.size_t, count)
	for i, b := range cfg.Bindings {
		bindings[i] = C.uint32_t(b.Binding)
		types[i] = C.uint32_t(b.Type)
		offsets[i] = C.size_t(b.Offset)
	}

	var out C.uint64_t
	res := C.vkxCreateTemplate(
		dispatchableHandle(unsafe.Pointer(&device)),
		C.uint32_t(count),
		&bindings[0], &types[0], &offsets[0],
		C.size_t(cfg.BlockSize),
		C.uint32_t(vk.DescriptorUpdateTemplateTypePushDescriptors),
		nonDispatchableHandle(unsafe.Pointer(&setLayout)),
		C.uint32_t(cfg.BindPoint),
		nonDispatchableHandle(unsafe.Pointer(&pipelineLayout)),
		C.uint32_t(cfg.Set),
		&out)

	var template vk.DescriptorUpdateTemplate
	*(*uint64)(unsafe.Pointer(&template)) = uint64(out)
	return template, vk.Result(res)
}

func khrDestroyDescriptorUpdateTemplate(device vk.Device, template vk.DescriptorUpdateTemplate) {
	C.vkxDestroyTemplate(
		dispatchableHandle(unsafe.Pointer(&device)),
		nonDispatchableHandle(unsafe.Pointer(&template)))
}

// khrCmdPushDescriptorSetWithTemplate records the whole block in one call.
// data must contain only handles and plain values, never Go pointers.
func khrCmdPushDescriptorSetWithTemplate(
	commandBuffer vk.CommandBuffer,
	template vk.DescriptorUpdateTemplate,
	pipelineLayout vk.PipelineLayout,
	set uint32,
	data unsafe.Pointer,
) {
	C.vkxPushWithTemplate(
		dispatchableHandle(unsafe.Pointer(&commandBuffer)),
		nonDispatchableHandle(unsafe.Pointer(&template)),
		nonDispatchableHandle(unsafe.Pointer(&pipelineLayout)),
		C.uint32_t(set),
		data)
}

// khrCmdPushDescriptorSet records the block through individual writes. The
// VkWriteDescriptorSet array is assembled on the C side, pointing into the
// caller's block at the plan's record offsets.
func khrCmdPushDescriptorSet(
	commandBuffer vk.CommandBuffer,
	cfg *PushTemplateConfig,
	pipelineLayout vk.PipelineLayout,
	data unsafe.Pointer,
) {
	count := len(cfg.Bindings)
	bindings := make([]C.uint32_t, count)
	types := make([]C.uint32_t, count)
	offsets := make([]C.size_t, count)
	for i, b := range cfg.Bindings {
		bindings[i] = C.uint32_t(b.Binding)
		types[i] = C.uint32_t(b.Type)
		offsets[i] = C.size_t(b.Offset)
	}

	C.vkxPushWrites(
		dispatchableHandle(unsafe.Pointer(&commandBuffer)),
		C.uint32_t(cfg.BindPoint),
		nonDispatchableHandle(unsafe.Pointer(&pipelineLayout)),
		C.uint32_t(cfg.Set),
		C.uint32_t(count),
		&bindings[0], &types[0],
		data, &offsets[0])
}

// Native struct sizes, exposed so tests can pin the declared layouts
// against the sizes the driver expects.
func nativeTemplateEntrySize() uintptr {
	return uintptr(C.sizeof_VkxDescriptorUpdateTemplateEntry)
}

func nativeWriteDescriptorSetSize() uintptr {
	return uintptr(C.sizeof_VkxWriteDescriptorSet)
}

func nativeTemplateCreateInfoSize() uintptr {
	return uintptr(C.sizeof_VkxDescriptorUpdateTemplateCreateInfo)
}
