package vulkan

import (
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"

	"github.com/vesta-engine/vesta/engine/core"
)

// VulkanBuffer wraps a vk.Buffer together with its backing allocation.
type VulkanBuffer struct {
	Handle      vk.Buffer
	Memory      vk.DeviceMemory
	TotalSize   vk.DeviceSize
	Usage       vk.BufferUsageFlags
	MemoryIndex int32
	IsLocked    bool
}

func BufferCreate(context *VulkanContext, size vk.DeviceSize, usage vk.BufferUsageFlags, memoryPropertyFlags uint32, bindOnCreate bool) (*VulkanBuffer, error) {
	buffer := &VulkanBuffer{
		TotalSize: size,
		Usage:     usage,
	}

	bufferInfo := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        size,
		Usage:       usage,
		SharingMode: vk.SharingModeExclusive,
	}

	var handle vk.Buffer
	if res := vk.CreateBuffer(context.Device.LogicalDevice, &bufferInfo, context.Allocator, &handle); !VulkanResultIsSuccess(res) {
		err := fmt.Errorf("vkCreateBuffer failed with %s", VulkanResultString(res))
		core.LogError(err.Error())
		return nil, err
	}
	buffer.Handle = handle

	var requirements vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(context.Device.LogicalDevice, buffer.Handle, &requirements)
	requirements.Deref()

	buffer.MemoryIndex = context.FindMemoryIndex(requirements.MemoryTypeBits, memoryPropertyFlags)
	if buffer.MemoryIndex == -1 {
		err := fmt.Errorf("buffer creation failed, required memory type not found")
		core.LogError(err.Error())
		buffer.Destroy(context)
		return nil, err
	}

	allocateInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  requirements.Size,
		MemoryTypeIndex: uint32(buffer.MemoryIndex),
	}
	var memory vk.DeviceMemory
	if res := vk.AllocateMemory(context.Device.LogicalDevice, &allocateInfo, context.Allocator, &memory); !VulkanResultIsSuccess(res) {
		err := fmt.Errorf("vkAllocateMemory failed with %s", VulkanResultString(res))
		core.LogError(err.Error())
		buffer.Destroy(context)
		return nil, err
	}
	buffer.Memory = memory

	if bindOnCreate {
		if err := buffer.Bind(context, 0); err != nil {
			buffer.Destroy(context)
			return nil, err
		}
	}
	return buffer, nil
}

func (vb *VulkanBuffer) Bind(context *VulkanContext, offset vk.DeviceSize) error {
	if res := vk.BindBufferMemory(context.Device.LogicalDevice, vb.Handle, vb.Memory, offset); !VulkanResultIsSuccess(res) {
		err := fmt.Errorf("vkBindBufferMemory failed with %s", VulkanResultString(res))
		core.LogError(err.Error())
		return err
	}
	return nil
}

func (vb *VulkanBuffer) Destroy(context *VulkanContext) {
	if vb.Memory != vk.NullDeviceMemory {
		vk.FreeMemory(context.Device.LogicalDevice, vb.Memory, context.Allocator)
		vb.Memory = vk.NullDeviceMemory
	}
	if vb.Handle != vk.NullBuffer {
		vk.DestroyBuffer(context.Device.LogicalDevice, vb.Handle, context.Allocator)
		vb.Handle = vk.NullBuffer
	}
	vb.TotalSize = 0
	vb.IsLocked = false
}

func (vb *VulkanBuffer) LockMemory(context *VulkanContext, offset, size vk.DeviceSize, flags vk.MemoryMapFlags) (unsafe.Pointer, error) {
	var data unsafe.Pointer
	if res := vk.MapMemory(context.Device.LogicalDevice, vb.Memory, offset, size, flags, &data); !VulkanResultIsSuccess(res) {
		err := fmt.Errorf("vkMapMemory failed with %s", VulkanResultString(res))
		core.LogError(err.Error())
		return nil, err
	}
	vb.IsLocked = true
	return data, nil
}

func (vb *VulkanBuffer) UnlockMemory(context *VulkanContext) {
	vk.UnmapMemory(context.Device.LogicalDevice, vb.Memory)
	vb.IsLocked = false
}

// LoadData maps the buffer, copies data into it and unmaps again. The
// buffer must live in host visible memory.
func (vb *VulkanBuffer) LoadData(context *VulkanContext, offset, size vk.DeviceSize, flags vk.MemoryMapFlags, data []byte) error {
	return context.Locks.SafeCall(BufferManagement, func() error {
		ptr, err := vb.LockMemory(context, offset, size, flags)
		if err != nil {
			return err
		}
		vk.Memcopy(ptr, data)
		vb.UnlockMemory(context)
		return nil
	})
}

// CopyTo records and submits a transfer from this buffer into dest on the
// given queue, blocking until the copy finishes.
func (vb *VulkanBuffer) CopyTo(context *VulkanContext, pool vk.CommandPool, queue vk.Queue, queueFamilyIndex uint32, sourceOffset vk.DeviceSize, dest *VulkanBuffer, destOffset, size vk.DeviceSize) error {
	cb, err := AllocateAndBeginSingleUse(context, pool)
	if err != nil {
		return err
	}

	copyRegion := vk.BufferCopy{
		SrcOffset: sourceOffset,
		DstOffset: destOffset,
		Size:      size,
	}
	vk.CmdCopyBuffer(cb.Handle, vb.Handle, dest.Handle, 1, []vk.BufferCopy{copyRegion})

	return cb.EndSingleUse(context, pool, queue, queueFamilyIndex)
}

// Descriptor packs the buffer's binding information in the layout a
// descriptor update template consumes.
func (vb *VulkanBuffer) Descriptor(offset, rng vk.DeviceSize) BufferBindingData {
	if rng == 0 {
		rng = vb.TotalSize
	}
	return BufferBindingData{
		Buffer: vb.Handle,
		Offset: offset,
		Range:  rng,
	}
}
