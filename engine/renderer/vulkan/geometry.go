package vulkan

import (
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"

	"github.com/vesta-engine/vesta/engine/core"
	"github.com/vesta-engine/vesta/engine/math"
)

// VulkanGeometry holds device local vertex and index buffers for one mesh.
type VulkanGeometry struct {
	VertexBuffer *VulkanBuffer
	IndexBuffer  *VulkanBuffer
	IndexCount   uint32
	ID           string
}

// Vertex3DAttributes describes math.Vertex3D for pipeline creation.
func Vertex3DAttributes() []vk.VertexInputAttributeDescription {
	var v math.Vertex3D
	return []vk.VertexInputAttributeDescription{
		{Location: 0, Binding: 0, Format: vk.FormatR32g32b32Sfloat, Offset: uint32(unsafe.Offsetof(v.Position))},
		{Location: 1, Binding: 0, Format: vk.FormatR32g32b32Sfloat, Offset: uint32(unsafe.Offsetof(v.Normal))},
		{Location: 2, Binding: 0, Format: vk.FormatR32g32Sfloat, Offset: uint32(unsafe.Offsetof(v.Texcoord))},
		{Location: 3, Binding: 0, Format: vk.FormatR32g32b32a32Sfloat, Offset: uint32(unsafe.Offsetof(v.Colour))},
	}
}

func GeometryCreate(context *VulkanContext, vertices []math.Vertex3D, indices []uint32) (*VulkanGeometry, error) {
	if len(vertices) == 0 || len(indices) == 0 {
		err := fmt.Errorf("geometry needs vertices and indices")
		core.LogError(err.Error())
		return nil, err
	}

	geometry := &VulkanGeometry{
		IndexCount: uint32(len(indices)),
		ID:         core.IdentifierNew(),
	}

	vertexBytes := unsafe.Slice((*byte)(unsafe.Pointer(&vertices[0])), len(vertices)*int(unsafe.Sizeof(vertices[0])))
	vertexBuffer, err := uploadDeviceLocal(context, vertexBytes, vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit))
	if err != nil {
		return nil, err
	}
	geometry.VertexBuffer = vertexBuffer

	indexBytes := unsafe.Slice((*byte)(unsafe.Pointer(&indices[0])), len(indices)*4)
	indexBuffer, err := uploadDeviceLocal(context, indexBytes, vk.BufferUsageFlags(vk.BufferUsageIndexBufferBit))
	if err != nil {
		vertexBuffer.Destroy(context)
		return nil, err
	}
	geometry.IndexBuffer = indexBuffer

	return geometry, nil
}

// uploadDeviceLocal stages data through a host visible buffer into a fresh
// device local buffer.
func uploadDeviceLocal(context *VulkanContext, data []byte, usage vk.BufferUsageFlags) (*VulkanBuffer, error) {
	size := vk.DeviceSize(len(data))

	staging, err := BufferCreate(context, size,
		vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit),
		uint32(vk.MemoryPropertyHostVisibleBit)|uint32(vk.MemoryPropertyHostCoherentBit),
		true)
	if err != nil {
		return nil, err
	}
	defer staging.Destroy(context)

	if err := staging.LoadData(context, 0, size, 0, data); err != nil {
		return nil, err
	}

	deviceLocal, err := BufferCreate(context, size,
		usage|vk.BufferUsageFlags(vk.BufferUsageTransferDstBit),
		uint32(vk.MemoryPropertyDeviceLocalBit),
		true)
	if err != nil {
		return nil, err
	}

	if err := staging.CopyTo(context,
		context.Device.GraphicsCommandPool,
		context.Device.GraphicsQueue,
		uint32(context.Device.GraphicsQueueIndex),
		0, deviceLocal, 0, size); err != nil {
		deviceLocal.Destroy(context)
		return nil, err
	}
	return deviceLocal, nil
}

func (vg *VulkanGeometry) Draw(commandBuffer *VulkanCommandBuffer) {
	vk.CmdBindVertexBuffers(commandBuffer.Handle, 0, 1, []vk.Buffer{vg.VertexBuffer.Handle}, []vk.DeviceSize{0})
	vk.CmdBindIndexBuffer(commandBuffer.Handle, vg.IndexBuffer.Handle, 0, vk.IndexTypeUint32)
	vk.CmdDrawIndexed(commandBuffer.Handle, vg.IndexCount, 1, 0, 0, 0)
}

func (vg *VulkanGeometry) Destroy(context *VulkanContext) {
	if vg.IndexBuffer != nil {
		vg.IndexBuffer.Destroy(context)
		vg.IndexBuffer = nil
	}
	if vg.VertexBuffer != nil {
		vg.VertexBuffer.Destroy(context)
		vg.VertexBuffer = nil
	}
}
