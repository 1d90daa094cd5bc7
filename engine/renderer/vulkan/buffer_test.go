package vulkan

import "testing"

// Creation destroys the partially built object on its error branches, so
// Destroy must tolerate whatever subset of handle, memory and view exists.
func TestBufferDestroyToleratesPartialState(t *testing.T) {
	ctx := &VulkanContext{Device: &VulkanDevice{}}
	b := &VulkanBuffer{TotalSize: 64}
	b.Destroy(ctx)
	if b.TotalSize != 0 {
		t.Fatalf("expected a zeroed buffer after Destroy, size = %d", b.TotalSize)
	}
	// A second Destroy must also be a no-op.
	b.Destroy(ctx)
}

func TestImageDestroyToleratesPartialState(t *testing.T) {
	ctx := &VulkanContext{Device: &VulkanDevice{}}
	img := &VulkanImage{Width: 4, Height: 4}
	img.ImageDestroy(ctx)
	img.ImageDestroy(ctx)
}
