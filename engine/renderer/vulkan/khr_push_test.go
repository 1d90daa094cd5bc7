package vulkan

import "testing"

// The hand declared structs in the bridge must match the sizes the driver
// expects on a 64 bit platform, same idea as the binding record checks.
func TestNativeStructLayoutsMatchVulkan(t *testing.T) {
	if got := nativeTemplateEntrySize(); got != 32 {
		t.Fatalf("VkDescriptorUpdateTemplateEntry size = %d, want 32", got)
	}
	if got := nativeWriteDescriptorSetSize(); got != 64 {
		t.Fatalf("VkWriteDescriptorSet size = %d, want 64", got)
	}
	if got := nativeTemplateCreateInfoSize(); got != 72 {
		t.Fatalf("VkDescriptorUpdateTemplateCreateInfo size = %d, want 72", got)
	}
}
