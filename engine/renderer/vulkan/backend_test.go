package vulkan

import "testing"

func TestRecreateDimensionsPrefersCachedResize(t *testing.T) {
	vr := &VulkanRenderer{
		context:                 &VulkanContext{FramebufferWidth: 800, FramebufferHeight: 600},
		cachedFramebufferWidth:  1280,
		cachedFramebufferHeight: 720,
	}
	w, h, ok := vr.recreateDimensions()
	if !ok || w != 1280 || h != 720 {
		t.Fatalf("expected cached 1280x720, got %dx%d ok=%v", w, h, ok)
	}
}

func TestRecreateDimensionsFallsBackToCurrentSize(t *testing.T) {
	// An out of date surface bumps the generation without a resize event,
	// so there are no cached dimensions to use.
	vr := &VulkanRenderer{
		context: &VulkanContext{FramebufferWidth: 800, FramebufferHeight: 600},
	}
	w, h, ok := vr.recreateDimensions()
	if !ok || w != 800 || h != 600 {
		t.Fatalf("expected fallback 800x600, got %dx%d ok=%v", w, h, ok)
	}
}

func TestRecreateDimensionsRejectsZeroSize(t *testing.T) {
	vr := &VulkanRenderer{context: &VulkanContext{}}
	if _, _, ok := vr.recreateDimensions(); ok {
		t.Fatalf("zero dimensions everywhere should not allow a rebuild")
	}
}
