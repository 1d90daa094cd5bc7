package vulkan

import (
	"testing"
	"unsafe"

	vk "github.com/goki/vulkan"
)

func testConfig() PushTemplateConfig {
	type block struct {
		Scene BufferBindingData
		Model BufferBindingData
		Tex   ImageBindingData
	}
	return PushTemplateConfig{
		Bindings: []PushBinding{
			{Binding: 0, Type: vk.DescriptorTypeUniformBuffer, Stages: vk.ShaderStageFlags(vk.ShaderStageVertexBit), Offset: unsafe.Offsetof(block{}.Scene)},
			{Binding: 1, Type: vk.DescriptorTypeUniformBuffer, Stages: vk.ShaderStageFlags(vk.ShaderStageVertexBit), Offset: unsafe.Offsetof(block{}.Model)},
			{Binding: 2, Type: vk.DescriptorTypeCombinedImageSampler, Stages: vk.ShaderStageFlags(vk.ShaderStageFragmentBit), Offset: unsafe.Offsetof(block{}.Tex)},
		},
		BlockSize: unsafe.Sizeof(block{}),
		BindPoint: vk.PipelineBindPointGraphics,
		Set:       0,
	}
}

func TestBindingRecordsMatchDescriptorInfoLayout(t *testing.T) {
	// The whole mechanism depends on these records being memory
	// compatible with VkDescriptorBufferInfo and VkDescriptorImageInfo.
	if got := unsafe.Sizeof(BufferBindingData{}); got != 24 {
		t.Fatalf("BufferBindingData size = %d, want 24", got)
	}
	if got := unsafe.Sizeof(ImageBindingData{}); got != 24 {
		t.Fatalf("ImageBindingData size = %d, want 24", got)
	}
	if got := unsafe.Offsetof(BufferBindingData{}.Offset); got != 8 {
		t.Fatalf("BufferBindingData.Offset at %d, want 8", got)
	}
	if got := unsafe.Offsetof(ImageBindingData{}.ImageLayout); got != 16 {
		t.Fatalf("ImageBindingData.ImageLayout at %d, want 16", got)
	}
}

func TestValidateAcceptsWellFormedPlan(t *testing.T) {
	cfg := testConfig()
	if err := cfg.validate(32); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRejectsEmptyPlan(t *testing.T) {
	cfg := PushTemplateConfig{BlockSize: 24}
	if err := cfg.validate(32); err == nil {
		t.Fatal("expected an error for a plan with no bindings")
	}
}

func TestValidateRejectsZeroBlock(t *testing.T) {
	cfg := testConfig()
	cfg.BlockSize = 0
	if err := cfg.validate(32); err == nil {
		t.Fatal("expected an error for a zero size block")
	}
}

func TestValidateRejectsDuplicateBinding(t *testing.T) {
	cfg := testConfig()
	cfg.Bindings[1].Binding = 0
	if err := cfg.validate(32); err == nil {
		t.Fatal("expected an error for duplicate binding numbers")
	}
}

func TestValidateRejectsUnsupportedType(t *testing.T) {
	cfg := testConfig()
	cfg.Bindings[0].Type = vk.DescriptorTypeInputAttachment
	if err := cfg.validate(32); err == nil {
		t.Fatal("expected an error for a type push descriptors cannot carry")
	}
}

func TestValidateRejectsMisalignedOffset(t *testing.T) {
	cfg := testConfig()
	cfg.Bindings[1].Offset = 4
	if err := cfg.validate(32); err == nil {
		t.Fatal("expected an error for a misaligned record offset")
	}
}

func TestValidateRejectsOutOfRangeRecord(t *testing.T) {
	cfg := testConfig()
	cfg.Bindings[2].Offset = cfg.BlockSize
	if err := cfg.validate(32); err == nil {
		t.Fatal("expected an error for a record past the end of the block")
	}
}

func TestValidateRejectsOverlappingRecords(t *testing.T) {
	cfg := testConfig()
	cfg.Bindings[1].Offset = cfg.Bindings[0].Offset + 8
	if err := cfg.validate(32); err == nil {
		t.Fatal("expected an error for overlapping records")
	}
}

func TestValidateRejectsMissingStages(t *testing.T) {
	cfg := testConfig()
	cfg.Bindings[0].Stages = 0
	if err := cfg.validate(32); err == nil {
		t.Fatal("expected an error for a binding with no stages")
	}
}

func TestValidateHonorsDeviceLimit(t *testing.T) {
	cfg := testConfig()
	if err := cfg.validate(2); err == nil {
		t.Fatal("expected an error when the plan exceeds maxPushDescriptors")
	}
	if err := cfg.validate(3); err != nil {
		t.Fatalf("a plan at the limit should pass, got %v", err)
	}
	// Zero means the limit is unknown, not zero descriptors.
	if err := cfg.validate(0); err != nil {
		t.Fatalf("unknown limit should not reject, got %v", err)
	}
}

func TestTemplateEntriesMirrorThePlan(t *testing.T) {
	cfg := testConfig()
	entries := cfg.templateEntries()
	if len(entries) != len(cfg.Bindings) {
		t.Fatalf("expected %d entries, got %d", len(cfg.Bindings), len(entries))
	}
	for i, e := range entries {
		b := cfg.Bindings[i]
		if e.DstBinding != b.Binding {
			t.Fatalf("entry %d binding = %d, want %d", i, e.DstBinding, b.Binding)
		}
		if e.DescriptorType != b.Type {
			t.Fatalf("entry %d type = %d, want %d", i, e.DescriptorType, b.Type)
		}
		if e.Offset != uint64(b.Offset) {
			t.Fatalf("entry %d offset = %d, want %d", i, e.Offset, b.Offset)
		}
		if e.Stride != uint64(cfg.BlockSize) {
			t.Fatalf("entry %d stride = %d, want block size %d", i, e.Stride, cfg.BlockSize)
		}
		if e.DescriptorCount != 1 || e.DstArrayElement != 0 {
			t.Fatalf("entry %d should target a single array element", i)
		}
	}
}

func TestLayoutBindingsMirrorThePlan(t *testing.T) {
	cfg := testConfig()
	bindings := cfg.layoutBindings()
	if len(bindings) != 3 {
		t.Fatalf("expected 3 layout bindings, got %d", len(bindings))
	}
	if bindings[2].DescriptorType != vk.DescriptorTypeCombinedImageSampler {
		t.Fatalf("binding 2 type = %d", bindings[2].DescriptorType)
	}
	if bindings[0].StageFlags != vk.ShaderStageFlags(vk.ShaderStageVertexBit) {
		t.Fatalf("binding 0 stages = %d", bindings[0].StageFlags)
	}
}
