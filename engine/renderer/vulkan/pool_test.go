package vulkan

import (
	"sync"
	"testing"
)

func TestSafeCallSerializesWithinAGroup(t *testing.T) {
	pool := NewVulkanLockPool()

	var wg sync.WaitGroup
	counter := 0
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = pool.SafeCall(BufferManagement, func() error {
				counter++
				return nil
			})
		}()
	}
	wg.Wait()

	if counter != 32 {
		t.Fatalf("expected 32 serialized increments, got %d", counter)
	}
}

func TestSafeQueueCallRegistersUnknownFamilies(t *testing.T) {
	pool := NewVulkanLockPool()
	pool.SetQueueFamily(0)

	called := false
	if err := pool.SafeQueueCall(3, func() error {
		called = true
		return nil
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Fatal("queue call did not run")
	}
}
