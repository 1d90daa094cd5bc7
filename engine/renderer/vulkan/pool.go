package vulkan

import "sync"

type LockGroup string

const (
	BufferManagement   LockGroup = "buffer_management"
	PipelineManagement LockGroup = "pipeline_management"
)

// VulkanLockPool serializes access to Vulkan objects that must not be
// touched from two goroutines at once.
type VulkanLockPool struct {
	locks map[LockGroup]*sync.Mutex
	mu    sync.Mutex

	queueMutexes map[uint32]*sync.Mutex
}

func NewVulkanLockPool() *VulkanLockPool {
	return &VulkanLockPool{
		locks:        make(map[LockGroup]*sync.Mutex),
		queueMutexes: make(map[uint32]*sync.Mutex),
	}
}

func (vp *VulkanLockPool) acquire(group LockGroup) *sync.Mutex {
	vp.mu.Lock()
	l, exists := vp.locks[group]
	if !exists {
		l = &sync.Mutex{}
		vp.locks[group] = l
	}
	vp.mu.Unlock()

	l.Lock()
	return l
}

func (vp *VulkanLockPool) SafeCall(group LockGroup, fn func() error) error {
	l := vp.acquire(group)
	defer l.Unlock()
	return fn()
}

func (vp *VulkanLockPool) SetQueueFamily(index uint32) {
	vp.mu.Lock()
	defer vp.mu.Unlock()
	if _, exists := vp.queueMutexes[index]; !exists {
		vp.queueMutexes[index] = &sync.Mutex{}
	}
}

// SafeQueueCall serializes queue submissions per family. The family must
// have been registered with SetQueueFamily first.
func (vp *VulkanLockPool) SafeQueueCall(queueFamilyIndex uint32, fn func() error) error {
	vp.mu.Lock()
	l, exists := vp.queueMutexes[queueFamilyIndex]
	if !exists {
		l = &sync.Mutex{}
		vp.queueMutexes[queueFamilyIndex] = l
	}
	vp.mu.Unlock()

	l.Lock()
	defer l.Unlock()
	return fn()
}
