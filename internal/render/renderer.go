package render

import (
	"runtime"

	"github.com/vireo-engine/rendercore/internal/corelog"
	"github.com/vireo-engine/rendercore/internal/fence"
	"github.com/vireo-engine/rendercore/internal/gpu"
)

// Renderer owns every GPU-facing resource shared across views: the
// resource pool, the program/sampler/LUT caches, the fence-guarded
// RenderTarget/ConstantBuffer/MemoryPool vectors, the set of live
// fences, and the worker pool. It mirrors the teacher's SystemManager
// (engine/systems/manager.go) as the single top-level owner of every
// render subsystem, sized to runtime.NumCPU() workers the same way.
type Renderer struct {
	Pool *gpu.ResourcePool

	programCache map[string]gpu.ResourceID
	samplerCache map[string]gpu.ResourceID
	lutCache     map[string]gpu.ResourceID

	RenderTargets   *RenderTargetCache
	ConstantBuffers *ConstantBufferCache
	MemoryPools     *MemoryPoolCache

	fences *fenceSet
	Jobs   *WorkerPool

	metrics *corelog.FrameMetrics
	clock   *corelog.Clock
}

// Config controls renderer construction.
type Config struct {
	WorkerCount        int
	ScratchPoolBytes   int
	VisibilityPoolBytes int

	CreateRenderTarget func(cfg RenderTargetConfig) (gpu.ResourceID, []gpu.ResourceID)
	CreateBuffer       func(size int) gpu.ResourceID
}

// New constructs a Renderer. A WorkerCount <= 0 defaults to
// runtime.NumCPU(), matching the teacher's MaxNumberOfWorkers default.
func New(cfg Config) *Renderer {
	workers := cfg.WorkerCount
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	poolBytes := cfg.ScratchPoolBytes
	if poolBytes <= 0 {
		poolBytes = 1 << 20
	}

	return &Renderer{
		Pool:            gpu.NewResourcePool(),
		programCache:    make(map[string]gpu.ResourceID),
		samplerCache:    make(map[string]gpu.ResourceID),
		lutCache:        make(map[string]gpu.ResourceID),
		RenderTargets:   NewRenderTargetCache(cfg.CreateRenderTarget),
		ConstantBuffers: NewConstantBufferCache(cfg.CreateBuffer),
		MemoryPools:     NewMemoryPoolCache(poolBytes),
		fences:          newFenceSet(),
		Jobs:            NewWorkerPool(workers),
		metrics:         corelog.NewFrameMetrics(),
		clock:           corelog.NewClock(),
	}
}

// QueryFence creates and registers a new fence, see fenceSet.QueryFence.
func (r *Renderer) QueryFence() *fence.Fence {
	return r.fences.QueryFence(nil)
}

// DoneFence releases the renderer's bookkeeping reference to a fence
// and garbage-collects any fence nobody else still holds.
func (r *Renderer) DoneFence(id fence.ID) {
	r.fences.DoneFence(id)
}

// LiveFenceCount reports how many fences the renderer is tracking.
func (r *Renderer) LiveFenceCount() int {
	return r.fences.Live()
}

// ResolveFence satisfies cmdbuf.GLBackend: it turns the wire fence id a
// FenceSync/FenceWait opcode carries back into the *fence.Fence the
// renderer's own bookkeeping created it for.
func (r *Renderer) ResolveFence(id uint32) *fence.Fence {
	return r.fences.Resolve(id)
}

// Program looks up or lazily creates a program resource keyed by name.
func (r *Renderer) Program(name string, create func() gpu.ResourceID) gpu.ResourceID {
	return lookupOrCreate(r.programCache, name, create)
}

// Sampler looks up or lazily creates a sampler resource keyed by name.
func (r *Renderer) Sampler(name string, create func() gpu.ResourceID) gpu.ResourceID {
	return lookupOrCreate(r.samplerCache, name, create)
}

// LUT looks up or lazily creates a lookup-table texture keyed by name.
func (r *Renderer) LUT(name string, create func() gpu.ResourceID) gpu.ResourceID {
	return lookupOrCreate(r.lutCache, name, create)
}

func lookupOrCreate(m map[string]gpu.ResourceID, key string, create func() gpu.ResourceID) gpu.ResourceID {
	if id, ok := m[key]; ok {
		return id
	}
	id := create()
	m[key] = id
	return id
}

// BeginFrame starts the frame clock.
func (r *Renderer) BeginFrame() {
	r.clock.Start()
}

// EndFrame stops the frame clock and folds its elapsed time into the
// rolling frame-time metrics.
func (r *Renderer) EndFrame() {
	r.clock.Update()
	r.metrics.Update(r.clock.Elapsed() / 1e9)
	r.clock.Stop()
}

// Metrics exposes the renderer's rolling frame-time/FPS tracker.
func (r *Renderer) Metrics() *corelog.FrameMetrics {
	return r.metrics
}

// Shutdown stops the worker pool.
func (r *Renderer) Shutdown() {
	r.Jobs.Shutdown()
}
