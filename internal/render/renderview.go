package render

import (
	"github.com/vireo-engine/rendercore/internal/bitset"
	"github.com/vireo-engine/rendercore/internal/cmdbuf"
	"github.com/vireo-engine/rendercore/internal/ecs"
	"github.com/vireo-engine/rendercore/internal/fence"
	"github.com/vireo-engine/rendercore/internal/gpu"
	"github.com/vireo-engine/rendercore/internal/mathutil"
)

// ViewType enumerates what a RenderView is looking from.
type ViewType int

const (
	ViewCamera ViewType = iota
	ViewShadow
	ViewLight
)

// RenderKind enumerates what a RenderView draws.
type RenderKind int

const (
	RenderDepthOnly RenderKind = iota
	RenderForward
	RenderDeferred
)

// maxForwardLights bounds the up-to-8-light packing the forward pass
// supports.
const maxForwardLights = 8

// objectsPerBlock is the number of objects packed into one constant
// buffer subpass block before the record job advances to a new one.
const objectsPerBlock = 256

// MomentCount is the number of moments a moment-shadow-map render
// target carries (MSM4), adopted from the original renderer's shadow
// representation since the distilled contract names the technique but
// not its moment count.
const MomentCount = 4

// RenderView is one pass over the scene: a camera, a shadow map, or a
// light-probe view, each with its own viewport, sample count, matrices,
// and acquired per-frame resources.
type RenderView struct {
	Type       ViewType
	Kind       RenderKind
	Viewport   [4]int
	SampleCount int
	View       mathutil.Mat4
	Projection mathutil.Mat4

	Inputs []*RenderView

	// MomentMipmapProgram and FullscreenTriangle are set only on shadow
	// (moment-shadow) views; when MomentMipmapProgram is non-zero, Record
	// emits one extra program-bind/draw pair at the end of the pass to
	// regenerate the moment target's mipmap chain via a shader-driven
	// fullscreen triangle, since the command-buffer encoding has no
	// dedicated mipmap-generation opcode.
	MomentMipmapProgram gpu.ResourceID
	FullscreenTriangle   gpu.ResourceID

	// AmbientBasis is the per-view spherical-harmonics ambient term
	// (SceneConstants.ambient_basis). The probe system that would
	// otherwise compute it is out of scope here, so the host sets this
	// directly; it defaults to zero (no ambient contribution).
	AmbientBasis [6]mathutil.Vec4

	renderer *Renderer
	fence    *fence.Fence
	scratch  *memoryPoolEntry
	visPool  *memoryPoolEntry

	visibility *ViewVisibility
}

// ViewVisibility is the per-view occlusion state: the rasterized
// OcclusionBuffer plus per-mesh culling results written during
// extraction's occlusion pass.
type ViewVisibility struct {
	Occlusion *OcclusionBuffer
	Invisible map[ecs.EntityID]bool
	LateOut   map[ecs.EntityID]bool
}

func newViewVisibility() *ViewVisibility {
	return &ViewVisibility{
		Occlusion: NewOcclusionBuffer(),
		Invisible: make(map[ecs.EntityID]bool),
		LateOut:   make(map[ecs.EntityID]bool),
	}
}

// Init acquires this view's fence and scratch/visibility memory pools
// from the renderer, and allocates a fresh ViewVisibility.
func (v *RenderView) Init(r *Renderer) {
	v.renderer = r
	v.fence = r.QueryFence()
	v.scratch = r.MemoryPools.Acquire(v.fence)
	v.visPool = r.MemoryPools.Acquire(v.fence)
	v.visibility = newViewVisibility()
}

// ScratchPool exposes the per-frame scratch allocator Record wrote this
// view's constant blocks into, so a caller's Execute can resolve the
// gpu.Handles those writes produced.
func (v *RenderView) ScratchPool() *gpu.MemoryPool {
	return v.scratch.Pool
}

// viewProjection is View * Projection combined, used for both frustum
// extraction and occluder transforms.
func (v *RenderView) viewProjection() mathutil.Mat4 {
	return v.View.Mul(v.Projection)
}

// RenderObject is one entity surviving extraction, ready for sorting
// and constant-buffer packing in the record job.
type RenderObject struct {
	Entity     ecs.EntityID
	Mesh       *MeshComponent
	WorldMat   mathutil.Mat4
	EyeDistance float32
	IsLight    bool
	Light      *LightComponent
}

// ExtractForView walks the scene's Transform+Mesh entities, frustum-
// culls them against the view, collects lights when the view wants
// them (camera views only), and then runs the occlusion pipeline over
// the surviving occluders.
func ExtractForView(store *ecs.Store, v *RenderView) []RenderObject {
	vp := v.viewProjection()
	frustum := mathutil.FrustumFromViewProjection(vp)
	wantsLights := v.Type == ViewCamera

	query := store.CreateEntityQuery(ecs.EntityQueryParams{
		AllOf: bitset.New(ComponentTransform, ComponentMesh),
	})
	chunks := query.Collect()

	var objects []RenderObject
	var occluderTris [][3]mathutil.Vec3

	for _, chunk := range chunks.Chunks {
		for slot := 0; slot < chunk.EntityCount(); slot++ {
			e := chunk.EntityAt(slot)
			xf := transformOf(store, e)
			mesh := meshOf(store, e)
			if xf == nil || mesh == nil {
				continue
			}
			world := xf.GetWorld()
			worldBounds := mesh.Bounds.Transform(world)

			if !frustum.IntersectsAABB(worldBounds) {
				continue
			}

			objects = append(objects, RenderObject{
				Entity:      e,
				Mesh:        mesh,
				WorldMat:    world,
				EyeDistance: eyeDistance(v.View, worldBounds.Center()),
			})

			for _, tri := range meshOccluderTriangles(mesh, world) {
				occluderTris = append(occluderTris, tri)
			}
		}
	}

	if wantsLights {
		lightQuery := store.CreateEntityQuery(ecs.EntityQueryParams{AllOf: bitset.New(ComponentLight)})
		for _, chunk := range lightQuery.Collect().Chunks {
			for slot := 0; slot < chunk.EntityCount(); slot++ {
				e := chunk.EntityAt(slot)
				l := lightOf(store, e)
				if l == nil {
					continue
				}
				objects = append(objects, RenderObject{Entity: e, IsLight: true, Light: l})
			}
		}
	}

	runOcclusionPipeline(v, vp, occluderTris, objects)

	return objects
}

func eyeDistance(view mathutil.Mat4, p mathutil.Vec3) float32 {
	x, y, z, w := transformPoint(view, p)
	if w == 0 {
		w = 1e-6
	}
	return -(z / w)
}

// meshOccluderTriangles decomposes a mesh's world-space bounds into the
// 12 triangles of its box, used as a conservative occluder proxy: the
// render core does not require occluders to match visual geometry
// exactly, only to be conservative (never cull something actually
// visible).
func meshOccluderTriangles(mesh *MeshComponent, world mathutil.Mat4) [][3]mathutil.Vec3 {
	box := mesh.Bounds.Transform(world)
	c := box.Corners()
	// Face triangles over AABB.Corners()'s ordering: 0=(-,-,-) 1=(+,-,-)
	// 2=(-,+,-) 3=(+,+,-) 4=(-,-,+) 5=(+,-,+) 6=(-,+,+) 7=(+,+,+).
	idx := [12][3]int{
		{0, 1, 3}, {0, 3, 2}, // z-
		{4, 6, 7}, {4, 7, 5}, // z+
		{0, 4, 5}, {0, 5, 1}, // y-
		{2, 3, 7}, {2, 7, 6}, // y+
		{0, 2, 6}, {0, 6, 4}, // x-
		{1, 3, 7}, {1, 7, 5}, // x+
	}
	tris := make([][3]mathutil.Vec3, 0, 12)
	for _, f := range idx {
		tris = append(tris, [3]mathutil.Vec3{c[f[0]], c[f[1]], c[f[2]]})
	}
	return tris
}

func runOcclusionPipeline(v *RenderView, vp mathutil.Mat4, occluders [][3]mathutil.Vec3, objects []RenderObject) {
	vis := v.visibility
	vis.Occlusion.Clear()
	vis.Occlusion.TransformOccluders(vp, occluders)
	vis.Occlusion.Rasterize()

	for i := range objects {
		obj := &objects[i]
		if obj.IsLight || obj.Mesh == nil {
			continue
		}
		box := obj.Mesh.Bounds.Transform(obj.WorldMat)
		minX, minY, maxX, maxY, nearZ := projectScreenAABB(vp, box, vis.Occlusion)
		invisible, lateOut := vis.Occlusion.Query(minX, minY, maxX, maxY, nearZ)
		if invisible {
			vis.Invisible[obj.Entity] = true
		}
		if lateOut {
			vis.LateOut[obj.Entity] = true
		}
	}
}

func projectScreenAABB(vp mathutil.Mat4, box mathutil.AABB, occ *OcclusionBuffer) (minX, minY, maxX, maxY int, nearestZ float32) {
	minX, minY = 1<<30, 1<<30
	maxX, maxY = -(1 << 30), -(1 << 30)
	nearestZ = 1
	for _, c := range box.Corners() {
		x, y, z, w := transformPoint(vp, c)
		if w <= 0 {
			continue
		}
		ndcX, ndcY, ndcZ := x/w, y/w, z/w
		sx := int((ndcX*0.5 + 0.5) * float32(occ.width))
		sy := int((1 - (ndcY*0.5 + 0.5)) * float32(occ.height))
		depth := ndcZ*0.5 + 0.5
		if sx < minX {
			minX = sx
		}
		if sx > maxX {
			maxX = sx
		}
		if sy < minY {
			minY = sy
		}
		if sy > maxY {
			maxY = sy
		}
		if depth < nearestZ {
			nearestZ = depth
		}
	}
	return
}

// blockSize is the byte span of one objects_per_block uniform block,
// flushed to the object constant buffer with one BufferUpload per block.
const blockSize = objectsPerBlock * objectConstantsSize

// uniformLocationObjectOffset is the per-draw uniform spec step (e)
// calls "per-draw uniform offset": the object's index within the
// currently-bound uniform block, read by the shader to index into it.
const uniformLocationObjectOffset = 0

// uniformLocationDiffuseSampler is the per-subpass diffuse-texture
// rebind's sampler unit location.
const uniformLocationDiffuseSampler = 1

// Record runs the render-record job for the view, writing a command
// buffer against the renderer's resource pool and the view's scratch
// memory pools. objects must already be extraction's output.
func Record(r *Renderer, v *RenderView, objects []RenderObject) (*cmdbuf.CommandBuffer, error) {
	sortObjects(objects)

	sceneBuf := r.ConstantBuffers.Acquire(sceneConstantsSize, v.fence)
	objBuf := r.ConstantBuffers.Acquire(blockSize, v.fence)

	buf := cmdbuf.New(64 + len(objects)*4)

	sceneHandle, err := writeSceneConstants(v, objects, v.scratch.Pool)
	if err != nil {
		return nil, err
	}
	if err := buf.BufferUpload(sceneBuf.ID, sceneHandle, uint32(sceneConstantsSize)); err != nil {
		return nil, err
	}

	blockIndex := -1
	objectsInBlock := 0
	var blockHandle gpu.Handle

	flushBlock := func() error {
		if blockIndex < 0 || objectsInBlock == 0 {
			return nil
		}
		return buf.BufferUpload(objBuf.ID, blockHandle, uint32(blockSize))
	}

	for _, obj := range objects {
		if obj.IsLight || obj.Mesh == nil {
			continue
		}
		if v.visibility.Invisible[obj.Entity] {
			continue
		}

		if blockIndex < 0 || objectsInBlock >= objectsPerBlock {
			if err := flushBlock(); err != nil {
				return nil, err
			}
			blockIndex++
			objectsInBlock = 0
			h, err := v.scratch.Pool.Alloc(blockSize)
			if err != nil {
				return nil, err
			}
			blockHandle = h
			if err := buf.BeginSubpass(uint32(blockIndex)); err != nil {
				return nil, err
			}
		}

		slotHandle := gpu.Handle(uint32(blockHandle) + uint32(objectsInBlock*objectConstantsSize))
		writeObjectConstants(obj, v.scratch.Pool, slotHandle)
		offsetInBlock := objectsInBlock
		objectsInBlock++

		for _, sm := range obj.Mesh.SubMeshes {
			if err := buf.UseProgram(sm.Program); err != nil {
				return nil, err
			}
			if err := buf.UniformInt(uniformLocationObjectOffset, int32(offsetInBlock)); err != nil {
				return nil, err
			}
			if sm.DiffuseTexture != gpu.Invalid {
				if err := buf.UniformSampler(uniformLocationDiffuseSampler, uint32(sm.DiffuseTexture)); err != nil {
					return nil, err
				}
			}
			if err := buf.DrawIndexed(cmdbuf.PrimitiveTriangles, sm.VertexArray, sm.IndexCount); err != nil {
				return nil, err
			}
		}
	}
	if err := flushBlock(); err != nil {
		return nil, err
	}

	if v.Type == ViewShadow && v.MomentMipmapProgram != gpu.Invalid {
		if err := buf.UseProgram(v.MomentMipmapProgram); err != nil {
			return nil, err
		}
		if err := buf.Draw(cmdbuf.PrimitiveTriangles, v.FullscreenTriangle, 3); err != nil {
			return nil, err
		}
	}

	if err := buf.FenceSync(uint32(v.fence.ID())); err != nil {
		return nil, err
	}
	buf.End()

	return buf, nil
}

// sortObjects orders lights first (stable, by original position), then
// meshes back-to-front by AABB-center eye distance.
func sortObjects(objects []RenderObject) {
	lights := objects[:0:0]
	meshes := make([]RenderObject, 0, len(objects))
	for _, o := range objects {
		if o.IsLight {
			lights = append(lights, o)
		} else {
			meshes = append(meshes, o)
		}
	}
	insertionSortByDistanceDesc(meshes)
	objects = objects[:0]
	objects = append(objects, lights...)
	objects = append(objects, meshes...)
}

func insertionSortByDistanceDesc(objs []RenderObject) {
	for i := 1; i < len(objs); i++ {
		for j := i; j > 0 && objs[j].EyeDistance > objs[j-1].EyeDistance; j-- {
			objs[j], objs[j-1] = objs[j-1], objs[j]
		}
	}
}
