package render

import (
	"testing"
	"unsafe"

	"github.com/vireo-engine/rendercore/internal/cmdbuf"
	"github.com/vireo-engine/rendercore/internal/ecs"
	"github.com/vireo-engine/rendercore/internal/gpu"
	"github.com/vireo-engine/rendercore/internal/mathutil"
)

func newTestRenderer() *Renderer {
	return New(Config{
		WorkerCount: 1,
		CreateBuffer: func(size int) gpu.ResourceID {
			pool := gpu.NewResourcePool()
			return gpu.Create[int](pool, "test-buffer", size)
		},
	})
}

func TestPackLightsSaturatesAtEight(t *testing.T) {
	var objects []RenderObject
	for i := 0; i < 10; i++ {
		objects = append(objects, RenderObject{
			IsLight: true,
			Light: &LightComponent{
				Kind:   LightSphere,
				Color:  mathutil.Vec3{X: 1, Y: 1, Z: 1},
				P1:     mathutil.Vec3{X: float32(i), Y: 0, Z: 0},
				Radius: 2,
			},
		})
	}

	_, numLights, _ := packLights(objects)
	if numLights != maxForwardLights {
		t.Fatalf("expected num_lights to saturate at %d, got %d", maxForwardLights, numLights)
	}
}

func TestPackLightsTypesPackedFourPerIvec4(t *testing.T) {
	var objects []RenderObject
	for i := 0; i < 6; i++ {
		kind := LightSphere
		if i%2 == 1 {
			kind = LightLine
		}
		objects = append(objects, RenderObject{IsLight: true, Light: &LightComponent{Kind: kind}})
	}

	_, numLights, types := packLights(objects)
	if numLights != 6 {
		t.Fatalf("expected 6 lights, got %d", numLights)
	}
	for i := 0; i < 6; i++ {
		want := int32(LightSphere)
		if i%2 == 1 {
			want = int32(LightLine)
		}
		if got := types[i/4][i%4]; got != want {
			t.Fatalf("light_types[%d][%d] = %d, want %d", i/4, i%4, got, want)
		}
	}
}

func meshObject(program, vao gpu.ResourceID) RenderObject {
	return RenderObject{
		Mesh: &MeshComponent{
			SubMeshes: []SubMesh{{Program: program, VertexArray: vao, IndexCount: 3}},
		},
	}
}

func TestRecordAdvancesSubpassPerBlock(t *testing.T) {
	r := newTestRenderer()
	v := &RenderView{Type: ViewCamera, View: mathutil.NewMat4Identity(), Projection: mathutil.NewMat4Identity()}
	v.Init(r)

	const n = objectsPerBlock + 50 // forces a second, partial block
	objects := make([]RenderObject, 0, n)
	for i := 0; i < n; i++ {
		objects = append(objects, meshObject(gpu.ResourceID(1), gpu.ResourceID(2)))
	}

	buf, err := Record(r, v, objects)
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	subpasses := countOpcode(buf, cmdbuf.OpBeginSubpass)
	if subpasses != 2 {
		t.Fatalf("expected 2 subpasses for %d objects at %d per block, got %d", n, objectsPerBlock, subpasses)
	}

	draws := countOpcode(buf, cmdbuf.OpDrawIndexed)
	if draws != n {
		t.Fatalf("expected %d indexed draws, got %d", n, draws)
	}
}

func TestRecordEndsWithFenceSyncThenEnd(t *testing.T) {
	r := newTestRenderer()
	v := &RenderView{Type: ViewCamera, View: mathutil.NewMat4Identity(), Projection: mathutil.NewMat4Identity()}
	v.Init(r)

	buf, err := Record(r, v, nil)
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	words := buf.Words()
	if len(words) < 2 {
		t.Fatalf("expected at least fence + end words")
	}
	last := cmdbuf.Opcode(words[len(words)-1] >> 24)
	secondLast := cmdbuf.Opcode(words[len(words)-2] >> 24)
	if last != cmdbuf.OpEnd {
		t.Fatalf("expected buffer to end with OpEnd, got %d", last)
	}
	if secondLast != cmdbuf.OpFence {
		t.Fatalf("expected OpFence immediately before OpEnd, got %d", secondLast)
	}
}

func countOpcode(buf *cmdbuf.CommandBuffer, want cmdbuf.Opcode) int {
	n := 0
	for _, w := range buf.Words() {
		if cmdbuf.Opcode(w>>24) == want {
			n++
		}
	}
	return n
}

func TestExtractForViewCullsOutsideFrustum(t *testing.T) {
	store := ecs.NewStore()
	proto := store.Prototype([]ecs.ComponentSpec{
		{ID: ComponentTransform, Size: unsafe.Sizeof(TransformComponent{})},
		{ID: ComponentMesh, Size: unsafe.Sizeof(MeshComponent{})},
	})

	near := store.CreateEntity(proto)
	far := store.CreateEntity(proto)

	setTransformMesh(store, near, mathutil.Vec3{X: 0, Y: 0, Z: -5})
	setTransformMesh(store, far, mathutil.Vec3{X: 0, Y: 0, Z: 5000})

	v := &RenderView{
		Type:       ViewCamera,
		View:       mathutil.NewMat4Identity(),
		Projection: mathutil.NewMat4Perspective(1.0, 1.0, 0.1, 100),
	}
	r := newTestRenderer()
	v.Init(r)

	objects := ExtractForView(store, v)
	if len(objects) != 1 {
		t.Fatalf("expected exactly 1 surviving object, got %d", len(objects))
	}
	if objects[0].Entity != near {
		t.Fatalf("expected the near entity to survive culling")
	}
}

func setTransformMesh(store *ecs.Store, e ecs.EntityID, pos mathutil.Vec3) {
	xf := ecs.Component[TransformComponent](store, e, ComponentTransform)
	xf.Position = pos
	xf.IsDirty = true
	xf.Rotation = mathutil.NewQuatIdentity()
	xf.Scale = mathutil.NewVec3One()

	mesh := ecs.Component[MeshComponent](store, e, ComponentMesh)
	mesh.Bounds = mathutil.AABB{Min: mathutil.Vec3{X: -0.5, Y: -0.5, Z: -0.5}, Max: mathutil.Vec3{X: 0.5, Y: 0.5, Z: 0.5}}
}
