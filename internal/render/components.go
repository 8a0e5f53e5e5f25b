package render

import (
	"github.com/vireo-engine/rendercore/internal/bitset"
	"github.com/vireo-engine/rendercore/internal/ecs"
	"github.com/vireo-engine/rendercore/internal/gpu"
	"github.com/vireo-engine/rendercore/internal/mathutil"
)

// Component type ids installed by the render core. Hosts embedding
// additional gameplay components should start their own ids above
// NumBuiltinComponents.
const (
	ComponentTransform bitset.ComponentTypeID = iota
	ComponentMesh
	ComponentVisibility
	ComponentLight
	NumBuiltinComponents
)

// TransformComponent is the SoA-stored local/world transform.
type TransformComponent struct {
	mathutil.Transform
}

// SubMesh is one draw call's worth of geometry within a Mesh.
type SubMesh struct {
	VertexArray gpu.ResourceID
	IndexCount  uint32
	Program     gpu.ResourceID
	DiffuseTexture gpu.ResourceID
	DiffuseColor   mathutil.Vec4
	IOR            mathutil.Vec4
	MaterialID     float32
	Metalness      float32
	Roughness      float32
}

// MeshComponent carries an entity's renderable geometry: its local-space
// bounds (used for both frustum culling and occlusion) and its submeshes.
type MeshComponent struct {
	Bounds   mathutil.AABB
	SubMeshes []SubMesh
}

// VisibilityComponent carries an entity's occlusion slot. ExtractForView
// does not read it: every Transform+Mesh entity is frustum-tested, and
// the occlusion pass records Invisible/LateOut per entity in the view's
// ViewVisibility.
type VisibilityComponent struct {
	OcclusionSlot int
}

// LightKind enumerates the two light shapes spec's light-packing
// format supports.
type LightKind int32

const (
	LightSphere LightKind = iota
	LightLine
)

// LightComponent is the render-facing light description; Renderer
// packs it into the std140 LightConstants layout during render-record.
type LightComponent struct {
	Kind   LightKind
	Color  mathutil.Vec3
	P1, P2 mathutil.Vec3 // P1 doubles as Center for sphere lights
	Radius float32        // sphere radius, or line radius for line lights
}

// transformOf reads entity e's TransformComponent out of store.
func transformOf(store *ecs.Store, e ecs.EntityID) *TransformComponent {
	return ecs.Component[TransformComponent](store, e, ComponentTransform)
}

func meshOf(store *ecs.Store, e ecs.EntityID) *MeshComponent {
	return ecs.Component[MeshComponent](store, e, ComponentMesh)
}

func visibilityOf(store *ecs.Store, e ecs.EntityID) *VisibilityComponent {
	return ecs.Component[VisibilityComponent](store, e, ComponentVisibility)
}

func lightOf(store *ecs.Store, e ecs.EntityID) *LightComponent {
	return ecs.Component[LightComponent](store, e, ComponentLight)
}
