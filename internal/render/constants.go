package render

import (
	"unsafe"

	"github.com/vireo-engine/rendercore/internal/gpu"
	"github.com/vireo-engine/rendercore/internal/mathutil"
)

// Scene/object constant block layouts, std140-shaped per the wire
// contract: every member is a multiple of 4 bytes and already falls on
// its natural std140 boundary, so the Go struct layout matches byte for
// byte without manual padding fields.

type lightConstantsGPU struct {
	V1, V2, V3, V4 mathutil.Vec4
}

type sceneConstantsGPU struct {
	View, Projection, ViewProjection, LightVP mathutil.Mat4
	AmbientBasis                              [6]mathutil.Vec4
	NumLights                                 [4]int32
	LightTypes                                [2][4]int32
	Lights                                     [8]lightConstantsGPU
}

type objectConstantsGPU struct {
	Model, Normal, Texture                mathutil.Mat4
	DiffuseColor                          mathutil.Vec4
	IOR                                   mathutil.Vec4
	MaterialIDMetalnessRoughness0         mathutil.Vec4
	Pad                                   mathutil.Vec4
}

var sceneConstantsSize = int(unsafe.Sizeof(sceneConstantsGPU{}))
var objectConstantsSize = int(unsafe.Sizeof(objectConstantsGPU{}))

// packLights saturates the forward pass's light list at maxForwardLights,
// packing each surviving light into the std140 LightConstants layout
// spec's light-packing format describes: sphere lights as
// (center.xyz,radius),(color.rgb,sphere_radius); line lights as
// (p1,1),(p2,line_radius),(color,1). Light kinds are additionally packed
// four-per-ivec4 into lightTypes so a shader can recover type i at
// lightTypes[i>>2][i&3].
func packLights(objects []RenderObject) (lights [8]lightConstantsGPU, numLights int32, lightTypes [2][4]int32) {
	count := 0
	for _, o := range objects {
		if !o.IsLight || o.Light == nil {
			break // lights are sorted first; once we see a non-light, extraction is done emitting lights
		}
		if count >= maxForwardLights {
			break
		}
		l := o.Light
		switch l.Kind {
		case LightSphere:
			lights[count] = lightConstantsGPU{
				V1: mathutil.Vec4{X: l.P1.X, Y: l.P1.Y, Z: l.P1.Z, W: l.Radius},
				V2: mathutil.Vec4{X: l.Color.X, Y: l.Color.Y, Z: l.Color.Z, W: l.Radius},
			}
		case LightLine:
			lights[count] = lightConstantsGPU{
				V1: mathutil.Vec4{X: l.P1.X, Y: l.P1.Y, Z: l.P1.Z, W: 1},
				V2: mathutil.Vec4{X: l.P2.X, Y: l.P2.Y, Z: l.P2.Z, W: l.Radius},
				V3: mathutil.Vec4{X: l.Color.X, Y: l.Color.Y, Z: l.Color.Z, W: 1},
			}
		}
		lightTypes[count/4][count%4] = int32(l.Kind)
		count++
	}
	numLights = int32(count)
	return
}

// writeSceneConstants packs the view's SceneConstants block into pool
// and returns its handle.
func writeSceneConstants(v *RenderView, objects []RenderObject, pool *gpu.MemoryPool) (gpu.Handle, error) {
	lights, numLights, lightTypes := packLights(objects)

	h, err := pool.Alloc(sceneConstantsSize)
	if err != nil {
		return 0, err
	}
	sc := gpu.Ptr[sceneConstantsGPU](pool, h)
	sc.View = v.View
	sc.Projection = v.Projection
	sc.ViewProjection = v.viewProjection()
	sc.LightVP = v.Projection // light_vp is always the view's own projection; shadow views in Inputs are not consulted
	sc.AmbientBasis = v.AmbientBasis
	sc.NumLights = [4]int32{numLights, 0, 0, 0}
	sc.LightTypes = lightTypes
	sc.Lights = lights
	return h, nil
}

// writeObjectConstants packs one object's ObjectConstants block at
// handle h within pool.
func writeObjectConstants(obj RenderObject, pool *gpu.MemoryPool, h gpu.Handle) {
	oc := gpu.Ptr[objectConstantsGPU](pool, h)
	oc.Model = obj.WorldMat
	oc.Normal = obj.WorldMat
	oc.Texture = mathutil.NewMat4Identity()
	if len(obj.Mesh.SubMeshes) > 0 {
		sm := obj.Mesh.SubMeshes[0]
		oc.DiffuseColor = sm.DiffuseColor
		oc.IOR = sm.IOR
		oc.MaterialIDMetalnessRoughness0 = mathutil.Vec4{X: sm.MaterialID, Y: sm.Metalness, Z: sm.Roughness, W: 0}
	}
}
