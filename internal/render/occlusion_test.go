package render

import (
	"testing"

	"github.com/vireo-engine/rendercore/internal/mathutil"
)

func TestOcclusionBufferRasterizeThenQueryDetectsOccluder(t *testing.T) {
	b := NewOcclusionBuffer()

	// A big quad (two triangles) covering the whole screen at NDC z 0.2,
	// which the buffer stores as depth 0.6, in front of the 0.9 query.
	near := float32(0.2)
	tris := [][3]mathutil.Vec3{
		{{X: -10, Y: -10, Z: near}, {X: 10, Y: -10, Z: near}, {X: 10, Y: 10, Z: near}},
		{{X: -10, Y: -10, Z: near}, {X: 10, Y: 10, Z: near}, {X: -10, Y: 10, Z: near}},
	}
	identity := mathutil.NewMat4Identity()
	b.TransformOccluders(identity, tris)
	b.Rasterize()

	invisible, _ := b.Query(10, 10, 20, 20, 0.9)
	if !invisible {
		t.Fatalf("expected a query behind the occluder to be invisible")
	}

	invisible, _ = b.Query(10, 10, 20, 20, 0.01)
	if invisible {
		t.Fatalf("expected a query in front of the occluder to be visible")
	}
}

func TestOcclusionBufferClearResetsToFar(t *testing.T) {
	b := NewOcclusionBuffer()
	identity := mathutil.NewMat4Identity()
	b.TransformOccluders(identity, [][3]mathutil.Vec3{
		{{X: -10, Y: -10, Z: 0.1}, {X: 10, Y: -10, Z: 0.1}, {X: 10, Y: 10, Z: 0.1}},
	})
	b.Rasterize()
	b.Clear()

	invisible, _ := b.Query(10, 10, 20, 20, 0.99)
	if invisible {
		t.Fatalf("expected no occlusion right after Clear")
	}
}
