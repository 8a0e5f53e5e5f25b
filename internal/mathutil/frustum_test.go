package mathutil

import "testing"

func TestFrustumIntersectsAABB(t *testing.T) {
	proj := NewMat4Perspective(DegToRad(60), 16.0/9.0, 0.1, 100)
	view := NewMat4LookAt(Vec3{0, 0, 0}, Vec3{0, 0, -1}, Vec3{0, 1, 0})
	vp := view.Mul(proj)
	f := FrustumFromViewProjection(vp)

	inside := AABB{Min: Vec3{-1, -1, -11}, Max: Vec3{1, 1, -9}}
	if !f.IntersectsAABB(inside) {
		t.Fatalf("expected box in front of camera to intersect frustum")
	}

	behind := AABB{Min: Vec3{-1, -1, 9}, Max: Vec3{1, 1, 11}}
	if f.IntersectsAABB(behind) {
		t.Fatalf("expected box behind camera to be culled")
	}
}

func TestAABBTransform(t *testing.T) {
	box := AABB{Min: Vec3{-1, -1, -1}, Max: Vec3{1, 1, 1}}
	m := NewMat4Translation(Vec3{5, 0, 0})
	out := box.Transform(m)
	if out.Min.X != 4 || out.Max.X != 6 {
		t.Fatalf("unexpected transformed box: %+v", out)
	}
}
