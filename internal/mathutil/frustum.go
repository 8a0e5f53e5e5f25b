package mathutil

// AABB is an axis-aligned bounding box used by frustum culling and the
// software occlusion rasterizer.
type AABB struct {
	Min Vec3
	Max Vec3
}

// Corners returns the eight corners of the box.
func (b AABB) Corners() [8]Vec3 {
	return [8]Vec3{
		{b.Min.X, b.Min.Y, b.Min.Z},
		{b.Max.X, b.Min.Y, b.Min.Z},
		{b.Min.X, b.Max.Y, b.Min.Z},
		{b.Max.X, b.Max.Y, b.Min.Z},
		{b.Min.X, b.Min.Y, b.Max.Z},
		{b.Max.X, b.Min.Y, b.Max.Z},
		{b.Min.X, b.Max.Y, b.Max.Z},
		{b.Max.X, b.Max.Y, b.Max.Z},
	}
}

// Center returns the AABB's midpoint.
func (b AABB) Center() Vec3 {
	return Vec3{
		X: (b.Min.X + b.Max.X) * 0.5,
		Y: (b.Min.Y + b.Max.Y) * 0.5,
		Z: (b.Min.Z + b.Max.Z) * 0.5,
	}
}

// Transform returns the AABB enclosing the box's corners after applying m.
// Used to re-derive a world-space box from a local-space one each frame.
func (b AABB) Transform(m Mat4) AABB {
	corners := b.Corners()
	out := AABB{Min: corners[0].Transform(m), Max: corners[0].Transform(m)}
	for _, c := range corners[1:] {
		p := c.Transform(m)
		out.Min.X = minf(out.Min.X, p.X)
		out.Min.Y = minf(out.Min.Y, p.Y)
		out.Min.Z = minf(out.Min.Z, p.Z)
		out.Max.X = maxf(out.Max.X, p.X)
		out.Max.Y = maxf(out.Max.Y, p.Y)
		out.Max.Z = maxf(out.Max.Z, p.Z)
	}
	return out
}

func minf(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

// Plane is a half-space {n, d} such that a point p is in front of the
// plane iff n.Dot(p) + d >= 0.
type Plane struct {
	Normal Vec3
	D      float32
}

func (p Plane) normalize() Plane {
	l := p.Normal.Length()
	if l == 0 {
		return p
	}
	inv := 1.0 / l
	return Plane{Normal: p.Normal.MulScalar(inv), D: p.D * inv}
}

func (p Plane) distance(point Vec3) float32 {
	return p.Normal.Dot(point) + p.D
}

// Frustum is the six half-spaces (left, right, bottom, top, near, far)
// bounding a camera or shadow view's visible volume.
type Frustum struct {
	Planes [6]Plane
}

// FrustumFromViewProjection extracts the six clipping planes from a
// combined view-projection matrix using the standard Gribb-Hartmann
// method: each plane is a linear combination of the matrix's rows.
func FrustumFromViewProjection(vp Mat4) Frustum {
	m := vp.Data

	row := func(i int) Vec4 {
		return Vec4{m[i], m[i+4], m[i+8], m[i+12]}
	}

	r0, r1, r2, r3 := row(0), row(1), row(2), row(3)

	combine := func(a, b Vec4, sign float32) Plane {
		v := Vec4{
			a.X + sign*b.X,
			a.Y + sign*b.Y,
			a.Z + sign*b.Z,
			a.W + sign*b.W,
		}
		return Plane{Normal: Vec3{v.X, v.Y, v.Z}, D: v.W}.normalize()
	}

	var f Frustum
	f.Planes[0] = combine(r3, r0, 1)  // left
	f.Planes[1] = combine(r3, r0, -1) // right
	f.Planes[2] = combine(r3, r1, 1)  // bottom
	f.Planes[3] = combine(r3, r1, -1) // top
	f.Planes[4] = combine(r3, r2, 1)  // near
	f.Planes[5] = combine(r3, r2, -1) // far
	return f
}

// IntersectsAABB performs a conservative frustum/AABB test: the box is
// culled only if it lies entirely behind any single plane (the standard
// "positive vertex" test). It never produces false negatives.
func (f Frustum) IntersectsAABB(box AABB) bool {
	for _, p := range f.Planes {
		positive := Vec3{
			X: pickAxis(p.Normal.X, box.Min.X, box.Max.X),
			Y: pickAxis(p.Normal.Y, box.Min.Y, box.Max.Y),
			Z: pickAxis(p.Normal.Z, box.Min.Z, box.Max.Z),
		}
		if p.distance(positive) < 0 {
			return false
		}
	}
	return true
}

func pickAxis(n, min, max float32) float32 {
	if n >= 0 {
		return max
	}
	return min
}
