package render

import (
	"sort"

	"github.com/vireo-engine/rendercore/internal/mathutil"
)

// Occlusion buffer geometry: a small tiled resolution kept cheap enough
// to rasterize every frame on the CPU.
const (
	occlusionTileSize = 8
	occlusionTilesX   = 80
	occlusionTilesY   = 45
)

// clipTriangle is one occluder triangle already MVP-transformed into
// clip space, carried through to screen space for binning.
type clipTriangle struct {
	screen [3]mathutil.Vec3 // x,y in pixels, z is depth in [0,1]
}

// OcclusionBuffer holds one frame's worth of software-rasterized
// occluder depth, organized as occlusionTilesX*occlusionTilesY tiles of
// occlusionTileSize*occlusionTileSize texels each, with a hierarchical
// per-tile minimum depth used to reject an occlusion query without
// touching every texel.
type OcclusionBuffer struct {
	width, height int
	texels        []float32 // nearest depth per texel, row-major
	tileMinDepth  []float32 // one entry per tile, row-major

	bins [occlusionTilesX * occlusionTilesY][]clipTriangle
}

// NewOcclusionBuffer allocates a buffer at the fixed tiled resolution.
func NewOcclusionBuffer() *OcclusionBuffer {
	w := occlusionTilesX * occlusionTileSize
	h := occlusionTilesY * occlusionTileSize
	b := &OcclusionBuffer{
		width:        w,
		height:       h,
		texels:       make([]float32, w*h),
		tileMinDepth: make([]float32, occlusionTilesX*occlusionTilesY),
	}
	b.Clear()
	return b
}

// Clear resets every texel and tile to maximum depth (far plane) and
// drops any pending triangle bins.
func (b *OcclusionBuffer) Clear() {
	for i := range b.texels {
		b.texels[i] = 1
	}
	for i := range b.tileMinDepth {
		b.tileMinDepth[i] = 1
	}
	for i := range b.bins {
		b.bins[i] = b.bins[i][:0]
	}
}

// TransformOccluders MVP-transforms and clips each occluder mesh's
// triangles into screen space, then bins them by the tiles their
// screen-space AABB overlaps.
func (b *OcclusionBuffer) TransformOccluders(viewProjection mathutil.Mat4, occluders [][3]mathutil.Vec3) {
	for _, tri := range occluders {
		var screen [3]mathutil.Vec3
		behind := false
		for i, v := range tri {
			x, y, z, w := transformPoint(viewProjection, v)
			if w <= 0 {
				behind = true
				break
			}
			ndcX, ndcY, ndcZ := x/w, y/w, z/w
			screen[i] = mathutil.Vec3{
				X: (ndcX*0.5 + 0.5) * float32(b.width),
				Y: (1 - (ndcY*0.5 + 0.5)) * float32(b.height),
				Z: ndcZ*0.5 + 0.5,
			}
		}
		if behind {
			continue
		}
		b.binTriangle(clipTriangle{screen: screen})
	}
}

func transformPoint(m mathutil.Mat4, v mathutil.Vec3) (x, y, z, w float32) {
	d := m.Data
	x = d[0]*v.X + d[4]*v.Y + d[8]*v.Z + d[12]
	y = d[1]*v.X + d[5]*v.Y + d[9]*v.Z + d[13]
	z = d[2]*v.X + d[6]*v.Y + d[10]*v.Z + d[14]
	w = d[3]*v.X + d[7]*v.Y + d[11]*v.Z + d[15]
	return
}

func (b *OcclusionBuffer) binTriangle(tri clipTriangle) {
	minX, minY, maxX, maxY := screenAABB(tri)
	tileMinX := mathutil.Clamp(minX/occlusionTileSize, 0, occlusionTilesX-1)
	tileMaxX := mathutil.Clamp(maxX/occlusionTileSize, 0, occlusionTilesX-1)
	tileMinY := mathutil.Clamp(minY/occlusionTileSize, 0, occlusionTilesY-1)
	tileMaxY := mathutil.Clamp(maxY/occlusionTileSize, 0, occlusionTilesY-1)

	for ty := tileMinY; ty <= tileMaxY; ty++ {
		for tx := tileMinX; tx <= tileMaxX; tx++ {
			idx := ty*occlusionTilesX + tx
			b.bins[idx] = append(b.bins[idx], tri)
		}
	}
}

func screenAABB(tri clipTriangle) (minX, minY, maxX, maxY int) {
	minX, minY = 1<<30, 1<<30
	maxX, maxY = -(1 << 30), -(1 << 30)
	for _, v := range tri.screen {
		x, y := int(v.X), int(v.Y)
		if x < minX {
			minX = x
		}
		if x > maxX {
			maxX = x
		}
		if y < minY {
			minY = y
		}
		if y > maxY {
			maxY = y
		}
	}
	return
}

// Rasterize sorts each tile's bins front-to-back and stamps their
// nearest depth into the tile-local buffer, then rolls each tile's
// texels up into its hierarchical minimum.
func (b *OcclusionBuffer) Rasterize() {
	for tileIdx, bins := range b.bins {
		if len(bins) == 0 {
			continue
		}
		sort.Slice(bins, func(i, j int) bool {
			return nearestZ(bins[i]) < nearestZ(bins[j])
		})

		tx := tileIdx % occlusionTilesX
		ty := tileIdx / occlusionTilesX
		x0, y0 := tx*occlusionTileSize, ty*occlusionTileSize

		minDepth := float32(1)
		for py := 0; py < occlusionTileSize; py++ {
			for px := 0; px < occlusionTileSize; px++ {
				sx, sy := x0+px, y0+py
				depth := b.texels[sy*b.width+sx]
				for _, tri := range bins {
					if d, ok := rasterizeTexel(tri, float32(sx)+0.5, float32(sy)+0.5); ok && d < depth {
						depth = d
					}
				}
				b.texels[sy*b.width+sx] = depth
				if depth < minDepth {
					minDepth = depth
				}
			}
		}
		b.tileMinDepth[tileIdx] = minDepth
	}
}

func nearestZ(t clipTriangle) float32 {
	z := t.screen[0].Z
	for _, v := range t.screen[1:] {
		if v.Z < z {
			z = v.Z
		}
	}
	return z
}

// rasterizeTexel returns the triangle's interpolated depth at the pixel
// center (px,py) if it lies inside the triangle.
func rasterizeTexel(t clipTriangle, px, py float32) (float32, bool) {
	a, b, c := t.screen[0], t.screen[1], t.screen[2]
	w0 := edge(b, c, px, py)
	w1 := edge(c, a, px, py)
	w2 := edge(a, b, px, py)
	area := w0 + w1 + w2
	if area == 0 {
		return 0, false
	}
	if area > 0 {
		if w0 < 0 || w1 < 0 || w2 < 0 {
			return 0, false
		}
	} else {
		if w0 > 0 || w1 > 0 || w2 > 0 {
			return 0, false
		}
	}
	w0, w1, w2 = w0/area, w1/area, w2/area
	return w0*a.Z + w1*b.Z + w2*c.Z, true
}

func edge(a, b mathutil.Vec3, px, py float32) float32 {
	return (px-a.X)*(b.Y-a.Y) - (py-a.Y)*(b.X-a.X)
}

// Query runs the occlusion test for box (already MVP-projected into
// screen AABB + nearest Z by the caller) and reports whether the mesh
// is fully invisible against the per-tile minimum depths, plus lateOut,
// which is true when the box spans more than one tile. No per-triangle
// re-test is performed.
func (b *OcclusionBuffer) Query(screenMinX, screenMinY, screenMaxX, screenMaxY int, nearestZ float32) (invisible, lateOut bool) {
	tileMinX := mathutil.Clamp(screenMinX/occlusionTileSize, 0, occlusionTilesX-1)
	tileMaxX := mathutil.Clamp(screenMaxX/occlusionTileSize, 0, occlusionTilesX-1)
	tileMinY := mathutil.Clamp(screenMinY/occlusionTileSize, 0, occlusionTilesY-1)
	tileMaxY := mathutil.Clamp(screenMaxY/occlusionTileSize, 0, occlusionTilesY-1)

	spansMultipleTiles := tileMaxX > tileMinX || tileMaxY > tileMinY

	for ty := tileMinY; ty <= tileMaxY; ty++ {
		for tx := tileMinX; tx <= tileMaxX; tx++ {
			tileDepth := b.tileMinDepth[ty*occlusionTilesX+tx]
			if nearestZ <= tileDepth {
				// Nearer than (or equal to) this tile's closest occluder
				// in at least one overlapping tile: visible.
				return false, spansMultipleTiles
			}
		}
	}
	return true, spansMultipleTiles
}
