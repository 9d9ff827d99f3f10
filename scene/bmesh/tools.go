package bmesh

import (
	"math"
	"sort"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/velfand/wmo_browser/utils"
)

type MergeStats struct {
	StartVerts   int
	RemovedVerts int
	EndVerts     int
	MergePasses  int
	TotalTime    time.Duration
}

// RemoveDoubles welds verts closer than dist, repeating until a pass
// removes nothing. Chained verts (a near b near c) can need several
// passes to collapse fully.
func RemoveDoubles(m *Mesh, dist float32) MergeStats {
	start := time.Now()
	st := MergeStats{StartVerts: len(m.verts)}

	for {
		st.MergePasses++
		removed := m.mergePass(dist)
		st.RemovedVerts += removed
		if removed == 0 {
			break
		}
	}

	st.EndVerts = len(m.verts)
	st.TotalTime = time.Since(start)
	return st
}

type cellKey [3]int32

func cellOf(co mgl32.Vec3, dist float32) cellKey {
	return cellKey{
		int32(math.Floor(float64(co.X() / dist))),
		int32(math.Floor(float64(co.Y() / dist))),
		int32(math.Floor(float64(co.Z() / dist))),
	}
}

func (m *Mesh) mergePass(dist float32) int {
	// spatial hash so only same/neighbor cell verts are compared
	grid := make(map[cellKey][]*Vert, len(m.verts))
	for _, v := range m.verts {
		key := cellOf(v.Co, dist)
		grid[key] = append(grid[key], v)
	}

	distSq := dist * dist
	target := make(map[*Vert]*Vert)
	weldTargets := make(map[*Vert]struct{})

	for _, v := range m.verts {
		if _, gone := target[v]; gone {
			continue
		}
		base := cellOf(v.Co, dist)
		for dx := int32(-1); dx <= 1; dx++ {
			for dy := int32(-1); dy <= 1; dy++ {
				for dz := int32(-1); dz <= 1; dz++ {
					key := cellKey{base[0] + dx, base[1] + dy, base[2] + dz}
					for _, other := range grid[key] {
						if other == v {
							continue
						}
						// one level of indirection per pass, chains
						// collapse on the next pass
						if _, gone := target[other]; gone {
							continue
						}
						if _, isTarget := weldTargets[other]; isTarget {
							continue
						}
						d := other.Co.Sub(v.Co)
						if d.Dot(d) <= distSq {
							target[other] = v
							weldTargets[v] = struct{}{}
						}
					}
				}
			}
		}
	}

	if len(target) == 0 {
		return 0
	}

	m.rewriteFaces(target)
	for victim := range target {
		m.removeVert(victim)
	}
	return len(target)
}

// rewriteFaces redirects face corners through the merge map, dropping
// faces that collapse below three distinct corners and re-keying the
// duplicate-face index.
func (m *Mesh) rewriteFaces(target map[*Vert]*Vert) {
	faces := make([]*Face, len(m.faces))
	copy(faces, m.faces)

	for _, f := range faces {
		changed := false
		for _, v := range f.Verts {
			if _, ok := target[v]; ok {
				changed = true
				break
			}
		}
		if !changed {
			continue
		}

		// collect surviving corners and their loop attributes
		type corner struct {
			vert   *Vert
			source int
		}
		kept := make([]corner, 0, len(f.Verts))
		for i, v := range f.Verts {
			mapped := v
			if t, ok := target[v]; ok {
				mapped = t
			}
			if len(kept) > 0 && kept[len(kept)-1].vert == mapped {
				continue
			}
			kept = append(kept, corner{vert: mapped, source: i})
		}
		if len(kept) > 1 && kept[0].vert == kept[len(kept)-1].vert {
			kept = kept[:len(kept)-1]
		}

		uvValues := make([][]mgl32.Vec2, len(m.uvLayers))
		for iLayer, l := range m.uvLayers {
			uvValues[iLayer] = make([]mgl32.Vec2, len(kept))
			for iCorner, c := range kept {
				uvValues[iLayer][iCorner] = l.Get(f, c.source)
			}
		}
		colorValues := make([][]utils.ColorFloat, len(m.colorLayers))
		for iLayer, l := range m.colorLayers {
			colorValues[iLayer] = make([]utils.ColorFloat, len(kept))
			for iCorner, c := range kept {
				colorValues[iLayer][iCorner] = l.Get(f, c.source)
			}
		}

		materialIndex, smooth := f.MaterialIndex, f.Smooth
		m.removeFace(f)
		if len(kept) < 3 {
			continue
		}

		verts := make([]*Vert, len(kept))
		for i, c := range kept {
			verts[i] = c.vert
		}
		key := keyOf(verts)
		if _, exists := m.faceIndex[key]; exists {
			// merge made this face a duplicate of a survivor
			continue
		}
		nf := &Face{Verts: verts, MaterialIndex: materialIndex, Smooth: smooth}
		m.faces = append(m.faces, nf)
		m.faceIndex[key] = nf
		for _, v := range nf.Verts {
			v.linkFaces = append(v.linkFaces, nf)
		}
		for iLayer, l := range m.uvLayers {
			for iCorner := range kept {
				l.Set(nf, iCorner, uvValues[iLayer][iCorner])
			}
		}
		for iLayer, l := range m.colorLayers {
			for iCorner := range kept {
				l.Set(nf, iCorner, colorValues[iLayer][iCorner])
			}
		}
	}
}

type QuadStats struct {
	StartFaces   int
	RemovedFaces int
	EndFaces     int
	TotalTime    time.Duration
}

type edgeKey [2]int

func edgeOf(a, b *Vert) edgeKey {
	if a.id < b.id {
		return edgeKey{a.id, b.id}
	}
	return edgeKey{b.id, a.id}
}

// JoinTriangles pairs coplanar-enough adjacent triangles into quads,
// the editor's tris-to-quads pass. angleLimit is the max face-normal
// deviation in degrees. Only triangles with matching material and
// shading join.
func JoinTriangles(m *Mesh, angleLimit float32) QuadStats {
	start := time.Now()
	st := QuadStats{StartFaces: len(m.faces)}

	edges := make(map[edgeKey][]*Face)
	for _, f := range m.faces {
		if len(f.Verts) != 3 {
			continue
		}
		for i := range f.Verts {
			key := edgeOf(f.Verts[i], f.Verts[(i+1)%3])
			edges[key] = append(edges[key], f)
		}
	}

	type candidate struct {
		a, b  *Face
		angle float32
	}
	candidates := make([]candidate, 0)
	limitCos := float32(math.Cos(float64(angleLimit) * math.Pi / 180.0))

	for _, pair := range edges {
		if len(pair) != 2 {
			continue
		}
		a, b := pair[0], pair[1]
		if a.MaterialIndex != b.MaterialIndex || a.Smooth != b.Smooth {
			continue
		}
		cos := a.Normal().Dot(b.Normal())
		if cos < limitCos {
			continue
		}
		angle := float32(math.Acos(float64(mgl32.Clamp(cos, -1, 1))))
		candidates = append(candidates, candidate{a: a, b: b, angle: angle})
	}

	// flattest pairs first
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].angle < candidates[j].angle
	})

	for _, c := range candidates {
		if c.a.removed || c.b.removed {
			continue
		}
		if m.joinPair(c.a, c.b) {
			st.RemovedFaces += 2
		}
	}

	st.EndFaces = len(m.faces)
	st.TotalTime = time.Since(start)
	return st
}

// joinPair replaces triangles A and B sharing edge (a,b) with the quad
// (c, a, d, b), where c and d are the opposite corners. With the edge
// ordered as it winds in A, the quad keeps both triangles' winding.
func (m *Mesh) joinPair(fa, fb *Face) bool {
	var a, b, c *Vert
	for i := 0; i < 3; i++ {
		va, vb := fa.Verts[i], fa.Verts[(i+1)%3]
		if fb.CornerOf(va) >= 0 && fb.CornerOf(vb) >= 0 {
			a, b, c = va, vb, fa.Verts[(i+2)%3]
			break
		}
	}
	if a == nil {
		return false
	}
	var d *Vert
	for _, v := range fb.Verts {
		if v != a && v != b {
			d = v
			break
		}
	}
	if d == nil || d == c {
		return false
	}

	quad := [4]*Vert{c, a, d, b}
	sources := [4]struct {
		face   *Face
		corner int
	}{
		{fa, fa.CornerOf(c)},
		{fa, fa.CornerOf(a)},
		{fb, fb.CornerOf(d)},
		{fa, fa.CornerOf(b)},
	}

	uvValues := make([][4]mgl32.Vec2, len(m.uvLayers))
	for iLayer, l := range m.uvLayers {
		for iCorner, src := range sources {
			uvValues[iLayer][iCorner] = l.Get(src.face, src.corner)
		}
	}
	colorValues := make([][4]utils.ColorFloat, len(m.colorLayers))
	for iLayer, l := range m.colorLayers {
		for iCorner, src := range sources {
			colorValues[iLayer][iCorner] = l.Get(src.face, src.corner)
		}
	}
	materialIndex, smooth := fa.MaterialIndex, fa.Smooth

	m.removeFace(fa)
	m.removeFace(fb)

	nf := m.addQuad(quad)
	nf.MaterialIndex = materialIndex
	nf.Smooth = smooth
	for iLayer, l := range m.uvLayers {
		for iCorner := 0; iCorner < 4; iCorner++ {
			l.Set(nf, iCorner, uvValues[iLayer][iCorner])
		}
	}
	for iLayer, l := range m.colorLayers {
		for iCorner := 0; iCorner < 4; iCorner++ {
			l.Set(nf, iCorner, colorValues[iLayer][iCorner])
		}
	}
	return true
}
