// Package bmesh is the mesh-under-construction structure the importer
// assembles groups into: vertices, faces, and per-face-corner (loop)
// uv and color attributes.
package bmesh

import (
	"sort"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/velfand/wmo_browser/utils"
)

type Vert struct {
	Co mgl32.Vec3

	id        int
	linkFaces []*Face
}

// LinkFaces are the faces touching this vert.
func (v *Vert) LinkFaces() []*Face {
	return v.linkFaces
}

// Face is a triangle, or a quad after JoinTriangles. Corner order is
// winding order; loop attributes are indexed by corner.
type Face struct {
	Verts         []*Vert
	MaterialIndex int
	Smooth        bool

	removed bool
}

// CornerOf returns the corner index of v in the face, -1 if absent.
func (f *Face) CornerOf(v *Vert) int {
	for i, fv := range f.Verts {
		if fv == v {
			return i
		}
	}
	return -1
}

// Normal is the face normal, unnormalized for degenerate faces.
func (f *Face) Normal() mgl32.Vec3 {
	a := f.Verts[1].Co.Sub(f.Verts[0].Co)
	b := f.Verts[2].Co.Sub(f.Verts[0].Co)
	n := a.Cross(b)
	if n.Len() > 0 {
		return n.Normalize()
	}
	return n
}

// FaceConflict tags why NewFace refused a proposed face.
type FaceConflict int

const (
	ConflictNone FaceConflict = iota
	// a face over the same vertex set already exists
	ConflictDuplicate
	// the same vert appears twice in the proposal
	ConflictDegenerate
)

func (c FaceConflict) String() string {
	switch c {
	case ConflictDuplicate:
		return "duplicate face"
	case ConflictDegenerate:
		return "degenerate face"
	default:
		return "none"
	}
}

// UVLayer stores one uv per face corner.
type UVLayer struct {
	Name string
	data map[*Face][]mgl32.Vec2
}

func (l *UVLayer) Set(f *Face, corner int, uv mgl32.Vec2) {
	loops, ok := l.data[f]
	if !ok {
		loops = make([]mgl32.Vec2, len(f.Verts))
		l.data[f] = loops
	}
	loops[corner] = uv
}

func (l *UVLayer) Get(f *Face, corner int) mgl32.Vec2 {
	if loops, ok := l.data[f]; ok {
		return loops[corner]
	}
	return mgl32.Vec2{}
}

// ColorLayer stores one color per face corner.
type ColorLayer struct {
	Name string
	data map[*Face][]utils.ColorFloat
}

func (l *ColorLayer) Set(f *Face, corner int, c utils.ColorFloat) {
	loops, ok := l.data[f]
	if !ok {
		loops = make([]utils.ColorFloat, len(f.Verts))
		l.data[f] = loops
	}
	loops[corner] = c
}

func (l *ColorLayer) Get(f *Face, corner int) utils.ColorFloat {
	if loops, ok := l.data[f]; ok {
		return loops[corner]
	}
	return utils.ColorFloat{}
}

type faceKey [4]int

type Mesh struct {
	Name string

	verts []*Vert
	faces []*Face

	faceIndex   map[faceKey]*Face
	uvLayers    []*UVLayer
	colorLayers []*ColorLayer

	nextVertID int
}

func NewMesh(name string) *Mesh {
	return &Mesh{
		Name:      name,
		faceIndex: make(map[faceKey]*Face),
	}
}

func (m *Mesh) Verts() []*Vert { return m.verts }
func (m *Mesh) Faces() []*Face { return m.faces }

func (m *Mesh) NewVert(co mgl32.Vec3) *Vert {
	v := &Vert{Co: co, id: m.nextVertID}
	m.nextVertID++
	m.verts = append(m.verts, v)
	return v
}

func keyOf(verts []*Vert) faceKey {
	key := faceKey{-1, -1, -1, -1}
	for i, v := range verts {
		key[i] = v.id
	}
	sort.Ints(key[:len(verts)])
	return key
}

// NewFace adds a triangle over existing verts. A nil face and a
// non-ConflictNone tag mean the mesh cannot hold this face; the caller
// decides how to recover (the importer re-proposes it over fresh
// non-shared verts).
func (m *Mesh) NewFace(a, b, c *Vert) (*Face, FaceConflict) {
	if a == b || b == c || a == c {
		return nil, ConflictDegenerate
	}
	key := keyOf([]*Vert{a, b, c})
	if _, exists := m.faceIndex[key]; exists {
		return nil, ConflictDuplicate
	}

	f := &Face{Verts: []*Vert{a, b, c}}
	m.faces = append(m.faces, f)
	m.faceIndex[key] = f
	for _, v := range f.Verts {
		v.linkFaces = append(v.linkFaces, f)
	}
	return f, ConflictNone
}

// NewFaceFrom is NewFace plus face-attribute defaults copied from an
// example face, the way bmesh seeds new faces from a template.
func (m *Mesh) NewFaceFrom(a, b, c *Vert, example *Face) (*Face, FaceConflict) {
	f, conflict := m.NewFace(a, b, c)
	if f != nil && example != nil {
		f.MaterialIndex = example.MaterialIndex
		f.Smooth = example.Smooth
	}
	return f, conflict
}

func (m *Mesh) NewUVLayer(name string) *UVLayer {
	l := &UVLayer{Name: name, data: make(map[*Face][]mgl32.Vec2)}
	m.uvLayers = append(m.uvLayers, l)
	return l
}

func (m *Mesh) NewColorLayer(name string) *ColorLayer {
	l := &ColorLayer{Name: name, data: make(map[*Face][]utils.ColorFloat)}
	m.colorLayers = append(m.colorLayers, l)
	return l
}

func (m *Mesh) UVLayers() []*UVLayer       { return m.uvLayers }
func (m *Mesh) ColorLayers() []*ColorLayer { return m.colorLayers }

// removeFace unlinks a face; loop data dies with the face.
func (m *Mesh) removeFace(f *Face) {
	if f.removed {
		return
	}
	f.removed = true
	delete(m.faceIndex, keyOf(f.Verts))
	for _, v := range f.Verts {
		for i, lf := range v.linkFaces {
			if lf == f {
				v.linkFaces = append(v.linkFaces[:i], v.linkFaces[i+1:]...)
				break
			}
		}
	}
	for _, l := range m.uvLayers {
		delete(l.data, f)
	}
	for _, l := range m.colorLayers {
		delete(l.data, f)
	}
	for i, mf := range m.faces {
		if mf == f {
			m.faces = append(m.faces[:i], m.faces[i+1:]...)
			break
		}
	}
}

// removeVert drops an unreferenced vert.
func (m *Mesh) removeVert(v *Vert) {
	for i, mv := range m.verts {
		if mv == v {
			m.verts = append(m.verts[:i], m.verts[i+1:]...)
			return
		}
	}
}

// addQuad registers a quad produced by JoinTriangles. Quads bypass the
// triangle conflict checks: they only ever come from two accepted
// triangles.
func (m *Mesh) addQuad(verts [4]*Vert) *Face {
	f := &Face{Verts: []*Vert{verts[0], verts[1], verts[2], verts[3]}}
	m.faces = append(m.faces, f)
	m.faceIndex[keyOf(f.Verts)] = f
	for _, v := range f.Verts {
		v.linkFaces = append(v.linkFaces, f)
	}
	return f
}
