package geometry

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Face holds three 1-based indexes into Record.Verts, winding as read.
type Face [3]int

// FaceGroup is one g-delimited section of the obj stream. wow.export
// writes one of these per wmo render batch.
type FaceGroup struct {
	Name         string
	MaterialName string
	// 0-based indexes of every vertex referenced by Faces
	UsedVerts map[int]struct{}
	Faces     []Face
}

func newFaceGroup(name string) *FaceGroup {
	return &FaceGroup{
		Name:      name,
		UsedVerts: make(map[int]struct{}),
	}
}

// Record is the flat geometry of an entire wmo export, root plus all
// groups, exactly as laid out in the obj file.
type Record struct {
	Name    string
	MtlFile string

	Verts   []mgl32.Vec3
	Normals []mgl32.Vec3
	UV      []mgl32.Vec2
	UV2     []mgl32.Vec2
	UV3     []mgl32.Vec2

	Groups []*FaceGroup
}

func (r *Record) TotalUsedVerts() int {
	total := 0
	for _, g := range r.Groups {
		total += len(g.UsedVerts)
	}
	return total
}

func (r *Record) TotalFaces() int {
	total := 0
	for _, g := range r.Groups {
		total += len(g.Faces)
	}
	return total
}
