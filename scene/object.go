package scene

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"github.com/velfand/wmo_browser/scene/bmesh"
	"github.com/velfand/wmo_browser/utils"
)

// Props carries the custom metadata tags written onto every imported
// object.
type Props struct {
	SourceFile      string
	SourceDirectory string
	ModelType       string
	LightingType    string
	Initialized     bool
}

type Object struct {
	ID   uuid.UUID
	Name string

	Mesh *bmesh.Mesh
	// material slots; face MaterialIndex values index this list
	Materials []*Material

	Location mgl32.Vec3
	// euler angles, radians
	Rotation mgl32.Vec3

	Props Props
}

// FindMaterialSlot returns the slot index of a material by name, -1
// when absent.
func (o *Object) FindMaterialSlot(name string) int {
	for i, mat := range o.Materials {
		if mat.Name == name {
			return i
		}
	}
	return -1
}

// AppendMaterial adds a material slot and returns its index.
func (o *Object) AppendMaterial(mat *Material) int {
	o.Materials = append(o.Materials, mat)
	return len(o.Materials) - 1
}

// SetOriginToGeometry moves the object origin to the median of its
// mesh, shifting verts so the object does not move in world space.
func (o *Object) SetOriginToGeometry() {
	if o.Mesh == nil || len(o.Mesh.Verts()) == 0 {
		return
	}
	points := make([]mgl32.Vec3, len(o.Mesh.Verts()))
	for i, v := range o.Mesh.Verts() {
		points[i] = v.Co
	}
	median := utils.MedianV3(points)
	for _, v := range o.Mesh.Verts() {
		v.Co = v.Co.Sub(median)
	}
	o.Location = o.Location.Add(median)
}

// ShadeSmooth marks every face smooth-shaded.
func (o *Object) ShadeSmooth() {
	if o.Mesh == nil {
		return
	}
	for _, f := range o.Mesh.Faces() {
		f.Smooth = true
	}
}
