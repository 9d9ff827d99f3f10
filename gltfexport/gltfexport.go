// Package gltfexport flattens an imported scene into a glTF document
// for preview in the browser viewer or download as .glb.
package gltfexport

import (
	"io"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/velfand/wmo_browser/scene"
	"github.com/velfand/wmo_browser/scene/bmesh"
)

type exporter struct {
	doc *gltf.Document

	materialIndex map[*scene.Material]uint32
	textureIndex  map[string]uint32
}

// ExportScene converts every object of the scene into a glTF mesh
// node. Loop attributes (uvs, colors) are per-corner, so vertices are
// emitted per corner instead of being shared.
func ExportScene(s *scene.Scene) *gltf.Document {
	return ExportObjects(s.Name, s.Objects())
}

func ExportObjects(name string, objects []*scene.Object) *gltf.Document {
	e := &exporter{
		doc:           gltf.NewDocument(),
		materialIndex: make(map[*scene.Material]uint32),
		textureIndex:  make(map[string]uint32),
	}
	e.doc.Scenes[0].Name = name

	for _, obj := range objects {
		e.exportObject(obj)
	}
	return e.doc
}

func ExportBinary(w io.Writer, doc *gltf.Document) error {
	encoder := gltf.NewEncoder(w)
	encoder.AsBinary = true
	return encoder.Encode(doc)
}

func (e *exporter) exportObject(obj *scene.Object) {
	if obj.Mesh == nil || len(obj.Mesh.Faces()) == 0 {
		return
	}

	var primitives []*gltf.Primitive
	for slot := range obj.Materials {
		if prim := e.exportPrimitive(obj.Mesh, slot); prim != nil {
			prim.Material = gltf.Index(e.exportMaterial(obj.Materials[slot]))
			primitives = append(primitives, prim)
		}
	}
	if len(obj.Materials) == 0 {
		if prim := e.exportPrimitive(obj.Mesh, 0); prim != nil {
			primitives = append(primitives, prim)
		}
	}
	if len(primitives) == 0 {
		return
	}

	e.doc.Meshes = append(e.doc.Meshes, &gltf.Mesh{
		Name:       obj.Name,
		Primitives: primitives,
	})

	rotation := mgl32.AnglesToQuat(obj.Rotation[0], obj.Rotation[1], obj.Rotation[2], mgl32.XYZ)

	e.doc.Scenes[0].Nodes = append(e.doc.Scenes[0].Nodes, uint32(len(e.doc.Nodes)))
	e.doc.Nodes = append(e.doc.Nodes, &gltf.Node{
		Name:        obj.Name,
		Mesh:        gltf.Index(uint32(len(e.doc.Meshes) - 1)),
		Translation: obj.Location,
		Rotation:    rotation.V.Vec4(rotation.W),
	})
}

// exportPrimitive emits the faces of one material slot. Quads are
// split on their first diagonal.
func (e *exporter) exportPrimitive(m *bmesh.Mesh, slot int) *gltf.Primitive {
	var uvLayer *bmesh.UVLayer
	if layers := m.UVLayers(); len(layers) != 0 {
		uvLayer = layers[0]
	}
	var colorLayer *bmesh.ColorLayer
	if layers := m.ColorLayers(); len(layers) != 0 {
		colorLayer = layers[0]
	}

	var positions [][3]float32
	var uvs [][2]float32
	var colors [][4]uint8
	var indices []uint32

	corner := func(f *bmesh.Face, i int) uint32 {
		v := f.Verts[i]
		positions = append(positions, v.Co)
		if uvLayer != nil {
			uv := uvLayer.Get(f, i)
			uvs = append(uvs, [2]float32{uv[0], 1.0 - uv[1]})
		}
		if colorLayer != nil {
			c := colorLayer.Get(f, i)
			colors = append(colors, [4]uint8{
				uint8(c[0] * 255.0),
				uint8(c[1] * 255.0),
				uint8(c[2] * 255.0),
				uint8(c[3] * 255.0)})
		}
		return uint32(len(positions) - 1)
	}

	for _, f := range m.Faces() {
		if f.MaterialIndex != slot {
			continue
		}
		for i := 2; i < len(f.Verts); i++ {
			indices = append(indices, corner(f, 0), corner(f, i-1), corner(f, i))
		}
	}
	if len(indices) == 0 {
		return nil
	}

	attributes := make(map[string]uint32)
	attributes["POSITION"] = modeler.WritePosition(e.doc, positions)
	if uvLayer != nil {
		attributes["TEXCOORD_0"] = modeler.WriteTextureCoord(e.doc, uvs)
	}
	if colorLayer != nil {
		attributes["COLOR_0"] = modeler.WriteColor(e.doc, colors)
	}

	indicesAccessor := modeler.WriteIndices(e.doc, indices)

	return &gltf.Primitive{
		Indices:    &indicesAccessor,
		Attributes: attributes,
	}
}

func (e *exporter) exportMaterial(mat *scene.Material) uint32 {
	if index, ok := e.materialIndex[mat]; ok {
		return index
	}

	color := new([4]float32)
	*color = [4]float32{1.0, 1.0, 1.0, 1.0}

	gltfMaterial := &gltf.Material{
		Name:        mat.Name,
		DoubleSided: true,
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorFactor: color,
		},
	}

	for _, n := range mat.NodeTree.Nodes {
		switch {
		case n.Type == scene.NodeRGB && n.Label == "BASE COLOR":
			*color = n.Color
		case n.Type == scene.NodeTexImage && n.Image != nil:
			if gltfMaterial.PBRMetallicRoughness.BaseColorTexture == nil {
				gltfMaterial.PBRMetallicRoughness.BaseColorTexture = &gltf.TextureInfo{
					Index: e.exportTexture(n.Image),
				}
			}
		}
	}

	index := uint32(len(e.doc.Materials))
	e.doc.Materials = append(e.doc.Materials, gltfMaterial)
	e.materialIndex[mat] = index
	return index
}

func (e *exporter) exportTexture(img *scene.Image) uint32 {
	if index, ok := e.textureIndex[img.Name]; ok {
		return index
	}

	e.doc.Images = append(e.doc.Images, &gltf.Image{
		Name: img.Name,
		URI:  img.Filepath,
	})
	e.doc.Textures = append(e.doc.Textures, &gltf.Texture{
		Source: gltf.Index(uint32(len(e.doc.Images) - 1)),
	})

	index := uint32(len(e.doc.Textures) - 1)
	e.textureIndex[img.Name] = index
	return index
}
