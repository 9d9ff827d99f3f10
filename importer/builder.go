package importer

import (
	"fmt"
	"log"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/velfand/wmo_browser/config"
	"github.com/velfand/wmo_browser/scene"
	"github.com/velfand/wmo_browser/scene/bmesh"
	"github.com/velfand/wmo_browser/utils"
	"github.com/velfand/wmo_browser/wmo"
	"github.com/velfand/wmo_browser/wmo/geometry"
)

// vertexColors is the decoded color stash for one created vert. Color
// storage is a loop attribute, so values wait here until topology is
// final.
type vertexColors []utils.ColorFloat

type groupBuilder struct {
	mesh  *bmesh.Mesh
	obj   *scene.Object
	group *wmo.Group

	// source 1-based vertex index -> created vert
	vDict map[int]*bmesh.Vert
	// decoded colors per created vert, one entry per active layer
	colors map[*bmesh.Vert]vertexColors

	// indexes of group.Colors layers that are non-empty
	activeLayers []int

	matDict map[int]*scene.Material
	exlog   *utils.Logger
}

// buildObject turns one reconciled wmo group into a scene object, or
// nil for batchless placeholder groups.
func buildObject(s *scene.Scene, baseName string, group *wmo.Group,
	matDict map[int]*scene.Material, settings config.Settings, exlog *utils.Logger) *scene.Object {
	if group.BatchCount() < 1 {
		return nil
	}

	groupName := group.Meta.GroupName
	if groupName == "" {
		groupName = "section"
	}
	fullName := baseName + "_" + groupName

	b := &groupBuilder{
		mesh:    bmesh.NewMesh(baseName),
		group:   group,
		vDict:   make(map[int]*bmesh.Vert),
		colors:  make(map[*bmesh.Vert]vertexColors),
		matDict: matDict,
		exlog:   exlog,
	}
	for iLayer := range group.Colors {
		if len(group.Colors[iLayer]) > 0 {
			b.activeLayers = append(b.activeLayers, iLayer)
		}
	}

	b.obj = s.NewObject(fullName, b.mesh)
	b.obj.Props.ModelType = "WMO"
	b.obj.Props.LightingType = group.Meta.Flags.Lighting().String()
	b.obj.Props.Initialized = true

	for iBatch, batch := range group.MeshBatches {
		b.buildBatch(iBatch, batch.Faces)
	}

	b.applyUVs()
	b.applyColors()

	if settings.MergeVerts {
		st := bmesh.RemoveDoubles(b.mesh, settings.MergeDistance)
		log.Printf("[importer] %s: %d of %d verts removed in %d passes in %v (%d verts remain)",
			b.obj.Name, st.RemovedVerts, st.StartVerts, st.MergePasses, st.TotalTime, st.EndVerts)
	}

	// source models are z-up, the scene is y-up
	b.obj.Rotation = mgl32.Vec3{utils.Radians(90), 0, 0}

	collectionName := ""
	if settings.UseCollections {
		collectionName = group.Meta.GroupDescription
	}
	s.LinkObject(b.obj, collectionName)

	if settings.MakeQuads {
		st := bmesh.JoinTriangles(b.mesh, settings.QuadAngle)
		log.Printf("[importer] %s: %d of %d faces removed in %v (%d faces remain)",
			b.obj.Name, st.RemovedFaces, st.StartFaces, st.TotalTime, st.EndFaces)
	}

	b.obj.SetOriginToGeometry()
	b.obj.ShadeSmooth()

	return b.obj
}

// vert returns the shared vert for a source index, creating it and
// stashing its decoded colors on first sight.
func (b *groupBuilder) vert(sourceIndex int) *bmesh.Vert {
	if v, ok := b.vDict[sourceIndex]; ok {
		return v
	}
	v := b.mesh.NewVert(b.group.Geometry.Verts[sourceIndex-1])
	b.vDict[sourceIndex] = v
	b.stashColors(v, sourceIndex)
	return v
}

func (b *groupBuilder) stashColors(v *bmesh.Vert, sourceIndex int) {
	if len(b.activeLayers) == 0 {
		return
	}
	stash := make(vertexColors, 0, len(b.activeLayers))
	for _, iLayer := range b.activeLayers {
		packed, ok := b.group.ColorAt(iLayer, sourceIndex-1)
		if !ok {
			b.exlog.Printf("vertex %d outside color range of layer %d", sourceIndex, iLayer)
		}
		stash = append(stash, utils.DecodePackedColor(packed, utils.CImVector))
	}
	b.colors[v] = stash
}

func (b *groupBuilder) buildBatch(iBatch int, faces []geometry.Face) {
	var exampleFace *bmesh.Face

	for _, face := range faces {
		v0, v1, v2 := b.vert(face[0]), b.vert(face[1]), b.vert(face[2])

		created, conflict := b.mesh.NewFaceFrom(v0, v1, v2, exampleFace)
		if conflict != bmesh.ConflictNone {
			// the mesh cannot hold this face over shared verts
			// (typically an exact duplicate in the export); re-propose
			// it over fresh non-shared verts so topology always wins,
			// at the cost of three duplicated verts
			b.exlog.Printf("recovering %s %v/%v/%v with non-shared verts",
				conflict, face[0], face[1], face[2])
			f0 := b.duplicateVert(v0, face[0])
			f1 := b.duplicateVert(v1, face[1])
			f2 := b.duplicateVert(v2, face[2])
			created, conflict = b.mesh.NewFaceFrom(f0, f1, f2, exampleFace)
			if conflict != bmesh.ConflictNone {
				// fresh verts cannot collide; keep the import alive anyway
				log.Printf("[importer] dropping unrecoverable face %v: %v", face, conflict)
				continue
			}
		}

		if exampleFace == nil {
			b.assignBatchMaterial(created, iBatch)
			exampleFace = created
		}
	}
}

// duplicateVert makes a non-shared copy of a mapped vert, colors
// included. The copy is not entered into vDict: later faces keep
// resolving to the original.
func (b *groupBuilder) duplicateVert(v *bmesh.Vert, sourceIndex int) *bmesh.Vert {
	fresh := b.mesh.NewVert(b.group.Geometry.Verts[sourceIndex-1])
	if stash, ok := b.colors[v]; ok {
		b.colors[fresh] = stash
	}
	return fresh
}

// assignBatchMaterial resolves the batch's material onto the first
// created face; subsequent faces of the batch inherit it through the
// example-face defaults.
func (b *groupBuilder) assignBatchMaterial(f *bmesh.Face, iBatch int) {
	matID := b.group.Meta.RenderBatches[iBatch].EffectiveMaterialID()
	mat, ok := b.matDict[matID]
	if !ok {
		log.Printf("[importer] %s: batch %d refers to unknown material %d",
			b.obj.Name, iBatch, matID)
		return
	}

	slot := b.obj.FindMaterialSlot(mat.Name)
	if slot == -1 {
		slot = b.obj.AppendMaterial(mat)
	}
	f.MaterialIndex = slot
}

// applyUVs writes uv loop attributes, matching the flattened face
// order of all batches to mesh face creation order. The primary layer
// always exists; second and third only when the obj carried them.
func (b *groupBuilder) applyUVs() {
	rec := b.group.Geometry

	uvLayer := b.mesh.NewUVLayer("UVMap")
	var uv2Layer, uv3Layer *bmesh.UVLayer
	if len(rec.UV2) > 0 {
		uv2Layer = b.mesh.NewUVLayer("UV2Map")
	}
	if len(rec.UV3) > 0 {
		uv3Layer = b.mesh.NewUVLayer("UV3Map")
	}

	faces := b.mesh.Faces()
	iFace := 0
	for _, batch := range b.group.MeshBatches {
		for _, face := range batch.Faces {
			if iFace >= len(faces) {
				return
			}
			created := faces[iFace]
			iFace++
			for corner := 0; corner < 3; corner++ {
				sourceIndex := face[corner] - 1
				if sourceIndex < len(rec.UV) {
					uvLayer.Set(created, corner, rec.UV[sourceIndex])
				}
				if uv2Layer != nil && sourceIndex < len(rec.UV2) {
					uv2Layer.Set(created, corner, rec.UV2[sourceIndex])
				}
				if uv3Layer != nil && sourceIndex < len(rec.UV3) {
					uv3Layer.Set(created, corner, rec.UV3[sourceIndex])
				}
			}
		}
	}
}

// applyColors creates one color layer per active reconciled layer and
// writes each vert's stashed color to every loop touching it.
func (b *groupBuilder) applyColors() {
	if len(b.activeLayers) == 0 {
		return
	}
	layers := make([]*bmesh.ColorLayer, len(b.activeLayers))
	for i := range b.activeLayers {
		layers[i] = b.mesh.NewColorLayer(fmt.Sprintf("vcols_%d", i))
	}

	for _, v := range b.mesh.Verts() {
		stash, ok := b.colors[v]
		if !ok {
			continue
		}
		for _, f := range v.LinkFaces() {
			corner := f.CornerOf(v)
			if corner < 0 {
				continue
			}
			for iLayer, layer := range layers {
				layer.Set(f, corner, stash[iLayer])
			}
		}
	}
}
