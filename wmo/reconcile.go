// Package wmo aligns geometry parsed from a wow.export obj stream with
// the render batch layout declared by its json metadata sidecar.
//
// The two files are produced independently by the exporter, so counts
// can drift. Alignment is positional: metadata groups consume obj face
// groups contiguously and in order, one face group per render batch.
// Count disagreements are surfaced as warnings and never silently
// swallowed, since a silent misalignment corrupts mesh topology.
package wmo

import (
	"log"

	"github.com/pkg/errors"

	"github.com/velfand/wmo_browser/utils"
	"github.com/velfand/wmo_browser/wmo/geometry"
	"github.com/velfand/wmo_browser/wmo/meta"
)

// ColorLayers holds the reconciled per-vertex packed colors of one
// group, always two layers once a group has any verts. Layers are
// indexed by vertex position within the group's vertex range.
type ColorLayers [2][]uint32

func (c *ColorLayers) Present() bool {
	return len(c[0]) > 0 || len(c[1]) > 0
}

// Group is one wmo group reconciled against geometry: its metadata,
// the contiguous face groups claimed for its render batches, and the
// sliced or synthesized vertex-color layers. Built once here, consumed
// once by the mesh builder, not mutated after.
type Group struct {
	Geometry *geometry.Record
	Meta     *meta.Group

	// face groups claimed for this group, one per render batch;
	// empty for batchless placeholder groups
	MeshBatches []*geometry.FaceGroup
	Colors      ColorLayers

	// VertexBase is the sum of the vertex ranges of every claimed
	// group before this one. Obj face indices are global, color
	// layers are group-local; this is the bridge between the two.
	VertexBase int
}

// ColorAt resolves the group-local color of a global 0-based vertex
// index, false when the index falls outside the group's range.
func (g *Group) ColorAt(layer int, globalIndex int) (uint32, bool) {
	local := globalIndex - g.VertexBase
	if local < 0 || local >= len(g.Colors[layer]) {
		return 0, false
	}
	return g.Colors[layer][local], true
}

func (g *Group) BatchCount() int {
	return len(g.MeshBatches)
}

// sliceColors cuts the raw metadata layers down to the group's vertex
// range, synthesizing zero-filled layers where the export carries
// fewer than two. Raw layers may be longer than vertexCount because
// they also cover collision-only verts absent from the obj.
func sliceColors(raw [][]uint32, vertexCount int) ColorLayers {
	var layers ColorLayers
	if vertexCount < 0 {
		vertexCount = 0
	}

	clip := func(layer []uint32) []uint32 {
		if len(layer) > vertexCount {
			return layer[:vertexCount]
		}
		return layer
	}

	switch {
	case len(raw) >= 2:
		layers[0] = clip(raw[0])
		layers[1] = clip(raw[1])
	case len(raw) == 1:
		layers[0] = clip(raw[0])
		layers[1] = make([]uint32, vertexCount)
	default:
		if vertexCount > 0 {
			layers[0] = make([]uint32, vertexCount)
			layers[1] = make([]uint32, vertexCount)
		}
	}
	return layers
}

// Reconcile walks metadata groups in order, claiming one parsed face
// group per declared render batch. Only structural impossibility (the
// obj holding fewer face groups than metadata declares batches) is an
// error; count disagreements inside a successfully claimed range are
// logged and the import proceeds with geometry as ground truth.
func Reconcile(rec *geometry.Record, md *meta.Metadata, exlog *utils.Logger) ([]*Group, error) {
	groups := make([]*Group, 0, len(md.Groups))

	// per-batch diagnostic pass, declared range size vs verts actually
	// referenced by faces in the matching obj group
	iFaceGroup := 0
	for iGroup := range md.Groups {
		for iBatch := range md.Groups[iGroup].RenderBatches {
			batch := &md.Groups[iGroup].RenderBatches[iBatch]
			if iFaceGroup >= len(rec.Groups) {
				iFaceGroup++
				continue
			}
			used := len(rec.Groups[iFaceGroup].UsedVerts)
			exlog.Printf("verts in json group %2d batch %2d (global %3d) = %3d, verts in obj group: %d",
				iGroup, iBatch, iFaceGroup, batch.VertexCount(), used)
			if batch.VertexCount() != used {
				log.Printf("[wmo] WARNING: unequal vert counts in group %d batch %d: json %d != obj %d",
					iGroup, iBatch, batch.VertexCount(), used)
			}
			iFaceGroup++
		}
	}
	if iFaceGroup > len(rec.Groups) {
		return nil, errors.Errorf(
			"Metadata declares %d render batches but obj contains %d face groups",
			iFaceGroup, len(rec.Groups))
	}
	if iFaceGroup < len(rec.Groups) {
		log.Printf("[wmo] WARNING: %d obj face groups not claimed by any metadata group",
			len(rec.Groups)-iFaceGroup)
	}

	// cumulative totals follow the claimed groups purely for a cross
	// group sanity check at the end
	totalRange := 0
	totalColors := [2]int{}

	offset := 0
	for iGroup := range md.Groups {
		jsonGroup := &md.Groups[iGroup]
		group := &Group{
			Geometry: rec,
			Meta:     jsonGroup,
		}
		groups = append(groups, group)

		batchCount := len(jsonGroup.RenderBatches)
		if batchCount == 0 {
			exlog.Printf("%s %s batchless, flags=[%s] numPortals=%d numBatches=%d/%d/%d",
				jsonGroup.GroupName, jsonGroup.GroupDescription, jsonGroup.Flags,
				jsonGroup.NumPortals, jsonGroup.NumBatchesA, jsonGroup.NumBatchesB, jsonGroup.NumBatchesC)
			continue
		}

		group.MeshBatches = rec.Groups[offset : offset+batchCount]
		offset += batchCount

		vertexCount := jsonGroup.VertexCount()
		usedVerts := 0
		for _, batch := range group.MeshBatches {
			usedVerts += len(batch.UsedVerts)
		}
		if usedVerts != vertexCount {
			log.Printf("[wmo] WARNING: vertex count mismatch in group %d: obj %d != json %d",
				iGroup, usedVerts, vertexCount)
		}

		group.VertexBase = totalRange
		group.Colors = sliceColors(jsonGroup.VertexColours, vertexCount)
		for iLayer := range group.Colors {
			if layerLen := len(group.Colors[iLayer]); layerLen > 0 && layerLen != vertexCount {
				log.Printf("[wmo] WARNING: vertex color count mismatch in group %d layer %d: %d != %d",
					iGroup, iLayer, layerLen, vertexCount)
			}
			totalColors[iLayer] += len(group.Colors[iLayer])
		}
		totalRange += vertexCount

		exlog.Printf("color1 count: %d   color2 count: %d   group vertex count: %d",
			totalColors[0], totalColors[1], usedVerts)
	}

	if totalColors[0] != totalRange || totalColors[1] != totalRange {
		log.Printf("[wmo] WARNING: total color counts %d/%d do not cover total vertex range %d",
			totalColors[0], totalColors[1], totalRange)
	}

	return groups, nil
}
