package wmo_test

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/velfand/wmo_browser/wmo"
	"github.com/velfand/wmo_browser/wmo/geometry"
	"github.com/velfand/wmo_browser/wmo/meta"
)

func testFaceGroup(name string, faces ...geometry.Face) *geometry.FaceGroup {
	g := &geometry.FaceGroup{
		Name:      name,
		UsedVerts: make(map[int]struct{}),
		Faces:     faces,
	}
	for _, f := range faces {
		for _, v := range f {
			g.UsedVerts[v-1] = struct{}{}
		}
	}
	return g
}

func testRecord(groups ...*geometry.FaceGroup) *geometry.Record {
	rec := &geometry.Record{Groups: groups}
	maxVert := 0
	for _, g := range groups {
		for v := range g.UsedVerts {
			if v+1 > maxVert {
				maxVert = v + 1
			}
		}
	}
	for i := 0; i < maxVert; i++ {
		rec.Verts = append(rec.Verts, mgl32.Vec3{float32(i), 0, 0})
		rec.UV = append(rec.UV, mgl32.Vec2{})
	}
	return rec
}

func batch(first, last, materialID int) meta.RenderBatch {
	return meta.RenderBatch{FirstVertex: first, LastVertex: last, MaterialID: materialID}
}

func TestReconcileContiguous(t *testing.T) {
	rec := testRecord(
		testFaceGroup("a", geometry.Face{1, 2, 3}),
		testFaceGroup("b", geometry.Face{4, 5, 6}),
		testFaceGroup("c", geometry.Face{7, 8, 9}),
	)
	md := &meta.Metadata{
		Groups: []meta.Group{
			{GroupName: "g0", RenderBatches: []meta.RenderBatch{batch(0, 2, 0), batch(3, 5, 0)}},
			{GroupName: "placeholder"},
			{GroupName: "g1", RenderBatches: []meta.RenderBatch{batch(6, 8, 0)}},
		},
	}

	groups, err := wmo.Reconcile(rec, md, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(groups) != 3 {
		t.Fatalf("groups=%d", len(groups))
	}

	// claimed ranges reproduce the face group list in order, no gaps
	var claimed []*geometry.FaceGroup
	for _, g := range groups {
		claimed = append(claimed, g.MeshBatches...)
	}
	if len(claimed) != len(rec.Groups) {
		t.Fatalf("claimed %d of %d face groups", len(claimed), len(rec.Groups))
	}
	for i := range claimed {
		if claimed[i] != rec.Groups[i] {
			t.Errorf("face group %d claimed out of order", i)
		}
	}

	if groups[1].BatchCount() != 0 || groups[1].MeshBatches != nil {
		t.Errorf("placeholder group claimed geometry")
	}
	if groups[2].MeshBatches[0] != rec.Groups[2] {
		t.Errorf("group after placeholder did not continue at running offset")
	}
}

func TestReconcileTooFewFaceGroups(t *testing.T) {
	rec := testRecord(testFaceGroup("a", geometry.Face{1, 2, 3}))
	md := &meta.Metadata{
		Groups: []meta.Group{
			{RenderBatches: []meta.RenderBatch{batch(0, 2, 0), batch(3, 5, 0)}},
		},
	}
	if _, err := wmo.Reconcile(rec, md, nil); err == nil {
		t.Fatal("expected error when metadata claims more batches than obj groups")
	}
}

func TestReconcileColorSynthesis(t *testing.T) {
	layer := func(n int, v uint32) []uint32 {
		l := make([]uint32, n)
		for i := range l {
			l[i] = v
		}
		return l
	}

	tests := []struct {
		name       string
		colours    [][]uint32
		out0, out1 []uint32
	}{
		{"no layers", nil, layer(5, 0), layer(5, 0)},
		{"one layer", [][]uint32{layer(5, 7)}, layer(5, 7), layer(5, 0)},
		{"two layers", [][]uint32{layer(5, 7), layer(5, 9)}, layer(5, 7), layer(5, 9)},
		{"oversized layers", [][]uint32{layer(8, 7), layer(9, 9)}, layer(5, 7), layer(5, 9)},
	}

	for _, test := range tests {
		rec := testRecord(testFaceGroup("a",
			geometry.Face{1, 2, 3}, geometry.Face{3, 4, 5}))
		md := &meta.Metadata{
			Groups: []meta.Group{{
				RenderBatches: []meta.RenderBatch{batch(0, 4, 0)},
				VertexColours: test.colours,
			}},
		}
		groups, err := wmo.Reconcile(rec, md, nil)
		if err != nil {
			t.Fatalf("%s: %v", test.name, err)
		}
		c := groups[0].Colors
		if !equalU32(c[0], test.out0) || !equalU32(c[1], test.out1) {
			t.Errorf("%s: got %v / %v, expected %v / %v", test.name, c[0], c[1], test.out0, test.out1)
		}
	}
}

func TestReconcileBatchlessZeroVerts(t *testing.T) {
	rec := testRecord()
	md := &meta.Metadata{Groups: []meta.Group{{GroupName: "portal_only"}}}
	groups, err := wmo.Reconcile(rec, md, nil)
	if err != nil {
		t.Fatal(err)
	}
	if groups[0].Colors.Present() {
		t.Errorf("batchless group should have empty color layers")
	}
}

func equalU32(a, b []uint32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
