package geometry_test

import (
	"strings"
	"testing"

	"github.com/velfand/wmo_browser/wmo/geometry"
)

const testObj = `
# wow.export v1.0
mtllib test.mtl
o test.wmo
v 0.0 0.0 0.0
v 1.0 0.0 0.0
v 0.0 1.0 0.0
v 1.0 1.0 0.5
vn 0 0 1
vn 0 0 1
vn 0 0 1
vn 0 0 1
vt 0.0 0.0
vt 1.0 0.0
vt 0.0 1.0
vt 1.0 1.0
vt2 undefined
vt2 0.5 0.5
vt2 undefined
vt2 undefined
g test_000
usemtl test_mat_0
f 1/1/1 2/2/2 3/3/3
g test_001
usemtl test_mat_1
f 2/2/2 4/4/4 3/3/3
f 2 4 3
`

func TestParse(t *testing.T) {
	rec, err := geometry.Parse(strings.NewReader(testObj))
	if err != nil {
		t.Fatal(err)
	}

	if rec.Name != "test.wmo" {
		t.Errorf("name=%q", rec.Name)
	}
	if len(rec.Verts) != 4 || len(rec.Normals) != 4 {
		t.Errorf("verts=%d normals=%d; expected 4/4", len(rec.Verts), len(rec.Normals))
	}
	if len(rec.UV) != 4 || len(rec.UV2) != 4 || len(rec.UV3) != 0 {
		t.Errorf("uv=%d uv2=%d uv3=%d; expected 4/4/0", len(rec.UV), len(rec.UV2), len(rec.UV3))
	}
	if rec.UV2[0] != [2]float32{0, 0} || rec.UV2[1] != [2]float32{0.5, 0.5} {
		t.Errorf("undefined vt2 mapping broken: %v", rec.UV2[:2])
	}

	if len(rec.Groups) != 2 {
		t.Fatalf("groups=%d; expected 2", len(rec.Groups))
	}
	g0, g1 := rec.Groups[0], rec.Groups[1]
	if g0.Name != "test_000" || g0.MaterialName != "test_mat_0" {
		t.Errorf("group0 %q/%q", g0.Name, g0.MaterialName)
	}
	if len(g0.Faces) != 1 || g0.Faces[0] != (geometry.Face{1, 2, 3}) {
		t.Errorf("group0 faces: %v", g0.Faces)
	}
	if len(g0.UsedVerts) != 3 {
		t.Errorf("group0 used verts: %v", g0.UsedVerts)
	}
	if _, ok := g0.UsedVerts[0]; !ok {
		t.Errorf("used verts should be 0-based: %v", g0.UsedVerts)
	}
	if len(g1.Faces) != 2 || g1.Faces[1] != (geometry.Face{2, 4, 3}) {
		t.Errorf("group1 faces: %v", g1.Faces)
	}
	if rec.TotalUsedVerts() != 6 || rec.TotalFaces() != 3 {
		t.Errorf("totals: %d verts %d faces", rec.TotalUsedVerts(), rec.TotalFaces())
	}
}

func TestParseFaceBeforeGroup(t *testing.T) {
	_, err := geometry.Parse(strings.NewReader("v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n"))
	var malformed *geometry.MalformedGeometryError
	if err == nil {
		t.Fatal("expected error for face before group")
	}
	var ok bool
	if malformed, ok = err.(*geometry.MalformedGeometryError); !ok {
		t.Fatalf("expected MalformedGeometryError, got %T: %v", err, err)
	}
	if malformed.Line != 4 {
		t.Errorf("line=%d; expected 4", malformed.Line)
	}
}

func TestParseOutOfRangeIndex(t *testing.T) {
	for _, src := range []string{
		"v 0 0 0\ng a\nf 1 2 3\n",  // past end
		"v 0 0 0\ng a\nf 0 1 1\n",  // zero
		"v 0 0 0\ng a\nf -1 1 1\n", // negative
	} {
		if _, err := geometry.Parse(strings.NewReader(src)); err == nil {
			t.Errorf("expected error for %q", src)
		}
	}
}

func TestParseUnknownRecordsIgnored(t *testing.T) {
	rec, err := geometry.Parse(strings.NewReader("s 1\nnewfangled 1 2 3\nv 0 0 0\n"))
	if err != nil {
		t.Fatal(err)
	}
	if len(rec.Verts) != 1 {
		t.Errorf("verts=%d; expected 1", len(rec.Verts))
	}
}
