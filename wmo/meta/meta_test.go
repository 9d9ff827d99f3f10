package meta_test

import (
	"testing"

	"github.com/pkg/errors"

	"github.com/velfand/wmo_browser/wmo/meta"
)

const testMetadata = `{
	"fileName": "world/wmo/dungeon/test.wmo",
	"ambientColor": 4285427310,
	"groups": [
		{
			"groupName": "test_000",
			"groupDescription": "entrance",
			"flags": 8200,
			"numPortals": 1,
			"numBatchesA": 0,
			"numBatchesB": 0,
			"numBatchesC": 2,
			"renderBatches": [
				{"firstVertex": 0, "lastVertex": 3, "materialID": 0, "flags": 0, "possibleBox2": [0, 0, 0]},
				{"firstVertex": 4, "lastVertex": 9, "materialID": 1, "flags": 2, "possibleBox2": [0, 0, 1]}
			],
			"vertexColours": [[0, 0, 0, 0, 0, 0, 0, 0, 0, 0]]
		},
		{
			"groupName": "antiportal",
			"groupDescription": "",
			"flags": 0,
			"numPortals": 0,
			"numBatchesA": 0,
			"numBatchesB": 0,
			"numBatchesC": 0,
			"renderBatches": [],
			"vertexColours": []
		}
	],
	"materials": [
		{"texture1": 12345, "texture2": 0, "texture3": 0, "color2": 0},
		{"texture1": 678, "texture2": 910, "texture3": 0, "color2": 4278190335}
	]
}`

func TestDecode(t *testing.T) {
	m, err := meta.Decode([]byte(testMetadata))
	if err != nil {
		t.Fatal(err)
	}

	if len(m.Groups) != 2 || len(m.Materials) != 2 {
		t.Fatalf("groups=%d materials=%d", len(m.Groups), len(m.Materials))
	}
	g := &m.Groups[0]
	if g.GroupName != "test_000" || g.GroupDescription != "entrance" {
		t.Errorf("group0 names: %q %q", g.GroupName, g.GroupDescription)
	}
	if g.VertexCount() != 10 {
		t.Errorf("group0 vertex count=%d; expected 10", g.VertexCount())
	}
	if m.Groups[1].VertexCount() != 0 {
		t.Errorf("batchless group vertex count=%d; expected 0", m.Groups[1].VertexCount())
	}

	b0, b1 := &g.RenderBatches[0], &g.RenderBatches[1]
	if b0.VertexCount() != 4 || b1.VertexCount() != 6 {
		t.Errorf("batch vertex counts: %d %d", b0.VertexCount(), b1.VertexCount())
	}
	if b0.EffectiveMaterialID() != 0 {
		t.Errorf("batch0 material=%d", b0.EffectiveMaterialID())
	}
	// flags==2 redirects material lookup into possibleBox2[2]
	if b1.EffectiveMaterialID() != 1 {
		t.Errorf("batch1 material=%d; expected possibleBox2 redirect", b1.EffectiveMaterialID())
	}
}

func TestDecodeWrongFileKind(t *testing.T) {
	_, err := meta.Decode([]byte(`{"fileName": "creature/murloc/murloc.m2", "groups": [], "materials": [], "ambientColor": 0}`))
	if !errors.Is(err, meta.ErrWrongFileKind) {
		t.Errorf("expected ErrWrongFileKind, got %v", err)
	}
}

func TestDecodeMissingField(t *testing.T) {
	for _, test := range []struct {
		doc   string
		field string
	}{
		{`{"groups": [], "materials": [], "ambientColor": 0}`, "fileName"},
		{`{"fileName": "a.wmo", "materials": [], "ambientColor": 0}`, "groups"},
		{`{"fileName": "a.wmo", "groups": [], "ambientColor": 0}`, "materials"},
		{`{"fileName": "a.wmo", "groups": [], "materials": []}`, "ambientColor"},
	} {
		_, err := meta.Decode([]byte(test.doc))
		missing, ok := err.(*meta.MissingFieldError)
		if !ok {
			t.Errorf("%s: expected MissingFieldError, got %v", test.field, err)
			continue
		}
		if missing.Field != test.field {
			t.Errorf("missing field %q; expected %q", missing.Field, test.field)
		}
	}
}

func TestDecodeInvalidField(t *testing.T) {
	doc := `{"fileName": "a.wmo", "groups": "nope", "materials": [], "ambientColor": 0}`
	_, err := meta.Decode([]byte(doc))
	if _, ok := err.(*meta.InvalidFieldError); !ok {
		t.Errorf("expected InvalidFieldError, got %v", err)
	}

	// material id out of range is invalid, not a crash later
	doc = `{"fileName": "a.wmo", "ambientColor": 0, "materials": [],
		"groups": [{"renderBatches": [{"firstVertex": 0, "lastVertex": 1, "materialID": 3, "flags": 0}]}]}`
	_, err = meta.Decode([]byte(doc))
	if _, ok := err.(*meta.InvalidFieldError); !ok {
		t.Errorf("expected InvalidFieldError for bad materialID, got %v", err)
	}
}

var lightingTests = []struct {
	in_flags     meta.GroupFlags
	out_lighting meta.LightingType
}{
	{0, meta.LightingUnlit},
	{meta.GroupFlagInterior, meta.LightingInterior},
	{meta.GroupFlagExterior, meta.LightingExterior},
	{meta.GroupFlagInterior | meta.GroupFlagExterior, meta.LightingTransition},
	{meta.GroupFlagHasLights | meta.GroupFlagHasDoodads, meta.LightingUnlit},
}

func TestGroupFlagsLighting(t *testing.T) {
	for _, test := range lightingTests {
		if got := test.in_flags.Lighting(); got != test.out_lighting {
			t.Errorf("Lighting(%#x)=%v; expected %v", uint32(test.in_flags), got, test.out_lighting)
		}
	}
}

func TestGroupFlagsNames(t *testing.T) {
	flags := meta.GroupFlagExterior | meta.GroupFlagHasLights
	names := flags.Names()
	if len(names) != 2 || names[0] != "EXTERIOR" || names[1] != "HAS_LIGHTS" {
		t.Errorf("Names()=%v", names)
	}
}
