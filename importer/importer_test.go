package importer_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/velfand/wmo_browser/config"
	"github.com/velfand/wmo_browser/importer"
	"github.com/velfand/wmo_browser/scene"
	"github.com/velfand/wmo_browser/utils"
)

const scenarioObj = `o scenario.wmo
v 0.0 0.0 0.0
v 1.0 0.0 0.0
v 0.0 1.0 0.0
v 1.0 1.0 0.0
vt 0.0 0.0
vt 1.0 0.0
vt 0.0 1.0
vt 1.0 1.0
g scenario_000
usemtl scenario_mat_0
f 1/1 2/2 3/3
f 2/2 4/4 3/3
`

const scenarioJSON = `{
	"fileName": "world/wmo/scenario.wmo",
	"ambientColor": 0,
	"groups": [
		{
			"groupName": "scenario_000",
			"groupDescription": "",
			"flags": 0,
			"numPortals": 0,
			"numBatchesA": 0, "numBatchesB": 0, "numBatchesC": 1,
			"renderBatches": [
				{"firstVertex": 0, "lastVertex": 3, "materialID": 0, "flags": 0, "possibleBox2": [0, 0, 0]}
			],
			"vertexColours": [[4286545791, 4286545791, 4286545791, 4286545791]]
		}
	],
	"materials": [
		{"texture1": 0, "texture2": 0, "texture3": 0, "color2": 0}
	]
}`

func writePair(t *testing.T, obj, json string) string {
	t.Helper()
	dir := t.TempDir()
	objPath := filepath.Join(dir, "scenario.obj")
	if err := os.WriteFile(objPath, []byte(obj), 0666); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "scenario.json"), []byte(json), 0666); err != nil {
		t.Fatal(err)
	}
	return objPath
}

func TestImportScenario(t *testing.T) {
	s := scene.NewScene("test")
	objects, err := importer.ImportWmo(s, writePair(t, scenarioObj, scenarioJSON),
		importer.Options{Settings: config.DefaultSettings()})
	if err != nil {
		t.Fatal(err)
	}
	if len(objects) != 1 {
		t.Fatalf("objects=%d; expected 1", len(objects))
	}

	obj := objects[0]
	if obj.Name != "000_scenario_scenario_000" {
		t.Errorf("object name %q", obj.Name)
	}
	if len(obj.Mesh.Verts()) != 4 || len(obj.Mesh.Faces()) != 2 {
		t.Errorf("verts=%d faces=%d; expected 4/2", len(obj.Mesh.Verts()), len(obj.Mesh.Faces()))
	}
	if len(obj.Materials) != 1 {
		t.Errorf("material slots=%d; expected 1", len(obj.Materials))
	}
	if obj.Props.LightingType != "UNLIT" || obj.Props.ModelType != "WMO" {
		t.Errorf("props: %+v", obj.Props)
	}
	if obj.Props.SourceFile != "scenario.obj" {
		t.Errorf("source file %q", obj.Props.SourceFile)
	}
	if obj.Rotation[0] != utils.Radians(90) || obj.Rotation[1] != 0 || obj.Rotation[2] != 0 {
		t.Errorf("rotation %v", obj.Rotation)
	}

	// one provided color layer plus one synthesized zero layer
	layers := obj.Mesh.ColorLayers()
	if len(layers) != 2 {
		t.Fatalf("color layers=%d; expected 2", len(layers))
	}
	want := utils.DecodePackedColor(0xFF7F7F7F, utils.CImVector)
	for _, f := range obj.Mesh.Faces() {
		for corner := range f.Verts {
			if got := layers[0].Get(f, corner); got != want {
				t.Fatalf("vcols_0 at corner %d = %v; expected %v", corner, got, want)
			}
			if got := layers[1].Get(f, corner); got != (utils.ColorFloat{0, 0, 0, 0}) {
				t.Fatalf("vcols_1 at corner %d = %v; expected zero", corner, got)
			}
		}
	}

	if len(obj.Mesh.UVLayers()) != 1 {
		t.Errorf("uv layers=%d; expected 1", len(obj.Mesh.UVLayers()))
	}
}

func TestImportIdempotent(t *testing.T) {
	objPath := writePair(t, scenarioObj, scenarioJSON)

	counts := func() (int, int, int) {
		s := scene.NewScene("test")
		objects, err := importer.ImportWmo(s, objPath,
			importer.Options{Settings: config.DefaultSettings()})
		if err != nil {
			t.Fatal(err)
		}
		obj := objects[0]
		return len(obj.Mesh.Verts()), len(obj.Mesh.Faces()), len(obj.Materials)
	}

	v1, f1, m1 := counts()
	v2, f2, m2 := counts()
	if v1 != v2 || f1 != f2 || m1 != m2 {
		t.Errorf("import not deterministic: %d/%d/%d vs %d/%d/%d", v1, f1, m1, v2, f2, m2)
	}
}

const duplicateFaceObj = `o scenario.wmo
v 0.0 0.0 0.0
v 1.0 0.0 0.0
v 0.0 1.0 0.0
vt 0.0 0.0
vt 1.0 0.0
vt 0.0 1.0
g scenario_000
f 1 2 3
f 1 2 3
`

const duplicateFaceJSON = `{
	"fileName": "world/wmo/scenario.wmo",
	"ambientColor": 0,
	"groups": [
		{
			"groupName": "scenario_000",
			"flags": 0,
			"numPortals": 0,
			"numBatchesA": 0, "numBatchesB": 0, "numBatchesC": 1,
			"renderBatches": [
				{"firstVertex": 0, "lastVertex": 2, "materialID": 0, "flags": 0, "possibleBox2": [0, 0, 0]}
			],
			"vertexColours": []
		}
	],
	"materials": [
		{"texture1": 0, "texture2": 0, "texture3": 0, "color2": 0}
	]
}`

func TestImportDuplicateFaceRecovery(t *testing.T) {
	s := scene.NewScene("test")
	objects, err := importer.ImportWmo(s, writePair(t, duplicateFaceObj, duplicateFaceJSON),
		importer.Options{Settings: config.DefaultSettings()})
	if err != nil {
		t.Fatal(err)
	}

	obj := objects[0]
	// the second identical face lands on three fresh non-shared verts
	if len(obj.Mesh.Verts()) != 6 {
		t.Errorf("verts=%d; expected 3 shared + 3 duplicated", len(obj.Mesh.Verts()))
	}
	if len(obj.Mesh.Faces()) != 2 {
		t.Errorf("faces=%d; expected 2", len(obj.Mesh.Faces()))
	}
}

const sentinelJSON = `{
	"fileName": "world/wmo/scenario.wmo",
	"ambientColor": 0,
	"groups": [
		{
			"groupName": "scenario_000",
			"flags": 0,
			"numPortals": 0,
			"numBatchesA": 0, "numBatchesB": 0, "numBatchesC": 1,
			"renderBatches": [
				{"firstVertex": 0, "lastVertex": 3, "materialID": 0, "flags": 2, "possibleBox2": [0, 0, 1]}
			],
			"vertexColours": []
		}
	],
	"materials": [
		{"texture1": 0, "texture2": 0, "texture3": 0, "color2": 0},
		{"texture1": 0, "texture2": 0, "texture3": 0, "color2": 255}
	]
}`

func TestImportMaterialSentinel(t *testing.T) {
	s := scene.NewScene("test")
	objects, err := importer.ImportWmo(s, writePair(t, scenarioObj, sentinelJSON),
		importer.Options{Settings: config.DefaultSettings()})
	if err != nil {
		t.Fatal(err)
	}

	obj := objects[0]
	if len(obj.Materials) != 1 {
		t.Fatalf("material slots=%d; expected 1", len(obj.Materials))
	}
	// flags==2 redirects to possibleBox2[2], ignoring materialID
	if obj.Materials[0].Name != "scenario_mat_1" {
		t.Errorf("slot material %q; expected scenario_mat_1", obj.Materials[0].Name)
	}
	for _, f := range obj.Mesh.Faces() {
		if f.MaterialIndex != 0 {
			t.Errorf("face material index=%d; expected slot 0", f.MaterialIndex)
		}
	}
}

func TestImportMissingSidecar(t *testing.T) {
	dir := t.TempDir()
	objPath := filepath.Join(dir, "lonely.obj")
	if err := os.WriteFile(objPath, []byte(scenarioObj), 0666); err != nil {
		t.Fatal(err)
	}
	s := scene.NewScene("test")
	if _, err := importer.ImportWmo(s, objPath, importer.Options{Settings: config.DefaultSettings()}); err == nil {
		t.Fatal("expected error for missing json sidecar")
	}
	if len(s.Objects()) != 0 {
		t.Errorf("scene mutated before setup failure")
	}
}

func TestImportNameOverride(t *testing.T) {
	s := scene.NewScene("test")
	objects, err := importer.ImportWmo(s, writePair(t, scenarioObj, scenarioJSON),
		importer.Options{NameOverride: "custom", Settings: config.DefaultSettings()})
	if err != nil {
		t.Fatal(err)
	}
	if objects[0].Name != "000_custom_scenario_000" {
		t.Errorf("object name %q", objects[0].Name)
	}
	if objects[0].Materials[0].Name != "custom_mat_0" {
		t.Errorf("material name %q", objects[0].Materials[0].Name)
	}
}
