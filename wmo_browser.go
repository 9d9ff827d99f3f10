package main

import (
	"flag"
	"log"
	"os"

	"github.com/velfand/wmo_browser/config"
	"github.com/velfand/wmo_browser/gltfexport"
	"github.com/velfand/wmo_browser/importer"
	"github.com/velfand/wmo_browser/scene"
	"github.com/velfand/wmo_browser/utils"
	"github.com/velfand/wmo_browser/web"
)

func main() {
	var addr, obj, name, settingsPath, shader, encoding, glb string
	var mergeVerts, makeQuads, collections, verbose bool
	var mergeDist, quadAngle float64
	flag.StringVar(&addr, "i", "", "Address of viewer server, empty to skip serving")
	flag.StringVar(&obj, "obj", "", "Path to wmo obj file (json sidecar expected next to it)")
	flag.StringVar(&name, "name", "", "Base name override for imported objects")
	flag.StringVar(&settingsPath, "settings", "", "Path to yaml settings file")
	flag.StringVar(&shader, "shader", "", "Base shader: Emission, ShaderNodeBsdfPrincipled or Experimental")
	flag.StringVar(&encoding, "encoding", "", "Name decoding charmap override")
	flag.StringVar(&glb, "glb", "", "Write imported scene as binary gltf to this path")
	flag.BoolVar(&mergeVerts, "merge", false, "Merge duplicate vertexes after import")
	flag.BoolVar(&makeQuads, "quads", false, "Join triangle pairs back into quads")
	flag.BoolVar(&collections, "collections", true, "Group objects into collections by wmo group description")
	flag.BoolVar(&verbose, "v", false, "Log per-batch reconcile diagnostics")
	flag.Float64Var(&mergeDist, "mergedist", 0, "Merge distance override")
	flag.Float64Var(&quadAngle, "quadangle", 0, "Quad join angle limit override, degrees")
	flag.Parse()

	objs := flag.Args()
	if obj != "" {
		objs = append([]string{obj}, objs...)
	}
	if len(objs) == 0 {
		flag.PrintDefaults()
		return
	}

	if settingsPath != "" {
		if err := config.LoadSettings(settingsPath); err != nil {
			log.Fatal(err)
		}
	}

	settings := config.GetSettings()
	settings.MergeVerts = settings.MergeVerts || mergeVerts
	settings.MakeQuads = settings.MakeQuads || makeQuads
	settings.UseCollections = settings.UseCollections && collections
	if mergeDist > 0 {
		settings.MergeDistance = float32(mergeDist)
	}
	if quadAngle > 0 {
		settings.QuadAngle = float32(quadAngle)
	}
	if shader != "" {
		if _, err := config.ParseBaseShader(shader); err != nil {
			log.Fatal(err)
		}
		settings.BaseShader = shader
	}
	if encoding != "" {
		settings.Encoding = encoding
	}
	if settings.Encoding != "" {
		if err := config.SetEncoding(settings.Encoding); err != nil {
			log.Fatal(err)
		}
	}
	config.SetSettings(settings)

	opts := importer.Options{
		NameOverride: name,
		Settings:     settings,
	}
	if verbose {
		opts.Verbose = &utils.Logger{Writer: os.Stderr}
	}

	s := scene.NewScene("wmo import")
	for _, objPath := range objs {
		imported, err := importer.ImportWmo(s, objPath, opts)
		if err != nil {
			log.Fatalf("Failed to import %q: %v", objPath, err)
		}
		log.Printf("[main] imported %q: %d objects", objPath, len(imported))
	}

	if glb != "" {
		f, err := os.Create(glb)
		if err != nil {
			log.Fatal(err)
		}
		if err := gltfexport.ExportBinary(f, gltfexport.ExportScene(s)); err != nil {
			f.Close()
			log.Fatal(err)
		}
		if err := f.Close(); err != nil {
			log.Fatal(err)
		}
		log.Printf("[main] wrote %q", glb)
	}

	if addr != "" {
		if err := web.StartServer(addr, s, "web"); err != nil {
			log.Fatal(err)
		}
	}
}
