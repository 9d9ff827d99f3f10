// Package importer drives one wmo import: metadata load and
// validation, geometry parse, reconciliation, per-group mesh builds,
// then material setup over the resulting objects.
package importer

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/velfand/wmo_browser/config"
	"github.com/velfand/wmo_browser/scene"
	"github.com/velfand/wmo_browser/status"
	"github.com/velfand/wmo_browser/utils"
	"github.com/velfand/wmo_browser/wmo"
	"github.com/velfand/wmo_browser/wmo/geometry"
	"github.com/velfand/wmo_browser/wmo/meta"
)

type Options struct {
	// NameOverride replaces the obj file stem as the base name
	NameOverride string
	Settings     config.Settings
	// Verbose receives per-batch diagnostics; nil drops them
	Verbose *utils.Logger
}

var importNames utils.RandomNameGenerator

// ImportWmo imports the obj/json pair at objPath into the scene and
// returns the created objects, one per nonempty wmo group. Setup
// failures (metadata, parse, reconcile) happen before any scene
// mutation; a failure while building leaves earlier groups in place.
func ImportWmo(s *scene.Scene, objPath string, opts Options) ([]*scene.Object, error) {
	dir := filepath.Dir(objPath)
	jsonPath := strings.TrimSuffix(objPath, filepath.Ext(objPath)) + ".json"

	log.Printf("[importer] loading json metadata from %q", jsonPath)
	md, err := meta.LoadFile(jsonPath)
	if err != nil {
		return nil, err
	}
	if opts.Verbose != nil {
		opts.Verbose.Println(utils.SDump(md))
	}

	baseName := opts.NameOverride
	if baseName == "" {
		baseName = strings.TrimSuffix(filepath.Base(objPath), filepath.Ext(objPath))
	}
	if baseName == "" {
		baseName = importNames.RandomName()
	}
	log.Printf("[importer] importing using base name %q", baseName)

	rec, err := geometry.ParseFile(objPath)
	if err != nil {
		return nil, err
	}

	groups, err := wmo.Reconcile(rec, md, opts.Verbose)
	if err != nil {
		return nil, err
	}

	matDict := make(map[int]*scene.Material, len(md.Materials))
	for i := range md.Materials {
		mat := s.NewMaterial(fmt.Sprintf("%s_mat_%d", baseName, i))
		mat.UseNodes = true
		matDict[i] = mat
	}

	log.Printf("[importer] generating meshes for %d groups", len(groups))
	objects := make([]*scene.Object, 0, len(groups))
	for i, group := range groups {
		status.Progress(baseName, float32(i)/float32(len(groups)),
			"Generating mesh %d of %d", i+1, len(groups))
		obj := buildObject(s, fmt.Sprintf("%03d_%s", i, baseName), group,
			matDict, opts.Settings, opts.Verbose)
		if obj != nil {
			obj.Props.SourceFile = filepath.Base(objPath)
			obj.Props.SourceDirectory = dir
			objects = append(objects, obj)
		}
	}

	log.Printf("[importer] generating materials")
	status.Progress(baseName, 1.0, "Generating materials")
	if err := setupMaterials(s, objects, md, dir, opts.Settings); err != nil {
		return objects, errors.Wrapf(err, "Failed to setup materials")
	}

	status.Info(baseName, "Imported %d objects", len(objects))
	return objects, nil
}
