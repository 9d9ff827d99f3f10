package web

import (
	"bytes"
	"fmt"
	"net/http"
	"sort"

	"github.com/gorilla/mux"

	"github.com/velfand/wmo_browser/gltfexport"
	"github.com/velfand/wmo_browser/scene"
	"github.com/velfand/wmo_browser/webutils"
)

type ajaxObject struct {
	Name         string   `json:"name"`
	Vertexes     int      `json:"vertexes"`
	Faces        int      `json:"faces"`
	Materials    []string `json:"materials"`
	UVLayers     []string `json:"uvLayers"`
	ColorLayers  []string `json:"colorLayers"`
	LightingType string   `json:"lightingType"`
	SourceFile   string   `json:"sourceFile"`
}

func ajaxObjectView(obj *scene.Object) *ajaxObject {
	view := &ajaxObject{
		Name:         obj.Name,
		LightingType: obj.Props.LightingType,
		SourceFile:   obj.Props.SourceFile,
	}
	for _, mat := range obj.Materials {
		view.Materials = append(view.Materials, mat.Name)
	}
	if obj.Mesh != nil {
		view.Vertexes = len(obj.Mesh.Verts())
		view.Faces = len(obj.Mesh.Faces())
		for _, l := range obj.Mesh.UVLayers() {
			view.UVLayers = append(view.UVLayers, l.Name)
		}
		for _, l := range obj.Mesh.ColorLayers() {
			view.ColorLayers = append(view.ColorLayers, l.Name)
		}
	}
	return view
}

func findObject(name string) *scene.Object {
	for _, obj := range ServerScene.Objects() {
		if obj.Name == name {
			return obj
		}
	}
	return nil
}

func HandlerAjaxScene(w http.ResponseWriter, r *http.Request) {
	type ajaxCollection struct {
		Name    string   `json:"name"`
		Objects []string `json:"objects"`
	}
	type ajaxScene struct {
		Name        string           `json:"name"`
		Objects     int              `json:"objects"`
		Materials   int              `json:"materials"`
		Collections []ajaxCollection `json:"collections"`
	}

	view := &ajaxScene{
		Name:      ServerScene.Name,
		Objects:   len(ServerScene.Objects()),
		Materials: len(ServerScene.Materials()),
	}
	collections := []*scene.Collection{ServerScene.Default}
	for _, c := range ServerScene.Collections() {
		collections = append(collections, c)
	}
	for _, c := range collections {
		ac := ajaxCollection{Name: c.Name}
		for _, obj := range c.Objects {
			ac.Objects = append(ac.Objects, obj.Name)
		}
		view.Collections = append(view.Collections, ac)
	}
	sort.Slice(view.Collections, func(i, j int) bool {
		return view.Collections[i].Name < view.Collections[j].Name
	})

	webutils.WriteJson(w, view)
}

func HandlerAjaxObjects(w http.ResponseWriter, r *http.Request) {
	names := make([]string, 0, len(ServerScene.Objects()))
	for _, obj := range ServerScene.Objects() {
		names = append(names, obj.Name)
	}
	sort.Strings(names)
	webutils.WriteJson(w, names)
}

func HandlerAjaxObject(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	obj := findObject(name)
	if obj == nil {
		webutils.WriteError(w, fmt.Errorf("Cannot find object %q", name))
		return
	}
	webutils.WriteJson(w, ajaxObjectView(obj))
}

func HandlerAjaxMaterials(w http.ResponseWriter, r *http.Request) {
	type ajaxMaterial struct {
		Name     string   `json:"name"`
		UseNodes bool     `json:"useNodes"`
		Nodes    []string `json:"nodes"`
	}

	views := make([]ajaxMaterial, 0, len(ServerScene.Materials()))
	for _, mat := range ServerScene.Materials() {
		view := ajaxMaterial{Name: mat.Name, UseNodes: mat.UseNodes}
		for _, n := range mat.NodeTree.Nodes {
			view.Nodes = append(view.Nodes, n.Type)
		}
		views = append(views, view)
	}
	webutils.WriteJson(w, views)
}

func HandlerDumpScene(w http.ResponseWriter, r *http.Request) {
	doc := gltfexport.ExportScene(ServerScene)

	var buf bytes.Buffer
	if err := gltfexport.ExportBinary(&buf, doc); err != nil {
		webutils.WriteError(w, err)
		return
	}
	webutils.WriteFile(w, &buf, ServerScene.Name+".glb")
}

func HandlerDumpObject(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	obj := findObject(name)
	if obj == nil {
		webutils.WriteError(w, fmt.Errorf("Cannot find object %q", name))
		return
	}

	doc := gltfexport.ExportObjects(obj.Name, []*scene.Object{obj})

	var buf bytes.Buffer
	if err := gltfexport.ExportBinary(&buf, doc); err != nil {
		webutils.WriteError(w, err)
		return
	}
	webutils.WriteFile(w, &buf, obj.Name+".glb")
}
