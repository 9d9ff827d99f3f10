// Package scene is the importer's target data model: objects with
// editable meshes, material datablocks with shading node trees, image
// datablocks and named collections.
package scene

import (
	"fmt"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/velfand/wmo_browser/scene/bmesh"
)

type Collection struct {
	Name    string
	Objects []*Object
}

type Scene struct {
	Name string

	objects     []*Object
	materials   []*Material
	images      map[string]*Image
	collections map[string]*Collection

	// objects linked to no named collection land here
	Default *Collection

	names map[string]int
}

func NewScene(name string) *Scene {
	return &Scene{
		Name:        name,
		images:      make(map[string]*Image),
		collections: make(map[string]*Collection),
		Default:     &Collection{Name: "Scene Collection"},
		names:       make(map[string]int),
	}
}

func (s *Scene) Objects() []*Object     { return s.objects }
func (s *Scene) Materials() []*Material { return s.materials }

// uniqueName suffixes duplicate datablock names with .001 style
// counters so name lookups stay unambiguous.
func (s *Scene) uniqueName(name string) string {
	n, taken := s.names[name]
	if !taken {
		s.names[name] = 0
		return name
	}
	for {
		n++
		candidate := fmt.Sprintf("%s.%03d", name, n)
		if _, exists := s.names[candidate]; !exists {
			s.names[name] = n
			s.names[candidate] = 0
			return candidate
		}
	}
}

func (s *Scene) NewObject(name string, mesh *bmesh.Mesh) *Object {
	obj := &Object{
		ID:   uuid.New(),
		Name: s.uniqueName(name),
		Mesh: mesh,
	}
	s.objects = append(s.objects, obj)
	return obj
}

func (s *Scene) NewMaterial(name string) *Material {
	mat := &Material{
		ID:   uuid.New(),
		Name: s.uniqueName(name),
	}
	s.materials = append(s.materials, mat)
	return mat
}

// Collection returns the named collection, creating and linking it on
// first use.
func (s *Scene) Collection(name string) *Collection {
	if c, ok := s.collections[name]; ok {
		return c
	}
	c := &Collection{Name: name}
	s.collections[name] = c
	return c
}

func (s *Scene) Collections() map[string]*Collection { return s.collections }

// LinkObject places an object into a named collection, or into the
// default collection when name is empty.
func (s *Scene) LinkObject(obj *Object, collectionName string) {
	if collectionName == "" {
		s.Default.Objects = append(s.Default.Objects, obj)
		return
	}
	c := s.Collection(collectionName)
	c.Objects = append(c.Objects, obj)
}

// LoadImage returns the image datablock for a texture file, cached by
// base name the way an editor caches loaded images.
func (s *Scene) LoadImage(path string) *Image {
	name := filepath.Base(path)
	if img, ok := s.images[name]; ok {
		return img
	}
	img := &Image{
		ID:        uuid.New(),
		Name:      name,
		Filepath:  path,
		AlphaMode: AlphaChannelPacked,
	}
	s.images[name] = img
	return img
}

func (s *Scene) Images() map[string]*Image { return s.images }

const AlphaChannelPacked = "CHANNEL_PACKED"

type Image struct {
	ID        uuid.UUID
	Name      string
	Filepath  string
	AlphaMode string
}
