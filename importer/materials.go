package importer

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/velfand/wmo_browser/config"
	"github.com/velfand/wmo_browser/scene"
	"github.com/velfand/wmo_browser/utils"
	"github.com/velfand/wmo_browser/wmo/meta"
)

// materialNumber recovers the metadata material index from a slot
// material name of the form <base>_mat_<n>, tolerating the .NNN
// suffix the scene appends to deduplicate datablock names.
func materialNumber(name string) (int, error) {
	parts := strings.Split(name, "_")
	number := parts[len(parts)-1]
	if dot := strings.IndexByte(number, '.'); dot >= 0 {
		number = number[:dot]
	}
	n, err := strconv.Atoi(number)
	if err != nil {
		return 0, errors.Wrapf(err, "Material name %q has no index", name)
	}
	return n, nil
}

// loadTexture resolves texture id <texnum> as <texnum>.png next to the
// geometry file. Zero ids and missing files mean no texture, never an
// error.
func loadTexture(s *scene.Scene, dir string, texnum int) *scene.Image {
	if texnum <= 0 {
		return nil
	}
	path := filepath.Join(dir, fmt.Sprintf("%d.png", texnum))
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	return s.LoadImage(path)
}

// setupMaterials wires the shading network of every material slot on
// the imported objects, once per unique material.
func setupMaterials(s *scene.Scene, objects []*scene.Object, md *meta.Metadata,
	dir string, settings config.Settings) error {
	baseShader, err := config.ParseBaseShader(settings.BaseShader)
	if err != nil {
		return err
	}
	ambient := utils.DecodePackedColor(md.AmbientColor, utils.CImVector)

	configured := make(map[*scene.Material]struct{})
	for _, obj := range objects {
		for _, mat := range obj.Materials {
			if _, done := configured[mat]; done {
				continue
			}
			configured[mat] = struct{}{}

			matNumber, err := materialNumber(mat.Name)
			if err != nil {
				return err
			}
			if matNumber < 0 || matNumber >= len(md.Materials) {
				return errors.Errorf("Material %q indexes %d of %d metadata materials",
					mat.Name, matNumber, len(md.Materials))
			}
			jsonMat := &md.Materials[matNumber]

			textures := []*scene.Image{
				loadTexture(s, dir, jsonMat.Texture1),
				loadTexture(s, dir, jsonMat.Texture2),
				loadTexture(s, dir, jsonMat.Texture3),
			}

			wireShader(mat, baseShader, jsonMat, textures, ambient)
		}
	}
	return nil
}

// wireShader builds the node tree for one material: base color from
// the material's packed color, image nodes per resolved texture, and
// the configured base shader feeding the output node.
func wireShader(mat *scene.Material, baseShader config.BaseShader,
	jsonMat *meta.Material, textures []*scene.Image, ambient utils.ColorFloat) {
	tree := &mat.NodeTree
	tree.Nodes = nil
	tree.Links = nil

	out := tree.NewNode(scene.NodeOutputMaterial)

	var shader *scene.Node
	switch baseShader {
	case config.ShaderPrincipled:
		shader = tree.NewNode(scene.NodePrincipled)
		shader.SetInput("Roughness", 1.0)
	case config.ShaderExperimental:
		shader = tree.NewNode(scene.NodeGroup)
		shader.GroupName = "wmo_combiner"
	default:
		shader = tree.NewNode(scene.NodeEmission)
	}
	tree.NewLink(shader, "BSDF", out, "Surface")

	baseColor := tree.NewNode(scene.NodeRGB)
	baseColor.Location = mgl32.Vec2{-1200.0, 400.0}
	baseColor.Label = "BASE COLOR"
	baseColor.Color = utils.DecodePackedColor(jsonMat.Color2, utils.CArgb)

	ambientColor := tree.NewNode(scene.NodeRGB)
	ambientColor.Location = mgl32.Vec2{-1200.0, 700.0}
	ambientColor.Label = "AMBIENT COLOR"
	ambientColor.Color = ambient

	linked := false
	for i, tex := range textures {
		if tex == nil {
			continue
		}
		texNode := tree.NewNode(scene.NodeTexImage)
		texNode.Image = tex
		texNode.Location = mgl32.Vec2{-1200.0, 200.0 - float32(i)*300.0}
		texNode.Label = fmt.Sprintf("TEXTURE_%d", i+1)
		if !linked {
			tree.NewLink(texNode, "Color", shader, "Color")
			linked = true
		}
	}
	if !linked {
		tree.NewLink(baseColor, "Color", shader, "Color")
	}
}
