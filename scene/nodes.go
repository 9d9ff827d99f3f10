package scene

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"github.com/velfand/wmo_browser/utils"
)

// Shading node types the importer wires. Names follow the editor's
// node identifiers so round-tripping stays obvious.
const (
	NodeOutputMaterial = "ShaderNodeOutputMaterial"
	NodeEmission       = "ShaderNodeEmission"
	NodePrincipled     = "ShaderNodeBsdfPrincipled"
	NodeGroup          = "ShaderNodeGroup"
	NodeRGB            = "ShaderNodeRGB"
	NodeTexImage       = "ShaderNodeTexImage"
)

type Node struct {
	Type     string
	Label    string
	Location mgl32.Vec2

	// node-type specific payloads
	Image     *Image
	Color     utils.ColorFloat
	GroupName string
	Inputs    map[string]float32
}

func (n *Node) SetInput(name string, value float32) {
	if n.Inputs == nil {
		n.Inputs = make(map[string]float32)
	}
	n.Inputs[name] = value
}

type Link struct {
	From       *Node
	FromSocket string
	To         *Node
	ToSocket   string
}

type NodeTree struct {
	Nodes []*Node
	Links []Link
}

func (t *NodeTree) NewNode(nodeType string) *Node {
	n := &Node{Type: nodeType}
	t.Nodes = append(t.Nodes, n)
	return n
}

func (t *NodeTree) NewLink(from *Node, fromSocket string, to *Node, toSocket string) {
	t.Links = append(t.Links, Link{From: from, FromSocket: fromSocket, To: to, ToSocket: toSocket})
}

// FindNode returns the first node of a type, nil when absent.
func (t *NodeTree) FindNode(nodeType string) *Node {
	for _, n := range t.Nodes {
		if n.Type == nodeType {
			return n
		}
	}
	return nil
}

type Material struct {
	ID   uuid.UUID
	Name string

	UseNodes bool
	NodeTree NodeTree
}
