package geometry

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/velfand/wmo_browser/config"
)

// MalformedGeometryError is fatal: the obj stream violates the
// wow.export dialect in a way we cannot align with metadata.
type MalformedGeometryError struct {
	Line   int
	Reason string
}

func (e *MalformedGeometryError) Error() string {
	return fmt.Sprintf("malformed geometry at line %d: %s", e.Line, e.Reason)
}

type recordKind int

const (
	recordUnknown recordKind = iota
	recordMtlLib
	recordVertex
	recordNormal
	recordUV
	recordUV2
	recordUV3
	recordObjectName
	recordGroup
	recordUseMaterial
	recordFace
)

func classifyRecord(token []byte) recordKind {
	switch string(token) {
	case "mtllib":
		return recordMtlLib
	case "v":
		return recordVertex
	case "vn":
		return recordNormal
	case "vt":
		return recordUV
	case "vt2":
		return recordUV2
	case "vt3":
		return recordUV3
	case "o":
		return recordObjectName
	case "g":
		return recordGroup
	case "usemtl":
		return recordUseMaterial
	case "f":
		return recordFace
	default:
		return recordUnknown
	}
}

type parser struct {
	rec  *Record
	line int
}

func (p *parser) failf(format string, a ...interface{}) error {
	return &MalformedGeometryError{Line: p.line, Reason: fmt.Sprintf(format, a...)}
}

func (p *parser) currentGroup() *FaceGroup {
	if len(p.rec.Groups) == 0 {
		return nil
	}
	return p.rec.Groups[len(p.rec.Groups)-1]
}

func (p *parser) floats(fields [][]byte, count int) ([]float32, error) {
	if len(fields) < count {
		return nil, p.failf("expected %d values, got %d", count, len(fields))
	}
	out := make([]float32, count)
	for i := 0; i < count; i++ {
		v, err := strconv.ParseFloat(string(fields[i]), 32)
		if err != nil {
			return nil, p.failf("bad float %q", fields[i])
		}
		out[i] = float32(v)
	}
	return out, nil
}

func (p *parser) handleVertex(fields [][]byte) error {
	v, err := p.floats(fields, 3)
	if err != nil {
		return err
	}
	p.rec.Verts = append(p.rec.Verts, mgl32.Vec3{v[0], v[1], v[2]})
	return nil
}

func (p *parser) handleNormal(fields [][]byte) error {
	v, err := p.floats(fields, 3)
	if err != nil {
		return err
	}
	p.rec.Normals = append(p.rec.Normals, mgl32.Vec3{v[0], v[1], v[2]})
	return nil
}

func (p *parser) handleUV(fields [][]byte, set int) error {
	// wow.export emits "vt2 undefined" for verts without a second uv
	if set == 2 && len(fields) > 0 && bytes.Equal(fields[0], []byte("undefined")) {
		p.rec.UV2 = append(p.rec.UV2, mgl32.Vec2{})
		return nil
	}
	v, err := p.floats(fields, 2)
	if err != nil {
		return err
	}
	uv := mgl32.Vec2{v[0], v[1]}
	switch set {
	case 1:
		p.rec.UV = append(p.rec.UV, uv)
	case 2:
		p.rec.UV2 = append(p.rec.UV2, uv)
	case 3:
		p.rec.UV3 = append(p.rec.UV3, uv)
	}
	return nil
}

func (p *parser) handleFace(fields [][]byte) error {
	group := p.currentGroup()
	if group == nil {
		return p.failf("faces before group")
	}
	if len(fields) < 3 {
		return p.failf("face with %d corners", len(fields))
	}

	var face Face
	for i := 0; i < 3; i++ {
		// corner is vertex[/uv[/normal]]; uv and normal indexes are
		// positional in this dialect, only the vertex index matters
		corner := fields[i]
		if slash := bytes.IndexByte(corner, '/'); slash >= 0 {
			corner = corner[:slash]
		}
		index, err := strconv.Atoi(string(corner))
		if err != nil {
			return p.failf("bad face index %q", fields[i])
		}
		if index <= 0 {
			return p.failf("face index %d out of range", index)
		}
		face[i] = index
	}

	group.Faces = append(group.Faces, face)
	for _, index := range face {
		group.UsedVerts[index-1] = struct{}{}
	}
	return nil
}

func (p *parser) handleLine(line []byte) error {
	fields := bytes.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	kind := classifyRecord(fields[0])
	fields = fields[1:]

	switch kind {
	case recordMtlLib:
		if len(fields) > 0 {
			p.rec.MtlFile = string(fields[0])
		}
	case recordVertex:
		return p.handleVertex(fields)
	case recordNormal:
		return p.handleNormal(fields)
	case recordUV:
		return p.handleUV(fields, 1)
	case recordUV2:
		return p.handleUV(fields, 2)
	case recordUV3:
		return p.handleUV(fields, 3)
	case recordObjectName:
		if len(fields) > 0 {
			p.rec.Name = config.DecodeName(fields[0])
		}
	case recordGroup:
		name := ""
		if len(fields) > 0 {
			name = config.DecodeName(fields[0])
		}
		p.rec.Groups = append(p.rec.Groups, newFaceGroup(name))
	case recordUseMaterial:
		group := p.currentGroup()
		if group == nil {
			return p.failf("usemtl before group")
		}
		if len(fields) > 0 {
			group.MaterialName = config.DecodeName(fields[0])
		}
	case recordFace:
		return p.handleFace(fields)
	case recordUnknown:
		// s, mtl comments and anything else the exporter grows
	}
	return nil
}

// Parse reads the obj stream top to bottom in one pass.
func Parse(r io.Reader) (*Record, error) {
	p := &parser{rec: &Record{}}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		p.line++
		if err := p.handleLine(scanner.Bytes()); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "Failed to read obj stream")
	}

	if err := p.rec.validate(); err != nil {
		return nil, err
	}

	log.Printf("[geometry] Read %d groups, %d total verts and %d total faces",
		len(p.rec.Groups), p.rec.TotalUsedVerts(), p.rec.TotalFaces())

	return p.rec, nil
}

func ParseFile(path string) (*Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to open %q", path)
	}
	defer f.Close()

	log.Printf("[geometry] Importing obj data from %q", path)
	return Parse(f)
}

// validate rejects face indexes past the vertex list. The exporter
// writes every vertex before the first face, so this runs once at
// end of stream instead of per face record.
func (r *Record) validate() error {
	for _, g := range r.Groups {
		for _, face := range g.Faces {
			for _, index := range face {
				if index < 1 || index > len(r.Verts) {
					return &MalformedGeometryError{
						Reason: fmt.Sprintf("group %q references vertex %d of %d",
							g.Name, index, len(r.Verts)),
					}
				}
			}
		}
	}
	return nil
}
