package meta

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// WmoMarker must appear in the metadata fileName field. Importing the
// json sidecar of an m2 or adt export is a hard error, not a decode
// error.
const WmoMarker = ".wmo"

// ErrWrongFileKind reports metadata that describes something other
// than a wmo.
var ErrWrongFileKind = errors.New("metadata does not describe a wmo file")

// MissingFieldError reports a required field absent from the document.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("metadata field %q is missing", e.Field)
}

// InvalidFieldError reports a field present with an unusable value.
type InvalidFieldError struct {
	Field string
	Err   error
}

func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf("metadata field %q is invalid: %v", e.Field, e.Err)
}

// BatchFlagUseBox2 redirects material lookup: a render batch with this
// exact flags value stores its real material id in possibleBox2[2].
const BatchFlagUseBox2 = 2

// RenderBatch is one draw batch of a wmo group: a contiguous vertex
// range with one material. Corresponds 1:1 with an obj face group.
type RenderBatch struct {
	FirstVertex  int    `json:"firstVertex"`
	LastVertex   int    `json:"lastVertex"` // inclusive
	MaterialID   int    `json:"materialID"`
	Flags        uint32 `json:"flags"`
	PossibleBox2 [3]int `json:"possibleBox2"`
}

func (b *RenderBatch) VertexCount() int {
	if b.LastVertex < b.FirstVertex {
		return 0
	}
	return b.LastVertex - b.FirstVertex + 1
}

// EffectiveMaterialID resolves the BatchFlagUseBox2 indirection.
func (b *RenderBatch) EffectiveMaterialID() int {
	if b.Flags == BatchFlagUseBox2 {
		return b.PossibleBox2[2]
	}
	return b.MaterialID
}

// Group describes one wmo group: its render batches plus the raw MOCV
// vertex-color layers. Color layers cover collision-only verts too, so
// they may be longer than the count of verts present in geometry.
type Group struct {
	GroupName        string        `json:"groupName"`
	GroupDescription string        `json:"groupDescription"`
	Flags            GroupFlags    `json:"flags"`
	NumPortals       int           `json:"numPortals"`
	NumBatchesA      int           `json:"numBatchesA"`
	NumBatchesB      int           `json:"numBatchesB"`
	NumBatchesC      int           `json:"numBatchesC"`
	RenderBatches    []RenderBatch `json:"renderBatches"`
	VertexColours    [][]uint32    `json:"vertexColours"`
}

// VertexCount is lastVertex+1 of the final render batch, the group's
// own notion of how many visual verts it has.
func (g *Group) VertexCount() int {
	if len(g.RenderBatches) == 0 {
		return 0
	}
	return g.RenderBatches[len(g.RenderBatches)-1].LastVertex + 1
}

type Material struct {
	Texture1 int    `json:"texture1"`
	Texture2 int    `json:"texture2"`
	Texture3 int    `json:"texture3"`
	Color2   uint32 `json:"color2"`
}

// Metadata is the decoded json sidecar for one wmo export.
type Metadata struct {
	FileName     string
	Groups       []Group
	Materials    []Material
	AmbientColor uint32
}

// raw mirrors Metadata with pointer fields so absent and present-but-
// invalid requireds can be told apart after unmarshal.
type rawMetadata struct {
	FileName     *string     `json:"fileName"`
	Groups       *[]Group    `json:"groups"`
	Materials    *[]Material `json:"materials"`
	AmbientColor *uint32     `json:"ambientColor"`
}

func fieldError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return &InvalidFieldError{Field: typeErr.Field, Err: err}
	}
	return errors.Wrapf(err, "Failed to decode metadata")
}

// Decode validates and decodes a metadata document. The fileName kind
// check runs before structural decode so a non-wmo sidecar reports
// ErrWrongFileKind instead of a schema mismatch.
func Decode(data []byte) (*Metadata, error) {
	var kind struct {
		FileName *string `json:"fileName"`
	}
	if err := json.Unmarshal(data, &kind); err != nil {
		return nil, fieldError(err)
	}
	if kind.FileName == nil {
		return nil, &MissingFieldError{Field: "fileName"}
	}
	if !strings.Contains(*kind.FileName, WmoMarker) {
		return nil, errors.Wrapf(ErrWrongFileKind, "fileName %q", *kind.FileName)
	}

	var raw rawMetadata
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fieldError(err)
	}
	if raw.Groups == nil {
		return nil, &MissingFieldError{Field: "groups"}
	}
	if raw.Materials == nil {
		return nil, &MissingFieldError{Field: "materials"}
	}
	if raw.AmbientColor == nil {
		return nil, &MissingFieldError{Field: "ambientColor"}
	}

	m := &Metadata{
		FileName:     *raw.FileName,
		Groups:       *raw.Groups,
		Materials:    *raw.Materials,
		AmbientColor: *raw.AmbientColor,
	}
	for iGroup := range m.Groups {
		for iBatch := range m.Groups[iGroup].RenderBatches {
			b := &m.Groups[iGroup].RenderBatches[iBatch]
			if b.FirstVertex < 0 {
				return nil, &InvalidFieldError{
					Field: fmt.Sprintf("groups[%d].renderBatches[%d].firstVertex", iGroup, iBatch),
					Err:   errors.Errorf("negative vertex index %d", b.FirstVertex),
				}
			}
			if id := b.EffectiveMaterialID(); id < 0 || id >= len(m.Materials) {
				return nil, &InvalidFieldError{
					Field: fmt.Sprintf("groups[%d].renderBatches[%d].materialID", iGroup, iBatch),
					Err:   errors.Errorf("material %d of %d", id, len(m.Materials)),
				}
			}
		}
	}
	return m, nil
}

// LoadFile reads and decodes the json sidecar. An absent or empty
// sidecar is fatal: without metadata nothing can be reconciled.
func LoadFile(path string) (*Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to load metadata from %q", path)
	}
	if len(data) == 0 {
		return nil, errors.Errorf("Metadata file %q is empty", path)
	}
	return Decode(data)
}
