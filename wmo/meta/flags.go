package meta

import "strings"

// GroupFlags is the MOGP flags word of a wmo group.
type GroupFlags uint32

const (
	GroupFlagHasBSP          GroupFlags = 0x1
	GroupFlagHasVertexColors GroupFlags = 0x4
	GroupFlagExterior        GroupFlags = 0x8
	GroupFlagExteriorLit     GroupFlags = 0x40
	GroupFlagUnreachable     GroupFlags = 0x80
	GroupFlagShowExteriorSky GroupFlags = 0x100
	GroupFlagHasLights       GroupFlags = 0x200
	GroupFlagHasDoodads      GroupFlags = 0x800
	GroupFlagHasWater        GroupFlags = 0x1000
	GroupFlagInterior        GroupFlags = 0x2000
	GroupFlagAlwaysDraw      GroupFlags = 0x10000
	GroupFlagShowSkybox      GroupFlags = 0x40000
	GroupFlagIsOcean         GroupFlags = 0x80000
	GroupFlagMountAllowed    GroupFlags = 0x200000
	GroupFlagHasTwoMOCV      GroupFlags = 0x1000000
	GroupFlagHasTwoMOTV      GroupFlags = 0x2000000
	GroupFlagAntiportal      GroupFlags = 0x4000000
	GroupFlagHasThreeMOTV    GroupFlags = 0x40000000
)

var groupFlagNames = []struct {
	flag GroupFlags
	name string
}{
	{GroupFlagHasBSP, "HAS_BSP"},
	{GroupFlagHasVertexColors, "HAS_VERTEX_COLORS"},
	{GroupFlagExterior, "EXTERIOR"},
	{GroupFlagExteriorLit, "EXTERIOR_LIT"},
	{GroupFlagUnreachable, "UNREACHABLE"},
	{GroupFlagShowExteriorSky, "SHOW_EXTERIOR_SKY"},
	{GroupFlagHasLights, "HAS_LIGHTS"},
	{GroupFlagHasDoodads, "HAS_DOODADS"},
	{GroupFlagHasWater, "HAS_WATER"},
	{GroupFlagInterior, "INTERIOR"},
	{GroupFlagAlwaysDraw, "ALWAYS_DRAW"},
	{GroupFlagShowSkybox, "SHOW_SKYBOX"},
	{GroupFlagIsOcean, "IS_OCEAN"},
	{GroupFlagMountAllowed, "MOUNT_ALLOWED"},
	{GroupFlagHasTwoMOCV, "HAS_TWO_MOCV"},
	{GroupFlagHasTwoMOTV, "HAS_TWO_MOTV"},
	{GroupFlagAntiportal, "ANTIPORTAL"},
	{GroupFlagHasThreeMOTV, "HAS_THREE_MOTV"},
}

func (f GroupFlags) Has(flag GroupFlags) bool {
	return f&flag != 0
}

// Names decodes the bitmask into the flag name set.
func (f GroupFlags) Names() []string {
	names := make([]string, 0)
	for _, fn := range groupFlagNames {
		if f.Has(fn.flag) {
			names = append(names, fn.name)
		}
	}
	return names
}

func (f GroupFlags) String() string {
	return strings.Join(f.Names(), "|")
}

// LightingType classifies how a group is lit in the client.
type LightingType int

const (
	LightingUnlit LightingType = iota
	LightingInterior
	LightingExterior
	LightingTransition
)

func (l LightingType) String() string {
	switch l {
	case LightingInterior:
		return "INTERIOR"
	case LightingExterior:
		return "EXTERIOR"
	case LightingTransition:
		return "TRANSITION"
	default:
		return "UNLIT"
	}
}

// Lighting derives the classification from the interior/exterior bits.
// Groups bridging indoor and outdoor carry both and blend between the
// two lighting models.
func (f GroupFlags) Lighting() LightingType {
	interior := f.Has(GroupFlagInterior)
	exterior := f.Has(GroupFlagExterior)
	switch {
	case interior && exterior:
		return LightingTransition
	case interior:
		return LightingInterior
	case exterior:
		return LightingExterior
	default:
		return LightingUnlit
	}
}
