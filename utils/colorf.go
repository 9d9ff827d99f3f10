package utils

type ColorFloat [4]float32

func (c *ColorFloat) RGBA() (r, g, b, a uint32) {
	const mf = float32(256*256 - 1)
	r = uint32(c[0] * mf)
	g = uint32(c[1] * mf)
	b = uint32(c[2] * mf)
	a = uint32(c[3] * mf)
	return
}

func NewColorFloat(c []float32) ColorFloat {
	return ColorFloat{c[0], c[1], c[2], 1.0}
}

// Packed 32bit color layouts used by wow.export metadata.
type PackedColorFormat int

const (
	CImVector PackedColorFormat = iota // blue in the low byte (vertex colors, ambientColor)
	CArgb                              // red in the low byte (material color fields)
)

// DecodePackedColor unpacks a 32bit integer color into normalized rgba.
func DecodePackedColor(packed uint32, format PackedColorFormat) ColorFloat {
	var r, g, b uint8
	switch format {
	case CImVector:
		b = uint8(packed)
		g = uint8(packed >> 8)
		r = uint8(packed >> 16)
	case CArgb:
		r = uint8(packed)
		g = uint8(packed >> 8)
		b = uint8(packed >> 16)
	}
	a := uint8(packed >> 24)
	return ColorFloat{
		float32(r) / 255.0,
		float32(g) / 255.0,
		float32(b) / 255.0,
		float32(a) / 255.0,
	}
}
