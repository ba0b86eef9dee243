// Package pixel enumerates the pixel formats a raster image can carry and
// answers static questions about them: component depth, channel count,
// storage size and the related type at another shape or depth.
package pixel

// Type identifies a pixel format.
//
// The zero value is Unknown. The concrete formats combine a channel layout
// (luminance, luminance+alpha, RGB, RGBA) with a component depth (8 or
// 16 bit unsigned, or 32 bit float). Planar and Compressed tag storage
// schemes that are recognised but not operated on; everything that needs
// directly addressable pixels rejects them.
type Type uint8

const (
	Unknown Type = iota

	L8
	L16
	LF32
	LA8
	LA16
	LAF32
	RGB8
	RGB16
	RGBF32
	RGBA8
	RGBA16
	RGBAF32

	Planar
	Compressed

	typeCount
)

type info struct {
	name     string
	size     uint8 // bytes per pixel
	channels uint8
	depth    uint8 // bits per component
	float    bool
	alpha    bool
	grey     bool
}

var infoTable = [typeCount]info{
	Unknown:    {name: "unknown"},
	L8:         {name: "l8", size: 1, channels: 1, depth: 8, grey: true},
	L16:        {name: "l16", size: 2, channels: 1, depth: 16, grey: true},
	LF32:       {name: "lf32", size: 4, channels: 1, depth: 32, float: true, grey: true},
	LA8:        {name: "la8", size: 2, channels: 2, depth: 8, alpha: true, grey: true},
	LA16:       {name: "la16", size: 4, channels: 2, depth: 16, alpha: true, grey: true},
	LAF32:      {name: "laf32", size: 8, channels: 2, depth: 32, float: true, alpha: true, grey: true},
	RGB8:       {name: "rgb8", size: 3, channels: 3, depth: 8},
	RGB16:      {name: "rgb16", size: 6, channels: 3, depth: 16},
	RGBF32:     {name: "rgbf32", size: 12, channels: 3, depth: 32, float: true},
	RGBA8:      {name: "rgba8", size: 4, channels: 4, depth: 8, alpha: true},
	RGBA16:     {name: "rgba16", size: 8, channels: 4, depth: 16, alpha: true},
	RGBAF32:    {name: "rgbaf32", size: 16, channels: 4, depth: 32, float: true, alpha: true},
	Planar:     {name: "planar"},
	Compressed: {name: "compressed"},
}

// IsValid reports whether t is one of the defined tags.
func (t Type) IsValid() bool {
	return t < typeCount
}

func (t Type) String() string {
	if !t.IsValid() {
		return "invalid"
	}
	return infoTable[t].name
}

// Size returns the storage size of one pixel in bytes, 0 for types
// without directly addressable pixels.
func (t Type) Size() int {
	if !t.IsValid() {
		return 0
	}
	return int(infoTable[t].size)
}

// Channels returns the number of components per pixel.
func (t Type) Channels() int {
	if !t.IsValid() {
		return 0
	}
	return int(infoTable[t].channels)
}

// BitDepth returns the bits per component: 8, 16 or 32.
func (t Type) BitDepth() int {
	if !t.IsValid() {
		return 0
	}
	return int(infoTable[t].depth)
}

// IsFloat reports whether components are 32 bit floats rather than
// normalised unsigned integers.
func (t Type) IsFloat() bool {
	return t.IsValid() && infoTable[t].float
}

// HasAlpha reports whether the format carries an alpha channel.
func (t Type) HasAlpha() bool {
	return t.IsValid() && infoTable[t].alpha
}

// IsGreyscale reports whether the colour information is a single
// luminance channel.
func (t Type) IsGreyscale() bool {
	return t.IsValid() && infoTable[t].grey
}

// IsPlain reports whether pixels are stored interleaved at a fixed size,
// i.e. whether per-pixel addressing is possible.
func (t Type) IsPlain() bool {
	return t >= L8 && t <= RGBAF32
}

func (t Type) IsPlanar() bool {
	return t == Planar
}

func (t Type) IsCompressed() bool {
	return t == Compressed
}

// FitsRGBA8 reports whether every value of t converts to 8 bit RGBA and
// back without loss. Exactly the 8 bit formats qualify.
func (t Type) FitsRGBA8() bool {
	return t.IsPlain() && infoTable[t].depth == 8 && !infoTable[t].float
}

// Greyscale returns the luminance-only format at the same component
// depth. Formats that are not plain map to themselves.
func (t Type) Greyscale() Type {
	switch t {
	case L8, LA8, RGB8, RGBA8:
		return L8
	case L16, LA16, RGB16, RGBA16:
		return L16
	case LF32, LAF32, RGBF32, RGBAF32:
		return LF32
	}
	return t
}

// RGB returns the three-channel format at the same component depth.
func (t Type) RGB() Type {
	switch t {
	case L8, LA8, RGB8, RGBA8:
		return RGB8
	case L16, LA16, RGB16, RGBA16:
		return RGB16
	case LF32, LAF32, RGBF32, RGBAF32:
		return RGBF32
	}
	return t
}

// WithAlpha returns the format extended with an alpha channel.
func (t Type) WithAlpha() Type {
	switch t {
	case L8:
		return LA8
	case L16:
		return LA16
	case LF32:
		return LAF32
	case RGB8:
		return RGBA8
	case RGB16:
		return RGBA16
	case RGBF32:
		return RGBAF32
	}
	return t
}

// WithoutAlpha returns the format with the alpha channel dropped.
func (t Type) WithoutAlpha() Type {
	switch t {
	case LA8:
		return L8
	case LA16:
		return L16
	case LAF32:
		return LF32
	case RGBA8:
		return RGB8
	case RGBA16:
		return RGB16
	case RGBAF32:
		return RGBF32
	}
	return t
}

// To8Bit returns the format with 8 bit unsigned components.
func (t Type) To8Bit() Type {
	switch t {
	case L16, LF32:
		return L8
	case LA16, LAF32:
		return LA8
	case RGB16, RGBF32:
		return RGB8
	case RGBA16, RGBAF32:
		return RGBA8
	}
	return t
}

// To16Bit returns the format with 16 bit unsigned components.
func (t Type) To16Bit() Type {
	switch t {
	case L8, LF32:
		return L16
	case LA8, LAF32:
		return LA16
	case RGB8, RGBF32:
		return RGB16
	case RGBA8, RGBAF32:
		return RGBA16
	}
	return t
}

// ToFloat returns the format with 32 bit float components.
func (t Type) ToFloat() Type {
	switch t {
	case L8, L16:
		return LF32
	case LA8, LA16:
		return LAF32
	case RGB8, RGB16:
		return RGBF32
	case RGBA8, RGBA16:
		return RGBAF32
	}
	return t
}

// ParseType returns the type whose String form is s.
func ParseType(s string) (Type, bool) {
	for t := Type(0); t < typeCount; t++ {
		if infoTable[t].name == s {
			return t, true
		}
	}
	return Unknown, false
}
