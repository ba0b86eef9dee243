package raster

import (
	"encoding/binary"
	"fmt"
	"math"

	"pixbuf/pixel"
)

// Scanline bytes are little-endian regardless of host: 16 bit
// components via binary.LittleEndian, float components as
// math.Float32bits in little-endian order.

func getU16(b []byte) uint16     { return binary.LittleEndian.Uint16(b) }
func putU16(b []byte, v uint16)  { binary.LittleEndian.PutUint16(b, v) }
func getF32(b []byte) float32    { return math.Float32frombits(binary.LittleEndian.Uint32(b)) }
func putF32(b []byte, v float32) { binary.LittleEndian.PutUint32(b, math.Float32bits(v)) }

// grey8 is the luminance of an 8 bit RGB triple: the arithmetic mean,
// rounded to nearest. No exact .5 ties exist for a sum of three.
func grey8(r, g, b uint8) uint8 {
	return uint8((2*(int(r)+int(g)+int(b)) + 3) / 6)
}

func grey16(r, g, b uint16) uint16 {
	return uint16((2*(int(r)+int(g)+int(b)) + 3) / 6)
}

// q8 quantises a normalised float to 8 bits: clamp to [0,1], scale,
// round to nearest by adding one half and truncating.
func q8(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}

func q16(v float32) uint16 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 65535
	}
	return uint16(v*65535 + 0.5)
}

func n8(v uint8) float32   { return float32(v) / 255 }
func n16(v uint16) float32 { return float32(v) / 65535 }

// rowToRGBA8 expands one scanline of an 8 bit type into the 8 bit RGBA
// intermediate: luminance replicated across RGB, missing alpha opaque.
func rowToRGBA8(t pixel.Type, dst, src []byte, w int) {
	switch t {
	case pixel.L8:
		for i := 0; i < w; i++ {
			d := dst[i*4 : i*4+4]
			d[0], d[1], d[2], d[3] = src[i], src[i], src[i], 255
		}
	case pixel.LA8:
		for i := 0; i < w; i++ {
			s := src[i*2 : i*2+2]
			d := dst[i*4 : i*4+4]
			d[0], d[1], d[2], d[3] = s[0], s[0], s[0], s[1]
		}
	case pixel.RGB8:
		for i := 0; i < w; i++ {
			s := src[i*3 : i*3+3]
			d := dst[i*4 : i*4+4]
			d[0], d[1], d[2], d[3] = s[0], s[1], s[2], 255
		}
	case pixel.RGBA8:
		copy(dst[:w*4], src)
	default:
		panic(fmt.Sprintf("raster: no 8 bit intermediate path for %v", t))
	}
}

// rowFromRGBA8 folds the 8 bit RGBA intermediate into one scanline of
// an 8 bit type: mean for luminance, alpha dropped on request.
func rowFromRGBA8(t pixel.Type, dst, src []byte, w int) {
	switch t {
	case pixel.L8:
		for i := 0; i < w; i++ {
			s := src[i*4 : i*4+4]
			dst[i] = grey8(s[0], s[1], s[2])
		}
	case pixel.LA8:
		for i := 0; i < w; i++ {
			s := src[i*4 : i*4+4]
			d := dst[i*2 : i*2+2]
			d[0], d[1] = grey8(s[0], s[1], s[2]), s[3]
		}
	case pixel.RGB8:
		for i := 0; i < w; i++ {
			s := src[i*4 : i*4+4]
			d := dst[i*3 : i*3+3]
			d[0], d[1], d[2] = s[0], s[1], s[2]
		}
	case pixel.RGBA8:
		copy(dst[:w*4], src)
	default:
		panic(fmt.Sprintf("raster: no 8 bit intermediate path for %v", t))
	}
}

// rowToRGBAF32 expands one scanline of any plain type into the float
// RGBA intermediate.
func rowToRGBAF32(t pixel.Type, dst, src []byte, w int) {
	switch t {
	case pixel.L8:
		for i := 0; i < w; i++ {
			d := dst[i*16:]
			v := n8(src[i])
			putF32(d[0:], v)
			putF32(d[4:], v)
			putF32(d[8:], v)
			putF32(d[12:], 1)
		}
	case pixel.L16:
		for i := 0; i < w; i++ {
			d := dst[i*16:]
			v := n16(getU16(src[i*2:]))
			putF32(d[0:], v)
			putF32(d[4:], v)
			putF32(d[8:], v)
			putF32(d[12:], 1)
		}
	case pixel.LF32:
		for i := 0; i < w; i++ {
			d := dst[i*16:]
			v := getF32(src[i*4:])
			putF32(d[0:], v)
			putF32(d[4:], v)
			putF32(d[8:], v)
			putF32(d[12:], 1)
		}
	case pixel.LA8:
		for i := 0; i < w; i++ {
			d := dst[i*16:]
			s := src[i*2 : i*2+2]
			v := n8(s[0])
			putF32(d[0:], v)
			putF32(d[4:], v)
			putF32(d[8:], v)
			putF32(d[12:], n8(s[1]))
		}
	case pixel.LA16:
		for i := 0; i < w; i++ {
			d := dst[i*16:]
			s := src[i*4:]
			v := n16(getU16(s))
			putF32(d[0:], v)
			putF32(d[4:], v)
			putF32(d[8:], v)
			putF32(d[12:], n16(getU16(s[2:])))
		}
	case pixel.LAF32:
		for i := 0; i < w; i++ {
			d := dst[i*16:]
			s := src[i*8:]
			v := getF32(s)
			putF32(d[0:], v)
			putF32(d[4:], v)
			putF32(d[8:], v)
			putF32(d[12:], getF32(s[4:]))
		}
	case pixel.RGB8:
		for i := 0; i < w; i++ {
			d := dst[i*16:]
			s := src[i*3 : i*3+3]
			putF32(d[0:], n8(s[0]))
			putF32(d[4:], n8(s[1]))
			putF32(d[8:], n8(s[2]))
			putF32(d[12:], 1)
		}
	case pixel.RGB16:
		for i := 0; i < w; i++ {
			d := dst[i*16:]
			s := src[i*6:]
			putF32(d[0:], n16(getU16(s)))
			putF32(d[4:], n16(getU16(s[2:])))
			putF32(d[8:], n16(getU16(s[4:])))
			putF32(d[12:], 1)
		}
	case pixel.RGBF32:
		for i := 0; i < w; i++ {
			d := dst[i*16:]
			s := src[i*12:]
			putF32(d[0:], getF32(s))
			putF32(d[4:], getF32(s[4:]))
			putF32(d[8:], getF32(s[8:]))
			putF32(d[12:], 1)
		}
	case pixel.RGBA8:
		for i := 0; i < w; i++ {
			d := dst[i*16:]
			s := src[i*4 : i*4+4]
			putF32(d[0:], n8(s[0]))
			putF32(d[4:], n8(s[1]))
			putF32(d[8:], n8(s[2]))
			putF32(d[12:], n8(s[3]))
		}
	case pixel.RGBA16:
		for i := 0; i < w; i++ {
			d := dst[i*16:]
			s := src[i*8:]
			putF32(d[0:], n16(getU16(s)))
			putF32(d[4:], n16(getU16(s[2:])))
			putF32(d[8:], n16(getU16(s[4:])))
			putF32(d[12:], n16(getU16(s[6:])))
		}
	case pixel.RGBAF32:
		copy(dst[:w*16], src)
	default:
		panic(fmt.Sprintf("raster: no float intermediate path for %v", t))
	}
}

// rowFromRGBAF32 folds the float RGBA intermediate into one scanline of
// any plain type.
func rowFromRGBAF32(t pixel.Type, dst, src []byte, w int) {
	if t == pixel.RGBAF32 {
		copy(dst[:w*16], src)
		return
	}
	for i := 0; i < w; i++ {
		s := src[i*16:]
		r := getF32(s[0:])
		g := getF32(s[4:])
		b := getF32(s[8:])
		a := getF32(s[12:])
		switch t {
		case pixel.L8:
			dst[i] = q8((r + g + b) / 3)
		case pixel.L16:
			putU16(dst[i*2:], q16((r+g+b)/3))
		case pixel.LF32:
			putF32(dst[i*4:], (r+g+b)/3)
		case pixel.LA8:
			d := dst[i*2 : i*2+2]
			d[0], d[1] = q8((r+g+b)/3), q8(a)
		case pixel.LA16:
			d := dst[i*4:]
			putU16(d, q16((r+g+b)/3))
			putU16(d[2:], q16(a))
		case pixel.LAF32:
			d := dst[i*8:]
			putF32(d, (r+g+b)/3)
			putF32(d[4:], a)
		case pixel.RGB8:
			d := dst[i*3 : i*3+3]
			d[0], d[1], d[2] = q8(r), q8(g), q8(b)
		case pixel.RGB16:
			d := dst[i*6:]
			putU16(d, q16(r))
			putU16(d[2:], q16(g))
			putU16(d[4:], q16(b))
		case pixel.RGBF32:
			d := dst[i*12:]
			putF32(d, r)
			putF32(d[4:], g)
			putF32(d[8:], b)
		case pixel.RGBA8:
			d := dst[i*4 : i*4+4]
			d[0], d[1], d[2], d[3] = q8(r), q8(g), q8(b), q8(a)
		case pixel.RGBA16:
			d := dst[i*8:]
			putU16(d, q16(r))
			putU16(d[2:], q16(g))
			putU16(d[4:], q16(b))
			putU16(d[6:], q16(a))
		default:
			panic(fmt.Sprintf("raster: no float intermediate path for %v", t))
		}
	}
}
