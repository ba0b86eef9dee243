package raster

// premul8 scales an 8 bit component by an 8 bit alpha, rounding to
// nearest.
func premul8(c, a uint8) uint8 {
	return uint8((int(c)*int(a) + 127) / 255)
}

func premul16(c, a uint16) uint16 {
	return uint16((int(c)*int(a) + 32767) / 65535)
}

// unpremul8 undoes premul8. Zero alpha maps to zero: the colour is
// unrecoverable.
func unpremul8(c, a uint8) uint8 {
	if a == 0 {
		return 0
	}
	v := (int(c)*255 + int(a)/2) / int(a)
	if v > 255 {
		v = 255
	}
	return uint8(v)
}

func unpremul16(c, a uint16) uint16 {
	if a == 0 {
		return 0
	}
	v := (int(c)*65535 + int(a)/2) / int(a)
	if v > 65535 {
		v = 65535
	}
	return uint16(v)
}

// Premultiply scales the colour channels by alpha in place. Images
// without an alpha channel are left unchanged; they are opaque and
// already their own premultiplied form.
func (im *Image) Premultiply() {
	im.mustData("Premultiply")
	im.mustPlain("Premultiply")
	im.err = nil
	im.mapAlpha(premul8, premul16, func(c, a float32) float32 { return c * a })
}

// Unpremultiply divides the colour channels by alpha in place, the
// inverse of Premultiply where alpha is nonzero.
func (im *Image) Unpremultiply() {
	im.mustData("Unpremultiply")
	im.mustPlain("Unpremultiply")
	im.err = nil
	im.mapAlpha(unpremul8, unpremul16, func(c, a float32) float32 {
		if a == 0 {
			return 0
		}
		return c / a
	})
}

func (im *Image) mapAlpha(f8 func(c, a uint8) uint8, f16 func(c, a uint16) uint16, ff func(c, a float32) float32) {
	if !im.typ.HasAlpha() {
		return
	}
	colours := im.typ.Channels() - 1
	for y := 0; y < im.h; y++ {
		row := im.Scanline(y)
		switch im.typ.BitDepth() {
		case 8:
			step := im.typ.Size()
			for x := 0; x < im.w; x++ {
				px := row[x*step:]
				a := px[colours]
				for c := 0; c < colours; c++ {
					px[c] = f8(px[c], a)
				}
			}
		case 16:
			step := im.typ.Size()
			for x := 0; x < im.w; x++ {
				px := row[x*step:]
				a := getU16(px[colours*2:])
				for c := 0; c < colours; c++ {
					putU16(px[c*2:], f16(getU16(px[c*2:]), a))
				}
			}
		default:
			step := im.typ.Size()
			for x := 0; x < im.w; x++ {
				px := row[x*step:]
				a := getF32(px[colours*4:])
				for c := 0; c < colours; c++ {
					putF32(px[c*4:], ff(getF32(px[c*4:]), a))
				}
			}
		}
	}
}
