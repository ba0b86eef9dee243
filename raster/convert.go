package raster

import (
	"fmt"

	"pixbuf/layout"
	"pixbuf/pixel"
)

// ConvertTo changes the image's pixel type to t and its layout to cons,
// converting pixel values as needed. cons may be layout.Keep to retain
// the current declared constraints.
//
// Outcomes, in order: an image without a type errors; planar or
// compressed pixels on either side error; an image without data records
// the new type and constraints and succeeds; so does a zero-area image,
// its storage untouched. A same-type convert whose storage already
// satisfies cons is a no-op. Everything else builds a fresh layout and
// rewrites pixels through the conversion engine.
//
// Failures are transactional: the image is left exactly as it was.
func (im *Image) ConvertTo(t pixel.Type, cons layout.Constraints) error {
	im.err = nil
	if cons.IsKeep() {
		cons = im.cons
	}
	if im.typ == pixel.Unknown {
		im.err = fmt.Errorf("could not convert to %v: %w", t, ErrNoType)
		return im.err
	}
	if !im.typ.IsPlain() {
		im.err = fmt.Errorf("could not convert %v pixels: %w", im.typ, ErrUnsupportedType)
		return im.err
	}
	if !t.IsPlain() {
		im.err = fmt.Errorf("could not convert to %v: %w", t, ErrUnsupportedType)
		return im.err
	}
	if err := cons.Validate(); err != nil {
		im.err = fmt.Errorf("could not convert to %v: %w", t, err)
		return im.err
	}
	if im.storage == nil || im.w == 0 || im.h == 0 {
		im.typ = t
		im.cons = cons
		return nil
	}
	if t == im.typ && im.shape().AdHoc().Satisfies(cons) {
		im.cons = cons
		return nil
	}

	if t == im.typ {
		blk, err := layout.Alloc(t, im.w, im.h, cons, 0)
		if err != nil {
			im.err = fmt.Errorf("could not relayout %v image: %w", t, err)
			return im.err
		}
		rowBytes := im.RowBytes()
		for y := 0; y < im.h; y++ {
			copy(blk.Storage[blk.DataOff+y*blk.Pitch:][:rowBytes], im.Scanline(y))
		}
		im.install(blk, t, cons)
		return nil
	}

	// Distinct types run through an intermediate scanline: 8 bit RGBA
	// when both sides express losslessly in it, float RGBA otherwise.
	// When one side already is the intermediate its pass is skipped and
	// no scratch is needed; otherwise scratch rides in the same
	// allocation as the destination pixels.
	inter := pixel.RGBAF32
	if im.typ.FitsRGBA8() && t.FitsRGBA8() {
		inter = pixel.RGBA8
	}
	scratch := 0
	if im.typ != inter && t != inter {
		scratch = im.w * inter.Size()
	}
	blk, err := layout.Alloc(t, im.w, im.h, cons, scratch)
	if err != nil {
		im.err = fmt.Errorf("could not convert %v to %v: %w", im.typ, t, err)
		return im.err
	}
	var mid []byte
	if scratch > 0 {
		mid = blk.Storage[blk.ScratchOff : blk.ScratchOff+scratch]
	}
	rowBytes := im.w * t.Size()
	for y := 0; y < im.h; y++ {
		src := im.Scanline(y)
		dst := blk.Storage[blk.DataOff+y*blk.Pitch:][:rowBytes]
		switch {
		case im.typ == inter && inter == pixel.RGBA8:
			rowFromRGBA8(t, dst, src, im.w)
		case im.typ == inter:
			rowFromRGBAF32(t, dst, src, im.w)
		case t == inter && inter == pixel.RGBA8:
			rowToRGBA8(im.typ, dst, src, im.w)
		case t == inter:
			rowToRGBAF32(im.typ, dst, src, im.w)
		case inter == pixel.RGBA8:
			rowToRGBA8(im.typ, mid, src, im.w)
			rowFromRGBA8(t, dst, mid, im.w)
		default:
			rowToRGBAF32(im.typ, mid, src, im.w)
			rowFromRGBAF32(t, dst, mid, im.w)
		}
	}
	im.install(blk, t, cons)
	return nil
}

func (im *Image) install(blk layout.Block, t pixel.Type, cons layout.Constraints) {
	im.storage, im.dataOff, im.pitch = blk.Storage, blk.DataOff, blk.Pitch
	im.typ = t
	im.owned = true
	im.cons = cons
}

// ConvertToGreyscale converts to the luminance-only type at the current
// component depth, layout unchanged.
func (im *Image) ConvertToGreyscale() error {
	return im.ConvertTo(im.typ.Greyscale(), layout.Keep)
}

// ConvertToRGB converts to the three-channel type at the current
// component depth.
func (im *Image) ConvertToRGB() error {
	return im.ConvertTo(im.typ.RGB(), layout.Keep)
}

// AddAlpha extends the image with an opaque alpha channel.
func (im *Image) AddAlpha() error {
	return im.ConvertTo(im.typ.WithAlpha(), layout.Keep)
}

// DropAlpha discards the alpha channel.
func (im *Image) DropAlpha() error {
	return im.ConvertTo(im.typ.WithoutAlpha(), layout.Keep)
}

// ConvertTo8Bit forces 8 bit unsigned components.
func (im *Image) ConvertTo8Bit() error {
	return im.ConvertTo(im.typ.To8Bit(), layout.Keep)
}

// ConvertTo16Bit forces 16 bit unsigned components.
func (im *Image) ConvertTo16Bit() error {
	return im.ConvertTo(im.typ.To16Bit(), layout.Keep)
}

// ConvertToFloat forces 32 bit float components.
func (im *Image) ConvertToFloat() error {
	return im.ConvertTo(im.typ.ToFloat(), layout.Keep)
}

// CastTo reinterprets the existing scanline bytes as pixel type t
// without converting anything. Legal only when each scanline's byte
// length divides evenly by the new pixel size; the width rescales to
// match. Constraint fields counted in pixels no longer apply and are
// dropped from the declared set.
func (im *Image) CastTo(t pixel.Type) error {
	im.err = nil
	if im.typ == pixel.Unknown {
		im.err = fmt.Errorf("could not cast to %v: %w", t, ErrNoType)
		return im.err
	}
	if !im.typ.IsPlain() || !t.IsPlain() {
		im.err = fmt.Errorf("could not cast %v to %v: %w", im.typ, t, ErrUnsupportedType)
		return im.err
	}
	scanBytes := im.w * im.typ.Size()
	if scanBytes%t.Size() != 0 {
		im.err = fmt.Errorf("could not cast %v to %v across %d byte scanlines: %w",
			im.typ, t, scanBytes, ErrBadCast)
		return im.err
	}
	im.w = scanBytes / t.Size()
	im.typ = t
	im.cons = im.cons.BytePreserving()
	return nil
}
