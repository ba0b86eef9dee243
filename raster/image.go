// Package raster implements an in-memory image container: pixels of one
// of the catalogued formats behind a signed-pitch scanline layout, with
// conversion between formats, geometric flips and codec-driven load and
// save. The container itself is not safe for concurrent mutation; the
// codec registry is.
package raster

import (
	"errors"
	"fmt"
	"unsafe"

	"pixbuf/layout"
	"pixbuf/pixel"
)

var (
	ErrNoType          = errors.New("raster: image has no pixel type")
	ErrUnsupportedType = errors.New("raster: unsupported pixel type")
	ErrTypeMismatch    = errors.New("raster: pixel types do not match")
	ErrSizeMismatch    = errors.New("raster: image dimensions do not match")
	ErrBadCast         = errors.New("raster: scanline bytes not divisible by new pixel size")
	ErrBadView         = errors.New("raster: view does not fit its buffer")
	ErrUnknownFormat   = errors.New("raster: stream matches no registered format")
	ErrNoCodec         = errors.New("raster: no such format registered")
	ErrNoPixelsHere    = errors.New("raster: decoder produced no image")
	ErrNoEncoder       = errors.New("raster: format cannot encode")
	ErrBadFlags        = errors.New("raster: conflicting load flags")
)

// Image is a pixel container. The zero value is a valid empty image with
// no type and no data; SetSize, InitNoData, Wrap or a load give it
// content. Scanline addressing runs through a (storage, offset, pitch)
// triple so bottom-up images are plain images with a negative pitch.
//
// Operations that require a capability the image lacks (pixel data,
// plain pixels, owned storage) panic: that is a programming error, not a
// runtime condition. Recoverable failures return errors and are also
// recorded for Err.
type Image struct {
	typ     pixel.Type
	w, h    int
	pitch   int // signed bytes between logical scanlines
	storage []byte
	dataOff int // offset of logical scanline 0 in storage
	owned   bool
	cons    layout.Constraints
	err     error
}

// New allocates a width by height image of pixel type t laid out per
// cons.
func New(width, height int, t pixel.Type, cons layout.Constraints) (*Image, error) {
	im := &Image{}
	if err := im.SetSize(width, height, t, cons); err != nil {
		return nil, err
	}
	return im, nil
}

func (im *Image) Width() int                      { return im.w }
func (im *Image) Height() int                     { return im.h }
func (im *Image) Type() pixel.Type                { return im.typ }
func (im *Image) Constraints() layout.Constraints { return im.cons }

// PitchBytes returns the signed byte distance between logical
// scanlines. Negative means bottom-up storage.
func (im *Image) PitchBytes() int { return im.pitch }

// Err returns the error recorded by the most recent failed operation,
// or nil. Every mutating operation clears it first.
func (im *Image) Err() error { return im.err }

func (im *Image) HasType() bool        { return im.typ != pixel.Unknown }
func (im *Image) HasData() bool        { return im.storage != nil }
func (im *Image) HasNonZeroSize() bool { return im.w > 0 && im.h > 0 }
func (im *Image) HasPlainPixels() bool { return im.typ.IsPlain() }
func (im *Image) IsPlanar() bool       { return im.typ.IsPlanar() }
func (im *Image) IsCompressed() bool   { return im.typ.IsCompressed() }
func (im *Image) IsOwned() bool        { return im.owned }

// IsStoredUpsideDown reports whether logical scanline 0 sits last in
// memory.
func (im *Image) IsStoredUpsideDown() bool { return im.pitch < 0 }

// IsGapless reports whether the pixel region has no padding between the
// declared width and the pitch.
func (im *Image) IsGapless() bool {
	if im.storage == nil || !im.typ.IsPlain() {
		return false
	}
	if im.h <= 1 || im.w == 0 {
		return true
	}
	p := im.pitch
	if p < 0 {
		p = -p
	}
	return p == im.w*im.typ.Size()
}

// RowBytes returns the byte length of one scanline's pixels.
func (im *Image) RowBytes() int { return im.w * im.typ.Size() }

// AdHocConstraints derives the strongest constraint set the current
// storage actually honours, regardless of what was requested.
func (im *Image) AdHocConstraints() layout.Constraints {
	return im.shape().AdHoc()
}

func (im *Image) shape() layout.Shape {
	var addr uintptr
	if len(im.storage) > 0 {
		addr = uintptr(unsafe.Pointer(unsafe.SliceData(im.storage)))
	}
	return layout.Shape{
		Addr:      addr,
		Length:    len(im.storage),
		DataOff:   im.dataOff,
		Pitch:     im.pitch,
		Width:     im.w,
		Height:    im.h,
		PixelSize: im.typ.Size(),
		Declared:  im.cons,
	}
}

func (im *Image) mustData(op string) {
	if im.storage == nil {
		panic("raster: " + op + ": image has no pixel data")
	}
}

func (im *Image) mustPlain(op string) {
	if !im.typ.IsPlain() {
		panic("raster: " + op + ": image pixels are not plain")
	}
}

func (im *Image) mustOwned(op string) {
	if !im.owned {
		panic("raster: " + op + ": image does not own its storage")
	}
}

// release drops the storage reference without touching type or
// dimensions.
func (im *Image) release() {
	im.storage = nil
	im.dataOff = 0
	im.pitch = 0
	im.owned = false
}

// reset returns the image to the empty state.
func (im *Image) reset() {
	im.release()
	im.typ = pixel.Unknown
	im.w, im.h = 0, 0
	im.cons = layout.Default
	im.err = nil
}

// fail resets the image and records err, the well-defined errored state
// after a failed load.
func (im *Image) fail(err error) {
	im.reset()
	im.err = err
}

// Scanline returns the pixel bytes of logical row y. The slice length
// is exactly RowBytes; its capacity extends to the end of storage so
// layouts with trailing guarantees can be exploited deliberately.
func (im *Image) Scanline(y int) []byte {
	im.mustData("Scanline")
	im.mustPlain("Scanline")
	if y < 0 || y >= im.h {
		panic(fmt.Sprintf("raster: Scanline: row %d out of range [0,%d)", y, im.h))
	}
	start := im.dataOff + y*im.pitch
	return im.storage[start : start+im.RowBytes()]
}

// AllPixels returns the whole pixel region as one slice. Legal only for
// gapless images stored top-down, where scanlines are consecutive.
func (im *Image) AllPixels() []byte {
	im.mustData("AllPixels")
	im.mustPlain("AllPixels")
	if !im.IsGapless() || (im.pitch < 0 && im.h > 1) {
		panic("raster: AllPixels: pixels are not one contiguous top-down run")
	}
	return im.storage[im.dataOff : im.dataOff+im.h*im.RowBytes()]
}

// SetSize gives the image fresh owned storage for a width by height
// grid of pixel type t laid out per cons. Prior pixel content is not
// preserved; prior owned storage is dropped. Zero-area sizes are valid
// and allocate an empty but addressable pixel region.
func (im *Image) SetSize(width, height int, t pixel.Type, cons layout.Constraints) error {
	im.err = nil
	blk, err := layout.Alloc(t, width, height, cons, 0)
	if err != nil {
		im.err = fmt.Errorf("could not size image to %dx%d %v: %w", width, height, t, err)
		return im.err
	}
	im.release()
	im.typ, im.w, im.h = t, width, height
	im.storage, im.dataOff, im.pitch = blk.Storage, blk.DataOff, blk.Pitch
	im.owned = true
	im.cons = cons
	return nil
}

// InitNoData records type and dimensions while deliberately carrying no
// pixel data, for metadata-only results. Planar and compressed tags are
// accepted here; they only become a problem when pixels are needed.
func (im *Image) InitNoData(width, height int, t pixel.Type) error {
	im.err = nil
	if t == pixel.Unknown || !t.IsValid() {
		im.err = fmt.Errorf("could not init %v image: %w", t, ErrUnsupportedType)
		return im.err
	}
	if err := layout.CheckSize(width, height); err != nil {
		im.err = fmt.Errorf("could not init image of %dx%d: %w", width, height, err)
		return im.err
	}
	im.release()
	im.typ, im.w, im.h = t, width, height
	im.cons = layout.Default
	return nil
}

// Wrap points the image at caller-owned storage without copying.
// dataOff locates logical scanline 0 inside buf and pitch may be
// negative for bottom-up data. The image never frees the buffer and
// reports IsOwned false.
func (im *Image) Wrap(buf []byte, dataOff int, t pixel.Type, width, height, pitch int) error {
	im.err = nil
	if !t.IsPlain() {
		im.err = fmt.Errorf("could not wrap buffer as %v: %w", t, ErrUnsupportedType)
		return im.err
	}
	if err := layout.CheckSize(width, height); err != nil {
		im.err = fmt.Errorf("could not wrap buffer: %w", err)
		return im.err
	}
	if buf == nil {
		im.err = fmt.Errorf("could not wrap nil buffer: %w", ErrBadView)
		return im.err
	}
	rowBytes := width * t.Size()
	mag := pitch
	if mag < 0 {
		mag = -mag
	}
	if height > 1 && mag < rowBytes {
		im.err = fmt.Errorf("could not wrap buffer: pitch %d under row size %d: %w", pitch, rowBytes, ErrBadView)
		return im.err
	}
	if height > 0 && width > 0 {
		minStart, maxEnd := dataOff, dataOff+rowBytes
		if last := (height - 1) * pitch; last < 0 {
			minStart += last
		} else {
			maxEnd += last
		}
		if minStart < 0 || maxEnd > len(buf) {
			im.err = fmt.Errorf("could not wrap buffer: rows span [%d,%d) of %d bytes: %w",
				minStart, maxEnd, len(buf), ErrBadView)
			return im.err
		}
	} else if dataOff < 0 || dataOff > len(buf) {
		im.err = fmt.Errorf("could not wrap buffer: offset %d of %d bytes: %w", dataOff, len(buf), ErrBadView)
		return im.err
	}
	im.release()
	im.typ, im.w, im.h = t, width, height
	im.storage, im.dataOff, im.pitch = buf, dataOff, pitch
	im.owned = false
	im.cons = layout.Default
	return nil
}

// Clone returns a deep copy. Borrowed storage is copied into owned
// storage; the declared constraints carry over and govern the copy's
// layout, so the physical orientation may differ while the logical
// content matches.
func (im *Image) Clone() (*Image, error) {
	out := &Image{}
	if im.storage == nil {
		if im.typ == pixel.Unknown {
			out.w, out.h = im.w, im.h
			return out, nil
		}
		if err := out.InitNoData(im.w, im.h, im.typ); err != nil {
			return nil, err
		}
		return out, nil
	}
	if err := out.SetSize(im.w, im.h, im.typ, im.cons); err != nil {
		return nil, err
	}
	for y := 0; y < im.h; y++ {
		copy(out.Scanline(y), im.Scanline(y))
	}
	return out, nil
}

// CopyPixelsTo copies the pixel content into dst, which must already
// have data of the same dimensions and type. Layouts may differ.
func (im *Image) CopyPixelsTo(dst *Image) error {
	im.mustData("CopyPixelsTo")
	im.mustPlain("CopyPixelsTo")
	dst.mustData("CopyPixelsTo")
	dst.mustPlain("CopyPixelsTo")
	dst.err = nil
	if im.typ != dst.typ {
		dst.err = fmt.Errorf("could not copy %v pixels into %v image: %w", im.typ, dst.typ, ErrTypeMismatch)
		return dst.err
	}
	if im.w != dst.w || im.h != dst.h {
		dst.err = fmt.Errorf("could not copy %dx%d pixels into %dx%d image: %w",
			im.w, im.h, dst.w, dst.h, ErrSizeMismatch)
		return dst.err
	}
	for y := 0; y < im.h; y++ {
		copy(dst.Scanline(y), im.Scanline(y))
	}
	return nil
}

// DisownStorage hands the storage to the caller: the backing slice, the
// offset of logical scanline 0 and the signed pitch. The image keeps
// its type and dimensions but no longer has data.
func (im *Image) DisownStorage() (buf []byte, dataOff, pitch int) {
	im.mustData("DisownStorage")
	im.mustOwned("DisownStorage")
	buf, dataOff, pitch = im.storage, im.dataOff, im.pitch
	im.release()
	return buf, dataOff, pitch
}
