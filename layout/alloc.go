package layout

import (
	"fmt"
	"unsafe"

	"pixbuf/pixel"
)

// MaxDim bounds each image axis. MaxArea bounds the pixel count, well
// below MaxDim squared, so the byte size of any plain image stays far
// from overflowing an int64.
const (
	MaxDim          = 1 << 24
	MaxArea   int64 = 1 << 40
	MaxBorder       = 3
)

// Block is one storage allocation laid out for an image. Storage holds
// everything: alignment slack, borders, pixels and scratch. Pixel
// addressing starts at DataOff and advances by the signed Pitch per
// logical scanline.
type Block struct {
	Storage    []byte
	DataOff    int
	Pitch      int
	ScratchOff int
}

// CheckSize validates image dimensions against the global limits: each
// axis at most MaxDim, the pixel count at most MaxArea.
func CheckSize(width, height int) error {
	if width < 0 || height < 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	if width > MaxDim || height > MaxDim || int64(width)*int64(height) > MaxArea {
		return fmt.Errorf("%w: %dx%d", ErrSizeLimit, width, height)
	}
	return nil
}

// Alloc builds storage for a width by height image of pixel type t
// honouring cons, with scratchBytes extra bytes reserved past the pixel
// region at ScratchOff. Zero-area images receive a valid, possibly
// empty, storage slice so images with data never lack a base pointer.
func Alloc(t pixel.Type, width, height int, cons Constraints, scratchBytes int) (Block, error) {
	if !t.IsPlain() {
		return Block{}, fmt.Errorf("%w: %v", ErrUnsupportedType, t)
	}
	if scratchBytes < 0 {
		return Block{}, fmt.Errorf("%w: negative scratch", ErrInvalidSize)
	}
	if err := CheckSize(width, height); err != nil {
		return Block{}, err
	}
	if err := cons.Validate(); err != nil {
		return Block{}, err
	}

	psize := t.Size()
	align := cons.Alignment()
	border := cons.Border()
	rowBytes := width * psize

	// The slack right of each scanline must cover the trailing-pixel
	// guarantee, the round-up to whole multiplicity blocks and the
	// right border, whichever needs most.
	extraPx := cons.TrailingPixels()
	if m := cons.Multiplicity(); m > 1 {
		if up := (width+m-1)/m*m - width; up > extraPx {
			extraPx = up
		}
	}
	if border > extraPx {
		extraPx = border
	}
	leftBytes := border * psize

	pitch := leftBytes + rowBytes + extraPx*psize
	pitch = (pitch + align - 1) / align * align
	rows := height + 2*border

	storage := make([]byte, pitch*rows+scratchBytes+align-1)

	// Scanline starts must sit on align-byte machine addresses, so
	// shift the whole grid within the over-allocated slice.
	fix := 0
	if align > 1 {
		addr := uintptr(unsafe.Pointer(unsafe.SliceData(storage)))
		if rem := int((addr + uintptr(leftBytes)) % uintptr(align)); rem != 0 {
			fix = align - rem
		}
	}

	dataOff := fix + border*pitch + leftBytes
	outPitch := pitch
	if cons.MustBottomUp() && height > 0 {
		dataOff += (height - 1) * pitch
		outPitch = -pitch
	}

	return Block{
		Storage:    storage,
		DataOff:    dataOff,
		Pitch:      outPitch,
		ScratchOff: len(storage) - scratchBytes,
	}, nil
}
