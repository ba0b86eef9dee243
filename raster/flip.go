package raster

// FlipHorizontal mirrors every scanline in place, swapping pixel pairs
// through a fixed temporary sized for the largest pixel.
func (im *Image) FlipHorizontal() {
	im.mustData("FlipHorizontal")
	im.mustPlain("FlipHorizontal")
	im.err = nil
	if im.w <= 1 || im.h == 0 {
		return
	}
	psize := im.typ.Size()
	var buf [16]byte
	tmp := buf[:psize]
	for y := 0; y < im.h; y++ {
		row := im.Scanline(y)
		for i, j := 0, im.w-1; i < j; i, j = i+1, j-1 {
			a := row[i*psize : i*psize+psize]
			b := row[j*psize : j*psize+psize]
			copy(tmp, a)
			copy(a, b)
			copy(b, tmp)
		}
	}
}

// FlipVertical reverses the scanline order. Without an orientation pin
// this is the O(1) logical flip: negate the pitch and repoint scanline 0
// at the other end. With a pin the physical order is part of the
// contract, so scanlines are swapped byte for byte instead.
func (im *Image) FlipVertical() {
	im.mustData("FlipVertical")
	im.mustPlain("FlipVertical")
	im.err = nil
	if im.h <= 1 || im.w == 0 {
		return
	}
	if im.cons.MustTopDown() || im.cons.MustBottomUp() {
		tmp := make([]byte, im.RowBytes())
		for a, b := 0, im.h-1; a < b; a, b = a+1, b-1 {
			ra, rb := im.Scanline(a), im.Scanline(b)
			copy(tmp, ra)
			copy(ra, rb)
			copy(rb, tmp)
		}
		return
	}
	im.dataOff += (im.h - 1) * im.pitch
	im.pitch = -im.pitch
}
