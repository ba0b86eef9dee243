package raster

import (
	"testing"

	"pixbuf/layout"
	"pixbuf/pixel"
)

func TestPremultiply(t *testing.T) {
	im, _ := New(2, 1, pixel.RGBA8, layout.Default)
	row := im.Scanline(0)
	copy(row, []byte{200, 100, 50, 128, 10, 20, 30, 0})
	im.Premultiply()
	want := []byte{100, 50, 25, 128, 0, 0, 0, 0}
	for i := range want {
		if row[i] != want[i] {
			t.Errorf("byte %d = %d, want %d", i, row[i], want[i])
		}
	}
}

func TestPremultiplyRoundTripOpaque(t *testing.T) {
	for _, typ := range []pixel.Type{pixel.LA8, pixel.RGBA8, pixel.RGBA16, pixel.RGBAF32} {
		t.Run(typ.String(), func(t *testing.T) {
			im, _ := New(4, 3, typ, layout.Default)
			fill(im)
			// Force full alpha so premultiplication is lossless.
			colours := typ.Channels() - 1
			for y := 0; y < 3; y++ {
				row := im.Scanline(y)
				for x := 0; x < 4; x++ {
					px := row[x*typ.Size():]
					switch typ.BitDepth() {
					case 8:
						px[colours] = 255
					case 16:
						putU16(px[colours*2:], 65535)
					default:
						putF32(px[colours*4:], 1)
					}
				}
			}
			want := snapshot(im)
			im.Premultiply()
			im.Unpremultiply()
			if !equalRows(want, snapshot(im)) {
				t.Error("premultiply then unpremultiply changed an opaque image")
			}
		})
	}
}

func TestPremultiplyNoAlphaNoOp(t *testing.T) {
	im, _ := New(3, 3, pixel.RGB8, layout.Default)
	fill(im)
	want := snapshot(im)
	im.Premultiply()
	im.Unpremultiply()
	if !equalRows(want, snapshot(im)) {
		t.Error("alpha-less image was modified")
	}
}

func TestUnpremultiplyZeroAlpha(t *testing.T) {
	im, _ := New(1, 1, pixel.RGBA16, layout.Default)
	row := im.Scanline(0)
	putU16(row[0:], 500)
	putU16(row[2:], 600)
	putU16(row[4:], 700)
	putU16(row[6:], 0)
	im.Unpremultiply()
	for c := 0; c < 3; c++ {
		if v := getU16(row[c*2:]); v != 0 {
			t.Errorf("channel %d = %d, want 0 under zero alpha", c, v)
		}
	}
}
