package codec

import (
	"bytes"
	"testing"

	"pixbuf/pixel"
	"pixbuf/raster"
)

var plainTypes = []pixel.Type{
	pixel.L8, pixel.L16, pixel.LF32,
	pixel.LA8, pixel.LA16, pixel.LAF32,
	pixel.RGB8, pixel.RGB16, pixel.RGBF32,
	pixel.RGBA8, pixel.RGBA16, pixel.RGBAF32,
}

// makeImage builds a w by h image of type t with deterministic pixel
// bytes. Float rows get the same treatment; the bits only need to
// survive a byte-exact round trip, not be sensible numbers.
func makeImage(t *testing.T, typ pixel.Type, w, h int) *raster.Image {
	t.Helper()
	im := new(raster.Image)
	if err := im.SetSize(w, h, typ, 0); err != nil {
		t.Fatalf("SetSize(%s): %v", typ, err)
	}
	for y := 0; y < h; y++ {
		row := im.Scanline(y)
		for i := range row {
			row[i] = byte((i*31 + y*17) ^ int(typ)<<3)
		}
	}
	return im
}

// makeFiniteImage is makeImage with bytes that decode to finite values
// in every channel, for codecs that reinterpret rather than copy them.
func makeFiniteImage(t *testing.T, typ pixel.Type, w, h int) *raster.Image {
	t.Helper()
	im := makeImage(t, typ, w, h)
	if typ.IsFloat() {
		if err := im.ConvertTo16Bit(); err != nil {
			t.Fatalf("ConvertTo16Bit: %v", err)
		}
		if err := im.ConvertToFloat(); err != nil {
			t.Fatalf("ConvertToFloat: %v", err)
		}
	}
	return im
}

func equalPixels(t *testing.T, got, want *raster.Image) {
	t.Helper()
	if got.Type() != want.Type() {
		t.Fatalf("type = %s, want %s", got.Type(), want.Type())
	}
	if got.Width() != want.Width() || got.Height() != want.Height() {
		t.Fatalf("size = %dx%d, want %dx%d",
			got.Width(), got.Height(), want.Width(), want.Height())
	}
	for y := 0; y < want.Height(); y++ {
		if !bytes.Equal(got.Scanline(y), want.Scanline(y)) {
			t.Fatalf("row %d differs:\n got %x\nwant %x",
				y, got.Scanline(y), want.Scanline(y))
		}
	}
}

func TestZpixRoundTrip(t *testing.T) {
	reg := Registry()
	for _, typ := range plainTypes {
		t.Run(typ.String(), func(t *testing.T) {
			src := makeImage(t, typ, 13, 7)
			data, err := src.SaveBytes(reg, "zpix", raster.SaveNormal)
			if err != nil {
				t.Fatalf("SaveBytes: %v", err)
			}
			got := new(raster.Image)
			if err := got.LoadBytes(reg, data, raster.LoadNormal); err != nil {
				t.Fatalf("LoadBytes: %v", err)
			}
			equalPixels(t, got, src)
		})
	}
}

func TestZpixChallenger(t *testing.T) {
	reg := Registry()
	src := makeImage(t, pixel.RGBA16, 64, 64)
	normal, err := src.SaveBytes(reg, "zpix", raster.SaveNormal)
	if err != nil {
		t.Fatalf("SaveBytes: %v", err)
	}
	best, err := src.SaveBytes(reg, "zpix", raster.SaveChallenger)
	if err != nil {
		t.Fatalf("SaveBytes(challenger): %v", err)
	}
	if len(best) > len(normal) {
		t.Logf("challenger larger than normal: %d > %d", len(best), len(normal))
	}
	got := new(raster.Image)
	if err := got.LoadBytes(reg, best, raster.LoadNormal); err != nil {
		t.Fatalf("LoadBytes: %v", err)
	}
	equalPixels(t, got, src)
}

func TestZpixZeroArea(t *testing.T) {
	reg := Registry()
	src := new(raster.Image)
	if err := src.SetSize(0, 5, pixel.RGBA8, 0); err != nil {
		t.Fatalf("SetSize: %v", err)
	}
	data, err := src.SaveBytes(reg, "zpix", raster.SaveNormal)
	if err != nil {
		t.Fatalf("SaveBytes: %v", err)
	}
	got := new(raster.Image)
	if err := got.LoadBytes(reg, data, raster.LoadNormal); err != nil {
		t.Fatalf("LoadBytes: %v", err)
	}
	if got.Width() != 0 || got.Height() != 5 || got.Type() != pixel.RGBA8 {
		t.Fatalf("got %dx%d %s", got.Width(), got.Height(), got.Type())
	}
}

func TestZpixRejects(t *testing.T) {
	reg := Registry()
	src := makeImage(t, pixel.L8, 4, 4)
	data, err := src.SaveBytes(reg, "zpix", raster.SaveNormal)
	if err != nil {
		t.Fatalf("SaveBytes: %v", err)
	}

	for _, tc := range []struct {
		name   string
		mangle func(b []byte)
	}{
		{"version", func(b []byte) { b[4] = 99 }},
		{"type id", func(b []byte) { b[5] = 0xee }},
		{"payload", func(b []byte) { b[len(b)-1] ^= 0xff }},
		{"truncated", func(b []byte) {}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			bad := bytes.Clone(data)
			tc.mangle(bad)
			if tc.name == "truncated" {
				bad = bad[:17]
			}
			im := new(raster.Image)
			if err := im.LoadBytes(reg, bad, raster.LoadNormal); err == nil {
				t.Fatal("corrupt stream decoded without error")
			}
			if im.Err() == nil || im.HasData() {
				t.Fatal("image not left in the errored state")
			}
		})
	}
}

func TestPNGRoundTrip(t *testing.T) {
	reg := Registry()
	for _, typ := range []pixel.Type{pixel.L8, pixel.L16, pixel.RGBA8, pixel.RGBA16} {
		t.Run(typ.String(), func(t *testing.T) {
			src := makeImage(t, typ, 9, 5)
			data, err := src.SaveBytes(reg, "png", raster.SaveNormal)
			if err != nil {
				t.Fatalf("SaveBytes: %v", err)
			}
			got := new(raster.Image)
			if err := got.LoadBytes(reg, data, raster.LoadNormal); err != nil {
				t.Fatalf("LoadBytes: %v", err)
			}
			equalPixels(t, got, src)
		})
	}
}

func TestPNGFloatGoesThrough16Bit(t *testing.T) {
	reg := Registry()
	src := makeFiniteImage(t, pixel.RGBAF32, 6, 4)
	data, err := src.SaveBytes(reg, "png", raster.SaveNormal)
	if err != nil {
		t.Fatalf("SaveBytes: %v", err)
	}
	got := new(raster.Image)
	if err := got.LoadBytes(reg, data, raster.LoadNormal); err != nil {
		t.Fatalf("LoadBytes: %v", err)
	}
	if got.Type() != pixel.RGBA16 {
		t.Fatalf("type = %s, want %s", got.Type(), pixel.RGBA16)
	}
	want, err := src.Clone()
	if err != nil {
		t.Fatalf("Clone: %v", err)
	}
	if err := want.ConvertTo16Bit(); err != nil {
		t.Fatalf("ConvertTo16Bit: %v", err)
	}
	equalPixels(t, got, want)
}

func TestJPEGRoundTrip(t *testing.T) {
	reg := Registry()
	src := new(raster.Image)
	if err := src.SetSize(16, 16, pixel.RGB8, 0); err != nil {
		t.Fatalf("SetSize: %v", err)
	}
	for y := 0; y < 16; y++ {
		row := src.Scanline(y)
		for i := range row {
			row[i] = 128
		}
	}
	data, err := src.SaveBytes(reg, "jpeg", raster.SaveNormal)
	if err != nil {
		t.Fatalf("SaveBytes: %v", err)
	}
	got := new(raster.Image)
	if err := got.LoadBytes(reg, data, raster.LoadNormal); err != nil {
		t.Fatalf("LoadBytes: %v", err)
	}
	if got.Width() != 16 || got.Height() != 16 {
		t.Fatalf("size = %dx%d", got.Width(), got.Height())
	}
	if got.Type() != pixel.RGB8 && got.Type() != pixel.L8 {
		t.Fatalf("type = %s", got.Type())
	}
	for _, v := range got.Scanline(8)[:got.RowBytes()] {
		if v < 125 || v > 131 {
			t.Fatalf("flat grey came back as %d", v)
		}
	}
}

func TestGIFRoundTrip(t *testing.T) {
	reg := Registry()
	src := new(raster.Image)
	if err := src.SetSize(8, 8, pixel.RGBA8, 0); err != nil {
		t.Fatalf("SetSize: %v", err)
	}
	for y := 0; y < 8; y++ {
		row := src.Scanline(y)
		for x := 0; x < 8; x++ {
			v := byte(0)
			if x >= 4 {
				v = 255
			}
			px := row[x*4 : x*4+4]
			px[0], px[1], px[2], px[3] = v, v, v, 255
		}
	}
	data, err := src.SaveBytes(reg, "gif", raster.SaveNormal)
	if err != nil {
		t.Fatalf("SaveBytes: %v", err)
	}
	got := new(raster.Image)
	if err := got.LoadBytes(reg, data, raster.LoadNormal); err != nil {
		t.Fatalf("LoadBytes: %v", err)
	}
	equalPixels(t, got, src)
}

func TestQOIRoundTrip(t *testing.T) {
	reg := Registry()
	src := makeImage(t, pixel.RGBA8, 11, 6)
	data, err := src.SaveBytes(reg, "qoi", raster.SaveNormal)
	if err != nil {
		t.Fatalf("SaveBytes: %v", err)
	}
	got := new(raster.Image)
	if err := got.LoadBytes(reg, data, raster.LoadNormal); err != nil {
		t.Fatalf("LoadBytes: %v", err)
	}
	equalPixels(t, got, src)
}

func TestBMPRoundTrip(t *testing.T) {
	reg := Registry()
	src := makeImage(t, pixel.RGBA8, 10, 4)
	data, err := src.SaveBytes(reg, "bmp", raster.SaveNormal)
	if err != nil {
		t.Fatalf("SaveBytes: %v", err)
	}
	got := new(raster.Image)
	if err := got.LoadBytes(reg, data, raster.LoadNormal); err != nil {
		t.Fatalf("LoadBytes: %v", err)
	}
	equalPixels(t, got, src)
}

func TestTIFFRoundTrip(t *testing.T) {
	reg := Registry()
	for _, tc := range []struct {
		typ   pixel.Type
		flags raster.Flag
	}{
		{pixel.L16, raster.SaveNormal},
		{pixel.RGBA8, raster.SaveNormal},
		{pixel.RGBA8, raster.SaveChallenger},
	} {
		src := makeImage(t, tc.typ, 7, 7)
		data, err := src.SaveBytes(reg, "tiff", tc.flags)
		if err != nil {
			t.Fatalf("SaveBytes(%s): %v", tc.typ, err)
		}
		got := new(raster.Image)
		if err := got.LoadBytes(reg, data, raster.LoadNormal); err != nil {
			t.Fatalf("LoadBytes(%s): %v", tc.typ, err)
		}
		equalPixels(t, got, src)
	}
}

func TestDetectByContent(t *testing.T) {
	reg := Registry()
	src := makeImage(t, pixel.RGBA8, 5, 5)
	for _, name := range []string{"png", "qoi", "bmp", "tiff", "zpix"} {
		t.Run(name, func(t *testing.T) {
			data, err := src.SaveBytes(reg, name, raster.SaveNormal)
			if err != nil {
				t.Fatalf("SaveBytes: %v", err)
			}
			got := new(raster.Image)
			if err := got.LoadBytes(reg, data, raster.LoadNormal); err != nil {
				t.Fatalf("LoadBytes did not detect %s: %v", name, err)
			}
			if got.Width() != 5 || got.Height() != 5 {
				t.Fatalf("size = %dx%d", got.Width(), got.Height())
			}
		})
	}
}

func TestNoPixelsHeaders(t *testing.T) {
	reg := Registry()
	src := makeImage(t, pixel.RGBA16, 31, 17)
	for _, name := range []string{"png", "zpix"} {
		t.Run(name, func(t *testing.T) {
			data, err := src.SaveBytes(reg, name, raster.SaveNormal)
			if err != nil {
				t.Fatalf("SaveBytes: %v", err)
			}
			got := new(raster.Image)
			if err := got.LoadBytes(reg, data, raster.LoadNoPixels); err != nil {
				t.Fatalf("LoadBytes: %v", err)
			}
			if got.Width() != 31 || got.Height() != 17 {
				t.Fatalf("size = %dx%d", got.Width(), got.Height())
			}
			if got.Type() != pixel.RGBA16 {
				t.Fatalf("type = %s", got.Type())
			}
			if got.HasData() {
				t.Fatal("header-only load kept pixel data")
			}
		})
	}
}

func TestSaveDoesNotMutate(t *testing.T) {
	reg := Registry()
	src := makeFiniteImage(t, pixel.RGBAF32, 6, 3)
	before, err := src.Clone()
	if err != nil {
		t.Fatalf("Clone: %v", err)
	}
	if _, err := src.SaveBytes(reg, "png", raster.SaveNormal); err != nil {
		t.Fatalf("SaveBytes: %v", err)
	}
	equalPixels(t, src, before)
}

func TestRegistryNames(t *testing.T) {
	names := Registry().Names()
	want := []string{"png", "jpeg", "gif", "qoi", "bmp", "tiff", "zpix"}
	if len(names) != len(want) {
		t.Fatalf("names = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("names[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}
