package codec

import (
	"encoding/binary"
	"image"
	"image/color"
	"io"

	"pixbuf/layout"
	"pixbuf/pixel"
	"pixbuf/raster"
)

// ToImage renders im as a std image.Image. Floats are converted on a
// copy; im is never modified.
func ToImage(im *raster.Image) (image.Image, error) {
	return toStd(im)
}

// FromImage fills im from any std image at the nearest lossless pixel
// type, laid out per cons.
func FromImage(im *raster.Image, m image.Image, cons layout.Constraints) error {
	return fromStd(im, m, raster.Flag(cons))
}

type stdDecoder struct {
	decode func(io.Reader) (image.Image, error)
	config func(io.Reader) (image.Config, error)
}

// loadStd adapts a std-style decoder pair to the registry's Load
// contract: DecodeConfig serves header-only loads, Decode everything
// else.
func loadStd(d stdDecoder) func(*raster.Image, io.ReadSeeker, raster.Flag) error {
	return func(im *raster.Image, r io.ReadSeeker, flags raster.Flag) error {
		if flags&raster.LoadNoPixels != 0 {
			cfg, err := d.config(r)
			if err != nil {
				return err
			}
			return im.InitNoData(cfg.Width, cfg.Height, configType(cfg))
		}
		m, err := d.decode(r)
		if err != nil {
			return err
		}
		return fromStd(im, m, flags)
	}
}

// configType maps a decoded header's colour model to the pixel type a
// full decode would produce.
func configType(cfg image.Config) pixel.Type {
	switch cfg.ColorModel {
	case color.GrayModel:
		return pixel.L8
	case color.Gray16Model:
		return pixel.L16
	case color.NRGBAModel, color.RGBAModel:
		return pixel.RGBA8
	case color.NRGBA64Model, color.RGBA64Model:
		return pixel.RGBA16
	case color.YCbCrModel, color.CMYKModel:
		return pixel.RGB8
	}
	if _, ok := cfg.ColorModel.(color.Palette); ok {
		return pixel.RGBA8
	}
	return pixel.RGBA16
}

// fromStd fills the image from a decoded std image at the pixel type
// that loses nothing, with fast paths for the concrete types decoders
// actually produce.
func fromStd(im *raster.Image, m image.Image, flags raster.Flag) error {
	b := m.Bounds()
	w, h := b.Dx(), b.Dy()
	size := func(t pixel.Type) error {
		return im.SetSize(w, h, t, flags.Layout())
	}
	switch src := m.(type) {
	case *image.Gray:
		if err := size(pixel.L8); err != nil {
			return err
		}
		for y := 0; y < h; y++ {
			copy(im.Scanline(y), src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):][:w])
		}
	case *image.Gray16:
		if err := size(pixel.L16); err != nil {
			return err
		}
		for y := 0; y < h; y++ {
			row := im.Scanline(y)
			pix := src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):]
			for x := 0; x < w; x++ {
				binary.LittleEndian.PutUint16(row[x*2:], uint16(pix[x*2])<<8|uint16(pix[x*2+1]))
			}
		}
	case *image.NRGBA:
		if err := size(pixel.RGBA8); err != nil {
			return err
		}
		for y := 0; y < h; y++ {
			copy(im.Scanline(y), src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):][:w*4])
		}
	case *image.NRGBA64:
		if err := size(pixel.RGBA16); err != nil {
			return err
		}
		for y := 0; y < h; y++ {
			row := im.Scanline(y)
			pix := src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):]
			for i := 0; i < w*4; i++ {
				binary.LittleEndian.PutUint16(row[i*2:], uint16(pix[i*2])<<8|uint16(pix[i*2+1]))
			}
		}
	case *image.RGBA:
		if err := size(pixel.RGBA8); err != nil {
			return err
		}
		for y := 0; y < h; y++ {
			row := im.Scanline(y)
			for x := 0; x < w; x++ {
				n := color.NRGBAModel.Convert(src.RGBAAt(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
				px := row[x*4 : x*4+4]
				px[0], px[1], px[2], px[3] = n.R, n.G, n.B, n.A
			}
		}
	case *image.RGBA64:
		if err := size(pixel.RGBA16); err != nil {
			return err
		}
		for y := 0; y < h; y++ {
			row := im.Scanline(y)
			for x := 0; x < w; x++ {
				n := color.NRGBA64Model.Convert(src.RGBA64At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA64)
				binary.LittleEndian.PutUint16(row[x*8:], n.R)
				binary.LittleEndian.PutUint16(row[x*8+2:], n.G)
				binary.LittleEndian.PutUint16(row[x*8+4:], n.B)
				binary.LittleEndian.PutUint16(row[x*8+6:], n.A)
			}
		}
	case *image.YCbCr:
		if err := size(pixel.RGB8); err != nil {
			return err
		}
		for y := 0; y < h; y++ {
			row := im.Scanline(y)
			for x := 0; x < w; x++ {
				c := src.YCbCrAt(b.Min.X+x, b.Min.Y+y)
				r, g, bb := color.YCbCrToRGB(c.Y, c.Cb, c.Cr)
				px := row[x*3 : x*3+3]
				px[0], px[1], px[2] = r, g, bb
			}
		}
	case *image.CMYK:
		if err := size(pixel.RGB8); err != nil {
			return err
		}
		for y := 0; y < h; y++ {
			row := im.Scanline(y)
			for x := 0; x < w; x++ {
				c := src.CMYKAt(b.Min.X+x, b.Min.Y+y)
				r, g, bb := color.CMYKToRGB(c.C, c.M, c.Y, c.K)
				px := row[x*3 : x*3+3]
				px[0], px[1], px[2] = r, g, bb
			}
		}
	case *image.Paletted:
		if err := size(pixel.RGBA8); err != nil {
			return err
		}
		pal := make([]color.NRGBA, len(src.Palette))
		for i, c := range src.Palette {
			pal[i] = color.NRGBAModel.Convert(c).(color.NRGBA)
		}
		for y := 0; y < h; y++ {
			row := im.Scanline(y)
			pix := src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):]
			for x := 0; x < w; x++ {
				n := pal[pix[x]]
				px := row[x*4 : x*4+4]
				px[0], px[1], px[2], px[3] = n.R, n.G, n.B, n.A
			}
		}
	default:
		if err := size(pixel.RGBA16); err != nil {
			return err
		}
		for y := 0; y < h; y++ {
			row := im.Scanline(y)
			for x := 0; x < w; x++ {
				n := color.NRGBA64Model.Convert(m.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA64)
				binary.LittleEndian.PutUint16(row[x*8:], n.R)
				binary.LittleEndian.PutUint16(row[x*8+2:], n.G)
				binary.LittleEndian.PutUint16(row[x*8+4:], n.B)
				binary.LittleEndian.PutUint16(row[x*8+6:], n.A)
			}
		}
	}
	return nil
}

// toStd renders the image as a std image for the stock encoders. Float
// pixels go through their 16 bit integer equivalent on a copy; the
// receiver is never modified.
func toStd(im *raster.Image) (image.Image, error) {
	w, h := im.Width(), im.Height()
	switch im.Type() {
	case pixel.L8:
		dst := image.NewGray(image.Rect(0, 0, w, h))
		for y := 0; y < h; y++ {
			copy(dst.Pix[y*dst.Stride:][:w], im.Scanline(y))
		}
		return dst, nil
	case pixel.L16:
		dst := image.NewGray16(image.Rect(0, 0, w, h))
		for y := 0; y < h; y++ {
			row := im.Scanline(y)
			pix := dst.Pix[y*dst.Stride:]
			for x := 0; x < w; x++ {
				v := binary.LittleEndian.Uint16(row[x*2:])
				pix[x*2], pix[x*2+1] = uint8(v>>8), uint8(v)
			}
		}
		return dst, nil
	case pixel.LA8:
		dst := image.NewNRGBA(image.Rect(0, 0, w, h))
		for y := 0; y < h; y++ {
			row := im.Scanline(y)
			pix := dst.Pix[y*dst.Stride:]
			for x := 0; x < w; x++ {
				l, a := row[x*2], row[x*2+1]
				px := pix[x*4 : x*4+4]
				px[0], px[1], px[2], px[3] = l, l, l, a
			}
		}
		return dst, nil
	case pixel.LA16:
		dst := image.NewNRGBA64(image.Rect(0, 0, w, h))
		for y := 0; y < h; y++ {
			row := im.Scanline(y)
			pix := dst.Pix[y*dst.Stride:]
			for x := 0; x < w; x++ {
				l := binary.LittleEndian.Uint16(row[x*4:])
				a := binary.LittleEndian.Uint16(row[x*4+2:])
				px := pix[x*8 : x*8+8]
				px[0], px[1] = uint8(l>>8), uint8(l)
				px[2], px[3] = uint8(l>>8), uint8(l)
				px[4], px[5] = uint8(l>>8), uint8(l)
				px[6], px[7] = uint8(a>>8), uint8(a)
			}
		}
		return dst, nil
	case pixel.RGB8:
		dst := image.NewNRGBA(image.Rect(0, 0, w, h))
		for y := 0; y < h; y++ {
			row := im.Scanline(y)
			pix := dst.Pix[y*dst.Stride:]
			for x := 0; x < w; x++ {
				s := row[x*3 : x*3+3]
				px := pix[x*4 : x*4+4]
				px[0], px[1], px[2], px[3] = s[0], s[1], s[2], 255
			}
		}
		return dst, nil
	case pixel.RGB16:
		dst := image.NewNRGBA64(image.Rect(0, 0, w, h))
		for y := 0; y < h; y++ {
			row := im.Scanline(y)
			pix := dst.Pix[y*dst.Stride:]
			for x := 0; x < w; x++ {
				px := pix[x*8 : x*8+8]
				for c := 0; c < 3; c++ {
					v := binary.LittleEndian.Uint16(row[x*6+c*2:])
					px[c*2], px[c*2+1] = uint8(v>>8), uint8(v)
				}
				px[6], px[7] = 0xff, 0xff
			}
		}
		return dst, nil
	case pixel.RGBA8:
		dst := image.NewNRGBA(image.Rect(0, 0, w, h))
		for y := 0; y < h; y++ {
			copy(dst.Pix[y*dst.Stride:][:w*4], im.Scanline(y))
		}
		return dst, nil
	case pixel.RGBA16:
		dst := image.NewNRGBA64(image.Rect(0, 0, w, h))
		for y := 0; y < h; y++ {
			row := im.Scanline(y)
			pix := dst.Pix[y*dst.Stride:]
			for i := 0; i < w*4; i++ {
				v := binary.LittleEndian.Uint16(row[i*2:])
				pix[i*2], pix[i*2+1] = uint8(v>>8), uint8(v)
			}
		}
		return dst, nil
	default:
		dup, err := im.Clone()
		if err != nil {
			return nil, err
		}
		if err := dup.ConvertTo16Bit(); err != nil {
			return nil, err
		}
		return toStd(dup)
	}
}
