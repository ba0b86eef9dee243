package codec

import (
	"io"

	"golang.org/x/image/bmp"

	"pixbuf/raster"
)

func bmpSave(im *raster.Image, w io.Writer, flags raster.Flag) error {
	m, err := toStd(im)
	if err != nil {
		return err
	}
	return bmp.Encode(w, m)
}

// BMP reads and writes Windows bitmaps through x/image/bmp. 16 bit and
// float images are written at 8 bit depth.
func BMP() raster.Format {
	return raster.Format{
		Name:  "bmp",
		Exts:  []string{".bmp"},
		Magic: [][]byte{[]byte("BM")},
		Load:  loadStd(stdDecoder{bmp.Decode, bmp.DecodeConfig}),
		Save:  bmpSave,
	}
}
