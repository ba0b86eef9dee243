package codec

import (
	"image/jpeg"
	"io"

	"pixbuf/raster"
)

func jpegSave(im *raster.Image, w io.Writer, flags raster.Flag) error {
	m, err := toStd(im)
	if err != nil {
		return err
	}
	return jpeg.Encode(w, m, &jpeg.Options{Quality: 100})
}

// JPEG reads and writes JPEG through image/jpeg. Lossy; decodes to RGB8
// or L8, encodes at quality 100.
func JPEG() raster.Format {
	return raster.Format{
		Name:  "jpeg",
		Exts:  []string{".jpg", ".jpeg"},
		Magic: [][]byte{[]byte("\xff\xd8\xff")},
		Load:  loadStd(stdDecoder{jpeg.Decode, jpeg.DecodeConfig}),
		Save:  jpegSave,
	}
}
