package codec

import (
	"image/gif"
	"io"

	"pixbuf/raster"
)

func gifSave(im *raster.Image, w io.Writer, flags raster.Flag) error {
	m, err := toStd(im)
	if err != nil {
		return err
	}
	return gif.Encode(w, m, nil)
}

// GIF reads and writes GIF through image/gif. Decodes the first frame
// to RGBA8; encoding quantises to a 256 colour palette.
func GIF() raster.Format {
	return raster.Format{
		Name:  "gif",
		Exts:  []string{".gif"},
		Magic: [][]byte{[]byte("GIF87a"), []byte("GIF89a")},
		Load:  loadStd(stdDecoder{gif.Decode, gif.DecodeConfig}),
		Save:  gifSave,
	}
}
