package codec

import (
	"io"

	"golang.org/x/image/tiff"

	"pixbuf/raster"
)

func tiffSave(im *raster.Image, w io.Writer, flags raster.Flag) error {
	m, err := toStd(im)
	if err != nil {
		return err
	}
	opts := &tiff.Options{Compression: tiff.Deflate}
	if flags&raster.SaveChallenger != 0 {
		opts.Predictor = true
	}
	return tiff.Encode(w, m, opts)
}

// TIFF reads and writes TIFF through x/image/tiff, both byte orders on
// the way in, deflate on the way out. The challenger encoder adds
// horizontal differencing.
func TIFF() raster.Format {
	return raster.Format{
		Name:  "tiff",
		Exts:  []string{".tif", ".tiff"},
		Magic: [][]byte{[]byte("II*\x00"), []byte("MM\x00*")},
		Load:  loadStd(stdDecoder{tiff.Decode, tiff.DecodeConfig}),
		Save:  tiffSave,
	}
}
