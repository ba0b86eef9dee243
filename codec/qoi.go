package codec

import (
	"io"

	"github.com/xfmoulet/qoi"

	"pixbuf/raster"
)

func qoiSave(im *raster.Image, w io.Writer, flags raster.Flag) error {
	m, err := toStd(im)
	if err != nil {
		return err
	}
	return qoi.Encode(w, m)
}

// QOI reads and writes the Quite OK Image format. 8 bit RGB and RGBA
// round-trip losslessly; everything else is flattened to RGBA8 first.
func QOI() raster.Format {
	return raster.Format{
		Name:  "qoi",
		Exts:  []string{".qoi"},
		Magic: [][]byte{[]byte("qoif")},
		Load:  loadStd(stdDecoder{qoi.Decode, qoi.DecodeConfig}),
		Save:  qoiSave,
	}
}
