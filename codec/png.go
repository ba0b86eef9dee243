package codec

import (
	"image/png"
	"io"
	"sync"

	"pixbuf/raster"
)

type pngEncoderBufferPool struct {
	pool sync.Pool
}

func (p *pngEncoderBufferPool) Get() *png.EncoderBuffer {
	return p.pool.Get().(*png.EncoderBuffer)
}

func (p *pngEncoderBufferPool) Put(buf *png.EncoderBuffer) {
	p.pool.Put(buf)
}

var pngPool = &pngEncoderBufferPool{
	pool: sync.Pool{
		New: func() any {
			return &png.EncoderBuffer{}
		},
	},
}

var pngEncoder = png.Encoder{
	CompressionLevel: png.BestCompression,
	BufferPool:       pngPool,
}

func pngSave(im *raster.Image, w io.Writer, flags raster.Flag) error {
	m, err := toStd(im)
	if err != nil {
		return err
	}
	return pngEncoder.Encode(w, m)
}

// PNG reads and writes PNG through image/png. Greyscale and 16 bit
// images keep their depth; everything else lands on 8 or 16 bit RGBA.
func PNG() raster.Format {
	return raster.Format{
		Name:  "png",
		Exts:  []string{".png"},
		Magic: [][]byte{[]byte("\x89PNG\r\n\x1a\n")},
		Load:  loadStd(stdDecoder{png.Decode, png.DecodeConfig}),
		Save:  pngSave,
	}
}
