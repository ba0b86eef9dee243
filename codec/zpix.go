package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/zstd"

	"pixbuf/pixel"
	"pixbuf/raster"
)

// zpix is the native container: any plain pixel type, full fidelity,
// zstd-compressed rows. The 16 byte header is magic, version, wire type
// id, two reserved bytes and big-endian u32 dimensions; the payload is
// the pixel rows top-down with no padding, in the little-endian byte
// order the conversion engine uses in memory.
var zpixMagic = []byte("zpix")

const zpixVersion = 1

// Wire ids are frozen; the table index is the id. Extending the format
// means appending, never renumbering.
var zpixWireTypes = [...]pixel.Type{
	pixel.Unknown,
	pixel.L8, pixel.L16, pixel.LF32,
	pixel.LA8, pixel.LA16, pixel.LAF32,
	pixel.RGB8, pixel.RGB16, pixel.RGBF32,
	pixel.RGBA8, pixel.RGBA16, pixel.RGBAF32,
}

func zpixWireID(t pixel.Type) byte {
	for id, wt := range zpixWireTypes {
		if wt == t && id != 0 {
			return byte(id)
		}
	}
	return 0
}

func mustNewZstdEncoder(level zstd.EncoderLevel) *zstd.Encoder {
	enc, err := zstd.NewWriter(
		nil,
		zstd.WithEncoderConcurrency(1),
		zstd.WithEncoderLevel(level),
		zstd.WithLowerEncoderMem(true),
	)
	if err != nil {
		panic(err)
	}
	return enc
}

func mustNewZstdDecoder() *zstd.Decoder {
	dec, err := zstd.NewReader(
		nil,
		zstd.WithDecoderConcurrency(1),
		zstd.WithDecoderLowmem(true),
	)
	if err != nil {
		panic(err)
	}
	return dec
}

var zpixEncPool = sync.Pool{
	New: func() any {
		return mustNewZstdEncoder(zstd.SpeedBetterCompression)
	},
}

var zpixBestPool = sync.Pool{
	New: func() any {
		return mustNewZstdEncoder(zstd.SpeedBestCompression)
	},
}

var zpixDecPool = sync.Pool{
	New: func() any {
		return mustNewZstdDecoder()
	},
}

func zpixSave(im *raster.Image, w io.Writer, flags raster.Flag) error {
	id := zpixWireID(im.Type())
	if id == 0 {
		return fmt.Errorf("cannot carry %s pixels", im.Type())
	}
	hdr := make([]byte, 16)
	copy(hdr, zpixMagic)
	hdr[4] = zpixVersion
	hdr[5] = id
	binary.BigEndian.PutUint32(hdr[8:], uint32(im.Width()))
	binary.BigEndian.PutUint32(hdr[12:], uint32(im.Height()))
	if _, err := w.Write(hdr); err != nil {
		return err
	}
	rowBytes := im.RowBytes()
	raw := make([]byte, 0, im.Height()*rowBytes)
	for y := 0; y < im.Height(); y++ {
		raw = append(raw, im.Scanline(y)[:rowBytes]...)
	}
	if len(raw) == 0 {
		return nil
	}
	pool := &zpixEncPool
	if flags&raster.SaveChallenger != 0 {
		pool = &zpixBestPool
	}
	enc := pool.Get().(*zstd.Encoder)
	packed := enc.EncodeAll(raw, nil)
	pool.Put(enc)
	_, err := w.Write(packed)
	return err
}

func zpixLoad(im *raster.Image, r io.ReadSeeker, flags raster.Flag) error {
	hdr := make([]byte, 16)
	if _, err := io.ReadFull(r, hdr); err != nil {
		return fmt.Errorf("could not read header: %w", err)
	}
	if !bytes.Equal(hdr[:4], zpixMagic) {
		return fmt.Errorf("bad signature")
	}
	if hdr[4] != zpixVersion {
		return fmt.Errorf("unsupported version %d", hdr[4])
	}
	id := int(hdr[5])
	if id == 0 || id >= len(zpixWireTypes) {
		return fmt.Errorf("unknown pixel type id %d", id)
	}
	t := zpixWireTypes[id]
	w := int(binary.BigEndian.Uint32(hdr[8:]))
	h := int(binary.BigEndian.Uint32(hdr[12:]))
	if flags&raster.LoadNoPixels != 0 {
		return im.InitNoData(w, h, t)
	}
	if err := im.SetSize(w, h, t, flags.Layout()); err != nil {
		return err
	}
	rowBytes := im.RowBytes()
	want := rowBytes * h
	if want == 0 {
		return nil
	}
	packed, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("could not read pixel payload: %w", err)
	}
	dec := zpixDecPool.Get().(*zstd.Decoder)
	raw, err := dec.DecodeAll(packed, nil)
	zpixDecPool.Put(dec)
	if err != nil {
		return fmt.Errorf("could not decompress pixels: %w", err)
	}
	if len(raw) != want {
		return fmt.Errorf("pixel payload is %d bytes, want %d", len(raw), want)
	}
	for y := 0; y < h; y++ {
		copy(im.Scanline(y), raw[y*rowBytes:(y+1)*rowBytes])
	}
	return nil
}

// ZPix reads and writes the native zpix container. Every plain pixel
// type round-trips byte for byte, floats included. The challenger
// encoder trades time for the strongest zstd level.
func ZPix() raster.Format {
	return raster.Format{
		Name:  "zpix",
		Exts:  []string{".zpix"},
		Magic: [][]byte{zpixMagic},
		Load:  zpixLoad,
		Save:  zpixSave,
	}
}
