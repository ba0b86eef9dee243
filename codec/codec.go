// Package codec ships the built-in image formats: png, jpeg, gif, bmp
// and tiff through the std and x/image codecs, qoi through its
// reference Go codec, and zpix, the native zstd-compressed container
// that round-trips every plain pixel type losslessly.
//
// Formats are plain values; register the ones you need, or start from
// Registry for all of them:
//
//	reg := codec.Registry()
//	var im raster.Image
//	err := im.LoadFile(reg, "in.png", raster.LoadNormal)
package codec

import "pixbuf/raster"

// All returns the built-in formats in detection order.
func All() []raster.Format {
	return []raster.Format{
		PNG(), JPEG(), GIF(), QOI(), BMP(), TIFF(), ZPix(),
	}
}

// Registry returns a fresh registry holding every built-in format.
func Registry() *raster.Registry {
	return raster.NewRegistry(All()...)
}
