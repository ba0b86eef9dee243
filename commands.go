package main

import (
	"fmt"
	"image"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sync/atomic"

	"golang.org/x/image/draw"

	"pixbuf/codec"
	"pixbuf/parallel"
	"pixbuf/pixel"
	"pixbuf/raster"
)

type ConvertCmd struct {
	Scan       string `help:"Source folder to scan" default:"."`
	Dest       string `help:"Destination folder for converted pictures. Relative to scan dir if not absolute. If same as scan dir, will overwrite source files." default:"converted"`
	Format     string `help:"Output format, or 'same' to keep each file's own" enum:"same,png,jpeg,gif,qoi,bmp,tiff,zpix" default:"same"`
	Type       string `help:"Pixel type to convert to (l8, la8, rgb8, rgba8, their 16 bit and float variants)" default:""`
	Greyscale  bool   `help:"Collapse colour to grey while loading" group:"channels"`
	RGB        bool   `help:"Expand grey to colour while loading" group:"channels"`
	Alpha      bool   `help:"Add an opaque alpha channel while loading" group:"channels"`
	NoAlpha    bool   `help:"Drop the alpha channel while loading" group:"channels"`
	Resize     bool   `help:"Scale to fit inside --width by --height, keeping aspect. Lands on 16 bit RGBA." default:"false" group:"resize"`
	Width      int    `help:"Max width" group:"resize"`
	Height     int    `help:"Max height" group:"resize"`
	Challenger bool   `help:"Use the slow strong encoder where the format has one"`

	Target pixel.Type `kong:"-"`
}

func (c *ConvertCmd) Validate() error {
	scanDir, err := filepath.Abs(c.Scan)
	var info os.FileInfo
	if err == nil {
		if info, err = os.Stat(scanDir); err == nil && !info.IsDir() {
			err = fmt.Errorf("not a directory")
		}
	}
	if err != nil {
		return fmt.Errorf("invalid scan path %q: %w", c.Scan, err)
	}
	c.Scan = scanDir

	if !filepath.IsAbs(c.Dest) {
		c.Dest = filepath.Join(scanDir, c.Dest)
	}

	if c.Resize {
		switch {
		case c.Width < 0:
			return fmt.Errorf("invalid resize width: %d", c.Width)
		case c.Height < 0:
			return fmt.Errorf("invalid resize height: %d", c.Height)
		case c.Width == 0 && c.Height == 0:
			return fmt.Errorf("no resize dimensions given")
		}
	}

	if c.Greyscale && c.RGB {
		return fmt.Errorf("cannot request both greyscale and rgb")
	}
	if c.Alpha && c.NoAlpha {
		return fmt.Errorf("cannot both add and drop the alpha channel")
	}

	if c.Type != "" {
		t, ok := pixel.ParseType(c.Type)
		if !ok {
			return fmt.Errorf("unknown pixel type %q", c.Type)
		}
		if !t.IsPlain() {
			return fmt.Errorf("cannot convert to %s pixels", t)
		}
		c.Target = t
	}

	return nil
}

func (c *ConvertCmd) loadFlags() raster.Flag {
	flags := raster.LoadNormal
	if c.Greyscale {
		flags |= raster.LoadGreyscale
	}
	if c.RGB {
		flags |= raster.LoadRGB
	}
	if c.Alpha {
		flags |= raster.LoadAlpha
	}
	if c.NoAlpha {
		flags |= raster.LoadNoAlpha
	}
	return flags
}

func (c *ConvertCmd) saveFlags() raster.Flag {
	if c.Challenger {
		return raster.SaveChallenger
	}
	return raster.SaveNormal
}

func (c *ConvertCmd) Run(reg *raster.Registry, pool *parallel.Pool) error {
	if err := os.MkdirAll(c.Dest, 0o755); err != nil {
		return fmt.Errorf("unable to create destination folder %q: %w", c.Dest, err)
	}

	files, err := os.ReadDir(c.Scan)
	if err != nil {
		return fmt.Errorf("unable to read folder %q: %w", c.Scan, err)
	}

	var processedCount, errCount atomic.Uint64
	for _, file := range files {
		if file.IsDir() {
			continue
		}

		pool.Submit(func(fileName string) func() {
			return func() {
				filePath := filepath.Join(c.Scan, fileName)
				logger := slog.Default().With("file", filePath)

				var im raster.Image
				if err := im.LoadFile(reg, filePath, c.loadFlags()); err != nil {
					errCount.Add(1)
					logger.Error("could not load image", "error", err)
					return
				}

				if c.Resize {
					if err := resize(logger, &im, c.Width, c.Height); err != nil {
						errCount.Add(1)
						logger.Error("could not resize image", "error", err)
						return
					}
				}

				if c.Target != pixel.Unknown && c.Target != im.Type() {
					if err := im.ConvertTo(c.Target, 0); err != nil {
						errCount.Add(1)
						logger.Error("could not convert image", "type", c.Target.String(), "error", err)
						return
					}
				}

				if err := save(reg, &im, c.Format, c.Dest, fileName, c.saveFlags()); err != nil {
					errCount.Add(1)
					logger.Error("could not save image", "dir", c.Dest, "error", err)
					return
				}
				processedCount.Add(1)
			}
		}(file.Name()))
	}

	pool.Wait()

	processed := processedCount.Load()
	errors := errCount.Load()
	slog.Info("stats", "processed", processed, "errors", errors,
		"total", processed+errors)

	if errors > 0 {
		return fmt.Errorf("error processing %d files", errors)
	}
	return nil
}

type InfoCmd struct {
	Paths []string `arg:"" help:"Image files to inspect" type:"existingfile"`
}

func (c *InfoCmd) Run(reg *raster.Registry) error {
	var errCount int
	for _, path := range c.Paths {
		var im raster.Image
		if err := im.LoadFile(reg, path, raster.LoadNoPixels); err != nil {
			errCount++
			slog.Error("could not read image header", "file", path, "error", err)
			continue
		}
		fmt.Printf("%s: %dx%d %s, %d bytes per pixel, %d bytes per row\n",
			path, im.Width(), im.Height(), im.Type(), im.Type().Size(), im.RowBytes())
	}
	if errCount > 0 {
		return fmt.Errorf("error reading %d files", errCount)
	}
	return nil
}

type FlipCmd struct {
	Vertical   bool     `help:"Mirror top to bottom" xor:"axis"`
	Horizontal bool     `help:"Mirror left to right" xor:"axis"`
	Paths      []string `arg:"" help:"Image files to flip in place" type:"existingfile"`
}

func (c *FlipCmd) Validate() error {
	if !c.Vertical && !c.Horizontal {
		return fmt.Errorf("pick an axis: --vertical or --horizontal")
	}
	return nil
}

func (c *FlipCmd) Run(reg *raster.Registry, pool *parallel.Pool) error {
	var flippedCount, errCount atomic.Uint64
	for _, path := range c.Paths {
		pool.Submit(func(filePath string) func() {
			return func() {
				logger := slog.Default().With("file", filePath)

				var im raster.Image
				if err := im.LoadFile(reg, filePath, raster.LoadNormal); err != nil {
					errCount.Add(1)
					logger.Error("could not load image", "error", err)
					return
				}

				if c.Vertical {
					im.FlipVertical()
				} else {
					im.FlipHorizontal()
				}

				if err := save(reg, &im, "same", filepath.Dir(filePath), filepath.Base(filePath), raster.SaveNormal); err != nil {
					errCount.Add(1)
					logger.Error("could not save image", "error", err)
					return
				}
				flippedCount.Add(1)
			}
		}(path))
	}

	pool.Wait()

	flipped := flippedCount.Load()
	errors := errCount.Load()
	slog.Info("stats", "flipped", flipped, "errors", errors,
		"total", flipped+errors)

	if errors > 0 {
		return fmt.Errorf("error processing %d files", errors)
	}
	return nil
}

// resize scales the image to fit inside width by height, preserving the
// aspect ratio. Zero means no limit on that side. The result is 16 bit
// RGBA regardless of the input type.
func resize(logger *slog.Logger, im *raster.Image, width, height int) error {
	if !im.HasNonZeroSize() {
		return nil
	}

	srcW := float64(im.Width())
	srcH := float64(im.Height())
	dw := float64(width)
	if dw == 0 {
		dw = srcW
	}
	dh := float64(height)
	if dh == 0 {
		dh = srcH
	}
	if dw == srcW && dh == srcH {
		return nil
	}

	srcAR := srcW / srcH
	destAR := dw / dh
	if srcAR < destAR {
		dw = math.Round(dh * srcAR)
	} else if srcAR > destAR {
		dh = math.Round(dw / srcAR)
	}
	if dw < 1 {
		dw = 1
	}
	if dh < 1 {
		dh = 1
	}

	src, err := codec.ToImage(im)
	if err != nil {
		return err
	}

	logger.Info("resizing", "width", int(dw), "height", int(dh))
	dest := image.NewRGBA64(image.Rect(0, 0, int(dw), int(dh)))
	draw.CatmullRom.Scale(dest, dest.Bounds(), src, src.Bounds(), draw.Src, nil)

	return codec.FromImage(im, dest, 0)
}

// save encodes the image into destDir under the source file's name,
// swapping the extension when outType names a format. The write is
// atomic: encode to a temp file, then rename over the destination.
func save(reg *raster.Registry, im *raster.Image, outType, destDir, srcName string, flags raster.Flag) (err error) {
	destName := srcName
	if outType != "same" {
		oldExt := filepath.Ext(srcName)
		destName = fmt.Sprintf("%s.%s", srcName[:len(srcName)-len(oldExt)], outType)
	}

	format, ok := reg.ByExt(filepath.Ext(destName))
	if !ok {
		return fmt.Errorf("no encoder for %q", destName)
	}

	outFile, err := os.CreateTemp(destDir, destName)
	if err != nil {
		return fmt.Errorf("could not create temporary destination %q: %w", destName, err)
	}
	canRename := false
	defer func() {
		if defErr := outFile.Sync(); defErr != nil {
			err = fmt.Errorf("could not flush temporary destination %q: %w", destName, defErr)
		}
		if defErr := outFile.Close(); defErr != nil {
			err = fmt.Errorf("could not close temporary destination %q: %w", destName, defErr)
		}

		if !canRename {
			if defErr := os.Remove(outFile.Name()); defErr != nil {
				slog.Error("could not remove temporary destination", "name", outFile.Name(), "error", defErr)
			}
			return
		}
		if defErr := os.Rename(outFile.Name(), filepath.Join(destDir, destName)); defErr != nil {
			err = fmt.Errorf("could not rename destination file %q: %w", destName, defErr)
		}
	}()

	if err = im.SaveStream(reg, outFile, format.Name, flags); err != nil {
		return fmt.Errorf("could not write destination %q: %w", destName, err)
	}

	canRename = true
	return err
}
