package raster

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"pixbuf/layout"
	"pixbuf/pixel"
)

// Flag carries load and save options in bits 16 and up, leaving the low
// half free for layout.Constraints so both travel in one value:
//
//	im.LoadFile(reg, name, raster.LoadRGBA|raster.Flag(layout.Gapless))
type Flag uint32

const (
	LoadNormal Flag = 0

	// Channel-shape requests, applied to the decoded type through the
	// catalogue. Greyscale and RGB conflict, as do Alpha and NoAlpha.
	LoadGreyscale Flag = 1 << 16
	LoadAlpha     Flag = 1 << 17
	LoadNoAlpha   Flag = 1 << 18
	LoadRGB       Flag = 1 << 19

	// LoadNoPixels decodes only the header: type and dimensions, no
	// data.
	LoadNoPixels Flag = 1 << 20

	LoadGreyscaleAlpha Flag = LoadGreyscale | LoadAlpha
	LoadRGBA           Flag = LoadRGB | LoadAlpha

	SaveNormal Flag = 0

	// SaveChallenger asks the format for its slower, stronger encoder
	// where it has one.
	SaveChallenger Flag = 1 << 24
)

// Layout extracts the layout constraint bits packed into f.
func (f Flag) Layout() layout.Constraints {
	return layout.Constraints(uint32(f) & 0xffff)
}

func (f Flag) validate() error {
	if f&LoadGreyscale != 0 && f&LoadRGB != 0 {
		return fmt.Errorf("%w: greyscale and rgb", ErrBadFlags)
	}
	if f&LoadAlpha != 0 && f&LoadNoAlpha != 0 {
		return fmt.Errorf("%w: alpha and no-alpha", ErrBadFlags)
	}
	return nil
}

// targetType maps the decoder's natural type through the channel-shape
// requests.
func (f Flag) targetType(natural pixel.Type) pixel.Type {
	t := natural
	if f&LoadGreyscale != 0 {
		t = t.Greyscale()
	}
	if f&LoadRGB != 0 {
		t = t.RGB()
	}
	if f&LoadAlpha != 0 {
		t = t.WithAlpha()
	}
	if f&LoadNoAlpha != 0 {
		t = t.WithoutAlpha()
	}
	return t
}

// Format describes one image file format to a Registry. Load fills the
// image from the rewound stream, honouring the flags it can; the
// container applies whatever remains afterwards. A nil Save marks a
// decode-only format. Save must not mutate the image.
type Format struct {
	Name  string
	Exts  []string // lowercase, leading dot
	Magic [][]byte // any-of signature prefixes
	Load  func(im *Image, r io.ReadSeeker, flags Flag) error
	Save  func(im *Image, w io.Writer, flags Flag) error
}

// Registry is an explicit collection of formats. Detection walks the
// formats in registration order. Safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	formats []Format
}

// NewRegistry returns a registry holding the given formats.
func NewRegistry(formats ...Format) *Registry {
	r := &Registry{}
	for _, f := range formats {
		r.Register(f)
	}
	return r
}

// Register adds f, replacing any format of the same name in place.
func (r *Registry) Register(f Format) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.formats {
		if r.formats[i].Name == f.Name {
			r.formats[i] = f
			return
		}
	}
	r.formats = append(r.formats, f)
}

// Lookup returns the format registered under name.
func (r *Registry) Lookup(name string) (Format, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, f := range r.formats {
		if f.Name == name {
			return f, true
		}
	}
	return Format{}, false
}

// ByExt returns the format claiming the file extension ext (lowercase,
// with or without the leading dot).
func (r *Registry) ByExt(ext string) (Format, bool) {
	if ext != "" && ext[0] != '.' {
		ext = "." + ext
	}
	ext = strings.ToLower(ext)
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, f := range r.formats {
		for _, e := range f.Exts {
			if e == ext {
				return f, true
			}
		}
	}
	return Format{}, false
}

// Names lists the registered format names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.formats))
	for i, f := range r.formats {
		names[i] = f.Name
	}
	return names
}

// Detect rewinds rs, reads a signature probe and returns the first
// format whose magic matches. The stream is left positioned after the
// probe; callers rewind before decoding.
func (r *Registry) Detect(rs io.ReadSeeker) (Format, error) {
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return Format{}, fmt.Errorf("could not rewind stream: %w", err)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	probeLen := 0
	for _, f := range r.formats {
		for _, m := range f.Magic {
			if len(m) > probeLen {
				probeLen = len(m)
			}
		}
	}
	probe := make([]byte, probeLen)
	n, err := io.ReadFull(rs, probe)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return Format{}, fmt.Errorf("could not read signature: %w", err)
	}
	probe = probe[:n]
	for _, f := range r.formats {
		for _, m := range f.Magic {
			if len(m) <= len(probe) && bytes.Equal(probe[:len(m)], m) {
				return f, nil
			}
		}
	}
	return Format{}, ErrUnknownFormat
}

// LoadFile decodes the named file into the image. On any failure the
// image ends in the errored state: no type, no data, the error
// recorded.
func (im *Image) LoadFile(reg *Registry, path string, flags Flag) error {
	f, err := os.Open(path)
	if err != nil {
		im.fail(fmt.Errorf("could not open %q: %w", path, err))
		return im.err
	}
	defer f.Close()
	return im.LoadStream(reg, f, flags)
}

// LoadBytes decodes an in-memory encoded image.
func (im *Image) LoadBytes(reg *Registry, data []byte, flags Flag) error {
	return im.LoadStream(reg, bytes.NewReader(data), flags)
}

// LoadStream detects the format of r within reg and decodes it into the
// image, then applies the channel-shape, layout and no-pixels flags.
func (im *Image) LoadStream(reg *Registry, r io.ReadSeeker, flags Flag) error {
	im.reset()
	if err := flags.validate(); err != nil {
		im.fail(fmt.Errorf("could not load image: %w", err))
		return im.err
	}
	format, err := reg.Detect(r)
	if err != nil {
		im.fail(fmt.Errorf("could not load image: %w", err))
		return im.err
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		im.fail(fmt.Errorf("could not rewind %s stream: %w", format.Name, err))
		return im.err
	}
	if err := format.Load(im, r, flags); err != nil {
		im.fail(fmt.Errorf("could not decode %s stream: %w", format.Name, err))
		return im.err
	}
	if err := im.applyLoadFlags(flags); err != nil {
		im.fail(err)
		return im.err
	}
	Logger().Debug("loaded image", "format", format.Name,
		"type", im.typ.String(), "width", im.w, "height", im.h)
	return nil
}

func (im *Image) applyLoadFlags(flags Flag) error {
	if im.typ == pixel.Unknown {
		return ErrNoPixelsHere
	}
	if t := flags.targetType(im.typ); t != im.typ {
		if err := im.ConvertTo(t, flags.Layout()); err != nil {
			return err
		}
	} else if cons := flags.Layout(); im.storage != nil && !im.shape().AdHoc().Satisfies(cons) {
		if err := im.ConvertTo(im.typ, cons); err != nil {
			return err
		}
	}
	if flags&LoadNoPixels != 0 && im.storage != nil {
		im.release()
	}
	return nil
}

// SaveFile encodes the image into the named file, picking the format by
// extension. The image is not mutated, its recorded error included.
func (im *Image) SaveFile(reg *Registry, path string, flags Flag) error {
	im.mustData("SaveFile")
	im.mustPlain("SaveFile")
	format, ok := reg.ByExt(filepath.Ext(path))
	if !ok {
		return fmt.Errorf("could not save %q: %w", path, ErrNoCodec)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create %q: %w", path, err)
	}
	if err := im.saveTo(format, f, flags); err != nil {
		f.Close()
		return fmt.Errorf("could not save %q: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("could not close %q: %w", path, err)
	}
	return nil
}

// SaveStream encodes the image to w using the named format.
func (im *Image) SaveStream(reg *Registry, w io.Writer, formatName string, flags Flag) error {
	im.mustData("SaveStream")
	im.mustPlain("SaveStream")
	format, ok := reg.Lookup(formatName)
	if !ok {
		return fmt.Errorf("could not save as %q: %w", formatName, ErrNoCodec)
	}
	return im.saveTo(format, w, flags)
}

// SaveBytes encodes the image into a fresh buffer using the named
// format.
func (im *Image) SaveBytes(reg *Registry, formatName string, flags Flag) ([]byte, error) {
	var buf bytes.Buffer
	if err := im.SaveStream(reg, &buf, formatName, flags); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (im *Image) saveTo(format Format, w io.Writer, flags Flag) error {
	if format.Save == nil {
		return fmt.Errorf("%s: %w", format.Name, ErrNoEncoder)
	}
	if err := format.Save(im, w, flags); err != nil {
		return fmt.Errorf("could not encode %s: %w", format.Name, err)
	}
	Logger().Debug("saved image", "format", format.Name,
		"type", im.typ.String(), "width", im.w, "height", im.h)
	return nil
}
