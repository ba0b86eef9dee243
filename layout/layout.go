// Package layout describes how the scanlines of an image sit in memory:
// padding granularity, address alignment, guard borders, vertical
// orientation and gaplessness. Constraints are requests or guarantees;
// the allocator turns requests into storage and Shape derives the
// guarantees storage actually provides.
package layout

import (
	"errors"
	"fmt"
	"math/bits"
	"strings"
)

// Constraints is a bitset of independent layout requirements. The zero
// value requests nothing. Bits 16 and up are never used so callers can
// pack constraints and unrelated option flags into one integer.
type Constraints uint32

const (
	multShift   = 0
	multMask    = 3 << multShift
	trailShift  = 2
	trailMask   = 3 << trailShift
	alignShift  = 4
	alignMask   = 7 << alignShift
	borderShift = 8
	borderMask  = 3 << borderShift
)

const (
	// Scanlines hold a whole number of N-pixel blocks; reads may
	// overrun the declared width up to the next block boundary.
	Mult1 Constraints = 0 << multShift
	Mult2 Constraints = 1 << multShift
	Mult4 Constraints = 2 << multShift
	Mult8 Constraints = 3 << multShift

	// N additional pixels past each scanline's end are readable.
	Trailing0 Constraints = 0 << trailShift
	Trailing1 Constraints = 1 << trailShift
	Trailing3 Constraints = 2 << trailShift
	Trailing7 Constraints = 3 << trailShift

	// Every scanline starts on an N-byte machine address.
	Align1   Constraints = 0 << alignShift
	Align2   Constraints = 1 << alignShift
	Align4   Constraints = 2 << alignShift
	Align8   Constraints = 3 << alignShift
	Align16  Constraints = 4 << alignShift
	Align32  Constraints = 5 << alignShift
	Align64  Constraints = 6 << alignShift
	Align128 Constraints = 7 << alignShift

	// N border pixels surround the image on all four sides.
	Border0 Constraints = 0 << borderShift
	Border1 Constraints = 1 << borderShift
	Border2 Constraints = 2 << borderShift
	Border3 Constraints = 3 << borderShift

	// Orientation pins. TopDown stores logical scanline 0 first in
	// memory, BottomUp stores it last. Unpinned images may be flipped
	// vertically without moving pixels.
	TopDown  Constraints = 1 << 10
	BottomUp Constraints = 1 << 11

	// Gapless promises no padding between the declared pixel width and
	// the pitch, so the whole pixel region is one contiguous run.
	Gapless Constraints = 1 << 12

	// Keep is a sentinel for conversion entry points: retain the
	// image's current constraints. It is not a valid constraint set.
	Keep Constraints = 1 << 13

	Default Constraints = 0
)

const knownMask = multMask | trailMask | alignMask | borderMask |
	TopDown | BottomUp | Gapless | Keep

var (
	ErrInvalidSize        = errors.New("layout: invalid dimensions")
	ErrSizeLimit          = errors.New("layout: dimensions exceed limits")
	ErrUnsupportedType    = errors.New("layout: pixel type has no plain storage")
	ErrInvalidConstraints = errors.New("layout: invalid constraint combination")
)

// Multiplicity returns the pixel block granularity: 1, 2, 4 or 8.
func (c Constraints) Multiplicity() int {
	return 1 << ((c & multMask) >> multShift)
}

// TrailingPixels returns the guaranteed readable pixels past each
// scanline: 0, 1, 3 or 7.
func (c Constraints) TrailingPixels() int {
	return 1<<((c&trailMask)>>trailShift) - 1
}

// Alignment returns the scanline address alignment in bytes: 1 to 128.
func (c Constraints) Alignment() int {
	return 1 << ((c & alignMask) >> alignShift)
}

// Border returns the guard border width in pixels: 0 to 3.
func (c Constraints) Border() int {
	return int((c & borderMask) >> borderShift)
}

func (c Constraints) MustTopDown() bool  { return c&TopDown != 0 }
func (c Constraints) MustBottomUp() bool { return c&BottomUp != 0 }
func (c Constraints) IsGapless() bool    { return c&Gapless != 0 }
func (c Constraints) IsKeep() bool       { return c&Keep != 0 }

// Validate rejects combinations no storage can honour.
func (c Constraints) Validate() error {
	if c&^knownMask != 0 {
		return fmt.Errorf("%w: unknown bits %#x", ErrInvalidConstraints, uint32(c&^knownMask))
	}
	if c.IsKeep() {
		return fmt.Errorf("%w: keep sentinel used as a constraint set", ErrInvalidConstraints)
	}
	if c.MustTopDown() && c.MustBottomUp() {
		return fmt.Errorf("%w: both orientations pinned", ErrInvalidConstraints)
	}
	if c.IsGapless() &&
		(c.Multiplicity() > 1 || c.TrailingPixels() > 0 || c.Alignment() > 1 || c.Border() > 0) {
		return fmt.Errorf("%w: gapless excludes padding, alignment and borders", ErrInvalidConstraints)
	}
	return nil
}

// Satisfies reports whether the guarantees in have meet every
// requirement in want, field by field. Stronger always satisfies weaker.
func (have Constraints) Satisfies(want Constraints) bool {
	if have.Multiplicity() < want.Multiplicity() ||
		have.TrailingPixels() < want.TrailingPixels() ||
		have.Alignment() < want.Alignment() ||
		have.Border() < want.Border() {
		return false
	}
	if want.MustTopDown() && !have.MustTopDown() {
		return false
	}
	if want.MustBottomUp() && !have.MustBottomUp() {
		return false
	}
	if want.IsGapless() && !have.IsGapless() {
		return false
	}
	return true
}

// BytePreserving returns only the fields that survive reinterpreting
// the same bytes under a different pixel size: orientation, alignment
// and gaplessness. Fields counted in pixels (multiplicity, trailing,
// border) are dropped.
func (c Constraints) BytePreserving() Constraints {
	return c & (alignMask | TopDown | BottomUp | Gapless)
}

func (c Constraints) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "mult=%d trailing=%d align=%d border=%d",
		c.Multiplicity(), c.TrailingPixels(), c.Alignment(), c.Border())
	if c.MustTopDown() {
		b.WriteString(" top-down")
	}
	if c.MustBottomUp() {
		b.WriteString(" bottom-up")
	}
	if c.IsGapless() {
		b.WriteString(" gapless")
	}
	if c.IsKeep() {
		b.WriteString(" keep")
	}
	return b.String()
}

// Shape describes one image's actual storage so the guarantees it
// happens to provide can be derived without touching memory.
type Shape struct {
	Addr      uintptr // machine address of the first storage byte, 0 if unknown
	Length    int     // total storage length in bytes
	DataOff   int     // byte offset of logical scanline 0
	Pitch     int     // signed byte distance between logical scanlines
	Width     int
	Height    int
	PixelSize int
	Declared  Constraints
}

// AdHoc returns the strongest constraint set s is known to honour.
// Borders are not inspectable and carry over from Declared; everything
// else is derived from addresses and slack alone.
func (s Shape) AdHoc() Constraints {
	adhoc := s.Declared & borderMask
	if s.Pitch >= 0 {
		adhoc |= TopDown
	} else {
		adhoc |= BottomUp
	}
	if s.Height == 0 || s.Width == 0 || s.PixelSize == 0 {
		// No pixel bytes at all: every per-scanline guarantee holds,
		// orientation included.
		return adhoc | Mult8 | Trailing7 | Align128 | Gapless | TopDown | BottomUp
	}

	rowBytes := s.Width * s.PixelSize
	pitchMag := s.Pitch
	if pitchMag < 0 {
		pitchMag = -pitchMag
	}
	if s.Height == 1 {
		// A single scanline never spans a pitch step.
		pitchMag = 0
	}
	if pitchMag == 0 || pitchMag == rowBytes {
		adhoc |= Gapless
	}

	align := 128
	if s.Addr == 0 {
		align = 1
	}
	start := uint64(s.Addr) + uint64(s.DataOff)
	for align > 1 && (start%uint64(align) != 0 || pitchMag%align != 0) {
		align >>= 1
	}
	adhoc |= encodeAlign(align)

	// Worst-case readable bytes past a scanline's pixels across rows.
	maxEnd := s.DataOff + rowBytes
	if s.Pitch > 0 {
		maxEnd += (s.Height - 1) * s.Pitch
	}
	slackPx := 0
	if slack := s.Length - maxEnd; slack > 0 {
		slackPx = slack / s.PixelSize
	}
	for _, px := range []int{7, 3, 1} {
		if px <= slackPx {
			adhoc |= encodeTrailing(px)
			break
		}
	}
	for _, m := range []int{8, 4, 2} {
		if up := (s.Width+m-1)/m*m - s.Width; up <= slackPx {
			adhoc |= encodeMult(m)
			break
		}
	}
	return adhoc
}

func encodeMult(m int) Constraints {
	return Constraints(bits.Len(uint(m))-1) << multShift
}

func encodeTrailing(px int) Constraints {
	return Constraints(bits.Len(uint(px+1))-1) << trailShift
}

func encodeAlign(a int) Constraints {
	return Constraints(bits.Len(uint(a))-1) << alignShift
}
