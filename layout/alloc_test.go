package layout

import (
	"errors"
	"testing"
	"unsafe"

	"pixbuf/pixel"
)

func shapeOf(blk Block, t pixel.Type, w, h int, declared Constraints) Shape {
	var addr uintptr
	if len(blk.Storage) > 0 {
		addr = uintptr(unsafe.Pointer(unsafe.SliceData(blk.Storage)))
	}
	return Shape{
		Addr:      addr,
		Length:    len(blk.Storage),
		DataOff:   blk.DataOff,
		Pitch:     blk.Pitch,
		Width:     w,
		Height:    h,
		PixelSize: t.Size(),
		Declared:  declared,
	}
}

// Whatever gets requested, the resulting storage must actually provide it.
func TestAllocHonoursConstraints(t *testing.T) {
	conses := []Constraints{
		Default,
		Mult2, Mult4, Mult8,
		Trailing1, Trailing3, Trailing7,
		Align2, Align16, Align64, Align128,
		Border1, Border3,
		TopDown, BottomUp,
		Gapless, Gapless | TopDown, Gapless | BottomUp,
		Mult8 | Trailing7 | Align128 | Border3 | BottomUp,
		Mult4 | Align32 | TopDown,
	}
	types := []pixel.Type{pixel.L8, pixel.RGB8, pixel.RGBA8, pixel.RGB16, pixel.RGBAF32}
	dims := []struct{ w, h int }{{1, 1}, {3, 5}, {16, 4}, {31, 2}, {0, 0}, {0, 7}, {5, 0}}
	for _, cons := range conses {
		for _, typ := range types {
			for _, d := range dims {
				blk, err := Alloc(typ, d.w, d.h, cons, 0)
				if err != nil {
					t.Fatalf("Alloc(%v, %dx%d, %v) = %v", typ, d.w, d.h, cons, err)
				}
				if blk.Storage == nil {
					t.Fatalf("Alloc(%v, %dx%d, %v): nil storage", typ, d.w, d.h, cons)
				}
				adhoc := shapeOf(blk, typ, d.w, d.h, cons).AdHoc()
				if !adhoc.Satisfies(cons) {
					t.Errorf("Alloc(%v, %dx%d, %v): ad hoc %v does not satisfy request",
						typ, d.w, d.h, cons, adhoc)
				}
			}
		}
	}
}

func TestAllocRowsInBounds(t *testing.T) {
	for _, cons := range []Constraints{Default, Border3 | Align64, BottomUp | Border2, Mult8 | Trailing7} {
		blk, err := Alloc(pixel.RGB8, 7, 5, cons, 0)
		if err != nil {
			t.Fatalf("Alloc: %v", err)
		}
		rowBytes := 7 * pixel.RGB8.Size()
		for y := 0; y < 5; y++ {
			start := blk.DataOff + y*blk.Pitch
			if start < 0 || start+rowBytes > len(blk.Storage) {
				t.Fatalf("cons %v: row %d spans [%d, %d) outside storage of %d bytes",
					cons, y, start, start+rowBytes, len(blk.Storage))
			}
		}
	}
}

func TestAllocBottomUp(t *testing.T) {
	blk, err := Alloc(pixel.L8, 4, 3, BottomUp, 0)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	if blk.Pitch >= 0 {
		t.Fatalf("Pitch = %d, want negative", blk.Pitch)
	}
	// Logical row 0 sits last in memory, row h-1 first.
	if first := blk.DataOff + 2*blk.Pitch; first != 0 {
		t.Errorf("physically first row starts at %d, want 0", first)
	}
}

func TestAllocScratch(t *testing.T) {
	const scratch = 64
	blk, err := Alloc(pixel.RGBA8, 8, 2, Align16, scratch)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	if blk.ScratchOff+scratch != len(blk.Storage) {
		t.Errorf("ScratchOff = %d with %d bytes of storage", blk.ScratchOff, len(blk.Storage))
	}
	lastEnd := blk.DataOff + blk.Pitch + 8*pixel.RGBA8.Size()
	if blk.ScratchOff < lastEnd {
		t.Errorf("scratch at %d overlaps pixel rows ending at %d", blk.ScratchOff, lastEnd)
	}
}

func TestAllocZeroArea(t *testing.T) {
	for _, d := range []struct{ w, h int }{{0, 0}, {0, 9}, {9, 0}} {
		blk, err := Alloc(pixel.RGBA16, d.w, d.h, Default, 0)
		if err != nil {
			t.Fatalf("Alloc(%dx%d) = %v", d.w, d.h, err)
		}
		if blk.Storage == nil {
			t.Errorf("Alloc(%dx%d): nil storage", d.w, d.h)
		}
	}
}

func TestAllocRejects(t *testing.T) {
	tests := []struct {
		name string
		typ  pixel.Type
		w, h int
		cons Constraints
		want error
	}{
		{"negative width", pixel.L8, -1, 4, Default, ErrInvalidSize},
		{"negative height", pixel.L8, 4, -1, Default, ErrInvalidSize},
		{"width over limit", pixel.L8, MaxDim + 1, 1, Default, ErrSizeLimit},
		{"height over limit", pixel.L8, 1, MaxDim + 1, Default, ErrSizeLimit},
		{"area over limit", pixel.L8, 1 << 21, 1 << 21, Default, ErrSizeLimit},
		{"unknown type", pixel.Unknown, 4, 4, Default, ErrUnsupportedType},
		{"planar type", pixel.Planar, 4, 4, Default, ErrUnsupportedType},
		{"compressed type", pixel.Compressed, 4, 4, Default, ErrUnsupportedType},
		{"keep sentinel", pixel.L8, 4, 4, Keep, ErrInvalidConstraints},
		{"gapless with border", pixel.L8, 4, 4, Gapless | Border1, ErrInvalidConstraints},
		{"both orientations", pixel.L8, 4, 4, TopDown | BottomUp, ErrInvalidConstraints},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Alloc(tt.typ, tt.w, tt.h, tt.cons, 0)
			if !errors.Is(err, tt.want) {
				t.Errorf("Alloc = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestAllocGapless(t *testing.T) {
	blk, err := Alloc(pixel.RGB8, 10, 4, Gapless, 0)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	rowBytes := 10 * pixel.RGB8.Size()
	if blk.Pitch != rowBytes {
		t.Errorf("Pitch = %d, want %d", blk.Pitch, rowBytes)
	}
	if blk.DataOff != 0 {
		t.Errorf("DataOff = %d, want 0", blk.DataOff)
	}
	if len(blk.Storage) != rowBytes*4 {
		t.Errorf("storage length = %d, want %d", len(blk.Storage), rowBytes*4)
	}
}
