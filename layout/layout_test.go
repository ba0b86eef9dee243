package layout

import "testing"

func TestConstraintFields(t *testing.T) {
	tests := []struct {
		cons     Constraints
		mult     int
		trailing int
		align    int
		border   int
	}{
		{Default, 1, 0, 1, 0},
		{Mult2, 2, 0, 1, 0},
		{Mult8 | Trailing7, 8, 7, 1, 0},
		{Trailing1 | Align16, 1, 1, 16, 0},
		{Trailing3 | Align128 | Border3, 1, 3, 128, 3},
		{Mult4 | Align2 | Border1, 4, 0, 2, 1},
	}
	for _, tt := range tests {
		t.Run(tt.cons.String(), func(t *testing.T) {
			if got := tt.cons.Multiplicity(); got != tt.mult {
				t.Errorf("Multiplicity() = %d, want %d", got, tt.mult)
			}
			if got := tt.cons.TrailingPixels(); got != tt.trailing {
				t.Errorf("TrailingPixels() = %d, want %d", got, tt.trailing)
			}
			if got := tt.cons.Alignment(); got != tt.align {
				t.Errorf("Alignment() = %d, want %d", got, tt.align)
			}
			if got := tt.cons.Border(); got != tt.border {
				t.Errorf("Border() = %d, want %d", got, tt.border)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	valid := []Constraints{
		Default,
		Mult8 | Trailing7 | Align128 | Border3 | TopDown,
		Gapless,
		Gapless | TopDown,
		Gapless | BottomUp,
		BottomUp | Align64,
	}
	for _, c := range valid {
		if err := c.Validate(); err != nil {
			t.Errorf("Validate(%v) = %v, want nil", c, err)
		}
	}
	invalid := []Constraints{
		Keep,
		TopDown | BottomUp,
		Gapless | Mult2,
		Gapless | Trailing1,
		Gapless | Align4,
		Gapless | Border1,
		1 << 14,
		1 << 15,
	}
	for _, c := range invalid {
		if err := c.Validate(); err == nil {
			t.Errorf("Validate(%v) = nil, want error", c)
		}
	}
}

func TestSatisfies(t *testing.T) {
	tests := []struct {
		have, want Constraints
		ok         bool
	}{
		{Default | TopDown, Default, true},
		{Mult8 | Trailing7 | Align128 | Border3 | TopDown | Gapless, Mult2 | Trailing1 | Align16 | Border1, true},
		{Mult2 | TopDown, Mult4, false},
		{Trailing1 | TopDown, Trailing3, false},
		{Align16 | TopDown, Align32, false},
		{Border1 | TopDown, Border2, false},
		{TopDown, TopDown, true},
		{TopDown, BottomUp, false},
		{BottomUp, BottomUp, true},
		{BottomUp, Default, true},
		{TopDown, Gapless, false},
		{Gapless | TopDown, Gapless, true},
	}
	for _, tt := range tests {
		if got := tt.have.Satisfies(tt.want); got != tt.ok {
			t.Errorf("(%v).Satisfies(%v) = %v, want %v", tt.have, tt.want, got, tt.ok)
		}
	}
}

func TestAdHoc(t *testing.T) {
	tests := []struct {
		name  string
		shape Shape
		want  Constraints
	}{
		{
			name: "tight top-down",
			// 4x4 rgba8, pitch == row bytes, 4 KiB aligned base.
			shape: Shape{Addr: 0x1000, Length: 64, DataOff: 0, Pitch: 16, Width: 4, Height: 4, PixelSize: 4},
			want:  TopDown | Gapless | Align16 | Mult4,
		},
		{
			name: "bottom-up tight",
			shape: Shape{Addr: 0x1000, Length: 64, DataOff: 48, Pitch: -16, Width: 4, Height: 4, PixelSize: 4},
			want:  BottomUp | Gapless | Align16 | Mult4,
		},
		{
			name: "padded rows",
			// 5px rgb8 rows (15 bytes) on a 16 byte pitch: one slack
			// byte, not enough for a whole trailing pixel.
			shape: Shape{Addr: 0x2000, Length: 64, DataOff: 0, Pitch: 16, Width: 5, Height: 4, PixelSize: 3},
			want:  TopDown | Align16 | Mult1 | Trailing0,
		},
		{
			name: "trailing slack",
			// 2px l8 rows on an 16 byte pitch: 14 readable bytes past
			// each row end, covering 7 trailing pixels and mult 8.
			shape: Shape{Addr: 0x4000, Length: 64, DataOff: 0, Pitch: 16, Width: 2, Height: 4, PixelSize: 1},
			want:  TopDown | Align16 | Mult8 | Trailing7,
		},
		{
			name: "misaligned base",
			shape: Shape{Addr: 0x1001, Length: 64, DataOff: 0, Pitch: 16, Width: 4, Height: 4, PixelSize: 4},
			want:  TopDown | Gapless | Align1 | Mult4,
		},
		{
			name: "single row ignores pitch",
			shape: Shape{Addr: 0x1000, Length: 16, DataOff: 0, Pitch: 0, Width: 4, Height: 1, PixelSize: 4},
			want:  TopDown | Gapless | Align128 | Mult4,
		},
		{
			name: "declared border carries over",
			shape: Shape{Addr: 0x1000, Length: 64, DataOff: 20, Pitch: 16, Width: 3, Height: 2, PixelSize: 4, Declared: Border1},
			want:  TopDown | Border1 | Align4 | Mult4 | Trailing3,
		},
		{
			name:  "zero area claims everything",
			shape: Shape{Addr: 0x1000, Length: 0, DataOff: 0, Pitch: 0, Width: 0, Height: 0, PixelSize: 4},
			want:  TopDown | BottomUp | Gapless | Align128 | Mult8 | Trailing7,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.shape.AdHoc(); got != tt.want {
				t.Errorf("AdHoc() = %v, want %v", got, tt.want)
			}
		})
	}
}
