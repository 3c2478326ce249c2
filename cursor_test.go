package omf_test

import (
	"testing"

	omf "github.com/HK47196/go-omf"
	"github.com/HK47196/go-omf/types"
)

func TestCursorIndex(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want int
	}{
		{"one byte", []byte{0x05}, 5},
		{"one byte max", []byte{0x7F}, 127},
		{"two bytes", []byte{0x80, 0x80}, 128},
		{"two bytes combined", []byte{0x81, 0x23}, 0x123},
		{"two bytes max", []byte{0xFF, 0xFF}, 0x7FFF},
		{"empty", nil, 0},
		{"short second byte", []byte{0x80}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cur := omf.NewCursor(tt.data, types.TISStandard)
			if got := cur.Index(); got != tt.want {
				t.Errorf("Index() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCursorName(t *testing.T) {
	cur := omf.NewCursor([]byte{5, 'H', 'E', 'L', 'L', 'O'}, types.TISStandard)
	if got := cur.Name(); got != "HELLO" {
		t.Errorf("Name() = %q, want HELLO", got)
	}
	if !cur.AtEnd() {
		t.Error("cursor not at end after Name()")
	}
}

func TestCursorNameNonASCII(t *testing.T) {
	cur := omf.NewCursor([]byte{2, 'A', 0xFF}, types.TISStandard)
	if got := cur.Name(); got != "A�" {
		t.Errorf("Name() = %q, want A�", got)
	}
}

func TestCursorNameTruncated(t *testing.T) {
	cur := omf.NewCursor([]byte{5, 'A', 'B'}, types.TISStandard)
	if got := cur.Name(); got != "AB" {
		t.Errorf("Name() = %q, want AB (partial)", got)
	}
}

func TestCursorNumeric(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		size int
		want uint32
	}{
		{"byte", []byte{0xAB}, 1, 0xAB},
		{"word", []byte{0x34, 0x12}, 2, 0x1234},
		{"three bytes zero padded", []byte{0x56, 0x34, 0x12}, 3, 0x123456},
		{"dword", []byte{0x78, 0x56, 0x34, 0x12}, 4, 0x12345678},
		{"short read", []byte{0x01}, 2, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cur := omf.NewCursor(tt.data, types.TISStandard)
			if got := cur.Numeric(tt.size); got != tt.want {
				t.Errorf("Numeric(%d) = %#x, want %#x", tt.size, got, tt.want)
			}
		})
	}
}

func TestCursorVarInt(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want uint32
	}{
		{"literal", []byte{0x40}, 0x40},
		{"literal boundary", []byte{0x80}, 0x80},
		{"two byte", []byte{0x81, 0x00, 0x10}, 0x1000},
		{"three byte", []byte{0x84, 0x01, 0x02, 0x03}, 0x030201},
		{"four byte", []byte{0x88, 0x01, 0x02, 0x03, 0x04}, 0x04030201},
		{"permissive unknown marker", []byte{0x90}, 0x90},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cur := omf.NewCursor(tt.data, types.TISStandard)
			if got := cur.VarInt(); got != tt.want {
				t.Errorf("VarInt() = %#x, want %#x", got, tt.want)
			}
		})
	}
}

func TestCursorOffsetFieldSize(t *testing.T) {
	tis := omf.NewCursor(nil, types.TISStandard)
	pl := omf.NewCursor(nil, types.PharLap)

	if got := tis.OffsetFieldSize(false); got != 2 {
		t.Errorf("TIS 16-bit offset size = %d, want 2", got)
	}
	if got := tis.OffsetFieldSize(true); got != 4 {
		t.Errorf("TIS 32-bit offset size = %d, want 4", got)
	}
	if got := pl.OffsetFieldSize(false); got != 4 {
		t.Errorf("PharLap 16-bit offset size = %d, want 4", got)
	}
	if got := pl.LIDATARepeatCountSize(true); got != 2 {
		t.Errorf("PharLap 32-bit repeat count size = %d, want 2", got)
	}
}
