package common

import (
	"encoding/binary"
	"math"
	"testing"
)

func TestCoalesce(t *testing.T) {
	if got := Coalesce(0, 0, 3, 4); got != 3 {
		t.Fatalf("Coalesce = %d, want 3", got)
	}
	if got := Coalesce("", ""); got != "" {
		t.Fatalf("Coalesce of zeros = %q", got)
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		v, want float32
	}{
		{-1, 0.01},
		{0.5, 0.5},
		{2.5, 1},
	}
	for _, tt := range tests {
		if got := Clamp(tt.v, 0.01, 1); got != tt.want {
			t.Fatalf("Clamp(%v) = %v, want %v", tt.v, got, tt.want)
		}
	}
}

func TestSliceToBytes(t *testing.T) {
	if SliceToBytes([]float32{}) != nil {
		t.Fatalf("empty slice should map to nil")
	}
	b := SliceToBytes([]float32{1, 0.5})
	if len(b) != 8 {
		t.Fatalf("len = %d, want 8", len(b))
	}
	if got := math.Float32frombits(binary.NativeEndian.Uint32(b[4:])); got != 0.5 {
		t.Fatalf("second element = %v", got)
	}
}

func TestMat3MulVec(t *testing.T) {
	m := Mat3{{0, 1, 0}, {1, 0, 0}, {0, 0, 2}}
	if got := m.MulVec([3]float64{1, 2, 3}); got != [3]float64{2, 1, 6} {
		t.Fatalf("MulVec = %v", got)
	}
}

func TestRectSize(t *testing.T) {
	r := Rect{Left: 10, Top: 20, Right: 810, Bottom: 620}
	if s := r.Size(); s != (Size{Width: 800, Height: 600}) || s.Empty() {
		t.Fatalf("Size = %+v", s)
	}
	if !(Size{Width: 0, Height: 5}).Empty() {
		t.Fatalf("zero width should be empty")
	}
}
