package varint

import "testing"

func TestClamp(t *testing.T) {
	tests := []struct {
		v, lo, hi, want int
	}{
		{5, 0, 10, 5},
		{-5, 0, 10, 0},
		{15, 0, 10, 10},
		{0, 0, 10, 0},
		{10, 0, 10, 10},
	}
	for _, tt := range tests {
		if got := Clamp(tt.v, tt.lo, tt.hi); got != tt.want {
			t.Errorf("Clamp(%d, %d, %d) = %d, want %d", tt.v, tt.lo, tt.hi, got, tt.want)
		}
	}
}

func TestAtLeast(t *testing.T) {
	tests := []struct {
		v, lo, want int
	}{
		{5, 0, 5},
		{-5, 0, 0},
		{0, 0, 0},
		{-1, -10, -1},
	}
	for _, tt := range tests {
		if got := AtLeast(tt.v, tt.lo); got != tt.want {
			t.Errorf("AtLeast(%d, %d) = %d, want %d", tt.v, tt.lo, got, tt.want)
		}
	}
}

func TestFits(t *testing.T) {
	tests := []struct {
		size, count, fill int
		want              bool
	}{
		{2, 2, 4, true},
		{2, 3, 4, false},
		{0, 4, 4, true},
		{4, 0, 4, true},
		{5, 0, 4, false},
	}
	for _, tt := range tests {
		if got := Fits(tt.size, tt.count, tt.fill); got != tt.want {
			t.Errorf("Fits(%d, %d, %d) = %v, want %v", tt.size, tt.count, tt.fill, got, tt.want)
		}
	}
}
