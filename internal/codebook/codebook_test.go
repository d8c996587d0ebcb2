package codebook

import (
	"errors"
	"testing"
)

func TestIlog(t *testing.T) {
	tests := []struct {
		v    uint32
		want int
	}{
		{0, 0},
		{1, 1},
		{2, 2},
		{3, 2},
		{4, 3},
		{255, 8},
		{256, 9},
		{0xFFFFFFFF, 32},
	}
	for _, tt := range tests {
		if got := ilog(tt.v); got != tt.want {
			t.Errorf("ilog(%d) = %d, want %d", tt.v, got, tt.want)
		}
	}
}

func TestMapType1Quantvals(t *testing.T) {
	tests := []struct {
		entries    uint32
		dimensions uint32
		want       uint32
	}{
		{256, 2, 16},
		{81, 4, 3},
		{1, 1, 1},
		{625, 4, 5},
		{100, 2, 10},
	}
	for _, tt := range tests {
		got, err := MapType1Quantvals(tt.entries, tt.dimensions)
		if err != nil {
			t.Fatalf("MapType1Quantvals(%d, %d): %v", tt.entries, tt.dimensions, err)
		}
		if got != tt.want {
			t.Errorf("MapType1Quantvals(%d, %d) = %d, want %d", tt.entries, tt.dimensions, got, tt.want)
		}
	}
}

func TestMapType1Quantvals_ZeroDimensions(t *testing.T) {
	if _, err := MapType1Quantvals(16, 0); !errors.Is(err, ErrQuantvalsSearch) {
		t.Errorf("MapType1Quantvals(16, 0) = %v, want ErrQuantvalsSearch", err)
	}
}
