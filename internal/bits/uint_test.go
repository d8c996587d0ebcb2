package bits

import (
	"bytes"
	"errors"
	"testing"
)

// bitSink collects written bits LSB-first into bytes so tests can compare
// exact output.
type bitSink struct {
	data    []byte
	pending byte
	nbits   uint8
}

func (s *bitSink) WriteBits(value uint32, width int) error {
	for i := 0; i < width; i++ {
		if value&(1<<i) != 0 {
			s.pending |= 1 << s.nbits
		}
		s.nbits++
		if s.nbits == 8 {
			s.data = append(s.data, s.pending)
			s.pending = 0
			s.nbits = 0
		}
	}
	return nil
}

// bytes returns the collected output with any partial byte zero-padded.
func (s *bitSink) bytes() []byte {
	out := append([]byte(nil), s.data...)
	if s.nbits > 0 {
		out = append(out, s.pending)
	}
	return out
}

func TestNewUint(t *testing.T) {
	tests := []struct {
		name    string
		width   int
		value   uint32
		wantErr error
	}{
		{"zero width zero value", 0, 0, nil},
		{"max value for width", 4, 15, nil},
		{"full width", 32, 0xFFFFFFFF, nil},
		{"value too large", 4, 16, ErrValueTooLarge},
		{"zero width nonzero value", 0, 1, ErrValueTooLarge},
		{"negative width", -1, 0, ErrWidthTooLarge},
		{"width too large", 33, 0, ErrWidthTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := NewUint(tt.width, tt.value)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("NewUint(%d, %d) error = %v, want %v", tt.width, tt.value, err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if u.Value() != tt.value {
				t.Errorf("Value() = %d, want %d", u.Value(), tt.value)
			}
			if u.Width() != tt.width {
				t.Errorf("Width() = %d, want %d", u.Width(), tt.width)
			}
		})
	}
}

func TestReadUint(t *testing.T) {
	// Bits 0-7 come from 0xE5, bits 8-9 from the low bits of 0x01,
	// so the 10-bit value is 0x1E5.
	r := NewReader(bytes.NewReader([]byte{0xE5, 0x01}))
	u, err := ReadUint(r, 10)
	if err != nil {
		t.Fatalf("ReadUint: %v", err)
	}
	if u.Value() != 0x1E5 {
		t.Errorf("Value() = %#x, want 0x1e5", u.Value())
	}
	if u.Width() != 10 {
		t.Errorf("Width() = %d, want 10", u.Width())
	}
}

func TestReadUint_ZeroWidth(t *testing.T) {
	r := NewReader(bytes.NewReader(nil))
	u, err := ReadUint(r, 0)
	if err != nil {
		t.Fatalf("ReadUint(0): %v", err)
	}
	if u.Value() != 0 {
		t.Errorf("Value() = %d, want 0", u.Value())
	}
	if r.TotalBitsRead() != 0 {
		t.Errorf("TotalBitsRead = %d, want 0", r.TotalBitsRead())
	}
}

func TestReadUint_Truncated(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{0xFF}))
	if _, err := ReadUint(r, 12); !errors.Is(err, ErrEndOfInput) {
		t.Errorf("ReadUint past end = %v, want ErrEndOfInput", err)
	}
}

func TestUint_WriteTo_RoundTrip(t *testing.T) {
	tests := []struct {
		width int
		value uint32
	}{
		{1, 1},
		{5, 0x15},
		{8, 0xA7},
		{13, 0x1234},
		{32, 0xDEADBEEF},
	}
	for _, tt := range tests {
		var sink bitSink
		u, err := NewUint(tt.width, tt.value)
		if err != nil {
			t.Fatalf("NewUint(%d, %#x): %v", tt.width, tt.value, err)
		}
		if err := u.WriteTo(&sink); err != nil {
			t.Fatalf("WriteTo: %v", err)
		}
		r := NewReader(bytes.NewReader(sink.bytes()))
		got, err := ReadUint(r, tt.width)
		if err != nil {
			t.Fatalf("ReadUint: %v", err)
		}
		if got.Value() != tt.value {
			t.Errorf("round trip width %d: got %#x, want %#x", tt.width, got.Value(), tt.value)
		}
	}
}
