package bits

// Uint is an unsigned integer carrying an explicit bit width of 0 to 32
// bits. The invariant 0 <= value < 2^width is established at construction
// and holds for the lifetime of the value.
//
// A width of zero is legal and carries the value zero; it shows up when a
// width is itself derived from stream data (a single-mode stream has a
// zero-width mode index, a zero rangebits floor has zero-width coordinates).
//
// Ported from: Bit_uint and Bit_uintv in ww2ogg's Bit_stream.h
type Uint struct {
	width int
	value uint32
}

// NewUint creates a Uint of the given width, failing if the value does not
// fit.
func NewUint(width int, value uint32) (Uint, error) {
	if width < 0 || width > 32 {
		return Uint{}, ErrWidthTooLarge
	}
	if width < 32 && value >= 1<<width {
		return Uint{}, ErrValueTooLarge
	}
	return Uint{width: width, value: value}, nil
}

// ReadUint reads width bits from br, least-significant bit first.
func ReadUint(br *Reader, width int) (Uint, error) {
	if width < 0 || width > 32 {
		return Uint{}, ErrWidthTooLarge
	}
	var v uint32
	for i := 0; i < width; i++ {
		bit, err := br.ReadBit()
		if err != nil {
			return Uint{}, err
		}
		if bit {
			v |= 1 << i
		}
	}
	return Uint{width: width, value: v}, nil
}

// Value returns the integer value.
func (u Uint) Value() uint32 { return u.value }

// Width returns the declared bit width.
func (u Uint) Width() int { return u.width }

// WriteTo writes the value to w bit by bit, least-significant bit first.
func (u Uint) WriteTo(w BitWriter) error {
	for i := 0; i < u.width; i++ {
		var bit uint32
		if u.value&(1<<i) != 0 {
			bit = 1
		}
		if err := w.WriteBits(bit, 1); err != nil {
			return err
		}
	}
	return nil
}
