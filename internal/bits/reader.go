// Package bits implements bit-granularity reading and writing of Vorbis
// bitstream data.
//
// Vorbis packs fields least-significant-bit first within each byte, unlike
// most other codec bitstreams. Reader and Uint both follow that convention.
package bits

import (
	"errors"
	"io"
)

// Package errors.
var (
	// ErrEndOfInput indicates the bitstream ended in the middle of a field.
	ErrEndOfInput = errors.New("bits: unexpected end of input")

	// ErrWidthTooLarge indicates a field width above 32 bits was requested.
	ErrWidthTooLarge = errors.New("bits: integer width exceeds 32 bits")

	// ErrValueTooLarge indicates a value does not fit its declared bit width.
	ErrValueTooLarge = errors.New("bits: value does not fit declared width")
)

// BitWriter is the sink side of the bit layer. WriteBits writes the low
// width bits of value, least-significant bit first.
//
// *ogg.PageWriter is the one production implementation; tests supply their
// own capturing writers.
type BitWriter interface {
	WriteBits(value uint32, width int) error
}

// Reader reads bits LSB-first from an underlying byte stream.
//
// One Reader is created per packet payload being decoded. TotalBitsRead
// lets the caller verify the packet was consumed exactly to its declared
// byte length.
//
// Ported from: Bit_stream in ww2ogg's Bit_stream.h
type Reader struct {
	r             io.Reader
	bitBuffer     byte
	bitsLeft      uint8
	totalBitsRead uint64

	scratch [1]byte
}

// NewReader creates a Reader over r. The reader does not buffer beyond a
// single byte, so the caller may reposition r between packets and create a
// fresh Reader for each one.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// ReadBit reads the next bit, refilling the one-byte lookahead buffer from
// the source when it is exhausted. Returns ErrEndOfInput on a short read.
func (br *Reader) ReadBit() (bool, error) {
	if br.bitsLeft == 0 {
		if _, err := io.ReadFull(br.r, br.scratch[:]); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return false, ErrEndOfInput
			}
			return false, err
		}
		br.bitBuffer = br.scratch[0]
		br.bitsLeft = 8
	}
	br.totalBitsRead++
	br.bitsLeft--
	return br.bitBuffer&(0x80>>br.bitsLeft) != 0, nil
}

// TotalBitsRead returns the cumulative number of bits consumed.
func (br *Reader) TotalBitsRead() uint64 {
	return br.totalBitsRead
}
