// Package codebook expands Wwise's packed Vorbis codebook representation
// into the canonical codebook wire format a generic Vorbis decoder expects.
//
// Wwise strips the sync pattern, narrows the dimension and entry count
// fields and drops redundant per-entry signaling. Rebuild reverses that
// compaction; Copy re-serializes a codebook that is already canonical.
package codebook

import "errors"

// Package errors.
var (
	// ErrNotLoaded indicates a table lookup on a library with no backing data.
	ErrNotLoaded = errors.New("codebook: library not loaded")

	// ErrInvalidIndex indicates a codebook index outside the library.
	ErrInvalidIndex = errors.New("codebook: invalid codebook index")

	// ErrFileTooSmall indicates a library file shorter than its trailing
	// offset-table pointer.
	ErrFileTooSmall = errors.New("codebook: library file too small")

	// ErrBadOffsets indicates a library offset table that is not
	// monotonically non-decreasing or does not span the data blob.
	ErrBadOffsets = errors.New("codebook: malformed library offset table")

	// ErrBadSync indicates a full codebook without the canonical sync pattern.
	ErrBadSync = errors.New("codebook: invalid codebook sync pattern")

	// ErrCodewordLengthBits indicates a codeword length field width outside 1..5.
	ErrCodewordLengthBits = errors.New("codebook: nonsense codeword length field width")

	// ErrEntryOverrun indicates ordered codeword length runs past the entry count.
	ErrEntryOverrun = errors.New("codebook: ordered codeword lengths overrun entry count")

	// ErrLookupType2 indicates lookup type 2, which the packed representation
	// never produces.
	ErrLookupType2 = errors.New("codebook: unexpected lookup type 2")

	// ErrInvalidLookupType indicates a lookup type above 2.
	ErrInvalidLookupType = errors.New("codebook: invalid lookup type")

	// ErrSizeMismatch indicates the decoded bit count disagrees with the
	// codebook's stored byte size.
	ErrSizeMismatch = errors.New("codebook: decoded size disagrees with stored size")

	// ErrQuantvalsSearch indicates the quantvals search failed to bracket a
	// solution, which only happens for counts no real encoder produces.
	ErrQuantvalsSearch = errors.New("codebook: quantvals search did not converge")
)

// ilog returns the number of bits required to represent v, with ilog(0)==0.
//
// Ported from: _ilog() in the Vorbis reference bitwise code (also ww2ogg).
func ilog(v uint32) int {
	ret := 0
	for v != 0 {
		ret++
		v >>= 1
	}
	return ret
}

// MapType1Quantvals finds the integer vals with
// vals^dimensions <= entries < (vals+1)^dimensions.
//
// The search is seeded near the root and walks one step at a time. Real
// encoders always produce bracketable counts; the walk is bounded so a
// corrupt codebook surfaces as an error instead of spinning.
//
// Ported from: _book_maptype1_quantvals() in the Vorbis reference sharedbook.c
func MapType1Quantvals(entries, dimensions uint32) (uint32, error) {
	if dimensions == 0 {
		return 0, ErrQuantvalsSearch
	}
	shift := (ilog(entries) - 1) * (int(dimensions) - 1) / int(dimensions)
	if shift < 0 {
		shift = 0
	}
	vals := entries >> shift
	for steps := 0; steps < 1<<16; steps++ {
		acc := uint64(1)
		acc1 := uint64(1)
		for i := uint32(0); i < dimensions; i++ {
			acc *= uint64(vals)
			acc1 *= uint64(vals) + 1
		}
		if acc <= uint64(entries) && acc1 > uint64(entries) {
			return vals, nil
		}
		if acc > uint64(entries) {
			vals--
		} else {
			vals++
		}
	}
	return 0, ErrQuantvalsSearch
}
