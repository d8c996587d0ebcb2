package codebook

import (
	"bytes"
	"fmt"

	"github.com/llehouerou/go-wem/internal/bits"
)

// codebookSync is the canonical 24-bit codebook sync pattern "BCV".
const codebookSync = 0x564342

// Rebuild expands packed codebook id from the library into canonical form,
// writing the result to w.
func (l *Library) Rebuild(id int, w bits.BitWriter) error {
	cb, err := l.Codebook(id)
	if err != nil {
		return err
	}
	size, err := l.CodebookSize(id)
	if err != nil {
		return err
	}
	if len(cb) == 0 {
		return fmt.Errorf("%w: %d", ErrInvalidIndex, id)
	}
	return Rebuild(bits.NewReader(bytes.NewReader(cb)), uint32(size), w)
}

// Rebuild reads one packed codebook from br and writes its canonical
// expansion to w. storedSize is the codebook's byte size for the trailing
// consumed-length check; zero disables the check, which is how inline
// codebooks embedded in a setup packet are handled.
//
// Ported from: codebook_library::rebuild() in ww2ogg's codebook.cpp
func Rebuild(br *bits.Reader, storedSize uint32, w bits.BitWriter) error {
	dimensions, err := bits.ReadUint(br, 4)
	if err != nil {
		return err
	}
	entries, err := bits.ReadUint(br, 14)
	if err != nil {
		return err
	}
	if err := w.WriteBits(codebookSync, 24); err != nil {
		return err
	}
	if err := w.WriteBits(dimensions.Value(), 16); err != nil {
		return err
	}
	if err := w.WriteBits(entries.Value(), 24); err != nil {
		return err
	}

	ordered, err := bits.ReadUint(br, 1)
	if err != nil {
		return err
	}
	if err := ordered.WriteTo(w); err != nil {
		return err
	}
	if ordered.Value() != 0 {
		if err := copyOrderedLengths(br, w, entries.Value()); err != nil {
			return err
		}
	} else {
		// The packed form stores each codeword length in a narrow field
		// whose width is recorded once up front; canonical form always
		// uses 5 bits per length.
		lengthBits, err := bits.ReadUint(br, 3)
		if err != nil {
			return err
		}
		sparse, err := bits.ReadUint(br, 1)
		if err != nil {
			return err
		}
		if lengthBits.Value() == 0 || lengthBits.Value() > 5 {
			return ErrCodewordLengthBits
		}
		if err := sparse.WriteTo(w); err != nil {
			return err
		}
		for i := uint32(0); i < entries.Value(); i++ {
			present := true
			if sparse.Value() != 0 {
				p, err := bits.ReadUint(br, 1)
				if err != nil {
					return err
				}
				if err := p.WriteTo(w); err != nil {
					return err
				}
				present = p.Value() != 0
			}
			if present {
				length, err := bits.ReadUint(br, int(lengthBits.Value()))
				if err != nil {
					return err
				}
				if err := w.WriteBits(length.Value(), 5); err != nil {
					return err
				}
			}
		}
	}

	// The packed form signals the lookup table with a single bit since
	// only types 0 and 1 occur; canonical form uses 4 bits.
	lookupType, err := bits.ReadUint(br, 1)
	if err != nil {
		return err
	}
	if err := w.WriteBits(lookupType.Value(), 4); err != nil {
		return err
	}
	if err := copyLookup1(br, w, lookupType.Value(), entries.Value(), dimensions.Value()); err != nil {
		return err
	}

	if storedSize != 0 && br.TotalBitsRead()/8+1 != uint64(storedSize) {
		return fmt.Errorf("%w: expected %d, got %d",
			ErrSizeMismatch, storedSize, br.TotalBitsRead()/8+1)
	}
	return nil
}

// Copy re-serializes one codebook that is already in canonical form,
// validating structure along the way. No compaction is involved; the
// decode and re-encode are structurally identical.
//
// Ported from: codebook_library::copy() in ww2ogg's codebook.cpp
func Copy(br *bits.Reader, w bits.BitWriter) error {
	sync, err := bits.ReadUint(br, 24)
	if err != nil {
		return err
	}
	dimensions, err := bits.ReadUint(br, 16)
	if err != nil {
		return err
	}
	entries, err := bits.ReadUint(br, 24)
	if err != nil {
		return err
	}
	if sync.Value() != codebookSync {
		return ErrBadSync
	}
	if err := sync.WriteTo(w); err != nil {
		return err
	}
	if err := dimensions.WriteTo(w); err != nil {
		return err
	}
	if err := entries.WriteTo(w); err != nil {
		return err
	}

	ordered, err := bits.ReadUint(br, 1)
	if err != nil {
		return err
	}
	if err := ordered.WriteTo(w); err != nil {
		return err
	}
	if ordered.Value() != 0 {
		if err := copyOrderedLengths(br, w, entries.Value()); err != nil {
			return err
		}
	} else {
		sparse, err := bits.ReadUint(br, 1)
		if err != nil {
			return err
		}
		if err := sparse.WriteTo(w); err != nil {
			return err
		}
		for i := uint32(0); i < entries.Value(); i++ {
			present := true
			if sparse.Value() != 0 {
				p, err := bits.ReadUint(br, 1)
				if err != nil {
					return err
				}
				if err := p.WriteTo(w); err != nil {
					return err
				}
				present = p.Value() != 0
			}
			if present {
				length, err := bits.ReadUint(br, 5)
				if err != nil {
					return err
				}
				if err := length.WriteTo(w); err != nil {
					return err
				}
			}
		}
	}

	lookupType, err := bits.ReadUint(br, 4)
	if err != nil {
		return err
	}
	if err := lookupType.WriteTo(w); err != nil {
		return err
	}
	return copyLookup1(br, w, lookupType.Value(), entries.Value(), dimensions.Value())
}

// copyOrderedLengths transfers run-length coded codeword length groups.
// Each group's count field is just wide enough for the entries remaining.
func copyOrderedLengths(br *bits.Reader, w bits.BitWriter, entries uint32) error {
	initialLength, err := bits.ReadUint(br, 5)
	if err != nil {
		return err
	}
	if err := initialLength.WriteTo(w); err != nil {
		return err
	}
	current := uint32(0)
	for current < entries {
		number, err := bits.ReadUint(br, ilog(entries-current))
		if err != nil {
			return err
		}
		if err := number.WriteTo(w); err != nil {
			return err
		}
		current += number.Value()
	}
	if current > entries {
		return ErrEntryOverrun
	}
	return nil
}

// copyLookup1 transfers the lookup table section. Type 0 carries nothing;
// type 1 carries min/max as raw 32-bit patterns, a value bit width, a
// sequence flag and the quantized value list. Type 2 never occurs in these
// streams.
func copyLookup1(br *bits.Reader, w bits.BitWriter, lookupType, entries, dimensions uint32) error {
	switch lookupType {
	case 0:
		return nil
	case 1:
		min, err := bits.ReadUint(br, 32)
		if err != nil {
			return err
		}
		max, err := bits.ReadUint(br, 32)
		if err != nil {
			return err
		}
		valueLength, err := bits.ReadUint(br, 4)
		if err != nil {
			return err
		}
		sequenceFlag, err := bits.ReadUint(br, 1)
		if err != nil {
			return err
		}
		if err := min.WriteTo(w); err != nil {
			return err
		}
		if err := max.WriteTo(w); err != nil {
			return err
		}
		if err := valueLength.WriteTo(w); err != nil {
			return err
		}
		if err := sequenceFlag.WriteTo(w); err != nil {
			return err
		}
		quantvals, err := MapType1Quantvals(entries, dimensions)
		if err != nil {
			return err
		}
		for i := uint32(0); i < quantvals; i++ {
			val, err := bits.ReadUint(br, int(valueLength.Value())+1)
			if err != nil {
				return err
			}
			if err := val.WriteTo(w); err != nil {
				return err
			}
		}
		return nil
	case 2:
		return ErrLookupType2
	default:
		return ErrInvalidLookupType
	}
}
