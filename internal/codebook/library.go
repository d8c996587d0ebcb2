package codebook

import (
	"encoding/binary"
	"fmt"
	"os"
)

// Library holds a packed multi-codebook blob with its offset table. The
// table is read-only after construction; codebook i spans
// offsets[i]..offsets[i+1] of the blob, with the final offset equal to the
// blob length.
//
// Ported from: codebook_library in ww2ogg's codebook.h
type Library struct {
	data    []byte
	offsets []int64
	count   int
}

// New parses a codebook library from its on-disk representation: the last
// four bytes are a little-endian offset to the start of the offset table,
// everything before that offset is the concatenated codebook blobs, and the
// bytes in between are little-endian 32-bit offsets into the blob.
func New(raw []byte) (*Library, error) {
	if len(raw) < 4 {
		return nil, ErrFileTooSmall
	}
	offsetOffset := int64(binary.LittleEndian.Uint32(raw[len(raw)-4:]))
	if offsetOffset < 0 || offsetOffset > int64(len(raw)-4) {
		return nil, ErrBadOffsets
	}
	count := (int64(len(raw)) - offsetOffset) / 4

	l := &Library{
		data:    raw[:offsetOffset],
		offsets: make([]int64, count),
		count:   int(count),
	}
	for i := int64(0); i < count; i++ {
		off := offsetOffset + i*4
		l.offsets[i] = int64(int32(binary.LittleEndian.Uint32(raw[off : off+4])))
	}
	for i := 1; i < l.count; i++ {
		if l.offsets[i] < l.offsets[i-1] {
			return nil, ErrBadOffsets
		}
	}
	if l.count > 0 && l.offsets[l.count-1] != int64(len(l.data)) {
		return nil, ErrBadOffsets
	}
	return l, nil
}

// Load reads and parses a codebook library file.
func Load(path string) (*Library, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("codebook: open library: %w", err)
	}
	return New(raw)
}

// Count returns the number of offset-table entries. The final entry is the
// end sentinel, so Count-1 codebooks are addressable.
func (l *Library) Count() int {
	return l.count
}

// Codebook returns the raw packed bytes of codebook i.
func (l *Library) Codebook(i int) ([]byte, error) {
	if l.data == nil || l.offsets == nil {
		return nil, ErrNotLoaded
	}
	if i < 0 || i >= l.count-1 {
		return nil, ErrInvalidIndex
	}
	return l.data[l.offsets[i]:l.offsets[i+1]], nil
}

// CodebookSize returns the stored byte size of codebook i.
func (l *Library) CodebookSize(i int) (int64, error) {
	if l.offsets == nil {
		return 0, ErrNotLoaded
	}
	if i < 0 || i >= l.count-1 {
		return 0, ErrInvalidIndex
	}
	return l.offsets[i+1] - l.offsets[i], nil
}
