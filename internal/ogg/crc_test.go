package ogg

import "testing"

func TestChecksum_Empty(t *testing.T) {
	if got := checksum(nil); got != 0 {
		t.Errorf("checksum(nil) = %#x, want 0", got)
	}
}

func TestChecksum_SingleByte(t *testing.T) {
	// With no initial value, the checksum of one byte is its table entry.
	if got := checksum([]byte{0x4F}); got != crcTable[0x4F] {
		t.Errorf("checksum(0x4F) = %#x, want %#x", got, crcTable[0x4F])
	}
}

func TestChecksum_PageHeaderTemplate(t *testing.T) {
	// Blank page header with the beginning-of-stream flag set.
	hdr := make([]byte, 27)
	copy(hdr, "OggS")
	hdr[5] = 0x02
	if got := checksum(hdr); got != 0x7D65D742 {
		t.Errorf("checksum = %#x, want 0x7d65d742", got)
	}
}

func TestChecksumUpdate_MatchesSinglePass(t *testing.T) {
	data := []byte("the quick brown fox jumps over the lazy dog")
	whole := checksum(data)
	split := checksum(data[:17])
	split = checksumUpdate(split, data[17:])
	if whole != split {
		t.Errorf("split checksum = %#x, want %#x", split, whole)
	}
}
