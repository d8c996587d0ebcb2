package ogg

// Ogg CRC-32 implementation using polynomial 0x04C11DB7, MSB-first, with no
// initial or final XOR.
//
// Note: this is NOT the standard IEEE CRC-32 (polynomial 0xEDB88320); the
// standard library hash/crc32 package cannot be used here.

// crcTable is the pre-computed lookup table for the Ogg CRC-32.
var crcTable [256]uint32

func init() {
	const poly = uint32(0x04C11DB7)
	for i := 0; i < 256; i++ {
		crc := uint32(i) << 24
		for j := 0; j < 8; j++ {
			if crc&0x80000000 != 0 {
				crc = (crc << 1) ^ poly
			} else {
				crc <<= 1
			}
		}
		crcTable[i] = crc
	}
}

// checksum computes the Ogg CRC-32 from scratch.
func checksum(data []byte) uint32 {
	return checksumUpdate(0, data)
}

// checksumUpdate updates a running CRC with additional data.
func checksumUpdate(crc uint32, data []byte) uint32 {
	for _, b := range data {
		crc = (crc << 8) ^ crcTable[byte(crc>>24)^b]
	}
	return crc
}
