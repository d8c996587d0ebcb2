// packet.go
package wem

import "io"

// packet is a view of one payload packet with the modern 2-byte header, or
// the 6-byte variant when the header carries a granule position. Derived
// from an offset on demand, never stored.
//
// Ported from: Packet in ww2ogg's wwriff.cpp
type packet struct {
	offset    int64
	size      uint16
	granule   uint32
	noGranule bool
}

// readPacket parses the packet header at offset, leaving the reader
// positioned just past it.
func readPacket(r io.ReadSeeker, offset int64, e Endianness, noGranule bool) (packet, error) {
	p := packet{offset: offset, noGranule: noGranule}
	if _, err := r.Seek(offset, io.SeekStart); err != nil {
		return packet{}, err
	}
	var err error
	if p.size, err = e.read16(r); err != nil {
		return packet{}, err
	}
	if !noGranule {
		if p.granule, err = e.read32(r); err != nil {
			return packet{}, err
		}
	}
	return p, nil
}

func (p packet) headerSize() int64 {
	if p.noGranule {
		return 2
	}
	return 6
}

// payloadOffset is the absolute offset of the packet payload.
func (p packet) payloadOffset() int64 { return p.offset + p.headerSize() }

// nextOffset is the absolute offset of the following packet header.
func (p packet) nextOffset() int64 { return p.offset + p.headerSize() + int64(p.size) }

// packet8 is a view of one payload packet with the legacy 8-byte header:
// 32-bit size and 32-bit granule.
type packet8 struct {
	offset  int64
	size    uint32
	granule uint32
}

func readPacket8(r io.ReadSeeker, offset int64, e Endianness) (packet8, error) {
	p := packet8{offset: offset}
	if _, err := r.Seek(offset, io.SeekStart); err != nil {
		return packet8{}, err
	}
	var err error
	if p.size, err = e.read32(r); err != nil {
		return packet8{}, err
	}
	if p.granule, err = e.read32(r); err != nil {
		return packet8{}, err
	}
	return p, nil
}

func (p packet8) headerSize() int64    { return 8 }
func (p packet8) payloadOffset() int64 { return p.offset + 8 }
func (p packet8) nextOffset() int64    { return p.offset + 8 + int64(p.size) }
