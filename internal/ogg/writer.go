// Package ogg frames Vorbis packet data into checksummed Ogg pages.
//
// Only the writing side is implemented. PageWriter is a bit-level sink:
// callers feed it packet bits and bytes, then request a page flush at each
// packet boundary. Granule positions, sequence numbering and the Ogg CRC
// are handled internally.
package ogg

import (
	"encoding/binary"
	"errors"
	"io"
)

// ErrPageFull indicates more payload was written between page flushes than
// the Ogg segment table can address (255 segments of 255 bytes).
var ErrPageFull = errors.New("ogg: page payload exceeds segment table capacity")

const (
	headerBytes = 27
	maxSegments = 255
	segmentSize = 255
	maxPayload  = maxSegments * segmentSize // 65025
)

// streamSerial is stamped on every page. The converter emits exactly one
// logical stream per file, so a fixed serial suffices.
const streamSerial = 1

// PageWriter accumulates packet bits into a page payload and emits
// completed Ogg pages to an output sink.
//
// Sub-byte bits collect LSB-first into a pending byte which is committed to
// the payload once full. A page is only emitted by FlushPage; Close
// force-flushes whatever remains.
//
// Ported from: Bit_oggstream in ww2ogg's Bit_stream.h
type PageWriter struct {
	w          io.Writer
	bitBuffer  byte
	bitsStored uint8
	payload    []byte
	first      bool
	continued  bool
	granule    uint32
	seqno      uint32
}

// NewPageWriter creates a PageWriter over w. The first flushed page carries
// the beginning-of-stream flag.
func NewPageWriter(w io.Writer) *PageWriter {
	return &PageWriter{
		w:       w,
		payload: make([]byte, 0, maxPayload),
		first:   true,
	}
}

// WriteBits writes the low width bits of value, least-significant bit
// first. Byte-aligned whole-byte writes take a fast path straight into the
// payload; everything else shifts through the pending bit buffer.
func (p *PageWriter) WriteBits(value uint32, width int) error {
	if width%8 == 0 && p.bitsStored == 0 {
		for i := 0; i < width/8; i++ {
			if len(p.payload) >= maxPayload {
				return ErrPageFull
			}
			p.payload = append(p.payload, byte(value>>(i*8)))
		}
		return nil
	}
	for i := 0; i < width; i++ {
		if err := p.putBit(value&(1<<i) != 0); err != nil {
			return err
		}
	}
	return nil
}

// WriteBytes appends raw bytes to the page payload. With a partial byte
// pending, each byte is threaded through the bit buffer so the packing
// stays contiguous.
func (p *PageWriter) WriteBytes(buf []byte) error {
	if p.bitsStored != 0 {
		for _, b := range buf {
			if err := p.WriteBits(uint32(b), 8); err != nil {
				return err
			}
		}
		return nil
	}
	for _, b := range buf {
		if len(p.payload) >= maxPayload {
			return ErrPageFull
		}
		p.payload = append(p.payload, b)
	}
	return nil
}

// SetGranule records the granule position stamped on the next flushed page.
func (p *PageWriter) SetGranule(g uint32) {
	p.granule = g
}

func (p *PageWriter) putBit(bit bool) error {
	if bit {
		p.bitBuffer |= 1 << p.bitsStored
	}
	p.bitsStored++
	if p.bitsStored == 8 {
		return p.flushBits()
	}
	return nil
}

// flushBits commits a pending partial byte to the payload.
func (p *PageWriter) flushBits() error {
	if p.bitsStored == 0 {
		return nil
	}
	if len(p.payload) == maxPayload {
		// Emit what fits so a reader sees a continued packet, then fail.
		_ = p.writePage(true, false)
		return ErrPageFull
	}
	p.payload = append(p.payload, p.bitBuffer)
	p.bitsStored = 0
	p.bitBuffer = 0
	return nil
}

// FlushPage completes the pending byte and emits the accumulated payload as
// one Ogg page. nextContinued marks the following page as a packet
// continuation; last marks this page as end-of-stream. Flushing an empty
// payload is a no-op.
func (p *PageWriter) FlushPage(nextContinued, last bool) error {
	if err := p.flushBits(); err != nil {
		return err
	}
	if len(p.payload) == 0 {
		return nil
	}
	return p.writePage(nextContinued, last)
}

func (p *PageWriter) writePage(nextContinued, last bool) error {
	segments := (len(p.payload) + segmentSize) / segmentSize
	if segments > maxSegments {
		// A payload that is an exact multiple of 255 bytes needs a
		// terminating zero lacing value, which cannot fit once the table
		// holds 255 full segments. ww2ogg clamps the count instead of
		// splitting the packet; files in the wild rely on that framing.
		segments = maxSegments
	}

	var hdr [headerBytes]byte
	copy(hdr[0:4], "OggS")
	hdr[4] = 0 // stream structure version
	var flags byte
	if p.continued {
		flags |= 0x01
	}
	if p.first {
		flags |= 0x02
	}
	if last {
		flags |= 0x04
	}
	hdr[5] = flags
	// Granules in these streams never exceed 32 bits; the high half of the
	// 64-bit granule field stays zero.
	binary.LittleEndian.PutUint32(hdr[6:10], p.granule)
	binary.LittleEndian.PutUint32(hdr[14:18], streamSerial)
	binary.LittleEndian.PutUint32(hdr[18:22], p.seqno)
	// hdr[22:26] is the checksum, zero during CRC computation.
	hdr[26] = byte(segments)

	lacing := make([]byte, segments)
	left := len(p.payload)
	for i := range lacing {
		if left >= segmentSize {
			lacing[i] = segmentSize
			left -= segmentSize
		} else {
			lacing[i] = byte(left)
			left = 0
		}
	}

	crc := checksum(hdr[:])
	crc = checksumUpdate(crc, lacing)
	crc = checksumUpdate(crc, p.payload)
	binary.LittleEndian.PutUint32(hdr[22:26], crc)

	if _, err := p.w.Write(hdr[:]); err != nil {
		return err
	}
	if _, err := p.w.Write(lacing); err != nil {
		return err
	}
	if _, err := p.w.Write(p.payload); err != nil {
		return err
	}

	p.seqno++
	p.first = false
	p.continued = nextContinued
	p.payload = p.payload[:0]
	return nil
}

// Close force-flushes any unwritten page content. Callers that need an
// explicit end-of-stream flag must call FlushPage(false, true) themselves
// before Close; the teardown flush never sets it.
func (p *PageWriter) Close() error {
	return p.FlushPage(false, false)
}
