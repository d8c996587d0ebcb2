package wem

import (
	"bytes"
	"encoding/binary"
	"testing"
)

// containerSpec describes a synthetic little-endian WEM container for
// tests. The data chunk holds a setup packet followed by audio packets,
// all with 2-byte headers.
type containerSpec struct {
	channels     uint16
	sampleRate   uint32
	avgBps       uint32
	sampleCount  uint32
	modSignal    uint32
	blocksize0   byte
	blocksize1   byte
	setupPayload []byte
	audioPackets [][]byte
	withLoop     bool
	loopStart    uint32
	loopEnd      uint32
}

func defaultContainer() containerSpec {
	return containerSpec{
		channels:     1,
		sampleRate:   44100,
		avgBps:       5000,
		sampleCount:  1000,
		modSignal:    0x4A,
		blocksize0:   8,
		blocksize1:   11,
		setupPayload: compactSetupPayload(),
		audioPackets: [][]byte{{0xAA, 0xBB, 0xCC, 0xDD}},
	}
}

// build assembles the container image.
func (c containerSpec) build() []byte {
	le := binary.LittleEndian

	var data []byte
	data = le.AppendUint16(data, uint16(len(c.setupPayload)))
	data = append(data, c.setupPayload...)
	firstAudioOff := uint32(len(data))
	for _, p := range c.audioPackets {
		data = le.AppendUint16(data, uint16(len(p)))
		data = append(data, p...)
	}

	var fmtBody []byte
	fmtBody = le.AppendUint16(fmtBody, 0xFFFF) // codec id
	fmtBody = le.AppendUint16(fmtBody, c.channels)
	fmtBody = le.AppendUint32(fmtBody, c.sampleRate)
	fmtBody = le.AppendUint32(fmtBody, c.avgBps)
	fmtBody = le.AppendUint16(fmtBody, 0) // block align
	fmtBody = le.AppendUint16(fmtBody, 0) // bits per sample
	fmtBody = le.AppendUint16(fmtBody, 6) // extra length
	fmtBody = le.AppendUint16(fmtBody, 0) // ext unknown
	fmtBody = le.AppendUint32(fmtBody, 0) // subtype

	vorbBody := make([]byte, 0x2A)
	le.PutUint32(vorbBody[0x00:], c.sampleCount)
	le.PutUint32(vorbBody[0x04:], c.modSignal)
	le.PutUint32(vorbBody[0x10:], 0) // setup packet offset
	le.PutUint32(vorbBody[0x14:], firstAudioOff)
	le.PutUint32(vorbBody[0x24:], 0x12345678) // uid
	vorbBody[0x28] = c.blocksize0
	vorbBody[0x29] = c.blocksize1

	chunk := func(id string, body []byte) []byte {
		out := append([]byte(id), 0, 0, 0, 0)
		le.PutUint32(out[4:], uint32(len(body)))
		return append(out, body...)
	}

	var chunks []byte
	chunks = append(chunks, chunk("fmt ", fmtBody)...)
	if c.withLoop {
		smpl := make([]byte, 0x34)
		le.PutUint32(smpl[0x1C:], 1) // loop count
		le.PutUint32(smpl[0x2C:], c.loopStart)
		le.PutUint32(smpl[0x30:], c.loopEnd)
		chunks = append(chunks, chunk("smpl", smpl)...)
	}
	chunks = append(chunks, chunk("vorb", vorbBody)...)
	chunks = append(chunks, chunk("data", data)...)

	out := append([]byte("RIFF"), 0, 0, 0, 0)
	le.PutUint32(out[4:], uint32(4+len(chunks)))
	out = append(out, "WAVE"...)
	return append(out, chunks...)
}

func openContainer(t *testing.T, c containerSpec, opts Options) *File {
	t.Helper()
	raw := c.build()
	f, err := Open(bytes.NewReader(raw), int64(len(raw)), opts)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return f
}

// compactSetupPayload builds a minimal valid compact setup packet: one
// inline codebook with ordered lengths, one trivial floor, residue,
// mapping and mode. 216 bits, exactly 27 bytes.
func compactSetupPayload() []byte {
	var s setupBits
	s.put(0, 8) // codebook count - 1

	// Inline packed codebook: 1 dimension, 2 entries, ordered lengths.
	s.put(1, 4)  // dimensions
	s.put(2, 14) // entries
	s.put(1, 1)  // ordered
	s.put(1, 5)  // initial length
	s.put(2, 2)  // run of 2 entries
	s.put(0, 1)  // lookup type 0

	s.put(0, 6) // floor count - 1
	s.put(1, 5) // partitions
	s.put(0, 4) // partition class
	s.put(0, 3) // class dimensions - 1
	s.put(0, 2) // subclasses
	s.put(0, 8) // subclass book (none)
	s.put(0, 2) // multiplier - 1
	s.put(0, 4) // rangebits; X values are zero width

	s.put(0, 6)  // residue count - 1
	s.put(0, 2)  // residue type
	s.put(0, 24) // begin
	s.put(0, 24) // end
	s.put(0, 24) // partition size - 1
	s.put(0, 6)  // classifications - 1
	s.put(0, 8)  // classbook
	s.put(0, 3)  // cascade low bits
	s.put(0, 1)  // cascade high flag

	s.put(0, 6) // mapping count - 1
	s.put(0, 1) // submaps flag
	s.put(0, 1) // square polar flag
	s.put(0, 2) // reserved
	s.put(0, 8) // time config
	s.put(0, 8) // floor number
	s.put(0, 8) // residue number

	s.put(0, 6) // mode count - 1
	s.put(0, 1) // blockflag
	s.put(0, 8) // mode mapping
	return s.bytes()
}

// setupBits packs LSB-first bit fields for test fixtures.
type setupBits struct {
	data    []byte
	pending byte
	nbits   uint8
}

func (s *setupBits) put(value uint32, width int) {
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
}

func (s *setupBits) bytes() []byte {
	out := append([]byte(nil), s.data...)
	if s.nbits > 0 {
		out = append(out, s.pending)
	}
	return out
}
