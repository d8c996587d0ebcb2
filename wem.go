// wem.go
package wem

import (
	"encoding/binary"
	"io"
)

// Version is the library version, recorded in the vendor string of every
// generated comment header.
const Version = "0.1.0"

// Endianness selects the byte order of the container's multi-byte fields.
// RIFF containers are little-endian, RIFX containers big-endian.
type Endianness uint8

// Byte orders.
const (
	LittleEndian Endianness = iota
	BigEndian
)

func (e Endianness) String() string {
	if e == BigEndian {
		return "big-endian"
	}
	return "little-endian"
}

// read16 reads one unsigned 16-bit field in the container's byte order.
func (e Endianness) read16(r io.Reader) (uint16, error) {
	var buf [2]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	if e == BigEndian {
		return binary.BigEndian.Uint16(buf[:]), nil
	}
	return binary.LittleEndian.Uint16(buf[:]), nil
}

// read32 reads one unsigned 32-bit field in the container's byte order.
func (e Endianness) read32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	if e == BigEndian {
		return binary.BigEndian.Uint32(buf[:]), nil
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

func readByte(r io.Reader) (byte, error) {
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

// PacketFormat controls whether audio packets are treated as "modified"
// Vorbis packets (window adjacency bits stripped by the packer and
// reinserted here) regardless of what the container signals.
type PacketFormat uint8

// Packet format selection.
const (
	// PacketFormatAuto trusts the container's mod-packet signal.
	PacketFormatAuto PacketFormat = iota

	// PacketFormatForceMod treats audio packets as modified packets.
	PacketFormatForceMod

	// PacketFormatForceNoMod treats audio packets as standard packets.
	PacketFormatForceNoMod
)

// Options configures a conversion.
type Options struct {
	// Codebooks is the path of the external packed codebook library.
	// Ignored when InlineCodebooks is set.
	Codebooks string

	// InlineCodebooks reads codebooks from the setup packet itself instead
	// of an external library.
	InlineCodebooks bool

	// FullSetup treats the setup packet as a complete Vorbis setup header
	// and copies it structurally instead of reconstructing it. Implies
	// inline codebooks in canonical form.
	FullSetup bool

	// PacketFormat optionally overrides the container's mod-packet signal.
	PacketFormat PacketFormat
}

// File is an opened WEM container: the chunk table has been walked, the
// scalar metadata extracted and validated, and the input positioned for
// conversion.
//
// Ported from: Wwise_RIFF_Vorbis in ww2ogg's wwriff.cpp
type File struct {
	r    io.ReadSeeker
	size int64
	opts Options

	endianness Endianness

	riffSize   int64
	fmtOffset  int64
	cueOffset  int64
	listOffset int64
	smplOffset int64
	vorbOffset int64
	dataOffset int64
	fmtSize    int64
	cueSize    int64
	listSize   int64
	smplSize   int64
	vorbSize   int64
	dataSize   int64

	channels         uint16
	sampleRate       uint32
	avgBytesPerSec   uint32
	extUnk           uint16
	subtype          uint32
	cueCount         uint32
	loopCount        uint32
	loopStart        uint32
	loopEnd          uint32
	sampleCount      uint32
	setupPacketOff   uint32
	firstAudioOff    uint32
	uid              uint32
	blocksize0Pow    uint8
	blocksize1Pow    uint8
	inlineCodebooks  bool
	fullSetup        bool
	headerTriad      bool
	oldPacketHeaders bool
	noGranule        bool
	modPackets       bool
}

// Channels returns the channel count.
func (f *File) Channels() int { return int(f.channels) }

// SampleRate returns the sample rate in Hz.
func (f *File) SampleRate() uint32 { return f.sampleRate }

// SampleCount returns the total sample count declared by the container.
func (f *File) SampleCount() uint32 { return f.sampleCount }

// Endianness returns the container byte order.
func (f *File) Endianness() Endianness { return f.endianness }

// Loop returns the loop points and whether the container declares a loop.
func (f *File) Loop() (start, end uint32, ok bool) {
	return f.loopStart, f.loopEnd, f.loopCount != 0
}

// ModPackets reports whether audio packets use the modified format with
// window adjacency bits stripped.
func (f *File) ModPackets() bool { return f.modPackets }

// OldPacketHeaders reports whether packets use the legacy 8-byte header.
func (f *File) OldPacketHeaders() bool { return f.oldPacketHeaders }

// NoGranule reports whether packet headers omit the granule field.
func (f *File) NoGranule() bool { return f.noGranule }

// HeaderTriad reports whether the container carries the full Vorbis header
// triad. Such containers are rejected by GenerateOgg.
func (f *File) HeaderTriad() bool { return f.headerTriad }

// InlineCodebooks reports whether codebooks come from the setup packet
// rather than an external library.
func (f *File) InlineCodebooks() bool { return f.inlineCodebooks }

// FullSetup reports whether the setup packet is a complete Vorbis setup
// header rather than the compact Wwise form.
func (f *File) FullSetup() bool { return f.fullSetup }
