// riff.go
package wem

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// fmtExtraSignature is the fixed 16-byte tail of the 0x28-byte fmt chunk
// variant. Its meaning is unknown; it is constant across known files and
// anything else marks a container this converter was never tested on.
var fmtExtraSignature = []byte{
	1, 0, 0, 0, 0, 0, 0x10, 0, 0x80, 0, 0, 0xAA, 0, 0x38, 0x9B, 0x71,
}

// OpenFile opens path and parses it as a WEM container. The returned
// closer is the underlying file handle; it must be kept open until
// GenerateOgg has run.
func OpenFile(path string, opts Options) (*File, io.Closer, error) {
	h, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	st, err := h.Stat()
	if err != nil {
		h.Close()
		return nil, nil, err
	}
	f, err := Open(h, st.Size(), opts)
	if err != nil {
		h.Close()
		return nil, nil, err
	}
	return f, h, nil
}

// Open parses a WEM container from r, which must cover exactly size bytes.
//
// The chunk table is walked to locate fmt, cue, LIST, smpl, vorb and data
// chunks; scalar metadata is extracted and validated. No audio data is
// read until GenerateOgg.
//
// Ported from: Wwise_RIFF_Vorbis::Wwise_RIFF_Vorbis() in ww2ogg's wwriff.cpp
func Open(r io.ReadSeeker, size int64, opts Options) (*File, error) {
	f := &File{
		r:    r,
		size: size,
		opts: opts,

		riffSize:   -1,
		fmtOffset:  -1,
		cueOffset:  -1,
		listOffset: -1,
		smplOffset: -1,
		vorbOffset: -1,
		dataOffset: -1,
		fmtSize:    -1,
		cueSize:    -1,
		listSize:   -1,
		smplSize:   -1,
		vorbSize:   -1,
		dataSize:   -1,

		inlineCodebooks: opts.InlineCodebooks || opts.FullSetup,
		fullSetup:       opts.FullSetup,
	}

	if size < 12 {
		return nil, fmt.Errorf("%w: %d bytes", ErrTruncated, size)
	}

	var head [4]byte
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	if _, err := io.ReadFull(r, head[:]); err != nil {
		return nil, err
	}
	switch {
	case bytes.Equal(head[:], []byte("RIFF")):
		f.endianness = LittleEndian
	case bytes.Equal(head[:], []byte("RIFX")):
		f.endianness = BigEndian
	default:
		return nil, ErrNotRIFF
	}

	riffSize, err := f.endianness.read32(r)
	if err != nil {
		return nil, err
	}
	f.riffSize = int64(riffSize) + 8
	if f.riffSize > size {
		return nil, fmt.Errorf("%w: RIFF size %d exceeds file size %d", ErrTruncated, f.riffSize, size)
	}
	if _, err := io.ReadFull(r, head[:]); err != nil {
		return nil, err
	}
	if !bytes.Equal(head[:], []byte("WAVE")) {
		return nil, fmt.Errorf("%w: missing WAVE", ErrNotRIFF)
	}

	if err := f.walkChunks(); err != nil {
		return nil, err
	}
	if f.fmtOffset == -1 || f.dataOffset == -1 {
		return nil, ErrMissingChunks
	}
	if err := f.parseFmt(); err != nil {
		return nil, err
	}
	if err := f.parseCue(); err != nil {
		return nil, err
	}
	if err := f.parseSmpl(); err != nil {
		return nil, err
	}
	if err := f.parseVorb(); err != nil {
		return nil, err
	}

	switch opts.PacketFormat {
	case PacketFormatForceMod:
		f.modPackets = true
	case PacketFormatForceNoMod:
		f.modPackets = false
	}

	if f.loopCount != 0 {
		// A zero loop end means "to the last sample"; otherwise the stored
		// end is inclusive and Vorbis loop comments want exclusive.
		if f.loopEnd == 0 {
			f.loopEnd = f.sampleCount
		} else {
			f.loopEnd++
		}
		if f.loopStart >= f.sampleCount || f.loopEnd > f.sampleCount || f.loopStart > f.loopEnd {
			return nil, ErrBadLoop
		}
	}

	return f, nil
}

func (f *File) walkChunks() error {
	chunkOffset := int64(12)
	for chunkOffset < f.riffSize {
		if chunkOffset+8 > f.riffSize {
			return fmt.Errorf("%w: chunk header at %d", ErrTruncated, chunkOffset)
		}
		if _, err := f.r.Seek(chunkOffset, io.SeekStart); err != nil {
			return err
		}
		var chunkType [4]byte
		if _, err := io.ReadFull(f.r, chunkType[:]); err != nil {
			return err
		}
		size32, err := f.endianness.read32(f.r)
		if err != nil {
			return err
		}
		chunkSize := int64(size32)

		switch string(chunkType[:]) {
		case "fmt ":
			f.fmtOffset, f.fmtSize = chunkOffset+8, chunkSize
		case "cue ":
			f.cueOffset, f.cueSize = chunkOffset+8, chunkSize
		case "LIST":
			f.listOffset, f.listSize = chunkOffset+8, chunkSize
		case "smpl":
			f.smplOffset, f.smplSize = chunkOffset+8, chunkSize
		case "vorb":
			f.vorbOffset, f.vorbSize = chunkOffset+8, chunkSize
		case "data":
			f.dataOffset, f.dataSize = chunkOffset+8, chunkSize
		}
		chunkOffset += 8 + chunkSize
	}
	if chunkOffset > f.riffSize {
		return fmt.Errorf("%w: last chunk overruns RIFF size", ErrTruncated)
	}
	return nil
}

func (f *File) parseFmt() error {
	if _, err := f.r.Seek(f.fmtOffset, io.SeekStart); err != nil {
		return err
	}
	codecID, err := f.endianness.read16(f.r)
	if err != nil {
		return err
	}
	if codecID != 0xFFFF {
		return fmt.Errorf("%w: bad codec id 0x%04X", ErrBadFmt, codecID)
	}
	if f.channels, err = f.endianness.read16(f.r); err != nil {
		return err
	}
	if f.sampleRate, err = f.endianness.read32(f.r); err != nil {
		return err
	}
	if f.avgBytesPerSec, err = f.endianness.read32(f.r); err != nil {
		return err
	}
	blockAlign, err := f.endianness.read16(f.r)
	if err != nil {
		return err
	}
	if blockAlign != 0 {
		return fmt.Errorf("%w: bad block align", ErrBadFmt)
	}
	bps, err := f.endianness.read16(f.r)
	if err != nil {
		return err
	}
	if bps != 0 {
		return fmt.Errorf("%w: expected 0 bps", ErrBadFmt)
	}
	extraLen, err := f.endianness.read16(f.r)
	if err != nil {
		return err
	}
	if f.fmtSize-0x12 != int64(extraLen) {
		return fmt.Errorf("%w: bad extra fmt length", ErrBadFmt)
	}
	if f.fmtSize-0x12 >= 2 {
		if f.extUnk, err = f.endianness.read16(f.r); err != nil {
			return err
		}
		if f.fmtSize-0x12 >= 6 {
			if f.subtype, err = f.endianness.read32(f.r); err != nil {
				return err
			}
		}
	}
	if f.fmtSize == 0x28 {
		var tail [16]byte
		if _, err := io.ReadFull(f.r, tail[:]); err != nil {
			return err
		}
		if !bytes.Equal(tail[:], fmtExtraSignature) {
			return fmt.Errorf("%w: unexpected signature in extra fmt", ErrBadFmt)
		}
	}
	return nil
}

func (f *File) parseCue() error {
	if f.cueOffset == -1 {
		return nil
	}
	if _, err := f.r.Seek(f.cueOffset, io.SeekStart); err != nil {
		return err
	}
	var err error
	f.cueCount, err = f.endianness.read32(f.r)
	return err
}

func (f *File) parseSmpl() error {
	if f.smplOffset == -1 {
		return nil
	}
	if _, err := f.r.Seek(f.smplOffset+0x1C, io.SeekStart); err != nil {
		return err
	}
	var err error
	if f.loopCount, err = f.endianness.read32(f.r); err != nil {
		return err
	}
	if f.loopCount != 1 {
		return fmt.Errorf("%w: expected one loop, got %d", ErrBadLoop, f.loopCount)
	}
	if _, err := f.r.Seek(f.smplOffset+0x2C, io.SeekStart); err != nil {
		return err
	}
	if f.loopStart, err = f.endianness.read32(f.r); err != nil {
		return err
	}
	f.loopEnd, err = f.endianness.read32(f.r)
	return err
}

// parseVorb extracts the Vorbis metadata. The chunk comes in several sizes
// that place fields at different offsets; sizes 0x28 and 0x2C carry a full
// Vorbis header triad instead of the compact setup blob, and size -1 means
// the metadata is embedded in an 0x42-byte fmt chunk.
func (f *File) parseVorb() error {
	if f.vorbOffset == -1 {
		if f.fmtSize != 0x42 {
			return fmt.Errorf("%w: expected vorb chunk", ErrBadVorb)
		}
		f.vorbOffset = f.fmtOffset + 0x18
	}

	switch f.vorbSize {
	case -1, 0x28, 0x2A, 0x2C, 0x32, 0x34:
	default:
		return fmt.Errorf("%w: 0x%X", ErrBadVorb, f.vorbSize)
	}
	if _, err := f.r.Seek(f.vorbOffset, io.SeekStart); err != nil {
		return err
	}
	var err error
	if f.sampleCount, err = f.endianness.read32(f.r); err != nil {
		return err
	}

	switch f.vorbSize {
	case -1, 0x2A:
		f.noGranule = true
		if _, err := f.r.Seek(f.vorbOffset+0x04, io.SeekStart); err != nil {
			return err
		}
		modSignal, err := f.endianness.read32(f.r)
		if err != nil {
			return err
		}
		// Only these mod signals mark standard packets; everything else
		// means the window adjacency bits were stripped.
		switch modSignal {
		case 0x4A, 0x4B, 0x69, 0x70:
		default:
			f.modPackets = true
		}
		if _, err := f.r.Seek(f.vorbOffset+0x10, io.SeekStart); err != nil {
			return err
		}
	default:
		if _, err := f.r.Seek(f.vorbOffset+0x18, io.SeekStart); err != nil {
			return err
		}
	}

	if f.setupPacketOff, err = f.endianness.read32(f.r); err != nil {
		return err
	}
	if f.firstAudioOff, err = f.endianness.read32(f.r); err != nil {
		return err
	}

	switch f.vorbSize {
	case -1, 0x2A:
		if _, err := f.r.Seek(f.vorbOffset+0x24, io.SeekStart); err != nil {
			return err
		}
	case 0x32, 0x34:
		if _, err := f.r.Seek(f.vorbOffset+0x2C, io.SeekStart); err != nil {
			return err
		}
	}

	switch f.vorbSize {
	case 0x28, 0x2C:
		f.headerTriad = true
		f.oldPacketHeaders = true
	default:
		if f.uid, err = f.endianness.read32(f.r); err != nil {
			return err
		}
		if f.blocksize0Pow, err = readByte(f.r); err != nil {
			return err
		}
		if f.blocksize1Pow, err = readByte(f.r); err != nil {
			return err
		}
	}
	return nil
}
