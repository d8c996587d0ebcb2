// setup.go
//
// Reconstruction of the three Vorbis header packets from the container
// metadata and the compact setup blob. This is where the stripped stream is
// turned back into something a generic decoder understands: the packed
// codebooks are expanded, the floor/residue/mapping/mode structures are
// re-emitted in canonical form, and the mode block flags are collected for
// the audio packet pass.
//
// Ported from: Wwise_RIFF_Vorbis::generate_ogg_header() in ww2ogg's wwriff.cpp
package wem

import (
	"fmt"
	"io"

	"github.com/llehouerou/go-wem/internal/bits"
	"github.com/llehouerou/go-wem/internal/codebook"
	"github.com/llehouerou/go-wem/internal/ogg"
)

// Vorbis header packet types.
const (
	packetTypeIdentification = 1
	packetTypeComment        = 3
	packetTypeSetup          = 5
)

// vendorString identifies the converter in the comment header.
const vendorString = "converted from Audiokinetic Wwise by wem_converter " + Version

// writeVorbisPacketHeader writes the common 7-byte Vorbis header packet
// prefix: the packet type byte and the "vorbis" tag.
func writeVorbisPacketHeader(pw *ogg.PageWriter, packetType uint8) error {
	if err := pw.WriteBits(uint32(packetType), 8); err != nil {
		return err
	}
	return pw.WriteBytes([]byte("vorbis"))
}

// generateHeaders emits the identification, comment and setup pages and
// returns the mode block flag table plus the mode index bit width the
// audio packet pass needs for modified packets.
func (f *File) generateHeaders(pw *ogg.PageWriter) (modeBlockflag []bool, modeBits int, err error) {
	if err := f.writeIdentification(pw); err != nil {
		return nil, 0, err
	}
	if err := f.writeComment(pw); err != nil {
		return nil, 0, err
	}
	return f.writeSetup(pw)
}

func (f *File) writeIdentification(pw *ogg.PageWriter) error {
	if err := writeVorbisPacketHeader(pw, packetTypeIdentification); err != nil {
		return err
	}
	if err := pw.WriteBits(0, 32); err != nil { // version
		return err
	}
	if err := pw.WriteBits(uint32(f.channels), 8); err != nil {
		return err
	}
	if err := pw.WriteBits(f.sampleRate, 32); err != nil {
		return err
	}
	if err := pw.WriteBits(0, 32); err != nil { // bitrate maximum
		return err
	}
	if err := pw.WriteBits(f.avgBytesPerSec*8, 32); err != nil { // bitrate nominal
		return err
	}
	if err := pw.WriteBits(0, 32); err != nil { // bitrate minimum
		return err
	}
	if err := pw.WriteBits(uint32(f.blocksize0Pow), 4); err != nil {
		return err
	}
	if err := pw.WriteBits(uint32(f.blocksize1Pow), 4); err != nil {
		return err
	}
	if err := pw.WriteBits(1, 1); err != nil { // framing
		return err
	}
	return pw.FlushPage(false, false)
}

func (f *File) writeComment(pw *ogg.PageWriter) error {
	if err := writeVorbisPacketHeader(pw, packetTypeComment); err != nil {
		return err
	}
	if err := writeLengthPrefixed(pw, vendorString); err != nil {
		return err
	}
	if f.loopCount == 0 {
		if err := pw.WriteBits(0, 32); err != nil { // user comment count
			return err
		}
	} else {
		if err := pw.WriteBits(2, 32); err != nil {
			return err
		}
		if err := writeLengthPrefixed(pw, fmt.Sprintf("LoopStart=%d", f.loopStart)); err != nil {
			return err
		}
		if err := writeLengthPrefixed(pw, fmt.Sprintf("LoopEnd=%d", f.loopEnd)); err != nil {
			return err
		}
	}
	if err := pw.WriteBits(1, 1); err != nil { // framing
		return err
	}
	return pw.FlushPage(false, false)
}

func writeLengthPrefixed(pw *ogg.PageWriter, s string) error {
	if err := pw.WriteBits(uint32(len(s)), 32); err != nil {
		return err
	}
	return pw.WriteBytes([]byte(s))
}

func (f *File) writeSetup(pw *ogg.PageWriter) (modeBlockflag []bool, modeBits int, err error) {
	if err := writeVorbisPacketHeader(pw, packetTypeSetup); err != nil {
		return nil, 0, err
	}
	setup, err := readPacket(f.r, f.dataOffset+int64(f.setupPacketOff), f.endianness, f.noGranule)
	if err != nil {
		return nil, 0, err
	}
	if setup.granule != 0 {
		return nil, 0, fmt.Errorf("%w: setup packet granule %d", ErrBadSetup, setup.granule)
	}
	if _, err := f.r.Seek(setup.payloadOffset(), io.SeekStart); err != nil {
		return nil, 0, err
	}
	br := bits.NewReader(f.r)

	codebookCountLess1, err := bits.ReadUint(br, 8)
	if err != nil {
		return nil, 0, err
	}
	codebookCount := codebookCountLess1.Value() + 1
	if err := pw.WriteBits(codebookCountLess1.Value(), 8); err != nil {
		return nil, 0, err
	}

	if f.inlineCodebooks {
		for i := uint32(0); i < codebookCount; i++ {
			if f.fullSetup {
				if err := codebook.Copy(br, pw); err != nil {
					return nil, 0, err
				}
			} else {
				if err := codebook.Rebuild(br, 0, pw); err != nil {
					return nil, 0, err
				}
			}
		}
	} else {
		lib, err := codebook.Load(f.opts.Codebooks)
		if err != nil {
			return nil, 0, err
		}
		for i := uint32(0); i < codebookCount; i++ {
			id, err := bits.ReadUint(br, 10)
			if err != nil {
				return nil, 0, err
			}
			if err := lib.Rebuild(int(id.Value()), pw); err != nil {
				// Id 0x342 followed by the canonical sync tail marks a
				// full setup header mislabeled as the compact form.
				if id.Value() == 0x342 {
					ident, err2 := bits.ReadUint(br, 14)
					if err2 == nil && ident.Value() == 0x1590 {
						return nil, 0, ErrTryFullSetup
					}
				}
				return nil, 0, err
			}
		}
	}

	// Time domain transforms: always an empty placeholder section.
	if err := pw.WriteBits(0, 6); err != nil {
		return nil, 0, err
	}
	if err := pw.WriteBits(0, 16); err != nil {
		return nil, 0, err
	}

	if f.fullSetup {
		// The rest of a full setup packet is already canonical; copy every
		// remaining bit verbatim.
		for br.TotalBitsRead() < uint64(setup.size)*8 {
			bit, err := br.ReadBit()
			if err != nil {
				return nil, 0, err
			}
			var v uint32
			if bit {
				v = 1
			}
			if err := pw.WriteBits(v, 1); err != nil {
				return nil, 0, err
			}
		}
	} else {
		floorCount, err := f.rebuildFloors(br, pw, codebookCount)
		if err != nil {
			return nil, 0, err
		}
		residueCount, err := f.rebuildResidues(br, pw, codebookCount)
		if err != nil {
			return nil, 0, err
		}
		mappingCount, err := f.rebuildMappings(br, pw, floorCount, residueCount)
		if err != nil {
			return nil, 0, err
		}
		modeBlockflag, modeBits, err = f.rebuildModes(br, pw, mappingCount)
		if err != nil {
			return nil, 0, err
		}
		if err := pw.WriteBits(1, 1); err != nil { // framing
			return nil, 0, err
		}
	}

	if err := pw.FlushPage(false, false); err != nil {
		return nil, 0, err
	}

	if (br.TotalBitsRead()+6)/8 != uint64(setup.size) {
		return nil, 0, fmt.Errorf("%w: read %d bits of a %d byte packet",
			ErrSetupMismatch, br.TotalBitsRead(), setup.size)
	}
	if setup.nextOffset() != f.dataOffset+int64(f.firstAudioOff) {
		return nil, 0, fmt.Errorf("%w: first audio packet does not follow setup packet",
			ErrSetupMismatch)
	}
	return modeBlockflag, modeBits, nil
}

// rebuildFloors transfers the floor configurations. Wwise only ever emits
// floor type 1 and drops the type field; it is reinstated here. All book
// references are validated against the codebook count.
func (f *File) rebuildFloors(br *bits.Reader, pw *ogg.PageWriter, codebookCount uint32) (uint32, error) {
	floorCountLess1, err := bits.ReadUint(br, 6)
	if err != nil {
		return 0, err
	}
	floorCount := floorCountLess1.Value() + 1
	if err := floorCountLess1.WriteTo(pw); err != nil {
		return 0, err
	}

	for i := uint32(0); i < floorCount; i++ {
		if err := pw.WriteBits(1, 16); err != nil { // floor type
			return 0, err
		}
		partitions, err := bits.ReadUint(br, 5)
		if err != nil {
			return 0, err
		}
		if err := partitions.WriteTo(pw); err != nil {
			return 0, err
		}

		partitionClassList := make([]uint32, partitions.Value())
		maximumClass := uint32(0)
		for j := range partitionClassList {
			class, err := bits.ReadUint(br, 4)
			if err != nil {
				return 0, err
			}
			if err := class.WriteTo(pw); err != nil {
				return 0, err
			}
			partitionClassList[j] = class.Value()
			if class.Value() > maximumClass {
				maximumClass = class.Value()
			}
		}

		classDimensions := make([]uint32, maximumClass+1)
		for j := uint32(0); j <= maximumClass; j++ {
			dimensionsLess1, err := bits.ReadUint(br, 3)
			if err != nil {
				return 0, err
			}
			if err := dimensionsLess1.WriteTo(pw); err != nil {
				return 0, err
			}
			classDimensions[j] = dimensionsLess1.Value() + 1

			subclasses, err := bits.ReadUint(br, 2)
			if err != nil {
				return 0, err
			}
			if err := subclasses.WriteTo(pw); err != nil {
				return 0, err
			}
			if subclasses.Value() != 0 {
				masterbook, err := bits.ReadUint(br, 8)
				if err != nil {
					return 0, err
				}
				if err := masterbook.WriteTo(pw); err != nil {
					return 0, err
				}
				if masterbook.Value() >= codebookCount {
					return 0, fmt.Errorf("%w: invalid floor1 masterbook", ErrBadSetup)
				}
			}
			for k := 0; k < 1<<subclasses.Value(); k++ {
				subclassBookPlus1, err := bits.ReadUint(br, 8)
				if err != nil {
					return 0, err
				}
				if err := subclassBookPlus1.WriteTo(pw); err != nil {
					return 0, err
				}
				// Stored off by one; zero means "no book".
				subclassBook := int32(subclassBookPlus1.Value()) - 1
				if subclassBook >= 0 && uint32(subclassBook) >= codebookCount {
					return 0, fmt.Errorf("%w: invalid floor1 subclass book", ErrBadSetup)
				}
			}
		}

		multiplierLess1, err := bits.ReadUint(br, 2)
		if err != nil {
			return 0, err
		}
		if err := multiplierLess1.WriteTo(pw); err != nil {
			return 0, err
		}
		rangebits, err := bits.ReadUint(br, 4)
		if err != nil {
			return 0, err
		}
		if err := rangebits.WriteTo(pw); err != nil {
			return 0, err
		}
		for _, class := range partitionClassList {
			for k := uint32(0); k < classDimensions[class]; k++ {
				x, err := bits.ReadUint(br, int(rangebits.Value()))
				if err != nil {
					return 0, err
				}
				if err := x.WriteTo(pw); err != nil {
					return 0, err
				}
			}
		}
	}
	return floorCount, nil
}

// rebuildResidues transfers the residue configurations. Wwise stores the
// residue type in 2 bits; canonical form wants 16.
func (f *File) rebuildResidues(br *bits.Reader, pw *ogg.PageWriter, codebookCount uint32) (uint32, error) {
	residueCountLess1, err := bits.ReadUint(br, 6)
	if err != nil {
		return 0, err
	}
	residueCount := residueCountLess1.Value() + 1
	if err := residueCountLess1.WriteTo(pw); err != nil {
		return 0, err
	}

	for i := uint32(0); i < residueCount; i++ {
		residueType, err := bits.ReadUint(br, 2)
		if err != nil {
			return 0, err
		}
		if err := pw.WriteBits(residueType.Value(), 16); err != nil {
			return 0, err
		}
		if residueType.Value() > 2 {
			return 0, fmt.Errorf("%w: invalid residue type %d", ErrBadSetup, residueType.Value())
		}

		residueBegin, err := bits.ReadUint(br, 24)
		if err != nil {
			return 0, err
		}
		residueEnd, err := bits.ReadUint(br, 24)
		if err != nil {
			return 0, err
		}
		partitionSizeLess1, err := bits.ReadUint(br, 24)
		if err != nil {
			return 0, err
		}
		classificationsLess1, err := bits.ReadUint(br, 6)
		if err != nil {
			return 0, err
		}
		classbook, err := bits.ReadUint(br, 8)
		if err != nil {
			return 0, err
		}
		classifications := classificationsLess1.Value() + 1
		for _, u := range []bits.Uint{residueBegin, residueEnd, partitionSizeLess1, classificationsLess1, classbook} {
			if err := u.WriteTo(pw); err != nil {
				return 0, err
			}
		}
		if classbook.Value() >= codebookCount {
			return 0, fmt.Errorf("%w: invalid residue classbook", ErrBadSetup)
		}

		cascade := make([]uint32, classifications)
		for j := range cascade {
			lowBits, err := bits.ReadUint(br, 3)
			if err != nil {
				return 0, err
			}
			if err := lowBits.WriteTo(pw); err != nil {
				return 0, err
			}
			bitflag, err := bits.ReadUint(br, 1)
			if err != nil {
				return 0, err
			}
			if err := bitflag.WriteTo(pw); err != nil {
				return 0, err
			}
			highBits := uint32(0)
			if bitflag.Value() != 0 {
				hb, err := bits.ReadUint(br, 5)
				if err != nil {
					return 0, err
				}
				if err := hb.WriteTo(pw); err != nil {
					return 0, err
				}
				highBits = hb.Value()
			}
			cascade[j] = highBits*8 + lowBits.Value()
		}

		for j := range cascade {
			for k := 0; k < 8; k++ {
				if cascade[j]&(1<<k) == 0 {
					continue
				}
				book, err := bits.ReadUint(br, 8)
				if err != nil {
					return 0, err
				}
				if err := book.WriteTo(pw); err != nil {
					return 0, err
				}
				if book.Value() >= codebookCount {
					return 0, fmt.Errorf("%w: invalid residue book", ErrBadSetup)
				}
			}
		}
	}
	return residueCount, nil
}

// rebuildMappings transfers the channel mapping configurations, validating
// coupling pairs against the channel count and submap floor/residue
// references against their declared counts.
func (f *File) rebuildMappings(br *bits.Reader, pw *ogg.PageWriter, floorCount, residueCount uint32) (uint32, error) {
	mappingCountLess1, err := bits.ReadUint(br, 6)
	if err != nil {
		return 0, err
	}
	mappingCount := mappingCountLess1.Value() + 1
	if err := mappingCountLess1.WriteTo(pw); err != nil {
		return 0, err
	}

	channelBits := ilog(uint32(f.channels) - 1)
	for i := uint32(0); i < mappingCount; i++ {
		if err := pw.WriteBits(0, 16); err != nil { // mapping type
			return 0, err
		}

		submapsFlag, err := bits.ReadUint(br, 1)
		if err != nil {
			return 0, err
		}
		if err := submapsFlag.WriteTo(pw); err != nil {
			return 0, err
		}
		submaps := uint32(1)
		if submapsFlag.Value() != 0 {
			submapsLess1, err := bits.ReadUint(br, 4)
			if err != nil {
				return 0, err
			}
			submaps = submapsLess1.Value() + 1
			if err := submapsLess1.WriteTo(pw); err != nil {
				return 0, err
			}
		}

		squarePolarFlag, err := bits.ReadUint(br, 1)
		if err != nil {
			return 0, err
		}
		if err := squarePolarFlag.WriteTo(pw); err != nil {
			return 0, err
		}
		if squarePolarFlag.Value() != 0 {
			couplingStepsLess1, err := bits.ReadUint(br, 8)
			if err != nil {
				return 0, err
			}
			if err := couplingStepsLess1.WriteTo(pw); err != nil {
				return 0, err
			}
			for j := uint32(0); j <= couplingStepsLess1.Value(); j++ {
				magnitude, err := bits.ReadUint(br, channelBits)
				if err != nil {
					return 0, err
				}
				angle, err := bits.ReadUint(br, channelBits)
				if err != nil {
					return 0, err
				}
				if err := magnitude.WriteTo(pw); err != nil {
					return 0, err
				}
				if err := angle.WriteTo(pw); err != nil {
					return 0, err
				}
				if angle.Value() == magnitude.Value() ||
					magnitude.Value() >= uint32(f.channels) ||
					angle.Value() >= uint32(f.channels) {
					return 0, fmt.Errorf("%w: invalid coupling", ErrBadSetup)
				}
			}
		}

		reserved, err := bits.ReadUint(br, 2)
		if err != nil {
			return 0, err
		}
		if err := reserved.WriteTo(pw); err != nil {
			return 0, err
		}
		if reserved.Value() != 0 {
			return 0, fmt.Errorf("%w: mapping reserved field nonzero", ErrBadSetup)
		}

		if submaps > 1 {
			for j := uint16(0); j < f.channels; j++ {
				mux, err := bits.ReadUint(br, 4)
				if err != nil {
					return 0, err
				}
				if err := mux.WriteTo(pw); err != nil {
					return 0, err
				}
				if mux.Value() >= submaps {
					return 0, fmt.Errorf("%w: mapping mux out of range", ErrBadSetup)
				}
			}
		}

		for j := uint32(0); j < submaps; j++ {
			timeConfig, err := bits.ReadUint(br, 8)
			if err != nil {
				return 0, err
			}
			if err := timeConfig.WriteTo(pw); err != nil {
				return 0, err
			}
			floorNumber, err := bits.ReadUint(br, 8)
			if err != nil {
				return 0, err
			}
			if err := floorNumber.WriteTo(pw); err != nil {
				return 0, err
			}
			if floorNumber.Value() >= floorCount {
				return 0, fmt.Errorf("%w: invalid floor mapping", ErrBadSetup)
			}
			residueNumber, err := bits.ReadUint(br, 8)
			if err != nil {
				return 0, err
			}
			if err := residueNumber.WriteTo(pw); err != nil {
				return 0, err
			}
			if residueNumber.Value() >= residueCount {
				return 0, fmt.Errorf("%w: invalid residue mapping", ErrBadSetup)
			}
		}
	}
	return mappingCount, nil
}

// rebuildModes transfers the mode configurations and collects the block
// flag of each mode. The window and transform type fields are always zero
// and are not stored in the compact form.
func (f *File) rebuildModes(br *bits.Reader, pw *ogg.PageWriter, mappingCount uint32) ([]bool, int, error) {
	modeCountLess1, err := bits.ReadUint(br, 6)
	if err != nil {
		return nil, 0, err
	}
	modeCount := modeCountLess1.Value() + 1
	if err := modeCountLess1.WriteTo(pw); err != nil {
		return nil, 0, err
	}

	modeBlockflag := make([]bool, 0, modeCount)
	modeBits := ilog(modeCount - 1)
	for i := uint32(0); i < modeCount; i++ {
		blockflag, err := bits.ReadUint(br, 1)
		if err != nil {
			return nil, 0, err
		}
		if err := blockflag.WriteTo(pw); err != nil {
			return nil, 0, err
		}
		modeBlockflag = append(modeBlockflag, blockflag.Value() != 0)

		if err := pw.WriteBits(0, 16); err != nil { // window type
			return nil, 0, err
		}
		if err := pw.WriteBits(0, 16); err != nil { // transform type
			return nil, 0, err
		}

		mapping, err := bits.ReadUint(br, 8)
		if err != nil {
			return nil, 0, err
		}
		if err := mapping.WriteTo(pw); err != nil {
			return nil, 0, err
		}
		if mapping.Value() >= mappingCount {
			return nil, 0, fmt.Errorf("%w: invalid mode mapping", ErrBadSetup)
		}
	}
	return modeBlockflag, modeBits, nil
}

// ilog returns the number of bits required to represent v, with ilog(0)==0.
func ilog(v uint32) int {
	ret := 0
	for v != 0 {
		ret++
		v >>= 1
	}
	return ret
}
