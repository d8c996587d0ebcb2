// convert.go
//
// Ported from: Wwise_RIFF_Vorbis::generate_ogg() in ww2ogg's wwriff.cpp
package wem

import (
	"fmt"
	"io"

	"github.com/llehouerou/go-wem/internal/bits"
	"github.com/llehouerou/go-wem/internal/ogg"
)

// GenerateOgg converts the stream to a standard Ogg Vorbis stream and
// writes it to w. The three Vorbis header packets are rebuilt from the
// container metadata and the setup blob, then the audio packets are
// reframed into Ogg pages, expanding modified packet headers back into
// canonical long-window form where the stream uses them.
func (f *File) GenerateOgg(w io.Writer) (err error) {
	if f.headerTriad {
		return ErrHeaderTriad
	}

	pw := ogg.NewPageWriter(w)
	defer func() {
		if cerr := pw.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	modeBlockflag, modeBits, err := f.generateHeaders(pw)
	if err != nil {
		return err
	}

	offset := f.dataOffset + int64(f.firstAudioOff)
	end := f.dataOffset + f.dataSize
	prevBlockflag := false

	for offset < end {
		var (
			size       uint32
			granule    uint32
			headerSize int64
			payloadOff int64
			nextOff    int64
		)
		if f.oldPacketHeaders {
			pkt, err := readPacket8(f.r, offset, f.endianness)
			if err != nil {
				return err
			}
			size = pkt.size
			granule = pkt.granule
			headerSize = pkt.headerSize()
			payloadOff = pkt.payloadOffset()
			nextOff = pkt.nextOffset()
		} else {
			pkt, err := readPacket(f.r, offset, f.endianness, f.noGranule)
			if err != nil {
				return err
			}
			size = uint32(pkt.size)
			granule = pkt.granule
			headerSize = pkt.headerSize()
			payloadOff = pkt.payloadOffset()
			nextOff = pkt.nextOffset()
		}
		if payloadOff > end {
			return fmt.Errorf("%w: audio packet header past end of data", ErrTruncated)
		}
		if nextOff > end {
			return fmt.Errorf("%w: audio packet truncated", ErrTruncated)
		}

		// A granule of -1 would produce a non-monotonic page position;
		// remap it like ww2ogg does.
		if granule == 0xFFFFFFFF {
			pw.SetGranule(1)
		} else {
			pw.SetGranule(granule)
		}

		if f.modPackets {
			if len(modeBlockflag) == 0 {
				return ErrNoModeBlockflags
			}
			// Restore the stripped packet type bit.
			if err := pw.WriteBits(0, 1); err != nil {
				return err
			}

			if _, err := f.r.Seek(payloadOff, io.SeekStart); err != nil {
				return err
			}
			br := bits.NewReader(f.r)
			modeNumber, err := bits.ReadUint(br, modeBits)
			if err != nil {
				return err
			}
			if int(modeNumber.Value()) >= len(modeBlockflag) {
				return fmt.Errorf("%w: mode number out of range", ErrBadSetup)
			}
			if err := modeNumber.WriteTo(pw); err != nil {
				return err
			}
			remainder, err := bits.ReadUint(br, 8-modeBits)
			if err != nil {
				return err
			}

			if modeBlockflag[modeNumber.Value()] {
				// Long window: the two window shape flags were stripped and
				// must be recovered by peeking at the next packet's mode.
				nextBlockflag := false
				if nextOff+headerSize <= end {
					next, err := readPacket(f.r, nextOff, f.endianness, f.noGranule)
					if err != nil {
						return err
					}
					if next.size > 0 {
						if _, err := f.r.Seek(next.payloadOffset(), io.SeekStart); err != nil {
							return err
						}
						nbr := bits.NewReader(f.r)
						nextMode, err := bits.ReadUint(nbr, modeBits)
						if err != nil {
							return err
						}
						if int(nextMode.Value()) >= len(modeBlockflag) {
							return fmt.Errorf("%w: mode number out of range", ErrBadSetup)
						}
						nextBlockflag = modeBlockflag[nextMode.Value()]
					}
				}
				if err := pw.WriteBits(boolBit(prevBlockflag), 1); err != nil {
					return err
				}
				if err := pw.WriteBits(boolBit(nextBlockflag), 1); err != nil {
					return err
				}
				// Restore the read position for the payload copy.
				if _, err := f.r.Seek(payloadOff+1, io.SeekStart); err != nil {
					return err
				}
			}
			prevBlockflag = modeBlockflag[modeNumber.Value()]

			if err := remainder.WriteTo(pw); err != nil {
				return err
			}
			if err := copyPayload(f.r, pw, int64(size)-1); err != nil {
				return err
			}
		} else {
			if _, err := f.r.Seek(payloadOff, io.SeekStart); err != nil {
				return err
			}
			if err := copyPayload(f.r, pw, int64(size)); err != nil {
				return err
			}
		}

		offset = nextOff
		if err := pw.FlushPage(false, offset == end); err != nil {
			return err
		}
	}
	if offset > end {
		return fmt.Errorf("%w: audio packets overrun data chunk", ErrTruncated)
	}
	return nil
}

// copyPayload copies n bytes from r to the page writer.
func copyPayload(r io.Reader, pw *ogg.PageWriter, n int64) error {
	if n <= 0 {
		return nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return fmt.Errorf("%w: audio packet payload", ErrTruncated)
		}
		return err
	}
	return pw.WriteBytes(buf)
}

func boolBit(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
