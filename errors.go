// errors.go
package wem

import (
	"errors"

	"github.com/llehouerou/go-wem/internal/bits"
	"github.com/llehouerou/go-wem/internal/codebook"
	"github.com/llehouerou/go-wem/internal/ogg"
)

// Container parsing errors.
var (
	// ErrNotRIFF indicates the input does not start with a RIFF or RIFX header.
	ErrNotRIFF = errors.New("wem: missing RIFF header")

	// ErrTruncated indicates a chunk, packet or page extends past the
	// declared size of its enclosing region.
	ErrTruncated = errors.New("wem: container truncated")

	// ErrMissingChunks indicates the fmt or data chunk is absent.
	ErrMissingChunks = errors.New("wem: expected fmt and data chunks")

	// ErrBadFmt indicates a fmt chunk field that does not match the Wwise
	// Vorbis layout (codec id 0xFFFF, zero block align and bits per sample).
	ErrBadFmt = errors.New("wem: malformed fmt chunk")

	// ErrBadVorb indicates a vorb chunk of unrecognized size.
	ErrBadVorb = errors.New("wem: bad vorb chunk size")

	// ErrBadLoop indicates smpl loop points outside the sample count.
	ErrBadLoop = errors.New("wem: loops out of range")
)

// Conversion errors.
var (
	// ErrHeaderTriad indicates a container carrying the full Vorbis header
	// triad, which this converter does not handle.
	ErrHeaderTriad = errors.New("wem: full header triad containers are not supported")

	// ErrSetupMismatch indicates the setup packet was not consumed exactly
	// to its declared length, or the first audio packet does not follow it.
	ErrSetupMismatch = errors.New("wem: setup packet size mismatch")

	// ErrBadSetup indicates a structurally invalid setup header: an index
	// referencing a codebook, floor, residue or mapping that was never
	// declared, a reserved field that is nonzero, or a nonsense field
	// combination.
	ErrBadSetup = errors.New("wem: malformed setup header")

	// ErrNoModeBlockflags indicates modified packets were requested but the
	// setup header produced no mode block flags to patch them with.
	ErrNoModeBlockflags = errors.New("wem: modified packets without mode block flags")

	// ErrTryFullSetup indicates codebook id 0x342, which marks a stream
	// whose setup header is not in the compact external-codebook form.
	ErrTryFullSetup = errors.New("wem: invalid codebook id 0x342, try full setup")
)

// Aliases of the internal packages' sentinels, so callers can match every
// error kind the conversion produces with errors.Is against this package.
var (
	// ErrEndOfInput indicates the bitstream ended in the middle of a field.
	ErrEndOfInput = bits.ErrEndOfInput

	// ErrRangeViolation indicates a value that does not fit its declared
	// bit width.
	ErrRangeViolation = bits.ErrValueTooLarge

	// ErrBufferExhausted indicates more payload written to a page than the
	// Ogg segment table can address.
	ErrBufferExhausted = ogg.ErrPageFull

	// ErrCodebookIndex indicates a codebook id outside the loaded library.
	ErrCodebookIndex = codebook.ErrInvalidIndex

	// ErrCodebookSize indicates a codebook whose decoded bit count
	// disagrees with its stored size.
	ErrCodebookSize = codebook.ErrSizeMismatch
)
